package database

import (
	"path/filepath"
	"testing"

	"loyalty-wallet/internal/domain/members"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRequiresDSN(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestOpenSQLiteAndMigrate(t *testing.T) {
	db, err := Open(SQLitePrefix + filepath.Join(t.TempDir(), "wallet.db"))
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, Migrate(db))
	require.NoError(t, db.Create(&members.Member{Client: "C1", Campaign: "spring", ExternalID: "e1"}).Error)

	var n int64
	require.NoError(t, db.Model(&members.Member{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}
