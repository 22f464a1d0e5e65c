package database

import (
	"fmt"
	"log"
	"strings"

	"loyalty-wallet/internal/domain/members"
	"loyalty-wallet/internal/domain/staff"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// SQLitePrefix selects the embedded driver, e.g. DB_URL=sqlite:./wallet.db
const SQLitePrefix = "sqlite:"

func Open(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DB_URL not set")
	}

	var dialector gorm.Dialector
	if path, ok := strings.CutPrefix(dsn, SQLitePrefix); ok {
		dialector = sqlite.Open(path)
	} else {
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

// Migrate auto-migrates every domain model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&members.Member{},
		&staff.User{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	log.Println("✅ Connected and migrated successfully")
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
