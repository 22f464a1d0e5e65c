package routes

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"loyalty-wallet/database"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthPingsDatabase(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, err := database.Open(database.SQLitePrefix + filepath.Join(t.TempDir(), "health.db"))
	require.NoError(t, err)

	r := gin.New()
	r.GET("/health", health(db))
	get := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		return w
	}

	w := get()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	database.Close(db)
	w = get()
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unavailable"}`, w.Body.String())
}
