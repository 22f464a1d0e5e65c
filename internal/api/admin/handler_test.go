package admin

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"loyalty-wallet/internal/domain/loyalty"
	"loyalty-wallet/internal/infra/googlewallet"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestFoldTiers(t *testing.T) {
	got := foldTiers([]customerTypeCount{
		{CustomerType: "Gold 15%", Count: 3},
		{CustomerType: "GOLD", Count: 2},
		{CustomerType: "blue", Count: 4},
		{CustomerType: "", Count: 1},
		{CustomerType: "platinum", Count: 1},
	})
	assert.Equal(t, map[string]int64{"gold": 5, "blue": 6}, got)

	assert.Equal(t, map[string]int64{"gold": 0, "blue": 0}, foldTiers(nil))
}

type stubSyncer struct {
	results []googlewallet.SyncResult
	err     error
}

func (s stubSyncer) EnsureClasses(context.Context) ([]googlewallet.SyncResult, error) {
	return s.results, s.err
}

func syncStatus(h *Handler) (int, string) {
	r := gin.New()
	r.POST("/sync", h.SyncClasses)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/sync", nil))
	return w.Code, w.Body.String()
}

func TestSyncClasses(t *testing.T) {
	code, _ := syncStatus(&Handler{})
	assert.Equal(t, http.StatusServiceUnavailable, code)

	code, body := syncStatus(&Handler{Classes: stubSyncer{results: []googlewallet.SyncResult{
		{Tier: loyalty.TierGold, ClassID: "3388.rewards-gold", Created: true},
		{Tier: loyalty.TierBlue, ClassID: "3388.rewards-blue"},
	}}})
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "3388.rewards-gold")

	code, _ = syncStatus(&Handler{Classes: stubSyncer{err: errors.New("403 from upstream")}})
	assert.Equal(t, http.StatusBadGateway, code)
}

func TestCreateStaffValidation(t *testing.T) {
	r := gin.New()
	r.POST("/staff", (&Handler{}).CreateStaff)

	for _, body := range []string{
		`{"name":"Ana","email":"ana@example.com"}`,
		`{"name":"Ana","email":"ana@example.com","password":"short"}`,
		`{"name":"Ana","email":"ana@example.com","password":"s3cretpass","role":"owner"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/staff", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}
