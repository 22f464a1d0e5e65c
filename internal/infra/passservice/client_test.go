package passservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"loyalty-wallet/internal/domain/loyalty"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchPass(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/passes", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		q := r.URL.Query()
		assert.Equal(t, "C1", q.Get("client"))
		assert.Equal(t, "spring", q.Get("campaign"))
		assert.Equal(t, "gold", q.Get("tier"))
		w.Header().Set("Content-Type", PKPassContentType)
		_, _ = w.Write([]byte("PK\x03\x04pass"))
	}))
	defer srv.Close()

	body, err := NewClient(srv.URL, "k").FetchPass(context.Background(), PassRequest{
		Client: "C1", Campaign: "spring", ExternalID: "e", DisplayName: "Ana", Tier: loyalty.TierGold,
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("PK\x03\x04pass"), body)
}

func TestFetchPassUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "").FetchPass(context.Background(), PassRequest{Client: "C1", Campaign: "spring"})
	assert.Error(t, err)
}

func TestFetchPassNotConfigured(t *testing.T) {
	_, err := NewClient("", "").FetchPass(context.Background(), PassRequest{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
