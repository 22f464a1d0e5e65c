package googlewallet

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"loyalty-wallet/internal/domain/loyalty"
	"loyalty-wallet/internal/domain/wallet"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testClasses = loyalty.WalletClasses{IssuerID: "3388000000012345", ClassBase: "rewards"}

func testKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func TestSaveURLEmbedsTierClassAndIdentity(t *testing.T) {
	key := testKey(t)
	l := NewLinker(testClasses, &ServiceAccount{Email: "wallet@proj.iam.gserviceaccount.com", KeyID: "k1", Key: key}, []string{"https://example.com"})

	u, err := l.SaveURL(wallet.SaveURLParams{
		Client: "C 1", Campaign: "spring", ExternalID: "ext-42", DisplayName: "Ana", Tier: loyalty.TierGold,
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(u, SaveURLPrefix))

	var c saveClaims
	tok, err := jwt.ParseWithClaims(strings.TrimPrefix(u, SaveURLPrefix), &c, func(*jwt.Token) (interface{}, error) {
		return &key.PublicKey, nil
	}, jwt.WithValidMethods([]string{"RS256"}), jwt.WithAudience("google"))
	require.NoError(t, err)
	assert.True(t, tok.Valid)
	assert.Equal(t, "k1", tok.Header["kid"])

	assert.Equal(t, "savetowallet", c.Typ)
	assert.Equal(t, "wallet@proj.iam.gserviceaccount.com", c.Issuer)
	assert.Equal(t, []string{"https://example.com"}, c.Origins)
	require.Len(t, c.Payload.LoyaltyObjects, 1)

	obj := c.Payload.LoyaltyObjects[0]
	assert.Equal(t, "3388000000012345.rewards-gold", obj.ClassID)
	assert.Equal(t, "3388000000012345.C_1-spring", obj.ID)
	assert.Equal(t, "ext-42", obj.AccountID)
	assert.Equal(t, "Ana", obj.AccountName)
	assert.Equal(t, "ACTIVE", obj.State)
	assert.Equal(t, "ext-42", obj.Barcode.Value)
}

func TestSaveURLDefaultsTier(t *testing.T) {
	key := testKey(t)
	l := NewLinker(testClasses, &ServiceAccount{Email: "a@b", Key: key}, nil)

	u, err := l.SaveURL(wallet.SaveURLParams{Client: "C1", Campaign: "spring"})
	require.NoError(t, err)

	var c saveClaims
	_, err = jwt.ParseWithClaims(strings.TrimPrefix(u, SaveURLPrefix), &c, func(*jwt.Token) (interface{}, error) {
		return &key.PublicKey, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "3388000000012345.rewards-blue", c.Payload.LoyaltyObjects[0].ClassID)
}

func TestSaveURLWithoutAccount(t *testing.T) {
	_, err := NewLinker(testClasses, nil, nil).SaveURL(wallet.SaveURLParams{Client: "C1", Campaign: "spring"})
	assert.Error(t, err)
}

func TestParseServiceAccount(t *testing.T) {
	key := testKey(t)
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})

	data, err := json.Marshal(map[string]string{
		"type":           "service_account",
		"client_email":   "wallet@proj.iam.gserviceaccount.com",
		"private_key":    string(pemKey),
		"private_key_id": "abc123",
		"token_uri":      "https://oauth2.googleapis.com/token",
	})
	require.NoError(t, err)

	sa, err := ParseServiceAccount(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, "wallet@proj.iam.gserviceaccount.com", sa.Email)
	assert.Equal(t, "abc123", sa.KeyID)
	assert.True(t, key.Equal(sa.Key))
	assert.NotNil(t, sa.HTTPClient)
}

func TestParseServiceAccountInvalid(t *testing.T) {
	_, err := ParseServiceAccount(context.Background(), []byte(`{"type":"service_account"}`))
	assert.Error(t, err)
}

func TestEnsureClassesCreatesMissing(t *testing.T) {
	var mu sync.Mutex
	var inserted []LoyaltyClass

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/loyaltyClass/3388000000012345.rewards-gold"):
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"id":"3388000000012345.rewards-gold"}`))
		case r.Method == http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPost && r.URL.Path == "/loyaltyClass":
			var c LoyaltyClass
			_ = json.NewDecoder(r.Body).Decode(&c)
			mu.Lock()
			inserted = append(inserted, c)
			mu.Unlock()
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	reg := NewRegistry(srv.Client(), srv.URL, testClasses, ClassTemplate{
		IssuerName: "Acme", ProgramName: "Acme Rewards", LogoURL: "https://example.com/logo.png",
	})

	results, err := reg.EnsureClasses(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, SyncResult{Tier: loyalty.TierGold, ClassID: "3388000000012345.rewards-gold", Created: false}, results[0])
	assert.Equal(t, SyncResult{Tier: loyalty.TierBlue, ClassID: "3388000000012345.rewards-blue", Created: true}, results[1])

	require.Len(t, inserted, 1)
	assert.Equal(t, "3388000000012345.rewards-blue", inserted[0].ID)
	assert.Equal(t, "Acme Rewards Blue", inserted[0].ProgramName)
	assert.Equal(t, "https://example.com/logo.png", inserted[0].ProgramLogo.SourceURI.URI)
}

func TestEnsureClassesUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	reg := NewRegistry(srv.Client(), srv.URL, testClasses, ClassTemplate{})
	_, err := reg.EnsureClasses(context.Background())
	assert.Error(t, err)
}
