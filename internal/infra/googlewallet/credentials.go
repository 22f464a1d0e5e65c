package googlewallet

import (
	"context"
	"crypto/rsa"
	"fmt"
	"net/http"
	"os"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2/google"
)

// Scope needed for the Wallet Objects REST API.
const Scope = "https://www.googleapis.com/auth/wallet_object.issuer"

// ServiceAccount holds the parsed Google service-account key.
type ServiceAccount struct {
	Email string
	KeyID string
	Key   *rsa.PrivateKey

	// HTTPClient is authorized for Scope.
	HTTPClient *http.Client
}

func LoadServiceAccount(ctx context.Context, path string) (*ServiceAccount, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return ParseServiceAccount(ctx, data)
}

func ParseServiceAccount(ctx context.Context, data []byte) (*ServiceAccount, error) {
	cfg, err := google.JWTConfigFromJSON(data, Scope)
	if err != nil {
		return nil, fmt.Errorf("parse service account: %w", err)
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("parse service account private key: %w", err)
	}

	return &ServiceAccount{
		Email:      cfg.Email,
		KeyID:      cfg.PrivateKeyID,
		Key:        key,
		HTTPClient: cfg.Client(ctx),
	}, nil
}
