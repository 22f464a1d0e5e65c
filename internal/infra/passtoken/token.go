package passtoken

import (
	"errors"
	"fmt"
	"time"

	"loyalty-wallet/internal/domain/wallet"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired pass token")

type claims struct {
	Client   string `json:"client"`
	Campaign string `json:"campaign"`
	jwt.RegisteredClaims
}

// Signer issues and verifies the short-lived HS256 tokens behind the Apple redirect.
type Signer struct {
	secret []byte
	now    func() time.Time
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret), now: time.Now}
}

func (s *Signer) Sign(c wallet.PassClaims, ttl time.Duration) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("pass token secret not configured")
	}
	now := s.now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Client:   c.Client,
		Campaign: c.Campaign,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign pass token: %w", err)
	}
	return signed, nil
}

func (s *Signer) Verify(token string) (wallet.PassClaims, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return wallet.PassClaims{}, ErrInvalidToken
	}
	if c.Client == "" || c.Campaign == "" {
		return wallet.PassClaims{}, ErrInvalidToken
	}
	return wallet.PassClaims{Client: c.Client, Campaign: c.Campaign}, nil
}
