package googlewallet

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"loyalty-wallet/internal/domain/loyalty"
	"loyalty-wallet/internal/domain/wallet"

	"github.com/golang-jwt/jwt/v5"
)

const SaveURLPrefix = "https://pay.google.com/gp/v/save/"

var nonObjectID = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type Barcode struct {
	Type          string `json:"type"`
	Value         string `json:"value"`
	AlternateText string `json:"alternateText,omitempty"`
}

type TextModule struct {
	ID     string `json:"id"`
	Header string `json:"header"`
	Body   string `json:"body"`
}

type LoyaltyObject struct {
	ID              string       `json:"id"`
	ClassID         string       `json:"classId"`
	State           string       `json:"state"`
	AccountID       string       `json:"accountId"`
	AccountName     string       `json:"accountName"`
	Barcode         *Barcode     `json:"barcode,omitempty"`
	TextModulesData []TextModule `json:"textModulesData,omitempty"`
}

type savePayload struct {
	LoyaltyObjects []LoyaltyObject `json:"loyaltyObjects"`
}

type saveClaims struct {
	Typ     string      `json:"typ"`
	Origins []string    `json:"origins,omitempty"`
	Payload savePayload `json:"payload"`
	jwt.RegisteredClaims
}

// Linker builds "Save to Google Wallet" links signed with the service-account key.
type Linker struct {
	Classes loyalty.WalletClasses
	Account *ServiceAccount
	Origins []string

	now func() time.Time
}

func NewLinker(classes loyalty.WalletClasses, account *ServiceAccount, origins []string) *Linker {
	return &Linker{Classes: classes, Account: account, Origins: origins, now: time.Now}
}

// ObjectID is stable per client+campaign so re-saving updates the same object.
func (l *Linker) ObjectID(client, campaign string) string {
	suffix := nonObjectID.ReplaceAllString(client+"-"+campaign, "_")
	return l.Classes.IssuerID + "." + strings.Trim(suffix, "_")
}

func (l *Linker) SaveURL(p wallet.SaveURLParams) (string, error) {
	if l.Account == nil || l.Account.Key == nil {
		return "", errors.New("google wallet service account not configured")
	}

	tier := p.Tier
	if tier == "" {
		tier = loyalty.DefaultTier
	}

	obj := LoyaltyObject{
		ID:          l.ObjectID(p.Client, p.Campaign),
		ClassID:     l.Classes.ClassIDForTier(tier),
		State:       "ACTIVE",
		AccountID:   p.ExternalID,
		AccountName: p.DisplayName,
		Barcode: &Barcode{
			Type:          "QR_CODE",
			Value:         p.ExternalID,
			AlternateText: p.Client,
		},
		TextModulesData: []TextModule{
			{ID: "campaign", Header: "Campaign", Body: p.Campaign},
			{ID: "tier", Header: "Tier", Body: strings.ToUpper(string(tier))},
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodRS256, saveClaims{
		Typ:     "savetowallet",
		Origins: l.Origins,
		Payload: savePayload{LoyaltyObjects: []LoyaltyObject{obj}},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   l.Account.Email,
			Audience: jwt.ClaimStrings{"google"},
			IssuedAt: jwt.NewNumericDate(l.now()),
		},
	})
	if l.Account.KeyID != "" {
		t.Header["kid"] = l.Account.KeyID
	}

	signed, err := t.SignedString(l.Account.Key)
	if err != nil {
		return "", fmt.Errorf("sign save jwt: %w", err)
	}
	return SaveURLPrefix + signed, nil
}
