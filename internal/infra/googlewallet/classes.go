package googlewallet

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"loyalty-wallet/internal/domain/loyalty"

	"github.com/go-resty/resty/v2"
)

const DefaultAPIBaseURL = "https://walletobjects.googleapis.com/walletobjects/v1"

type Image struct {
	SourceURI struct {
		URI string `json:"uri"`
	} `json:"sourceUri"`
}

type LoyaltyClass struct {
	ID           string `json:"id"`
	IssuerName   string `json:"issuerName"`
	ProgramName  string `json:"programName"`
	ProgramLogo  *Image `json:"programLogo,omitempty"`
	ReviewStatus string `json:"reviewStatus"`
}

// ClassTemplate is the program branding shared by every tier class.
type ClassTemplate struct {
	IssuerName  string
	ProgramName string
	LogoURL     string
}

type SyncResult struct {
	Tier    loyalty.Tier `json:"tier"`
	ClassID string       `json:"class_id"`
	Created bool         `json:"created"`
}

// Registry talks to the Wallet Objects REST API.
type Registry struct {
	Classes  loyalty.WalletClasses
	Template ClassTemplate
	client   *resty.Client
}

func NewRegistry(httpClient *http.Client, baseURL string, classes loyalty.WalletClasses, tmpl ClassTemplate) *Registry {
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := resty.NewWithClient(httpClient).
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetHeader("Accept", "application/json")

	return &Registry{Classes: classes, Template: tmpl, client: c}
}

// EnsureClasses creates the loyalty class of every tier that does not exist yet.
func (r *Registry) EnsureClasses(ctx context.Context) ([]SyncResult, error) {
	out := make([]SyncResult, 0, len(loyalty.AllTiers))
	for _, tier := range loyalty.AllTiers {
		res, err := r.ensureClass(ctx, tier)
		if err != nil {
			return out, err
		}
		out = append(out, res)
	}
	return out, nil
}

func (r *Registry) ensureClass(ctx context.Context, tier loyalty.Tier) (SyncResult, error) {
	classID := r.Classes.ClassIDForTier(tier)
	res := SyncResult{Tier: tier, ClassID: classID}

	resp, err := r.client.R().
		SetContext(ctx).
		SetPathParam("id", classID).
		Get("/loyaltyClass/{id}")
	if err != nil {
		return res, fmt.Errorf("get loyalty class %s: %w", classID, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		return res, nil
	case http.StatusNotFound:
	default:
		return res, fmt.Errorf("get loyalty class %s: unexpected status %d", classID, resp.StatusCode())
	}

	class := LoyaltyClass{
		ID:           classID,
		IssuerName:   r.Template.IssuerName,
		ProgramName:  fmt.Sprintf("%s %s", r.Template.ProgramName, tierLabel(tier)),
		ReviewStatus: "UNDER_REVIEW",
	}
	if r.Template.LogoURL != "" {
		logo := &Image{}
		logo.SourceURI.URI = r.Template.LogoURL
		class.ProgramLogo = logo
	}

	resp, err = r.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(class).
		Post("/loyaltyClass")
	if err != nil {
		return res, fmt.Errorf("insert loyalty class %s: %w", classID, err)
	}
	if !resp.IsSuccess() {
		return res, fmt.Errorf("insert loyalty class %s: status %d", classID, resp.StatusCode())
	}

	res.Created = true
	return res, nil
}

func tierLabel(t loyalty.Tier) string {
	switch t {
	case loyalty.TierGold:
		return "Gold"
	default:
		return "Blue"
	}
}
