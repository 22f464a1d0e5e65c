package passservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"loyalty-wallet/internal/domain/loyalty"

	"github.com/go-resty/resty/v2"
)

const PKPassContentType = "application/vnd.apple.pkpass"

var ErrNotConfigured = errors.New("apple pass service not configured")

type PassRequest struct {
	Client      string
	Campaign    string
	ExternalID  string
	DisplayName string
	Tier        loyalty.Tier
}

// Client fetches signed .pkpass bundles from the pass generation service.
type Client struct {
	http    *resty.Client
	enabled bool
}

func NewClient(baseURL, apiKey string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(20 * time.Second)
	if apiKey != "" {
		c.SetAuthToken(apiKey)
	}
	return &Client{http: c, enabled: baseURL != ""}
}

func (c *Client) FetchPass(ctx context.Context, req PassRequest) ([]byte, error) {
	if c == nil || !c.enabled {
		return nil, ErrNotConfigured
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", PKPassContentType).
		SetQueryParams(map[string]string{
			"client":     req.Client,
			"campaign":   req.Campaign,
			"externalId": req.ExternalID,
			"name":       req.DisplayName,
			"tier":       string(req.Tier),
		}).
		Get("/passes")
	if err != nil {
		return nil, fmt.Errorf("fetch pass: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("fetch pass: status %d", resp.StatusCode())
	}
	return resp.Body(), nil
}
