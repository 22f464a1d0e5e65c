package wallet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"loyalty-wallet/internal/domain/loyalty"
	"loyalty-wallet/internal/domain/wallet"
	"loyalty-wallet/internal/infra/passservice"

	"github.com/gin-gonic/gin"
)

type Resolver interface {
	Resolve(ctx context.Context, req wallet.ResolveRequest) (wallet.Redirect, error)
}

type TokenVerifier interface {
	Verify(token string) (wallet.PassClaims, error)
}

type PassFetcher interface {
	FetchPass(ctx context.Context, req passservice.PassRequest) ([]byte, error)
}

type DispatchRecorder interface {
	RecordDispatch(platform, tier string)
}

type Handler struct {
	Resolver Resolver
	Lookup   wallet.MemberLookup
	Tokens   TokenVerifier
	Passes   PassFetcher
	Metrics  DispatchRecorder
}

type resolveBody struct {
	Client   string `json:"client" form:"client"`
	Campaign string `json:"campaign" form:"campaign"`
	Platform string `json:"platform" form:"platform"`
	Tier     string `json:"tier" form:"tier"`
	Name     string `json:"name" form:"name"`
}

// GET|POST /wallet/resolve
func (h *Handler) Resolve(c *gin.Context) {
	req := wallet.ResolveRequest{
		Client:    c.Query("client"),
		Campaign:  c.Query("campaign"),
		Platform:  c.Query("platform"),
		UserAgent: c.Request.UserAgent(),
		QueryTier: c.Query("tier"),
		Name:      c.Query("name"),
	}

	if c.Request.Method == http.MethodPost {
		var body resolveBody
		if err := c.ShouldBind(&body); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		req.Client = firstNonEmpty(body.Client, req.Client)
		req.Campaign = firstNonEmpty(body.Campaign, req.Campaign)
		req.Platform = firstNonEmpty(body.Platform, req.Platform)
		req.Name = firstNonEmpty(body.Name, req.Name)
		req.BodyTier = body.Tier
	}

	warnUnknownTier("query", req.QueryTier)
	warnUnknownTier("body", req.BodyTier)

	redirect, err := h.Resolver.Resolve(c.Request.Context(), req)
	if errors.Is(err, wallet.ErrMissingIdentifiers) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client and campaign are required"})
		return
	}
	if err != nil {
		log.Printf("❌ wallet resolve %s/%s: %v", req.Client, req.Campaign, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not prepare your wallet pass"})
		return
	}

	if redirect.Platform == wallet.PlatformGoogle {
		log.Printf("🎫 google pass %s/%s tier=%s (from %s, member %s)",
			req.Client, req.Campaign, redirect.Tier, redirect.TierSource, redirect.Enrichment)
	}
	if h.Metrics != nil {
		h.Metrics.RecordDispatch(string(redirect.Platform), string(redirect.Tier))
	}

	c.Redirect(http.StatusFound, redirect.URL)
}

// GET /api/wallet/ios/:token
func (h *Handler) ApplePass(c *gin.Context) {
	claims, err := h.Tokens.Verify(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired link"})
		return
	}

	ctx := c.Request.Context()
	identity, _ := wallet.Enrich(ctx, h.Lookup, claims.Client, claims.Campaign)
	tier := loyalty.TierFromAll(loyalty.ResolutionInput{
		CustomerType: identity.CustomerType,
		Campaign:     claims.Campaign,
		QueryTier:    c.Query("tier"),
	})

	pkpass, err := h.Passes.FetchPass(ctx, passservice.PassRequest{
		Client:      claims.Client,
		Campaign:    claims.Campaign,
		ExternalID:  identity.ExternalID,
		DisplayName: identity.DisplayName,
		Tier:        tier,
	})
	if errors.Is(err, passservice.ErrNotConfigured) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Apple Wallet passes are not available"})
		return
	}
	if err != nil {
		log.Printf("❌ apple pass %s/%s: %v", claims.Client, claims.Campaign, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not generate your pass"})
		return
	}

	if h.Metrics != nil {
		h.Metrics.RecordDispatch(string(wallet.PlatformApple), string(tier))
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pkpass"`, tier))
	c.Data(http.StatusOK, passservice.PKPassContentType, pkpass)
}

// warnUnknownTier flags explicit overrides that will collapse to the default tier.
func warnUnknownTier(source, raw string) {
	if strings.TrimSpace(raw) != "" && !loyalty.IsKnownTier(raw) {
		log.Printf("⚠️ unknown %s tier %q, using %s", source, raw, loyalty.DefaultTier)
	}
}

func firstNonEmpty(s ...string) string {
	for _, v := range s {
		if v != "" {
			return v
		}
	}
	return ""
}
