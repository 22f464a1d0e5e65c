package wallet

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"loyalty-wallet/internal/domain/loyalty"
	"loyalty-wallet/internal/domain/members"
)

// PassTokenTTL is the lifetime of the Apple download token.
const PassTokenTTL = 15 * time.Minute

// DefaultApplePassPath is where Apple tokens are redeemed.
const DefaultApplePassPath = "/api/wallet/ios"

// ErrMissingIdentifiers rejects a request before any external call.
var ErrMissingIdentifiers = errors.New("client and campaign are required")

// DispatchError wraps an unexpected failure while building a redirect.
type DispatchError struct {
	Platform Platform
	Err      error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("%s dispatch failed: %v", e.Platform, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }

// PassClaims are the claims carried by an Apple download token.
type PassClaims struct {
	Client   string
	Campaign string
}

type MemberLookup interface {
	Lookup(ctx context.Context, client, campaign string) members.LookupResult
}

type TokenSigner interface {
	Sign(claims PassClaims, ttl time.Duration) (string, error)
}

// SaveURLParams is everything needed to build a Google Wallet save link.
type SaveURLParams struct {
	Client      string
	Campaign    string
	ExternalID  string
	DisplayName string
	Tier        loyalty.Tier
}

type SaveLinker interface {
	SaveURL(p SaveURLParams) (string, error)
}

// ResolveRequest is one inbound /wallet/resolve call.
type ResolveRequest struct {
	Client    string
	Campaign  string
	Platform  string
	UserAgent string
	QueryTier string
	BodyTier  string
	Name      string
}

// Redirect is where the browser is sent.
type Redirect struct {
	Platform Platform
	URL      string
	// Tier is set on the Google branch only.
	Tier       loyalty.Tier
	TierSource loyalty.Source
	Enrichment members.LookupStatus
}

type Dispatcher struct {
	Lookup        MemberLookup
	Signer        TokenSigner
	Linker        SaveLinker
	ApplePassPath string
}

func NewDispatcher(lookup MemberLookup, signer TokenSigner, linker SaveLinker) *Dispatcher {
	return &Dispatcher{
		Lookup:        lookup,
		Signer:        signer,
		Linker:        linker,
		ApplePassPath: DefaultApplePassPath,
	}
}

// Resolve validates, enriches, picks a platform and builds the redirect.
// Enrichment failures never abort; signer or linker failures come back as
// *DispatchError.
func (d *Dispatcher) Resolve(ctx context.Context, req ResolveRequest) (Redirect, error) {
	client := strings.TrimSpace(req.Client)
	campaign := strings.TrimSpace(req.Campaign)
	if client == "" || campaign == "" {
		return Redirect{}, ErrMissingIdentifiers
	}

	identity, status := Enrich(ctx, d.Lookup, client, campaign)
	if name := strings.TrimSpace(req.Name); name != "" {
		identity.DisplayName = name
	}

	if SelectPlatform(req.Platform, req.UserAgent) == PlatformApple {
		target, err := d.appleRedirect(client, campaign, firstPresent(req.QueryTier, req.BodyTier))
		if err != nil {
			return Redirect{}, &DispatchError{Platform: PlatformApple, Err: err}
		}
		return Redirect{Platform: PlatformApple, URL: target, Enrichment: status}, nil
	}

	tier, source := loyalty.ResolveTier(loyalty.ResolutionInput{
		CustomerType: identity.CustomerType,
		Campaign:     campaign,
		QueryTier:    req.QueryTier,
		BodyTier:     req.BodyTier,
	})

	if d.Linker == nil {
		return Redirect{}, &DispatchError{Platform: PlatformGoogle, Err: errors.New("save linker not configured")}
	}
	target, err := d.Linker.SaveURL(SaveURLParams{
		Client:      client,
		Campaign:    campaign,
		ExternalID:  identity.ExternalID,
		DisplayName: identity.DisplayName,
		Tier:        tier,
	})
	if err != nil {
		return Redirect{}, &DispatchError{Platform: PlatformGoogle, Err: err}
	}

	return Redirect{
		Platform:   PlatformGoogle,
		URL:        target,
		Tier:       tier,
		TierSource: source,
		Enrichment: status,
	}, nil
}

// Enrich looks the member up and degrades to the fallback identity on
// NotFound or Failed. It never returns an error.
func Enrich(ctx context.Context, lookup MemberLookup, client, campaign string) (members.Identity, members.LookupStatus) {
	fallback := members.FallbackIdentity(client)
	if lookup == nil {
		return fallback, members.LookupNotFound
	}

	res := lookup.Lookup(ctx, client, campaign)
	switch res.Status {
	case members.LookupFound:
		id := res.Identity
		if strings.TrimSpace(id.ExternalID) == "" {
			id.ExternalID = fallback.ExternalID
		}
		if strings.TrimSpace(id.DisplayName) == "" {
			id.DisplayName = fallback.DisplayName
		}
		return id, res.Status
	case members.LookupNotFound:
		return fallback, res.Status
	default:
		log.Printf("⚠️ member lookup failed for %s/%s, using fallback identity: %v", client, campaign, res.Err)
		return fallback, members.LookupFailed
	}
}

func (d *Dispatcher) appleRedirect(client, campaign, tier string) (string, error) {
	if d.Signer == nil {
		return "", errors.New("token signer not configured")
	}
	token, err := d.Signer.Sign(PassClaims{Client: client, Campaign: campaign}, PassTokenTTL)
	if err != nil {
		return "", err
	}

	base := d.ApplePassPath
	if base == "" {
		base = DefaultApplePassPath
	}
	target := strings.TrimRight(base, "/") + "/" + url.PathEscape(token)
	if tier != "" {
		target += "?tier=" + url.QueryEscape(tier)
	}
	return target, nil
}

func firstPresent(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
