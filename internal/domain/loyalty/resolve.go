package loyalty

import "strings"

// Source names which signal decided a tier.
type Source string

const (
	SourceQuery        Source = "query"
	SourceBody         Source = "body"
	SourceCustomerType Source = "customer_type"
	SourceDefault      Source = "default"
)

// ResolutionInput bundles every tier signal of a request. All fields are optional.
type ResolutionInput struct {
	CustomerType string // free text from member data (tipoCliente)
	Campaign     string
	QueryTier    string
	BodyTier     string
}

// TierFromAll picks the canonical tier for a request.
// Priority:
// 1. QueryTier, strict
// 2. BodyTier, strict
// 3. CustomerType, loose (CRM free text like "Gold 15%")
// 4. DefaultTier
func TierFromAll(in ResolutionInput) Tier {
	t, _ := ResolveTier(in)
	return t
}

// ResolveTier is TierFromAll plus the source that won.
//
// A present explicit override is final even when unrecognized: "platinum"
// resolves to DefaultTier at that level instead of falling through.
func ResolveTier(in ResolutionInput) (Tier, Source) {
	if present(in.QueryTier) {
		return NormalizeTier(in.QueryTier, NormalizeOptions{}), SourceQuery
	}
	if present(in.BodyTier) {
		return NormalizeTier(in.BodyTier, NormalizeOptions{}), SourceBody
	}
	if present(in.CustomerType) {
		return NormalizeTier(in.CustomerType, NormalizeOptions{Loose: true}), SourceCustomerType
	}
	return DefaultTier, SourceDefault
}

func present(s string) bool {
	return strings.TrimSpace(s) != ""
}
