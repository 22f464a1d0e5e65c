package loyalty

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTier(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		loose bool
		want  Tier
	}{
		{name: "strict exact gold uppercase", raw: "GOLD", want: TierGold},
		{name: "strict trims", raw: "  gold \t", want: TierGold},
		{name: "strict blue", raw: "Blue", want: TierBlue},
		{name: "strict rejects suffix", raw: "Gold 15%", want: TierBlue},
		{name: "strict rejects prefix text", raw: "vip gold", want: TierBlue},
		{name: "strict empty", raw: "", want: TierBlue},
		{name: "strict garbage", raw: "platinum", want: TierBlue},
		{name: "loose suffix", raw: "Gold 15%", loose: true, want: TierGold},
		{name: "loose substring", raw: "Cliente GOLD", loose: true, want: TierGold},
		{name: "loose gold beats blue", raw: "blue -> gold", loose: true, want: TierGold},
		{name: "loose blue", raw: "Blue 5%", loose: true, want: TierBlue},
		{name: "loose whitespace only", raw: "   ", loose: true, want: TierBlue},
		{name: "loose garbage", raw: "silver", loose: true, want: TierBlue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTier(tt.raw, NormalizeOptions{Loose: tt.loose})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeTier_LooseContainsGold(t *testing.T) {
	inputs := []string{"gold", "GOLD", "xxgoldxx", "Gold 20% off", "golden", "\tGoLd\n"}
	for _, in := range inputs {
		assert.Equal(t, TierGold, NormalizeTier(in, NormalizeOptions{Loose: true}), in)
	}

	others := []string{"", "g old", "blue", "bronze", "glod", "日本"}
	for _, in := range others {
		assert.Equal(t, TierBlue, NormalizeTier(in, NormalizeOptions{Loose: true}), in)
	}
}

func TestTierFromAll(t *testing.T) {
	tests := []struct {
		name       string
		in         ResolutionInput
		want       Tier
		wantSource Source
	}{
		{
			name:       "query overrides customer type",
			in:         ResolutionInput{CustomerType: "blue", QueryTier: "gold"},
			want:       TierGold,
			wantSource: SourceQuery,
		},
		{
			name:       "query beats body",
			in:         ResolutionInput{QueryTier: "blue", BodyTier: "gold"},
			want:       TierBlue,
			wantSource: SourceQuery,
		},
		{
			name:       "body used when query empty",
			in:         ResolutionInput{QueryTier: "  ", BodyTier: "GOLD", CustomerType: "blue"},
			want:       TierGold,
			wantSource: SourceBody,
		},
		{
			name:       "customer type loose match",
			in:         ResolutionInput{CustomerType: "Gold 15%"},
			want:       TierGold,
			wantSource: SourceCustomerType,
		},
		{
			name:       "nothing present",
			in:         ResolutionInput{},
			want:       TierBlue,
			wantSource: SourceDefault,
		},
		{
			name:       "unrecognized query collapses to default without falling through",
			in:         ResolutionInput{QueryTier: "platinum", CustomerType: "Gold 15%"},
			want:       TierBlue,
			wantSource: SourceQuery,
		},
		{
			name:       "explicit body is strict",
			in:         ResolutionInput{BodyTier: "Gold 15%"},
			want:       TierBlue,
			wantSource: SourceBody,
		},
		{
			name:       "campaign does not affect tier",
			in:         ResolutionInput{Campaign: "gold-campaign"},
			want:       TierBlue,
			wantSource: SourceDefault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TierFromAll(tt.in))

			tier, src := ResolveTier(tt.in)
			assert.Equal(t, tt.want, tier)
			assert.Equal(t, tt.wantSource, src)
		})
	}
}

func TestClassIDForTier(t *testing.T) {
	classes := WalletClasses{IssuerID: "3388000000012345", ClassBase: "rewards"}

	assert.Equal(t, "3388000000012345.rewards-gold", classes.ClassIDForTier(TierGold))
	assert.Equal(t, "3388000000012345.rewards-blue", classes.ClassIDForTier(TierBlue))
}

func TestIsKnownTier(t *testing.T) {
	assert.True(t, IsKnownTier(" Gold "))
	assert.True(t, IsKnownTier("blue"))
	assert.False(t, IsKnownTier("platinum"))
	assert.False(t, IsKnownTier(""))
}
