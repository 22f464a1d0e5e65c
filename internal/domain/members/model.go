package members

import (
	"strings"
	"time"

	"loyalty-wallet/internal/domain/loyalty"
)

type Member struct {
	ID         uint   `gorm:"primaryKey"`
	Client     string `gorm:"not null;uniqueIndex:idx_members_client_campaign"`
	Campaign   string `gorm:"not null;uniqueIndex:idx_members_client_campaign"`
	ExternalID string `gorm:"column:external_id;not null;uniqueIndex:idx_members_external_id"`

	Name     string
	Lastname string
	Email    string `gorm:"index"`
	Tel      string

	// free text from the CRM, e.g. "Gold 15%"
	CustomerType string `gorm:"column:customer_type"`
	Points       int

	PassSentAt *time.Time `gorm:"column:pass_sent_at"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName is the name printed on the pass.
func (m Member) DisplayName() string {
	full := strings.TrimSpace(m.Name + " " + m.Lastname)
	if full == "" {
		return m.Client
	}
	return full
}

// Tier is recomputed on every call; it is never stored.
func (m Member) Tier() loyalty.Tier {
	return loyalty.TierFromAll(loyalty.ResolutionInput{
		CustomerType: m.CustomerType,
		Campaign:     m.Campaign,
	})
}
