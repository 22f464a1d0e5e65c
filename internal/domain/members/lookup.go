package members

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

type LookupStatus int

const (
	LookupFound LookupStatus = iota
	LookupNotFound
	LookupFailed
)

func (s LookupStatus) String() string {
	switch s {
	case LookupFound:
		return "found"
	case LookupNotFound:
		return "not_found"
	default:
		return "failed"
	}
}

// Identity is the part of a member record needed to issue a pass.
type Identity struct {
	ExternalID   string
	DisplayName  string
	CustomerType string
}

// LookupResult is Ok(Identity) | NotFound | Failed(Err).
type LookupResult struct {
	Status   LookupStatus
	Identity Identity
	Err      error
}

func Found(id Identity) LookupResult { return LookupResult{Status: LookupFound, Identity: id} }

func NotFound() LookupResult { return LookupResult{Status: LookupNotFound} }

func Failed(err error) LookupResult { return LookupResult{Status: LookupFailed, Err: err} }

// FallbackIdentity is used when enrichment gives nothing: the raw client
// identifier doubles as external id and display name.
func FallbackIdentity(client string) Identity {
	return Identity{ExternalID: client, DisplayName: client}
}

// IdentityOf projects a stored member onto the pass identity.
func IdentityOf(m Member) Identity {
	ext := strings.TrimSpace(m.ExternalID)
	if ext == "" {
		ext = m.Client
	}
	return Identity{
		ExternalID:   ext,
		DisplayName:  m.DisplayName(),
		CustomerType: m.CustomerType,
	}
}

// Directory looks members up in the database.
//
// IMPORTANT: pass db in, do NOT import loyalty-wallet/database here (avoids import cycle).
type Directory struct {
	DB *gorm.DB
}

func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{DB: db}
}

func (d *Directory) Lookup(ctx context.Context, client, campaign string) LookupResult {
	if d == nil || d.DB == nil {
		return Failed(errors.New("member directory not configured"))
	}

	var m Member
	err := d.DB.WithContext(ctx).
		Where("client = ? AND campaign = ?", client, campaign).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound()
	}
	if err != nil {
		return Failed(fmt.Errorf("lookup member %s/%s: %w", client, campaign, err))
	}
	return Found(IdentityOf(m))
}
