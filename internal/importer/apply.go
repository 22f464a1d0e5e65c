package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"loyalty-wallet/internal/domain/members"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Stats is returned to the dashboard after an import.
type Stats struct {
	Imported int      `json:"imported"`
	Created  int      `json:"created"`
	Updated  int      `json:"updated"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

// Apply upserts every row by client+campaign inside one transaction.
func Apply(db *gorm.DB, b *Batch) (*Stats, error) {
	stats := &Stats{Skipped: b.Skipped, Errors: append([]string{}, b.Errors...)}

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, row := range b.Rows {
			var existing members.Member
			err := tx.Where("client = ? AND campaign = ?", row.Client, row.Campaign).First(&existing).Error

			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				m := NewMember(row)
				if err := tx.Create(&m).Error; err != nil {
					return fmt.Errorf("line %d: %w", row.Line, err)
				}
				stats.Created++
			case err != nil:
				return fmt.Errorf("line %d: %w", row.Line, err)
			default:
				Merge(&existing, row)
				if err := tx.Save(&existing).Error; err != nil {
					return fmt.Errorf("line %d: %w", row.Line, err)
				}
				stats.Updated++
			}
			stats.Imported++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// NewMember builds a record from an import row, generating an external id when absent.
func NewMember(row Row) members.Member {
	ext := row.ExternalID
	if ext == "" {
		ext = uuid.NewString()
	}
	m := members.Member{
		Client:       row.Client,
		Campaign:     row.Campaign,
		ExternalID:   ext,
		Name:         row.Name,
		Lastname:     row.Lastname,
		Email:        row.Email,
		Tel:          row.Tel,
		CustomerType: row.CustomerType,
	}
	if row.Points != nil {
		m.Points = *row.Points
	}
	return m
}

// Merge copies non-empty row values onto an existing member. Blank cells keep stored data.
func Merge(m *members.Member, row Row) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&m.ExternalID, row.ExternalID)
	set(&m.Name, row.Name)
	set(&m.Lastname, row.Lastname)
	set(&m.Email, row.Email)
	set(&m.Tel, row.Tel)
	set(&m.CustomerType, row.CustomerType)
	if row.Points != nil {
		m.Points = *row.Points
	}
}

// WriteCSV writes members with ExportHeader columns; tier is computed, not stored.
func WriteCSV(w io.Writer, list []members.Member) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return err
	}
	for _, m := range list {
		if err := cw.Write([]string{
			m.Client,
			m.Campaign,
			m.ExternalID,
			m.Name,
			m.Lastname,
			m.Email,
			m.Tel,
			m.CustomerType,
			strconv.Itoa(m.Points),
			string(m.Tier()),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
