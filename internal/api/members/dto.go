package members

import (
	"strings"
	"time"

	"loyalty-wallet/internal/domain/members"
)

type MemberDTO struct {
	ID           uint       `json:"id"`
	Client       string     `json:"client"`
	Campaign     string     `json:"campaign"`
	ExternalID   string     `json:"external_id"`
	Name         string     `json:"name"`
	Lastname     string     `json:"lastname"`
	Email        string     `json:"email"`
	Tel          string     `json:"tel"`
	CustomerType string     `json:"customer_type"`
	Points       int        `json:"points"`
	Tier         string     `json:"tier"`
	PassSentAt   *time.Time `json:"pass_sent_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type ListResponse struct {
	Items []MemberDTO `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

type createInput struct {
	Client       string `json:"client" binding:"required"`
	Campaign     string `json:"campaign" binding:"required"`
	ExternalID   string `json:"external_id"`
	Name         string `json:"name"`
	Lastname     string `json:"lastname"`
	Email        string `json:"email" binding:"omitempty,email"`
	Tel          string `json:"tel"`
	CustomerType string `json:"customer_type"`
	Points       int    `json:"points" binding:"gte=0"`
}

// updateInput uses pointers so omitted fields are left untouched.
type updateInput struct {
	Name         *string `json:"name"`
	Lastname     *string `json:"lastname"`
	Email        *string `json:"email" binding:"omitempty,email"`
	Tel          *string `json:"tel"`
	CustomerType *string `json:"customer_type"`
	Points       *int    `json:"points" binding:"omitempty,gte=0"`
}

func toDTO(m members.Member) MemberDTO {
	return MemberDTO{
		ID:           m.ID,
		Client:       m.Client,
		Campaign:     m.Campaign,
		ExternalID:   m.ExternalID,
		Name:         m.Name,
		Lastname:     m.Lastname,
		Email:        m.Email,
		Tel:          m.Tel,
		CustomerType: m.CustomerType,
		Points:       m.Points,
		Tier:         string(m.Tier()),
		PassSentAt:   m.PassSentAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func (in updateInput) apply(m *members.Member) {
	if in.Name != nil {
		m.Name = *in.Name
	}
	if in.Lastname != nil {
		m.Lastname = *in.Lastname
	}
	if in.Email != nil {
		m.Email = normalizeEmail(*in.Email)
	}
	if in.Tel != nil {
		m.Tel = *in.Tel
	}
	if in.CustomerType != nil {
		m.CustomerType = *in.CustomerType
	}
	if in.Points != nil {
		m.Points = *in.Points
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
