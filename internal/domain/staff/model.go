package staff

import "time"

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

type User struct {
	ID           uint `gorm:"primaryKey"`
	Name         string
	Email        string  `gorm:"not null;uniqueIndex:idx_staff_users_email"`
	Password     *string `gorm:""`
	AuthProvider string  `gorm:"type:varchar(20);not null;default:'local'"`
	GoogleSub    *string `gorm:"uniqueIndex:idx_staff_users_google_sub"`
	Role         string  `gorm:"type:varchar(20);not null;default:'staff'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string { return "staff_users" }

func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleStaff
}
