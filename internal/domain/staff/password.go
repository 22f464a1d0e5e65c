package staff

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrWeakPassword = errors.New("password must be at least 8 characters long and contain both letters and numbers")
	ErrInvalidEmail = errors.New("invalid email format")
	ErrInvalidRole  = errors.New("role must be admin or staff")
	ErrNoPassword   = errors.New("this account uses Google sign-in")
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func IsPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLetter := false
	hasDigit := false
	for _, c := range password {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
			hasLetter = true
		case '0' <= c && c <= '9':
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

func IsEmailValid(email string) bool {
	return emailPattern.MatchString(email)
}

// NewLocalUser validates the input and returns an unsaved password account.
func NewLocalUser(name, email, password, role string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !IsEmailValid(email) {
		return User{}, ErrInvalidEmail
	}
	if role == "" {
		role = RoleStaff
	}
	if !IsValidRole(role) {
		return User{}, ErrInvalidRole
	}
	if !IsPasswordStrong(password) {
		return User{}, ErrWeakPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	h := string(hashed)

	return User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		Password:     &h,
		AuthProvider: "local",
		Role:         role,
	}, nil
}

// CheckPassword compares against the stored bcrypt hash.
func (u User) CheckPassword(password string) error {
	if u.Password == nil || *u.Password == "" {
		return ErrNoPassword
	}
	return bcrypt.CompareHashAndPassword([]byte(*u.Password), []byte(password))
}
