package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"loyalty-wallet/internal/domain/staff"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// TokenTTL is the lifetime of a staff session token.
const TokenTTL = 24 * time.Hour

type Handler struct {
	DB        *gorm.DB
	JWTSecret string
	Google    *GoogleSignIn
}

type StaffDTO struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	AuthProvider string `json:"auth_provider"`
}

func toStaffDTO(u staff.User) StaffDTO {
	return StaffDTO{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, AuthProvider: u.AuthProvider}
}

// POST /auth/login
func (h *Handler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user staff.User
	err := h.DB.WithContext(c.Request.Context()).
		Where("email = ?", strings.ToLower(strings.TrimSpace(input.Email))).
		First(&user).Error
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := user.CheckPassword(input.Password); err != nil {
		if errors.Is(err, staff.ErrNoPassword) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "This account uses Google sign-in"})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	tokenString, err := IssueToken(h.JWTSecret, user, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": tokenString, "user": toStaffDTO(user)})
}

// GET /me
func (h *Handler) Me(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user staff.User
	if err := h.DB.WithContext(c.Request.Context()).First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, toStaffDTO(user))
}

// IssueToken signs the staff session JWT read by the auth middleware.
func IssueToken(secret string, user staff.User, now time.Time) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"iat":     now.Unix(),
		"exp":     now.Add(TokenTTL).Unix(),
	})
	return t.SignedString([]byte(secret))
}
