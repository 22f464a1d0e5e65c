package admin

import (
	"context"
	"errors"
	"log"
	"net/http"

	"loyalty-wallet/internal/domain/loyalty"
	"loyalty-wallet/internal/domain/members"
	"loyalty-wallet/internal/domain/staff"
	"loyalty-wallet/internal/infra/googlewallet"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ClassSyncer interface {
	EnsureClasses(ctx context.Context) ([]googlewallet.SyncResult, error)
}

type Handler struct {
	DB *gorm.DB
	// nil when Google Wallet credentials are missing
	Classes ClassSyncer
}

type AdminStats struct {
	TotalMembers    int64            `json:"total_members"`
	TotalCampaigns  int64            `json:"total_campaigns"`
	PassesSent      int64            `json:"passes_sent"`
	MembersPerTier  map[string]int64 `json:"members_per_tier"`
	WalletClassSync bool             `json:"wallet_class_sync"`
}

type customerTypeCount struct {
	CustomerType string
	Count        int64
}

// GET /admin/dashboard
func (h *Handler) Dashboard(c *gin.Context) {
	db := h.DB.WithContext(c.Request.Context())
	stats := AdminStats{WalletClassSync: h.Classes != nil}

	if err := db.Model(&members.Member{}).Count(&stats.TotalMembers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}
	if err := db.Model(&members.Member{}).Distinct("campaign").Count(&stats.TotalCampaigns).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}
	if err := db.Model(&members.Member{}).Where("pass_sent_at IS NOT NULL").Count(&stats.PassesSent).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}

	var counts []customerTypeCount
	err := db.Model(&members.Member{}).
		Select("customer_type, COUNT(id) as count").
		Group("customer_type").
		Scan(&counts).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}
	stats.MembersPerTier = foldTiers(counts)

	c.JSON(http.StatusOK, stats)
}

// foldTiers maps raw CRM customer types onto tiers.
func foldTiers(counts []customerTypeCount) map[string]int64 {
	out := make(map[string]int64, len(loyalty.AllTiers))
	for _, t := range loyalty.AllTiers {
		out[string(t)] = 0
	}
	for _, c := range counts {
		tier := loyalty.TierFromAll(loyalty.ResolutionInput{CustomerType: c.CustomerType})
		out[string(tier)] += c.Count
	}
	return out
}

// POST /admin/wallet/classes/sync
func (h *Handler) SyncClasses(c *gin.Context) {
	if h.Classes == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google Wallet is not configured"})
		return
	}

	results, err := h.Classes.EnsureClasses(c.Request.Context())
	if err != nil {
		log.Println("❌ wallet class sync:", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Wallet class sync failed", "classes": results})
		return
	}

	log.Printf("✅ wallet classes in sync (%d tiers)", len(results))
	c.JSON(http.StatusOK, gin.H{"classes": results})
}

// POST /admin/staff
func (h *Handler) CreateStaff(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := staff.NewLocalUser(input.Name, input.Email, input.Password, input.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.DB.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already exists"})
			return
		}
		log.Println("❌ DB Insert Error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create staff user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "email": user.Email, "role": user.Role})
}

// GET /admin/staff
func (h *Handler) ListStaff(c *gin.Context) {
	var list []staff.User
	if err := h.DB.WithContext(c.Request.Context()).Order("created_at ASC").Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load staff"})
		return
	}

	out := make([]gin.H, 0, len(list))
	for _, u := range list {
		out = append(out, gin.H{"id": u.ID, "name": u.Name, "email": u.Email, "role": u.Role, "auth_provider": u.AuthProvider})
	}
	c.JSON(http.StatusOK, out)
}
