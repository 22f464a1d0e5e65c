package members

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"loyalty-wallet/internal/domain/members"
	"loyalty-wallet/internal/importer"
	"loyalty-wallet/internal/infra/mail"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// maxImportSize caps uploaded CSV/XLSX files.
const maxImportSize = 10 << 20

type Mailer interface {
	Send(to, subject, htmlBody string) (string, error)
}

type EmailRecorder interface {
	RecordPassEmail(transport, status string)
}

type Handler struct {
	DB            *gorm.DB
	Mailer        Mailer
	Metrics       EmailRecorder
	PublicBaseURL string
	ProgramName   string
}

// GET /members?q=&campaign=&page=&limit=
func (h *Handler) List(c *gin.Context) {
	page, limit := pageParams(c)
	query := memberSearchQuery(h.DB.WithContext(c.Request.Context()), c.Query("q"), c.Query("campaign"))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count members"})
		return
	}

	var list []members.Member
	if err := query.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load members"})
		return
	}

	out := ListResponse{Items: make([]MemberDTO, 0, len(list)), Total: total, Page: page, Limit: limit}
	for _, m := range list {
		out.Items = append(out.Items, toDTO(m))
	}
	c.JSON(http.StatusOK, out)
}

// GET /members/:id
func (h *Handler) Get(c *gin.Context) {
	m, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toDTO(m))
}

// POST /members
func (h *Handler) Create(c *gin.Context) {
	var input createInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m := members.Member{
		Client:       strings.TrimSpace(input.Client),
		Campaign:     strings.TrimSpace(input.Campaign),
		ExternalID:   strings.TrimSpace(input.ExternalID),
		Name:         input.Name,
		Lastname:     input.Lastname,
		Email:        normalizeEmail(input.Email),
		Tel:          input.Tel,
		CustomerType: input.CustomerType,
		Points:       input.Points,
	}
	if m.ExternalID == "" {
		m.ExternalID = uuid.NewString()
	}

	if err := h.DB.WithContext(c.Request.Context()).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "A member already exists for this client and campaign"})
			return
		}
		log.Println("❌ DB Insert Error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create member"})
		return
	}

	c.JSON(http.StatusCreated, toDTO(m))
}

// PUT /members/:id
func (h *Handler) Update(c *gin.Context) {
	m, ok := h.load(c)
	if !ok {
		return
	}

	var input updateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input.apply(&m)

	if err := h.DB.WithContext(c.Request.Context()).Save(&m).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update member"})
		return
	}
	c.JSON(http.StatusOK, toDTO(m))
}

// DELETE /members/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid member id"})
		return
	}

	res := h.DB.WithContext(c.Request.Context()).Delete(&members.Member{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete member"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Member deleted"})
}

// POST /members/import (multipart "file")
func (h *Handler) Import(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
		return
	}
	if fh.Size > maxImportSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
		return
	}
	switch strings.ToLower(filepath.Ext(fh.Filename)) {
	case ".csv", ".xlsx":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only .csv and .xlsx files are supported"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read file"})
		return
	}
	defer f.Close()

	batch, err := importer.Parse(fh.Filename, f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stats, err := importer.Apply(h.DB.WithContext(c.Request.Context()), batch)
	if err != nil {
		log.Println("❌ import failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Import failed, no rows were saved"})
		return
	}

	log.Printf("📥 imported %s: %d created, %d updated, %d skipped", fh.Filename, stats.Created, stats.Updated, stats.Skipped)
	c.JSON(http.StatusOK, stats)
}

// GET /members/export?q=&campaign=
func (h *Handler) Export(c *gin.Context) {
	var list []members.Member
	err := memberSearchQuery(h.DB.WithContext(c.Request.Context()), c.Query("q"), c.Query("campaign")).
		Order("campaign ASC, client ASC").
		Find(&list).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load members"})
		return
	}

	filename := fmt.Sprintf("members-%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Status(http.StatusOK)
	if err := importer.WriteCSV(c.Writer, list); err != nil {
		log.Println("❌ export write:", err)
	}
}

// POST /members/:id/send-pass
func (h *Handler) SendPass(c *gin.Context) {
	m, ok := h.load(c)
	if !ok {
		return
	}
	if strings.TrimSpace(m.Email) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Member has no email address"})
		return
	}

	subject, body, err := mail.RenderPassEmail(mail.PassEmailData{
		Name:        m.DisplayName(),
		ProgramName: h.ProgramName,
		Tier:        tierLabel(string(m.Tier())),
		Link:        ResolveLink(h.PublicBaseURL, m.Client, m.Campaign),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build email"})
		return
	}

	transport, err := h.Mailer.Send(m.Email, subject, body)
	if err != nil {
		h.recordEmail(transport, "failed")
		log.Printf("❌ pass email to %s: %v", m.Email, err)
		if errors.Is(err, mail.ErrNoTransport) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Email is not configured"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send email"})
		return
	}
	h.recordEmail(transport, "sent")

	now := time.Now()
	if err := h.DB.WithContext(c.Request.Context()).Model(&m).Update("pass_sent_at", now).Error; err != nil {
		log.Println("⚠️ could not store pass_sent_at:", err)
	}
	m.PassSentAt = &now

	c.JSON(http.StatusOK, gin.H{"message": "Pass sent", "transport": transport, "member": toDTO(m)})
}

// ResolveLink is the public URL a member opens to add the pass to a wallet.
func ResolveLink(baseURL, client, campaign string) string {
	q := url.Values{}
	q.Set("client", client)
	q.Set("campaign", campaign)
	return strings.TrimRight(baseURL, "/") + "/wallet/resolve?" + q.Encode()
}

func (h *Handler) load(c *gin.Context) (members.Member, bool) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid member id"})
		return members.Member{}, false
	}

	var m members.Member
	err := h.DB.WithContext(c.Request.Context()).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		return members.Member{}, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load member"})
		return members.Member{}, false
	}
	return m, true
}

func (h *Handler) recordEmail(transport, status string) {
	if h.Metrics != nil {
		h.Metrics.RecordPassEmail(transport, status)
	}
}

func tierLabel(t string) string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(t[:1]) + t[1:]
}
