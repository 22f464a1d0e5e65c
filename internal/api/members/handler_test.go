package members

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"loyalty-wallet/internal/domain/members"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestResolveLink(t *testing.T) {
	link := ResolveLink("https://cards.example.com/", "Café & Co", "spring 2026")

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "cards.example.com", u.Host)
	assert.Equal(t, "/wallet/resolve", u.Path)
	assert.Equal(t, "Café & Co", u.Query().Get("client"))
	assert.Equal(t, "spring 2026", u.Query().Get("campaign"))
}

func TestToDTOComputesTier(t *testing.T) {
	dto := toDTO(members.Member{ID: 4, Client: "C1", Campaign: "spring", CustomerType: "GOLD 15%"})
	assert.Equal(t, "gold", dto.Tier)

	dto = toDTO(members.Member{Client: "C1", Campaign: "spring", CustomerType: "standard"})
	assert.Equal(t, "blue", dto.Tier)
}

func TestUpdateInputOnlyTouchesProvidedFields(t *testing.T) {
	m := members.Member{Name: "Ana", Email: "ana@x.com", CustomerType: "blue", Points: 10}
	gold := "gold"
	zero := 0
	email := "  Ana.Diaz@Example.COM "

	updateInput{CustomerType: &gold, Points: &zero}.apply(&m)

	assert.Equal(t, "Ana", m.Name)
	assert.Equal(t, "ana@x.com", m.Email)
	assert.Equal(t, "gold", m.CustomerType)
	assert.Equal(t, 0, m.Points)

	updateInput{Email: &email}.apply(&m)
	assert.Equal(t, "ana.diaz@example.com", m.Email)
}

func TestPageParams(t *testing.T) {
	cases := map[string][2]int{
		"":                   {1, defaultLimit},
		"?page=3&limit=20":   {3, 20},
		"?page=-1&limit=0":   {1, defaultLimit},
		"?page=x&limit=9999": {1, maxLimit},
	}
	for query, want := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/members"+query, nil)

		page, limit := pageParams(c)
		assert.Equal(t, want[0], page, query)
		assert.Equal(t, want[1], limit, query)
	}
}

func TestTierLabel(t *testing.T) {
	assert.Equal(t, "Gold", tierLabel("gold"))
	assert.Equal(t, "", tierLabel(""))
}

// The cases below are rejected before the database is touched.
func TestHandlerRejectsBadInput(t *testing.T) {
	h := &Handler{}
	r := gin.New()
	r.POST("/members", h.Create)
	r.GET("/members/:id", h.Get)
	r.DELETE("/members/:id", h.Delete)
	r.POST("/members/import", h.Import)

	do := func(req *http.Request) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	req := httptest.NewRequest(http.MethodPost, "/members", strings.NewReader(`{"client":"C1"}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, do(req), "campaign is required")

	req = httptest.NewRequest(http.MethodPost, "/members", strings.NewReader(`{"client":"C1","campaign":"s","email":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, do(req), "email must be valid")

	assert.Equal(t, http.StatusBadRequest, do(httptest.NewRequest(http.MethodGet, "/members/abc", nil)))
	assert.Equal(t, http.StatusBadRequest, do(httptest.NewRequest(http.MethodDelete, "/members/0", nil)))

	req = httptest.NewRequest(http.MethodPost, "/members/import", nil)
	assert.Equal(t, http.StatusBadRequest, do(req), "missing file")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "members.pdf")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("%PDF"))
	require.NoError(t, mw.Close())
	req = httptest.NewRequest(http.MethodPost, "/members/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, do(req), "unsupported extension")
}
