package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"leadsboard/server/internal/auth"
	"leadsboard/server/internal/models"
	"leadsboard/server/internal/normalizer"
	"leadsboard/server/internal/store"
)

func strPtr(s string) *string {
	return &s
}

func seedLead(id, baujahr, ort, bundesland string) models.RawLead {
	return models.RawLead{
		ID:         strPtr(id),
		Baujahr:    strPtr(baujahr),
		Ort:        strPtr(ort),
		Bundesland: strPtr(bundesland),
	}
}

func testRouter(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	st, err := store.Open(filepath.Join(t.TempDir(), "leads.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	require.NoError(t, st.WriteUsers([]models.User{
		{Name: "Anna Admin", Email: "admin@example.com", Password: "admin-pass", Role: models.RoleAdministrator},
		{Name: "Tom Tracker", Email: "tracker@example.com", Password: "tracker-pass", Role: models.RoleTrackingpartner},
	}))
	require.NoError(t, st.WriteLeads([]models.RawLead{
		seedLead("1", "1990", "München", "Bayern"),
		seedLead("2", "2005", "Berlin", "Berlin"),
	}))

	authService := auth.NewService("test-secret", time.Hour, bcrypt.MinCost, logger)
	handler := NewHandler(
		store.NewCached(st, time.Minute),
		normalizer.New(logger),
		authService,
		"leads-cookie",
		3600,
		logger,
	)

	router := gin.New()
	SetupRoutes(router, handler)
	return router, st
}

func login(t *testing.T, router *gin.Engine, email, password string) *http.Cookie {
	t.Helper()

	body, err := json.Marshal(gin.H{"email": email, "password": password})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "leads-cookie" {
			return cookie
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func doJSON(router *gin.Engine, method, path string, cookie *http.Cookie, body []byte) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLogin(t *testing.T) {
	router, _ := testRouter(t)

	cookie := login(t, router, "admin@example.com", "admin-pass")
	assert.NotEmpty(t, cookie.Value)

	w := doJSON(router, http.MethodPost, "/api/login", nil,
		[]byte(`{"email":"admin@example.com","password":"wrong"}`))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "username/password is incorrect")

	w = doJSON(router, http.MethodPost, "/api/login", nil, []byte(`{"email":"admin@example.com"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_HashesPlaintextOnce(t *testing.T) {
	router, st := testRouter(t)

	login(t, router, "admin@example.com", "admin-pass")

	users, err := st.ReadUsers()
	require.NoError(t, err)
	for _, u := range users {
		assert.NotEmpty(t, u.HashedPassword, u.Email)
	}

	// A second login still works against the persisted hash.
	login(t, router, "admin@example.com", "admin-pass")
}

func TestMenu(t *testing.T) {
	router, _ := testRouter(t)

	w := doJSON(router, http.MethodGet, "/api/menu", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), models.ViewLoginRequired)

	cookie := login(t, router, "tracker@example.com", "tracker-pass")
	w = doJSON(router, http.MethodGet, "/api/menu", cookie, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), models.ViewLeadsFeatures)
	assert.NotContains(t, w.Body.String(), models.ViewOverview)
}

func TestSummary_RoleGating(t *testing.T) {
	router, _ := testRouter(t)

	w := doJSON(router, http.MethodGet, "/api/summary", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	tracker := login(t, router, "tracker@example.com", "tracker-pass")
	w = doJSON(router, http.MethodGet, "/api/summary", tracker, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := login(t, router, "admin@example.com", "admin-pass")
	w = doJSON(router, http.MethodGet, "/api/summary", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Metrics struct {
			TotalLeads int `json:"total_leads"`
		} `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Metrics.TotalLeads)
}

func TestSummary_FacetFilter(t *testing.T) {
	router, _ := testRouter(t)
	admin := login(t, router, "admin@example.com", "admin-pass")

	w := doJSON(router, http.MethodGet, "/api/summary?state=Bayern", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Metrics struct {
			TotalLeads int `json:"total_leads"`
		} `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Metrics.TotalLeads)
}

func TestGetLead(t *testing.T) {
	router, _ := testRouter(t)
	admin := login(t, router, "admin@example.com", "admin-pass")

	w := doJSON(router, http.MethodGet, "/api/leads/1", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "München")

	w = doJSON(router, http.MethodGet, "/api/leads/42", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not present in the existing data")

	w = doJSON(router, http.MethodGet, "/api/leads/abc", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateLead(t *testing.T) {
	router, _ := testRouter(t)
	admin := login(t, router, "admin@example.com", "admin-pass")

	w := doJSON(router, http.MethodGet, "/api/leads/1", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Lead models.Lead `json:"lead"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	resp.Lead.Ort = "Augsburg"
	body, err := json.Marshal(resp.Lead)
	require.NoError(t, err)

	w = doJSON(router, http.MethodPost, "/api/leads", admin, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(router, http.MethodGet, "/api/leads/1", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Augsburg")
	assert.NotContains(t, w.Body.String(), "München")
}

func TestUpdateLead_RequiresID(t *testing.T) {
	router, _ := testRouter(t)
	admin := login(t, router, "admin@example.com", "admin-pass")

	w := doJSON(router, http.MethodPost, "/api/leads", admin, []byte(`{"Ort":"Augsburg"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "'Id' field")
}

func TestDropLead(t *testing.T) {
	router, _ := testRouter(t)
	admin := login(t, router, "admin@example.com", "admin-pass")

	w := doJSON(router, http.MethodDelete, "/api/leads/1", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/leads/1", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodDelete, "/api/leads/1", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not present in the existing data")
}

// importCSV builds an upload carrying every worksheet column, with only Id
// and Baujahr filled per row.
func importCSV(rows [][2]string) []byte {
	var b strings.Builder
	b.WriteString(strings.Join(models.LeadColumns, ","))
	b.WriteString("\n")

	for _, row := range rows {
		cells := make([]string, len(models.LeadColumns))
		for i, col := range models.LeadColumns {
			switch col {
			case "Id":
				cells[i] = row[0]
			case "Baujahr":
				cells[i] = row[1]
			}
		}
		b.WriteString(strings.Join(cells, ","))
		b.WriteString("\n")
	}
	return []byte(b.String())
}

func uploadFile(t *testing.T, router *gin.Engine, cookie *http.Cookie, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/leads/import", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestImportLeads(t *testing.T) {
	router, _ := testRouter(t)
	admin := login(t, router, "admin@example.com", "admin-pass")

	// Id 1 already exists and is skipped; 10 and 11 are new.
	w := uploadFile(t, router, admin, "upload.csv", importCSV([][2]string{
		{"1", "1980"},
		{"10", "1975"},
		{"11", "2010"},
	}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Added   []int64 `json:"added"`
		Skipped []int64 `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []int64{10, 11}, resp.Added)
	assert.Equal(t, []int64{1}, resp.Skipped)

	w = doJSON(router, http.MethodGet, "/api/leads/10", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// The skipped row did not overwrite the stored lead.
	w = doJSON(router, http.MethodGet, "/api/leads/1", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "München")
}

func TestImportLeads_RejectsBadUploads(t *testing.T) {
	router, _ := testRouter(t)
	admin := login(t, router, "admin@example.com", "admin-pass")

	w := uploadFile(t, router, admin, "upload.csv", []byte("Id,Ort\n1,Berlin\n"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "does not contain sufficient information")

	w = uploadFile(t, router, admin, "upload.csv", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = uploadFile(t, router, nil, "upload.csv", importCSV(nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout(t *testing.T) {
	router, _ := testRouter(t)
	admin := login(t, router, "admin@example.com", "admin-pass")

	w := doJSON(router, http.MethodPost, "/api/logout", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	cleared := false
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "leads-cookie" && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestFeatures_Narrowing(t *testing.T) {
	router, _ := testRouter(t)
	tracker := login(t, router, "tracker@example.com", "tracker-pass")

	w := doJSON(router, http.MethodGet, "/api/features?city=Berlin", tracker, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		TotalLeads int           `json:"total_leads"`
		Leads      []models.Lead `json:"leads"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.TotalLeads)
	assert.Equal(t, int64(2), resp.Leads[0].ID)

	w = doJSON(router, http.MethodGet, fmt.Sprintf("/api/features?id=%d&id=%d", 1, 2), tracker, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.TotalLeads)
}
