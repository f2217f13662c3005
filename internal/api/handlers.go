package api

import (
	"errors"
	"io"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"leadsboard/server/internal/auth"
	"leadsboard/server/internal/dataset"
	"leadsboard/server/internal/geo"
	"leadsboard/server/internal/importer"
	"leadsboard/server/internal/models"
	"leadsboard/server/internal/normalizer"
	"leadsboard/server/internal/store"
)

type Handler struct {
	store        *store.CachedStore
	norm         *normalizer.Normalizer
	auth         *auth.Service
	cookieName   string
	cookieMaxAge int
	logger       *logrus.Logger
}

func NewHandler(cached *store.CachedStore, norm *normalizer.Normalizer, authService *auth.Service, cookieName string, cookieMaxAge int, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return &Handler{
		store:        cached,
		norm:         norm,
		auth:         authService,
		cookieName:   cookieName,
		cookieMaxAge: cookieMaxAge,
		logger:       logger,
	}
}

// loadLeads fetches the raw worksheet (through the TTL cache) and runs the
// normalization pass. Each interaction re-runs this path.
func (h *Handler) loadLeads() ([]models.Lead, error) {
	raw, err := h.store.ReadLeads()
	if err != nil {
		return nil, err
	}
	return h.norm.Normalize(raw)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid login request"})
		return
	}

	users, err := h.store.ReadUsers()
	if err != nil {
		h.logger.WithError(err).Error("Failed to read users worksheet")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}

	// Credentials imported as plaintext are hashed on first use and the
	// hash is persisted; an existing hash is never recomputed.
	users, changed, err := h.auth.EnsureHashed(users)
	if err != nil {
		h.logger.WithError(err).Error("Failed to hash user credentials")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}
	if changed {
		if err := h.store.WriteUsers(users); err != nil {
			h.logger.WithError(err).Error("Failed to persist hashed credentials")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
			return
		}
	}

	user, err := h.auth.Authenticate(users, req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidCredentials.Error()})
		return
	}

	token, err := h.auth.IssueToken(user)
	if err != nil {
		h.logger.WithError(err).Error("Failed to issue session token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start session"})
		return
	}

	c.SetCookie(h.cookieName, token, h.cookieMaxAge, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
		"menu":  models.MenuForRole(user.Role),
	})
}

// Logout always clears the session cookie; a logout that fails is treated
// the same as one that succeeds.
func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie(h.cookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

func (h *Handler) Menu(c *gin.Context) {
	role := ""
	if claims := currentClaims(c); claims != nil {
		role = claims.Role
	}
	c.JSON(http.StatusOK, gin.H{"menu": models.MenuForRole(role)})
}

type viewMetrics struct {
	TotalLeads            int     `json:"total_leads"`
	TotalResidentialUnits float64 `json:"total_residential_units"`
	TotalCommercialUnits  float64 `json:"total_commercial_units"`
	AvgLivingArea         float64 `json:"avg_living_area"`
	AvgLotArea            float64 `json:"avg_lot_area"`
	AvgRooms              float64 `json:"avg_rooms"`
}

func metricsFor(leads []models.Lead) viewMetrics {
	return viewMetrics{
		TotalLeads:            dataset.Count(leads),
		TotalResidentialUnits: dataset.Sum(leads, func(l models.Lead) float64 { return l.Wohneinheiten }),
		TotalCommercialUnits:  dataset.Sum(leads, func(l models.Lead) float64 { return l.Gewerbeeinheiten }),
		AvgLivingArea:         dataset.MeanWohnflaeche(leads),
		AvgLotArea:            dataset.Mean(leads, func(l models.Lead) float64 { return l.Grundstueckflaeche }),
		AvgRooms:              dataset.Mean(leads, func(l models.Lead) float64 { return l.Zimmeranzahl }),
	}
}

func (h *Handler) filteredLeads(c *gin.Context) ([]models.Lead, bool) {
	var facets dataset.FacetFilter
	if err := c.ShouldBindQuery(&facets); err != nil {
		h.logger.WithError(err).Error("Failed to parse facet filters")
	}

	leads, err := h.loadLeads()
	if err != nil {
		h.logger.WithError(err).Error("Failed to load leads")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load leads"})
		return nil, false
	}
	return facets.Apply(leads), true
}

func (h *Handler) Summary(c *gin.Context) {
	leads, ok := h.filteredLeads(c)
	if !ok {
		return
	}

	var features dataset.FeatureFilter
	if err := c.ShouldBindQuery(&features); err != nil {
		h.logger.WithError(err).Error("Failed to parse feature filters")
	}
	featured := features.Apply(leads)

	byType := func(l models.Lead) string { return l.Objekttyp }
	c.JSON(http.StatusOK, gin.H{
		"metrics":           metricsFor(leads),
		"lead_count":        dataset.CountBy(leads, byType),
		"residential_units": dataset.SumBy(leads, byType, func(l models.Lead) float64 { return l.Wohneinheiten }),
		"commercial_units":  dataset.SumBy(leads, byType, func(l models.Lead) float64 { return l.Gewerbeeinheiten }),
		"sale_guarantees":   dataset.CountYes(leads, func(l models.Lead) string { return l.Verkaufsgarantie }),
		"leads_by_state":    dataset.CountBy(leads, func(l models.Lead) string { return l.Bundesland }),
		"leads_by_location": dataset.CountBy(leads, func(l models.Lead) string { return l.Bundesland + " / " + l.Ort }),
		"features": gin.H{
			"total_leads": dataset.Count(featured),
			"avg_floors":  dataset.Mean(featured, func(l models.Lead) float64 { return l.Etagenanzahl }),
			"avg_rooms":   dataset.Mean(featured, func(l models.Lead) float64 { return l.Zimmeranzahl }),
			"usage":       dataset.CountBy(featured, func(l models.Lead) string { return l.AktuelleNutzung }),
			"parking":     dataset.CountBy(featured, func(l models.Lead) string { return l.Parkplatz }),
			"equipment":   dataset.CountBy(featured, func(l models.Lead) string { return l.Ausstattung }),
			"house_types": dataset.CountBy(featured, func(l models.Lead) string { return l.Haustyp }),
		},
		"feature_usage": featureUsage(leads, c.DefaultQuery("analyze_by", "State")),
	})
}

// featureUsageRow carries the per-group means of the numeric measures for
// the feature usage heatmap.
type featureUsageRow struct {
	Key              string  `json:"key"`
	Wohneinheiten    float64 `json:"Wohneinheiten"`
	Gewerbeeinheiten float64 `json:"Gewerbeeinheiten"`
	Zimmeranzahl     float64 `json:"Zimmeranzahl"`
	Etagenanzahl     float64 `json:"Etagenanzahl"`
	Anhaenge         float64 `json:"Anhaenge/Dateien"`
}

func featureUsage(leads []models.Lead, analyzeBy string) []featureUsageRow {
	var key dataset.Selector
	switch analyzeBy {
	case "City":
		key = func(l models.Lead) string { return l.Ort }
	case "Postal Code":
		key = func(l models.Lead) string { return l.PostleitzahlRegion }
	default:
		key = func(l models.Lead) string { return l.Bundesland }
	}

	residential := dataset.MeanBy(leads, key, func(l models.Lead) float64 { return l.Wohneinheiten })
	commercial := dataset.MeanBy(leads, key, func(l models.Lead) float64 { return l.Gewerbeeinheiten })
	rooms := dataset.MeanBy(leads, key, func(l models.Lead) float64 { return l.Zimmeranzahl })
	floors := dataset.MeanBy(leads, key, func(l models.Lead) float64 { return l.Etagenanzahl })
	attachments := dataset.MeanBy(leads, key, func(l models.Lead) float64 { return l.Anhaenge })

	rows := make([]featureUsageRow, len(residential))
	for i := range residential {
		rows[i] = featureUsageRow{
			Key:              residential[i].Key,
			Wohneinheiten:    residential[i].Value,
			Gewerbeeinheiten: commercial[i].Value,
			Zimmeranzahl:     rooms[i].Value,
			Etagenanzahl:     floors[i].Value,
			Anhaenge:         attachments[i].Value,
		}
	}
	return rows
}

func (h *Handler) Marketing(c *gin.Context) {
	leads, ok := h.filteredLeads(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"metrics":       metricsFor(leads),
		"registrations": dataset.CountByMonth(leads),
		"channels":      dataset.CountBy(leads, func(l models.Lead) string { return l.Quelle }),
	})
}

func (h *Handler) PropertyBreakdown(c *gin.Context) {
	leads, ok := h.filteredLeads(c)
	if !ok {
		return
	}

	byType := func(l models.Lead) string { return l.Objekttyp }
	c.JSON(http.StatusOK, gin.H{
		"type_breakdown":    dataset.Pivot(leads, byType, func(l models.Lead) string { return l.Haustyp }),
		"lead_count":        dataset.CountBy(leads, byType),
		"residential_units": dataset.SumBy(leads, byType, func(l models.Lead) float64 { return l.Wohneinheiten }),
		"commercial_units":  dataset.SumBy(leads, byType, func(l models.Lead) float64 { return l.Gewerbeeinheiten }),
	})
}

func (h *Handler) Geographic(c *gin.Context) {
	leads, ok := h.filteredLeads(c)
	if !ok {
		return
	}

	var groupKey dataset.Selector
	switch c.DefaultQuery("search_by", "State") {
	case "City":
		groupKey = func(l models.Lead) string { return l.Ort }
	case "Post Code":
		groupKey = func(l models.Lead) string { return l.PostleitzahlRegion }
	default:
		groupKey = func(l models.Lead) string { return l.Bundesland }
	}

	c.JSON(http.StatusOK, gin.H{
		"listings":        dataset.CountBy(leads, func(l models.Lead) string { return l.Bundesland }),
		"avg_lot_area":    dataset.MeanBy(leads, groupKey, func(l models.Lead) float64 { return l.Grundstueckflaeche }),
		"condition_table": dataset.Pivot(leads, groupKey, func(l models.Lead) string { return l.Objektzustand }),
		"equipment_table": dataset.Pivot(leads, groupKey, func(l models.Lead) string { return l.Ausstattung }),
		"points":          geo.LeadPoints(leads),
	})
}

type featureQuery struct {
	City         string   `form:"city"`
	PostalRegion string   `form:"postal_region"`
	Names        []string `form:"name"`
	IDs          []int64  `form:"id"`
	Emails       []string `form:"email"`
}

func (h *Handler) Features(c *gin.Context) {
	var q featureQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.logger.WithError(err).Error("Failed to parse feature query")
	}
	var features dataset.FeatureFilter
	if err := c.ShouldBindQuery(&features); err != nil {
		h.logger.WithError(err).Error("Failed to parse feature filters")
	}

	leads, err := h.loadLeads()
	if err != nil {
		h.logger.WithError(err).Error("Failed to load leads")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load leads"})
		return
	}

	matched := make([]models.Lead, 0, len(leads))
	for _, l := range leads {
		if q.City != "" && l.Ort != q.City {
			continue
		}
		if q.PostalRegion != "" && l.PostleitzahlRegion != q.PostalRegion {
			continue
		}
		if len(q.Names) > 0 && !containsString(q.Names, l.Vorname) {
			continue
		}
		if len(q.IDs) > 0 && !containsInt64(q.IDs, l.ID) {
			continue
		}
		if len(q.Emails) > 0 && !containsString(q.Emails, l.Email) {
			continue
		}
		matched = append(matched, l)
	}
	matched = features.Apply(matched)

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Email != matched[j].Email {
			return matched[i].Email < matched[j].Email
		}
		return matched[i].ID < matched[j].ID
	})

	c.JSON(http.StatusOK, gin.H{
		"total_leads": len(matched),
		"avg_floors":  dataset.Mean(matched, func(l models.Lead) float64 { return l.Etagenanzahl }),
		"avg_rooms":   dataset.Mean(matched, func(l models.Lead) float64 { return l.Zimmeranzahl }),
		"leads":       matched,
	})
}

func (h *Handler) GetLead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lead Id"})
		return
	}

	leads, err := h.loadLeads()
	if err != nil {
		h.logger.WithError(err).Error("Failed to load leads")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load leads"})
		return
	}

	for _, l := range leads {
		if l.ID == id {
			c.JSON(http.StatusOK, gin.H{"lead": l, "fields": models.LeadColumns})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "The specified lead is not present in the existing data."})
}

// UpdateLead writes an edited lead back to the worksheet. The write merges
// by Id keeping the last occurrence, so the edited row replaces its
// predecessor.
func (h *Handler) UpdateLead(c *gin.Context) {
	var lead models.Lead
	if err := c.ShouldBindJSON(&lead); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lead payload"})
		return
	}
	if lead.ID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "The provided lead must contain an 'Id' field."})
		return
	}

	if err := h.store.SaveLeads([]models.RawLead{lead.ToRaw()}); err != nil {
		h.logger.WithError(err).Error("Failed to save lead")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save lead"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "Data Updated successfully!"})
}

func (h *Handler) DropLead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lead Id"})
		return
	}

	if err := h.store.DropLead(id); err != nil {
		if errors.Is(err, store.ErrLeadNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "The specified lead is not present in the existing data."})
			return
		}
		h.logger.WithError(err).Error("Failed to drop lead")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to drop lead"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "Lead record deleted successfully!"})
}

// ImportLeads ingests an uploaded CSV/XLSX file. The upload must carry
// every expected column; rows whose Id already exists are skipped and
// reported, the rest are normalized and appended.
func (h *Handler) ImportLeads(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing upload file"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open upload file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read upload file"})
		return
	}

	rows, err := importer.ParseLeads(fileHeader.Filename, data, models.LeadColumns)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	imported, err := h.norm.Normalize(rows)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lead data: " + err.Error()})
		return
	}

	existing, err := h.loadLeads()
	if err != nil {
		h.logger.WithError(err).Error("Failed to load leads")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load leads"})
		return
	}
	existingIDs := make(map[int64]bool, len(existing))
	for _, l := range existing {
		existingIDs[l.ID] = true
	}

	var added []int64
	var skipped []int64
	var newRows []models.RawLead
	for _, l := range imported {
		if existingIDs[l.ID] {
			skipped = append(skipped, l.ID)
			continue
		}
		added = append(added, l.ID)
		newRows = append(newRows, l.ToRaw())
	}

	if len(newRows) > 0 {
		if err := h.store.SaveLeads(newRows); err != nil {
			h.logger.WithError(err).Error("Failed to save imported leads")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save imported leads"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "Lead Data updated successfully!",
		"added":   added,
		"skipped": skipped,
	})
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func containsInt64(values []int64, v int64) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
