package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/saadjs/nutrilog/internal/service"
	"github.com/saadjs/nutrilog/internal/stats"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalid):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	default:
		log.Printf("[api] %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, errorResponse{Error: err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func (h *Handler) Health(c *gin.Context) {
	if err := h.DB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.Version, "today": h.Clock.Today()})
}

func (h *Handler) GetProfile(c *gin.Context) {
	p, err := service.GetProfile(h.DB)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var patch service.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	force, _ := strconv.ParseBool(c.Query("recalculate"))
	out, err := service.UpdateProfile(h.DB, h.Clock, patch, force)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) ResetProfile(c *gin.Context) {
	p, err := service.ResetProfile(h.DB)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) RecalculateGoals(c *gin.Context) {
	res, goals, err := service.RecalculateGoals(h.DB, h.Clock)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"calculation": res, "goals": goals})
}

func (h *Handler) GetGoals(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = h.Clock.Today()
	}
	g, err := service.CurrentGoals(h.DB, date)
	if err != nil {
		writeError(c, err)
		return
	}
	if g == nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: "no goals set for " + date})
		return
	}
	c.JSON(http.StatusOK, g)
}

type goalsRequest struct {
	Calories      int    `json:"calories"`
	ProteinG      int    `json:"protein_g"`
	CarbsG        int    `json:"carbs_g"`
	FatG          int    `json:"fat_g"`
	EffectiveDate string `json:"effective_date"`
}

func (h *Handler) SetGoals(c *gin.Context) {
	var req goalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	g, err := service.SetGoals(h.DB, h.Clock, service.SetGoalsInput{
		Calories:      req.Calories,
		ProteinG:      req.ProteinG,
		CarbsG:        req.CarbsG,
		FatG:          req.FatG,
		EffectiveDate: req.EffectiveDate,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *Handler) GoalHistory(c *gin.Context) {
	items, err := service.GoalHistory(h.DB)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

type entryRequest struct {
	Name       string     `json:"name"`
	Calories   int        `json:"calories"`
	ProteinG   float64    `json:"protein_g"`
	CarbsG     float64    `json:"carbs_g"`
	FatG       float64    `json:"fat_g"`
	MealType   string     `json:"meal_type"`
	ConsumedAt *time.Time `json:"consumed_at"`
	Source     string     `json:"source"`
	SourceRef  string     `json:"source_ref"`
	Notes      string     `json:"notes"`
}

func (h *Handler) ListEntries(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, errors.New("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	items, err := service.ListEntries(h.DB, h.Clock, service.ListEntriesFilter{
		Date:     c.Query("date"),
		FromDate: c.Query("from"),
		ToDate:   c.Query("to"),
		MealType: c.Query("meal_type"),
		Limit:    limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateEntry(c *gin.Context) {
	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	in := service.CreateEntryInput{
		Name:      req.Name,
		Calories:  req.Calories,
		ProteinG:  req.ProteinG,
		CarbsG:    req.CarbsG,
		FatG:      req.FatG,
		MealType:  req.MealType,
		Source:    req.Source,
		SourceRef: req.SourceRef,
		Notes:     req.Notes,
	}
	if req.ConsumedAt != nil {
		in.ConsumedAt = *req.ConsumedAt
	}
	e, err := service.CreateEntry(h.DB, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h *Handler) GetEntry(c *gin.Context) {
	e, err := service.GetEntry(h.DB, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *Handler) UpdateEntry(c *gin.Context) {
	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	existing, err := service.GetEntry(h.DB, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	consumed := existing.ConsumedAt
	if req.ConsumedAt != nil {
		consumed = *req.ConsumedAt
	}
	meal := req.MealType
	if strings.TrimSpace(meal) == "" {
		meal = string(existing.MealType)
	}
	e, err := service.UpdateEntry(h.DB, service.UpdateEntryInput{
		ID:         existing.ID,
		Name:       req.Name,
		Calories:   req.Calories,
		ProteinG:   req.ProteinG,
		CarbsG:     req.CarbsG,
		FatG:       req.FatG,
		MealType:   meal,
		ConsumedAt: consumed,
		Notes:      req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *Handler) DeleteEntry(c *gin.Context) {
	if err := service.DeleteEntry(h.DB, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ClearEntries(c *gin.Context) {
	n, err := service.ClearEntries(h.DB)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

func (h *Handler) Today(c *gin.Context) {
	s, err := service.DaySummary(h.DB, h.Clock, c.Query("date"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) Stats(c *gin.Context) {
	period, err := stats.ParsePeriod(c.Query("period"))
	if err != nil {
		badRequest(c, err)
		return
	}
	res, err := service.PeriodStats(h.DB, h.Clock, period)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) LookupBarcode(c *gin.Context) {
	if h.Barcode == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "barcode lookup is not configured"})
		return
	}
	res, err := service.LookupBarcode(c.Request.Context(), h.DB, h.Barcode, c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type estimateRequest struct {
	Description string `json:"description" binding:"required"`
	Log         bool   `json:"log"`
	MealType    string `json:"meal_type"`
}

// Estimate returns an AI estimate for a described meal and, with log set,
// stores it as an entry.
func (h *Handler) Estimate(c *gin.Context) {
	if h.Estimator == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "AI estimation is not configured"})
		return
	}
	var req estimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := service.EstimateMeal(c.Request.Context(), h.Estimator, h.Cache, service.EstimateRequest{Description: req.Description})
	if err != nil {
		writeError(c, err)
		return
	}
	if !req.Log {
		c.JSON(http.StatusOK, res)
		return
	}
	e, err := service.LogEstimate(h.DB, service.LogEstimateInput{Estimate: res, MealType: req.MealType})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"estimate": res, "entry": e})
}
