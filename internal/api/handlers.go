// Package api exposes complaint triage, the session result log and the
// operator settings over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/triage/internal/domain"
	"github.com/jonesrussell/north-cloud/triage/internal/events"
	"github.com/jonesrussell/north-cloud/triage/internal/logger"
	"github.com/jonesrussell/north-cloud/triage/internal/processor"
	"github.com/jonesrussell/north-cloud/triage/internal/session"
	"github.com/jonesrussell/north-cloud/triage/internal/settings"
	"github.com/jonesrussell/north-cloud/triage/internal/triage"
)

// Handler handles HTTP requests for the triage API.
type Handler struct {
	analyzer  *triage.Analyzer
	batch     *processor.BatchProcessor
	settings  *settings.Store
	results   *session.Log
	publisher events.Publisher
	logger    logger.Logger
}

// NewHandler creates a new API handler. publisher may be nil.
func NewHandler(
	analyzer *triage.Analyzer,
	batch *processor.BatchProcessor,
	store *settings.Store,
	results *session.Log,
	publisher events.Publisher,
	log logger.Logger,
) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{
		analyzer:  analyzer,
		batch:     batch,
		settings:  store,
		results:   results,
		publisher: publisher,
		logger:    log,
	}
}

// Triage handles POST /api/v1/triage
func (h *Handler) Triage(c *gin.Context) {
	var req TriageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, err.Error(), "")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, "text is required", "text")
		return
	}

	ctx := c.Request.Context()
	log := logger.FromContext(ctx)
	snap, includeThreats := h.settings.View()
	weight := snap.NeighborhoodWeight(req.Neighborhood)

	result, err := h.analyzer.Analyze(ctx, snap, req.Text, weight)
	if err != nil {
		h.respondTriageError(c, log, err)
		return
	}

	resp := h.record(ctx, req, weight, result, includeThreats)
	log.Info("Complaint triaged",
		logger.String("entry_id", resp.EntryID),
		logger.String("category", result.Category),
		logger.Int("priority", result.PriorityScore),
		logger.Bool("threat", result.IsThreat),
		logger.Bool("retained", resp.Retained),
	)
	c.JSON(http.StatusOK, resp)
}

// TriageBatch handles POST /api/v1/triage/batch
func (h *Handler) TriageBatch(c *gin.Context) {
	var req BatchTriageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, err.Error(), "")
		return
	}

	items := make([]processor.Item, len(req.Complaints))
	for i, complaint := range req.Complaints {
		if strings.TrimSpace(complaint.Text) == "" {
			respondError(c, http.StatusBadRequest, codeInvalidRequest, "text is required",
				fmt.Sprintf("complaints[%d].text", i))
			return
		}
		items[i] = processor.Item{Text: complaint.Text, Neighborhood: complaint.Neighborhood}
	}

	ctx := c.Request.Context()
	// One view for the whole batch so every item sees the same settings.
	snap, includeThreats := h.settings.View()
	processed := h.batch.Process(ctx, items, snap)

	resp := BatchTriageResponse{Results: make([]BatchItemResponse, len(processed)), Total: len(processed)}
	for i, p := range processed {
		resp.Results[i].Index = p.Index
		if p.Error != nil {
			resp.Results[i].Error = p.Error.Error()
			resp.Failed++
			continue
		}
		item := h.record(ctx, req.Complaints[i], snap.NeighborhoodWeight(p.Item.Neighborhood), p.Result, includeThreats)
		resp.Results[i].Item = &item
		resp.Success++
	}

	c.JSON(http.StatusOK, resp)
}

// ListResults handles GET /api/v1/results
func (h *Handler) ListResults(c *gin.Context) {
	order := c.DefaultQuery("order", orderInsertion)

	var entries []session.Entry
	switch order {
	case orderInsertion:
		entries = h.results.Entries()
	case orderPriority:
		entries = h.results.ByPriority()
	default:
		respondError(c, http.StatusBadRequest, codeInvalidRequest,
			fmt.Sprintf("order must be %q or %q", orderInsertion, orderPriority), "order")
		return
	}

	switch c.Query("format") {
	case "", formatJSON:
		c.JSON(http.StatusOK, ResultsResponse{Results: entries, Total: len(entries), Order: order})
	case formatCSV:
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", `attachment; filename="klachten.csv"`)
		c.Status(http.StatusOK)
		if err := session.WriteCSV(c.Writer, entries); err != nil {
			_ = c.Error(err)
		}
	case formatXLSX:
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", `attachment; filename="klachten.xlsx"`)
		c.Status(http.StatusOK)
		if err := session.WriteXLSX(c.Writer, entries); err != nil {
			_ = c.Error(err)
		}
	default:
		respondError(c, http.StatusBadRequest, codeInvalidRequest,
			fmt.Sprintf("format must be %q, %q or %q", formatJSON, formatCSV, formatXLSX), "format")
	}
}

// ClearResults handles DELETE /api/v1/results
func (h *Handler) ClearResults(c *gin.Context) {
	cleared := h.results.Len()
	h.results.Reset()
	h.logger.Info("Session results cleared", logger.Int("entries", cleared))
	c.Status(http.StatusNoContent)
}

// GetSettings handles GET /api/v1/settings
func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.settings.Current())
}

// ReplaceSettings handles PUT /api/v1/settings
func (h *Handler) ReplaceSettings(c *gin.Context) {
	var next settings.State
	if err := c.ShouldBindJSON(&next); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, err.Error(), "")
		return
	}
	if err := h.settings.Replace(next); err != nil {
		respondSettingsError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.settings.Current())
}

// SetCategoryKeywords handles PUT /api/v1/settings/categories/:name/keywords
func (h *Handler) SetCategoryKeywords(c *gin.Context) {
	var req KeywordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, err.Error(), "")
		return
	}
	if err := h.settings.SetKeywords(c.Param("name"), req.Keywords); err != nil {
		respondSettingsError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.categories())
}

// SetNeighborhoodWeight handles PUT /api/v1/settings/neighborhoods/:name
func (h *Handler) SetNeighborhoodWeight(c *gin.Context) {
	var req WeightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, err.Error(), "weight")
		return
	}
	if err := h.settings.SetNeighborhoodWeight(c.Param("name"), *req.Weight); err != nil {
		respondSettingsError(c, err)
		return
	}
	c.JSON(http.StatusOK, NeighborhoodsResponse{Neighborhoods: h.settings.Snapshot().Neighborhoods()})
}

// SetIncludeThreats handles PUT /api/v1/settings/include-threats
func (h *Handler) SetIncludeThreats(c *gin.Context) {
	var req IncludeThreatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, err.Error(), "include_threats")
		return
	}
	h.settings.SetIncludeThreats(*req.IncludeThreats)
	c.JSON(http.StatusOK, gin.H{"include_threats": h.settings.IncludeThreats()})
}

// ListNeighborhoods handles GET /api/v1/neighborhoods
func (h *Handler) ListNeighborhoods(c *gin.Context) {
	c.JSON(http.StatusOK, NeighborhoodsResponse{Neighborhoods: h.settings.Snapshot().Neighborhoods()})
}

// ListCategories handles GET /api/v1/categories
func (h *Handler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, h.categories())
}

func (h *Handler) categories() CategoriesResponse {
	snap := h.settings.Snapshot()

	high := make(map[string]struct{})
	for _, name := range snap.HighPriority() {
		high[name] = struct{}{}
	}

	cats := snap.Categories()
	out := CategoriesResponse{
		Categories:          make([]CategoryResponse, len(cats)),
		IgnoredHighPriority: append([]string{}, snap.IgnoredHighPriority()...),
	}
	for i, cat := range cats {
		_, isHigh := high[cat.Name]
		out.Categories[i] = CategoryResponse{
			Name:         cat.Name,
			Keywords:     append([]string{}, cat.Keywords...),
			HighPriority: isHigh,
			Unknown:      cat.Name == snap.UnknownCategory(),
		}
	}
	return out
}

// record appends a result to the session log and publishes it.
func (h *Handler) record(
	ctx context.Context,
	req TriageRequest,
	weight int,
	result domain.TriageResult,
	includeThreats bool,
) TriageResponse {
	entry, retained := h.results.Append(req.Text, req.Neighborhood, result, includeThreats)

	if h.publisher != nil {
		h.publisher.PublishAsync(events.TriageEvent{
			EntryID:      entry.ID,
			Complaint:    req.Text,
			Neighborhood: req.Neighborhood,
			Retained:     retained,
			Result:       result,
			Timestamp:    entry.CreatedAt,
		})
	}
	logger.FromContext(ctx).Debug("Result recorded",
		logger.String("entry_id", entry.ID),
		logger.Bool("retained", retained),
	)

	return TriageResponse{
		EntryID:        entry.ID,
		Neighborhood:   req.Neighborhood,
		LocationWeight: weight,
		Result:         result,
		Notice:         session.Notice(result, includeThreats),
		Retained:       retained,
	}
}

func (h *Handler) respondTriageError(c *gin.Context, log logger.Logger, err error) {
	if errors.Is(err, triage.ErrOracleUnavailable) {
		log.Warn("Triage failed, toxicity oracle unavailable", logger.Error(err))
		respondError(c, http.StatusServiceUnavailable, codeOracleUnavailable,
			"toxicity oracle unavailable, complaint was not scored", "")
		return
	}
	log.Error("Triage failed", logger.Error(err))
	_ = c.Error(err)
	respondError(c, http.StatusInternalServerError, codeInternal, "triage failed", "")
}

func respondSettingsError(c *gin.Context, err error) {
	var cfgErr *triage.ConfigError
	if errors.As(err, &cfgErr) {
		respondError(c, http.StatusBadRequest, codeInvalidSettings, cfgErr.Error(), cfgErr.Field)
		return
	}
	_ = c.Error(err)
	respondError(c, http.StatusInternalServerError, codeInternal, "settings update failed", "")
}

func respondError(c *gin.Context, status int, code, message, field string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message, Code: code, Field: field})
}
