package api

import (
	"github.com/jonesrussell/north-cloud/triage/internal/domain"
	"github.com/jonesrussell/north-cloud/triage/internal/session"
)

// Error codes returned in the "code" field.
const (
	codeInvalidRequest    = "INVALID_REQUEST"
	codeInvalidSettings   = "INVALID_SETTINGS"
	codeOracleUnavailable = "ORACLE_UNAVAILABLE"
	codeInternal          = "INTERNAL_ERROR"
)

// Query values accepted by GET /api/v1/results.
const (
	orderPriority  = "priority"
	orderInsertion = "insertion"
	formatJSON     = "json"
	formatCSV      = "csv"
	formatXLSX     = "xlsx"
)

// TriageRequest is the body of POST /api/v1/triage.
type TriageRequest struct {
	Text         string `json:"text"`
	Neighborhood string `json:"neighborhood"`
}

// TriageResponse is returned for one triaged complaint.
type TriageResponse struct {
	EntryID        string              `json:"entry_id"`
	Neighborhood   string              `json:"neighborhood"`
	LocationWeight int                 `json:"location_weight"`
	Result         domain.TriageResult `json:"result"`
	Notice         string              `json:"notice,omitempty"`
	Retained       bool                `json:"retained"`
}

// BatchTriageRequest is the body of POST /api/v1/triage/batch.
type BatchTriageRequest struct {
	Complaints []TriageRequest `json:"complaints" binding:"required,min=1,max=100"`
}

// BatchItemResponse is the outcome for one batch entry.
type BatchItemResponse struct {
	Index int             `json:"index"`
	Error string          `json:"error,omitempty"`
	Item  *TriageResponse `json:"item,omitempty"`
}

// BatchTriageResponse is returned by POST /api/v1/triage/batch.
type BatchTriageResponse struct {
	Results []BatchItemResponse `json:"results"`
	Total   int                 `json:"total"`
	Success int                 `json:"success"`
	Failed  int                 `json:"failed"`
}

// ResultsResponse lists the session log.
type ResultsResponse struct {
	Results []session.Entry `json:"results"`
	Total   int             `json:"total"`
	Order   string          `json:"order"`
}

// CategoryResponse describes one configured category.
type CategoryResponse struct {
	Name         string   `json:"name"`
	Keywords     []string `json:"keywords"`
	HighPriority bool     `json:"high_priority"`
	Unknown      bool     `json:"unknown"`
}

// CategoriesResponse lists the configured categories in configuration order.
type CategoriesResponse struct {
	Categories          []CategoryResponse `json:"categories"`
	IgnoredHighPriority []string           `json:"ignored_high_priority"`
}

// NeighborhoodsResponse lists the neighborhoods sorted by name.
type NeighborhoodsResponse struct {
	Neighborhoods []domain.Neighborhood `json:"neighborhoods"`
}

// KeywordsRequest edits one category's keywords as comma-separated text.
type KeywordsRequest struct {
	Keywords string `json:"keywords"`
}

// WeightRequest sets one neighborhood's weight.
type WeightRequest struct {
	Weight *int `json:"weight" binding:"required"`
}

// IncludeThreatsRequest toggles logging of threat-flagged results.
type IncludeThreatsRequest struct {
	IncludeThreats *bool `json:"include_threats" binding:"required"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}
