package models

import (
	"expansion-prep/internal/analysis"
	"expansion-prep/internal/pipeline"
)

// RunResponse is returned by POST /prepare and GET /runs/:id.
type RunResponse struct {
	ID      string           `json:"id"`
	Status  string           `json:"status"`
	Summary pipeline.Summary `json:"summary"`
}

// InitialStateResponse lists warm start rows of a run.
type InitialStateResponse struct {
	ID    string              `json:"id"`
	Total int                 `json:"total"`
	Rows  []pipeline.StateRow `json:"rows"`
}

// DescribeResponse holds the statistics of a run's prepared series.
type DescribeResponse struct {
	ID     string                 `json:"id"`
	Series []analysis.SeriesStats `json:"series"`
	Areas  []analysis.AreaRank    `json:"areas"`
}

// CaseInfo is one case directory under the configured root.
type CaseInfo struct {
	Name string `json:"name"`
}

// ViolationInfo is one failed feasibility condition.
type ViolationInfo struct {
	Kind      string  `json:"kind"`
	Unit      string  `json:"unit"`
	Period    int     `json:"period"`
	Scenario  string  `json:"scenario"`
	LoadLevel string  `json:"load_level"`
	Value     float64 `json:"value"`
	Limit     float64 `json:"limit"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
