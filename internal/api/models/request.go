package models

import "expansion-prep/internal/config"

// PrepareRequest is the body of POST /api/v1/prepare.
type PrepareRequest struct {
	Case    string                 `json:"case" binding:"required"`
	Options config.OptionsOverride `json:"options,omitempty"`
	Checks  config.Checks          `json:"checks,omitempty"`
}

// StateQuery pages through GET /runs/:id/initial-state.
type StateQuery struct {
	Unit   string `form:"unit,omitempty"`
	Offset int    `form:"offset,omitempty"`
	Limit  int    `form:"limit,omitempty"` // 0 = all
}
