package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"expansion-prep/internal/analysis"
	"expansion-prep/internal/api/models"
	"expansion-prep/internal/pipeline"
)

// RunsHandler serves stored snapshots.
type RunsHandler struct {
	runs *RunStore
}

func NewRunsHandler(runs *RunStore) *RunsHandler {
	return &RunsHandler{runs: runs}
}

// GetRun handles GET /api/v1/runs/:id
func (h *RunsHandler) GetRun(c *gin.Context) {
	snap, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.RunResponse{
		ID:      snap.RunID.String(),
		Status:  "prepared",
		Summary: snap.Summary(),
	})
}

// GetInitialState handles GET /api/v1/runs/:id/initial-state
func (h *RunsHandler) GetInitialState(c *gin.Context) {
	snap, ok := h.lookup(c)
	if !ok {
		return
	}
	var q models.StateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "INVALID_QUERY", err)
		return
	}
	if q.Offset < 0 || q.Limit < 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_QUERY",
				Message: "offset and limit must be non-negative",
			},
		})
		return
	}

	rows := snap.StateRows()
	if q.Unit != "" {
		filtered := rows[:0:0]
		for _, r := range rows {
			if r.Unit == q.Unit {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}
	total := len(rows)
	rows = page(rows, q.Offset, q.Limit)

	c.JSON(http.StatusOK, models.InitialStateResponse{
		ID:    snap.RunID.String(),
		Total: total,
		Rows:  rows,
	})
}

// Describe handles GET /api/v1/runs/:id/describe
func (h *RunsHandler) Describe(c *gin.Context) {
	snap, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.DescribeResponse{
		ID:     snap.RunID.String(),
		Series: analysis.Describe(snap.Params),
		Areas:  analysis.RankAreasByPeak(snap.Sets, snap.Params),
	})
}

func (h *RunsHandler) lookup(c *gin.Context) (*pipeline.Snapshot, bool) {
	id := c.Param("id")
	snap, ok := h.runs.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "RUN_NOT_FOUND",
				Message: "no run with id " + id,
			},
		})
	}
	return snap, ok
}

func page(rows []pipeline.StateRow, offset, limit int) []pipeline.StateRow {
	if offset >= len(rows) {
		return []pipeline.StateRow{}
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
