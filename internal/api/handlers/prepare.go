package handlers

import (
	"context"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"expansion-prep/internal/api/models"
	"expansion-prep/internal/config"
	"expansion-prep/internal/feasibility"
	"expansion-prep/internal/model"
	"expansion-prep/internal/pipeline"
)

// CaseSource loads a case by directory and name. *data.CaseCache
// implements it, including a nil cache.
type CaseSource interface {
	Load(dir, name string) (*model.Case, error)
}

// PrepareHandler runs the pipeline on request and keeps the results.
type PrepareHandler struct {
	engine *pipeline.Engine
	cases  CaseSource
	root   string
	checks config.Checks
	runs   *RunStore
	logger *zap.Logger
}

// NewPrepareHandler creates a handler reading cases under root. checks are
// the server defaults that a request may tighten.
func NewPrepareHandler(engine *pipeline.Engine, cases CaseSource, root string, checks config.Checks, runs *RunStore, logger *zap.Logger) *PrepareHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if runs == nil {
		runs = NewRunStore(DefaultRunLimit)
	}
	return &PrepareHandler{engine: engine, cases: cases, root: root, checks: checks, runs: runs, logger: logger}
}

// Prepare handles POST /api/v1/prepare
func (h *PrepareHandler) Prepare(c *gin.Context) {
	var req models.PrepareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err)
		return
	}
	if err := validateCaseName(req.Case); err != nil {
		badRequest(c, "INVALID_CASE", err)
		return
	}
	if err := req.Options.Validate(); err != nil {
		badRequest(c, "INVALID_OPTIONS", err)
		return
	}

	loaded, err := h.cases.Load(h.root, req.Case)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error: models.ErrorDetail{
					Code:    "CASE_NOT_FOUND",
					Message: err.Error(),
				},
			})
			return
		}
		badRequest(c, "INVALID_CASE", err)
		return
	}

	// Loaded cases may be shared through the cache.
	cs := *loaded
	cs.Options = config.MergeOptions(loaded.Options, req.Options)

	snap, err := h.engine.Run(c.Request.Context(), &cs, config.MergeChecks(h.checks, req.Checks))
	if err != nil {
		h.runError(c, err)
		return
	}
	h.runs.Put(snap)

	c.JSON(http.StatusOK, models.RunResponse{
		ID:      snap.RunID.String(),
		Status:  "prepared",
		Summary: snap.Summary(),
	})
}

func (h *PrepareHandler) runError(c *gin.Context, err error) {
	var inf *feasibility.InfeasibilityError
	switch {
	case errors.As(err, &inf):
		violations := make([]models.ViolationInfo, len(inf.Violations))
		for i, v := range inf.Violations {
			violations[i] = models.ViolationInfo{
				Kind:      v.Kind,
				Unit:      v.Unit,
				Period:    v.Period,
				Scenario:  v.Scenario,
				LoadLevel: v.LoadLevel,
				Value:     v.Value,
				Limit:     v.Limit,
			}
		}
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INFEASIBLE",
				Message: err.Error(),
				Details: map[string]interface{}{"violations": violations},
			},
		})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "CANCELED",
				Message: err.Error(),
			},
		})
	default:
		h.logger.Warn("prepare failed", zap.Error(err))
		badRequest(c, "PREPARE_ERROR", err)
	}
}

// validateCaseName rejects names that would leave the cases root.
func validateCaseName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("case name is required")
	}
	if name != filepath.Base(name) || name == "." || name == ".." {
		return errors.Errorf("invalid case name %q", name)
	}
	return nil
}

func badRequest(c *gin.Context, code string, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: err.Error(),
		},
	})
}
