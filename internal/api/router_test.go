package api

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expansion-prep/internal/api/handlers"
	"expansion-prep/internal/api/models"
	"expansion-prep/internal/config"
	"expansion-prep/internal/model"
	"expansion-prep/internal/sample"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeCases serves the sample case and a variant that fails the pre-check.
type fakeCases struct {
	loads int
}

func (f *fakeCases) Load(dir, name string) (*model.Case, error) {
	f.loads++
	switch name {
	case "sample":
		return sample.Case(24), nil
	case "tight":
		c := sample.Case(24)
		for i := range c.Units {
			if c.Units[i].Name == "Hydro" {
				c.Units[i].MinimumPower = 50
			}
		}
		return c, nil
	}
	return nil, errors.Wrapf(fs.ErrNotExist, "open %s", name)
}

func newTestRouter(t *testing.T) (*gin.Engine, *handlers.RunStore) {
	t.Helper()
	runs := handlers.NewRunStore(4)
	r := NewRouter(Deps{
		Cases:     &fakeCases{},
		CasesRoot: t.TempDir(),
		Checks:    config.Checks{ProbabilityTolerance: config.DefaultProbabilityTolerance},
		Runs:      runs,
	})
	return r, runs
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestPrepareAndFetchRun(t *testing.T) {
	r, runs := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/v1/prepare", `{"case":"sample"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var run models.RunResponse
	decode(t, w, &run)
	assert.Equal(t, "prepared", run.Status)
	assert.Equal(t, "sample", run.Summary.Case)
	assert.Equal(t, 24, run.Summary.Counts.Steps)
	assert.Equal(t, 1, runs.Len())

	w = do(r, http.MethodGet, "/api/v1/runs/"+run.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	var again models.RunResponse
	decode(t, w, &again)
	assert.Equal(t, run.ID, again.ID)

	w = do(r, http.MethodGet, "/api/v1/runs/"+run.ID+"/initial-state?unit=CCGT&limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	var state models.InitialStateResponse
	decode(t, w, &state)
	assert.Equal(t, 24, state.Total)
	require.Len(t, state.Rows, 5)
	for _, row := range state.Rows {
		assert.Equal(t, "CCGT", row.Unit)
	}

	w = do(r, http.MethodGet, "/api/v1/runs/"+run.ID+"/initial-state?offset=1000", "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &state)
	assert.Empty(t, state.Rows)

	w = do(r, http.MethodGet, "/api/v1/runs/"+run.ID+"/describe", "")
	require.Equal(t, http.StatusOK, w.Code)
	var desc models.DescribeResponse
	decode(t, w, &desc)
	assert.Len(t, desc.Series, 14)
	require.Len(t, desc.Areas, 1)
	assert.Equal(t, "A1", desc.Areas[0].Area)
}

func TestPrepareOptionsOverride(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/v1/prepare", `{"case":"sample","options":{"gen_operat":0}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(r, http.MethodPost, "/api/v1/prepare", `{"case":"sample","options":{"gen_operat":7}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp models.ErrorResponse
	decode(t, w, &resp)
	assert.Equal(t, "INVALID_OPTIONS", resp.Error.Code)
}

func TestPrepareErrors(t *testing.T) {
	r, _ := newTestRouter(t)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"malformed", `{"case":`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"missing case", `{}`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"path escape", `{"case":"../etc"}`, http.StatusBadRequest, "INVALID_CASE"},
		{"unknown case", `{"case":"nope"}`, http.StatusNotFound, "CASE_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/api/v1/prepare", tt.body)
			assert.Equal(t, tt.status, w.Code)
			var resp models.ErrorResponse
			decode(t, w, &resp)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestPrepareInfeasible(t *testing.T) {
	r, runs := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/v1/prepare", `{"case":"tight"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				Violations []models.ViolationInfo `json:"violations"`
			} `json:"details"`
		} `json:"error"`
	}
	decode(t, w, &resp)
	assert.Equal(t, "INFEASIBLE", resp.Error.Code)
	require.NotEmpty(t, resp.Error.Details.Violations)
	assert.Equal(t, "Hydro", resp.Error.Details.Violations[0].Unit)
	assert.Zero(t, runs.Len())
}

func TestRunNotFound(t *testing.T) {
	r, _ := newTestRouter(t)
	for _, path := range []string{"/api/v1/runs/x", "/api/v1/runs/x/initial-state", "/api/v1/runs/x/describe"} {
		w := do(r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func TestListCases(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "alpha"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "alpha", "oT_Data_Option_alpha.csv"), []byte("x\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))

	r := NewRouter(Deps{CasesRoot: root})
	w := do(r, http.MethodGet, "/api/v1/cases", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"cases":[{"name":"alpha"}]}`, w.Body.String())

	r = NewRouter(Deps{CasesRoot: filepath.Join(root, "missing")})
	w = do(r, http.MethodGet, "/api/v1/cases", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	r, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/prepare", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	do(r, http.MethodPost, "/api/v1/prepare", `{"case":"sample"}`)

	w := do(r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "expansion_prep_runs_total")
}

func TestNoRoute(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(r, http.MethodGet, "/nowhere", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.True(t, bytes.Contains(w.Body.Bytes(), []byte("NOT_FOUND")))
}
