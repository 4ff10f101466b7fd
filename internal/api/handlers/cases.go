package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"expansion-prep/internal/api/models"
	"expansion-prep/internal/data"
)

// CasesHandler lists the case directories under a root.
type CasesHandler struct {
	root string
}

func NewCasesHandler(root string) *CasesHandler {
	return &CasesHandler{root: root}
}

// ListCases handles GET /api/v1/cases
func (h *CasesHandler) ListCases(c *gin.Context) {
	names, err := data.ListCases(h.root)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "CASES_LOAD_ERROR",
				Message: fmt.Sprintf("Failed to list cases: %v", err),
			},
		})
		return
	}

	cases := make([]models.CaseInfo, len(names))
	for i, n := range names {
		cases[i] = models.CaseInfo{Name: n}
	}
	c.JSON(http.StatusOK, gin.H{"cases": cases})
}
