package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sheriph/chat-bot/internal/models"
	"github.com/sheriph/chat-bot/internal/programs"
)

// ProgramSearcher is the study-programs catalog the assistant queries.
type ProgramSearcher interface {
	Search(ctx context.Context, q programs.Query) ([]programs.Program, error)
}

type ProgramsHandler struct {
	repo ProgramSearcher
}

func NewProgramsHandler(repo ProgramSearcher) *ProgramsHandler {
	return &ProgramsHandler{repo: repo}
}

// Search is the programs tool endpoint: direct catalog query, prose-free.
func (h *ProgramsHandler) Search(c echo.Context) error {
	q := programs.Query{
		Text:       c.QueryParam("q"),
		Country:    c.QueryParam("country"),
		DegreeType: c.QueryParam("degree"),
	}
	q.MaxBudget, _ = strconv.ParseFloat(c.QueryParam("maxBudget"), 64)
	q.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	results, err := h.repo.Search(c.Request().Context(), q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "programs_error",
			Message: "Failed to search programs: " + err.Error(),
			Code:    http.StatusInternalServerError,
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"total":    len(results),
		"programs": results,
	})
}
