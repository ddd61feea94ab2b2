package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/farmsight/pestscan/internal/i18n"
	"github.com/farmsight/pestscan/internal/middleware"
	"github.com/farmsight/pestscan/internal/model"
	"github.com/farmsight/pestscan/internal/repository"
)

// FeedbackStore records user corrections of scan results.
type FeedbackStore interface {
	Create(ctx context.Context, userID uint64, p repository.FeedbackParams) (model.Feedback, error)
}

// PestStore serves the localized reference catalog.
type PestStore interface {
	List(ctx context.Context, lang string) ([]repository.CatalogEntry, error)
}

// FeedbackHandler accepts scan feedback and serves the pest catalog
// backing the correction dropdown.
type FeedbackHandler struct {
	Feedbacks    FeedbackStore
	Catalog      PestStore
	Translations *i18n.Resolver
}

func NewFeedbackHandler(f FeedbackStore, p PestStore, tr *i18n.Resolver) *FeedbackHandler {
	return &FeedbackHandler{Feedbacks: f, Catalog: p, Translations: tr}
}

type feedbackReq struct {
	ScanID               uint64  `json:"scan_id"`
	IsCorrect            bool    `json:"is_correct"`
	ActualPestName       *string `json:"actual_pest_name"`
	ActualPestScientific *string `json:"actual_pest_scientific"`
	Notes                *string `json:"notes"`
	Helpful              *bool   `json:"helpful"`
}

// Submit records feedback for a scan owned by the caller. The scan
// must belong to the submitting account; feedback against someone
// else's scan is rejected without creating a row.
func (h *FeedbackHandler) Submit(c echo.Context) error {
	uid, ok := middleware.CurrentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req feedbackReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ScanID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "scan_id required"})
	}
	if req.ActualPestName != nil && strings.TrimSpace(*req.ActualPestName) == "" {
		req.ActualPestName = nil
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Feedbacks.Create(ctx, uid, repository.FeedbackParams{
		ScanID:               req.ScanID,
		IsCorrect:            req.IsCorrect,
		ActualPestName:       req.ActualPestName,
		ActualPestScientific: req.ActualPestScientific,
		Notes:                req.Notes,
		Helpful:              req.Helpful,
	}); err != nil {
		return writeErr(c, err)
	}

	msg := "Thank you for your feedback!"
	if h.Translations != nil {
		if s := h.Translations.Resolve("feedback.thanks", middleware.RequestLanguage(c)); s != "feedback.thanks" {
			msg = s
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": msg})
}

// Pests lists the reference catalog with names localized for the
// request language.
func (h *FeedbackHandler) Pests(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	entries, err := h.Catalog.List(ctx, middleware.RequestLanguage(c))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"pests": entries})
}
