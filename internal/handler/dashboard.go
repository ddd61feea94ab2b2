package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/farmsight/pestscan/internal/middleware"
)

// trendMonths is how far back the dashboard trend chart reaches.
const trendMonths = 6

// DashboardHandler aggregates an account's scan history for the
// dashboard page.
type DashboardHandler struct {
	Scans ScanStore
}

func NewDashboardHandler(s ScanStore) *DashboardHandler {
	return &DashboardHandler{Scans: s}
}

// Stats returns totals, the healthy percentage, recent detections and
// the monthly pest trend. Sits behind the response cache; the cache
// key includes the user so accounts never see each other's numbers.
func (h *DashboardHandler) Stats(c echo.Context) error {
	uid, ok := middleware.CurrentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	stats, err := h.Scans.StatsByUser(ctx, uid)
	if err != nil {
		return writeErr(c, err)
	}

	since := time.Now().UTC().AddDate(0, -trendMonths, 0)
	trend, err := h.Scans.TrendByUser(ctx, uid, since)
	if err != nil {
		return writeErr(c, err)
	}

	scans, err := h.Scans.ListByUser(ctx, uid)
	if err != nil {
		return writeErr(c, err)
	}
	if len(scans) > 5 {
		scans = scans[:5]
	}

	return c.JSON(http.StatusOK, echo.Map{
		"stats":             stats,
		"pest_trends":       trend,
		"recent_detections": toScanResps(scans),
	})
}
