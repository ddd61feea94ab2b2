package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/farmsight/pestscan/internal/config"
	"github.com/farmsight/pestscan/internal/i18n"
	"github.com/farmsight/pestscan/internal/middleware"
	"github.com/farmsight/pestscan/internal/repository"
)

// AccountHandler serves profile, preference, notification and
// security updates. Each operation is independently scoped: updating
// notifications never touches the password, and vice versa.
type AccountHandler struct {
	Cfg   config.Config
	Users UserStore
}

func NewAccountHandler(cfg config.Config, u UserStore) *AccountHandler {
	return &AccountHandler{Cfg: cfg, Users: u}
}

type profileReq struct {
	Name     *string  `json:"name"`
	Phone    *string  `json:"phone"`
	Location *string  `json:"location"`
	FarmName *string  `json:"farm_name"`
	FarmSize *string  `json:"farm_size"`
	Crops    []string `json:"crops"`
}

type preferencesReq struct {
	Language string `json:"language"`
	Units    string `json:"units"`
	Theme    string `json:"theme"`
}

type notificationsReq struct {
	Email bool `json:"email"`
	Push  bool `json:"push"`
}

type passwordReq struct {
	Current string `json:"current_password"`
	New     string `json:"new_password"`
}

// UpdateProfile applies a partial profile update.
func (h *AccountHandler) UpdateProfile(c echo.Context) error {
	uid, ok := middleware.CurrentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name cannot be empty"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.UpdateProfile(ctx, uid, repository.ProfileUpdate{
		Name:     req.Name,
		Phone:    req.Phone,
		Location: req.Location,
		FarmName: req.FarmName,
		FarmSize: req.FarmSize,
		Crops:    req.Crops,
	})
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toUserResp(u)})
}

// UpdatePreferences sets language, units and theme. Language must be
// a supported locale; units must be metric or imperial.
func (h *AccountHandler) UpdatePreferences(c echo.Context) error {
	uid, ok := middleware.CurrentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req preferencesReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	lang, ok := i18n.Supported(req.Language)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported language"})
	}
	units := strings.ToLower(strings.TrimSpace(req.Units))
	if units != "metric" && units != "imperial" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "units must be metric or imperial"})
	}
	theme := strings.TrimSpace(req.Theme)
	if theme == "" {
		theme = "emerald"
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.UpdatePreferences(ctx, uid, string(lang), units, theme)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toUserResp(u)})
}

// UpdateNotifications toggles the two notification flags.
func (h *AccountHandler) UpdateNotifications(c echo.Context) error {
	uid, ok := middleware.CurrentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req notificationsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.UpdateNotifications(ctx, uid, req.Email, req.Push)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toUserResp(u)})
}

// ChangePassword verifies the current password before accepting the
// new one.
func (h *AccountHandler) ChangePassword(c echo.Context) error {
	uid, ok := middleware.CurrentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req passwordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Current == "" || req.New == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "current_password/new_password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Users.ChangePassword(ctx, uid, req.Current, req.New, h.Cfg.BcryptCost); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

// Delete removes the account and, through FK cascades, every scan and
// feedback it owns.
func (h *AccountHandler) Delete(c echo.Context) error {
	uid, ok := middleware.CurrentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Users.Delete(ctx, uid); err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
