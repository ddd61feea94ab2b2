// Package handler contains the HTTP handlers for the pest scanning
// API. Handlers bind request DTOs, call into repositories and
// collaborators, and map sentinel errors onto stable JSON responses.
package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/farmsight/pestscan/internal/model"
	"github.com/farmsight/pestscan/internal/repository"
)

// dbTimeout bounds every database call made from a handler.
const dbTimeout = 5 * time.Second

// writeErr maps known sentinel errors to their 4xx responses and
// everything else to a generic 500 that leaks no internals.
func writeErr(c echo.Context, err error) error {
	switch err {
	case repository.ErrEmailExists:
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	case repository.ErrPhoneExists:
		return c.JSON(http.StatusConflict, echo.Map{"error": "phone already exists"})
	case repository.ErrInvalidCredentials:
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	case repository.ErrWrongPassword:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "wrong current password"})
	case repository.ErrScanNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "scan not found"})
	case repository.ErrNotOwner:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "scan belongs to another account"})
	case repository.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	c.Logger().Errorf("internal error: %v", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// userResp is the account shape returned by auth and account
// endpoints. The password hash never leaves the repository layer
// boundary.
type userResp struct {
	ID                uint64     `json:"id"`
	Email             string     `json:"email"`
	Phone             *string    `json:"phone,omitempty"`
	Name              string     `json:"name"`
	Location          *string    `json:"location,omitempty"`
	Language          string     `json:"language"`
	Units             string     `json:"units"`
	Theme             string     `json:"theme"`
	FarmName          *string    `json:"farm_name,omitempty"`
	FarmSize          *string    `json:"farm_size,omitempty"`
	Crops             []string   `json:"crops"`
	NotificationEmail bool       `json:"notification_email"`
	NotificationPush  bool       `json:"notification_push"`
	CreatedAt         time.Time  `json:"created_at"`
	LastLogin         *time.Time `json:"last_login,omitempty"`
}

func toUserResp(u model.User) userResp {
	return userResp{
		ID:                u.ID,
		Email:             u.Email,
		Phone:             u.Phone,
		Name:              u.Name,
		Location:          u.Location,
		Language:          u.Language,
		Units:             u.Units,
		Theme:             u.Theme,
		FarmName:          u.FarmName,
		FarmSize:          u.FarmSize,
		Crops:             u.CropList(),
		NotificationEmail: u.NotificationEmail,
		NotificationPush:  u.NotificationPush,
		CreatedAt:         u.CreatedAt,
		LastLogin:         u.LastLogin,
	}
}

// scanResp is the scan shape returned by history, analyze and export.
type scanResp struct {
	ID             uint64    `json:"id"`
	ImagePath      *string   `json:"image_path,omitempty"`
	PestIdentified string    `json:"pest_identified"`
	PestScientific *string   `json:"pest_scientific,omitempty"`
	Confidence     float64   `json:"confidence"`
	Status         string    `json:"status"`
	Severity       string    `json:"severity"`
	CropType       *string   `json:"crop_type,omitempty"`
	FieldName      *string   `json:"field_name,omitempty"`
	DamagePattern  *string   `json:"damage_pattern,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	HasFeedback    bool      `json:"has_feedback"`
}

func toScanResp(s model.Scan) scanResp {
	return scanResp{
		ID:             s.ID,
		ImagePath:      s.ImagePath,
		PestIdentified: s.PestIdentified,
		PestScientific: s.PestScientific,
		Confidence:     s.Confidence,
		Status:         s.Status,
		Severity:       s.Severity,
		CropType:       s.CropType,
		FieldName:      s.FieldName,
		DamagePattern:  s.DamagePattern,
		CreatedAt:      s.CreatedAt,
		HasFeedback:    s.HasFeedback,
	}
}

func toScanResps(scans []model.Scan) []scanResp {
	out := make([]scanResp, 0, len(scans))
	for _, s := range scans {
		out = append(out, toScanResp(s))
	}
	return out
}
