package handler

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/farmsight/pestscan/internal/detect"
	"github.com/farmsight/pestscan/internal/middleware"
	"github.com/farmsight/pestscan/internal/model"
	"github.com/farmsight/pestscan/internal/queue"
	"github.com/farmsight/pestscan/internal/repository"
	"github.com/farmsight/pestscan/internal/storage"
)

// ScanStore is the slice of the scan repository the scan handlers
// need.
type ScanStore interface {
	Create(ctx context.Context, s model.Scan) (model.Scan, error)
	GetByIDForUser(ctx context.Context, userID, id uint64) (model.Scan, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Scan, error)
	StatsByUser(ctx context.Context, userID uint64) (repository.UserStats, error)
	TrendByUser(ctx context.Context, userID uint64, since time.Time) ([]repository.TrendBucket, error)
}

// ImageSaver persists uploaded image bytes and returns a reference
// path.
type ImageSaver interface {
	SaveBytes(data []byte, filename string) (string, error)
}

// ScanHandler runs the analyze flow: accept an image, call the
// detection engine once, persist the outcome, publish the event.
type ScanHandler struct {
	Engine detect.Engine
	Images ImageSaver
	Scans  ScanStore
	// Publish sends the scan.recorded event; best-effort, may be nil.
	Publish func(ctx context.Context, ev queue.ScanRecordedEvent) error
}

func NewScanHandler(engine detect.Engine, images ImageSaver, scans ScanStore,
	publish func(ctx context.Context, ev queue.ScanRecordedEvent) error) *ScanHandler {
	return &ScanHandler{Engine: engine, Images: images, Scans: scans, Publish: publish}
}

type analyzeJSONReq struct {
	ImageData string `json:"image_data"` // base64, with or without data: prefix
	CropType  string `json:"crop_type"`
	FieldName string `json:"field_name"`
}

// analyzeInput is the normalized upload: image bytes plus metadata.
// imagePath stays nil for inline captures, which are analyzed but not
// persisted to disk.
type analyzeInput struct {
	bytes     []byte
	filename  string
	cropType  string
	fieldName string
	imagePath *string
}

// readUpload extracts the image from either a multipart form field
// named "image" or a JSON body with base64 image_data. Multipart
// uploads are saved to the image store; inline base64 captures are
// not.
func (h *ScanHandler) readUpload(c echo.Context) (analyzeInput, error) {
	var in analyzeInput

	if file, err := c.FormFile("image"); err == nil && file != nil {
		if !storage.AllowedFilename(file.Filename) {
			return in, storage.ErrInvalidFormat
		}
		src, err := file.Open()
		if err != nil {
			return in, err
		}
		defer src.Close()
		data, err := io.ReadAll(src)
		if err != nil {
			return in, err
		}
		in.bytes = data
		in.filename = file.Filename
		in.cropType = c.FormValue("crop_type")
		in.fieldName = c.FormValue("field_name")

		path, err := h.Images.SaveBytes(data, file.Filename)
		if err != nil {
			return in, err
		}
		in.imagePath = &path
		return in, nil
	}

	var req analyzeJSONReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.ImageData) == "" {
		return in, storage.ErrMissingPayload
	}
	raw := req.ImageData
	if i := strings.Index(raw, ","); i >= 0 && strings.HasPrefix(raw, "data:") {
		raw = raw[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(data) == 0 {
		return in, storage.ErrMissingPayload
	}
	in.bytes = data
	in.filename = "capture.jpg"
	in.cropType = req.CropType
	in.fieldName = req.FieldName
	return in, nil
}

// Analyze accepts an image, runs one detection and records the scan.
// The detection engine is opaque: its result is persisted as given,
// with confidence clamped by the store.
func (h *ScanHandler) Analyze(c echo.Context) error {
	uid, ok := middleware.CurrentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	in, err := h.readUpload(c)
	if err != nil {
		switch err {
		case storage.ErrMissingPayload:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no image provided"})
		case storage.ErrInvalidFormat:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid file format"})
		}
		return writeErr(c, err)
	}

	result, err := h.Engine.Detect(c.Request().Context(), detect.Input{
		Bytes:    in.bytes,
		Filename: in.filename,
		CropType: in.cropType,
	})
	if err != nil {
		c.Logger().Errorf("detection failed: %v", err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "detection unavailable"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	scan := model.Scan{
		UserID:         uid,
		ImagePath:      in.imagePath,
		PestIdentified: result.PestIdentified,
		Confidence:     result.Confidence,
		Status:         result.Status,
		Severity:       result.Severity,
	}
	if result.PestScientific != "" {
		scan.PestScientific = &result.PestScientific
	}
	if result.DamagePattern != "" {
		scan.DamagePattern = &result.DamagePattern
	}
	if ct := strings.TrimSpace(in.cropType); ct != "" {
		scan.CropType = &ct
	}
	if fn := strings.TrimSpace(in.fieldName); fn != "" {
		scan.FieldName = &fn
	}

	stored, err := h.Scans.Create(ctx, scan)
	if err != nil {
		return writeErr(c, err)
	}

	if h.Publish != nil {
		ev := queue.ScanRecordedEvent{
			ScanID:     stored.ID,
			UserID:     stored.UserID,
			Status:     stored.Status,
			Pest:       stored.PestIdentified,
			Confidence: stored.Confidence,
			Severity:   stored.Severity,
			CropType:   in.cropType,
			FieldName:  in.fieldName,
			RecordedAt: stored.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := h.Publish(c.Request().Context(), ev); err != nil {
			c.Logger().Warnf("publish scan.recorded failed: %v", err)
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"scan":   toScanResp(stored),
		"result": result,
	})
}

// List returns the account's scan history, newest first.
func (h *ScanHandler) List(c echo.Context) error {
	uid, ok := middleware.CurrentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	scans, err := h.Scans.ListByUser(ctx, uid)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"scans": toScanResps(scans)})
}

// Get returns one scan owned by the caller.
func (h *ScanHandler) Get(c echo.Context) error {
	uid, ok := middleware.CurrentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid scan id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s, err := h.Scans.GetByIDForUser(ctx, uid, id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"scan": toScanResp(s)})
}
