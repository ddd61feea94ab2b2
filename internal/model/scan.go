package model

import (
	"strings"
	"time"
)

// Scan records one outcome of a detection request. A scan belongs to
// exactly one user and is immutable once recorded; it disappears only
// when its owner is deleted (FK cascade).
//
// Fields:
//  ID             – primary key identifier.
//  UserID         – owner of the scan.
//  ImagePath      – stored image reference (nullable; a scan can be
//                   recorded without a persisted image).
//  PestIdentified – common name of the identified pest.
//  PestScientific – scientific name (nullable).
//  Confidence     – detection confidence, always within [0,100].
//  Status         – "Healthy" or "Pest Damaged".
//  Severity       – "Mild", "Moderate", "Severe" or "Healthy".
//  CropType       – crop the image was taken of (nullable).
//  FieldName      – field label supplied by the user (nullable).
//  DamagePattern  – free-text damage description (nullable).
//  CreatedAt      – when the scan was recorded.
type Scan struct {
	ID             uint64    // scans.id
	UserID         uint64    // scans.user_id
	ImagePath      *string   // scans.image_path (nullable)
	PestIdentified string    // scans.pest_identified
	PestScientific *string   // scans.pest_scientific (nullable)
	Confidence     float64   // scans.confidence
	Status         string    // scans.status
	Severity       string    // scans.severity
	CropType       *string   // scans.crop_type (nullable)
	FieldName      *string   // scans.field_name (nullable)
	DamagePattern  *string   // scans.damage_pattern (nullable)
	CreatedAt      time.Time // scans.created_at
	HasFeedback    bool      // derived: EXISTS(feedbacks.scan_id = scans.id)
}

// Feedback is a user-submitted correction or confirmation of a scan
// result. It references both the owning user and the scan; deleting
// either removes the feedback (FK cascade).
type Feedback struct {
	ID                   uint64    // feedbacks.id
	UserID               uint64    // feedbacks.user_id
	ScanID               uint64    // feedbacks.scan_id
	IsCorrect            bool      // feedbacks.is_correct
	ActualPestName       *string   // feedbacks.actual_pest_name (nullable)
	ActualPestScientific *string   // feedbacks.actual_pest_scientific (nullable)
	Notes                *string   // feedbacks.notes (nullable)
	Helpful              *bool     // feedbacks.helpful (nullable)
	CreatedAt            time.Time // feedbacks.created_at
}

// SplitCrops turns a stored comma-joined crop string into a slice,
// trimming whitespace and dropping empty entries.
func SplitCrops(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinCrops normalizes a multi-value crop selection into the single
// comma-joined string used for storage.
func JoinCrops(crops []string) string {
	cleaned := make([]string, 0, len(crops))
	for _, c := range crops {
		if c = strings.TrimSpace(c); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	return strings.Join(cleaned, ",")
}
