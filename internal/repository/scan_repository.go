package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/farmsight/pestscan/internal/model"
)

// ScanRepo persists scan outcomes. Scans are written once and never
// updated; they disappear only through owner cascade delete.
type ScanRepo struct{ DB *sql.DB }

func NewScanRepo(db *sql.DB) *ScanRepo { return &ScanRepo{DB: db} }

const scanColumns = `s.id, s.user_id, s.image_path, s.pest_identified, s.pest_scientific,
 s.confidence, s.status, s.severity, s.crop_type, s.field_name, s.damage_pattern, s.created_at,
 EXISTS(SELECT 1 FROM feedbacks f WHERE f.scan_id = s.id)`

func scanScanRow(scanner interface{ Scan(...any) error }) (model.Scan, error) {
	var s model.Scan
	err := scanner.Scan(&s.ID, &s.UserID, &s.ImagePath, &s.PestIdentified, &s.PestScientific,
		&s.Confidence, &s.Status, &s.Severity, &s.CropType, &s.FieldName, &s.DamagePattern,
		&s.CreatedAt, &s.HasFeedback)
	return s, err
}

// clampConfidence bounds a confidence score to [0,100] before it is
// persisted, whatever the engine reported.
func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Create inserts a scan row for the owner and returns the stored row
// with its generated ID and timestamp.
func (r *ScanRepo) Create(ctx context.Context, s model.Scan) (model.Scan, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO scans
		 (user_id, image_path, pest_identified, pest_scientific, confidence, status, severity, crop_type, field_name, damage_pattern)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		s.UserID, s.ImagePath, s.PestIdentified, s.PestScientific,
		clampConfidence(s.Confidence), s.Status, s.Severity, s.CropType, s.FieldName, s.DamagePattern)
	if err != nil {
		return model.Scan{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Scan{}, err
	}
	return r.getByID(ctx, uint64(id))
}

func (r *ScanRepo) getByID(ctx context.Context, id uint64) (model.Scan, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+scanColumns+" FROM scans s WHERE s.id=? LIMIT 1", id)
	s, err := scanScanRow(row)
	if err == sql.ErrNoRows {
		return model.Scan{}, ErrScanNotFound
	}
	return s, err
}

// GetByIDForUser returns one scan owned by userID. A scan that exists
// but belongs to someone else reads as not found so other accounts'
// scan IDs are not probeable.
func (r *ScanRepo) GetByIDForUser(ctx context.Context, userID, id uint64) (model.Scan, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+scanColumns+" FROM scans s WHERE s.id=? AND s.user_id=? LIMIT 1", id, userID)
	s, err := scanScanRow(row)
	if err == sql.ErrNoRows {
		return model.Scan{}, ErrScanNotFound
	}
	return s, err
}

// ListByUser returns all of an account's scans, newest first.
func (r *ScanRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Scan, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+scanColumns+" FROM scans s WHERE s.user_id=? ORDER BY s.created_at DESC, s.id DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scans := make([]model.Scan, 0)
	for rows.Next() {
		s, err := scanScanRow(rows)
		if err != nil {
			return nil, err
		}
		scans = append(scans, s)
	}
	return scans, rows.Err()
}

// UserStats aggregates an account's scan history for the dashboard.
type UserStats struct {
	TotalScans    int     `json:"total_scans"`
	PestsDetected int     `json:"pests_detected"`
	HealthyScans  int     `json:"healthy_scans"`
	HealthyPct    float64 `json:"healthy_percentage"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// TrendBucket is one month of pest-damaged scan counts for the
// dashboard trend chart.
type TrendBucket struct {
	Month string `json:"month"` // YYYY-MM
	Count int    `json:"count"`
}

// StatsByUser computes dashboard aggregates in a single round trip
// per metric group.
func (r *ScanRepo) StatsByUser(ctx context.Context, userID uint64) (UserStats, error) {
	var st UserStats
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(status = 'Pest Damaged'), 0),
		        COALESCE(SUM(status = 'Healthy'), 0),
		        COALESCE(AVG(confidence), 0)
		 FROM scans WHERE user_id=?`, userID).
		Scan(&st.TotalScans, &st.PestsDetected, &st.HealthyScans, &st.AvgConfidence)
	if err != nil {
		return UserStats{}, err
	}
	if st.TotalScans > 0 {
		st.HealthyPct = float64(st.HealthyScans) / float64(st.TotalScans) * 100
	}
	return st, nil
}

// TrendByUser returns per-month pest detection counts since the given
// time, oldest month first.
func (r *ScanRepo) TrendByUser(ctx context.Context, userID uint64, since time.Time) ([]TrendBucket, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT DATE_FORMAT(created_at, '%Y-%m') AS month, COUNT(*)
		 FROM scans
		 WHERE user_id=? AND status='Pest Damaged' AND created_at >= ?
		 GROUP BY month ORDER BY month`, userID, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	buckets := make([]TrendBucket, 0)
	for rows.Next() {
		var b TrendBucket
		if err := rows.Scan(&b.Month, &b.Count); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}
