package repository

import (
	"context"
	"database/sql"

	"github.com/farmsight/pestscan/internal/model"
)

// FeedbackRepo persists user feedback on scan results.
type FeedbackRepo struct{ DB *sql.DB }

func NewFeedbackRepo(db *sql.DB) *FeedbackRepo { return &FeedbackRepo{DB: db} }

// FeedbackParams carries one feedback submission. Corrected pest
// fields are only meaningful when IsCorrect is false but are accepted
// regardless; the store does not second-guess the UI.
type FeedbackParams struct {
	ScanID               uint64
	IsCorrect            bool
	ActualPestName       *string
	ActualPestScientific *string
	Notes                *string
	Helpful              *bool
}

// Create inserts feedback for a scan owned by userID. The ownership
// check and insert run in one transaction so a concurrent cascade
// delete cannot leave an orphan: a missing scan yields
// ErrScanNotFound, a scan owned by another account ErrNotOwner, and
// in both cases the feedbacks table gains no row.
func (r *FeedbackRepo) Create(ctx context.Context, userID uint64, p FeedbackParams) (model.Feedback, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Feedback{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var ownerID uint64
	err = tx.QueryRowContext(ctx,
		"SELECT user_id FROM scans WHERE id=? LIMIT 1", p.ScanID).Scan(&ownerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Feedback{}, ErrScanNotFound
		}
		return model.Feedback{}, err
	}
	if ownerID != userID {
		return model.Feedback{}, ErrNotOwner
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO feedbacks
		 (user_id, scan_id, is_correct, actual_pest_name, actual_pest_scientific, notes, helpful)
		 VALUES (?,?,?,?,?,?,?)`,
		userID, p.ScanID, p.IsCorrect, p.ActualPestName, p.ActualPestScientific, p.Notes, p.Helpful)
	if err != nil {
		return model.Feedback{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Feedback{}, err
	}

	var fb model.Feedback
	err = tx.QueryRowContext(ctx,
		`SELECT id, user_id, scan_id, is_correct, actual_pest_name, actual_pest_scientific, notes, helpful, created_at
		 FROM feedbacks WHERE id=?`, id).
		Scan(&fb.ID, &fb.UserID, &fb.ScanID, &fb.IsCorrect, &fb.ActualPestName,
			&fb.ActualPestScientific, &fb.Notes, &fb.Helpful, &fb.CreatedAt)
	if err != nil {
		return model.Feedback{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Feedback{}, err
	}
	return fb, nil
}

// ListByScan returns all feedback rows for one scan, oldest first.
func (r *FeedbackRepo) ListByScan(ctx context.Context, scanID uint64) ([]model.Feedback, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, scan_id, is_correct, actual_pest_name, actual_pest_scientific, notes, helpful, created_at
		 FROM feedbacks WHERE scan_id=? ORDER BY created_at, id`, scanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Feedback, 0)
	for rows.Next() {
		var fb model.Feedback
		if err := rows.Scan(&fb.ID, &fb.UserID, &fb.ScanID, &fb.IsCorrect, &fb.ActualPestName,
			&fb.ActualPestScientific, &fb.Notes, &fb.Helpful, &fb.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, fb)
	}
	return out, rows.Err()
}
