package repository

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"

	"github.com/icancodefyi/sarthi-ai/internal/model"
)

// ReportRepo stores integrity records. Rows are inserted once and never updated.
type ReportRepo struct {
	db *sql.DB
}

// NewReportRepo creates a report repository
func NewReportRepo(db *sql.DB) *ReportRepo {
	return &ReportRepo{db: db}
}

// Insert stores a report, inside tx when it is non-nil
func (r *ReportRepo) Insert(ctx context.Context, tx *sql.Tx, report *model.Report) error {
	var db execer = r.db
	if tx != nil {
		db = tx
	}

	document, err := json.Marshal(report)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO reports (id, report_id, user_id, dataset_id, integrity_hash, document, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = execRetry(ctx, db, query,
		report.ID, report.ReportID, report.UserID, report.DatasetID,
		report.IntegrityHash, string(document), formatTime(report.CreatedAt))
	return err
}

// GetByReportID returns the report with the given public id
func (r *ReportRepo) GetByReportID(ctx context.Context, reportID string) (*model.Report, error) {
	var document string
	err := r.db.QueryRowContext(ctx, `SELECT document FROM reports WHERE report_id = ?`, reportID).Scan(&document)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return decodeReport(document)
}

// ListByUser returns the most recent reports of a user. The QR image and
// the moving averages are left out to keep the listing small.
func (r *ReportRepo) ListByUser(ctx context.Context, userID string, limit int) ([]model.Report, error) {
	query := `SELECT document FROM reports WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := []model.Report{}
	for rows.Next() {
		var document string
		if err := rows.Scan(&document); err != nil {
			return nil, err
		}

		report, err := decodeReport(document)
		if err != nil {
			return nil, err
		}
		report.QRCodeURL = ""
		report.SnapshotData.Analytics.MovingAverages = nil
		reports = append(reports, *report)
	}

	return reports, rows.Err()
}

// decodeReport keeps numbers in the hash payload as their original literals
// so the digest is recomputed over exactly what was stored.
func decodeReport(document string) (*model.Report, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(document)))
	dec.UseNumber()

	report := &model.Report{}
	if err := dec.Decode(report); err != nil {
		return nil, err
	}
	return report, nil
}
