package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/icancodefyi/sarthi-ai/internal/model"
)

// DatasetRepo stores uploaded datasets
type DatasetRepo struct {
	db *sql.DB
}

// NewDatasetRepo creates a dataset repository
func NewDatasetRepo(db *sql.DB) *DatasetRepo {
	return &DatasetRepo{db: db}
}

const datasetColumns = `id, user_id, filename, original_name, category, status, metadata,
	analytics, ai_report, linked_farmer, created_at, updated_at`

// Create inserts a new dataset together with its raw CSV content
func (r *DatasetRepo) Create(ctx context.Context, d *model.Dataset) error {
	metadataJSON, err := json.Marshal(d.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO datasets (id, user_id, filename, original_name, category, status, metadata,
			analytics, ai_report, linked_farmer, csv_content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NULL, NULL, NULL, ?, ?, ?)
	`

	_, err = execRetry(ctx, r.db, query,
		d.ID, d.UserID, d.Filename, d.OriginalName, string(d.Category), string(d.Status),
		string(metadataJSON), d.CSVContent, formatTime(d.CreatedAt), formatTime(d.UpdatedAt))
	return err
}

// GetByID returns a user's dataset without its CSV content
func (r *DatasetRepo) GetByID(ctx context.Context, userID, datasetID string) (*model.Dataset, error) {
	query := `SELECT ` + datasetColumns + ` FROM datasets WHERE id = ? AND user_id = ?`

	d, err := scanDataset(r.db.QueryRowContext(ctx, query, datasetID, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return d, nil
}

// GetCSVContent returns the raw CSV content of a dataset
func (r *DatasetRepo) GetCSVContent(ctx context.Context, datasetID string) (string, error) {
	var content string
	err := r.db.QueryRowContext(ctx, `SELECT csv_content FROM datasets WHERE id = ?`, datasetID).Scan(&content)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return content, err
}

// List returns the most recent datasets of a user
func (r *DatasetRepo) List(ctx context.Context, userID string, limit int) ([]model.Dataset, error) {
	query := `SELECT ` + datasetColumns + ` FROM datasets WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	datasets := []model.Dataset{}
	for rows.Next() {
		d, err := scanDataset(rows)
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, *d)
	}

	return datasets, rows.Err()
}

// Delete removes a user's dataset. Reports generated from it are kept.
func (r *DatasetRepo) Delete(ctx context.Context, userID, datasetID string) (bool, error) {
	result, err := execRetry(ctx, r.db, `DELETE FROM datasets WHERE id = ? AND user_id = ?`, datasetID, userID)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

// SetAnalytics stores the analytics result and derives metadata from it
func (r *DatasetRepo) SetAnalytics(ctx context.Context, datasetID string, analytics *model.Analytics, now time.Time) error {
	analyticsJSON, err := json.Marshal(analytics)
	if err != nil {
		return err
	}

	query := `
		UPDATE datasets SET
			analytics = ?,
			status = ?,
			metadata = json_set(metadata, '$.rowCount', ?, '$.columnCount', ?, '$.columns', json(?)),
			updated_at = ?
		WHERE id = ?
	`

	columnsJSON, err := json.Marshal(nonNilStrings(analytics.Columns))
	if err != nil {
		return err
	}

	return expectRow(execRetry(ctx, r.db, query,
		string(analyticsJSON), string(model.DatasetStatusAnalyzed),
		analytics.TotalRecords, len(analytics.Columns), string(columnsJSON),
		formatTime(now), datasetID))
}

// SetAIReport stores the AI narrative of a user's dataset
func (r *DatasetRepo) SetAIReport(ctx context.Context, userID, datasetID string, report *model.AIReport, now time.Time) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return err
	}

	query := `UPDATE datasets SET ai_report = ?, status = ?, updated_at = ? WHERE id = ? AND user_id = ?`
	return expectRow(execRetry(ctx, r.db, query,
		string(reportJSON), string(model.DatasetStatusCompleted), formatTime(now), datasetID, userID))
}

// SetStatus updates the processing status of a dataset
func (r *DatasetRepo) SetStatus(ctx context.Context, datasetID string, status model.DatasetStatus, now time.Time) error {
	return r.setStatus(ctx, r.db, datasetID, status, now)
}

// SetStatusTx updates the processing status inside tx
func (r *DatasetRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, datasetID string, status model.DatasetStatus, now time.Time) error {
	return r.setStatus(ctx, tx, datasetID, status, now)
}

func (r *DatasetRepo) setStatus(ctx context.Context, db execer, datasetID string, status model.DatasetStatus, now time.Time) error {
	query := `UPDATE datasets SET status = ?, updated_at = ? WHERE id = ?`
	return expectRow(execRetry(ctx, db, query, string(status), formatTime(now), datasetID))
}

// SetLinkedFarmer links a farmer to a user's dataset; nil unlinks.
// It reports whether the dataset exists.
func (r *DatasetRepo) SetLinkedFarmer(ctx context.Context, userID, datasetID string, farmer *model.LinkedFarmer, now time.Time) (bool, error) {
	var linked sql.NullString
	if farmer != nil {
		farmerJSON, err := json.Marshal(farmer)
		if err != nil {
			return false, err
		}
		linked = sql.NullString{String: string(farmerJSON), Valid: true}
	}

	query := `UPDATE datasets SET linked_farmer = ?, updated_at = ? WHERE id = ? AND user_id = ?`
	result, err := execRetry(ctx, r.db, query, linked, formatTime(now), datasetID, userID)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDataset(row rowScanner) (*model.Dataset, error) {
	d := &model.Dataset{}
	var (
		category, status, metadata  string
		analytics, aiReport, farmer sql.NullString
		createdAt, updatedAt        string
	)

	err := row.Scan(
		&d.ID, &d.UserID, &d.Filename, &d.OriginalName, &category, &status, &metadata,
		&analytics, &aiReport, &farmer, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	d.Category = model.DatasetCategory(category)
	d.Status = model.DatasetStatus(status)
	d.CreatedAt = parseTime(createdAt)
	d.UpdatedAt = parseTime(updatedAt)

	// Parse JSON fields
	if err := json.Unmarshal([]byte(metadata), &d.Metadata); err != nil {
		return nil, fmt.Errorf("dataset %s: metadata: %w", d.ID, err)
	}
	if analytics.Valid {
		d.Analytics = &model.Analytics{}
		if err := json.Unmarshal([]byte(analytics.String), d.Analytics); err != nil {
			return nil, fmt.Errorf("dataset %s: analytics: %w", d.ID, err)
		}
	}
	if aiReport.Valid {
		d.AIReport = &model.AIReport{}
		if err := json.Unmarshal([]byte(aiReport.String), d.AIReport); err != nil {
			return nil, fmt.Errorf("dataset %s: ai report: %w", d.ID, err)
		}
	}
	if farmer.Valid {
		d.LinkedFarmer = &model.LinkedFarmer{}
		if err := json.Unmarshal([]byte(farmer.String), d.LinkedFarmer); err != nil {
			return nil, fmt.Errorf("dataset %s: linked farmer: %w", d.ID, err)
		}
	}

	return d, nil
}

// expectRow turns an update that matched nothing into sql.ErrNoRows
func expectRow(result sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
