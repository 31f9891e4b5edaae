package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/icancodefyi/sarthi-ai/internal/directory"
	"github.com/icancodefyi/sarthi-ai/internal/model"
	"github.com/icancodefyi/sarthi-ai/internal/pkg/integrity"
	"github.com/icancodefyi/sarthi-ai/internal/repository"
)

// hashTimestampLayout renders UTC times as 2024-03-01T10:00:00.000Z
const hashTimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// QREncoder renders a URL into an image data URI
type QREncoder interface {
	Encode(url string) (string, error)
}

// ReportService freezes a dataset's analytics and narrative into a certified report
type ReportService struct {
	db       *sql.DB
	datasets *repository.DatasetRepo
	reports  *repository.ReportRepo
	users    directory.UserDirectory
	qr       QREncoder
	baseURL  string
	now      func() time.Time
	newID    func() string
}

// ReportOption customizes a ReportService
type ReportOption func(*ReportService)

// WithClock replaces the wall clock used to stamp reports
func WithClock(now func() time.Time) ReportOption {
	return func(s *ReportService) { s.now = now }
}

// WithIDGenerator replaces the report id generator
func WithIDGenerator(newID func() string) ReportOption {
	return func(s *ReportService) { s.newID = newID }
}

// NewReportService creates a report service. baseURL prefixes the public
// verification links.
func NewReportService(
	db *sql.DB,
	datasets *repository.DatasetRepo,
	reports *repository.ReportRepo,
	users directory.UserDirectory,
	qr QREncoder,
	baseURL string,
	opts ...ReportOption,
) *ReportService {
	s := &ReportService{
		db:       db,
		datasets: datasets,
		reports:  reports,
		users:    users,
		qr:       qr,
		baseURL:  baseURL,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AssembleInput is what a report is built from
type AssembleInput struct {
	Dataset *model.Dataset
	Owner   model.UserInfo
}

// VerifyURL returns the public verification link of a report
func (s *ReportService) VerifyURL(reportID string) string {
	return s.baseURL + "/verify/" + reportID
}

// Generate loads the owner's dataset and assembles a report from it
func (s *ReportService) Generate(ctx context.Context, userID, datasetID string) (*model.Report, error) {
	dataset, err := s.datasets.GetByID(ctx, userID, datasetID)
	if err != nil {
		return nil, persistErr("load dataset", err)
	}
	if dataset == nil {
		return nil, ErrDatasetNotFound
	}

	owner := model.UserInfo{ID: userID}
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, persistErr("load user", err)
	}
	if user != nil {
		owner = user.Info()
	} else {
		zap.L().Warn("Report owner missing from directory", zap.String("user_id", userID))
	}

	return s.Assemble(ctx, AssembleInput{Dataset: dataset, Owner: owner})
}

// Assemble builds the integrity record for a dataset that has both analytics
// and a narrative, and stores it. Nothing is written when a precondition fails.
func (s *ReportService) Assemble(ctx context.Context, in AssembleInput) (*model.Report, error) {
	ds := in.Dataset
	if ds == nil {
		return nil, ErrDatasetNotFound
	}
	if ds.Analytics == nil {
		return nil, ErrAnalyticsNotReady
	}
	if ds.AIReport == nil {
		return nil, ErrNarrativeNotReady
	}

	// Frozen copies share nothing with the dataset, so later edits to it
	// cannot reach the report
	var snapshot model.SnapshotData
	if err := deepCopy(ds.Analytics, &snapshot.Analytics); err != nil {
		return nil, fmt.Errorf("snapshot analytics: %w", err)
	}
	if err := deepCopy(ds.AIReport, &snapshot.AIReport); err != nil {
		return nil, fmt.Errorf("snapshot AI report: %w", err)
	}
	snapshot.User = in.Owner
	snapshot.Dataset = model.DatasetSummary{
		Filename:     ds.Filename,
		OriginalName: ds.OriginalName,
	}
	if err := deepCopy(ds.Metadata, &snapshot.Dataset.Metadata); err != nil {
		return nil, fmt.Errorf("snapshot metadata: %w", err)
	}

	analyticsHash, err := integrity.Canonicalize(snapshot.Analytics)
	if err != nil {
		return nil, err
	}
	aiReportHash, err := integrity.Canonicalize(snapshot.AIReport)
	if err != nil {
		return nil, err
	}

	reportID := s.newID()
	now := s.now().UTC().Truncate(time.Millisecond)

	payload := model.HashPayload{
		ReportID:      reportID,
		DatasetID:     ds.ID,
		UserID:        in.Owner.ID,
		Timestamp:     now.Format(hashTimestampLayout),
		AnalyticsHash: analyticsHash,
		AIReportHash:  aiReportHash,
	}.Map()

	integrityHash, err := integrity.Hash(payload)
	if err != nil {
		return nil, err
	}

	verifyURL := s.VerifyURL(reportID)
	qrCodeURL, err := s.qr.Encode(verifyURL)
	if err != nil {
		zap.L().Warn("QR code generation failed, continuing without image",
			zap.String("report_id", reportID),
			zap.Error(err))
		qrCodeURL = ""
	}

	report := &model.Report{
		ID:                reportID,
		ReportID:          reportID,
		UserID:            in.Owner.ID,
		DatasetID:         ds.ID,
		SnapshotData:      snapshot,
		IntegrityHash:     integrityHash,
		CertificateObject: certificate(reportID, ds, snapshot, integrityHash, verifyURL, now),
		QRCodeURL:         qrCodeURL,
		CreatedAt:         now,
		HashPayload:       payload,
	}

	err = repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.reports.Insert(ctx, tx, report); err != nil {
			return err
		}
		err := s.datasets.SetStatusTx(ctx, tx, ds.ID, model.DatasetStatusCompleted, now)
		if errors.Is(err, sql.ErrNoRows) {
			// Dataset deleted meanwhile; the report stands on its own
			return nil
		}
		return err
	})
	if err != nil {
		return nil, persistErr("insert report", err)
	}

	zap.L().Info("Report generated",
		zap.String("report_id", reportID),
		zap.String("dataset_id", ds.ID),
		zap.String("integrity_hash", integrityHash))

	return report, nil
}

func certificate(reportID string, ds *model.Dataset, snap model.SnapshotData, hash, verifyURL string, now time.Time) model.CertificateObject {
	growth := 0.0
	if snap.Analytics.GrowthPercent != nil {
		growth = *snap.Analytics.GrowthPercent
	}

	notes := []string{}
	if snap.AIReport.CertificationReasoning != "" {
		notes = append(notes, snap.AIReport.CertificationReasoning)
	}

	return model.CertificateObject{
		ReportID:          reportID,
		UserID:            snap.User.ID,
		UserName:          snap.User.Name,
		UserEmail:         snap.User.Email,
		DatasetID:         ds.ID,
		DatasetName:       ds.OriginalName,
		GeneratedDate:     now,
		IntegrityHash:     hash,
		AIConfidenceScore: snap.AIReport.ConfidenceScore,
		QRCodeURL:         verifyURL,
		SnapshotSummary: model.SnapshotSummary{
			TotalRecords: snap.Analytics.TotalRecords,
			GrowthRate:   growth,
			RiskScore:    snap.Analytics.RiskScore,
			AnomalyCount: len(snap.Analytics.Anomalies),
		},
		AISummary:          snap.AIReport.ExecutiveSummary,
		CertificationNotes: notes,
	}
}

func deepCopy(src, dst any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
