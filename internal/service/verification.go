package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/icancodefyi/sarthi-ai/internal/model"
	"github.com/icancodefyi/sarthi-ai/internal/pkg/integrity"
	"github.com/icancodefyi/sarthi-ai/internal/repository"
)

const reportListLimit = 50

// VerificationService re-checks stored reports against their digests.
// Verdicts are computed on every call and never stored.
type VerificationService struct {
	reports *repository.ReportRepo
}

func NewVerificationService(reports *repository.ReportRepo) *VerificationService {
	return &VerificationService{reports: reports}
}

// Check recomputes the digest of a stored report. A record without its hash
// payload cannot be verified and counts as tampered.
func Check(report *model.Report) bool {
	if len(report.HashPayload) == 0 {
		return false
	}
	return integrity.Verify(report.HashPayload, report.IntegrityHash)
}

// Verify returns the public verdict for a report id
func (s *VerificationService) Verify(ctx context.Context, reportID string) (*model.PublicVerification, error) {
	report, err := s.load(ctx, reportID)
	if err != nil {
		return nil, err
	}

	isValid := Check(report)
	status := model.IntegrityVerified
	if !isValid {
		status = model.IntegrityTampered
		zap.L().Warn("Report failed integrity verification", zap.String("report_id", reportID))
	}

	score := report.CertificateObject.AIConfidenceScore
	return &model.PublicVerification{
		ReportID:          reportID,
		IsValid:           isValid,
		IntegrityStatus:   status,
		Owner:             orUnknown(report.SnapshotData.User.Name),
		DatasetName:       orUnknown(report.CertificateObject.DatasetName),
		GeneratedDate:     report.CreatedAt,
		AIConfidenceScore: &score,
		IntegrityHash:     report.IntegrityHash,
	}, nil
}

// GetReport returns a user's full report together with a fresh verdict
func (s *VerificationService) GetReport(ctx context.Context, userID, reportID string) (*model.ReportDetailResponse, error) {
	report, err := s.load(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.UserID != userID {
		return nil, ErrReportNotFound
	}

	return &model.ReportDetailResponse{Report: report, IsValid: Check(report)}, nil
}

// ListReports returns a user's latest reports without their QR images
func (s *VerificationService) ListReports(ctx context.Context, userID string) ([]model.Report, error) {
	reports, err := s.reports.ListByUser(ctx, userID, reportListLimit)
	if err != nil {
		return nil, persistErr("list reports", err)
	}
	return reports, nil
}

func (s *VerificationService) load(ctx context.Context, reportID string) (*model.Report, error) {
	if reportID == "" {
		return nil, ErrReportNotFound
	}
	report, err := s.reports.GetByReportID(ctx, reportID)
	if err != nil {
		return nil, persistErr("load report", err)
	}
	if report == nil {
		return nil, ErrReportNotFound
	}
	return report, nil
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
