package model

import "time"

// IntegrityStatus is the public verdict of a verification
type IntegrityStatus string

const (
	IntegrityVerified IntegrityStatus = "verified"
	IntegrityTampered IntegrityStatus = "tampered"
)

// HashPayload is the exact set of fields hashed into a report's integrity digest
type HashPayload struct {
	ReportID      string `json:"reportId"`
	DatasetID     string `json:"datasetId"`
	UserID        string `json:"userId"`
	Timestamp     string `json:"timestamp"`     // ISO-8601, UTC, millisecond precision
	AnalyticsHash string `json:"analyticsHash"` // canonical JSON of the analytics snapshot
	AIReportHash  string `json:"aiReportHash"`  // canonical JSON of the AI narrative snapshot
}

// Map returns the payload as the generic document stored with the report
func (p HashPayload) Map() map[string]any {
	return map[string]any{
		"reportId":      p.ReportID,
		"datasetId":     p.DatasetID,
		"userId":        p.UserID,
		"timestamp":     p.Timestamp,
		"analyticsHash": p.AnalyticsHash,
		"aiReportHash":  p.AIReportHash,
	}
}

// SnapshotData is the frozen copy of everything a report certifies
type SnapshotData struct {
	Analytics Analytics      `json:"analytics"`
	AIReport  AIReport       `json:"aiReport"`
	User      UserInfo       `json:"user"`
	Dataset   DatasetSummary `json:"dataset"`
}

// SnapshotSummary holds the key metrics printed on a certificate
type SnapshotSummary struct {
	TotalRecords int     `json:"totalRecords"`
	GrowthRate   float64 `json:"growthRate"`
	RiskScore    float64 `json:"riskScore"`
	AnomalyCount int     `json:"anomalyCount"`
}

// CertificateObject is the human-facing certificate view of a report
type CertificateObject struct {
	ReportID           string          `json:"reportId"`
	UserID             string          `json:"userId"`
	UserName           string          `json:"userName"`
	UserEmail          string          `json:"userEmail"`
	DatasetID          string          `json:"datasetId"`
	DatasetName        string          `json:"datasetName"`
	GeneratedDate      time.Time       `json:"generatedDate"`
	IntegrityHash      string          `json:"integrityHash"`
	AIConfidenceScore  float64         `json:"aiConfidenceScore"`
	QRCodeURL          string          `json:"qrCodeUrl"` // public verification URL
	SnapshotSummary    SnapshotSummary `json:"snapshotSummary"`
	AISummary          string          `json:"aiSummary"`
	CertificationNotes []string        `json:"certificationNotes"`
}

// Report is the persisted, immutable integrity record
type Report struct {
	ID                string            `json:"_id"`
	ReportID          string            `json:"reportId"`
	UserID            string            `json:"userId"`
	DatasetID         string            `json:"datasetId"`
	SnapshotData      SnapshotData      `json:"snapshotData"`
	IntegrityHash     string            `json:"integrityHash"`
	CertificateObject CertificateObject `json:"certificateObject"`
	QRCodeURL         string            `json:"qrCodeUrl"` // data URI, empty when QR rendering failed
	CreatedAt         time.Time         `json:"createdAt"`
	// HashPayload is kept verbatim; without it the digest cannot be recomputed.
	HashPayload map[string]any `json:"hashPayload,omitempty"`
}

// GenerateReportResponse represents the report generation response
type GenerateReportResponse struct {
	Success  bool    `json:"success"`
	ReportID string  `json:"reportId"`
	Report   *Report `json:"report"`
}

// ReportDetailResponse represents the owner view of a report
type ReportDetailResponse struct {
	Report  *Report `json:"report"`
	IsValid bool    `json:"isValid"`
}

// PublicVerification is the unauthenticated projection of a verified report
type PublicVerification struct {
	ReportID          string          `json:"reportId"`
	IsValid           bool            `json:"isValid"`
	IntegrityStatus   IntegrityStatus `json:"integrityStatus"`
	Owner             string          `json:"owner"`
	DatasetName       string          `json:"datasetName"`
	GeneratedDate     time.Time       `json:"generatedDate"`
	AIConfidenceScore *float64        `json:"aiConfidenceScore"`
	IntegrityHash     string          `json:"integrityHash"`
}
