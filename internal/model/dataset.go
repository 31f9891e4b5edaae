package model

import "time"

// DatasetStatus is the processing state of an uploaded dataset
type DatasetStatus string

const (
	DatasetStatusProcessing DatasetStatus = "processing"
	DatasetStatusAnalyzed   DatasetStatus = "analyzed"
	DatasetStatusCompleted  DatasetStatus = "completed"
	DatasetStatusFailed     DatasetStatus = "failed"
)

// DatasetCategory classifies a dataset by government domain
type DatasetCategory string

const (
	CategoryAgricultural   DatasetCategory = "agricultural"
	CategoryHealth         DatasetCategory = "health"
	CategoryEducation      DatasetCategory = "education"
	CategoryFinance        DatasetCategory = "finance"
	CategoryInfrastructure DatasetCategory = "infrastructure"
	CategoryEnvironment    DatasetCategory = "environment"
	CategorySocial         DatasetCategory = "social"
	CategoryGeneral        DatasetCategory = "general"
)

// Dataset represents an uploaded CSV dataset
type Dataset struct {
	ID           string          `json:"_id" db:"id"`
	UserID       string          `json:"userId" db:"user_id"`
	Filename     string          `json:"filename" db:"filename"`
	OriginalName string          `json:"originalName" db:"original_name"`
	Category     DatasetCategory `json:"category" db:"category"`
	Status       DatasetStatus   `json:"status" db:"status"`
	Metadata     DatasetMetadata `json:"metadata" db:"metadata"`
	Analytics    *Analytics      `json:"analytics" db:"analytics"` // null until processed
	AIReport     *AIReport       `json:"aiReport" db:"ai_report"`  // null until interpreted
	LinkedFarmer *LinkedFarmer   `json:"linkedFarmer,omitempty" db:"linked_farmer"`
	CSVContent   string          `json:"-" db:"csv_content"` // Never returned to clients
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time       `json:"updatedAt" db:"updated_at"`
}

// DatasetMetadata describes the shape of the uploaded file
type DatasetMetadata struct {
	RowCount    int      `json:"rowCount"`
	ColumnCount int      `json:"columnCount"`
	Columns     []string `json:"columns"`
	FileSize    int64    `json:"fileSize"`
}

// Analytics is the result computed by the external analytics service
type Analytics struct {
	TotalRecords   int                       `json:"totalRecords"`
	DateRange      *DateRange                `json:"dateRange"`
	Columns        []string                  `json:"columns"`
	NumericSummary map[string]NumericSummary `json:"numericSummary"`
	GrowthPercent  *float64                  `json:"growthPercent"`
	MovingAverages map[string][]float64      `json:"movingAverages"`
	Anomalies      []Anomaly                 `json:"anomalies"`
	RiskScore      float64                   `json:"riskScore"`
	Forecast       []ForecastPoint           `json:"forecast"`
}

// DateRange is the detected min/max of a date column
type DateRange struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

// NumericSummary holds descriptive statistics for one numeric column
type NumericSummary struct {
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	StdDev   float64 `json:"stdDev"`
}

// Anomaly is a single flagged value
type Anomaly struct {
	RowIndex int     `json:"rowIndex"`
	Column   string  `json:"column"`
	Value    float64 `json:"value"`
	ZScore   float64 `json:"zScore"`
	Label    string  `json:"label"`
}

// ForecastPoint is one projected period
type ForecastPoint struct {
	Period int     `json:"period"`
	Value  float64 `json:"value"`
	Label  string  `json:"label"`
}

// AIReport is the LLM narrative over a dataset's analytics
type AIReport struct {
	ExecutiveSummary       string   `json:"executiveSummary"`
	InsightHighlights      []string `json:"insightHighlights"`
	AnomalyExplanations    []string `json:"anomalyExplanations"`
	RiskReasoning          string   `json:"riskReasoning"`
	ForecastNarrative      string   `json:"forecastNarrative"`
	ContextualNews         []string `json:"contextualNews"`
	CertificationReasoning string   `json:"certificationReasoning"`
	ConfidenceScore        float64  `json:"confidenceScore"`
}

// DatasetSummary is the shape of a dataset captured inside a report snapshot
type DatasetSummary struct {
	Filename     string          `json:"filename"`
	OriginalName string          `json:"originalName"`
	Metadata     DatasetMetadata `json:"metadata"`
}

// UploadResponse represents the upload endpoint response
type UploadResponse struct {
	Success   bool   `json:"success"`
	DatasetID string `json:"datasetId"`
	Message   string `json:"message"`
}

// LinkFarmerRequest represents link-farmer request
type LinkFarmerRequest struct {
	Aadhaar string `json:"aadhaar" binding:"required"`
}
