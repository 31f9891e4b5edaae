package model

// Simulation defaults applied when a request leaves a knob out
const (
	DefaultForecastPeriods  = 5
	DefaultZThreshold       = 2.5
	DefaultGrowthAdjustment = 0
)

// SimulationParams are the what-if knobs of a scenario run
type SimulationParams struct {
	ForecastPeriods  int     `json:"forecastPeriods"`
	ZThreshold       float64 `json:"zThreshold"`
	GrowthAdjustment float64 `json:"growthAdjustment"` // percent applied to forecast values
}

// SimulateRequest is the body of POST /api/datasets/:id/simulate. Missing
// fields fall back to the defaults.
type SimulateRequest struct {
	ForecastPeriods  *int     `json:"forecastPeriods"`
	ZThreshold       *float64 `json:"zThreshold"`
	GrowthAdjustment *float64 `json:"growthAdjustment"`
}

// Params resolves the request against the defaults
func (r SimulateRequest) Params() SimulationParams {
	p := SimulationParams{
		ForecastPeriods:  DefaultForecastPeriods,
		ZThreshold:       DefaultZThreshold,
		GrowthAdjustment: DefaultGrowthAdjustment,
	}
	if r.ForecastPeriods != nil {
		p.ForecastPeriods = *r.ForecastPeriods
	}
	if r.ZThreshold != nil {
		p.ZThreshold = *r.ZThreshold
	}
	if r.GrowthAdjustment != nil {
		p.GrowthAdjustment = *r.GrowthAdjustment
	}
	return p
}

// SimulationResult is a scenario recomputed from the stored CSV next to the
// dataset's original analytics. Nothing of it is persisted.
type SimulationResult struct {
	SimulationParams
	Forecast             []ForecastPoint `json:"forecast"`
	FilteredAnomalies    []Anomaly       `json:"filteredAnomalies"`
	FilteredRiskScore    float64         `json:"filteredRiskScore"`
	FilteredAnomalyCount int             `json:"filteredAnomalyCount"`
	OriginalAnomalyCount int             `json:"originalAnomalyCount"`
	OriginalRiskScore    float64         `json:"originalRiskScore"`
	AnomalyDelta         int             `json:"anomalyDelta"`
	RiskDelta            float64         `json:"riskDelta"`
}

// SimulateResponse wraps a simulation result
type SimulateResponse struct {
	Success    bool              `json:"success"`
	Simulation *SimulationResult `json:"simulation"`
}
