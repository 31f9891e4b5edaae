package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/icancodefyi/sarthi-ai/internal/client/analytics"
	"github.com/icancodefyi/sarthi-ai/internal/model"
	"github.com/icancodefyi/sarthi-ai/internal/repository"
)

// ErrSimulationFailed wraps failures of the analytics engine during a simulation
var ErrSimulationFailed = errors.New("simulation failed")

const maxForecastPeriods = 60

// SimulationService reruns a dataset's analytics under what-if parameters
type SimulationService struct {
	datasets  *repository.DatasetRepo
	processor analytics.Processor
}

func NewSimulationService(datasets *repository.DatasetRepo, processor analytics.Processor) *SimulationService {
	return &SimulationService{datasets: datasets, processor: processor}
}

// Simulate sends the stored CSV and params to the engine and sets the result
// against the stored analytics. A dataset without analytics compares against
// zero. Nothing is written back.
func (s *SimulationService) Simulate(ctx context.Context, userID, datasetID string, params model.SimulationParams) (*model.SimulationResult, error) {
	if err := validateSimulation(params); err != nil {
		return nil, err
	}

	dataset, err := s.datasets.GetByID(ctx, userID, datasetID)
	if err != nil {
		return nil, persistErr("load dataset", err)
	}
	if dataset == nil {
		return nil, ErrDatasetNotFound
	}

	csv, err := s.datasets.GetCSVContent(ctx, datasetID)
	if err != nil {
		return nil, persistErr("load csv content", err)
	}
	if csv == "" {
		return nil, ErrNoCSVContent
	}

	result, err := s.processor.Simulate(ctx, datasetID, csv, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSimulationFailed, err)
	}

	if a := dataset.Analytics; a != nil {
		result.OriginalAnomalyCount = len(a.Anomalies)
		result.OriginalRiskScore = a.RiskScore
	}
	result.AnomalyDelta = result.FilteredAnomalyCount - result.OriginalAnomalyCount
	result.RiskDelta = result.FilteredRiskScore - result.OriginalRiskScore

	zap.L().Info("Simulation completed",
		zap.String("dataset_id", datasetID),
		zap.Int("forecast_periods", params.ForecastPeriods),
		zap.Float64("z_threshold", params.ZThreshold),
		zap.Int("anomaly_delta", result.AnomalyDelta))

	return result, nil
}

func validateSimulation(p model.SimulationParams) error {
	switch {
	case p.ForecastPeriods < 1 || p.ForecastPeriods > maxForecastPeriods:
		return fmt.Errorf("%w: forecastPeriods must be between 1 and %d", ErrInvalidInput, maxForecastPeriods)
	case p.ZThreshold <= 0:
		return fmt.Errorf("%w: zThreshold must be positive", ErrInvalidInput)
	case p.GrowthAdjustment < -100:
		return fmt.Errorf("%w: growthAdjustment cannot be below -100", ErrInvalidInput)
	}
	return nil
}
