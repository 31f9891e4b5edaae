package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icancodefyi/sarthi-ai/internal/model"
)

func strictScenario() *model.SimulationResult {
	return &model.SimulationResult{
		SimulationParams:     model.SimulationParams{ForecastPeriods: 3, ZThreshold: 1.5, GrowthAdjustment: 10},
		Forecast:             []model.ForecastPoint{{Period: 1001, Value: 14.2, Label: "Period +1"}},
		FilteredAnomalies:    []model.Anomaly{{RowIndex: 17}, {RowIndex: 40}, {RowIndex: 41}},
		FilteredRiskScore:    55,
		FilteredAnomalyCount: 3,
	}
}

func TestSimulate_ComparesAgainstStoredAnalytics(t *testing.T) {
	env := newTestEnv(t)
	env.seedDataset(t, "ds-1", true, false)
	proc := &stubProcessor{simulation: strictScenario()}
	svc := NewSimulationService(env.datasets, proc)

	params := model.SimulationParams{ForecastPeriods: 3, ZThreshold: 1.5, GrowthAdjustment: 10}
	result, err := svc.Simulate(context.Background(), testUserID, "ds-1", params)
	require.NoError(t, err)

	assert.Equal(t, params, proc.gotParams)
	assert.Equal(t, "date,rainfall_mm\n", proc.gotCSV)
	assert.Equal(t, 1, result.OriginalAnomalyCount)
	assert.Equal(t, 42.0, result.OriginalRiskScore)
	assert.Equal(t, 2, result.AnomalyDelta)
	assert.Equal(t, 13.0, result.RiskDelta)
	assert.Len(t, result.Forecast, 1)

	// The stored analytics are left untouched
	ds, err := env.datasets.GetByID(context.Background(), testUserID, "ds-1")
	require.NoError(t, err)
	assert.Equal(t, 42.0, ds.Analytics.RiskScore)
	assert.Len(t, ds.Analytics.Anomalies, 1)
}

func TestSimulate_WithoutAnalyticsComparesAgainstZero(t *testing.T) {
	env := newTestEnv(t)
	env.seedDataset(t, "ds-1", false, false)
	svc := NewSimulationService(env.datasets, &stubProcessor{simulation: strictScenario()})

	result, err := svc.Simulate(context.Background(), testUserID, "ds-1", model.SimulateRequest{}.Params())
	require.NoError(t, err)
	assert.Equal(t, 0, result.OriginalAnomalyCount)
	assert.Equal(t, 0.0, result.OriginalRiskScore)
	assert.Equal(t, 3, result.AnomalyDelta)
	assert.Equal(t, 55.0, result.RiskDelta)
}

func TestSimulate_UnknownDataset(t *testing.T) {
	env := newTestEnv(t)
	proc := &stubProcessor{simulation: strictScenario()}
	svc := NewSimulationService(env.datasets, proc)

	_, err := svc.Simulate(context.Background(), testUserID, "missing", model.SimulateRequest{}.Params())
	assert.ErrorIs(t, err, ErrDatasetNotFound)
	assert.Zero(t, proc.simCalls)
}

func TestSimulate_OtherUsersDatasetIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.seedDataset(t, "ds-1", true, false)
	svc := NewSimulationService(env.datasets, &stubProcessor{simulation: strictScenario()})

	_, err := svc.Simulate(context.Background(), "someone-else", "ds-1", model.SimulateRequest{}.Params())
	assert.ErrorIs(t, err, ErrDatasetNotFound)
}

func TestSimulate_RejectsBadParams(t *testing.T) {
	env := newTestEnv(t)
	env.seedDataset(t, "ds-1", true, false)
	proc := &stubProcessor{simulation: strictScenario()}
	svc := NewSimulationService(env.datasets, proc)

	cases := map[string]model.SimulationParams{
		"no periods":       {ForecastPeriods: 0, ZThreshold: 2.5},
		"too many periods": {ForecastPeriods: 61, ZThreshold: 2.5},
		"zero threshold":   {ForecastPeriods: 5, ZThreshold: 0},
		"negative growth":  {ForecastPeriods: 5, ZThreshold: 2.5, GrowthAdjustment: -150},
	}
	for name, params := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Simulate(context.Background(), testUserID, "ds-1", params)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	assert.Zero(t, proc.simCalls)
}

func TestSimulate_EmptyCSV(t *testing.T) {
	env := newTestEnv(t)
	env.seedDataset(t, "ds-1", true, false)
	_, err := env.db.Exec(`UPDATE datasets SET csv_content = '' WHERE id = ?`, "ds-1")
	require.NoError(t, err)
	svc := NewSimulationService(env.datasets, &stubProcessor{simulation: strictScenario()})

	_, err = svc.Simulate(context.Background(), testUserID, "ds-1", model.SimulateRequest{}.Params())
	assert.ErrorIs(t, err, ErrNoCSVContent)
}

func TestSimulate_EngineFailure(t *testing.T) {
	env := newTestEnv(t)
	env.seedDataset(t, "ds-1", true, false)
	svc := NewSimulationService(env.datasets, &stubProcessor{err: errors.New("engine down")})

	_, err := svc.Simulate(context.Background(), testUserID, "ds-1", model.SimulateRequest{}.Params())
	assert.ErrorIs(t, err, ErrSimulationFailed)
	assert.Contains(t, err.Error(), "engine down")
	assert.NotErrorIs(t, err, ErrInvalidInput)
}

func TestSimulateRequest_Params(t *testing.T) {
	periods := 12
	zero := 0.0

	p := model.SimulateRequest{ForecastPeriods: &periods, GrowthAdjustment: &zero}.Params()
	assert.Equal(t, model.SimulationParams{ForecastPeriods: 12, ZThreshold: 2.5, GrowthAdjustment: 0}, p)

	p = model.SimulateRequest{}.Params()
	assert.Equal(t, model.SimulationParams{ForecastPeriods: 5, ZThreshold: 2.5, GrowthAdjustment: 0}, p)
}
