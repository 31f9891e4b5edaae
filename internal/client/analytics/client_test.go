package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icancodefyi/sarthi-ai/internal/model"
	"github.com/icancodefyi/sarthi-ai/internal/pkg/config"
	"github.com/icancodefyi/sarthi-ai/internal/pkg/retry"
)

func newTestClient(url string) *Client {
	return New(config.AnalyticsServiceConfig{
		URL:     url + "/",
		Timeout: 5 * time.Second,
		Retry:   retry.Policy{MaxAttempts: 3, Backoff: time.Millisecond},
	})
}

func TestProcess_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/process", r.URL.Path)

		var req processRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ds-1", req.DatasetID)
		assert.Equal(t, "a,b\n1,2\n", req.CSVContent)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"dataset_id":"ds-1","analytics":{"totalRecords":1000,"columns":["a","b"],"riskScore":42,"anomalies":[],"forecast":[]}}`))
	}))
	defer srv.Close()

	analytics, err := newTestClient(srv.URL).Process(context.Background(), "ds-1", "a,b\n1,2\n")
	require.NoError(t, err)
	assert.Equal(t, 1000, analytics.TotalRecords)
	assert.Equal(t, 42.0, analytics.RiskScore)
	assert.Equal(t, []string{"a", "b"}, analytics.Columns)
}

func TestProcess_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"success":true,"dataset_id":"ds-1","analytics":{"totalRecords":5}}`))
	}))
	defer srv.Close()

	analytics, err := newTestClient(srv.URL).Process(context.Background(), "ds-1", "x")
	require.NoError(t, err)
	assert.Equal(t, 5, analytics.TotalRecords)
	assert.Equal(t, int32(3), calls.Load())
}

func TestProcess_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"No CSV content stored for this dataset"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Process(context.Background(), "ds-1", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Equal(t, int32(1), calls.Load())
}

func TestProcess_ReportedFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"success":false,"dataset_id":"ds-1","error":"no numeric columns"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Process(context.Background(), "ds-1", "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProcessingFailed)
	assert.Contains(t, err.Error(), "no numeric columns")
	assert.Equal(t, int32(1), calls.Load())
}

func TestProcess_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url).Process(context.Background(), "ds-1", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 attempts failed")
}

func TestSimulate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/simulate", r.URL.Path)

		var req simulateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ds-1", req.DatasetID)
		assert.Equal(t, "a,b\n1,2\n", req.CSVContent)
		assert.Equal(t, 8, req.ForecastPeriods)
		assert.Equal(t, 3.0, req.ZThreshold)
		assert.Equal(t, -10.0, req.GrowthAdjustment)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"forecastPeriods": 8, "zThreshold": 3, "growthAdjustment": -10,
			"forecast": [{"period": 1001, "value": 11.5, "label": "Period +1"}],
			"filteredAnomalies": [{"rowIndex": 17, "column": "b", "value": 61, "zScore": 3.2, "label": "High"}],
			"filteredRiskScore": 18.5,
			"filteredAnomalyCount": 1
		}`))
	}))
	defer srv.Close()

	params := model.SimulationParams{ForecastPeriods: 8, ZThreshold: 3, GrowthAdjustment: -10}
	result, err := newTestClient(srv.URL).Simulate(context.Background(), "ds-1", "a,b\n1,2\n", params)
	require.NoError(t, err)
	assert.Equal(t, params, result.SimulationParams)
	require.Len(t, result.Forecast, 1)
	assert.Equal(t, 11.5, result.Forecast[0].Value)
	require.Len(t, result.FilteredAnomalies, 1)
	assert.Equal(t, 17, result.FilteredAnomalies[0].RowIndex)
	assert.Equal(t, 18.5, result.FilteredRiskScore)
	assert.Equal(t, 1, result.FilteredAnomalyCount)
}

func TestSimulate_EmptyListsAreNotNull(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"forecastPeriods": 5, "zThreshold": 2.5, "filteredRiskScore": 0, "filteredAnomalyCount": 0}`))
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).Simulate(context.Background(), "ds-1", "x", model.SimulationParams{ForecastPeriods: 5, ZThreshold: 2.5})
	require.NoError(t, err)
	assert.NotNil(t, result.Forecast)
	assert.NotNil(t, result.FilteredAnomalies)
}

func TestSimulate_RetriesServerErrorsAndStopsOnClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail":"Dataset not found"}`))
		}
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Simulate(context.Background(), "ds-1", "x", model.SimulationParams{ForecastPeriods: 5, ZThreshold: 2.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.False(t, retry.IsPermanent(err))
	assert.Equal(t, int32(2), calls.Load())
}
