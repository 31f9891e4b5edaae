// Package analytics calls the external analytics engine that turns raw CSV
// content into dataset statistics.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/icancodefyi/sarthi-ai/internal/model"
	"github.com/icancodefyi/sarthi-ai/internal/pkg/config"
	"github.com/icancodefyi/sarthi-ai/internal/pkg/retry"
	"go.uber.org/zap"
)

// ErrProcessingFailed is returned when the engine answers but could not
// analyze the dataset
var ErrProcessingFailed = errors.New("analytics processing failed")

// Processor computes analytics for a dataset and reruns it under what-if
// parameters
type Processor interface {
	Process(ctx context.Context, datasetID, csvContent string) (*model.Analytics, error)
	Simulate(ctx context.Context, datasetID, csvContent string, params model.SimulationParams) (*model.SimulationResult, error)
}

type processRequest struct {
	DatasetID  string `json:"dataset_id"`
	CSVContent string `json:"csv_content"`
}

type processResponse struct {
	Success   bool             `json:"success"`
	DatasetID string           `json:"dataset_id"`
	Analytics *model.Analytics `json:"analytics"`
	Error     string           `json:"error"`
}

type simulateRequest struct {
	DatasetID        string  `json:"dataset_id"`
	CSVContent       string  `json:"csv_content"`
	ForecastPeriods  int     `json:"forecast_periods"`
	ZThreshold       float64 `json:"z_threshold"`
	GrowthAdjustment float64 `json:"growth_adjustment"`
}

// Client talks to the analytics engine over HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
	policy     retry.Policy
}

// New creates an analytics client from config
func New(cfg config.AnalyticsServiceConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		policy:     cfg.Retry,
	}
}

// Process posts the dataset to {url}/process. Transport errors and 5xx
// answers are retried; 4xx answers and explicit failures are not.
func (c *Client) Process(ctx context.Context, datasetID, csvContent string) (*model.Analytics, error) {
	var result processResponse
	err := c.call(ctx, "/process", datasetID, processRequest{DatasetID: datasetID, CSVContent: csvContent}, func(body []byte) error {
		if err := json.Unmarshal(body, &result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
		if !result.Success || result.Analytics == nil {
			msg := result.Error
			if msg == "" {
				msg = "no analytics returned"
			}
			return fmt.Errorf("%w: %s", ErrProcessingFailed, msg)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result.Analytics, nil
}

// Simulate posts the dataset and the what-if parameters to {url}/simulate
// with the same retry rules as Process. Only the engine's part of the result
// is filled in.
func (c *Client) Simulate(ctx context.Context, datasetID, csvContent string, params model.SimulationParams) (*model.SimulationResult, error) {
	req := simulateRequest{
		DatasetID:        datasetID,
		CSVContent:       csvContent,
		ForecastPeriods:  params.ForecastPeriods,
		ZThreshold:       params.ZThreshold,
		GrowthAdjustment: params.GrowthAdjustment,
	}

	var result model.SimulationResult
	err := c.call(ctx, "/simulate", datasetID, req, func(body []byte) error {
		if err := json.Unmarshal(body, &result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.FilteredAnomalies == nil {
		result.FilteredAnomalies = []model.Anomaly{}
	}
	if result.Forecast == nil {
		result.Forecast = []model.ForecastPoint{}
	}
	return &result, nil
}

// call posts req to path under the retry policy. decode errors are final.
func (c *Client) call(ctx context.Context, path, datasetID string, req any, decode func(body []byte) error) error {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	attempt := 0
	return c.policy.Do(ctx, func(ctx context.Context) error {
		attempt++
		body, err := c.post(ctx, path, jsonData)
		if err == nil {
			if err = decode(body); err != nil {
				err = retry.Permanent(err)
			}
		}
		if err != nil {
			zap.L().Warn("Analytics call failed",
				zap.String("path", path),
				zap.String("dataset_id", datasetID),
				zap.Int("attempt", attempt),
				zap.Error(err))
		}
		return err
	})
}

func (c *Client) post(ctx context.Context, path string, jsonData []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("analytics service returned status %d: %s", resp.StatusCode, string(body))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, retry.Permanent(err)
		}
		return nil, err
	}

	return body, nil
}
