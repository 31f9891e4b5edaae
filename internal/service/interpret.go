package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/icancodefyi/sarthi-ai/internal/client/llm"
	"github.com/icancodefyi/sarthi-ai/internal/model"
	"github.com/icancodefyi/sarthi-ai/internal/repository"
)

// ErrNarratorFailed wraps failures of the LLM call
var ErrNarratorFailed = errors.New("AI interpretation failed")

// InterpretService attaches an AI narrative to analyzed datasets
type InterpretService struct {
	datasets *repository.DatasetRepo
	narrator llm.Narrator
}

func NewInterpretService(datasets *repository.DatasetRepo, narrator llm.Narrator) *InterpretService {
	return &InterpretService{datasets: datasets, narrator: narrator}
}

// Interpret asks the narrator about the dataset's analytics and stores the
// answer. Running it again replaces the previous narrative; reports already
// generated keep theirs.
func (s *InterpretService) Interpret(ctx context.Context, userID, datasetID string) (*model.AIReport, error) {
	dataset, err := s.datasets.GetByID(ctx, userID, datasetID)
	if err != nil {
		return nil, persistErr("load dataset", err)
	}
	if dataset == nil {
		return nil, ErrDatasetNotFound
	}
	if dataset.Analytics == nil {
		return nil, ErrAnalyticsNotReady
	}

	report, err := s.narrator.Interpret(ctx, dataset.OriginalName, dataset.Analytics)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNarratorFailed, err)
	}

	if err := s.datasets.SetAIReport(ctx, userID, datasetID, report, time.Now()); err != nil {
		return nil, persistErr("store AI report", err)
	}

	zap.L().Info("AI report stored",
		zap.String("dataset_id", datasetID),
		zap.Float64("confidence_score", report.ConfidenceScore))

	return report, nil
}
