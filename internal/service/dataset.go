package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/icancodefyi/sarthi-ai/internal/client/analytics"
	"github.com/icancodefyi/sarthi-ai/internal/model"
	"github.com/icancodefyi/sarthi-ai/internal/repository"
)

const datasetListLimit = 50

// UploadInput describes an uploaded CSV file
type UploadInput struct {
	UserID   string
	Filename string
	Category model.DatasetCategory
	Content  []byte
}

// DatasetService manages uploads and hands them to the analytics engine
type DatasetService struct {
	datasets       *repository.DatasetRepo
	processor      analytics.Processor
	processTimeout time.Duration
	maxUploadBytes int64

	wg sync.WaitGroup
}

func NewDatasetService(datasets *repository.DatasetRepo, processor analytics.Processor, processTimeout time.Duration, maxUploadBytes int64) *DatasetService {
	if processTimeout <= 0 {
		processTimeout = 2 * time.Minute
	}
	return &DatasetService{
		datasets:       datasets,
		processor:      processor,
		processTimeout: processTimeout,
		maxUploadBytes: maxUploadBytes,
	}
}

// Upload stores the file and starts analytics processing in the background
func (s *DatasetService) Upload(ctx context.Context, in UploadInput) (*model.Dataset, error) {
	if err := CheckFilename(in.Filename); err != nil {
		return nil, err
	}
	if len(in.Content) == 0 {
		return nil, ErrEmptyFile
	}
	if s.maxUploadBytes > 0 && int64(len(in.Content)) > s.maxUploadBytes {
		return nil, ErrFileTooLarge
	}

	category := in.Category
	if category == "" {
		category = model.CategoryGeneral
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	dataset := &model.Dataset{
		ID:           id,
		UserID:       in.UserID,
		Filename:     id + ".csv",
		OriginalName: filepath.Base(in.Filename),
		Category:     category,
		Status:       model.DatasetStatusProcessing,
		Metadata: model.DatasetMetadata{
			Columns:  []string{},
			FileSize: int64(len(in.Content)),
		},
		CSVContent: string(in.Content),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.datasets.Create(ctx, dataset); err != nil {
		return nil, persistErr("create dataset", err)
	}

	zap.L().Info("Dataset uploaded",
		zap.String("dataset_id", id),
		zap.String("filename", dataset.OriginalName),
		zap.Int64("size", dataset.Metadata.FileSize))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.process(id, dataset.CSVContent)
	}()

	return dataset, nil
}

// CheckFilename accepts only .csv uploads
func CheckFilename(name string) error {
	if !strings.HasSuffix(name, ".csv") {
		return ErrNotCSV
	}
	return nil
}

// process runs detached from the upload request
func (s *DatasetService) process(datasetID, csvContent string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.processTimeout)
	defer cancel()

	result, err := s.processor.Process(ctx, datasetID, csvContent)
	if err == nil && result == nil {
		err = analytics.ErrProcessingFailed
	}
	if err != nil {
		zap.L().Error("Analytics processing failed",
			zap.String("dataset_id", datasetID),
			zap.Error(err))
		if err := s.datasets.SetStatus(context.Background(), datasetID, model.DatasetStatusFailed, time.Now()); err != nil && !errors.Is(err, sql.ErrNoRows) {
			zap.L().Error("Failed to mark dataset failed", zap.String("dataset_id", datasetID), zap.Error(err))
		}
		return
	}

	if err := s.datasets.SetAnalytics(context.Background(), datasetID, result, time.Now()); err != nil {
		zap.L().Error("Failed to store analytics",
			zap.String("dataset_id", datasetID),
			zap.Error(err))
		return
	}

	zap.L().Info("Analytics stored",
		zap.String("dataset_id", datasetID),
		zap.Int("total_records", result.TotalRecords))
}

// Wait blocks until background processing started so far has finished
func (s *DatasetService) Wait() {
	s.wg.Wait()
}

// Get returns one of the user's datasets
func (s *DatasetService) Get(ctx context.Context, userID, datasetID string) (*model.Dataset, error) {
	dataset, err := s.datasets.GetByID(ctx, userID, datasetID)
	if err != nil {
		return nil, persistErr("load dataset", err)
	}
	if dataset == nil {
		return nil, ErrDatasetNotFound
	}
	return dataset, nil
}

// List returns the user's latest datasets
func (s *DatasetService) List(ctx context.Context, userID string) ([]model.Dataset, error) {
	datasets, err := s.datasets.List(ctx, userID, datasetListLimit)
	if err != nil {
		return nil, persistErr("list datasets", err)
	}
	return datasets, nil
}

// Delete removes a dataset. Reports already generated from it stay verifiable.
func (s *DatasetService) Delete(ctx context.Context, userID, datasetID string) error {
	deleted, err := s.datasets.Delete(ctx, userID, datasetID)
	if err != nil {
		return persistErr("delete dataset", err)
	}
	if !deleted {
		return fmt.Errorf("%w: %s", ErrDatasetNotFound, datasetID)
	}
	return nil
}
