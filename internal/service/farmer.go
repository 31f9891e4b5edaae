package service

import (
	"context"
	"time"

	"github.com/icancodefyi/sarthi-ai/internal/directory"
	"github.com/icancodefyi/sarthi-ai/internal/model"
	"github.com/icancodefyi/sarthi-ai/internal/repository"
)

// FarmerService looks up citizens and links them to datasets
type FarmerService struct {
	registry directory.CitizenRegistry
	datasets *repository.DatasetRepo
}

func NewFarmerService(registry directory.CitizenRegistry, datasets *repository.DatasetRepo) *FarmerService {
	return &FarmerService{registry: registry, datasets: datasets}
}

// Lookup finds a farmer by Aadhaar number
func (s *FarmerService) Lookup(ctx context.Context, aadhaar string) (*model.FarmerProfile, error) {
	farmer, err := s.registry.Lookup(ctx, aadhaar)
	if err != nil {
		return nil, err
	}
	if farmer == nil {
		return nil, ErrFarmerNotFound
	}
	return farmer, nil
}

// Link attaches the farmer with the given Aadhaar number to a dataset
func (s *FarmerService) Link(ctx context.Context, userID, datasetID, aadhaar string) (*model.FarmerProfile, error) {
	farmer, err := s.Lookup(ctx, aadhaar)
	if err != nil {
		return nil, err
	}

	ok, err := s.datasets.SetLinkedFarmer(ctx, userID, datasetID, farmer.Link(), time.Now())
	if err != nil {
		return nil, persistErr("link farmer", err)
	}
	if !ok {
		return nil, ErrDatasetNotFound
	}
	return farmer, nil
}

// Unlink removes the farmer linked to a dataset
func (s *FarmerService) Unlink(ctx context.Context, userID, datasetID string) error {
	ok, err := s.datasets.SetLinkedFarmer(ctx, userID, datasetID, nil, time.Now())
	if err != nil {
		return persistErr("unlink farmer", err)
	}
	if !ok {
		return ErrDatasetNotFound
	}
	return nil
}
