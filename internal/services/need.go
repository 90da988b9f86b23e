package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/agrocoop/farmdesk/internal/store"
	"github.com/agrocoop/farmdesk/types"
)

// NeedRepository defines persistence operations for needs.
type NeedRepository interface {
	List(ctx context.Context) ([]types.Need, error)
	ListByFarmer(ctx context.Context, farmerID int) ([]types.Need, error)
	Get(ctx context.Context, id int) (types.Need, error)
	Create(ctx context.Context, need types.Need) (types.Need, error)
	Update(ctx context.Context, need types.Need) error
	Delete(ctx context.Context, id int) error
}

// NeedService encapsulates need use-cases. Status changes are not
// restricted: any status may follow any other.
type NeedService struct {
	repo   NeedRepository
	events recorder
}

func NewNeedService(repo NeedRepository, events EventPublisher, logger *slog.Logger) *NeedService {
	return &NeedService{repo: repo, events: newRecorder(events, logger)}
}

func (s *NeedService) List(ctx context.Context) ([]types.Need, error) {
	return s.repo.List(ctx)
}

func (s *NeedService) ListByFarmer(ctx context.Context, farmerID int) ([]types.Need, error) {
	return s.repo.ListByFarmer(ctx, farmerID)
}

func (s *NeedService) Get(ctx context.Context, id int) (types.Need, error) {
	return s.repo.Get(ctx, id)
}

// Create adds a need. Type defaults to good and status to required.
func (s *NeedService) Create(ctx context.Context, need types.Need) (types.Need, error) {
	if need.Type == "" {
		need.Type = types.NeedTypeGood
	}
	if need.Status == "" {
		need.Status = types.NeedStatusRequired
	}
	if err := validateNeed(&need); err != nil {
		return types.Need{}, err
	}

	created, err := s.repo.Create(ctx, need)
	if err != nil {
		return types.Need{}, err
	}
	s.events.record(ctx, entityNeed, types.ActionCreated, created.ID, created.FarmerID)
	return created, nil
}

// Update overwrites a need. It reports false when no need has need.ID.
func (s *NeedService) Update(ctx context.Context, need types.Need) (bool, error) {
	if err := validateNeed(&need); err != nil {
		return false, err
	}
	if err := s.repo.Update(ctx, need); err != nil {
		if errors.Is(err, store.ErrNotFound) && !errors.Is(err, store.ErrUnknownFarmer) {
			return false, nil
		}
		return false, err
	}
	s.events.record(ctx, entityNeed, types.ActionUpdated, need.ID, need.FarmerID)
	return true, nil
}

// Delete removes a need. It reports false when no need has the id.
func (s *NeedService) Delete(ctx context.Context, id int) (bool, error) {
	need, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	s.events.record(ctx, entityNeed, types.ActionDeleted, id, need.FarmerID)
	return true, nil
}

func validateNeed(need *types.Need) error {
	need.Name = strings.TrimSpace(need.Name)

	var p problems
	p.add(need.FarmerID > 0, "farmer_id is required")
	p.add(need.Name != "", "need name is required")
	p.add(need.Type.Valid(), "need type must be good or service")
	p.add(need.Status.Valid(), "status must be required, purchased or in-progress")
	p.add(nonNegative(need.UnitPrice), "unit price must not be negative")
	p.add(nonNegative(need.RequiredQuantity), "required quantity must not be negative")
	return p.err()
}
