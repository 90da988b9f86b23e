package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/agrocoop/farmdesk/internal/store"
	"github.com/agrocoop/farmdesk/types"
)

// FarmerRepository defines persistence operations for farmers.
type FarmerRepository interface {
	List(ctx context.Context) ([]types.Farmer, error)
	GetByID(ctx context.Context, id int) (types.Farmer, error)
	GetByLogin(ctx context.Context, login string) (types.Farmer, error)
	Create(ctx context.Context, farmer types.Farmer) (types.Farmer, error)
	Update(ctx context.Context, farmer types.Farmer) error
	Delete(ctx context.Context, id int) error
}

// FarmerService encapsulates farmer use-cases.
type FarmerService struct {
	repo   FarmerRepository
	events recorder
}

func NewFarmerService(repo FarmerRepository, events EventPublisher, logger *slog.Logger) *FarmerService {
	return &FarmerService{repo: repo, events: newRecorder(events, logger)}
}

func (s *FarmerService) List(ctx context.Context) ([]types.Farmer, error) {
	return s.repo.List(ctx)
}

func (s *FarmerService) Get(ctx context.Context, id int) (types.Farmer, error) {
	return s.repo.GetByID(ctx, id)
}

// Create adds a farmer with the given clear-text password. The role defaults
// to farmer.
func (s *FarmerService) Create(ctx context.Context, farmer types.Farmer, password string) (types.Farmer, error) {
	normalizeFarmer(&farmer)
	password = cleanPassword(password)
	if farmer.Role == "" {
		farmer.Role = types.RoleFarmer
	}

	p := farmerProblems(farmer)
	if password == "" {
		p = append(p, "password is required")
	} else {
		p = append(p, CheckPassword(password)...)
	}
	if err := p.err(); err != nil {
		return types.Farmer{}, err
	}

	if _, err := s.repo.GetByLogin(ctx, farmer.Login); err == nil {
		return types.Farmer{}, store.ErrDuplicateLogin
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.Farmer{}, err
	}

	farmer.PasswordHash = store.HashPassword(password)
	created, err := s.repo.Create(ctx, farmer)
	if err != nil {
		return types.Farmer{}, err
	}
	s.events.record(ctx, entityFarmer, types.ActionCreated, created.ID, created.ID)
	return created, nil
}

// Update rewrites a farmer's profile and role. A non-empty password replaces
// the stored one. It reports false when no farmer has farmer.ID.
func (s *FarmerService) Update(ctx context.Context, farmer types.Farmer, password string) (bool, error) {
	normalizeFarmer(&farmer)
	password = cleanPassword(password)

	p := farmerProblems(farmer)
	if password != "" {
		p = append(p, CheckPassword(password)...)
	}
	if err := p.err(); err != nil {
		return false, err
	}

	farmer.PasswordHash = ""
	if password != "" {
		farmer.PasswordHash = store.HashPassword(password)
	}
	if err := s.repo.Update(ctx, farmer); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	s.events.record(ctx, entityFarmer, types.ActionUpdated, farmer.ID, farmer.ID)
	return true, nil
}

// Delete removes a farmer together with its products and needs. It reports
// false when no farmer has the id.
func (s *FarmerService) Delete(ctx context.Context, id int) (bool, error) {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	s.events.record(ctx, entityFarmer, types.ActionDeleted, id, id)
	return true, nil
}

func normalizeFarmer(f *types.Farmer) {
	f.FullName = strings.TrimSpace(f.FullName)
	f.Address = strings.TrimSpace(f.Address)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Login = strings.TrimSpace(f.Login)
	f.Email = strings.TrimSpace(f.Email)
}

func farmerProblems(f types.Farmer) problems {
	var p problems
	p.add(f.FullName != "", "full name is required")
	p.add(f.Login != "", "login is required")
	p.add(f.Role.Valid(), "role must be admin or farmer")
	return p
}
