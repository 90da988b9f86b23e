package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/agrocoop/farmdesk/internal/store"
	"github.com/agrocoop/farmdesk/types"
)

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	List(ctx context.Context) ([]types.Product, error)
	ListByFarmer(ctx context.Context, farmerID int) ([]types.Product, error)
	Get(ctx context.Context, id int) (types.Product, error)
	Create(ctx context.Context, product types.Product) (types.Product, error)
	Update(ctx context.Context, product types.Product) error
	Delete(ctx context.Context, id int) error
}

// ProductService encapsulates product use-cases.
type ProductService struct {
	repo   ProductRepository
	events recorder
}

func NewProductService(repo ProductRepository, events EventPublisher, logger *slog.Logger) *ProductService {
	return &ProductService{repo: repo, events: newRecorder(events, logger)}
}

func (s *ProductService) List(ctx context.Context) ([]types.Product, error) {
	return s.repo.List(ctx)
}

func (s *ProductService) ListByFarmer(ctx context.Context, farmerID int) ([]types.Product, error) {
	return s.repo.ListByFarmer(ctx, farmerID)
}

func (s *ProductService) Get(ctx context.Context, id int) (types.Product, error) {
	return s.repo.Get(ctx, id)
}

// Create adds a product. The production date defaults to today. It returns
// store.ErrUnknownFarmer when the owning farmer does not exist.
func (s *ProductService) Create(ctx context.Context, product types.Product) (types.Product, error) {
	if product.ProductionDate.IsZero() {
		product.ProductionDate = today()
	}
	if err := validateProduct(&product); err != nil {
		return types.Product{}, err
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return types.Product{}, err
	}
	s.events.record(ctx, entityProduct, types.ActionCreated, created.ID, created.FarmerID)
	return created, nil
}

// Update overwrites a product. It reports false when no product has
// product.ID.
func (s *ProductService) Update(ctx context.Context, product types.Product) (bool, error) {
	if err := validateProduct(&product); err != nil {
		return false, err
	}
	if err := s.repo.Update(ctx, product); err != nil {
		if errors.Is(err, store.ErrNotFound) && !errors.Is(err, store.ErrUnknownFarmer) {
			return false, nil
		}
		return false, err
	}
	s.events.record(ctx, entityProduct, types.ActionUpdated, product.ID, product.FarmerID)
	return true, nil
}

// Delete removes a product. It reports false when no product has the id.
func (s *ProductService) Delete(ctx context.Context, id int) (bool, error) {
	product, err := s.repo.Get(ctx, id)
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
	s.events.record(ctx, entityProduct, types.ActionDeleted, id, product.FarmerID)
	return true, nil
}

func validateProduct(product *types.Product) error {
	product.Name = strings.TrimSpace(product.Name)
	product.QualityGrade = strings.TrimSpace(product.QualityGrade)

	var p problems
	p.add(product.FarmerID > 0, "farmer_id is required")
	p.add(product.Name != "", "product name is required")
	p.add(nonNegative(product.Quantity), "quantity must not be negative")
	p.add(nonNegative(product.UnitPrice), "unit price must not be negative")
	p.add(nonNegative(product.ProductionCost), "production cost must not be negative")
	p.add(nonNegative(product.SoldQuantity), "sold quantity must not be negative")
	p.add(!product.ProductionDate.IsZero(), "production date is required")
	return p.err()
}

func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
