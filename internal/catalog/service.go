package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/dvthanh/garahub-backend/pkg/db"
	"github.com/dvthanh/garahub-backend/pkg/db/models"
	"github.com/dvthanh/garahub-backend/pkg/enums"
	pkgerrors "github.com/dvthanh/garahub-backend/pkg/errors"
	"github.com/dvthanh/garahub-backend/pkg/outbox"
	"github.com/dvthanh/garahub-backend/pkg/pagination"

	"github.com/dvthanh/garahub-backend/internal/sequence"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type codeGenerator interface {
	NextForScope(ctx context.Context, tx *gorm.DB, scope string) (string, error)
}

// Service manages inventory categories and the labor service catalog.
type Service interface {
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*models.InventoryCategory, error)
	ListCategories(ctx context.Context) ([]models.InventoryCategory, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (*models.InventoryCategory, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	CreateService(ctx context.Context, input CreateServiceInput) (*models.CatalogService, error)
	GetService(ctx context.Context, id uuid.UUID) (*models.CatalogService, error)
	ListServices(ctx context.Context, params pagination.Params, filters ServiceFilters) (*ServiceList, error)
	UpdateService(ctx context.Context, id uuid.UUID, input UpdateServiceInput) (*models.CatalogService, error)
	DeleteService(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	codes  codeGenerator
}

// NewService builds a catalog service with the required dependencies.
func NewService(repo Repository, tx txRunner, publisher outboxPublisher, codes codeGenerator) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if codes == nil {
		return nil, fmt.Errorf("code generator required")
	}
	return &service{repo: repo, tx: tx, outbox: publisher, codes: codes}, nil
}

func (s *service) CreateCategory(ctx context.Context, input CreateCategoryInput) (*models.InventoryCategory, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name required")
	}

	category := &models.InventoryCategory{ID: uuid.New(), Name: name}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).CreateCategory(ctx, category); err != nil {
			if dbpkg.IsUniqueViolation(err, "name") {
				return pkgerrors.New(pkgerrors.CodeConflict, "category name already exists")
			}
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventEntityChanged,
			AggregateType: enums.AggregateInventoryCategory,
			AggregateID:   category.ID,
			Data:          category,
			Version:       1,
		})
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (s *service) ListCategories(ctx context.Context) ([]models.InventoryCategory, error) {
	return s.repo.ListCategories(ctx)
}

func (s *service) UpdateCategory(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (*models.InventoryCategory, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id required")
	}
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name required")
	}
	name := strings.TrimSpace(*input.Name)

	var updated *models.InventoryCategory
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindCategoryByID(ctx, id); err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
			}
			return err
		}
		if err := repo.UpdateCategory(ctx, id, map[string]any{"name": name}); err != nil {
			if dbpkg.IsUniqueViolation(err, "name") {
				return pkgerrors.New(pkgerrors.CodeConflict, "category name already exists")
			}
			return err
		}
		category, err := repo.FindCategoryByID(ctx, id)
		if err != nil {
			return err
		}
		updated = category
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventEntityChanged,
			AggregateType: enums.AggregateInventoryCategory,
			AggregateID:   id,
			Data:          category,
			Version:       1,
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "category id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindCategoryByID(ctx, id); err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
			}
			return err
		}
		items, err := repo.CountCategoryItems(ctx, id)
		if err != nil {
			return err
		}
		if items > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "category still has inventory items").
				WithDetails(map[string]any{"item_count": items})
		}
		if err := repo.DeleteCategory(ctx, id); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventEntityDeleted,
			AggregateType: enums.AggregateInventoryCategory,
			AggregateID:   id,
			Data:          map[string]any{"id": id},
			Version:       1,
		})
	})
}

func (s *service) CreateService(ctx context.Context, input CreateServiceInput) (*models.CatalogService, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service name required")
	}
	if input.PriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service price must not be negative")
	}

	svc := &models.CatalogService{
		ID:               uuid.New(),
		Name:             name,
		PriceCents:       input.PriceCents,
		EstimatedMinutes: input.EstimatedMinutes,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		code, err := s.codes.NextForScope(ctx, tx, sequence.ScopeCatalogService)
		if err != nil {
			return err
		}
		svc.Code = code
		if _, err := s.repo.WithTx(tx).CreateService(ctx, svc); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventEntityChanged,
			AggregateType: enums.AggregateCatalogService,
			AggregateID:   svc.ID,
			Data:          svc,
			Version:       1,
		})
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *service) GetService(ctx context.Context, id uuid.UUID) (*models.CatalogService, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service id required")
	}
	svc, err := s.repo.FindServiceByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
		}
		return nil, err
	}
	return svc, nil
}

func (s *service) ListServices(ctx context.Context, params pagination.Params, filters ServiceFilters) (*ServiceList, error) {
	filters.Query = strings.TrimSpace(filters.Query)
	return s.repo.ListServices(ctx, params, filters)
}

func (s *service) UpdateService(ctx context.Context, id uuid.UUID, input UpdateServiceInput) (*models.CatalogService, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service id required")
	}

	updates := map[string]any{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "service name must not be empty")
		}
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.PriceCents != nil {
		if *input.PriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "service price must not be negative")
		}
		updates["price_cents"] = *input.PriceCents
	}
	if input.EstimatedMinutes != nil {
		updates["estimated_minutes"] = input.EstimatedMinutes
	}

	var updated *models.CatalogService
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindServiceByID(ctx, id); err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
			}
			return err
		}
		if len(updates) > 0 {
			if err := repo.UpdateService(ctx, id, updates); err != nil {
				return err
			}
		}
		svc, err := repo.FindServiceByID(ctx, id)
		if err != nil {
			return err
		}
		updated = svc
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventEntityChanged,
			AggregateType: enums.AggregateCatalogService,
			AggregateID:   id,
			Data:          svc,
			Version:       1,
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) DeleteService(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "service id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindServiceByID(ctx, id); err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
			}
			return err
		}
		references, err := repo.CountServiceReferences(ctx, id)
		if err != nil {
			return err
		}
		if references > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "service is referenced by document lines").
				WithDetails(map[string]any{"reference_count": references})
		}
		if err := repo.DeleteService(ctx, id); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventEntityDeleted,
			AggregateType: enums.AggregateCatalogService,
			AggregateID:   id,
			Data:          map[string]any{"id": id},
			Version:       1,
		})
	})
}
