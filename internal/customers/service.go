package customers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

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

// Service defines customer operations beyond repository reads.
type Service interface {
	Create(ctx context.Context, input CreateCustomerInput) (*models.Customer, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	List(ctx context.Context, params pagination.Params, filters Filters) (*CustomerList, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateCustomerInput) (*models.Customer, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	codes  codeGenerator
}

// NewService builds a customer service with the required dependencies.
func NewService(repo Repository, tx txRunner, publisher outboxPublisher, codes codeGenerator) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customers repository required")
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

func (s *service) Create(ctx context.Context, input CreateCustomerInput) (*models.Customer, error) {
	name := strings.TrimSpace(input.Name)
	phone := strings.TrimSpace(input.Phone)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
	}
	if phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer phone required")
	}

	customer := &models.Customer{
		ID:      uuid.New(),
		Name:    name,
		Phone:   phone,
		Address: input.Address,
		Email:   input.Email,
		TaxCode: input.TaxCode,
		Notes:   input.Notes,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		code, err := s.codes.NextForScope(ctx, tx, sequence.ScopeCustomer)
		if err != nil {
			return err
		}
		customer.Code = code
		if _, err := s.repo.WithTx(tx).Create(ctx, customer); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventEntityChanged,
			AggregateType: enums.AggregateCustomer,
			AggregateID:   customer.ID,
			Data:          customer,
			Version:       1,
		})
	})
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, err
	}
	return customer, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters Filters) (*CustomerList, error) {
	filters.Query = strings.TrimSpace(filters.Query)
	return s.repo.List(ctx, params, filters)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateCustomerInput) (*models.Customer, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}

	updates := map[string]any{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name must not be empty")
		}
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Phone != nil {
		if strings.TrimSpace(*input.Phone) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer phone must not be empty")
		}
		updates["phone"] = strings.TrimSpace(*input.Phone)
	}
	if input.Address != nil {
		updates["address"] = input.Address
	}
	if input.Email != nil {
		updates["email"] = input.Email
	}
	if input.TaxCode != nil {
		updates["tax_code"] = input.TaxCode
	}
	if input.Notes != nil {
		updates["notes"] = input.Notes
	}

	var updated *models.Customer
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByID(ctx, id); err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
			}
			return err
		}
		if len(updates) > 0 {
			if err := repo.Update(ctx, id, updates); err != nil {
				return err
			}
		}
		customer, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		updated = customer
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventEntityChanged,
			AggregateType: enums.AggregateCustomer,
			AggregateID:   id,
			Data:          customer,
			Version:       1,
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByID(ctx, id); err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
			}
			return err
		}

		vehicles, err := repo.CountVehicles(ctx, id)
		if err != nil {
			return err
		}
		if vehicles > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "customer has registered vehicles").
				WithDetails(map[string]any{"vehicle_count": vehicles})
		}
		documents, err := repo.CountDocuments(ctx, id)
		if err != nil {
			return err
		}
		if documents > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "customer is referenced by documents").
				WithDetails(map[string]any{"document_count": documents})
		}

		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventEntityDeleted,
			AggregateType: enums.AggregateCustomer,
			AggregateID:   id,
			Data:          map[string]any{"id": id},
			Version:       1,
		})
	})
}
