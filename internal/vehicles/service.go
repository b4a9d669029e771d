package vehicles

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

// Service defines vehicle operations beyond repository reads.
type Service interface {
	Create(ctx context.Context, input CreateVehicleInput) (*models.Vehicle, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	List(ctx context.Context, params pagination.Params, filters Filters) (*VehicleList, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateVehicleInput) (*models.Vehicle, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	codes  codeGenerator
}

// NewService builds a vehicle service with the required dependencies.
func NewService(repo Repository, tx txRunner, publisher outboxPublisher, codes codeGenerator) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("vehicles repository required")
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

func (s *service) Create(ctx context.Context, input CreateVehicleInput) (*models.Vehicle, error) {
	plate := normalizePlate(input.LicensePlate)
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if plate == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "license plate required")
	}
	if strings.TrimSpace(input.Brand) == "" || strings.TrimSpace(input.Model) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "brand and model required")
	}
	if input.Odometer < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "odometer must not be negative")
	}

	vehicle := &models.Vehicle{
		ID:           uuid.New(),
		CustomerID:   input.CustomerID,
		LicensePlate: plate,
		Brand:        strings.TrimSpace(input.Brand),
		Model:        strings.TrimSpace(input.Model),
		VIN:          input.VIN,
		Year:         input.Year,
		Color:        input.Color,
		LastOdometer: input.Odometer,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		exists, err := repo.CustomerExists(ctx, input.CustomerID)
		if err != nil {
			return err
		}
		if !exists {
			return pkgerrors.New(pkgerrors.CodeConflict, "owning customer does not exist")
		}

		code, err := s.codes.NextForScope(ctx, tx, sequence.ScopeVehicle)
		if err != nil {
			return err
		}
		vehicle.Code = code
		if _, err := repo.Create(ctx, vehicle); err != nil {
			if dbpkg.IsUniqueViolation(err, "license_plate") {
				return pkgerrors.New(pkgerrors.CodeConflict, "license plate already registered")
			}
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventEntityChanged,
			AggregateType: enums.AggregateVehicle,
			AggregateID:   vehicle.ID,
			Data:          vehicle,
			Version:       1,
		})
	})
	if err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}
	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, err
	}
	return vehicle, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters Filters) (*VehicleList, error) {
	filters.Query = strings.TrimSpace(filters.Query)
	return s.repo.List(ctx, params, filters)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateVehicleInput) (*models.Vehicle, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}

	updates := map[string]any{}
	if input.LicensePlate != nil {
		plate := normalizePlate(*input.LicensePlate)
		if plate == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "license plate must not be empty")
		}
		updates["license_plate"] = plate
	}
	if input.Brand != nil {
		if strings.TrimSpace(*input.Brand) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "brand must not be empty")
		}
		updates["brand"] = strings.TrimSpace(*input.Brand)
	}
	if input.Model != nil {
		if strings.TrimSpace(*input.Model) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "model must not be empty")
		}
		updates["model"] = strings.TrimSpace(*input.Model)
	}
	if input.VIN != nil {
		updates["vin"] = input.VIN
	}
	if input.Year != nil {
		updates["year"] = input.Year
	}
	if input.Color != nil {
		updates["color"] = input.Color
	}
	if input.Odometer != nil && *input.Odometer < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "odometer must not be negative")
	}

	var updated *models.Vehicle
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByID(ctx, id); err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
			}
			return err
		}
		if len(updates) > 0 {
			if err := repo.Update(ctx, id, updates); err != nil {
				if dbpkg.IsUniqueViolation(err, "license_plate") {
					return pkgerrors.New(pkgerrors.CodeConflict, "license plate already registered")
				}
				return err
			}
		}
		if input.Odometer != nil {
			if err := repo.AdvanceOdometer(ctx, id, *input.Odometer); err != nil {
				return err
			}
		}
		vehicle, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		updated = vehicle
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventEntityChanged,
			AggregateType: enums.AggregateVehicle,
			AggregateID:   id,
			Data:          vehicle,
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
		return pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByID(ctx, id); err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
			}
			return err
		}
		documents, err := repo.CountDocuments(ctx, id)
		if err != nil {
			return err
		}
		if documents > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "vehicle is referenced by documents").
				WithDetails(map[string]any{"document_count": documents})
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventEntityDeleted,
			AggregateType: enums.AggregateVehicle,
			AggregateID:   id,
			Data:          map[string]any{"id": id},
			Version:       1,
		})
	})
}

func normalizePlate(plate string) string {
	return strings.ToUpper(strings.Join(strings.Fields(plate), ""))
}
