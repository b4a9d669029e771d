package vehicles

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dvthanh/garahub-backend/pkg/db/models"
	pkgerrors "github.com/dvthanh/garahub-backend/pkg/errors"
	"github.com/dvthanh/garahub-backend/pkg/outbox"
	"github.com/dvthanh/garahub-backend/pkg/pagination"
)

type stubRepo struct {
	vehicles      map[uuid.UUID]*models.Vehicle
	customerKnown bool
	documents     int64
	deleted       []uuid.UUID
}

func newStubRepo() *stubRepo {
	return &stubRepo{vehicles: map[uuid.UUID]*models.Vehicle{}, customerKnown: true}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error) {
	s.vehicles[vehicle.ID] = vehicle
	return vehicle, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	vehicle, ok := s.vehicles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return vehicle, nil
}

func (s *stubRepo) FindByPlate(ctx context.Context, plate string) (*models.Vehicle, error) {
	for _, vehicle := range s.vehicles {
		if vehicle.LicensePlate == plate {
			return vehicle, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) List(ctx context.Context, params pagination.Params, filters Filters) (*VehicleList, error) {
	return &VehicleList{}, nil
}

func (s *stubRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	vehicle := s.vehicles[id]
	if plate, ok := updates["license_plate"].(string); ok {
		vehicle.LicensePlate = plate
	}
	if brand, ok := updates["brand"].(string); ok {
		vehicle.Brand = brand
	}
	return nil
}

func (s *stubRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.vehicles, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubRepo) CountDocuments(ctx context.Context, vehicleID uuid.UUID) (int64, error) {
	return s.documents, nil
}

func (s *stubRepo) CustomerExists(ctx context.Context, customerID uuid.UUID) (bool, error) {
	return s.customerKnown, nil
}

func (s *stubRepo) AdvanceOdometer(ctx context.Context, id uuid.UUID, reading int64) error {
	vehicle, ok := s.vehicles[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if reading > vehicle.LastOdometer {
		vehicle.LastOdometer = reading
	}
	return nil
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type stubCodes struct{ next int }

func (s *stubCodes) NextForScope(ctx context.Context, tx *gorm.DB, scope string) (string, error) {
	s.next++
	return "XE000" + string(rune('0'+s.next)), nil
}

func newTestService(t *testing.T, repo *stubRepo) Service {
	t.Helper()
	svc, err := NewService(repo, stubTx{}, &stubOutbox{}, &stubCodes{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func TestCreateNormalizesPlateAndAssignsCode(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	vehicle, err := svc.Create(context.Background(), CreateVehicleInput{
		CustomerID:   uuid.New(),
		LicensePlate: " 51f 123.45 ",
		Brand:        "Toyota",
		Model:        "Vios",
		Odometer:     42000,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if vehicle.LicensePlate != "51F123.45" {
		t.Fatalf("expected normalized plate, got %q", vehicle.LicensePlate)
	}
	if vehicle.Code != "XE0001" {
		t.Fatalf("expected generated code, got %q", vehicle.Code)
	}
	if vehicle.LastOdometer != 42000 {
		t.Fatalf("expected initial odometer, got %d", vehicle.LastOdometer)
	}
}

func TestCreateRejectsUnknownCustomer(t *testing.T) {
	repo := newStubRepo()
	repo.customerKnown = false
	svc := newTestService(t, repo)

	_, err := svc.Create(context.Background(), CreateVehicleInput{
		CustomerID:   uuid.New(),
		LicensePlate: "51F12345",
		Brand:        "Toyota",
		Model:        "Vios",
	})
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for unknown customer, got %v", err)
	}
}

func TestUpdateOdometerIsMonotonic(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	vehicle, err := svc.Create(context.Background(), CreateVehicleInput{
		CustomerID:   uuid.New(),
		LicensePlate: "51F12345",
		Brand:        "Toyota",
		Model:        "Vios",
		Odometer:     50000,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	lower := int64(40000)
	updated, err := svc.Update(context.Background(), vehicle.ID, UpdateVehicleInput{Odometer: &lower})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.LastOdometer != 50000 {
		t.Fatalf("stale reading should be ignored, got %d", updated.LastOdometer)
	}

	higher := int64(61000)
	updated, err = svc.Update(context.Background(), vehicle.ID, UpdateVehicleInput{Odometer: &higher})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.LastOdometer != 61000 {
		t.Fatalf("expected advanced odometer, got %d", updated.LastOdometer)
	}
}

func TestDeleteGuardsDocuments(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	vehicle, err := svc.Create(context.Background(), CreateVehicleInput{
		CustomerID:   uuid.New(),
		LicensePlate: "51F12345",
		Brand:        "Toyota",
		Model:        "Vios",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	repo.documents = 3
	err = svc.Delete(context.Background(), vehicle.ID)
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict while documents exist, got %v", err)
	}

	repo.documents = 0
	if err := svc.Delete(context.Background(), vehicle.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if len(repo.deleted) != 1 {
		t.Fatalf("expected hard delete")
	}
}

func TestCreateValidation(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	cases := []CreateVehicleInput{
		{LicensePlate: "51F12345", Brand: "Toyota", Model: "Vios"},
		{CustomerID: uuid.New(), Brand: "Toyota", Model: "Vios"},
		{CustomerID: uuid.New(), LicensePlate: "51F12345", Model: "Vios"},
		{CustomerID: uuid.New(), LicensePlate: "51F12345", Brand: "Toyota"},
		{CustomerID: uuid.New(), LicensePlate: "51F12345", Brand: "Toyota", Model: "Vios", Odometer: -1},
	}
	for _, input := range cases {
		if _, err := svc.Create(context.Background(), input); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error for %+v, got %v", input, err)
		}
	}
}
