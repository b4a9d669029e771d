package catalog

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
	categories    map[uuid.UUID]*models.InventoryCategory
	services      map[uuid.UUID]*models.CatalogService
	categoryItems int64
	references    int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		categories: map[uuid.UUID]*models.InventoryCategory{},
		services:   map[uuid.UUID]*models.CatalogService{},
	}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) CreateCategory(ctx context.Context, category *models.InventoryCategory) (*models.InventoryCategory, error) {
	s.categories[category.ID] = category
	return category, nil
}

func (s *stubRepo) FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.InventoryCategory, error) {
	category, ok := s.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return category, nil
}

func (s *stubRepo) ListCategories(ctx context.Context) ([]models.InventoryCategory, error) {
	return nil, nil
}

func (s *stubRepo) UpdateCategory(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if name, ok := updates["name"].(string); ok {
		s.categories[id].Name = name
	}
	return nil
}

func (s *stubRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	delete(s.categories, id)
	return nil
}

func (s *stubRepo) CountCategoryItems(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	return s.categoryItems, nil
}

func (s *stubRepo) CreateService(ctx context.Context, svc *models.CatalogService) (*models.CatalogService, error) {
	s.services[svc.ID] = svc
	return svc, nil
}

func (s *stubRepo) FindServiceByID(ctx context.Context, id uuid.UUID) (*models.CatalogService, error) {
	svc, ok := s.services[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return svc, nil
}

func (s *stubRepo) ListServices(ctx context.Context, params pagination.Params, filters ServiceFilters) (*ServiceList, error) {
	return &ServiceList{}, nil
}

func (s *stubRepo) UpdateService(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	svc := s.services[id]
	if name, ok := updates["name"].(string); ok {
		svc.Name = name
	}
	if price, ok := updates["price_cents"].(int64); ok {
		svc.PriceCents = price
	}
	return nil
}

func (s *stubRepo) DeleteService(ctx context.Context, id uuid.UUID) error {
	delete(s.services, id)
	return nil
}

func (s *stubRepo) CountServiceReferences(ctx context.Context, serviceID uuid.UUID) (int64, error) {
	return s.references, nil
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
	return "DV000" + string(rune('0'+s.next)), nil
}

func newTestService(t *testing.T, repo *stubRepo) Service {
	t.Helper()
	svc, err := NewService(repo, stubTx{}, &stubOutbox{}, &stubCodes{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func TestCreateServiceAssignsCode(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	created, err := svc.CreateService(context.Background(), CreateServiceInput{Name: "Oil change", PriceCents: 150000})
	if err != nil {
		t.Fatalf("CreateService error: %v", err)
	}
	if created.Code != "DV0001" {
		t.Fatalf("expected generated code, got %q", created.Code)
	}
}

func TestCreateServiceValidation(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	if _, err := svc.CreateService(context.Background(), CreateServiceInput{Name: "  "}); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.CreateService(context.Background(), CreateServiceInput{Name: "Wash", PriceCents: -1}); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteCategoryGuardsItems(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	category, err := svc.CreateCategory(context.Background(), CreateCategoryInput{Name: "Parts"})
	if err != nil {
		t.Fatalf("CreateCategory error: %v", err)
	}

	repo.categoryItems = 4
	err = svc.DeleteCategory(context.Background(), category.ID)
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict while items exist, got %v", err)
	}

	repo.categoryItems = 0
	if err := svc.DeleteCategory(context.Background(), category.ID); err != nil {
		t.Fatalf("DeleteCategory error: %v", err)
	}
}

func TestDeleteServiceGuardsReferences(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	created, err := svc.CreateService(context.Background(), CreateServiceInput{Name: "Brake bleed", PriceCents: 200000})
	if err != nil {
		t.Fatalf("CreateService error: %v", err)
	}

	repo.references = 1
	err = svc.DeleteService(context.Background(), created.ID)
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict while references exist, got %v", err)
	}

	repo.references = 0
	if err := svc.DeleteService(context.Background(), created.ID); err != nil {
		t.Fatalf("DeleteService error: %v", err)
	}
}

func TestUpdateServicePartialEdit(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	created, err := svc.CreateService(context.Background(), CreateServiceInput{Name: "Alignment", PriceCents: 300000})
	if err != nil {
		t.Fatalf("CreateService error: %v", err)
	}

	price := int64(350000)
	updated, err := svc.UpdateService(context.Background(), created.ID, UpdateServiceInput{PriceCents: &price})
	if err != nil {
		t.Fatalf("UpdateService error: %v", err)
	}
	if updated.PriceCents != 350000 {
		t.Fatalf("expected updated price, got %d", updated.PriceCents)
	}
	if updated.Name != "Alignment" {
		t.Fatalf("expected name untouched, got %q", updated.Name)
	}
}
