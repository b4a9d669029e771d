package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dvthanh/garahub-backend/internal/backup"
	"github.com/dvthanh/garahub-backend/internal/catalog"
	"github.com/dvthanh/garahub-backend/internal/customers"
	"github.com/dvthanh/garahub-backend/internal/inventory"
	"github.com/dvthanh/garahub-backend/internal/invoices"
	"github.com/dvthanh/garahub-backend/internal/ledger"
	"github.com/dvthanh/garahub-backend/internal/quotations"
	"github.com/dvthanh/garahub-backend/internal/repairs"
	"github.com/dvthanh/garahub-backend/internal/vehicles"
	"github.com/dvthanh/garahub-backend/pkg/config"
	"github.com/dvthanh/garahub-backend/pkg/db"
	"github.com/dvthanh/garahub-backend/pkg/db/models"
	"github.com/dvthanh/garahub-backend/pkg/enums"
	pkgerrors "github.com/dvthanh/garahub-backend/pkg/errors"
	"github.com/dvthanh/garahub-backend/pkg/logger"
	"github.com/dvthanh/garahub-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubCustomers struct{}

func (stubCustomers) Create(_ context.Context, input customers.CreateCustomerInput) (*models.Customer, error) {
	return &models.Customer{ID: uuid.New(), Code: "KH0001", Name: input.Name, Phone: input.Phone}, nil
}

func (stubCustomers) Get(context.Context, uuid.UUID) (*models.Customer, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
}

func (stubCustomers) List(context.Context, pagination.Params, customers.Filters) (*customers.CustomerList, error) {
	return &customers.CustomerList{Customers: []models.Customer{}}, nil
}

func (stubCustomers) Update(context.Context, uuid.UUID, customers.UpdateCustomerInput) (*models.Customer, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
}

func (stubCustomers) Delete(context.Context, uuid.UUID) error { return nil }

type stubVehicles struct{}

func (stubVehicles) Create(context.Context, vehicles.CreateVehicleInput) (*models.Vehicle, error) {
	return &models.Vehicle{ID: uuid.New()}, nil
}

func (stubVehicles) Get(context.Context, uuid.UUID) (*models.Vehicle, error) {
	return &models.Vehicle{ID: uuid.New()}, nil
}

func (stubVehicles) List(context.Context, pagination.Params, vehicles.Filters) (*vehicles.VehicleList, error) {
	return &vehicles.VehicleList{Vehicles: []models.Vehicle{}}, nil
}

func (stubVehicles) Update(context.Context, uuid.UUID, vehicles.UpdateVehicleInput) (*models.Vehicle, error) {
	return &models.Vehicle{ID: uuid.New()}, nil
}

func (stubVehicles) Delete(context.Context, uuid.UUID) error { return nil }

type stubCatalog struct{}

func (stubCatalog) CreateCategory(context.Context, catalog.CreateCategoryInput) (*models.InventoryCategory, error) {
	return &models.InventoryCategory{ID: uuid.New()}, nil
}

func (stubCatalog) ListCategories(context.Context) ([]models.InventoryCategory, error) {
	return []models.InventoryCategory{}, nil
}

func (stubCatalog) UpdateCategory(context.Context, uuid.UUID, catalog.UpdateCategoryInput) (*models.InventoryCategory, error) {
	return &models.InventoryCategory{ID: uuid.New()}, nil
}

func (stubCatalog) DeleteCategory(context.Context, uuid.UUID) error { return nil }

func (stubCatalog) CreateService(context.Context, catalog.CreateServiceInput) (*models.CatalogService, error) {
	return &models.CatalogService{ID: uuid.New()}, nil
}

func (stubCatalog) GetService(context.Context, uuid.UUID) (*models.CatalogService, error) {
	return &models.CatalogService{ID: uuid.New()}, nil
}

func (stubCatalog) ListServices(context.Context, pagination.Params, catalog.ServiceFilters) (*catalog.ServiceList, error) {
	return &catalog.ServiceList{Services: []models.CatalogService{}}, nil
}

func (stubCatalog) UpdateService(context.Context, uuid.UUID, catalog.UpdateServiceInput) (*models.CatalogService, error) {
	return &models.CatalogService{ID: uuid.New()}, nil
}

func (stubCatalog) DeleteService(context.Context, uuid.UUID) error { return nil }

type stubInventory struct{}

func (stubInventory) CreateItem(context.Context, inventory.CreateItemInput) (*models.InventoryItem, error) {
	return &models.InventoryItem{ID: uuid.New()}, nil
}

func (stubInventory) GetItem(context.Context, uuid.UUID) (*models.InventoryItem, error) {
	return &models.InventoryItem{ID: uuid.New()}, nil
}

func (stubInventory) ListItems(context.Context, pagination.Params, inventory.Filters) (*inventory.ItemList, error) {
	return &inventory.ItemList{Items: []models.InventoryItem{}}, nil
}

func (stubInventory) UpdateItem(context.Context, uuid.UUID, inventory.UpdateItemInput) (*models.InventoryItem, error) {
	return &models.InventoryItem{ID: uuid.New()}, nil
}

func (stubInventory) DeleteItem(context.Context, uuid.UUID) error { return nil }

func (stubInventory) AdjustStock(context.Context, inventory.AdjustStockInput) (*models.InventoryItem, error) {
	return &models.InventoryItem{ID: uuid.New()}, nil
}

func (stubInventory) Consume(context.Context, *gorm.DB, enums.DocumentKind, uuid.UUID, []inventory.Demand) ([]inventory.Shortfall, error) {
	return nil, nil
}

func (stubInventory) Restore(context.Context, *gorm.DB, enums.DocumentKind, uuid.UUID, []inventory.Demand) error {
	return nil
}

type stubLedger struct{}

func (stubLedger) Record(context.Context, *gorm.DB, ledger.RecordMovementInput) (*models.StockMovement, error) {
	return &models.StockMovement{ID: uuid.New()}, nil
}

func (stubLedger) ListByItem(context.Context, uuid.UUID) ([]models.StockMovement, error) {
	return []models.StockMovement{}, nil
}

func (stubLedger) ListByReference(context.Context, uuid.UUID) ([]models.StockMovement, error) {
	return []models.StockMovement{}, nil
}

type stubQuotations struct{}

func (stubQuotations) Create(context.Context, quotations.CreateQuotationInput) (*models.Quotation, error) {
	return &models.Quotation{ID: uuid.New()}, nil
}

func (stubQuotations) Get(context.Context, uuid.UUID) (*models.Quotation, error) {
	return &models.Quotation{ID: uuid.New()}, nil
}

func (stubQuotations) List(context.Context, pagination.Params, quotations.Filters) (*quotations.QuotationList, error) {
	return &quotations.QuotationList{Quotations: []models.Quotation{}}, nil
}

func (stubQuotations) Update(context.Context, uuid.UUID, quotations.UpdateQuotationInput) (*models.Quotation, error) {
	return &models.Quotation{ID: uuid.New()}, nil
}

func (stubQuotations) ChangeStatus(context.Context, uuid.UUID, enums.QuotationStatus) (*models.Quotation, error) {
	return &models.Quotation{ID: uuid.New()}, nil
}

func (stubQuotations) Delete(context.Context, uuid.UUID) error { return nil }

type stubRepairs struct{}

func (stubRepairs) Create(context.Context, repairs.CreateRepairInput) (*models.RepairOrder, error) {
	return &models.RepairOrder{ID: uuid.New()}, nil
}

func (stubRepairs) DeriveFromQuotation(context.Context, uuid.UUID) (*models.RepairOrder, error) {
	return &models.RepairOrder{ID: uuid.New()}, nil
}

func (stubRepairs) Get(context.Context, uuid.UUID) (*models.RepairOrder, error) {
	return &models.RepairOrder{ID: uuid.New()}, nil
}

func (stubRepairs) List(context.Context, pagination.Params, repairs.Filters) (*repairs.RepairList, error) {
	return &repairs.RepairList{Repairs: []models.RepairOrder{}}, nil
}

func (stubRepairs) Update(context.Context, uuid.UUID, repairs.UpdateRepairInput) (*models.RepairOrder, error) {
	return &models.RepairOrder{ID: uuid.New()}, nil
}

func (stubRepairs) ChangeStatus(context.Context, uuid.UUID, enums.RepairStatus, repairs.StatusChangeOptions) (*repairs.StatusChangeResult, error) {
	return &repairs.StatusChangeResult{Repair: &models.RepairOrder{ID: uuid.New()}}, nil
}

func (stubRepairs) Delete(context.Context, uuid.UUID) error { return nil }

type stubInvoices struct{}

func (stubInvoices) DeriveFromRepair(context.Context, uuid.UUID, invoices.DeriveInvoiceInput) (*invoices.DeriveResult, error) {
	return &invoices.DeriveResult{Invoice: &models.Invoice{ID: uuid.New()}}, nil
}

func (stubInvoices) Get(context.Context, uuid.UUID) (*models.Invoice, error) {
	return &models.Invoice{ID: uuid.New()}, nil
}

func (stubInvoices) List(context.Context, pagination.Params, invoices.Filters) (*invoices.InvoiceList, error) {
	return &invoices.InvoiceList{Invoices: []models.Invoice{}}, nil
}

func (stubInvoices) Update(context.Context, uuid.UUID, invoices.UpdateInvoiceInput) (*models.Invoice, error) {
	return &models.Invoice{ID: uuid.New()}, nil
}

func (stubInvoices) RecordPayment(context.Context, uuid.UUID, invoices.RecordPaymentInput) (*models.Invoice, error) {
	return &models.Invoice{ID: uuid.New()}, nil
}

func (stubInvoices) Delete(context.Context, uuid.UUID) error { return nil }

type stubBackup struct{}

func (stubBackup) Export(context.Context) (*backup.Archive, error) {
	return &backup.Archive{Version: backup.ArchiveVersion}, nil
}

func (stubBackup) Restore(context.Context, *backup.Archive) (*backup.RestoreSummary, error) {
	return &backup.RestoreSummary{}, nil
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Env = "test"
	logg := logger.New(logger.Options{Output: io.Discard})

	return NewRouter(cfg, logg, map[string]db.Pinger{"db": stubPinger{}}, nil, Services{
		Customers:  stubCustomers{},
		Vehicles:   stubVehicles{},
		Catalog:    stubCatalog{},
		Inventory:  stubInventory{},
		Ledger:     stubLedger{},
		Quotations: stubQuotations{},
		Repairs:    stubRepairs{},
		Invoices:   stubInvoices{},
		Backup:     stubBackup{},
	})
}

func TestRouterHealthEndpoints(t *testing.T) {
	router := testRouter(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
	}
}

func TestRouterCustomerCreate(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/customers", strings.NewReader(`{"name":"Anh Tuan","phone":"0901234567"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body %s", resp.Code, resp.Body.String())
	}
}

func TestRouterCustomerCreateRejectsBadPayload(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/customers", strings.NewReader(`{"name":""}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
