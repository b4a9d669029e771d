package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dvthanh/garahub-backend/api/controllers"
	"github.com/dvthanh/garahub-backend/api/middleware"
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
	"github.com/dvthanh/garahub-backend/pkg/logger"
	pkgredis "github.com/dvthanh/garahub-backend/pkg/redis"
)

// Services bundles everything the router mounts. Redis is optional; when nil
// the idempotency guard is skipped.
type Services struct {
	Customers  customers.Service
	Vehicles   vehicles.Service
	Catalog    catalog.Service
	Inventory  inventory.Service
	Ledger     ledger.Service
	Quotations quotations.Service
	Repairs    repairs.Service
	Invoices   invoices.Service
	Backup     backup.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	pingers map[string]db.Pinger,
	idempotencyStore pkgredis.IdempotencyStore,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)
	if idempotencyStore != nil {
		r.Use(middleware.Idempotency(idempotencyStore, cfg.Idempotency.TTL, logg))
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, pingers))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/customers", func(r chi.Router) {
			r.Post("/", controllers.CustomerCreate(svcs.Customers, logg))
			r.Get("/", controllers.CustomerList(svcs.Customers, logg))
			r.Get("/{id}", controllers.CustomerGet(svcs.Customers, logg))
			r.Patch("/{id}", controllers.CustomerUpdate(svcs.Customers, logg))
			r.Delete("/{id}", controllers.CustomerDelete(svcs.Customers, logg))
		})

		r.Route("/vehicles", func(r chi.Router) {
			r.Post("/", controllers.VehicleCreate(svcs.Vehicles, logg))
			r.Get("/", controllers.VehicleList(svcs.Vehicles, logg))
			r.Get("/{id}", controllers.VehicleGet(svcs.Vehicles, logg))
			r.Patch("/{id}", controllers.VehicleUpdate(svcs.Vehicles, logg))
			r.Delete("/{id}", controllers.VehicleDelete(svcs.Vehicles, logg))
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Route("/categories", func(r chi.Router) {
				r.Post("/", controllers.CategoryCreate(svcs.Catalog, logg))
				r.Get("/", controllers.CategoryList(svcs.Catalog, logg))
				r.Patch("/{id}", controllers.CategoryUpdate(svcs.Catalog, logg))
				r.Delete("/{id}", controllers.CategoryDelete(svcs.Catalog, logg))
			})
			r.Route("/services", func(r chi.Router) {
				r.Post("/", controllers.ServiceCreate(svcs.Catalog, logg))
				r.Get("/", controllers.ServiceList(svcs.Catalog, logg))
				r.Get("/{id}", controllers.ServiceGet(svcs.Catalog, logg))
				r.Patch("/{id}", controllers.ServiceUpdate(svcs.Catalog, logg))
				r.Delete("/{id}", controllers.ServiceDelete(svcs.Catalog, logg))
			})
		})

		r.Route("/inventory/items", func(r chi.Router) {
			r.Post("/", controllers.ItemCreate(svcs.Inventory, logg))
			r.Get("/", controllers.ItemList(svcs.Inventory, logg))
			r.Get("/{id}", controllers.ItemGet(svcs.Inventory, logg))
			r.Patch("/{id}", controllers.ItemUpdate(svcs.Inventory, logg))
			r.Delete("/{id}", controllers.ItemDelete(svcs.Inventory, logg))
			r.Post("/{id}/adjust", controllers.ItemAdjustStock(svcs.Inventory, logg))
			r.Get("/{id}/movements", controllers.ItemMovements(svcs.Ledger, logg))
		})

		r.Route("/quotations", func(r chi.Router) {
			r.Post("/", controllers.QuotationCreate(svcs.Quotations, logg))
			r.Get("/", controllers.QuotationList(svcs.Quotations, logg))
			r.Get("/{id}", controllers.QuotationGet(svcs.Quotations, logg))
			r.Patch("/{id}", controllers.QuotationUpdate(svcs.Quotations, logg))
			r.Delete("/{id}", controllers.QuotationDelete(svcs.Quotations, logg))
			r.Post("/{id}/status", controllers.QuotationChangeStatus(svcs.Quotations, logg))
			r.Post("/{id}/repair", controllers.QuotationDeriveRepair(svcs.Repairs, logg))
		})

		r.Route("/repairs", func(r chi.Router) {
			r.Post("/", controllers.RepairCreate(svcs.Repairs, logg))
			r.Get("/", controllers.RepairList(svcs.Repairs, logg))
			r.Get("/{id}", controllers.RepairGet(svcs.Repairs, logg))
			r.Patch("/{id}", controllers.RepairUpdate(svcs.Repairs, logg))
			r.Delete("/{id}", controllers.RepairDelete(svcs.Repairs, logg))
			r.Post("/{id}/status", controllers.RepairChangeStatus(svcs.Repairs, logg))
			r.Post("/{id}/invoice", controllers.RepairDeriveInvoice(svcs.Invoices, logg))
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", controllers.InvoiceList(svcs.Invoices, logg))
			r.Get("/{id}", controllers.InvoiceGet(svcs.Invoices, logg))
			r.Patch("/{id}", controllers.InvoiceUpdate(svcs.Invoices, logg))
			r.Delete("/{id}", controllers.InvoiceDelete(svcs.Invoices, logg))
			r.Post("/{id}/payments", controllers.InvoiceRecordPayment(svcs.Invoices, logg))
		})

		r.Route("/backup", func(r chi.Router) {
			r.Get("/export", controllers.BackupExport(svcs.Backup, logg))
			r.Post("/restore", controllers.BackupRestore(svcs.Backup, logg))
		})
	})

	return r
}
