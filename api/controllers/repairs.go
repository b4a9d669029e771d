package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dvthanh/garahub-backend/api/responses"
	"github.com/dvthanh/garahub-backend/api/validators"
	"github.com/dvthanh/garahub-backend/internal/invoices"
	"github.com/dvthanh/garahub-backend/internal/repairs"
	"github.com/dvthanh/garahub-backend/pkg/enums"
	pkgerrors "github.com/dvthanh/garahub-backend/pkg/errors"
	"github.com/dvthanh/garahub-backend/pkg/logger"
)

type repairCreateRequest struct {
	CustomerID      string            `json:"customer_id" validate:"required"`
	VehicleID       string            `json:"vehicle_id" validate:"required"`
	Odometer        int64             `json:"odometer" validate:"min=0"`
	DateExpected    *time.Time        `json:"date_expected"`
	TaxPercent      string            `json:"tax_percent"`
	CustomerRequest *string           `json:"customer_request"`
	TechnicianNotes *string           `json:"technician_notes"`
	Lines           []lineItemRequest `json:"lines" validate:"required,min=1,dive"`
}

func (r repairCreateRequest) toInput() (repairs.CreateRepairInput, error) {
	customerID, err := uuid.Parse(strings.TrimSpace(r.CustomerID))
	if err != nil {
		return repairs.CreateRepairInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer_id")
	}

	vehicleID, err := uuid.Parse(strings.TrimSpace(r.VehicleID))
	if err != nil {
		return repairs.CreateRepairInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vehicle_id")
	}

	taxPercent := decimal.Zero
	if strings.TrimSpace(r.TaxPercent) != "" {
		taxPercent, err = parsePercent(r.TaxPercent, "tax_percent")
		if err != nil {
			return repairs.CreateRepairInput{}, err
		}
	}

	lines, err := lineInputs(r.Lines)
	if err != nil {
		return repairs.CreateRepairInput{}, err
	}

	return repairs.CreateRepairInput{
		CustomerID:      customerID,
		VehicleID:       vehicleID,
		Odometer:        r.Odometer,
		DateExpected:    r.DateExpected,
		TaxPercent:      taxPercent,
		CustomerRequest: r.CustomerRequest,
		TechnicianNotes: r.TechnicianNotes,
		Lines:           lines,
	}, nil
}

type repairUpdateRequest struct {
	Odometer        *int64             `json:"odometer" validate:"omitempty,min=0"`
	DateExpected    *time.Time         `json:"date_expected"`
	TaxPercent      *string            `json:"tax_percent"`
	CustomerRequest *string            `json:"customer_request"`
	TechnicianNotes *string            `json:"technician_notes"`
	Lines           *[]lineItemRequest `json:"lines" validate:"omitempty,min=1,dive"`
}

func (r repairUpdateRequest) toInput() (repairs.UpdateRepairInput, error) {
	input := repairs.UpdateRepairInput{
		Odometer:        r.Odometer,
		DateExpected:    r.DateExpected,
		CustomerRequest: r.CustomerRequest,
		TechnicianNotes: r.TechnicianNotes,
	}

	if r.TaxPercent != nil {
		taxPercent, err := parsePercent(*r.TaxPercent, "tax_percent")
		if err != nil {
			return repairs.UpdateRepairInput{}, err
		}
		input.TaxPercent = &taxPercent
	}

	if r.Lines != nil {
		lines, err := lineInputs(*r.Lines)
		if err != nil {
			return repairs.UpdateRepairInput{}, err
		}
		input.Lines = &lines
	}

	return input, nil
}

type repairStatusRequest struct {
	Status       string `json:"status" validate:"required"`
	RequireStock bool   `json:"require_stock"`
}

type invoiceDeriveRequest struct {
	DiscountPercent string  `json:"discount_percent"`
	Notes           *string `json:"notes"`
}

func (r invoiceDeriveRequest) toInput() (invoices.DeriveInvoiceInput, error) {
	discount := decimal.Zero
	if strings.TrimSpace(r.DiscountPercent) != "" {
		var err error
		discount, err = parsePercent(r.DiscountPercent, "discount_percent")
		if err != nil {
			return invoices.DeriveInvoiceInput{}, err
		}
	}

	return invoices.DeriveInvoiceInput{
		DiscountPercent: discount,
		Notes:           r.Notes,
	}, nil
}

// RepairCreate opens a repair order directly, without a source quotation.
func RepairCreate(svc repairs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "repair service unavailable"))
			return
		}

		var payload repairCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// RepairGet returns a repair order with its lines loaded.
func RepairGet(svc repairs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "repair service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		repair, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, repair)
	}
}

// RepairList returns a cursor page of repair orders, filterable by customer,
// vehicle and status.
func RepairList(svc repairs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "repair service unavailable"))
			return
		}

		params, err := listParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customerID, err := validators.ParseQueryUUID(r, "customer_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicleID, err := validators.ParseQueryUUID(r, "vehicle_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := repairs.Filters{
			CustomerID: customerID,
			VehicleID:  vehicleID,
			Query:      validators.ParseQueryString(r, "q"),
		}

		if raw := validators.ParseQueryString(r, "status"); raw != "" {
			status, parseErr := enums.ParseRepairStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid repair status"))
				return
			}
			filters.Status = &status
		}

		list, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// RepairUpdate applies partial edits while the order has not been reconciled.
func RepairUpdate(svc repairs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "repair service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload repairUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

// RepairChangeStatus moves a repair order through its lifecycle. Completion
// reconciles stock; any shortfalls come back alongside the updated order,
// unless require_stock is set, in which case they abort the transition.
func RepairChangeStatus(svc repairs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "repair service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload repairStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseRepairStatus(strings.TrimSpace(payload.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid repair status"))
			return
		}

		result, err := svc.ChangeStatus(r.Context(), id, status, repairs.StatusChangeOptions{RequireStock: payload.RequireStock})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// RepairDeriveInvoice issues the invoice for a completed repair order. If the
// order is already billed the existing invoice comes back instead.
func RepairDeriveInvoice(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload invoiceDeriveRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.DeriveFromRepair(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusCreated
		if result.Existing {
			status = http.StatusOK
		}
		responses.WriteSuccessStatus(w, status, result)
	}
}

// RepairDelete removes an unbilled, non-terminal repair order.
func RepairDelete(svc repairs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "repair service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
