package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dvthanh/garahub-backend/api/responses"
	"github.com/dvthanh/garahub-backend/api/validators"
	"github.com/dvthanh/garahub-backend/internal/quotations"
	"github.com/dvthanh/garahub-backend/internal/repairs"
	"github.com/dvthanh/garahub-backend/pkg/enums"
	pkgerrors "github.com/dvthanh/garahub-backend/pkg/errors"
	"github.com/dvthanh/garahub-backend/pkg/logger"
)

type quotationCreateRequest struct {
	CustomerID string            `json:"customer_id" validate:"required"`
	VehicleID  string            `json:"vehicle_id" validate:"required"`
	TaxPercent string            `json:"tax_percent"`
	Notes      *string           `json:"notes"`
	Lines      []lineItemRequest `json:"lines" validate:"required,min=1,dive"`
}

func (r quotationCreateRequest) toInput() (quotations.CreateQuotationInput, error) {
	customerID, err := uuid.Parse(strings.TrimSpace(r.CustomerID))
	if err != nil {
		return quotations.CreateQuotationInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer_id")
	}

	vehicleID, err := uuid.Parse(strings.TrimSpace(r.VehicleID))
	if err != nil {
		return quotations.CreateQuotationInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vehicle_id")
	}

	taxPercent := decimal.Zero
	if strings.TrimSpace(r.TaxPercent) != "" {
		taxPercent, err = parsePercent(r.TaxPercent, "tax_percent")
		if err != nil {
			return quotations.CreateQuotationInput{}, err
		}
	}

	lines, err := lineInputs(r.Lines)
	if err != nil {
		return quotations.CreateQuotationInput{}, err
	}

	return quotations.CreateQuotationInput{
		CustomerID: customerID,
		VehicleID:  vehicleID,
		TaxPercent: taxPercent,
		Notes:      r.Notes,
		Lines:      lines,
	}, nil
}

type quotationUpdateRequest struct {
	TaxPercent *string            `json:"tax_percent"`
	Notes      *string            `json:"notes"`
	Lines      *[]lineItemRequest `json:"lines" validate:"omitempty,min=1,dive"`
}

func (r quotationUpdateRequest) toInput() (quotations.UpdateQuotationInput, error) {
	input := quotations.UpdateQuotationInput{Notes: r.Notes}

	if r.TaxPercent != nil {
		taxPercent, err := parsePercent(*r.TaxPercent, "tax_percent")
		if err != nil {
			return quotations.UpdateQuotationInput{}, err
		}
		input.TaxPercent = &taxPercent
	}

	if r.Lines != nil {
		lines, err := lineInputs(*r.Lines)
		if err != nil {
			return quotations.UpdateQuotationInput{}, err
		}
		input.Lines = &lines
	}

	return input, nil
}

type quotationStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// QuotationCreate drafts a quotation and prices its lines.
func QuotationCreate(svc quotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotation service unavailable"))
			return
		}

		var payload quotationCreateRequest
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

// QuotationGet returns a quotation with its lines loaded.
func QuotationGet(svc quotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotation service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quotation, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quotation)
	}
}

// QuotationList returns a cursor page of quotations, filterable by customer,
// vehicle and status.
func QuotationList(svc quotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotation service unavailable"))
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

		filters := quotations.Filters{
			CustomerID: customerID,
			VehicleID:  vehicleID,
			Query:      validators.ParseQueryString(r, "q"),
		}

		if raw := validators.ParseQueryString(r, "status"); raw != "" {
			status, parseErr := enums.ParseQuotationStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid quotation status"))
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

// QuotationUpdate applies partial edits while the quotation is editable.
func QuotationUpdate(svc quotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotation service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload quotationUpdateRequest
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

// QuotationChangeStatus moves a quotation through its lifecycle.
func QuotationChangeStatus(svc quotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotation service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload quotationStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseQuotationStatus(strings.TrimSpace(payload.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid quotation status"))
			return
		}

		updated, err := svc.ChangeStatus(r.Context(), id, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

// QuotationDeriveRepair turns an accepted quotation into a repair order.
func QuotationDeriveRepair(svc repairs.Service, logg *logger.Logger) http.HandlerFunc {
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

		derived, err := svc.DeriveFromQuotation(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, derived)
	}
}

// QuotationDelete removes a quotation that no repair order was derived from.
func QuotationDelete(svc quotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotation service unavailable"))
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
