package controllers

import (
	"net/http"
	"strings"

	"github.com/dvthanh/garahub-backend/api/responses"
	"github.com/dvthanh/garahub-backend/api/validators"
	"github.com/dvthanh/garahub-backend/internal/invoices"
	"github.com/dvthanh/garahub-backend/pkg/enums"
	pkgerrors "github.com/dvthanh/garahub-backend/pkg/errors"
	"github.com/dvthanh/garahub-backend/pkg/logger"
)

type invoiceUpdateRequest struct {
	DiscountPercent *string `json:"discount_percent"`
	TaxPercent      *string `json:"tax_percent"`
	Notes           *string `json:"notes"`
}

func (r invoiceUpdateRequest) toInput() (invoices.UpdateInvoiceInput, error) {
	input := invoices.UpdateInvoiceInput{Notes: r.Notes}

	if r.DiscountPercent != nil {
		discount, err := parsePercent(*r.DiscountPercent, "discount_percent")
		if err != nil {
			return invoices.UpdateInvoiceInput{}, err
		}
		input.DiscountPercent = &discount
	}

	if r.TaxPercent != nil {
		tax, err := parsePercent(*r.TaxPercent, "tax_percent")
		if err != nil {
			return invoices.UpdateInvoiceInput{}, err
		}
		input.TaxPercent = &tax
	}

	return input, nil
}

type paymentRequest struct {
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
	Method      string `json:"method" validate:"required"`
}

func (r paymentRequest) toInput() (invoices.RecordPaymentInput, error) {
	method, err := enums.ParsePaymentMethod(strings.TrimSpace(r.Method))
	if err != nil {
		return invoices.RecordPaymentInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	return invoices.RecordPaymentInput{
		AmountCents: r.AmountCents,
		Method:      method,
	}, nil
}

// InvoiceGet returns an invoice with its lines loaded.
func InvoiceGet(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
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

		invoice, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, invoice)
	}
}

// InvoiceList returns a cursor page of invoices, filterable by customer,
// vehicle and payment status.
func InvoiceList(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
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

		filters := invoices.Filters{
			CustomerID: customerID,
			VehicleID:  vehicleID,
			Query:      validators.ParseQueryString(r, "q"),
		}

		if raw := validators.ParseQueryString(r, "status"); raw != "" {
			status, parseErr := enums.ParseInvoiceStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid invoice status"))
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

// InvoiceUpdate adjusts billing fields while the invoice is still unpaid.
func InvoiceUpdate(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload invoiceUpdateRequest
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

// InvoiceRecordPayment registers money received against an invoice.
func InvoiceRecordPayment(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload paymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.RecordPayment(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

// InvoiceDelete removes an unpaid invoice.
func InvoiceDelete(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
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

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
