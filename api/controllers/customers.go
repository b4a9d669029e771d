package controllers

import (
	"net/http"
	"strings"

	"github.com/dvthanh/garahub-backend/api/responses"
	"github.com/dvthanh/garahub-backend/api/validators"
	"github.com/dvthanh/garahub-backend/internal/customers"
	pkgerrors "github.com/dvthanh/garahub-backend/pkg/errors"
	"github.com/dvthanh/garahub-backend/pkg/logger"
)

type customerCreateRequest struct {
	Name    string  `json:"name" validate:"required,max=255"`
	Phone   string  `json:"phone" validate:"required,max=32"`
	Address *string `json:"address"`
	Email   *string `json:"email" validate:"omitempty,email"`
	TaxCode *string `json:"tax_code"`
	Notes   *string `json:"notes"`
}

func (r customerCreateRequest) toInput() customers.CreateCustomerInput {
	return customers.CreateCustomerInput{
		Name:    strings.TrimSpace(r.Name),
		Phone:   strings.TrimSpace(r.Phone),
		Address: r.Address,
		Email:   r.Email,
		TaxCode: r.TaxCode,
		Notes:   r.Notes,
	}
}

type customerUpdateRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=255"`
	Phone   *string `json:"phone" validate:"omitempty,min=1,max=32"`
	Address *string `json:"address"`
	Email   *string `json:"email" validate:"omitempty,email"`
	TaxCode *string `json:"tax_code"`
	Notes   *string `json:"notes"`
}

func (r customerUpdateRequest) toInput() customers.UpdateCustomerInput {
	return customers.UpdateCustomerInput{
		Name:    r.Name,
		Phone:   r.Phone,
		Address: r.Address,
		Email:   r.Email,
		TaxCode: r.TaxCode,
		Notes:   r.Notes,
	}
}

// CustomerCreate handles registering a new customer.
func CustomerCreate(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}

		var payload customerCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// CustomerGet returns a single customer by id.
func CustomerGet(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, customer)
	}
}

// CustomerList returns a cursor page of customers, optionally filtered by a
// free-text query over name, phone and code.
func CustomerList(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}

		params, err := listParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := customers.Filters{Query: validators.ParseQueryString(r, "q")}

		list, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// CustomerUpdate applies partial edits to a customer.
func CustomerUpdate(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload customerUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

// CustomerDelete removes a customer without registered vehicles.
func CustomerDelete(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
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
