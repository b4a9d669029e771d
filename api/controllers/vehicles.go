package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dvthanh/garahub-backend/api/responses"
	"github.com/dvthanh/garahub-backend/api/validators"
	"github.com/dvthanh/garahub-backend/internal/vehicles"
	pkgerrors "github.com/dvthanh/garahub-backend/pkg/errors"
	"github.com/dvthanh/garahub-backend/pkg/logger"
)

type vehicleCreateRequest struct {
	CustomerID   string  `json:"customer_id" validate:"required"`
	LicensePlate string  `json:"license_plate" validate:"required,max=32"`
	Brand        string  `json:"brand" validate:"required,max=128"`
	Model        string  `json:"model" validate:"required,max=128"`
	VIN          *string `json:"vin"`
	Year         *int    `json:"year" validate:"omitempty,min=1900,max=2100"`
	Color        *string `json:"color"`
	Odometer     int64   `json:"odometer" validate:"min=0"`
}

func (r vehicleCreateRequest) toInput() (vehicles.CreateVehicleInput, error) {
	customerID, err := uuid.Parse(strings.TrimSpace(r.CustomerID))
	if err != nil {
		return vehicles.CreateVehicleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer_id")
	}

	return vehicles.CreateVehicleInput{
		CustomerID:   customerID,
		LicensePlate: strings.TrimSpace(r.LicensePlate),
		Brand:        strings.TrimSpace(r.Brand),
		Model:        strings.TrimSpace(r.Model),
		VIN:          r.VIN,
		Year:         r.Year,
		Color:        r.Color,
		Odometer:     r.Odometer,
	}, nil
}

type vehicleUpdateRequest struct {
	LicensePlate *string `json:"license_plate" validate:"omitempty,min=1,max=32"`
	Brand        *string `json:"brand" validate:"omitempty,min=1,max=128"`
	Model        *string `json:"model" validate:"omitempty,min=1,max=128"`
	VIN          *string `json:"vin"`
	Year         *int    `json:"year" validate:"omitempty,min=1900,max=2100"`
	Color        *string `json:"color"`
	Odometer     *int64  `json:"odometer" validate:"omitempty,min=0"`
}

func (r vehicleUpdateRequest) toInput() vehicles.UpdateVehicleInput {
	return vehicles.UpdateVehicleInput{
		LicensePlate: r.LicensePlate,
		Brand:        r.Brand,
		Model:        r.Model,
		VIN:          r.VIN,
		Year:         r.Year,
		Color:        r.Color,
		Odometer:     r.Odometer,
	}
}

// VehicleCreate registers a vehicle under an existing customer.
func VehicleCreate(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicle service unavailable"))
			return
		}

		var payload vehicleCreateRequest
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

// VehicleGet returns a single vehicle by id.
func VehicleGet(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicle service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicle, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, vehicle)
	}
}

// VehicleList returns a cursor page of vehicles, filterable by owner and a
// free-text query over plate, brand and model.
func VehicleList(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicle service unavailable"))
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

		filters := vehicles.Filters{
			CustomerID: customerID,
			Query:      validators.ParseQueryString(r, "q"),
		}

		list, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// VehicleUpdate applies partial edits to a vehicle.
func VehicleUpdate(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicle service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload vehicleUpdateRequest
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

// VehicleDelete removes a vehicle with no open documents.
func VehicleDelete(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicle service unavailable"))
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
