package vehicles

import (
	"github.com/google/uuid"

	"github.com/dvthanh/garahub-backend/pkg/db/models"
)

// CreateVehicleInput carries the fields accepted when registering a vehicle.
type CreateVehicleInput struct {
	CustomerID   uuid.UUID
	LicensePlate string
	Brand        string
	Model        string
	VIN          *string
	Year         *int
	Color        *string
	Odometer     int64
}

// UpdateVehicleInput applies partial edits. Nil fields are left untouched.
// Odometer writes below the stored watermark are ignored, not rejected.
type UpdateVehicleInput struct {
	LicensePlate *string
	Brand        *string
	Model        *string
	VIN          *string
	Year         *int
	Color        *string
	Odometer     *int64
}

// Filters describe the inputs supported by the vehicle list.
type Filters struct {
	CustomerID *uuid.UUID
	Query      string
}

// VehicleList wraps the paginated vehicles plus the next page cursor.
type VehicleList struct {
	Vehicles   []models.Vehicle `json:"vehicles"`
	NextCursor string           `json:"next_cursor,omitempty"`
}
