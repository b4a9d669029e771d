package catalog

import (
	"github.com/dvthanh/garahub-backend/pkg/db/models"
)

// CreateCategoryInput carries the fields accepted when adding a category.
type CreateCategoryInput struct {
	Name string
}

// UpdateCategoryInput renames a category.
type UpdateCategoryInput struct {
	Name *string
}

// CreateServiceInput carries the fields accepted when adding a labor service.
type CreateServiceInput struct {
	Name             string
	PriceCents       int64
	EstimatedMinutes *int
}

// UpdateServiceInput applies partial edits. Nil fields are left untouched.
type UpdateServiceInput struct {
	Name             *string
	PriceCents       *int64
	EstimatedMinutes *int
}

// ServiceFilters describe the inputs supported by the service list.
type ServiceFilters struct {
	Query string
}

// ServiceList wraps the paginated services plus the next page cursor.
type ServiceList struct {
	Services   []models.CatalogService `json:"services"`
	NextCursor string                  `json:"next_cursor,omitempty"`
}
