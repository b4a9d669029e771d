package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "postgres duplicate", err: errors.New(`ERROR: duplicate key value violates unique constraint "ux_invoices_repair_order"`), want: true},
		{name: "sqlite duplicate", err: errors.New("UNIQUE constraint failed: inventory_items.sku"), want: true},
		{name: "named constraint", err: errors.New(`constraint "ux_invoices_repair_order" violated`), constraint: "ux_invoices_repair_order", want: true},
		{name: "unrelated error", err: errors.New("connection refused"), want: false},
		{
			name:       "pgx unique violation",
			err:        fmt.Errorf("insert invoice: %w", &pgconn.PgError{Code: "23505", ConstraintName: "ux_invoices_repair_order"}),
			constraint: "ux_invoices_repair_order",
			want:       true,
		},
		{
			name:       "pgx unique violation other constraint",
			err:        fmt.Errorf("insert invoice: %w", &pgconn.PgError{Code: "23505", ConstraintName: "ux_customers_code"}),
			constraint: "ux_invoices_repair_order",
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUniqueViolation(tt.err, tt.constraint); got != tt.want {
				t.Fatalf("IsUniqueViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}
