package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dvthanh/garahub-backend/pkg/enums"
	pkgerrors "github.com/dvthanh/garahub-backend/pkg/errors"
	"github.com/dvthanh/garahub-backend/pkg/logger"
	"github.com/dvthanh/garahub-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exports the full dataset as a JSON archive and restores from one.
// Restore is destructive: it replaces every business table in one
// transaction, so a failed import leaves the previous data untouched.
type Service interface {
	Export(ctx context.Context) (*Archive, error)
	Restore(ctx context.Context, archive *Archive) (*RestoreSummary, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	logg   *logger.Logger
}

// NewService builds a backup service with the required dependencies.
func NewService(repo Repository, tx txRunner, publisher outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("backup repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, outbox: publisher, logg: logg}, nil
}

func (s *service) Export(ctx context.Context) (*Archive, error) {
	var archive *Archive
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		dumped, err := s.repo.WithTx(tx).Dump(ctx)
		if err != nil {
			return err
		}
		archive = dumped
		return nil
	})
	if err != nil {
		return nil, err
	}
	archive.ExportedAt = time.Now().UTC()
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"customers": len(archive.Customers),
		"documents": len(archive.Quotations) + len(archive.RepairOrders) + len(archive.Invoices),
	})
	s.logg.Info(logCtx, "backup exported")
	return archive, nil
}

func (s *service) Restore(ctx context.Context, archive *Archive) (*RestoreSummary, error) {
	if archive == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "archive required")
	}
	if archive.Version != ArchiveVersion {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported archive version").
			WithDetails(map[string]any{"version": archive.Version, "supported": ArchiveVersion})
	}

	summary := &RestoreSummary{
		Counts: map[string]int{
			"customers":            len(archive.Customers),
			"vehicles":             len(archive.Vehicles),
			"inventory_categories": len(archive.InventoryCategories),
			"inventory_items":      len(archive.InventoryItems),
			"catalog_services":     len(archive.CatalogServices),
			"quotations":           len(archive.Quotations),
			"repair_orders":        len(archive.RepairOrders),
			"invoices":             len(archive.Invoices),
			"line_items":           len(archive.LineItems),
			"stock_movements":      len(archive.StockMovements),
			"code_sequences":       len(archive.CodeSequences),
		},
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).ReplaceAll(ctx, archive); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBackupRestored,
			AggregateType: enums.AggregateBackup,
			AggregateID:   uuid.New(),
			Data:          summary.Counts,
			Version:       1,
		})
	})
	if err != nil {
		return nil, err
	}
	summary.RestoredAt = time.Now().UTC()
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"counts": summary.Counts}), "backup restored")
	return summary, nil
}
