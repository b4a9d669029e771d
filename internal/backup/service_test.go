package backup

import (
	"context"
	"io"
	"testing"

	"gorm.io/gorm"

	"github.com/dvthanh/garahub-backend/pkg/db/models"
	"github.com/dvthanh/garahub-backend/pkg/enums"
	pkgerrors "github.com/dvthanh/garahub-backend/pkg/errors"
	"github.com/dvthanh/garahub-backend/pkg/logger"
	"github.com/dvthanh/garahub-backend/pkg/outbox"
)

type stubRepo struct {
	archive  *Archive
	replaced *Archive
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Dump(ctx context.Context) (*Archive, error) {
	return s.archive, nil
}

func (s *stubRepo) ReplaceAll(ctx context.Context, archive *Archive) error {
	s.replaced = archive
	return nil
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func newTestService(t *testing.T, repo *stubRepo) (Service, *stubOutbox) {
	t.Helper()
	events := &stubOutbox{}
	svc, err := NewService(repo, stubTx{}, events, logger.New(logger.Options{Output: io.Discard}))
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc, events
}

func TestExportStampsArchive(t *testing.T) {
	repo := &stubRepo{archive: &Archive{
		Version:   ArchiveVersion,
		Customers: []models.Customer{{Name: "Nguyen Van A"}},
	}}
	svc, _ := newTestService(t, repo)

	archive, err := svc.Export(context.Background())
	if err != nil {
		t.Fatalf("Export error: %v", err)
	}
	if archive.ExportedAt.IsZero() {
		t.Fatalf("expected export timestamp")
	}
	if len(archive.Customers) != 1 {
		t.Fatalf("expected dumped rows")
	}
}

func TestRestoreReplacesAndEmits(t *testing.T) {
	repo := &stubRepo{}
	svc, events := newTestService(t, repo)

	archive := &Archive{
		Version:   ArchiveVersion,
		Customers: []models.Customer{{Name: "Nguyen Van A"}},
		Vehicles:  []models.Vehicle{{LicensePlate: "51A12345"}},
	}
	summary, err := svc.Restore(context.Background(), archive)
	if err != nil {
		t.Fatalf("Restore error: %v", err)
	}
	if repo.replaced != archive {
		t.Fatalf("expected ReplaceAll with the archive")
	}
	if summary.Counts["customers"] != 1 || summary.Counts["vehicles"] != 1 {
		t.Fatalf("unexpected summary %+v", summary.Counts)
	}
	if summary.RestoredAt.IsZero() {
		t.Fatalf("expected restore timestamp")
	}

	if len(events.events) != 1 || events.events[0].EventType != enums.EventBackupRestored {
		t.Fatalf("expected restore event, got %+v", events.events)
	}
}

func TestRestoreRejectsUnknownVersion(t *testing.T) {
	repo := &stubRepo{}
	svc, _ := newTestService(t, repo)

	_, err := svc.Restore(context.Background(), &Archive{Version: 99})
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.replaced != nil {
		t.Fatalf("failed validation must not touch the tables")
	}
}
