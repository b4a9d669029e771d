package controllers

import (
	"net/http"

	"github.com/dvthanh/garahub-backend/api/responses"
	"github.com/dvthanh/garahub-backend/api/validators"
	"github.com/dvthanh/garahub-backend/internal/backup"
	pkgerrors "github.com/dvthanh/garahub-backend/pkg/errors"
	"github.com/dvthanh/garahub-backend/pkg/logger"
)

// BackupExport serializes the whole workshop dataset as a portable archive.
func BackupExport(svc backup.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "backup service unavailable"))
			return
		}

		archive, err := svc.Export(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Disposition", `attachment; filename="garahub-backup.json"`)
		responses.WriteSuccess(w, archive)
	}
}

// BackupRestore replaces the whole dataset with the uploaded archive.
func BackupRestore(svc backup.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "backup service unavailable"))
			return
		}

		var archive backup.Archive
		if err := validators.DecodeJSONBody(r, &archive); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Restore(r.Context(), &archive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}
