package http

import (
	"net/http"

	"github.com/pulse-crew/volunteer-pulse/internal/eval"
)

// GET /reports/organization
func OrganizationReportHandler(store eval.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := store.OrganizationReport(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, rep)
	}
}
