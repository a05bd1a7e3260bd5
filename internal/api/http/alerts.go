package http

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pulse-crew/volunteer-pulse/internal/eval"
)

// GET /alerts?status=resolved|unresolved|all&page=&limit=
func ListAlertsHandler(store eval.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, limit, offset := pageParams(r)
		opts := eval.AlertListOpts{Limit: limit, Offset: offset}
		switch r.URL.Query().Get("status") {
		case "resolved":
			t := true
			opts.Resolved = &t
		case "unresolved":
			f := false
			opts.Resolved = &f
		}
		list, total, err := store.ListAlerts(r.Context(), opts)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{
			"alerts":     list,
			"pagination": paginate(page, limit, total),
		})
	}
}

// POST /alerts/{alertID}/resolve
func ResolveAlertHandler(store eval.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "alertID")
		if err := store.ResolveAlert(r.Context(), id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "alert not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
