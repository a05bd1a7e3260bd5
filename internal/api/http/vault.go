package http

import (
	"net/http"

	"github.com/pulse-crew/volunteer-pulse/internal/eval"
)

// GET /vault?page=&limit=
func ListVaultHandler(store eval.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, limit, offset := pageParams(r)
		list, err := store.ListVault(r.Context(), limit, offset)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"ideas": list})
	}
}
