package http

import (
	"net/http"
	"strings"

	"github.com/pulse-crew/volunteer-pulse/internal/eval"
)

// GET /criteria?category=&is_active=true|false|all
func ListCriteriaHandler(store eval.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := eval.CriteriaListOpts{
			Category: strings.TrimSpace(r.URL.Query().Get("category")),
		}
		switch r.URL.Query().Get("is_active") {
		case "true":
			t := true
			opts.Active = &t
		case "false":
			f := false
			opts.Active = &f
		}
		list, err := store.ListCriteria(r.Context(), opts)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"criteria": list})
	}
}
