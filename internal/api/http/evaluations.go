package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pulse-crew/volunteer-pulse/internal/eval"
)

// POST /evaluations
// {"volunteer_id":"...","eval_month":3,"eval_year":2026,
//  "scores":[{"criteria_id":"C1","score":8}],"idea_text":"..."}
func SubmitEvaluationHandler(store eval.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			VolunteerID string            `json:"volunteer_id"`
			Month       int               `json:"eval_month"`
			Year        int               `json:"eval_year"`
			Scores      []eval.ScoreInput `json:"scores"`
			IdeaText    string            `json:"idea_text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.VolunteerID) == "" {
			http.Error(w, "volunteer_id required", http.StatusBadRequest)
			return
		}
		if req.Month < 1 || req.Month > 12 {
			http.Error(w, "eval_month must be 1-12", http.StatusBadRequest)
			return
		}
		if req.Year < 2000 || req.Year > 2200 {
			http.Error(w, "eval_year out of range", http.StatusBadRequest)
			return
		}
		// The pipeline itself accepts an empty score list; the API does not.
		if len(req.Scores) == 0 {
			http.Error(w, "at least one score required", http.StatusBadRequest)
			return
		}

		res, err := store.SubmitEvaluation(r.Context(), eval.SubmitInput{
			VolunteerID: req.VolunteerID,
			Period:      eval.Period{Month: req.Month, Year: req.Year},
			Scores:      req.Scores,
			IdeaText:    req.IdeaText,
		})
		if err != nil {
			switch {
			case errors.Is(err, eval.ErrVolunteerNotFound):
				http.Error(w, err.Error(), http.StatusNotFound)
			case errors.Is(err, eval.ErrUnknownCriterion), errors.Is(err, eval.ErrDuplicateCriterion):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, map[string]any{
			"success":    true,
			"percentage": res.Percentage,
			"dna_label":  res.DNALabel,
			"has_award":  res.HasAward,
		})
	}
}

// GET /evaluations?volunteer_id=&page=&limit=
func ListEvaluationsHandler(store eval.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, limit, offset := pageParams(r)
		list, total, err := store.ListEvaluations(r.Context(), eval.EvaluationListOpts{
			VolunteerID: strings.TrimSpace(r.URL.Query().Get("volunteer_id")),
			Limit:       limit,
			Offset:      offset,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{
			"evaluations": list,
			"pagination":  paginate(page, limit, total),
		})
	}
}
