package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pulse-crew/volunteer-pulse/internal/eval"
)

// GET /volunteers?search=&status=active|inactive|all&page=&limit=
func ListVolunteersHandler(store eval.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, limit, offset := pageParams(r)
		list, total, err := store.ListVolunteers(r.Context(), eval.VolunteerListOpts{
			Search: strings.TrimSpace(r.URL.Query().Get("search")),
			Status: strings.TrimSpace(r.URL.Query().Get("status")),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{
			"volunteers": list,
			"pagination": paginate(page, limit, total),
		})
	}
}

// GET /volunteers/{volunteerID} returns the profile plus the five most
// recent evaluations.
func GetVolunteerHandler(store eval.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "volunteerID")
		v, err := store.GetVolunteer(r.Context(), id)
		if err != nil {
			if errors.Is(err, eval.ErrVolunteerNotFound) {
				http.Error(w, "volunteer not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		recent, _, err := store.ListEvaluations(r.Context(), eval.EvaluationListOpts{
			VolunteerID: id,
			Limit:       5,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{
			"volunteer":          v,
			"recent_evaluations": recent,
		})
	}
}

type volunteerReq struct {
	FullName     string `json:"full_name"`
	Phone        string `json:"phone"`
	JoinDate     string `json:"join_date"`
	IsActive     *bool  `json:"is_active"`
	IsFrozen     bool   `json:"is_frozen"`
	FreezeReason string `json:"freeze_reason"`
}

// POST /volunteers
func CreateVolunteerHandler(store eval.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req volunteerReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if len(strings.TrimSpace(req.FullName)) < 2 {
			http.Error(w, "full_name required", http.StatusBadRequest)
			return
		}
		active := true
		if req.IsActive != nil {
			active = *req.IsActive
		}
		v, err := store.CreateVolunteer(r.Context(), eval.Volunteer{
			FullName:     strings.TrimSpace(req.FullName),
			Phone:        req.Phone,
			JoinDate:     req.JoinDate,
			IsActive:     active,
			IsFrozen:     req.IsFrozen,
			FreezeReason: req.FreezeReason,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSONStatus(w, http.StatusCreated, v)
	}
}

// PUT /volunteers/{volunteerID}. Profile fields only; XP and rank are
// owned by the submission pipeline.
func UpdateVolunteerHandler(store eval.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "volunteerID")
		var req volunteerReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if len(strings.TrimSpace(req.FullName)) < 2 {
			http.Error(w, "full_name required", http.StatusBadRequest)
			return
		}
		active := true
		if req.IsActive != nil {
			active = *req.IsActive
		}
		v, err := store.UpdateVolunteer(r.Context(), eval.Volunteer{
			ID:           id,
			FullName:     strings.TrimSpace(req.FullName),
			Phone:        req.Phone,
			JoinDate:     req.JoinDate,
			IsActive:     active,
			IsFrozen:     req.IsFrozen,
			FreezeReason: req.FreezeReason,
		})
		if err != nil {
			if errors.Is(err, eval.ErrVolunteerNotFound) {
				http.Error(w, "volunteer not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, v)
	}
}

// GET /volunteers/statistics/overview
func OverviewHandler(store eval.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := store.Overview(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, st)
	}
}
