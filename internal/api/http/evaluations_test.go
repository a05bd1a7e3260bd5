package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	api "github.com/pulse-crew/volunteer-pulse/internal/api/http"
	"github.com/pulse-crew/volunteer-pulse/internal/eval"
	"github.com/pulse-crew/volunteer-pulse/internal/scoring"
)

func seedStore(t *testing.T) (*eval.MemoryStore, string) {
	t.Helper()
	st := eval.NewInMemoryStore(nil, scoring.AlertRule{Threshold: 75})
	st.PutCriterion(eval.Criterion{ID: "C1", Name: "Event participation", Category: "field", MaxScore: 10, IsActive: true})
	st.PutCriterion(eval.Criterion{ID: "C2", Name: "Report accuracy", Category: "administrative", MaxScore: 10, IsActive: true})
	v, err := st.CreateVolunteer(context.Background(), eval.Volunteer{FullName: "Omar Khalil", IsActive: true})
	if err != nil {
		t.Fatalf("seed volunteer: %v", err)
	}
	return st, v.ID
}

func TestSubmitEvaluationHandler(t *testing.T) {
	st, volID := seedStore(t)
	h := api.SubmitEvaluationHandler(st)

	body := `{"volunteer_id":"` + volID + `","eval_month":3,"eval_year":2026,
		"scores":[{"criteria_id":"C1","score":8},{"criteria_id":"C2","score":6}],
		"idea_text":"weekend training track"}`
	req := httptest.NewRequest("POST", "/evaluations", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Success    bool    `json:"success"`
		Percentage float64 `json:"percentage"`
		DNALabel   string  `json:"dna_label"`
		HasAward   bool    `json:"has_award"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Percentage != 70 || resp.DNALabel != scoring.LabelFieldDominant || resp.HasAward {
		t.Fatalf("unexpected response: %+v", resp)
	}

	// Side effects visible through the store.
	v, err := st.GetVolunteer(context.Background(), volID)
	if err != nil {
		t.Fatalf("get volunteer: %v", err)
	}
	if v.XPPoints != 7 {
		t.Fatalf("xp = %d, want 7", v.XPPoints)
	}
	alerts, n, _ := st.ListAlerts(context.Background(), eval.AlertListOpts{})
	if n != 1 || alerts[0].Type != scoring.AlertTypeLowPerformance {
		t.Fatalf("expected one low_performance alert, got %d", n)
	}
	ideas, _ := st.ListVault(context.Background(), 10, 0)
	if len(ideas) != 1 || ideas[0].IdeaText != "weekend training track" {
		t.Fatalf("unexpected vault entries: %+v", ideas)
	}
}

func TestSubmitEvaluationHandler_Validation(t *testing.T) {
	st, volID := seedStore(t)
	h := api.SubmitEvaluationHandler(st)

	cases := []struct {
		name string
		body string
		code int
	}{
		{"bad json", `{`, 400},
		{"missing volunteer", `{"eval_month":1,"eval_year":2026,"scores":[{"criteria_id":"C1","score":1}]}`, 400},
		{"bad month", `{"volunteer_id":"` + volID + `","eval_month":13,"eval_year":2026,"scores":[{"criteria_id":"C1","score":1}]}`, 400},
		{"empty scores", `{"volunteer_id":"` + volID + `","eval_month":1,"eval_year":2026,"scores":[]}`, 400},
		{"unknown volunteer", `{"volunteer_id":"nope","eval_month":1,"eval_year":2026,"scores":[{"criteria_id":"C1","score":1}]}`, 404},
		{"unknown criterion", `{"volunteer_id":"` + volID + `","eval_month":1,"eval_year":2026,"scores":[{"criteria_id":"X","score":1}]}`, 400},
		{"duplicate criterion", `{"volunteer_id":"` + volID + `","eval_month":1,"eval_year":2026,"scores":[{"criteria_id":"C1","score":1},{"criteria_id":"C1","score":2}]}`, 400},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/evaluations", strings.NewReader(c.body))
			rec := httptest.NewRecorder()
			h(rec, req)
			if rec.Code != c.code {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, c.code, rec.Body.String())
			}
		})
	}
}

func TestListEvaluationsHandler_Pagination(t *testing.T) {
	st, volID := seedStore(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := st.SubmitEvaluation(ctx, eval.SubmitInput{
			VolunteerID: volID,
			Period:      eval.Period{Month: i + 1, Year: 2026},
			Scores:      []eval.ScoreInput{{CriterionID: "C1", Score: 9}},
		}); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	req := httptest.NewRequest("GET", "/evaluations?page=1&limit=2", nil)
	rec := httptest.NewRecorder()
	api.ListEvaluationsHandler(st)(rec, req)
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Evaluations []eval.Evaluation `json:"evaluations"`
		Pagination  struct {
			CurrentPage int `json:"currentPage"`
			TotalPages  int `json:"totalPages"`
			TotalItems  int `json:"totalItems"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Evaluations) != 2 || resp.Pagination.TotalItems != 3 || resp.Pagination.TotalPages != 2 {
		t.Fatalf("unexpected page: %d items, pagination %+v", len(resp.Evaluations), resp.Pagination)
	}
}
