package eval_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/pulse-crew/volunteer-pulse/internal/db"
	"github.com/pulse-crew/volunteer-pulse/internal/eval"
	"github.com/pulse-crew/volunteer-pulse/internal/scoring"
)

func openTestStore(t *testing.T, name string) (*sql.DB, *eval.SQLStore) {
	t.Helper()
	ctx := context.Background()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	dbh, err := db.Open(ctx, db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = dbh.Close() })
	st := eval.NewSQLStore(dbh, "sqlite", scoring.NewRankEngine(nil), scoring.AlertRule{Threshold: 75})
	return dbh, st
}

func seed(t *testing.T, dbh *sql.DB, volunteerXP int) string {
	t.Helper()
	now := time.Now().Unix()
	const volID = "vol-1"
	if _, err := dbh.Exec(
		`INSERT INTO volunteers (id, full_name, phone, join_date, is_active, xp_points, rank, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		volID, "Sara Haddad", "0500000001", "2024-01-15", true, volunteerXP, "rookie", now, now); err != nil {
		t.Fatalf("seed volunteer: %v", err)
	}
	criteria := []struct {
		id, name, category string
		max                float64
	}{
		{"C1", "Event participation", "field", 10},
		{"C2", "Report accuracy", "administrative", 10},
		{"B1", "Extra initiative", "bonus", 5},
	}
	for i, c := range criteria {
		if _, err := dbh.Exec(
			`INSERT INTO evaluation_criteria (id, name, category, max_score, is_active, display_order)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			c.id, c.name, c.category, c.max, true, i); err != nil {
			t.Fatalf("seed criterion %s: %v", c.id, err)
		}
	}
	return volID
}

func countRows(t *testing.T, dbh *sql.DB, table string) int {
	t.Helper()
	var n int
	if err := dbh.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestSubmitEvaluation_PersistsWholeUnit(t *testing.T) {
	dbh, st := openTestStore(t, "submit_full")
	volID := seed(t, dbh, 0)

	res, err := st.SubmitEvaluation(context.Background(), eval.SubmitInput{
		VolunteerID: volID,
		Period:      eval.Period{Month: 3, Year: 2026},
		Scores: []eval.ScoreInput{
			{CriterionID: "C1", Score: 8},
			{CriterionID: "C2", Score: 6},
		},
		IdeaText: "monthly buddy system for new volunteers",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Percentage != 70 {
		t.Fatalf("percentage = %v, want 70", res.Percentage)
	}
	if res.DNALabel != scoring.LabelFieldDominant {
		t.Fatalf("dna = %q, want %q", res.DNALabel, scoring.LabelFieldDominant)
	}
	if res.HasAward {
		t.Fatal("no award expected at 70%")
	}

	var total, pct float64
	var label string
	var hasAward bool
	if err := dbh.QueryRow(
		`SELECT total_score, percentage, dna_label, has_award FROM evaluations WHERE volunteer_id=$1`, volID).
		Scan(&total, &pct, &label, &hasAward); err != nil {
		t.Fatalf("read evaluation: %v", err)
	}
	if total != 14 || pct != 70 || label != scoring.LabelFieldDominant || hasAward {
		t.Fatalf("evaluation row = (%v,%v,%q,%v), want (14,70,field-dominant,false)", total, pct, label, hasAward)
	}
	if n := countRows(t, dbh, "evaluation_details"); n != 2 {
		t.Fatalf("detail rows = %d, want 2", n)
	}
	if n := countRows(t, dbh, "creative_vault"); n != 1 {
		t.Fatalf("vault rows = %d, want 1", n)
	}

	// 70% grants 7 XP; 70 < 75 raises a low_performance alert.
	v, err := st.GetVolunteer(context.Background(), volID)
	if err != nil {
		t.Fatalf("get volunteer: %v", err)
	}
	if v.XPPoints != 7 || v.Rank != "rookie" {
		t.Fatalf("volunteer = (%d xp, %q), want (7, rookie)", v.XPPoints, v.Rank)
	}
	alerts, n, err := st.ListAlerts(context.Background(), eval.AlertListOpts{})
	if err != nil || n != 1 {
		t.Fatalf("alerts = %d (err %v), want 1", n, err)
	}
	if alerts[0].Type != scoring.AlertTypeLowPerformance || alerts[0].Message != "volunteer performance dropped to 70.0%" {
		t.Fatalf("unexpected alert: %+v", alerts[0])
	}
	if n := countRows(t, dbh, "event_log"); n != 2 {
		t.Fatalf("event rows = %d, want 2 (submission + alert)", n)
	}
}

func TestSubmitEvaluation_BonusOnly(t *testing.T) {
	dbh, st := openTestStore(t, "submit_bonus")
	volID := seed(t, dbh, 0)

	res, err := st.SubmitEvaluation(context.Background(), eval.SubmitInput{
		VolunteerID: volID,
		Period:      eval.Period{Month: 4, Year: 2026},
		Scores:      []eval.ScoreInput{{CriterionID: "B1", Score: 5}},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	// Bonus-only: denominator 0, so percentage 0, balanced, alert fires,
	// no XP gained.
	if res.Percentage != 0 || res.DNALabel != scoring.LabelBalanced || res.HasAward {
		t.Fatalf("unexpected result: %+v", res)
	}
	v, _ := st.GetVolunteer(context.Background(), volID)
	if v.XPPoints != 0 {
		t.Fatalf("xp = %d, want 0", v.XPPoints)
	}
	if n := countRows(t, dbh, "alert_records"); n != 1 {
		t.Fatalf("alert rows = %d, want 1", n)
	}
	if n := countRows(t, dbh, "creative_vault"); n != 0 {
		t.Fatalf("vault rows = %d, want 0 when no idea text", n)
	}
}

func TestSubmitEvaluation_AwardAndNoAlert(t *testing.T) {
	dbh, st := openTestStore(t, "submit_award")
	volID := seed(t, dbh, 0)

	res, err := st.SubmitEvaluation(context.Background(), eval.SubmitInput{
		VolunteerID: volID,
		Period:      eval.Period{Month: 5, Year: 2026},
		Scores: []eval.ScoreInput{
			{CriterionID: "C1", Score: 9},
			{CriterionID: "C2", Score: 9},
		},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Percentage != 90 || !res.HasAward {
		t.Fatalf("result = %+v, want 90%% with award", res)
	}
	if n := countRows(t, dbh, "alert_records"); n != 0 {
		t.Fatalf("alert rows = %d, want 0 at 90%%", n)
	}
}

func TestSubmitEvaluation_RankCrossing(t *testing.T) {
	dbh, st := openTestStore(t, "submit_rank")
	volID := seed(t, dbh, 95)

	// 16/20 = 80% -> 8 XP -> 103 total, crossing into bronze.
	if _, err := st.SubmitEvaluation(context.Background(), eval.SubmitInput{
		VolunteerID: volID,
		Period:      eval.Period{Month: 6, Year: 2026},
		Scores: []eval.ScoreInput{
			{CriterionID: "C1", Score: 8},
			{CriterionID: "C2", Score: 8},
		},
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	v, err := st.GetVolunteer(context.Background(), volID)
	if err != nil {
		t.Fatalf("get volunteer: %v", err)
	}
	if v.XPPoints != 103 || v.Rank != "bronze" {
		t.Fatalf("volunteer = (%d xp, %q), want (103, bronze)", v.XPPoints, v.Rank)
	}
}

func TestSubmitEvaluation_RejectsBeforeWrite(t *testing.T) {
	dbh, st := openTestStore(t, "submit_reject")
	volID := seed(t, dbh, 0)
	ctx := context.Background()

	_, err := st.SubmitEvaluation(ctx, eval.SubmitInput{
		VolunteerID: "no-such-volunteer",
		Scores:      []eval.ScoreInput{{CriterionID: "C1", Score: 5}},
	})
	if !errors.Is(err, eval.ErrVolunteerNotFound) {
		t.Fatalf("err = %v, want ErrVolunteerNotFound", err)
	}

	_, err = st.SubmitEvaluation(ctx, eval.SubmitInput{
		VolunteerID: volID,
		Scores:      []eval.ScoreInput{{CriterionID: "missing", Score: 5}},
	})
	if !errors.Is(err, eval.ErrUnknownCriterion) {
		t.Fatalf("err = %v, want ErrUnknownCriterion", err)
	}

	_, err = st.SubmitEvaluation(ctx, eval.SubmitInput{
		VolunteerID: volID,
		Scores: []eval.ScoreInput{
			{CriterionID: "C1", Score: 5},
			{CriterionID: "C1", Score: 7},
		},
	})
	if !errors.Is(err, eval.ErrDuplicateCriterion) {
		t.Fatalf("err = %v, want ErrDuplicateCriterion", err)
	}

	for _, table := range []string{"evaluations", "evaluation_details", "creative_vault", "alert_records"} {
		if n := countRows(t, dbh, table); n != 0 {
			t.Fatalf("%s has %d rows after rejected submissions", table, n)
		}
	}
}

func TestSubmitEvaluation_RollbackOnAlertFailure(t *testing.T) {
	dbh, st := openTestStore(t, "submit_rollback")
	volID := seed(t, dbh, 40)

	// Sabotage the final step of the pipeline; everything written before
	// it must vanish with the rollback.
	if _, err := dbh.Exec(`DROP TABLE alert_records`); err != nil {
		t.Fatalf("drop alert_records: %v", err)
	}

	_, err := st.SubmitEvaluation(context.Background(), eval.SubmitInput{
		VolunteerID: volID,
		Period:      eval.Period{Month: 7, Year: 2026},
		Scores: []eval.ScoreInput{
			{CriterionID: "C1", Score: 8},
			{CriterionID: "C2", Score: 6},
		},
		IdeaText: "an idea that must not survive the rollback",
	})
	if !errors.Is(err, eval.ErrTransactionFailed) {
		t.Fatalf("err = %v, want ErrTransactionFailed", err)
	}

	for _, table := range []string{"evaluations", "evaluation_details", "creative_vault", "event_log"} {
		if n := countRows(t, dbh, table); n != 0 {
			t.Fatalf("%s has %d rows after rollback", table, n)
		}
	}
	var xp int
	if err := dbh.QueryRow(`SELECT xp_points FROM volunteers WHERE id=$1`, volID).Scan(&xp); err != nil {
		t.Fatalf("read xp: %v", err)
	}
	if xp != 40 {
		t.Fatalf("xp = %d after rollback, want 40", xp)
	}
}

func TestSubmitEvaluation_RepeatedLowScoresStackAlerts(t *testing.T) {
	dbh, st := openTestStore(t, "submit_stack")
	volID := seed(t, dbh, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := st.SubmitEvaluation(ctx, eval.SubmitInput{
			VolunteerID: volID,
			Period:      eval.Period{Month: i + 1, Year: 2026},
			Scores:      []eval.ScoreInput{{CriterionID: "C1", Score: 4}},
		}); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	// No dedup against unresolved alerts: three low scores, three rows.
	if n := countRows(t, dbh, "alert_records"); n != 3 {
		t.Fatalf("alert rows = %d, want 3", n)
	}
}
