package eval

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pulse-crew/volunteer-pulse/internal/audit"
	"github.com/pulse-crew/volunteer-pulse/internal/scoring"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
	ranks  *scoring.RankEngine
	alerts scoring.AlertRule
}

var _ Store = (*SQLStore)(nil)

func NewSQLStore(db *sql.DB, driver string, ranks *scoring.RankEngine, alerts scoring.AlertRule) *SQLStore {
	if ranks == nil {
		ranks = scoring.NewRankEngine(nil)
	}
	if alerts.Threshold == 0 {
		alerts.Threshold = scoring.DefaultAlertThreshold
	}
	return &SQLStore{db: db, driver: driver, ranks: ranks, alerts: alerts}
}

// SubmitEvaluation executes the whole pipeline inside one transaction.
// The volunteer XP bump is a single in-place UPDATE ... RETURNING, so the
// read-modify-write happens under the row lock the UPDATE takes; two
// concurrent submissions for the same volunteer serialize at that row.
func (s *SQLStore) SubmitEvaluation(ctx context.Context, in SubmitInput) (res SubmitResult, err error) {
	if err = checkDistinct(in.Scores); err != nil {
		return SubmitResult{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			if !IsSubmitInputError(err) && !errors.Is(err, ErrTransactionFailed) {
				err = fmt.Errorf("%w: %v", ErrTransactionFailed, err)
			}
		}
	}()

	// Preconditions: volunteer and every criterion must resolve.
	var one int
	if err = tx.QueryRowContext(ctx, `SELECT 1 FROM volunteers WHERE id=$1`, in.VolunteerID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = fmt.Errorf("%w: %s", ErrVolunteerNotFound, in.VolunteerID)
		}
		return SubmitResult{}, err
	}
	scored, err := resolveCriteria(ctx, tx, in.Scores)
	if err != nil {
		return SubmitResult{}, err
	}

	totals := scoring.Aggregate(scored)
	label := scoring.ClassifyDNA(scored)
	hasAward := scoring.HasAward(totals.Percentage)
	now := time.Now().Unix()

	evalID := uuid.NewString()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO evaluations (id, volunteer_id, eval_month, eval_year, total_score, percentage, dna_label, has_award, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		evalID, in.VolunteerID, in.Period.Month, in.Period.Year,
		totals.Total, totals.Percentage, label, hasAward, now)
	if err != nil {
		return SubmitResult{}, err
	}

	for _, sc := range in.Scores {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO evaluation_details (id, evaluation_id, criteria_id, score) VALUES ($1,$2,$3,$4)`,
			uuid.NewString(), evalID, sc.CriterionID, sc.Score)
		if err != nil {
			return SubmitResult{}, err
		}
	}

	if idea := strings.TrimSpace(in.IdeaText); idea != "" {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO creative_vault (id, volunteer_id, idea_text, created_at) VALUES ($1,$2,$3,$4)`,
			uuid.NewString(), in.VolunteerID, idea, now)
		if err != nil {
			return SubmitResult{}, err
		}
	}

	gained := scoring.XPGained(totals.Percentage)
	var newXP int
	err = tx.QueryRowContext(ctx,
		`UPDATE volunteers SET xp_points = xp_points + $1, updated_at=$2 WHERE id=$3 RETURNING xp_points`,
		gained, now, in.VolunteerID).Scan(&newXP)
	if err != nil {
		return SubmitResult{}, err
	}
	_, err = tx.ExecContext(ctx, `UPDATE volunteers SET rank=$1 WHERE id=$2`,
		s.ranks.Rank(newXP), in.VolunteerID)
	if err != nil {
		return SubmitResult{}, err
	}

	if msg, fired := s.alerts.Evaluate(totals.Percentage); fired {
		alertID := uuid.NewString()
		_, err = tx.ExecContext(ctx,
			`INSERT INTO alert_records (id, volunteer_id, alert_type, message, is_resolved, created_at)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			alertID, in.VolunteerID, scoring.AlertTypeLowPerformance, msg, false, now)
		if err != nil {
			return SubmitResult{}, err
		}
		if err = appendEvent(ctx, tx, audit.TypeAlertRaised, alertID, map[string]any{
			"volunteer_id": in.VolunteerID,
			"percentage":   totals.Percentage,
		}); err != nil {
			return SubmitResult{}, err
		}
	}

	if err = appendEvent(ctx, tx, audit.TypeEvaluationSubmitted, evalID, map[string]any{
		"volunteer_id": in.VolunteerID,
		"percentage":   totals.Percentage,
		"dna_label":    label,
		"xp_gained":    gained,
	}); err != nil {
		return SubmitResult{}, err
	}

	if err = tx.Commit(); err != nil {
		return SubmitResult{}, err
	}
	return SubmitResult{Percentage: totals.Percentage, DNALabel: label, HasAward: hasAward}, nil
}

func checkDistinct(scores []ScoreInput) error {
	seen := make(map[string]struct{}, len(scores))
	for _, sc := range scores {
		if _, dup := seen[sc.CriterionID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateCriterion, sc.CriterionID)
		}
		seen[sc.CriterionID] = struct{}{}
	}
	return nil
}

func resolveCriteria(ctx context.Context, tx *sql.Tx, scores []ScoreInput) ([]scoring.ScoredCriterion, error) {
	out := make([]scoring.ScoredCriterion, 0, len(scores))
	for _, sc := range scores {
		var category string
		var max float64
		err := tx.QueryRowContext(ctx,
			`SELECT category, max_score FROM evaluation_criteria WHERE id=$1`, sc.CriterionID).
			Scan(&category, &max)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("%w: %s", ErrUnknownCriterion, sc.CriterionID)
			}
			return nil, err
		}
		out = append(out, scoring.ScoredCriterion{
			CriterionID: sc.CriterionID,
			Category:    category,
			Score:       sc.Score,
			MaxScore:    max,
		})
	}
	return out, nil
}

func appendEvent(ctx context.Context, tx *sql.Tx, typ, key string, data map[string]any) error {
	buf, _ := json.Marshal(data)
	return audit.Append(ctx, tx, audit.Event{Type: typ, Key: key, DataJSON: string(buf)})
}

// ---- volunteers ----

func (s *SQLStore) GetVolunteer(ctx context.Context, id string) (Volunteer, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT v.id, v.full_name, v.phone, v.join_date, v.is_active, v.is_frozen, v.freeze_reason,
		       v.xp_points, v.rank, v.created_at, v.updated_at,
		       (SELECT COUNT(*) FROM evaluations e WHERE e.volunteer_id = v.id),
		       (SELECT COALESCE(AVG(e.percentage),0) FROM evaluations e WHERE e.volunteer_id = v.id)
		FROM volunteers v WHERE v.id=$1`, id)
	var v Volunteer
	err := row.Scan(&v.ID, &v.FullName, &v.Phone, &v.JoinDate, &v.IsActive, &v.IsFrozen, &v.FreezeReason,
		&v.XPPoints, &v.Rank, &v.CreatedAt, &v.UpdatedAt, &v.TotalEvaluations, &v.AvgPerformance)
	if errors.Is(err, sql.ErrNoRows) {
		return Volunteer{}, ErrVolunteerNotFound
	}
	return v, err
}

func (s *SQLStore) ListVolunteers(ctx context.Context, opts VolunteerListOpts) ([]Volunteer, int, error) {
	where := "1=1"
	args := []any{}
	if opts.Search != "" {
		where += fmt.Sprintf(" AND (full_name %s $%d OR phone LIKE $%d)", s.likeOp(), len(args)+1, len(args)+2)
		args = append(args, "%"+opts.Search+"%", "%"+opts.Search+"%")
	}
	// Bare boolean predicates work on both drivers: postgres booleans and
	// sqlite's 0/1 integers.
	switch opts.Status {
	case "active":
		where += " AND is_active"
	case "inactive":
		where += " AND NOT is_active"
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM volunteers WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf(`
		SELECT v.id, v.full_name, v.phone, v.join_date, v.is_active, v.is_frozen, v.freeze_reason,
		       v.xp_points, v.rank, v.created_at, v.updated_at,
		       (SELECT COUNT(*) FROM evaluations e WHERE e.volunteer_id = v.id),
		       (SELECT COALESCE(AVG(e.percentage),0) FROM evaluations e WHERE e.volunteer_id = v.id)
		FROM volunteers v
		WHERE %s
		ORDER BY v.created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, limitOr(opts.Limit, 10), opts.Offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []Volunteer{}
	for rows.Next() {
		var v Volunteer
		if err := rows.Scan(&v.ID, &v.FullName, &v.Phone, &v.JoinDate, &v.IsActive, &v.IsFrozen, &v.FreezeReason,
			&v.XPPoints, &v.Rank, &v.CreatedAt, &v.UpdatedAt, &v.TotalEvaluations, &v.AvgPerformance); err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
	return out, total, rows.Err()
}

func (s *SQLStore) CreateVolunteer(ctx context.Context, v Volunteer) (Volunteer, error) {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.Rank == "" {
		v.Rank = s.ranks.Rank(v.XPPoints)
	}
	now := time.Now().Unix()
	v.CreatedAt, v.UpdatedAt = now, now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO volunteers (id, full_name, phone, join_date, is_active, is_frozen, freeze_reason, xp_points, rank, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		v.ID, v.FullName, v.Phone, v.JoinDate, v.IsActive, v.IsFrozen, v.FreezeReason, v.XPPoints, v.Rank, v.CreatedAt, v.UpdatedAt)
	return v, err
}

func (s *SQLStore) UpdateVolunteer(ctx context.Context, v Volunteer) (Volunteer, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE volunteers SET full_name=$1, phone=$2, join_date=$3, is_active=$4, is_frozen=$5, freeze_reason=$6, updated_at=$7
		 WHERE id=$8`,
		v.FullName, v.Phone, v.JoinDate, v.IsActive, v.IsFrozen, v.FreezeReason, time.Now().Unix(), v.ID)
	if err != nil {
		return Volunteer{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Volunteer{}, ErrVolunteerNotFound
	}
	return s.GetVolunteer(ctx, v.ID)
}

// ---- criteria ----

func (s *SQLStore) ListCriteria(ctx context.Context, opts CriteriaListOpts) ([]Criterion, error) {
	where := "1=1"
	args := []any{}
	if opts.Category != "" {
		where += fmt.Sprintf(" AND category=$%d", len(args)+1)
		args = append(args, opts.Category)
	}
	if opts.Active != nil {
		where += fmt.Sprintf(" AND is_active=$%d", len(args)+1)
		args = append(args, *opts.Active)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, category, max_score, is_active, display_order
		 FROM evaluation_criteria WHERE `+where+`
		 ORDER BY category, display_order, name`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Criterion{}
	for rows.Next() {
		var c Criterion
		if err := rows.Scan(&c.ID, &c.Name, &c.Category, &c.MaxScore, &c.IsActive, &c.DisplayOrder); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ---- evaluations ----

func (s *SQLStore) ListEvaluations(ctx context.Context, opts EvaluationListOpts) ([]Evaluation, int, error) {
	where := "1=1"
	args := []any{}
	if opts.VolunteerID != "" {
		where += fmt.Sprintf(" AND e.volunteer_id=$%d", len(args)+1)
		args = append(args, opts.VolunteerID)
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM evaluations e WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf(`
		SELECT e.id, e.volunteer_id, e.eval_month, e.eval_year, e.total_score, e.percentage,
		       e.dna_label, e.has_award, e.created_at, v.full_name
		FROM evaluations e
		LEFT JOIN volunteers v ON e.volunteer_id = v.id
		WHERE %s
		ORDER BY e.eval_year DESC, e.eval_month DESC, e.created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, limitOr(opts.Limit, 10), opts.Offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []Evaluation{}
	for rows.Next() {
		var e Evaluation
		if err := rows.Scan(&e.ID, &e.VolunteerID, &e.Month, &e.Year, &e.TotalScore, &e.Percentage,
			&e.DNALabel, &e.HasAward, &e.CreatedAt, &e.VolunteerName); err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

// ---- alerts ----

func (s *SQLStore) ListAlerts(ctx context.Context, opts AlertListOpts) ([]Alert, int, error) {
	where := "1=1"
	args := []any{}
	if opts.Resolved != nil {
		where += fmt.Sprintf(" AND a.is_resolved=$%d", len(args)+1)
		args = append(args, *opts.Resolved)
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM alert_records a WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf(`
		SELECT a.id, a.volunteer_id, a.alert_type, a.message, a.is_resolved, a.created_at, v.full_name
		FROM alert_records a
		LEFT JOIN volunteers v ON a.volunteer_id = v.id
		WHERE %s
		ORDER BY a.created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, limitOr(opts.Limit, 10), opts.Offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []Alert{}
	for rows.Next() {
		var a Alert
		if err := rows.Scan(&a.ID, &a.VolunteerID, &a.Type, &a.Message, &a.IsResolved, &a.CreatedAt, &a.VolunteerName); err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

func (s *SQLStore) ResolveAlert(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE alert_records SET is_resolved=$1 WHERE id=$2`, true, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ---- creative vault ----

func (s *SQLStore) ListVault(ctx context.Context, limit, offset int) ([]VaultEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cv.id, cv.volunteer_id, cv.idea_text, cv.created_at, v.full_name
		FROM creative_vault cv
		JOIN volunteers v ON cv.volunteer_id = v.id
		ORDER BY cv.created_at DESC
		LIMIT $1 OFFSET $2`, limitOr(limit, 50), offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []VaultEntry{}
	for rows.Next() {
		var e VaultEntry
		if err := rows.Scan(&e.ID, &e.VolunteerID, &e.IdeaText, &e.CreatedAt, &e.VolunteerName); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ---- stats & reports ----

func (s *SQLStore) Overview(ctx context.Context) (OverviewStats, error) {
	var st OverviewStats
	now := time.Now()
	steps := []struct {
		dst  any
		q    string
		args []any
	}{
		{&st.TotalVolunteers, `SELECT COUNT(*) FROM volunteers`, nil},
		{&st.ActiveVolunteers, `SELECT COUNT(*) FROM volunteers WHERE is_active`, nil},
		{&st.AvgPerformance, `SELECT COALESCE(AVG(percentage),0) FROM evaluations`, nil},
		{&st.MonthlyEvaluations, `SELECT COUNT(*) FROM evaluations WHERE eval_month=$1 AND eval_year=$2`,
			[]any{int(now.Month()), now.Year()}},
		{&st.ActiveAlerts, `SELECT COUNT(*) FROM alert_records WHERE NOT is_resolved`, nil},
		{&st.ResolvedAlerts, `SELECT COUNT(*) FROM alert_records WHERE is_resolved`, nil},
	}
	for _, step := range steps {
		if err := s.db.QueryRowContext(ctx, step.q, step.args...).Scan(step.dst); err != nil {
			return OverviewStats{}, err
		}
	}
	return st, nil
}

func (s *SQLStore) OrganizationReport(ctx context.Context) (OrganizationReport, error) {
	var r OrganizationReport
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM volunteers`).Scan(&r.TotalVolunteers); err != nil {
		return r, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM volunteers WHERE is_active`).Scan(&r.ActiveVolunteers); err != nil {
		return r, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM evaluations`).Scan(&r.TotalEvaluations); err != nil {
		return r, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(AVG(percentage),0) FROM evaluations`).Scan(&r.AvgPerformance); err != nil {
		return r, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT v.full_name, AVG(e.percentage), COUNT(e.id)
		FROM volunteers v
		INNER JOIN evaluations e ON v.id = e.volunteer_id
		GROUP BY v.id, v.full_name
		HAVING COUNT(e.id) >= 3
		ORDER BY AVG(e.percentage) DESC
		LIMIT 10`)
	if err != nil {
		return r, err
	}
	defer rows.Close()
	r.TopPerformers = []TopPerformer{}
	for rows.Next() {
		var tp TopPerformer
		if err := rows.Scan(&tp.FullName, &tp.AvgPerformance, &tp.TotalEvaluations); err != nil {
			return r, err
		}
		r.TopPerformers = append(r.TopPerformers, tp)
	}
	return r, rows.Err()
}

// ---- helpers ----

func (s *SQLStore) likeOp() string {
	if s.driver == "postgres" {
		return "ILIKE"
	}
	return "LIKE" // sqlite LIKE is case-insensitive for ASCII
}

func limitOr(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}
