package eval

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pulse-crew/volunteer-pulse/internal/scoring"
)

// MemoryStore mirrors SQLStore semantics without a database. One mutex
// serializes submissions, which trivially satisfies the per-volunteer
// ordering guarantee.
type MemoryStore struct {
	mu         sync.RWMutex
	ranks      *scoring.RankEngine
	alerts     scoring.AlertRule
	volunteers map[string]Volunteer
	criteria   map[string]Criterion
	evals      map[string]Evaluation
	details    map[string][]EvaluationDetail // evaluationID -> rows
	vault      []VaultEntry
	alertRows  []Alert
}

var _ Store = (*MemoryStore)(nil)

func NewInMemoryStore(ranks *scoring.RankEngine, alerts scoring.AlertRule) *MemoryStore {
	if ranks == nil {
		ranks = scoring.NewRankEngine(nil)
	}
	if alerts.Threshold == 0 {
		alerts.Threshold = scoring.DefaultAlertThreshold
	}
	return &MemoryStore{
		ranks:      ranks,
		alerts:     alerts,
		volunteers: map[string]Volunteer{},
		criteria:   map[string]Criterion{},
		evals:      map[string]Evaluation{},
		details:    map[string][]EvaluationDetail{},
	}
}

// PutCriterion seeds the catalog (tests/dev only; the catalog is
// read-only for the pipeline itself).
func (m *MemoryStore) PutCriterion(c Criterion) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.criteria[c.ID] = c
}

func (m *MemoryStore) SubmitEvaluation(_ context.Context, in SubmitInput) (SubmitResult, error) {
	if err := checkDistinct(in.Scores); err != nil {
		return SubmitResult{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.volunteers[in.VolunteerID]
	if !ok {
		return SubmitResult{}, fmt.Errorf("%w: %s", ErrVolunteerNotFound, in.VolunteerID)
	}
	scored := make([]scoring.ScoredCriterion, 0, len(in.Scores))
	for _, sc := range in.Scores {
		c, ok := m.criteria[sc.CriterionID]
		if !ok {
			return SubmitResult{}, fmt.Errorf("%w: %s", ErrUnknownCriterion, sc.CriterionID)
		}
		scored = append(scored, scoring.ScoredCriterion{
			CriterionID: sc.CriterionID,
			Category:    c.Category,
			Score:       sc.Score,
			MaxScore:    c.MaxScore,
		})
	}

	totals := scoring.Aggregate(scored)
	label := scoring.ClassifyDNA(scored)
	hasAward := scoring.HasAward(totals.Percentage)
	now := time.Now().Unix()

	evalID := uuid.NewString()
	m.evals[evalID] = Evaluation{
		ID: evalID, VolunteerID: in.VolunteerID,
		Month: in.Period.Month, Year: in.Period.Year,
		TotalScore: totals.Total, Percentage: totals.Percentage,
		DNALabel: label, HasAward: hasAward, CreatedAt: now,
		VolunteerName: v.FullName,
	}
	for _, sc := range in.Scores {
		m.details[evalID] = append(m.details[evalID], EvaluationDetail{
			ID: uuid.NewString(), EvaluationID: evalID, CriterionID: sc.CriterionID, Score: sc.Score,
		})
	}
	if idea := strings.TrimSpace(in.IdeaText); idea != "" {
		m.vault = append(m.vault, VaultEntry{
			ID: uuid.NewString(), VolunteerID: in.VolunteerID, IdeaText: idea,
			CreatedAt: now, VolunteerName: v.FullName,
		})
	}

	v.XPPoints += scoring.XPGained(totals.Percentage)
	v.Rank = m.ranks.Rank(v.XPPoints)
	v.UpdatedAt = now
	m.volunteers[in.VolunteerID] = v

	if msg, fired := m.alerts.Evaluate(totals.Percentage); fired {
		m.alertRows = append(m.alertRows, Alert{
			ID: uuid.NewString(), VolunteerID: in.VolunteerID,
			Type: scoring.AlertTypeLowPerformance, Message: msg,
			CreatedAt: now, VolunteerName: v.FullName,
		})
	}
	return SubmitResult{Percentage: totals.Percentage, DNALabel: label, HasAward: hasAward}, nil
}

func (m *MemoryStore) GetVolunteer(_ context.Context, id string) (Volunteer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.volunteers[id]
	if !ok {
		return Volunteer{}, ErrVolunteerNotFound
	}
	m.fillAggregates(&v)
	return v, nil
}

func (m *MemoryStore) fillAggregates(v *Volunteer) {
	var n int
	var sum float64
	for _, e := range m.evals {
		if e.VolunteerID == v.ID {
			n++
			sum += e.Percentage
		}
	}
	v.TotalEvaluations = n
	if n > 0 {
		v.AvgPerformance = sum / float64(n)
	}
}

func (m *MemoryStore) ListVolunteers(_ context.Context, opts VolunteerListOpts) ([]Volunteer, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := []Volunteer{}
	for _, v := range m.volunteers {
		if opts.Search != "" {
			s := strings.ToLower(opts.Search)
			if !strings.Contains(strings.ToLower(v.FullName), s) && !strings.Contains(v.Phone, opts.Search) {
				continue
			}
		}
		if opts.Status == "active" && !v.IsActive {
			continue
		}
		if opts.Status == "inactive" && v.IsActive {
			continue
		}
		m.fillAggregates(&v)
		all = append(all, v)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt > all[j].CreatedAt })
	return page(all, opts.Limit, opts.Offset), len(all), nil
}

func (m *MemoryStore) CreateVolunteer(_ context.Context, v Volunteer) (Volunteer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.Rank == "" {
		v.Rank = m.ranks.Rank(v.XPPoints)
	}
	now := time.Now().Unix()
	v.CreatedAt, v.UpdatedAt = now, now
	m.volunteers[v.ID] = v
	return v, nil
}

func (m *MemoryStore) UpdateVolunteer(_ context.Context, v Volunteer) (Volunteer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.volunteers[v.ID]
	if !ok {
		return Volunteer{}, ErrVolunteerNotFound
	}
	cur.FullName, cur.Phone, cur.JoinDate = v.FullName, v.Phone, v.JoinDate
	cur.IsActive, cur.IsFrozen, cur.FreezeReason = v.IsActive, v.IsFrozen, v.FreezeReason
	cur.UpdatedAt = time.Now().Unix()
	m.volunteers[v.ID] = cur
	return cur, nil
}

func (m *MemoryStore) ListCriteria(_ context.Context, opts CriteriaListOpts) ([]Criterion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Criterion{}
	for _, c := range m.criteria {
		if opts.Category != "" && c.Category != opts.Category {
			continue
		}
		if opts.Active != nil && c.IsActive != *opts.Active {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *MemoryStore) ListEvaluations(_ context.Context, opts EvaluationListOpts) ([]Evaluation, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := []Evaluation{}
	for _, e := range m.evals {
		if opts.VolunteerID != "" && e.VolunteerID != opts.VolunteerID {
			continue
		}
		all = append(all, e)
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		if a.Month != b.Month {
			return a.Month > b.Month
		}
		return a.CreatedAt > b.CreatedAt
	})
	return page(all, opts.Limit, opts.Offset), len(all), nil
}

func (m *MemoryStore) ListAlerts(_ context.Context, opts AlertListOpts) ([]Alert, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := []Alert{}
	for _, a := range m.alertRows {
		if opts.Resolved != nil && a.IsResolved != *opts.Resolved {
			continue
		}
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt > all[j].CreatedAt })
	return page(all, opts.Limit, opts.Offset), len(all), nil
}

func (m *MemoryStore) ResolveAlert(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.alertRows {
		if m.alertRows[i].ID == id {
			m.alertRows[i].IsResolved = true
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *MemoryStore) ListVault(_ context.Context, limit, offset int) ([]VaultEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := make([]VaultEntry, len(m.vault))
	copy(all, m.vault)
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt > all[j].CreatedAt })
	return page(all, limitOr(limit, 50), offset), nil
}

func (m *MemoryStore) Overview(_ context.Context) (OverviewStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var st OverviewStats
	st.TotalVolunteers = len(m.volunteers)
	for _, v := range m.volunteers {
		if v.IsActive {
			st.ActiveVolunteers++
		}
	}
	now := time.Now()
	var sum float64
	for _, e := range m.evals {
		sum += e.Percentage
		if e.Month == int(now.Month()) && e.Year == now.Year() {
			st.MonthlyEvaluations++
		}
	}
	if len(m.evals) > 0 {
		st.AvgPerformance = sum / float64(len(m.evals))
	}
	for _, a := range m.alertRows {
		if a.IsResolved {
			st.ResolvedAlerts++
		} else {
			st.ActiveAlerts++
		}
	}
	return st, nil
}

func (m *MemoryStore) OrganizationReport(_ context.Context) (OrganizationReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var r OrganizationReport
	r.TotalVolunteers = len(m.volunteers)
	for _, v := range m.volunteers {
		if v.IsActive {
			r.ActiveVolunteers++
		}
	}
	r.TotalEvaluations = len(m.evals)
	type acc struct {
		name string
		sum  float64
		n    int
	}
	byVol := map[string]*acc{}
	var sum float64
	for _, e := range m.evals {
		sum += e.Percentage
		a := byVol[e.VolunteerID]
		if a == nil {
			a = &acc{name: m.volunteers[e.VolunteerID].FullName}
			byVol[e.VolunteerID] = a
		}
		a.sum += e.Percentage
		a.n++
	}
	if r.TotalEvaluations > 0 {
		r.AvgPerformance = sum / float64(r.TotalEvaluations)
	}
	r.TopPerformers = []TopPerformer{}
	for _, a := range byVol {
		if a.n >= 3 {
			r.TopPerformers = append(r.TopPerformers, TopPerformer{
				FullName: a.name, AvgPerformance: a.sum / float64(a.n), TotalEvaluations: a.n,
			})
		}
	}
	sort.Slice(r.TopPerformers, func(i, j int) bool {
		return r.TopPerformers[i].AvgPerformance > r.TopPerformers[j].AvgPerformance
	})
	if len(r.TopPerformers) > 10 {
		r.TopPerformers = r.TopPerformers[:10]
	}
	return r, nil
}

func page[T any](all []T, limit, offset int) []T {
	if limit <= 0 {
		limit = 10
	}
	if offset >= len(all) {
		return []T{}
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}
