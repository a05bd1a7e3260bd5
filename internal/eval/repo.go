package eval

import "context"

type VolunteerListOpts struct {
	Search string // matches full_name or phone
	Status string // active|inactive|all
	Limit  int
	Offset int
}

type EvaluationListOpts struct {
	VolunteerID string // optional filter
	Limit       int
	Offset      int
}

type AlertListOpts struct {
	Resolved *bool // nil = all
	Limit    int
	Offset   int
}

type CriteriaListOpts struct {
	Category string // field|administrative|bonus, empty = all
	Active   *bool  // nil = all
}

type Store interface {
	// SubmitEvaluation runs the whole pipeline as one atomic unit:
	// aggregate, classify, persist header + details, optional vault row,
	// XP/rank update, optional alert. All-or-nothing.
	SubmitEvaluation(ctx context.Context, in SubmitInput) (SubmitResult, error)

	GetVolunteer(ctx context.Context, id string) (Volunteer, error)
	ListVolunteers(ctx context.Context, opts VolunteerListOpts) ([]Volunteer, int, error)
	CreateVolunteer(ctx context.Context, v Volunteer) (Volunteer, error)
	UpdateVolunteer(ctx context.Context, v Volunteer) (Volunteer, error)

	ListCriteria(ctx context.Context, opts CriteriaListOpts) ([]Criterion, error)

	ListEvaluations(ctx context.Context, opts EvaluationListOpts) ([]Evaluation, int, error)

	ListAlerts(ctx context.Context, opts AlertListOpts) ([]Alert, int, error)
	ResolveAlert(ctx context.Context, id string) error

	ListVault(ctx context.Context, limit, offset int) ([]VaultEntry, error)

	Overview(ctx context.Context) (OverviewStats, error)
	OrganizationReport(ctx context.Context) (OrganizationReport, error)
}
