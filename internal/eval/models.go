package eval

type Volunteer struct {
	ID           string `json:"id"`
	FullName     string `json:"full_name"`
	Phone        string `json:"phone,omitempty"`
	JoinDate     string `json:"join_date,omitempty"`
	IsActive     bool   `json:"is_active"`
	IsFrozen     bool   `json:"is_frozen"`
	FreezeReason string `json:"freeze_reason,omitempty"`
	XPPoints     int    `json:"xp_points"`
	Rank         string `json:"rank"`
	CreatedAt    int64  `json:"created_at,omitempty"`
	UpdatedAt    int64  `json:"updated_at,omitempty"`

	// List/detail projections.
	TotalEvaluations int     `json:"total_evaluations,omitempty"`
	AvgPerformance   float64 `json:"avg_performance,omitempty"`
}

type Criterion struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"` // field|administrative|bonus
	MaxScore     float64 `json:"max_score"`
	IsActive     bool    `json:"is_active"`
	DisplayOrder int     `json:"display_order"`
}

type Evaluation struct {
	ID          string  `json:"id"`
	VolunteerID string  `json:"volunteer_id"`
	Month       int     `json:"eval_month"`
	Year        int     `json:"eval_year"`
	TotalScore  float64 `json:"total_score"`
	Percentage  float64 `json:"percentage"`
	DNALabel    string  `json:"dna_label"`
	HasAward    bool    `json:"has_award"`
	CreatedAt   int64   `json:"created_at"`

	VolunteerName string `json:"volunteer_name,omitempty"`
}

type EvaluationDetail struct {
	ID           string  `json:"id"`
	EvaluationID string  `json:"evaluation_id"`
	CriterionID  string  `json:"criteria_id"`
	Score        float64 `json:"score"`
}

type Alert struct {
	ID          string `json:"id"`
	VolunteerID string `json:"volunteer_id"`
	Type        string `json:"alert_type"`
	Message     string `json:"message"`
	IsResolved  bool   `json:"is_resolved"`
	CreatedAt   int64  `json:"created_at"`

	VolunteerName string `json:"volunteer_name,omitempty"`
}

type VaultEntry struct {
	ID          string `json:"id"`
	VolunteerID string `json:"volunteer_id"`
	IdeaText    string `json:"idea_text"`
	CreatedAt   int64  `json:"created_at"`

	VolunteerName string `json:"volunteer_name,omitempty"`
}

// Period is the month/year an evaluation covers.
type Period struct {
	Month int `json:"eval_month"`
	Year  int `json:"eval_year"`
}

// ScoreInput is one scored criterion as supplied by the caller.
type ScoreInput struct {
	CriterionID string  `json:"criteria_id"`
	Score       float64 `json:"score"`
}

// SubmitInput carries everything one evaluation submission needs.
type SubmitInput struct {
	VolunteerID string       `json:"volunteer_id"`
	Period      Period       `json:"period"`
	Scores      []ScoreInput `json:"scores"`
	IdeaText    string       `json:"idea_text,omitempty"`
}

// SubmitResult is what the pipeline reports back on success. Callers
// that need the persisted rows issue a separate read.
type SubmitResult struct {
	Percentage float64 `json:"percentage"`
	DNALabel   string  `json:"dna_label"`
	HasAward   bool    `json:"has_award"`
}

type OverviewStats struct {
	TotalVolunteers    int     `json:"total_volunteers"`
	ActiveVolunteers   int     `json:"active_volunteers"`
	AvgPerformance     float64 `json:"avg_performance"`
	MonthlyEvaluations int     `json:"monthly_evaluations"`
	ActiveAlerts       int     `json:"active_alerts"`
	ResolvedAlerts     int     `json:"resolved_alerts"`
}

type TopPerformer struct {
	FullName         string  `json:"full_name"`
	AvgPerformance   float64 `json:"avg_performance"`
	TotalEvaluations int     `json:"total_evaluations"`
}

type OrganizationReport struct {
	TotalVolunteers  int            `json:"total_volunteers"`
	ActiveVolunteers int            `json:"active_volunteers"`
	TotalEvaluations int            `json:"total_evaluations"`
	AvgPerformance   float64        `json:"avg_performance"`
	TopPerformers    []TopPerformer `json:"top_performers"`
}
