package db

import (
	"context"
	"database/sql"
)

type seedCriterion struct {
	id       string
	name     string
	category string
	maxScore float64
	order    int
}

var defaultCriteria = []seedCriterion{
	{"crit-attendance", "Attendance & punctuality", "field", 10, 1},
	{"crit-teamwork", "Teamwork in the field", "field", 10, 2},
	{"crit-initiative", "Initiative during operations", "field", 10, 3},
	{"crit-reporting", "Report accuracy", "administrative", 10, 4},
	{"crit-compliance", "Procedure compliance", "administrative", 10, 5},
	{"crit-innovation", "Creative contribution", "bonus", 5, 6},
}

// SeedCriteria inserts the stock criteria catalogue if the table is
// empty. Existing catalogues are never touched so operators can curate
// their own.
func SeedCriteria(ctx context.Context, dbh *sql.DB) error {
	var n int
	if err := dbh.QueryRowContext(ctx, `SELECT COUNT(*) FROM evaluation_criteria`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	for _, c := range defaultCriteria {
		_, err := dbh.ExecContext(ctx,
			`INSERT INTO evaluation_criteria (id, name, category, max_score, is_active, display_order)
			 VALUES ($1, $2, $3, $4, TRUE, $5)`,
			c.id, c.name, c.category, c.maxScore, c.order)
		if err != nil {
			return err
		}
	}
	return nil
}
