package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/pulse-crew/volunteer-pulse/internal/api/http"
	auth "github.com/pulse-crew/volunteer-pulse/internal/auth/middleware"
	"github.com/pulse-crew/volunteer-pulse/internal/config"
	"github.com/pulse-crew/volunteer-pulse/internal/db"
	"github.com/pulse-crew/volunteer-pulse/internal/eval"
	"github.com/pulse-crew/volunteer-pulse/internal/rbac"
	"github.com/pulse-crew/volunteer-pulse/internal/scoring"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	if err := db.SeedCriteria(ctx, dbh); err != nil {
		log.Fatalf("seed criteria: %v", err)
	}

	store := eval.NewSQLStore(dbh, cfg.DBDriver,
		scoring.NewRankEngine(rankTiers(cfg)),
		scoring.AlertRule{Threshold: cfg.AlertThreshold})

	// --- Auth (local JWT) ---
	authSvc := auth.NewAuthService(cfg.AuthSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(dbh, authSvc))
	r.Post("/auth/register", auth.RegisterHandler(dbh, authSvc))

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.Get("/auth/me", auth.MeHandler(dbh))

		// The submission pipeline; everything else is projections over it.
		pr.With(rbac.Require("evaluation:create")).
			Post("/evaluations", api.SubmitEvaluationHandler(store))
		pr.With(rbac.Require("evaluation:list")).
			Get("/evaluations", api.ListEvaluationsHandler(store))

		pr.With(rbac.Require("volunteer:view")).
			Get("/volunteers", api.ListVolunteersHandler(store))
		pr.With(rbac.Require("volunteer:view")).
			Get("/volunteers/statistics/overview", api.OverviewHandler(store))
		pr.With(rbac.Require("volunteer:view")).
			Get("/volunteers/{volunteerID}", api.GetVolunteerHandler(store))
		pr.With(rbac.Require("volunteer:create")).
			Post("/volunteers", api.CreateVolunteerHandler(store))
		pr.With(rbac.Require("volunteer:update")).
			Put("/volunteers/{volunteerID}", api.UpdateVolunteerHandler(store))

		pr.With(rbac.Require("criteria:view")).
			Get("/criteria", api.ListCriteriaHandler(store))

		pr.With(rbac.Require("alert:list")).
			Get("/alerts", api.ListAlertsHandler(store))
		pr.With(rbac.Require("alert:resolve")).
			Post("/alerts/{alertID}/resolve", api.ResolveAlertHandler(store))

		pr.With(rbac.Require("vault:view")).
			Get("/vault", api.ListVaultHandler(store))

		pr.With(rbac.Require("report:view")).
			Get("/reports/organization", api.OrganizationReportHandler(store))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

// rankTiers pairs RANK_THRESHOLDS with RANK_NAMES. Names carry one extra
// entry for the below-everything tier; mismatched config falls back to
// the stock ladder.
func rankTiers(cfg config.Config) []scoring.Tier {
	if len(cfg.RankNames) != len(cfg.RankThresholds)+1 {
		return nil
	}
	tiers := make([]scoring.Tier, 0, len(cfg.RankNames))
	for i, th := range cfg.RankThresholds {
		tiers = append(tiers, scoring.Tier{MinXP: th, Name: cfg.RankNames[i]})
	}
	tiers = append(tiers, scoring.Tier{MinXP: 0, Name: cfg.RankNames[len(cfg.RankNames)-1]})
	return tiers
}
