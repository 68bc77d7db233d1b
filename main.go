package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/m-lab/mlab-metrics-api/internal/db"
	"github.com/m-lab/mlab-metrics-api/internal/locales"
	"github.com/m-lab/mlab-metrics-api/internal/logger"
	"github.com/m-lab/mlab-metrics-api/internal/metrics"
	"github.com/m-lab/mlab-metrics-api/internal/middleware"
	"github.com/m-lab/mlab-metrics-api/internal/refresh"
	"github.com/m-lab/mlab-metrics-api/internal/telemetry"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Server is up!")
}

func main() {
	_ = godotenv.Load(".env.local")
	logger.Setup()
	l := logger.Get("main")

	db.Connect()

	locales.Init()
	metrics.Init()
	refresh.Init()

	mh := &metrics.Handlers{
		Store: metrics.NewSQLStore(db.DB),
		Cache: metrics.OpenCacheFromEnv(),
	}
	if mh.Cache == nil {
		l.Info().Msg("redis cache disabled")
	}

	rf := refresh.New(db.DB)
	rh := &refresh.Handlers{Refresher: rf}
	sched := refresh.NewScheduler(rf)
	if err := sched.Start(); err != nil {
		l.Fatal().Err(err).Msg("invalid refresh schedule")
	}
	defer sched.Stop()

	r := chi.NewRouter()
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.CORSMiddleware)
	r.Use(middleware.RateLimitMiddleware)

	r.Get("/", RootHandler)
	r.Handle("/metrics", telemetry.Handler())
	r.Mount("/cron", rh.CronRoutes())

	r.Route("/api", func(api chi.Router) {
		locales.RegisterRoutes(api)
		mh.RegisterRoutes(api)
		api.Mount("/admin", rh.AdminRoutes())
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "5050"
	}

	l.Info().Str("port", port).Msg("server listening")
	if err := http.ListenAndServe("0.0.0.0:"+port, r); err != nil {
		l.Fatal().Err(err).Msg("server exited")
	}
}
