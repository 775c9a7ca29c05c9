package main

import (
	"fmt"
	"os"

	"disaster-report-service/internal/auth"
	"disaster-report-service/internal/config"
	"disaster-report-service/internal/db"
	"disaster-report-service/internal/geocode"
	httphandler "disaster-report-service/internal/http"
	"disaster-report-service/internal/http/middleware"
	"disaster-report-service/internal/logger"
	"disaster-report-service/internal/repository"
	"disaster-report-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	reportRepo := repository.NewReportRepository(database)
	disputeRepo := repository.NewDisputeRepository(database)

	var geocoder geocode.Resolver = geocode.Noop{}
	if cfg.Geocoder.BaseURL != "" {
		geocoder = geocode.NewClient(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, cfg.Geocoder.Timeout)
	}

	loc := cfg.Location()
	reportService := service.NewReportService(
		reportRepo,
		disputeRepo,
		geocoder,
		log,
		loc,
		cfg.Moderation.GraceDays,
		cfg.Moderation.DisputeReviewThreshold,
	)
	disputeService := service.NewDisputeService(disputeRepo, reportRepo, loc)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(reportService, disputeService, log)
	router := httphandler.NewRouter(handler, middleware.Auth(tokenParser), middleware.RequireAdmin(), cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting disaster report service")

	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
