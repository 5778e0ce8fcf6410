package main

import (
	"context"
	"go-postulation-backend/config"
	v1 "go-postulation-backend/internal/delivery/http/v1"
	"go-postulation-backend/internal/events"
	"go-postulation-backend/internal/matching"
	"go-postulation-backend/internal/repository/postgres"
	"go-postulation-backend/internal/usecase"
	"go-postulation-backend/pkg/database"
	"go-postulation-backend/pkg/email"
	"go-postulation-backend/pkg/logger"
	"go-postulation-backend/pkg/redis"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
)

// @title           Postulation Matching API
// @version         1.0
// @description     Postulation matching and lifecycle engine using Clean Architecture.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting postulation backend", "port", cfg.Port)

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Redis (rate limiting; the in-memory fallback takes over when
	// unavailable)
	if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
		logger.Log.Warn("Redis unavailable, rate limiting degrades to in-memory", "error", err)
	}
	defer redis.Close()

	// 5. Setup Repositories
	candidateRepo := postgres.NewCandidateRepository(dbPool)
	vacancyRepo := postgres.NewVacancyRepository(dbPool)
	postulationRepo := postgres.NewPostulationRepository(dbPool)

	// 6. Setup Email Service
	emailService := email.NewEmailService(cfg)
	if !emailService.IsConfigured() {
		logger.Log.Warn("Email service not fully configured - state change notifications disabled")
	}

	// 7. Setup Event Pipeline
	emitter := events.NewEmitter(
		events.NewEmailNotifier(emailService, candidateRepo, vacancyRepo),
		events.NewAuditLogger(),
	)

	// 8. Setup UseCases
	validate := validator.New()
	scoring := matching.Config{
		ExperienceWeight: cfg.ScoreExperienceWeight,
		EducationWeight:  cfg.ScoreEducationWeight,
		LocationWeight:   cfg.ScoreLocationWeight,
		MandatoryMissCap: cfg.ScoreMandatoryMissCap,
	}
	candidateUC := usecase.NewCandidateUsecase(candidateRepo, validate)
	vacancyUC := usecase.NewVacancyUsecase(vacancyRepo, validate)
	postulationUC := usecase.NewPostulationUsecase(postulationRepo, vacancyRepo, candidateRepo, emitter, scoring)

	// 9. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		PostulationUC: postulationUC,
		VacancyUC:     vacancyUC,
		CandidateUC:   candidateUC,
		Config:        cfg,
	})

	// 10. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
