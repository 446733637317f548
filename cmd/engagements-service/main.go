package main

import (
	"fmt"
	"os"

	"github.com/workbridge/engagements/internal/auth"
	"github.com/workbridge/engagements/internal/config"
	"github.com/workbridge/engagements/internal/db"
	"github.com/workbridge/engagements/internal/excel"
	"github.com/workbridge/engagements/internal/gateway"
	httphandler "github.com/workbridge/engagements/internal/http"
	"github.com/workbridge/engagements/internal/http/middleware"
	"github.com/workbridge/engagements/internal/logger"
	"github.com/workbridge/engagements/internal/pdf"
	"github.com/workbridge/engagements/internal/repository"
	"github.com/workbridge/engagements/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	meetingRepo := repository.NewMeetingRepository(database)
	projectRepo := repository.NewProjectRepository(database)
	milestoneRepo := repository.NewMilestoneRepository(database)
	paymentRepo := repository.NewPaymentRepository(database)
	verificationRepo := repository.NewVerificationRepository(database)
	notificationRepo := repository.NewNotificationRepository(database)

	notifier := service.NewNotifier(notificationRepo, log)
	paymentGateway := gateway.NewClient(cfg.Gateway)

	meetingService := service.NewMeetingService(meetingRepo, notifier, cfg)
	projectService := service.NewProjectService(projectRepo, milestoneRepo, excel.NewStatementGenerator())
	escrowService := service.NewEscrowService(paymentRepo, milestoneRepo, projectRepo, meetingRepo,
		paymentGateway, notifier, pdf.NewReceiptGenerator())
	verificationService := service.NewVerificationService(verificationRepo)
	notificationService := service.NewNotificationService(notificationRepo)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(meetingService, projectService, escrowService,
		verificationService, notificationService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, cfg.HTTP.AllowedOrigins)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting engagements service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
