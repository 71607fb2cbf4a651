package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/joelohman/birthday-reminder-be/internal/api"
	"github.com/joelohman/birthday-reminder-be/internal/config"
	"github.com/joelohman/birthday-reminder-be/internal/database"
	"github.com/joelohman/birthday-reminder-be/internal/logger"
	"github.com/joelohman/birthday-reminder-be/internal/mail"
	"github.com/joelohman/birthday-reminder-be/internal/scheduler"
	"github.com/joelohman/birthday-reminder-be/internal/services"
	"github.com/joelohman/birthday-reminder-be/internal/websocket"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up mail delivery
	sender, err := mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize SMTP sender")
	}

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	userService := services.NewUserService(db)
	eventService := services.NewEventService(db)
	birthdayService := services.NewBirthdayService(db, eventService)

	// Set up and run the background reminder scheduler
	reminderScheduler, err := scheduler.New(cfg.ReminderSchedule, birthdayService, userService, eventService, sender, hub)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize reminder scheduler")
	}
	go reminderScheduler.Run()

	// Set up router
	router := api.NewRouter(hub, userService, birthdayService, eventService, reminderScheduler, cfg.CORSOrigins)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	reminderScheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
