// File: /main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
	"mycalendar-api/config"
	"mycalendar-api/database"
	"mycalendar-api/jobs"
	"mycalendar-api/middleware"
	"mycalendar-api/routes"
	"mycalendar-api/services"
)

func main() {
	app := &cli.App{
		Name:  "mycalendar",
		Usage: "MyCalendar API server and maintenance commands.",
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			seedCommand(),
		},
		// Running without a subcommand starts the server.
		Action: func(c *cli.Context) error {
			return serve(c.Context, config.Load())
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal("MyCalendar failed: ", err)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run migrations and start the HTTP API.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Usage: "Override PORT from the environment."},
		},
		Action: func(c *cli.Context) error {
			cfg := config.Load()
			if port := c.String("port"); port != "" {
				cfg.Port = port
			}
			return serve(c.Context, cfg)
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create or update the database schema and exit.",
		Action: func(c *cli.Context) error {
			_, err := openDatabase(config.Load())
			return err
		},
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Insert development users into an empty database.",
		Action: func(c *cli.Context) error {
			db, err := openDatabase(config.Load())
			if err != nil {
				return err
			}
			return database.SeedData(db)
		},
	}
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Initialize(cfg.DatabaseURL, cfg.DBLogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}

	gin.SetMode(cfg.GinMode)

	emailService := services.NewEmailService(cfg)
	dispatcher := services.NewNotificationDispatcher(emailService, cfg.NotificationWorkers, cfg.NotificationQueueSize)
	defer dispatcher.Stop()

	var gatherer prometheus.Gatherer
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		middleware.InitPrometheus(reg)
		services.RegisterMetrics(reg)
		gatherer = reg
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(routes.SetupCORS(cfg.CORSAllowedOrigins))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.ErrorHandler())
	if cfg.MetricsEnabled {
		router.Use(middleware.Monitor())
	}
	if gin.Mode() == gin.DebugMode {
		router.Use(middleware.RequestLogger())
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	limiter.StartCleanup(5 * time.Minute)
	defer limiter.Stop()

	routes.SetupRoutes(router, db, cfg, dispatcher, limiter, gatherer)

	if cfg.ReminderLead > 0 && cfg.ReminderInterval > 0 {
		reminders := jobs.NewEventReminderJob(services.NewEventService(db, dispatcher, cfg.Location()), cfg.ReminderLead, cfg.ReminderInterval)
		reminders.Start()
		defer reminders.Stop()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Starting MyCalendar API server on port %s", cfg.Port)
		log.Printf("Health check available at: http://localhost:%s/ping", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Println("Server stopped")
	return nil
}
