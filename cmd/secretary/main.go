package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/secretary-dev/secretary/db"
	"github.com/secretary-dev/secretary/internal/ai"
	"github.com/secretary-dev/secretary/internal/alerts"
	"github.com/secretary-dev/secretary/internal/auth"
	"github.com/secretary-dev/secretary/internal/calendar"
	"github.com/secretary-dev/secretary/internal/channels"
	"github.com/secretary-dev/secretary/internal/handlers"
	"github.com/secretary-dev/secretary/internal/mail"
	"github.com/secretary-dev/secretary/internal/router"
	"github.com/secretary-dev/secretary/internal/scheduler"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if err := auth.InitJWTSecret(); err != nil {
		log.Fatalf("Failed to initialize JWT secret: %v", err)
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if err := db.ConnectDatabase(dsn); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	aiClient := ai.NewClient(
		os.Getenv("OPENAI_BASE_URL"),
		os.Getenv("OPENAI_API_KEY"),
		os.Getenv("OPENAI_MODEL"),
	)

	smtpChannel := channels.NewSMTPChannel()

	store := alerts.NewStore(db.DB)
	dispatcher := alerts.NewDispatcher(
		store,
		smtpChannel,
		channels.NewWebhookPushChannel(),
		channels.NewWebhookSMSChannel(os.Getenv("SMS_GATEWAY_URL")),
	)
	dispatcher.OnDispatched = handlers.BroadcastAlertRefresh
	factory := alerts.NewFactory(store, dispatcher)

	fetcher := mail.NewIMAPFetcher(db.DB, aiClient)
	calendarService := calendar.NewService(db.DB, nil, aiClient)

	// Compose endpoints share the dispatch channels and the AI collaborator.
	handlers.Drafter = aiClient
	handlers.Mailer = smtpChannel
	handlers.Fetcher = fetcher

	sched := scheduler.NewScheduler()
	tasks := scheduler.NewTasks(db.DB, store, factory, dispatcher, fetcher, calendarService, aiClient)
	tasks.RegisterAll(sched)
	sched.Start()
	defer sched.Stop()

	r := router.NewRouter()

	var port string

	if port = os.Getenv("PORT"); port == "" {
		port = "3000"
		log.Println("PORT not set, defaulting to 3000")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- r.Run(":" + port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("Failed to start server: %v", err)
	case sig := <-quit:
		log.Printf("Received %s, shutting down", sig)
	}
}
