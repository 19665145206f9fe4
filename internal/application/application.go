package application

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/esilogis/intervention-service/internal/auth"
	"github.com/esilogis/intervention-service/internal/config"
	"github.com/esilogis/intervention-service/internal/database"
	"github.com/esilogis/intervention-service/internal/events"
	"github.com/esilogis/intervention-service/internal/handler"
	"github.com/esilogis/intervention-service/internal/notify"
	"github.com/esilogis/intervention-service/internal/router"
	"github.com/esilogis/intervention-service/internal/scheduler"
	"github.com/esilogis/intervention-service/internal/service"
)

// API is the api-mode application: HTTP server plus the reminder scheduler.
type API struct {
	cfg      *config.Config
	httpSrv  *http.Server
	sched    *scheduler.Scheduler
	producer *events.Producer
}

// NewAPI migrates the database and wires the services, handlers and router.
func NewAPI(cfg *config.Config) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := database.MigrateUp(cfg.DatabaseURL()); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	authSvc := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)
	interventionSvc := service.NewInterventionService(db)
	referenceSvc := service.NewReferenceService(db)
	accountSvc := service.NewAccountService(db, authSvc)

	producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicIntervention)
	notifier := notify.NewClient(cfg.NotifyServiceURL)

	mux := router.New(router.Deps{
		Auth:          authSvc,
		AuthHandler:   handler.NewAuthHandler(accountSvc),
		Interventions: handler.NewInterventionHandler(interventionSvc, notifier, producer),
		Reference:     handler.NewReferenceHandler(referenceSvc, accountSvc),
	})

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	sched := scheduler.New(interventionSvc, notifier, producer, cfg.ReminderInterval, cfg.ReminderHorizonDays)

	return &API{
		cfg:      cfg,
		httpSrv:  httpSrv,
		sched:    sched,
		producer: producer,
	}, nil
}

// Run starts the HTTP server and the scheduler, blocking until ctx is cancelled.
func (a *API) Run(ctx context.Context) error {
	host := a.cfg.AppHost
	if host == "0.0.0.0" {
		host = "localhost"
	}
	base := "http://" + host + ":" + a.cfg.HTTPPort
	log.Printf("HTTP server listening on %s", a.httpSrv.Addr)
	log.Printf("  Swagger UI:    %s/swagger", base)
	log.Printf("  Swagger spec:  %s/swagger/openapi.json", base)
	log.Printf("  Health:        %s/health", base)
	log.Printf("  Ready:         %s/ready", base)
	log.Printf("  API:           %s/api/", base)

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http: %v", err)
		}
	}()

	go a.sched.Run(ctx)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if err := a.producer.Close(); err != nil {
		log.Printf("events: close producer: %v", err)
	}
	return nil
}
