package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/esilogis/intervention-service/internal/database"
	"github.com/esilogis/intervention-service/internal/events"
	"github.com/esilogis/intervention-service/internal/notify"
	"github.com/esilogis/intervention-service/internal/service"
	"github.com/spf13/cobra"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "One-shot reminder sweep for due preventive interventions. Prefers Kafka; falls back to HTTP if NOTIFY_SERVICE_URL set.",
	RunE:  runRemind,
}

func init() {
	rootCmd.AddCommand(remindCmd)
}

func runRemind(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := database.Open(cfg.DSN())
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	svc := service.NewInterventionService(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	horizon := time.Duration(cfg.ReminderHorizonDays) * 24 * time.Hour
	due, err := svc.DueForReminder(ctx, horizon)
	if err != nil {
		return fmt.Errorf("list due interventions: %w", err)
	}
	log.Printf("remind: found %d due preventive interventions", len(due))

	// Prefer Kafka, then HTTP
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopicIntervention != "" {
		log.Println("remind: using Kafka for reminders")
		producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicIntervention)
		defer producer.Close()
		for i := range due {
			iv := &due[i]
			producer.ProduceInterventionEvent(ctx, "intervention.reminder", events.InterventionPayload(iv))
			if err := svc.MarkReminded(ctx, iv.ID); err != nil {
				return fmt.Errorf("mark reminded %d: %w", iv.ID, err)
			}
			if (i+1)%50 == 0 || i == len(due)-1 {
				log.Printf("remind: sent %d/%d events to Kafka", i+1, len(due))
			}
		}
		log.Printf("remind: done, sent %d events to Kafka", len(due))
		return nil
	}
	if cfg.NotifyServiceURL != "" {
		log.Println("remind: using HTTP for reminders")
		client := notify.NewClient(cfg.NotifyServiceURL)
		for i := range due {
			iv := &due[i]
			client.NotifyIntervention(ctx, "intervention.reminder", iv)
			if err := svc.MarkReminded(ctx, iv.ID); err != nil {
				return fmt.Errorf("mark reminded %d: %w", iv.ID, err)
			}
			if (i+1)%50 == 0 || i == len(due)-1 {
				log.Printf("remind: notified %d/%d", i+1, len(due))
			}
		}
		log.Printf("remind: done, notified %d interventions via HTTP", len(due))
		return nil
	}
	log.Println("remind: neither KAFKA_BROKERS nor NOTIFY_SERVICE_URL set")
	log.Printf("remind: found %d due interventions (no reminders sent)", len(due))
	return nil
}
