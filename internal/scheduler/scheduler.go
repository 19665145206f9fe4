package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/esilogis/intervention-service/internal/events"
	"github.com/esilogis/intervention-service/internal/notify"
	"github.com/esilogis/intervention-service/internal/service"
)

// Scheduler periodically reminds assignees of upcoming preventive
// interventions and backstops recurrence materialization.
type Scheduler struct {
	svc      *service.InterventionService
	notifier *notify.Client
	producer events.InterventionEventProducer
	interval time.Duration
	horizon  time.Duration
}

func New(svc *service.InterventionService, notifier *notify.Client, producer events.InterventionEventProducer, interval time.Duration, horizonDays int) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		svc:      svc,
		notifier: notifier,
		producer: producer,
		interval: interval,
		horizon:  time.Duration(horizonDays) * 24 * time.Hour,
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	log.Printf("scheduler: sweeping every %s (horizon %s)", s.interval, s.horizon)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.SweepOnce(ctx); err != nil {
				log.Printf("scheduler: sweep: %v", err)
			}
		}
	}
}

// SweepOnce sends due reminders and materializes missing recurrence successors.
func (s *Scheduler) SweepOnce(ctx context.Context) error {
	due, err := s.svc.DueForReminder(ctx, s.horizon)
	if err != nil {
		return err
	}
	for i := range due {
		iv := &due[i]
		if s.producer != nil {
			s.producer.ProduceInterventionEvent(ctx, "intervention.reminder", events.InterventionPayload(iv))
		}
		if s.notifier != nil {
			s.notifier.NotifyIntervention(ctx, "intervention.reminder", iv)
		}
		if err := s.svc.MarkReminded(ctx, iv.ID); err != nil {
			return err
		}
	}
	if len(due) > 0 {
		log.Printf("scheduler: sent %d reminders", len(due))
	}
	created, err := s.svc.BackstopRecurrence(ctx)
	if err != nil {
		return err
	}
	if created > 0 {
		log.Printf("scheduler: materialized %d recurrence successors", created)
	}
	return nil
}
