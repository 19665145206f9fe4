package service

import (
	"context"
	"time"

	"github.com/esilogis/intervention-service/internal/model"
	"gorm.io/gorm"
)

// DueForReminder returns preventive interventions planned within the horizon
// that have not been reminded yet.
func (s *InterventionService) DueForReminder(ctx context.Context, horizon time.Duration) ([]model.Intervention, error) {
	var items []model.Intervention
	cutoff := time.Now().Add(horizon)
	err := s.db.WithContext(ctx).
		Preload("Assignees").
		Where("type = ?", model.TypePreventive).
		Where("status IN ?", []model.InterventionStatus{model.StatusPending, model.StatusApproved}).
		Where("planned_at IS NOT NULL AND planned_at <= ?", cutoff).
		Where("reminded_at IS NULL").
		Order("planned_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// MarkReminded stamps reminded_at so the sweep does not re-send.
func (s *InterventionService) MarkReminded(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).Model(&model.Intervention{ID: id}).
		Update("reminded_at", time.Now()).Error
}

// BackstopRecurrence creates successors for completed recurring preventive
// interventions that are missing one (e.g. the in-transaction creation was
// added after their completion). Returns the number created.
func (s *InterventionService) BackstopRecurrence(ctx context.Context) (int, error) {
	var orphans []model.Intervention
	err := s.db.WithContext(ctx).
		Where("type = ? AND status = ? AND is_recurring = ?", model.TypePreventive, model.StatusCompleted, true).
		Where("id NOT IN (SELECT previous_intervention_id FROM interventions WHERE previous_intervention_id IS NOT NULL)").
		Find(&orphans).Error
	if err != nil {
		return 0, err
	}
	created := 0
	for i := range orphans {
		prev := &orphans[i]
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return createSuccessor(tx, prev, time.Now(), nil)
		})
		if err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
