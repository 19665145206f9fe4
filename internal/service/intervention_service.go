package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/esilogis/intervention-service/internal/errs"
	"github.com/esilogis/intervention-service/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InterventionServicer is the workflow contract the HTTP layer depends on.
type InterventionServicer interface {
	Create(ctx context.Context, in CreateInterventionInput) (*model.Intervention, error)
	Planify(ctx context.Context, in CreateInterventionInput) (*model.Intervention, error)
	AssignTechnicians(ctx context.Context, id uint64, personIDs []uint64, actorAccountID *uint64) (*model.Intervention, error)
	ChangeStatus(ctx context.Context, id uint64, newStatus model.InterventionStatus, actorAccountID *uint64, notes string) (*model.Intervention, error)
	Update(ctx context.Context, id uint64, patch InterventionPatch, actorAccountID *uint64) (*model.Intervention, error)
	GetByID(ctx context.Context, id uint64) (*model.Intervention, error)
	List(ctx context.Context, filter InterventionFilter, limit, offset int) ([]model.Intervention, int64, error)
}

type InterventionService struct {
	db *gorm.DB
}

func NewInterventionService(db *gorm.DB) *InterventionService {
	return &InterventionService{db: db}
}

type CreateInterventionInput struct {
	Description        string
	LocationID         uint64
	Priority           model.Priority
	Type               model.InterventionType
	EquipmentID        *uint64
	ReportedByID       *uint64
	AssigneeIDs        []uint64
	PlannedAt          *time.Time
	IsRecurring        bool
	RecurrenceInterval int
}

type InterventionPatch struct {
	Description *string
	Priority    *model.Priority
	LocationID  *uint64
	EquipmentID *uint64
	Status      *model.InterventionStatus
	PlannedAt   *time.Time
}

type InterventionFilter struct {
	Status     model.InterventionStatus
	Type       model.InterventionType
	Priority   model.Priority
	LocationID uint64
	AssigneeID uint64
}

func (in *CreateInterventionInput) validate() error {
	if in.Description == "" {
		return errs.Validationf("description is required")
	}
	if in.LocationID == 0 {
		return errs.Validationf("location_id is required")
	}
	if in.Priority == "" {
		in.Priority = model.PriorityLow
	}
	if !model.IsValidPriority(in.Priority) {
		return errs.Validationf("invalid priority %q", in.Priority)
	}
	if in.Type == "" {
		in.Type = model.TypeReportedIssue
	}
	if in.Type != model.TypeReportedIssue && in.Type != model.TypePreventive {
		return errs.Validationf("invalid type %q", in.Type)
	}
	if in.IsRecurring {
		if in.Type != model.TypePreventive {
			return errs.Validationf("only preventive interventions can recur")
		}
		if in.RecurrenceInterval <= 0 {
			return errs.Validationf("recurrence_interval must be positive for recurring interventions")
		}
		if in.PlannedAt == nil {
			return errs.Validationf("planned_at is required for recurring interventions")
		}
	}
	return nil
}

// Create validates the input and writes the intervention, its CREATED history
// row and any initial assignments in one transaction.
func (s *InterventionService) Create(ctx context.Context, in CreateInterventionInput) (*model.Intervention, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkLocation(ctx, in.LocationID); err != nil {
		return nil, err
	}
	if in.EquipmentID != nil {
		if err := s.checkEquipment(ctx, *in.EquipmentID); err != nil {
			return nil, err
		}
	}
	in.AssigneeIDs = dedupeIDs(in.AssigneeIDs)
	if err := s.checkPersons(ctx, in.AssigneeIDs); err != nil {
		return nil, err
	}

	iv := &model.Intervention{
		Description:        in.Description,
		Status:             model.StatusPending,
		Priority:           in.Priority,
		Type:               in.Type,
		LocationID:         in.LocationID,
		EquipmentID:        in.EquipmentID,
		ReportedByID:       in.ReportedByID,
		PlannedAt:          in.PlannedAt,
		IsRecurring:        in.IsRecurring,
		RecurrenceInterval: in.RecurrenceInterval,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(iv).Error; err != nil {
			return err
		}
		if err := appendHistory(tx, iv.ID, model.ActionCreated, "", nil, in.ReportedByID); err != nil {
			return err
		}
		for _, personID := range in.AssigneeIDs {
			if err := tx.Create(&model.InterventionAssignee{InterventionID: iv.ID, PersonID: personID}).Error; err != nil {
				return err
			}
			pid := personID
			if err := appendHistory(tx, iv.ID, model.ActionAssigned, "", &pid, in.ReportedByID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, iv.ID)
}

// Planify creates a preventive intervention with planning fields. A planned
// date is required; recurring requests additionally need a positive interval.
func (s *InterventionService) Planify(ctx context.Context, in CreateInterventionInput) (*model.Intervention, error) {
	in.Type = model.TypePreventive
	if in.PlannedAt == nil {
		return nil, errs.Validationf("planned_at is required for preventive interventions")
	}
	iv, err := s.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := appendHistory(s.db.WithContext(ctx), iv.ID, model.ActionPlanned,
		fmt.Sprintf("planned for %s", in.PlannedAt.Format(time.RFC3339)), nil, in.ReportedByID); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, iv.ID)
}

// AssignTechnicians links the given persons to the intervention. Idempotent:
// persons already assigned are skipped and produce no history row.
func (s *InterventionService) AssignTechnicians(ctx context.Context, id uint64, personIDs []uint64, actorAccountID *uint64) (*model.Intervention, error) {
	personIDs = dedupeIDs(personIDs)
	if len(personIDs) == 0 {
		return nil, errs.Validationf("person_ids must not be empty")
	}
	if _, err := s.getBare(ctx, id); err != nil {
		return nil, err
	}
	if err := s.checkPersons(ctx, personIDs); err != nil {
		return nil, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []model.InterventionAssignee
		if err := tx.Where("intervention_id = ?", id).Find(&existing).Error; err != nil {
			return err
		}
		assigned := make(map[uint64]bool, len(existing))
		for _, a := range existing {
			assigned[a.PersonID] = true
		}
		for _, personID := range personIDs {
			if assigned[personID] {
				continue
			}
			assigned[personID] = true
			if err := tx.Create(&model.InterventionAssignee{InterventionID: id, PersonID: personID}).Error; err != nil {
				return err
			}
			pid := personID
			if err := appendHistory(tx, id, model.ActionAssigned, "", &pid, actorAccountID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// ChangeStatus moves the intervention through the workflow graph, stamps the
// lifecycle timestamp for the target status and appends a STATUS_CHANGED
// history row. Completing a recurring preventive intervention creates its
// successor in the same transaction.
func (s *InterventionService) ChangeStatus(ctx context.Context, id uint64, newStatus model.InterventionStatus, actorAccountID *uint64, notes string) (*model.Intervention, error) {
	if !model.IsValidStatus(newStatus) {
		return nil, errs.Validationf("invalid status %q", newStatus)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var iv model.Intervention
		if err := lockForUpdate(tx).First(&iv, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrInterventionNotFound
			}
			return err
		}
		if !model.CanTransition(iv.Status, newStatus) {
			return &errs.TransitionError{From: string(iv.Status), To: string(newStatus)}
		}
		now := time.Now()
		changes := map[string]interface{}{"status": newStatus}
		switch newStatus {
		case model.StatusInProgress:
			if iv.StartedAt == nil {
				changes["started_at"] = now
			}
		case model.StatusApproved:
			changes["approved_at"] = now
		case model.StatusCompleted:
			changes["resolved_at"] = now
		case model.StatusCancelled:
			changes["cancelled_at"] = now
		case model.StatusDenied:
			changes["denied_at"] = now
		}
		if err := tx.Model(&iv).Updates(changes).Error; err != nil {
			return err
		}
		historyNotes := string(newStatus)
		if notes != "" {
			historyNotes += ": " + notes
		}
		if err := appendHistory(tx, id, model.ActionStatusChanged, historyNotes, nil, actorAccountID); err != nil {
			return err
		}
		if newStatus == model.StatusCompleted && iv.Type == model.TypePreventive && iv.IsRecurring {
			return createSuccessor(tx, &iv, now, actorAccountID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// createSuccessor materializes the next occurrence of a recurring preventive
// intervention. The unique previous_intervention_id index makes this idempotent
// against the scheduler backstop.
func createSuccessor(tx *gorm.DB, prev *model.Intervention, now time.Time, actorAccountID *uint64) error {
	base := now
	if prev.PlannedAt != nil {
		base = *prev.PlannedAt
	}
	nextPlanned := base.AddDate(0, 0, prev.RecurrenceInterval)
	prevID := prev.ID
	next := &model.Intervention{
		Description:        prev.Description,
		Status:             model.StatusPending,
		Priority:           prev.Priority,
		Type:               model.TypePreventive,
		LocationID:         prev.LocationID,
		EquipmentID:        prev.EquipmentID,
		ReportedByID:       prev.ReportedByID,
		PlannedAt:          &nextPlanned,
		IsRecurring:        true,
		RecurrenceInterval: prev.RecurrenceInterval,
		PreviousID:         &prevID,
	}
	if err := tx.Create(next).Error; err != nil {
		return err
	}
	if err := appendHistory(tx, next.ID, model.ActionCreated,
		fmt.Sprintf("recurrence of intervention %d", prev.ID), nil, actorAccountID); err != nil {
		return err
	}
	return appendHistory(tx, next.ID, model.ActionPlanned,
		fmt.Sprintf("planned for %s", nextPlanned.Format(time.RFC3339)), nil, actorAccountID)
}

// Update applies a partial update. Only fields present in the patch are
// written; a status change is routed through the workflow graph, not written
// as a raw column.
func (s *InterventionService) Update(ctx context.Context, id uint64, patch InterventionPatch, actorAccountID *uint64) (*model.Intervention, error) {
	if _, err := s.getBare(ctx, id); err != nil {
		return nil, err
	}
	changes := make(map[string]interface{})
	if patch.Description != nil {
		if *patch.Description == "" {
			return nil, errs.Validationf("description must not be empty")
		}
		changes["description"] = *patch.Description
	}
	if patch.Priority != nil {
		if !model.IsValidPriority(*patch.Priority) {
			return nil, errs.Validationf("invalid priority %q", *patch.Priority)
		}
		changes["priority"] = *patch.Priority
	}
	if patch.LocationID != nil {
		if err := s.checkLocation(ctx, *patch.LocationID); err != nil {
			return nil, err
		}
		changes["location_id"] = *patch.LocationID
	}
	if patch.EquipmentID != nil {
		if err := s.checkEquipment(ctx, *patch.EquipmentID); err != nil {
			return nil, err
		}
		changes["equipment_id"] = *patch.EquipmentID
	}
	if patch.PlannedAt != nil {
		changes["planned_at"] = *patch.PlannedAt
	}
	if len(changes) == 0 && patch.Status == nil {
		return nil, errs.Validationf("no changes provided")
	}
	if len(changes) > 0 {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&model.Intervention{ID: id}).Updates(changes).Error; err != nil {
				return err
			}
			return appendHistory(tx, id, model.ActionUpdated, "", nil, actorAccountID)
		})
		if err != nil {
			return nil, err
		}
	}
	if patch.Status != nil {
		return s.ChangeStatus(ctx, id, *patch.Status, actorAccountID, "")
	}
	return s.GetByID(ctx, id)
}

// GetByID loads the intervention with location, equipment, assignees and its
// history ordered by logged_at.
func (s *InterventionService) GetByID(ctx context.Context, id uint64) (*model.Intervention, error) {
	var iv model.Intervention
	err := s.db.WithContext(ctx).
		Preload("Location").
		Preload("Equipment").
		Preload("Assignees").
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("logged_at ASC, id ASC")
		}).
		First(&iv, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrInterventionNotFound
		}
		return nil, err
	}
	return &iv, nil
}

// List returns interventions matching the filter, newest first, with the total
// count before pagination.
func (s *InterventionService) List(ctx context.Context, filter InterventionFilter, limit, offset int) ([]model.Intervention, int64, error) {
	var items []model.Intervention
	var total int64
	tx := s.db.WithContext(ctx).Model(&model.Intervention{})
	if filter.Status != "" {
		tx = tx.Where("interventions.status = ?", filter.Status)
	}
	if filter.Type != "" {
		tx = tx.Where("interventions.type = ?", filter.Type)
	}
	if filter.Priority != "" {
		tx = tx.Where("interventions.priority = ?", filter.Priority)
	}
	if filter.LocationID != 0 {
		tx = tx.Where("interventions.location_id = ?", filter.LocationID)
	}
	if filter.AssigneeID != 0 {
		tx = tx.Joins("JOIN intervention_assignees ia ON ia.intervention_id = interventions.id").
			Where("ia.person_id = ?", filter.AssigneeID)
	}
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if offset > 0 {
		tx = tx.Offset(offset)
	}
	if err := tx.Preload("Location").Order("interventions.created_at DESC, interventions.id DESC").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *InterventionService) getBare(ctx context.Context, id uint64) (*model.Intervention, error) {
	var iv model.Intervention
	if err := s.db.WithContext(ctx).First(&iv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrInterventionNotFound
		}
		return nil, err
	}
	return &iv, nil
}

func (s *InterventionService) checkLocation(ctx context.Context, id uint64) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Location{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errs.ErrLocationNotFound
	}
	return nil
}

func (s *InterventionService) checkEquipment(ctx context.Context, id uint64) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Equipment{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errs.ErrEquipmentNotFound
	}
	return nil
}

func (s *InterventionService) checkPersons(ctx context.Context, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Person{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(ids)) {
		return errs.ErrPersonNotFound
	}
	return nil
}

func dedupeIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func appendHistory(tx *gorm.DB, interventionID uint64, action model.HistoryAction, notes string, personID, accountID *uint64) error {
	return tx.Create(&model.InterventionHistory{
		InterventionID: interventionID,
		Action:         action,
		Notes:          notes,
		PersonID:       personID,
		AccountID:      accountID,
		LoggedAt:       time.Now(),
	}).Error
}

// lockForUpdate adds SELECT ... FOR UPDATE on dialects that support it. The
// sqlite test database is single-writer and has no row locks.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
