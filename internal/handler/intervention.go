package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/esilogis/intervention-service/internal/events"
	"github.com/esilogis/intervention-service/internal/middleware"
	"github.com/esilogis/intervention-service/internal/model"
	"github.com/esilogis/intervention-service/internal/notify"
	"github.com/esilogis/intervention-service/internal/service"
	"github.com/gin-gonic/gin"
)

type InterventionHandler struct {
	svc      service.InterventionServicer
	notifier *notify.Client
	producer events.InterventionEventProducer
}

func NewInterventionHandler(svc service.InterventionServicer, notifier *notify.Client, producer events.InterventionEventProducer) *InterventionHandler {
	return &InterventionHandler{svc: svc, notifier: notifier, producer: producer}
}

// emit publishes the lifecycle event and notification fire-and-forget, with a
// detached timeout so delivery survives request cancellation.
func (h *InterventionHandler) emit(event string, iv *model.Intervention) {
	if iv == nil {
		return
	}
	if h.producer != nil {
		payload := events.InterventionPayload(iv)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			h.producer.ProduceInterventionEvent(ctx, event, payload)
		}()
	}
	if h.notifier != nil {
		h.notifier.NotifyInterventionAsync(event, iv)
	}
}

func actorID(c *gin.Context) *uint64 {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return nil
	}
	id := claims.AccountID
	return &id
}

type createInterventionRequest struct {
	Description        string     `json:"description" binding:"required"`
	LocationID         uint64     `json:"location_id" binding:"required"`
	Priority           string     `json:"priority"`
	Type               string     `json:"type"`
	EquipmentID        *uint64    `json:"equipment_id"`
	AssigneeIDs        []uint64   `json:"assignee_ids"`
	PlannedAt          *time.Time `json:"planned_at"`
	IsRecurring        bool       `json:"is_recurring"`
	RecurrenceInterval int        `json:"recurrence_interval"`
}

func (r *createInterventionRequest) toInput(reportedBy *uint64) service.CreateInterventionInput {
	return service.CreateInterventionInput{
		Description:        r.Description,
		LocationID:         r.LocationID,
		Priority:           model.Priority(r.Priority),
		Type:               model.InterventionType(r.Type),
		EquipmentID:        r.EquipmentID,
		ReportedByID:       reportedBy,
		AssigneeIDs:        r.AssigneeIDs,
		PlannedAt:          r.PlannedAt,
		IsRecurring:        r.IsRecurring,
		RecurrenceInterval: r.RecurrenceInterval,
	}
}

func (h *InterventionHandler) Create(c *gin.Context) {
	var req createInterventionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid body")
		return
	}
	iv, err := h.svc.Create(c.Request.Context(), req.toInput(actorID(c)))
	if err != nil {
		respondError(c, err)
		return
	}
	h.emit("intervention.created", iv)
	respondCreated(c, "intervention created", iv)
}

func (h *InterventionHandler) Planify(c *gin.Context) {
	var req createInterventionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid body")
		return
	}
	iv, err := h.svc.Planify(c.Request.Context(), req.toInput(actorID(c)))
	if err != nil {
		respondError(c, err)
		return
	}
	h.emit("intervention.created", iv)
	respondCreated(c, "preventive intervention planned", iv)
}

func (h *InterventionHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid id")
		return
	}
	iv, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "intervention", iv)
}

func (h *InterventionHandler) List(c *gin.Context) {
	var filter service.InterventionFilter
	filter.Status = model.InterventionStatus(c.Query("status"))
	filter.Type = model.InterventionType(c.Query("type"))
	filter.Priority = model.Priority(c.Query("priority"))
	if v := c.Query("location_id"); v != "" {
		if parsed, err := strconv.ParseUint(v, 10, 64); err == nil {
			filter.LocationID = parsed
		}
	}
	if v := c.Query("assignee_id"); v != "" {
		if parsed, err := strconv.ParseUint(v, 10, 64); err == nil {
			filter.AssigneeID = parsed
		}
	}
	limit := 0
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	items, total, err := h.svc.List(c.Request.Context(), filter, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "interventions", gin.H{"interventions": items, "total": total})
}

type updateInterventionRequest struct {
	Description *string    `json:"description,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	LocationID  *uint64    `json:"location_id,omitempty"`
	EquipmentID *uint64    `json:"equipment_id,omitempty"`
	Status      *string    `json:"status,omitempty"`
	PlannedAt   *time.Time `json:"planned_at,omitempty"`
}

func (h *InterventionHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid id")
		return
	}
	var req updateInterventionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid body")
		return
	}
	patch := service.InterventionPatch{
		Description: req.Description,
		LocationID:  req.LocationID,
		EquipmentID: req.EquipmentID,
		PlannedAt:   req.PlannedAt,
	}
	if req.Priority != nil {
		p := model.Priority(*req.Priority)
		patch.Priority = &p
	}
	if req.Status != nil {
		st := model.InterventionStatus(*req.Status)
		patch.Status = &st
	}
	iv, err := h.svc.Update(c.Request.Context(), id, patch, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	h.emit("intervention.updated", iv)
	respondOK(c, "intervention updated", iv)
}

type assignRequest struct {
	PersonIDs []uint64 `json:"person_ids" binding:"required"`
}

func (h *InterventionHandler) Assign(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid id")
		return
	}
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid body")
		return
	}
	iv, err := h.svc.AssignTechnicians(c.Request.Context(), id, req.PersonIDs, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	h.emit("intervention.assigned", iv)
	respondOK(c, "technicians assigned", iv)
}

type changeStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

func (h *InterventionHandler) ChangeStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid id")
		return
	}
	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid body")
		return
	}
	iv, err := h.svc.ChangeStatus(c.Request.Context(), id, model.InterventionStatus(req.Status), actorID(c), req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	h.emit("intervention.status_changed", iv)
	respondOK(c, "status changed", iv)
}
