package handler

import (
	"strconv"

	"github.com/esilogis/intervention-service/internal/model"
	"github.com/esilogis/intervention-service/internal/service"
	"github.com/gin-gonic/gin"
)

// ReferenceHandler serves the master-data CRUD endpoints.
type ReferenceHandler struct {
	ref      *service.ReferenceService
	accounts *service.AccountService
}

func NewReferenceHandler(ref *service.ReferenceService, accounts *service.AccountService) *ReferenceHandler {
	return &ReferenceHandler{ref: ref, accounts: accounts}
}

func pathID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}

type locationRequest struct {
	Name     string `json:"name" binding:"required"`
	Building string `json:"building"`
	Floor    string `json:"floor"`
}

func (h *ReferenceHandler) CreateLocation(c *gin.Context) {
	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid body")
		return
	}
	loc := &model.Location{Name: req.Name, Building: req.Building, Floor: req.Floor}
	if err := h.ref.CreateLocation(c.Request.Context(), loc); err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "location created", loc)
}

func (h *ReferenceHandler) GetLocation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	loc, err := h.ref.GetLocation(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "location", loc)
}

func (h *ReferenceHandler) ListLocations(c *gin.Context) {
	items, err := h.ref.ListLocations(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "locations", items)
}

type locationPatch struct {
	Name     *string `json:"name,omitempty"`
	Building *string `json:"building,omitempty"`
	Floor    *string `json:"floor,omitempty"`
}

func (h *ReferenceHandler) UpdateLocation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req locationPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid body")
		return
	}
	changes := make(map[string]interface{})
	if req.Name != nil {
		changes["name"] = *req.Name
	}
	if req.Building != nil {
		changes["building"] = *req.Building
	}
	if req.Floor != nil {
		changes["floor"] = *req.Floor
	}
	if len(changes) == 0 {
		respondBadRequest(c, "no changes")
		return
	}
	loc, err := h.ref.UpdateLocation(c.Request.Context(), id, changes)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "location updated", loc)
}

func (h *ReferenceHandler) DeleteLocation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.ref.DeleteLocation(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "location deleted", nil)
}

type nameRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *ReferenceHandler) CreateDepartment(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid body")
		return
	}
	dep := &model.Department{Name: req.Name}
	if err := h.ref.CreateDepartment(c.Request.Context(), dep); err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "department created", dep)
}

func (h *ReferenceHandler) GetDepartment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	dep, err := h.ref.GetDepartment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "department", dep)
}

func (h *ReferenceHandler) ListDepartments(c *gin.Context) {
	items, err := h.ref.ListDepartments(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "departments", items)
}

func (h *ReferenceHandler) UpdateDepartment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid body")
		return
	}
	dep, err := h.ref.UpdateDepartment(c.Request.Context(), id, map[string]interface{}{"name": req.Name})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "department updated", dep)
}

func (h *ReferenceHandler) DeleteDepartment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.ref.DeleteDepartment(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "department deleted", nil)
}

func (h *ReferenceHandler) CreateEquipmentType(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid body")
		return
	}
	et := &model.EquipmentType{Name: req.Name}
	if err := h.ref.CreateEquipmentType(c.Request.Context(), et); err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "equipment type created", et)
}

func (h *ReferenceHandler) GetEquipmentType(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	et, err := h.ref.GetEquipmentType(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "equipment type", et)
}

func (h *ReferenceHandler) ListEquipmentTypes(c *gin.Context) {
	items, err := h.ref.ListEquipmentTypes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "equipment types", items)
}

func (h *ReferenceHandler) UpdateEquipmentType(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid body")
		return
	}
	et, err := h.ref.UpdateEquipmentType(c.Request.Context(), id, map[string]interface{}{"name": req.Name})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "equipment type updated", et)
}

func (h *ReferenceHandler) DeleteEquipmentType(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.ref.DeleteEquipmentType(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "equipment type deleted", nil)
}

type equipmentRequest struct {
	Name         string  `json:"name" binding:"required"`
	SerialNumber string  `json:"serial_number"`
	TypeID       *uint64 `json:"type_id"`
	LocationID   *uint64 `json:"location_id"`
}

func (h *ReferenceHandler) CreateEquipment(c *gin.Context) {
	var req equipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid body")
		return
	}
	eq := &model.Equipment{
		Name:         req.Name,
		SerialNumber: req.SerialNumber,
		TypeID:       req.TypeID,
		LocationID:   req.LocationID,
	}
	if err := h.ref.CreateEquipment(c.Request.Context(), eq); err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "equipment created", eq)
}

func (h *ReferenceHandler) GetEquipment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	eq, err := h.ref.GetEquipment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "equipment", eq)
}

func (h *ReferenceHandler) ListEquipment(c *gin.Context) {
	items, err := h.ref.ListEquipment(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "equipment", items)
}

type equipmentPatch struct {
	Name         *string `json:"name,omitempty"`
	SerialNumber *string `json:"serial_number,omitempty"`
	TypeID       *uint64 `json:"type_id,omitempty"`
	LocationID   *uint64 `json:"location_id,omitempty"`
}

func (h *ReferenceHandler) UpdateEquipment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req equipmentPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid body")
		return
	}
	changes := make(map[string]interface{})
	if req.Name != nil {
		changes["name"] = *req.Name
	}
	if req.SerialNumber != nil {
		changes["serial_number"] = *req.SerialNumber
	}
	if req.TypeID != nil {
		changes["type_id"] = *req.TypeID
	}
	if req.LocationID != nil {
		changes["location_id"] = *req.LocationID
	}
	if len(changes) == 0 {
		respondBadRequest(c, "no changes")
		return
	}
	eq, err := h.ref.UpdateEquipment(c.Request.Context(), id, changes)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "equipment updated", eq)
}

func (h *ReferenceHandler) DeleteEquipment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.ref.DeleteEquipment(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "equipment deleted", nil)
}

type technicianRequest struct {
	FirstName    string  `json:"first_name" binding:"required"`
	LastName     string  `json:"last_name" binding:"required"`
	Email        string  `json:"email" binding:"required"`
	Phone        string  `json:"phone"`
	Password     string  `json:"password" binding:"required"`
	DepartmentID *uint64 `json:"department_id"`
}

func (h *ReferenceHandler) CreateTechnician(c *gin.Context) {
	var req technicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid body")
		return
	}
	person, err := h.accounts.CreateTechnician(c.Request.Context(), service.CreateTechnicianInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		Password:     req.Password,
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "technician created", person)
}

func (h *ReferenceHandler) GetTechnician(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	person, err := h.accounts.GetTechnician(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "technician", person)
}

func (h *ReferenceHandler) ListTechnicians(c *gin.Context) {
	items, err := h.accounts.ListTechnicians(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "technicians", items)
}
