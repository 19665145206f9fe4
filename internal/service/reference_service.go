package service

import (
	"context"
	"errors"

	"github.com/esilogis/intervention-service/internal/errs"
	"github.com/esilogis/intervention-service/internal/model"
	"gorm.io/gorm"
)

// ReferenceService owns the master data interventions point at: locations,
// departments, equipment types and equipment.
type ReferenceService struct {
	db *gorm.DB
}

func NewReferenceService(db *gorm.DB) *ReferenceService {
	return &ReferenceService{db: db}
}

func (s *ReferenceService) CreateLocation(ctx context.Context, loc *model.Location) error {
	if loc.Name == "" {
		return errs.Validationf("name is required")
	}
	return s.db.WithContext(ctx).Create(loc).Error
}

func (s *ReferenceService) GetLocation(ctx context.Context, id uint64) (*model.Location, error) {
	var loc model.Location
	if err := s.db.WithContext(ctx).First(&loc, id).Error; err != nil {
		return nil, mapNotFound(err, errs.ErrLocationNotFound)
	}
	return &loc, nil
}

func (s *ReferenceService) ListLocations(ctx context.Context) ([]model.Location, error) {
	var items []model.Location
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *ReferenceService) UpdateLocation(ctx context.Context, id uint64, changes map[string]interface{}) (*model.Location, error) {
	loc, err := s.GetLocation(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(loc).Updates(changes).Error; err != nil {
		return nil, err
	}
	return loc, nil
}

func (s *ReferenceService) DeleteLocation(ctx context.Context, id uint64) error {
	res := s.db.WithContext(ctx).Delete(&model.Location{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrLocationNotFound
	}
	return nil
}

func (s *ReferenceService) CreateDepartment(ctx context.Context, dep *model.Department) error {
	if dep.Name == "" {
		return errs.Validationf("name is required")
	}
	return s.db.WithContext(ctx).Create(dep).Error
}

func (s *ReferenceService) GetDepartment(ctx context.Context, id uint64) (*model.Department, error) {
	var dep model.Department
	if err := s.db.WithContext(ctx).First(&dep, id).Error; err != nil {
		return nil, mapNotFound(err, errs.ErrDepartmentNotFound)
	}
	return &dep, nil
}

func (s *ReferenceService) ListDepartments(ctx context.Context) ([]model.Department, error) {
	var items []model.Department
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *ReferenceService) UpdateDepartment(ctx context.Context, id uint64, changes map[string]interface{}) (*model.Department, error) {
	dep, err := s.GetDepartment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(dep).Updates(changes).Error; err != nil {
		return nil, err
	}
	return dep, nil
}

func (s *ReferenceService) DeleteDepartment(ctx context.Context, id uint64) error {
	res := s.db.WithContext(ctx).Delete(&model.Department{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrDepartmentNotFound
	}
	return nil
}

func (s *ReferenceService) CreateEquipmentType(ctx context.Context, et *model.EquipmentType) error {
	if et.Name == "" {
		return errs.Validationf("name is required")
	}
	return s.db.WithContext(ctx).Create(et).Error
}

func (s *ReferenceService) GetEquipmentType(ctx context.Context, id uint64) (*model.EquipmentType, error) {
	var et model.EquipmentType
	if err := s.db.WithContext(ctx).First(&et, id).Error; err != nil {
		return nil, mapNotFound(err, errs.ErrEquipmentTypeNotFound)
	}
	return &et, nil
}

func (s *ReferenceService) ListEquipmentTypes(ctx context.Context) ([]model.EquipmentType, error) {
	var items []model.EquipmentType
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *ReferenceService) UpdateEquipmentType(ctx context.Context, id uint64, changes map[string]interface{}) (*model.EquipmentType, error) {
	et, err := s.GetEquipmentType(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(et).Updates(changes).Error; err != nil {
		return nil, err
	}
	return et, nil
}

func (s *ReferenceService) DeleteEquipmentType(ctx context.Context, id uint64) error {
	res := s.db.WithContext(ctx).Delete(&model.EquipmentType{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrEquipmentTypeNotFound
	}
	return nil
}

func (s *ReferenceService) CreateEquipment(ctx context.Context, eq *model.Equipment) error {
	if eq.Name == "" {
		return errs.Validationf("name is required")
	}
	if eq.TypeID != nil {
		if _, err := s.GetEquipmentType(ctx, *eq.TypeID); err != nil {
			return err
		}
	}
	if eq.LocationID != nil {
		if _, err := s.GetLocation(ctx, *eq.LocationID); err != nil {
			return err
		}
	}
	return s.db.WithContext(ctx).Create(eq).Error
}

func (s *ReferenceService) GetEquipment(ctx context.Context, id uint64) (*model.Equipment, error) {
	var eq model.Equipment
	if err := s.db.WithContext(ctx).Preload("Type").Preload("Location").First(&eq, id).Error; err != nil {
		return nil, mapNotFound(err, errs.ErrEquipmentNotFound)
	}
	return &eq, nil
}

func (s *ReferenceService) ListEquipment(ctx context.Context) ([]model.Equipment, error) {
	var items []model.Equipment
	if err := s.db.WithContext(ctx).Preload("Type").Preload("Location").Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *ReferenceService) UpdateEquipment(ctx context.Context, id uint64, changes map[string]interface{}) (*model.Equipment, error) {
	eq, err := s.GetEquipment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(eq).Updates(changes).Error; err != nil {
		return nil, err
	}
	return s.GetEquipment(ctx, id)
}

func (s *ReferenceService) DeleteEquipment(ctx context.Context, id uint64) error {
	res := s.db.WithContext(ctx).Delete(&model.Equipment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrEquipmentNotFound
	}
	return nil
}

func mapNotFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
