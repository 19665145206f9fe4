package service

import (
	"context"
	"errors"

	"github.com/esilogis/intervention-service/internal/auth"
	"github.com/esilogis/intervention-service/internal/errs"
	"github.com/esilogis/intervention-service/internal/model"
	"gorm.io/gorm"
)

// AccountService owns user accounts, login and technician onboarding.
type AccountService struct {
	db   *gorm.DB
	auth *auth.Service
}

func NewAccountService(db *gorm.DB, authSvc *auth.Service) *AccountService {
	return &AccountService{db: db, auth: authSvc}
}

// Login verifies credentials and returns the account plus a signed token.
func (s *AccountService) Login(ctx context.Context, email, password string) (*model.UserAccount, string, error) {
	if email == "" || password == "" {
		return nil, "", errs.Validationf("email and password are required")
	}
	var account model.UserAccount
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", auth.ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !s.auth.CheckPassword(password, account.PasswordHash) {
		return nil, "", auth.ErrInvalidCredentials
	}
	token, err := s.auth.GenerateToken(&account)
	if err != nil {
		return nil, "", err
	}
	return &account, token, nil
}

func (s *AccountService) GetByID(ctx context.Context, id uint64) (*model.UserAccount, error) {
	var account model.UserAccount
	if err := s.db.WithContext(ctx).Preload("Person").First(&account, id).Error; err != nil {
		return nil, mapNotFound(err, errs.ErrAccountNotFound)
	}
	return &account, nil
}

type CreateTechnicianInput struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Password     string
	DepartmentID *uint64
}

// CreateTechnician creates the person, the account and their link in one
// transaction, so a partial failure leaves nothing behind.
func (s *AccountService) CreateTechnician(ctx context.Context, in CreateTechnicianInput) (*model.Person, error) {
	if in.FirstName == "" || in.LastName == "" {
		return nil, errs.Validationf("first_name and last_name are required")
	}
	if in.Email == "" {
		return nil, errs.Validationf("email is required")
	}
	if len(in.Password) < 8 {
		return nil, errs.Validationf("password must be at least 8 characters")
	}
	if in.DepartmentID != nil {
		var count int64
		if err := s.db.WithContext(ctx).Model(&model.Department{}).Where("id = ?", *in.DepartmentID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, errs.ErrDepartmentNotFound
		}
	}
	hash, err := s.auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	person := &model.Person{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Phone:        in.Phone,
		DepartmentID: in.DepartmentID,
		IsTechnician: true,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(person).Error; err != nil {
			return err
		}
		account := &model.UserAccount{
			Email:        in.Email,
			PasswordHash: hash,
			Role:         model.RoleTechnician,
			PersonID:     &person.ID,
		}
		return tx.Create(account).Error
	})
	if err != nil {
		return nil, err
	}
	return person, nil
}

func (s *AccountService) GetTechnician(ctx context.Context, id uint64) (*model.Person, error) {
	var person model.Person
	if err := s.db.WithContext(ctx).Preload("Department").Where("is_technician = ?", true).First(&person, id).Error; err != nil {
		return nil, mapNotFound(err, errs.ErrPersonNotFound)
	}
	return &person, nil
}

func (s *AccountService) ListTechnicians(ctx context.Context) ([]model.Person, error) {
	var items []model.Person
	if err := s.db.WithContext(ctx).Preload("Department").
		Where("is_technician = ?", true).
		Order("last_name ASC, first_name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
