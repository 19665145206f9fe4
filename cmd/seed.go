package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/esilogis/intervention-service/internal/auth"
	"github.com/esilogis/intervention-service/internal/database"
	"github.com/esilogis/intervention-service/internal/model"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed an admin account and demo reference data (idempotent)",
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := database.MigrateUp(cfg.DatabaseURL()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.DSN())
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}

	adminEmail := os.Getenv("SEED_ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@esilogis.local"
	}
	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "changeme-admin"
	}

	var existing model.UserAccount
	err = db.Where("email = ?", adminEmail).First(&existing).Error
	switch {
	case err == nil:
		log.Printf("seed: admin %s already exists", adminEmail)
	case errors.Is(err, gorm.ErrRecordNotFound):
		authSvc := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)
		hash, err := authSvc.HashPassword(adminPassword)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		account := &model.UserAccount{Email: adminEmail, PasswordHash: hash, Role: model.RoleAdmin}
		if err := db.Create(account).Error; err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		log.Printf("seed: created admin %s", adminEmail)
	default:
		return fmt.Errorf("check admin: %w", err)
	}

	locations := []model.Location{
		{Name: "Main Hall", Building: "A", Floor: "0"},
		{Name: "Library", Building: "B", Floor: "1"},
		{Name: "Cafeteria", Building: "A", Floor: "0"},
	}
	for i := range locations {
		loc := &locations[i]
		res := db.Where("name = ?", loc.Name).FirstOrCreate(loc)
		if res.Error != nil {
			return fmt.Errorf("seed location %q: %w", loc.Name, res.Error)
		}
	}
	departments := []model.Department{{Name: "Maintenance"}, {Name: "IT"}}
	for i := range departments {
		dep := &departments[i]
		if err := db.Where("name = ?", dep.Name).FirstOrCreate(dep).Error; err != nil {
			return fmt.Errorf("seed department %q: %w", dep.Name, err)
		}
	}
	types := []model.EquipmentType{{Name: "HVAC"}, {Name: "Plumbing"}, {Name: "Electrical"}}
	for i := range types {
		et := &types[i]
		if err := db.Where("name = ?", et.Name).FirstOrCreate(et).Error; err != nil {
			return fmt.Errorf("seed equipment type %q: %w", et.Name, err)
		}
	}
	log.Println("seed: ok")
	return nil
}
