package service

import (
	"context"
	"testing"
	"time"

	"github.com/esilogis/intervention-service/internal/model"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Location{},
		&model.Department{},
		&model.EquipmentType{},
		&model.Equipment{},
		&model.Person{},
		&model.UserAccount{},
		&model.Intervention{},
		&model.InterventionAssignee{},
		&model.InterventionHistory{},
	))
	return db
}

type fixtures struct {
	location model.Location
	techA    model.Person
	techB    model.Person
}

func seedFixtures(t *testing.T, db *gorm.DB) fixtures {
	t.Helper()
	f := fixtures{
		location: model.Location{Name: "Main Hall", Building: "A"},
		techA:    model.Person{FirstName: "Ada", LastName: "Martin", Email: "ada@esilogis.local", IsTechnician: true},
		techB:    model.Person{FirstName: "Noe", LastName: "Garnier", Email: "noe@esilogis.local", IsTechnician: true},
	}
	require.NoError(t, db.Create(&f.location).Error)
	require.NoError(t, db.Create(&f.techA).Error)
	require.NoError(t, db.Create(&f.techB).Error)
	return f
}

func historyActions(t *testing.T, db *gorm.DB, interventionID uint64) []model.HistoryAction {
	t.Helper()
	var rows []model.InterventionHistory
	require.NoError(t, db.Where("intervention_id = ?", interventionID).
		Order("logged_at ASC, id ASC").Find(&rows).Error)
	out := make([]model.HistoryAction, len(rows))
	for i, r := range rows {
		out[i] = r.Action
	}
	return out
}

func timePtr(v time.Time) *time.Time { return &v }

var testCtx = context.Background()
