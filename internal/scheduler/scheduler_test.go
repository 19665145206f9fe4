package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/esilogis/intervention-service/internal/events"
	"github.com/esilogis/intervention-service/internal/model"
	"github.com/esilogis/intervention-service/internal/notify"
	"github.com/esilogis/intervention-service/internal/service"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recordingProducer struct {
	events []string
}

func (p *recordingProducer) ProduceInterventionEvent(ctx context.Context, event string, payload map[string]interface{}) {
	p.events = append(p.events, event)
}

var _ events.InterventionEventProducer = (*recordingProducer)(nil)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Location{},
		&model.Person{},
		&model.Intervention{},
		&model.InterventionAssignee{},
		&model.InterventionHistory{},
	))
	return db
}

func TestSweepOnce(t *testing.T) {
	db := newTestDB(t)
	loc := model.Location{Name: "Main Hall"}
	require.NoError(t, db.Create(&loc).Error)

	svc := service.NewInterventionService(db)
	planned := time.Now().AddDate(0, 0, 1)
	iv, err := svc.Planify(context.Background(), service.CreateInterventionInput{
		Description: "Filter swap",
		LocationID:  loc.ID,
		PlannedAt:   &planned,
	})
	require.NoError(t, err)

	producer := &recordingProducer{}
	s := New(svc, notify.NewClient(""), producer, time.Minute, 3)

	require.NoError(t, s.SweepOnce(context.Background()))
	assert.Equal(t, []string{"intervention.reminder"}, producer.events)

	var reloaded model.Intervention
	require.NoError(t, db.First(&reloaded, iv.ID).Error)
	assert.NotNil(t, reloaded.RemindedAt)

	// Second sweep is quiet.
	require.NoError(t, s.SweepOnce(context.Background()))
	assert.Len(t, producer.events, 1)
}

func TestRunStopsOnCancel(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewInterventionService(db)
	s := New(svc, notify.NewClient(""), &recordingProducer{}, 10*time.Millisecond, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on cancel")
	}
}
