package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/esilogis/intervention-service/internal/auth"
	"github.com/esilogis/intervention-service/internal/events"
	"github.com/esilogis/intervention-service/internal/handler"
	"github.com/esilogis/intervention-service/internal/model"
	"github.com/esilogis/intervention-service/internal/notify"
	"github.com/esilogis/intervention-service/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	router   http.Handler
	db       *gorm.DB
	auth     *auth.Service
	location model.Location
	tech     model.Person
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
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

	env := &testEnv{db: db}
	env.location = model.Location{Name: "Main Hall"}
	require.NoError(t, db.Create(&env.location).Error)
	env.tech = model.Person{FirstName: "Ada", LastName: "Martin", IsTechnician: true}
	require.NoError(t, db.Create(&env.tech).Error)

	env.auth = auth.NewService("test-secret", time.Hour)
	interventionSvc := service.NewInterventionService(db)
	referenceSvc := service.NewReferenceService(db)
	accountSvc := service.NewAccountService(db, env.auth)
	notifier := notify.NewClient("")
	producer := events.NewProducer(nil, "")

	env.router = New(Deps{
		Auth:          env.auth,
		AuthHandler:   handler.NewAuthHandler(accountSvc),
		Interventions: handler.NewInterventionHandler(interventionSvc, notifier, producer),
		Reference:     handler.NewReferenceHandler(referenceSvc, accountSvc),
	})
	return env
}

func (e *testEnv) token(t *testing.T, role model.Role) string {
	t.Helper()
	hash := "x"
	account := model.UserAccount{
		Email: fmt.Sprintf("%s@esilogis.local", role), PasswordHash: hash, Role: role,
	}
	if err := e.db.Where("email = ?", account.Email).FirstOrCreate(&account).Error; err != nil {
		t.Fatal(err)
	}
	tok, err := e.auth.GenerateToken(&account)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body struct {
		Success bool                   `json:"success"`
		Message string                 `json:"message"`
		Data    map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Data
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/ready", "", nil).Code)
}

func TestInterventionRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/intervention", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateInterventionScenario(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, model.RoleUser)

	w := env.do(t, http.MethodPost, "/api/intervention", tok, gin.H{
		"description": "Leaky pipe",
		"location_id": env.location.ID,
		"priority":    "HIGH",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decodeData(t, w)
	assert.Equal(t, "PENDING", data["status"])
	assert.Equal(t, "HIGH", data["priority"])
	assert.Equal(t, "Leaky pipe", data["description"])
}

func TestCreateInterventionValidation(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, model.RoleUser)

	w := env.do(t, http.MethodPost, "/api/intervention", tok, gin.H{"description": "no location"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/intervention", tok, gin.H{
		"description": "bad location", "location_id": 999999,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetInterventionNotFound(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, model.RoleUser)
	w := env.do(t, http.MethodGet, "/api/intervention/999999", tok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatusWorkflowOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, model.RoleTechnician)

	w := env.do(t, http.MethodPost, "/api/intervention", tok, gin.H{
		"description": "Leaky pipe", "location_id": env.location.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := uint64(decodeData(t, w)["id"].(float64))

	// PENDING -> COMPLETED is illegal.
	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/intervention/%d/status", id), tok, gin.H{"status": "COMPLETED"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/intervention/%d/status", id), tok, gin.H{"status": "IN_PROGRESS"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/intervention/%d/status", id), tok, gin.H{"status": "COMPLETED"})
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "COMPLETED", data["status"])
	assert.NotNil(t, data["resolved_at"])

	history, ok := data["history"].([]interface{})
	require.True(t, ok)
	assert.Len(t, history, 3) // CREATED + two STATUS_CHANGED
}

func TestAssignOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, model.RoleAdmin)

	w := env.do(t, http.MethodPost, "/api/intervention", tok, gin.H{
		"description": "Broken door", "location_id": env.location.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := uint64(decodeData(t, w)["id"].(float64))

	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/intervention/%d/assign", id), tok, gin.H{
		"person_ids": []uint64{env.tech.ID},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeData(t, w)
	assignees, ok := data["assignees"].([]interface{})
	require.True(t, ok)
	assert.Len(t, assignees, 1)
}

func TestUpdatePartialOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, model.RoleUser)

	w := env.do(t, http.MethodPost, "/api/intervention", tok, gin.H{
		"description": "Leaky pipe", "location_id": env.location.ID, "priority": "HIGH",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := uint64(decodeData(t, w)["id"].(float64))

	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/intervention/%d", id), tok, gin.H{
		"description": "Leaky pipe in basement",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeData(t, w)
	assert.Equal(t, "Leaky pipe in basement", data["description"])
	assert.Equal(t, "HIGH", data["priority"], "omitted fields stay untouched")
}

func TestPlanifyOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, model.RoleAdmin)

	w := env.do(t, http.MethodPost, "/api/intervention/planify-intervention", tok, gin.H{
		"description":         "Monthly boiler check",
		"location_id":         env.location.ID,
		"planned_at":          time.Now().AddDate(0, 1, 0).Format(time.RFC3339),
		"is_recurring":        true,
		"recurrence_interval": 30,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decodeData(t, w)
	assert.Equal(t, "PREVENTIVE", data["type"])
	assert.Equal(t, true, data["is_recurring"])
}

func TestListFilterByStatusOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, model.RoleUser)

	for _, desc := range []string{"one", "two"} {
		w := env.do(t, http.MethodPost, "/api/intervention", tok, gin.H{
			"description": desc, "location_id": env.location.ID,
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := env.do(t, http.MethodGet, "/api/intervention?status=PENDING", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.EqualValues(t, 2, data["total"])

	w = env.do(t, http.MethodGet, "/api/intervention?status=COMPLETED", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeData(t, w)
	assert.EqualValues(t, 0, data["total"])
}

func TestEquipmentTypeAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	user := env.token(t, model.RoleUser)
	admin := env.token(t, model.RoleAdmin)

	w := env.do(t, http.MethodPost, "/api/equipment-type", user, gin.H{"name": "HVAC"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/api/equipment-type", admin, gin.H{"name": "HVAC"})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Reads are open to any authenticated caller.
	w = env.do(t, http.MethodGet, "/api/equipment-type", user, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginFlow(t *testing.T) {
	env := newTestEnv(t)
	hash, err := env.auth.HashPassword("correct-horse")
	require.NoError(t, err)
	require.NoError(t, env.db.Create(&model.UserAccount{
		Email: "admin@esilogis.local", PasswordHash: hash, Role: model.RoleAdmin,
	}).Error)

	w := env.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "admin@esilogis.local", "password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeData(t, w)
	tok, ok := data["token"].(string)
	require.True(t, ok)

	w = env.do(t, http.MethodGet, "/api/intervention", tok, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "admin@esilogis.local", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLocationCRUD(t *testing.T) {
	env := newTestEnv(t)
	admin := env.token(t, model.RoleAdmin)
	user := env.token(t, model.RoleUser)

	w := env.do(t, http.MethodPost, "/api/location", user, gin.H{
		"name": "Library", "building": "B", "floor": "1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := uint64(decodeData(t, w)["id"].(float64))

	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/location/%d", id), user, gin.H{"floor": "2"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", decodeData(t, w)["floor"])

	// Deletes are admin-only.
	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/location/%d", id), user, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/location/%d", id), admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/location/%d", id), admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTechnicianCreateAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	user := env.token(t, model.RoleUser)
	admin := env.token(t, model.RoleAdmin)

	body := gin.H{
		"first_name": "Noe", "last_name": "Garnier",
		"email": "noe@esilogis.local", "password": "s3cret-pass",
	}
	w := env.do(t, http.MethodPost, "/api/technician", user, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/api/technician", admin, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, true, decodeData(t, w)["is_technician"])
}
