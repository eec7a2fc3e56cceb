package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/field-service/internal/audit"
	"github.com/BruksfildServices01/field-service/internal/config"
	"github.com/BruksfildServices01/field-service/internal/dbtest"
	infraRepo "github.com/BruksfildServices01/field-service/internal/infra/repository"
	"github.com/BruksfildServices01/field-service/internal/infra/staging"
	"github.com/BruksfildServices01/field-service/internal/logger"
	"github.com/BruksfildServices01/field-service/internal/models"
	"github.com/BruksfildServices01/field-service/internal/realtime"
	"github.com/BruksfildServices01/field-service/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/field-service/internal/usecase/appointment"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeStorage struct{ n int }

func (f *fakeStorage) Upload(_ context.Context, appointmentID uint, _ []byte, _ string) (string, error) {
	f.n++
	return fmt.Sprintf("https://cdn.test/%d/%d.webp", appointmentID, f.n), nil
}

type server struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine

	customer models.Customer
	admin    models.User
	worker   models.User
}

func newServer(t *testing.T) *server {
	t.Helper()

	db := dbtest.Open(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	log := logger.Discard()
	cfg := &config.Config{JWTSecret: "test-secret"}

	dispatcher := audit.NewDispatcher(audit.New(db), log)
	t.Cleanup(dispatcher.Close)

	channel := realtime.NewChannel(realtime.NewLocalBroker(), log)
	require.NoError(t, channel.Start(ctx))

	reconciler := ucAppointment.NewReconciler(
		infraRepo.NewAppointmentGormRepository(db),
		infraRepo.NewAssignmentGormRepository(db),
		channel,
		dispatcher,
		log,
	)

	r := gin.New()
	RegisterRoutes(r, Deps{
		DB:         db,
		Config:     cfg,
		Log:        log,
		Channel:    channel,
		Audit:      dispatcher,
		Reconciler: reconciler,
		Staging:    staging.NewMemoryBuffer(),
		Storage:    &fakeStorage{},
		Clock:      timezone.Fixed(time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)),
	})

	s := &server{t: t, db: db, router: r}

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret!"), bcrypt.MinCost)
	require.NoError(t, err)

	s.customer = models.Customer{Name: "Aisha", Phone: "0123"}
	s.admin = models.User{Name: "Admin", Email: "admin@test.io", PasswordHash: string(hash), Role: models.RoleAdmin, Active: true}
	s.worker = models.User{Name: "Worker A", Email: "a@test.io", PasswordHash: string(hash), Role: models.RoleWorker, Active: true}
	require.NoError(t, db.Create(&s.customer).Error)
	require.NoError(t, db.Create(&s.admin).Error)
	require.NoError(t, db.Create(&s.worker).Error)

	return s
}

func (s *server) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *server) login(email string) string {
	s.t.Helper()

	w := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": "s3cret!"})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &out))
	return out.Token
}

func (s *server) uploadPhoto(path string) *httptest.ResponseRecorder {
	s.t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("photo", "site.jpg")
	require.NoError(s.t, err)
	_, _ = part.Write([]byte("jpeg bytes"))
	require.NoError(s.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type viewBody struct {
	ID       uint   `json:"id"`
	PublicID string `json:"public_id"`
	Status   string `json:"status"`
	Workers  []struct {
		ID           uint `json:"id"`
		HasCompleted bool `json:"has_completed"`
	} `json:"workers"`
	Photos []struct {
		URL string `json:"url"`
	} `json:"photos"`
	Rating *struct {
		Rating int `json:"rating"`
	} `json:"rating"`
}

type errorBody struct {
	Code string `json:"error_code"`
}

func TestAppointmentLifecycleOverHTTP(t *testing.T) {
	s := newServer(t)
	token := s.login("admin@test.io")

	w := s.do(http.MethodPost, "/api/appointments", token, gin.H{
		"customer_id": s.customer.ID,
		"worker_ids":  []uint{s.worker.ID},
		"title":       "Replace boiler",
		"date":        "2026-05-01",
		"start_time":  "10:00",
		"end_time":    "12:00",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[viewBody](t, w)
	assert.Equal(t, "confirmed", created.Status)
	require.NotEmpty(t, created.PublicID)

	public := "/api/public/appointments/" + created.PublicID
	workerPath := fmt.Sprintf("%s/workers/%d", public, s.worker.ID)

	// Submitting without evidence is refused before anything else.
	w = s.do(http.MethodPost, workerPath+"/submit", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "no_evidence", decode[errorBody](t, w).Code)

	w = s.do(http.MethodPost, workerPath+"/start", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.uploadPhoto(workerPath + "/photos")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, workerPath+"/submit", "", gin.H{"note": "Old unit removed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[struct {
		Photos int    `json:"photos"`
		Status string `json:"status"`
	}](t, w)
	assert.Equal(t, 1, res.Photos)
	assert.Equal(t, "pending_review", res.Status)

	w = s.do(http.MethodGet, public, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[viewBody](t, w)
	assert.Zero(t, view.ID, "public view hides the internal id")
	assert.Equal(t, "pending_review", view.Status)
	assert.Len(t, view.Photos, 1)
	require.Len(t, view.Workers, 1)
	assert.True(t, view.Workers[0].HasCompleted)

	w = s.do(http.MethodPost, public+"/rating", "", gin.H{"rating": 5})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "not_completed", decode[errorBody](t, w).Code)

	w = s.do(http.MethodPatch, fmt.Sprintf("/api/appointments/%d/status", created.ID), token, gin.H{"status": "completed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, public+"/rating", "", gin.H{"rating": 5, "comment": "Spotless"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, public+"/rating", "", gin.H{"rating": 4})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "already_rated", decode[errorBody](t, w).Code)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/appointments/%d", created.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	admin := decode[viewBody](t, w)
	require.NotNil(t, admin.Rating)
	assert.Equal(t, 5, admin.Rating.Rating)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodGet, "/api/appointments", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	workerToken := s.login("a@test.io")
	w = s.do(http.MethodGet, "/api/appointments", workerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/api/me", workerToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "admin@test.io", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_credentials", decode[errorBody](t, w).Code)
}

func TestUnknownPublicLinkIsNotFound(t *testing.T) {
	s := newServer(t)

	for _, path := range []string{
		"/api/public/appointments/not-a-uuid",
		"/api/public/appointments/9b2f3c8e-8d4a-4c36-9d49-0e3a3f1d2b10",
	} {
		w := s.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, "appointment_not_found", decode[errorBody](t, w).Code)
	}
}

func TestOverrideStatusOverHTTP(t *testing.T) {
	s := newServer(t)
	token := s.login("admin@test.io")

	w := s.do(http.MethodPost, "/api/appointments", token, gin.H{
		"customer_id": s.customer.ID,
		"title":       "Inspect roof",
		"date":        "2026-05-02",
		"start_time":  "08:00",
		"end_time":    "09:00",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode[viewBody](t, w).ID

	path := fmt.Sprintf("/api/appointments/%d/status", id)

	w = s.do(http.MethodPatch, path, token, gin.H{"status": "cancelled"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPatch, path, token, gin.H{"status": "confirmed"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "invalid_transition", decode[errorBody](t, w).Code)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/appointments/%d/audit-logs", id), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealth(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
