package appointment

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/field-service/internal/audit"
	"github.com/BruksfildServices01/field-service/internal/dbtest"
	domain "github.com/BruksfildServices01/field-service/internal/domain/appointment"
	"github.com/BruksfildServices01/field-service/internal/infra/repository"
	"github.com/BruksfildServices01/field-service/internal/infra/staging"
	"github.com/BruksfildServices01/field-service/internal/logger"
	"github.com/BruksfildServices01/field-service/internal/models"
	"github.com/BruksfildServices01/field-service/internal/realtime"
	"github.com/BruksfildServices01/field-service/internal/timezone"
)

var testNow = time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)

type fakeStorage struct {
	n atomic.Int32
}

func (f *fakeStorage) Upload(_ context.Context, appointmentID uint, _ []byte, _ string) (string, error) {
	return fmt.Sprintf("https://cdn.test/appointments/%d/%d.webp", appointmentID, f.n.Add(1)), nil
}

// changeLog counts change signals per appointment.
type changeLog struct {
	mu   sync.Mutex
	hits map[uint]int
}

func (l *changeLog) count(id uint) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hits[id]
}

type harness struct {
	t   *testing.T
	db  *gorm.DB
	ctx context.Context

	appointments *repository.AppointmentGormRepository
	assignments  *repository.AssignmentGormRepository
	evidence     *repository.EvidenceGormRepository
	feedback     *repository.FeedbackGormRepository
	directory    *repository.DirectoryGormRepository
	staging      *staging.MemoryBuffer
	channel      *realtime.Channel
	changes      *changeLog
	dispatcher   *audit.Dispatcher

	reconciler *Reconciler
	gate       *CompletionGate
	create     *CreateAppointment
	assign     *AssignWorkers
	start      *StartWork
	stage      *StagePhoto
	unstage    *UnstagePhoto
	submit     *SubmitWork
	override   *OverrideStatus
	rate       *SubmitRating
	note       *SaveNote
	view       *GetAppointmentView
	byDate     *ListAppointmentsByDate
	byMonth    *ListAppointmentsByMonth

	customer models.Customer
	admin    models.User
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db := dbtest.Open(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	log := logger.Discard()
	dispatcher := audit.NewDispatcher(audit.New(db), log)
	t.Cleanup(dispatcher.Close)

	channel := realtime.NewChannel(realtime.NewLocalBroker(), log)
	require.NoError(t, channel.Start(ctx))

	changes := &changeLog{hits: make(map[uint]int)}
	channel.SubscribeAll(func(id uint) {
		changes.mu.Lock()
		changes.hits[id]++
		changes.mu.Unlock()
	})

	h := &harness{
		t:            t,
		db:           db,
		ctx:          ctx,
		appointments: repository.NewAppointmentGormRepository(db),
		assignments:  repository.NewAssignmentGormRepository(db),
		evidence:     repository.NewEvidenceGormRepository(db),
		feedback:     repository.NewFeedbackGormRepository(db),
		directory:    repository.NewDirectoryGormRepository(db),
		staging:      staging.NewMemoryBuffer(),
		channel:      channel,
		changes:      changes,
		dispatcher:   dispatcher,
	}

	clock := timezone.Fixed(testNow)
	storage := &fakeStorage{}

	h.reconciler = NewReconciler(h.appointments, h.assignments, channel, dispatcher, log)
	h.gate = NewCompletionGate(h.appointments, h.assignments)
	h.create = NewCreateAppointment(h.appointments, h.assignments, h.directory, channel, dispatcher)
	h.assign = NewAssignWorkers(h.appointments, h.assignments, h.directory, h.reconciler, dispatcher, clock)
	h.start = NewStartWork(h.appointments, h.assignments, h.reconciler, dispatcher, clock)
	h.stage = NewStagePhoto(h.appointments, h.assignments, h.staging, storage)
	h.unstage = NewUnstagePhoto(h.appointments, h.staging)
	h.submit = NewSubmitWork(h.appointments, h.assignments, h.evidence, h.feedback, h.staging, h.gate, h.reconciler, dispatcher, clock, log)
	h.override = NewOverrideStatus(h.appointments, channel, dispatcher)
	h.rate = NewSubmitRating(h.appointments, h.feedback, channel, dispatcher)
	h.note = NewSaveNote(h.appointments, h.assignments, h.feedback, channel)
	h.view = NewGetAppointmentView(h.appointments, h.assignments, h.evidence, h.feedback, h.feedback, h.directory, h.staging)
	h.byDate = NewListAppointmentsByDate(h.appointments, h.assignments)
	h.byMonth = NewListAppointmentsByMonth(h.appointments, h.assignments)

	h.customer = models.Customer{Name: "Aisha", Phone: "60123456789", Address: "Jalan Ampang 1"}
	require.NoError(t, db.Create(&h.customer).Error)

	h.admin = h.user("Admin", models.RoleAdmin)
	return h
}

func (h *harness) user(name, role string) models.User {
	h.t.Helper()
	u := models.User{
		Name:         name,
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(h.t, h.db.Create(&u).Error)
	return u
}

func (h *harness) workers(n int) []uint {
	h.t.Helper()
	ids := make([]uint, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, h.user(fmt.Sprintf("Worker %c", 'A'+i), models.RoleWorker).ID)
	}
	return ids
}

func (h *harness) appointment(workerIDs ...uint) *models.Appointment {
	h.t.Helper()
	ap, err := h.create.Execute(h.ctx, CreateAppointmentInput{
		CustomerID: h.customer.ID,
		WorkerIDs:  workerIDs,
		Title:      "Aircon service",
		Location:   "Unit 3-2",
		Date:       "2026-05-01",
		StartTime:  "09:00",
		EndTime:    "11:00",
	}, h.admin.ID)
	require.NoError(h.t, err)
	return ap
}

func (h *harness) status(id uint) domain.Status {
	h.t.Helper()
	ap, err := h.appointments.GetAppointment(h.ctx, id)
	require.NoError(h.t, err)
	return domain.Status(ap.Status)
}

func (h *harness) stagePhotos(ap *models.Appointment, workerID uint, n int) {
	h.t.Helper()
	for i := 0; i < n; i++ {
		_, err := h.stage.Execute(h.ctx, ap.PublicID, workerID, []byte("img"), "image/jpeg")
		require.NoError(h.t, err)
	}
}

func (h *harness) startAndSubmit(ap *models.Appointment, workerID uint, photos int) *SubmitWorkResult {
	h.t.Helper()
	_, err := h.start.Execute(h.ctx, ap.PublicID, workerID)
	require.NoError(h.t, err)
	h.stagePhotos(ap, workerID, photos)
	res, err := h.submit.Execute(h.ctx, SubmitWorkInput{PublicID: ap.PublicID, WorkerID: workerID})
	require.NoError(h.t, err)
	return res
}
