package appointment

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/field-service/internal/audit"
	domain "github.com/BruksfildServices01/field-service/internal/domain/appointment"
	"github.com/BruksfildServices01/field-service/internal/logger"
	"github.com/BruksfildServices01/field-service/internal/models"
	"github.com/BruksfildServices01/field-service/internal/timezone"
)

func TestTwoWorkerLifecycle(t *testing.T) {
	h := newHarness(t)
	w := h.workers(2)
	a, b := w[0], w[1]

	ap := h.appointment(a, b)
	assert.Equal(t, domain.StatusConfirmed, h.status(ap.ID))

	_, err := h.start.Execute(h.ctx, ap.PublicID, a)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, h.status(ap.ID))

	h.stagePhotos(ap, a, 1)
	res, err := h.submit.Execute(h.ctx, SubmitWorkInput{PublicID: ap.PublicID, WorkerID: a})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Photos)
	assert.Equal(t, domain.StatusInProgress, res.Status, "worker B has not finished")

	got, err := h.assignments.Get(h.ctx, ap.ID, a)
	require.NoError(t, err)
	assert.True(t, got.HasCompleted)
	require.NotNil(t, got.CompletedAt)

	res = h.startAndSubmit(ap, b, 1)
	assert.Equal(t, domain.StatusPendingReview, res.Status)
	assert.Equal(t, domain.StatusPendingReview, h.status(ap.ID))

	_, err = h.override.Execute(h.ctx, ap.ID, "completed", h.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, h.status(ap.ID))

	r, err := h.rate.Execute(h.ctx, ap.PublicID, 5, "Great work")
	require.NoError(t, err)
	assert.Equal(t, 5, r.Score)

	_, err = h.rate.Execute(h.ctx, ap.PublicID, 4, "again")
	assert.ErrorIs(t, err, domain.ErrAlreadyRated)

	photos, err := h.evidence.ListByAppointment(h.ctx, ap.ID)
	require.NoError(t, err)
	assert.Len(t, photos, 2)
	assert.Equal(t, a, photos[0].CommittedBy)
	assert.Equal(t, b, photos[1].CommittedBy)
}

func TestSubmitWithoutEvidenceChangesNothing(t *testing.T) {
	h := newHarness(t)
	w := h.workers(1)
	ap := h.appointment(w[0])

	_, err := h.start.Execute(h.ctx, ap.PublicID, w[0])
	require.NoError(t, err)
	before := h.status(ap.ID)

	_, err = h.submit.Execute(h.ctx, SubmitWorkInput{PublicID: ap.PublicID, WorkerID: w[0]})
	assert.ErrorIs(t, err, domain.ErrNoEvidence)

	assert.Equal(t, before, h.status(ap.ID))
	a, err := h.assignments.Get(h.ctx, ap.ID, w[0])
	require.NoError(t, err)
	assert.False(t, a.HasCompleted)
}

func TestSubmitBeforeStartIsRejected(t *testing.T) {
	h := newHarness(t)
	w := h.workers(1)
	ap := h.appointment(w[0])

	h.stagePhotos(ap, w[0], 1)
	_, err := h.submit.Execute(h.ctx, SubmitWorkInput{PublicID: ap.PublicID, WorkerID: w[0]})
	assert.ErrorIs(t, err, domain.ErrNotStarted)

	photos, err := h.evidence.ListByAppointment(h.ctx, ap.ID)
	require.NoError(t, err)
	assert.Empty(t, photos, "rejected submissions leave no evidence")

	staged, err := h.staging.Staged(h.ctx, ap.ID, w[0])
	require.NoError(t, err)
	assert.Len(t, staged, 1, "staged photos survive a rejected submit")
}

func TestDoubleSubmitIsRejected(t *testing.T) {
	h := newHarness(t)
	w := h.workers(2)
	ap := h.appointment(w...)

	h.startAndSubmit(ap, w[0], 1)

	_, err := h.stage.Execute(h.ctx, ap.PublicID, w[0], []byte("img"), "image/jpeg")
	assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)

	// Staged out of band, e.g. by a second tab that loaded before the submit.
	_, err = h.staging.Stage(h.ctx, ap.ID, w[0], "https://cdn.test/late.webp")
	require.NoError(t, err)

	_, err = h.submit.Execute(h.ctx, SubmitWorkInput{PublicID: ap.PublicID, WorkerID: w[0]})
	assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)

	photos, err := h.evidence.ListByAppointment(h.ctx, ap.ID)
	require.NoError(t, err)
	assert.Len(t, photos, 1)
}

func TestConcurrentLastCompletionReachesReview(t *testing.T) {
	for run := 0; run < 5; run++ {
		h := newHarness(t)
		w := h.workers(3)
		ap := h.appointment(w...)

		for _, id := range w {
			_, err := h.start.Execute(h.ctx, ap.PublicID, id)
			require.NoError(t, err)
			h.stagePhotos(ap, id, 2)
		}

		var wg sync.WaitGroup
		errs := make([]error, len(w))
		for i, id := range w {
			wg.Add(1)
			go func(i int, id uint) {
				defer wg.Done()
				_, errs[i] = h.submit.Execute(h.ctx, SubmitWorkInput{PublicID: ap.PublicID, WorkerID: id})
			}(i, id)
		}
		wg.Wait()

		for _, err := range errs {
			require.NoError(t, err)
		}
		assert.Equal(t, domain.StatusPendingReview, h.status(ap.ID))

		photos, err := h.evidence.ListByAppointment(h.ctx, ap.ID)
		require.NoError(t, err)
		assert.Len(t, photos, 6)
	}
}

func TestStartIsIdempotent(t *testing.T) {
	h := newHarness(t)
	w := h.workers(1)
	ap := h.appointment(w[0])

	first, err := h.start.Execute(h.ctx, ap.PublicID, w[0])
	require.NoError(t, err)
	again, err := h.start.Execute(h.ctx, ap.PublicID, w[0])
	require.NoError(t, err)

	require.NotNil(t, first.StartedAt)
	assert.True(t, first.StartedAt.Equal(*again.StartedAt))
}

func TestUnknownWorkerIsRejected(t *testing.T) {
	h := newHarness(t)
	w := h.workers(2)
	ap := h.appointment(w[0])

	_, err := h.start.Execute(h.ctx, ap.PublicID, w[1])
	assert.ErrorIs(t, err, domain.ErrWorkerNotAssigned)

	_, err = h.stage.Execute(h.ctx, ap.PublicID, w[1], []byte("img"), "image/png")
	assert.ErrorIs(t, err, domain.ErrWorkerNotAssigned)

	_, err = h.start.Execute(h.ctx, uuid.New(), w[0])
	assert.ErrorIs(t, err, domain.ErrAppointmentNotFound)
}

func TestUnstageRemovesOnePhoto(t *testing.T) {
	h := newHarness(t)
	w := h.workers(1)
	ap := h.appointment(w[0])

	h.stagePhotos(ap, w[0], 3)
	left, err := h.unstage.Execute(h.ctx, ap.PublicID, w[0], 1)
	require.NoError(t, err)
	require.Len(t, left, 2)
	assert.Equal(t, 0, left[0].Index)
	assert.Equal(t, 1, left[1].Index)

	_, err = h.unstage.Execute(h.ctx, ap.PublicID, w[0], 5)
	assert.ErrorIs(t, err, domain.ErrStagedPhotoNotFound)
}

func TestWorkerActionsEmitAuditEvents(t *testing.T) {
	h := newHarness(t)
	w := h.workers(1)
	ap := h.appointment(w[0])
	h.startAndSubmit(ap, w[0], 1)

	h.dispatcher.Close()

	var actions []string
	require.NoError(t, h.db.Model(&models.AuditLog{}).
		Where("appointment_id = ?", ap.ID).
		Order("id ASC").
		Pluck("action", &actions).Error)

	assert.Contains(t, actions, audit.ActionAppointmentCreated)
	assert.Contains(t, actions, audit.ActionWorkerStarted)
	assert.Contains(t, actions, audit.ActionWorkSubmitted)
	assert.Contains(t, actions, audit.ActionStatusDerived)
}

func TestMutationsAreAnnounced(t *testing.T) {
	h := newHarness(t)
	w := h.workers(2)
	ap := h.appointment(w...)

	before := h.changes.count(ap.ID)
	_, err := h.start.Execute(h.ctx, ap.PublicID, w[0])
	require.NoError(t, err)
	assert.Greater(t, h.changes.count(ap.ID), before)

	before = h.changes.count(ap.ID)
	_, err = h.note.Execute(h.ctx, ap.PublicID, w[0], "Replaced filter")
	require.NoError(t, err)
	assert.Greater(t, h.changes.count(ap.ID), before)

	// Starting again changes no row.
	before = h.changes.count(ap.ID)
	_, err = h.start.Execute(h.ctx, ap.PublicID, w[0])
	require.NoError(t, err)
	assert.Equal(t, before, h.changes.count(ap.ID))
}

// lateUploadBuffer stages one more photo right after the submission has
// read the buffer, as a second tab uploading mid-submit would.
type lateUploadBuffer struct {
	domain.StagingBuffer
	once sync.Once
}

func (b *lateUploadBuffer) Staged(ctx context.Context, appointmentID, workerID uint) ([]string, error) {
	refs, err := b.StagingBuffer.Staged(ctx, appointmentID, workerID)
	if err != nil {
		return nil, err
	}
	b.once.Do(func() {
		_, err = b.StagingBuffer.Stage(ctx, appointmentID, workerID, "https://cdn.test/late.webp")
	})
	return refs, err
}

func TestUploadDuringSubmitStaysStaged(t *testing.T) {
	h := newHarness(t)
	w := h.workers(1)
	ap := h.appointment(w[0])

	_, err := h.start.Execute(h.ctx, ap.PublicID, w[0])
	require.NoError(t, err)
	h.stagePhotos(ap, w[0], 1)

	buffer := &lateUploadBuffer{StagingBuffer: h.staging}
	submit := NewSubmitWork(h.appointments, h.assignments, h.evidence, h.feedback, buffer, h.gate, h.reconciler, h.dispatcher, timezone.Fixed(testNow), logger.Discard())

	res, err := submit.Execute(h.ctx, SubmitWorkInput{PublicID: ap.PublicID, WorkerID: w[0]})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Photos)

	committed, err := h.evidence.ListByAppointment(h.ctx, ap.ID)
	require.NoError(t, err)
	assert.Len(t, committed, 1)

	left, err := h.staging.Staged(h.ctx, ap.ID, w[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.test/late.webp"}, left)
}
