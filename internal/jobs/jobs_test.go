package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/field-service/internal/domain/appointment"
	"github.com/BruksfildServices01/field-service/internal/logger"
	"github.com/BruksfildServices01/field-service/internal/realtime"
)

type fakeReconciler struct {
	mu      sync.Mutex
	calls   []uint
	changed map[uint]bool
	fail    map[uint]bool
}

func (f *fakeReconciler) Reconcile(_ context.Context, id uint) (domain.Status, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, id)
	if f.fail[id] {
		return "", false, errors.New("boom")
	}
	return domain.StatusCompleted, f.changed[id], nil
}

func (f *fakeReconciler) seen() []uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint(nil), f.calls...)
}

type fakeLister struct {
	ids []uint
	err error
}

func (f fakeLister) ListActiveAppointmentIDs(_ context.Context, _ int) ([]uint, error) {
	return f.ids, f.err
}

func TestHealerReconcilesAnnouncedAppointments(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	channel := realtime.NewChannel(realtime.NewLocalBroker(), logger.Discard())
	require.NoError(t, channel.Start(ctx))

	rec := &fakeReconciler{}
	h := NewHealer(channel, fakeLister{}, rec, logger.Discard())
	h.Start(ctx)

	require.NoError(t, channel.Publish(ctx, 7))
	require.NoError(t, channel.Publish(ctx, 9))

	require.Eventually(t, func() bool {
		seen := rec.seen()
		return contains(seen, 7) && contains(seen, 9)
	}, time.Second, 10*time.Millisecond)

	h.Stop()

	before := len(rec.seen())
	require.NoError(t, channel.Publish(ctx, 11))
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, rec.seen(), before)
}

func TestHealerStopWithoutStart(t *testing.T) {
	channel := realtime.NewChannel(realtime.NewLocalBroker(), logger.Discard())
	h := NewHealer(channel, fakeLister{}, &fakeReconciler{}, logger.Discard())
	assert.NotPanics(t, h.Stop)
}

func TestHealerCoalescesPendingIDs(t *testing.T) {
	channel := realtime.NewChannel(realtime.NewLocalBroker(), logger.Discard())
	h := NewHealer(channel, fakeLister{}, &fakeReconciler{}, logger.Discard())

	h.enqueue(3)
	h.enqueue(3)
	h.enqueue(4)

	assert.Len(t, h.queue, 2)
}

// gapBroker lets a test trigger the resync a real broker sends after it
// reconnects.
type gapBroker struct {
	*realtime.LocalBroker
	resync func()
}

func (b *gapBroker) Listen(ctx context.Context, deliver func(realtime.Change), resync func()) error {
	b.resync = resync
	return b.LocalBroker.Listen(ctx, deliver, resync)
}

func TestHealerRederivesOpenAppointmentsAfterFeedGap(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := &gapBroker{LocalBroker: realtime.NewLocalBroker()}
	channel := realtime.NewChannel(broker, logger.Discard())
	require.NoError(t, channel.Start(ctx))

	rec := &fakeReconciler{}
	h := NewHealer(channel, fakeLister{ids: []uint{4, 5, 6}}, rec, logger.Discard())
	h.Start(ctx)
	defer h.Stop()

	broker.resync()

	require.Eventually(t, func() bool {
		seen := rec.seen()
		return contains(seen, 4) && contains(seen, 5) && contains(seen, 6)
	}, time.Second, 10*time.Millisecond)
}

func TestSweepCountsHealed(t *testing.T) {
	rec := &fakeReconciler{
		changed: map[uint]bool{2: true, 3: true},
		fail:    map[uint]bool{4: true},
	}
	s := NewScheduler(fakeLister{ids: []uint{1, 2, 3, 4}}, rec, logger.Discard(), "@every 1h", nil)

	healed := s.Sweep(context.Background())

	assert.Equal(t, 2, healed)
	assert.Equal(t, []uint{1, 2, 3, 4}, rec.seen())
}

func TestSweepListError(t *testing.T) {
	rec := &fakeReconciler{}
	s := NewScheduler(fakeLister{err: errors.New("db down")}, rec, logger.Discard(), "@every 1h", nil)

	assert.Equal(t, 0, s.Sweep(context.Background()))
	assert.Empty(t, rec.seen())
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := NewScheduler(fakeLister{}, &fakeReconciler{}, logger.Discard(), "not a cron", nil)
	assert.Error(t, s.Start())
}

func TestSchedulerStartStop(t *testing.T) {
	s := NewScheduler(fakeLister{}, &fakeReconciler{}, logger.Discard(), "@every 1h", time.UTC)
	require.NoError(t, s.Start())
	s.Stop()
}

func contains(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
