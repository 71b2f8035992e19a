package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/tableside/internal/models"
)

// scriptedFetcher serves a fixed sequence of statuses, repeating the last
// one once the script runs out.
type scriptedFetcher struct {
	mu       sync.Mutex
	statuses []models.OrderStatus
	errs     []error
	calls    int
}

func (f *scriptedFetcher) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.calls
	f.calls++

	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}

	if i >= len(f.statuses) {
		i = len(f.statuses) - 1
	}
	return &models.Order{
		ID:          id,
		OrderNumber: "ORD-0001",
		Status:      f.statuses[i],
		TotalAmount: 26.95,
	}, nil
}

// newManualSession wires a session whose survey timer is collected instead
// of armed, so tests fire it by hand.
func newManualSession(fetcher OrderFetcher) (*TrackerSession, *[]func()) {
	session := NewTrackerSession("ord-1", fetcher, 5*time.Second, 3*time.Second)
	scheduled := &[]func(){}
	session.schedule = func(d time.Duration, fn func()) func() {
		*scheduled = append(*scheduled, fn)
		return func() {}
	}
	return session, scheduled
}

func TestTrackerSurveyFiresExactlyOnce(t *testing.T) {
	fetcher := &scriptedFetcher{statuses: []models.OrderStatus{
		models.StatusPreparing,
		models.StatusServed,
		models.StatusServed,
		models.StatusCompleted,
	}}
	session, scheduled := newManualSession(fetcher)
	ctx := context.Background()

	require.True(t, session.tick(ctx)) // preparing
	assert.Empty(t, *scheduled)

	require.True(t, session.tick(ctx)) // preparing -> served
	require.Len(t, *scheduled, 1)
	assert.False(t, session.Snapshot().ShowSurvey, "flag flips only after the delay")

	(*scheduled)[0]()
	assert.True(t, session.Snapshot().ShowSurvey)

	require.True(t, session.tick(ctx)) // served again, no change
	assert.Len(t, *scheduled, 1)

	require.True(t, session.tick(ctx)) // served -> completed
	assert.Len(t, *scheduled, 1, "a later transition must not re-trigger the survey")
}

func TestTrackerFirstObservationOfServedTriggersSurvey(t *testing.T) {
	fetcher := &scriptedFetcher{statuses: []models.OrderStatus{models.StatusServed}}
	session, scheduled := newManualSession(fetcher)

	require.True(t, session.tick(context.Background()))
	assert.Len(t, *scheduled, 1)
}

func TestTrackerPollFailureContinues(t *testing.T) {
	fetcher := &scriptedFetcher{
		statuses: []models.OrderStatus{models.StatusPending, models.StatusPending, models.StatusConfirmed},
		errs:     []error{nil, errors.New("upstream timeout"), nil},
	}
	session, _ := newManualSession(fetcher)
	ctx := context.Background()

	require.True(t, session.tick(ctx))
	require.True(t, session.tick(ctx), "a failed poll tick must not stop polling")
	require.True(t, session.tick(ctx))

	view := session.Snapshot()
	assert.Equal(t, models.StatusConfirmed, view.Status)
	assert.False(t, view.NotFound)
}

func TestTrackerNotFoundIsTerminal(t *testing.T) {
	fetcher := &scriptedFetcher{errs: []error{ErrOrderNotFound}}
	session, _ := newManualSession(fetcher)

	assert.False(t, session.tick(context.Background()), "not-found must end polling")
	assert.True(t, session.Snapshot().NotFound)
}

func TestTrackerCancelledSnapshot(t *testing.T) {
	fetcher := &scriptedFetcher{statuses: []models.OrderStatus{models.StatusCancelled}}
	session, scheduled := newManualSession(fetcher)

	require.True(t, session.tick(context.Background()))
	assert.Empty(t, *scheduled)

	view := session.Snapshot()
	assert.Equal(t, models.StatusCancelled, view.Status)
	assert.Equal(t, -1, view.ProgressionIndex)
	assert.Equal(t, 0.0, view.ProgressPercent)
}

func TestTrackerOrderLifecycleScenario(t *testing.T) {
	fetcher := &scriptedFetcher{statuses: []models.OrderStatus{
		models.StatusPending,
		models.StatusPreparing,
		models.StatusServed,
		models.StatusCompleted,
	}}
	session, scheduled := newManualSession(fetcher)
	ctx := context.Background()

	require.True(t, session.tick(ctx)) // pending
	view := session.Snapshot()
	assert.Equal(t, 0, view.ProgressionIndex)
	assert.Equal(t, "ORD-0001", view.Order.OrderNumber)

	require.True(t, session.tick(ctx)) // preparing
	view = session.Snapshot()
	assert.Equal(t, 2, view.ProgressionIndex)
	assert.False(t, view.ShowSurvey)
	assert.Empty(t, *scheduled)

	require.True(t, session.tick(ctx)) // served
	view = session.Snapshot()
	assert.Equal(t, 4, view.ProgressionIndex)
	assert.Equal(t, 80.0, view.ProgressPercent)

	require.Len(t, *scheduled, 1)
	(*scheduled)[0]() // the 3s delay elapses
	assert.True(t, session.Snapshot().ShowSurvey)

	session.MarkSurveySubmitted()
	view = session.Snapshot()
	assert.True(t, view.SurveySubmitted)
	assert.False(t, view.ShowSurvey)

	require.True(t, session.tick(ctx)) // completed
	assert.Len(t, *scheduled, 1, "no further prompt after submission")
	view = session.Snapshot()
	assert.Equal(t, models.StatusCompleted, view.Status)
	assert.True(t, view.SurveySubmitted)
	assert.False(t, view.ShowSurvey)
}

func TestTrackerSubmittedBeforeDelayElapsesSuppressesPrompt(t *testing.T) {
	fetcher := &scriptedFetcher{statuses: []models.OrderStatus{models.StatusServed}}
	session, scheduled := newManualSession(fetcher)

	require.True(t, session.tick(context.Background()))
	require.Len(t, *scheduled, 1)

	session.MarkSurveySubmitted()
	(*scheduled)[0]() // stale timer fires anyway

	view := session.Snapshot()
	assert.False(t, view.ShowSurvey)
	assert.True(t, view.SurveySubmitted)
}

func TestTrackerManagerReusesAndClosesSessions(t *testing.T) {
	fetcher := &scriptedFetcher{statuses: []models.OrderStatus{models.StatusPending}}
	manager := NewTrackerManager(fetcher, time.Hour, time.Hour)
	ctx := context.Background()

	first := manager.Open(ctx, "ord-1")
	second := manager.Open(ctx, "ord-1")
	assert.Same(t, first, second)

	manager.Close("ord-1")
	_, ok := manager.Get("ord-1")
	assert.False(t, ok)

	select {
	case <-first.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session loop did not stop")
	}
}
