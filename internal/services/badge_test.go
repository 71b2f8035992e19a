package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// flakyCount serves a scripted sequence of values and errors.
type flakyCount struct {
	values []int
	errs   []error
	calls  int
}

func (f *flakyCount) fetch(ctx context.Context) (int, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return 0, f.errs[i]
	}
	if i >= len(f.values) {
		i = len(f.values) - 1
	}
	return f.values[i], nil
}

func TestBadgeCountsFallBackToZero(t *testing.T) {
	notifications := &flakyCount{errs: []error{errors.New("down")}}
	contacts := &flakyCount{errs: []error{errors.New("down")}}
	poller := NewBadgeCountPoller(notifications.fetch, contacts.fetch, time.Minute, 25*time.Second)

	poller.pollBoth(context.Background())

	counts := poller.Counts()
	assert.Equal(t, 0, counts.Notifications)
	assert.Equal(t, 0, counts.Contacts)
	assert.Equal(t, 0, counts.Total)
}

func TestBadgeCountsRetainLastSuccessAcrossFailure(t *testing.T) {
	notifications := &flakyCount{values: []int{7, 0}, errs: []error{nil, errors.New("down")}}
	contacts := &flakyCount{values: []int{2}}
	poller := NewBadgeCountPoller(notifications.fetch, contacts.fetch, time.Minute, 25*time.Second)
	ctx := context.Background()

	poller.pollBoth(ctx)
	assert.Equal(t, 7, poller.Counts().Notifications)

	poller.pollBoth(ctx)
	counts := poller.Counts()
	assert.Equal(t, 7, counts.Notifications, "failed refresh keeps the stale value")
	assert.Equal(t, 2, counts.Contacts)
	assert.Equal(t, 9, counts.Total)
}

func TestBadgeRefreshServedFromCacheInsideStaleWindow(t *testing.T) {
	notifications := &flakyCount{values: []int{3, 5}}
	contacts := &flakyCount{values: []int{1}}
	poller := NewBadgeCountPoller(notifications.fetch, contacts.fetch, time.Minute, 25*time.Second)
	ctx := context.Background()

	now := time.Unix(1000, 0)
	clock := func() time.Time { return now }
	poller.notifications.now = clock
	poller.contacts.now = clock

	poller.pollBoth(ctx)
	assert.Equal(t, 1, notifications.calls)

	// Inside the 25s window the cached value is served.
	now = now.Add(10 * time.Second)
	poller.Refresh(ctx)
	assert.Equal(t, 1, notifications.calls)
	assert.Equal(t, 3, poller.Counts().Notifications)

	// Past the window the counter is re-read.
	now = now.Add(20 * time.Second)
	poller.Refresh(ctx)
	assert.Equal(t, 2, notifications.calls)
	assert.Equal(t, 5, poller.Counts().Notifications)
}

func TestBadgeSourcesAreIndependent(t *testing.T) {
	notifications := &flakyCount{errs: []error{errors.New("down")}}
	contacts := &flakyCount{values: []int{4}}
	poller := NewBadgeCountPoller(notifications.fetch, contacts.fetch, time.Minute, 25*time.Second)

	poller.pollBoth(context.Background())

	counts := poller.Counts()
	assert.Equal(t, 0, counts.Notifications)
	assert.Equal(t, 4, counts.Contacts, "one source failing must not block the other")
}
