package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/example/tableside/internal/models"
)

// CountFunc reads one integer counter from the upstream API.
type CountFunc func(ctx context.Context) (int, error)

// countSource caches the last successful read of one counter. A failed read
// keeps the previous value; the counter reports zero until the first success.
type countSource struct {
	name       string
	fetch      CountFunc
	staleAfter time.Duration
	now        func() time.Time

	mu        sync.Mutex
	value     int
	fetchedAt time.Time
	fetched   bool
}

func newCountSource(name string, fetch CountFunc, staleAfter time.Duration) *countSource {
	return &countSource{
		name:       name,
		fetch:      fetch,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// fresh reports whether the last successful read is still inside the
// staleness window.
func (s *countSource) fresh() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetched && s.now().Sub(s.fetchedAt) < s.staleAfter
}

// poll fetches the counter unconditionally, keeping the stale value on error.
func (s *countSource) poll(ctx context.Context) {
	value, err := s.fetch(ctx)
	if err != nil {
		log.Printf("[Badge] %s fetch failed: %v", s.name, err)
		return
	}

	s.mu.Lock()
	s.value = value
	s.fetchedAt = s.now()
	s.fetched = true
	s.mu.Unlock()
}

// refresh fetches the counter unless the cached value is still fresh.
func (s *countSource) refresh(ctx context.Context) {
	if s.fresh() {
		return
	}
	s.poll(ctx)
}

func (s *countSource) current() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// BadgeCountPoller merges the unread-notification and new-contact counters
// into one display-ready object, refreshed on a fixed cadence. The two
// sources are uncorrelated; a failure in one never blocks the other.
type BadgeCountPoller struct {
	notifications *countSource
	contacts      *countSource
	interval      time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

// NewBadgeCountPoller constructs a poller over the two counter sources.
func NewBadgeCountPoller(notifications, contacts CountFunc, interval, staleWindow time.Duration) *BadgeCountPoller {
	return &BadgeCountPoller{
		notifications: newCountSource("notifications", notifications, staleWindow),
		contacts:      newCountSource("contacts", contacts, staleWindow),
		interval:      interval,
		done:          make(chan struct{}),
	}
}

// Start launches the polling loop. The first poll happens immediately.
func (p *BadgeCountPoller) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	go func() {
		defer close(p.done)

		p.pollBoth(ctx)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.pollBoth(ctx)
			}
		}
	}()
}

// Stop tears down the polling loop.
func (p *BadgeCountPoller) Stop() {
	if p.cancel != nil {
		p.cancel()
		<-p.done
	}
}

func (p *BadgeCountPoller) pollBoth(ctx context.Context) {
	var wg sync.WaitGroup
	for _, src := range []*countSource{p.notifications, p.contacts} {
		wg.Add(1)
		go func(src *countSource) {
			defer wg.Done()
			src.poll(ctx)
		}(src)
	}
	wg.Wait()
}

// Refresh re-reads any counter whose cached value has gone stale. A call
// inside the staleness window is served from cache.
func (p *BadgeCountPoller) Refresh(ctx context.Context) {
	p.notifications.refresh(ctx)
	p.contacts.refresh(ctx)
}

// Counts returns the merged badge counters.
func (p *BadgeCountPoller) Counts() models.BadgeCounts {
	notifications := p.notifications.current()
	contacts := p.contacts.current()
	return models.BadgeCounts{
		Notifications: notifications,
		Contacts:      contacts,
		Total:         notifications + contacts,
	}
}
