package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/example/tableside/internal/models"
)

// TrackerView is the render-ready snapshot of a tracking session.
type TrackerView struct {
	OrderID          string             `json:"order_id"`
	NotFound         bool               `json:"not_found"`
	Status           models.OrderStatus `json:"status,omitempty"`
	Label            string             `json:"label,omitempty"`
	Description      string             `json:"description,omitempty"`
	Icon             string             `json:"icon,omitempty"`
	ProgressionIndex int                `json:"progression_index"`
	ProgressPercent  float64            `json:"progress_percent"`
	ShowSurvey       bool               `json:"show_survey"`
	SurveySubmitted  bool               `json:"survey_submitted"`
	Order            *models.Order      `json:"order,omitempty"`
}

// TrackerSession polls one order's status and owns the per-session survey
// prompt state. All transitions are server-driven; the session only observes.
type TrackerSession struct {
	orderID      string
	fetcher      OrderFetcher
	pollInterval time.Duration
	surveyDelay  time.Duration

	// schedule arms a deferred callback and returns its cancel func. Tests
	// swap it out to drive the survey delay by hand.
	schedule func(d time.Duration, fn func()) func()

	mu              sync.Mutex
	order           *models.Order
	previousStatus  models.OrderStatus
	observed        bool
	surveyShown     bool
	showSurvey      bool
	surveySubmitted bool
	notFound        bool
	cancelSurvey    func()

	cancel context.CancelFunc
	done   chan struct{}
}

// NewTrackerSession constructs a session for one order id. Call Start to
// begin polling.
func NewTrackerSession(orderID string, fetcher OrderFetcher, pollInterval, surveyDelay time.Duration) *TrackerSession {
	return &TrackerSession{
		orderID:      orderID,
		fetcher:      fetcher,
		pollInterval: pollInterval,
		surveyDelay:  surveyDelay,
		schedule: func(d time.Duration, fn func()) func() {
			t := time.AfterFunc(d, fn)
			return func() { t.Stop() }
		},
		done: make(chan struct{}),
	}
}

// Start launches the polling loop. The first poll happens immediately.
func (s *TrackerSession) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	go func() {
		defer close(s.done)

		if !s.tick(ctx) {
			return
		}

		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !s.tick(ctx) {
					return
				}
			}
		}
	}()
}

// Stop tears down the polling loop and any armed survey timer.
func (s *TrackerSession) Stop() {
	if s.cancel != nil {
		s.cancel()
	}

	s.mu.Lock()
	if s.cancelSurvey != nil {
		s.cancelSurvey()
		s.cancelSurvey = nil
	}
	s.mu.Unlock()
}

// Done is closed once the polling loop has exited.
func (s *TrackerSession) Done() <-chan struct{} {
	return s.done
}

// tick performs one poll. It returns false when polling should cease, which
// only happens on a not-found order; any other failure is swallowed and the
// next tick tries again.
func (s *TrackerSession) tick(ctx context.Context) bool {
	order, err := s.fetcher.GetOrder(ctx, s.orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			s.mu.Lock()
			s.notFound = true
			s.mu.Unlock()
			return false
		}
		log.Printf("[Tracker] poll failed for order %s: %v", s.orderID, err)
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	changed := !s.observed || order.Status != s.previousStatus
	if changed && order.Status.TriggersSurvey() && !s.surveyShown && !s.surveySubmitted {
		s.surveyShown = true
		s.cancelSurvey = s.schedule(s.surveyDelay, s.flagSurvey)
	}

	s.order = order
	s.previousStatus = order.Status
	s.observed = true
	return true
}

func (s *TrackerSession) flagSurvey() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.surveySubmitted {
		return
	}
	s.showSurvey = true
}

// MarkSurveySubmitted records a successful survey submission and retires the
// prompt for the rest of the session.
func (s *TrackerSession) MarkSurveySubmitted() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.surveySubmitted = true
	s.showSurvey = false
	if s.cancelSurvey != nil {
		s.cancelSurvey()
		s.cancelSurvey = nil
	}
}

// Snapshot returns the current render-ready view model.
func (s *TrackerSession) Snapshot() TrackerView {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := TrackerView{
		OrderID:          s.orderID,
		NotFound:         s.notFound,
		ProgressionIndex: -1,
		ShowSurvey:       s.showSurvey,
		SurveySubmitted:  s.surveySubmitted,
	}

	if s.order == nil {
		return view
	}

	display := s.order.Status.Display()
	view.Status = s.order.Status
	view.Label = display.Label
	view.Description = display.Description
	view.Icon = display.Icon
	view.ProgressionIndex = s.order.Status.ProgressionIndex()
	view.ProgressPercent = s.order.Status.ProgressPercent()
	view.Order = s.order
	return view
}

// TrackerManager holds the active tracking sessions keyed by order id.
type TrackerManager struct {
	fetcher      OrderFetcher
	pollInterval time.Duration
	surveyDelay  time.Duration

	mu       sync.Mutex
	sessions map[string]*TrackerSession
}

// NewTrackerManager constructs a TrackerManager.
func NewTrackerManager(fetcher OrderFetcher, pollInterval, surveyDelay time.Duration) *TrackerManager {
	return &TrackerManager{
		fetcher:      fetcher,
		pollInterval: pollInterval,
		surveyDelay:  surveyDelay,
		sessions:     make(map[string]*TrackerSession),
	}
}

// Open returns the session for the order id, starting a new one if absent.
func (m *TrackerManager) Open(ctx context.Context, orderID string) *TrackerSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session, ok := m.sessions[orderID]; ok {
		return session
	}

	session := NewTrackerSession(orderID, m.fetcher, m.pollInterval, m.surveyDelay)
	m.sessions[orderID] = session
	session.Start(ctx)
	return session
}

// Get returns the session for the order id, if one is open.
func (m *TrackerManager) Get(orderID string) (*TrackerSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[orderID]
	return session, ok
}

// Close stops and removes the session for the order id.
func (m *TrackerManager) Close(orderID string) {
	m.mu.Lock()
	session, ok := m.sessions[orderID]
	delete(m.sessions, orderID)
	m.mu.Unlock()

	if ok {
		session.Stop()
	}
}

// CloseAll stops every open session. Used on shutdown.
func (m *TrackerManager) CloseAll() {
	m.mu.Lock()
	sessions := make([]*TrackerSession, 0, len(m.sessions))
	for _, session := range m.sessions {
		sessions = append(sessions, session)
	}
	m.sessions = make(map[string]*TrackerSession)
	m.mu.Unlock()

	for _, session := range sessions {
		session.Stop()
	}
}
