package services

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/example/tableside/internal/models"
)

// ErrCartNotFound is returned for an unknown cart session id.
var ErrCartNotFound = errors.New("cart session not found")

// CartStore holds the ephemeral per-session carts. Sessions live in process
// memory only and are never shared across independent logical sessions.
type CartStore struct {
	mu    sync.Mutex
	carts map[string]*models.Cart
}

// NewCartStore constructs an empty CartStore.
func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[string]*models.Cart)}
}

// CreateSession allocates a new empty cart and returns its session id.
func (s *CartStore) CreateSession() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.carts[id] = &models.Cart{}
	return id
}

// Snapshot returns a copy of the cart contents for a session.
func (s *CartStore) Snapshot(sessionID string) (models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[sessionID]
	if !ok {
		return models.Cart{}, ErrCartNotFound
	}

	copied := models.Cart{Items: make([]models.CartItem, len(cart.Items))}
	copy(copied.Items, cart.Items)
	return copied, nil
}

// Mutate runs fn against the session's cart under the store lock.
func (s *CartStore) Mutate(sessionID string, fn func(cart *models.Cart)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[sessionID]
	if !ok {
		return ErrCartNotFound
	}
	fn(cart)
	return nil
}

// Drop removes the session entirely.
func (s *CartStore) Drop(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
}
