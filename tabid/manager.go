// Package tabid manages the tab-scoped session identifier.
//
// The portal scopes server-side sessions to a single "tab": an ephemeral
// identifier generated client-side at sign-in and carried on every
// authenticated request. The identifier's presence is also the sole local
// signal that a sign-in happened, which is what the navigation guard keys
// off.
package tabid

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/itportal/go-portal-client/storage"
)

// Manager guarantees a stable tab identifier is available before any
// authenticated call is made. It is safe to call Ensure repeatedly; only
// the first call in a tab's lifetime generates anything.
type Manager struct {
	store   storage.Store
	nowTime func() time.Time
	random  func() float64
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// WithRandom sets the random fraction source (primarily for testing)
func WithRandom(randomFunc func() float64) ManagerOption {
	return func(m *Manager) {
		m.random = randomFunc
	}
}

// NewManager creates a Manager persisting into the given tab-scoped store.
func NewManager(store storage.Store, options ...ManagerOption) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("[NewManager] store is required")
	}

	m := &Manager{
		store:   store,
		nowTime: time.Now,
		random:  rand.Float64,
	}

	for _, opt := range options {
		opt(m)
	}

	return m, nil
}

// Ensure returns the tab identifier, generating and persisting one if the
// store holds none. Idempotent: repeated calls without an intervening
// Clear return the same identifier.
func (m *Manager) Ensure() string {
	if id, err := m.store.Get(storage.KeyTabID); err == nil && id != "" {
		return id
	}

	id := m.generate()
	// Store writes cannot fail for the ephemeral store; a durable store
	// failing here still leaves the caller with a usable identifier.
	_ = m.store.Set(storage.KeyTabID, id)
	return id
}

// Current returns the stored identifier, or "" when none exists. It never
// generates one.
func (m *Manager) Current() string {
	id, err := m.store.Get(storage.KeyTabID)
	if err != nil {
		return ""
	}
	return id
}

// Clear removes the stored identifier. Called after logout or an
// unrecoverable session failure.
func (m *Manager) Clear() {
	_ = m.store.Delete(storage.KeyTabID)
}

// generate builds a "{unixMillis}-{randomFraction}" identifier. The
// fraction keeps its leading "0." so identifiers match the shape the
// server's session table was seeded with.
func (m *Manager) generate() string {
	millis := m.nowTime().UnixMilli()
	fraction := strconv.FormatFloat(m.random(), 'f', 17, 64)
	return fmt.Sprintf("%d-%s", millis, fraction)
}
