package reservation

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Domenick1991/airbooking-desk/internal/domain"
)

// memoryStore keeps sessions encoded the way Redis does and gives locks and
// markers SETNX semantics.
type memoryStore struct {
	mu       sync.Mutex
	sessions map[string][]byte
	keys     map[string]bool
	stale    map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		sessions: map[string][]byte{},
		keys:     map[string]bool{},
		stale:    map[string][]byte{},
	}
}

// snapshotNextRead makes the next GetSession for id return the session as
// stored right now, as a reader that raced ahead would see it.
func (m *memoryStore) snapshotNextRead(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stale[id] = append([]byte(nil), m.sessions[id]...)
}

func (m *memoryStore) GetSession(_ context.Context, id string) (*domain.BookingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.stale[id]
	if ok {
		delete(m.stale, id)
	} else if data, ok = m.sessions[id]; !ok {
		return nil, domain.ErrNotFound
	}
	var session domain.BookingSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (m *memoryStore) SaveSession(_ context.Context, session *domain.BookingSession, _ time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = data
	return nil
}

func (m *memoryStore) setNX(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keys[key] {
		return false
	}
	m.keys[key] = true
	return true
}

func (m *memoryStore) del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
}

func (m *memoryStore) AcquireSubmitLock(_ context.Context, sessionID string, _ time.Duration) (bool, error) {
	return m.setNX("lock:" + sessionID), nil
}

func (m *memoryStore) ReleaseSubmitLock(_ context.Context, sessionID string) error {
	m.del("lock:" + sessionID)
	return nil
}

func (m *memoryStore) MarkPaymentReturned(_ context.Context, reservationIDTemp, status string, _ time.Duration) (bool, error) {
	return m.setNX("payment:" + reservationIDTemp + ":" + status), nil
}

func (m *memoryStore) ClearPaymentReturned(_ context.Context, reservationIDTemp, status string) error {
	m.del("payment:" + reservationIDTemp + ":" + status)
	return nil
}

var _ SessionStore = (*memoryStore)(nil)
