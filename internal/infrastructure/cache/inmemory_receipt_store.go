package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hotteokboki/lseed-project/internal/domain/shared"
)

type receiptEntry struct {
	body      []byte
	expiresAt time.Time
}

func (e receiptEntry) live(now time.Time) bool {
	return now.Before(e.expiresAt)
}

// InMemoryReceiptStore implements shared.ReceiptStore with a map. Receipts are
// not shared between instances, so it suits single-instance deployments and
// tests.
type InMemoryReceiptStore struct {
	mu        sync.RWMutex
	entries   map[string]receiptEntry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	now       func() time.Time
}

// NewInMemoryReceiptStore creates the store and starts its expiry sweeper
func NewInMemoryReceiptStore() *InMemoryReceiptStore {
	s := &InMemoryReceiptStore{
		entries:  make(map[string]receiptEntry),
		stopChan: make(chan struct{}),
		now:      time.Now,
	}
	s.wg.Add(1)
	go s.cleanupLoop(5 * time.Minute)
	return s
}

// Save stores a copy of receipt unless a live receipt exists for key
func (s *InMemoryReceiptStore) Save(_ context.Context, key string, receipt []byte, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.entries[key]; ok && e.live(now) {
		return false, nil
	}
	s.entries[key] = receiptEntry{
		body:      append([]byte(nil), receipt...),
		expiresAt: now.Add(ttl),
	}
	return true, nil
}

// Load returns a copy of the live receipt for key
func (s *InMemoryReceiptStore) Load(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok || !e.live(s.now()) {
		return nil, false, nil
	}
	return append([]byte(nil), e.body...), true, nil
}

// Close stops the sweeper. Safe to call more than once.
func (s *InMemoryReceiptStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryReceiptStore) cleanupLoop(every time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryReceiptStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, e := range s.entries {
		if !e.live(now) {
			delete(s.entries, key)
		}
	}
}

// Size returns the number of stored receipts, expired ones included
func (s *InMemoryReceiptStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

var _ shared.ReceiptStore = (*InMemoryReceiptStore)(nil)
