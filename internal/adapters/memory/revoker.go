package memory

import (
	"context"
	"sync"
	"time"
)

// Revoker is an in-process TokenRevoker for runs without Redis.
type Revoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewRevoker() *Revoker {
	return &Revoker{revoked: make(map[string]time.Time)}
}

func (r *Revoker) Revoke(_ context.Context, tokenID string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if until.IsZero() {
		until = time.Now().Add(24 * time.Hour)
	}
	r.revoked[tokenID] = until
	return nil
}

func (r *Revoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	until, ok := r.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if time.Now().After(until) {
		delete(r.revoked, tokenID)
		return false, nil
	}
	return true, nil
}
