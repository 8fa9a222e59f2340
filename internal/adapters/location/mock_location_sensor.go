package location

import (
	"attendance-service/internal/domain"
	"context"
	"sync"
)

// MockLocationSensor returns a canned fix or error. When Block is set it
// waits for ctx to end instead, which is how tests simulate a device that
// never answers.
type MockLocationSensor struct {
	Fix   domain.Fix
	Err   error
	Block bool

	mu       sync.Mutex
	calls    int
	released bool
}

func NewMockLocationSensor(fix domain.Fix) *MockLocationSensor {
	return &MockLocationSensor{Fix: fix}
}

func (m *MockLocationSensor) CurrentLocation(ctx context.Context, _ domain.LocationOptions) (domain.Fix, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.Block {
		<-ctx.Done()
		m.mu.Lock()
		m.released = true
		m.mu.Unlock()
		return domain.Fix{}, ctx.Err()
	}

	if m.Err != nil {
		return domain.Fix{}, m.Err
	}
	return m.Fix, nil
}

func (m *MockLocationSensor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Released reports whether a blocked request observed its context ending.
func (m *MockLocationSensor) Released() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.released
}
