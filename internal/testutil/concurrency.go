package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/vk/varflow/internal/dataset"
	"github.com/vk/varflow/internal/registry"
)

// ExecutionRecord holds the start and end times of one handler call.
type ExecutionRecord struct {
	Start time.Time
	End   time.Time
	Rows  int
}

// MockSleeperModule is a shared, self-contained module for concurrency tests.
// Its row-local "sleeper" handler copies its single input after sleeping and
// records when each call ran.
type MockSleeperModule struct {
	mu            sync.Mutex
	records       []ExecutionRecord
	sleepDuration time.Duration
}

// NewMockSleeperModule creates a new sleeper module for testing.
func NewMockSleeperModule(sleep time.Duration) *MockSleeperModule {
	return &MockSleeperModule{sleepDuration: sleep}
}

// Register registers the "sleeper" handler.
func (m *MockSleeperModule) Register(r *registry.Registry) {
	r.Register("sleeper", &registry.Handler{
		Fn: registry.Unary(func(ctx context.Context, col dataset.Column) (dataset.Column, error) {
			start := time.Now()
			select {
			case <-time.After(m.sleepDuration):
			case <-ctx.Done():
				return nil, ctx.Err()
			}

			m.mu.Lock()
			m.records = append(m.records, ExecutionRecord{Start: start, End: time.Now(), Rows: len(col)})
			m.mu.Unlock()

			out := make(dataset.Column, len(col))
			copy(out, col)
			return out, nil
		}),
		Arity:       1,
		RowLocal:    true,
		Description: "Copies its input after a delay.",
	})
}

// Records returns a copy of the calls recorded so far.
func (m *MockSleeperModule) Records() []ExecutionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutionRecord(nil), m.records...)
}

// Overlapped reports whether any two recorded calls ran at the same time.
func (m *MockSleeperModule) Overlapped() bool {
	records := m.Records()
	for i := range records {
		for j := i + 1; j < len(records); j++ {
			a, b := records[i], records[j]
			if a.Start.Before(b.End) && b.Start.Before(a.End) {
				return true
			}
		}
	}
	return false
}
