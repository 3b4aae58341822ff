package mocks

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/google/uuid"
)

// MockEventStore keeps one ordered log for every aggregate and records each
// Append. Set the *Err fields to make the matching operations fail.
type MockEventStore struct {
	mu        sync.Mutex
	log       []store.Event
	versions  map[string]int
	snapshots map[string]store.Snapshot

	AppendCalls       []AppendCall
	SaveSnapshotCalls []store.Snapshot
	AppendErr         error
	GetEventsErr      error
	SnapshotErr       error
}

type AppendCall struct {
	AggregateID   string
	AggregateType string
	EventType     string
	Data          any
}

func NewMockEventStore() *MockEventStore {
	m := &MockEventStore{}
	m.Reset()
	return m
}

func (m *MockEventStore) Append(_ context.Context, aggregateID, aggregateType, eventType string, data any) (*store.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AppendCalls = append(m.AppendCalls, AppendCall{aggregateID, aggregateType, eventType, data})
	if m.AppendErr != nil {
		return nil, m.AppendErr
	}
	event, err := m.record(aggregateID, aggregateType, eventType, data)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// AddEvent seeds history without counting as an Append.
func (m *MockEventStore) AddEvent(aggregateID, aggregateType, eventType string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, err := m.record(aggregateID, aggregateType, eventType, data)
	return err
}

func (m *MockEventStore) record(aggregateID, aggregateType, eventType string, data any) (store.Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return store.Event{}, err
	}
	m.versions[aggregateID]++
	event := store.Event{
		ID:            uuid.NewString(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Data:          raw,
		Timestamp:     time.Now().UTC(),
		Version:       m.versions[aggregateID],
	}
	m.log = append(m.log, event)
	return event, nil
}

func (m *MockEventStore) GetEvents(ctx context.Context, aggregateID string) ([]store.Event, error) {
	return m.GetEventsFromVersion(ctx, aggregateID, 0)
}

func (m *MockEventStore) GetEventsFromVersion(_ context.Context, aggregateID string, fromVersion int) ([]store.Event, error) {
	return m.filter(func(e store.Event) bool {
		return e.AggregateID == aggregateID && e.Version > fromVersion
	})
}

// GetAllEvents returns the log in append order.
func (m *MockEventStore) GetAllEvents(_ context.Context) ([]store.Event, error) {
	return m.filter(func(store.Event) bool { return true })
}

func (m *MockEventStore) filter(keep func(store.Event) bool) ([]store.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetEventsErr != nil {
		return nil, m.GetEventsErr
	}
	var out []store.Event
	for _, e := range m.log {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockEventStore) SaveSnapshot(_ context.Context, snapshot *store.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveSnapshotCalls = append(m.SaveSnapshotCalls, *snapshot)
	if m.SnapshotErr != nil {
		return m.SnapshotErr
	}
	m.snapshots[snapshot.AggregateID] = *snapshot
	return nil
}

func (m *MockEventStore) GetSnapshot(_ context.Context, aggregateID string) (*store.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SnapshotErr != nil {
		return nil, m.SnapshotErr
	}
	if snap, ok := m.snapshots[aggregateID]; ok {
		return &snap, nil
	}
	return nil, nil
}

func (m *MockEventStore) SetSnapshot(snapshot store.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snapshot.AggregateID] = snapshot
}

func (m *MockEventStore) AppendCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.AppendCalls)
}

// Reset drops all history, recorded calls and injected errors.
func (m *MockEventStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log = nil
	m.versions = make(map[string]int)
	m.snapshots = make(map[string]store.Snapshot)
	m.AppendCalls = nil
	m.SaveSnapshotCalls = nil
	m.AppendErr, m.GetEventsErr, m.SnapshotErr = nil, nil, nil
}
