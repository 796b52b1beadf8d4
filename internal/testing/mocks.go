package testing

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aristath/reinsim/internal/events"
	"github.com/aristath/reinsim/internal/modules/export"
)

// MockObjectStore is an in-memory implementation of export.ObjectStore
type MockObjectStore struct {
	mu      sync.RWMutex
	objects map[string]mockObject
	err     error
}

type mockObject struct {
	data        []byte
	contentType string
	modified    time.Time
}

// NewMockObjectStore creates an empty object store
func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{objects: make(map[string]mockObject)}
}

// SetError makes every subsequent call fail with err (nil clears it)
func (m *MockObjectStore) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Upload stores the body under key
func (m *MockObjectStore) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = mockObject{data: data, contentType: contentType, modified: time.Now()}
	return nil
}

// List returns the objects under prefix sorted by key
func (m *MockObjectStore) List(ctx context.Context, prefix string) ([]export.ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}

	out := make([]export.ObjectInfo, 0)
	for key, obj := range m.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, export.ObjectInfo{Key: key, Size: int64(len(obj.data)), LastModified: obj.modified})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Delete removes key
func (m *MockObjectStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.objects, key)
	return nil
}

// Object returns the stored bytes and content type of key
func (m *MockObjectStore) Object(key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj.data, obj.contentType, ok
}

// MockEventEmitter records typed events
type MockEventEmitter struct {
	mu     sync.Mutex
	events []events.EventData
}

// EmitTyped records data
func (m *MockEventEmitter) EmitTyped(module string, data events.EventData) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, data)
}

// EmitError records an ErrorEventData
func (m *MockEventEmitter) EmitError(module string, err error, context map[string]interface{}) {
	m.EmitTyped(module, &events.ErrorEventData{Error: err.Error(), Context: context})
}

// Events returns the recorded events in emission order
func (m *MockEventEmitter) Events() []events.EventData {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]events.EventData, len(m.events))
	copy(out, m.events)
	return out
}

// Types returns the types of the recorded events
func (m *MockEventEmitter) Types() []events.EventType {
	recorded := m.Events()
	out := make([]events.EventType, len(recorded))
	for i, e := range recorded {
		out[i] = e.EventType()
	}
	return out
}
