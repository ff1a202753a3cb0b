package testutil

import (
	"context"
	"fmt"
	"strings"
	"surveycore/internal/dispatch"
	"surveycore/internal/providers"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (e LogEntry) Message() string {
	return fmt.Sprintf(e.Format, e.Args...)
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Contains reports whether a rendered message at level contains substr.
func (m *MockLogger) Contains(level, substr string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Logs {
		if e.Level == level && strings.Contains(e.Message(), substr) {
			return true
		}
	}
	return false
}

// MockMetrics implements providers.MetricsProviderInterface and counts calls.
type MockMetrics struct {
	mu              sync.Mutex
	Admissions      map[string]int
	GateRejections  map[string]int
	AutosaveBatches []int
	Submissions     int
	DroppedIntents  int
	SessionHits     int
	SessionMisses   int
	CacheHits       int
	CacheMisses     int
	Persistence     int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{Admissions: map[string]int{}, GateRejections: map[string]int{}}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *MockMetrics) IncSessionHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SessionHits++
}

func (m *MockMetrics) IncSessionMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SessionMisses++
}

func (m *MockMetrics) IncAdmissions(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Admissions[outcome]++
}

func (m *MockMetrics) ObserveAutosaveBatch(size int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AutosaveBatches = append(m.AutosaveBatches, size)
}

func (m *MockMetrics) IncSubmissions() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Submissions++
}

func (m *MockMetrics) IncGateRejections(scope string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GateRejections[scope]++
}

func (m *MockMetrics) IncDroppedIntents() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DroppedIntents++
}

func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Persistence++
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[providers.ReportKey][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[providers.ReportKey][]byte)}
}

func (m *MockCache) Get(key providers.ReportKey) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key providers.ReportKey, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	return append([]byte(nil), val...), nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	return append([]byte(nil), val...), nil
}

func (m *MockCompressor) Close() {}

// MockDispatcher implements dispatch.DispatcherInterface and keeps every intent.
type MockDispatcher struct {
	mu      sync.Mutex
	Intents []dispatch.Intent
	Reject  bool
}

func (m *MockDispatcher) Dispatch(intent dispatch.Intent) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Reject {
		return false
	}
	m.Intents = append(m.Intents, intent)
	return true
}

func (m *MockDispatcher) Pending() int   { return 0 }
func (m *MockDispatcher) Dropped() int64 { return 0 }

func (m *MockDispatcher) OfKind(kind dispatch.IntentKind) []dispatch.Intent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []dispatch.Intent
	for _, in := range m.Intents {
		if in.Kind == kind {
			out = append(out, in)
		}
	}
	return out
}

// MockSessionStore implements session.StoreInterface over plain maps.
// Evict simulates the backend dropping an entry.
type MockSessionStore struct {
	mu        sync.Mutex
	byToken   map[string]string
	byResp    map[string]string
	PutErr    error
	PutCalls  int
	Deletions []string
}

func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{byToken: map[string]string{}, byResp: map[string]string{}}
}

func (m *MockSessionStore) Put(_ context.Context, tokenID, responseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutCalls++
	if m.PutErr != nil {
		return m.PutErr
	}
	m.byToken[tokenID] = responseID
	m.byResp[responseID] = tokenID
	return nil
}

func (m *MockSessionStore) Lookup(_ context.Context, tokenID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byToken[tokenID]
	return id, ok
}

func (m *MockSessionStore) TokenFor(_ context.Context, responseID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byResp[responseID]
	return id, ok
}

func (m *MockSessionStore) Delete(_ context.Context, responseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deletions = append(m.Deletions, responseID)
	if tokenID, ok := m.byResp[responseID]; ok {
		delete(m.byToken, tokenID)
	}
	delete(m.byResp, responseID)
	return nil
}

func (m *MockSessionStore) Evict(tokenID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if responseID, ok := m.byToken[tokenID]; ok {
		delete(m.byResp, responseID)
	}
	delete(m.byToken, tokenID)
}

func (m *MockSessionStore) Close() error { return nil }

// MockClock is a settable time source.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewMockClock(now time.Time) *MockClock {
	return &MockClock{now: now}
}

func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
