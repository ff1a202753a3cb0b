package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"surveycore/internal/providers"
	"surveycore/internal/structures"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testutil imports this package, so the mocks live here.
type mockLogger struct {
	mu       sync.Mutex
	messages []string
}

func (m *mockLogger) add(level, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, level+": "+fmt.Sprintf(format, args...))
}

func (m *mockLogger) Errorf(_ providers.TypeEnum, f string, a ...interface{}) { m.add("error", f, a...) }
func (m *mockLogger) Warnf(_ providers.TypeEnum, f string, a ...interface{})  { m.add("warn", f, a...) }
func (m *mockLogger) Debugf(_ providers.TypeEnum, f string, a ...interface{}) { m.add("debug", f, a...) }
func (m *mockLogger) Infof(_ providers.TypeEnum, f string, a ...interface{})  { m.add("info", f, a...) }
func (m *mockLogger) Fatalf(_ providers.TypeEnum, f string, a ...interface{}) { m.add("fatal", f, a...) }
func (m *mockLogger) Close()                                              {}

func (m *mockLogger) all() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return strings.Join(m.messages, "\n")
}

type mockMetrics struct {
	providers.MetricsProviderInterface
	mu      sync.Mutex
	dropped int
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{MetricsProviderInterface: providers.NewNoopMetrics()}
}

func (m *mockMetrics) IncDroppedIntents() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropped++
}

type recordingSink struct {
	mu     sync.Mutex
	sent   []Intent
	fail   error
	gate   chan struct{}
	closed bool
}

func (s *recordingSink) Send(_ context.Context, intent Intent) error {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.sent = append(s.sent, intent)
	return nil
}

func (s *recordingSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func TestAsyncDispatcher_DeliversInOrder(t *testing.T) {
	sink := &recordingSink{}
	d := NewAsyncDispatcher(sink, 8, &mockLogger{}, newMockMetrics())

	for i := 0; i < 5; i++ {
		assert.True(t, d.Dispatch(Intent{Kind: KindReminder, CampaignID: fmt.Sprintf("c-%d", i)}))
	}
	d.Close()

	require.Equal(t, 5, sink.count())
	assert.Equal(t, "c-0", sink.sent[0].CampaignID)
	assert.Equal(t, "c-4", sink.sent[4].CampaignID)
	assert.False(t, sink.sent[0].CreatedAt.IsZero())
	assert.True(t, sink.closed)
}

func TestAsyncDispatcher_DropsWhenFull(t *testing.T) {
	sink := &recordingSink{gate: make(chan struct{})}
	metrics := newMockMetrics()
	logger := &mockLogger{}
	d := NewAsyncDispatcher(sink, 1, logger, metrics)

	// the worker takes the first intent and blocks in Send, the second fills
	// the buffer, the third has nowhere to go
	require.True(t, d.Dispatch(Intent{Kind: KindReminder, CampaignID: "c-1"}))
	require.Eventually(t, func() bool { return d.Pending() == 0 }, time.Second, time.Millisecond)
	require.True(t, d.Dispatch(Intent{Kind: KindReminder, CampaignID: "c-2"}))

	start := time.Now()
	assert.False(t, d.Dispatch(Intent{Kind: KindReminder, CampaignID: "c-3"}))
	assert.Less(t, time.Since(start), 100*time.Millisecond, "dispatch never blocks")

	assert.Equal(t, int64(1), d.Dropped())
	assert.Equal(t, 1, metrics.dropped)
	assert.Contains(t, logger.all(), "Dropped survey.reminder intent")

	close(sink.gate)
	d.Close()
	assert.Equal(t, 2, sink.count())
}

func TestAsyncDispatcher_SinkErrorsAreLogged(t *testing.T) {
	sink := &recordingSink{fail: errors.New("broker down")}
	logger := &mockLogger{}
	d := NewAsyncDispatcher(sink, 4, logger, newMockMetrics())

	assert.True(t, d.Dispatch(Intent{Kind: KindCampaignClosed, CampaignID: "c-1"}))
	d.Close()

	assert.Contains(t, logger.all(), "broker down")
}

func TestAsyncDispatcher_DispatchAfterClose(t *testing.T) {
	d := NewAsyncDispatcher(&recordingSink{}, 4, &mockLogger{}, newMockMetrics())
	d.Close()
	d.Close()

	assert.False(t, d.Dispatch(Intent{Kind: KindReminder}))
	assert.Equal(t, int64(1), d.Dropped())
}

func TestLogSink_DoesNotLogData(t *testing.T) {
	logger := &mockLogger{}
	sink := NewLogSink(logger)

	require.NoError(t, sink.Send(context.Background(), Intent{
		Kind:       KindInvitation,
		Recipient:  "participant-7",
		CampaignID: "c-1",
		Data:       map[string]string{"link": "https://survey.example/s/SECRET"},
	}))

	out := logger.all()
	assert.Contains(t, out, "survey.invitation")
	assert.NotContains(t, out, "SECRET")
	assert.NotContains(t, out, "participant-7")
}

type mockWriter struct {
	msgs   []kafka.Message
	closed bool
}

func (w *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *mockWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaSink_Send(t *testing.T) {
	w := &mockWriter{}
	sink := &KafkaSink{writer: w, topic: "survey-intents"}
	at := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, sink.Send(context.Background(), Intent{Kind: KindResponseCompleted, CampaignID: "c-9", CreatedAt: at}))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "survey-intents", msg.Topic)
	assert.Equal(t, []byte("c-9"), msg.Key)
	assert.Equal(t, at, msg.Time)
	assert.Equal(t, "kind", msg.Headers[0].Key)

	var decoded Intent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, KindResponseCompleted, decoded.Kind)

	require.NoError(t, sink.Close())
	assert.True(t, w.closed)
}

func TestNewKafkaSink_Validation(t *testing.T) {
	_, err := NewKafkaSink(nil, "topic")
	assert.Error(t, err)
	_, err = NewKafkaSink([]string{"localhost:9092"}, "")
	assert.Error(t, err)

	sink, err := NewKafkaSink([]string{"localhost:9092"}, "topic")
	require.NoError(t, err)
	assert.NoError(t, sink.Close())
}

type mockSQS struct {
	inputs []*sqs.SendMessageInput
}

func (m *mockSQS) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	m.inputs = append(m.inputs, in)
	return &sqs.SendMessageOutput{}, nil
}

func TestSQSSink_Send(t *testing.T) {
	client := &mockSQS{}
	sink := &SQSSink{client: client, queueURL: "https://sqs.local/queue"}

	require.NoError(t, sink.Send(context.Background(), Intent{Kind: KindReminder, CampaignID: "c-2"}))
	require.Len(t, client.inputs, 1)

	in := client.inputs[0]
	assert.Equal(t, "https://sqs.local/queue", *in.QueueUrl)
	assert.Contains(t, *in.MessageBody, `"kind":"survey.reminder"`)
	assert.Equal(t, "survey.reminder", *in.MessageAttributes["kind"].StringValue)
}

func TestNewDispatcher_Drivers(t *testing.T) {
	logger := &mockLogger{}

	d, cleanup, err := NewDispatcher(&structures.Config{Dispatch: structures.DispatchConfig{Driver: "log", Buffer: 2}}, logger, newMockMetrics())
	require.NoError(t, err)
	assert.True(t, d.Dispatch(Intent{Kind: KindReminder, CampaignID: "c-1"}))
	cleanup()

	_, _, err = NewDispatcher(&structures.Config{Dispatch: structures.DispatchConfig{Driver: "kafka"}}, logger, newMockMetrics())
	assert.Error(t, err)

	_, _, err = NewDispatcher(&structures.Config{Dispatch: structures.DispatchConfig{Driver: "sqs"}}, logger, newMockMetrics())
	assert.Error(t, err)

	_, _, err = NewDispatcher(&structures.Config{Dispatch: structures.DispatchConfig{Driver: "smtp"}}, logger, newMockMetrics())
	assert.Error(t, err)
}
