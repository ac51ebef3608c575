package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.mu.Lock()
	w.msgs = append(w.msgs, msgs...)
	w.mu.Unlock()
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type fakeReader struct {
	queue     []kafka.Message
	committed []int64
	closed    int
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if err := ctx.Err(); err != nil {
		return kafka.Message{}, err
	}
	if len(r.queue) == 0 {
		return kafka.Message{}, io.EOF
	}
	m := r.queue[0]
	r.queue = r.queue[1:]
	return m, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.closed++
	return nil
}

func encoded(t *testing.T, ev *Event) []byte {
	t.Helper()
	b, err := ev.Encode()
	require.NoError(t, err)
	return b
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "catalog.contact.created", Topic("contact", "created"))
	assert.Equal(t, "catalog.dlq.catalog.contact.created", DeadLetterTopic("catalog.contact.created"))
}

func TestEventDecode(t *testing.T) {
	ev, err := NewEvent("contact.created", "contact", "c-1", "catalog-api", map[string]string{"status": "pending"})
	require.NoError(t, err)
	ev.WithCorrelationID("corr-1").WithMetadata("actor", "admin")

	got, err := DecodeEvent(encoded(t, ev))
	require.NoError(t, err)
	assert.Equal(t, ev.ID, got.ID)
	assert.Equal(t, "corr-1", got.CorrelationID)
	assert.Equal(t, "admin", got.Metadata["actor"])

	var payload map[string]string
	require.NoError(t, got.Decode(&payload))
	assert.Equal(t, "pending", payload["status"])

	_, err = DecodeEvent([]byte(`{"event_id":"x"}`))
	assert.Error(t, err)
	_, err = DecodeEvent([]byte(`not json`))
	assert.Error(t, err)
}

func TestProducerPublish(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, nil, quietLogger())
	ev, err := NewEvent("contact.created", "contact", "c-9", "catalog-api", struct{}{})
	require.NoError(t, err)
	ev.WithCorrelationID("abc")

	require.NoError(t, p.Publish(context.Background(), "catalog.contact.created", ev))
	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "c-9", string(msg.Key))
	assert.Equal(t, "catalog.contact.created", msg.Topic)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "contact.created", headers["event_type"])
	assert.Equal(t, "abc", headers["correlation_id"])

	w.err = errors.New("broker down")
	assert.ErrorContains(t, p.Publish(context.Background(), "t", ev), "broker down")
}

func TestPingBrokersEmpty(t *testing.T) {
	assert.Error(t, PingBrokers(context.Background(), nil))
}

func TestConsumerRetriesThenDeadLetters(t *testing.T) {
	good, _ := NewEvent("contact.created", "contact", "c-1", "test", nil)
	bad, _ := NewEvent("contact.updated", "contact", "c-2", "test", nil)
	r := &fakeReader{queue: []kafka.Message{
		{Topic: "catalog.contact.created", Offset: 1, Value: encoded(t, good)},
		{Topic: "catalog.contact.updated", Offset: 2, Value: encoded(t, bad)},
		{Topic: "catalog.contact.updated", Offset: 3, Value: []byte("garbage")},
	}}
	dlqWriter := &fakeWriter{}

	calls := map[string]int{}
	handler := func(_ context.Context, ev *Event) error {
		calls[ev.Type]++
		if ev.Type == "contact.updated" {
			return errors.New("boom")
		}
		return nil
	}

	c := NewConsumerWithReader(r, "notifications", handler, quietLogger()).
		WithDeadLetter(NewDeadLetterWriterWith(dlqWriter, quietLogger()))
	c.backoff = time.Millisecond

	require.NoError(t, c.Run(context.Background()))

	assert.Equal(t, 1, calls["contact.created"])
	assert.Equal(t, maxAttempts, calls["contact.updated"])
	assert.Equal(t, []int64{1, 2, 3}, r.committed)
	assert.Equal(t, 1, r.closed)

	require.Len(t, dlqWriter.msgs, 2)
	assert.Equal(t, "catalog.dlq.catalog.contact.updated", dlqWriter.msgs[0].Topic)
	var sawError bool
	for _, h := range dlqWriter.msgs[0].Headers {
		if h.Key == "dlq.error" {
			sawError = true
			assert.Equal(t, "boom", string(h.Value))
		}
	}
	assert.True(t, sawError)
}

func TestConsumerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &fakeReader{}
	c := NewConsumerWithReader(r, "g", func(context.Context, *Event) error { return nil }, quietLogger())
	assert.NoError(t, c.Run(ctx))
	assert.NoError(t, c.Close())
	assert.Equal(t, 1, r.closed)
}

func TestDeduplicate(t *testing.T) {
	store := NewMemorySeenStore(time.Minute)
	var n int
	fail := true
	h := Deduplicate(store, func(context.Context, *Event) error {
		n++
		if fail {
			return errors.New("transient")
		}
		return nil
	}, quietLogger())

	ev := &Event{ID: "e-1", Type: "contact.created"}
	ctx := context.Background()

	assert.Error(t, h(ctx, ev))
	fail = false
	assert.NoError(t, h(ctx, ev))
	assert.NoError(t, h(ctx, ev))
	assert.Equal(t, 2, n)

	assert.NoError(t, h(ctx, &Event{Type: "no-id"}))
	assert.NoError(t, h(ctx, &Event{Type: "no-id"}))
	assert.Equal(t, 4, n)
}

func TestMemorySeenStoreExpiry(t *testing.T) {
	store := NewMemorySeenStore(time.Minute)
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.MarkSeen(ctx, "a"))
	require.NoError(t, store.MarkSeen(ctx, "b"))
	seen, _ := store.Seen(ctx, "a")
	assert.True(t, seen)

	now = now.Add(2 * time.Minute)
	seen, _ = store.Seen(ctx, "a")
	assert.False(t, seen)
	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 0, store.Len())
}
