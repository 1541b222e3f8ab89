package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := NewPublisherWithWriter(zap.NewNop(), w)

	err := p.Publish(context.Background(), OrderEvent{
		Type: TypeOrderSubmitted, OrderID: 42, TableID: 3, Status: "new", Total: 1600, Items: 3,
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "42", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, TypeOrderSubmitted, string(msg.Headers[0].Value))

	var got OrderEvent
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, int64(1600), got.Total)
	assert.False(t, got.Timestamp.IsZero())

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := NewPublisherWithWriter(zap.NewNop(), w)

	err := p.Publish(context.Background(), OrderEvent{Type: TypeOrderStatusChanged, OrderID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), OrderEvent{}))
	assert.NoError(t, p.Close())
}
