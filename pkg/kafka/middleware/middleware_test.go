package kafkamiddleware

import (
	"context"
	"errors"
	"testing"

	"playday/pkg/kafka"
	"playday/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_CountsOutcomes(t *testing.T) {
	m := NewMetrics()
	produce := m.ProducerMiddleware()
	consume := m.ConsumerMiddleware()

	ok := func(context.Context, kafka.Message) error { return nil }
	fail := func(context.Context, kafka.Message) error { return errors.New("boom") }

	_ = produce(context.Background(), kafka.Message{}, ok)
	_ = produce(context.Background(), kafka.Message{}, ok)
	_ = produce(context.Background(), kafka.Message{}, fail)
	_ = consume(context.Background(), kafka.Message{}, fail)

	s := m.Snapshot()
	assert.Equal(t, int64(2), s.Published)
	assert.Equal(t, int64(1), s.PublishFailed)
	assert.Equal(t, int64(0), s.Consumed)
	assert.Equal(t, int64(1), s.ConsumeFailed)
}

func TestMetrics_Independent(t *testing.T) {
	a, b := NewMetrics(), NewMetrics()
	_ = a.ProducerMiddleware()(context.Background(), kafka.Message{}, func(context.Context, kafka.Message) error { return nil })

	assert.Equal(t, int64(1), a.Snapshot().Published)
	assert.Equal(t, int64(0), b.Snapshot().Published)
}

func TestLoggingMiddleware_PassesErrorThrough(t *testing.T) {
	want := errors.New("boom")
	log := logger.Discard()

	err := LoggingConsumerMiddleware(log)(context.Background(), kafka.Message{}, func(context.Context, kafka.Message) error { return want })
	assert.ErrorIs(t, err, want)

	err = LoggingProducerMiddleware(log)(context.Background(), kafka.Message{}, func(context.Context, kafka.Message) error { return nil })
	assert.NoError(t, err)
}
