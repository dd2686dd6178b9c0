package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"emittr/connect4/internal/analytics"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedReader struct {
	values [][]byte
	end    error
}

func (r *scriptedReader) ReadMessage(context.Context) (kafka.Message, error) {
	if len(r.values) == 0 {
		return kafka.Message{}, r.end
	}
	v := r.values[0]
	r.values = r.values[1:]
	return kafka.Message{Value: v}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestConsumeStopsCleanlyOnCancel(t *testing.T) {
	r := &scriptedReader{
		values: [][]byte{
			[]byte(`{"event":"decision_made","payload":{"durationMs":2,"repliesEvaluated":49}}`),
			[]byte(`not json`),
			[]byte(`{"event":"game_finished","payload":{"status":"draw","turns":42}}`),
			[]byte(`{"event":"move_played","payload":{}}`),
		},
		end: context.Canceled,
	}
	m := analytics.NewMetrics()

	require.NoError(t, consume(context.Background(), r, m, discardLogger()))
	s := m.Summary()
	assert.Equal(t, 1, s.Decisions)
	assert.Equal(t, 1, s.Games)
	assert.Equal(t, 1, s.Draws)
}

func TestConsumeReturnsReaderFailure(t *testing.T) {
	broken := errors.New("broker gone")
	r := &scriptedReader{end: broken}

	err := consume(context.Background(), r, analytics.NewMetrics(), discardLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, broken)
}
