package analytics

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func testProducer(w *fakeWriter) *Producer {
	ts := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	return &Producer{
		writer: w,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    func() time.Time { return ts },
	}
}

func TestProducerPublishEnvelope(t *testing.T) {
	w := &fakeWriter{}
	p := testProducer(w)

	p.Publish(context.Background(), "s1", EventDecisionMade, map[string]any{"column": 3})
	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("s1"), w.msgs[0].Key)

	e, err := Decode(w.msgs[0].Value)
	require.NoError(t, err)
	assert.Equal(t, EventDecisionMade, e.Event)
	assert.Equal(t, float64(3), e.Payload["column"])
	assert.Equal(t, time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC), e.Timestamp)

	p.Close()
	assert.True(t, w.closed)
}

func TestProducerSwallowsWriteErrors(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := testProducer(w)
	assert.NotPanics(t, func() {
		p.Publish(context.Background(), "s1", EventGameFinished, nil)
	})
}

func TestNilProducer(t *testing.T) {
	p := NewProducer(nil, "topic", nil)
	assert.Nil(t, p)
	assert.NotPanics(t, func() {
		p.Publish(context.Background(), "k", EventGameFinished, nil)
		p.Close()
	})
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("{not json"))
	assert.Error(t, err)
}

func TestMetricsRecordEvent(t *testing.T) {
	m := NewMetrics()
	day := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)

	assert.True(t, m.RecordEvent(Event{Event: EventDecisionMade, Payload: map[string]any{
		"durationMs": 2.0, "repliesEvaluated": 49.0, "immediate": false,
	}}))
	assert.True(t, m.RecordEvent(Event{Event: EventDecisionMade, Payload: map[string]any{
		"durationMs": 4.0, "repliesEvaluated": 7.0, "immediate": true, "fallback": true,
	}}))
	assert.True(t, m.RecordEvent(Event{Event: EventGameFinished, Timestamp: day, Payload: map[string]any{
		"status": "won", "winnerName": "Player 2", "turns": 20.0, "duration": 30.0,
	}}))
	assert.True(t, m.RecordEvent(Event{Event: EventGameFinished, Timestamp: day, Payload: map[string]any{
		"status": "draw", "turns": 42.0, "duration": 90.0,
	}}))
	assert.True(t, m.RecordEvent(Event{Event: EventGameFinished, Timestamp: day.Add(24 * time.Hour), Payload: map[string]any{
		"status": "abandoned", "turns": 2.0, "duration": 0.0,
	}}))
	assert.False(t, m.RecordEvent(Event{Event: "move_played"}))

	s := m.Summary()
	assert.Equal(t, 2, s.Decisions)
	assert.InDelta(t, 3.0, s.AvgDecisionMs, 1e-9)
	assert.InDelta(t, 28.0, s.AvgReplies, 1e-9)
	assert.Equal(t, 1, s.ImmediateWins)
	assert.Equal(t, 1, s.Fallbacks)

	assert.Equal(t, 3, s.Games)
	assert.Equal(t, map[string]int{"Player 2": 1}, s.Wins)
	assert.Equal(t, 1, s.Draws)
	assert.Equal(t, 1, s.Abandoned)
	assert.InDelta(t, 64.0/3, s.AvgTurns, 1e-9)
	assert.InDelta(t, 40.0, s.AvgGameSeconds, 1e-9)
	assert.Equal(t, map[string]int{"2024-03-02": 2, "2024-03-03": 1}, s.GamesPerDay)
}

func TestMetricsSummaryIsACopy(t *testing.T) {
	m := NewMetrics()
	m.RecordEvent(Event{Event: EventGameFinished, Payload: map[string]any{"status": "won", "winnerName": "Player 1"}})
	s := m.Summary()
	s.Wins["Player 1"] = 99
	assert.Equal(t, 1, m.Summary().Wins["Player 1"])
}
