package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"emittr/connect4/internal/analytics"
	"emittr/connect4/internal/config"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	if err := run(cfg, logger); err != nil {
		logger.Error("analytics consumer stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	brokers := cfg.KafkaBrokers
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   cfg.KafkaTopic,
		GroupID: cfg.KafkaGroupID,
	})
	defer reader.Close()

	logger.Info("analytics consumer listening", "brokers", brokers, "topic", cfg.KafkaTopic, "group", cfg.KafkaGroupID)

	metrics := analytics.NewMetrics()
	go report(ctx, logger, metrics, cfg.ReportInterval)

	err := consume(ctx, reader, metrics, logger)
	logSummary(logger, metrics.Summary())
	return err
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// consume folds events into m until ctx is cancelled, which is a clean stop,
// or the reader fails.
func consume(ctx context.Context, r messageReader, m *analytics.Metrics, logger *slog.Logger) error {
	for {
		msg, err := r.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return errors.Wrap(err, "read message")
		}
		e, err := analytics.Decode(msg.Value)
		if err != nil {
			logger.Warn("skipping message", "offset", msg.Offset, "err", err)
			continue
		}
		if !m.RecordEvent(e) {
			logger.Debug("unknown event", "event", e.Event)
			continue
		}
		logger.Debug("event", "event", e.Event, "session", e.Payload["sessionId"])
	}
}

func report(ctx context.Context, logger *slog.Logger, m *analytics.Metrics, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			logSummary(logger, m.Summary())
		}
	}
}

func logSummary(logger *slog.Logger, s analytics.Summary) {
	logger.Info("analytics summary",
		"decisions", s.Decisions,
		"avgDecisionMs", s.AvgDecisionMs,
		"avgReplies", s.AvgReplies,
		"immediateWins", s.ImmediateWins,
		"fallbacks", s.Fallbacks,
		"games", s.Games,
		"wins", s.Wins,
		"draws", s.Draws,
		"abandoned", s.Abandoned,
		"avgTurns", s.AvgTurns,
		"avgGameSeconds", s.AvgGameSeconds,
		"gamesPerDay", s.GamesPerDay,
	)
}
