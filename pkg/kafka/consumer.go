package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	maxAttempts  = 3
	retryBackoff = 100 * time.Millisecond
)

// Handler processes one decoded envelope.
type Handler func(ctx context.Context, ev *Event) error

// MessageReader is the subset of *kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type ConsumerConfig struct {
	Brokers []string
	GroupID string
	Topics  []string
}

// Consumer drives a Handler over a consumer group. A message whose handler
// keeps failing is handed to the dead letter writer (when set) and committed.
type Consumer struct {
	reader     MessageReader
	group      string
	handler    Handler
	deadLetter *DeadLetterWriter
	logger     *slog.Logger
	backoff    time.Duration
	closeOnce  sync.Once
}

func NewConsumer(cfg ConsumerConfig, handler Handler, logger *slog.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: cfg.Topics,
		MinBytes:    1,
		MaxBytes:    1 << 20,
	})
	return NewConsumerWithReader(r, cfg.GroupID, handler, logger)
}

func NewConsumerWithReader(r MessageReader, group string, handler Handler, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		reader:  r,
		group:   group,
		handler: handler,
		logger:  logger,
		backoff: retryBackoff,
	}
}

// WithDeadLetter routes exhausted messages to dlq.
func (c *Consumer) WithDeadLetter(dlq *DeadLetterWriter) *Consumer {
	c.deadLetter = dlq
	return c
}

// Run blocks until ctx is cancelled or the reader is closed.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("consumer started", slog.String("group", c.group))
	defer c.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				c.logger.Info("consumer stopped", slog.String("group", c.group))
				return nil
			}
			c.logger.Error("fetch failed", slog.String("error", err.Error()))
			continue
		}
		messagesReceived.WithLabelValues(msg.Topic, c.group).Inc()
		c.process(ctx, msg)
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	log := c.logger.With(
		slog.String("topic", msg.Topic),
		slog.Int("partition", msg.Partition),
		slog.Int64("offset", msg.Offset),
	)

	ev, err := DecodeEvent(msg.Value)
	if err != nil {
		log.Error("dropping undecodable message", slog.String("error", err.Error()))
		c.fail(ctx, msg, err, log)
		return
	}

	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if lastErr = c.handler(ctx, ev); lastErr == nil {
			break
		}
		log.Warn("handler failed",
			slog.String("event_type", ev.Type),
			slog.Int("attempt", attempt),
			slog.String("error", lastErr.Error()),
		)
		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(attempt) * c.backoff):
		}
	}
	processingDuration.WithLabelValues(msg.Topic, c.group).Observe(time.Since(start).Seconds())

	if lastErr != nil {
		log.Error("giving up on message", slog.String("event_type", ev.Type), slog.String("error", lastErr.Error()))
		c.fail(ctx, msg, lastErr, log)
		return
	}
	c.commit(ctx, msg, log)
}

func (c *Consumer) fail(ctx context.Context, msg kafka.Message, cause error, log *slog.Logger) {
	messagesFailed.WithLabelValues(msg.Topic, c.group).Inc()
	if c.deadLetter != nil {
		if err := c.deadLetter.Write(ctx, msg, cause, c.group); err != nil {
			log.Error("dead letter write failed", slog.String("error", err.Error()))
		}
	}
	c.commit(ctx, msg, log)
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message, log *slog.Logger) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		log.Error("commit failed", slog.String("error", err.Error()))
	}
}

// Close is safe to call more than once.
func (c *Consumer) Close() error {
	var err error
	c.closeOnce.Do(func() { err = c.reader.Close() })
	return err
}
