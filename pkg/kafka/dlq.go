package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// DeadLetterTopic maps a source topic to its dead letter topic.
func DeadLetterTopic(topic string) string {
	return TopicPrefix + ".dlq." + topic
}

// DeadLetterWriter parks messages the consumer gave up on, together with
// headers describing where they came from.
type DeadLetterWriter struct {
	writer MessageWriter
	logger *slog.Logger
}

func NewDeadLetterWriter(brokers []string, logger *slog.Logger) *DeadLetterWriter {
	return NewDeadLetterWriterWith(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		BatchSize:              1,
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}, logger)
}

func NewDeadLetterWriterWith(w MessageWriter, logger *slog.Logger) *DeadLetterWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeadLetterWriter{writer: w, logger: logger}
}

func (d *DeadLetterWriter) Write(ctx context.Context, msg kafka.Message, cause error, group string) error {
	topic := DeadLetterTopic(msg.Topic)

	headers := make([]kafka.Header, 0, len(msg.Headers)+5)
	headers = append(headers, msg.Headers...)
	headers = append(headers,
		kafka.Header{Key: "dlq.original_topic", Value: []byte(msg.Topic)},
		kafka.Header{Key: "dlq.original_partition", Value: []byte(strconv.Itoa(msg.Partition))},
		kafka.Header{Key: "dlq.original_offset", Value: []byte(strconv.FormatInt(msg.Offset, 10))},
		kafka.Header{Key: "dlq.consumer_group", Value: []byte(group)},
	)
	if cause != nil {
		headers = append(headers, kafka.Header{Key: "dlq.error", Value: []byte(cause.Error())})
	}

	err := d.writer.WriteMessages(ctx, kafka.Message{
		Topic:   topic,
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
	})
	if err != nil {
		return fmt.Errorf("dead letter %s: %w", topic, err)
	}
	d.logger.Warn("message dead-lettered",
		slog.String("dlq_topic", topic),
		slog.Int64("offset", msg.Offset),
		slog.String("consumer_group", group),
	)
	return nil
}

func (d *DeadLetterWriter) Close() error {
	return d.writer.Close()
}
