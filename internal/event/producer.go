package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vitalcosmeticos/catalog/internal/domain"
	pkgkafka "github.com/vitalcosmeticos/catalog/pkg/kafka"
	"github.com/vitalcosmeticos/catalog/pkg/logger"
)

// Aggregate type constant.
const AggregateTypeContact = "contact"

// SourceCatalogService identifies events produced by this service.
const SourceCatalogService = "catalog-service"

// Kafka topics for contact events.
var (
	TopicContactCreated = pkgkafka.Topic(AggregateTypeContact, "created")
	TopicContactUpdated = pkgkafka.Topic(AggregateTypeContact, "updated")
)

// ContactTopics lists every topic the notification consumer reads.
func ContactTopics() []string {
	return []string{TopicContactCreated, TopicContactUpdated}
}

// Publisher announces contact changes.
type Publisher interface {
	PublishContactCreated(ctx context.Context, contact *domain.Contact) error
	PublishContactUpdated(ctx context.Context, contact *domain.Contact, oldStatus string) error
}

func newContactEvent(ctx context.Context, eventType string, contact *domain.Contact, oldStatus string) (*pkgkafka.Event, error) {
	ev, err := pkgkafka.NewEvent(eventType, AggregateTypeContact, contact.ID, SourceCatalogService,
		domain.ContactChange{Contact: *contact, OldStatus: oldStatus})
	if err != nil {
		return nil, err
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		ev.WithCorrelationID(id)
	}
	return ev, nil
}

// Producer publishes contact events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the catalog service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishContactCreated publishes a contact.created event.
func (p *Producer) PublishContactCreated(ctx context.Context, contact *domain.Contact) error {
	ev, err := newContactEvent(ctx, domain.ContactCreatedEvent, contact, "")
	if err != nil {
		return err
	}
	if err := p.kafka.Publish(ctx, TopicContactCreated, ev); err != nil {
		return fmt.Errorf("publish contact.created: %w", err)
	}
	return nil
}

// PublishContactUpdated publishes a contact.updated event carrying the previous status.
func (p *Producer) PublishContactUpdated(ctx context.Context, contact *domain.Contact, oldStatus string) error {
	ev, err := newContactEvent(ctx, domain.ContactUpdatedEvent, contact, oldStatus)
	if err != nil {
		return err
	}
	if err := p.kafka.Publish(ctx, TopicContactUpdated, ev); err != nil {
		return fmt.Errorf("publish contact.updated: %w", err)
	}
	return nil
}

// LocalPublisher hands events straight to a handler in the same process.
// It is used when Kafka is disabled.
type LocalPublisher struct {
	handler pkgkafka.Handler
}

func NewLocalPublisher(handler pkgkafka.Handler) *LocalPublisher {
	return &LocalPublisher{handler: handler}
}

func (p *LocalPublisher) PublishContactCreated(ctx context.Context, contact *domain.Contact) error {
	ev, err := newContactEvent(ctx, domain.ContactCreatedEvent, contact, "")
	if err != nil {
		return err
	}
	return p.handler(ctx, ev)
}

func (p *LocalPublisher) PublishContactUpdated(ctx context.Context, contact *domain.Contact, oldStatus string) error {
	ev, err := newContactEvent(ctx, domain.ContactUpdatedEvent, contact, oldStatus)
	if err != nil {
		return err
	}
	return p.handler(ctx, ev)
}
