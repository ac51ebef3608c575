package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vitalcosmeticos/catalog/internal/domain"
	pkgkafka "github.com/vitalcosmeticos/catalog/pkg/kafka"
)

// ContactApplier receives decoded contact changes.
type ContactApplier interface {
	ContactCreated(contact domain.Contact)
	ContactUpdated(contact domain.Contact, oldStatus string)
}

// NewContactHandler decodes contact events and applies them to feed.
// Unknown event types are logged and acknowledged.
func NewContactHandler(feed ContactApplier, logger *slog.Logger) pkgkafka.Handler {
	return func(ctx context.Context, ev *pkgkafka.Event) error {
		var change domain.ContactChange
		if err := ev.Decode(&change); err != nil {
			return fmt.Errorf("decode %s: %w", ev.Type, err)
		}

		switch ev.Type {
		case domain.ContactCreatedEvent:
			feed.ContactCreated(change.Contact)
		case domain.ContactUpdatedEvent:
			feed.ContactUpdated(change.Contact, change.OldStatus)
		default:
			logger.WarnContext(ctx, "unhandled contact event",
				slog.String("event_type", ev.Type),
				slog.String("event_id", ev.ID),
			)
			return nil
		}

		logger.DebugContext(ctx, "contact event applied",
			slog.String("event_type", ev.Type),
			slog.String("contact_id", change.Contact.ID),
		)
		return nil
	}
}
