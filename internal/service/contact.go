package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vitalcosmeticos/catalog/internal/domain"
	"github.com/vitalcosmeticos/catalog/internal/event"
	"github.com/vitalcosmeticos/catalog/internal/repository"
	apperrors "github.com/vitalcosmeticos/catalog/pkg/errors"
	"github.com/vitalcosmeticos/catalog/pkg/pagination"
)

// ContactService implements the lead capture form and its admin workflow.
type ContactService struct {
	repo      repository.ContactRepository
	publisher event.Publisher
	logger    *slog.Logger
}

// NewContactService creates a new contact service.
func NewContactService(repo repository.ContactRepository, publisher event.Publisher, logger *slog.Logger) *ContactService {
	return &ContactService{repo: repo, publisher: publisher, logger: logger}
}

// CreateContactInput holds a storefront contact form submission.
type CreateContactInput struct {
	Name        string
	Email       string
	Phone       string
	Message     string
	ProductID   *string
	ProductName *string
}

// CreateContact stores a new lead. New leads always start as pending.
func (s *ContactService) CreateContact(ctx context.Context, input *CreateContactInput) (*domain.Contact, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	phone := strings.TrimSpace(input.Phone)
	if name == "" || email == "" || phone == "" {
		return nil, apperrors.InvalidInput("name, email and phone are required")
	}

	now := time.Now().UTC()
	contact := &domain.Contact{
		ID:          uuid.New().String(),
		Name:        name,
		Email:       email,
		Phone:       phone,
		Message:     strings.TrimSpace(input.Message),
		ProductID:   input.ProductID,
		ProductName: input.ProductName,
		Status:      domain.ContactPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}

	if err := s.publisher.PublishContactCreated(ctx, contact); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish contact.created event",
			slog.String("contact_id", contact.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "contact created", slog.String("contact_id", contact.ID))
	return contact, nil
}

func (s *ContactService) GetContact(ctx context.Context, id string) (*domain.Contact, error) {
	contact, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return contact, nil
}

// ListContacts returns contacts newest first, optionally narrowed to one status.
func (s *ContactService) ListContacts(ctx context.Context, status string, p pagination.Params) (*pagination.Result[domain.Contact], error) {
	filter := repository.ContactFilter{Limit: p.Limit, Offset: p.Offset}
	if status != "" {
		if !domain.IsValidContactStatus(status) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid status %q", status))
		}
		filter.Status = &status
	}

	contacts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	result := pagination.NewResult(contacts, total, p)
	return &result, nil
}

// UpdateContactStatus sets any valid status; transitions are not enforced.
func (s *ContactService) UpdateContactStatus(ctx context.Context, id, status string) (*domain.Contact, error) {
	if !domain.IsValidContactStatus(status) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid status %q", status))
	}

	contact, oldStatus, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("update contact status: %w", err)
	}

	if err := s.publisher.PublishContactUpdated(ctx, contact, oldStatus); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish contact.updated event",
			slog.String("contact_id", contact.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "contact status updated",
		slog.String("contact_id", contact.ID),
		slog.String("from", oldStatus),
		slog.String("to", status),
	)
	return contact, nil
}

func (s *ContactService) DeleteContact(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	s.logger.InfoContext(ctx, "contact deleted", slog.String("contact_id", id))
	return nil
}
