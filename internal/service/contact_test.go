package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vitalcosmeticos/catalog/internal/domain"
	"github.com/vitalcosmeticos/catalog/internal/repository"
	apperrors "github.com/vitalcosmeticos/catalog/pkg/errors"
	"github.com/vitalcosmeticos/catalog/pkg/pagination"
)

func TestCreateContact_ForcesPendingAndPublishes(t *testing.T) {
	repo := &mockContactRepository{}
	pub := &mockPublisher{}
	svc := NewContactService(repo, pub, newTestLogger())

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Contact")).Return(nil)
	pub.On("PublishContactCreated", mock.Anything, mock.AnythingOfType("*domain.Contact")).Return(nil)

	c, err := svc.CreateContact(context.Background(), &CreateContactInput{
		Name:        "Joana",
		Email:       "joana@example.com",
		Phone:       "11 98888-0000",
		ProductName: strPtr("Batom"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ContactPending, c.Status)
	pub.AssertExpectations(t)
}

func TestCreateContact_PublishFailureDoesNotFail(t *testing.T) {
	repo := &mockContactRepository{}
	pub := &mockPublisher{}
	svc := NewContactService(repo, pub, newTestLogger())

	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	pub.On("PublishContactCreated", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	_, err := svc.CreateContact(context.Background(), &CreateContactInput{Name: "A", Email: "a@b.c", Phone: "1"})
	assert.NoError(t, err)
}

func TestCreateContact_RequiredFields(t *testing.T) {
	svc := NewContactService(&mockContactRepository{}, &mockPublisher{}, newTestLogger())
	_, err := svc.CreateContact(context.Background(), &CreateContactInput{Name: "A", Email: " "})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestUpdateContactStatus_PublishesOldStatus(t *testing.T) {
	repo := &mockContactRepository{}
	pub := &mockPublisher{}
	svc := NewContactService(repo, pub, newTestLogger())

	updated := &domain.Contact{ID: "c1", Status: domain.ContactContacted}
	repo.On("UpdateStatus", mock.Anything, "c1", domain.ContactContacted).Return(updated, domain.ContactPending, nil)
	pub.On("PublishContactUpdated", mock.Anything, updated, domain.ContactPending).Return(nil)

	c, err := svc.UpdateContactStatus(context.Background(), "c1", domain.ContactContacted)
	require.NoError(t, err)
	assert.Equal(t, domain.ContactContacted, c.Status)
	pub.AssertExpectations(t)

	_, err = svc.UpdateContactStatus(context.Background(), "c1", "archived")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestListContacts_StatusFilter(t *testing.T) {
	repo := &mockContactRepository{}
	svc := NewContactService(repo, &mockPublisher{}, newTestLogger())

	status := domain.ContactPending
	repo.On("List", mock.Anything, repository.ContactFilter{Status: &status, Limit: 20, Offset: 20}).
		Return([]domain.Contact{{ID: "c1"}}, 21, nil)

	res, err := svc.ListContacts(context.Background(), domain.ContactPending, pagination.New(2, 20))
	require.NoError(t, err)
	assert.Equal(t, 21, res.Total)
	assert.Equal(t, 2, res.TotalPages)
	assert.False(t, res.HasMore)
}
