package postgres

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalcosmeticos/catalog/internal/domain"
	"github.com/vitalcosmeticos/catalog/internal/repository"
	apperrors "github.com/vitalcosmeticos/catalog/pkg/errors"
)

var contactCols = []string{
	"id", "name", "email", "phone", "message", "product_id", "product_name",
	"status", "created_at", "updated_at",
}

func contactValues(c domain.Contact) []any {
	return []any{
		c.ID, c.Name, c.Email, c.Phone, c.Message, c.ProductID, c.ProductName,
		c.Status, c.CreatedAt, c.UpdatedAt,
	}
}

func sampleContact(id, status string) domain.Contact {
	now := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)
	return domain.Contact{
		ID:          id,
		Name:        "Maria",
		Email:       "maria@example.com",
		Phone:       "(11) 98888-7777",
		Message:     "Quero revender",
		ProductID:   ptr("p1"),
		ProductName: ptr("Batom Matte"),
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestContactRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewContactRepository(mock)
	c := sampleContact("c1", domain.ContactPending)

	mock.ExpectExec("INSERT INTO contacts").
		WithArgs(contactValues(c)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), &c))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactRepository_List_ByStatus(t *testing.T) {
	mock := newMock(t)
	repo := NewContactRepository(mock)

	c := sampleContact("c1", domain.ContactPending)
	mock.ExpectQuery(`WHERE status = \$1\s+ORDER BY created_at DESC\s+LIMIT \$2 OFFSET \$3`).
		WithArgs(domain.ContactPending, 20, 0).
		WillReturnRows(pgxmock.NewRows(append(contactCols, "total_count")).
			AddRow(append(contactValues(c), 7)...))

	status := domain.ContactPending
	list, total, err := repo.List(context.Background(), repository.ContactFilter{Status: &status, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	require.Len(t, list, 1)
	assert.Equal(t, "Batom Matte", *list[0].ProductName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactRepository_UpdateStatus_ReturnsOldStatus(t *testing.T) {
	mock := newMock(t)
	repo := NewContactRepository(mock)

	updated := sampleContact("c1", domain.ContactContacted)
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs("c1", domain.ContactContacted, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(append(contactCols, "old_status")).
			AddRow(append(contactValues(updated), domain.ContactPending)...))

	c, old, err := repo.UpdateStatus(context.Background(), "c1", domain.ContactContacted)
	require.NoError(t, err)
	assert.Equal(t, domain.ContactPending, old)
	assert.Equal(t, domain.ContactContacted, c.Status)

	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs("nope", domain.ContactCompleted, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(append(contactCols, "old_status")))
	_, _, err = repo.UpdateStatus(context.Background(), "nope", domain.ContactCompleted)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactRepository_CountAndLatest(t *testing.T) {
	mock := newMock(t)
	repo := NewContactRepository(mock)

	mock.ExpectQuery(`SELECT count\(\*\) FROM contacts WHERE status = \$1`).
		WithArgs(domain.ContactPending).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))
	n, err := repo.CountByStatus(context.Background(), domain.ContactPending)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	mock.ExpectQuery(`WHERE status = \$1 ORDER BY created_at DESC LIMIT \$2`).
		WithArgs(domain.ContactPending, 5).
		WillReturnRows(pgxmock.NewRows(contactCols).
			AddRow(contactValues(sampleContact("c2", domain.ContactPending))...).
			AddRow(contactValues(sampleContact("c1", domain.ContactPending))...))
	latest, err := repo.LatestByStatus(context.Background(), domain.ContactPending, 5)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "c2", latest[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactRepository_Delete_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewContactRepository(mock)

	mock.ExpectExec("DELETE FROM contacts").
		WithArgs("c1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), "c1"), apperrors.ErrNotFound)
}
