package postgres

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalcosmeticos/catalog/internal/domain"
	apperrors "github.com/vitalcosmeticos/catalog/pkg/errors"
)

var folderCols = []string{
	"id", "name", "description", "products", "client_name", "client_email",
	"client_phone", "created_at", "updated_at",
}

func TestFolderRepository_CreateStoresSnapshotsAsJSON(t *testing.T) {
	mock := newMock(t)
	repo := NewFolderRepository(mock)

	p := sampleProduct("1")
	now := time.Now().UTC()
	f := &domain.DigitalFolder{
		ID:         "f1",
		Name:       "Pasta Salão Bela",
		Products:   []domain.FolderProduct{domain.Snapshot(&p)},
		ClientName: ptr("Salão Bela"),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	products, err := marshalFolderProducts(f.Products)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO digital_folders").
		WithArgs(f.ID, f.Name, f.Description, products, f.ClientName, f.ClientEmail, f.ClientPhone, now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), f))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFolderRepository_GetByID(t *testing.T) {
	mock := newMock(t)
	repo := NewFolderRepository(mock)
	now := time.Now().UTC()

	raw := []byte(`[{"id":"p1","name":"Batom","description":"","category":"Maquiagem","code":"B1","reference":"R1","stock":"available","images":["a.jpg"],"price":"19.9"}]`)
	mock.ExpectQuery(`FROM digital_folders WHERE id = \$1`).
		WithArgs("f1").
		WillReturnRows(pgxmock.NewRows(folderCols).
			AddRow("f1", "Pasta", nil, raw, nil, nil, ptr("11999999999"), now, now))

	f, err := repo.GetByID(context.Background(), "f1")
	require.NoError(t, err)
	require.Len(t, f.Products, 1)
	assert.Equal(t, "Batom", f.Products[0].Name)
	assert.Equal(t, "19.9", f.Products[0].Price.String())
	assert.Equal(t, "a.jpg", f.Products[0].FirstImage())
	assert.Equal(t, "11999999999", *f.ClientPhone)

	mock.ExpectQuery(`FROM digital_folders WHERE id = \$1`).
		WithArgs("f2").
		WillReturnRows(pgxmock.NewRows(folderCols))
	_, err = repo.GetByID(context.Background(), "f2")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestFolderRepository_EmptyProductsMarshalAsArray(t *testing.T) {
	b, err := marshalFolderProducts(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(b))
}

func TestFolderRepository_Update_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewFolderRepository(mock)
	f := &domain.DigitalFolder{ID: "f9", Name: "X"}

	mock.ExpectExec("UPDATE digital_folders").
		WithArgs(f.Name, f.Description, []byte(`[]`), f.ClientName, f.ClientEmail, f.ClientPhone, pgxmock.AnyArg(), f.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, repo.Update(context.Background(), f), apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
