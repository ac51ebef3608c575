package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/vitalcosmeticos/catalog/pkg/errors"
)

func TestFavoriteRepository_AddIsIdempotent(t *testing.T) {
	mock := newMock(t)
	repo := NewFavoriteRepository(mock)

	mock.ExpectExec(`ON CONFLICT \(user_id, product_id\) DO NOTHING`).
		WithArgs("u1", "p1").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	assert.NoError(t, repo.Add(context.Background(), "u1", "p1"))

	mock.ExpectExec("INSERT INTO favorites").
		WithArgs("u1", "gone").
		WillReturnError(&pgconn.PgError{Code: "23503"})
	assert.ErrorIs(t, repo.Add(context.Background(), "u1", "gone"), apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteRepository_Remove(t *testing.T) {
	mock := newMock(t)
	repo := NewFavoriteRepository(mock)

	mock.ExpectExec("DELETE FROM favorites").
		WithArgs("u1", "p1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	removed, err := repo.Remove(context.Background(), "u1", "p1")
	require.NoError(t, err)
	assert.True(t, removed)

	mock.ExpectExec("DELETE FROM favorites").
		WithArgs("u1", "p1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	removed, err = repo.Remove(context.Background(), "u1", "p1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestFavoriteRepository_ExistsAndIDs(t *testing.T) {
	mock := newMock(t)
	repo := NewFavoriteRepository(mock)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("u1", "p1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	ok, err := repo.Exists(context.Background(), "u1", "p1")
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectQuery(`SELECT product_id FROM favorites`).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"product_id"}).AddRow("p2").AddRow("p1"))
	ids, err := repo.ListProductIDs(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p1"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteRepository_ListProducts(t *testing.T) {
	mock := newMock(t)
	repo := NewFavoriteRepository(mock)

	p := sampleProduct("1")
	mock.ExpectQuery(`JOIN products p ON p\.id = f\.product_id`).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows(productCols).AddRow(productValues(p)...))

	products, err := repo.ListProducts(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, p.Name, products[0].Name)
}
