package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalcosmeticos/catalog/internal/domain"
	apperrors "github.com/vitalcosmeticos/catalog/pkg/errors"
)

var categoryCols = []string{"id", "name", "slug", "color", "description", "created_at"}

func TestCategoryRepository_Create_DuplicateName(t *testing.T) {
	mock := newMock(t)
	repo := NewCategoryRepository(mock)
	c := &domain.Category{ID: "c1", Name: "Cabelos", Slug: "cabelos", Color: "#183263", CreatedAt: time.Now()}

	mock.ExpectExec("INSERT INTO categories").
		WithArgs(c.ID, c.Name, c.Slug, c.Color, c.Description, c.CreatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), c)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_GetByName(t *testing.T) {
	mock := newMock(t)
	repo := NewCategoryRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM categories WHERE name = \$1`).
		WithArgs("Cabelos").
		WillReturnRows(pgxmock.NewRows(categoryCols).
			AddRow("c1", "Cabelos", "cabelos", "#183263", ptr("Linha capilar"), now))

	c, err := repo.GetByName(context.Background(), "Cabelos")
	require.NoError(t, err)
	assert.Equal(t, "c1", c.ID)
	require.NotNil(t, c.Description)
	assert.Equal(t, "Linha capilar", *c.Description)

	mock.ExpectQuery(`FROM categories WHERE name = \$1`).
		WithArgs("Nada").
		WillReturnRows(pgxmock.NewRows(categoryCols))
	_, err = repo.GetByName(context.Background(), "Nada")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_List(t *testing.T) {
	mock := newMock(t)
	repo := NewCategoryRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM categories ORDER BY name`).
		WillReturnRows(pgxmock.NewRows(categoryCols).
			AddRow("c1", "Cabelos", "cabelos", "#183263", nil, now).
			AddRow("c2", "Perfumes", "perfumes", "#aa0000", nil, now))

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Nil(t, list[0].Description)
	assert.Equal(t, "perfumes", list[1].Slug)
}

func TestCategoryRepository_UpdateAndDelete_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewCategoryRepository(mock)
	c := &domain.Category{ID: "c9", Name: "X", Slug: "x", Color: "#000000"}

	mock.ExpectExec("UPDATE categories").
		WithArgs(c.Name, c.Slug, c.Color, c.Description, c.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, repo.Update(context.Background(), c), apperrors.ErrNotFound)

	mock.ExpectExec("DELETE FROM categories").
		WithArgs("c9").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), "c9"), apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
