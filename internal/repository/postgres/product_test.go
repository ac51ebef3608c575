package postgres

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalcosmeticos/catalog/internal/domain"
	"github.com/vitalcosmeticos/catalog/internal/repository"
	"github.com/vitalcosmeticos/catalog/pkg/database"
	apperrors "github.com/vitalcosmeticos/catalog/pkg/errors"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func ptr[T any](v T) *T { return &v }

var productCols = []string{
	"id", "name", "description", "category_id", "category", "code", "reference",
	"stock", "images", "price", "views", "created_at", "updated_at",
}

func productValues(p domain.Product) []any {
	return []any{
		p.ID, p.Name, p.Description, p.CategoryID, p.Category, p.Code, p.Reference,
		p.Stock, p.Images, toNumeric(p.Price), p.Views, p.CreatedAt, p.UpdatedAt,
	}
}

func sampleProduct(id string) domain.Product {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	price := decimal.RequireFromString("59.90")
	return domain.Product{
		ID:          id,
		Name:        "Batom Matte " + id,
		Description: "Longa duração",
		CategoryID:  ptr("cat-1"),
		Category:    "Maquiagem",
		Code:        "BT-" + id,
		Reference:   "REF-" + id,
		Stock:       domain.StockAvailable,
		Images:      []string{"https://vitalcosmeticos.com.br/img/" + id + ".jpg"},
		Price:       &price,
		Views:       3,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestContainsPatternEscapesWildcards(t *testing.T) {
	assert.Equal(t, `%batom%`, containsPattern("batom"))
	assert.Equal(t, `%50\% off%`, containsPattern("50% off"))
	assert.Equal(t, `%a\_b%`, containsPattern("a_b"))
	assert.Equal(t, `%c:\\x%`, containsPattern(`c:\x`))
}

func TestNumericRoundTrip(t *testing.T) {
	d := decimal.RequireFromString("129.95")
	got := fromNumeric(toNumeric(&d))
	require.NotNil(t, got)
	assert.True(t, d.Equal(*got))

	assert.False(t, toNumeric(nil).Valid)
	assert.Nil(t, fromNumeric(pgtype.Numeric{}))
	assert.Nil(t, fromNumeric(pgtype.Numeric{Int: big.NewInt(1), Valid: true, NaN: true}))
}

func TestProductRepository_List_SearchAndCategory(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	p1, p2 := sampleProduct("1"), sampleProduct("2")
	rows := pgxmock.NewRows(append(productCols, "total_count")).
		AddRow(append(productValues(p1), 30)...).
		AddRow(append(productValues(p2), 30)...)

	mock.ExpectQuery(`p\.category_id = \$1 AND \(p\.name ILIKE \$2 OR p\.description ILIKE \$2 OR p\.code ILIKE \$2 OR p\.reference ILIKE \$2\)`).
		WithArgs("cat-1", "%batom%", 12, 12).
		WillReturnRows(rows)

	products, total, err := repo.List(context.Background(), repository.ProductFilter{
		CategoryID: ptr("cat-1"),
		Search:     "  batom ",
		Limit:      12,
		Offset:     12,
	})
	require.NoError(t, err)
	assert.Equal(t, 30, total)
	require.Len(t, products, 2)
	assert.Equal(t, "Maquiagem", products[0].Category)
	assert.Equal(t, "59.9", products[0].Price.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_List_NoFilters(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectQuery(`ORDER BY p\.created_at DESC\s+LIMIT \$1 OFFSET \$2`).
		WithArgs(12, 0).
		WillReturnRows(pgxmock.NewRows(append(productCols, "total_count")))

	products, total, err := repo.List(context.Background(), repository.ProductFilter{Limit: 12})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.NotNil(t, products)
	assert.Empty(t, products)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_List_OffsetPastEndKeepsTotal(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectQuery(`ILIKE \$1\)\s+ORDER BY p\.created_at DESC\s+LIMIT \$2 OFFSET \$3`).
		WithArgs("%creme%", 12, 24).
		WillReturnRows(pgxmock.NewRows(append(productCols, "total_count")))
	mock.ExpectQuery(`SELECT count\(\*\) FROM products p LEFT JOIN categories c ON c\.id = p\.category_id WHERE \(p\.name ILIKE \$1`).
		WithArgs("%creme%").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(24))

	products, total, err := repo.List(context.Background(), repository.ProductFilter{
		Search: "creme",
		Limit:  12,
		Offset: 24,
	})
	require.NoError(t, err)
	assert.Equal(t, 24, total)
	assert.Empty(t, products)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectQuery(`WHERE p\.id = \$1`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(productCols))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetByIDs_KeepsRequestOrder(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	p1, p2 := sampleProduct("1"), sampleProduct("2")
	mock.ExpectQuery(`WHERE p\.id = ANY\(\$1\)`).
		WithArgs([]string{"2", "x", "1"}).
		WillReturnRows(pgxmock.NewRows(productCols).
			AddRow(productValues(p1)...).
			AddRow(productValues(p2)...))

	got, err := repo.GetByIDs(context.Background(), []string{"2", "x", "1"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].ID)
	assert.Equal(t, "1", got[1].ID)
}

func TestProductRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	p := sampleProduct("9")

	mock.ExpectExec("INSERT INTO products").
		WithArgs(p.ID, p.Name, p.Description, p.CategoryID, p.Code, p.Reference, p.Stock,
			p.Images, toNumeric(p.Price), p.Views, p.CreatedAt, p.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, repo.Create(context.Background(), &p))

	mock.ExpectExec("INSERT INTO products").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23503"})
	err := repo.Create(context.Background(), &p)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_UpdateAndDelete_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	p := sampleProduct("7")

	mock.ExpectExec("UPDATE products").
		WithArgs(p.Name, p.Description, p.CategoryID, p.Code, p.Reference, p.Stock, p.Images,
			toNumeric(p.Price), pgxmock.AnyArg(), p.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, repo.Update(context.Background(), &p), apperrors.ErrNotFound)

	mock.ExpectExec("DELETE FROM products").
		WithArgs("7").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), "7"), apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_IncrementViews(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectQuery(`SELECT increment_views\(\$1\)`).
		WithArgs("p1").
		WillReturnRows(pgxmock.NewRows([]string{"increment_views"}).AddRow(ptr(int64(42))))
	views, err := repo.IncrementViews(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), views)

	mock.ExpectQuery(`SELECT increment_views\(\$1\)`).
		WithArgs("gone").
		WillReturnRows(pgxmock.NewRows([]string{"increment_views"}).AddRow(nil))
	_, err = repo.IncrementViews(context.Background(), "gone")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	mock.ExpectQuery(`SELECT increment_views\(\$1\)`).
		WithArgs("p1").
		WillReturnError(errors.New("conn reset"))
	_, err = repo.IncrementViews(context.Background(), "p1")
	assert.ErrorContains(t, err, "increment views")
	assert.NoError(t, mock.ExpectationsWereMet())
}
