package postgres

import (
	"context"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalcosmeticos/catalog/internal/domain"
)

func TestDashboardRepository_Stats(t *testing.T) {
	mock := newMock(t)
	repo := NewDashboardRepository(mock)

	mock.ExpectQuery(`SELECT count\(DISTINCT user_id\) FROM favorites`).
		WillReturnRows(pgxmock.NewRows([]string{"a", "b", "c", "d", "e", "f"}).
			AddRow(10, int64(250), 8, 3, 6, 2))
	mock.ExpectQuery(`GROUP BY stock`).
		WillReturnRows(pgxmock.NewRows([]string{"stock", "count"}).
			AddRow(domain.StockAvailable, 7).
			AddRow(domain.StockOutOfStock, 3))
	mock.ExpectQuery(`ORDER BY views DESC`).
		WithArgs(5).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "code", "views"}).
			AddRow("p1", "Batom", "B1", int64(120)))
	mock.ExpectQuery(`GROUP BY 1`).
		WillReturnRows(pgxmock.NewRows([]string{"category", "products"}).
			AddRow("Maquiagem", 6).
			AddRow(domain.UncategorizedLabel, 4))
	mock.ExpectQuery(`FROM contacts ORDER BY created_at DESC LIMIT \$1`).
		WithArgs(5).
		WillReturnRows(pgxmock.NewRows(contactCols).
			AddRow(contactValues(sampleContact("c1", domain.ContactPending))...))

	stats, err := repo.Stats(context.Background(), 5, 5)
	require.NoError(t, err)

	assert.Equal(t, 10, stats.TotalProducts)
	assert.Equal(t, int64(250), stats.TotalViews)
	assert.Equal(t, 3, stats.FavoritingUsers)
	assert.Equal(t, 2, stats.PendingContacts)
	assert.Equal(t, 7, stats.ProductsByStock[domain.StockAvailable])
	assert.Equal(t, 0, stats.ProductsByStock[domain.StockComingSoon])
	require.Len(t, stats.TopViewed, 1)
	assert.Equal(t, int64(120), stats.TopViewed[0].Views)
	assert.Equal(t, domain.UncategorizedLabel, stats.ByCategory[1].Category)
	assert.Len(t, stats.RecentContacts, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
