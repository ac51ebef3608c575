package postgres

import (
	"context"
	"fmt"

	"github.com/vitalcosmeticos/catalog/internal/domain"
	"github.com/vitalcosmeticos/catalog/pkg/database"
)

// DashboardRepository computes the admin overview from the catalog tables.
type DashboardRepository struct {
	db database.DBTX
}

func NewDashboardRepository(db database.DBTX) *DashboardRepository {
	return &DashboardRepository{db: db}
}

func (r *DashboardRepository) Stats(ctx context.Context, topN, recentN int) (*domain.DashboardStats, error) {
	stats := &domain.DashboardStats{
		ProductsByStock: make(map[string]int, len(domain.ValidStocks())),
		TopViewed:       []domain.ProductViews{},
		ByCategory:      []domain.CategoryCount{},
		RecentContacts:  []domain.Contact{},
	}
	for _, s := range domain.ValidStocks() {
		stats.ProductsByStock[s] = 0
	}

	totals := `
		SELECT
			(SELECT count(*) FROM products),
			(SELECT COALESCE(sum(views), 0)::bigint FROM products),
			(SELECT count(*) FROM favorites),
			(SELECT count(DISTINCT user_id) FROM favorites),
			(SELECT count(*) FROM contacts),
			(SELECT count(*) FROM contacts WHERE status = 'pending')`
	err := r.db.QueryRow(ctx, totals).Scan(
		&stats.TotalProducts,
		&stats.TotalViews,
		&stats.TotalFavorites,
		&stats.FavoritingUsers,
		&stats.TotalContacts,
		&stats.PendingContacts,
	)
	if err != nil {
		return nil, fmt.Errorf("dashboard totals: %w", err)
	}

	if err := r.stockBreakdown(ctx, stats); err != nil {
		return nil, err
	}
	if err := r.topViewed(ctx, stats, topN); err != nil {
		return nil, err
	}
	if err := r.byCategory(ctx, stats); err != nil {
		return nil, err
	}
	if err := r.recentContacts(ctx, stats, recentN); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *DashboardRepository) stockBreakdown(ctx context.Context, stats *domain.DashboardStats) error {
	rows, err := r.db.Query(ctx, `SELECT stock, count(*) FROM products GROUP BY stock`)
	if err != nil {
		return fmt.Errorf("dashboard stock: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			stock string
			n     int
		)
		if err := rows.Scan(&stock, &n); err != nil {
			return fmt.Errorf("scan stock row: %w", err)
		}
		stats.ProductsByStock[stock] = n
	}
	return rows.Err()
}

func (r *DashboardRepository) topViewed(ctx context.Context, stats *domain.DashboardStats, limit int) error {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, code, views FROM products ORDER BY views DESC, name LIMIT $1`, limit)
	if err != nil {
		return fmt.Errorf("dashboard top viewed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pv domain.ProductViews
		if err := rows.Scan(&pv.ID, &pv.Name, &pv.Code, &pv.Views); err != nil {
			return fmt.Errorf("scan top viewed row: %w", err)
		}
		stats.TopViewed = append(stats.TopViewed, pv)
	}
	return rows.Err()
}

func (r *DashboardRepository) byCategory(ctx context.Context, stats *domain.DashboardStats) error {
	query := `
		SELECT COALESCE(c.name, 'Sem categoria') AS category, count(*) AS products
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		GROUP BY 1
		ORDER BY 2 DESC, 1`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("dashboard by category: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cc domain.CategoryCount
		if err := rows.Scan(&cc.Category, &cc.Products); err != nil {
			return fmt.Errorf("scan category count row: %w", err)
		}
		stats.ByCategory = append(stats.ByCategory, cc)
	}
	return rows.Err()
}

func (r *DashboardRepository) recentContacts(ctx context.Context, stats *domain.DashboardStats, limit int) error {
	rows, err := r.db.Query(ctx,
		`SELECT `+contactColumns+` FROM contacts ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return fmt.Errorf("dashboard recent contacts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return fmt.Errorf("scan contact row: %w", err)
		}
		stats.RecentContacts = append(stats.RecentContacts, *c)
	}
	return rows.Err()
}
