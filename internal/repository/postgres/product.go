package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vitalcosmeticos/catalog/internal/domain"
	"github.com/vitalcosmeticos/catalog/internal/repository"
	"github.com/vitalcosmeticos/catalog/pkg/database"
	apperrors "github.com/vitalcosmeticos/catalog/pkg/errors"
)

const productColumns = `p.id, p.name, p.description, p.category_id, COALESCE(c.name, 'Sem categoria'),
		p.code, p.reference, p.stock, p.images, p.price, p.views, p.created_at, p.updated_at`

const productFrom = `FROM products p LEFT JOIN categories c ON c.id = p.category_id`

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	db database.DBTX
}

func NewProductRepository(db database.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (id, name, description, category_id, code, reference, stock, images, price, views, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.Exec(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		p.CategoryID,
		p.Code,
		p.Reference,
		p.Stock,
		p.Images,
		toNumeric(p.Price),
		p.Views,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.InvalidInput("category not found")
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` ` + productFrom + ` WHERE p.id = $1`

	p, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}
	query := `SELECT ` + productColumns + ` ` + productFrom + ` WHERE p.id = ANY($1)`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get products by ids: %w", err)
	}
	found, _, err := collectProducts(rows, false)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]domain.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	ordered := make([]domain.Product, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
			delete(byID, id)
		}
	}
	return ordered, nil
}

func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("p.category_id = $%d", argIndex))
		args = append(args, *filter.CategoryID)
		argIndex++
	}

	if term := strings.TrimSpace(filter.Search); term != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(p.name ILIKE $%[1]d OR p.description ILIKE $%[1]d OR p.code ILIKE $%[1]d OR p.reference ILIKE $%[1]d)",
			argIndex))
		args = append(args, containsPattern(term))
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		%s
		%s
		ORDER BY p.created_at DESC
		LIMIT $%d OFFSET $%d`,
		productColumns, productFrom, whereClause, argIndex, argIndex+1,
	)
	args = append(args, filter.Limit, filter.Offset)

	ctx, end := database.TraceQuery(ctx, "list_products", query)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		end(err)
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	products, total, err := collectProducts(rows, true)
	end(err)
	if err != nil {
		return nil, 0, err
	}

	// An offset past the last match returns no rows, so the window count is
	// missing too.
	if len(products) == 0 && filter.Offset > 0 {
		countQuery := fmt.Sprintf(`SELECT count(*) %s %s`, productFrom, whereClause)
		ctx, end := database.TraceQuery(ctx, "count_products", countQuery)
		err := r.db.QueryRow(ctx, countQuery, args[:len(args)-2]...).Scan(&total)
		end(err)
		if err != nil {
			return nil, 0, fmt.Errorf("count products: %w", err)
		}
	}
	return products, total, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products
		SET name = $1, description = $2, category_id = $3, code = $4, reference = $5,
		    stock = $6, images = $7, price = $8, updated_at = $9
		WHERE id = $10`

	ct, err := r.db.Exec(ctx, query,
		p.Name,
		p.Description,
		p.CategoryID,
		p.Code,
		p.Reference,
		p.Stock,
		p.Images,
		toNumeric(p.Price),
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.InvalidInput("category not found")
		}
		return fmt.Errorf("update product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}
	return nil
}

// IncrementViews goes through the increment_views function so concurrent
// viewers never lose an update.
func (r *ProductRepository) IncrementViews(ctx context.Context, id string) (int64, error) {
	var views *int64
	if err := r.db.QueryRow(ctx, `SELECT increment_views($1)`, id).Scan(&views); err != nil {
		return 0, fmt.Errorf("increment views: %w", err)
	}
	if views == nil {
		return 0, apperrors.NotFound("product", id)
	}
	return *views, nil
}

func scanProduct(row pgx.Row, extra ...any) (*domain.Product, error) {
	var (
		p     domain.Product
		price pgtype.Numeric
	)
	dest := []any{
		&p.ID,
		&p.Name,
		&p.Description,
		&p.CategoryID,
		&p.Category,
		&p.Code,
		&p.Reference,
		&p.Stock,
		&p.Images,
		&price,
		&p.Views,
		&p.CreatedAt,
		&p.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	p.Price = fromNumeric(price)
	if p.Images == nil {
		p.Images = []string{}
	}
	return &p, nil
}

// collectProducts drains rows. With withTotal the last column is count(*) OVER().
func collectProducts(rows pgx.Rows, withTotal bool) ([]domain.Product, int, error) {
	defer rows.Close()

	var (
		products []domain.Product
		total    int
	)
	for rows.Next() {
		var extra []any
		if withTotal {
			extra = append(extra, &total)
		}
		p, err := scanProduct(rows, extra...)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, total, nil
}
