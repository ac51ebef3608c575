package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vitalcosmeticos/catalog/internal/domain"
	"github.com/vitalcosmeticos/catalog/internal/repository"
	"github.com/vitalcosmeticos/catalog/pkg/database"
	apperrors "github.com/vitalcosmeticos/catalog/pkg/errors"
)

const contactColumns = `id, name, email, phone, message, product_id, product_name, status, created_at, updated_at`

// ContactRepository implements repository.ContactRepository using PostgreSQL.
type ContactRepository struct {
	db database.DBTX
}

func NewContactRepository(db database.DBTX) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(ctx context.Context, c *domain.Contact) error {
	query := `INSERT INTO contacts (` + contactColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		c.ID,
		c.Name,
		c.Email,
		c.Phone,
		c.Message,
		c.ProductID,
		c.ProductName,
		c.Status,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.InvalidInput("product not found")
		}
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

func (r *ContactRepository) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	c, err := scanContact(r.db.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("contact", id)
		}
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return c, nil
}

func (r *ContactRepository) List(ctx context.Context, filter repository.ContactFilter) ([]domain.Contact, int, error) {
	var (
		where string
		args  []any
	)
	if filter.Status != nil {
		where = "WHERE status = $1"
		args = append(args, *filter.Status)
	}
	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM contacts
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		contactColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var (
		contacts = []domain.Contact{}
		total    int
	)
	for rows.Next() {
		c, err := scanContact(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan contact row: %w", err)
		}
		contacts = append(contacts, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate contact rows: %w", err)
	}
	return contacts, total, nil
}

// UpdateStatus locks the row, captures the previous status and writes the
// new one in a single statement.
func (r *ContactRepository) UpdateStatus(ctx context.Context, id, status string) (*domain.Contact, string, error) {
	query := `
		WITH old AS (
			SELECT id, status FROM contacts WHERE id = $1 FOR UPDATE
		)
		UPDATE contacts c
		SET status = $2, updated_at = $3
		FROM old
		WHERE c.id = old.id
		RETURNING c.id, c.name, c.email, c.phone, c.message, c.product_id, c.product_name,
		          c.status, c.created_at, c.updated_at, old.status`

	var oldStatus string
	c, err := scanContact(r.db.QueryRow(ctx, query, id, status, time.Now().UTC()), &oldStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", apperrors.NotFound("contact", id)
		}
		return nil, "", fmt.Errorf("update contact status: %w", err)
	}
	return c, oldStatus, nil
}

func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("contact", id)
	}
	return nil
}

func (r *ContactRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM contacts WHERE status = $1`, status).Scan(&n); err != nil {
		return 0, fmt.Errorf("count contacts: %w", err)
	}
	return n, nil
}

// LatestByStatus returns up to limit contacts with status, newest first.
func (r *ContactRepository) LatestByStatus(ctx context.Context, status string, limit int) ([]domain.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE status = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.Query(ctx, query, status, limit)
	if err != nil {
		return nil, fmt.Errorf("latest contacts: %w", err)
	}
	defer rows.Close()

	contacts := []domain.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact row: %w", err)
		}
		contacts = append(contacts, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contact rows: %w", err)
	}
	return contacts, nil
}

func scanContact(row pgx.Row, extra ...any) (*domain.Contact, error) {
	var c domain.Contact
	dest := []any{
		&c.ID,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.Message,
		&c.ProductID,
		&c.ProductName,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &c, nil
}
