package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vitalcosmeticos/catalog/internal/domain"
	"github.com/vitalcosmeticos/catalog/pkg/database"
	apperrors "github.com/vitalcosmeticos/catalog/pkg/errors"
)

const folderColumns = `id, name, description, products, client_name, client_email, client_phone, created_at, updated_at`

// FolderRepository implements repository.FolderRepository using PostgreSQL.
// Product snapshots are stored as a JSONB array.
type FolderRepository struct {
	db database.DBTX
}

func NewFolderRepository(db database.DBTX) *FolderRepository {
	return &FolderRepository{db: db}
}

func (r *FolderRepository) Create(ctx context.Context, f *domain.DigitalFolder) error {
	products, err := marshalFolderProducts(f.Products)
	if err != nil {
		return err
	}

	query := `INSERT INTO digital_folders (` + folderColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = r.db.Exec(ctx, query,
		f.ID,
		f.Name,
		f.Description,
		products,
		f.ClientName,
		f.ClientEmail,
		f.ClientPhone,
		f.CreatedAt,
		f.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert folder: %w", err)
	}
	return nil
}

func (r *FolderRepository) GetByID(ctx context.Context, id string) (*domain.DigitalFolder, error) {
	f, err := scanFolder(r.db.QueryRow(ctx, `SELECT `+folderColumns+` FROM digital_folders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("folder", id)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}
	return f, nil
}

func (r *FolderRepository) List(ctx context.Context) ([]domain.DigitalFolder, error) {
	rows, err := r.db.Query(ctx, `SELECT `+folderColumns+` FROM digital_folders ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	folders := []domain.DigitalFolder{}
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder row: %w", err)
		}
		folders = append(folders, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folder rows: %w", err)
	}
	return folders, nil
}

func (r *FolderRepository) Update(ctx context.Context, f *domain.DigitalFolder) error {
	products, err := marshalFolderProducts(f.Products)
	if err != nil {
		return err
	}
	f.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE digital_folders
		SET name = $1, description = $2, products = $3, client_name = $4,
		    client_email = $5, client_phone = $6, updated_at = $7
		WHERE id = $8`

	ct, err := r.db.Exec(ctx, query,
		f.Name,
		f.Description,
		products,
		f.ClientName,
		f.ClientEmail,
		f.ClientPhone,
		f.UpdatedAt,
		f.ID,
	)
	if err != nil {
		return fmt.Errorf("update folder: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("folder", f.ID)
	}
	return nil
}

func (r *FolderRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM digital_folders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("folder", id)
	}
	return nil
}

func marshalFolderProducts(products []domain.FolderProduct) ([]byte, error) {
	if products == nil {
		products = []domain.FolderProduct{}
	}
	b, err := json.Marshal(products)
	if err != nil {
		return nil, fmt.Errorf("marshal folder products: %w", err)
	}
	return b, nil
}

func scanFolder(row pgx.Row) (*domain.DigitalFolder, error) {
	var (
		f        domain.DigitalFolder
		products []byte
	)
	err := row.Scan(
		&f.ID,
		&f.Name,
		&f.Description,
		&products,
		&f.ClientName,
		&f.ClientEmail,
		&f.ClientPhone,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	f.Products = []domain.FolderProduct{}
	if len(products) > 0 {
		if err := json.Unmarshal(products, &f.Products); err != nil {
			return nil, fmt.Errorf("unmarshal folder products: %w", err)
		}
	}
	return &f, nil
}
