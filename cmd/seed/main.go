// Command seed fills the catalog database with categories and a
// deterministic set of demo products. Re-running it updates the same rows.
//
// Run: go run ./cmd/seed -products 500
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/vitalcosmeticos/catalog/internal/config"
	"github.com/vitalcosmeticos/catalog/internal/domain"
	"github.com/vitalcosmeticos/catalog/migrations"
	"github.com/vitalcosmeticos/catalog/pkg/database"
	"github.com/vitalcosmeticos/catalog/pkg/logger"
	"github.com/vitalcosmeticos/catalog/pkg/slug"
)

const batchSize = 200

// Stable namespace so re-runs produce the same ids.
var seedNamespace = uuid.MustParse("5b0f3c1e-7a2d-4e8b-9c61-3d4f5a6b7c8d")

type categoryDef struct {
	Name        string
	Color       string
	Description string
	Types       []string
}

var categories = []categoryDef{
	{"Cabelo", "#183263", "Tratamento e finalização", []string{"Shampoo", "Condicionador", "Máscara Capilar", "Óleo Reparador", "Leave-in"}},
	{"Corpo", "#3a5a8c", "Hidratação e cuidados diários", []string{"Loção Hidratante", "Óleo Corporal", "Esfoliante", "Manteiga Corporal"}},
	{"Rosto", "#7ed957", "Limpeza e tratamento facial", []string{"Sabonete Facial", "Sérum", "Tônico", "Creme Antissinais"}},
	{"Proteção Solar", "#f2a93b", "Filtros para rosto e corpo", []string{"Protetor Solar FPS 30", "Protetor Solar FPS 50", "Bruma Solar"}},
	{"Maquiagem", "#c2185b", "Pele, olhos e lábios", []string{"Base Líquida", "Corretivo", "Batom Matte", "Máscara de Cílios"}},
}

var lines = []string{"Vital Pro", "Nutri Max", "Essencial", "Botânica", "Revita", "Pure Care"}

var sizes = []string{"120 ml", "250 ml", "300 ml", "500 ml", "1 L", "30 g", "60 g"}

var descriptionTemplates = []string{
	"%s da linha %s, desenvolvido para uso diário com ativos de alta performance.",
	"%s %s com fórmula vegana e livre de parabenos. Resultado profissional em casa.",
	"Linha %[2]s: %[1]s com fragrância suave e textura leve, ideal para revenda.",
}

var stocks = []string{
	domain.StockAvailable, domain.StockAvailable, domain.StockAvailable,
	domain.StockOutOfStock, domain.StockComingSoon,
}

type seededProduct struct {
	ID          string
	Name        string
	Description string
	CategoryID  string
	Code        string
	Reference   string
	Stock       string
	Images      []string
	Price       decimal.Decimal
	CreatedAt   time.Time
}

func stableID(kind string, key any) string {
	return uuid.NewSHA1(seedNamespace, []byte(fmt.Sprintf("%s:%v", kind, key))).String()
}

func generateProducts(rng *rand.Rand, n int, categoryIDs []string, imageBase string) []seededProduct {
	products := make([]seededProduct, 0, n)
	now := time.Now().UTC()

	for i := 0; i < n; i++ {
		catIdx := i % len(categories)
		cat := categories[catIdx]
		productType := cat.Types[rng.Intn(len(cat.Types))]
		line := lines[rng.Intn(len(lines))]
		size := sizes[rng.Intn(len(sizes))]

		name := fmt.Sprintf("%s %s %s", productType, line, size)
		description := fmt.Sprintf(descriptionTemplates[rng.Intn(len(descriptionTemplates))], productType, line)

		// R$ 19,90 to R$ 299,90
		price := decimal.New(int64(1990+rng.Intn(28000)), -2)

		var images []string
		if imageBase != "" {
			images = []string{fmt.Sprintf("%s/produtos/%s.jpg", strings.TrimRight(imageBase, "/"), slug.Generate(productType))}
		}

		createdAt := now.Add(-time.Duration(rng.Intn(90*24)) * time.Hour)
		products = append(products, seededProduct{
			ID:          stableID("product", i),
			Name:        name,
			Description: description,
			CategoryID:  categoryIDs[catIdx],
			Code:        fmt.Sprintf("VT-%05d", i+1),
			Reference:   fmt.Sprintf("%s-%04d", strings.ToUpper(slug.Generate(cat.Name)[:3]), i+1),
			Stock:       stocks[rng.Intn(len(stocks))],
			Images:      images,
			Price:       price,
			CreatedAt:   createdAt,
		})
	}
	return products
}

func seedCategories(ctx context.Context, pool *pgxpool.Pool) ([]string, error) {
	ids := make([]string, len(categories))
	for i, c := range categories {
		var id string
		err := pool.QueryRow(ctx,
			`INSERT INTO categories (id, name, slug, color, description)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (name) DO UPDATE SET color = EXCLUDED.color, description = EXCLUDED.description
			 RETURNING id`,
			stableID("category", c.Name), c.Name, slug.Generate(c.Name), c.Color, c.Description,
		).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("seed category %q: %w", c.Name, err)
		}
		ids[i] = id
	}
	return ids, nil
}

func insertProducts(ctx context.Context, pool *pgxpool.Pool, products []seededProduct, log *slog.Logger) error {
	for start := 0; start < len(products); start += batchSize {
		end := min(start+batchSize, len(products))
		batch := products[start:end]

		var sb strings.Builder
		sb.WriteString(`INSERT INTO products (id, name, description, category_id, code, reference, stock, images, price, created_at, updated_at) VALUES `)

		const cols = 11
		args := make([]any, 0, len(batch)*cols)
		for i, p := range batch {
			if i > 0 {
				sb.WriteString(", ")
			}
			base := i * cols
			sb.WriteString("(")
			for c := 1; c <= cols; c++ {
				if c > 1 {
					sb.WriteString(", ")
				}
				fmt.Fprintf(&sb, "$%d", base+c)
			}
			sb.WriteString(")")

			images := p.Images
			if images == nil {
				images = []string{}
			}
			var price pgtype.Numeric
			if err := price.Scan(p.Price.StringFixed(2)); err != nil {
				return fmt.Errorf("encode price of %s: %w", p.Code, err)
			}
			args = append(args, p.ID, p.Name, p.Description, p.CategoryID, p.Code, p.Reference,
				p.Stock, images, price, p.CreatedAt, p.CreatedAt)
		}
		sb.WriteString(` ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			category_id = EXCLUDED.category_id,
			stock = EXCLUDED.stock,
			images = EXCLUDED.images,
			price = EXCLUDED.price,
			updated_at = NOW()`)

		if _, err := pool.Exec(ctx, sb.String(), args...); err != nil {
			return fmt.Errorf("insert products %d-%d: %w", start, end, err)
		}
		log.Info("products batch inserted", slog.Int("from", start), slog.Int("to", end))
	}
	return nil
}

func run(count int, imageBase string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New("catalog-seed", cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	categoryIDs, err := seedCategories(ctx, pool)
	if err != nil {
		return err
	}
	log.Info("categories seeded", slog.Int("count", len(categoryIDs)))

	rng := rand.New(rand.NewSource(42))
	products := generateProducts(rng, count, categoryIDs, imageBase)
	if err := insertProducts(ctx, pool, products, log); err != nil {
		return err
	}

	log.Info("seed complete", slog.Int("products", len(products)))
	return nil
}

func main() {
	count := flag.Int("products", 120, "number of demo products")
	imageBase := flag.String("images", "", "base URL for product photos; empty leaves products without images")
	flag.Parse()

	if *count < 0 {
		fmt.Fprintln(os.Stderr, "products must not be negative")
		os.Exit(2)
	}
	if err := run(*count, *imageBase); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
