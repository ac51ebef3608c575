package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vitalcosmeticos/catalog/pkg/pagination"
)

// Stock status constants.
const (
	StockAvailable  = "available"
	StockOutOfStock = "out_of_stock"
	StockComingSoon = "coming_soon"
)

// UncategorizedLabel is shown for products whose category was removed.
const UncategorizedLabel = "Sem categoria"

// Product is a catalog item.
type Product struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	CategoryID  *string          `json:"category_id,omitempty"`
	Category    string           `json:"category"`
	Code        string           `json:"code"`
	Reference   string           `json:"reference"`
	Stock       string           `json:"stock"`
	Images      []string         `json:"images"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Views       int64            `json:"views"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// FirstImage returns the cover image URL or "".
func (p *Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

func ValidStocks() []string {
	return []string{StockAvailable, StockOutOfStock, StockComingSoon}
}

func IsValidStock(s string) bool {
	for _, v := range ValidStocks() {
		if v == s {
			return true
		}
	}
	return false
}

// StockLabel returns the Portuguese badge text for a stock status.
func StockLabel(s string) string {
	switch s {
	case StockAvailable:
		return "Disponível"
	case StockOutOfStock:
		return "Esgotado"
	case StockComingSoon:
		return "Em breve"
	default:
		return s
	}
}

// ProductQuery holds the storefront listing filters. Category is a
// category name, Stock a stock status; empty strings mean "all".
type ProductQuery struct {
	Page     int
	Limit    int
	Category string
	Search   string
	Stock    string
}

// ProductPage is one page of products. When Filtered is set the stock
// filter removed items from this page only; Total and TotalPages still
// describe the unfiltered listing.
type ProductPage struct {
	pagination.Result[Product]
	Filtered bool `json:"filtered"`
}
