package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FolderProduct is the copy of a product taken when it was added to a
// folder. Later catalog edits do not change it.
type FolderProduct struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Code        string           `json:"code"`
	Reference   string           `json:"reference"`
	Stock       string           `json:"stock"`
	Images      []string         `json:"images"`
	Price       *decimal.Decimal `json:"price,omitempty"`
}

// Snapshot copies p for storage in a folder.
func Snapshot(p *Product) FolderProduct {
	images := make([]string, len(p.Images))
	copy(images, p.Images)
	return FolderProduct{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Code:        p.Code,
		Reference:   p.Reference,
		Stock:       p.Stock,
		Images:      images,
		Price:       p.Price,
	}
}

func (fp *FolderProduct) FirstImage() string {
	if len(fp.Images) == 0 {
		return ""
	}
	return fp.Images[0]
}

// DigitalFolder is a named selection of products prepared for one client.
type DigitalFolder struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Products    []FolderProduct `json:"products"`
	ClientName  *string         `json:"client_name,omitempty"`
	ClientEmail *string         `json:"client_email,omitempty"`
	ClientPhone *string         `json:"client_phone,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
