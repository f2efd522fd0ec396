package product

import (
	"database/sql"
	"time"

	"github.com/kelmerpassos/ipet-api/pkg/database"
	"github.com/kelmerpassos/ipet-api/pkg/models"
)

const (
	productsTable     = "product"
	associationsTable = "inst_product_customer"
)

// ProductRow represents the database row for a product
type ProductRow struct {
	ID              sql.NullInt64   `db:"id" fieldopt:"omitempty"`
	FullName        sql.NullString  `db:"full_name"`
	FullDescription sql.NullString  `db:"full_description"`
	Brand           sql.NullString  `db:"brand"`
	Price           sql.NullFloat64 `db:"price"`
	CreatedAt       sql.NullTime    `db:"created_at"`
}

var productStruct = database.NewStruct(new(ProductRow))

// FromProduct converts a domain model to a database row
func FromProduct(p *models.Product) *ProductRow {
	return &ProductRow{
		ID:              sql.NullInt64{Int64: p.ID, Valid: p.ID != 0},
		FullName:        sql.NullString{String: p.FullName, Valid: p.FullName != ""},
		FullDescription: sql.NullString{String: p.FullDescription, Valid: p.FullDescription != ""},
		Brand:           sql.NullString{String: p.Brand, Valid: p.Brand != ""},
		Price:           sql.NullFloat64{Float64: p.Price, Valid: true},
		CreatedAt:       sql.NullTime{Time: p.CreatedAt, Valid: !p.CreatedAt.IsZero()},
	}
}

// ToProduct converts a database row to a domain model
func ToProduct(row *ProductRow) *models.Product {
	return &models.Product{
		ID:              row.ID.Int64,
		FullName:        row.FullName.String,
		FullDescription: row.FullDescription.String,
		Brand:           row.Brand.String,
		Price:           row.Price.Float64,
		CreatedAt:       row.CreatedAt.Time,
	}
}

// ToProducts converts a slice of database rows to domain models
func ToProducts(rows []ProductRow) []*models.Product {
	products := make([]*models.Product, len(rows))
	for i, row := range rows {
		products[i] = ToProduct(&row)
	}
	return products
}

// Now returns the current time in UTC
func Now() time.Time {
	return time.Now().UTC()
}
