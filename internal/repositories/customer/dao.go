package customer

import (
	"database/sql"
	"time"

	"github.com/kelmerpassos/ipet-api/pkg/database"
	"github.com/kelmerpassos/ipet-api/pkg/models"
)

const (
	customersTable = "customer"
)

// CustomerRow represents the database row for a customer
type CustomerRow struct {
	ID        sql.NullInt64  `db:"id" fieldopt:"omitempty"`
	CPF       sql.NullInt64  `db:"cpf"`
	FullName  sql.NullString `db:"full_name"`
	Address   sql.NullString `db:"address"`
	CreatedAt sql.NullTime   `db:"created_at"`
}

var customerStruct = database.NewStruct(new(CustomerRow))

// FromCustomer converts a domain model to a database row
func FromCustomer(c *models.Customer) *CustomerRow {
	return &CustomerRow{
		ID:        sql.NullInt64{Int64: c.ID, Valid: c.ID != 0},
		CPF:       sql.NullInt64{Int64: c.CPF, Valid: true},
		FullName:  sql.NullString{String: c.FullName, Valid: c.FullName != ""},
		Address:   sql.NullString{String: c.Address, Valid: c.Address != ""},
		CreatedAt: sql.NullTime{Time: c.CreatedAt, Valid: !c.CreatedAt.IsZero()},
	}
}

// ToCustomer converts a database row to a domain model
func ToCustomer(row *CustomerRow) *models.Customer {
	return &models.Customer{
		ID:        row.ID.Int64,
		CPF:       row.CPF.Int64,
		FullName:  row.FullName.String,
		Address:   row.Address.String,
		CreatedAt: row.CreatedAt.Time,
	}
}

// ToCustomers converts a slice of database rows to domain models
func ToCustomers(rows []CustomerRow) []*models.Customer {
	customers := make([]*models.Customer, len(rows))
	for i, row := range rows {
		customers[i] = ToCustomer(&row)
	}
	return customers
}

// Now returns the current time in UTC
func Now() time.Time {
	return time.Now().UTC()
}
