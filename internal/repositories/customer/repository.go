package customer

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/kelmerpassos/ipet-api/pkg/database"
	"github.com/kelmerpassos/ipet-api/pkg/models"
	"github.com/kelmerpassos/ipet-api/pkg/tracing"
)

// CustomerRepository defines the interface for customer data access
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	GetByID(ctx context.Context, id int64) (*models.Customer, error)
	GetByCPF(ctx context.Context, cpf int64) (*models.Customer, error)
	List(ctx context.Context, fullName string, page, perPage int) ([]*models.Customer, int, error)
	Update(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	Delete(ctx context.Context, id int64) error
}

// Repository implements CustomerRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new customer repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new customer
func (r *Repository) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	ctx, span := tracing.StartSpan(ctx, "CustomerRepository.Create")
	defer span.End()

	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = Now()
	}

	row := FromCustomer(customer)
	ib := customerStruct.InsertInto(customersTable, row).Returning("id")
	query, args := ib.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"full_name": customer.FullName,
	}).Debug("Creating customer")

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&customer.ID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create customer")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create customer")
	}

	return customer, nil
}

// GetByID retrieves a customer by ID. Returns (nil, nil) when no customer exists.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	ctx, span := tracing.StartSpan(ctx, "CustomerRepository.GetByID")
	defer span.End()

	sb := customerStruct.SelectFrom(customersTable)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()

	var row CustomerRow
	err := r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get customer")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get customer")
	}

	return ToCustomer(&row), nil
}

// GetByCPF retrieves a customer by CPF. Returns (nil, nil) when no customer exists.
func (r *Repository) GetByCPF(ctx context.Context, cpf int64) (*models.Customer, error) {
	ctx, span := tracing.StartSpan(ctx, "CustomerRepository.GetByCPF")
	defer span.End()

	sb := customerStruct.SelectFrom(customersTable)
	sb.Where(sb.Equal("cpf", cpf))

	query, args := sb.Build()

	var row CustomerRow
	err := r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get customer by cpf")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get customer")
	}

	return ToCustomer(&row), nil
}

// List retrieves a page of customers, optionally filtered by full name
func (r *Repository) List(ctx context.Context, fullName string, page, perPage int) ([]*models.Customer, int, error) {
	ctx, span := tracing.StartSpan(ctx, "CustomerRepository.List")
	defer span.End()

	sb := customerStruct.SelectFrom(customersTable)
	if fullName != "" {
		sb.Where(sb.ILike("full_name", "%"+fullName+"%"))
	}
	sb.OrderBy("id")
	sb.Limit(perPage).Offset((page - 1) * perPage)

	query, args := sb.Build()

	var rows []CustomerRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list customers")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list customers")
	}

	cb := database.NewSelectBuilder()
	cb.Select("COUNT(*)").From(customersTable)
	if fullName != "" {
		cb.Where(cb.ILike("full_name", "%"+fullName+"%"))
	}
	countQuery, countArgs := cb.Build()

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count customers")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list customers")
	}

	return ToCustomers(rows), total, nil
}

// Update updates an existing customer
func (r *Repository) Update(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	ctx, span := tracing.StartSpan(ctx, "CustomerRepository.Update")
	defer span.End()

	ub := customerStruct.Update(customersTable, FromCustomer(customer))
	ub.Where(ub.Equal("id", customer.ID))

	query, args := ub.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id": customer.ID,
	}).Debug("Updating customer")

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update customer")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update customer")
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return nil, httperror.NewHTTPError(http.StatusNotFound, "customer not found")
	}

	return customer, nil
}

// Delete deletes a customer. Associations cascade in the schema.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	ctx, span := tracing.StartSpan(ctx, "CustomerRepository.Delete")
	defer span.End()

	db := customerStruct.DeleteFrom(customersTable)
	db.Where(db.Equal("id", id))

	query, args := db.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id": id,
	}).Debug("Deleting customer")

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete customer")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete customer")
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, "customer not found")
	}

	return nil
}
