package product

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

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	List(ctx context.Context, fullName, brand string, page, perPage int) ([]*models.Product, int, error)
	ListByCustomer(ctx context.Context, customerID int64, page, perPage int) ([]*models.Product, int, error)
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
}

// Repository implements ProductRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new product repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new product
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	ctx, span := tracing.StartSpan(ctx, "ProductRepository.Create")
	defer span.End()

	if product.CreatedAt.IsZero() {
		product.CreatedAt = Now()
	}

	row := FromProduct(product)
	ib := productStruct.InsertInto(productsTable, row).Returning("id")
	query, args := ib.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"full_name": product.FullName,
		"brand":     product.Brand,
	}).Debug("Creating product")

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&product.ID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create product")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create product")
	}

	return product, nil
}

// GetByID retrieves a product by ID. Returns (nil, nil) when no product exists.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	ctx, span := tracing.StartSpan(ctx, "ProductRepository.GetByID")
	defer span.End()

	sb := productStruct.SelectFrom(productsTable)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()

	var row ProductRow
	err := r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get product")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get product")
	}

	return ToProduct(&row), nil
}

// List retrieves a page of products, optionally filtered by full name and brand
func (r *Repository) List(ctx context.Context, fullName, brand string, page, perPage int) ([]*models.Product, int, error) {
	ctx, span := tracing.StartSpan(ctx, "ProductRepository.List")
	defer span.End()

	sb := productStruct.SelectFrom(productsTable)
	if fullName != "" {
		sb.Where(sb.ILike("full_name", "%"+fullName+"%"))
	}
	if brand != "" {
		sb.Where(sb.ILike("brand", "%"+brand+"%"))
	}
	sb.OrderBy("id")
	sb.Limit(perPage).Offset((page - 1) * perPage)

	query, args := sb.Build()

	var rows []ProductRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list products")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list products")
	}

	cb := database.NewSelectBuilder()
	cb.Select("COUNT(*)").From(productsTable)
	if fullName != "" {
		cb.Where(cb.ILike("full_name", "%"+fullName+"%"))
	}
	if brand != "" {
		cb.Where(cb.ILike("brand", "%"+brand+"%"))
	}
	countQuery, countArgs := cb.Build()

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count products")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list products")
	}

	return ToProducts(rows), total, nil
}

// ListByCustomer retrieves a page of products associated to a customer
func (r *Repository) ListByCustomer(ctx context.Context, customerID int64, page, perPage int) ([]*models.Product, int, error) {
	ctx, span := tracing.StartSpan(ctx, "ProductRepository.ListByCustomer")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(
		"product.id", "product.full_name", "product.full_description",
		"product.brand", "product.price", "product.created_at",
	)
	sb.From(productsTable)
	sb.Join(associationsTable, "inst_product_customer.product_id = product.id")
	sb.Where(sb.Equal("inst_product_customer.customer_id", customerID))
	sb.OrderBy("product.id")
	sb.Limit(perPage).Offset((page - 1) * perPage)

	query, args := sb.Build()

	var rows []ProductRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list products by customer")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list customer products")
	}

	cb := database.NewSelectBuilder()
	cb.Select("COUNT(*)").From(associationsTable)
	cb.Where(cb.Equal("customer_id", customerID))
	countQuery, countArgs := cb.Build()

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count products by customer")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list customer products")
	}

	return ToProducts(rows), total, nil
}

// Update updates an existing product
func (r *Repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	ctx, span := tracing.StartSpan(ctx, "ProductRepository.Update")
	defer span.End()

	ub := productStruct.Update(productsTable, FromProduct(product))
	ub.Where(ub.Equal("id", product.ID))

	query, args := ub.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id": product.ID,
	}).Debug("Updating product")

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update product")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update product")
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return nil, httperror.NewHTTPError(http.StatusNotFound, "product not found")
	}

	return product, nil
}

// Delete deletes a product
func (r *Repository) Delete(ctx context.Context, id int64) error {
	ctx, span := tracing.StartSpan(ctx, "ProductRepository.Delete")
	defer span.End()

	db := productStruct.DeleteFrom(productsTable)
	db.Where(db.Equal("id", id))

	query, args := db.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id": id,
	}).Debug("Deleting product")

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete product")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete product")
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, "product not found")
	}

	return nil
}
