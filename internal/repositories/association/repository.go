package association

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/lib/pq"

	"github.com/kelmerpassos/ipet-api/pkg/database"
	"github.com/kelmerpassos/ipet-api/pkg/models"
	"github.com/kelmerpassos/ipet-api/pkg/tracing"
)

// uniqueViolation is the postgres error code for unique constraint violations
const uniqueViolation = "23505"

// AssociationRepository defines the interface for customer/product association data access
type AssociationRepository interface {
	Create(ctx context.Context, assoc *models.Association) (*models.Association, error)
	GetByPair(ctx context.Context, customerID, productID int64) (*models.Association, error)
	UpdateStatus(ctx context.Context, customerID, productID int64, status models.AssociationStatus) (*models.Association, error)
}

// Repository implements AssociationRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new association repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new association between a customer and a product. Returns a
// conflict error when the pair already exists.
func (r *Repository) Create(ctx context.Context, assoc *models.Association) (*models.Association, error) {
	ctx, span := tracing.StartSpan(ctx, "AssociationRepository.Create")
	defer span.End()

	if assoc.CurrentStatus == "" {
		assoc.CurrentStatus = models.StatusActive
	}
	if assoc.CreatedAt.IsZero() {
		assoc.CreatedAt = Now()
	}

	row := FromAssociation(assoc)
	ib := associationStruct.InsertInto(associationsTable, row).Returning("id")
	query, args := ib.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"customer_id": assoc.CustomerID,
		"product_id":  assoc.ProductID,
	}).Debug("Creating association")

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&assoc.ID); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, httperror.NewHTTPError(http.StatusConflict, "association already exists")
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create association")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create association")
	}

	return assoc, nil
}

// GetByPair retrieves the association between a customer and a product.
// Returns (nil, nil) when no association exists.
func (r *Repository) GetByPair(ctx context.Context, customerID, productID int64) (*models.Association, error) {
	ctx, span := tracing.StartSpan(ctx, "AssociationRepository.GetByPair")
	defer span.End()

	sb := associationStruct.SelectFrom(associationsTable)
	sb.Where(sb.Equal("customer_id", customerID))
	sb.Where(sb.Equal("product_id", productID))

	query, args := sb.Build()

	var row AssociationRow
	err := r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get association")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get association")
	}

	return ToAssociation(&row), nil
}

// UpdateStatus changes the status of an existing association
func (r *Repository) UpdateStatus(ctx context.Context, customerID, productID int64, status models.AssociationStatus) (*models.Association, error) {
	ctx, span := tracing.StartSpan(ctx, "AssociationRepository.UpdateStatus")
	defer span.End()

	ub := database.NewUpdateBuilder()
	ub.Update(associationsTable)
	ub.Set(ub.Assign("current_status", string(status)))
	ub.Where(ub.Equal("customer_id", customerID))
	ub.Where(ub.Equal("product_id", productID))

	query, args := ub.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"customer_id": customerID,
		"product_id":  productID,
		"status":      status,
	}).Debug("Updating association status")

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update association status")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update association")
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return nil, httperror.NewHTTPError(http.StatusNotFound, "association not found")
	}

	return r.GetByPair(ctx, customerID, productID)
}
