package handlers

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/kelmerpassos/ipet-api/internal/repositories/association"
	"github.com/kelmerpassos/ipet-api/internal/repositories/customer"
	"github.com/kelmerpassos/ipet-api/internal/repositories/product"
	"github.com/kelmerpassos/ipet-api/pkg/kafka"
	"github.com/kelmerpassos/ipet-api/pkg/models"
)

// AssociationEmitter publishes association lifecycle events.
type AssociationEmitter interface {
	EmitAssociationCreated(ctx context.Context, assoc *models.Association, source string) error
	EmitAssociationStatusChanged(ctx context.Context, assoc *models.Association) error
}

// AssociationHandler handles customer/product association API requests
type AssociationHandler struct {
	associations association.AssociationRepository
	customers    customer.CustomerRepository
	products     product.ProductRepository
	emitter      AssociationEmitter
	logger       ectologger.Logger
}

// NewAssociationHandler creates a new association handler. The emitter may be
// nil when event publishing is disabled.
func NewAssociationHandler(
	associations association.AssociationRepository,
	customers customer.CustomerRepository,
	products product.ProductRepository,
	emitter AssociationEmitter,
	logger ectologger.Logger,
) *AssociationHandler {
	return &AssociationHandler{
		associations: associations,
		customers:    customers,
		products:     products,
		emitter:      emitter,
		logger:       logger,
	}
}

// CreateAssociationRequest is the request body for associating a product
type CreateAssociationRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
}

// UpdateAssociationRequest is the request body for changing an association status
type UpdateAssociationRequest struct {
	CurrentStatus string `json:"currentStatus" validate:"required"`
}

// RegisterRoutes registers the association routes
func (h *AssociationHandler) RegisterRoutes(g *echo.Group) {
	associations := g.Group("/customers/:id/products")
	associations.GET("", h.List)
	associations.POST("", h.Create)
	associations.GET("/:product_id", h.Get)
	associations.PATCH("/:product_id", h.Update)
}

// List handles GET /customers/:id/products
func (h *AssociationHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	customerID, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	found, err := h.customers.GetByID(ctx, customerID)
	if err != nil {
		return err
	}
	if found == nil {
		return NotFound("customer not found")
	}

	page, perPage := ParsePagination(c)
	products, total, err := h.products.ListByCustomer(ctx, customerID, page, perPage)
	if err != nil {
		return err
	}

	return SuccessResponse(c, NewListResponse(products, page, perPage, total))
}

// Create handles POST /customers/:id/products
func (h *AssociationHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	customerID, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	var req CreateAssociationRequest
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	foundCustomer, err := h.customers.GetByID(ctx, customerID)
	if err != nil {
		return err
	}
	if foundCustomer == nil {
		return NotFound("customer not found")
	}

	foundProduct, err := h.products.GetByID(ctx, req.ProductID)
	if err != nil {
		return err
	}
	if foundProduct == nil {
		return NotFound("product not found")
	}

	created, err := h.associations.Create(ctx, &models.Association{
		CustomerID:    customerID,
		ProductID:     req.ProductID,
		CurrentStatus: models.StatusActive,
	})
	if err != nil {
		return err
	}

	if h.emitter != nil {
		if err := h.emitter.EmitAssociationCreated(ctx, created, kafka.SourceAPI); err != nil {
			h.logger.WithContext(ctx).WithError(err).Error("Failed to emit association event")
		}
	}

	return CreatedResponse(c, created)
}

// Get handles GET /customers/:id/products/:product_id
func (h *AssociationHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	customerID, err := ParseID(c, "id")
	if err != nil {
		return err
	}
	productID, err := ParseID(c, "product_id")
	if err != nil {
		return err
	}

	found, err := h.associations.GetByPair(ctx, customerID, productID)
	if err != nil {
		return err
	}
	if found == nil {
		return NotFound("association not found")
	}

	return SuccessResponse(c, found)
}

// Update handles PATCH /customers/:id/products/:product_id
func (h *AssociationHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	customerID, err := ParseID(c, "id")
	if err != nil {
		return err
	}
	productID, err := ParseID(c, "product_id")
	if err != nil {
		return err
	}

	var req UpdateAssociationRequest
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	status := models.AssociationStatus(req.CurrentStatus)
	if !status.Valid() {
		return BadRequest("currentStatus must be one of ACTIVE, BLOCKED, REMOVED")
	}

	updated, err := h.associations.UpdateStatus(ctx, customerID, productID, status)
	if err != nil {
		return err
	}

	if h.emitter != nil {
		if err := h.emitter.EmitAssociationStatusChanged(ctx, updated); err != nil {
			h.logger.WithContext(ctx).WithError(err).Error("Failed to emit association event")
		}
	}

	return SuccessResponse(c, updated)
}
