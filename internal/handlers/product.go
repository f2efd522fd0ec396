package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/kelmerpassos/ipet-api/internal/repositories/product"
	"github.com/kelmerpassos/ipet-api/pkg/models"
)

// ProductHandler handles product API requests
type ProductHandler struct {
	repo product.ProductRepository
}

// NewProductHandler creates a new product handler
func NewProductHandler(repo product.ProductRepository) *ProductHandler {
	return &ProductHandler{
		repo: repo,
	}
}

// CreateProductRequest is the request body for creating a product
type CreateProductRequest struct {
	FullName        string  `json:"fullName" validate:"required,max=100"`
	FullDescription string  `json:"fullDescription" validate:"required,max=255"`
	Brand           string  `json:"brand" validate:"required,max=100"`
	Price           float64 `json:"price" validate:"required,gt=0"`
}

// UpdateProductRequest is the request body for updating a product
type UpdateProductRequest struct {
	FullName        *string  `json:"fullName,omitempty" validate:"omitempty,min=1,max=100"`
	FullDescription *string  `json:"fullDescription,omitempty" validate:"omitempty,min=1,max=255"`
	Brand           *string  `json:"brand,omitempty" validate:"omitempty,min=1,max=100"`
	Price           *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
}

// RegisterRoutes registers the product routes
func (h *ProductHandler) RegisterRoutes(g *echo.Group) {
	products := g.Group("/products")
	products.POST("", h.Create)
	products.GET("", h.List)
	products.GET("/:id", h.Get)
	products.PATCH("/:id", h.Update)
	products.DELETE("/:id", h.Delete)
}

// Create handles POST /products
func (h *ProductHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req CreateProductRequest
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	created, err := h.repo.Create(ctx, &models.Product{
		FullName:        req.FullName,
		FullDescription: req.FullDescription,
		Brand:           req.Brand,
		Price:           req.Price,
	})
	if err != nil {
		return err
	}

	return CreatedResponse(c, created)
}

// List handles GET /products
func (h *ProductHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	page, perPage := ParsePagination(c)
	fullName := c.QueryParam("fullName")
	brand := c.QueryParam("brand")

	products, total, err := h.repo.List(ctx, fullName, brand, page, perPage)
	if err != nil {
		return err
	}

	return SuccessResponse(c, NewListResponse(products, page, perPage, total))
}

// Get handles GET /products/:id
func (h *ProductHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	found, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if found == nil {
		return NotFound("product not found")
	}

	return SuccessResponse(c, found)
}

// Update handles PATCH /products/:id
func (h *ProductHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	existing, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return NotFound("product not found")
	}

	var req UpdateProductRequest
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	if req.FullName != nil {
		existing.FullName = *req.FullName
	}
	if req.FullDescription != nil {
		existing.FullDescription = *req.FullDescription
	}
	if req.Brand != nil {
		existing.Brand = *req.Brand
	}
	if req.Price != nil {
		existing.Price = *req.Price
	}

	updated, err := h.repo.Update(ctx, existing)
	if err != nil {
		return err
	}

	return SuccessResponse(c, updated)
}

// Delete handles DELETE /products/:id
func (h *ProductHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.repo.Delete(ctx, id); err != nil {
		return err
	}

	return NoContentResponse(c)
}
