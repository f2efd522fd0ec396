package handlers

import (
	"net/http"
	"regexp"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"

	"github.com/kelmerpassos/ipet-api/internal/repositories/customer"
	"github.com/kelmerpassos/ipet-api/pkg/models"
)

var cpfDigits = regexp.MustCompile(`^[0-9]{11}$`)

// CustomerHandler handles customer API requests
type CustomerHandler struct {
	repo customer.CustomerRepository
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(repo customer.CustomerRepository) *CustomerHandler {
	return &CustomerHandler{
		repo: repo,
	}
}

// CreateCustomerRequest is the request body for creating a customer
type CreateCustomerRequest struct {
	CPF      string `json:"cpf" validate:"required"`
	FullName string `json:"fullName" validate:"required,max=100"`
	Address  string `json:"address" validate:"required,max=255"`
}

// UpdateCustomerRequest is the request body for updating a customer
type UpdateCustomerRequest struct {
	FullName *string `json:"fullName,omitempty" validate:"omitempty,min=1,max=100"`
	Address  *string `json:"address,omitempty" validate:"omitempty,min=1,max=255"`
}

// RegisterRoutes registers the customer routes
func (h *CustomerHandler) RegisterRoutes(g *echo.Group) {
	customers := g.Group("/customers")
	customers.POST("", h.Create)
	customers.GET("", h.List)
	customers.GET("/:id", h.Get)
	customers.PATCH("/:id", h.Update)
	customers.DELETE("/:id", h.Delete)
}

// Create handles POST /customers
func (h *CustomerHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req CreateCustomerRequest
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	cpf, err := parseCPF(req.CPF)
	if err != nil {
		return err
	}

	existing, err := h.repo.GetByCPF(ctx, cpf)
	if err != nil {
		return err
	}
	if existing != nil {
		return httperror.NewHTTPError(http.StatusConflict, "customer with this cpf already exists")
	}

	created, err := h.repo.Create(ctx, &models.Customer{
		CPF:      cpf,
		FullName: req.FullName,
		Address:  req.Address,
	})
	if err != nil {
		return err
	}

	return CreatedResponse(c, created)
}

// List handles GET /customers
func (h *CustomerHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	page, perPage := ParsePagination(c)
	fullName := c.QueryParam("fullName")

	customers, total, err := h.repo.List(ctx, fullName, page, perPage)
	if err != nil {
		return err
	}

	return SuccessResponse(c, NewListResponse(customers, page, perPage, total))
}

// Get handles GET /customers/:id
func (h *CustomerHandler) Get(c echo.Context) error {
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
		return NotFound("customer not found")
	}

	return SuccessResponse(c, found)
}

// Update handles PATCH /customers/:id
func (h *CustomerHandler) Update(c echo.Context) error {
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
		return NotFound("customer not found")
	}

	var req UpdateCustomerRequest
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	if req.FullName != nil {
		existing.FullName = *req.FullName
	}
	if req.Address != nil {
		existing.Address = *req.Address
	}

	updated, err := h.repo.Update(ctx, existing)
	if err != nil {
		return err
	}

	return SuccessResponse(c, updated)
}

// Delete handles DELETE /customers/:id
func (h *CustomerHandler) Delete(c echo.Context) error {
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

// parseCPF validates an 11-digit CPF string and returns its numeric value
func parseCPF(raw string) (int64, error) {
	if !cpfDigits.MatchString(raw) {
		return 0, BadRequest("cpf must be exactly 11 digits")
	}
	var cpf int64
	for _, r := range raw {
		cpf = cpf*10 + int64(r-'0')
	}
	return cpf, nil
}
