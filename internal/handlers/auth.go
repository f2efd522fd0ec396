package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	appctx "github.com/kelmerpassos/ipet-api/pkg/context"
)

// TokenRevoker stores revoked token IDs until their expiry.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
}

// AuthHandler handles token revocation
type AuthHandler struct {
	revoker TokenRevoker
	logger  ectologger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(revoker TokenRevoker, logger ectologger.Logger) *AuthHandler {
	return &AuthHandler{
		revoker: revoker,
		logger:  logger,
	}
}

// RegisterRoutes registers the auth routes
func (h *AuthHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/auth/revoke", h.Revoke)
}

// Revoke handles POST /auth/revoke. The token being revoked is the one that
// authenticated the request; its id and expiry come from the auth middleware.
func (h *AuthHandler) Revoke(c echo.Context) error {
	ctx := c.Request().Context()

	tokenID := appctx.GetTokenID(ctx)
	if tokenID == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "token has no id claim")
	}

	ttl := time.Until(appctx.GetTokenExpiresAt(ctx))
	if err := h.revoker.Revoke(ctx, tokenID, ttl); err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to revoke token")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to revoke token")
	}

	h.logger.WithContext(ctx).WithFields(map[string]any{
		"token_id": tokenID,
	}).Info("Token revoked")

	return SuccessResponse(c, map[string]string{"message": "token revoked"})
}
