package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	appctx "github.com/kelmerpassos/ipet-api/pkg/context"
	"github.com/kelmerpassos/ipet-api/pkg/tracing"
)

// TokenBlocklist checks whether a token has been revoked.
type TokenBlocklist interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type UserClaims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	JTI   string `json:"jti"`
	Exp   int64  `json:"exp"`
}

// Authentication verifies bearer tokens against the OIDC issuer and rejects
// tokens whose jti is on the blocklist.
func Authentication(logger ectologger.Logger, issuer string, clientID string, blocklist TokenBlocklist) (echo.MiddlewareFunc, error) {
	provider, err := oidc.NewProvider(context.Background(), issuer)
	if err != nil {
		return nil, errors.Wrap(err, "oidc provider")
	}

	verifier := provider.Verifier(&oidc.Config{
		ClientID: clientID,
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			ctx, span := tracing.StartSpan(ctx, "middleware.Authentication")
			defer span.End()

			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				logger.WithContext(ctx).Warn("request is missing bearer token")
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer")
			}

			raw := strings.TrimPrefix(auth, "Bearer ")
			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			idToken, err := verifier.Verify(ctx, raw)
			if err != nil {
				logger.WithContext(ctx).WithError(err).Warn("token is invalid")
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			var claims UserClaims
			if err := idToken.Claims(&claims); err != nil {
				logger.WithContext(ctx).WithError(err).Warn("failed to parse claims")
				return echo.NewHTTPError(http.StatusUnauthorized, "cannot parse claims")
			}

			if blocklist != nil && claims.JTI != "" {
				revoked, err := blocklist.IsRevoked(ctx, claims.JTI)
				if err != nil {
					logger.WithContext(ctx).WithError(err).Error("failed to check token blocklist")
					return echo.NewHTTPError(http.StatusUnauthorized, "cannot verify token")
				}
				if revoked {
					logger.WithContext(ctx).Warn("token has been revoked")
					return echo.NewHTTPError(http.StatusUnauthorized, "token revoked")
				}
			}

			ctx = appctx.SetUserID(ctx, claims.Sub)
			ctx = appctx.SetTokenID(ctx, claims.JTI)
			ctx = appctx.SetTokenExpiresAt(ctx, time.Unix(claims.Exp, 0))

			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}, nil
}
