package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core/auth"
)

// portalMiddleware rejects requests that do not carry a valid capability token.
func portalMiddleware(gate *auth.Gate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := gate.Verify(tokenFromRequest(ctx))
			if err != nil {
				return errors.Wrap(err, "verifying token")
			}
			ctx.Set(contextClaimsKey, claims)
			return next(ctx)
		}
	}
}
