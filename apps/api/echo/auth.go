package echoapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/auth"
)

const (
	tokenHeader      = "token"
	bearerPrefix     = "Bearer "
	contextClaimsKey = "portalClaims"

	msgInvalidPassword = "Invalid password"
)

type (
	loginRequest struct {
		Password string `json:"password"`
	}

	loginResponse struct {
		Success   bool      `json:"success"`
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expiresAt"`
	}
)

func registerAuthAPI(g *echo.Group, gate *auth.Gate) {
	g.POST("/login", login(gate))
}

func login(gate *auth.Gate) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var req loginRequest
		if err := ctx.Bind(&req); err != nil {
			return err
		}

		token, err := gate.Login(req.Password)
		if err != nil {
			if errors.Cause(err) == core.ErrUnauthorized {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": msgInvalidPassword})
			}
			return errors.Wrap(err, "issuing token")
		}
		return ctx.JSON(http.StatusOK, loginResponse{Success: true, Token: token, ExpiresAt: gate.Expiry()})
	}
}

// tokenFromRequest reads the `token` header, falling back to `Authorization: Bearer`.
func tokenFromRequest(ctx echo.Context) string {
	hdr := ctx.Request().Header
	if token := strings.TrimSpace(hdr.Get(tokenHeader)); token != "" {
		return token
	}
	if authz := hdr.Get(echo.HeaderAuthorization); strings.HasPrefix(authz, bearerPrefix) {
		return strings.TrimSpace(authz[len(bearerPrefix):])
	}
	return ""
}

func getContextClaims(ctx echo.Context) (*auth.Claims, error) {
	if claims, ok := ctx.Get(contextClaimsKey).(*auth.Claims); ok {
		return claims, nil
	}
	return nil, core.ErrUnauthorized
}
