package auth

import (
	"crypto/subtle"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/mwalimu/core"
)

const (
	// ScopePortal is the single capability carried by portal tokens.
	ScopePortal = "portal"

	audience = "portal"
)

var NowFunc = time.Now // mockable

// Claims represents the capability claims transmitted via a JWT.
type Claims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope"`
}

// Gate checks the shared admin secret and issues/verifies capability tokens.
// It keeps no server-side session state.
type Gate struct {
	signingKey   []byte
	issuer       string
	password     string
	passwordHash []byte
	ttl          time.Duration
	window       time.Duration
}

func NewGate(conf *core.Config) *Gate {
	g := &Gate{
		signingKey:   []byte(conf.SecretKey),
		issuer:       conf.AppName,
		password:     conf.Auth.AdminPassword,
		passwordHash: []byte(conf.Auth.AdminPasswordHash),
		ttl:          conf.Auth.TokenTTL,
		window:       conf.Auth.TokenWindow,
	}
	if g.ttl <= 0 {
		g.ttl = 12 * time.Hour
	}
	if g.window <= 0 || g.window > g.ttl {
		g.window = g.ttl
	}
	return g
}

// HashSecret returns the bcrypt hash of secret, suitable for auth.adminPasswordHash.
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hashing secret")
	}
	return string(hash), nil
}

func (g *Gate) checkSecret(secret string) bool {
	if secret == "" {
		return false
	}
	if len(g.passwordHash) > 0 {
		return bcrypt.CompareHashAndPassword(g.passwordHash, []byte(secret)) == nil
	}
	if g.password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(g.password), []byte(secret)) == 1
}

// Login exchanges the admin secret for a capability token.
// Issued-at is truncated to the issue window, so every login within a window returns the same token.
func (g *Gate) Login(secret string) (string, error) {
	if !g.checkSecret(secret) {
		return "", core.ErrUnauthorized
	}

	iat := NowFunc().UTC().Truncate(g.window)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(iat),
			NotBefore: jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(iat.Add(g.ttl)),
		},
		Scope: ScopePortal,
	}

	ss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.signingKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// Verify checks signature, issuer, audience, expiry and scope of token.
// Any failure is reported as core.ErrUnauthorized.
func (g *Gate) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, core.ErrUnauthorized
	}

	claims := new(Claims)
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return g.signingKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(g.issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(NowFunc),
	)
	if err != nil {
		return nil, errors.Wrap(core.ErrUnauthorized, err.Error())
	}
	if claims.Scope != ScopePortal {
		return nil, core.ErrUnauthorized
	}
	return claims, nil
}

// Expiry returns when a token issued now would expire.
func (g *Gate) Expiry() time.Time {
	return NowFunc().UTC().Truncate(g.window).Add(g.ttl)
}
