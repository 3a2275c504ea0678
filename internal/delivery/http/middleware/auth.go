package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"dealdesk/internal/config"
	"dealdesk/internal/domain/entity"
)

const principalKey = "principal"

// Auth validates bearer tokens minted by the external identity provider.
// Only the sub, email and role claims are read; everything else in the
// token is opaque to this service.
type Auth struct {
	secret []byte
	issuer string
	logger *zap.Logger
}

func NewAuth(cfg *config.Config, logger *zap.Logger) *Auth {
	return &Auth{
		secret: []byte(cfg.Auth.JWTSecret),
		issuer: cfg.Auth.Issuer,
		logger: logger,
	}
}

// Require rejects requests without a valid bearer token.
func (a *Auth) Require() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := a.principalFromHeader(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(
				entity.NewErrorResponse("UNAUTHORIZED", err.Error()),
			)
		}
		c.Locals(principalKey, p)
		return c.Next()
	}
}

// Optional lets unauthenticated requests through without a principal.
// Anonymous viewers identify themselves with a session header instead.
// A present but invalid token is still rejected.
func (a *Auth) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return c.Next()
		}
		p, err := a.principalFromHeader(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(
				entity.NewErrorResponse("UNAUTHORIZED", err.Error()),
			)
		}
		c.Locals(principalKey, p)
		return c.Next()
	}
}

func (a *Auth) principalFromHeader(c *fiber.Ctx) (entity.Principal, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return entity.Principal{}, fmt.Errorf("missing or malformed authorization header")
	}
	return a.parse(strings.TrimPrefix(header, "Bearer "))
}

func (a *Auth) parse(tokenStr string) (entity.Principal, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		a.logger.Debug("Rejected bearer token", zap.Error(err))
		return entity.Principal{}, fmt.Errorf("invalid or expired token")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return entity.Principal{}, fmt.Errorf("token is missing the subject claim")
	}
	email, _ := claims["email"].(string)
	roleStr, _ := claims["role"].(string)
	role := entity.Role(roleStr)
	if !role.Valid() {
		return entity.Principal{}, fmt.Errorf("token carries an unknown role")
	}

	return entity.Principal{
		ID:    sub,
		Email: strings.ToLower(email),
		Role:  role,
	}, nil
}

// PrincipalFrom returns the principal set by Require or Optional.
func PrincipalFrom(c *fiber.Ctx) (entity.Principal, bool) {
	p, ok := c.Locals(principalKey).(entity.Principal)
	return p, ok
}
