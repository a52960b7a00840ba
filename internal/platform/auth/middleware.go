package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/platform/apperr"
)

// Claims is the JWT payload issued by the login endpoint.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	IsStaff  bool   `json:"is_staff"`
}

// IssueToken signs an HS256 token for the given user identity.
func IssueToken(secret []byte, ttl time.Duration, userID uuid.UUID, username string, isStaff bool) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Username: username,
		IsStaff:  isStaff,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a signed token and returns its claims.
func ParseToken(secret []byte, tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// Middleware attaches a Principal to the request context when a bearer token
// is presented. Requests without an Authorization header pass through
// unauthenticated; route gates decide whether that is acceptable. A present
// but invalid token is always rejected.
func Middleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return next(c)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return apperr.AuthenticationRequired()
			}

			claims, err := ParseToken(secret, parts[1])
			if err != nil {
				return apperr.AuthenticationRequired()
			}

			uid, err := uuid.Parse(claims.Subject)
			if err != nil {
				return apperr.AuthenticationRequired()
			}

			p := &Principal{ID: uid, Username: claims.Username, IsStaff: claims.IsStaff}
			c.SetRequest(c.Request().WithContext(WithPrincipal(c.Request().Context(), p)))
			return next(c)
		}
	}
}

// RequireAuth rejects unauthenticated requests.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if PrincipalFromContext(c.Request().Context()) == nil {
				return apperr.AuthenticationRequired()
			}
			return next(c)
		}
	}
}

// RequireStaff rejects unauthenticated requests and authenticated requests
// from non-staff users.
func RequireStaff() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := PrincipalFromContext(c.Request().Context())
			if p == nil {
				return apperr.AuthenticationRequired()
			}
			if !p.IsStaff {
				return apperr.PermissionDenied("")
			}
			return next(c)
		}
	}
}
