package webserver

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/lowkeylabs/lowkey/internal/domain"
)

// TokenClaims is the principal carried by member and admin tokens.
type TokenClaims struct {
	UserID int64  `json:"uid"`
	Email  string `json:"email"`
	Level  string `json:"level"`
	Tier   string `json:"tier"`
	jwt.RegisteredClaims
}

const TokenTTL = 24 * time.Hour

func jwtConfig(secret string) echojwt.Config {
	return echojwt.Config{
		SigningKey: []byte(secret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(TokenClaims)
		},
	}
}

// SignToken issues a signed token for a user.
func SignToken(secret string, user *domain.User) (string, error) {
	now := time.Now()
	claims := &TokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		Level:  user.Level,
		Tier:   user.Tier,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// CurrentUser returns the authenticated principal, or nil on public routes
// or when the middleware did not run.
func CurrentUser(c echo.Context) *TokenClaims {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok || token == nil {
		return nil
	}
	claims, ok := token.Claims.(*TokenClaims)
	if !ok {
		return nil
	}
	return claims
}
