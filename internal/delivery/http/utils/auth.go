package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type Auth interface {
	CheckAuth(tokenString string) (string, error)
	CheckAuthFromContext(c echo.Context) (string, error)
	CreateToken(userID string) (string, error)
}

var (
	ErrUnauthorized = errors.New("unauthorized")
)

type jwtSessionClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// AuthManager проверяет токены внешнего провайдера идентификации.
// Сами пользователи здесь не хранятся
type AuthManager struct {
	jwtSecretKey  []byte
	tokenLifetime time.Duration
}

func NewAuthManager(jwtSecretKey []byte, tokenLifetime time.Duration) *AuthManager {
	return &AuthManager{
		jwtSecretKey:  jwtSecretKey,
		tokenLifetime: tokenLifetime,
	}
}

// CheckAuth проверяет токен и возвращает идентификатор пользователя.
// Если токен невалиден или идентификатора в нем нет, возвращается ErrUnauthorized
func (a *AuthManager) CheckAuth(tokenString string) (string, error) {
	claims := jwtSessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return a.jwtSecretKey, nil
	})
	if err != nil {
		return "", ErrUnauthorized
	}
	if !token.Valid || claims.UserID == "" {
		return "", ErrUnauthorized
	}
	return claims.UserID, nil
}

// CheckAuthFromContext достает токен из куки session и проверяет его
func (a *AuthManager) CheckAuthFromContext(c echo.Context) (string, error) {
	cookie, err := c.Cookie("session")
	if err != nil {
		return "", ErrUnauthorized
	}
	return a.CheckAuth(cookie.Value)
}

// CreateToken создает токен для пользователя
func (a *AuthManager) CreateToken(userID string) (string, error) {
	claims := jwtSessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(a.tokenLifetime)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecretKey)
}
