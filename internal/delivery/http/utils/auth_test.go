package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthManagerRoundtrip(t *testing.T) {
	manager := NewAuthManager([]byte("secret"), time.Hour)

	token, err := manager.CreateToken("user-42")
	require.NoError(t, err)

	userID, err := manager.CheckAuth(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)
}

func TestAuthManagerRejectsBadTokens(t *testing.T) {
	manager := NewAuthManager([]byte("secret"), time.Hour)

	_, err := manager.CheckAuth("not-a-token")
	assert.ErrorIs(t, err, ErrUnauthorized)

	// токен, подписанный другим ключом
	other := NewAuthManager([]byte("other-secret"), time.Hour)
	token, err := other.CreateToken("user-42")
	require.NoError(t, err)
	_, err = manager.CheckAuth(token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// просроченный токен
	expired := NewAuthManager([]byte("secret"), -time.Hour)
	token, err = expired.CreateToken("user-42")
	require.NoError(t, err)
	_, err = manager.CheckAuth(token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCheckAuthFromContext(t *testing.T) {
	manager := NewAuthManager([]byte("secret"), time.Hour)
	token, err := manager.CreateToken("user-42")
	require.NoError(t, err)

	e := echo.New()

	// без куки
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	_, err = manager.CheckAuthFromContext(c)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// с кукой
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: token})
	c = e.NewContext(req, httptest.NewRecorder())
	userID, err := manager.CheckAuthFromContext(c)
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)
}
