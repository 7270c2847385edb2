package utils

import (
	"encoding/json"

	"github.com/labstack/echo/v4"
)

// ReadJSON декодирует JSON-тело запроса в v
func ReadJSON(c echo.Context, v any) error {
	return json.NewDecoder(c.Request().Body).Decode(v)
}
