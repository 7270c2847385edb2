package utils

import "github.com/labstack/echo/v4"

// ReadQuery привязывает query-параметры запроса к v
func ReadQuery(c echo.Context, v any) error {
	return c.Bind(v)
}
