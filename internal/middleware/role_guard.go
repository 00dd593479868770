package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

//contextのManagerフラグを確認します。

func ManagerGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawID := c.Get(CtxUserIDKey)
			userID, ok := rawID.(int64)
			if !ok || userID <= 0 {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			isManager, ok := c.Get(CtxIsManagerKey).(bool)
			if !ok || !isManager {
				return c.JSON(http.StatusForbidden, errorJSON("you don't have permissions to perform this action"))
			}

			return next(c)
		}
	}
}
