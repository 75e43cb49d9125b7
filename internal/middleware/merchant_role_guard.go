package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

//contextに入っているroleがMERCHANTかどうかを確認します。

func MerchantRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawRole := c.Get(CtxUserRoleKey)
			role, ok := rawRole.(string)
			if !ok || role == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//CUSTOMERは拒否、MERCHANT/ADMINだけ許可
			if role != "MERCHANT" && role != "ADMIN" {
				return c.JSON(http.StatusForbidden, errorJSON("merchant only"))
			}

			return next(c)
		}
	}
}
