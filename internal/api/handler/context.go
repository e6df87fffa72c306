package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxDeveloperID extracts the numeric developer id injected by the Auth
// middleware. A zero id means the token never carried a subject; the JWT
// is structurally valid but operationally unusable, so reject with 401.
func ctxDeveloperID(c echo.Context) (int64, error) {
	id, _ := c.Get("developer_id").(int64)
	if id == 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}
