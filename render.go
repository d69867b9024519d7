package portfolio

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// renderForm re-renders a form page. Field errors are reported with 422 so
// clients can tell a rejected submission from a fresh form.
func renderForm(c echo.Context, errs map[string]string, cmp templ.Component) error {
	if len(errs) > 0 {
		return RenderStatus(c, http.StatusUnprocessableEntity, cmp)
	}
	return Render(c, cmp)
}
