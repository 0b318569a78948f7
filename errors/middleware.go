package errors

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// NewHTTPErrorHandler maps domain errors to HTTP status codes. Errors
// that don't carry an HttpError are reported opaquely unless debug mode
// is enabled.
func NewHTTPErrorHandler(debug bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		e := HttpError{}
		if errors.As(err, &e) {
			c.Echo().DefaultHTTPErrorHandler(echo.NewHTTPError(e.Code, err.Error()), c)
			return
		}

		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			c.Echo().DefaultHTTPErrorHandler(err, c)
			return
		}

		if debug {
			c.Echo().DefaultHTTPErrorHandler(echo.NewHTTPError(http.StatusInternalServerError, err.Error()), c)
			return
		}
		c.Echo().DefaultHTTPErrorHandler(echo.NewHTTPError(http.StatusInternalServerError, "internal server error"), c)
	}
}
