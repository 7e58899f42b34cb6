package handlers

import (
	"net/http"

	"authd/internal/common"

	"github.com/labstack/echo/v4"
)

// serviceError maps a typed service failure onto the transport. Internal
// errors are logged with detail but leave the process as a generic message.
func serviceError(c echo.Context, err error) error {
	status := common.HTTPStatusFor(err)
	if status == http.StatusInternalServerError {
		c.Logger().Errorf("internal error: %v", err)
		return echo.NewHTTPError(status, "Internal error")
	}
	return echo.NewHTTPError(status, err.Error())
}
