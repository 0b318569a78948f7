package api

import (
	"fmt"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/healthhive/registry/errors"
)

const queryDateLayout = "2006-01-02"

func queryString(c echo.Context, name string) *string {
	value := c.QueryParam(name)
	if value == "" {
		return nil
	}
	return &value
}

func queryInt(c echo.Context, name string) (*int, error) {
	value := c.QueryParam(name)
	if value == "" {
		return nil, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer", errors.BadRequest, name)
	}
	return &parsed, nil
}

func queryIntOrDefault(c echo.Context, name string, fallback int) (int, error) {
	value, err := queryInt(c, name)
	if err != nil {
		return 0, err
	}
	if value == nil {
		return fallback, nil
	}
	return *value, nil
}

func queryDate(c echo.Context, name string) (*time.Time, error) {
	value := c.QueryParam(name)
	if value == "" {
		return nil, nil
	}

	parsed, err := time.Parse(queryDateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be formatted as YYYY-MM-DD", errors.BadRequest, name)
	}
	return &parsed, nil
}
