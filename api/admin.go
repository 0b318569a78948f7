package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/healthhive/registry/regions"
	"github.com/healthhive/registry/users"
)

type UserList struct {
	Users []*users.User `json:"users"`
}

type RegionList struct {
	Barangays []*regions.Region `json:"barangays"`
}

// (GET /api/users)
func (h *Handler) ListUsers(c echo.Context) error {
	list, err := h.users.List(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &UserList{Users: list})
}

// (GET /api/barangays)
func (h *Handler) ListBarangays(c echo.Context) error {
	list, err := h.regions.List(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &RegionList{Barangays: list})
}
