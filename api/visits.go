package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/healthhive/registry/access"
	"github.com/healthhive/registry/errors"
	"github.com/healthhive/registry/visits"
)

type VisitList struct {
	Visits []*visits.Visit `json:"visits"`
}

type BulkSyncRequest struct {
	Visits []*visits.Visit `json:"visits"`
}

// (POST /api/visits)
func (h *Handler) RecordVisit(c echo.Context) error {
	ctx := c.Request().Context()
	caller, err := access.CallerFromContext(ctx)
	if err != nil {
		return err
	}

	visit := &visits.Visit{}
	if err := c.Bind(visit); err != nil {
		return fmt.Errorf("%w: invalid visit payload", errors.BadRequest)
	}

	result, err := h.visits.Record(ctx, caller, visit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, result)
}

// (GET /api/visits)
func (h *Handler) ListVisits(c echo.Context) error {
	ctx := c.Request().Context()
	caller, err := access.CallerFromContext(ctx)
	if err != nil {
		return err
	}

	from, err := queryDate(c, "from")
	if err != nil {
		return err
	}
	to, err := queryDate(c, "to")
	if err != nil {
		return err
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}

	filter := &visits.Filter{
		Barangay:  queryString(c, "barangay"),
		PatientId: queryString(c, "patient_id"),
		VisitType: queryString(c, "visit_type"),
		From:      from,
		To:        to,
	}

	list, err := h.visits.List(ctx, caller, filter, pagination(offset, limit))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &VisitList{Visits: list})
}

// (GET /api/visits/:visitId)
func (h *Handler) GetVisit(c echo.Context) error {
	ctx := c.Request().Context()
	caller, err := access.CallerFromContext(ctx)
	if err != nil {
		return err
	}

	visit, err := h.visits.Get(ctx, caller, c.Param("visitId"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, visit)
}

// (POST /api/visits/bulk-sync)
func (h *Handler) BulkSyncVisits(c echo.Context) error {
	ctx := c.Request().Context()
	caller, err := access.CallerFromContext(ctx)
	if err != nil {
		return err
	}

	request := &BulkSyncRequest{}
	if err := c.Bind(request); err != nil {
		return fmt.Errorf("%w: invalid bulk sync payload", errors.BadRequest)
	}

	result, err := h.visits.BulkSync(ctx, caller, request.Visits)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}
