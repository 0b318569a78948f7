package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/healthhive/registry/access"
	"github.com/healthhive/registry/errors"
	"github.com/healthhive/registry/patients"
	"github.com/healthhive/registry/visits"
)

type PatientList struct {
	Patients []*patients.ListItem `json:"patients"`
	Total    int64                `json:"total"`
}

// (POST /api/patients)
func (h *Handler) CreatePatient(c echo.Context) error {
	ctx := c.Request().Context()
	caller, err := access.CallerFromContext(ctx)
	if err != nil {
		return err
	}

	patient := &patients.Patient{}
	if err := c.Bind(patient); err != nil {
		return fmt.Errorf("%w: invalid patient payload", errors.BadRequest)
	}
	if patient.Barangay == "" {
		return fmt.Errorf("%w: barangay is required", errors.BadRequest)
	}
	if !access.CanAccessRegion(caller, patient.Barangay) {
		return fmt.Errorf("%w: no access to barangay: %s", errors.Forbidden, patient.Barangay)
	}

	created, err := h.patients.Create(ctx, patient)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, created)
}

// (GET /api/patients)
func (h *Handler) ListPatients(c echo.Context) error {
	ctx := c.Request().Context()
	caller, err := access.CallerFromContext(ctx)
	if err != nil {
		return err
	}

	scope, err := access.ResolveScope(caller, queryString(c, "barangay"))
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

	filter := &patients.Filter{
		Region:          scope,
		Condition:       queryString(c, "condition"),
		RiskLevel:       queryString(c, "risk_level"),
		Search:          queryString(c, "search"),
		IncludeInactive: c.QueryParam("include_inactive") == "true",
	}

	list, total, err := h.patients.List(ctx, filter, pagination(offset, limit))
	if err != nil {
		return err
	}

	latest, err := h.visitsRepo.LatestPerPatient(ctx, scope)
	if err != nil {
		return err
	}

	items := make([]*patients.ListItem, 0, len(list))
	for _, patient := range list {
		items = append(items, patientListItem(patient, latest[patient.PatientId]))
	}

	return c.JSON(http.StatusOK, &PatientList{
		Patients: items,
		Total:    total,
	})
}

// (GET /api/patients/:patientId)
func (h *Handler) GetPatient(c echo.Context) error {
	ctx := c.Request().Context()
	caller, err := access.CallerFromContext(ctx)
	if err != nil {
		return err
	}

	patient, err := h.patients.Get(ctx, caller, c.Param("patientId"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, patient)
}

// (PUT /api/patients/:patientId)
func (h *Handler) UpdatePatient(c echo.Context) error {
	ctx := c.Request().Context()
	caller, err := access.CallerFromContext(ctx)
	if err != nil {
		return err
	}

	update := &patients.Patient{}
	if err := c.Bind(update); err != nil {
		return fmt.Errorf("%w: invalid patient payload", errors.BadRequest)
	}

	updated, err := h.patients.Update(ctx, caller, c.Param("patientId"), update)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, updated)
}

// (DELETE /api/patients/:patientId)
func (h *Handler) DeactivatePatient(c echo.Context) error {
	ctx := c.Request().Context()
	caller, err := access.CallerFromContext(ctx)
	if err != nil {
		return err
	}

	if err := h.patients.Deactivate(ctx, caller, c.Param("patientId")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// (GET /api/patients/:patientId/visits)
func (h *Handler) ListPatientVisits(c echo.Context) error {
	ctx := c.Request().Context()
	caller, err := access.CallerFromContext(ctx)
	if err != nil {
		return err
	}

	list, err := h.visits.ListByPatient(ctx, caller, c.Param("patientId"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &VisitList{Visits: list})
}

// (GET /api/patients/:patientId/history)
func (h *Handler) PatientHistory(c echo.Context) error {
	ctx := c.Request().Context()
	caller, err := access.CallerFromContext(ctx)
	if err != nil {
		return err
	}

	history, err := h.visits.ClinicalHistory(ctx, caller, c.Param("patientId"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, history)
}

func patientListItem(patient *patients.Patient, latest *visits.Visit) *patients.ListItem {
	item := &patients.ListItem{Patient: *patient}
	if latest == nil {
		return item
	}

	visitDate := latest.VisitDate
	item.LastVisitDate = &visitDate
	item.NextVisitDate = latest.NextVisitDate
	if latest.ControlStatus != "" {
		status := string(latest.ControlStatus)
		item.ControlStatus = &status
	}
	item.LatestSystolic = latest.Vitals.Systolic
	item.LatestDiastolic = latest.Vitals.Diastolic
	item.LatestGlucose = latest.Vitals.MergedGlucose()
	return item
}
