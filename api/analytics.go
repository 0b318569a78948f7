package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/healthhive/registry/access"
	"github.com/healthhive/registry/errors"
)

const (
	defaultTrendMonths  = 12
	defaultCohortMonths = 12

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// (GET /api/analytics/overview)
func (h *Handler) AnalyticsOverview(c echo.Context) error {
	ctx := c.Request().Context()
	caller, err := access.CallerFromContext(ctx)
	if err != nil {
		return err
	}

	overview, err := h.analytics.Overview(ctx, caller, queryString(c, "barangay"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, overview)
}

// (GET /api/analytics/htn-trends)
func (h *Handler) AnalyticsHTNTrends(c echo.Context) error {
	return h.analyticsTrends(c, "htn")
}

// (GET /api/analytics/dm-trends)
func (h *Handler) AnalyticsDMTrends(c echo.Context) error {
	return h.analyticsTrends(c, "dm")
}

func (h *Handler) analyticsTrends(c echo.Context, condition string) error {
	ctx := c.Request().Context()
	caller, err := access.CallerFromContext(ctx)
	if err != nil {
		return err
	}

	months, err := queryIntOrDefault(c, "months", defaultTrendMonths)
	if err != nil {
		return err
	}

	trends, err := h.analytics.Trends(ctx, caller, condition, queryString(c, "barangay"), months)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, trends)
}

// (GET /api/analytics/cohort-retention)
func (h *Handler) AnalyticsCohortRetention(c echo.Context) error {
	ctx := c.Request().Context()
	caller, err := access.CallerFromContext(ctx)
	if err != nil {
		return err
	}

	months, err := queryIntOrDefault(c, "months", defaultCohortMonths)
	if err != nil {
		return err
	}

	retention, err := h.analytics.CohortRetention(ctx, caller, months)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, retention)
}

// (GET /api/analytics/risk-distribution)
func (h *Handler) AnalyticsRiskDistribution(c echo.Context) error {
	ctx := c.Request().Context()
	caller, err := access.CallerFromContext(ctx)
	if err != nil {
		return err
	}

	distribution, err := h.analytics.RiskDistribution(ctx, caller, queryString(c, "barangay"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, distribution)
}

// (GET /api/analytics/medication-adherence)
func (h *Handler) AnalyticsAdherence(c echo.Context) error {
	ctx := c.Request().Context()
	caller, err := access.CallerFromContext(ctx)
	if err != nil {
		return err
	}

	adherence, err := h.analytics.Adherence(ctx, caller)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, adherence)
}

// (GET /api/analytics/distributions)
func (h *Handler) AnalyticsDistributions(c echo.Context) error {
	ctx := c.Request().Context()
	caller, err := access.CallerFromContext(ctx)
	if err != nil {
		return err
	}

	months, err := queryIntOrDefault(c, "months", defaultTrendMonths)
	if err != nil {
		return err
	}

	distributions, err := h.analytics.Distributions(ctx, caller, months)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, distributions)
}

// (GET /api/analytics/barangay-summary)
func (h *Handler) AnalyticsBarangaySummary(c echo.Context) error {
	ctx := c.Request().Context()
	caller, err := access.CallerFromContext(ctx)
	if err != nil {
		return err
	}

	summary, err := h.analytics.RegionSummary(ctx, caller)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, summary)
}

// (GET /api/analytics/report.xlsx)
func (h *Handler) AnalyticsReport(c echo.Context) error {
	ctx := c.Request().Context()
	caller, err := access.CallerFromContext(ctx)
	if err != nil {
		return err
	}

	file, err := h.analytics.ExportOverviewReport(ctx, caller)
	if err != nil {
		return err
	}

	response := c.Response()
	response.Header().Set(echo.HeaderContentType, xlsxContentType)
	response.Header().Set(echo.HeaderContentDisposition, `attachment; filename="registry-overview.xlsx"`)
	response.WriteHeader(http.StatusOK)

	if err := file.Write(response.Writer); err != nil {
		return fmt.Errorf("%w: unable to write report", errors.InternalServerError)
	}
	return nil
}
