package api

import (
	"github.com/brpaz/echozap"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/healthhive/registry/auth"
	"github.com/healthhive/registry/authz"
	"github.com/healthhive/registry/config"
	"github.com/healthhive/registry/errors"
)

func NewServer(
	handler *Handler,
	healthCheck *HealthCheck,
	authenticator auth.Authenticator,
	authorizer authz.RequestAuthorizer,
	cfg *config.Config,
	log *zap.Logger,
) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true

	// Skip auth and logging for the readiness probe
	skipper := RouteSkipper([]string{"/ready"})
	authMiddleware := auth.NewAuthMiddleware(authenticator, auth.AuthMiddlewareOpts{
		Skipper: skipper,
	})
	authzMiddleware := authz.NewAuthzMiddleware(authorizer, authz.AuthzMiddlewareOpts{
		Skipper: skipper,
	})
	loggerMiddleware := echozap.ZapLogger(log)

	e.Use(middleware.Recover())
	e.Use(loggerMiddleware)
	e.Use(authMiddleware)
	e.Use(authzMiddleware)

	e.HTTPErrorHandler = errors.NewHTTPErrorHandler(cfg.DebugErrors)

	e.GET("/ready", healthCheck.Ready)
	RegisterHandlers(e, handler)

	return e, nil
}

func RegisterHandlers(e *echo.Echo, handler *Handler) {
	g := e.Group("/api")

	g.POST("/visits", handler.RecordVisit)
	g.GET("/visits", handler.ListVisits)
	g.POST("/visits/bulk-sync", handler.BulkSyncVisits)
	g.GET("/visits/:visitId", handler.GetVisit)

	g.POST("/patients", handler.CreatePatient)
	g.GET("/patients", handler.ListPatients)
	g.GET("/patients/:patientId", handler.GetPatient)
	g.PUT("/patients/:patientId", handler.UpdatePatient)
	g.DELETE("/patients/:patientId", handler.DeactivatePatient)
	g.GET("/patients/:patientId/visits", handler.ListPatientVisits)
	g.GET("/patients/:patientId/history", handler.PatientHistory)

	g.GET("/analytics/overview", handler.AnalyticsOverview)
	g.GET("/analytics/htn-trends", handler.AnalyticsHTNTrends)
	g.GET("/analytics/dm-trends", handler.AnalyticsDMTrends)
	g.GET("/analytics/cohort-retention", handler.AnalyticsCohortRetention)
	g.GET("/analytics/risk-distribution", handler.AnalyticsRiskDistribution)
	g.GET("/analytics/medication-adherence", handler.AnalyticsAdherence)
	g.GET("/analytics/distributions", handler.AnalyticsDistributions)
	g.GET("/analytics/barangay-summary", handler.AnalyticsBarangaySummary)
	g.GET("/analytics/report.xlsx", handler.AnalyticsReport)

	g.GET("/users", handler.ListUsers)
	g.GET("/barangays", handler.ListBarangays)
}
