package api

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/fx"

	"github.com/healthhive/registry/analytics"
	"github.com/healthhive/registry/audit"
	"github.com/healthhive/registry/auth"
	"github.com/healthhive/registry/authz"
	"github.com/healthhive/registry/config"
	"github.com/healthhive/registry/logger"
	"github.com/healthhive/registry/patients"
	"github.com/healthhive/registry/regions"
	"github.com/healthhive/registry/store"
	"github.com/healthhive/registry/users"
	"github.com/healthhive/registry/visits"
)

func Start(e *echo.Echo, cfg *config.Config, lifecycle fx.Lifecycle) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := e.Start(fmt.Sprintf(":%d", cfg.HttpPort)); err != nil {
					fmt.Println(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})
}

func SetReady(healthCheck *HealthCheck, db *mongo.Database, lifecycle fx.Lifecycle) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := db.Client().Ping(ctx, nil); err != nil {
				return err
			}

			// It's important this is set after mongo is initialized, which is ensured
			// by taking a dependency on mongo in the constructor, because lifecycle hooks
			// are executed in topological order
			healthCheck.SetReady(true)
			return nil
		},
		OnStop: nil,
	})
}

// Dependencies is the full DI graph of the service. The admin CLI
// reuses it to run one-shot commands against the same stores.
func Dependencies() []fx.Option {
	return []fx.Option{
		fx.Provide(
			config.New,
			logger.NewProductionLogger,
			logger.Sugar,
			store.NewConfig,
			store.GetConnectionString,
			store.NewClient,
			store.NewDatabase,
			audit.NewRepository,
			audit.NewRecorder,
			users.NewRepository,
			users.NewService,
			regions.NewRepository,
			regions.NewService,
			patients.NewRepository,
			patients.NewService,
			visits.NewRepository,
			visits.NewService,
			analytics.NewRepository,
			analytics.NewVisitAggregator,
			analytics.NewService,
			auth.NewAuthenticator,
			authz.NewRequestAuthorizer,
			NewHealthCheck,
			NewHandler,
			NewServer,
		),
	}
}

func MainLoop() {
	opts := append(
		Dependencies(),
		fx.Invoke(SetReady),
		fx.Invoke(Start),
	)
	fx.New(opts...).Run()
}
