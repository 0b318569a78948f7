package command

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/healthhive/registry/api"
)

var runTimeout = 60 * time.Second

// Run executes a given function with dependencies supplied by the registry DI graph
// `f` must return an error or nothing
// `opts` can be used to supply additional arguments that are not provided by the registry
func Run(f interface{}, opts ...fx.Option) error {
	deps := append(opts, api.Dependencies()...)
	deps = append(deps, fx.NopLogger, fx.Invoke(f))

	app := fx.New(deps...)
	if err := app.Err(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return err
	}
	return app.Stop(ctx)
}

var rootCmd = &cobra.Command{
	Use:   "registry-admin",
	Short: "Helper tool to manage the chronic disease registry",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
