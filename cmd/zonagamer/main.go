// Command zonagamer serves the ZonaGamer storefront API. It reconciles the
// remote store API with local collections so the shop keeps working while
// the upstream is down.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"zonagamer/internal/repos"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string
	root := &cobra.Command{
		Use:          "zonagamer",
		Short:        "ZonaGamer storefront API",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				return os.Setenv("CONFIG_FILE", configFile)
			}
			return nil
		},
		RunE: runServe,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "yaml config file (default ./config.yaml when present)")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "reset-products",
			Short: "Restore the local product collection from its seed source",
			RunE:  runResetProducts,
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the build version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), version)
			},
		},
	)
	return root
}

func runServe(cmd *cobra.Command, _ []string) error {
	app := fx.New(modules(), fx.Invoke(warm, serve))
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(cmd.Context(), app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return errors.Wrap(err, "start")
	}

	sig := <-app.Wait()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancelStop()
	if err := app.Stop(stopCtx); err != nil {
		return errors.Wrap(err, "stop")
	}
	if sig.ExitCode != 0 {
		return errors.Errorf("server exited with code %d", sig.ExitCode)
	}
	return nil
}

func runResetProducts(cmd *cobra.Command, _ []string) error {
	var products *repos.ProductsCRUD
	app := fx.New(modules(), fx.Populate(&products))
	if err := app.Err(); err != nil {
		return err
	}
	ctx := cmd.Context()
	if err := app.Start(ctx); err != nil {
		return errors.Wrap(err, "start")
	}
	defer func() { _ = app.Stop(context.Background()) }()

	all, err := products.Reset(ctx)
	if err != nil {
		return errors.Wrap(err, "reset products")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "restored %d products\n", len(all))
	return nil
}
