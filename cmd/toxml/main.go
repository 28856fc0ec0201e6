// Command toxml generates and validates transport order XML.
//
// `toxml serve` exposes the operations as MCP tools over streamable HTTP or
// stdio, together with a REST API. The other subcommands run a single
// operation and print its result.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"github.com/Laisky/transport-order-mcp/catalog"
	"github.com/Laisky/transport-order-mcp/common"
	"github.com/Laisky/transport-order-mcp/common/config"
	"github.com/Laisky/transport-order-mcp/common/logger"
	"github.com/Laisky/transport-order-mcp/service"
)

var (
	cfgFile    string
	catalogDir string
	debug      bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "toxml",
		Short:         "Generate and validate transport order XML",
		Version:       common.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.Load(cfgFile); err != nil {
				return err
			}
			if cmd.Flags().Changed("catalog-dir") {
				config.CatalogDir = catalogDir
			}
			if debug {
				config.DebugEnabled = true
				config.LogLevel = "debug"
			}
			return logger.SetupLogger(config.LogLevel)
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./.toxml.yaml)")
	root.PersistentFlags().StringVar(&catalogDir, "catalog-dir", "", "directory overlaying the embedded templates and definitions")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newServeCmd(),
		newGenerateCmd(),
		newValidateCmd(),
		newTypesCmd(),
		newInfoCmd(),
		newExampleCmd(),
		newRequirementsCmd(),
	)
	return root
}

// newService builds the service from the loaded configuration.
func newService() (*service.Service, error) {
	c, err := catalog.New(
		catalog.WithDir(config.CatalogDir),
		catalog.WithCacheTTL(config.CatalogCacheTTL),
		catalog.WithLogger(logger.Logger.Named("catalog")),
	)
	if err != nil {
		return nil, err
	}
	return service.New(c), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "toxml: %v\n", err)
		stop()
		os.Exit(1)
	}
}
