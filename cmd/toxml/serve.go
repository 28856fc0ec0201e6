package main

import (
	"context"
	stdErrors "errors"
	"net/http"
	"runtime"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Laisky/transport-order-mcp/common"
	"github.com/Laisky/transport-order-mcp/common/config"
	"github.com/Laisky/transport-order-mcp/common/logger"
	"github.com/Laisky/transport-order-mcp/common/telemetry"
	"github.com/Laisky/transport-order-mcp/mcp"
	"github.com/Laisky/transport-order-mcp/monitor"
	"github.com/Laisky/transport-order-mcp/router"
	"github.com/Laisky/transport-order-mcp/service"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var (
		transport string
		listen    string
		watch     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP tools over streamable HTTP or stdio",
		Long: `Serve the transport order tools.

With --transport http (the default) the MCP endpoint, the REST API under
/api/v1, /healthz and /metrics share one listener. With --transport stdio the
MCP protocol runs over stdin and stdout and logs go to stderr.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("transport") {
				config.MCPTransport = transport
			}
			if cmd.Flags().Changed("listen") {
				config.ListenAddress = listen
			}
			if cmd.Flags().Changed("watch") {
				config.CatalogWatch = watch
			}
			return serve(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&transport, "transport", config.MCPTransport, "MCP transport: http or stdio")
	cmd.Flags().StringVar(&listen, "listen", config.ListenAddress, "HTTP listen address")
	cmd.Flags().BoolVar(&watch, "watch", config.CatalogWatch, "reload the catalog directory on change")
	return cmd
}

func serve(ctx context.Context) error {
	startTime := time.Now()
	switch config.MCPTransport {
	case "http":
	case "stdio":
		if err := logger.SetupStderrLogger(config.LogLevel); err != nil {
			return errors.Wrap(err, "setup stderr logger")
		}
	default:
		return errors.Errorf("unknown mcp transport %q, expected http or stdio", config.MCPTransport)
	}
	lg := logger.Logger.Named("serve")

	otelProviders, err := telemetry.InitOpenTelemetry(ctx)
	if err != nil {
		return errors.Wrap(err, "init opentelemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := otelProviders.Shutdown(shutdownCtx); err != nil {
			lg.Warn("shutdown opentelemetry", zap.Error(err))
		}
	}()

	if err := monitor.InitMonitoring(common.Version, common.BuildTime, runtime.Version(), startTime); err != nil {
		return errors.Wrap(err, "init monitoring")
	}

	svc, err := newService()
	if err != nil {
		return errors.Wrap(err, "load catalog")
	}
	mcpServer := mcp.NewServer(svc)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if config.CatalogWatch {
		if config.CatalogDir == "" {
			lg.Warn("catalog.watch is set but catalog.dir is empty, nothing to watch")
		} else {
			g.Go(func() error {
				return svc.Catalog().Watch(gctx)
			})
		}
	}

	if config.MCPTransport == "stdio" {
		g.Go(func() error {
			defer cancel()
			return mcpServer.RunStdio(gctx)
		})
	} else {
		srv := newHTTPServer(svc, mcpServer)
		g.Go(func() error {
			defer cancel()
			lg.Info("http server listening",
				zap.String("addr", config.ListenAddress),
				zap.String("mcp_path", config.MCPPath),
				zap.String("version", common.Version))
			if err := srv.ListenAndServe(); err != nil && !stdErrors.Is(err, http.ErrServerClosed) {
				return errors.Wrap(err, "http server")
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancelShutdown()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	lg.Info("server stopped", zap.Duration("uptime", time.Since(startTime)))
	if stdErrors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func newHTTPServer(svc *service.Service, mcpServer *mcp.Server) *http.Server {
	if config.DebugEnabled {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	router.SetRouter(engine, svc, mcpServer)

	return &http.Server{
		Addr:              config.ListenAddress,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
