package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/area-risk/internal/api"
	"github.com/sells-group/area-risk/internal/config"
	"github.com/sells-group/area-risk/internal/pipeline"
)

const shutdownTimeout = 10 * time.Second

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Train the model and serve the risk query endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		state, err := train(ctx, cfg)
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		srv := newServer(cfg.Server, port, state)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			zap.L().Info("starting server", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
		return g.Wait()
	},
}

// newServer builds the HTTP server for state. port overrides sc.Port.
func newServer(sc config.ServerConfig, port int, state *pipeline.State) *http.Server {
	return &http.Server{
		Addr:              net.JoinHostPort(sc.Host, strconv.Itoa(port)),
		Handler:           newHandler(sc, state),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func newHandler(sc config.ServerConfig, state *pipeline.State) http.Handler {
	return api.NewRouter(api.NewService(state), api.RouterOptions{
		CORSOrigins: sc.CORSOrigins,
		RateLimit:   sc.RateLimit,
		RateBurst:   sc.RateBurst,
	})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
