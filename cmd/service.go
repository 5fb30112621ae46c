package cmd

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/isometry/webhook-relay/internal/config"
	"github.com/isometry/webhook-relay/internal/helpers"
	"github.com/isometry/webhook-relay/internal/metrics"
	"github.com/isometry/webhook-relay/internal/models"
	"github.com/isometry/webhook-relay/internal/runtime"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func cmdService() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "service",
		Aliases: []string{"s", "serve", "standalone", "server"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger = logger.With("mode", config.ModeService)
			logger.Info("spawning...")

			hdl, err := newHandler(cmd)
			if err != nil {
				return errors.Wrap(err, "failed to create relay handler")
			}

			logger.Debug("creating runtime...")
			rtm := runtime.NewRuntime(hdl,
				runtime.WithLogger(logger.With("component", "runtime")))

			logger.Debug("creating HTTP server...")
			metrics.MustRegister(prometheus.DefaultRegisterer)
			s := &http.Server{
				Handler:      newServiceRouter(rtm, prometheus.DefaultGatherer),
				Addr:         net.JoinHostPort(config.Service.Addr, config.Service.Port),
				WriteTimeout: config.Service.Timeout,
				ReadTimeout:  config.Service.Timeout,
				IdleTimeout:  config.Service.Timeout,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.Info("serving...", "address", s.Addr, "path", config.Service.Path,
					"metricsPath", config.Service.MetricsPath, "timeout", config.Service.Timeout.String())
				if err := s.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				logger.Info("shutting down...")
				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
				defer cancel()
				return s.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}

	bindEnvMap(cmd, svcEnvMapString)
	bindEnvMap(cmd, svcEnvMapDuration)

	return cmd
}

// newServiceRouter mounts the relay, its metrics and its health check.
func newServiceRouter(rtm *runtime.Runtime, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Handle(config.Service.MetricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get(config.Service.HealthPath, func(w http.ResponseWriter, _ *http.Request) {
		if _, err := rtm.Settings(); err != nil {
			helpers.RespondHTTP(models.Response{StatusCode: http.StatusServiceUnavailable, Body: "relay misconfigured"}, nil, w)
			return
		}
		helpers.RespondHTTP(models.Response{StatusCode: http.StatusOK, Body: "ok"}, nil, w)
	})
	r.Handle(config.Service.Path, rtm)
	return r
}
