package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"surveycore/internal/controllers"
	"surveycore/internal/jobs/interfaces"
	"surveycore/internal/providers"
	"surveycore/internal/structures"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/atomic"
)

type App struct {
	WebServer *http.Server
	ready     *atomic.Bool
}

// Handler mounts the infrastructure endpoints next to the instrumented API.
func Handler(healthController *controllers.HealthController, conf *structures.Config, router providers.RouterProviderInterface, metrics providers.MetricsProviderInterface, ready *atomic.Bool) http.Handler {
	apiMux := http.NewServeMux()
	for _, route := range router.GetRoutes() {
		apiMux.Handle(route.Url, providers.MetricsMiddleware(metrics, route.Url, route.Handler))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthController.Health)
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if !ready.Load() {
			http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	if conf.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}
	mux.Handle("/", apiMux)
	return mux
}

func NewApp(healthController *controllers.HealthController, scheduler interfaces.SchedulerInterface, conf *structures.Config, logger providers.Logger, router providers.RouterProviderInterface, metrics providers.MetricsProviderInterface) (*App, error) {
	logger.Infof(providers.TypeApp, "Starting %s", conf.AppName)
	if err := scheduler.Restore(); err != nil {
		// An empty ledger would re-admit tokens that were already used.
		return nil, fmt.Errorf("restore ledger: %w", err)
	}

	app := &App{ready: atomic.NewBool(false)}
	app.WebServer = &http.Server{
		Addr:         conf.WebServer.Host + ":" + strconv.Itoa(conf.WebServer.Port),
		Handler:      Handler(healthController, conf, router, metrics, app.ready),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	scheduler.Init()

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof(providers.TypeApp, "Listening HTTP clients on %s:%d", conf.WebServer.Host, conf.WebServer.Port)
		if err := app.WebServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()
	app.ready.Store(true)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Infof(providers.TypeApp, "Shutdown signal received")
	case err := <-serverErr:
		scheduler.Stop()
		return nil, fmt.Errorf("server error: %w", err)
	}

	app.ready.Store(false)
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.WebServer.Shutdown(ctx); err != nil {
		return nil, err
	}
	if err := scheduler.Persist(); err != nil {
		return nil, err
	}
	logger.Infof(providers.TypeApp, "gracefully stopped")
	return app, nil
}
