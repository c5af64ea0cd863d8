package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"video-library/internal/database"
	"video-library/internal/handlers"
	"video-library/internal/logging"
	"video-library/internal/memory"
	"video-library/internal/metrics"
	"video-library/internal/middleware"
	"video-library/internal/startup"
	"video-library/internal/viewport"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsInterval = time.Minute

func main() {
	startTime := time.Now()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}
	memory.ConfigureFromEnv()

	dbStart := time.Now()
	db, err := database.New(context.Background(), config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	startup.LogDatabaseInit(time.Since(dbStart), db.Len())
	startup.LogViewportDefaults(config.ViewportDefaults)

	var opts []viewport.Option
	if config.MetricsEnabled {
		metrics.InitializeMetrics()
		opts = append(opts, viewport.WithObserver(metrics.NewPipelineObserver()))
	}
	h := handlers.New(db, config.ViewportDefaults, opts...)

	router := setupRouter(h, config.MetricsEnabled)
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler := middleware.Logger(loggingConfig)(router)

	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var metricsSrv *http.Server
	var collector *metrics.Collector
	if config.MetricsEnabled {
		collector = metrics.NewCollector(h, metricsInterval)
		collector.Start()

		metricsSrv = setupMetricsServer(config.MetricsPort, db)
		go func() {
			if err := metricsSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	done := make(chan struct{})
	go handleShutdown(srv, metricsSrv, collector, h, db, done)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
	<-done
}

func setupRouter(h *handlers.Handlers, withMetrics bool) *mux.Router {
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	if withMetrics {
		r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))
	}
	return r
}

// setupMetricsServer serves Prometheus metrics on their own port. Database
// connection gauges are refreshed on every scrape.
func setupMetricsServer(port string, db *database.Database) *http.Server {
	metricsMux := http.NewServeMux()
	promHandler := promhttp.Handler()
	metricsMux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		db.UpdateDBMetrics()
		promHandler.ServeHTTP(w, r)
	})
	return &http.Server{
		Addr:              ":" + port,
		Handler:           metricsMux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// shutdownStep is one stage of an orderly shutdown. Steps run in order
// and a failing step does not stop the later ones.
type shutdownStep struct {
	name string
	done string
	run  func(ctx context.Context) error
}

func handleShutdown(srv, metricsSrv *http.Server, collector *metrics.Collector, h *handlers.Handlers, db *database.Database, done chan<- struct{}) {
	defer close(done)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	steps := []shutdownStep{
		{"Shutting down HTTP server", "HTTP server stopped", srv.Shutdown},
	}
	if metricsSrv != nil {
		steps = append(steps, shutdownStep{"Shutting down metrics server", "Metrics stopped", func(ctx context.Context) error {
			collector.Stop()
			return metricsSrv.Shutdown(ctx)
		}})
	}
	steps = append(steps,
		shutdownStep{"Closing viewport sessions", "Viewport sessions closed", func(context.Context) error {
			h.Close()
			return nil
		}},
		shutdownStep{"Saving term index and closing database", "Database closed", func(context.Context) error {
			return db.Close()
		}},
	)

	for _, step := range steps {
		startup.LogShutdownStep(step.name)
		if err := step.run(ctx); err != nil {
			logging.Error("%s: %v", step.name, err)
			continue
		}
		startup.LogShutdownStepComplete(step.done)
	}
	startup.LogShutdownComplete()
}
