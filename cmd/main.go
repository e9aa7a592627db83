package main

//
//  @title           dipwatch API
//  @version         1.0
//  @description     Daily 52-week-high dip check with email notification and archival.
//  @termsOfService  https://github.com/guttosm/dipwatch
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/dipwatch
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        runs
//  @tag.description Trigger a dip check run
//
//  @tag.name        dips
//  @tag.description Read-only preview of today's dips
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guttosm/dipwatch/config"
	_ "github.com/guttosm/dipwatch/docs" // swagger docs
	"github.com/guttosm/dipwatch/internal/app"
	"github.com/guttosm/dipwatch/internal/job"
	"github.com/guttosm/dipwatch/internal/logger"
)

// runner is the part of job.Job that a single invocation needs.
type runner interface {
	Run(ctx context.Context) (*job.RunResult, error)
}

// runOnce performs one invocation and logs its outcome.
//
// Returns:
//   - error: evaluation or archival failures. A failed notification is only
//     logged; the run itself still counts as done.
func runOnce(ctx context.Context, r runner) error {
	res, err := r.Run(ctx)
	if err != nil {
		return err
	}

	ev := logger.L().Info()
	if res.NotifyError != nil {
		ev = logger.L().Warn().AnErr("notify_error", res.NotifyError)
	}
	ev.Str("run_id", res.ID).
		Str("date", res.Date).
		Int("dips", len(res.Dips)).
		Bool("notified", res.Notified).
		Strs("archived", res.Archived).
		Dur("duration", res.Duration).
		Msg("run completed")
	return nil
}

// startServer initializes and starts the HTTP server in a separate goroutine.
//
// Parameters:
//   - router (http.Handler): The HTTP router (Gin Engine) configured with all routes.
//   - port (string): The port where the server will listen for incoming requests.
//
// Returns:
//   - *http.Server: The initialized HTTP server instance.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      45 * time.Second, // above the router's run timeout
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up resources
// when an OS interrupt signal (SIGINT, SIGTERM) is received.
//
// Parameters:
//   - ctx (context.Context): Parent of the shutdown timeout.
//   - server (*http.Server): The HTTP server instance to shut down.
//   - cleanup (func()): Cleanup callback releasing archive and broker connections.
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Error().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// main is the entry point of the dipwatch application.
//
// Modes (selected via --mode flag):
//   - run: Performs one dip check and exits; the daily trigger is external (cron, EventBridge).
//   - api: Serves the HTTP trigger, the read-only preview and the health probes.
//
// Flags:
//   - --mode:    Execution mode ("run" or "api"). Default: "run".
//   - --timeout: Upper bound for one run in run mode. Default: 2m.
//   - --port:    Port for the API server. Defaults to value from config (SERVER_PORT).
func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.L().Fatal().Err(err).Msg("config error")
	}

	mode := flag.String("mode", "run", "Mode: run or api")
	timeout := flag.Duration("timeout", 2*time.Minute, "Upper bound for a single run")
	port := flag.String("port", cfg.Server.Port, "Port for API mode")
	flag.Parse()

	switch *mode {
	case "run":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		ctx, cancel := context.WithTimeout(ctx, *timeout)

		rt, err := app.NewRuntime(ctx, cfg)
		if err != nil {
			cancel()
			stop()
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		err = runOnce(ctx, rt.Job)
		rt.Close()
		cancel()
		stop()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("run failed")
		}

	case "api":
		logger.L().Info().Msg("starting API server")
		ctx := context.Background()

		router, cleanup, err := app.InitializeApp(ctx, cfg)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, *port)
		gracefulShutdown(ctx, server, cleanup)

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
