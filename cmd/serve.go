package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lukman83/promobot/internal/api"
	"github.com/lukman83/promobot/internal/metrics"
	"github.com/lukman83/promobot/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the pipeline on a schedule and serve the HTTP API",
	Long:  "Starts the cron scheduler and an HTTP server with /healthz, /metrics, POST /run and the /mcp tool endpoint.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("port", "", "HTTP port (default from $PORT or 8080)")
	serveCmd.Flags().String("schedule", "", "Cron spec for runs (default from $PROMO_SCHEDULE or @every 2h)")
	serveCmd.Flags().Bool("no-schedule", false, "Serve the API without scheduled runs")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	port := cfg.HTTPPort
	if p, _ := cmd.Flags().GetString("port"); p != "" {
		port = p
	}
	spec := cfg.Schedule
	if s, _ := cmd.Flags().GetString("schedule"); s != "" {
		spec = s
	}
	noSchedule, _ := cmd.Flags().GetBool("no-schedule")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	metrics.Register()
	p := a.pipeline()

	var sched *scheduler.Scheduler
	if !noSchedule {
		sched, err = scheduler.New(spec, p, logger)
		if err != nil {
			return err
		}
		sched.Start()
	}

	router := api.NewRouter(api.NewHandler(p, logger), a.toolDeps(p), cfg.APIKey)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("[serve] listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Printf("[serve] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if sched != nil {
		if err := sched.Stop(shutdownCtx); err != nil {
			logger.Printf("[serve] scheduler stop: %v", err)
		}
	}
	return srv.Shutdown(shutdownCtx)
}
