// cmd/post-scheduler/root.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-post-scheduler/internal/common/logger"

	"github.com/spf13/cobra"
)

var (
	configPath    string
	logLevel      string
	skipSmokeTest bool
)

var rootCmd = &cobra.Command{
	Use:   "post-scheduler",
	Short: "Generate AI artwork and publish it on a daily schedule",
	Long: `post-scheduler composes prompts, generates images, writes captions and
publishes them at the configured times of day.

Modes:
  post-scheduler            Smoke test, then run the scheduler until SIGINT/SIGTERM
  post-scheduler test       Run the smoke test only
  post-scheduler run-once   Run one slot for a single content kind now`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
	RunE:         runScheduler,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config.yaml (default: search ./configs and .)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level override: debug, info, warn, error")
	rootCmd.Flags().BoolVar(&skipSmokeTest, "skip-smoke-test", false,
		"Start the scheduler without the startup smoke test")
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := a.startHTTPServer()

	runErr := startScheduler(ctx, a.runner, skipSmokeTest, a.log)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.log.Warn("http server shutdown failed", map[string]interface{}{"error": err})
		}
	}
	return runErr
}

// scheduleRunner is the part of the runner driven by the startup sequence.
type scheduleRunner interface {
	SmokeTest(ctx context.Context) error
	Run(ctx context.Context) error
}

// startScheduler runs the smoke test and starts the scheduler only if it
// passed.
func startScheduler(ctx context.Context, runner scheduleRunner, skipSmoke bool, log logger.Logger) error {
	if skipSmoke {
		log.Warn("smoke test skipped", nil)
	} else if err := runner.SmokeTest(ctx); err != nil {
		return fmt.Errorf("smoke test failed, scheduler not started: %w", err)
	}
	return runner.Run(ctx)
}
