// cmd/post-scheduler/commands.go
package main

import (
	"fmt"

	"ai-post-scheduler/internal/models"

	"github.com/spf13/cobra"
)

var runOnceKind string

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Run the smoke test and exit",
	Long:  "Push one feed post, plus one story when stories are enabled, through the full pipeline.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		return a.runner.SmokeTest(ctx)
	},
}

var runOnceCmd = &cobra.Command{
	Use:   "run-once",
	Short: "Run one slot for a content kind immediately",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := models.ContentKind(runOnceKind)
		if kind != models.KindPosts && kind != models.KindStories {
			return fmt.Errorf("--kind must be %q or %q, got %q", models.KindPosts, models.KindStories, runOnceKind)
		}

		ctx, stop := signalContext()
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.runner.RunKind(ctx, kind)
		if err != nil {
			return err
		}
		if report.Failed() > 0 {
			return fmt.Errorf("%d of %d items failed", report.Failed(), report.Failed()+report.Published())
		}
		return nil
	},
}

func init() {
	runOnceCmd.Flags().StringVar(&runOnceKind, "kind", string(models.KindPosts),
		"Content kind to run: posts or stories")

	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(runOnceCmd)
}
