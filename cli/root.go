// Package cli implements the aifix command surface.
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Momin010/MominAI-Beta-1/config"
	"github.com/Momin010/MominAI-Beta-1/journal"
	"github.com/Momin010/MominAI-Beta-1/notifications"
	"github.com/Momin010/MominAI-Beta-1/patcher"
	"github.com/Momin010/MominAI-Beta-1/rewrite"

	// Registers the ntfy notification channel.
	_ "github.com/Momin010/MominAI-Beta-1/notifications/channels"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagTarget  string
	flagModel   string
	flagDryRun  bool
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "aifix",
	Short: "Migrate the IDE AI service to the getGenerativeModel API",
	Long: `aifix rewrites the AI service source file in place: old-style
ai.models.generateContent calls become a getGenerativeModel handle plus
a call on that handle, Type.* schema enums become their string forms,
and inline model: arguments made redundant by the handle are removed.

With no flags it patches ` + patcher.DefaultTarget + `.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runPatch,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to the config file")
	rootCmd.Flags().StringVar(&flagTarget, "target", patcher.DefaultTarget, "file to patch")
	rootCmd.Flags().StringVar(&flagModel, "model", rewrite.DefaultModel, "model bound into rewritten calls")
	rootCmd.Flags().BoolVarP(&flagDryRun, "dry-run", "n", false, "print the pending diff instead of saving")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runPatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := newLogger()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	channels, err := notifications.Build(cfg.Notifications, logger)
	if err != nil {
		return err
	}

	p := patcher.New(patcher.Config{
		Target: flagTarget,
		Model:  flagModel,
		DryRun: flagDryRun,
		Out:    cmd.OutOrStdout(),
		Logger: logger,
	})

	res, err := p.Run(ctx)
	if err != nil {
		notifications.Dispatch(ctx, logger, channels, notifications.Event{
			Type:    notifications.EventPatchError,
			Payload: notifications.PatchErrorPayload{Target: flagTarget, ErrorMessage: err.Error()},
		})
		return err
	}

	if flagDryRun {
		return nil
	}

	recordRun(ctx, logger, cfg, res)
	notifications.Dispatch(ctx, logger, channels, notifications.Event{
		Type: notifications.EventPatchDone,
		Payload: notifications.PatchDonePayload{
			Target:       res.Target,
			Replacements: res.Total,
			Changed:      res.Changed,
		},
	})
	return nil
}

// recordRun appends the run to the journal. Journal failures are
// logged, never fatal: the patch itself already succeeded.
func recordRun(ctx context.Context, logger *slog.Logger, cfg config.Config, res *patcher.Result) {
	if !cfg.Journal.Enabled || cfg.Journal.Path == "" {
		return
	}

	j, err := journal.New(journal.Config{DSN: cfg.Journal.Path})
	if err != nil {
		logger.Warn("journal unavailable", "error", err)
		return
	}
	defer j.Close()

	if err := j.Migrate(ctx); err != nil {
		logger.Warn("journal migration failed", "error", err)
		return
	}

	id, err := j.RecordRun(ctx, journal.Run{
		Target:      res.Target,
		Changed:     res.Changed,
		Total:       res.Total,
		Counts:      res.Counts,
		BytesBefore: res.BytesBefore,
		BytesAfter:  res.BytesAfter,
		SumBefore:   res.SumBefore,
		SumAfter:    res.SumAfter,
		Duration:    res.Duration,
	})
	if err != nil {
		logger.Warn("failed to record run", "error", err)
		return
	}
	logger.Debug("recorded run", "id", id)
}
