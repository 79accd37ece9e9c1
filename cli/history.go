package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/Momin010/MominAI-Beta-1/config"
	"github.com/Momin010/MominAI-Beta-1/journal"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded patch runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "maximum number of runs to list")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if !cfg.Journal.Enabled || cfg.Journal.Path == "" {
		return errors.New("journal is disabled")
	}

	j, err := journal.New(journal.Config{DSN: cfg.Journal.Path})
	if err != nil {
		return err
	}
	defer j.Close()

	if err := j.Migrate(cmd.Context()); err != nil {
		return err
	}

	runs, err := j.ListRuns(cmd.Context(), flagHistoryLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}

	for _, run := range runs {
		cmd.Printf("%s  %s  %s  changed=%t replacements=%d %s->%s (%s)\n",
			run.ID,
			run.StartedAt.Local().Format(time.RFC3339),
			run.Target,
			run.Changed,
			run.Total,
			run.SumBefore,
			run.SumAfter,
			run.Duration,
		)
	}
	return nil
}
