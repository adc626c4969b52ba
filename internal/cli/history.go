// Package cli provides generation history commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/opencode-ai/pipebuilder/internal/db"
	"github.com/opencode-ai/pipebuilder/internal/models"
)

var (
	historyStatus string
	historySince  string
	historyLimit  int
	pruneBefore   string
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyPruneCmd)

	historyCmd.Flags().StringVar(&historyStatus, "status", "", "filter by status (pending, succeeded, failed)")
	historyCmd.Flags().StringVar(&historySince, "since", "", "only runs newer than a duration (1h, 7d) or RFC3339 time")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum runs to show")

	historyPruneCmd.Flags().StringVar(&pruneBefore, "before", "30d", "delete runs older than a duration or RFC3339 time")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show generation history",
	Example: `  # Last 20 runs
  pipebuilder history

  # Failures from the last day
  pipebuilder history --status failed --since 1d`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		database, err := openDatabase(ctx, GetConfig())
		if err != nil {
			return err
		}
		defer database.Close()

		query := db.RunQuery{Limit: historyLimit}
		if historyStatus != "" {
			status, err := parseRunStatus(historyStatus)
			if err != nil {
				return err
			}
			query.Status = &status
		}
		if historySince != "" {
			since, err := parseCutoff(historySince, time.Now())
			if err != nil {
				return err
			}
			query.Since = &since
		}
		return runHistory(ctx, os.Stdout, db.NewRunRepository(database), query)
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old generation runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		database, err := openDatabase(ctx, GetConfig())
		if err != nil {
			return err
		}
		defer database.Close()

		cutoff, err := parseCutoff(pruneBefore, time.Now())
		if err != nil {
			return err
		}
		return runHistoryPrune(ctx, os.Stdout, db.NewRunRepository(database), cutoff)
	},
}

type runLister interface {
	List(ctx context.Context, q db.RunQuery) ([]*models.GenerationRun, error)
}

type runDeleter interface {
	Delete(ctx context.Context, before time.Time) (int64, error)
}

func runHistory(ctx context.Context, out io.Writer, runs runLister, query db.RunQuery) error {
	list, err := runs.List(ctx, query)
	if err != nil {
		return err
	}
	if IsJSONOutput() || IsJSONLOutput() {
		return WriteOutput(out, list)
	}
	if len(list) == 0 {
		fmt.Fprintln(out, "No generation runs recorded.")
		return nil
	}

	rows := make([][]string, 0, len(list))
	for _, run := range list {
		path := run.SavedPath
		if path == "" {
			path = run.RequestedPath
		}
		rows = append(rows, []string{
			shortID(run.ID),
			formatRunStatus(run.Status),
			run.CreatedAt.Local().Format("2006-01-02 15:04"),
			strconv.Itoa(len(run.BlockTypes)),
			formatYesNo(run.EmitLocalFiles),
			path,
		})
	}
	if err := writeTable(out, []string{"ID", "STATUS", "CREATED", "BLOCKS", "LOCAL", "PATH"}, rows); err != nil {
		return err
	}
	for _, run := range list {
		if run.Status == models.RunStatusFailed && run.Error != "" {
			fmt.Fprintf(out, "\n%s %s: %s\n", colorize("ERR", colorRed), shortID(run.ID), run.Error)
		}
	}
	return nil
}

// PruneResult is the JSON output of `history prune`.
type PruneResult struct {
	Before  time.Time `json:"before"`
	Deleted int64     `json:"deleted"`
}

func runHistoryPrune(ctx context.Context, out io.Writer, runs runDeleter, cutoff time.Time) error {
	deleted, err := runs.Delete(ctx, cutoff)
	if err != nil {
		return err
	}
	if IsJSONOutput() || IsJSONLOutput() {
		return WriteOutput(out, PruneResult{Before: cutoff.UTC(), Deleted: deleted})
	}
	fmt.Fprintf(out, "Deleted %d runs created before %s\n", deleted, cutoff.Local().Format("2006-01-02 15:04"))
	return nil
}

func parseRunStatus(value string) (models.RunStatus, error) {
	status := models.RunStatus(strings.ToLower(strings.TrimSpace(value)))
	switch status {
	case models.RunStatusPending, models.RunStatusSucceeded, models.RunStatusFailed:
		return status, nil
	}
	return "", &PreflightError{
		Message: fmt.Sprintf("unknown status %q", value),
		Hint:    "Use pending, succeeded or failed",
	}
}

// parseCutoff accepts an RFC3339 time or a duration before now. A "d"
// suffix is read as days.
func parseCutoff(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.Atoi(days)
		if err == nil && n >= 0 {
			return now.Add(-time.Duration(n) * 24 * time.Hour), nil
		}
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return time.Time{}, &PreflightError{
			Message: fmt.Sprintf("invalid time %q", value),
			Hint:    "Use a duration like 12h or 7d, or an RFC3339 time",
		}
	}
	return now.Add(-d), nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
