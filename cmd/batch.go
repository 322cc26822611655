package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"podsafe/internal/app"
	"podsafe/internal/clix"
	"podsafe/internal/costtracker"
	"podsafe/internal/fileingest"
	"podsafe/internal/models"
	"podsafe/internal/services"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var batchAsync bool

// batchCmd checks one description per line of a file.
var batchCmd = &cobra.Command{
	Use:   "batch <file|dir|->",
	Short: "Check many podcast descriptions",
	Long: `Reads podcast descriptions from a file (or stdin with "-"), one per line,
and checks them concurrently. Given a directory, every .txt, .md and .html file
under it is checked as one description. With --async the descriptions are queued
for the worker instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		items, err := readBatchInput(cmd.Context(), cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No descriptions to check.")
			return nil
		}

		if batchAsync {
			return enqueueBatch(cmd.Context(), cmd.OutOrStdout(), appInstance, items)
		}

		concurrency, err := clix.ParseConcurrency(cmd.Flags())
		if err != nil {
			return err
		}
		results := runBatch(cmd.Context(), appInstance.CheckService, items, concurrency)
		printBatch(cmd.OutOrStdout(), results)
		printCostSummary(cmd.Context(), cmd.OutOrStdout(), appInstance.CostTracker)
		return nil
	},
}

// batchItem is one description to check: a line of text or a file path.
type batchItem struct {
	Label  string
	Input  string
	IsFile bool
}

type batchResult struct {
	Label string
	Check *models.Check
	Err   error
}

func readBatchInput(ctx context.Context, stdin io.Reader, path string) ([]batchItem, error) {
	var lines []string
	switch fi, err := os.Stat(path); {
	case path == "-":
		if lines, err = clix.ReadLines(stdin); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("failed to open batch input '%s': %w", path, err)
	case fi.IsDir():
		files, err := fileingest.DiscoverDescriptionFiles(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to scan directory '%s': %w", path, err)
		}
		items := make([]batchItem, len(files))
		for i, f := range files {
			rel, relErr := filepath.Rel(path, f.Path)
			if relErr != nil {
				rel = f.Name
			}
			items[i] = batchItem{Label: rel, Input: f.Path, IsFile: true}
		}
		return items, nil
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open batch file '%s': %w", path, err)
		}
		defer f.Close()
		if lines, err = clix.ReadLines(f); err != nil {
			return nil, err
		}
	}

	items := make([]batchItem, len(lines))
	for i, line := range lines {
		items[i] = batchItem{Label: strconv.Itoa(i + 1), Input: line}
	}
	return items, nil
}

// runBatch checks every item with at most concurrency checks in flight.
// Per-item failures are reported in the results rather than aborting the batch.
func runBatch(ctx context.Context, checker services.Checker, items []batchItem, concurrency int) []batchResult {
	results := make([]batchResult, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			check, err := checker.Check(gctx, services.CheckParams{Input: item.Input, Raw: !item.IsFile})
			results[i] = batchResult{Label: item.Label, Check: check, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func printBatch(out io.Writer, results []batchResult) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Item", "Verdict", "Keywords"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	kids, failed := 0, 0
	for _, r := range results {
		verdict := ""
		var kws []string
		switch {
		case r.Err != nil:
			failed++
			verdict = color.YellowString(services.UserMessage(r.Err))
		default:
			if r.Check.IsForKids {
				kids++
			}
			verdict = verdictBadge(r.Check)
		}
		if r.Check != nil {
			kws = r.Check.Keywords
		}
		table.Append([]string{r.Label, verdict, truncate(strings.Join(kws, ", "), 60)})
	}
	table.Render()
	fmt.Fprintf(out, "\n%d checked: %d kid-friendly, %d not for kids, %d failed\n",
		len(results), kids, len(results)-kids-failed, failed)
}

// printCostSummary reports the estimated LLM spend of this run, if any.
// The plain HTTP classifier records nothing, so nothing is printed for it.
func printCostSummary(ctx context.Context, out io.Writer, tracker costtracker.CostTracker) {
	if tracker == nil {
		return
	}
	total, err := tracker.TotalCost(ctx)
	if err != nil || total <= 0 {
		return
	}
	fmt.Fprintf(out, "Estimated LLM cost: $%.6f\n", total)
}

// enqueueBatch queues each item for the worker. Files are read here since the
// worker only accepts description text.
func enqueueBatch(ctx context.Context, out io.Writer, appInstance *app.App, items []batchItem) error {
	if appInstance.JobClient == nil {
		return fmt.Errorf("--async requires redis.address to be configured")
	}
	for _, item := range items {
		description := item.Input
		if item.IsFile {
			res, err := appInstance.Processor.Process(ctx, item.Input)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", item.Label, err)
			}
			description = res.Body
		}
		info, err := appInstance.JobClient.EnqueueCheck(ctx, description)
		if err != nil {
			return fmt.Errorf("failed to enqueue %s: %w", item.Label, err)
		}
		fmt.Fprintf(out, "%s queued as task %s\n", item.Label, info.ID)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	batchCmd.Flags().Int("concurrency", 4, "Maximum number of checks in flight")
	batchCmd.Flags().BoolVar(&batchAsync, "async", false, "Queue each line for the worker instead of checking inline")
	rootCmd.AddCommand(batchCmd)
}
