package cmd

import (
	"fmt"
	"io"
	"strings"

	"podsafe/internal/clix"
	"podsafe/internal/models"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// historyCmd represents the base command for check history operations
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View past checks",
	Long:  `Displays podcast checks recorded by the application, newest first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listHistoryCmd.RunE(cmd, args)
	},
}

var listHistoryCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent checks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		page, err := clix.ParsePagination(cmd.Flags())
		if err != nil {
			return err
		}

		checks, err := appInstance.Store.ListChecks(cmd.Context(), page.Limit, page.Offset)
		if err != nil {
			return fmt.Errorf("error listing checks: %w", err)
		}
		if len(checks) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No checks found.")
			return nil
		}
		printHistory(cmd.OutOrStdout(), checks)
		return nil
	},
}

var showHistoryCmd = &cobra.Command{
	Use:   "show <check-id>",
	Short: "Show one recorded check",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid check ID '%s': %w", args[0], err)
		}
		check, err := appInstance.Store.GetCheck(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("error getting check %s: %w", id, err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ID:          %s\n", check.ID)
		fmt.Fprintf(out, "Checked at:  %s\n", check.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "Provider:    %s\n", check.Provider)
		fmt.Fprintf(out, "Status:      %s\n", check.Status)
		if check.Error != "" {
			fmt.Fprintf(out, "Error:       %s\n", check.Error)
		}
		fmt.Fprintf(out, "Description: %s\n\n", check.Description)
		if check.Succeeded() {
			printCheck(out, check)
		}
		return nil
	},
}

func printHistory(out io.Writer, checks []*models.Check) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"ID", "Checked At", "Status", "Verdict", "Description"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, c := range checks {
		verdict := "-"
		if c.Succeeded() {
			verdict = c.Verdict()
		}
		table.Append([]string{
			c.ID.String(),
			c.CreatedAt.Format("2006-01-02 15:04:05"),
			c.Status,
			verdict,
			truncate(strings.Join(strings.Fields(c.Description), " "), 50),
		})
	}
	table.Render()
}

func init() {
	for _, c := range []*cobra.Command{historyCmd, listHistoryCmd} {
		c.Flags().IntP("limit", "n", 20, "Maximum number of checks to show")
		c.Flags().Int("offset", 0, "Number of checks to skip")
	}

	historyCmd.AddCommand(listHistoryCmd)
	historyCmd.AddCommand(showHistoryCmd)
	rootCmd.AddCommand(historyCmd)
}
