package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"podsafe/internal/models"
	"podsafe/internal/services"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var checkJSON bool

var checkCmd = &cobra.Command{
	Use:   "check [text|file|url...]",
	Short: "Check whether a podcast is kid-friendly",
	Long: `Extracts keywords from a podcast description and asks the configured
classifier whether the podcast is suitable for children. The input may be the
description itself, a path to a text or HTML file, or an http(s) URL.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		check, err := appInstance.CheckService.Check(cmd.Context(), services.CheckParams{Input: strings.Join(args, " ")})
		if err != nil {
			if check == nil {
				return err
			}
			log.WithError(err).Debug("Check did not succeed")
			return errors.New(services.UserMessage(err))
		}

		if checkJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(check)
		}
		printCheck(cmd.OutOrStdout(), check)
		return nil
	},
}

func verdictBadge(check *models.Check) string {
	if check.IsForKids {
		return color.New(color.FgGreen, color.Bold).Sprint(check.Verdict())
	}
	return color.New(color.FgRed, color.Bold).Sprint(check.Verdict())
}

func printCheck(out io.Writer, check *models.Check) {
	fmt.Fprintln(out, verdictBadge(check))
	fmt.Fprintln(out, check.Recommendation())
	fmt.Fprintf(out, "%s %s\n", color.CyanString("Keywords:"), strings.Join(check.Keywords, ", "))
}

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Print the recorded check as JSON")
	rootCmd.AddCommand(checkCmd)
}
