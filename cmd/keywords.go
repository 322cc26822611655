package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"podsafe/internal/services"

	"github.com/spf13/cobra"
)

var keywordsJSON bool

var keywordsCmd = &cobra.Command{
	Use:   "keywords [text|file|url...]",
	Short: "Print the keywords extracted from a podcast description",
	Long: `Reduces a podcast description to at most 15 lowercase keywords, dropping
stopwords, short words and punctuation. Nothing is sent to the classifier.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		kws, err := appInstance.CheckService.Keywords(cmd.Context(), services.CheckParams{Input: strings.Join(args, " ")})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if keywordsJSON {
			return json.NewEncoder(out).Encode(map[string][]string{"keywords": kws})
		}
		if len(kws) == 0 {
			fmt.Fprintln(out, "No keywords found.")
			return nil
		}
		fmt.Fprintln(out, strings.Join(kws, ", "))
		return nil
	},
}

func init() {
	keywordsCmd.Flags().BoolVar(&keywordsJSON, "json", false, "Print the keyword set as JSON")
	rootCmd.AddCommand(keywordsCmd)
}
