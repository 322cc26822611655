package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"podsafe/internal/app"
	"podsafe/internal/config"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "podsafe",
	Short: "PodSafe CLI App",
	Long: `PodSafe checks whether a podcast is kid-friendly. It reduces a podcast
description to a set of keywords and asks a classification service for a verdict.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is given, print help.
		cmd.Help()
	},
	// PersistentPreRunE runs before any subcommand's RunE
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		app.SetupLogging(cfg.Log.Level, cfg.Log.Format)

		// nil selects the processor configured from cfg.Extraction
		appInstance, err := app.NewApp(cfg, nil)
		if err != nil {
			return fmt.Errorf("failed to initialize app: %w", err)
		}
		activeApp = appInstance

		ctx := context.WithValue(cmd.Context(), appKey, appInstance)
		cmd.SetContext(ctx)
		return nil
	},
}

// activeApp is closed once the command finishes, whether or not it failed.
var activeApp *app.App

func Execute() {
	if err := execute(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func execute(ctx context.Context, args []string, out io.Writer) error {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	defer func() {
		if activeApp != nil {
			if err := activeApp.Close(); err != nil {
				log.Warnf("Error during shutdown: %v", err)
			}
			activeApp = nil
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

// Define a custom type for the context key to avoid collisions.
type contextKey string

const appKey contextKey = "app"

// Helper function to retrieve the app instance from context
func GetAppFromContext(ctx context.Context) (*app.App, error) {
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		// This should not happen if PersistentPreRunE ran successfully
		return nil, fmt.Errorf("application instance not found in context")
	}
	return appInstance, nil
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check database connectivity and other diagnostics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to get app instance: %w", err)
		}

		fmt.Fprintf(out, "Checking %s database connectivity...\n", appInstance.Config.Database.Driver)
		if err := appInstance.Store.Ping(ctx); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}
		fmt.Fprintln(out, "Database connection successful.")

		fmt.Fprintf(out, "Classifier: %s\n", appInstance.Classifier.Name())
		if appInstance.JobClient == nil {
			fmt.Fprintln(out, "Async checks: disabled (redis.address not set)")
		} else {
			fmt.Fprintf(out, "Async checks: enabled (redis %s)\n", appInstance.Config.Redis.Address)
		}
		return nil
	},
}
