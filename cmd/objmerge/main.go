package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/smykla-skalski/objmerge/pkg/github"
	"github.com/smykla-skalski/objmerge/pkg/logger"
	"github.com/smykla-skalski/objmerge/pkg/source"
)

var version = "dev"

// getStringFlagWithEnvFallback retrieves a string flag value with an INPUT_* environment
// variable fallback, so the binary can run as a GitHub Action step.
func getStringFlagWithEnvFallback(cmd *cobra.Command, flagName string) string {
	val, _ := cmd.Flags().GetString(flagName)
	if val != "" {
		return val
	}

	return os.Getenv(inputEnvName(flagName))
}

// getBoolFlagWithEnvFallback returns the flag value when set explicitly and
// otherwise whether the INPUT_* variable is "true".
func getBoolFlagWithEnvFallback(cmd *cobra.Command, flagName string) (bool, bool) {
	if cmd.Flags().Changed(flagName) {
		val, _ := cmd.Flags().GetBool(flagName)

		return val, true
	}

	envVal, ok := os.LookupEnv(inputEnvName(flagName))
	if !ok || envVal == "" {
		return false, false
	}

	return envVal == "true", true
}

func inputEnvName(flagName string) string {
	return "INPUT_" + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

var rootCmd = &cobra.Command{
	Use:   "objmerge",
	Short: "Deep merge JSON and YAML documents",
	Long: `objmerge merges JSON and YAML documents left to right. Inputs may be
local files, "-" for stdin, or "github:owner/repo/path[@ref]" references.
Merging is shallow unless --recursive is set.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logLevel, err := cmd.Flags().GetString("log-level")
		if err != nil {
			return errors.Wrap(err, "failed to get log-level flag")
		}

		log := logger.New(logLevel)

		ctx := logger.WithContext(cmd.Context(), log)
		cmd.SetContext(ctx)

		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  "Display the current version of objmerge",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "objmerge version %s\n", version)

		return err
	},
}

// githubFetcherFactory resolves a token and creates a client the first time a
// github: input is loaded.
func githubFetcherFactory(log *logger.Logger, useGHAuth bool) source.FetcherFactory {
	return func(ctx context.Context) (source.Fetcher, error) {
		token, err := github.GetToken(ctx, log, useGHAuth)
		if err != nil {
			return nil, err
		}

		return github.NewClient(ctx, log, token)
	}
}

func newLoader(cmd *cobra.Command, log *logger.Logger) (*source.Loader, error) {
	useGHAuth, _ := cmd.Root().PersistentFlags().GetBool("use-gh-auth")

	format, err := source.ParseFormat(getStringFlagWithEnvFallback(cmd, "input-format"))
	if err != nil {
		return nil, err
	}

	return source.NewLoader(
		source.WithStdin(cmd.InOrStdin()),
		source.WithFormat(format),
		source.WithFetcherFactory(githubFetcherFactory(log, useGHAuth)),
		source.WithLogger(log),
	), nil
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level ("+strings.Join(logger.Levels, "|")+")")
	rootCmd.PersistentFlags().Bool("use-gh-auth", false, "Use 'gh auth token' for github: inputs")

	addMergeFlags(mergeCmd)
	addOutputFlags(mergeCmd)
	mergeCmd.Flags().StringP("output", "o", "", "Write the result to a file instead of stdout")

	addMergeFlags(diffCmd)
	addOutputFlags(diffCmd)
	diffCmd.Flags().String("mode", diffModeText, "Diff mode (text|patch)")
	diffCmd.Flags().Bool("exit-code", false, "Exit with status 1 when the merge changes the first input")

	configValidateCmd.Flags().String("config", "", "Path to a YAML or JSON config file")

	configSchemaCmd.Flags().Bool("comments", false, "Load field descriptions from Go source (run from the repository root)")

	configCmd.AddCommand(configSchemaCmd)
	configCmd.AddCommand(configValidateCmd)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exit exitCodeError
		if errors.As(err, &exit) {
			os.Exit(int(exit))
		}

		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
