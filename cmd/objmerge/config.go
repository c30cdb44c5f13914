package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/smykla-skalski/objmerge/pkg/config"
	"github.com/smykla-skalski/objmerge/pkg/logger"
	"github.com/smykla-skalski/objmerge/pkg/schema"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration file commands",
	Long:  "Commands for working with objmerge configuration files",
}

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate JSON Schema for the configuration file",
	Long:  "Generate and output JSON Schema for the objmerge configuration file format",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var opts schema.Options

		if comments, _ := cmd.Flags().GetBool("comments"); comments {
			opts.ModulePath = schema.ModulePath
		}

		output, err := schema.Generate(opts)
		if err != nil {
			return err
		}

		_, err = cmd.OutOrStdout().Write(output)

		return err
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long:  "Parse a configuration file, check option names and compile its rules",
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := logger.FromContext(cmd.Context())

		path := getStringFlagWithEnvFallback(cmd, "config")
		if path == "" {
			return errors.New("config is required (set via --config flag or INPUT_CONFIG)")
		}

		cfg, err := config.Load(path)
		if err != nil {
			return err
		}

		opts, err := config.MergeOptions(cfg)
		if err != nil {
			return err
		}

		log.Debug("config loaded", "path", path, "recursive", cfg.Recursive, "options", opts.String())

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d rules)\n", path, len(cfg.Rules))

		return err
	},
}
