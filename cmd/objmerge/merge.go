package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/smykla-skalski/objmerge/internal/configtypes"
	"github.com/smykla-skalski/objmerge/pkg/config"
	"github.com/smykla-skalski/objmerge/pkg/diff"
	"github.com/smykla-skalski/objmerge/pkg/logger"
	"github.com/smykla-skalski/objmerge/pkg/merge"
	"github.com/smykla-skalski/objmerge/pkg/source"
	"github.com/smykla-skalski/objmerge/pkg/value"
)

const (
	diffModeText  = "text"
	diffModePatch = "patch"

	colorAuto   = "auto"
	colorAlways = "always"
	colorNever  = "never"

	// outputFileMode is the permission mode for written results.
	outputFileMode = 0o644
)

// exitCodeError ends the process with a status code and no message.
type exitCodeError int

func (e exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", int(e))
}

var optionUsage = map[string]string{
	"conflict_exception": "Fail when a field has different types on both sides",
	"unique_arrays":      "Remove duplicate items from merged lists",
	"merge_array_values": "Merge lists position by position instead of appending",
	"null_as_undefined":  "Treat null as an absent value",
}

func optionFlagName(option string) string {
	return strings.ReplaceAll(option, "_", "-")
}

func addMergeFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.String("config", "", "Path to a YAML or JSON config file")
	flags.BoolP("recursive", "r", false, "Merge nested maps and lists instead of replacing them")

	for _, name := range merge.OptionNames() {
		flags.Bool(optionFlagName(name), false, optionUsage[name])
	}

	flags.Int("max-depth", merge.DefaultMaxDepth, "Maximum nesting depth, 0 disables the limit")
	flags.String("input-format", "", "Input format (json|yaml), detected from the file extension when empty")
}

func addOutputFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringP("format", "f", "", "Output format (json|yaml)")
	flags.Bool("compact", false, "Write JSON on a single line")
	flags.Bool("sort-keys", false, "Sort map keys in the output")
	flags.String("indent", "", "Indentation for pretty JSON")
	flags.String("color", colorAuto, "Colorize output (auto|always|never)")
}

// resolveConfig loads the config file, if any, and applies explicitly set flags on top.
func resolveConfig(cmd *cobra.Command) (*configtypes.Config, error) {
	cfg := config.Default()

	if path := getStringFlagWithEnvFallback(cmd, "config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	}

	if recursive, ok := getBoolFlagWithEnvFallback(cmd, "recursive"); ok {
		cfg.Recursive = recursive
	}

	opts, err := config.MergeOptions(cfg)
	if err != nil {
		return nil, err
	}

	for _, name := range merge.OptionNames() {
		enabled, ok := getBoolFlagWithEnvFallback(cmd, optionFlagName(name))
		if !ok {
			continue
		}

		flag, err := merge.ParseOptions(name)
		if err != nil {
			return nil, err
		}

		opts = opts.With(flag, enabled)
	}

	cfg.Options = optionList(opts)

	if cmd.Flags().Changed("max-depth") {
		depth, _ := cmd.Flags().GetInt("max-depth")
		cfg.MaxDepth = &depth
	}

	if format := getStringFlagWithEnvFallback(cmd, "format"); format != "" {
		cfg.Output.Format = configtypes.OutputFormat(strings.ToLower(format))
	}

	if compact, ok := getBoolFlagWithEnvFallback(cmd, "compact"); ok {
		cfg.Output.Compact = compact
	}

	if sortKeys, ok := getBoolFlagWithEnvFallback(cmd, "sort-keys"); ok {
		cfg.Output.SortKeys = sortKeys
	}

	if indent := getStringFlagWithEnvFallback(cmd, "indent"); indent != "" {
		cfg.Output.Indent = indent
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// optionList returns the option names set in opts, in flag order.
func optionList(opts merge.Options) []string {
	var names []string

	for _, name := range merge.OptionNames() {
		flag, err := merge.ParseOptions(name)
		if err == nil && opts.Has(flag) {
			names = append(names, name)
		}
	}

	return names
}

func useColor(cmd *cobra.Command) (bool, error) {
	mode, _ := cmd.Flags().GetString("color")

	switch mode {
	case colorAlways:
		return true, nil
	case colorNever:
		return false, nil
	case colorAuto, "":
		if os.Getenv("NO_COLOR") != "" {
			return false, nil
		}

		f, ok := cmd.OutOrStdout().(*os.File)

		return ok && term.IsTerminal(int(f.Fd())), nil
	default:
		return false, errors.Newf("invalid --color %q: must be auto, always or never", mode)
	}
}

// mergeInputs loads refs and merges them with the settings of cfg. The decoded
// inputs are returned alongside the result.
func mergeInputs(
	ctx context.Context,
	log *logger.Logger,
	cfg *configtypes.Config,
	loader *source.Loader,
	refs []string,
) (value.Value, []value.Value, error) {
	inputs, err := loader.LoadAll(ctx, refs)
	if err != nil {
		return value.Value{}, nil, err
	}

	mergerOpts, err := config.MergerOptions(cfg, log)
	if err != nil {
		return value.Value{}, nil, err
	}

	m := merge.New(mergerOpts...)

	log.Debug("merging inputs",
		"count", len(inputs),
		"recursive", m.Recursive(),
		"options", m.Options().String(),
		"rules", len(cfg.Rules),
	)

	result, err := m.Merge(inputs...)
	if err != nil {
		return value.Value{}, nil, err
	}

	return result, inputs, nil
}

// encodeDocument renders v in the configured output format, newline terminated.
func encodeDocument(v value.Value, cfg *configtypes.Config, color bool) ([]byte, error) {
	if cfg.Output.Format == configtypes.OutputFormatYAML {
		if cfg.Output.SortKeys {
			v = v.Sorted()
		}

		return value.EncodeYAML(v)
	}

	opts := config.EncodeOptions(cfg)
	opts.Color = color

	out, err := value.EncodeJSON(v, opts)
	if err != nil {
		return nil, err
	}

	return append(out, '\n'), nil
}

var mergeCmd = &cobra.Command{
	Use:   "merge [flags] INPUT...",
	Short: "Merge documents left to right",
	Long: `Merge two or more documents left to right and print the result. Later
inputs win on conflicting scalar fields. Each input must decode to an object,
null, or nothing at all.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)

		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}

		loader, err := newLoader(cmd, log)
		if err != nil {
			return err
		}

		result, _, err := mergeInputs(ctx, log, cfg, loader, args)
		if err != nil {
			return err
		}

		output := getStringFlagWithEnvFallback(cmd, "output")

		color := false
		if output == "" {
			if color, err = useColor(cmd); err != nil {
				return err
			}
		}

		data, err := encodeDocument(result, cfg, color)
		if err != nil {
			return err
		}

		if output == "" {
			_, err = cmd.OutOrStdout().Write(data)

			return err
		}

		if err := os.WriteFile(output, data, outputFileMode); err != nil {
			return errors.Wrapf(err, "writing %s", output)
		}

		log.Info("wrote merged document", "path", output, "inputs", len(args))

		return nil
	},
}

var diffCmd = &cobra.Command{
	Use:   "diff [flags] INPUT...",
	Short: "Show what merging changes in the first input",
	Long: `Merge the inputs like the merge command and print the difference between
the first input and the result, either as a line diff or as an RFC 7396 JSON
merge patch.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)

		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}

		loader, err := newLoader(cmd, log)
		if err != nil {
			return err
		}

		result, inputs, err := mergeInputs(ctx, log, cfg, loader, args)
		if err != nil {
			return err
		}

		color, err := useColor(cmd)
		if err != nil {
			return err
		}

		mode, _ := cmd.Flags().GetString("mode")

		changed, err := writeDiff(cmd, cfg, mode, color, args[0], inputs[0], result)
		if err != nil {
			return err
		}

		if exitCode, _ := cmd.Flags().GetBool("exit-code"); exitCode && changed {
			return exitCodeError(1)
		}

		return nil
	},
}

func writeDiff(
	cmd *cobra.Command,
	cfg *configtypes.Config,
	mode string,
	color bool,
	label string,
	base value.Value,
	merged value.Value,
) (bool, error) {
	out := cmd.OutOrStdout()

	switch mode {
	case diffModePatch:
		patch, err := diff.MergePatch(base, merged)
		if err != nil {
			return false, err
		}

		decoded, err := value.DecodeJSON(patch)
		if err != nil {
			return false, err
		}

		data, err := encodeDocument(decoded, cfg, color)
		if err != nil {
			return false, err
		}

		_, err = out.Write(data)

		return decoded.Len() > 0, err
	case diffModeText, "":
		from, err := encodeDocument(base, cfg, false)
		if err != nil {
			return false, errors.Wrapf(err, "encoding %s", label)
		}

		to, err := encodeDocument(merged, cfg, false)
		if err != nil {
			return false, errors.Wrap(err, "encoding merged document")
		}

		text := diff.Lines(string(from), string(to), diff.TextOptions{
			FromLabel: label,
			ToLabel:   "merged",
			Color:     color,
		})

		_, err = fmt.Fprint(out, text)

		return text != "", err
	default:
		return false, errors.Newf("invalid --mode %q: must be text or patch", mode)
	}
}
