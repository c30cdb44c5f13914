// Package config loads and validates objmerge configuration files.
package config

import (
	"encoding/json"
	"os"

	"github.com/cockroachdb/errors"
	"go.yaml.in/yaml/v4"

	"github.com/smykla-skalski/objmerge/internal/configtypes"
	"github.com/smykla-skalski/objmerge/pkg/logger"
	"github.com/smykla-skalski/objmerge/pkg/merge"
	"github.com/smykla-skalski/objmerge/pkg/rules"
	"github.com/smykla-skalski/objmerge/pkg/value"
)

var (
	// ErrConfigParse indicates a config file that is neither YAML nor JSON
	ErrConfigParse = errors.New("failed to parse config")
	// ErrInvalidConfig indicates a config with values outside their allowed range
	ErrInvalidConfig = errors.New("invalid config")
)

// Default returns the configuration used when no file is given.
func Default() *configtypes.Config {
	return &configtypes.Config{
		Output: configtypes.OutputConfig{
			Format: configtypes.OutputFormatJSON,
			Indent: value.DefaultIndent,
			Width:  value.DefaultWidth,
		},
	}
}

// Parse parses configuration from YAML or JSON on top of Default.
func Parse(data []byte) (*configtypes.Config, error) {
	config := Default()

	if err := yaml.Unmarshal(data, config); err != nil {
		config = Default()

		if jsonErr := json.Unmarshal(data, config); jsonErr != nil {
			return nil, errors.Wrap(errors.Mark(err, ErrConfigParse), "parsing config as YAML or JSON")
		}
	}

	return config, nil
}

// ParseJSON parses configuration from a JSON string.
func ParseJSON(jsonStr string) (*configtypes.Config, error) {
	if jsonStr == "" {
		return Default(), nil
	}

	config := Default()
	if err := json.Unmarshal([]byte(jsonStr), config); err != nil {
		return nil, errors.Wrap(errors.Mark(err, ErrConfigParse), "parsing config JSON")
	}

	return config, nil
}

// Load reads, parses and validates a config file.
func Load(path string) (*configtypes.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}

	config, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}

	if err := Validate(config); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}

	return config, nil
}

// Validate checks option names, output settings and rules.
func Validate(config *configtypes.Config) error {
	if _, err := merge.ParseOptions(config.Options...); err != nil {
		return errors.Wrap(errors.Mark(err, ErrInvalidConfig), "options")
	}

	switch config.Output.Format {
	case "", configtypes.OutputFormatJSON, configtypes.OutputFormatYAML:
	default:
		return errors.Wrapf(ErrInvalidConfig, "output.format %q: must be json or yaml", config.Output.Format)
	}

	if config.Output.Width < 0 {
		return errors.Wrapf(ErrInvalidConfig, "output.width %d: must not be negative", config.Output.Width)
	}

	if _, err := rules.Compile(config.Rules); err != nil {
		return errors.Wrap(errors.Mark(err, ErrInvalidConfig), "rules")
	}

	return nil
}

// MergeOptions returns the option flags named by the config.
func MergeOptions(config *configtypes.Config) (merge.Options, error) {
	opts, err := merge.ParseOptions(config.Options...)
	if err != nil {
		return 0, errors.Wrap(errors.Mark(err, ErrInvalidConfig), "options")
	}

	return opts, nil
}

// MergerOptions translates the config into options for merge.New, compiling
// rules into a callback.
func MergerOptions(config *configtypes.Config, log *logger.Logger) ([]merge.MergerOption, error) {
	opts, err := MergeOptions(config)
	if err != nil {
		return nil, err
	}

	out := []merge.MergerOption{
		merge.WithRecursive(config.Recursive),
		merge.WithOptions(opts),
		merge.WithLogger(log),
	}

	if config.MaxDepth != nil {
		out = append(out, merge.WithMaxDepth(*config.MaxDepth))
	}

	if len(config.Rules) > 0 {
		set, err := rules.Compile(config.Rules)
		if err != nil {
			return nil, errors.Wrap(errors.Mark(err, ErrInvalidConfig), "rules")
		}

		out = append(out, merge.WithCallback(set.Callback()))
	}

	return out, nil
}

// EncodeOptions returns the JSON encoding settings of the config.
func EncodeOptions(config *configtypes.Config) value.EncodeOptions {
	return value.EncodeOptions{
		Indent:   config.Output.Indent,
		Width:    config.Output.Width,
		SortKeys: config.Output.SortKeys,
		Compact:  config.Output.Compact,
	}
}
