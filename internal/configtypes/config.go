//nolint:golines // Config structs have jsonschema tags that exceed line length limits
package configtypes

// Config is the root of an objmerge configuration file.
type Config struct {
	// Merge nested maps and lists field by field instead of replacing them with the incoming value
	Recursive bool `json:"recursive" jsonschema:"default=false" yaml:"recursive"`
	// Merge option names. conflict_exception fails on type mismatches, unique_arrays dedupes merged lists, merge_array_values merges lists by position, null_as_undefined treats null as an absent value
	Options []string `json:"options,omitempty" jsonschema:"enum=conflict_overwrite,enum=conflict_exception,enum=unique_arrays,enum=merge_array_values,enum=null_as_undefined,uniqueItems=true" yaml:"options,omitempty"`
	// Maximum nesting depth of merged containers. Zero or a negative value disables the limit
	MaxDepth *int `json:"max_depth,omitempty" jsonschema:"default=1024" yaml:"max_depth,omitempty"`
	// Output encoding of the merged document
	Output OutputConfig `json:"output" yaml:"output"`
	// Per-field rules evaluated in order before a field is merged. The first matching rule decides the field
	Rules []RuleConfig `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// OutputFormat names an output encoding.
type OutputFormat string

const (
	// OutputFormatJSON writes JSON.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML writes YAML.
	OutputFormatYAML OutputFormat = "yaml"
)

// OutputConfig controls how the merged document is written.
type OutputConfig struct {
	// Output format
	Format OutputFormat `json:"format,omitempty" jsonschema:"enum=json,enum=yaml,default=json" yaml:"format,omitempty"`
	// Indentation used for pretty JSON, two spaces when empty
	Indent string `json:"indent,omitempty" yaml:"indent,omitempty"`
	// Maximum line width before short JSON arrays and objects are expanded
	Width int `json:"width,omitempty" jsonschema:"minimum=0,default=80" yaml:"width,omitempty"`
	// Sort map keys instead of keeping their merge order
	SortKeys bool `json:"sort_keys" jsonschema:"default=false" yaml:"sort_keys"`
	// Write JSON on a single line
	Compact bool `json:"compact" jsonschema:"default=false" yaml:"compact"`
}

// RuleAction decides what a matching rule does with a field.
type RuleAction string

const (
	// RuleActionLeft keeps the accumulated value.
	RuleActionLeft RuleAction = "left"
	// RuleActionRight takes the incoming value without merging.
	RuleActionRight RuleAction = "right"
	// RuleActionValue uses the result of the value expression.
	RuleActionValue RuleAction = "value"
	// RuleActionDropLeft merges as if the accumulated value were absent.
	RuleActionDropLeft RuleAction = "drop-left"
	// RuleActionDropRight merges as if the incoming value were absent.
	RuleActionDropRight RuleAction = "drop-right"
	// RuleActionContinue merges the field normally.
	RuleActionContinue RuleAction = "continue"
)

// RuleConfig is one per-field rule.
type RuleConfig struct {
	// Boolean expression selecting the fields this rule applies to. Empty matches every field. Variables: path, key, depth, left, right, leftKind, rightKind, leftDefined, rightDefined, recursive
	When string `json:"when,omitempty" yaml:"when,omitempty"`
	// What to do with a matching field
	Action RuleAction `json:"action" jsonschema:"required,enum=left,enum=right,enum=value,enum=drop-left,enum=drop-right,enum=continue" yaml:"action"`
	// Expression producing the field value. Required for the value action and rejected otherwise
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
}
