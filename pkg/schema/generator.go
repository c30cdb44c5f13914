// Package schema provides JSON Schema generation for objmerge configuration.
package schema

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"

	"github.com/smykla-skalski/objmerge/internal/configtypes"
)

const (
	// ModulePath is the Go module path used to resolve comment sources.
	ModulePath = "github.com/smykla-skalski/objmerge"
	// Filename is the conventional name of the generated schema file.
	Filename = "objmerge.schema.json"

	schemaID      = "https://raw.githubusercontent.com/smykla-skalski/objmerge/main/schemas/" + Filename
	schemaVersion = "https://json-schema.org/draft/2020-12/schema"
)

// commentPaths lists all source directories containing types used in schemas.
// These paths are loaded to extract Go doc comments as JSON Schema descriptions.
var commentPaths = []string{
	"./internal/configtypes",
}

// Options configures Generate.
type Options struct {
	// ModulePath enables descriptions from Go doc comments. The comment
	// sources are read relative to the working directory, so it only works
	// from the repository root. Empty skips comments.
	ModulePath string
}

// Generate returns the JSON Schema of the config file.
func Generate(opts Options) ([]byte, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		RequiredFromJSONSchemaTags: true,
	}

	if opts.ModulePath != "" {
		for _, path := range commentPaths {
			if err := reflector.AddGoComments(opts.ModulePath, path); err != nil {
				return nil, errors.Wrapf(err, "loading Go comments from %s", path)
			}
		}
	}

	schema := reflector.Reflect(&configtypes.Config{})
	schema.ID = schemaID
	schema.Title = "objmerge Configuration"
	schema.Description = "Merge settings, output encoding and per-field rules for objmerge. Pass with --config."
	schema.Version = schemaVersion

	return finalizeSchema(schema)
}

// finalizeSchema converts a schema to JSON and applies post-processing.
// Note: Run `jsonschema fmt` on output for canonical key ordering.
func finalizeSchema(schema *jsonschema.Schema) ([]byte, error) {
	// Convert to JSON and back to map for post-processing
	schemaBytes, err := json.Marshal(schema)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling schema to bytes")
	}

	var schemaMap map[string]any
	if err = json.Unmarshal(schemaBytes, &schemaMap); err != nil {
		return nil, errors.Wrap(err, "unmarshaling schema to map")
	}

	applyLintFixes(schemaMap)

	output, err := json.MarshalIndent(schemaMap, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshaling final schema")
	}

	// Add trailing newline for better git diffs
	output = append(output, '\n')

	return output, nil
}

// applyLintFixes applies all lint-fixing transformations to the schema.
func applyLintFixes(schemaMap map[string]any) {
	normalizeDescriptions(schemaMap)
	removeTypeWithEnum(schemaMap)
}

// normalizeDescriptions recursively replaces newlines in description fields with spaces.
func normalizeDescriptions(v any) {
	switch val := v.(type) {
	case map[string]any:
		for key, value := range val {
			if key == "description" {
				if desc, ok := value.(string); ok {
					val[key] = strings.ReplaceAll(desc, "\n", " ")
				}
			} else {
				normalizeDescriptions(value)
			}
		}
	case []any:
		for _, item := range val {
			normalizeDescriptions(item)
		}
	}
}

// removeTypeWithEnum recursively removes "type" when "enum" is present.
// Enum values already imply their type.
func removeTypeWithEnum(v any) {
	switch val := v.(type) {
	case map[string]any:
		if _, hasEnum := val["enum"]; hasEnum {
			delete(val, "type")
		}

		for _, value := range val {
			removeTypeWithEnum(value)
		}
	case []any:
		for _, item := range val {
			removeTypeWithEnum(item)
		}
	}
}
