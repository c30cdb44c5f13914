package configtypes

import "github.com/invopop/jsonschema"

// JSONSchemaExtend adds example values to the Config schema.
func (Config) JSONSchemaExtend(schema *jsonschema.Schema) {
	if optionsProp, ok := schema.Properties.Get("options"); ok {
		optionsProp.Examples = []any{
			[]string{"unique_arrays"},
			[]string{"conflict_exception", "null_as_undefined"},
		}
	}
}

// JSONSchemaExtend adds example values to the RuleConfig schema.
func (RuleConfig) JSONSchemaExtend(schema *jsonschema.Schema) {
	if whenProp, ok := schema.Properties.Get("when"); ok {
		whenProp.Examples = []any{
			`leftKind == "int"`,
			`path startsWith "$.metadata" && !rightDefined`,
		}
	}

	if valueProp, ok := schema.Properties.Get("value"); ok {
		valueProp.Examples = []any{
			"nil",
			`left + right`,
		}
	}
}
