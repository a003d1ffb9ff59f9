package config

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/rendis/wfgraph/pkg/schema"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

const settingsSchemaURL = "https://wfgraph.dev/schemas/settings.json"

// settingsSchemaJSON describes the settings file.
const settingsSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://wfgraph.dev/schemas/settings.json",
  "type": "object",
  "properties": {
    "output_dir": { "type": "string", "minLength": 1 },
    "work_dir": { "type": "string", "minLength": 1 },
    "default_name": { "type": "string", "minLength": 1 },
    "prefix": { "type": "string", "pattern": "^[A-Za-z_][A-Za-z0-9_.-]*$" },
    "status_change_executor": { "type": "string", "minLength": 1 },
    "log_level": { "type": "string", "enum": ["debug", "info", "warn", "error"] },
    "mermaid": { "type": "boolean" },
    "parallel": { "type": "integer", "minimum": 0, "maximum": 64 }
  }
}`

var settingsSchema = mustCompileSettingsSchema()

func mustCompileSettingsSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(settingsSchemaJSON))
	if err != nil {
		panic(fmt.Sprintf("unmarshal settings schema: %v", err))
	}
	if err := c.AddResource(settingsSchemaURL, doc); err != nil {
		panic(fmt.Sprintf("add settings schema resource: %v", err))
	}
	s, err := c.Compile(settingsSchemaURL)
	if err != nil {
		panic(fmt.Sprintf("compile settings schema: %v", err))
	}
	return s
}

// validateFile checks the raw settings file against settingsSchema. Schema
// violations are errors; keys no setting reads are warnings. Only a file that
// is not JSON at all fails outright.
func validateFile(data []byte) (*schema.ValidationResult, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(data)))
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeConfig, "settings file is not valid JSON").WithCause(err)
	}

	result := &schema.ValidationResult{}
	if err := settingsSchema.Validate(doc); err != nil {
		verr, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return nil, schema.NewError(schema.ErrCodeConfig, "validate settings file").WithCause(err)
		}
		for _, v := range collectViolations(verr) {
			result.AddError(v.path, schema.ErrCodeConfig, v.message)
		}
		if result.Valid() {
			result.AddError("/", schema.ErrCodeConfig, verr.Error())
		}
	}

	if obj, ok := doc.(map[string]any); ok {
		known := knownKeys()
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !known[k] {
				result.AddWarning("/"+k, schema.ErrCodeConfig, fmt.Sprintf("unknown setting %q ignored", k))
			}
		}
	}
	return result, nil
}

// knownKeys returns the JSON names of the Config fields.
func knownKeys() map[string]bool {
	t := reflect.TypeOf(Config{})
	keys := make(map[string]bool, t.NumField())
	for i := range t.NumField() {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			keys[name] = true
		}
	}
	return keys
}

type violation struct {
	path    string
	message string
}

// collectViolations walks a ValidationError tree and collects the leaf errors
// with their instance locations.
func collectViolations(verr *jsonschema.ValidationError) []violation {
	if len(verr.Causes) == 0 {
		loc := "/" + strings.Join(verr.InstanceLocation, "/")
		return []violation{{path: loc, message: fmt.Sprintf("%s: %s", loc, verr.Error())}}
	}

	var out []violation
	for _, cause := range verr.Causes {
		out = append(out, collectViolations(cause)...)
	}
	return out
}
