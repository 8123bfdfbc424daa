// internal/boundary/schema.go
package boundary

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// configSchema constrains the free-form boundary configuration documents the
// assignment record store accepts. The platform posts raw JSON; everything
// that reaches Config must already have passed this.
const configSchema = `{
    "type": "object",
    "properties": {
        "questions_per_hour": {"type": "integer", "minimum": 0, "maximum": 100},
        "reflection_requirement": {"enum": ["basic", "detailed", "analytical"]},
        "question_complexity": {"enum": ["standard", "simplified"]},
        "proactive_prompts": {"type": "boolean"},
        "struggle_detection": {"type": "boolean"},
        "show_examples": {"type": "boolean"},
        "schedule": {
            "type": "array",
            "items": {
                "type": "object",
                "properties": {
                    "phase": {"enum": ["early", "middle", "late"]},
                    "questions_per_hour": {"type": "integer", "minimum": 0, "maximum": 100},
                    "complexity": {"enum": ["standard", "simplified"]}
                },
                "required": ["phase", "questions_per_hour"],
                "additionalProperties": false
            }
        }
    },
    "required": ["questions_per_hour"],
    "additionalProperties": false
}`

var compiledConfigSchema = gojsonschema.NewStringLoader(configSchema)

// ValidateDocument checks a raw boundary configuration document against the
// schema and returns the parsed Config. Failures wrap ErrInvalidConfig so
// callers can match with errors.Is before any persistence happens.
func ValidateDocument(doc []byte) (Config, error) {
	result, err := gojsonschema.Validate(compiledConfigSchema, gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(details, "; "))
	}

	var cfg Config
	if err := json.Unmarshal(doc, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}
