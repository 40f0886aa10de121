package report

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// DuplicationSchema 生成 analyze/parse JSON 输出的 JSON Schema。
func DuplicationSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(&DuplicationDocument{})
	schema.Title = "gocda duplication result"

	content, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return append(content, '\n'), nil
}
