package apierror

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const backendErrorSchema = `{
  "type": "object",
  "required": ["body", "code"],
  "properties": {
    "title": {"type": ["string", "null"]},
    "body":  {"type": "string"},
    "code":  {"type": "integer"}
  }
}`

var backendSchema = mustCompile(backendErrorSchema)

func mustCompile(schema string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("apierror: invalid backend error schema: %v", err))
	}
	return s
}

// BackendError is the failure document returned by the backend
type BackendError struct {
	Title   string          `json:"title,omitempty"`
	Body    string          `json:"body"`
	Code    int             `json:"code"`
	Payload json.RawMessage `json:"data,omitempty"`

	// Data holds the raw response bytes the error was decoded from
	Data []byte `json:"-"`
}

// DecodeBackendError validates body against the backend error shape and
// decodes it.
func DecodeBackendError(body []byte) (*BackendError, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("empty body")
	}

	result, err := backendSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, fmt.Errorf("validate backend error: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("backend error shape: %s", strings.Join(msgs, "; "))
	}

	var be BackendError
	if err := json.Unmarshal(body, &be); err != nil {
		return nil, fmt.Errorf("decode backend error: %w", err)
	}
	be.Data = append([]byte(nil), body...)
	return &be, nil
}
