package render

import (
	"encoding/json"

	"github.com/complyviz/complyviz/pkg/layout"
)

// MarshalPayload serializes a render payload as pretty-printed JSON, the
// format handed to external graph-rendering components.
func MarshalPayload(r layout.Result) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// UnmarshalPayload deserializes a render payload.
func UnmarshalPayload(data []byte) (layout.Result, error) {
	var r layout.Result
	if err := json.Unmarshal(data, &r); err != nil {
		return layout.Result{}, err
	}
	return r, nil
}
