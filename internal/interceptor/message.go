package interceptor

import (
	"encoding/json"
	"strings"
)

// serverMessage extracts the "message" field of a JSON error body. A nested
// {"error": {"message": ...}} shape is accepted too.
func serverMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var payload struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(payload.Message); msg != "" {
		return msg
	}

	var nested struct {
		Message string `json:"message"`
	}
	if len(payload.Error) > 0 && json.Unmarshal(payload.Error, &nested) == nil {
		return strings.TrimSpace(nested.Message)
	}
	return ""
}
