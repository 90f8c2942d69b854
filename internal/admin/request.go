package admin

import (
	"encoding/json"
	"strings"
)

// OverrideRequest is a validated override instruction.
type OverrideRequest struct {
	ClientID string
	Override bool
}

// ParseOverrideRequest validates an override request in order: content type,
// JSON syntax, then shape. Each stage has its own error type so the handler
// can map them to distinct statuses. Unknown fields are ignored.
func ParseOverrideRequest(contentType string, body []byte) (OverrideRequest, error) {
	if !strings.Contains(strings.ToLower(contentType), "application/json") {
		return OverrideRequest{}, &ContentTypeError{Offered: contentType}
	}

	var value interface{}
	if err := json.Unmarshal(body, &value); err != nil {
		return OverrideRequest{}, &ParseError{Err: err}
	}

	obj, ok := value.(map[string]interface{})
	if !ok {
		return OverrideRequest{}, &SchemaError{Value: value}
	}
	clientID, ok := obj["clientId"].(string)
	if !ok || clientID == "" {
		// No resolvable identity is ever empty, so an empty id could only
		// set a flag nothing can match.
		return OverrideRequest{}, &SchemaError{Value: value}
	}
	enabled, ok := obj["override"].(bool)
	if !ok {
		return OverrideRequest{}, &SchemaError{Value: value}
	}

	return OverrideRequest{ClientID: clientID, Override: enabled}, nil
}
