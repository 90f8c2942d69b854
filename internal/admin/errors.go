package admin

import "fmt"

// ContentTypeError rejects a request whose Content-Type is not JSON. Offered
// keeps the header as received for logging.
type ContentTypeError struct {
	Offered string
}

func (e *ContentTypeError) Error() string {
	return fmt.Sprintf("unsupported Content-Type %q: expected application/json", e.Offered)
}

// ParseError rejects a body that is not valid JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "request body is not valid JSON: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// SchemaError rejects a JSON value of the wrong shape. Value keeps the
// decoded input for logging.
type SchemaError struct {
	Value interface{}
}

func (e *SchemaError) Error() string {
	return "request body must be an object with clientId (non-empty string) and override (boolean)"
}
