package admission

import "strings"

// Class says where a request's identifier came from.
type Class string

const (
	// ClassToken marks identifiers taken from a bearer token. Only these
	// are eligible for admin overrides.
	ClassToken Class = "token"

	// ClassAddress marks identifiers derived from the source address.
	ClassAddress Class = "address"
)

// Identity is the rate-limiting identity of one request.
type Identity struct {
	Value string
	Class Class
}

// ResolveIdentity picks the identifier for a request: a well-formed bearer
// token wins, otherwise the source address. A malformed Authorization header
// counts as absent rather than being rejected. ok is false when neither
// source yields a value.
func ResolveIdentity(authorization, sourceAddr string) (Identity, bool) {
	if token, ok := bearerToken(authorization); ok {
		return Identity{Value: token, Class: ClassToken}, true
	}
	if sourceAddr != "" {
		return Identity{Value: sourceAddr, Class: ClassAddress}, true
	}
	return Identity{}, false
}

// bearerToken expects exactly "Bearer <token>", case-sensitive, one space.
func bearerToken(authorization string) (string, bool) {
	parts := strings.Split(authorization, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
