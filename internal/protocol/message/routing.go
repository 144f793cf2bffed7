package message

import (
	"fmt"
	"net/url"
	"strings"
)

// AddressKey is the routing context key reserved for the server address.
const AddressKey = "address"

// RoutingContext holds the key/value hints passed to the server routing
// procedure. Key order carries no meaning.
type RoutingContext struct {
	pairs map[string]string
}

// EmptyRoutingContext has no entries.
var EmptyRoutingContext = RoutingContext{}

// NewRoutingContext copies pairs into a routing context.
func NewRoutingContext(pairs map[string]string) RoutingContext {
	ctx := RoutingContext{pairs: make(map[string]string, len(pairs))}
	for k, v := range pairs {
		ctx.pairs[k] = v
	}
	return ctx
}

// ParseRoutingContext builds a routing context from the query of a routing
// URI such as neo4j://host:7687?region=eu. The URI host is recorded under
// AddressKey; a user supplied address key is rejected. Direct bolt:// URIs
// yield EmptyRoutingContext and may not carry a query.
func ParseRoutingContext(raw string) (RoutingContext, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return RoutingContext{}, fmt.Errorf("%w: %v", ErrInvalidRoutingContext, err)
	}
	if isDirectScheme(u.Scheme) {
		if u.RawQuery != "" {
			return RoutingContext{}, fmt.Errorf("%w: %s URIs take no routing parameters", ErrInvalidRoutingContext, u.Scheme)
		}
		return EmptyRoutingContext, nil
	}
	pairs := make(map[string]string)
	if u.RawQuery != "" {
		for _, part := range strings.Split(u.RawQuery, "&") {
			if part == "" {
				continue
			}
			key, val, found := strings.Cut(part, "=")
			if !found {
				return RoutingContext{}, fmt.Errorf("%w: invalid parameter %q", ErrInvalidRoutingContext, part)
			}
			key, err = url.QueryUnescape(key)
			if err != nil {
				return RoutingContext{}, fmt.Errorf("%w: %v", ErrInvalidRoutingContext, err)
			}
			val, err = url.QueryUnescape(val)
			if err != nil {
				return RoutingContext{}, fmt.Errorf("%w: %v", ErrInvalidRoutingContext, err)
			}
			if strings.TrimSpace(key) == "" || strings.TrimSpace(val) == "" {
				return RoutingContext{}, fmt.Errorf("%w: illegal empty key or value in %q", ErrInvalidRoutingContext, part)
			}
			if key == AddressKey {
				return RoutingContext{}, fmt.Errorf("%w: %q is a reserved key", ErrInvalidRoutingContext, AddressKey)
			}
			if prev, dup := pairs[key]; dup {
				return RoutingContext{}, fmt.Errorf("%w: duplicate key %q (%q, %q)", ErrInvalidRoutingContext, key, prev, val)
			}
			pairs[key] = val
		}
	}
	if u.Host != "" {
		pairs[AddressKey] = u.Host
	}
	return RoutingContext{pairs: pairs}, nil
}

func isDirectScheme(scheme string) bool {
	switch strings.ToLower(scheme) {
	case "bolt", "bolt+s", "bolt+ssc":
		return true
	}
	return false
}

// Pairs returns a copy of the entries.
func (c RoutingContext) Pairs() map[string]string {
	out := make(map[string]string, len(c.pairs))
	for k, v := range c.pairs {
		out[k] = v
	}
	return out
}

func (c RoutingContext) Len() int {
	return len(c.pairs)
}

// Get returns the value stored under key.
func (c RoutingContext) Get(key string) (string, bool) {
	v, ok := c.pairs[key]
	return v, ok
}

// ServerRoutingEnabled reports whether the server should compute routing for
// this context, which is the case for any neo4j:// URI.
func (c RoutingContext) ServerRoutingEnabled() bool {
	_, ok := c.pairs[AddressKey]
	return ok
}
