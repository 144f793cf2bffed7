package types

import "errors"

var ErrUnsupportedCypherType = errors.New("types: unsupported cypher type")
