package message

import "errors"

var (
	ErrArgumentTypeMismatch  = errors.New("message: argument type mismatch")
	ErrUnknownMessageType    = errors.New("message: unknown message type")
	ErrInvalidRoutingContext = errors.New("message: invalid routing context")
	ErrFieldUnavailable      = errors.New("message: field unavailable in protocol version")
	ErrMissingField          = errors.New("message: required field missing")
	ErrInvalidFetchSize      = errors.New("message: fetch size must be -1 or positive")
)
