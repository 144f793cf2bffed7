package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// MessageType is the runtime variant tag of an outbound message.
type MessageType uint8

// Message types, client to server.
const (
	MsgHello MessageType = iota
	MsgLogon
	MsgLogoff
	MsgGoodbye
	MsgReset
	MsgRun
	MsgBegin
	MsgCommit
	MsgRollback
	MsgDiscard
	MsgPull
	MsgRoute
	MsgTelemetry

	messageTypeCount
)

// Signatures from the bolt message contract.
const (
	SigHello     byte = 0x01
	SigGoodbye   byte = 0x02
	SigReset     byte = 0x0F
	SigRun       byte = 0x10
	SigBegin     byte = 0x11
	SigCommit    byte = 0x12
	SigRollback  byte = 0x13
	SigDiscard   byte = 0x2F
	SigPull      byte = 0x3F
	SigTelemetry byte = 0x54
	SigRoute     byte = 0x66
	SigLogon     byte = 0x6A
	SigLogoff    byte = 0x6B
)

// Version is a bolt protocol version.
type Version struct {
	Major uint8
	Minor uint8
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// AtLeast reports whether v is the same as or newer than other.
func (v Version) AtLeast(other Version) bool {
	if v.Major != other.Major {
		return v.Major > other.Major
	}
	return v.Minor >= other.Minor
}

// ParseVersion reads a "major.minor" version string.
func ParseVersion(raw string) (Version, error) {
	major, minor, ok := strings.Cut(strings.TrimSpace(raw), ".")
	if !ok {
		return Version{}, fmt.Errorf("invalid protocol version %q", raw)
	}
	ma, err := strconv.ParseUint(major, 10, 8)
	if err != nil || ma == 0 {
		return Version{}, fmt.Errorf("invalid protocol major version %q", raw)
	}
	mi, err := strconv.ParseUint(minor, 10, 8)
	if err != nil {
		return Version{}, fmt.Errorf("invalid protocol minor version %q", raw)
	}
	return Version{Major: uint8(ma), Minor: uint8(mi)}, nil
}

// Spec is the static wire contract of one message type.
type Spec struct {
	Type      MessageType
	Name      string
	Signature byte
	Arity     int
	Since     Version
}

var specs = [...]Spec{
	MsgHello:     {MsgHello, "HELLO", SigHello, 1, Version{3, 0}},
	MsgLogon:     {MsgLogon, "LOGON", SigLogon, 1, Version{5, 1}},
	MsgLogoff:    {MsgLogoff, "LOGOFF", SigLogoff, 0, Version{5, 1}},
	MsgGoodbye:   {MsgGoodbye, "GOODBYE", SigGoodbye, 0, Version{3, 0}},
	MsgReset:     {MsgReset, "RESET", SigReset, 0, Version{3, 0}},
	MsgRun:       {MsgRun, "RUN", SigRun, 3, Version{3, 0}},
	MsgBegin:     {MsgBegin, "BEGIN", SigBegin, 1, Version{3, 0}},
	MsgCommit:    {MsgCommit, "COMMIT", SigCommit, 0, Version{3, 0}},
	MsgRollback:  {MsgRollback, "ROLLBACK", SigRollback, 0, Version{3, 0}},
	MsgDiscard:   {MsgDiscard, "DISCARD", SigDiscard, 1, Version{4, 0}},
	MsgPull:      {MsgPull, "PULL", SigPull, 1, Version{4, 0}},
	MsgRoute:     {MsgRoute, "ROUTE", SigRoute, 3, Version{4, 3}},
	MsgTelemetry: {MsgTelemetry, "TELEMETRY", SigTelemetry, 1, Version{5, 4}},
}

func _() {
	var x [1]struct{}
	_ = x[len(specs)-int(messageTypeCount)]
}

func (t MessageType) String() string {
	if s, ok := Lookup(t); ok {
		return s.Name
	}
	return fmt.Sprintf("MessageType(%d)", uint8(t))
}

// Lookup returns the contract for t.
func Lookup(t MessageType) (Spec, bool) {
	if t >= messageTypeCount {
		return Spec{}, false
	}
	return specs[t], true
}

// ByName resolves a message name such as "ROUTE".
func ByName(name string) (Spec, bool) {
	for _, s := range specs {
		if s.Name == name {
			return s, true
		}
	}
	return Spec{}, false
}

// All returns every message contract in type order.
func All() []Spec {
	out := make([]Spec, len(specs))
	copy(out, specs[:])
	return out
}

type ValidationError struct {
	MessageType MessageType
	Version     Version
	Reason      string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("schema: message_type=%s version=%s: %s", e.MessageType, e.Version, e.Reason)
}

// Validate checks that messageType exists and is available in version.
func Validate(messageType MessageType, version Version) error {
	log.Debug().Str("bolt_message", messageType.String()).Str("version", version.String()).Msg("schema.Validate")
	spec, ok := Lookup(messageType)
	if !ok {
		return ValidationError{MessageType: messageType, Version: version, Reason: "unknown message_type"}
	}
	if !version.AtLeast(spec.Since) {
		log.Debug().
			Str("bolt_message", spec.Name).
			Str("version", version.String()).
			Str("since", spec.Since.String()).
			Msg("schema.Validate message unavailable")
		return ValidationError{
			MessageType: messageType,
			Version:     version,
			Reason:      fmt.Sprintf("requires protocol %s", spec.Since),
		}
	}
	return nil
}
