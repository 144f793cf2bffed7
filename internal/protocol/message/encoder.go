package message

import (
	"fmt"
	"time"

	"github.com/danmuck/boltwire/internal/protocol/packstream"
	"github.com/danmuck/boltwire/internal/protocol/schema"
)

// Encoder writes one message kind in the layout of one protocol version.
// The variant and the version-dependent fields are checked before anything
// is written, so a rejected message leaves the stream untouched.
type Encoder interface {
	Encode(msg Message, p *packstream.Packer) error
}

// Protocol versions where a message layout changes.
var (
	SinceTxDatabase    = schema.Version{Major: 4, Minor: 0}
	SinceHelloRouting  = schema.Version{Major: 4, Minor: 1}
	SinceImpersonation = schema.Version{Major: 4, Minor: 4}
	SinceLogon         = schema.Version{Major: 5, Minor: 1}
	SinceNotifications = schema.Version{Major: 5, Minor: 2}
	SinceBoltAgent     = schema.Version{Major: 5, Minor: 3}
)

type layout interface {
	encode(msg Message, p *packstream.Packer, v schema.Version) error
}

type structEncoder[M Message] struct {
	messageType schema.MessageType
	fields      func(M, schema.Version) ([]any, error)
}

func (e structEncoder[M]) encode(msg Message, p *packstream.Packer, v schema.Version) error {
	m, ok := msg.(M)
	if !ok {
		return fmt.Errorf("%w: %s encoder got %T", ErrArgumentTypeMismatch, e.messageType, msg)
	}
	spec, ok := schema.Lookup(e.messageType)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMessageType, e.messageType)
	}
	var fields []any
	if e.fields != nil {
		var err error
		if fields, err = e.fields(m, v); err != nil {
			return fmt.Errorf("%s at %s: %w", spec.Name, v, err)
		}
	}
	if len(fields) != spec.Arity {
		return fmt.Errorf("message: %s built %d fields, arity is %d", spec.Name, len(fields), spec.Arity)
	}
	if err := p.PackStructHeader(spec.Arity, m.Signature()); err != nil {
		return err
	}
	for i, f := range fields {
		if err := p.Pack(f); err != nil {
			return fmt.Errorf("%s field %d: %w", spec.Name, i, err)
		}
	}
	return nil
}

type versionedEncoder struct {
	layout  layout
	version schema.Version
}

func (e versionedEncoder) Encode(msg Message, p *packstream.Packer) error {
	return e.layout.encode(msg, p, e.version)
}

var encoders = [...]layout{
	schema.MsgHello:     structEncoder[Hello]{schema.MsgHello, helloFields},
	schema.MsgLogon:     structEncoder[Logon]{schema.MsgLogon, logonFields},
	schema.MsgLogoff:    structEncoder[Logoff]{schema.MsgLogoff, nil},
	schema.MsgGoodbye:   structEncoder[Goodbye]{schema.MsgGoodbye, nil},
	schema.MsgReset:     structEncoder[Reset]{schema.MsgReset, nil},
	schema.MsgRun:       structEncoder[Run]{schema.MsgRun, runFields},
	schema.MsgBegin:     structEncoder[Begin]{schema.MsgBegin, beginFields},
	schema.MsgCommit:    structEncoder[Commit]{schema.MsgCommit, nil},
	schema.MsgRollback:  structEncoder[Rollback]{schema.MsgRollback, nil},
	schema.MsgDiscard:   structEncoder[Discard]{schema.MsgDiscard, discardFields},
	schema.MsgPull:      structEncoder[Pull]{schema.MsgPull, pullFields},
	schema.MsgRoute:     structEncoder[Route]{schema.MsgRoute, routeFields},
	schema.MsgTelemetry: structEncoder[Telemetry]{schema.MsgTelemetry, telemetryFields},
}

// EncoderFor returns the encoder for t bound to the layout of protocol v.
func EncoderFor(t schema.MessageType, v schema.Version) (Encoder, error) {
	if int(t) >= len(encoders) || encoders[t] == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMessageType, t)
	}
	return versionedEncoder{layout: encoders[t], version: v}, nil
}

// Encode dispatches msg to the encoder of its kind using the layout of v.
func Encode(p *packstream.Packer, msg Message, v schema.Version) error {
	if msg == nil {
		return fmt.Errorf("%w: nil message", ErrArgumentTypeMismatch)
	}
	enc, err := EncoderFor(msg.Kind(), v)
	if err != nil {
		return err
	}
	return enc.Encode(msg, p)
}

func unavailable(field string, since schema.Version) error {
	return fmt.Errorf("%w: %s requires protocol %s", ErrFieldUnavailable, field, since)
}

// helloFields carries the auth token until LOGON takes it over in 5.1.
func helloFields(m Hello, v schema.Version) ([]any, error) {
	extra := make(map[string]any)
	if v.AtLeast(SinceLogon) {
		if len(m.Auth) > 0 {
			return nil, fmt.Errorf("%w: auth moves to LOGON from %s", ErrFieldUnavailable, SinceLogon)
		}
	} else {
		auth := m.Auth
		if len(auth) == 0 {
			auth = NoAuth()
		}
		for k, val := range auth {
			extra[k] = val
		}
	}
	if m.UserAgent != "" {
		extra["user_agent"] = m.UserAgent
	}
	agent := boltAgentMap(m.BoltAgent)
	switch {
	case agent != nil && !v.AtLeast(SinceBoltAgent):
		return nil, unavailable("bolt_agent", SinceBoltAgent)
	case agent == nil && v.AtLeast(SinceBoltAgent):
		return nil, fmt.Errorf("%w: bolt_agent product is required from %s", ErrMissingField, SinceBoltAgent)
	case agent != nil:
		extra["bolt_agent"] = agent
	}
	if m.Routing != nil {
		if !v.AtLeast(SinceHelloRouting) {
			return nil, unavailable("routing", SinceHelloRouting)
		}
		extra["routing"] = m.Routing.Pairs()
	}
	if m.Notifications.MinimumSeverity != "" || m.Notifications.DisabledCategories != nil {
		if !v.AtLeast(SinceNotifications) {
			return nil, unavailable("notification filters", SinceNotifications)
		}
	}
	if m.Notifications.MinimumSeverity != "" {
		extra["notifications_minimum_severity"] = m.Notifications.MinimumSeverity
	}
	if m.Notifications.DisabledCategories != nil {
		extra["notifications_disabled_categories"] = m.Notifications.DisabledCategories
	}
	return []any{extra}, nil
}

func boltAgentMap(a BoltAgent) map[string]any {
	if a.Product == "" {
		return nil
	}
	agent := map[string]any{"product": a.Product}
	if a.Platform != "" {
		agent["platform"] = a.Platform
	}
	if a.Language != "" {
		agent["language"] = a.Language
	}
	if a.LanguageDetails != "" {
		agent["language_details"] = a.LanguageDetails
	}
	return agent
}

func logonFields(m Logon, _ schema.Version) ([]any, error) {
	src := m.Auth
	if len(src) == 0 {
		src = NoAuth()
	}
	auth := make(map[string]any, len(src))
	for k, v := range src {
		auth[k] = v
	}
	return []any{auth}, nil
}

func runFields(m Run, v schema.Version) ([]any, error) {
	extra, err := m.Config.extra(v)
	if err != nil {
		return nil, err
	}
	params := m.Parameters
	if params == nil {
		params = map[string]any{}
	}
	return []any{m.Query, params, extra}, nil
}

func beginFields(m Begin, v schema.Version) ([]any, error) {
	extra, err := m.Config.extra(v)
	if err != nil {
		return nil, err
	}
	return []any{extra}, nil
}

func pullFields(m Pull, _ schema.Version) ([]any, error) {
	meta, err := streamMeta(m.N, m.QID)
	if err != nil {
		return nil, err
	}
	return []any{meta}, nil
}

func discardFields(m Discard, _ schema.Version) ([]any, error) {
	meta, err := streamMeta(m.N, m.QID)
	if err != nil {
		return nil, err
	}
	return []any{meta}, nil
}

// streamMeta accepts n == FetchAll or a positive batch size.
func streamMeta(n, qid int64) (map[string]any, error) {
	if n != FetchAll && n <= 0 {
		return nil, fmt.Errorf("%w: n=%d", ErrInvalidFetchSize, n)
	}
	meta := map[string]any{"n": n}
	if qid != NoQID {
		meta["qid"] = qid
	}
	return meta, nil
}

// routeFields writes the database as a bare string (or null) before 4.4 and
// as an extra map with db and imp_user from 4.4 on.
func routeFields(m Route, v schema.Version) ([]any, error) {
	ctx := m.RoutingContext.Pairs()
	bookmarks := bookmarkValues(m.Bookmarks)
	if v.AtLeast(SinceImpersonation) {
		extra := make(map[string]any)
		if m.Database != "" {
			extra["db"] = m.Database
		}
		if m.ImpersonatedUser != "" {
			extra["imp_user"] = m.ImpersonatedUser
		}
		return []any{ctx, bookmarks, extra}, nil
	}
	if m.ImpersonatedUser != "" {
		return nil, unavailable("imp_user", SinceImpersonation)
	}
	var db any
	if m.Database != "" {
		db = m.Database
	}
	return []any{ctx, bookmarks, db}, nil
}

func telemetryFields(m Telemetry, _ schema.Version) ([]any, error) {
	return []any{int64(m.API)}, nil
}

func (c TxConfig) extra(v schema.Version) (map[string]any, error) {
	extra := make(map[string]any)
	if len(c.Bookmarks) > 0 {
		extra["bookmarks"] = bookmarkValues(c.Bookmarks)
	}
	if c.Timeout > 0 {
		extra["tx_timeout"] = timeoutMillis(c.Timeout)
	}
	if len(c.Metadata) > 0 {
		extra["tx_metadata"] = c.Metadata
	}
	if c.Mode == AccessRead {
		extra["mode"] = "r"
	}
	if c.Database != "" {
		if !v.AtLeast(SinceTxDatabase) {
			return nil, unavailable("db", SinceTxDatabase)
		}
		extra["db"] = c.Database
	}
	if c.ImpersonatedUser != "" {
		if !v.AtLeast(SinceImpersonation) {
			return nil, unavailable("imp_user", SinceImpersonation)
		}
		extra["imp_user"] = c.ImpersonatedUser
	}
	return extra, nil
}

// timeoutMillis rounds sub-millisecond remainders up so a short timeout never
// becomes zero (which the server reads as "no timeout").
func timeoutMillis(d time.Duration) int64 {
	return int64((d + time.Millisecond - 1) / time.Millisecond)
}
