package inspect

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"runtime"
	"strings"
	"time"

	"github.com/danmuck/boltwire/internal/protocol/message"
	"github.com/danmuck/boltwire/internal/protocol/packstream"
	"github.com/danmuck/boltwire/internal/protocol/schema"
	"github.com/danmuck/boltwire/internal/protocol/session"
	"github.com/danmuck/boltwire/internal/value"
	"github.com/rs/zerolog"
)

var ErrInvalidRequest = errors.New("inspect: invalid request")

// EncodeRequest describes one outbound message. Only the fields relevant to
// Message are read.
type EncodeRequest struct {
	Message string `json:"message" yaml:"message"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	Routing    map[string]string `json:"routing,omitempty" yaml:"routing,omitempty"`
	RoutingURI string            `json:"routing_uri,omitempty" yaml:"routing_uri,omitempty"`
	Bookmarks  []string          `json:"bookmarks,omitempty" yaml:"bookmarks,omitempty"`
	Database   string            `json:"database,omitempty" yaml:"database,omitempty"`

	UserAgent string         `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	BoltAgent string         `json:"bolt_agent,omitempty" yaml:"bolt_agent,omitempty"`
	Auth      map[string]any `json:"auth,omitempty" yaml:"auth,omitempty"`

	Query            string         `json:"query,omitempty" yaml:"query,omitempty"`
	Parameters       map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Mode             string         `json:"mode,omitempty" yaml:"mode,omitempty"`
	TimeoutMS        int64          `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
	ImpersonatedUser string         `json:"imp_user,omitempty" yaml:"imp_user,omitempty"`

	N   *int64 `json:"n,omitempty" yaml:"n,omitempty"`
	QID *int64 `json:"qid,omitempty" yaml:"qid,omitempty"`

	API int64 `json:"api,omitempty" yaml:"api,omitempty"`
}

// EncodeResult reports the bytes produced for one message.
type EncodeResult struct {
	Message   string `json:"message" yaml:"message"`
	Signature string `json:"signature" yaml:"signature"`
	Version   string `json:"version" yaml:"version"`
	Payload   string `json:"payload" yaml:"payload"`
	Chunked   string `json:"chunked" yaml:"chunked"`
	Bytes     int    `json:"bytes" yaml:"bytes"`
}

// maxTimeoutMS keeps timeout_ms within time.Duration.
const maxTimeoutMS = math.MaxInt64 / int64(time.Millisecond)

// DefaultBoltAgent names this tool when a HELLO at 5.3 or later carries no
// bolt_agent of its own.
func DefaultBoltAgent(product string) message.BoltAgent {
	return message.BoltAgent{
		Product:         product,
		Platform:        runtime.GOOS + "; " + runtime.GOARCH,
		Language:        "Go/" + runtime.Version(),
		LanguageDetails: runtime.Compiler,
	}
}

// Build converts req into a message laid out for protocol v.
func (req EncodeRequest) Build(v schema.Version) (message.Message, error) {
	spec, ok := schema.ByName(strings.ToUpper(strings.TrimSpace(req.Message)))
	if !ok {
		return nil, fmt.Errorf("%w: unknown message %q", ErrInvalidRequest, req.Message)
	}
	switch spec.Type {
	case schema.MsgHello:
		auth, err := parameters(req.Auth)
		if err != nil {
			return nil, err
		}
		hello := message.Hello{UserAgent: req.UserAgent, Auth: auth}
		ctx, err := req.routingContext()
		if err != nil {
			return nil, err
		}
		// bolt:// URIs parse to an empty context and leave routing off.
		if ctx.ServerRoutingEnabled() || len(req.Routing) > 0 {
			hello.Routing = &ctx
		}
		switch {
		case req.BoltAgent != "":
			hello.BoltAgent = DefaultBoltAgent(req.BoltAgent)
		case v.AtLeast(message.SinceBoltAgent):
			hello.BoltAgent = DefaultBoltAgent("boltwire")
		}
		return hello, nil
	case schema.MsgLogon:
		auth, err := parameters(req.Auth)
		if err != nil {
			return nil, err
		}
		return message.Logon{Auth: auth}, nil
	case schema.MsgLogoff:
		return message.Logoff{}, nil
	case schema.MsgGoodbye:
		return message.Goodbye{}, nil
	case schema.MsgReset:
		return message.Reset{}, nil
	case schema.MsgCommit:
		return message.Commit{}, nil
	case schema.MsgRollback:
		return message.Rollback{}, nil
	case schema.MsgRun:
		if strings.TrimSpace(req.Query) == "" {
			return nil, fmt.Errorf("%w: RUN requires a query", ErrInvalidRequest)
		}
		params, err := parameters(req.Parameters)
		if err != nil {
			return nil, err
		}
		tx, err := req.txConfig()
		if err != nil {
			return nil, err
		}
		return message.Run{Query: req.Query, Parameters: params, Config: tx}, nil
	case schema.MsgBegin:
		tx, err := req.txConfig()
		if err != nil {
			return nil, err
		}
		return message.Begin{Config: tx}, nil
	case schema.MsgPull:
		pull := message.PullAll()
		var err error
		if pull.N, pull.QID, err = req.stream(pull.N, pull.QID); err != nil {
			return nil, err
		}
		return pull, nil
	case schema.MsgDiscard:
		discard := message.DiscardAll()
		var err error
		if discard.N, discard.QID, err = req.stream(discard.N, discard.QID); err != nil {
			return nil, err
		}
		return discard, nil
	case schema.MsgRoute:
		ctx, err := req.routingContext()
		if err != nil {
			return nil, err
		}
		return message.Route{
			RoutingContext:   ctx,
			Bookmarks:        message.Bookmarks(req.Bookmarks...),
			Database:         req.Database,
			ImpersonatedUser: req.ImpersonatedUser,
		}, nil
	case schema.MsgTelemetry:
		return message.Telemetry{API: message.TelemetryAPI(req.API)}, nil
	}
	return nil, fmt.Errorf("%w: no builder for %s", ErrInvalidRequest, spec.Name)
}

func (req EncodeRequest) txConfig() (message.TxConfig, error) {
	if req.TimeoutMS < 0 {
		return message.TxConfig{}, fmt.Errorf("%w: negative timeout", ErrInvalidRequest)
	}
	if req.TimeoutMS > maxTimeoutMS {
		return message.TxConfig{}, fmt.Errorf("%w: timeout_ms %d exceeds %d", ErrInvalidRequest, req.TimeoutMS, maxTimeoutMS)
	}
	tx := message.TxConfig{
		Bookmarks:        message.Bookmarks(req.Bookmarks...),
		Timeout:          time.Duration(req.TimeoutMS) * time.Millisecond,
		Database:         req.Database,
		ImpersonatedUser: req.ImpersonatedUser,
	}
	switch strings.ToLower(req.Mode) {
	case "", "w", "write":
	case "r", "read":
		tx.Mode = message.AccessRead
	default:
		return message.TxConfig{}, fmt.Errorf("%w: unknown access mode %q", ErrInvalidRequest, req.Mode)
	}
	return tx, nil
}

func (req EncodeRequest) stream(n, qid int64) (int64, int64, error) {
	if req.N != nil {
		n = *req.N
	}
	if req.QID != nil {
		qid = *req.QID
	}
	if n != message.FetchAll && n <= 0 {
		return 0, 0, fmt.Errorf("%w: n must be -1 or positive, got %d", ErrInvalidRequest, n)
	}
	if qid < message.NoQID {
		return 0, 0, fmt.Errorf("%w: qid must be -1 or a statement id, got %d", ErrInvalidRequest, qid)
	}
	return n, qid, nil
}

func (req EncodeRequest) routingContext() (message.RoutingContext, error) {
	if req.RoutingURI != "" {
		if len(req.Routing) > 0 {
			return message.RoutingContext{}, fmt.Errorf("%w: routing and routing_uri are exclusive", ErrInvalidRequest)
		}
		return message.ParseRoutingContext(req.RoutingURI)
	}
	return message.NewRoutingContext(req.Routing), nil
}

// parameters routes query parameters and auth entries through the value union so JSON numbers
// keep their integer or float identity.
func parameters(in map[string]any) (map[string]any, error) {
	if in == nil {
		return nil, nil
	}
	out := make(map[string]any, len(in))
	for k, raw := range in {
		v, err := value.Of(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: parameter %q: %v", ErrInvalidRequest, k, err)
		}
		out[k] = v
	}
	return out, nil
}

// Encode builds req and runs it through a session writer configured by cfg.
// A request Version overrides cfg.Version.
func Encode(req EncodeRequest, cfg session.Config, logger zerolog.Logger) (EncodeResult, error) {
	if req.Version != "" {
		v, err := schema.ParseVersion(req.Version)
		if err != nil {
			return EncodeResult{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		cfg.Version = v
	}
	msg, err := req.Build(cfg.Version)
	if err != nil {
		return EncodeResult{}, err
	}

	var stream bytes.Buffer
	w, err := session.NewWriter(&stream, cfg, logger)
	if err != nil {
		return EncodeResult{}, err
	}
	if err := w.WriteMessage(msg); err != nil {
		return EncodeResult{}, err
	}

	var payload bytes.Buffer
	if err := message.Encode(packstream.NewPacker(&payload), msg, cfg.Version); err != nil {
		return EncodeResult{}, err
	}

	return EncodeResult{
		Message:   msg.Kind().String(),
		Signature: fmt.Sprintf("0x%02X", msg.Signature()),
		Version:   cfg.Version.String(),
		Payload:   hex.EncodeToString(payload.Bytes()),
		Chunked:   hex.EncodeToString(stream.Bytes()),
		Bytes:     stream.Len(),
	}, nil
}
