package session

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/danmuck/boltwire/internal/observability"
	"github.com/danmuck/boltwire/internal/protocol/frame"
	"github.com/danmuck/boltwire/internal/protocol/message"
	"github.com/danmuck/boltwire/internal/protocol/packstream"
	"github.com/danmuck/boltwire/internal/protocol/schema"
	"github.com/rs/zerolog"
)

var ErrWriterBroken = errors.New("session: writer broken by earlier write failure")

type deadlineWriter interface {
	SetWriteDeadline(t time.Time) error
}

// Writer is the only writer of its stream. Calls are serialized; each call
// either hands every requested message to the stream in one Write or writes
// nothing. After a failed Write the stream state is unknown and the Writer
// refuses further work.
type Writer struct {
	mu      sync.Mutex
	w       io.Writer
	cfg     Config
	log     zerolog.Logger
	staging bytes.Buffer
	packer  *packstream.Packer
	out     []byte
	broken  error
}

func NewWriter(w io.Writer, cfg Config, logger zerolog.Logger) (*Writer, error) {
	if w == nil {
		return nil, fmt.Errorf("session: nil destination writer")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sw := &Writer{w: w, cfg: cfg, log: logger}
	sw.packer = packstream.NewPacker(&sw.staging)
	return sw, nil
}

// Version returns the protocol version messages are checked against.
func (sw *Writer) Version() schema.Version {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.cfg.Version
}

// SetVersion records the version agreed during the handshake.
func (sw *Writer) SetVersion(v schema.Version) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.cfg.Version = v
}

// WriteHandshake sends the preamble and version proposals.
func (sw *Writer) WriteHandshake(proposals ...frame.Proposal) error {
	if len(proposals) == 0 {
		proposals = frame.DefaultProposals()
	}
	buf, err := frame.EncodeHandshake(proposals...)
	if err != nil {
		return err
	}
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.broken != nil {
		return fmt.Errorf("%w: %v", ErrWriterBroken, sw.broken)
	}
	if err := sw.write(buf); err != nil {
		sw.broken = err
		return err
	}
	sw.log.Debug().Int("proposals", len(proposals)).Msg("session.WriteHandshake")
	return nil
}

func (sw *Writer) WriteMessage(msg message.Message) error {
	return sw.WritePipeline(msg)
}

// WritePipeline stages msgs in order and delivers them together.
func (sw *Writer) WritePipeline(msgs ...message.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.broken != nil {
		return fmt.Errorf("%w: %v", ErrWriterBroken, sw.broken)
	}

	names := make([]string, len(msgs))
	sizes := make([]int, len(msgs))
	out := sw.out[:0]
	for i, msg := range msgs {
		names[i] = messageName(msg)
		mark := len(out)
		var err error
		out, err = sw.stage(out, msg)
		if err != nil {
			reason := failureReason(err)
			observability.RecordEncodeFailure(names[i], reason)
			sw.log.Debug().Err(err).Str("bolt_message", names[i]).Str("reason", reason).Msg("session.WritePipeline rejected")
			return err
		}
		sizes[i] = len(out) - mark
	}
	sw.out = out

	if err := sw.write(out); err != nil {
		sw.broken = err
		for _, name := range names {
			observability.RecordEncodeFailure(name, "io")
		}
		sw.log.Warn().Err(err).Int("messages", len(msgs)).Msg("session.WritePipeline write failed")
		return err
	}
	for i, name := range names {
		observability.RecordMessageEncoded(name, sizes[i])
	}
	sw.log.Debug().Strs("bolt_messages", names).Int("bytes", len(out)).Msg("session.WritePipeline")
	return nil
}

func (sw *Writer) stage(out []byte, msg message.Message) ([]byte, error) {
	if msg == nil {
		return out, fmt.Errorf("%w: nil message", message.ErrArgumentTypeMismatch)
	}
	if err := schema.Validate(msg.Kind(), sw.cfg.Version); err != nil {
		return out, err
	}
	sw.logAuth(msg)
	sw.staging.Reset()
	if err := message.Encode(sw.packer, msg, sw.cfg.Version); err != nil {
		return out, err
	}
	return frame.AppendChunks(out, sw.staging.Bytes(), sw.cfg.Limits)
}

func (sw *Writer) logAuth(msg message.Message) {
	var tok message.AuthToken
	switch m := msg.(type) {
	case message.Hello:
		tok = m.Auth
	case message.Logon:
		tok = m.Auth
	}
	if len(tok) == 0 {
		return
	}
	sw.log.Debug().
		Str("bolt_message", msg.Kind().String()).
		Interface("auth", tok.Redacted()).
		Msg("session.WritePipeline auth")
}

func (sw *Writer) write(buf []byte) error {
	if dw, ok := sw.w.(deadlineWriter); ok && sw.cfg.WriteTimeout > 0 {
		if err := dw.SetWriteDeadline(time.Now().Add(sw.cfg.WriteTimeout)); err != nil {
			return err
		}
		defer dw.SetWriteDeadline(time.Time{})
	}
	_, err := sw.w.Write(buf)
	return err
}

func messageName(msg message.Message) string {
	if msg == nil {
		return "nil"
	}
	return msg.Kind().String()
}

func failureReason(err error) string {
	var verr schema.ValidationError
	switch {
	case errors.Is(err, message.ErrArgumentTypeMismatch):
		return "argument_type_mismatch"
	case errors.Is(err, message.ErrUnknownMessageType):
		return "unknown_message_type"
	case errors.Is(err, packstream.ErrUnsupportedValueType):
		return "unsupported_value_type"
	case errors.Is(err, packstream.ErrStructTooLarge), errors.Is(err, packstream.ErrSizeTooLarge),
		errors.Is(err, frame.ErrMessageTooLarge):
		return "too_large"
	case errors.As(err, &verr), errors.Is(err, message.ErrFieldUnavailable):
		return "version"
	case errors.Is(err, message.ErrMissingField), errors.Is(err, message.ErrInvalidFetchSize):
		return "invalid_field"
	default:
		return "encode"
	}
}
