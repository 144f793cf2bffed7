package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/danmuck/boltwire/internal/protocol/frame"
	"github.com/danmuck/boltwire/internal/protocol/message"
	"github.com/danmuck/boltwire/internal/protocol/packstream"
	"github.com/danmuck/boltwire/internal/protocol/schema"
	"github.com/danmuck/boltwire/internal/testutil/packtest"
	"github.com/danmuck/boltwire/internal/testutil/testlog"
	"github.com/danmuck/boltwire/internal/value"
	"github.com/rs/zerolog"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.buf.Bytes()...)
}

type failingWriter struct {
	calls int
}

func (w *failingWriter) Write([]byte) (int, error) {
	w.calls++
	return 0, errors.New("broken pipe")
}

type deadlineRecorder struct {
	bytes.Buffer
	deadlines []time.Time
}

func (d *deadlineRecorder) SetWriteDeadline(t time.Time) error {
	d.deadlines = append(d.deadlines, t)
	return nil
}

func splitMessages(t *testing.T, data []byte) [][]byte {
	t.Helper()
	msgs, err := packtest.Dechunk(data)
	if err != nil {
		t.Fatalf("dechunk: %v", err)
	}
	return msgs
}

func unpackStruct(t *testing.T, b []byte) packtest.Struct {
	t.Helper()
	v, err := packtest.UnpackAll(b)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	s, ok := v.(packtest.Struct)
	if !ok {
		t.Fatalf("expected struct, got %T", v)
	}
	return s
}

func newTestWriter(t *testing.T, w interface{ Write([]byte) (int, error) }, cfg Config) *Writer {
	t.Helper()
	sw, err := NewWriter(w, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	return sw
}

func TestWriterWritesRouteAsSingleChunk(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Version = schema.Version{Major: 4, Minor: 3}
	sw := newTestWriter(t, &buf, cfg)
	route := message.Route{
		RoutingContext: message.NewRoutingContext(map[string]string{"region": "eu"}),
		Bookmarks:      message.Bookmarks("bm-1", "bm-2"),
		Database:       "neo4j",
	}
	if err := sw.WriteMessage(route); err != nil {
		t.Fatalf("write route: %v", err)
	}
	want := []byte{0x00, 0x1E, 0xB3, 0x66,
		0xA1, 0x86, 'r', 'e', 'g', 'i', 'o', 'n', 0x82, 'e', 'u',
		0x92, 0x84, 'b', 'm', '-', '1', 0x84, 'b', 'm', '-', '2',
		0x85, 'n', 'e', 'o', '4', 'j',
		0x00, 0x00}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("route bytes\n got=% X\nwant=% X", buf.Bytes(), want)
	}
}

func TestWriterUsesLayoutOfDefaultVersion(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	sw := newTestWriter(t, &buf, DefaultConfig())
	hello := message.Hello{
		UserAgent: "boltwire/test",
		BoltAgent: message.BoltAgent{Product: "boltwire/test"},
	}
	route := message.Route{Database: "neo4j"}
	if err := sw.WritePipeline(hello, message.Logon{Auth: message.BasicAuth("u", "p", "")}, route); err != nil {
		t.Fatalf("pipeline: %v", err)
	}
	msgs := splitMessages(t, buf.Bytes())
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}

	helloStruct := unpackStruct(t, msgs[0])
	extra := helloStruct.Fields[0].(map[string]any)
	for _, key := range []string{"scheme", "principal", "credentials"} {
		if _, ok := extra[key]; ok {
			t.Fatalf("HELLO at %s carries %q: %v", sw.Version(), key, extra)
		}
	}
	if _, ok := extra["bolt_agent"]; !ok {
		t.Fatalf("HELLO at %s lacks bolt_agent: %v", sw.Version(), extra)
	}

	logon := unpackStruct(t, msgs[1])
	if logon.Fields[0].(map[string]any)["principal"] != "u" {
		t.Fatalf("LOGON auth=%v", logon.Fields[0])
	}

	routeStruct := unpackStruct(t, msgs[2])
	db, ok := routeStruct.Fields[2].(map[string]any)
	if !ok || db["db"] != "neo4j" || len(db) != 1 {
		t.Fatalf("ROUTE field 2 at %s = %#v, want {db: neo4j}", sw.Version(), routeStruct.Fields[2])
	}
}

func TestWriterRejectsAuthInHelloAfterLogon(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	sw := newTestWriter(t, &buf, DefaultConfig())
	hello := message.Hello{
		BoltAgent: message.BoltAgent{Product: "boltwire/test"},
		Auth:      message.BasicAuth("u", "p", ""),
	}
	if err := sw.WriteMessage(hello); !errors.Is(err, message.ErrFieldUnavailable) {
		t.Fatalf("expected ErrFieldUnavailable, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no bytes, got % X", buf.Bytes())
	}
	if got := failureReason(fmt.Errorf("wrap: %w", message.ErrFieldUnavailable)); got != "version" {
		t.Fatalf("failure reason=%q", got)
	}
}

func TestWriterRejectsMessageNewerThanVersion(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Version = schema.Version{Major: 4, Minor: 0}
	sw := newTestWriter(t, &buf, cfg)
	err := sw.WriteMessage(message.Route{})
	var verr schema.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no bytes, got % X", buf.Bytes())
	}

	sw.SetVersion(schema.Version{Major: 4, Minor: 3})
	if err := sw.WriteMessage(message.Route{}); err != nil {
		t.Fatalf("route after upgrade: %v", err)
	}
}

func TestWritePipelineIsAllOrNothing(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	sw := newTestWriter(t, &buf, DefaultConfig())
	bad := message.Run{
		Query:      "MATCH (n) WHERE n = $node RETURN n",
		Parameters: map[string]any{"node": value.Node{ID: 1}},
	}
	err := sw.WritePipeline(message.Begin{}, bad, message.PullAll())
	if !errors.Is(err, packstream.ErrUnsupportedValueType) {
		t.Fatalf("expected unsupported value error, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("partial pipeline written: % X", buf.Bytes())
	}

	if err := sw.WritePipeline(message.Run{Query: "RETURN 1"}, message.PullAll()); err != nil {
		t.Fatalf("pipeline: %v", err)
	}
	msgs := splitMessages(t, buf.Bytes())
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0][1] != schema.SigRun || msgs[1][1] != schema.SigPull {
		t.Fatalf("unexpected signatures %#x %#x", msgs[0][1], msgs[1][1])
	}
}

func TestWriterRejectsNilMessage(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	sw := newTestWriter(t, &buf, DefaultConfig())
	if err := sw.WriteMessage(nil); !errors.Is(err, message.ErrArgumentTypeMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no bytes")
	}
}

func TestWriterBreaksAfterWriteFailure(t *testing.T) {
	testlog.Start(t)
	w := &failingWriter{}
	sw := newTestWriter(t, w, DefaultConfig())
	if err := sw.WriteMessage(message.Reset{}); err == nil {
		t.Fatalf("expected write error")
	}
	if err := sw.WriteMessage(message.Reset{}); !errors.Is(err, ErrWriterBroken) {
		t.Fatalf("expected broken writer, got %v", err)
	}
	if w.calls != 1 {
		t.Fatalf("expected one write attempt, got %d", w.calls)
	}
}

func TestWriterSetsAndClearsDeadline(t *testing.T) {
	testlog.Start(t)
	d := &deadlineRecorder{}
	cfg := DefaultConfig()
	cfg.WriteTimeout = time.Second
	sw := newTestWriter(t, d, cfg)
	if err := sw.WriteMessage(message.Goodbye{}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(d.deadlines) != 2 {
		t.Fatalf("expected set and clear, got %d calls", len(d.deadlines))
	}
	if d.deadlines[0].IsZero() || !d.deadlines[1].IsZero() {
		t.Fatalf("unexpected deadlines %v", d.deadlines)
	}
}

func TestWriterSerializesConcurrentPipelines(t *testing.T) {
	testlog.Start(t)
	out := &lockedBuffer{}
	sw := newTestWriter(t, out, DefaultConfig())

	const workers = 16
	const rounds = 25
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				q := fmt.Sprintf("RETURN %d", id*rounds+r)
				if err := sw.WritePipeline(message.Run{Query: q}, message.PullAll()); err != nil {
					t.Errorf("worker %d: %v", id, err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	msgs := splitMessages(t, out.Bytes())
	if len(msgs) != workers*rounds*2 {
		t.Fatalf("expected %d messages, got %d", workers*rounds*2, len(msgs))
	}
	for i := 0; i < len(msgs); i += 2 {
		if msgs[i][1] != schema.SigRun || msgs[i+1][1] != schema.SigPull {
			t.Fatalf("pipeline interleaved at message %d", i)
		}
	}
}

func TestWritersOnSeparateStreamsAreIndependent(t *testing.T) {
	testlog.Start(t)
	var a, b bytes.Buffer
	wa := newTestWriter(t, &a, DefaultConfig())
	wb := newTestWriter(t, &b, DefaultConfig())

	var wg sync.WaitGroup
	for _, sw := range []*Writer{wa, wb} {
		wg.Add(1)
		go func(sw *Writer) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if err := sw.WriteMessage(message.Reset{}); err != nil {
					t.Errorf("write: %v", err)
					return
				}
			}
		}(sw)
	}
	wg.Wait()

	one := []byte{0x00, 0x02, 0xB0, 0x0F, 0x00, 0x00}
	want := bytes.Repeat(one, 50)
	if !bytes.Equal(a.Bytes(), want) || !bytes.Equal(b.Bytes(), want) {
		t.Fatalf("unexpected stream contents")
	}
}

func TestWriteHandshake(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	sw := newTestWriter(t, &buf, DefaultConfig())
	if err := sw.WriteHandshake(); err != nil {
		t.Fatalf("handshake: %v", err)
	}
	got := buf.Bytes()
	if len(got) != frame.HandshakeLen {
		t.Fatalf("handshake len=%d", len(got))
	}
	if binary.BigEndian.Uint32(got) != frame.Magic {
		t.Fatalf("missing magic: % X", got[:4])
	}
}

func TestConfigValidate(t *testing.T) {
	testlog.Start(t)
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	cfg := DefaultConfig()
	cfg.Version = schema.Version{}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected missing version error")
	}
	cfg = DefaultConfig()
	cfg.WriteTimeout = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected negative timeout error")
	}
}
