package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	ChunkHeaderLen = 2
	// MaxChunkSize is the largest payload a single chunk header can describe.
	MaxChunkSize = 0xFFFF
)

var (
	ErrEmptyMessage      = errors.New("frame: empty message")
	ErrMessageTooLarge   = errors.New("frame: message too large")
	ErrInvalidChunkLimit = errors.New("frame: invalid chunk size limit")
)

// Limits constrains chunking and staged message size.
type Limits struct {
	MaxChunkSize    int
	MaxMessageBytes int
}

func DefaultLimits() Limits {
	return Limits{
		MaxChunkSize:    MaxChunkSize,
		MaxMessageBytes: 8 * 1024 * 1024,
	}
}

func (l Limits) Validate() error {
	if l.MaxChunkSize <= 0 || l.MaxChunkSize > MaxChunkSize {
		return fmt.Errorf("%w: %d", ErrInvalidChunkLimit, l.MaxChunkSize)
	}
	if l.MaxMessageBytes < 0 {
		return fmt.Errorf("%w: negative max message bytes", ErrMessageTooLarge)
	}
	return nil
}

// AppendChunks appends payload split into chunks of at most
// limits.MaxChunkSize bytes, followed by the 00 00 end-of-message marker.
func AppendChunks(dst, payload []byte, limits Limits) ([]byte, error) {
	if err := limits.Validate(); err != nil {
		return dst, err
	}
	if len(payload) == 0 {
		return dst, ErrEmptyMessage
	}
	if limits.MaxMessageBytes > 0 && len(payload) > limits.MaxMessageBytes {
		return dst, fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, len(payload), limits.MaxMessageBytes)
	}
	for off := 0; off < len(payload); {
		n := len(payload) - off
		if n > limits.MaxChunkSize {
			n = limits.MaxChunkSize
		}
		dst = binary.BigEndian.AppendUint16(dst, uint16(n))
		dst = append(dst, payload[off:off+n]...)
		off += n
	}
	return append(dst, 0x00, 0x00), nil
}

// ChunkedLen is the on-wire size of a payload of n bytes.
func ChunkedLen(n int, limits Limits) int {
	if n <= 0 || limits.MaxChunkSize <= 0 {
		return 0
	}
	chunks := (n + limits.MaxChunkSize - 1) / limits.MaxChunkSize
	return n + chunks*ChunkHeaderLen + ChunkHeaderLen
}

// WriteMessage chunks payload and hands it to w in a single Write.
func WriteMessage(w io.Writer, payload []byte, limits Limits) error {
	buf, err := AppendChunks(make([]byte, 0, ChunkedLen(len(payload), limits)), payload, limits)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}
