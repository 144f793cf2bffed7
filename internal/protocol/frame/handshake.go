package frame

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/danmuck/boltwire/internal/protocol/schema"
)

// Magic is the preamble that opens every bolt connection.
const Magic uint32 = 0x6060B017

const (
	MaxProposals = 4
	HandshakeLen = 4 + MaxProposals*4
)

var ErrTooManyVersions = errors.New("frame: too many version proposals")

// Proposal offers Version and, when Range > 0, the Range minor versions
// directly below it.
type Proposal struct {
	Version schema.Version
	Range   uint8
}

func (p Proposal) encode() uint32 {
	return uint32(p.Range)<<16 | uint32(p.Version.Minor)<<8 | uint32(p.Version.Major)
}

func (p Proposal) String() string {
	if p.Range == 0 {
		return p.Version.String()
	}
	low := int(p.Version.Minor) - int(p.Range)
	if low < 0 {
		low = 0
	}
	return fmt.Sprintf("%d.%d-%s", p.Version.Major, low, p.Version)
}

// DefaultProposals is the preference order offered by this client.
func DefaultProposals() []Proposal {
	return []Proposal{
		{Version: schema.Version{Major: 5, Minor: 4}, Range: 4},
		{Version: schema.Version{Major: 4, Minor: 4}, Range: 2},
		{Version: schema.Version{Major: 4, Minor: 1}},
		{Version: schema.Version{Major: 3, Minor: 0}},
	}
}

// EncodeHandshake returns the magic preamble followed by four big-endian
// proposals; unused slots are zero.
func EncodeHandshake(proposals ...Proposal) ([]byte, error) {
	if len(proposals) > MaxProposals {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyVersions, len(proposals), MaxProposals)
	}
	buf := make([]byte, HandshakeLen)
	binary.BigEndian.PutUint32(buf[0:4], Magic)
	for i, p := range proposals {
		off := 4 + i*4
		binary.BigEndian.PutUint32(buf[off:off+4], p.encode())
	}
	return buf, nil
}

// DecodeVersion reads the four-byte version the server agreed on. Zero means
// no proposal was accepted.
func DecodeVersion(b []byte) (schema.Version, bool) {
	if len(b) != 4 {
		return schema.Version{}, false
	}
	v := binary.BigEndian.Uint32(b)
	if v == 0 {
		return schema.Version{}, false
	}
	return schema.Version{Major: uint8(v), Minor: uint8(v >> 8)}, true
}
