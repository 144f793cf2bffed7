package packstream

import "io"

// Packer writes PackStream encodings to an underlying writer. Each call
// stages its bytes first, so a value that fails to encode writes nothing.
// A Packer is not safe for concurrent use; one Packer belongs to one stream.
type Packer struct {
	w       io.Writer
	scratch []byte
}

func NewPacker(w io.Writer) *Packer {
	return &Packer{w: w, scratch: make([]byte, 0, 256)}
}

// PackStructHeader begins a struct frame of size fields.
func (p *Packer) PackStructHeader(size int, signature byte) error {
	buf, err := AppendStructHeader(p.scratch[:0], size, signature)
	if err != nil {
		return err
	}
	return p.flush(buf)
}

// Pack appends the canonical encoding of v.
func (p *Packer) Pack(v any) error {
	buf, err := AppendValue(p.scratch[:0], v)
	if err != nil {
		return err
	}
	return p.flush(buf)
}

func (p *Packer) flush(buf []byte) error {
	p.scratch = buf[:0]
	if len(buf) == 0 {
		return nil
	}
	_, err := p.w.Write(buf)
	return err
}
