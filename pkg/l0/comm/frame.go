package comm

import (
	"bytes"
	"io"
)

// Delimiters and sizes of the wire grammar.
const (
	StartDelim byte = '<'
	EndDelim   byte = '>'

	// MaxPayload is the maximum number of payload bytes.
	MaxPayload = 14
	// Overhead is the number of framing bytes around the payload.
	Overhead = 4
	// MaxFrameLen is the size of the largest encoded frame.
	MaxFrameLen = MaxPayload + Overhead
)

// Frame contains the information of a parsed frame.
type Frame struct {
	Op   Op
	Data []byte
}

// NewFrame creates a frame.
func NewFrame(op Op, data ...byte) *Frame {
	return &Frame{Op: op, Data: data}
}

// Len returns the encoded length.
func (f *Frame) Len() int {
	return len(f.Data) + Overhead
}

// Validate checks the frame can be encoded.
func (f *Frame) Validate() error {
	if !f.Op.IsValid() {
		return ErrInvalidOp
	}
	if len(f.Data) > MaxPayload {
		return ErrPayloadTooLarge
	}
	return nil
}

// Encode writes the encoded frame into buf and returns the number of bytes,
// which is always len(f.Data)+4.
func (f *Frame) Encode(buf []byte) (int, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}
	n := f.Len()
	if len(buf) < n {
		return 0, io.ErrShortBuffer
	}
	buf[0] = StartDelim
	buf[1], buf[2] = '0'+byte(f.Op/10), '0'+byte(f.Op%10)
	copy(buf[3:], f.Data)
	buf[n-1] = EndDelim
	return n, nil
}

// Bytes returns encoded bytes for sending.
func (f *Frame) Bytes() []byte {
	buf := make([]byte, f.Len())
	n, err := f.Encode(buf)
	if err != nil {
		return nil
	}
	return buf[:n]
}

// WriteTo writes encoded bytes in a single Write.
func (f *Frame) WriteTo(w io.Writer) (int64, error) {
	var buf [MaxFrameLen]byte
	n, err := f.Encode(buf[:])
	if err != nil {
		return 0, err
	}
	written, err := w.Write(buf[:n])
	return int64(written), err
}

// Equal compares two frames.
func (f *Frame) Equal(other *Frame) bool {
	if f == nil || other == nil {
		return f == other
	}
	return f.Op == other.Op && bytes.Equal(f.Data, other.Data)
}

// Decode decodes the first frame found in b. The scan never goes beyond
// len(b): a missing terminator, non-digit opcode characters or an oversized
// payload result in a FramingError. A start delimiter where an opcode digit
// is expected begins the frame again, as Parser does.
func Decode(b []byte) (*Frame, error) {
	start := bytes.IndexByte(b, StartDelim)
	if start < 0 {
		return nil, &FramingError{Reason: ErrNoStart, Skipped: len(b)}
	}
	for i := 0; i < 2; i++ {
		pos := start + 1 + i
		if pos >= len(b) {
			return nil, &FramingError{Reason: ErrNoTerminator, Skipped: len(b)}
		}
		if b[pos] == StartDelim {
			start, i = pos, -1
			continue
		}
		if !isDigit(b[pos]) {
			return nil, &FramingError{Reason: ErrBadOpcode, Skipped: pos + 1}
		}
	}
	b = b[start+1:]
	op := Op((b[0]-'0')*10 + (b[1] - '0'))
	b = b[2:]
	end := bytes.IndexByte(b, EndDelim)
	if end < 0 {
		if len(b) > MaxPayload {
			return nil, &FramingError{Reason: ErrPayloadTooLarge, Skipped: start + 3 + len(b)}
		}
		return nil, &FramingError{Reason: ErrNoTerminator, Skipped: start + 3 + len(b)}
	}
	if end > MaxPayload {
		return nil, &FramingError{Reason: ErrPayloadTooLarge, Skipped: start + 4 + end}
	}
	f := &Frame{Op: op}
	if end > 0 {
		f.Data = make([]byte, end)
		copy(f.Data, b[:end])
	}
	return f, nil
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
