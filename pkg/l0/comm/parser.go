package comm

// Parser parses bytes received, one byte at a time. It never buffers more
// than one frame: bytes outside of frames are ignored, and malformed or
// oversized frames are reported as FramingError and dropped.
type Parser struct {
	state   parseState
	op      Op
	data    [MaxPayload]byte
	recvLen int
	seen    int // bytes of the current frame, including '<'
}

// ParseResult indicates the result after one parsing step.
// At most one of Frame and Err is set.
type ParseResult struct {
	Frame *Frame
	Err   error
}

type parseState int

const (
	stateIdle   parseState = iota // waiting for '<'
	stateOpHigh                   // waiting for first opcode digit
	stateOpLow                    // waiting for second opcode digit
	stateData                     // receiving payload until '>'
)

// Receiving indicates a frame is partially received.
func (p *Parser) Receiving() bool {
	return p.state != stateIdle
}

// Reset drops any partially received frame.
func (p *Parser) Reset() {
	p.state, p.recvLen, p.seen = stateIdle, 0, 0
}

// Parse consumes one byte.
func (p *Parser) Parse(b byte) (pr ParseResult) {
	switch p.state {
	case stateIdle:
		if b == StartDelim {
			p.begin()
		}
	case stateOpHigh, stateOpLow:
		if !isDigit(b) {
			pr.Err = p.fail(ErrBadOpcode, b)
			return
		}
		p.seen++
		if p.state == stateOpHigh {
			p.op, p.state = Op(b-'0')*10, stateOpLow
		} else {
			p.op, p.state = p.op+Op(b-'0'), stateData
		}
	case stateData:
		if b == EndDelim {
			pr.Frame = p.frameReady()
			return
		}
		if p.recvLen >= MaxPayload {
			pr.Err = p.fail(ErrPayloadTooLarge, b)
			return
		}
		p.data[p.recvLen] = b
		p.recvLen++
		p.seen++
	}
	return
}

// Timeout notifies the parser the peer stopped sending in the middle of a frame.
func (p *Parser) Timeout() (pr ParseResult) {
	if p.state != stateIdle {
		pr.Err = &FramingError{Reason: ErrNoTerminator, Skipped: p.seen}
		p.Reset()
	}
	return
}

func (p *Parser) begin() {
	p.state, p.op, p.recvLen, p.seen = stateOpHigh, 0, 0, 1
}

// fail drops the current frame. A start delimiter in place of an opcode
// digit begins a new frame right away.
func (p *Parser) fail(reason error, b byte) error {
	err := &FramingError{Reason: reason, Skipped: p.seen + 1}
	if b == StartDelim {
		err.Skipped--
		p.begin()
		return err
	}
	p.Reset()
	return err
}

func (p *Parser) frameReady() *Frame {
	f := &Frame{Op: p.op}
	if p.recvLen > 0 {
		f.Data = make([]byte, p.recvLen)
		copy(f.Data, p.data[:p.recvLen])
	}
	p.Reset()
	return f
}
