package comm

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/golang/glog"
)

// FrameHandler is called when a frame is received.
type FrameHandler interface {
	HandleFrame(context.Context, *Frame)
}

// HandleFrameFunc is func type of FrameHandler.
type HandleFrameFunc func(context.Context, *Frame)

// HandleFrame implements FrameHandler.
func (f HandleFrameFunc) HandleFrame(ctx context.Context, frame *Frame) {
	f(ctx, frame)
}

// ErrorNotifier is called when received bytes are dropped.
type ErrorNotifier interface {
	FramingError(context.Context, *FramingError)
}

// FramingErrorFunc is func type of ErrorNotifier.
type FramingErrorFunc func(context.Context, *FramingError)

// FramingError implements ErrorNotifier.
func (f FramingErrorFunc) FramingError(ctx context.Context, err *FramingError) {
	f(ctx, err)
}

// DefaultFrameTimeout is the default time allowed between two bytes of a frame.
const DefaultFrameTimeout = 100 * time.Millisecond

// Link sends and receives frames over a byte stream.
//
// Send may be called from any goroutine: each frame is encoded into a
// buffer owned by the caller and written with a single Write while holding
// the write lock, so frames from concurrent senders never interleave.
// ReadFrame and Run must be used from a single goroutine.
type Link struct {
	ReadWriter io.ReadWriter
	Handler    FrameHandler
	Notifier   ErrorNotifier
	// Timeout drops a partial frame when no byte arrives within the duration.
	// It only applies when ReadWriter.Read returns on timeout, as serial
	// ports with a read timeout do.
	Timeout time.Duration

	writeLock sync.Mutex

	parser   Parser
	rbuf     [64]byte
	rpos     int
	rlen     int
	readErr  error
	lastByte time.Time
}

// NewLink creates a Link.
func NewLink(rw io.ReadWriter) *Link {
	return &Link{
		ReadWriter: rw,
		Timeout:    DefaultFrameTimeout,
	}
}

// Send encodes and writes a frame.
func (l *Link) Send(f *Frame) error {
	var buf [MaxFrameLen]byte
	n, err := f.Encode(buf[:])
	if err != nil {
		return err
	}
	return l.SendBytes(buf[:n])
}

// SendBytes writes an already encoded frame.
func (l *Link) SendBytes(p []byte) error {
	l.writeLock.Lock()
	defer l.writeLock.Unlock()
	n, err := l.ReadWriter.Write(p)
	if err != nil {
		return err
	}
	if n != len(p) {
		return io.ErrShortWrite
	}
	return nil
}

// ReadFrame blocks until a frame is received. A *FramingError is returned
// when bytes are dropped; reading can continue after it. Any other error
// comes from the underlying reader, or ctx when the reader supports timeout.
func (l *Link) ReadFrame(ctx context.Context) (*Frame, error) {
	for {
		for l.rpos < l.rlen {
			b := l.rbuf[l.rpos]
			l.rpos++
			pr := l.parser.Parse(b)
			if pr.Frame != nil {
				glog.V(4).Infof("RCV %s %x", pr.Frame.Op, pr.Frame.Data)
				return pr.Frame, nil
			}
			if pr.Err != nil {
				return nil, pr.Err
			}
		}
		if err := l.readErr; err != nil {
			l.readErr = nil
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		n, err := l.ReadWriter.Read(l.rbuf[:])
		l.rpos, l.rlen = 0, n
		if n > 0 {
			l.lastByte = time.Now()
		}
		if err != nil && !os.IsTimeout(err) {
			if n == 0 {
				return nil, err
			}
			l.readErr = err
			continue
		}
		if n == 0 && l.parser.Receiving() && l.Timeout > 0 && time.Since(l.lastByte) >= l.Timeout {
			if pr := l.parser.Timeout(); pr.Err != nil {
				return nil, pr.Err
			}
		}
	}
}

// Run receives frames and calls Handler until an error occurs.
// Framing errors are reported to Notifier and don't stop the loop.
func (l *Link) Run(ctx context.Context) error {
	for {
		f, err := l.ReadFrame(ctx)
		if err != nil {
			if fe, ok := err.(*FramingError); ok {
				if n := l.Notifier; n != nil {
					n.FramingError(ctx, fe)
				} else {
					glog.Warning(fe)
				}
				continue
			}
			return err
		}
		if h := l.Handler; h != nil {
			h.HandleFrame(ctx, f)
		}
	}
}

// Close implements io.Closer.
func (l *Link) Close() error {
	if closer, ok := l.ReadWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
