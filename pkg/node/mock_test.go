package node

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/ftlink/pkg/ft"
	"github.com/robotalks/ftlink/pkg/l0/comm"
)

var errMock = errors.New("mock failure")

type mockController struct {
	lock       sync.Mutex
	state      ft.State
	fullScales ft.FullScales
	err        error
	connected  bool
	calls      []string
	deadlines  int
	cutoff     uint16
	period     uint32
	filter     uint16

	fn       ft.SampleFunc
	async    bool
	stopCh   chan struct{}
	stopped  chan struct{}
	produced int
}

func newMockController() *mockController {
	return &mockController{state: ft.StateReady, connected: true}
}

func (c *mockController) called(name string, ctx context.Context) error {
	c.calls = append(c.calls, name)
	if ctx != nil {
		if _, ok := ctx.Deadline(); ok {
			c.deadlines++
		}
	}
	return c.err
}

func (c *mockController) Calls() []string {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]string(nil), c.calls...)
}

func (c *mockController) State() ft.State {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.state
}

func (c *mockController) Connected() bool {
	return c.connected
}

func (c *mockController) Initialize(ctx context.Context) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.called("Initialize", ctx)
}

func (c *mockController) Calibrate(ctx context.Context) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.called("Calibrate", ctx)
}

func (c *mockController) SetFilter(cutoff uint16) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.filter = cutoff
	return c.called("SetFilter", nil)
}

func (c *mockController) FullScales(ctx context.Context) (ft.FullScales, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.fullScales, c.called("FullScales", ctx)
}

func (c *mockController) StartAsync(fn ft.SampleFunc, cutoff uint16, period uint32) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if err := c.called("StartAsync", nil); err != nil {
		return err
	}
	c.fn, c.cutoff, c.period = fn, cutoff, period
	if c.async {
		c.stopCh, c.stopped = make(chan struct{}), make(chan struct{})
		go c.produce(fn, c.stopCh, c.stopped)
	}
	return nil
}

func (c *mockController) produce(fn ft.SampleFunc, stopCh, stopped chan struct{}) {
	defer close(stopped)
	for i := 0; ; i++ {
		select {
		case <-stopCh:
			return
		default:
		}
		fn(testSample(i))
		c.lock.Lock()
		c.produced++
		c.lock.Unlock()
	}
}

func (c *mockController) Stop() error {
	c.lock.Lock()
	stopCh, stopped := c.stopCh, c.stopped
	c.stopCh, c.stopped, c.fn = nil, nil, nil
	err := c.called("Stop", nil)
	c.lock.Unlock()
	if stopCh != nil {
		close(stopCh)
		<-stopped
	}
	return err
}

// emit produces a sample synchronously, as the sampling goroutine does.
func (c *mockController) emit(s ft.Sample) bool {
	c.lock.Lock()
	fn := c.fn
	c.lock.Unlock()
	if fn == nil {
		return false
	}
	fn(s)
	return true
}

// testSample keeps all bytes below '<' so the encoded frame never
// contains a delimiter.
func testSample(i int) ft.Sample {
	v := int16(i % 50)
	return ft.Sample{
		Channels:     [ft.NumChannels]int16{v, v + 1, v + 2, v + 3, v + 4, v + 5},
		FrameCounter: uint16(i % 50),
	}
}

// recorder records written bytes, one entry per Write.
type recorder struct {
	in     *bytes.Reader
	lock   sync.Mutex
	writes [][]byte
	err    error
}

func newRecorder(input []byte) *recorder {
	return &recorder{in: bytes.NewReader(input)}
}

func (r *recorder) Read(p []byte) (int, error) {
	return r.in.Read(p)
}

func (r *recorder) Write(p []byte) (int, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	r.writes = append(r.writes, append([]byte(nil), p...))
	return len(p), nil
}

// Send implements Sender.
func (r *recorder) Send(f *comm.Frame) error {
	_, err := f.WriteTo(r)
	return err
}

func (r *recorder) Writes() [][]byte {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([][]byte(nil), r.writes...)
}

// Frames decodes every Write and requires each to be exactly one frame.
func (r *recorder) Frames(t *testing.T) []*comm.Frame {
	var frames []*comm.Frame
	for _, w := range r.Writes() {
		f, err := comm.Decode(w)
		require.NoError(t, err)
		require.Equal(t, len(w), f.Len(), "write %q is not a single frame", w)
		frames = append(frames, f)
	}
	return frames
}

func encodeFrames(frames ...*comm.Frame) []byte {
	var buf bytes.Buffer
	for _, f := range frames {
		buf.Write(f.Bytes())
	}
	return buf.Bytes()
}
