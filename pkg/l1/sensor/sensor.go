// Package sensor is the host side API of a force-torque sensor node.
package sensor

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/ftlink/pkg/framework"
	"github.com/robotalks/ftlink/pkg/ft"
	"github.com/robotalks/ftlink/pkg/l0/comm"
	"github.com/robotalks/ftlink/pkg/l1"
)

var (
	// ErrNoData indicates no recent sample is available.
	ErrNoData = errors.New("no recent data")
	// ErrShortReply indicates the ACK doesn't carry the expected payload.
	ErrShortReply = errors.New("reply too short")
)

// Defaults
const (
	DefaultStateTTL  = 5 * time.Second
	DefaultFreshness = 100 * time.Millisecond
)

// ReadingFunc receives readings pushed by the node.
type ReadingFunc func(*l1.Reading)

// Sensor provides operations on a node over a comm.Client.
type Sensor struct {
	Client *comm.Client
	Clock  framework.TimeSource
	// StateTTL is how long a queried state is reused.
	StateTTL time.Duration
	// Freshness is the maximum age of the reading returned by Read.
	Freshness time.Duration

	// commands are serialized: replies carry no sequence number.
	cmdLock sync.Mutex

	lock          sync.Mutex
	state         ft.State
	stateAt       time.Time
	fullScales    ft.FullScales
	hasFullScales bool
	sampling      bool
	latest        *l1.Reading
	handlers      []ReadingFunc
	bootHandlers  []func()
}

// New creates a Sensor.
func New(client *comm.Client) *Sensor {
	return &Sensor{
		Client:    client,
		Clock:     framework.SystemClock,
		StateTTL:  DefaultStateTTL,
		Freshness: DefaultFreshness,
		state:     ft.StateNotInitialized,
	}
}

// OnReading registers a handler called for each sample pushed by the node.
// Handlers are called from Run and must not block.
func (s *Sensor) OnReading(fn ReadingFunc) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.handlers = append(s.handlers, fn)
}

// OnBootUp registers a handler called when the node announces booting.
func (s *Sensor) OnBootUp(fn func()) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.bootHandlers = append(s.bootHandlers, fn)
}

// Run runs the client and processes frames pushed by the node.
func (s *Sensor) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Client.Run(ctx)
	}()
	events := s.Client.EventChan()
	for {
		select {
		case err := <-errCh:
			return err
		case f := <-events:
			s.handleEvent(f)
		}
	}
}

func (s *Sensor) handleEvent(f *comm.Frame) {
	switch f.Op {
	case comm.OpRead:
		sample, err := ft.DecodeSample(f.Data)
		if err != nil {
			glog.Warningf("bad sample %x: %v", f.Data, err)
			return
		}
		s.lock.Lock()
		r := &l1.Reading{Time: s.Clock.Time(), Sample: sample, Wrench: s.fullScales.Wrench(sample)}
		s.latest = r
		handlers := s.handlers
		s.lock.Unlock()
		for _, fn := range handlers {
			fn(r)
		}
	case comm.OpBootUp:
		glog.Info("node booted")
		s.lock.Lock()
		s.stateAt, s.hasFullScales, s.sampling, s.latest = time.Time{}, false, false, nil
		handlers := s.bootHandlers
		s.lock.Unlock()
		for _, fn := range handlers {
			fn()
		}
	default:
		glog.V(2).Infof("unexpected frame %s", f.Op)
	}
}

// do sends a command and returns the ACK payload. The state is updated
// from the payload.
func (s *Sensor) do(ctx context.Context, f *comm.Frame, minLen int) ([]byte, error) {
	s.cmdLock.Lock()
	r := s.Client.Do(f).Wait(ctx)
	s.cmdLock.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	state := ft.StateFromByte(r.Data[0])
	s.lock.Lock()
	s.state, s.stateAt = state, s.Clock.Time()
	s.lock.Unlock()
	if len(r.Data) < minLen {
		return r.Data, ErrShortReply
	}
	return r.Data, nil
}

// Start fetches the full scales if unknown and starts sampling.
// cutoff is the filter cutoff in Hz, period in µs.
func (s *Sensor) Start(ctx context.Context, cutoff uint16, period uint32) error {
	if _, err := s.FullScales(ctx); err != nil {
		return err
	}
	payload := make([]byte, 0, 6)
	payload = binary.LittleEndian.AppendUint16(payload, cutoff)
	payload = binary.LittleEndian.AppendUint32(payload, period)
	if _, err := s.do(ctx, comm.NewFrame(comm.OpStart, payload...), 1); err != nil {
		return err
	}
	s.setSampling(true)
	return nil
}

// Stop stops sampling.
func (s *Sensor) Stop(ctx context.Context) error {
	if _, err := s.do(ctx, comm.NewFrame(comm.OpStop), 1); err != nil {
		return err
	}
	s.setSampling(false)
	return nil
}

// ZeroOffsets makes the current load the zero.
func (s *Sensor) ZeroOffsets(ctx context.Context) error {
	_, err := s.do(ctx, comm.NewFrame(comm.OpZeroOffsets), 1)
	return err
}

// SetFilter sets the filter cutoff in Hz.
func (s *Sensor) SetFilter(ctx context.Context, cutoff uint16) error {
	payload := binary.LittleEndian.AppendUint16(nil, cutoff)
	_, err := s.do(ctx, comm.NewFrame(comm.OpSetFilter, payload...), 1)
	return err
}

// Reset initializes the sensor again. Cached full scales are dropped.
func (s *Sensor) Reset(ctx context.Context) error {
	_, err := s.do(ctx, comm.NewFrame(comm.OpReset), 1)
	s.lock.Lock()
	s.hasFullScales, s.sampling = false, false
	s.lock.Unlock()
	return err
}

// State returns the state, queried at most once per StateTTL.
func (s *Sensor) State(ctx context.Context) (ft.State, error) {
	s.lock.Lock()
	state, at := s.state, s.stateAt
	s.lock.Unlock()
	if !at.IsZero() && s.Clock.Time().Sub(at) < s.StateTTL {
		return state, nil
	}
	data, err := s.do(ctx, comm.NewFrame(comm.OpGetState), 1)
	if err != nil {
		return ft.StateNotInitialized, err
	}
	return ft.StateFromByte(data[0]), nil
}

// FullScales returns the full scales, queried once while the sensor is
// ready.
func (s *Sensor) FullScales(ctx context.Context) (ft.FullScales, error) {
	s.lock.Lock()
	fs, ok := s.fullScales, s.hasFullScales
	s.lock.Unlock()
	if ok {
		return fs, nil
	}
	data, err := s.do(ctx, comm.NewFrame(comm.OpGetFullScales), 1+ft.FullScalesLen)
	if err != nil {
		return fs, err
	}
	if fs, err = ft.DecodeFullScales(data[1:]); err != nil {
		return fs, err
	}
	s.lock.Lock()
	s.fullScales = fs
	s.hasFullScales = ft.StateFromByte(data[0]) == ft.StateReady && !fs.IsZero()
	s.lock.Unlock()
	return fs, nil
}

// Sampling indicates sampling was started.
func (s *Sensor) Sampling() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.sampling
}

// Read returns the latest reading received within Freshness.
func (s *Sensor) Read() (*l1.Reading, error) {
	s.lock.Lock()
	r := s.latest
	s.lock.Unlock()
	if r == nil || s.Clock.Time().Sub(r.Time) > s.Freshness {
		return nil, ErrNoData
	}
	return r, nil
}

func (s *Sensor) setSampling(sampling bool) {
	s.lock.Lock()
	s.sampling = sampling
	s.lock.Unlock()
}
