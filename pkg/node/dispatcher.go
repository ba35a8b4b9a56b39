package node

import (
	"context"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/ftlink/pkg/ft"
	"github.com/robotalks/ftlink/pkg/l0/comm"
)

// HandlerFunc handles a command frame and returns the reply, or nil for
// no reply.
type HandlerFunc func(ctx context.Context, f *comm.Frame) *comm.Frame

// DefaultCallTimeout bounds blocking controller calls.
const DefaultCallTimeout = 5 * time.Second

// Dispatcher routes command frames to handlers by opcode.
// Dispatch and Close must be called from a single goroutine.
type Dispatcher struct {
	Controller  Controller
	Sender      Sender
	CallTimeout time.Duration
	SampleQueue int
	Metrics     *Metrics

	handlers map[comm.Op]HandlerFunc
	bridge   *SampleBridge
}

// NewDispatcher creates a Dispatcher with handlers of all commands.
// Samples are sent using sender.
func NewDispatcher(c Controller, sender Sender, m *Metrics) *Dispatcher {
	if m == nil {
		m = NewMetrics(nil)
	}
	d := &Dispatcher{
		Controller:  c,
		Sender:      sender,
		CallTimeout: DefaultCallTimeout,
		Metrics:     m,
	}
	d.handlers = map[comm.Op]HandlerFunc{
		comm.OpStart:         d.start,
		comm.OpStop:          d.stop,
		comm.OpZeroOffsets:   d.zeroOffsets,
		comm.OpSetFilter:     d.setFilter,
		comm.OpGetState:      d.getState,
		comm.OpGetFullScales: d.getFullScales,
		comm.OpReset:         d.reset,
	}
	return d
}

// Handle replaces the handler of an opcode. A nil handler removes it.
func (d *Dispatcher) Handle(op comm.Op, h HandlerFunc) {
	if h == nil {
		delete(d.handlers, op)
		return
	}
	d.handlers[op] = h
}

// Dispatch handles a frame and returns the reply, or nil if no reply
// should be sent. Unsupported opcodes are dropped.
func (d *Dispatcher) Dispatch(ctx context.Context, f *comm.Frame) *comm.Frame {
	h := d.handlers[f.Op]
	if h == nil {
		d.Metrics.UnknownOps.Inc()
		glog.Warningf("unsupported op %s dropped", f.Op)
		return nil
	}
	glog.V(2).Infof("CMD %s %x", f.Op, f.Data)
	return h(ctx, f)
}

// Sampling indicates samples are being pushed.
func (d *Dispatcher) Sampling() bool {
	return d.bridge != nil
}

// Close stops sampling.
func (d *Dispatcher) Close() error {
	if d.bridge == nil {
		return nil
	}
	return d.stopSampling(comm.OpStop)
}

func (d *Dispatcher) ack() *comm.Frame {
	return BuildAck(d.Controller.State())
}

func (d *Dispatcher) failed(op comm.Op, err error) {
	d.Metrics.ControllerErrors.WithLabelValues(op.String()).Inc()
	glog.Warningf("%s failed: %v", op, err)
}

func (d *Dispatcher) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := d.CallTimeout
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// stopSampling stops the controller before closing the bridge, so nothing
// is published to a closed bridge.
func (d *Dispatcher) stopSampling(op comm.Op) error {
	err := d.Controller.Stop()
	if err != nil {
		d.failed(op, err)
	}
	if d.bridge != nil {
		d.bridge.Close()
		d.bridge = nil
		d.Metrics.Sampling.Set(0)
	}
	return err
}

func (d *Dispatcher) start(ctx context.Context, f *comm.Frame) *comm.Frame {
	cutoff, period := comm.ReadUint16(f.Data, 0), comm.ReadUint32(f.Data, 2)
	if d.bridge != nil {
		glog.Info("restart sampling")
		d.stopSampling(f.Op)
	}
	bridge := NewSampleBridge(d.Sender, d.Metrics, d.SampleQueue)
	if err := d.Controller.StartAsync(bridge.Publish, cutoff, period); err != nil {
		d.failed(f.Op, err)
		bridge.Close()
		return d.ack()
	}
	d.bridge = bridge
	d.Metrics.Sampling.Set(1)
	glog.Infof("sampling started: cutoff %dHz, period %dus", cutoff, period)
	return d.ack()
}

func (d *Dispatcher) stop(ctx context.Context, f *comm.Frame) *comm.Frame {
	d.stopSampling(f.Op)
	glog.Info("sampling stopped")
	return d.ack()
}

func (d *Dispatcher) zeroOffsets(ctx context.Context, f *comm.Frame) *comm.Frame {
	callCtx, cancel := d.callContext(ctx)
	defer cancel()
	if err := d.Controller.Calibrate(callCtx); err != nil {
		d.failed(f.Op, err)
	}
	return d.ack()
}

func (d *Dispatcher) setFilter(ctx context.Context, f *comm.Frame) *comm.Frame {
	if err := d.Controller.SetFilter(comm.ReadUint16(f.Data, 0)); err != nil {
		d.failed(f.Op, err)
	}
	return d.ack()
}

func (d *Dispatcher) getState(ctx context.Context, f *comm.Frame) *comm.Frame {
	return d.ack()
}

func (d *Dispatcher) getFullScales(ctx context.Context, f *comm.Frame) *comm.Frame {
	callCtx, cancel := d.callContext(ctx)
	defer cancel()
	fs, err := d.Controller.FullScales(callCtx)
	if err != nil {
		d.failed(f.Op, err)
		fs = ft.FullScales{}
	}
	return BuildFullScalesAck(d.Controller.State(), fs)
}

func (d *Dispatcher) reset(ctx context.Context, f *comm.Frame) *comm.Frame {
	callCtx, cancel := d.callContext(ctx)
	defer cancel()
	if err := d.Controller.Initialize(callCtx); err != nil {
		d.failed(f.Op, err)
	}
	return d.ack()
}
