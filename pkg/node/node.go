package node

import (
	"context"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/ftlink/pkg/l0/comm"
)

// DefaultDelay is the pause after each processed command.
const DefaultDelay = time.Second

// Node serves commands from the host over a Link.
type Node struct {
	Link       *comm.Link
	Controller Controller
	Dispatcher *Dispatcher
	Metrics    *Metrics
	// Delay is the pause after each processed command, 0 for none.
	Delay time.Duration
}

// New creates a Node.
func New(link *comm.Link, c Controller, m *Metrics) *Node {
	if m == nil {
		m = NewMetrics(nil)
	}
	return &Node{
		Link:       link,
		Controller: c,
		Dispatcher: NewDispatcher(c, link, m),
		Metrics:    m,
		Delay:      DefaultDelay,
	}
}

// Boot initializes the sensor if it's connected and announces the node
// with a BOOTUP frame. A Controller not implementing Detector is
// considered connected. Failures are logged and counted, not returned.
func (n *Node) Boot(ctx context.Context) error {
	if d, ok := n.Controller.(Detector); ok && !d.Connected() {
		glog.Warning("sensor not connected")
		return nil
	}
	callCtx, cancel := n.Dispatcher.callContext(ctx)
	defer cancel()
	if err := n.Controller.Initialize(callCtx); err != nil {
		n.Dispatcher.failed(comm.OpBootUp, err)
	}
	glog.Infof("sensor state %s", n.Controller.State())
	// a failed write is logged and counted by send, the node keeps serving.
	n.send(comm.NewFrame(comm.OpBootUp))
	return nil
}

// Run processes commands until ctx is done or reading fails.
// Sampling is stopped on return.
func (n *Node) Run(ctx context.Context) error {
	defer n.Dispatcher.Close()
	for {
		f, err := n.Link.ReadFrame(ctx)
		if err != nil {
			if fe, ok := err.(*comm.FramingError); ok {
				n.Metrics.FramingErrors.WithLabelValues(fe.Reason.Error()).Inc()
				glog.Warning(fe)
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			glog.Errorf("read: %v", err)
			return err
		}
		n.Metrics.FramesReceived.WithLabelValues(f.Op.String()).Inc()
		if reply := n.Dispatcher.Dispatch(ctx, f); reply != nil {
			n.send(reply)
		}
		if err := n.sleep(ctx); err != nil {
			return err
		}
	}
}

func (n *Node) send(f *comm.Frame) error {
	err := n.Link.Send(f)
	if err != nil {
		glog.Warningf("send %s: %v", f.Op, err)
	}
	n.Metrics.sent(f.Op, err)
	return err
}

func (n *Node) sleep(ctx context.Context) error {
	if n.Delay <= 0 {
		return nil
	}
	timer := time.NewTimer(n.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
