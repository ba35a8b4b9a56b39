package node

import (
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/ftlink/pkg/ft"
	"github.com/robotalks/ftlink/pkg/l0/comm"
)

// Sender writes a frame. comm.Link is the Sender used by the node.
type Sender interface {
	Send(*comm.Frame) error
}

// DefaultSampleQueue is the default number of samples queued for sending.
const DefaultSampleQueue = 64

// SampleBridge forwards samples produced by the controller to the host.
// Publish only queues the sample, a goroutine owned by the bridge encodes
// and sends READ frames.
//
// The queue is bounded and Publish never blocks the producer: when the link
// is slower than the sampling period the queue fills and further samples
// are dropped and counted in SamplesDropped. An 18-byte READ frame takes
// about 1.6ms at 115200 baud, so periods below that overflow the default
// queue of DefaultSampleQueue samples.
type SampleBridge struct {
	sender  Sender
	metrics *Metrics
	ch      chan ft.Sample
	done    chan struct{}
	lock    sync.RWMutex
	closed  bool
}

// NewSampleBridge creates a SampleBridge and starts its goroutine.
func NewSampleBridge(sender Sender, m *Metrics, queueSize int) *SampleBridge {
	if m == nil {
		m = NewMetrics(nil)
	}
	if queueSize <= 0 {
		queueSize = DefaultSampleQueue
	}
	b := &SampleBridge{
		sender:  sender,
		metrics: m,
		ch:      make(chan ft.Sample, queueSize),
		done:    make(chan struct{}),
	}
	go b.run()
	return b
}

// Publish queues a sample without blocking. It's a ft.SampleFunc.
// Samples are dropped when the queue is full or the bridge is closed.
func (b *SampleBridge) Publish(s ft.Sample) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	if b.closed {
		return
	}
	select {
	case b.ch <- s:
	default:
		b.metrics.SamplesDropped.Inc()
		glog.V(2).Infof("sample %d dropped", s.FrameCounter)
	}
}

// Close stops accepting samples, sends the queued ones and waits for the
// goroutine to exit.
func (b *SampleBridge) Close() error {
	b.lock.Lock()
	if b.closed {
		b.lock.Unlock()
		return nil
	}
	b.closed = true
	close(b.ch)
	b.lock.Unlock()
	<-b.done
	return nil
}

func (b *SampleBridge) run() {
	defer close(b.done)
	f := &comm.Frame{Op: comm.OpRead, Data: make([]byte, ft.SampleLen)}
	for s := range b.ch {
		s.PutBytes(f.Data)
		err := b.sender.Send(f)
		if err != nil {
			glog.Warningf("send sample %d: %v", s.FrameCounter, err)
		}
		b.metrics.sent(f.Op, err)
	}
}
