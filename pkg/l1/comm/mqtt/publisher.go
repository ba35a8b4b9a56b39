package mqtt

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/ftlink/pkg/ft"
	"github.com/robotalks/ftlink/pkg/l1"
	"github.com/robotalks/ftlink/pkg/l1/msgs"
)

// Publisher implements l1.Publisher using MQTT.
//
// The node info is published as retained JSON on TYPE/ID/meta and cleared
// by the will message when the publisher disconnects unexpectedly.
type Publisher struct {
	Queue *Queue
	Info  l1.NodeInfo
	// Timeout bounds waiting for QoS 1 publishing.
	Timeout time.Duration

	metaLock sync.Mutex
	metaJSON []byte
}

// DefaultPublishTimeout is the default value of Publisher.Timeout.
const DefaultPublishTimeout = 2 * time.Second

// NewPublisher creates a Publisher.
func NewPublisher(brokerURL string, info l1.NodeInfo) (*Publisher, error) {
	meta, err := json.Marshal(&info)
	if err != nil {
		return nil, err
	}
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+NodeTopic(info.Ref, TopicMeta), nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("ftlink:" + info.Ref.Name())
	}
	p := &Publisher{
		Queue:    NewQueue(opts, topicPrefix),
		Info:     info,
		Timeout:  DefaultPublishTimeout,
		metaJSON: meta,
	}
	p.Queue.OnConnect = func(*Queue) { p.publishMeta() }
	return p, nil
}

// Name implements framework.Named.
func (p *Publisher) Name() string {
	return "mqtt"
}

// SetFullScales updates the meta with full scales of the sensor.
func (p *Publisher) SetFullScales(fs ft.FullScales) error {
	p.metaLock.Lock()
	p.Info.Meta.FullScales = &fs
	meta, err := json.Marshal(&p.Info)
	if err == nil {
		p.metaJSON = meta
	}
	p.metaLock.Unlock()
	if err != nil {
		return err
	}
	if p.Queue.Client.IsConnected() {
		p.publishMeta()
	}
	return nil
}

// PublishReading implements l1.Publisher. Readings are published with
// QoS 0 without waiting.
func (p *Publisher) PublishReading(ctx context.Context, r *l1.Reading) error {
	payload, err := msgs.Encode(&msgs.Wrench{Node: p.Info.Ref.Name(), Time: r.Time, Wrench: r.Wrench})
	if err != nil {
		return err
	}
	p.Queue.Pub(NodeTopic(p.Info.Ref, TopicWrench), payload)
	return nil
}

// PublishState implements l1.Publisher. The state is retained.
func (p *Publisher) PublishState(ctx context.Context, state ft.State, sampling bool) error {
	payload, err := msgs.Encode(&msgs.State{Node: p.Info.Ref.Name(), State: state, Sampling: sampling})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()
	return WaitToken(ctx, p.Queue.PubWith(NodeTopic(p.Info.Ref, TopicState), payload, 1, true))
}

// Run implements framework.Runnable. The meta is cleared on exit.
func (p *Publisher) Run(ctx context.Context) error {
	if err := p.Queue.Connect(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	clearCtx, cancel := context.WithTimeout(context.Background(), p.timeout())
	defer cancel()
	if err := WaitToken(clearCtx, p.Queue.PubWith(NodeTopic(p.Info.Ref, TopicMeta), nil, 1, true)); err != nil {
		glog.Warningf("clear meta: %v", err)
	}
	p.Queue.Close()
	return ctx.Err()
}

func (p *Publisher) timeout() time.Duration {
	if p.Timeout <= 0 {
		return DefaultPublishTimeout
	}
	return p.Timeout
}

func (p *Publisher) publishMeta() {
	p.metaLock.Lock()
	meta := p.metaJSON
	p.metaLock.Unlock()
	p.Queue.PubWith(NodeTopic(p.Info.Ref, TopicMeta), meta, 1, true)
}
