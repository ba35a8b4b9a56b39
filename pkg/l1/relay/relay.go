// Package relay keeps a node sampling and forwards its readings and state
// to publishers.
package relay

import (
	"context"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/ftlink/pkg/ft"
	"github.com/robotalks/ftlink/pkg/l1"
	"github.com/robotalks/ftlink/pkg/l1/sensor"
)

// Defaults
const (
	DefaultPeriod        uint32 = 10000
	DefaultStateInterval        = time.Second
	DefaultCallTimeout          = 5 * time.Second
)

// MetaUpdater receives the full scales once known.
type MetaUpdater interface {
	SetFullScales(ft.FullScales) error
}

// Relay starts sampling on a Sensor, restarts it after the node boots,
// and publishes readings and periodic state.
type Relay struct {
	Sensor    *sensor.Sensor
	Publisher l1.Publisher
	Meta      MetaUpdater

	Cutoff uint16
	Period uint32
	// StateInterval is the interval to publish state.
	StateInterval time.Duration
	CallTimeout   time.Duration

	bootCh chan struct{}
}

// New creates a Relay and registers handlers on the Sensor.
func New(s *sensor.Sensor, pub l1.Publisher) *Relay {
	r := &Relay{
		Sensor:        s,
		Publisher:     pub,
		Period:        DefaultPeriod,
		StateInterval: DefaultStateInterval,
		CallTimeout:   DefaultCallTimeout,
		bootCh:        make(chan struct{}, 1),
	}
	s.OnReading(r.publishReading)
	s.OnBootUp(func() {
		select {
		case r.bootCh <- struct{}{}:
		default:
		}
	})
	return r
}

// Name implements framework.Named.
func (r *Relay) Name() string {
	return "relay"
}

// Run implements framework.Runnable. Sampling is stopped on exit.
func (r *Relay) Run(ctx context.Context) error {
	if err := r.setup(ctx); err != nil {
		glog.Warningf("start sampling: %v", err)
	}
	interval := r.StateInterval
	if interval <= 0 {
		interval = DefaultStateInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.stop()
			return ctx.Err()
		case <-r.bootCh:
			glog.Info("node rebooted, restart sampling")
			if err := r.setup(ctx); err != nil {
				glog.Warningf("start sampling: %v", err)
			}
		case <-ticker.C:
			if !r.Sensor.Sampling() {
				if err := r.setup(ctx); err != nil {
					glog.V(2).Infof("start sampling: %v", err)
				}
			}
			r.publishState(ctx)
		}
	}
}

func (r *Relay) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := r.CallTimeout
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *Relay) setup(ctx context.Context) error {
	ctx, cancel := r.callContext(ctx)
	defer cancel()
	fs, err := r.Sensor.FullScales(ctx)
	if err != nil {
		return err
	}
	if fs.IsZero() {
		return sensor.ErrNoData
	}
	if r.Meta != nil {
		if err := r.Meta.SetFullScales(fs); err != nil {
			glog.Warningf("update meta: %v", err)
		}
	}
	if err := r.Sensor.Start(ctx, r.Cutoff, r.Period); err != nil {
		return err
	}
	glog.Infof("sampling started: cutoff %dHz, period %dus", r.Cutoff, r.Period)
	r.publishState(ctx)
	return nil
}

func (r *Relay) stop() {
	ctx, cancel := r.callContext(context.Background())
	defer cancel()
	if err := r.Sensor.Stop(ctx); err != nil {
		glog.Warningf("stop sampling: %v", err)
	}
}

func (r *Relay) publishState(ctx context.Context) {
	ctx, cancel := r.callContext(ctx)
	defer cancel()
	state, err := r.Sensor.State(ctx)
	if err != nil {
		glog.V(2).Infof("query state: %v", err)
	}
	if err := r.Publisher.PublishState(ctx, state, r.Sensor.Sampling()); err != nil {
		glog.Warningf("publish state: %v", err)
	}
}

func (r *Relay) publishReading(reading *l1.Reading) {
	if err := r.Publisher.PublishReading(context.Background(), reading); err != nil {
		glog.V(3).Infof("publish reading: %v", err)
	}
}
