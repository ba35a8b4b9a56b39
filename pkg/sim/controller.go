// Package sim provides a simulated force-torque sensor controller.
package sim

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/ftlink/pkg/framework"
	"github.com/robotalks/ftlink/pkg/ft"
)

var (
	// ErrNotConnected indicates the simulated sensor is disconnected.
	ErrNotConnected = errors.New("sensor not connected")
	// ErrNotInitialized indicates the sensor must be reset first.
	ErrNotInitialized = errors.New("sensor not initialized")
)

// Sampling periods in µs.
const (
	DefaultPeriod uint32 = 10000
	MinPeriod     uint32 = 100
)

// Controller simulates a sensor controller. It implements node.Controller
// and node.Detector.
type Controller struct {
	Config Config
	Clock  framework.TimeSource

	lock    sync.Mutex
	state   ft.State
	epoch   time.Time
	last    time.Time
	offsets [ft.NumChannels]float64
	filter  lowPass
	counter uint16
	rnd     *rand.Rand

	stopCh  chan struct{}
	stopped chan struct{}
}

// NewController creates a Controller, not initialized.
func NewController(conf Config) *Controller {
	return &Controller{
		Config: conf,
		Clock:  framework.SystemClock,
		state:  ft.StateNotInitialized,
		rnd:    rand.New(rand.NewSource(1)),
	}
}

// Connected implements node.Detector.
func (c *Controller) Connected() bool {
	return c.Config.Connected
}

// State implements node.Controller.
func (c *Controller) State() ft.State {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.state
}

// Initialize implements node.Controller.
func (c *Controller) Initialize(ctx context.Context) error {
	if !c.Config.Connected {
		return ErrNotConnected
	}
	if d := c.Config.InitDelay; d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	c.state = ft.StateReady
	c.epoch = c.Clock.Time()
	c.last = time.Time{}
	c.offsets = [ft.NumChannels]float64{}
	c.filter.reset(0)
	c.counter = 0
	glog.Info("sensor initialized")
	return nil
}

// Calibrate implements node.Controller. The current load becomes the
// offsets.
func (c *Controller) Calibrate(ctx context.Context) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.state != ft.StateReady {
		return ErrNotInitialized
	}
	t := c.Clock.Time().Sub(c.epoch).Seconds()
	for i := range c.offsets {
		c.offsets[i] = c.Config.load(i, t)
	}
	glog.V(2).Infof("offsets %v", c.offsets)
	return nil
}

// SetFilter implements node.Controller. 0 disables the filter.
func (c *Controller) SetFilter(cutoff uint16) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.state != ft.StateReady {
		return ErrNotInitialized
	}
	c.filter.reset(cutoff)
	return nil
}

// FullScales implements node.Controller.
func (c *Controller) FullScales(ctx context.Context) (ft.FullScales, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.state != ft.StateReady {
		return ft.FullScales{}, ErrNotInitialized
	}
	return ft.FullScales(c.Config.FullScales), nil
}

// Sample takes a sample at the current time.
func (c *Controller) Sample() ft.Sample {
	c.lock.Lock()
	defer c.lock.Unlock()
	now := c.Clock.Time()
	t := now.Sub(c.epoch).Seconds()
	var x [ft.NumChannels]float64
	for i := range x {
		x[i] = c.Config.load(i, t) - c.offsets[i]
		if n := c.Config.Noise; n > 0 {
			x[i] += float64(c.rnd.Intn(2*n+1) - n)
		}
	}
	var dt time.Duration
	if !c.last.IsZero() {
		dt = now.Sub(c.last)
	}
	c.last = now
	y := c.filter.apply(x, dt)
	s := ft.Sample{FrameCounter: c.counter}
	for i, v := range y {
		s.Channels[i] = clampRaw(v)
	}
	c.counter++
	return s
}

// StartAsync implements node.Controller. Samples are taken every period
// µs until Stop.
func (c *Controller) StartAsync(fn ft.SampleFunc, cutoff uint16, period uint32) error {
	c.Stop()
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.state != ft.StateReady {
		return ErrNotInitialized
	}
	c.filter.reset(cutoff)
	if period == 0 {
		period = DefaultPeriod
	} else if period < MinPeriod {
		period = MinPeriod
	}
	c.stopCh, c.stopped = make(chan struct{}), make(chan struct{})
	go c.run(fn, time.Duration(period)*time.Microsecond, c.stopCh, c.stopped)
	return nil
}

// Stop implements node.Controller. fn passed to StartAsync is not called
// after Stop returns.
func (c *Controller) Stop() error {
	c.lock.Lock()
	stopCh, stopped := c.stopCh, c.stopped
	c.stopCh, c.stopped = nil, nil
	c.lock.Unlock()
	if stopCh != nil {
		close(stopCh)
		<-stopped
	}
	return nil
}

func (c *Controller) run(fn ft.SampleFunc, period time.Duration, stopCh, stopped chan struct{}) {
	defer close(stopped)
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
		}
		select {
		case <-stopCh:
			return
		default:
			fn(c.Sample())
		}
	}
}
