// Package node implements the sensor node side of the link: it serves
// commands received from the host and pushes samples while sampling.
package node

import (
	"context"

	"github.com/robotalks/ftlink/pkg/ft"
)

// Controller is the sensor controller driven by the node.
//
// Calls taking a context may block on the sensor, the node bounds them
// with a deadline. StartAsync calls fn from a goroutine owned by the
// controller until Stop returns: Stop is synchronous and fn must never be
// called after it returns.
type Controller interface {
	State() ft.State
	Initialize(ctx context.Context) error
	Calibrate(ctx context.Context) error
	SetFilter(cutoff uint16) error
	FullScales(ctx context.Context) (ft.FullScales, error)
	StartAsync(fn ft.SampleFunc, cutoff uint16, period uint32) error
	Stop() error
}

// Detector is optionally implemented by a Controller to report whether a
// sensor is attached.
type Detector interface {
	Connected() bool
}
