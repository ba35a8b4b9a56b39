// Package ft provides shell commands operating a force-torque sensor.
package ft

import (
	"context"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/ftlink/pkg/cli/sh"
	"github.com/robotalks/ftlink/pkg/l1/sensor"
)

// Defaults of ft.start.
const (
	DefaultCutoff uint16 = 0
	DefaultPeriod uint32 = 1000
)

var (
	// StateCmd queries the sensor state.
	StateCmd = ishell.Cmd{
		Name:    "ft.state",
		Aliases: []string{"st"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, func(ctx context.Context, s *sensor.Sensor) (interface{}, error) {
				state, err := s.State(ctx)
				if err != nil {
					return nil, err
				}
				return &StateResult{State: state.String(), Sampling: s.Sampling()}, nil
			})
		}),
	}

	// ScalesCmd queries the full scales.
	ScalesCmd = ishell.Cmd{
		Name:    "ft.scales",
		Aliases: []string{"fs"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, func(ctx context.Context, s *sensor.Sensor) (interface{}, error) {
				fs, err := s.FullScales(ctx)
				if err != nil {
					return nil, err
				}
				return newScalesResult(fs), nil
			})
		}),
	}

	// StartCmd starts sampling.
	StartCmd = ishell.Cmd{
		Name:    "ft.start",
		Aliases: []string{"start"},
		Help:    "[CUTOFF(Hz)] [PERIOD(us)]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			cutoff, err := parseUint16(c.Args, 0, "CUTOFF", DefaultCutoff)
			if err != nil {
				c.Err(err)
				return
			}
			period, err := parseUint32(c.Args, 1, "PERIOD", DefaultPeriod)
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, func(ctx context.Context, s *sensor.Sensor) (interface{}, error) {
				return nil, s.Start(ctx, cutoff, period)
			})
		}),
	}

	// StopCmd stops sampling.
	StopCmd = ishell.Cmd{
		Name:    "ft.stop",
		Aliases: []string{"stop"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, func(ctx context.Context, s *sensor.Sensor) (interface{}, error) {
				return nil, s.Stop(ctx)
			})
		}),
	}

	// ZeroCmd zeroes the offsets.
	ZeroCmd = ishell.Cmd{
		Name:    "ft.zero",
		Aliases: []string{"zero"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, func(ctx context.Context, s *sensor.Sensor) (interface{}, error) {
				return nil, s.ZeroOffsets(ctx)
			})
		}),
	}

	// FilterCmd sets the filter cutoff.
	FilterCmd = ishell.Cmd{
		Name:    "ft.filter",
		Aliases: []string{"filter"},
		Help:    "CUTOFF(Hz), 0 disables the filter",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			cutoff, err := parseUint16(c.Args, 0, "CUTOFF", 0)
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, func(ctx context.Context, s *sensor.Sensor) (interface{}, error) {
				return nil, s.SetFilter(ctx, cutoff)
			})
		}),
	}

	// ResetCmd initializes the sensor.
	ResetCmd = ishell.Cmd{
		Name:    "ft.reset",
		Aliases: []string{"reset"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, func(ctx context.Context, s *sensor.Sensor) (interface{}, error) {
				return nil, s.Reset(ctx)
			})
		}),
	}

	// ReadCmd prints the latest reading.
	ReadCmd = ishell.Cmd{
		Name:    "ft.read",
		Aliases: []string{"r"},
		Help:    "[COUNT] [INTERVAL(ms)]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			count, err := parseUint32(c.Args, 0, "COUNT", 1)
			if err != nil {
				c.Err(err)
				return
			}
			interval, err := parseUint32(c.Args, 1, "INTERVAL", 100)
			if err != nil {
				c.Err(err)
				return
			}
			for i := uint32(0); i < count; i++ {
				if i > 0 {
					time.Sleep(time.Duration(interval) * time.Millisecond)
				}
				err := sh.DoCommand(c, func(ctx context.Context, s *sensor.Sensor) (interface{}, error) {
					r, err := s.Read()
					if err != nil {
						return nil, err
					}
					return newReadingResult(r), nil
				})
				if err != nil {
					return
				}
			}
		}),
	}
)

func init() {
	sh.AddCmds(
		&StateCmd,
		&ScalesCmd,
		&StartCmd,
		&StopCmd,
		&ZeroCmd,
		&FilterCmd,
		&ResetCmd,
		&ReadCmd,
	)
}
