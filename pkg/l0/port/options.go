// Package port opens the serial port carrying the link.
package port

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"go.bug.st/serial"
)

// Defaults
const (
	DefaultBaudRate    = 115200
	DefaultReadTimeout = 50 * time.Millisecond
)

// Options describes the serial connection parameters.
type Options struct {
	BaudRate int
	DataBits int
	StopBits int
	Parity   string
	// ReadTimeout makes Read return periodically so partial frames and
	// cancellation are detected. Negative to block forever.
	ReadTimeout time.Duration
}

// SetupFlags registers flags for opts, with the current values as defaults.
func (o *Options) SetupFlags(prefix string) {
	flag.IntVar(&o.BaudRate, prefix+"baud", o.BaudRate, "Serial baud rate.")
	flag.IntVar(&o.DataBits, prefix+"data-bits", o.DataBits, "Serial data bits (5-8).")
	flag.IntVar(&o.StopBits, prefix+"stop-bits", o.StopBits, "Serial stop bits (1 or 2).")
	flag.StringVar(&o.Parity, prefix+"parity", o.Parity, "Serial parity: N, E or O.")
	flag.DurationVar(&o.ReadTimeout, prefix+"read-timeout", o.ReadTimeout, "Serial read timeout.")
}

// Normalize validates the options and applies defaults for any unset values.
func (o Options) Normalize() (Options, error) {
	opts := o
	if opts.BaudRate <= 0 {
		opts.BaudRate = DefaultBaudRate
	}
	if opts.DataBits == 0 {
		opts.DataBits = 8
	}
	if opts.DataBits < 5 || opts.DataBits > 8 {
		return opts, fmt.Errorf("invalid data bits %d: must be between 5 and 8", opts.DataBits)
	}
	if opts.StopBits == 0 {
		opts.StopBits = 1
	}
	if opts.StopBits != 1 && opts.StopBits != 2 {
		return opts, fmt.Errorf("invalid stop bits %d: supported values are 1 or 2", opts.StopBits)
	}
	switch parity := strings.TrimSpace(strings.ToUpper(opts.Parity)); parity {
	case "", "N", "NONE":
		opts.Parity = "N"
	case "E", "EVEN":
		opts.Parity = "E"
	case "O", "ODD":
		opts.Parity = "O"
	default:
		return opts, fmt.Errorf("unsupported parity %q: expected N, E, or O", o.Parity)
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}
	return opts, nil
}

// Mode converts the options into serial.Mode.
func (o Options) Mode() (*serial.Mode, error) {
	opts, err := o.Normalize()
	if err != nil {
		return nil, err
	}
	mode := &serial.Mode{
		BaudRate: opts.BaudRate,
		DataBits: opts.DataBits,
		StopBits: serial.OneStopBit,
		Parity:   serial.NoParity,
	}
	if opts.StopBits == 2 {
		mode.StopBits = serial.TwoStopBits
	}
	switch opts.Parity {
	case "E":
		mode.Parity = serial.EvenParity
	case "O":
		mode.Parity = serial.OddParity
	}
	return mode, nil
}

// String formats the options like 115200/8N1.
func (o Options) String() string {
	opts, err := o.Normalize()
	if err != nil {
		return "invalid"
	}
	return fmt.Sprintf("%d/%d%s%d", opts.BaudRate, opts.DataBits, opts.Parity, opts.StopBits)
}

// Open opens the serial port at path.
func Open(path string, o Options) (serial.Port, error) {
	opts, err := o.Normalize()
	if err != nil {
		return nil, err
	}
	mode, err := opts.Mode()
	if err != nil {
		return nil, err
	}
	p, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if opts.ReadTimeout > 0 {
		if err := p.SetReadTimeout(opts.ReadTimeout); err != nil {
			p.Close()
			return nil, fmt.Errorf("set read timeout %s: %w", path, err)
		}
	}
	return p, nil
}

// List lists the serial ports on the system.
func List() ([]string, error) {
	return serial.GetPortsList()
}
