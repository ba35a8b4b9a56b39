package sim

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robotalks/ftlink/pkg/ft"
)

// Config defines the simulated sensor.
type Config struct {
	FullScales FullScalesValue
	// Amplitude of the synthetic load, as a fraction of full scale.
	Amplitude float64
	// Frequency (Hz) of the synthetic load, 0 for a constant load.
	Frequency float64
	// Noise is the peak raw noise added to each channel.
	Noise     int
	Connected bool
	// InitDelay simulates the time to initialize the sensor.
	InitDelay time.Duration
}

// Defaults
var (
	DefaultFullScales = ft.FullScales{100, 100, 200, 50, 50, 60}
)

// Defaults
const (
	DefaultAmplitude float64 = 0.25
	DefaultFrequency float64 = 0.5
)

var defaultConfig = Config{
	FullScales: FullScalesValue(DefaultFullScales),
	Amplitude:  DefaultAmplitude,
	Frequency:  DefaultFrequency,
	Connected:  true,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.Var(&defaultConfig.FullScales, "sim-full-scales", "Full scales of simulated sensor: Fx,Fy,Fz (N),Mx,My,Mz (dNm).")
	flag.Float64Var(&defaultConfig.Amplitude, "sim-amplitude", defaultConfig.Amplitude, "Amplitude of simulated load, fraction of full scale.")
	flag.Float64Var(&defaultConfig.Frequency, "sim-frequency", defaultConfig.Frequency, "Frequency (Hz) of simulated load.")
	flag.IntVar(&defaultConfig.Noise, "sim-noise", defaultConfig.Noise, "Peak noise in raw units.")
	flag.BoolVar(&defaultConfig.Connected, "sim-connected", defaultConfig.Connected, "Simulated sensor is connected.")
	flag.DurationVar(&defaultConfig.InitDelay, "sim-init-delay", defaultConfig.InitDelay, "Time to initialize simulated sensor.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates the default configuration.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewController creates the Controller.
func (c *Config) NewController() *Controller {
	return NewController(*c)
}

// FullScalesValue is ft.FullScales as a flag.Value.
type FullScalesValue ft.FullScales

// String implements flag.Value.
func (v *FullScalesValue) String() string {
	strs := make([]string, len(v))
	for i, n := range v {
		strs[i] = strconv.Itoa(int(n))
	}
	return strings.Join(strs, ",")
}

// Set implements flag.Value.
func (v *FullScalesValue) Set(s string) error {
	strs := strings.Split(s, ",")
	if len(strs) != ft.NumChannels {
		return fmt.Errorf("expect %d values: %q", ft.NumChannels, s)
	}
	var fs FullScalesValue
	for i, str := range strs {
		n, err := strconv.ParseUint(strings.TrimSpace(str), 10, 16)
		if err != nil {
			return fmt.Errorf("invalid full scale %q: %w", str, err)
		}
		fs[i] = uint16(n)
	}
	*v = fs
	return nil
}
