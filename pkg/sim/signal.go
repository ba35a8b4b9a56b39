package sim

import (
	"math"
	"time"

	"github.com/robotalks/ftlink/pkg/ft"
)

// load computes the raw synthetic load of a channel at t seconds after
// initialization. Each channel is shifted by 60 degrees.
func (c *Config) load(ch int, t float64) float64 {
	phase := float64(ch) * math.Pi / 3
	return c.Amplitude * ft.RawFullScale * math.Sin(2*math.Pi*c.Frequency*t+phase)
}

// lowPass is a first order low pass filter.
type lowPass struct {
	cutoff uint16
	primed bool
	y      [ft.NumChannels]float64
}

func (f *lowPass) reset(cutoff uint16) {
	f.cutoff, f.primed = cutoff, false
}

func (f *lowPass) apply(x [ft.NumChannels]float64, dt time.Duration) [ft.NumChannels]float64 {
	if f.cutoff == 0 || !f.primed || dt <= 0 {
		f.y, f.primed = x, true
		return f.y
	}
	alpha := 1 - math.Exp(-2*math.Pi*float64(f.cutoff)*dt.Seconds())
	for i := range f.y {
		f.y[i] += alpha * (x[i] - f.y[i])
	}
	return f.y
}

func clampRaw(v float64) int16 {
	v = math.Round(v)
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
