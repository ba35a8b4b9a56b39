package ft

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/robotalks/ftlink/pkg/ft"
	"github.com/robotalks/ftlink/pkg/l1"
)

// StateResult is the printed state.
type StateResult struct {
	State    string `json:"state"`
	Sampling bool   `json:"sampling"`
}

func (r *StateResult) String() string {
	if r.Sampling {
		return r.State + " (sampling)"
	}
	return r.State
}

// ScalesResult is the printed full scales.
type ScalesResult struct {
	Forces  [3]uint16 `json:"forces"`
	Moments [3]uint16 `json:"moments"`
}

func newScalesResult(fs ft.FullScales) *ScalesResult {
	r := &ScalesResult{}
	copy(r.Forces[:], fs[:3])
	copy(r.Moments[:], fs[3:])
	return r
}

func (r *ScalesResult) String() string {
	return fmt.Sprintf("Fx=%dN Fy=%dN Fz=%dN Mx=%ddNm My=%ddNm Mz=%ddNm",
		r.Forces[0], r.Forces[1], r.Forces[2], r.Moments[0], r.Moments[1], r.Moments[2])
}

// ReadingResult is the printed reading.
type ReadingResult struct {
	Counter uint16                `json:"counter"`
	Raw     [ft.NumChannels]int16 `json:"raw"`
	Forces  [3]float64            `json:"forces"`
	Torques [3]float64            `json:"torques"`
}

func newReadingResult(r *l1.Reading) *ReadingResult {
	return &ReadingResult{
		Counter: r.Sample.FrameCounter,
		Raw:     r.Sample.Channels,
		Forces:  r.Wrench.Forces,
		Torques: r.Wrench.Torques,
	}
}

func (r *ReadingResult) String() string {
	return fmt.Sprintf("#%05d F=[%8.3f %8.3f %8.3f]N M=[%7.3f %7.3f %7.3f]Nm",
		r.Counter, r.Forces[0], r.Forces[1], r.Forces[2], r.Torques[0], r.Torques[1], r.Torques[2])
}

func parseUint16(args []string, index int, name string, def uint16) (uint16, error) {
	if index >= len(args) {
		return def, nil
	}
	n, err := strconv.ParseUint(strings.TrimSpace(args[index]), 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", name, err)
	}
	return uint16(n), nil
}

func parseUint32(args []string, index int, name string, def uint32) (uint32, error) {
	if index >= len(args) {
		return def, nil
	}
	n, err := strconv.ParseUint(strings.TrimSpace(args[index]), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", name, err)
	}
	return uint32(n), nil
}
