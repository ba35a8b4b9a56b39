// Package ft defines the data exchanged with a six-axis force-torque sensor.
package ft

import (
	"encoding/binary"
	"errors"
	"strconv"
)

// State is the controller state reported in every ACK.
type State byte

// States, using the values carried on the wire.
const (
	StateReady          State = 0x00
	StateNotInitialized State = 0x01
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateReady:
		return "READY"
	case StateNotInitialized:
		return "NOT_INITIALIZED"
	}
	return "STATE(" + strconv.Itoa(int(s)) + ")"
}

// StateFromByte converts the wire byte. Any value other than READY means
// the sensor is not usable.
func StateFromByte(b byte) State {
	if State(b) == StateReady {
		return StateReady
	}
	return StateNotInitialized
}

// Channel indexes the six axes.
type Channel int

// Channels.
const (
	Fx Channel = iota
	Fy
	Fz
	Mx
	My
	Mz
)

// Sizes of the encoded data.
const (
	NumChannels   = 6
	SampleLen     = NumChannels*2 + 2
	FullScalesLen = NumChannels * 2
)

var (
	// ErrSampleSize indicates the sample payload is not SampleLen bytes.
	ErrSampleSize = errors.New("sample must be 14 bytes")
	// ErrFullScalesSize indicates the full scales payload is too short.
	ErrFullScalesSize = errors.New("full scales must be 12 bytes")
)

var channelNames = [NumChannels]string{"fx", "fy", "fz", "mx", "my", "mz"}

// String implements fmt.Stringer.
func (c Channel) String() string {
	if c >= 0 && int(c) < NumChannels {
		return channelNames[c]
	}
	return "ch" + strconv.Itoa(int(c))
}

// Sample is one reading of all channels, in raw sensor units.
type Sample struct {
	Channels     [NumChannels]int16
	FrameCounter uint16
}

// SampleFunc receives samples produced asynchronously.
type SampleFunc func(Sample)

// PutBytes encodes the sample into b which must hold SampleLen bytes.
func (s *Sample) PutBytes(b []byte) {
	for i, v := range s.Channels {
		binary.LittleEndian.PutUint16(b[i*2:], uint16(v))
	}
	binary.LittleEndian.PutUint16(b[NumChannels*2:], s.FrameCounter)
}

// Bytes encodes the sample.
func (s Sample) Bytes() []byte {
	b := make([]byte, SampleLen)
	s.PutBytes(b)
	return b
}

// DecodeSample decodes a sample payload.
func DecodeSample(b []byte) (s Sample, err error) {
	if len(b) != SampleLen {
		return s, ErrSampleSize
	}
	for i := range s.Channels {
		s.Channels[i] = int16(binary.LittleEndian.Uint16(b[i*2:]))
	}
	s.FrameCounter = binary.LittleEndian.Uint16(b[NumChannels*2:])
	return s, nil
}

// FullScales is the per-channel full scale: forces in N, moments in dN·m.
type FullScales [NumChannels]uint16

// Bytes encodes the full scales.
func (f FullScales) Bytes() []byte {
	b := make([]byte, FullScalesLen)
	for i, v := range f {
		binary.LittleEndian.PutUint16(b[i*2:], v)
	}
	return b
}

// DecodeFullScales decodes full scales from the first 12 bytes of b.
func DecodeFullScales(b []byte) (f FullScales, err error) {
	if len(b) < FullScalesLen {
		return f, ErrFullScalesSize
	}
	for i := range f {
		f[i] = binary.LittleEndian.Uint16(b[i*2:])
	}
	return f, nil
}

// IsZero indicates no full scale is known.
func (f FullScales) IsZero() bool {
	return f == FullScales{}
}

// RawFullScale is the raw value corresponding to the full scale.
const RawFullScale = 16384

// Wrench is a sample converted to physical units.
type Wrench struct {
	// Forces in N.
	Forces [3]float64
	// Torques in N·m.
	Torques [3]float64

	FrameCounter uint16
}

// Wrench converts a raw sample.
func (f FullScales) Wrench(s Sample) (w Wrench) {
	for i := 0; i < 3; i++ {
		w.Forces[i] = float64(s.Channels[i]) * float64(f[i]) / RawFullScale
		w.Torques[i] = float64(s.Channels[i+3]) * float64(f[i+3]) / RawFullScale / 10
	}
	w.FrameCounter = s.FrameCounter
	return
}
