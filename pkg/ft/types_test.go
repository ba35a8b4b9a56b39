package ft

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSampleBytes(t *testing.T) {
	s := Sample{Channels: [NumChannels]int16{1, -1, 0x1234, 0, -16384, 16384}, FrameCounter: 0xbeef}
	b := s.Bytes()
	require.Equal(t, []byte{
		0x01, 0x00,
		0xff, 0xff,
		0x34, 0x12,
		0x00, 0x00,
		0x00, 0xc0,
		0x00, 0x40,
		0xef, 0xbe,
	}, b)
	decoded, err := DecodeSample(b)
	require.NoError(t, err)
	require.Equal(t, s, decoded)

	_, err = DecodeSample(b[:13])
	require.Equal(t, ErrSampleSize, err)
}

func TestFullScales(t *testing.T) {
	fs := FullScales{100, 100, 200, 50, 50, 60}
	b := fs.Bytes()
	require.Len(t, b, FullScalesLen)
	decoded, err := DecodeFullScales(append(b, 0xff))
	require.NoError(t, err)
	require.Equal(t, fs, decoded)
	require.False(t, fs.IsZero())
	require.True(t, FullScales{}.IsZero())

	_, err = DecodeFullScales(b[:11])
	require.Equal(t, ErrFullScalesSize, err)
}

func TestWrench(t *testing.T) {
	fs := FullScales{100, 100, 200, 50, 50, 60}
	w := fs.Wrench(Sample{Channels: [NumChannels]int16{16384, -8192, 4096, 16384, 0, -16384}, FrameCounter: 7})
	require.InDelta(t, 100.0, w.Forces[0], 1e-9)
	require.InDelta(t, -50.0, w.Forces[1], 1e-9)
	require.InDelta(t, 50.0, w.Forces[2], 1e-9)
	require.InDelta(t, 5.0, w.Torques[0], 1e-9)
	require.InDelta(t, 0.0, w.Torques[1], 1e-9)
	require.InDelta(t, -6.0, w.Torques[2], 1e-9)
	require.Equal(t, uint16(7), w.FrameCounter)
}

func TestState(t *testing.T) {
	require.Equal(t, StateReady, StateFromByte(0))
	require.Equal(t, StateNotInitialized, StateFromByte(1))
	require.Equal(t, StateNotInitialized, StateFromByte(7))
	require.Equal(t, "READY", StateReady.String())
	require.Equal(t, "fz", Fz.String())
}
