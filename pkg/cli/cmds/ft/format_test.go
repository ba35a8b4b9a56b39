package ft

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/ftlink/pkg/ft"
	"github.com/robotalks/ftlink/pkg/l1"
)

func TestParseArgs(t *testing.T) {
	args := []string{"100", "2000", "x", "70000"}
	n, err := parseUint16(args, 0, "CUTOFF", 5)
	require.NoError(t, err)
	require.Equal(t, uint16(100), n)
	n, err = parseUint16(args, 9, "CUTOFF", 5)
	require.NoError(t, err)
	require.Equal(t, uint16(5), n)
	_, err = parseUint16(args, 2, "CUTOFF", 5)
	require.Error(t, err)
	_, err = parseUint16(args, 3, "CUTOFF", 5)
	require.Error(t, err)

	p, err := parseUint32(args, 1, "PERIOD", 0)
	require.NoError(t, err)
	require.Equal(t, uint32(2000), p)
	p, err = parseUint32(args, 3, "PERIOD", 0)
	require.NoError(t, err)
	require.Equal(t, uint32(70000), p)
}

func TestResults(t *testing.T) {
	require.Equal(t, "READY (sampling)", (&StateResult{State: "READY", Sampling: true}).String())
	require.Equal(t, "Fx=100N Fy=100N Fz=200N Mx=50dNm My=50dNm Mz=60dNm",
		newScalesResult(ft.FullScales{100, 100, 200, 50, 50, 60}).String())

	fs := ft.FullScales{100, 100, 200, 50, 50, 60}
	s := ft.Sample{Channels: [ft.NumChannels]int16{16384, 0, -8192, 0, 0, 16384}, FrameCounter: 42}
	r := newReadingResult(&l1.Reading{Sample: s, Wrench: fs.Wrench(s)})
	require.Equal(t, "#00042 F=[ 100.000    0.000 -100.000]N M=[  0.000   0.000   6.000]Nm", r.String())
}
