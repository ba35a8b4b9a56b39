package port

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		name string
		opts Options
		want Options
	}{
		{
			name: "defaults",
			want: Options{BaudRate: 115200, DataBits: 8, StopBits: 1, Parity: "N", ReadTimeout: DefaultReadTimeout},
		},
		{
			name: "explicit",
			opts: Options{BaudRate: 9600, DataBits: 7, StopBits: 2, Parity: "even", ReadTimeout: -1},
			want: Options{BaudRate: 9600, DataBits: 7, StopBits: 2, Parity: "E", ReadTimeout: -1},
		},
		{
			name: "negative baud",
			opts: Options{BaudRate: -5, Parity: " o ", ReadTimeout: time.Second},
			want: Options{BaudRate: 115200, DataBits: 8, StopBits: 1, Parity: "O", ReadTimeout: time.Second},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.opts.Normalize()
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeErrors(t *testing.T) {
	for _, opts := range []Options{
		{DataBits: 4},
		{DataBits: 9},
		{StopBits: 3},
		{Parity: "M"},
	} {
		_, err := opts.Normalize()
		require.Error(t, err, "%+v", opts)
		_, err = opts.Mode()
		require.Error(t, err)
		require.Equal(t, "invalid", opts.String())
	}
}

func TestMode(t *testing.T) {
	mode, err := Options{}.Mode()
	require.NoError(t, err)
	require.Equal(t, &serial.Mode{BaudRate: 115200, DataBits: 8, StopBits: serial.OneStopBit, Parity: serial.NoParity}, mode)

	mode, err = Options{BaudRate: 19200, StopBits: 2, Parity: "O"}.Mode()
	require.NoError(t, err)
	require.Equal(t, serial.TwoStopBits, mode.StopBits)
	require.Equal(t, serial.OddParity, mode.Parity)

	require.Equal(t, "115200/8N1", Options{}.String())
}
