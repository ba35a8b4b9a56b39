package comm

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrameEncode(t *testing.T) {
	testCases := []struct {
		name   string
		frame  Frame
		expect []byte
	}{
		{"no data", Frame{Op: OpGetState}, []byte("<06>")},
		{"ack", Frame{Op: OpAck, Data: []byte{0}}, []byte{'<', '0', '1', 0, '>'}},
		{"two digits", Frame{Op: OpBootUp}, []byte("<10>")},
		{"max op", Frame{Op: MaxOp}, []byte("<99>")},
		{"start", Frame{Op: OpStart, Data: []byte{0x64, 0x00, 0xd0, 0x07, 0x00, 0x00}},
			[]byte{'<', '0', '2', 0x64, 0x00, 0xd0, 0x07, 0x00, 0x00, '>'}},
		{"max data", Frame{Op: OpRead, Data: []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14}},
			[]byte{'<', '0', '9', 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, '>'}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, tc.frame.Bytes())

			var buf [MaxFrameLen]byte
			n, err := tc.frame.Encode(buf[:])
			require.NoError(t, err)
			require.Equal(t, len(tc.frame.Data)+4, n)
			require.Equal(t, tc.expect, buf[:n])

			var w bytes.Buffer
			written, err := tc.frame.WriteTo(&w)
			require.NoError(t, err)
			require.Equal(t, int64(len(tc.expect)), written)
			require.Equal(t, tc.expect, w.Bytes())
		})
	}
}

func TestFrameEncodeInvalid(t *testing.T) {
	var buf [MaxFrameLen]byte
	_, err := (&Frame{Op: 100}).Encode(buf[:])
	require.Equal(t, ErrInvalidOp, err)
	_, err = (&Frame{Op: OpRead, Data: make([]byte, MaxPayload+1)}).Encode(buf[:])
	require.Equal(t, ErrPayloadTooLarge, err)
	_, err = (&Frame{Op: OpAck, Data: []byte{0}}).Encode(buf[:4])
	require.Equal(t, io.ErrShortBuffer, err)
	require.Nil(t, (&Frame{Op: 100}).Bytes())
}

func TestDecode(t *testing.T) {
	testCases := []struct {
		name   string
		in     []byte
		expect *Frame
	}{
		{"no data", []byte("<06>"), &Frame{Op: OpGetState}},
		{"leading noise", []byte("xx\n<03>"), &Frame{Op: OpStop}},
		{"trailing bytes", []byte("<08>garbage"), &Frame{Op: OpReset}},
		{"start delimiter in data", []byte{'<', '0', '5', '<', 0, '>'}, &Frame{Op: OpSetFilter, Data: []byte{'<', 0}}},
		{"full payload", []byte{'<', '0', '9', 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, '>'},
			&Frame{Op: OpRead, Data: []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14}}},
		{"unknown op", []byte("<99>"), &Frame{Op: 99}},
		{"repeated start delimiter", []byte("<<06>"), &Frame{Op: OpGetState}},
		{"start delimiter in opcode", []byte("<0<03>"), &Frame{Op: OpStop}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := Decode(tc.in)
			require.NoError(t, err)
			require.True(t, tc.expect.Equal(f), "got %+v", f)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	testCases := []struct {
		name   string
		in     []byte
		reason error
	}{
		{"empty", nil, ErrNoStart},
		{"no start", []byte("06>"), ErrNoStart},
		{"no terminator", []byte("<06"), ErrNoTerminator},
		{"truncated opcode", []byte("<0"), ErrNoTerminator},
		{"terminator as opcode", []byte("<>"), ErrBadOpcode},
		{"letters", []byte("<ab>"), ErrBadOpcode},
		{"payload too large", append(append([]byte("<09"), make([]byte, MaxPayload+1)...), '>'), ErrPayloadTooLarge},
		{"payload too large unterminated", append([]byte("<09"), make([]byte, MaxPayload+1)...), ErrPayloadTooLarge},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := Decode(tc.in)
			require.Nil(t, f)
			require.Error(t, err)
			require.True(t, IsFramingError(err))
			require.ErrorIs(t, err, tc.reason)
		})
	}
}

func TestDecodeMatchesParser(t *testing.T) {
	inputs := [][]byte{
		[]byte("<06>"),
		[]byte("<<06>"),
		[]byte("<<<03>"),
		[]byte("<0<06>"),
		[]byte("xx<08>"),
		{'<', '0', '5', 0x64, 0, '>'},
		{'<', '0', '9', '<', '<', '>'},
		[]byte("<06"),
		[]byte("<0"),
		[]byte("<ab>"),
	}
	for _, in := range inputs {
		var p Parser
		var parsed *Frame
		for _, b := range in {
			if pr := p.Parse(b); pr.Frame != nil {
				parsed = pr.Frame
				break
			}
		}
		f, err := Decode(in)
		if parsed == nil {
			require.Error(t, err, "input %q", in)
			continue
		}
		require.NoError(t, err, "input %q", in)
		require.True(t, parsed.Equal(f), "input %q: parsed %+v, decoded %+v", in, parsed, f)
	}
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	for op := Op(0); op <= MaxOp; op++ {
		for size := 0; size <= MaxPayload; size++ {
			data := make([]byte, size)
			for i := range data {
				// any byte except the end delimiter
				data[i] = byte(int(op)*31+i*7) % EndDelim
			}
			in := (&Frame{Op: op, Data: data}).Bytes()
			f, err := Decode(in)
			require.NoError(t, err)
			require.Equal(t, in, f.Bytes())
		}
	}
}

func TestOp(t *testing.T) {
	require.Equal(t, "GET_FULL_SCALES", OpGetFullScales.String())
	require.Equal(t, "OP(42)", Op(42).String())
	for op := OpAck; op <= OpBootUp; op++ {
		require.True(t, op.IsKnown())
	}
	require.False(t, Op(0).IsKnown())
	require.False(t, Op(99).IsKnown())
	require.True(t, Op(99).IsValid())
	require.False(t, Op(100).IsValid())
}
