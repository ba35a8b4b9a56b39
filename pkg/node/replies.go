package node

import (
	"github.com/robotalks/ftlink/pkg/ft"
	"github.com/robotalks/ftlink/pkg/l0/comm"
)

// stateByte maps a state to the ACK payload byte.
func stateByte(state ft.State) byte {
	if state == ft.StateReady {
		return byte(ft.StateReady)
	}
	return byte(ft.StateNotInitialized)
}

// BuildAck builds the ACK frame carrying the state.
func BuildAck(state ft.State) *comm.Frame {
	return comm.NewFrame(comm.OpAck, stateByte(state))
}

// BuildFullScalesAck builds the ACK frame replying GET_FULL_SCALES.
// The payload is always 13 bytes.
func BuildFullScalesAck(state ft.State, fs ft.FullScales) *comm.Frame {
	data := make([]byte, 1, 1+ft.FullScalesLen)
	data[0] = stateByte(state)
	return &comm.Frame{Op: comm.OpAck, Data: append(data, fs.Bytes()...)}
}

// BuildRead builds the frame pushing a sample.
func BuildRead(s ft.Sample) *comm.Frame {
	return &comm.Frame{Op: comm.OpRead, Data: s.Bytes()}
}
