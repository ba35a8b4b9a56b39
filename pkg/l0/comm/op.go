package comm

import "strconv"

// Op is the opcode of a frame.
type Op byte

// Opcodes.
const (
	OpAck           Op = 1
	OpStart         Op = 2
	OpStop          Op = 3
	OpZeroOffsets   Op = 4
	OpSetFilter     Op = 5
	OpGetState      Op = 6
	OpGetFullScales Op = 7
	OpReset         Op = 8
	OpRead          Op = 9
	OpBootUp        Op = 10
)

// MaxOp is the largest opcode representable with two digits.
const MaxOp Op = 99

var opNames = map[Op]string{
	OpAck:           "ACK",
	OpStart:         "START",
	OpStop:          "STOP",
	OpZeroOffsets:   "ZERO_OFFSETS",
	OpSetFilter:     "SET_FILTER",
	OpGetState:      "GET_STATE",
	OpGetFullScales: "GET_FULL_SCALES",
	OpReset:         "RESET",
	OpRead:          "READ",
	OpBootUp:        "BOOTUP",
}

// IsKnown indicates the opcode is one of the defined opcodes.
func (o Op) IsKnown() bool {
	_, ok := opNames[o]
	return ok
}

// IsValid indicates the opcode fits in two digits.
func (o Op) IsValid() bool {
	return o <= MaxOp
}

// String implements fmt.Stringer.
func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return "OP(" + strconv.Itoa(int(o)) + ")"
}
