package comm

import (
	"errors"
	"fmt"
)

var (
	// ErrNoStart indicates no start delimiter was found.
	ErrNoStart = errors.New("no start delimiter")
	// ErrNoTerminator indicates the frame is not terminated within the input.
	ErrNoTerminator = errors.New("missing terminator")
	// ErrBadOpcode indicates the opcode characters are not ASCII digits.
	ErrBadOpcode = errors.New("malformed opcode")
	// ErrPayloadTooLarge indicates the payload exceeds MaxPayload.
	ErrPayloadTooLarge = errors.New("payload too large")
	// ErrInvalidOp indicates the opcode doesn't fit in two digits.
	ErrInvalidOp = errors.New("invalid opcode")
	// ErrNoReply indicates no reply received from peer before the command expired.
	ErrNoReply = errors.New("no reply")
	// ErrClosed indicates the client stopped running.
	ErrClosed = errors.New("closed")
)

// FramingError reports bytes which can't be decoded as a frame.
// The bytes are dropped and decoding resumes at the next start delimiter.
type FramingError struct {
	Reason error
	// Skipped is the number of bytes discarded.
	Skipped int
}

// Error implements error.
func (e *FramingError) Error() string {
	return fmt.Sprintf("framing error: %v (%d bytes dropped)", e.Reason, e.Skipped)
}

// Unwrap returns the reason.
func (e *FramingError) Unwrap() error {
	return e.Reason
}

// IsFramingError determines if err is (or wraps) a FramingError.
func IsFramingError(err error) bool {
	var fe *FramingError
	return errors.As(err, &fe)
}

// CommandError wraps a command sent without error but answered unexpectedly.
type CommandError struct {
	Op   Op
	Data []byte
}

// Error implements error.
func (e *CommandError) Error() string {
	return fmt.Sprintf("unexpected reply %s (%d bytes)", e.Op, len(e.Data))
}
