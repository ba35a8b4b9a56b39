package comm

import "encoding/binary"

// ReadUint16 returns the little-endian 16-bit field at offset, or 0 when
// the payload is too short to contain it.
func ReadUint16(data []byte, offset int) uint16 {
	if offset < 0 || len(data) < offset+2 {
		return 0
	}
	return binary.LittleEndian.Uint16(data[offset:])
}

// ReadUint32 returns the little-endian 32-bit field at offset, or 0 when
// the payload is too short to contain it.
func ReadUint32(data []byte, offset int) uint32 {
	if offset < 0 || len(data) < offset+4 {
		return 0
	}
	return binary.LittleEndian.Uint32(data[offset:])
}
