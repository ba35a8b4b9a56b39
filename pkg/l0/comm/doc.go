// Package comm provides L0 protocol support.
package comm

// L0 protocol is communicated between the sensor node firmware and the host
// over a peer-to-peer serial channel. Each frame is
//
//	'<' D1 D2 PAYLOAD '>'
//
// where D1 D2 are two ASCII digits of the opcode (00-99) and PAYLOAD is
// 0 to 14 raw bytes. There is no escaping and no checksum: a payload byte
// equal to '>' terminates the frame early. Multi-byte payload fields are
// little-endian.
//
// Producer: sensor node (replies and sample pushes), host (commands)
// Consumer: both
