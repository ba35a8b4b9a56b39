// Package msgs provides the messages published about sensor nodes.
//
// Messages are carried in a protobuf Struct envelope:
//
//	{"kind": "wrench", "body": {...}}
//
// encoded in protobuf binary over MQTT and in JSON over websocket.
package msgs
