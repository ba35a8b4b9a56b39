package msgs

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang/protobuf/jsonpb"
	"github.com/golang/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/robotalks/ftlink/pkg/ft"
)

// Message kinds.
const (
	KindWrench = "wrench"
	KindState  = "state"
)

// Message is a message which can be encoded.
type Message interface {
	Kind() string
	Fields() map[string]interface{}
}

// Wrench is a reading of a node.
type Wrench struct {
	Node string
	Time time.Time
	ft.Wrench
}

// Kind implements Message.
func (m *Wrench) Kind() string { return KindWrench }

// Fields implements Message.
func (m *Wrench) Fields() map[string]interface{} {
	return map[string]interface{}{
		"node":    m.Node,
		"time":    m.Time.UTC().Format(time.RFC3339Nano),
		"counter": float64(m.FrameCounter),
		"fx":      m.Forces[0],
		"fy":      m.Forces[1],
		"fz":      m.Forces[2],
		"mx":      m.Torques[0],
		"my":      m.Torques[1],
		"mz":      m.Torques[2],
	}
}

// State is the state of a node.
type State struct {
	Node     string
	State    ft.State
	Sampling bool
}

// Kind implements Message.
func (m *State) Kind() string { return KindState }

// Fields implements Message.
func (m *State) Fields() map[string]interface{} {
	return map[string]interface{}{
		"node":     m.Node,
		"state":    m.State.String(),
		"sampling": m.Sampling,
	}
}

var (
	// ErrNoKind indicates the envelope has no kind.
	ErrNoKind = errors.New("message kind missing")
)

// ErrUnknownKind indicates the kind is not supported.
type ErrUnknownKind struct {
	Kind string
}

// Error implements error.
func (e *ErrUnknownKind) Error() string {
	return fmt.Sprintf("unknown message kind %q", e.Kind)
}

// Envelope wraps a message with its kind.
func Envelope(m Message) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"kind": m.Kind(),
		"body": m.Fields(),
	})
}

// Encode encodes a message in protobuf binary.
func Encode(m Message) ([]byte, error) {
	s, err := Envelope(m)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

var jsonMarshaler = jsonpb.Marshaler{}

// EncodeJSON encodes a message in JSON.
func EncodeJSON(m Message) ([]byte, error) {
	s, err := Envelope(m)
	if err != nil {
		return nil, err
	}
	str, err := jsonMarshaler.MarshalToString(s)
	if err != nil {
		return nil, err
	}
	return []byte(str), nil
}

// Decode decodes a message encoded by Encode.
func Decode(b []byte) (Message, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	kind := s.Fields["kind"].GetStringValue()
	if kind == "" {
		return nil, ErrNoKind
	}
	body := s.Fields["body"].GetStructValue().AsMap()
	switch kind {
	case KindWrench:
		return decodeWrench(body)
	case KindState:
		return decodeState(body)
	}
	return nil, &ErrUnknownKind{Kind: kind}
}

func decodeWrench(body map[string]interface{}) (*Wrench, error) {
	m := &Wrench{Node: stringField(body, "node")}
	if str := stringField(body, "time"); str != "" {
		t, err := time.Parse(time.RFC3339Nano, str)
		if err != nil {
			return nil, fmt.Errorf("invalid time: %w", err)
		}
		m.Time = t
	}
	m.FrameCounter = uint16(numberField(body, "counter"))
	for i, key := range []string{"fx", "fy", "fz"} {
		m.Forces[i] = numberField(body, key)
	}
	for i, key := range []string{"mx", "my", "mz"} {
		m.Torques[i] = numberField(body, key)
	}
	return m, nil
}

func decodeState(body map[string]interface{}) (*State, error) {
	m := &State{Node: stringField(body, "node"), State: ft.StateNotInitialized}
	if stringField(body, "state") == ft.StateReady.String() {
		m.State = ft.StateReady
	}
	m.Sampling, _ = body["sampling"].(bool)
	return m, nil
}

func stringField(body map[string]interface{}, key string) string {
	str, _ := body[key].(string)
	return str
}

func numberField(body map[string]interface{}, key string) float64 {
	n, _ := body[key].(float64)
	return n
}
