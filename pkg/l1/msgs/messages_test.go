package msgs

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/golang/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/ftlink/pkg/ft"
)

func TestWrench(t *testing.T) {
	m := &Wrench{
		Node: "ft/a",
		Time: time.Date(2026, 1, 2, 3, 4, 5, 600, time.UTC),
		Wrench: ft.Wrench{
			Forces:       [3]float64{1.5, -2, 3},
			Torques:      [3]float64{0.25, 0, -0.5},
			FrameCounter: 1234,
		},
	}
	b, err := Encode(m)
	require.NoError(t, err)
	decoded, err := Decode(b)
	require.NoError(t, err)
	require.Equal(t, m, decoded)
}

func TestState(t *testing.T) {
	for _, m := range []*State{
		{Node: "ft/a", State: ft.StateReady, Sampling: true},
		{Node: "ft/b", State: ft.StateNotInitialized},
	} {
		b, err := Encode(m)
		require.NoError(t, err)
		decoded, err := Decode(b)
		require.NoError(t, err)
		require.Equal(t, m, decoded)
	}
}

func TestEncodeJSON(t *testing.T) {
	b, err := EncodeJSON(&State{Node: "ft/a", State: ft.StateReady})
	require.NoError(t, err)
	var v map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &v))
	require.Equal(t, "state", v["kind"])
	require.Equal(t, map[string]interface{}{
		"node":     "ft/a",
		"state":    "READY",
		"sampling": false,
	}, v["body"])
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode([]byte{0xff})
	require.Error(t, err)

	s, err := structpb.NewStruct(map[string]interface{}{"body": map[string]interface{}{}})
	require.NoError(t, err)
	b, err := proto.Marshal(s)
	require.NoError(t, err)
	_, err = Decode(b)
	require.Equal(t, ErrNoKind, err)

	s, err = structpb.NewStruct(map[string]interface{}{"kind": "joystick"})
	require.NoError(t, err)
	b, err = proto.Marshal(s)
	require.NoError(t, err)
	_, err = Decode(b)
	require.IsType(t, &ErrUnknownKind{}, err)
}
