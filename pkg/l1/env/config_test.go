package env

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/ftlink/pkg/l1"
)

func TestApplyEnv(t *testing.T) {
	vars := map[string]string{
		EnvSerialPort: "/dev/ttyACM1",
		EnvBaudRate:   "57600",
		EnvMQTTURL:    "mqtt://broker:1883/lab/",
		EnvNodeID:     "left-wrist",
	}
	conf := Config{Info: l1.NodeInfo{Ref: l1.NodeRef{Type: l1.DefaultNodeType}}}
	require.NoError(t, applyEnv(&conf, func(key string) string { return vars[key] }))
	require.Equal(t, "/dev/ttyACM1", conf.SerialPort)
	require.Equal(t, 57600, conf.Port.BaudRate)
	require.Equal(t, "mqtt://broker:1883/lab/", conf.MQTTBrokerURL)
	require.Equal(t, "ft/left-wrist", conf.Info.Ref.Name())

	vars[EnvBaudRate] = "fast"
	require.Error(t, applyEnv(&conf, func(key string) string { return vars[key] }))
}

func TestApplyEnvDefaultID(t *testing.T) {
	conf := Config{}
	require.NoError(t, applyEnv(&conf, func(string) string { return "" }))
	require.NotEmpty(t, conf.Info.Ref.ID)
}

func TestNewConfig(t *testing.T) {
	conf := NewConfig()
	require.NotSame(t, Default(), conf)
	require.Equal(t, l1.DefaultNodeType, conf.Info.Ref.Type)
}
