// Package env provides the common configuration of binaries: node
// identity, serial port and MQTT broker, from flags and environment.
package env

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"go.bug.st/serial"

	"github.com/robotalks/ftlink/pkg/l0/port"
	"github.com/robotalks/ftlink/pkg/l1"
	"github.com/robotalks/ftlink/pkg/l1/comm/mqtt"
)

// Config provides common options to setup a node or a host.
type Config struct {
	Info l1.NodeInfo

	// SerialPort is the path of the serial port.
	SerialPort string
	Port       port.Options

	// MQTTBrokerURL specifies the MQTT broker to use.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
}

// Environment variables overriding defaults.
const (
	EnvSerialPort = "FT_SERIAL_PORT"
	EnvBaudRate   = "FT_BAUD_RATE"
	EnvMQTTURL    = "FT_MQTT_URL"
	EnvNodeID     = "FT_NODE_ID"
)

var defaultConfig = Config{
	Info: l1.NodeInfo{
		Ref: l1.NodeRef{Type: l1.DefaultNodeType},
	},
	SerialPort:    "/dev/ttyUSB0",
	Port:          port.Options{BaudRate: port.DefaultBaudRate, ReadTimeout: port.DefaultReadTimeout},
	MQTTBrokerURL: "mqtt://localhost:1883/ftlink/",
}

func init() {
	if err := applyEnv(&defaultConfig, os.Getenv); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

func applyEnv(conf *Config, getenv func(string) string) error {
	if val := getenv(EnvSerialPort); val != "" {
		conf.SerialPort = val
	}
	if val := getenv(EnvMQTTURL); val != "" {
		conf.MQTTBrokerURL = val
	}
	if val := getenv(EnvNodeID); val != "" {
		conf.Info.Ref.ID = val
	} else if conf.Info.Ref.ID == "" {
		conf.Info.Ref.ID = MachineID()
	}
	if val := getenv(EnvBaudRate); val != "" {
		baud, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvBaudRate, val, err)
		}
		conf.Port.BaudRate = baud
	}
	return nil
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Info.Ref.ID, "id", defaultConfig.Info.Ref.ID, "Node ID")
	flag.StringVar(&defaultConfig.Info.Meta.Description, "desc", defaultConfig.Info.Meta.Description, "Node description")
	flag.StringVar(&defaultConfig.SerialPort, "port", defaultConfig.SerialPort, "Serial port")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL, empty to disable")
	defaultConfig.Port.SetupFlags("")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// OpenPort opens the serial port.
func (c *Config) OpenPort() (serial.Port, error) {
	return port.Open(c.SerialPort, c.Port)
}

// NewPublisher creates the MQTT publisher of the node.
func (c *Config) NewPublisher() (*mqtt.Publisher, error) {
	if !c.Info.Ref.IsValid() {
		return nil, fmt.Errorf("node type and id must be specified")
	}
	if c.Info.Meta.Port == "" {
		c.Info.Meta.Port = c.SerialPort
	}
	pub, err := mqtt.NewPublisher(c.MQTTBrokerURL, c.Info)
	if err != nil {
		return nil, fmt.Errorf("create MQTT publisher error: %w", err)
	}
	return pub, nil
}
