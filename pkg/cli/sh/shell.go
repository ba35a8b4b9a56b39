// Package sh provides the interactive shell to operate sensor nodes.
package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/abiosoft/ishell"
	"go.bug.st/serial"

	"github.com/robotalks/ftlink/pkg/framework"
	"github.com/robotalks/ftlink/pkg/l0/comm"
	"github.com/robotalks/ftlink/pkg/l0/port"
	"github.com/robotalks/ftlink/pkg/l1/env"
	"github.com/robotalks/ftlink/pkg/l1/sensor"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool
	Timeout     time.Duration

	Shell  *ishell.Shell
	Config *env.Config
	Conn   *Conn
}

// Conn is a sensor connected over a serial port.
type Conn struct {
	Ctx    context.Context
	Cancel func()
	Path   string
	Sensor *sensor.Sensor

	done chan error
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool
	timeout    = 3 * time.Second

	// commands
	commands = []*ishell.Cmd{
		&PortsCmd,
		&ConnectCmd,
		&DisconnectCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.DurationVar(&timeout, "timeout", timeout, "Command timeout.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Timeout:     timeout,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Conn == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// CommandFunc is an operation on the connected sensor. The returned value
// is printed, nil prints OK.
type CommandFunc func(ctx context.Context, s *sensor.Sensor) (interface{}, error)

// DoCommand runs a command on the sensor and prints the result.
func DoCommand(c *ishell.Context, fn CommandFunc) error {
	s := ShellFrom(c)
	if s.Conn == nil {
		err := fmt.Errorf("not connected")
		c.Err(err)
		return err
	}
	ctx, cancel := context.WithTimeout(s.Conn.Ctx, s.Timeout)
	defer cancel()
	res, err := fn(ctx, s.Conn.Sensor)
	if err != nil {
		c.Err(err)
		return err
	}
	s.Print(c, res)
	return nil
}

// Print prints a result in the selected format.
func (s *Shell) Print(c *ishell.Context, res interface{}) {
	if s.OutputJSON {
		if res == nil {
			res = map[string]bool{"ok": true}
		}
		out, err := json.Marshal(res)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	if res == nil {
		c.Println("OK")
		return
	}
	if str, ok := res.(fmt.Stringer); ok {
		c.Println(str.String())
		return
	}
	c.Printf("%v\n", res)
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// Connect opens the serial port and starts talking to the node.
func (s *Shell) Connect(path string) error {
	s.Disconnect()
	p, err := port.Open(path, s.Config.Port)
	if err != nil {
		return err
	}
	client := comm.NewClient(comm.NewLink(p))
	client.Expiration = s.Timeout
	conn := &Conn{
		Path:   path,
		Sensor: sensor.New(client),
		done:   make(chan error, 1),
	}
	conn.Ctx, conn.Cancel = context.WithCancel(context.Background())
	go func(p serial.Port) {
		conn.done <- framework.RunWithContextCloser(conn.Ctx, p, func() error {
			return conn.Sensor.Run(conn.Ctx)
		})
	}(p)
	s.Conn = conn
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", path))
	return nil
}

// Disconnect disconnects current sensor.
func (s *Shell) Disconnect() {
	if s.Conn != nil {
		s.Conn.Cancel()
		<-s.Conn.done
		s.Conn = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect && s.Config.SerialPort != "" {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.SerialPort)
		}
		if err := s.Connect(s.Config.SerialPort); err != nil {
			log.Fatalf("connect %q failed: %v", s.Config.SerialPort, err)
		}
	}
	defer s.Disconnect()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// PortsCmd lists serial ports.
	PortsCmd = ishell.Cmd{
		Name:    "ports",
		Aliases: []string{"list", "l"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			ports, err := port.List()
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				if ports == nil {
					ports = []string{}
				}
				s.Print(c, ports)
				return
			}
			if len(ports) == 0 {
				c.Println("No serial ports found")
				return
			}
			for _, p := range ports {
				c.Println(p)
			}
		},
	}

	// ConnectCmd connects a sensor.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[PORT]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			path := s.Config.SerialPort
			if len(c.Args) > 0 {
				path = c.Args[0]
			} else if s.Interactive {
				ports, err := port.List()
				if err != nil {
					c.Err(err)
					return
				}
				if len(ports) > 1 {
					index := s.Shell.MultiChoice(ports, "Which port to connect?")
					if index < 0 {
						return
					}
					path = ports[index]
				} else if len(ports) == 1 {
					path = ports[0]
				}
			}
			if err := s.Connect(path); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd disconnects current sensor.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(env.NewConfig()).WithAutoConnect(true).Run(flag.Args()...)
}
