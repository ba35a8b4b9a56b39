package comm

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
)

// Result is the result of a command using Do.
type Result struct {
	Err  error
	Op   Op
	Data []byte
}

// DefaultExpiration is the default time to wait for the reply of a command.
const DefaultExpiration = 5 * time.Second

// Client provides host side operations over a Link.
//
// The protocol carries no sequence numbers: every command is answered by
// at most one ACK, in order. Replies are matched to the oldest pending
// command, and commands without a reply (e.g. unsupported opcodes) expire
// with ErrNoReply.
type Client struct {
	Expiration time.Duration

	link     *Link
	eventCh  chan *Frame
	cmdsHead *Command
	cmdsTail *Command
	cmdsLock sync.Mutex
}

// Command represents a pending command waiting for reply.
type Command struct {
	op       Op
	expireAt time.Time
	resultCh chan Result
	next     *Command
}

// Op returns the opcode of the request.
func (c *Command) Op() Op {
	return c.op
}

// ResultChan returns the chan to retrieve result.
func (c *Command) ResultChan() <-chan Result {
	return c.resultCh
}

// Wait waits for the result or ctx to be done.
func (c *Command) Wait(ctx context.Context) Result {
	select {
	case r := <-c.resultCh:
		return r
	case <-ctx.Done():
		return Result{Err: ctx.Err()}
	}
}

// NewClient creates client and wraps the link.
func NewClient(link *Link) *Client {
	c := &Client{
		Expiration: DefaultExpiration,
		link:       link,
		eventCh:    make(chan *Frame, 16),
	}
	c.link.Handler = c
	return c
}

// Link gets wrapped Link.
func (c *Client) Link() *Link {
	return c.link
}

// EventChan retrieves frames pushed by the node (READ, BOOTUP).
// Frames are dropped when the chan is full.
func (c *Client) EventChan() <-chan *Frame {
	return c.eventCh
}

// DoWith sends a command and expects a result in the provided chan.
func (c *Client) DoWith(f *Frame, ch chan Result) *Command {
	cmd := &Command{op: f.Op, resultCh: ch}

	c.cmdsLock.Lock()
	defer c.cmdsLock.Unlock()
	if err := c.link.Send(f); err != nil {
		cmd.resultCh <- Result{Err: err}
		return cmd
	}
	cmd.expireAt = time.Now().Add(c.expiration())
	if c.cmdsHead == nil {
		c.cmdsHead = cmd
	} else {
		c.cmdsTail.next = cmd
	}
	c.cmdsTail = cmd
	return cmd
}

// Do sends a command and returns a Command for result.
func (c *Client) Do(f *Frame) *Command {
	return c.DoWith(f, make(chan Result, 1))
}

// HandleFrame implements FrameHandler.
func (c *Client) HandleFrame(ctx context.Context, f *Frame) {
	if f.Op != OpAck {
		select {
		case c.eventCh <- f:
		default:
			glog.V(2).Infof("event %s dropped", f.Op)
		}
		return
	}
	c.cmdsLock.Lock()
	cmd := c.cmdsHead
	if cmd != nil {
		if c.cmdsHead = cmd.next; c.cmdsHead == nil {
			c.cmdsTail = nil
		}
		cmd.next = nil
	}
	c.cmdsLock.Unlock()
	if cmd == nil {
		glog.V(2).Infof("unsolicited ACK %x", f.Data)
		return
	}
	if len(f.Data) == 0 {
		cmd.resultCh <- Result{Err: &CommandError{Op: f.Op}}
		return
	}
	cmd.resultCh <- Result{Op: f.Op, Data: f.Data}
}

// Run receives frames and expires commands until ctx is done or the link
// fails. A Link over a blocking reader keeps reading until it's closed.
func (c *Client) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- c.link.Run(ctx)
	}()
	ticker := time.NewTicker(c.expiration() / 10)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			c.failAll(ErrClosed)
			return ctx.Err()
		case err := <-errCh:
			c.failAll(ErrClosed)
			return err
		case now := <-ticker.C:
			c.purgeExpired(now)
		}
	}
}

func (c *Client) expiration() time.Duration {
	if c.Expiration <= 0 {
		return DefaultExpiration
	}
	return c.Expiration
}

func (c *Client) purgeExpired(now time.Time) {
	c.cmdsLock.Lock()
	var expired []*Command
	for c.cmdsHead != nil && !c.cmdsHead.expireAt.After(now) {
		cmd := c.cmdsHead
		c.cmdsHead, cmd.next = cmd.next, nil
		expired = append(expired, cmd)
	}
	if c.cmdsHead == nil {
		c.cmdsTail = nil
	}
	c.cmdsLock.Unlock()
	for _, cmd := range expired {
		cmd.resultCh <- Result{Err: ErrNoReply}
	}
}

func (c *Client) failAll(err error) {
	c.cmdsLock.Lock()
	head := c.cmdsHead
	c.cmdsHead, c.cmdsTail = nil, nil
	c.cmdsLock.Unlock()
	for cmd := head; cmd != nil; {
		next := cmd.next
		cmd.next = nil
		cmd.resultCh <- Result{Err: err}
		cmd = next
	}
}
