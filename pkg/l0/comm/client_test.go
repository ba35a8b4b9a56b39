package comm

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type chanReadWriter struct {
	readCh  <-chan byte
	writeCh chan byte
}

func (c *chanReadWriter) Read(p []byte) (int, error) {
	p[0] = <-c.readCh
	return 1, nil
}

func (c *chanReadWriter) Write(p []byte) (int, error) {
	for _, b := range p {
		c.writeCh <- b
	}
	return len(p), nil
}

type clientTestEnv struct {
	t        *testing.T
	readCh   chan byte
	writeCh  chan byte
	client   *Client
	commands []*Command
}

func newClientTestEnv(t *testing.T) *clientTestEnv {
	env := &clientTestEnv{
		t:       t,
		readCh:  make(chan byte, 1),
		writeCh: make(chan byte, MaxFrameLen),
	}
	env.client = NewClient(NewLink(&chanReadWriter{readCh: env.readCh, writeCh: env.writeCh}))
	env.client.Expiration = 100 * time.Millisecond
	return env
}

func (e *clientTestEnv) wrapFn(name string, fn func(string)) {
	e.t.Logf("START %s", name)
	fn(name)
	e.t.Logf("STOP %s", name)
}

func (e *clientTestEnv) run(fns ...func(string)) {
	ctx, cancel := context.WithCancel(context.TODO())
	defer cancel()
	go e.client.Run(ctx)
	for n, fn := range fns {
		e.wrapFn(fmt.Sprintf("step-%d", n), fn)
	}
}

func (e *clientTestEnv) parallel(fns ...func(string)) func(string) {
	return func(name string) {
		var wg sync.WaitGroup
		for n, fn := range fns {
			wg.Add(1)
			go func(name string, fn func(string)) {
				defer wg.Done()
				e.wrapFn(name, fn)
			}(name+fmt.Sprintf(".%d", n), fn)
		}
		wg.Wait()
	}
}

func (e *clientTestEnv) expect(bs ...byte) func(string) {
	return func(name string) {
		for i, b := range bs {
			select {
			case w := <-e.writeCh:
				require.Equalf(e.t, b, w, "%s.byte[%d] mismatch", name, i)
			case <-time.After(500 * time.Millisecond):
				e.t.Fatalf("%s.byte[%d] timeout", name, i)
			}
		}
	}
}

func (e *clientTestEnv) inject(bs ...byte) func(string) {
	return func(name string) {
		for _, b := range bs {
			e.readCh <- b
		}
	}
}

func (e *clientTestEnv) clientDo(op Op, data ...byte) func(string) {
	return func(name string) {
		e.commands = append(e.commands, e.client.Do(NewFrame(op, data...)))
	}
}

func (e *clientTestEnv) nextResult(name string) (r Result) {
	require.NotEmptyf(e.t, e.commands, "%s commands empty", name)
	cmd := e.commands[0]
	e.commands = e.commands[1:]
	select {
	case r = <-cmd.ResultChan():
	case <-time.After(500 * time.Millisecond):
		e.t.Fatalf("%s: timeout", name)
	}
	return
}

func (e *clientTestEnv) clientResult(data ...byte) func(string) {
	return func(name string) {
		r := e.nextResult(name)
		require.NoErrorf(e.t, r.Err, "%s unexpected err", name)
		require.Equalf(e.t, OpAck, r.Op, "%s op mismatch", name)
		require.Equalf(e.t, data, r.Data, "%s data mismatch", name)
	}
}

func (e *clientTestEnv) clientResultErr(err error) func(string) {
	return func(name string) {
		r := e.nextResult(name)
		require.Equalf(e.t, err, r.Err, "%s mismatch", name)
	}
}

func (e *clientTestEnv) clientEvent(op Op, data ...byte) func(string) {
	return func(name string) {
		select {
		case f := <-e.client.EventChan():
			require.Equalf(e.t, op, f.Op, "%s op mismatch", name)
			if len(data) == 0 {
				require.Emptyf(e.t, f.Data, "%s data not empty", name)
			} else {
				require.Equalf(e.t, data, f.Data, "%s data mismatch", name)
			}
		case <-time.After(500 * time.Millisecond):
			e.t.Fatalf("%s timeout", name)
		}
	}
}

func TestClient(t *testing.T) {
	testCases := []struct {
		name  string
		logic func(*clientTestEnv)
	}{
		{
			"simple command",
			func(env *clientTestEnv) {
				env.run(
					env.parallel(
						env.clientDo(OpGetState),
						env.expect('<', '0', '6', '>'),
					),
					env.inject('<', '0', '1', 0, '>'),
					env.clientResult(0),
				)
			},
		},
		{
			"command with payload",
			func(env *clientTestEnv) {
				env.run(
					env.parallel(
						env.clientDo(OpSetFilter, 0xc8, 0),
						env.expect('<', '0', '5', 0xc8, 0, '>'),
					),
					env.inject('<', '0', '1', 1, '>'),
					env.clientResult(1),
				)
			},
		},
		{
			"no reply",
			func(env *clientTestEnv) {
				env.run(
					env.parallel(
						env.clientDo(Op(99)),
						env.expect('<', '9', '9', '>'),
					),
					env.clientResultErr(ErrNoReply),
					env.parallel(
						env.clientDo(OpStop),
						env.expect('<', '0', '3', '>'),
					),
					env.inject('<', '0', '1', 0, '>'),
					env.clientResult(0),
				)
			},
		},
		{
			"event",
			func(env *clientTestEnv) {
				env.run(
					env.inject('<', '1', '0', '>'),
					env.clientEvent(OpBootUp),
				)
			},
		},
		{
			"event and command",
			func(env *clientTestEnv) {
				env.run(
					env.parallel(
						env.clientDo(OpStart, 0xc8, 0, 0x10, 0x27, 0, 0),
						env.expect('<', '0', '2', 0xc8, 0, 0x10, 0x27, 0, 0, '>'),
					),
					env.inject('<', '0', '9', 1, 0, 2, 0, 3, 0, 4, 0, 5, 0, 6, 0, 7, 0, '>'),
					env.clientEvent(OpRead, 1, 0, 2, 0, 3, 0, 4, 0, 5, 0, 6, 0, 7, 0),
					env.inject('<', '0', '1', 0, '>'),
					env.clientResult(0),
				)
			},
		},
		{
			"empty ack",
			func(env *clientTestEnv) {
				env.run(
					env.parallel(
						env.clientDo(OpGetState),
						env.expect('<', '0', '6', '>'),
					),
					env.inject('<', '0', '1', '>'),
					func(name string) {
						r := env.nextResult(name)
						require.IsType(env.t, &CommandError{}, r.Err)
					},
				)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newClientTestEnv(t)
			tc.logic(env)
		})
	}
}

func TestClientRunStopFailsPending(t *testing.T) {
	env := newClientTestEnv(t)
	env.client.Expiration = time.Minute
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- env.client.Run(ctx)
	}()
	cmd := env.client.Do(NewFrame(OpReset))
	env.expect('<', '0', '8', '>')("reset")
	cancel()
	require.Equal(t, context.Canceled, <-errCh)
	require.Equal(t, ErrClosed, cmd.Wait(context.Background()).Err)
}
