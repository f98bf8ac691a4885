package match

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/benkosiek/Turn-based-Game/internal/channel"
	"github.com/benkosiek/Turn-based-Game/pkg/types"
)

type fakeIn struct {
	msg types.ClientMessage
	err error
}

// fakeConn is an in-memory Participant. Closing it is a disconnect.
type fakeConn struct {
	in   chan fakeIn
	out  chan types.ServerMessage
	done chan struct{}
	once sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:   make(chan fakeIn, 16),
		out:  make(chan types.ServerMessage, 1024),
		done: make(chan struct{}),
	}
}

func (f *fakeConn) Send(_ context.Context, m types.ServerMessage) error {
	select {
	case <-f.done:
		return channel.ErrDisconnected
	default:
	}
	f.out <- m
	return nil
}

func (f *fakeConn) Recv(ctx context.Context) (types.ClientMessage, error) {
	select {
	case in := <-f.in:
		return in.msg, in.err
	case <-f.done:
		return types.ClientMessage{}, channel.ErrDisconnected
	case <-ctx.Done():
		return types.ClientMessage{}, ctx.Err()
	}
}

func (f *fakeConn) Discard() int {
	n := 0
	for {
		select {
		case <-f.in:
			n++
		default:
			return n
		}
	}
}

func (f *fakeConn) Done() <-chan struct{} { return f.done }

func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.done) })
	return nil
}

// responder decides the replies to one server message.
type responder func(types.ServerMessage) []fakeIn

// bot plays one fake participant on its own goroutine and records every
// message it receives.
type bot struct {
	conn    *fakeConn
	respond responder

	mu       sync.Mutex
	received []types.ServerMessage
	stopped  chan struct{}
}

func startBot(conn *fakeConn, respond responder) *bot {
	b := &bot{conn: conn, respond: respond, stopped: make(chan struct{})}
	go b.loop()
	return b
}

func (b *bot) loop() {
	defer close(b.stopped)
	for {
		select {
		case m := <-b.conn.out:
			b.handle(m)
		case <-b.conn.done:
			for {
				select {
				case m := <-b.conn.out:
					b.record(m)
				default:
					return
				}
			}
		}
	}
}

func (b *bot) record(m types.ServerMessage) {
	b.mu.Lock()
	b.received = append(b.received, m)
	b.mu.Unlock()
}

func (b *bot) handle(m types.ServerMessage) {
	b.record(m)
	if b.respond == nil {
		return
	}
	for _, r := range b.respond(m) {
		select {
		case b.conn.in <- r:
		case <-b.conn.done:
			return
		}
	}
}

func (b *bot) wait(t *testing.T) []types.ServerMessage {
	t.Helper()
	select {
	case <-b.stopped:
	case <-time.After(2 * time.Second):
		t.Fatalf("bot did not stop")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]types.ServerMessage(nil), b.received...)
}

func reply(m types.ClientMessage) []fakeIn { return []fakeIn{{msg: m}} }

// player picks the given names in order on every choose_character prompt,
// then answers each your_turn with onTurn.
func player(picks []string, onTurn func(types.ServerMessage) []fakeIn) responder {
	next := 0
	return func(m types.ServerMessage) []fakeIn {
		switch m.Type {
		case types.TypeChooseCharacter:
			if next >= len(picks) {
				return nil
			}
			choice := picks[next]
			next++
			return reply(types.PickCharacter(choice))
		case types.TypeYourTurn:
			if onTurn == nil {
				return nil
			}
			return onTurn(m)
		}
		return nil
	}
}

func alwaysAttack(types.ServerMessage) []fakeIn { return reply(types.Act("attack", 0)) }

func ofType(msgs []types.ServerMessage, typ string) []types.ServerMessage {
	var out []types.ServerMessage
	for _, m := range msgs {
		if m.Type == typ {
			out = append(out, m)
		}
	}
	return out
}

func logs(msgs []types.ServerMessage) []string {
	var out []string
	for _, m := range ofType(msgs, types.TypeActionResult) {
		out = append(out, m.Log)
	}
	return out
}

func hpOf(state *types.StateView, team, name string) int {
	for _, c := range state.Teams[team] {
		if c.Name == name {
			return c.HP
		}
	}
	panic(fmt.Sprintf("no %s on %s", name, team))
}

type fixedRoll float64

func (f fixedRoll) Float64() float64 { return float64(f) }
