// Package lobby is the waiting room. It greets each new participant, holds
// them until a second one arrives and hands every pair to a Pairer.
package lobby

import (
	"context"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/benkosiek/Turn-based-Game/internal/match"
	"github.com/benkosiek/Turn-based-Game/pkg/types"
)

type Msg interface{ isLobbyMsg() }

// Join registers a freshly connected participant. Reply, when set, receives
// the assigned player id or 0 if the greeting could not be delivered.
type Join struct {
	Conn  match.Participant
	Reply chan int
}

func (Join) isLobbyMsg() {}

type Leave struct{ ID int }

func (Leave) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isLobbyMsg() {}

// View is a race-free copy of the lobby counters.
type View struct {
	Waiting []int
	Joined  int
	Paired  int
}

// Pairer starts a match for two participants. It must not call back into
// the lobby.
type Pairer func(players [2]match.Player) error

const greetTimeout = 2 * time.Second

type waiter struct {
	id   int
	conn match.Participant
}

type Lobby struct {
	inbox   chan Msg
	pair    Pairer
	log     *zap.Logger
	waiting []waiter
	nextID  int
	paired  int
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewLobby(parent context.Context, pair Pairer, log *zap.Logger) *Lobby {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)

	l := &Lobby{
		inbox:  make(chan Msg, 64),
		pair:   pair,
		log:    log.Named("lobby"),
		ctx:    ctx,
		cancel: cancel,
	}

	go l.loop()
	return l
}

// Inbox exposes the actor mailbox to transports and tests.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

// Submit delivers m unless ctx ends or the lobby has stopped first.
func (l *Lobby) Submit(ctx context.Context, m Msg) bool {
	select {
	case <-l.ctx.Done():
		return false
	default:
	}
	select {
	case l.inbox <- m:
		return true
	case <-l.ctx.Done():
		return false
	case <-ctx.Done():
		return false
	}
}

// Done is closed once the lobby has stopped accepting participants.
func (l *Lobby) Done() <-chan struct{} { return l.ctx.Done() }

func (l *Lobby) loop() {
	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Join:
				l.join(msg)

			case Leave:
				l.leave(msg.ID)

			case GetState:
				ids := make([]int, 0, len(l.waiting))
				for _, w := range l.waiting {
					ids = append(ids, w.id)
				}
				msg.Reply <- View{Waiting: ids, Joined: l.nextID, Paired: l.paired}

			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

func (l *Lobby) join(msg Join) {
	l.nextID++
	id := l.nextID
	log := l.log.With(zap.Int("player_id", id))

	if err := l.send(msg.Conn, types.Welcome(id)); err != nil {
		log.Debug("welcome not delivered", zap.Error(err))
		_ = msg.Conn.Close()
		reply(msg.Reply, 0)
		return
	}
	reply(msg.Reply, id)
	log.Info("participant joined")

	l.prune()
	l.waiting = append(l.waiting, waiter{id: id, conn: msg.Conn})
	go l.watch(id, msg.Conn)

	if len(l.waiting) < 2 {
		if err := l.send(msg.Conn, types.Waiting("Waiting for another player to join...")); err != nil {
			log.Debug("waiting notice not delivered", zap.Error(err))
		}
		return
	}

	a, b := l.waiting[0], l.waiting[1]
	l.waiting = append(l.waiting[:0], l.waiting[2:]...)
	players := [2]match.Player{{ID: a.id, Conn: a.conn}, {ID: b.id, Conn: b.conn}}
	if err := l.pair(players); err != nil {
		l.log.Warn("pairing refused", zap.Int("player_one", a.id), zap.Int("player_two", b.id), zap.Error(err))
		for _, w := range []waiter{a, b} {
			_ = l.send(w.conn, types.Error("Server busy. Try again later."))
			_ = w.conn.Close()
		}
		return
	}
	l.paired++
	l.log.Info("participants paired", zap.Int("player_one", a.id), zap.Int("player_two", b.id))
}

// watch reports a participant that hangs up. Paired participants are no
// longer in the waiting list, so their Leave is a no-op.
func (l *Lobby) watch(id int, conn match.Participant) {
	select {
	case <-conn.Done():
		l.Submit(l.ctx, Leave{ID: id})
	case <-l.ctx.Done():
	}
}

// prune drops waiters that hung up but whose Leave has not been processed
// yet, so a new joiner is never paired with a dead connection.
func (l *Lobby) prune() {
	l.waiting = slices.DeleteFunc(l.waiting, func(w waiter) bool {
		select {
		case <-w.conn.Done():
			l.log.Info("participant left before pairing", zap.Int("player_id", w.id))
			return true
		default:
			return false
		}
	})
}

func (l *Lobby) leave(id int) {
	for i, w := range l.waiting {
		if w.id == id {
			l.waiting = append(l.waiting[:i], l.waiting[i+1:]...)
			l.log.Info("participant left before pairing", zap.Int("player_id", id))
			return
		}
	}
}

func (l *Lobby) send(conn match.Participant, msg types.ServerMessage) error {
	ctx, cancel := context.WithTimeout(l.ctx, greetTimeout)
	defer cancel()
	return conn.Send(ctx, msg)
}

func (l *Lobby) shutdown() {
	for _, w := range l.waiting {
		_ = w.conn.Close()
	}
	l.waiting = nil
	l.cancel()
}

func reply(ch chan int, id int) {
	if ch != nil {
		ch <- id
	}
}
