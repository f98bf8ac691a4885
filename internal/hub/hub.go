// Package hub keeps the registry of running matches. Every paired couple of
// participants becomes one match.Session running on its own goroutine.
package hub

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/benkosiek/Turn-based-Game/internal/match"
)

var ErrAtCapacity = errors.New("hub: match limit reached")
var ErrShuttingDown = errors.New("hub: shutting down")
var ErrNotFound = errors.New("hub: no such match")

type HubMsg interface{ isHubMsg() }

type StartMatch struct {
	Players [2]match.Player
	Reply   chan StartResult
}

type StartResult struct {
	ID  string
	Err error
}

// GetMatch answers with the summary of one match; ok is false when the id
// is not registered.
type GetMatch struct {
	ID    string
	Reply chan MatchLookup
}

type MatchLookup struct {
	Info MatchInfo
	OK   bool
}

type ListMatches struct {
	Reply chan []MatchInfo
}

// RemoveMatch is sent by a session goroutine once Run returns.
type RemoveMatch struct {
	ID      string
	Outcome match.Outcome
	Err     error
}

type ShutdownHub struct{}

func (StartMatch) isHubMsg()  {}
func (GetMatch) isHubMsg()    {}
func (ListMatches) isHubMsg() {}
func (RemoveMatch) isHubMsg() {}
func (ShutdownHub) isHubMsg() {}

// MatchInfo is the read-only summary served by GET /matches and
// GET /matches/{id}.
type MatchInfo struct {
	ID        string    `json:"id"`
	Players   [2]int    `json:"players"`
	Phase     string    `json:"phase"`
	Turns     int       `json:"turns"`
	TurnOrder []string  `json:"turn_order,omitempty"`
	Winner    string    `json:"winner,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

type entry struct {
	session *match.Session
	started time.Time
}

type Hub struct {
	inbox      chan HubMsg
	matches    map[string]entry
	maxMatches int
	opts       []match.Option
	log        *zap.Logger
	wg         sync.WaitGroup
	stopped    chan struct{}
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewHub starts the registry actor. opts are applied to every session it
// creates; maxMatches below 1 means one match at a time.
func NewHub(parent context.Context, log *zap.Logger, maxMatches int, opts ...match.Option) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	if maxMatches < 1 {
		maxMatches = 1
	}
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:      make(chan HubMsg, 64),
		matches:    make(map[string]entry),
		maxMatches: maxMatches,
		opts:       opts,
		log:        log.Named("hub"),
		stopped:    make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Done is closed when the hub stops accepting messages.
func (h *Hub) Done() <-chan struct{} { return h.stopped }

// Wait blocks until the hub has stopped and every session has returned.
func (h *Hub) Wait() {
	<-h.stopped
	h.wg.Wait()
}

// Pair starts a match for players. It satisfies lobby.Pairer.
func (h *Hub) Pair(players [2]match.Player) error {
	reply := make(chan StartResult, 1)
	if !h.submit(h.ctx, StartMatch{Players: players, Reply: reply}) {
		return ErrShuttingDown
	}
	select {
	case res := <-reply:
		return res.Err
	case <-h.stopped:
		return ErrShuttingDown
	}
}

// List returns the running matches ordered by start time.
func (h *Hub) List(ctx context.Context) ([]MatchInfo, error) {
	reply := make(chan []MatchInfo, 1)
	if !h.submit(ctx, ListMatches{Reply: reply}) {
		return nil, ErrShuttingDown
	}
	select {
	case infos := <-reply:
		return infos, nil
	case <-h.stopped:
		return nil, ErrShuttingDown
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Get returns the summary of the match registered under id, or ErrNotFound.
func (h *Hub) Get(ctx context.Context, id string) (MatchInfo, error) {
	reply := make(chan MatchLookup, 1)
	if !h.submit(ctx, GetMatch{ID: id, Reply: reply}) {
		return MatchInfo{}, ErrShuttingDown
	}
	select {
	case res := <-reply:
		if !res.OK {
			return MatchInfo{}, ErrNotFound
		}
		return res.Info, nil
	case <-h.stopped:
		return MatchInfo{}, ErrShuttingDown
	case <-ctx.Done():
		return MatchInfo{}, ctx.Err()
	}
}

func (h *Hub) submit(ctx context.Context, m HubMsg) bool {
	select {
	case <-h.stopped:
		return false
	default:
	}
	select {
	case h.inbox <- m:
		return true
	case <-h.stopped:
		return false
	case <-ctx.Done():
		return false
	}
}

func (h *Hub) loop() {
	defer close(h.stopped)
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case StartMatch:
				msg.Reply <- h.start(msg.Players)

			case GetMatch:
				e, ok := h.matches[msg.ID]
				if !ok {
					msg.Reply <- MatchLookup{}
					break
				}
				msg.Reply <- MatchLookup{Info: info(msg.ID, e), OK: true}

			case ListMatches:
				msg.Reply <- h.list()

			case RemoveMatch:
				h.remove(msg)

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) start(players [2]match.Player) StartResult {
	if len(h.matches) >= h.maxMatches {
		return StartResult{Err: ErrAtCapacity}
	}

	id := uuid.NewString()
	opts := append([]match.Option{match.WithLogger(h.log)}, h.opts...)
	s := match.NewSession(id, players, opts...)
	h.matches[id] = entry{session: s, started: time.Now()}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		out, err := s.Run(h.ctx)
		select {
		case h.inbox <- RemoveMatch{ID: id, Outcome: out, Err: err}:
		case <-h.stopped:
		}
	}()

	h.log.Info("match registered", zap.String("match_id", id), zap.Int("running", len(h.matches)))
	return StartResult{ID: id}
}

func (h *Hub) remove(msg RemoveMatch) {
	if _, ok := h.matches[msg.ID]; !ok {
		return
	}
	delete(h.matches, msg.ID)

	log := h.log.With(zap.String("match_id", msg.ID), zap.Int("turns", msg.Outcome.Turns))
	if msg.Err != nil {
		log.Warn("match removed after abort", zap.Error(msg.Err))
		return
	}
	log.Info("match removed", zap.String("winner", string(msg.Outcome.Winner)))
}

func (h *Hub) list() []MatchInfo {
	infos := make([]MatchInfo, 0, len(h.matches))
	for id, e := range h.matches {
		infos = append(infos, info(id, e))
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].StartedAt.Before(infos[j].StartedAt) })
	return infos
}

func info(id string, e entry) MatchInfo {
	return MatchInfo{
		ID:        id,
		Players:   e.session.PlayerIDs(),
		Phase:     string(e.session.Phase()),
		Turns:     e.session.Turns(),
		TurnOrder: e.session.TurnOrder(),
		Winner:    string(e.session.Winner()),
		StartedAt: e.started,
	}
}

// shutdown cancels every running session. Sessions notify their
// participants and close them on the way out.
func (h *Hub) shutdown() {
	h.cancel()
	clear(h.matches)
}
