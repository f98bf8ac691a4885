// Package match runs one authoritative session between two participants:
// character draft, turn loop, resolution and teardown.
package match

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benkosiek/Turn-based-Game/internal/channel"
	"github.com/benkosiek/Turn-based-Game/internal/codec"
	"github.com/benkosiek/Turn-based-Game/internal/engine"
	"github.com/benkosiek/Turn-based-Game/pkg/types"
)

var ErrAborted = errors.New("match aborted")
var ErrTurnTimeout = errors.New("participant did not answer in time")
var ErrPeerGone = errors.New("participant disconnected")
var ErrProtocol = errors.New("protocol error")

type Phase string

const (
	PhaseDrafting   Phase = "drafting"
	PhaseInProgress Phase = "in_progress"
	PhaseFinished   Phase = "finished"
)

// Participant is the endpoint the session talks to. Recv blocks for the
// next inbound message from that participant only.
type Participant interface {
	Send(ctx context.Context, msg types.ServerMessage) error
	Recv(ctx context.Context) (types.ClientMessage, error)
	Discard() int
	Done() <-chan struct{}
	Close() error
}

type Player struct {
	ID   int
	Conn Participant
}

// seat binds one participant to its team and, once drafted, its character.
type seat struct {
	Player
	team  engine.Team
	char  engine.CharacterID
	bound bool
}

func (st *seat) connected() bool {
	select {
	case <-st.Conn.Done():
		return false
	default:
		return true
	}
}

// notifyTimeout caps best-effort sends after the session has failed.
const notifyTimeout = 2 * time.Second

type Session struct {
	id     string
	log    *zap.Logger
	tracer trace.Tracer

	seats   [2]*seat
	roster  *engine.Roster
	rules   *engine.Engine
	roller  engine.Roller
	shuffle func([]engine.CharacterID)

	draftTimeout  time.Duration
	turnTimeout   time.Duration
	teardownDelay time.Duration

	order []engine.CharacterID

	mu     sync.RWMutex
	phase  Phase
	winner engine.Team
	turns  int
}

type Option func(*Session)

func WithLogger(log *zap.Logger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// WithRoller fixes the source of dodge and proc draws.
func WithRoller(r engine.Roller) Option { return func(s *Session) { s.roller = r } }

// WithShuffle replaces the one-time turn order shuffle.
func WithShuffle(fn func([]engine.CharacterID)) Option { return func(s *Session) { s.shuffle = fn } }

// WithTurnTimeout bounds each turn; zero waits forever.
func WithTurnTimeout(d time.Duration) Option { return func(s *Session) { s.turnTimeout = d } }

// WithDraftTimeout bounds each character pick; zero waits forever.
func WithDraftTimeout(d time.Duration) Option { return func(s *Session) { s.draftTimeout = d } }

func WithTeardownDelay(d time.Duration) Option { return func(s *Session) { s.teardownDelay = d } }

func WithTracer(t trace.Tracer) Option { return func(s *Session) { s.tracer = t } }

func NewSession(id string, players [2]Player, opts ...Option) *Session {
	s := &Session{
		id:     id,
		log:    zap.NewNop(),
		tracer: otel.Tracer("github.com/benkosiek/Turn-based-Game/internal/match"),
		roster: engine.NewRoster(),
		phase:  PhaseDrafting,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.shuffle == nil {
		s.shuffle = RandomShuffle(nil)
	}
	s.log = s.log.With(zap.String("match_id", id))
	s.rules = engine.New(s.roller, s.log)
	s.seats[0] = &seat{Player: players[0], team: engine.TeamOne}
	s.seats[1] = &seat{Player: players[1], team: engine.TeamTwo}
	return s
}

func (s *Session) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

func (s *Session) Winner() engine.Team {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.winner
}

// Turns counts scheduled turns taken, including skipped ones.
func (s *Session) Turns() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.turns
}

// TurnOrder returns the character names in acting order, empty while drafting.
func (s *Session) TurnOrder() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.order))
	for _, id := range s.order {
		names = append(names, s.roster.Get(id).Name())
	}
	return names
}

func (s *Session) PlayerIDs() [2]int {
	return [2]int{s.seats[0].ID, s.seats[1].ID}
}

// Outcome summarizes a completed session.
type Outcome struct {
	Winner engine.Team
	Turns  int
}

// Run drives the session to completion and closes both participants before
// returning. Any transport failure, deadline expiry or protocol error during
// a blocking wait aborts the whole session with ErrAborted.
func (s *Session) Run(ctx context.Context) (Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "match.run", trace.WithAttributes(
		attribute.String("match.id", s.id),
		attribute.Int("match.player_one", s.seats[0].ID),
		attribute.Int("match.player_two", s.seats[1].ID),
	))
	defer span.End()

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	defer s.teardown()
	s.watch(ctx, cancel)

	s.log.Info("match started", zap.Int("player_one", s.seats[0].ID), zap.Int("player_two", s.seats[1].ID))

	if err := s.draft(ctx); err != nil {
		return s.abort(ctx, span, err)
	}
	if err := s.broadcastState(ctx, "Match start!"); err != nil {
		return s.abort(ctx, span, err)
	}
	winner, err := s.play(ctx)
	if err != nil {
		return s.abort(ctx, span, err)
	}
	s.finish(ctx, winner)
	span.SetAttributes(attribute.String("match.winner", string(winner)), attribute.Int("match.turns", s.Turns()))
	return Outcome{Winner: winner, Turns: s.Turns()}, nil
}

// watch cancels the session as soon as either participant drops, so a
// disconnect is seen even while the other participant is being waited on.
func (s *Session) watch(ctx context.Context, cancel context.CancelCauseFunc) {
	for _, st := range s.seats {
		go func(st *seat) {
			select {
			case <-st.Conn.Done():
				cancel(fmt.Errorf("player %d: %w", st.ID, ErrPeerGone))
			case <-ctx.Done():
			}
		}(st)
	}
}

func (s *Session) setPhase(p Phase) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
}

func (s *Session) send(ctx context.Context, st *seat, msg types.ServerMessage) error {
	if err := st.Conn.Send(ctx, msg); err != nil {
		return fmt.Errorf("player %d: %w: %v", st.ID, ErrPeerGone, err)
	}
	return nil
}

// broadcast delivers msg to both participants before returning.
func (s *Session) broadcast(ctx context.Context, msg types.ServerMessage) error {
	for _, st := range s.seats {
		if err := s.send(ctx, st, msg); err != nil {
			return err
		}
	}
	return nil
}

// broadcastState sends the same post-step snapshot and result line to both
// participants.
func (s *Session) broadcastState(ctx context.Context, line string) error {
	s.mu.RLock()
	view := codec.ProjectState(string(s.phase), s.roster, s.order, s.winner)
	s.mu.RUnlock()
	if err := s.broadcast(ctx, types.GameState(view)); err != nil {
		return err
	}
	return s.broadcast(ctx, types.ActionResult(line))
}

// recv waits on st only. Errors caused by the session context report the
// cancellation cause.
func (s *Session) recv(ctx context.Context, st *seat) (types.ClientMessage, error) {
	msg, err := st.Conn.Recv(ctx)
	if err == nil {
		return msg, nil
	}
	if errors.Is(err, channel.ErrMalformed) {
		return msg, fmt.Errorf("player %d: %w: %v", st.ID, ErrProtocol, err)
	}
	if ctx.Err() != nil {
		return msg, context.Cause(ctx)
	}
	return msg, fmt.Errorf("player %d: %w: %v", st.ID, ErrPeerGone, err)
}

// deadline applies d to ctx when positive.
func (s *Session) deadline(ctx context.Context, st *seat, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeoutCause(ctx, d, fmt.Errorf("player %d: %w", st.ID, ErrTurnTimeout))
}

func (s *Session) finish(ctx context.Context, winner engine.Team) {
	s.mu.Lock()
	s.phase = PhaseFinished
	s.winner = winner
	s.mu.Unlock()

	s.log.Info("match finished", zap.String("winner", string(winner)), zap.Int("turns", s.Turns()))
	if err := s.broadcast(ctx, types.GameOver(string(winner))); err != nil {
		s.log.Warn("game over not delivered", zap.Error(err))
	}

	if s.teardownDelay <= 0 {
		return
	}
	t := time.NewTimer(s.teardownDelay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

func (s *Session) abort(ctx context.Context, span trace.Span, cause error) (Outcome, error) {
	s.setPhase(PhaseFinished)
	span.RecordError(cause)
	span.SetStatus(codes.Error, "aborted")
	s.log.Warn("match aborted", zap.Error(cause), zap.Int("turns", s.Turns()))

	notice := abortNotice(ctx, cause)
	for _, st := range s.seats {
		if !st.connected() {
			continue
		}
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		if err := st.Conn.Send(nctx, types.Error(notice)); err != nil {
			s.log.Debug("abort notice not delivered", zap.Int("player_id", st.ID), zap.Error(err))
		}
		cancel()
	}
	return Outcome{Turns: s.Turns()}, fmt.Errorf("%w: %w", ErrAborted, cause)
}

func abortNotice(ctx context.Context, cause error) string {
	switch {
	case errors.Is(cause, ErrTurnTimeout):
		return "A player did not respond in time. Ending match."
	case errors.Is(cause, ErrProtocol):
		return "Malformed message during a turn. Ending match."
	case errors.Is(cause, ErrPeerGone):
		return "A player disconnected. Ending match."
	case ctx.Err() != nil:
		return "Server shutting down. Ending match."
	default:
		return "Match ended unexpectedly."
	}
}

func (s *Session) teardown() {
	var err error
	for _, st := range s.seats {
		err = multierr.Append(err, st.Conn.Close())
	}
	if err != nil {
		s.log.Debug("closing participants", zap.Error(err))
	}
}
