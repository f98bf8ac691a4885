package match

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/benkosiek/Turn-based-Game/internal/codec"
	"github.com/benkosiek/Turn-based-Game/internal/engine"
	"github.com/benkosiek/Turn-based-Game/pkg/types"
)

var errNoLivingCharacters = errors.New("no living characters in turn order")

// play cycles the fixed turn order until one team has no living members.
func (s *Session) play(ctx context.Context) (engine.Team, error) {
	for {
		acted := false
		for _, id := range s.order {
			c := s.roster.Get(id)
			if !c.Alive() {
				continue
			}
			acted = true
			if err := s.turn(ctx, c); err != nil {
				return "", err
			}
			if w, ok := s.roster.Winner(); ok {
				return w, nil
			}
		}
		if !acted {
			return "", errNoLivingCharacters
		}
	}
}

// turn runs upkeep for c, then either skips it or prompts its owner and
// resolves the reply. Every path ends with a broadcast.
func (s *Session) turn(ctx context.Context, c *engine.Character) error {
	s.mu.Lock()
	s.turns++
	n := s.turns
	s.mu.Unlock()

	ctx, span := s.tracer.Start(ctx, "match.turn", trace.WithAttributes(
		attribute.Int("turn.number", n),
		attribute.String("turn.actor", c.Name()),
	))
	defer span.End()

	rep := s.rules.Upkeep(c)
	upkeep := rep.Describe(c.Name())
	if rep.Eliminated {
		span.SetAttributes(attribute.String("turn.outcome", "eliminated"))
		return s.broadcastState(ctx, upkeep)
	}
	if rep.Stunned {
		span.SetAttributes(attribute.String("turn.outcome", "stunned"))
		return s.broadcastState(ctx, joinLines(upkeep, fmt.Sprintf("%s is stunned and skips the turn!", c.Name())))
	}

	st := s.seatOf(c)
	enemies := s.roster.Living(c.Team.Opponent())
	allies := s.roster.Living(c.Team)

	// Nobody reads a seat between its prompts, so early input is only
	// noticed here, right before the owner's next prompt.
	if dropped := st.Conn.Discard(); dropped > 0 {
		s.log.Debug("discarded out-of-turn input", zap.Int("player_id", st.ID), zap.Int("messages", dropped))
		if err := s.send(ctx, st, types.Waiting("Input sent outside your turn was discarded.")); err != nil {
			return err
		}
	}
	if err := s.send(ctx, st, codec.TurnPrompt(c, enemies, allies)); err != nil {
		return err
	}

	msg, err := s.awaitAction(ctx, st)
	if err != nil {
		return err
	}
	res := s.resolve(c, msg, enemies, allies)
	span.SetAttributes(
		attribute.String("turn.action", msg.Action),
		attribute.Bool("turn.effective", res.Effective()),
	)
	s.log.Debug("action resolved",
		zap.Int("turn", n),
		zap.String("actor", c.Name()),
		zap.String("action", msg.Action),
		zap.Bool("effective", res.Effective()),
	)
	return s.broadcastState(ctx, joinLines(upkeep, res.String()))
}

// awaitAction blocks on st alone until it sends an action. Other message
// kinds get a waiting reply; a malformed frame aborts the turn.
func (s *Session) awaitAction(ctx context.Context, st *seat) (types.ClientMessage, error) {
	ctx, cancel := s.deadline(ctx, st, s.turnTimeout)
	defer cancel()

	for {
		msg, err := s.recv(ctx, st)
		if err != nil {
			return msg, err
		}
		if msg.Type == types.TypeAction {
			return msg, nil
		}
		if err := s.send(ctx, st, types.Waiting("It is your turn: send an action.")); err != nil {
			return msg, err
		}
	}
}

// resolve validates msg against the targets offered in the prompt and
// applies it. Bad kinds or indexes become no-effect results.
func (s *Session) resolve(c *engine.Character, msg types.ClientMessage, enemies, allies []*engine.Character) engine.Result {
	kind, ok := engine.ParseAction(msg.Action)
	if !ok {
		return engine.Result{Actor: c.ID, ActorName: c.Name(), Blocked: engine.ErrNoTarget}
	}

	switch kind {
	case engine.ActionDefend:
		return s.rules.Defend(c)
	case engine.ActionAttack:
		return s.rules.Attack(c, pick(enemies, msg.TargetIndex))
	}

	p := c.Archetype.Profile()
	switch {
	case p.Target == engine.TargetSelf:
		return s.rules.Special(c, nil)
	case p.AoE:
		return s.rules.Special(c, enemies)
	case p.Target == engine.TargetAlly:
		return s.rules.Special(c, single(pick(allies, msg.TargetIndex)))
	default:
		return s.rules.Special(c, single(pick(enemies, msg.TargetIndex)))
	}
}

func (s *Session) seatOf(c *engine.Character) *seat {
	for _, st := range s.seats {
		if st.bound && st.char == c.ID {
			return st
		}
	}
	panic(fmt.Sprintf("match: character %d has no seat", c.ID))
}

func pick(cs []*engine.Character, idx *int) *engine.Character {
	if idx == nil || *idx < 0 || *idx >= len(cs) {
		return nil
	}
	return cs[*idx]
}

func single(c *engine.Character) []*engine.Character {
	if c == nil {
		return nil
	}
	return []*engine.Character{c}
}

func joinLines(lines ...string) string {
	var out []string
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
