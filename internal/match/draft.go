package match

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/benkosiek/Turn-based-Game/internal/engine"
	"github.com/benkosiek/Turn-based-Game/pkg/types"
)

// draft binds one unique archetype to each seat, in seat order, then fixes
// the turn order.
func (s *Session) draft(ctx context.Context) error {
	s.setPhase(PhaseDrafting)
	taken := map[engine.Archetype]bool{}
	if err := s.broadcast(ctx, types.ChooseCharacter(available(taken))); err != nil {
		return err
	}

	for _, st := range s.seats {
		if err := s.pick(ctx, st, taken); err != nil {
			return err
		}
	}

	order := s.roster.IDs()
	s.shuffle(order)

	s.mu.Lock()
	s.order = order
	s.phase = PhaseInProgress
	s.mu.Unlock()

	s.log.Info("draft complete", zap.Strings("turn_order", s.TurnOrder()))
	return nil
}

// pick re-prompts st until it names a free archetype. Bad picks and stray
// messages are recoverable.
func (s *Session) pick(ctx context.Context, st *seat, taken map[engine.Archetype]bool) error {
	ctx, cancel := s.deadline(ctx, st, s.draftTimeout)
	defer cancel()

	for {
		msg, err := s.recv(ctx, st)
		if errors.Is(err, ErrProtocol) {
			if err := s.send(ctx, st, types.Error("Malformed message.")); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}

		if msg.Type != types.TypePickCharacter {
			if err := s.send(ctx, st, types.Waiting("Pick a character to start.")); err != nil {
				return err
			}
			continue
		}

		a, err := engine.ParseArchetype(msg.Choice)
		if err != nil || taken[a] {
			s.log.Debug("pick rejected", zap.Int("player_id", st.ID), zap.String("choice", msg.Choice))
			if err := s.send(ctx, st, types.Error("Invalid or already-taken character.")); err != nil {
				return err
			}
			if err := s.send(ctx, st, types.ChooseCharacter(available(taken))); err != nil {
				return err
			}
			continue
		}

		taken[a] = true
		c := s.roster.Add(a, st.team)
		st.char = c.ID
		st.bound = true
		s.log.Info("character picked", zap.Int("player_id", st.ID), zap.String("character", c.Name()), zap.String("team", string(st.team)))
		if !s.allBound() {
			return s.send(ctx, st, types.Waiting("Waiting for your opponent to pick."))
		}
		return nil
	}
}

func (s *Session) allBound() bool {
	for _, st := range s.seats {
		if !st.bound {
			return false
		}
	}
	return true
}

func available(taken map[engine.Archetype]bool) []string {
	var names []string
	for _, a := range engine.Archetypes() {
		if !taken[a] {
			names = append(names, a.String())
		}
	}
	return names
}
