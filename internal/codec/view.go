package codec

import (
	"fmt"

	"github.com/benkosiek/Turn-based-Game/internal/engine"
	"github.com/benkosiek/Turn-based-Game/pkg/types"
)

// ProjectState builds the read-only view broadcast after every step.
func ProjectState(phase string, roster *engine.Roster, order []engine.CharacterID, winner engine.Team) types.StateView {
	v := types.StateView{
		Phase:  phase,
		Teams:  map[string][]types.CharacterView{},
		Winner: string(winner),
	}
	for _, team := range []engine.Team{engine.TeamOne, engine.TeamTwo} {
		views := []types.CharacterView{}
		for _, c := range roster.Team(team) {
			views = append(views, ProjectCharacter(c))
		}
		v.Teams[string(team)] = views
	}
	v.TurnOrder = make([]string, 0, len(order))
	for _, id := range order {
		if c := roster.Get(id); c != nil {
			v.TurnOrder = append(v.TurnOrder, c.Name())
		}
	}
	return v
}

func ProjectCharacter(c *engine.Character) types.CharacterView {
	status := make([]string, 0, len(c.Effects))
	for _, e := range c.Effects {
		status = append(status, e.Label())
	}
	return types.CharacterView{
		Name:     c.Name(),
		HP:       c.HP,
		MaxHP:    c.MaxHP,
		Defense:  c.Defense,
		Cooldown: c.Cooldown,
		Status:   status,
	}
}

func TargetLabel(c *engine.Character) string {
	return fmt.Sprintf("%s (HP %d)", c.Name(), c.HP)
}

// LegalActions omits the special while it is recharging.
func LegalActions(c *engine.Character) []string {
	actions := []string{string(engine.ActionAttack), string(engine.ActionDefend)}
	if c.Cooldown == 0 {
		actions = append(actions, string(engine.ActionSpecial))
	}
	return actions
}

// TurnPrompt builds the your_turn message for actor. The index of a label
// in enemies or allies is the target_index the reply must carry.
func TurnPrompt(actor *engine.Character, enemies, allies []*engine.Character) types.ServerMessage {
	cooldown := actor.Cooldown
	targets := &types.TurnTargets{Enemy: labels(enemies), Ally: labels(allies)}
	return types.ServerMessage{
		Type:     types.TypeYourTurn,
		Actor:    actor.Name(),
		Cooldown: &cooldown,
		Actions:  LegalActions(actor),
		Targets:  targets,
	}
}

func labels(cs []*engine.Character) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, TargetLabel(c))
	}
	return out
}
