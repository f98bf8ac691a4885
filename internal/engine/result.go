package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Hit is the effect of one action on one character.
type Hit struct {
	Target     CharacterID
	TargetName string
	Dodged     bool
	Damage     int
	Healed     int
	HPBefore   int
	HPAfter    int
	Applied    []EffectKind
	Eliminated bool
}

// Result is the outcome of one resolved action. A non-nil Blocked means the
// action had no effect on any character.
type Result struct {
	Action        ActionKind
	Actor         CharacterID
	ActorName     string
	Move          string
	Target        TargetClass
	AoE           bool
	Hits          []Hit
	DefenseBefore int
	DefenseAfter  int
	Blocked       error
	Cooldown      int
}

func (r Result) Effective() bool { return r.Blocked == nil }

// String renders the human-readable result line sent to participants.
func (r Result) String() string {
	switch r.Action {
	case ActionAttack:
		return r.attackLine()
	case ActionDefend:
		return fmt.Sprintf("%s defends, +%d DEF → %d.", r.ActorName, r.DefenseAfter-r.DefenseBefore, r.DefenseAfter)
	case ActionSpecial:
		return r.specialLine()
	default:
		return fmt.Sprintf("Unknown action from %s.", r.ActorName)
	}
}

func (r Result) attackLine() string {
	if r.Blocked != nil || len(r.Hits) == 0 {
		return fmt.Sprintf("%s tried to attack, but no valid target.", r.ActorName)
	}
	h := r.Hits[0]
	if h.Dodged {
		return fmt.Sprintf("%s attacks %s, but %s DODGES!", r.ActorName, h.TargetName, h.TargetName)
	}
	line := fmt.Sprintf("%s attacks %s for %d damage %s.", r.ActorName, h.TargetName, h.Damage, hpChange(h))
	if h.Eliminated {
		line += fmt.Sprintf(" %s is eliminated!", h.TargetName)
	}
	return line
}

func (r Result) specialLine() string {
	switch {
	case errors.Is(r.Blocked, ErrOnCooldown):
		return fmt.Sprintf("%s's special is on cooldown for %d more turn(s).", r.ActorName, r.Cooldown)
	case errors.Is(r.Blocked, ErrNoTarget) && r.AoE:
		return fmt.Sprintf("%s tried a team-wide special, but no valid targets.", r.ActorName)
	case errors.Is(r.Blocked, ErrNoTarget):
		return fmt.Sprintf("%s tried special, but no valid %s target.", r.ActorName, r.Target)
	case r.Blocked != nil || len(r.Hits) == 0:
		return fmt.Sprintf("%s's special fizzles.", r.ActorName)
	}

	if r.AoE {
		parts := make([]string, 0, len(r.Hits))
		for _, h := range r.Hits {
			parts = append(parts, fmt.Sprintf("%s -%d %s%s", h.TargetName, h.Damage, hpChange(h), eliminated(h)))
		}
		return fmt.Sprintf("%s uses %s, a team-wide special:\n  %s", r.ActorName, r.Move, strings.Join(parts, "\n  "))
	}

	h := r.Hits[0]
	switch r.Target {
	case TargetAlly:
		return fmt.Sprintf("%s uses %s and heals %s for %d %s.", r.ActorName, r.Move, h.TargetName, h.Healed, hpChange(h))
	case TargetSelf:
		return fmt.Sprintf("%s uses %s, a self-buff.%s", r.ActorName, r.Move, appliedNote(h.Applied))
	}
	if h.Damage > 0 {
		return fmt.Sprintf("%s uses %s on %s for %d damage %s.%s%s",
			r.ActorName, r.Move, h.TargetName, h.Damage, hpChange(h), appliedNote(h.Applied), eliminated(h))
	}
	return fmt.Sprintf("%s uses %s on %s.%s %s", r.ActorName, r.Move, h.TargetName, appliedNote(h.Applied), hpChange(h))
}

func hpChange(h Hit) string {
	return fmt.Sprintf("(HP %d → %d)", h.HPBefore, h.HPAfter)
}

func eliminated(h Hit) string {
	if !h.Eliminated {
		return ""
	}
	return fmt.Sprintf(" %s is eliminated!", h.TargetName)
}

func appliedNote(kinds []EffectKind) string {
	if len(kinds) == 0 {
		return ""
	}
	var uniq []string
	var seen []EffectKind
	for _, k := range kinds {
		if containsKind(seen, k) {
			continue
		}
		seen = append(seen, k)
		uniq = append(uniq, string(k))
	}
	return fmt.Sprintf(" [Status applied: %s]", strings.Join(uniq, ", "))
}

// Describe renders the upkeep line for c, or "" when nothing visible happened.
func (rep UpkeepReport) Describe(name string) string {
	var parts []string
	if rep.PoisonDamage > 0 {
		parts = append(parts, fmt.Sprintf("%s takes %d poison damage.", name, rep.PoisonDamage))
	}
	if rep.DefenseGain > 0 {
		parts = append(parts, fmt.Sprintf("%s gains %d defense.", name, rep.DefenseGain))
	}
	if rep.Eliminated {
		parts = append(parts, fmt.Sprintf("%s is eliminated!", name))
	}
	return strings.Join(parts, " ")
}
