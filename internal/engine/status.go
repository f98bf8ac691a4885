package engine

import "fmt"

type EffectKind string

const (
	EffectPoison       EffectKind = "Poison"
	EffectStun         EffectKind = "Stun"
	EffectDefenseBoost EffectKind = "DefenseBoost"
)

// StatusEffect is a timed modifier owned by one character. Magnitude is the
// per-turn poison damage or the per-turn defense gain, depending on Kind.
type StatusEffect struct {
	Kind      EffectKind
	Remaining int
	Magnitude int
}

func Poison(damagePerTurn, turns int) StatusEffect {
	return StatusEffect{Kind: EffectPoison, Remaining: turns, Magnitude: damagePerTurn}
}

func Stun(turns int) StatusEffect {
	return StatusEffect{Kind: EffectStun, Remaining: turns}
}

func DefenseBoost(delta, turns int) StatusEffect {
	return StatusEffect{Kind: EffectDefenseBoost, Remaining: turns, Magnitude: delta}
}

// Label is the participant-facing form, e.g. "Poison(2)".
func (s StatusEffect) Label() string {
	return fmt.Sprintf("%s(%d)", s.Kind, s.Remaining)
}

// UpkeepReport describes what one upkeep did to its character.
type UpkeepReport struct {
	// Stunned is set when a Stun effect was applied during this upkeep; the
	// character loses the turn even if that was the stun's last tick.
	Stunned        bool
	PoisonDamage   int
	DefenseGain    int
	Expired        []EffectKind
	CooldownBefore int
	CooldownAfter  int
	Eliminated     bool
}

func (s *StatusEffect) apply(c *Character, rep *UpkeepReport) {
	switch s.Kind {
	case EffectPoison:
		rep.PoisonDamage += c.loseHP(s.Magnitude)
	case EffectStun:
		rep.Stunned = true
	case EffectDefenseBoost:
		c.Defense += s.Magnitude
		rep.DefenseGain += s.Magnitude
	}
}

func (c *Character) upkeep() UpkeepReport {
	var rep UpkeepReport
	kept := c.Effects[:0]
	for i := range c.Effects {
		eff := c.Effects[i]
		eff.apply(c, &rep)
		eff.Remaining--
		if eff.Remaining > 0 {
			kept = append(kept, eff)
			continue
		}
		rep.Expired = append(rep.Expired, eff.Kind)
	}
	clear(c.Effects[len(kept):])
	c.Effects = kept

	rep.CooldownBefore = c.Cooldown
	c.Cooldown = max(0, c.Cooldown-1)
	rep.CooldownAfter = c.Cooldown
	rep.Eliminated = !c.Alive()
	return rep
}
