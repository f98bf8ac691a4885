package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

var ErrUnknownArchetype = errors.New("unknown archetype")
var ErrNoTarget = errors.New("no valid target")
var ErrOnCooldown = errors.New("special move on cooldown")

type Team string

const (
	TeamOne Team = "Team 1"
	TeamTwo Team = "Team 2"
)

// Opponent returns the other side.
func (t Team) Opponent() Team {
	if t == TeamOne {
		return TeamTwo
	}
	return TeamOne
}

type ActionKind string

const (
	ActionAttack  ActionKind = "attack"
	ActionDefend  ActionKind = "defend"
	ActionSpecial ActionKind = "special"
)

func ParseAction(s string) (ActionKind, bool) {
	switch ActionKind(s) {
	case ActionAttack, ActionDefend, ActionSpecial:
		return ActionKind(s), true
	default:
		return "", false
	}
}

// Roller supplies the uniform draws in [0,1) used for dodge and proc checks.
// *rand.Rand satisfies it.
type Roller interface {
	Float64() float64
}

// Engine applies combat rules to characters. It holds no match state; every
// call mutates only the characters passed to it.
type Engine struct {
	rng Roller
	log *zap.Logger
}

func New(rng Roller, log *zap.Logger) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{rng: rng, log: log}
}

// Attack resolves a basic attack. The target evades with probability
// speed/100; otherwise it loses max(0, attack-defense) hit points.
func (e *Engine) Attack(actor, target *Character) Result {
	res := Result{Action: ActionAttack, Actor: actor.ID, ActorName: actor.Name()}
	if target == nil {
		e.log.Debug("attack without target", zap.String("actor", actor.Name()))
		res.Blocked = ErrNoTarget
		return res
	}

	hit := Hit{Target: target.ID, TargetName: target.Name(), HPBefore: target.HP}
	if e.rng.Float64() < float64(target.Speed)/100 {
		hit.Dodged = true
		hit.HPAfter = target.HP
		res.Hits = append(res.Hits, hit)
		return res
	}

	hit.Damage = target.loseHP(max(0, actor.Attack-target.Defense))
	hit.HPAfter = target.HP
	hit.Eliminated = !target.Alive()
	res.Hits = append(res.Hits, hit)
	return res
}

// Defend doubles the actor's defense. The boost is permanent and stacks on
// repeated use.
func (e *Engine) Defend(actor *Character) Result {
	res := Result{Action: ActionDefend, Actor: actor.ID, ActorName: actor.Name(), DefenseBefore: actor.Defense}
	actor.Defense *= 2
	res.DefenseAfter = actor.Defense
	return res
}

// Special dispatches the actor's archetype move. targets is ignored for
// self-targeted archetypes, filtered to living characters for area moves,
// and its first element is used otherwise. A blocked special changes nothing.
func (e *Engine) Special(actor *Character, targets []*Character) Result {
	p := actor.Archetype.Profile()
	res := Result{
		Action:        ActionSpecial,
		Actor:         actor.ID,
		ActorName:     actor.Name(),
		Move:          p.Special,
		Target:        p.Target,
		AoE:           p.AoE,
		DefenseBefore: actor.Defense,
		DefenseAfter:  actor.Defense,
	}
	if actor.Cooldown > 0 {
		res.Blocked = ErrOnCooldown
		res.Cooldown = actor.Cooldown
		return res
	}

	var picked []*Character
	switch {
	case p.Target == TargetSelf:
		picked = []*Character{actor}
	case p.AoE:
		for _, t := range targets {
			if t != nil && t.Alive() {
				picked = append(picked, t)
			}
		}
	case len(targets) > 0 && targets[0] != nil:
		picked = targets[:1]
	}
	if len(picked) == 0 {
		res.Blocked = ErrNoTarget
		return res
	}

	e.dispatch(actor, picked, &res)
	actor.Cooldown = p.Cooldown
	res.DefenseAfter = actor.Defense
	e.log.Debug("special resolved",
		zap.String("actor", actor.Name()),
		zap.String("move", p.Special),
		zap.Int("targets", len(picked)),
		zap.Int("cooldown", actor.Cooldown),
	)
	return res
}

func (e *Engine) dispatch(actor *Character, targets []*Character, res *Result) {
	switch actor.Archetype {
	case Gladiator:
		t := targets[0]
		res.Hits = append(res.Hits, strike(t, actor.Attack*3/2))
	case Voidcaster:
		for _, t := range targets {
			res.Hits = append(res.Hits, strike(t, actor.Attack))
		}
	case Stormstriker:
		t := targets[0]
		h := strike(t, actor.Attack+t.Defense)
		if e.rng.Float64() < 0.5 {
			t.addEffect(Stun(1))
			h.Applied = append(h.Applied, EffectStun)
		}
		res.Hits = append(res.Hits, h)
	case Nightstalker:
		t := targets[0]
		raw := actor.Attack
		if t.Defense == 0 {
			raw *= 2
		}
		h := strike(t, raw)
		t.addEffect(Poison(5, 3))
		h.Applied = append(h.Applied, EffectPoison)
		res.Hits = append(res.Hits, h)
	case Stoneguard:
		actor.addEffect(DefenseBoost(5, 2))
		res.Hits = append(res.Hits, Hit{
			Target:     actor.ID,
			TargetName: actor.Name(),
			HPBefore:   actor.HP,
			HPAfter:    actor.HP,
			Applied:    []EffectKind{EffectDefenseBoost},
		})
	case Soulmender:
		t := targets[0]
		h := Hit{Target: t.ID, TargetName: t.Name(), HPBefore: t.HP}
		t.HP += 30
		h.Healed = 30
		h.HPAfter = t.HP
		res.Hits = append(res.Hits, h)
	default:
		panic(fmt.Sprintf("engine: no special move for archetype %d", actor.Archetype))
	}
}

// strike deals raw damage reduced by the target's defense.
func strike(t *Character, raw int) Hit {
	h := Hit{Target: t.ID, TargetName: t.Name(), HPBefore: t.HP}
	h.Damage = t.loseHP(max(0, raw-t.Defense))
	h.HPAfter = t.HP
	h.Eliminated = !t.Alive()
	return h
}

// Upkeep runs the start-of-turn step for c: status effects in attachment
// order, then the cooldown tick.
func (e *Engine) Upkeep(c *Character) UpkeepReport {
	rep := c.upkeep()
	if rep.PoisonDamage > 0 || rep.Stunned || len(rep.Expired) > 0 {
		e.log.Debug("upkeep",
			zap.String("character", c.Name()),
			zap.Int("poison", rep.PoisonDamage),
			zap.Int("defense_gain", rep.DefenseGain),
			zap.Bool("stunned", rep.Stunned),
		)
	}
	return rep
}
