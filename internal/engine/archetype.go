package engine

import "fmt"

type Archetype int

const (
	Gladiator Archetype = iota + 1
	Voidcaster
	Stormstriker
	Nightstalker
	Stoneguard
	Soulmender
)

type TargetClass string

const (
	TargetEnemy TargetClass = "enemy"
	TargetAlly  TargetClass = "ally"
	TargetSelf  TargetClass = "self"
)

// Profile is the fixed template of an archetype.
type Profile struct {
	Name     string
	HP       int
	Attack   int
	Defense  int
	Speed    int
	AoE      bool
	Target   TargetClass
	Cooldown int
	Special  string
}

var profiles = []Profile{
	Gladiator:    {Name: "Gladiator", HP: 100, Attack: 20, Defense: 5, Speed: 10, Target: TargetEnemy, Cooldown: 2, Special: "Titan Smash"},
	Voidcaster:   {Name: "Voidcaster", HP: 80, Attack: 25, Defense: 2, Speed: 15, AoE: true, Target: TargetEnemy, Cooldown: 3, Special: "Arcane Blast"},
	Stormstriker: {Name: "Stormstriker", HP: 90, Attack: 18, Defense: 4, Speed: 30, Target: TargetEnemy, Cooldown: 2, Special: "Piercing Arrow"},
	Nightstalker: {Name: "Nightstalker", HP: 70, Attack: 30, Defense: 3, Speed: 40, Target: TargetEnemy, Cooldown: 3, Special: "Silent Kill"},
	Stoneguard:   {Name: "Stoneguard", HP: 120, Attack: 15, Defense: 8, Speed: 15, Target: TargetSelf, Cooldown: 2, Special: "Iron Fortress"},
	Soulmender:   {Name: "Soulmender", HP: 85, Attack: 10, Defense: 4, Speed: 15, Target: TargetAlly, Cooldown: 3, Special: "Healing Light"},
}

// Archetypes lists every archetype in draft order.
func Archetypes() []Archetype {
	return []Archetype{Gladiator, Voidcaster, Stormstriker, Nightstalker, Stoneguard, Soulmender}
}

func (a Archetype) valid() bool { return a >= Gladiator && a <= Soulmender }

func (a Archetype) Profile() Profile {
	if !a.valid() {
		panic(fmt.Sprintf("engine: %v: %d", ErrUnknownArchetype, int(a)))
	}
	return profiles[a]
}

func (a Archetype) String() string {
	if !a.valid() {
		return fmt.Sprintf("Archetype(%d)", int(a))
	}
	return profiles[a].Name
}

// ParseArchetype maps a wire name to its archetype. Names are case sensitive.
func ParseArchetype(name string) (Archetype, error) {
	for _, a := range Archetypes() {
		if profiles[a].Name == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownArchetype, name)
}
