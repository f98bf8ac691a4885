package engine

// CharacterID is a stable index into a Roster.
type CharacterID int

// Character is one combatant. HP is floored at zero; zero means eliminated.
type Character struct {
	ID        CharacterID
	Archetype Archetype
	Team      Team
	HP        int
	MaxHP     int
	Attack    int
	Defense   int
	Speed     int
	Cooldown  int
	Effects   []StatusEffect
}

func (c *Character) Name() string { return c.Archetype.String() }

func (c *Character) Alive() bool { return c.HP > 0 }

// Roster is the arena that owns every character of a match. Teams and turn
// order refer to characters by id only.
type Roster struct {
	chars []*Character
}

func NewRoster() *Roster {
	return &Roster{}
}

// Add creates a character at its archetype's base stats.
func (r *Roster) Add(a Archetype, team Team) *Character {
	p := a.Profile()
	c := &Character{
		ID:        CharacterID(len(r.chars)),
		Archetype: a,
		Team:      team,
		HP:        p.HP,
		MaxHP:     p.HP,
		Attack:    p.Attack,
		Defense:   p.Defense,
		Speed:     p.Speed,
	}
	r.chars = append(r.chars, c)
	return c
}

// Get returns nil for an unknown id.
func (r *Roster) Get(id CharacterID) *Character {
	if id < 0 || int(id) >= len(r.chars) {
		return nil
	}
	return r.chars[id]
}

func (r *Roster) IDs() []CharacterID {
	ids := make([]CharacterID, len(r.chars))
	for i := range r.chars {
		ids[i] = CharacterID(i)
	}
	return ids
}

// Team returns the members of t in the order they were added.
func (r *Roster) Team(t Team) []*Character {
	var out []*Character
	for _, c := range r.chars {
		if c.Team == t {
			out = append(out, c)
		}
	}
	return out
}

func (r *Roster) Living(t Team) []*Character {
	var out []*Character
	for _, c := range r.chars {
		if c.Team == t && c.Alive() {
			out = append(out, c)
		}
	}
	return out
}

func (r *Roster) Alive(t Team) bool {
	return len(r.Living(t)) > 0
}

// Winner reports the surviving side once the other has no living members.
func (r *Roster) Winner() (Team, bool) {
	one, two := r.Alive(TeamOne), r.Alive(TeamTwo)
	switch {
	case one && !two:
		return TeamOne, true
	case two && !one:
		return TeamTwo, true
	default:
		return "", false
	}
}
