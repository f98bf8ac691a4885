package engine

// loseHP removes n hit points, flooring at zero, and returns n.
func (c *Character) loseHP(n int) int {
	if n <= 0 {
		return 0
	}
	c.HP = max(0, c.HP-n)
	return n
}

func (c *Character) addEffect(s StatusEffect) {
	if s.Remaining <= 0 {
		return
	}
	c.Effects = append(c.Effects, s)
}

func (c *Character) hasEffect(k EffectKind) bool {
	for _, e := range c.Effects {
		if e.Kind == k {
			return true
		}
	}
	return false
}

func containsKind(kinds []EffectKind, k EffectKind) bool {
	for _, x := range kinds {
		if x == k {
			return true
		}
	}
	return false
}
