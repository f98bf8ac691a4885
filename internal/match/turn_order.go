package match

import (
	"math/rand"
	"time"

	"github.com/benkosiek/Turn-based-Game/internal/engine"
)

// RandomShuffle returns a uniform in-place shuffle. A nil source is seeded
// from the clock.
func RandomShuffle(src rand.Source) func([]engine.CharacterID) {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	r := rand.New(src)
	return func(ids []engine.CharacterID) {
		r.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	}
}

// KeepOrder leaves the draft order (seat one first) untouched.
func KeepOrder([]engine.CharacterID) {}
