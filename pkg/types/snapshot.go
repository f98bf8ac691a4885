package types

// StateView is the participant-facing projection of a session:
//   phase: "drafting" | "in_progress" | "finished"
//   teams: { "Team 1": CharacterView[], "Team 2": CharacterView[] }
//   turn_order: character names in acting order
//   winner: set once finished
type StateView struct {
	Phase     string                     `json:"phase"`
	Teams     map[string][]CharacterView `json:"teams"`
	TurnOrder []string                   `json:"turn_order"`
	Winner    string                     `json:"winner,omitempty"`
}

type CharacterView struct {
	Name     string   `json:"name"`
	HP       int      `json:"hp"`
	MaxHP    int      `json:"max_hp"`
	Defense  int      `json:"defense"`
	Cooldown int      `json:"cooldown"`
	Status   []string `json:"status"`
}
