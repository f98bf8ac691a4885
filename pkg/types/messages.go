package types

// Server -> Participant
//   welcome          : player_id
//   choose_character : available
//   waiting          : message
//   game_state       : state
//   your_turn        : actor, cooldown, actions, targets
//   action_result    : log
//   game_over        : winner
//   error            : message
//
// Participant -> Server
//   pick_character   : choice
//   action           : action ("attack" | "defend" | "special"), target_index (optional)
//
// Every message is one JSON object terminated by '\n'.

const (
	TypeWelcome         = "welcome"
	TypeChooseCharacter = "choose_character"
	TypeWaiting         = "waiting"
	TypeGameState       = "game_state"
	TypeYourTurn        = "your_turn"
	TypeActionResult    = "action_result"
	TypeGameOver        = "game_over"
	TypeError           = "error"

	TypePickCharacter = "pick_character"
	TypeAction        = "action"
)

type ClientMessage struct {
	Type        string `json:"type"`
	Choice      string `json:"choice,omitempty"`
	Action      string `json:"action,omitempty"`
	TargetIndex *int   `json:"target_index,omitempty"`
}

type ServerMessage struct {
	Type      string       `json:"type"`
	PlayerID  int          `json:"player_id,omitempty"`
	Available []string     `json:"available,omitempty"`
	Message   string       `json:"message,omitempty"`
	State     *StateView   `json:"state,omitempty"`
	Actor     string       `json:"actor,omitempty"`
	Cooldown  *int         `json:"cooldown,omitempty"`
	Actions   []string     `json:"actions,omitempty"`
	Targets   *TurnTargets `json:"targets,omitempty"`
	Log       string       `json:"log,omitempty"`
	Winner    string       `json:"winner,omitempty"`
}

// TurnTargets holds labels only; replies refer to them by index.
type TurnTargets struct {
	Enemy []string `json:"enemy"`
	Ally  []string `json:"ally"`
}

func Welcome(playerID int) ServerMessage {
	return ServerMessage{Type: TypeWelcome, PlayerID: playerID}
}

func Waiting(msg string) ServerMessage {
	return ServerMessage{Type: TypeWaiting, Message: msg}
}

func Error(msg string) ServerMessage {
	return ServerMessage{Type: TypeError, Message: msg}
}

func ChooseCharacter(available []string) ServerMessage {
	return ServerMessage{Type: TypeChooseCharacter, Available: available}
}

func ActionResult(log string) ServerMessage {
	return ServerMessage{Type: TypeActionResult, Log: log}
}

func GameOver(winner string) ServerMessage {
	return ServerMessage{Type: TypeGameOver, Winner: winner}
}

func GameState(state StateView) ServerMessage {
	return ServerMessage{Type: TypeGameState, State: &state}
}

func PickCharacter(choice string) ClientMessage {
	return ClientMessage{Type: TypePickCharacter, Choice: choice}
}

// Act builds an action message; a negative index leaves target_index absent.
func Act(action string, targetIndex int) ClientMessage {
	m := ClientMessage{Type: TypeAction, Action: action}
	if targetIndex >= 0 {
		m.TargetIndex = &targetIndex
	}
	return m
}
