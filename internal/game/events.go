package game

import (
	"fmt"

	"github.com/robalobadob/wordle/apps/grid-server/internal/validity"
)

// EventKind names a session transition.
type EventKind string

const (
	EventTypeLetter EventKind = "letter"
	EventBackspace  EventKind = "backspace"
	EventSubmit     EventKind = "submit"
	EventGuess      EventKind = "guess" // whole word: fill the row, then submit
	EventRestart    EventKind = "restart"
)

// Event is one player action, as carried over the wire.
type Event struct {
	Kind   EventKind `json:"type"`
	Letter string    `json:"letter,omitempty"`
	Word   string    `json:"word,omitempty"`
}

// Apply dispatches ev to the matching transition. Classes are returned
// when the event scored a guess.
func (e *Engine) Apply(s *Session, ev Event) ([]validity.Class, error) {
	switch ev.Kind {
	case EventTypeLetter:
		return e.TypeLetter(s, ev.Letter)
	case EventBackspace:
		return nil, e.Backspace(s)
	case EventSubmit:
		return e.Submit(s)
	case EventGuess:
		return e.Guess(s, ev.Word)
	case EventRestart:
		return nil, e.Restart(s)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Kind)
}
