// internal/game/types.go
//
// Core type definitions for the game engine.
// Defines:
//   - State: the session state machine's states (playing/won/lost).
//   - Row: one try of the grid (typed letters + feedback once submitted).
//   - Session: state for a single in-progress or finished round.
//   - View: the client-facing snapshot of a Session.

package game

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/robalobadob/wordle/apps/grid-server/internal/validity"
)

// State is the session's position in the Playing → Won/Lost machine.
type State string

const (
	StatePlaying State = "playing"
	StateWon     State = "won"
	StateLost    State = "lost"
)

// Over reports whether no more edits or guesses are accepted.
func (s State) Over() bool { return s == StateWon || s == StateLost }

// Mode says where a session's secret words come from.
type Mode string

const (
	ModeRandom Mode = "random" // uniform draw from the answers list
	ModeDaily  Mode = "daily"  // word of the day
	ModeFixed  Mode = "fixed"  // caller-supplied secret
)

// Dictionary is the membership test for legal guesses.
type Dictionary interface {
	IsAllowed(word string) bool
}

// WordPicker supplies secret words.
type WordPicker interface {
	Pick() string
}

// Settings are per-session rules fixed at creation.
type Settings struct {
	MaxTries   int           `json:"maxTries"`
	Rule       validity.Rule `json:"rule"`
	AutoSubmit bool          `json:"autoSubmit"` // submit as soon as the last cell is typed
}

const defaultMaxTries = 6

func (st Settings) withDefaults() Settings {
	if st.MaxTries <= 0 {
		st.MaxTries = defaultMaxTries
	}
	return st
}

// Row is one try. Letters holds one lowercase letter per cell ("" when empty);
// Classes is nil until the row is submitted.
type Row struct {
	Letters []string         `json:"letters"`
	Classes []validity.Class `json:"classes,omitempty"`
}

func newRow(cols int) Row { return Row{Letters: make([]string, cols)} }

// Word joins the typed letters.
func (r Row) Word() string { return strings.Join(r.Letters, "") }

// Submitted reports whether the row has feedback.
func (r Row) Submitted() bool { return r.Classes != nil }

// Session holds the state of a single round.
type Session struct {
	ID        string    `json:"id"`
	Mode      Mode      `json:"mode"`
	Secret    string    `json:"secret"` // always lowercase
	State     State     `json:"state"`
	Rows      []Row     `json:"rows"`
	Row       int       `json:"row"`  // current try index; equals tries used once submitted
	Cell      int       `json:"cell"` // next cell to type into
	Settings  Settings  `json:"settings"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	c := *s
	c.Rows = make([]Row, len(s.Rows))
	for i, r := range s.Rows {
		c.Rows[i] = Row{Letters: append([]string(nil), r.Letters...)}
		if r.Classes != nil {
			c.Rows[i].Classes = append([]validity.Class(nil), r.Classes...)
		}
	}
	return &c
}

// Cols is the word length of the round.
func (s *Session) Cols() int { return utf8.RuneCountInString(s.Secret) }

// Guesses returns the submitted words in order.
func (s *Session) Guesses() []string {
	var out []string
	for _, r := range s.Rows {
		if r.Submitted() {
			out = append(out, r.Word())
		}
	}
	return out
}

// View is what a client may see of a session. Answer is only set once
// the round is over.
type View struct {
	ID         string `json:"id"`
	Mode       Mode   `json:"mode"`
	State      State  `json:"state"`
	Rows       []Row  `json:"rows"`
	Row        int    `json:"row"`
	Cell       int    `json:"cell"`
	TriesUsed  int    `json:"triesUsed"`
	MaxTries   int    `json:"maxTries"`
	WordLength int    `json:"wordLength"`
	Rule       string `json:"rule"`
	Answer     string `json:"answer,omitempty"`
}

// Snapshot copies s into a View.
func (s *Session) Snapshot() View {
	rows := s.Clone().Rows
	v := View{
		ID:         s.ID,
		Mode:       s.Mode,
		State:      s.State,
		Rows:       rows,
		Row:        s.Row,
		Cell:       s.Cell,
		TriesUsed:  len(s.Guesses()),
		MaxTries:   s.Settings.MaxTries,
		WordLength: s.Cols(),
		Rule:       s.Settings.Rule.String(),
	}
	if s.State.Over() {
		v.Answer = s.Secret
	}
	return v
}
