// internal/game/engine.go
//
// Game engine for single-player sessions.
// Responsibilities:
//   - Create sessions with a secret from the mode's picker (or a fixed word).
//   - Apply cell edits, guess submissions and restarts as state transitions.
//   - Score guesses with the session's validity rule.
//   - Track state transitions: playing → won/lost, any → playing on restart.
//
// Notes:
//   - The engine holds no per-session state; every transition mutates the
//     *Session it is given. Callers serialize access per session.
//   - Dictionary and pickers are injected so tests can fix the secret.

package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/wordle/apps/grid-server/internal/validity"
)

// Engine applies the rules of the game to sessions.
type Engine struct {
	Dict     Dictionary
	Pickers  map[Mode]WordPicker
	Settings Settings

	NewID func() string    // defaults to uuid.NewString
	Now   func() time.Time // defaults to time.Now
}

// NewEngine returns an Engine with default ID and clock functions.
func NewEngine(dict Dictionary, pickers map[Mode]WordPicker, st Settings) *Engine {
	return &Engine{
		Dict:     dict,
		Pickers:  pickers,
		Settings: st.withDefaults(),
		NewID:    uuid.NewString,
		Now:      time.Now,
	}
}

// Start creates a new session. A non-empty secret forces ModeFixed;
// otherwise the secret is drawn from the mode's picker.
func (e *Engine) Start(mode Mode, secret string) (*Session, error) {
	if secret != "" {
		mode = ModeFixed
	} else {
		var err error
		if secret, err = e.pick(mode); err != nil {
			return nil, err
		}
	}
	secret = strings.ToLower(strings.TrimSpace(secret))
	if secret == "" || !isAlpha(secret) {
		return nil, fmt.Errorf("%w: secret %q", ErrInvalidLetter, secret)
	}

	now := e.Now()
	s := &Session{
		ID:        e.NewID(),
		Mode:      mode,
		Settings:  e.Settings.withDefaults(),
		CreatedAt: now,
	}
	s.reset(secret, now)
	return s, nil
}

func (e *Engine) pick(mode Mode) (string, error) {
	p, ok := e.Pickers[mode]
	if !ok || p == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	w := p.Pick()
	if w == "" {
		return "", ErrNoSecret
	}
	return w, nil
}

// reset clears the grid for a new secret.
func (s *Session) reset(secret string, now time.Time) {
	s.Secret = secret
	s.State = StatePlaying
	s.Rows = make([]Row, s.Settings.MaxTries)
	for i := range s.Rows {
		s.Rows[i] = newRow(len(secret))
	}
	s.Row, s.Cell = 0, 0
	s.UpdatedAt = now
}

// TypeLetter writes letter into the current cell and advances.
// With AutoSubmit, filling the last cell submits the row; the returned
// classes are non-nil only when a guess was scored.
func (e *Engine) TypeLetter(s *Session, letter string) ([]validity.Class, error) {
	if s.State.Over() {
		return nil, ErrGameOver
	}
	l := strings.ToLower(strings.TrimSpace(letter))
	if len(l) != 1 || !isAlpha(l) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLetter, letter)
	}
	if s.Cell >= s.Cols() {
		return nil, ErrRowFull
	}
	s.Rows[s.Row].Letters[s.Cell] = l
	s.Cell++
	s.UpdatedAt = e.Now()

	if s.Settings.AutoSubmit && s.Cell == s.Cols() {
		classes, err := e.Submit(s)
		if err != nil {
			// a rejected auto-submit also rejects the letter that triggered it
			s.Cell--
			s.Rows[s.Row].Letters[s.Cell] = ""
			return nil, err
		}
		return classes, nil
	}
	return nil, nil
}

// Backspace clears the previous cell. It is a no-op at the start of a row.
func (e *Engine) Backspace(s *Session) error {
	if s.State.Over() {
		return ErrGameOver
	}
	if s.Cell == 0 {
		return nil
	}
	s.Cell--
	s.Rows[s.Row].Letters[s.Cell] = ""
	s.UpdatedAt = e.Now()
	return nil
}

// Submit scores the current row.
//
// Validation rules:
//   - Game must not be finished.
//   - Every cell of the row must be filled.
//   - The word must be in the dictionary (the secret itself always is).
//
// State transitions:
//   - All letters Correct → Won.
//   - Else if the try budget is used up → Lost.
//   - Else the next row becomes current.
func (e *Engine) Submit(s *Session) ([]validity.Class, error) {
	if s.State.Over() {
		return nil, ErrGameOver
	}
	if s.Cell < s.Cols() {
		return nil, ErrIncompleteGuess
	}
	word := s.Rows[s.Row].Word()
	if word != s.Secret && (e.Dict == nil || !e.Dict.IsAllowed(word)) {
		return nil, fmt.Errorf("%w: %q", ErrNotInWordList, word)
	}

	classes, err := s.Settings.Rule.Check(s.Secret, word)
	if err != nil {
		return nil, err
	}
	s.Rows[s.Row].Classes = classes
	s.Row++
	s.UpdatedAt = e.Now()

	switch {
	case validity.AllCorrect(classes):
		s.State = StateWon
	case s.Row >= s.Settings.MaxTries:
		s.State = StateLost
	default:
		s.Cell = 0
	}
	return classes, nil
}

// Guess replaces the current row with word and submits it. On error the
// row is left as it was.
func (e *Engine) Guess(s *Session, word string) ([]validity.Class, error) {
	if s.State.Over() {
		return nil, ErrGameOver
	}
	w := []rune(strings.ToLower(strings.TrimSpace(word)))
	if len(w) != s.Cols() {
		return nil, fmt.Errorf("%w: %d != %d", validity.ErrInvalidLength, len(w), s.Cols())
	}
	if !isAlpha(string(w)) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLetter, word)
	}

	row := &s.Rows[s.Row]
	prevLetters, prevCell := append([]string(nil), row.Letters...), s.Cell
	for i, r := range w {
		row.Letters[i] = string(r)
	}
	s.Cell = s.Cols()

	classes, err := e.Submit(s)
	if err != nil {
		row.Letters, s.Cell = prevLetters, prevCell
		return nil, err
	}
	return classes, nil
}

// Restart begins a new round in s with a fresh secret. Allowed from any
// state. Every restart draws a random word; the daily word is only handed
// out by Start.
func (e *Engine) Restart(s *Session) error {
	mode := ModeRandom
	secret, err := e.pick(mode)
	if err != nil {
		return err
	}
	s.Mode = mode
	s.reset(strings.ToLower(secret), e.Now())
	return nil
}

// isAlpha checks that a string consists only of lowercase a–z.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
