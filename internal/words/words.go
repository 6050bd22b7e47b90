// internal/words/words.go
//
// Word list management for the game engine.
//
// Responsibilities:
//   - Load answer and allowed guess lists from configured files or fall back to embedded defaults.
//   - Maintain sets for quick lookups (answers only, answers∪guesses).
//   - Parse raw list text into normalized words (ParseLines).
//
// Word Lists:
//   - "answers": secret words (exactly Length lowercase letters).
//   - "allowed": valid guesses (always includes answers).
//
// Load behavior:
//   1. If AnswersFile and AllowedFile are both set,
//      load answers from the first and allowed guesses from the second.
//   2. If only one file is set,
//      load it and use it for both answers and allowed guesses.
//   3. If neither is set,
//      fall back to the embedded defaults in package assets.
//
// Lists are immutable after Load and safe for concurrent readers.

package words

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/robalobadob/wordle/apps/grid-server/assets"
)

// DefaultLength is the word length used when Source.Length is zero.
const DefaultLength = 5

// ErrNoAnswers is returned when loading leaves the answers list empty.
var ErrNoAnswers = errors.New("words: answers list is empty")

// Source describes where word lists come from.
type Source struct {
	AnswersFile string // optional path, one word per line
	AllowedFile string // optional path, one word per line
	Length      int    // word length; words of other lengths are dropped
}

// Lists holds the loaded answers and the allowed-guess set.
type Lists struct {
	length     int
	answers    []string            // canonical answers, file order
	answersSet map[string]struct{} // answers only
	allowedSet map[string]struct{} // answers ∪ guesses
}

// Load reads word lists according to src.
func Load(src Source) (*Lists, error) {
	n := src.Length
	if n <= 0 {
		n = DefaultLength
	}

	var ansList, allowList []string
	switch {
	// Case 1: both lists provided
	case src.AnswersFile != "" && src.AllowedFile != "":
		var err error
		if ansList, err = readWordFile(src.AnswersFile, n); err != nil {
			return nil, err
		}
		if allowList, err = readWordFile(src.AllowedFile, n); err != nil {
			return nil, err
		}

	// Case 2: only allowed file provided → use for both
	case src.AllowedFile != "":
		var err error
		if allowList, err = readWordFile(src.AllowedFile, n); err != nil {
			return nil, err
		}
		ansList = allowList

	// Case 2b: only answers file provided
	case src.AnswersFile != "":
		var err error
		if ansList, err = readWordFile(src.AnswersFile, n); err != nil {
			return nil, err
		}

	// Case 3: embedded defaults
	default:
		a, err := assets.AnswersText()
		if err != nil {
			return nil, fmt.Errorf("words: embedded answers: %w", err)
		}
		g, err := assets.AllowedText()
		if err != nil {
			return nil, fmt.Errorf("words: embedded allowed: %w", err)
		}
		ansList, allowList = ParseLines(a, n), ParseLines(g, n)
	}

	return New(ansList, allowList, n)
}

// New builds Lists from already-split words. Words are normalized and
// filtered exactly like file input.
func New(answers, allowed []string, length int) (*Lists, error) {
	if length <= 0 {
		length = DefaultLength
	}
	l := &Lists{length: length}
	l.answers = ParseLines(strings.Join(answers, "\n"), length)
	if len(l.answers) == 0 {
		return nil, ErrNoAnswers
	}
	l.answersSet = toSet(l.answers)

	// Ensure all answers are also marked as allowed
	l.allowedSet = toSet(l.answers)
	for _, w := range ParseLines(strings.Join(allowed, "\n"), length) {
		l.allowedSet[w] = struct{}{}
	}
	return l, nil
}

// readWordFile loads one word per line from a file.
func readWordFile(path string, length int) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("words: read %s: %w", path, err)
	}
	return ParseLines(string(b), length), nil
}

// ParseLines splits text into lowercase words of the given length.
// Blank lines, '#' comments, non-alphabetic entries and repeats are dropped;
// first-seen order is kept.
func ParseLines(text string, length int) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, line := range strings.Split(text, "\n") {
		w := strings.ToLower(strings.TrimSpace(line))
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		if len(w) != length || !isAlpha(w) {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// toSet converts a list of strings into a lookup set.
func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}

// isAlpha reports whether s is all lowercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// Length is the word length every list entry has.
func (l *Lists) Length() int { return l.length }

// Answers returns a copy of the answers list.
func (l *Lists) Answers() []string {
	return append([]string(nil), l.answers...)
}

// IsAllowed reports whether w is a valid guess (answers ∪ guesses).
func (l *Lists) IsAllowed(w string) bool {
	_, ok := l.allowedSet[strings.ToLower(w)]
	return ok
}

// IsAnswer reports whether w is an answer word.
func (l *Lists) IsAnswer(w string) bool {
	_, ok := l.answersSet[strings.ToLower(w)]
	return ok
}

// Stats returns counts of loaded words: (answers, allowed).
func (l *Lists) Stats() (answersCount int, allowedCount int) {
	return len(l.answers), len(l.allowedSet)
}
