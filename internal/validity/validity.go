// internal/validity/validity.go
//
// Per-letter feedback for a submitted guess.
// Responsibilities:
//   - Classify every guess position as Correct, PresentElsewhere or Absent.
//   - Normalize case internally (raw keystrokes arrive in any case).
//   - Reject secret/guess pairs of different length.
//
// Two rules are provided:
//   - RuleWholeGuess (default): a misplaced letter is PresentElsewhere only if
//     its count across the whole guess does not exceed its count in the secret.
//   - RuleTwoPass: the classic two-pass scoring (hits first, then presents
//     consume the remaining secret letters left to right).
//
// RuleWholeGuess can mark every copy of an over-guessed letter Absent where
// RuleTwoPass would keep one PresentElsewhere (secret "crane", guess "papal").
// Switching rules changes observable feedback, so it is opt-in.

package validity

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidLength is returned when secret and guess differ in length.
var ErrInvalidLength = errors.New("validity: secret and guess differ in length")

// Class is the outcome for a single letter position.
type Class int

const (
	Absent Class = iota
	PresentElsewhere
	Correct
)

// String returns the wire name of c.
func (c Class) String() string {
	switch c {
	case Correct:
		return "correct"
	case PresentElsewhere:
		return "present"
	default:
		return "absent"
	}
}

// MarshalText encodes c by name so JSON payloads read "correct"/"present"/"absent".
func (c Class) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText decodes a wire name produced by MarshalText.
func (c *Class) UnmarshalText(b []byte) error {
	switch string(b) {
	case "correct":
		*c = Correct
	case "present":
		*c = PresentElsewhere
	case "absent":
		*c = Absent
	default:
		return fmt.Errorf("validity: unknown class %q", b)
	}
	return nil
}

// Rule selects the duplicate-letter accounting used by Check.
type Rule int

const (
	RuleWholeGuess Rule = iota
	RuleTwoPass
)

// ParseRule maps a config value to a Rule. Empty selects RuleWholeGuess.
func ParseRule(s string) (Rule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "whole-guess":
		return RuleWholeGuess, nil
	case "two-pass":
		return RuleTwoPass, nil
	}
	return RuleWholeGuess, fmt.Errorf("validity: unknown rule %q", s)
}

func (r Rule) String() string {
	if r == RuleTwoPass {
		return "two-pass"
	}
	return "whole-guess"
}

// Check classifies guess against secret with RuleWholeGuess.
func Check(secret, guess string) ([]Class, error) {
	return RuleWholeGuess.Check(secret, guess)
}

// Check classifies guess against secret with rule r.
// The result has one entry per letter, index-aligned with guess.
func (r Rule) Check(secret, guess string) ([]Class, error) {
	s := []rune(strings.ToLower(secret))
	g := []rune(strings.ToLower(guess))
	if len(s) != len(g) {
		return nil, fmt.Errorf("%w: %d != %d", ErrInvalidLength, len(s), len(g))
	}
	if r == RuleTwoPass {
		return twoPass(s, g), nil
	}
	return wholeGuess(s, g), nil
}

// wholeGuess counts occurrences over the entire guess, not only the
// positions already classified.
func wholeGuess(s, g []rune) []Class {
	res := make([]Class, len(g))
	for i := range g {
		if s[i] == g[i] {
			res[i] = Correct
			continue
		}
		inSecret, inGuess := 0, 0
		for j := range s {
			if s[j] == g[i] {
				inSecret++
			}
			if g[j] == g[i] {
				inGuess++
			}
		}
		if inSecret > 0 && inGuess <= inSecret {
			res[i] = PresentElsewhere
		} else {
			res[i] = Absent
		}
	}
	return res
}

// twoPass marks hits, then lets misplaced guess letters consume the
// secret letters that were not hit, left to right.
func twoPass(s, g []rune) []Class {
	res := make([]Class, len(g))
	remaining := make(map[rune]int, len(s))

	for i := range g {
		if g[i] == s[i] {
			res[i] = Correct
		} else {
			remaining[s[i]]++
		}
	}
	for i := range g {
		if res[i] == Correct {
			continue
		}
		if remaining[g[i]] > 0 {
			res[i] = PresentElsewhere
			remaining[g[i]]--
		} else {
			res[i] = Absent
		}
	}
	return res
}

// AllCorrect reports whether every class is Correct.
// An empty result is not a win.
func AllCorrect(cs []Class) bool {
	if len(cs) == 0 {
		return false
	}
	for _, c := range cs {
		if c != Correct {
			return false
		}
	}
	return true
}
