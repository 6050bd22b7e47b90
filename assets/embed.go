// assets/embed.go
//
// Embedded default word lists. Used when no list files are configured so the
// server always starts with a playable dictionary.
//
//   answers.txt: secret words, one per line
//   allowed.txt: extra valid guesses (answers are always allowed too)
//
// Lines starting with '#' are comments.

package assets

import "embed"

//go:embed allowed.txt answers.txt
var FS embed.FS

func read(name string) (string, error) {
	b, err := FS.ReadFile(name)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// AnswersText returns the raw embedded answers list.
func AnswersText() (string, error) { return read("answers.txt") }

// AllowedText returns the raw embedded allowed-guess list.
func AllowedText() (string, error) { return read("allowed.txt") }
