// internal/daily/daily.go
//
// Deterministic word of the day.
// Every player starting a daily game on the same UTC date gets the same secret:
// index = HMAC-SHA256(salt, "YYYY-MM-DD") mod len(answers).

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// WordIndex returns a deterministic index for a date using HMAC(salt, YYYY-MM-DD) % answersLen.
func WordIndex(date time.Time, salt string, answersLen int) int {
	if answersLen <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// take first 8 bytes to uint64 for modulus distribution
	n := binary.BigEndian.Uint64(sum[:8])
	return int(n % uint64(answersLen))
}

// Picker selects the word of the day from Answers.
type Picker struct {
	Answers []string
	Salt    string
	Now     func() time.Time // defaults to time.Now
}

// Pick returns today's answer, or "" when there are no answers.
func (p *Picker) Pick() string {
	if len(p.Answers) == 0 {
		return ""
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	return p.Answers[WordIndex(now(), p.Salt, len(p.Answers))]
}
