package game

import (
	"encoding/json"
	"errors"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/robalobadob/wordle/apps/grid-server/internal/daily"
	"github.com/robalobadob/wordle/apps/grid-server/internal/validity"
)

type dict map[string]bool

func (d dict) IsAllowed(w string) bool { return d[w] }

type fixedPicker string

func (f fixedPicker) Pick() string { return string(f) }

const (
	C = validity.Correct
	P = validity.PresentElsewhere
	A = validity.Absent
)

func newTestEngine(st Settings) *Engine {
	e := NewEngine(
		dict{"apple": true, "apply": true, "paper": true, "crane": true, "slate": true, "level": true, "ellie": true},
		map[Mode]WordPicker{ModeRandom: fixedPicker("crane")},
		st,
	)
	n := 0
	e.NewID = func() string { n++; return "g" + strconv.Itoa(n) }
	e.Now = func() time.Time { return time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC) }
	return e
}

func typeWord(t *testing.T, e *Engine, s *Session, w string) {
	t.Helper()
	for _, r := range w {
		if _, err := e.TypeLetter(s, string(r)); err != nil {
			t.Fatalf("TypeLetter(%q): %v", r, err)
		}
	}
}

func TestStart(t *testing.T) {
	e := newTestEngine(Settings{})

	s, err := e.Start(ModeRandom, "")
	if err != nil {
		t.Fatal(err)
	}
	if s.Secret != "crane" || s.Mode != ModeRandom || s.State != StatePlaying {
		t.Errorf("session = %+v", s)
	}
	if len(s.Rows) != defaultMaxTries || len(s.Rows[0].Letters) != 5 {
		t.Errorf("grid = %d rows x %d cols", len(s.Rows), len(s.Rows[0].Letters))
	}

	s, err = e.Start(ModeRandom, "WORDLE")
	if err != nil {
		t.Fatal(err)
	}
	if s.Mode != ModeFixed || s.Secret != "wordle" || s.Cols() != 6 {
		t.Errorf("fixed session = %+v", s)
	}

	if _, err := e.Start(ModeDaily, ""); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("daily without picker: err = %v", err)
	}
	if _, err := e.Start(ModeRandom, "cr4ne"); !errors.Is(err, ErrInvalidLetter) {
		t.Errorf("bad secret: err = %v", err)
	}
	e.Pickers[ModeRandom] = fixedPicker("")
	if _, err := e.Start(ModeRandom, ""); !errors.Is(err, ErrNoSecret) {
		t.Errorf("empty picker: err = %v", err)
	}
}

func TestTypeAndBackspace(t *testing.T) {
	e := newTestEngine(Settings{})
	s, _ := e.Start(ModeFixed, "apple")

	if err := e.Backspace(s); err != nil || s.Cell != 0 {
		t.Fatalf("backspace at start: cell=%d err=%v", s.Cell, err)
	}
	typeWord(t, e, s, "PAP")
	if got := s.Rows[0].Word(); got != "pap" || s.Cell != 3 {
		t.Fatalf("row = %q cell = %d", got, s.Cell)
	}
	if err := e.Backspace(s); err != nil {
		t.Fatal(err)
	}
	if got := s.Rows[0].Word(); got != "pa" || s.Cell != 2 {
		t.Fatalf("after backspace row = %q cell = %d", got, s.Cell)
	}

	for _, bad := range []string{"", "ab", "1", "é"} {
		if _, err := e.TypeLetter(s, bad); !errors.Is(err, ErrInvalidLetter) {
			t.Errorf("TypeLetter(%q): err = %v", bad, err)
		}
	}

	typeWord(t, e, s, "per")
	if _, err := e.TypeLetter(s, "x"); !errors.Is(err, ErrRowFull) {
		t.Errorf("typing past the row: err = %v", err)
	}
}

func TestSubmit(t *testing.T) {
	e := newTestEngine(Settings{})
	s, _ := e.Start(ModeFixed, "apple")

	typeWord(t, e, s, "pap")
	if _, err := e.Submit(s); !errors.Is(err, ErrIncompleteGuess) {
		t.Fatalf("incomplete: err = %v", err)
	}
	typeWord(t, e, s, "er")
	got, err := e.Submit(s)
	if err != nil {
		t.Fatal(err)
	}
	if want := []validity.Class{P, P, C, P, A}; !reflect.DeepEqual(got, want) {
		t.Errorf("classes = %v, want %v", got, want)
	}
	if s.Row != 1 || s.Cell != 0 || s.State != StatePlaying {
		t.Errorf("after submit row=%d cell=%d state=%s", s.Row, s.Cell, s.State)
	}

	typeWord(t, e, s, "zzzzz")
	if _, err := e.Submit(s); !errors.Is(err, ErrNotInWordList) {
		t.Errorf("unknown word: err = %v", err)
	}
	if s.Row != 1 {
		t.Errorf("rejected word consumed a try")
	}
}

func TestWin(t *testing.T) {
	e := newTestEngine(Settings{})
	s, _ := e.Start(ModeFixed, "apple")

	if _, err := e.Guess(s, "APPLY"); err != nil {
		t.Fatal(err)
	}
	got, err := e.Guess(s, "apple")
	if err != nil {
		t.Fatal(err)
	}
	if !validity.AllCorrect(got) || s.State != StateWon {
		t.Fatalf("state = %s classes = %v", s.State, got)
	}
	if _, err := e.TypeLetter(s, "a"); !errors.Is(err, ErrGameOver) {
		t.Errorf("type after win: err = %v", err)
	}
	if err := e.Backspace(s); !errors.Is(err, ErrGameOver) {
		t.Errorf("backspace after win: err = %v", err)
	}
	if _, err := e.Submit(s); !errors.Is(err, ErrGameOver) {
		t.Errorf("submit after win: err = %v", err)
	}
	if v := s.Snapshot(); v.Answer != "apple" || v.TriesUsed != 2 {
		t.Errorf("view = %+v", v)
	}
}

func TestSecretNotInDictionaryStillWins(t *testing.T) {
	e := newTestEngine(Settings{})
	s, _ := e.Start(ModeFixed, "wordle")
	if _, err := e.Guess(s, "WORDLE"); err != nil {
		t.Fatal(err)
	}
	if s.State != StateWon {
		t.Errorf("state = %s", s.State)
	}
}

func TestLoss(t *testing.T) {
	e := newTestEngine(Settings{MaxTries: 3})
	s, _ := e.Start(ModeFixed, "apple")

	for i, w := range []string{"crane", "slate", "paper"} {
		if v := s.Snapshot(); v.Answer != "" {
			t.Fatalf("answer leaked before the end: %+v", v)
		}
		if _, err := e.Guess(s, w); err != nil {
			t.Fatalf("guess %d: %v", i, err)
		}
	}
	if s.State != StateLost {
		t.Fatalf("state = %s", s.State)
	}
	if got := s.Guesses(); !reflect.DeepEqual(got, []string{"crane", "slate", "paper"}) {
		t.Errorf("guesses = %v", got)
	}
	if v := s.Snapshot(); v.Answer != "apple" || v.MaxTries != 3 {
		t.Errorf("view = %+v", v)
	}
}

func TestGuessRestoresRowOnError(t *testing.T) {
	e := newTestEngine(Settings{})
	s, _ := e.Start(ModeFixed, "apple")
	typeWord(t, e, s, "ap")

	if _, err := e.Guess(s, "zzzzz"); !errors.Is(err, ErrNotInWordList) {
		t.Fatalf("err = %v", err)
	}
	if s.Rows[0].Word() != "ap" || s.Cell != 2 {
		t.Errorf("row = %q cell = %d", s.Rows[0].Word(), s.Cell)
	}
	if _, err := e.Guess(s, "app"); !errors.Is(err, validity.ErrInvalidLength) {
		t.Errorf("short guess: err = %v", err)
	}
	if _, err := e.Guess(s, "ap9le"); !errors.Is(err, ErrInvalidLetter) {
		t.Errorf("digit guess: err = %v", err)
	}
}

func TestAutoSubmit(t *testing.T) {
	e := newTestEngine(Settings{AutoSubmit: true})
	s, _ := e.Start(ModeFixed, "level")

	var last []validity.Class
	for _, r := range "ELLIE" {
		var err error
		if last, err = e.TypeLetter(s, string(r)); err != nil {
			t.Fatal(err)
		}
	}
	if want := []validity.Class{P, P, P, A, P}; !reflect.DeepEqual(last, want) {
		t.Errorf("auto-submitted classes = %v, want %v", last, want)
	}
	if s.Row != 1 || s.Cell != 0 {
		t.Errorf("row=%d cell=%d", s.Row, s.Cell)
	}

	typeWord(t, e, s, "zzzz")
	if _, err := e.TypeLetter(s, "z"); !errors.Is(err, ErrNotInWordList) {
		t.Fatalf("auto-submit of unknown word: err = %v", err)
	}
	if s.Cell != 4 || s.Rows[1].Word() != "zzzz" || s.Row != 1 {
		t.Errorf("rejected letter kept: row=%d cell=%d word=%q", s.Row, s.Cell, s.Rows[1].Word())
	}
}

func TestClone(t *testing.T) {
	e := newTestEngine(Settings{})
	s, _ := e.Start(ModeFixed, "apple")
	if _, err := e.Guess(s, "paper"); err != nil {
		t.Fatal(err)
	}
	c := s.Clone()
	c.Rows[0].Letters[0] = "z"
	c.Rows[0].Classes[0] = C
	if s.Rows[0].Letters[0] != "p" || s.Rows[0].Classes[0] != P {
		t.Error("Clone shares row storage")
	}
}

func TestRestart(t *testing.T) {
	e := newTestEngine(Settings{MaxTries: 1})
	s, _ := e.Start(ModeFixed, "apple")
	if _, err := e.Guess(s, "crane"); err != nil {
		t.Fatal(err)
	}
	if s.State != StateLost {
		t.Fatalf("state = %s", s.State)
	}

	if err := e.Restart(s); err != nil {
		t.Fatal(err)
	}
	if s.State != StatePlaying || s.Secret != "crane" || s.Mode != ModeRandom {
		t.Errorf("after restart = %+v", s)
	}
	if s.Row != 0 || s.Cell != 0 || s.Rows[0].Submitted() {
		t.Errorf("grid not reset: row=%d cell=%d", s.Row, s.Cell)
	}

	// Restart mid-round is allowed.
	typeWord(t, e, s, "cr")
	if err := e.Restart(s); err != nil || s.Cell != 0 {
		t.Errorf("restart while playing: cell=%d err=%v", s.Cell, err)
	}
}

func TestRestartLeavesDaily(t *testing.T) {
	e := newTestEngine(Settings{})
	day := &daily.Picker{
		Answers: []string{"apple", "apply", "paper", "slate", "level"},
		Salt:    "test",
		Now:     func() time.Time { return time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC) },
	}
	e.Pickers[ModeDaily] = day

	s, err := e.Start(ModeDaily, "")
	if err != nil {
		t.Fatal(err)
	}
	word := day.Pick()
	if s.Mode != ModeDaily || s.Secret != word {
		t.Fatalf("start = %s/%q, want daily/%q", s.Mode, s.Secret, word)
	}
	if _, err := e.Guess(s, word); err != nil || s.State != StateWon {
		t.Fatalf("guess: state=%s err=%v", s.State, err)
	}

	if err := e.Restart(s); err != nil {
		t.Fatal(err)
	}
	if s.Mode != ModeRandom || s.Secret != "crane" {
		t.Errorf("after restart = %s/%q, want random/%q", s.Mode, s.Secret, "crane")
	}
}

func TestColsCountsLetters(t *testing.T) {
	s := &Session{Secret: "héllo"}
	if s.Cols() != 5 {
		t.Errorf("Cols = %d, want 5", s.Cols())
	}
}

func TestApply(t *testing.T) {
	e := newTestEngine(Settings{})
	s, _ := e.Start(ModeFixed, "apple")

	steps := []Event{
		{Kind: EventTypeLetter, Letter: "a"},
		{Kind: EventTypeLetter, Letter: "x"},
		{Kind: EventBackspace},
		{Kind: EventTypeLetter, Letter: "p"},
		{Kind: EventTypeLetter, Letter: "p"},
		{Kind: EventTypeLetter, Letter: "l"},
		{Kind: EventTypeLetter, Letter: "y"},
	}
	for _, ev := range steps {
		if _, err := e.Apply(s, ev); err != nil {
			t.Fatalf("Apply(%+v): %v", ev, err)
		}
	}
	got, err := e.Apply(s, Event{Kind: EventSubmit})
	if err != nil {
		t.Fatal(err)
	}
	if want := []validity.Class{C, C, C, C, A}; !reflect.DeepEqual(got, want) {
		t.Errorf("classes = %v, want %v", got, want)
	}
	if _, err := e.Apply(s, Event{Kind: "jump"}); !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("unknown event: err = %v", err)
	}
}

func TestTwoPassRule(t *testing.T) {
	e := newTestEngine(Settings{Rule: validity.RuleTwoPass})
	e.Dict = dict{"papal": true}
	s, _ := e.Start(ModeFixed, "crane")
	got, err := e.Guess(s, "papal")
	if err != nil {
		t.Fatal(err)
	}
	if want := []validity.Class{A, P, A, A, A}; !reflect.DeepEqual(got, want) {
		t.Errorf("classes = %v, want %v", got, want)
	}
}

func TestSessionJSONRoundTrip(t *testing.T) {
	e := newTestEngine(Settings{})
	s, _ := e.Start(ModeFixed, "apple")
	if _, err := e.Guess(s, "paper"); err != nil {
		t.Fatal(err)
	}
	typeWord(t, e, s, "ap")

	b, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	var back Session
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(back.Snapshot(), s.Snapshot()) || back.Secret != s.Secret {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", back.Snapshot(), s.Snapshot())
	}
	// Play continues on the decoded copy.
	typeWord(t, e, &back, "ply")
	if _, err := e.Submit(&back); err != nil {
		t.Fatal(err)
	}
}
