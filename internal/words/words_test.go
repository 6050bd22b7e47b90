package words

import (
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseLines(t *testing.T) {
	text := "# header\nCrane\n  apple \n\nslate\ncrane\nab1de\ntoolong\nhi\n"
	got := ParseLines(text, 5)
	want := []string{"crane", "apple", "slate"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseLines = %v, want %v", got, want)
	}

	if got := ParseLines("wordle\ncrane\n", 6); !reflect.DeepEqual(got, []string{"wordle"}) {
		t.Errorf("ParseLines length 6 = %v", got)
	}
}

func TestLoadEmbeddedDefaults(t *testing.T) {
	l, err := Load(Source{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	a, g := l.Stats()
	if a == 0 || g < a {
		t.Fatalf("Stats = (%d, %d)", a, g)
	}
	if l.Length() != DefaultLength {
		t.Errorf("Length = %d", l.Length())
	}
	for _, w := range l.Answers() {
		if !l.IsAllowed(w) {
			t.Fatalf("answer %q not allowed", w)
		}
	}
	if !l.IsAnswer("CRANE") || !l.IsAllowed("Papal") {
		t.Error("expected crane answer and papal allowed")
	}
	if l.IsAnswer("papal") {
		t.Error("papal should only be an allowed guess")
	}
}

func writeList(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadFiles(t *testing.T) {
	answers := writeList(t, "answers.txt", "crane\nslate\n")
	allowed := writeList(t, "allowed.txt", "trace\nCRATE\n")

	l, err := Load(Source{AnswersFile: answers, AllowedFile: allowed})
	if err != nil {
		t.Fatal(err)
	}
	if a, g := l.Stats(); a != 2 || g != 4 {
		t.Errorf("Stats = (%d, %d), want (2, 4)", a, g)
	}
	if l.IsAnswer("trace") || !l.IsAllowed("crate") {
		t.Error("allowed-only words misclassified")
	}

	// Only allowed: used for both.
	l, err = Load(Source{AllowedFile: allowed})
	if err != nil {
		t.Fatal(err)
	}
	if !l.IsAnswer("trace") {
		t.Error("allowed list should double as answers")
	}

	if _, err := Load(Source{AllowedFile: filepath.Join(t.TempDir(), "missing.txt")}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNewEmptyAnswers(t *testing.T) {
	_, err := New([]string{"toolong"}, []string{"crane"}, 5)
	if !errors.Is(err, ErrNoAnswers) {
		t.Errorf("err = %v, want ErrNoAnswers", err)
	}
}

func TestAnswersIsCopy(t *testing.T) {
	l, err := New([]string{"crane"}, nil, 5)
	if err != nil {
		t.Fatal(err)
	}
	a := l.Answers()
	a[0] = "zzzzz"
	if l.Answers()[0] != "crane" {
		t.Error("Answers exposed internal slice")
	}
}

func TestRandomDeterministic(t *testing.T) {
	answers := []string{"crane", "slate", "trace", "apple", "level"}
	p1 := NewRandom(answers, rand.NewPCG(7, 11))
	p2 := NewRandom(answers, rand.NewPCG(7, 11))

	for i := 0; i < 20; i++ {
		a, b := p1.Pick(), p2.Pick()
		if a != b {
			t.Fatalf("pick %d: %q != %q with equal seeds", i, a, b)
		}
		found := false
		for _, w := range answers {
			if w == a {
				found = true
			}
		}
		if !found {
			t.Fatalf("picked %q outside answers", a)
		}
	}

	if got := NewRandom(nil, nil).Pick(); got != "" {
		t.Errorf("empty picker = %q", got)
	}
}

func TestFixed(t *testing.T) {
	if got := Fixed("WORDLE").Pick(); got != "wordle" {
		t.Errorf("Fixed.Pick = %q", got)
	}
}
