// Package regex compiles declarative slot templates into anchored matchers
// and holds the template, word and response libraries shared by every RG.
package regex

import (
	"fmt"
	"log/slog"
	"maps"
	"regexp"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"
)

// MaxExecuteDuration is the budget for one Execute call. Slower calls are
// logged.
const MaxExecuteDuration = time.Millisecond

// Slot is the pattern bound to a {name} placeholder.
type Slot interface {
	pattern() string
}

// Pattern is a slot given as a raw regular expression.
type Pattern string

func (p Pattern) pattern() string { return string(p) }

// Alternatives is a slot given as a list of alternative patterns, compiled to
// a grouped alternation (a|b|c).
type Alternatives []string

func (a Alternatives) pattern() string { return "(" + strings.Join(a, "|") + ")" }

// Example is a positive self-test case with its expected slot mapping.
type Example struct {
	Text  string
	Slots map[string]string
}

// Template is a named set of anchored patterns sharing slot definitions.
// Patterns are tried in order and the first match wins.
type Template struct {
	Name             string
	Slots            map[string]Slot
	Templates        []string
	PositiveExamples []Example
	NegativeExamples []string

	once     sync.Once
	compiled []*regexp.Regexp
	err      error
}

var placeholderRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Compile expands placeholders into named groups, anchors every pattern and
// compiles it. It is safe to call more than once.
func (t *Template) Compile() error {
	t.once.Do(func() {
		t.compiled, t.err = t.compile()
		if t.err != nil {
			slog.Error("Template.Compile: failed", "template", t.Name, "error", t.err)
		}
	})
	return t.err
}

func (t *Template) compile() ([]*regexp.Regexp, error) {
	if len(t.Templates) == 0 {
		return nil, fmt.Errorf("template %s: no patterns", t.Name)
	}
	groups := make(map[string]string, len(t.Slots))
	for name, slot := range t.Slots {
		if slot == nil {
			return nil, fmt.Errorf("template %s: slot %q has no pattern", t.Name, name)
		}
		groups[name] = "(?P<" + name + ">" + slot.pattern() + ")"
	}
	out := make([]*regexp.Regexp, 0, len(t.Templates))
	for i, tmpl := range t.Templates {
		var missing []string
		expanded := placeholderRe.ReplaceAllStringFunc(tmpl, func(m string) string {
			name := m[1 : len(m)-1]
			g, ok := groups[name]
			if !ok {
				missing = append(missing, name)
				return m
			}
			return g
		})
		if len(missing) > 0 {
			return nil, fmt.Errorf("template %s pattern %d: undefined slots %v", t.Name, i, missing)
		}
		re, err := regexp.Compile("^" + expanded + "$")
		if err != nil {
			return nil, fmt.Errorf("template %s pattern %d: %w", t.Name, i, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// MustCompile panics if the template does not compile. For package-level
// library templates.
func (t *Template) MustCompile() *Template {
	if err := t.Compile(); err != nil {
		panic(err)
	}
	return t
}

// Execute returns the slot mapping of the first matching pattern, or nil when
// nothing matches. Slots whose group did not participate are omitted.
func (t *Template) Execute(utterance string) map[string]string {
	if err := t.Compile(); err != nil {
		return nil
	}
	start := time.Now()
	defer func() {
		if d := time.Since(start); d > MaxExecuteDuration {
			slog.Warn("Template.Execute: slow match", "template", t.Name, "duration", d, "length", len(utterance))
		}
	}()
	for _, re := range t.compiled {
		idx := re.FindStringSubmatchIndex(utterance)
		if idx == nil {
			continue
		}
		slots := make(map[string]string)
		for i, name := range re.SubexpNames() {
			if name == "" || idx[2*i] < 0 {
				continue
			}
			if _, ok := t.Slots[name]; !ok {
				continue
			}
			slots[name] = utterance[idx[2*i]:idx[2*i+1]]
		}
		return slots
	}
	return nil
}

// Matches reports whether any pattern matches.
func (t *Template) Matches(utterance string) bool {
	return t.Execute(utterance) != nil
}

// SelfTest checks every positive example matches with exactly its declared
// slots and no negative example matches.
func (t *Template) SelfTest() []error {
	if err := t.Compile(); err != nil {
		return []error{err}
	}
	var errs []error
	for _, ex := range t.PositiveExamples {
		got := t.Execute(ex.Text)
		want := ex.Slots
		if want == nil {
			want = map[string]string{}
		}
		switch {
		case got == nil:
			errs = append(errs, fmt.Errorf("%s: positive example %q did not match", t.Name, ex.Text))
		case !maps.Equal(got, want):
			errs = append(errs, fmt.Errorf("%s: positive example %q matched with slots %v, want %v", t.Name, ex.Text, got, want))
		}
	}
	for _, text := range t.NegativeExamples {
		if got := t.Execute(text); got != nil {
			errs = append(errs, fmt.Errorf("%s: negative example %q matched with slots %v", t.Name, text, got))
		}
	}
	return errs
}

// SlowMatch records an Execute call over MaxExecuteDuration.
type SlowMatch struct {
	Words    int
	Duration time.Duration
}

// SpeedTestLengths are the stock input lengths, in words, for SpeedTest.
var SpeedTestLengths = []int{5, 10, 20, 50, 100}

// SpeedTest executes the template on filler text of increasing length and
// reports runs over MaxExecuteDuration.
func (t *Template) SpeedTest() []SlowMatch {
	var slow []SlowMatch
	for _, n := range SpeedTestLengths {
		text := strings.TrimSpace(strings.Repeat("asdfasdf ", n))
		start := time.Now()
		t.Execute(text)
		if d := time.Since(start); d > MaxExecuteDuration {
			slow = append(slow, SlowMatch{Words: n, Duration: d})
		}
	}
	return slow
}

var (
	libraryMu sync.Mutex
	library   = map[string]*Template{}
)

// register adds a library template. Names must be unique.
func register(t *Template) *Template {
	libraryMu.Lock()
	defer libraryMu.Unlock()
	if _, dup := library[t.Name]; dup {
		panic("regex: duplicate template " + t.Name)
	}
	library[t.Name] = t
	return t
}

// Register adds an RG-specific template to the library so it is covered by
// the library self-tests.
func Register(t *Template) *Template { return register(t) }

// Library lists every registered template sorted by name.
func Library() []*Template {
	libraryMu.Lock()
	defer libraryMu.Unlock()
	names := slices.Collect(maps.Keys(library))
	sort.Strings(names)
	out := make([]*Template, 0, len(names))
	for _, n := range names {
		out = append(out, library[n])
	}
	return out
}

// Lookup returns a library template by name.
func Lookup(name string) (*Template, bool) {
	libraryMu.Lock()
	defer libraryMu.Unlock()
	t, ok := library[name]
	return t, ok
}
