package regex

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLibrarySelfTest(t *testing.T) {
	lib := Library()
	if len(lib) == 0 {
		t.Fatal("library is empty")
	}
	for _, tmpl := range lib {
		t.Run(tmpl.Name, func(t *testing.T) {
			for _, err := range tmpl.SelfTest() {
				t.Error(err)
			}
		})
	}
}

func TestLibrarySpeed(t *testing.T) {
	if testing.Short() {
		t.Skip("speed report skipped in short mode")
	}
	for _, tmpl := range Library() {
		for _, s := range tmpl.SpeedTest() {
			// Timing depends on the machine; report rather than fail.
			t.Logf("%s: %d words took %v", tmpl.Name, s.Words, s.Duration)
		}
	}
}

func TestExecuteOmitsUnmatchedSlots(t *testing.T) {
	tmpl := &Template{
		Name: "test",
		Slots: map[string]Slot{
			"greeting": Alternatives([]string{"hi", "hello"}),
			"name":     Pattern(NonEmptyText),
		},
		Templates: []string{
			"{greeting} {name}",
			"{greeting}",
		},
	}
	tests := []struct {
		in   string
		want map[string]string
	}{
		{"hello bob", map[string]string{"greeting": "hello", "name": "bob"}},
		{"hi", map[string]string{"greeting": "hi"}},
		{"hey", nil},
		{"say hi", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := tmpl.Execute(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Execute(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestExecuteKeepsEmptyMatchedSlots(t *testing.T) {
	tmpl := &Template{
		Name:      "empty",
		Slots:     map[string]Slot{"pre": Pattern("(?:oh )?"), "word": Pattern("ok")},
		Templates: []string{"{pre}{word}"},
	}
	got := tmpl.Execute("ok")
	if v, ok := got["pre"]; !ok || v != "" {
		t.Errorf("pre = %q (present %v), want empty match", v, ok)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		tmpl *Template
	}{
		{"no patterns", &Template{Name: "a"}},
		{"undefined slot", &Template{Name: "b", Templates: []string{"{missing}"}}},
		{"bad regex", &Template{Name: "c", Slots: map[string]Slot{"x": Pattern("(")}, Templates: []string{"{x}"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.tmpl.Compile(); err == nil {
				t.Fatal("expected compile error")
			}
			if tt.tmpl.Execute("anything") != nil {
				t.Error("a template that failed to compile must not match")
			}
		})
	}
}

func TestSelfTestReportsFailures(t *testing.T) {
	tmpl := &Template{
		Name:             "broken",
		Slots:            map[string]Slot{"w": Alternatives([]string{"yes"})},
		Templates:        []string{"{w}"},
		PositiveExamples: []Example{{"no", nil}, {"yes", map[string]string{"w": "no"}}},
		NegativeExamples: []string{"yes"},
	}
	if errs := tmpl.SelfTest(); len(errs) != 3 {
		t.Errorf("SelfTest returned %d errors, want 3: %v", len(errs), errs)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate name")
		}
	}()
	Register(&Template{Name: StopTemplate.Name, Templates: []string{"x"}})
}

func TestLookup(t *testing.T) {
	got, ok := Lookup("Stop")
	if !ok || got != StopTemplate {
		t.Errorf("Lookup(Stop) = %v, %v", got, ok)
	}
	if _, ok := Lookup("Nope"); ok {
		t.Error("unexpected template")
	}
}

func TestYesNo(t *testing.T) {
	tests := []struct {
		in      string
		yes, no bool
	}{
		{"yes", true, false},
		{"yeah sure", true, false},
		{"no", false, true},
		{"nope not really", false, true},
		{"not bad", false, false},
		{"no worries", false, false},
		{"right now i'm busy", false, false},
		{"i like pizza", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := IsYes(tt.in); got != tt.yes {
				t.Errorf("IsYes = %v, want %v", got, tt.yes)
			}
			if got := IsNo(tt.in); got != tt.no {
				t.Errorf("IsNo = %v, want %v", got, tt.no)
			}
		})
	}
}

func TestUtilProductions(t *testing.T) {
	if got := OneOf([]string{"a", "b"}); got != "(?:a|b)" {
		t.Errorf("OneOf = %q", got)
	}
	if got := Without([]string{"a", "b", "c"}, "b"); strings.Join(got, ",") != "a,c" {
		t.Errorf("Without = %v", got)
	}
	if got := Concat([]string{"a"}, nil, []string{"b"}); len(got) != 2 {
		t.Errorf("Concat = %v", got)
	}
	if !ContainsPhrase("i love pizza a lot", "pizza") {
		t.Error("ContainsPhrase should find whole word")
	}
	if ContainsPhrase("pizzas are great", "pizza") {
		t.Error("ContainsPhrase should not match partial words")
	}

	tmpl := &Template{
		Name:      "sep",
		Slots:     map[string]Slot{"items": Pattern(OneOrMoreSpaceSep([]string{"red", "blue"}))},
		Templates: []string{"{items}"},
	}
	if got := tmpl.Execute("red blue red"); got["items"] != "red blue red" {
		t.Errorf("OneOrMoreSpaceSep match = %v", got)
	}
	if tmpl.Matches("red  blue") {
		t.Error("double space should not match")
	}
}
