package supernode

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/BTreeMap/DialogCore/internal/models"
)

func TestEval(t *testing.T) {
	ev := NewEvaluator()
	env := map[string]any{
		"state":  map[string]any{"count": 3.0, "name": "rex"},
		"flags":  map[string]any{"yes": true, "no": false},
		"user":   map[string]any{"name": "Ann"},
		"entity": models.NewEntity("Queen (band)", []string{"band"}, false, 100),
	}
	tests := []struct {
		name string
		src  string
		want any
	}{
		{"None literal", "None", nil},
		{"True literal", "True", true},
		{"numeric equality across types", "state.count == 3", true},
		{"string equality", "state.name == 'rex'", true},
		{"python booleans", "flags.yes and not flags.no", true},
		{"python literal inside", "flags.no == False", true},
		{"is None", "state.missing is None", true},
		{"is not None", "state.name is not None", true},
		{"method call", "entity.Talkable()", "Queen"},
		{"comparison", "state.count >= 2", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ev.Eval(tt.src, env)
			if err != nil {
				t.Fatalf("Eval(%q): %v", tt.src, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Eval(%q) mismatch (-want +got):\n%s", tt.src, diff)
			}
		})
	}
}

func TestEvalRejectsForbiddenExpressions(t *testing.T) {
	ev := NewEvaluator()
	for _, src := range []string{
		"state.count + 1",
		"state.count * 2",
		"len(state.name)",
		"print('x')",
		"-state.count",
		"'a' + 'b'",
		"'rex' in ['rex', 'fido']",
		"state.gone ?? 'x'",
		"flags.yes ? 'a' : 'b'",
		"{'k': 1}",
	} {
		t.Run(src, func(t *testing.T) {
			_, err := ev.Compile(src)
			if !errors.Is(err, ErrForbiddenExpression) {
				t.Errorf("Compile(%q) = %v, want ErrForbiddenExpression", src, err)
			}
		})
	}
}

func TestRender(t *testing.T) {
	ev := NewEvaluator()
	env := map[string]any{
		"user":  map[string]any{"name": "Ann"},
		"state": map[string]any{},
	}
	tests := []struct {
		tpl  string
		want string
	}{
		{"plain text", "plain text"},
		{"Hi {user.name}!", "Hi Ann!"},
		{"Hi {user.name}, {{literal}}", "Hi Ann, {literal}"},
		{"missing {state.gone}.", "missing ."},
		{"quoted {'}'} brace", "quoted } brace"},
	}
	for _, tt := range tests {
		got, err := ev.Render(tt.tpl, env)
		if err != nil {
			t.Fatalf("Render(%q): %v", tt.tpl, err)
		}
		if got != tt.want {
			t.Errorf("Render(%q) = %q, want %q", tt.tpl, got, tt.want)
		}
	}

	if _, err := ev.Render("broken {user.name", env); !errors.Is(err, ErrBadDefinition) {
		t.Errorf("unterminated placeholder: got %v", err)
	}
}

func TestEvalInstructionText(t *testing.T) {
	ev := NewEvaluator()
	env := map[string]any{
		"flags": map[string]any{"want": false, "have": true},
		"state": map[string]any{"name": "rex"},
		"user":  map[string]any{"name": "Ann"},
	}
	tests := []struct {
		name string
		text string
		want any
	}{
		{"plain sentence", "Sounds good", "Sounds good"},
		{"single word", "Cool", "Cool"},
		{"sentence with punctuation", "Oh no, that's a shame.", "Oh no, that's a shame."},
		{"None literal", "None", nil},
		{"True literal", "True", true},
		{"False literal", "False", false},
		{"lowercase word stays text", "none", "none"},
		{"template", "Nice to meet you, {user.name}.", "Nice to meet you, Ann."},
		{"false placeholder", "{flags.want}", false},
		{"true placeholder", "{flags.have}", true},
		{"python literal placeholder", "{None}", ""},
		{"string placeholder", "{state.name}", "rex"},
		{"escaped braces", "{{True}}", "{True}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ev.Text(tt.text, env)
			if err != nil {
				t.Fatalf("Text(%q): %v", tt.text, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Text(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
			if truthy(got) != truthy(tt.want) {
				t.Errorf("truthy(Text(%q)) = %v", tt.text, truthy(got))
			}
		})
	}
}

func TestCheckTemplate(t *testing.T) {
	ev := NewEvaluator()
	for tpl, ok := range map[string]bool{
		"plain text":                true,
		"Hi {user.name}":            true,
		"{rg.EntityNameOr('them')}": true,
		"{None}":                    true,
		"{state.count + 1}":         false,
		"{flags.yes ? 'a' : 'b'}":   false,
		"broken {user.name":         false,
	} {
		err := ev.Check(tpl)
		if (err == nil) != ok {
			t.Errorf("Check(%q) = %v, want ok=%v", tpl, err, ok)
		}
	}
}

func TestIsTemplate(t *testing.T) {
	for s, want := range map[string]bool{
		"state.x == 1":   false,
		"hello {name}":   true,
		"{{not a hole}}": false,
		"open { only":    false,
	} {
		if got := IsTemplate(s); got != want {
			t.Errorf("IsTemplate(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestJoinText(t *testing.T) {
	tests := []struct {
		parts []string
		want  string
	}{
		{[]string{"I love", "dogs", "!"}, "I love dogs!"},
		{[]string{"", "Hello", " ", "there", ",", "friend", "."}, "Hello there, friend."},
		{[]string{"Really", "?"}, "Really?"},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := joinText(tt.parts); got != tt.want {
			t.Errorf("joinText(%q) = %q, want %q", tt.parts, got, tt.want)
		}
	}
}

func TestInflection(t *testing.T) {
	tests := []struct {
		token, form string
		plural      bool
		want        string
	}{
		{"is", "", false, "is"},
		{"is", "", true, "are"},
		{"it", "", true, "they"},
		{"song", "", true, "songs"},
		{"whatever", "this one,these ones", true, "these ones"},
		{"whatever", "this one,these ones", false, "this one"},
	}
	for _, tt := range tests {
		if got := inflectToken(tt.token, tt.form, tt.plural); got != tt.want {
			t.Errorf("inflectToken(%q, %q, %v) = %q, want %q", tt.token, tt.form, tt.plural, got, tt.want)
		}
	}

	for _, tt := range []struct{ kind, in, want string }{
		{"plural", "cat", "cats"},
		{"singular", "dogs", "dog"},
		{"article", "apple", "an apple"},
		{"article", "pear", "a pear"},
	} {
		got, err := inflectHelper(tt.kind, tt.in)
		if err != nil || got != tt.want {
			t.Errorf("inflectHelper(%q, %q) = %q, %v; want %q", tt.kind, tt.in, got, err, tt.want)
		}
	}
	if _, err := inflectHelper("shout", "x"); !errors.Is(err, ErrBadDefinition) {
		t.Errorf("unknown inflect type: got %v", err)
	}
}

func TestValuesEqual(t *testing.T) {
	queen := models.NewEntity("Queen (band)", nil, false, 0)
	tests := []struct {
		a, b any
		want bool
	}{
		{3, 3.0, true},
		{int64(2), 2, true},
		{"x", "x", true},
		{"x", "y", false},
		{nil, nil, true},
		{nil, false, false},
		{(*models.Entity)(nil), nil, true},
		{queen, "Queen (band)", true},
		{"Queen (band)", queen, true},
		{map[string]any{"name": "Queen (band)"}, "Queen (band)", true},
		{true, true, true},
		{true, "True", false},
	}
	for _, tt := range tests {
		if got := valuesEqual(tt.a, tt.b); got != tt.want {
			t.Errorf("valuesEqual(%#v, %#v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestTranslateLiterals(t *testing.T) {
	tests := map[string]string{
		"x is None":             "x == nil",
		"x is not None":         "x != nil",
		"a == True or b":        "a == true or b",
		"'None is here'":        "'None is here'",
		"state.island == False": "state.island == false",
		"this.None":             "this.None",
	}
	for in, want := range tests {
		if got := translateLiterals(in); got != want {
			t.Errorf("translateLiterals(%q) = %q, want %q", in, got, want)
		}
	}
}
