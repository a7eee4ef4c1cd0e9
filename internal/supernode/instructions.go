package supernode

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/BTreeMap/DialogCore/internal/models"
)

// InstrKind selects how an instruction is evaluated.
type InstrKind int

const (
	KindText InstrKind = iota
	KindLiteral
	KindOneOf
	KindEval
	KindVal
	KindHelper
	KindInflect
	KindInflectHelper
	KindEntityName
	KindNeural
	KindConstant
)

// Instruction operation names as written in definitions.
const (
	OpOneOf         = "one of"
	OpEval          = "eval"
	OpVal           = "val"
	OpHelper        = "nlg_helper"
	OpInflect       = "inflect"
	OpInflectHelper = "inflect_helper"
	OpEntityName    = "entity_name"
	OpNeural        = "neural_generation"
	OpConstant      = "constant"
)

// Instr is one generation instruction.
type Instr struct {
	Kind InstrKind
	// Text is the literal text, expression, path or constant name.
	Text  string
	Value any

	Options []Instrs

	Helper string
	Args   []Instr

	Token  string
	Entity string
	Form   string

	InflectType string
	Inner       Instrs

	Prefix    Instrs
	Condition string
	Fallback  Instrs
	Suffix    Instrs
}

// Instrs is a sequence of instructions whose results are joined into text.
type Instrs []Instr

// Neural candidate conditions.
const (
	NeuralNoQuestion = "no_question"
	NeuralIsQuestion = "is_question"
	NeuralShort      = "short"
	shortWords       = 12
)

// irregular forms inflected by grammatical number.
var numberForms = map[string]string{
	"is": "are", "was": "were", "has": "have", "does": "do",
	"it": "they", "its": "their", "this": "these", "that": "those",
	"it's": "they're", "itself": "themselves",
}

// value evaluates instructions, keeping the native value of a single one.
func (s *Scope) value(in Instrs) (any, error) {
	if len(in) == 1 {
		return s.eval(in[0])
	}
	return s.text(in)
}

// text evaluates instructions and joins their results.
func (s *Scope) text(in Instrs) (string, error) {
	parts := make([]string, 0, len(in))
	for _, ins := range in {
		v, err := s.eval(ins)
		if err != nil {
			return "", err
		}
		parts = append(parts, toText(v))
	}
	return joinText(parts), nil
}

func (s *Scope) eval(ins Instr) (any, error) {
	switch ins.Kind {
	case KindText:
		return ins.Text, nil
	case KindLiteral:
		return ins.Value, nil
	case KindOneOf:
		if len(ins.Options) == 0 {
			return "", nil
		}
		return s.text(ins.Options[s.Turn.Intn(len(ins.Options))])
	case KindEval:
		return s.rg.eval.Text(ins.Text, s.env())
	case KindVal:
		return s.Lookup(ins.Text)
	case KindHelper:
		fn, ok := s.rg.hooks.Helpers[ins.Helper]
		if !ok {
			return nil, fmt.Errorf("%w: nlg_helper %q", ErrUnknownHelper, ins.Helper)
		}
		args := make([]any, 0, len(ins.Args))
		for _, a := range ins.Args {
			v, err := s.eval(a)
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		}
		return fn(s, args...)
	case KindInflect:
		v, err := s.Lookup(ins.Entity)
		if err != nil {
			return nil, err
		}
		return inflectToken(ins.Token, ins.Form, isPlural(v)), nil
	case KindInflectHelper:
		inner, err := s.text(ins.Inner)
		if err != nil {
			return nil, err
		}
		return inflectHelper(ins.InflectType, inner)
	case KindEntityName:
		return s.Turn.CurEntity(), nil
	case KindNeural:
		return s.neural(ins)
	case KindConstant:
		c, ok := s.rg.hooks.Constants[ins.Text]
		if !ok {
			return nil, fmt.Errorf("%w: constant %q", ErrUnknownHelper, ins.Text)
		}
		return c, nil
	}
	return nil, fmt.Errorf("%w: instruction kind %d", ErrBadDefinition, ins.Kind)
}

func (s *Scope) neural(ins Instr) (any, error) {
	prefix, err := s.text(ins.Prefix)
	if err != nil {
		return nil, err
	}
	suffix, err := s.text(ins.Suffix)
	if err != nil {
		return nil, err
	}
	var ann *models.Annotations
	if s.Turn != nil {
		ann = s.Turn.Annotations
	}
	for _, c := range ann.NeuralCandidates() {
		text := strings.TrimSpace(c.Text)
		if text == "" || !neuralConditionHolds(ins.Condition, text) {
			continue
		}
		return joinText([]string{prefix, text, suffix}), nil
	}
	return s.text(ins.Fallback)
}

func neuralConditionHolds(cond, text string) bool {
	switch cond {
	case NeuralNoQuestion:
		return !strings.Contains(text, "?")
	case NeuralIsQuestion:
		return strings.HasSuffix(text, "?")
	case NeuralShort:
		return len(strings.Fields(text)) <= shortWords
	}
	return true
}

// Lookup resolves a "namespace.name" path in flags, locals or state.
func (s *Scope) Lookup(path string) (any, error) {
	ns, name, ok := strings.Cut(path, ".")
	if !ok || name == "" || strings.Contains(name, ".") {
		return nil, fmt.Errorf("%w: path %q must be namespace.name", ErrBadDefinition, path)
	}
	switch ns {
	case "flags":
		return s.Flags[name], nil
	case "locals":
		return s.Locals[name], nil
	case "state":
		return s.State[name], nil
	}
	return nil, fmt.Errorf("%w: unknown namespace %q in %q", ErrBadDefinition, ns, path)
}

func isPlural(v any) bool {
	switch x := v.(type) {
	case *models.Entity:
		return x.IsPlural()
	case bool:
		return x
	case map[string]any:
		if e := models.ToEntity(x); e != nil {
			return e.Plural
		}
	}
	return false
}

// inflectToken picks the grammatical number of token. form, when given, is
// "singular,plural".
func inflectToken(token, form string, plural bool) string {
	if form != "" {
		sing, plur, ok := strings.Cut(form, ",")
		if ok {
			if plural {
				return strings.TrimSpace(plur)
			}
			return strings.TrimSpace(sing)
		}
	}
	if !plural {
		return token
	}
	if p, ok := numberForms[strings.ToLower(token)]; ok {
		return p
	}
	return inflection.Plural(token)
}

func inflectHelper(kind, s string) (string, error) {
	switch kind {
	case "plural", "plural_noun":
		return inflection.Plural(s), nil
	case "singular", "singular_noun":
		return inflection.Singular(s), nil
	case "article", "a":
		if s == "" {
			return "", nil
		}
		if strings.ContainsRune("aeiouAEIOU", rune(s[0])) {
			return "an " + s, nil
		}
		return "a " + s, nil
	}
	return "", fmt.Errorf("%w: inflect_helper type %q", ErrBadDefinition, kind)
}

// toText renders an evaluated value for speech. nil renders as nothing.
func toText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case *models.Entity:
		return x.Talkable()
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

// joinText joins non-empty parts with spaces, attaching parts that start with
// punctuation to the previous one.
func joinText(parts []string) string {
	var b strings.Builder
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if b.Len() > 0 && !strings.ContainsRune(".,?!:;", rune(p[0])) {
			b.WriteByte(' ')
		}
		b.WriteString(p)
	}
	return b.String()
}

// valuesEqual compares state values across the shapes produced by Go code,
// YAML and JSON decoding.
func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return isNil(a) && isNil(b)
	}
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	switch x := a.(type) {
	case string:
		return x == entityOrString(b)
	case *models.Entity:
		return x.Name == entityOrString(b)
	case map[string]any:
		if e := models.ToEntity(x); e != nil {
			return e.Name == entityOrString(b)
		}
	}
	if _, ok := b.(string); ok {
		return valuesEqual(b, a)
	}
	return reflect.DeepEqual(a, b)
}

func entityOrString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case *models.Entity:
		if x != nil {
			return x.Name
		}
	case map[string]any:
		if e := models.ToEntity(x); e != nil {
			return e.Name
		}
	case fmt.Stringer:
		return x.String()
	}
	return "\x00"
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float64:
		return x, true
	case float32:
		return float64(x), true
	}
	return 0, false
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	}
	if f, ok := toFloat(v); ok {
		return f != 0
	}
	return !isNil(v)
}
