package supernode

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
)

// Evaluator compiles and runs expressions embedded in dialog definitions.
// The language is limited to identifiers, member access, method calls on
// values, comparisons, boolean logic and literals; everything else is
// rejected before compilation.
type Evaluator struct {
	programs sync.Map // source -> *vm.Program
}

// NewEvaluator returns an evaluator with an empty program cache.
func NewEvaluator() *Evaluator { return &Evaluator{} }

var allowedBinary = map[string]bool{
	"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true,
	"and": true, "or": true, "&&": true, "||": true,
}

type restrictVisitor struct {
	err error
}

func (v *restrictVisitor) Visit(node *ast.Node) {
	if v.err != nil {
		return
	}
	switch n := (*node).(type) {
	case *ast.NilNode, *ast.IdentifierNode, *ast.IntegerNode, *ast.FloatNode,
		*ast.BoolNode, *ast.StringNode, *ast.ConstantNode, *ast.ChainNode,
		*ast.MemberNode:
	case *ast.UnaryNode:
		if n.Operator != "not" && n.Operator != "!" {
			v.err = fmt.Errorf("%w: operator %q", ErrForbiddenExpression, n.Operator)
		}
	case *ast.BinaryNode:
		if !allowedBinary[n.Operator] {
			v.err = fmt.Errorf("%w: operator %q", ErrForbiddenExpression, n.Operator)
		}
	case *ast.CallNode:
		if _, ok := n.Callee.(*ast.MemberNode); !ok {
			v.err = fmt.Errorf("%w: only method calls are allowed", ErrForbiddenExpression)
		}
	default:
		v.err = fmt.Errorf("%w: %T", ErrForbiddenExpression, n)
	}
}

// Compile checks and compiles an expression, caching the program.
func (e *Evaluator) Compile(source string) (*vm.Program, error) {
	if p, ok := e.programs.Load(source); ok {
		return p.(*vm.Program), nil
	}
	code := translateLiterals(source)
	tree, err := parser.Parse(code)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", source, err)
	}
	v := &restrictVisitor{}
	ast.Walk(&tree.Node, v)
	if v.err != nil {
		return nil, fmt.Errorf("%q: %w", source, v.err)
	}
	program, err := expr.Compile(code, expr.AllowUndefinedVariables(), expr.DisableAllBuiltins())
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", source, err)
	}
	e.programs.Store(source, program)
	return program, nil
}

// Eval evaluates an expression. The literal names None, True and False are
// accepted alongside nil, true and false.
func (e *Evaluator) Eval(source string, env map[string]any) (any, error) {
	switch strings.TrimSpace(source) {
	case "None", "nil", "":
		return nil, nil
	case "True", "true":
		return true, nil
	case "False", "false":
		return false, nil
	}
	program, err := e.Compile(source)
	if err != nil {
		return nil, err
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("run %q: %w", source, err)
	}
	return out, nil
}

// Text evaluates the argument of an eval instruction. Text without
// placeholders comes back unchanged, except that a result reading exactly
// None, True or False (in either case for the booleans) becomes that literal.
func (e *Evaluator) Text(text string, env map[string]any) (any, error) {
	out, err := e.Render(text, env)
	if err != nil {
		return nil, err
	}
	if v, ok := literalText(out); ok {
		return v, nil
	}
	return out, nil
}

func literalText(s string) (any, bool) {
	switch s {
	case "None":
		return nil, true
	case "True", "true":
		return true, true
	case "False", "false":
		return false, true
	}
	return nil, false
}

// Render substitutes every {expression} in a template. Doubled braces are
// literal braces.
func (e *Evaluator) Render(template string, env map[string]any) (string, error) {
	if !strings.ContainsAny(template, "{}") {
		return template, nil
	}
	var b strings.Builder
	err := scanTemplate(template, func(lit string) { b.WriteString(lit) }, func(src string) error {
		v, err := e.Eval(src, env)
		if err != nil {
			return err
		}
		b.WriteString(toText(v))
		return nil
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

// Check compiles every placeholder of a template without running it.
func (e *Evaluator) Check(template string) error {
	return scanTemplate(template, func(string) {}, func(src string) error {
		if _, ok := literalText(strings.TrimSpace(src)); ok {
			return nil
		}
		_, err := e.Compile(src)
		return err
	})
}

func scanTemplate(template string, literal func(string), placeholder func(string) error) error {
	start := 0
	for i := 0; i < len(template); i++ {
		c := template[i]
		switch {
		case (c == '{' || c == '}') && i+1 < len(template) && template[i+1] == c:
			literal(template[start : i+1])
			i++
			start = i + 1
		case c == '{':
			end := closingBrace(template, i+1)
			if end < 0 {
				return fmt.Errorf("%w: unterminated placeholder in %q", ErrBadDefinition, template)
			}
			literal(template[start:i])
			if err := placeholder(template[i+1 : end]); err != nil {
				return err
			}
			i = end
			start = end + 1
		}
	}
	literal(template[start:])
	return nil
}

// IsTemplate reports whether s has at least one placeholder.
func IsTemplate(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			continue
		}
		if i+1 < len(s) && s[i+1] == '{' {
			i++
			continue
		}
		return closingBrace(s, i+1) >= 0
	}
	return false
}

func closingBrace(s string, from int) int {
	var quote byte
	for i := from; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '}':
			return i
		}
	}
	return -1
}

// translateLiterals rewrites None/True/False and "is"/"is not" outside
// string literals.
func translateLiterals(src string) string {
	var b strings.Builder
	var quote rune
	runes := []rune(src)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if quote != 0 {
			b.WriteRune(r)
			if r == '\\' && i+1 < len(runes) {
				i++
				b.WriteRune(runes[i])
			} else if r == quote {
				quote = 0
			}
			continue
		}
		if r == '"' || r == '\'' || r == '`' {
			quote = r
			b.WriteRune(r)
			continue
		}
		if !isIdentStart(r) || (i > 0 && (isIdentPart(runes[i-1]) || runes[i-1] == '.')) {
			b.WriteRune(r)
			continue
		}
		j := i
		for j < len(runes) && isIdentPart(runes[j]) {
			j++
		}
		word := string(runes[i:j])
		switch word {
		case "None":
			word = "nil"
		case "True":
			word = "true"
		case "False":
			word = "false"
		case "is":
			k := j
			for k < len(runes) && runes[k] == ' ' {
				k++
			}
			if k+3 <= len(runes) && string(runes[k:k+3]) == "not" && (k+3 == len(runes) || !isIdentPart(runes[k+3])) {
				word = "!="
				j = k + 3
			} else {
				word = "=="
			}
		}
		b.WriteString(word)
		i = j - 1
	}
	return b.String()
}

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }
func isIdentPart(r rune) bool  { return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) }
