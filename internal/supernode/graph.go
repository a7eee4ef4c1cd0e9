package supernode

import (
	"fmt"
	"sort"
	"strings"
)

// Report is the result of checking a library against its hooks.
type Report struct {
	// Edges maps a supernode to those its exit state can lead to.
	Edges    map[string][]string
	Entries  []string
	Exits    []string
	Cycles   [][]string
	Paths    int
	Problems []string
}

// OK reports whether no problems were found. Cycles are allowed.
func (r *Report) OK() bool { return len(r.Problems) == 0 }

// Graph checks a library: it derives the transition graph from state
// updates and requirements, reports cycles, counts entry-to-exit paths and
// lists references to hooks that are not registered.
func Graph(lib *Library, hooks Hooks) *Report {
	r := &Report{Edges: map[string][]string{}}
	assigned := make(map[string]map[string][]any, len(lib.names))
	for _, name := range lib.names {
		assigned[name] = assignments(lib.nodes[name])
	}

	incoming := map[string]int{}
	for _, from := range lib.names {
		for _, to := range lib.names {
			if from == to || !leadsTo(assigned[from], lib.nodes[to].Requirements) {
				continue
			}
			r.Edges[from] = append(r.Edges[from], to)
			incoming[to]++
		}
	}
	for _, name := range lib.names {
		if incoming[name] == 0 {
			r.Entries = append(r.Entries, name)
		}
		if len(r.Edges[name]) == 0 {
			r.Exits = append(r.Exits, name)
		}
	}
	r.Cycles = findCycles(lib.names, r.Edges)
	r.Paths = countPaths(r.Entries, r.Edges)

	for _, name := range lib.names {
		r.Problems = append(r.Problems, checkHooks(lib.nodes[name], hooks, NewEvaluator())...)
	}
	return r
}

// assignments lists the literal values each state field may be set to when
// the supernode finishes, by a response or an unconditional prompt.
func assignments(sn *Supernode) map[string][]any {
	out := map[string][]any{}
	add := func(updates []Update) {
		for _, u := range updates {
			field, ok := strings.CutPrefix(u.Key, "state.")
			if !ok || len(u.Value) != 1 {
				continue
			}
			switch in := u.Value[0]; in.Kind {
			case KindText:
				out[field] = append(out[field], in.Text)
			case KindLiteral:
				out[field] = append(out[field], in.Value)
			}
		}
	}
	add(sn.GlobalUpdates)
	for _, sub := range sn.Subnodes {
		add(sub.Updates)
	}
	for _, kvs := range sn.UnconditionalPromptUpdates {
		for _, kv := range kvs {
			field := strings.TrimPrefix(kv.Key, "state.")
			out[field] = append(out[field], kv.Value)
		}
	}
	return out
}

// leadsTo reports whether some conjunction of reqs has a field the source
// sets to the required value, and no field the source only sets otherwise.
func leadsTo(assigned map[string][]any, reqs [][]KV) bool {
	for _, conj := range reqs {
		hit, blocked := false, false
		for _, kv := range conj {
			values, ok := assigned[kv.Key]
			if !ok {
				continue
			}
			match := false
			for _, v := range values {
				if valuesEqual(v, kv.Value) {
					match = true
					break
				}
			}
			if match {
				hit = true
			} else {
				blocked = true
			}
		}
		if hit && !blocked {
			return true
		}
	}
	return false
}

func findCycles(names []string, edges map[string][]string) [][]string {
	const (
		white = iota
		grey
		black
	)
	color := map[string]int{}
	var stack []string
	var cycles [][]string
	var visit func(string)
	visit = func(n string) {
		color[n] = grey
		stack = append(stack, n)
		for _, m := range edges[n] {
			switch color[m] {
			case white:
				visit(m)
			case grey:
				for i := len(stack) - 1; i >= 0; i-- {
					if stack[i] == m {
						cycles = append(cycles, append(append([]string(nil), stack[i:]...), m))
						break
					}
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[n] = black
	}
	for _, n := range names {
		if color[n] == white {
			visit(n)
		}
	}
	return cycles
}

// countPaths counts simple paths from the entries to nodes without outgoing
// edges. Back edges are ignored.
func countPaths(entries []string, edges map[string][]string) int {
	onPath := map[string]bool{}
	var walk func(string) int
	walk = func(n string) int {
		onPath[n] = true
		defer delete(onPath, n)
		total, next := 0, 0
		for _, m := range edges[n] {
			if onPath[m] {
				continue
			}
			next++
			total += walk(m)
		}
		if next == 0 {
			return 1
		}
		return total
	}
	total := 0
	for _, e := range entries {
		total += walk(e)
	}
	return total
}

func checkHooks(sn *Supernode, hooks Hooks, ev *Evaluator) []string {
	var problems []string
	report := func(format string, args ...any) {
		problems = append(problems, sn.Name+": "+fmt.Sprintf(format, args...))
	}
	visit := func(in Instr) {
		switch in.Kind {
		case KindHelper:
			if _, ok := hooks.Helpers[in.Helper]; !ok {
				report("undefined nlg_helper %q", in.Helper)
			}
		case KindConstant:
			if _, ok := hooks.Constants[in.Text]; !ok {
				report("undefined constant %q", in.Text)
			}
		case KindEval:
			if err := ev.Check(in.Text); err != nil {
				report("bad expression: %v", err)
			}
		}
	}
	for _, l := range sn.Locals {
		walkInstrs(l.Value, visit)
	}
	usesFlags := false
	for _, sub := range sn.Subnodes {
		walkInstrs(sub.Response, visit)
		for _, u := range sub.Updates {
			walkInstrs(u.Value, visit)
		}
		for _, c := range sub.Conditions {
			if strings.HasPrefix(c.Path, "flags.") {
				usesFlags = true
			}
		}
	}
	for _, u := range sn.GlobalUpdates {
		walkInstrs(u.Value, visit)
	}

	nlu := sn.NLU
	if nlu == "" {
		nlu = sn.Name
	}
	if _, ok := hooks.NLU[nlu]; !ok && (usesFlags || sn.NLU != "") {
		report("undefined nlu function %q", nlu)
	}
	if sn.HasUnconditionalPrompt() {
		promptNLU := sn.PromptNLU
		if promptNLU == "" {
			promptNLU = sn.Name
		}
		needs := sn.PromptNLU != ""
		for _, c := range sn.UnconditionalPrompts {
			needs = needs || len(c.Conditions) > 0
			if _, ok := sn.UnconditionalPromptUpdates[c.CaseName]; !ok {
				report("unconditional prompt %q has no updates entry", c.CaseName)
			}
		}
		if _, ok := hooks.PromptNLU[promptNLU]; !ok && needs {
			report("undefined prompt nlu function %q", promptNLU)
		}
	}
	for _, c := range sn.Prompt.Cases {
		if err := ev.Check(c.Prompt); err != nil {
			report("bad prompt template: %v", err)
		}
	}
	for _, c := range sn.UnconditionalPrompts {
		if err := ev.Check(c.Prompt); err != nil {
			report("bad prompt template: %v", err)
		}
	}
	if m := sn.Prompt.CallMethod; m != "" {
		if _, ok := hooks.PromptMethods[m]; !ok {
			report("undefined prompt method %q", m)
		}
	}
	if len(sn.Subnodes) > 0 && len(sn.Subnodes[len(sn.Subnodes)-1].Conditions) > 0 {
		report("last subnode %q has entry conditions; some turns may match no subnode", sn.Subnodes[len(sn.Subnodes)-1].Name)
	}
	sort.Strings(problems)
	return problems
}

func walkInstrs(in Instrs, fn func(Instr)) {
	for _, i := range in {
		fn(i)
		for _, opt := range i.Options {
			walkInstrs(opt, fn)
		}
		walkInstrs(i.Args, fn)
		walkInstrs(i.Inner, fn)
		walkInstrs(i.Prefix, fn)
		walkInstrs(i.Fallback, fn)
		walkInstrs(i.Suffix, fn)
	}
}
