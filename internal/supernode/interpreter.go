package supernode

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/BTreeMap/DialogCore/internal/flow"
	"github.com/BTreeMap/DialogCore/internal/models"
)

// RG is a response generator driven entirely by a supernode library.
type RG struct {
	flow.Base
	lib   *Library
	hooks Hooks
	eval  *Evaluator
	init  models.State
}

// NewRG builds a supernode-driven RG. initial holds the RG's own state fields
// on top of the shared base fields.
func NewRG(name string, lib *Library, hooks Hooks, initial models.State) *RG {
	return &RG{
		Base:  flow.NewBase(name),
		lib:   lib,
		hooks: hooks,
		eval:  NewEvaluator(),
		init:  initial,
	}
}

// Library returns the RG's supernodes.
func (rg *RG) Library() *Library { return rg.lib }

// Hooks returns the RG's registered Go functions.
func (rg *RG) Hooks() Hooks { return rg.hooks }

func (rg *RG) InitState() models.State {
	st := flow.BaseState()
	st[KeyPromptTreelet] = nil
	for k, v := range rg.init {
		st[k] = v
	}
	return st
}

// UpdateIfNotChosen also forgets any continuation the RG had scheduled.
func (rg *RG) UpdateIfNotChosen(state models.State, cond models.ConditionalState) models.State {
	out := flow.DefaultUpdateIfNotChosen(state, cond)
	out[KeyPromptTreelet] = nil
	return out
}

// NextSupernode picks uniformly among the supernodes whose requirements hold
// in state. It returns "" when none do.
func (rg *RG) NextSupernode(turn *flow.Turn, state models.State) string {
	var matched []string
	for _, name := range rg.lib.names {
		if requirementsHold(rg.lib.nodes[name].Requirements, state) {
			matched = append(matched, name)
		}
	}
	if len(matched) == 0 {
		return ""
	}
	return matched[turn.Intn(len(matched))]
}

func requirementsHold(reqs [][]KV, state models.State) bool {
	for _, conj := range reqs {
		if kvsHold(conj, state) {
			return true
		}
	}
	return false
}

func kvsHold(conj []KV, values map[string]any) bool {
	for _, kv := range conj {
		if !valuesEqual(values[kv.Key], kv.Value) {
			return false
		}
	}
	return true
}

// GetResponse runs the current supernode, or enters one whose requirements
// hold once the entry hook has run.
func (rg *RG) GetResponse(turn *flow.Turn, state models.State) (*models.ResponseResult, error) {
	var entry models.ConditionalState
	name := state.GetString(models.StateKeyCurSupernode)
	if name == "" {
		if rg.hooks.Entry != nil {
			entry = rg.hooks.Entry(turn, state)
		}
		name = rg.NextSupernode(turn, state.Apply(entry))
	}
	if name == "" || name == ExitSupernode {
		return models.EmptyResponse(), nil
	}
	sn, ok := rg.lib.Get(name)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %q", rg.Name(), ErrNoSupernode, name)
	}
	slog.Debug("supernode.RG.GetResponse: running supernode", "rg", rg.Name(), "supernode", name)
	res, err := rg.respond(turn, sn, state.Apply(entry), entry)
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w", rg.Name(), name, err)
	}
	return res, nil
}

func (rg *RG) respond(turn *flow.Turn, sn *Supernode, state models.State, entry models.ConditionalState) (*models.ResponseResult, error) {
	scope := rg.newScope(turn, state, rg.flags(rg.hooks.NLU, sn.NLU, sn.Name, turn, state))
	for _, l := range sn.Locals {
		v, err := scope.value(l.Value)
		if err != nil {
			return nil, fmt.Errorf("local %s: %w", l.Name, err)
		}
		scope.Locals[l.Name] = v
	}

	sub, err := scope.selectSubnode(sn)
	if err != nil {
		return nil, err
	}
	text, err := scope.text(sub.Response)
	if err != nil {
		return nil, fmt.Errorf("subnode %s: %w", sub.Name, err)
	}

	res := &models.ResponseResult{Text: text, AnswerType: models.AnswerNone}
	cond := models.ConditionalState{models.StateKeyCurSupernode: nil}.Merge(entry)
	for _, name := range sub.ExposeVars {
		cond[name] = scope.Locals[name]
	}
	prioritySet := false
	updates := append(append([]Update(nil), sub.Updates...), sn.GlobalUpdates...)
	for _, u := range updates {
		v, err := scope.value(u.Value)
		if err != nil {
			return nil, fmt.Errorf("update %s: %w", u.Key, err)
		}
		if u.Key == "priority" {
			prioritySet = true
		}
		if err := rg.applyUpdate(turn, res, cond, u.Key, v); err != nil {
			return nil, fmt.Errorf("subnode %s: %w", sub.Name, err)
		}
	}
	res.ConditionalState = cond

	switch {
	case res.IsEmpty():
		res.Priority = models.PriorityNo
	case !prioritySet && turn.WasActive(rg.Name()):
		res.Priority = models.PriorityStrongContinue
	case !prioritySet:
		res.Priority = models.PriorityCanStart
	}
	return res, nil
}

// selectSubnode returns the first subnode whose entry conditions all hold.
func (s *Scope) selectSubnode(sn *Supernode) (*Subnode, error) {
	for i := range sn.Subnodes {
		sub := &sn.Subnodes[i]
		ok, err := s.conditionsHold(sub.Conditions)
		if err != nil {
			return nil, fmt.Errorf("subnode %s: %w", sub.Name, err)
		}
		if ok {
			return sub, nil
		}
	}
	return nil, fmt.Errorf("%w in %s", ErrNoSubnode, sn.Name)
}

func (s *Scope) conditionsHold(conds []Condition) (bool, error) {
	for _, c := range conds {
		v, err := s.Lookup(c.Path)
		if err != nil {
			return false, err
		}
		var ok bool
		switch c.Kind {
		case CondNone:
			ok = isNil(v)
		case CondTrue:
			ok = v == true
		case CondFalse:
			ok = v == false
		default:
			ok = valuesEqual(v, c.Target)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Result attributes an update may set.
var resultKeys = map[string]bool{
	"priority": true, "needs_prompt": true, "cur_entity": true,
	"answer_type": true, "expected_type": true, "smooth_handoff": true,
}

func (rg *RG) applyUpdate(turn *flow.Turn, res *models.ResponseResult, cond models.ConditionalState, key string, v any) error {
	if field, ok := strings.CutPrefix(key, "state."); ok {
		cond[field] = v
		return nil
	}
	switch key {
	case "priority":
		p, err := toPriority(v)
		if err != nil {
			return err
		}
		res.Priority = p
	case "needs_prompt":
		res.NeedsPrompt = truthy(v)
	case "cur_entity":
		res.CurEntity = rg.toEntity(turn, v)
	case "answer_type":
		a, err := toAnswerType(v)
		if err != nil {
			return err
		}
		res.AnswerType = a
	case "expected_type":
		if v == nil {
			res.ExpectedType = nil
			break
		}
		g, ok := models.LookupEntityGroup(toText(v))
		if !ok {
			return fmt.Errorf("%w: unknown entity group %q", ErrBadDefinition, toText(v))
		}
		res.ExpectedType = g
	case "smooth_handoff":
		res.SmoothHandoff = models.SmoothHandoff(toText(v))
	default:
		return fmt.Errorf("%w: unknown update %q", ErrBadDefinition, key)
	}
	return nil
}

func toPriority(v any) (models.ResponsePriority, error) {
	switch x := v.(type) {
	case models.ResponsePriority:
		return x, nil
	case string:
		return models.ParseResponsePriority(x)
	}
	return models.PriorityNo, fmt.Errorf("%w: priority %v", ErrBadDefinition, v)
}

func toAnswerType(v any) (models.AnswerType, error) {
	switch x := v.(type) {
	case models.AnswerType:
		return x, nil
	case string:
		return models.ParseAnswerType(x)
	}
	return models.AnswerNone, fmt.Errorf("%w: answer_type %v", ErrBadDefinition, v)
}

func toPromptType(v any) (models.PromptType, error) {
	switch x := v.(type) {
	case models.PromptType:
		return x, nil
	case string:
		return models.ParsePromptType(x)
	}
	return models.PromptNo, fmt.Errorf("%w: prompt_type %v", ErrBadDefinition, v)
}

// toEntity accepts an entity or a name resolved against the knowledge graph.
func (rg *RG) toEntity(turn *flow.Turn, v any) *models.Entity {
	if e := models.ToEntity(v); e != nil {
		return e
	}
	name, ok := v.(string)
	if !ok || name == "" || turn == nil || turn.Graph == nil {
		return nil
	}
	e, err := turn.Graph.Lookup(turn.Context(), name)
	if err != nil {
		slog.Warn("supernode.RG: entity lookup failed", "rg", rg.Name(), "name", name, "error", err)
		return nil
	}
	return e
}

func (rg *RG) flags(table map[string]NLUFunc, declared, supernode string, turn *flow.Turn, state models.State) map[string]any {
	name := declared
	if name == "" {
		name = supernode
	}
	fn, ok := table[name]
	if !ok {
		return map[string]any{}
	}
	flags := fn(turn, state)
	if flags == nil {
		flags = map[string]any{}
	}
	return flags
}

// GetPrompt continues from the RG's own response when it scheduled a
// continuation; otherwise it offers the best unconditional prompt.
func (rg *RG) GetPrompt(turn *flow.Turn, state models.State) (*models.PromptResult, error) {
	var cond models.ConditionalState
	if turn != nil && turn.ResponseRG == rg.Name() {
		if r := turn.OwnResponse(rg.Name()); r != nil {
			cond = r.ConditionalState
		}
	}
	if !cond.Pending(KeyPromptTreelet) || cond[KeyPromptTreelet] == nil {
		return rg.unconditionalPrompt(turn, state)
	}

	merged := state.Apply(cond)
	name := rg.NextSupernode(turn, merged)
	if name == "" || name == ExitSupernode {
		return models.EmptyPrompt(), nil
	}
	sn := rg.lib.nodes[name]
	next := models.ConditionalState{models.StateKeyCurSupernode: name, KeyPromptTreelet: nil}
	merged = merged.Apply(next)
	slog.Debug("supernode.RG.GetPrompt: continuing", "rg", rg.Name(), "supernode", name)

	if sn.Prompt.CallMethod != "" {
		fn, ok := rg.hooks.PromptMethods[sn.Prompt.CallMethod]
		if !ok {
			return nil, fmt.Errorf("%s/%s: %w: prompt method %q", rg.Name(), name, ErrUnknownHelper, sn.Prompt.CallMethod)
		}
		p, err := fn(turn, merged)
		if err != nil || p == nil {
			return p, err
		}
		p.ConditionalState = next.Merge(p.ConditionalState)
		return p, nil
	}

	var cases []GuardedPrompt
	for _, c := range sn.Prompt.Cases {
		if kvsHold(c.Required, merged) {
			cases = append(cases, c)
		}
	}
	if len(cases) == 0 {
		return models.EmptyPrompt(), nil
	}
	chosen := cases[turn.Intn(len(cases))]
	scope := rg.newScope(turn, merged, map[string]any{})
	text, err := rg.eval.Render(chosen.Prompt, scope.env())
	if err != nil {
		return nil, fmt.Errorf("%s/%s prompt: %w", rg.Name(), name, err)
	}
	p := &models.PromptResult{
		Text:             strings.TrimSpace(text),
		PromptType:       models.PromptContextual,
		CurEntity:        turn.CurEntity(),
		AnswerType:       models.AnswerQuestionSelfHandling,
		ConditionalState: next,
	}
	if p.IsEmpty() {
		p.PromptType = models.PromptNo
	}
	return p, nil
}

func (rg *RG) unconditionalPrompt(turn *flow.Turn, state models.State) (*models.PromptResult, error) {
	var nodes []*Supernode
	for _, name := range rg.lib.names {
		if sn := rg.lib.nodes[name]; sn.HasUnconditionalPrompt() {
			nodes = append(nodes, sn)
		}
	}
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].PromptRanking < nodes[j].PromptRanking })

	for _, sn := range nodes {
		flags := rg.flags(rg.hooks.PromptNLU, sn.PromptNLU, sn.Name, turn, state)
		for _, c := range sn.UnconditionalPrompts {
			if !kvsHold(c.Conditions, flags) {
				continue
			}
			scope := rg.newScope(turn, state, flags)
			text, err := rg.eval.Render(c.Prompt, scope.env())
			if err != nil {
				return nil, fmt.Errorf("%s/%s unconditional prompt %s: %w", rg.Name(), sn.Name, c.CaseName, err)
			}
			p := &models.PromptResult{
				Text:             strings.TrimSpace(text),
				PromptType:       models.PromptContextual,
				CurEntity:        turn.CurEntity(),
				AnswerType:       models.AnswerQuestionSelfHandling,
				ConditionalState: models.ConditionalState{},
			}
			for _, kv := range sn.UnconditionalPromptUpdates[c.CaseName] {
				switch key := strings.TrimPrefix(kv.Key, "state."); key {
				case "prompt_type":
					pt, err := toPromptType(kv.Value)
					if err != nil {
						return nil, err
					}
					p.PromptType = pt
				case "cur_entity":
					p.CurEntity = rg.toEntity(turn, kv.Value)
				default:
					p.ConditionalState[key] = kv.Value
				}
			}
			if p.IsEmpty() {
				continue
			}
			slog.Debug("supernode.RG.GetPrompt: unconditional prompt", "rg", rg.Name(), "supernode", sn.Name, "case", c.CaseName)
			return p, nil
		}
	}
	return models.EmptyPrompt(), nil
}

// Scope is what instructions, expressions and helpers see while one
// supernode runs.
type Scope struct {
	Turn   *flow.Turn
	State  models.State
	Flags  map[string]any
	Locals map[string]any
	rg     *RG
}

func (rg *RG) newScope(turn *flow.Turn, state models.State, flags map[string]any) *Scope {
	return &Scope{Turn: turn, State: state, Flags: flags, Locals: map[string]any{}, rg: rg}
}

var (
	priorityNames   = map[string]any{}
	promptTypeNames = map[string]any{}
	answerTypeNames = map[string]any{}
)

func init() {
	for p := models.PriorityNo; p <= models.PriorityForceStart; p++ {
		priorityNames[p.String()] = p
	}
	for p := models.PromptNo; p <= models.PromptForceStart; p++ {
		promptTypeNames[p.String()] = p
	}
	for a := models.AnswerNone; a <= models.AnswerEnding; a++ {
		answerTypeNames[a.String()] = a
	}
}

func (s *Scope) env() map[string]any {
	var user map[string]any
	if s.Turn != nil {
		user = map[string]any(s.Turn.UserAttributes)
	}
	return map[string]any{
		"rg":               View{s: s},
		"state":            map[string]any(s.State),
		"flags":            s.Flags,
		"locals":           s.Locals,
		"user":             user,
		"entity":           s.Turn.CurEntity(),
		"ResponsePriority": priorityNames,
		"PromptType":       promptTypeNames,
		"AnswerType":       answerTypeNames,
	}
}

// View is the "rg" value expressions can call methods on.
type View struct {
	s *Scope
}

func (v View) Name() string { return v.s.rg.Name() }

func (v View) HasEntity() bool { return v.s.Turn.CurEntity() != nil }

func (v View) EntityName() string { return v.s.Turn.CurEntity().Talkable() }

// EntityNameOr returns the current entity's name, or fallback without one.
func (v View) EntityNameOr(fallback string) string {
	if !v.HasEntity() {
		return fallback
	}
	return v.EntityName()
}

func (v View) EntityPlural() bool { return v.s.Turn.CurEntity().IsPlural() }

func (v View) UserName() string {
	if v.s.Turn == nil {
		return ""
	}
	return v.s.Turn.UserAttributes.Name()
}

func (v View) TurnsInRG() int { return v.s.State.GetInt(models.StateKeyNumTurnsInRG) }

func (v View) WasActive() bool { return v.s.Turn.WasActive(v.s.rg.Name()) }

func (v View) Utterance() string { return v.s.Turn.Normalized() }
