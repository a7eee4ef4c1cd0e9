// Package arbiter runs one dialog turn: it gathers every response
// generator's candidates, picks a response and a prompt, and commits state.
package arbiter

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/BTreeMap/DialogCore/internal/flow"
	"github.com/BTreeMap/DialogCore/internal/kg"
	"github.com/BTreeMap/DialogCore/internal/models"
	"github.com/BTreeMap/DialogCore/internal/nlu"
	"github.com/BTreeMap/DialogCore/internal/tracker"
)

// DefaultFallbackText is emitted when the turn itself fails.
const DefaultFallbackText = "Sorry, I'm not sure how to answer that. What would you like to talk about?"

var (
	// ErrNoResponse is returned when no RG produced a usable response.
	ErrNoResponse = errors.New("no response generator produced a response")
	// ErrRGPanic wraps a panic recovered from an RG method.
	ErrRGPanic = errors.New("response generator panicked")
	// ErrFallbackPriority is returned when an RG other than the fallback
	// answers at UNIVERSAL_FALLBACK.
	ErrFallbackPriority = errors.New("only the fallback response generator may use UNIVERSAL_FALLBACK")
)

// hardOverrides short-circuit ranking when they answer at FORCE_START.
var hardOverrides = []string{flow.RGOffensiveUser, flow.RGClosingConfirmation, flow.RGRedQuestion, flow.RGOneTurnHack}

// Opts holds configuration for the arbiter.
type Opts struct {
	Graph         kg.Graph
	Pipeline      string
	MaxStateBytes int
	FallbackText  string
	// Seed fixes every turn's random source when non-zero.
	Seed uint64
}

// Option configures the arbiter.
type Option func(*Opts)

// WithGraph sets the knowledge graph used by the entity tracker.
func WithGraph(g kg.Graph) Option {
	return func(o *Opts) {
		o.Graph = g
	}
}

// WithPipeline selects the greeting variant.
func WithPipeline(p string) Option {
	return func(o *Opts) {
		o.Pipeline = p
	}
}

// WithMaxStateBytes sets the per-RG serialized state limit.
func WithMaxStateBytes(n int) Option {
	return func(o *Opts) {
		o.MaxStateBytes = n
	}
}

// WithFallbackText sets the utterance used when the turn fails.
func WithFallbackText(text string) Option {
	return func(o *Opts) {
		o.FallbackText = text
	}
}

// WithSeed makes RG choices reproducible.
func WithSeed(seed uint64) Option {
	return func(o *Opts) {
		o.Seed = seed
	}
}

// Arbiter selects one response and at most one prompt per turn.
type Arbiter struct {
	registry *flow.Registry
	states   *flow.StateManager
	opts     Opts
}

// New creates an arbiter over the RGs of reg.
func New(reg *flow.Registry, opts ...Option) *Arbiter {
	o := Opts{MaxStateBytes: flow.DefaultMaxStateBytes, FallbackText: DefaultFallbackText}
	for _, opt := range opts {
		opt(&o)
	}
	slog.Debug("Creating Arbiter", "rgs", reg.Names(), "pipeline", o.Pipeline, "seeded", o.Seed != 0)
	return &Arbiter{
		registry: reg,
		states:   flow.NewStateManager(reg, flow.WithMaxStateBytes(o.MaxStateBytes)),
		opts:     o,
	}
}

// Registry returns the RGs the arbiter runs.
func (a *Arbiter) Registry() *flow.Registry { return a.registry }

// Request is everything the arbiter needs for one turn.
type Request struct {
	Input       models.TurnInput
	Annotations *models.Annotations
	// Tracker is the tracker as committed last turn; it is not modified.
	Tracker        *tracker.Tracker
	LastAnswerType models.AnswerType
	LastBotText    string
}

// Result is the committed outcome of a turn.
type Result struct {
	Output         models.TurnOutput
	Tracker        *tracker.Tracker
	UserAttributes models.UserAttributes
	Response       *models.ResponseResult
	Prompt         *models.PromptResult
	ResponseRG     string
	AnswerType     models.AnswerType
	// Responses holds every RG's candidate response of the turn.
	Responses map[string]*models.ResponseResult
	// Failed is set when the turn fell back to the fallback text with every
	// state left unchanged.
	Failed bool
}

type candidate struct {
	rg  string
	res *models.ResponseResult
}

// RunTurn runs one turn. It never returns an error: a failure inside an RG
// removes that RG from the turn and a failure of the turn itself yields the
// fallback text with all states unchanged.
func (a *Arbiter) RunTurn(ctx context.Context, req Request) *Result {
	res, err := a.runTurn(ctx, req)
	if err != nil {
		slog.Error("Arbiter.RunTurn: turn failed, using fallback", "conversation_id", req.Input.ConversationID,
			"turn", req.Input.TurnNum, "error", err)
		return a.fallback(req)
	}
	return res
}

func (a *Arbiter) fallback(req Request) *Result {
	tr := req.Tracker
	if tr == nil {
		tr = tracker.New()
		tr.Cur = req.Input.CurrentEntity
	}
	return &Result{
		Output: models.TurnOutput{
			ResponseText:     a.opts.FallbackText,
			NewActiveRG:      flow.RGFallback,
			NewState:         req.Input.PersistedState,
			NewCurrentEntity: tr.Cur,
		},
		Tracker:        tr,
		UserAttributes: req.Input.UserAttributes.Clone(),
		ResponseRG:     flow.RGFallback,
		AnswerType:     models.AnswerEnding,
		Failed:         true,
	}
}

func (a *Arbiter) newTurn(ctx context.Context, req Request, tr *tracker.Tracker) *flow.Turn {
	src := rand.NewPCG(rand.Uint64(), rand.Uint64())
	if a.opts.Seed != 0 {
		src = rand.NewPCG(a.opts.Seed, uint64(req.Input.TurnNum))
	}
	attrs := req.Input.UserAttributes.Clone()
	return &flow.Turn{
		Ctx:            ctx,
		ConversationID: req.Input.ConversationID,
		Num:            req.Input.TurnNum,
		Text:           req.Input.UserText,
		Annotations:    req.Annotations,
		Tracker:        tr,
		Graph:          a.opts.Graph,
		UserAttributes: attrs,
		LastActiveRG:   req.Input.LastActiveRG,
		LastAnswerType: req.LastAnswerType,
		LastBotText:    req.LastBotText,
		Pipeline:       a.opts.Pipeline,
		Rand:           rand.New(src),
	}
}

func (a *Arbiter) runTurn(ctx context.Context, req Request) (*Result, error) {
	if req.Annotations == nil {
		req.Annotations = &models.Annotations{Text: req.Input.UserText, Normalized: nlu.Normalize(req.Input.UserText)}
	}
	states := a.states.Load(req.Input.PersistedState)

	tr := tracker.New()
	if req.Tracker != nil {
		tr = req.Tracker.Clone()
	} else {
		tr.Cur = req.Input.CurrentEntity
	}
	tr.InitForTurn(ctx, a.opts.Graph, req.Annotations)
	turn := a.newTurn(ctx, req, tr)
	a.applyEntityUpdate(turn, states)
	turn.ResponseTypes = nlu.IdentifyResponseTypes(req.Annotations, tr.CurEntityInitiatedByUserThisTurn())
	slog.Debug("Arbiter.runTurn: turn prepared", "conversation_id", turn.ConversationID, "turn", turn.Num,
		"last_active_rg", turn.LastActiveRG, "cur_entity", tr.Cur, "response_types", turn.ResponseTypes.Sorted())

	responses := a.gatherResponses(turn, states)
	turn.Responses = responses
	ranked := a.rankResponses(turn, responses)
	if len(ranked) == 0 {
		return nil, ErrNoResponse
	}
	chosen := ranked[0]
	turn.ResponseRG = chosen.rg
	slog.Debug("Arbiter.runTurn: response chosen", "rg", chosen.rg, "priority", chosen.res.Priority,
		"needs_prompt", chosen.res.NeedsPrompt)

	var promptRG string
	var prompt *models.PromptResult
	if chosen.res.NeedsPrompt {
		promptRG, prompt = a.choosePrompt(turn, states, chosen)
	}

	return a.commit(turn, req, states, chosen, promptRG, prompt)
}

// applyEntityUpdate lets the last active RG overrule the tracker.
func (a *Arbiter) applyEntityUpdate(turn *flow.Turn, states map[string]models.State) {
	rg, err := a.registry.Get(turn.LastActiveRG)
	if err != nil {
		return
	}
	updater, ok := rg.(flow.EntityUpdater)
	if !ok {
		return
	}
	var u models.UpdateEntity
	if err := guard(rg.Name(), "UpdateEntity", func() error {
		u = updater.UpdateEntity(turn, states[rg.Name()])
		return nil
	}); err != nil {
		slog.Warn("Arbiter.applyEntityUpdate: ignoring failed entity update", "rg", rg.Name(), "error", err)
		return
	}
	if u.Update {
		slog.Debug("Arbiter.applyEntityUpdate: last active RG overrides tracker", "rg", rg.Name(), "entity", u.Entity)
		turn.Tracker.Override(u)
	}
}

// participants lists the RGs asked for a response this turn.
func (a *Arbiter) participants(turn *flow.Turn) []string {
	names := a.registry.Names()
	if !turn.IsFirstTurn() {
		return names
	}
	out := make([]string, 0, 2)
	for _, n := range names {
		if n == flow.RGLaunch || n == flow.RGFallback {
			out = append(out, n)
		}
	}
	return out
}

func (a *Arbiter) gatherResponses(turn *flow.Turn, states map[string]models.State) map[string]*models.ResponseResult {
	out := make(map[string]*models.ResponseResult, len(states))
	for _, name := range a.participants(turn) {
		rg, err := a.registry.Get(name)
		if err != nil {
			continue
		}
		var res *models.ResponseResult
		err = guard(name, "GetResponse", func() error {
			var err error
			res, err = rg.GetResponse(turn, states[name].Clone())
			return err
		})
		if err == nil {
			err = a.checkResponse(name, res)
		}
		if err != nil {
			slog.Warn("Arbiter.gatherResponses: RG failed, treating as empty", "rg", name, "error", err)
			res = models.EmptyResponse()
		}
		out[name] = res
		if !res.IsEmpty() {
			slog.Debug("Arbiter.gatherResponses: candidate", "rg", name, "priority", res.Priority, "text", res.Text)
		}
	}
	return out
}

func (a *Arbiter) checkResponse(name string, res *models.ResponseResult) error {
	if res == nil {
		return fmt.Errorf("%s returned no result", name)
	}
	if err := res.Validate(); err != nil {
		return err
	}
	if res.Priority == models.PriorityUniversalFallback && name != flow.RGFallback {
		return ErrFallbackPriority
	}
	if res.SmoothHandoff != models.SmoothHandoffNone {
		if _, ok := a.registry.HandoffOwner(res.SmoothHandoff); !ok {
			return fmt.Errorf("%w: no RG consumes smooth handoff %s", models.ErrInvalidResult, res.SmoothHandoff)
		}
	}
	return nil
}

// rankResponses orders the non-empty responses: hard overrides at
// FORCE_START first, then by priority and tie-break rank. Responses whose
// own text is offensive are dropped.
func (a *Arbiter) rankResponses(turn *flow.Turn, responses map[string]*models.ResponseResult) []candidate {
	var overrides []candidate
	taken := map[string]bool{}
	for _, name := range hardOverrides {
		if name == flow.RGOffensiveUser && !turn.Annotations.IsOffensive() {
			continue
		}
		if res := responses[name]; res != nil && res.Priority == models.PriorityForceStart {
			overrides = append(overrides, candidate{name, res})
			taken[name] = true
		}
	}

	var rest []candidate
	for _, name := range a.registry.Names() {
		if res := responses[name]; res != nil && !res.IsEmpty() && !taken[name] {
			rest = append(rest, candidate{name, res})
		}
	}
	slices.SortStableFunc(rest, func(x, y candidate) int {
		return byScoreThenRank(int(x.res.Priority), a.registry.Rank(x.rg), int(y.res.Priority), a.registry.Rank(y.rg))
	})

	ranked := make([]candidate, 0, len(overrides)+len(rest))
	for _, c := range append(overrides, rest...) {
		if offensiveOutput(c.res.Text) {
			slog.Warn("Arbiter.rankResponses: dropping offensive response", "rg", c.rg)
			continue
		}
		ranked = append(ranked, c)
	}
	return ranked
}

// byScoreThenRank orders higher scores first and breaks ties by the
// registry's fixed order.
func byScoreThenRank(scoreA, rankA, scoreB, rankB int) int {
	if c := cmp.Compare(scoreB, scoreA); c != 0 {
		return c
	}
	return cmp.Compare(rankA, rankB)
}

func offensiveOutput(text string) bool {
	return nlu.ContainsOffensive(nlu.Normalize(text))
}

type promptCandidate struct {
	rg string
	p  *models.PromptResult
}

func (a *Arbiter) getPrompt(turn *flow.Turn, states map[string]models.State, name string) *models.PromptResult {
	rg, err := a.registry.Get(name)
	if err != nil {
		return nil
	}
	var p *models.PromptResult
	err = guard(name, "GetPrompt", func() error {
		var err error
		p, err = rg.GetPrompt(turn, states[name].Clone())
		return err
	})
	if err == nil && p == nil {
		err = fmt.Errorf("%s returned no prompt", name)
	}
	if err == nil {
		err = p.Validate()
	}
	if err != nil {
		slog.Warn("Arbiter.getPrompt: RG failed, treating as empty", "rg", name, "error", err)
		return nil
	}
	if p.IsEmpty() || offensiveOutput(p.Text) {
		return nil
	}
	return p
}

// choosePrompt pairs the chosen response with a prompt. A smooth handoff
// must be taken up by its consumer at FORCE_START; otherwise every RG is
// asked and the highest prompt type wins.
func (a *Arbiter) choosePrompt(turn *flow.Turn, states map[string]models.State, chosen candidate) (string, *models.PromptResult) {
	if tag := chosen.res.SmoothHandoff; tag != models.SmoothHandoffNone {
		owner, _ := a.registry.HandoffOwner(tag)
		if p := a.getPrompt(turn, states, owner); p != nil && p.PromptType == models.PromptForceStart {
			slog.Debug("Arbiter.choosePrompt: smooth handoff taken", "tag", tag, "rg", owner)
			return owner, p
		}
		slog.Warn("Arbiter.choosePrompt: smooth handoff not taken up, asking every RG", "tag", tag, "rg", owner)
	}

	var cands []promptCandidate
	for _, name := range a.registry.Names() {
		if p := a.getPrompt(turn, states, name); p != nil {
			cands = append(cands, promptCandidate{name, p})
		}
	}
	if len(cands) == 0 {
		slog.Warn("Arbiter.choosePrompt: no prompt available")
		return "", nil
	}
	slices.SortStableFunc(cands, func(x, y promptCandidate) int {
		return byScoreThenRank(int(x.p.PromptType), a.registry.Rank(x.rg), int(y.p.PromptType), a.registry.Rank(y.rg))
	})
	slog.Debug("Arbiter.choosePrompt: prompt chosen", "rg", cands[0].rg, "prompt_type", cands[0].p.PromptType)
	return cands[0].rg, cands[0].p
}

// JoinUtterance joins response and prompt with one space and makes sure the
// result ends a sentence.
func JoinUtterance(response, prompt string) string {
	parts := make([]string, 0, 2)
	for _, s := range []string{response, prompt} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	text := strings.Join(parts, " ")
	if text != "" && !strings.ContainsAny(text[len(text)-1:], ".!?") {
		text += "."
	}
	return text
}

func (a *Arbiter) commit(turn *flow.Turn, req Request, states map[string]models.State, chosen candidate,
	promptRG string, prompt *models.PromptResult) (*Result, error) {
	// Offensive input leaves every RG state as it was, except the quit
	// confirmation's.
	frozen := chosen.rg == flow.RGOffensiveUser && turn.Annotations.IsOffensive()

	next := make(map[string]models.State, len(states))
	for _, name := range a.registry.Names() {
		rg, err := a.registry.Get(name)
		if err != nil {
			return nil, err
		}
		st := states[name]
		if frozen && name != flow.RGClosingConfirmation {
			next[name] = st
			continue
		}
		var cond models.ConditionalState
		isChosen := false
		if name == chosen.rg {
			cond, isChosen = chosen.res.ConditionalState, true
		}
		if name == promptRG {
			cond, isChosen = cond.Merge(prompt.ConditionalState), true
		}
		if !isChosen {
			if res := turn.Responses[name]; res != nil {
				cond = res.ConditionalState
			}
		}
		err = guard(name, "update", func() error {
			if isChosen {
				st = rg.UpdateIfChosen(st, cond)
			} else {
				st = rg.UpdateIfNotChosen(st, cond)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		next[name] = st
	}

	encoded, err := a.states.Commit(next)
	if err != nil {
		return nil, fmt.Errorf("commit states: %w", err)
	}
	// Records of RGs that are no longer registered are carried over.
	for name, raw := range req.Input.PersistedState {
		if _, ok := encoded[name]; !ok {
			encoded[name] = raw
		}
	}

	tr := turn.Tracker
	tr.UpdateFromResponse(chosen.res)
	attrs := req.Input.UserAttributes.Clone()
	attrs.Apply(chosen.res.UserAttributes)
	answer := chosen.res.AnswerType
	active := chosen.rg
	promptText := ""
	if prompt != nil {
		tr.UpdateFromPrompt(prompt)
		attrs.Apply(prompt.UserAttributes)
		answer = prompt.AnswerType
		active = promptRG
		promptText = prompt.Text
	}

	endSession := false
	if rg, err := a.registry.Get(chosen.rg); err == nil {
		if ender, ok := rg.(flow.SessionEnder); ok {
			endSession = ender.EndsSession(chosen.res)
		}
	}

	out := models.TurnOutput{
		ResponseText:     JoinUtterance(chosen.res.Text, promptText),
		NewActiveRG:      active,
		PromptRG:         promptRG,
		NewState:         encoded,
		NewCurrentEntity: tr.Cur,
		ShouldEndSession: endSession,
	}
	slog.Info("Arbiter.commit: turn committed", "conversation_id", turn.ConversationID, "turn", turn.Num,
		"response_rg", chosen.rg, "prompt_rg", promptRG, "cur_entity", tr.Cur, "end_session", endSession)
	return &Result{
		Output:         out,
		Tracker:        tr,
		UserAttributes: attrs,
		Response:       chosen.res,
		Prompt:         prompt,
		ResponseRG:     chosen.rg,
		AnswerType:     answer,
		Responses:      turn.Responses,
	}, nil
}

// guard runs fn and turns a panic into an error.
func guard(rg, method string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s.%s: %v", ErrRGPanic, rg, method, r)
		}
	}()
	return fn()
}
