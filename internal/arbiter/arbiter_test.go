package arbiter

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BTreeMap/DialogCore/internal/flow"
	"github.com/BTreeMap/DialogCore/internal/models"
	"github.com/BTreeMap/DialogCore/internal/nlu"
	"github.com/BTreeMap/DialogCore/internal/rg"
	"github.com/BTreeMap/DialogCore/internal/tracker"
)

func annotate(text string) *models.Annotations {
	norm := nlu.Normalize(text)
	tokens := nlu.Tokenize(norm)
	offensive := nlu.ContainsOffensive(norm)
	return &models.Annotations{
		Text:               text,
		Normalized:         norm,
		Tokens:             tokens,
		DialogAct:          nlu.ClassifyDialogAct(text, norm, tokens),
		NavigationalIntent: nlu.ClassifyNavigation(norm, nil),
		RedQuestion:        nlu.ClassifyRedQuestion(norm),
		Sentiment:          &models.Sentiment{Compound: nlu.Sentiment(tokens)},
		Offensive:          &offensive,
	}
}

// convo carries one conversation's committed record from turn to turn.
type convo struct {
	t          *testing.T
	a          *Arbiter
	in         models.TurnInput
	tr         *tracker.Tracker
	lastAnswer models.AnswerType
	lastBot    string
}

func newConvo(t *testing.T, a *Arbiter) *convo {
	return &convo{t: t, a: a, in: models.TurnInput{ConversationID: "c1", UserAttributes: models.UserAttributes{}}}
}

func (c *convo) say(text string) *Result {
	c.t.Helper()
	c.in.UserText = text
	res := c.a.RunTurn(context.Background(), Request{
		Input:          c.in,
		Annotations:    annotate(text),
		Tracker:        c.tr,
		LastAnswerType: c.lastAnswer,
		LastBotText:    c.lastBot,
	})
	require.False(c.t, res.Failed, "turn %d failed", c.in.TurnNum)
	c.in.TurnNum++
	c.in.LastActiveRG = res.Output.NewActiveRG
	c.in.PersistedState = res.Output.NewState
	c.in.UserAttributes = res.UserAttributes
	c.in.CurrentEntity = res.Output.NewCurrentEntity
	c.tr = res.Tracker
	c.lastAnswer = res.AnswerType
	c.lastBot = res.Output.ResponseText
	return res
}

func fullArbiter(t *testing.T, opts ...Option) *Arbiter {
	t.Helper()
	reg, err := rg.NewRegistry()
	require.NoError(t, err)
	return New(reg, opts...)
}

func TestQuitConfirmation(t *testing.T) {
	c := newConvo(t, fullArbiter(t))
	res := c.say("")
	assert.Equal(t, flow.RGLaunch, res.ResponseRG)
	assert.Equal(t, rg.LaunchPhrase(""), res.Output.ResponseText)

	res = c.say("I have to go.")
	assert.Equal(t, flow.RGClosingConfirmation, res.ResponseRG)
	assert.Equal(t, models.PriorityForceStart, res.Response.Priority)
	assert.Empty(t, res.Output.PromptRG)
	assert.Nil(t, res.Output.NewCurrentEntity)
	assert.False(t, res.Output.ShouldEndSession)

	declined := *c

	res = c.say("yes")
	assert.Equal(t, rg.ClosingStopText, res.Output.ResponseText)
	assert.True(t, res.Output.ShouldEndSession)

	res = declined.say("no")
	assert.Equal(t, flow.RGClosingConfirmation, res.ResponseRG)
	assert.True(t, res.Response.NeedsPrompt)
	assert.NotEmpty(t, res.Output.PromptRG)
	assert.True(t, strings.HasPrefix(res.Output.ResponseText, res.Response.Text+" "+res.Prompt.Text))
	assert.False(t, res.Output.ShouldEndSession)
}

func TestRedQuestionDeflection(t *testing.T) {
	c := newConvo(t, fullArbiter(t))
	c.say("")

	// LAUNCH is waiting for a name and still answers, below FORCE_START.
	res := c.say("What medication should I take for a headache?")
	assert.Equal(t, flow.RGRedQuestion, res.ResponseRG)
	assert.Equal(t, models.PriorityForceStart, res.Response.Priority)
	require.NotNil(t, res.Responses[flow.RGLaunch])
	assert.Less(t, res.Responses[flow.RGLaunch].Priority, models.PriorityForceStart)
	assert.True(t, res.Response.NeedsPrompt)
	assert.True(t, strings.HasPrefix(res.Response.Text, "I see. Sorry, I'm unable to comment on medical matters."))
	require.NotNil(t, res.Prompt)
	assert.NotEqual(t, flow.RGRedQuestion, res.Output.PromptRG)
	assert.NotEmpty(t, res.Output.PromptRG)
	assert.Equal(t, JoinUtterance(res.Response.Text, res.Prompt.Text), res.Output.ResponseText)
}

func TestSmoothHandoffAndNameCorrection(t *testing.T) {
	c := newConvo(t, fullArbiter(t))
	c.say("")

	res := c.say("My name is Abby.")
	assert.Equal(t, flow.RGLaunch, res.ResponseRG)
	assert.Equal(t, models.SmoothHandoffLaunchToNeuralChat, res.Response.SmoothHandoff)
	assert.Equal(t, flow.RGNeuralChat, res.Output.PromptRG)
	assert.Equal(t, flow.RGNeuralChat, res.Output.NewActiveRG)
	assert.Equal(t, models.PromptForceStart, res.Prompt.PromptType)
	assert.Contains(t, res.Output.ResponseText, "Abby")
	assert.True(t, strings.HasSuffix(res.Output.ResponseText, res.Prompt.Text))
	assert.Equal(t, "Abby", res.UserAttributes.Name())

	res = c.say("my name is not Abby")
	assert.Equal(t, flow.RGOneTurnHack, res.ResponseRG)
	assert.True(t, strings.HasPrefix(res.Output.ResponseText, rg.NameCorrectionText))
	_, hasName := res.UserAttributes[models.UserAttrName]
	assert.False(t, hasName)
	assert.Equal(t, true, res.UserAttributes[models.UserAttrNameCorrected])
	assert.Equal(t, false, res.UserAttributes[models.UserAttrRecognizedByName])
}

func TestSupernodeTopicThroughArbiter(t *testing.T) {
	c := newConvo(t, fullArbiter(t))
	c.in.TurnNum = 3
	c.in.LastActiveRG = flow.RGFallback

	res := c.say("I love music")
	assert.Equal(t, flow.RGMusic, res.ResponseRG)
	assert.Equal(t, flow.RGMusic, res.Output.PromptRG)
	assert.Contains(t, res.Output.ResponseText, "Lately I can't stop listening to")
	assert.True(t, strings.HasSuffix(res.Output.ResponseText, "What kind of music do you like to listen to?"))

	var music models.State
	require.NoError(t, json.Unmarshal(res.Output.NewState[flow.RGMusic], &music))
	assert.Equal(t, "music_handle_opinion", music.GetString(models.StateKeyCurSupernode))
}

func TestUniversalFallback(t *testing.T) {
	a := New(flow.MustRegistry(rg.NewLaunch(), rg.NewComplaint(), rg.NewRedQuestion(), rg.NewOneTurnHack(), rg.NewFallback()))
	c := newConvo(t, a)
	c.in.TurnNum = 2

	res := c.say("the weather is strange today")
	assert.Equal(t, flow.RGFallback, res.ResponseRG)
	assert.Equal(t, models.PriorityUniversalFallback, res.Response.Priority)
	assert.Equal(t, flow.RGFallback, res.Output.PromptRG)
	assert.Equal(t, rg.FallbackResponse+" "+res.Prompt.Text, res.Output.ResponseText)
}

func TestOffensiveTurnFreezesOtherStates(t *testing.T) {
	c := newConvo(t, fullArbiter(t))
	c.say("")
	c.say("i love music")
	c.in.PersistedState["RETIRED"] = json.RawMessage(`{"kept":true}`)
	before := c.in.PersistedState

	res := c.say("you're a piece of shit")
	assert.Equal(t, flow.RGOffensiveUser, res.ResponseRG)
	for name, raw := range before {
		if name == flow.RGClosingConfirmation {
			continue
		}
		assert.JSONEq(t, string(raw), string(res.Output.NewState[name]), name)
	}
	assert.Equal(t, 1, rg.OffenceCounts(res.UserAttributes)[rg.OffenceCurse])

	// The counts survive the frozen turn, so the next offence escalates.
	before = c.in.PersistedState
	res = c.say("you're a piece of shit")
	assert.Equal(t, flow.RGOffensiveUser, res.ResponseRG)
	assert.Equal(t, "Let's keep our conversation friendly, please.", res.Response.Text)
	assert.Equal(t, 2, rg.OffenceCounts(res.UserAttributes)[rg.OffenceCurse])
	assert.JSONEq(t, string(before[flow.RGMusic]), string(res.Output.NewState[flow.RGMusic]))
}

// stubRG returns fixed results and can be told to panic.
type stubRG struct {
	flow.Base
	res     *models.ResponseResult
	prompt  *models.PromptResult
	panicOn string
}

func newStub(name string, res *models.ResponseResult) *stubRG {
	return &stubRG{Base: flow.NewBase(name), res: res}
}

func (s *stubRG) GetResponse(*flow.Turn, models.State) (*models.ResponseResult, error) {
	if s.panicOn == "response" {
		panic("boom")
	}
	if s.res == nil {
		return models.EmptyResponse(), nil
	}
	r := *s.res
	return &r, nil
}

func (s *stubRG) GetPrompt(*flow.Turn, models.State) (*models.PromptResult, error) {
	if s.prompt == nil {
		return models.EmptyPrompt(), nil
	}
	p := *s.prompt
	return &p, nil
}

func (s *stubRG) UpdateIfChosen(state models.State, cond models.ConditionalState) models.State {
	if s.panicOn == "update" {
		panic("boom")
	}
	return flow.DefaultUpdateIfChosen(state, cond)
}

func said(text string, p models.ResponsePriority) *models.ResponseResult {
	return &models.ResponseResult{Text: text, Priority: p, AnswerType: models.AnswerStatement}
}

func runStubs(t *testing.T, rgs ...flow.ResponseGenerator) *Result {
	t.Helper()
	a := New(flow.MustRegistry(append(rgs, rg.NewFallback())...), WithSeed(1))
	return a.RunTurn(context.Background(), Request{
		Input:       models.TurnInput{ConversationID: "c1", UserText: "hmm okay", TurnNum: 2},
		Annotations: annotate("hmm okay"),
	})
}

func TestResponseRanking(t *testing.T) {
	tests := []struct {
		name   string
		alpha  *stubRG
		beta   *stubRG
		wantRG string
	}{
		{
			name:   "higher priority wins",
			alpha:  newStub("ALPHA", said("Alpha here.", models.PriorityCanStart)),
			beta:   newStub("BETA", said("Beta here.", models.PriorityStrongContinue)),
			wantRG: "BETA",
		},
		{
			name:   "ties go to the earlier content RG",
			alpha:  newStub("ALPHA", said("Alpha here.", models.PriorityCanStart)),
			beta:   newStub("BETA", said("Beta here.", models.PriorityCanStart)),
			wantRG: "ALPHA",
		},
		{
			name:   "panicking RG is skipped",
			alpha:  &stubRG{Base: flow.NewBase("ALPHA"), res: said("Alpha here.", models.PriorityForceStart), panicOn: "response"},
			beta:   newStub("BETA", said("Beta here.", models.PriorityCanStart)),
			wantRG: "BETA",
		},
		{
			name:   "only the fallback may use universal fallback",
			alpha:  newStub("ALPHA", said("Alpha here.", models.PriorityUniversalFallback)),
			beta:   newStub("BETA", nil),
			wantRG: flow.RGFallback,
		},
		{
			name:   "offensive output is dropped",
			alpha:  newStub("ALPHA", said("What the fuck.", models.PriorityForceStart)),
			beta:   newStub("BETA", said("Beta here.", models.PriorityWeakContinue)),
			wantRG: "BETA",
		},
		{
			name:   "invalid result is skipped",
			alpha:  newStub("ALPHA", &models.ResponseResult{Text: "Alpha here.", Priority: models.PriorityNo}),
			beta:   newStub("BETA", nil),
			wantRG: flow.RGFallback,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runStubs(t, tt.alpha, tt.beta)
			require.False(t, res.Failed)
			assert.Equal(t, tt.wantRG, res.ResponseRG)
		})
	}
}

func TestPromptPairing(t *testing.T) {
	alpha := newStub("ALPHA", &models.ResponseResult{
		Text: "Alpha here.", Priority: models.PriorityCanStart, NeedsPrompt: true, AnswerType: models.AnswerStatement,
		ConditionalState: models.ConditionalState{"said": true},
	})
	alpha.prompt = &models.PromptResult{
		Text: "Shall we go on?", PromptType: models.PromptContextual, AnswerType: models.AnswerQuestionSelfHandling,
		ConditionalState: models.ConditionalState{"asked": true},
	}
	beta := newStub("BETA", nil)
	beta.prompt = &models.PromptResult{Text: "Something else?", PromptType: models.PromptGeneric}

	res := runStubs(t, alpha, beta)
	require.False(t, res.Failed)
	assert.Equal(t, "Alpha here. Shall we go on?", res.Output.ResponseText)
	assert.Equal(t, "ALPHA", res.Output.NewActiveRG)
	assert.Equal(t, models.AnswerQuestionSelfHandling, res.AnswerType)

	var st models.State
	require.NoError(t, json.Unmarshal(res.Output.NewState["ALPHA"], &st))
	assert.Equal(t, true, st["said"])
	assert.Equal(t, true, st["asked"])
	assert.Equal(t, 1, st.GetInt(models.StateKeyNumTurnsInRG))
}

func TestCurrentEntityFollowsChosenResult(t *testing.T) {
	pizza := models.NewEntity("Pizza", []string{"food"}, false, 300000)
	jazz := models.NewEntity("Jazz", []string{"musical genre"}, false, 200000)

	declares := said("Pizza is great.", models.PriorityCanStart)
	declares.CurEntity = pizza
	a := New(flow.MustRegistry(newStub("ALPHA", declares), rg.NewFallback()))
	res := a.RunTurn(context.Background(), Request{
		Input:       models.TurnInput{ConversationID: "c1", UserText: "ok", TurnNum: 2, CurrentEntity: jazz},
		Annotations: annotate("ok"),
	})
	require.False(t, res.Failed)
	assert.Equal(t, "Pizza", res.Output.NewCurrentEntity.Name)

	a = New(flow.MustRegistry(newStub("ALPHA", said("Sure.", models.PriorityCanStart)), rg.NewFallback()))
	res = a.RunTurn(context.Background(), Request{
		Input:       models.TurnInput{ConversationID: "c1", UserText: "ok", TurnNum: 2, CurrentEntity: jazz},
		Annotations: annotate("ok"),
	})
	require.False(t, res.Failed)
	assert.Equal(t, "Jazz", res.Output.NewCurrentEntity.Name)
}

func TestFailedTurnKeepsStates(t *testing.T) {
	alpha := &stubRG{Base: flow.NewBase("ALPHA"), res: said("Alpha here.", models.PriorityForceStart), panicOn: "update"}
	a := New(flow.MustRegistry(alpha, rg.NewFallback()))
	persisted := map[string]json.RawMessage{"ALPHA": json.RawMessage(`{"x":1}`)}
	attrs := models.UserAttributes{models.UserAttrName: "Abi"}

	res := a.RunTurn(context.Background(), Request{
		Input: models.TurnInput{
			ConversationID: "c1", UserText: "hello there", TurnNum: 2,
			PersistedState: persisted, UserAttributes: attrs,
		},
		Annotations: annotate("hello there"),
	})
	assert.True(t, res.Failed)
	assert.Equal(t, DefaultFallbackText, res.Output.ResponseText)
	assert.Equal(t, persisted, res.Output.NewState)
	assert.Equal(t, attrs, res.UserAttributes)
}

func TestFirstTurnOnlyLaunchAndFallback(t *testing.T) {
	loud := newStub("ALPHA", said("Alpha first!", models.PriorityForceStart))
	a := New(flow.MustRegistry(rg.NewLaunch(), loud, rg.NewFallback()))
	res := a.RunTurn(context.Background(), Request{Input: models.TurnInput{ConversationID: "c1"}})
	require.False(t, res.Failed)
	assert.Equal(t, flow.RGLaunch, res.ResponseRG)
}

func TestSeededTurnsRepeat(t *testing.T) {
	run := func() string {
		a := New(flow.MustRegistry(rg.NewFallback()), WithSeed(42))
		res := a.RunTurn(context.Background(), Request{
			Input:       models.TurnInput{ConversationID: "c1", UserText: "blah", TurnNum: 5},
			Annotations: annotate("blah"),
		})
		return res.Output.ResponseText
	}
	assert.Equal(t, run(), run())
}

func TestJoinUtterance(t *testing.T) {
	tests := []struct {
		response, prompt, want string
	}{
		{"Hi there!", "What's your name?", "Hi there! What's your name?"},
		{"  Okay.  ", "", "Okay."},
		{"Okay", "", "Okay."},
		{"", "Shall we?", "Shall we?"},
		{"Sure", "let's go", "Sure let's go."},
		{"", "", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, JoinUtterance(tt.response, tt.prompt), "%q + %q", tt.response, tt.prompt)
	}
}
