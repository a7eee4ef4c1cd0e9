package nlu

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/BTreeMap/DialogCore/internal/kg"
	"github.com/BTreeMap/DialogCore/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNormalize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"What medication should I take for a headache?", "what medication should i take for a headache"},
		{"I’m  fine, thanks!", "i'm fine thanks"},
		{"  Hello\tthere  ", "hello there"},
		{"ＬＯＵＤ", "loud"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestClassifyDialogAct(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"I have to go.", DialogActClosing},
		{"stop", DialogActClosing},
		{"what do you mean", DialogActComplaint},
		{"no", DialogActNegAnswer},
		{"yes", DialogActPosAnswer},
		{"What is your favorite food?", DialogActOpenQuestion},
		{"do you like music", DialogActYesNoQuestion},
		{"cool", DialogActBackChannel},
		{"i think pizza is great", DialogActOpinion},
		{"i went to the park", DialogActStatement},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			n := Normalize(tt.raw)
			da := ClassifyDialogAct(tt.raw, n, Tokenize(n))
			assert.Equal(t, tt.want, da.Top)
			assert.Greater(t, da.Prob(tt.want), 0.5)
		})
	}
	da := ClassifyDialogAct("no", "no", []string{"no"})
	assert.True(t, da.IsNoAnswer)
	assert.False(t, da.IsYesAnswer)
}

func TestClassifyNavigation(t *testing.T) {
	pizza := models.NewEntity("Pizza", []string{"food"}, false, 1)
	tests := []struct {
		in   string
		cur  *models.Entity
		want models.NavigationalIntent
	}{
		{"i don't want to talk about music", nil, models.NavigationalIntent{NegIntent: true, NegTopic: "music"}},
		{"can we talk about something else", nil, models.NavigationalIntent{NegIntent: true}},
		{"let's talk about pizza", nil, models.NavigationalIntent{PosIntent: true, PosTopic: "pizza"}},
		{"let's talk about pizza", pizza, models.NavigationalIntent{PosIntent: true, PosTopic: "pizza", PosTopicIsCurrentTopic: true}},
		{"let's chat", nil, models.NavigationalIntent{PosIntent: true}},
		{"can we talk about something", nil, models.NavigationalIntent{PosIntent: true}},
		{"i like dogs", nil, models.NavigationalIntent{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, *ClassifyNavigation(tt.in, tt.cur))
		})
	}
}

func TestClassifyRedQuestion(t *testing.T) {
	rq := ClassifyRedQuestion(Normalize("What medication should I take for a headache?"))
	assert.Equal(t, RedQuestionMedical, rq.Label)
	assert.Greater(t, rq.Probability, 0.75)

	rq = ClassifyRedQuestion("my lawyer is nice")
	assert.Equal(t, RedQuestionLegal, rq.Label)
	assert.Less(t, rq.Probability, 0.75)

	assert.Equal(t, RedQuestionNone, ClassifyRedQuestion("i like pizza").Label)
}

func TestSentiment(t *testing.T) {
	assert.InDelta(t, 0.5, Sentiment([]string{"i", "love", "pizza"}), 1e-9)
	assert.InDelta(t, -0.5, Sentiment([]string{"i", "don't", "like", "it"}), 1e-9)
	assert.Zero(t, Sentiment([]string{"the", "sky"}))
}

func TestResolveCoreference(t *testing.T) {
	e := models.NewEntity("Queen (band)", nil, true, 1)
	assert.Equal(t, "i love queen", ResolveCoreference([]string{"i", "love", "them"}, e))
	assert.Empty(t, ResolveCoreference([]string{"i", "love", "them"}, nil))
	assert.Empty(t, ResolveCoreference([]string{"hello"}, e))
}

func TestKeywordMatcherWholeWords(t *testing.T) {
	m := MustKeywordMatcher([]string{"music", "hip hop"})
	assert.True(t, m.Contains("i love music"))
	assert.True(t, m.Contains("hip hop is great"))
	assert.False(t, m.Contains("musical theatre"))
	assert.False(t, (*KeywordMatcher)(nil).Contains("music"))
	assert.True(t, ContainsOffensive("you are an asshole"))
	assert.False(t, ContainsOffensive("you are nice"))
}

func TestEntityLinker(t *testing.T) {
	ctx := context.Background()
	g := kg.NewMemoryGraph(append(kg.DefaultCatalog(),
		kg.Entry{Entity: models.NewEntity("Zorblax", []string{"thing"}, false, 10)})...)
	l, err := NewEntityLinker(ctx, g)
	require.NoError(t, err)

	res := l.Link("i love taylor swift and pizza")
	require.Len(t, res.HighPrec, 2)
	assert.Equal(t, "Taylor Swift", res.HighPrec[0].Entity.Name)
	assert.Equal(t, "taylor swift", res.HighPrec[0].Span)
	assert.Equal(t, "Pizza", res.HighPrec[1].Entity.Name)

	res = l.Link("have you heard of zorblax")
	assert.Empty(t, res.HighPrec)
	require.Len(t, res.ThresholdRemoved, 1)
	assert.Equal(t, "Zorblax", res.ThresholdRemoved[0].Entity.Name)

	res = l.Link("i like pizzas")
	require.Len(t, res.HighPrec, 1)
	assert.Equal(t, "Pizza", res.HighPrec[0].Entity.Name)

	assert.Empty(t, l.Link("").HighPrec)
}

func TestConfidence(t *testing.T) {
	assert.Greater(t, Confidence("taylor swift", 900000), Confidence("taylor", 900000))
	assert.LessOrEqual(t, Confidence("a b c d e", 1<<30), 1.0)
}

type stubAnnotator struct {
	name string
	fn   func(ctx context.Context, req *Request) (Result, error)
}

func (s stubAnnotator) Name() string { return s.name }
func (s stubAnnotator) Annotate(ctx context.Context, req *Request) (Result, error) {
	return s.fn(ctx, req)
}

func TestPipelineToleratesFailingAnnotators(t *testing.T) {
	failing := stubAnnotator{name: "failing", fn: func(context.Context, *Request) (Result, error) {
		return nil, errors.New("service down")
	}}
	slow := stubAnnotator{name: "slow", fn: func(ctx context.Context, _ *Request) (Result, error) {
		<-ctx.Done()
		return func(a *models.Annotations) { a.Coreference = "late" }, ctx.Err()
	}}
	panicking := stubAnnotator{name: "panicking", fn: func(context.Context, *Request) (Result, error) {
		panic("boom")
	}}
	p := NewPipeline(
		WithAnnotators(append(DefaultAnnotators(), failing, slow, panicking)...),
		WithTimeout(50*time.Millisecond),
	)
	ann, err := p.Annotate(context.Background(), Request{Text: "Yes!"})
	require.NoError(t, err)
	assert.Equal(t, "yes", ann.Normalized)
	require.NotNil(t, ann.DialogAct)
	assert.True(t, ann.DialogAct.IsYesAnswer)
	require.NotNil(t, ann.Offensive)
	assert.False(t, ann.IsOffensive())
	assert.Empty(t, ann.Coreference)
}

func TestPipelineCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewPipeline(WithAnnotators(DefaultAnnotators()...))
	_, err := p.Annotate(ctx, Request{Text: "hello"})
	assert.ErrorIs(t, err, context.Canceled)
}

type stubNeural struct {
	cands []models.NeuralCandidate
	err   error
}

func (s stubNeural) GenerateCandidates(context.Context, []string, string) ([]models.NeuralCandidate, error) {
	return s.cands, s.err
}

func TestNeuralFuture(t *testing.T) {
	p := NewPipeline(WithNeuralGenerator(stubNeural{cands: []models.NeuralCandidate{
		{Text: "low", Score: 0.1}, {Text: "high", Score: 0.9},
	}}))
	ann, err := p.Annotate(context.Background(), Request{Text: "tell me something"})
	require.NoError(t, err)
	got := ann.NeuralCandidates()
	require.Len(t, got, 2)
	assert.Equal(t, "high", got[0].Text)
	// A second read returns the same resolved value.
	assert.Equal(t, got, ann.NeuralCandidates())

	p = NewPipeline(WithNeuralGenerator(stubNeural{err: errors.New("quota")}))
	ann, err = p.Annotate(context.Background(), Request{Text: "hi"})
	require.NoError(t, err)
	assert.Nil(t, ann.NeuralCandidates())
}

func TestIdentifyResponseTypes(t *testing.T) {
	p := NewPipeline(WithAnnotators(DefaultAnnotators()...))
	tests := []struct {
		text string
		want []models.ResponseType
	}{
		{"yes", []models.ResponseType{models.ResponseTypeYes}},
		{"i don't know", []models.ResponseType{models.ResponseTypeDontKnow}},
		{"i love music", []models.ResponseType{models.ResponseTypeMusicKeyword, models.ResponseTypePositive}},
		{"pizza is my favorite food", []models.ResponseType{models.ResponseTypeFoodKeyword}},
		{"wow that's so cool", []models.ResponseType{models.ResponseTypeThats}},
		{"what did you just say", []models.ResponseType{models.ResponseTypeRequestRepeat, models.ResponseTypeQuestion}},
		{"i don't want to talk about this", []models.ResponseType{models.ResponseTypeDisinterested}},
		{"i didn't know that", []models.ResponseType{models.ResponseTypeDidntKnow}},
		{"nothing", []models.ResponseType{models.ResponseTypeNothing}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			ann, err := p.Annotate(context.Background(), Request{Text: tt.text})
			require.NoError(t, err)
			rt := IdentifyResponseTypes(ann, false)
			for _, w := range tt.want {
				assert.True(t, rt.Has(w), "missing %s in %v", w, rt.Sorted())
			}
		})
	}
	assert.Empty(t, IdentifyResponseTypes(nil, false))

	ann, err := p.Annotate(context.Background(), Request{Text: "that's a tough one"})
	require.NoError(t, err)
	assert.True(t, IdentifyResponseTypes(ann, false).Has(models.ResponseTypeDontKnow))
	assert.False(t, IdentifyResponseTypes(ann, true).Has(models.ResponseTypeDontKnow))
}
