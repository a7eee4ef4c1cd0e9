package tracker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BTreeMap/DialogCore/internal/kg"
	"github.com/BTreeMap/DialogCore/internal/models"
)

func lookup(t *testing.T, g kg.Graph, name string) *models.Entity {
	t.Helper()
	e, err := g.Lookup(context.Background(), name)
	require.NoError(t, err)
	return e
}

func annotations(text string, nav *models.NavigationalIntent, linked ...*models.Entity) *models.Annotations {
	res := &models.EntityLinkerResult{}
	for i, e := range linked {
		// Earlier entities get higher confidence.
		res.HighPrec = append(res.HighPrec, models.LinkedSpan{
			Span: e.Talkable(), Entity: e, Confidence: 0.95 - 0.05*float64(i),
		})
	}
	return &models.Annotations{Text: text, Normalized: text, NavigationalIntent: nav, EntityLinker: res}
}

func TestInitForTurnRules(t *testing.T) {
	ctx := context.Background()
	g := kg.NewMemoryGraph(kg.DefaultCatalog()...)
	taylor := lookup(t, g, "Taylor Swift")
	pizza := lookup(t, g, "Pizza")
	dog := lookup(t, g, "Dog")
	music := lookup(t, g, "Music")
	jazz := lookup(t, g, "Jazz")

	tests := []struct {
		name      string
		cur       *models.Entity
		expected  string
		ann       *models.Annotations
		want      *models.Entity
		rule      Rule
		initiated bool
	}{
		{
			name:      "expected type beats confidence",
			expected:  models.GroupFood,
			ann:       annotations("taylor swift and pizza", nil, taylor, pizza),
			want:      pizza,
			rule:      RuleExpectedType,
			initiated: true,
		},
		{
			name: "alias mention retains",
			cur:  dog,
			ann:  annotations("i watch puppy videos with taylor swift", nil, taylor),
			want: dog,
			rule: RuleMentioned,
		},
		{
			name:      "popular entity adopted",
			ann:       annotations("music like jazz", nil, music, jazz),
			want:      jazz,
			rule:      RulePopular,
			initiated: true,
		},
		{
			name: "retained without signal",
			cur:  dog,
			ann:  annotations("what else", nil),
			want: dog,
			rule: RuleRetained,
		},
		{
			name: "topic change clears",
			cur:  dog,
			ann:  annotations("talk about something else", &models.NavigationalIntent{NegIntent: true}),
			want: nil,
			rule: RuleCleared,
		},
		{
			name: "nil annotations retain",
			cur:  dog,
			want: dog,
			rule: RuleRetained,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New()
			tr.Cur = tt.cur
			if tt.expected != "" {
				tr.ExpectedType = models.EntityGroups[tt.expected]
			}
			tr.InitForTurn(ctx, g, tt.ann)
			assert.True(t, tt.want.Equal(tr.Cur), "got %v want %v", tr.Cur, tt.want)
			assert.Equal(t, tt.rule, tr.LastRule)
			assert.Equal(t, tt.initiated, tr.CurEntityInitiatedByUserThisTurn())
			require.Len(t, tr.History, 1)
		})
	}
}

func TestRejectedEntityNotReadopted(t *testing.T) {
	ctx := context.Background()
	g := kg.NewMemoryGraph(kg.DefaultCatalog()...)
	dog := lookup(t, g, "Dog")

	tr := New()
	tr.Cur = dog
	tr.InitForTurn(ctx, g, annotations("i don't want to talk about that", &models.NavigationalIntent{NegIntent: true}))
	require.Nil(t, tr.Cur)
	assert.True(t, tr.TalkedAbout(dog))

	tr.InitForTurn(ctx, g, annotations("dogs", nil, dog))
	assert.Nil(t, tr.Cur)
	assert.Equal(t, RuleRetained, tr.LastRule)
}

func TestUserMentionedUntalked(t *testing.T) {
	ctx := context.Background()
	g := kg.NewMemoryGraph(kg.DefaultCatalog()...)
	taylor := lookup(t, g, "Taylor Swift")
	pizza := lookup(t, g, "Pizza")

	tr := New()
	tr.ExpectedType = models.EntityGroups[models.GroupFood]
	tr.InitForTurn(ctx, g, annotations("taylor swift and pizza", nil, taylor, pizza))
	require.Len(t, tr.UserMentionedUntalked, 1)
	assert.Equal(t, "Taylor Swift", tr.UserMentionedUntalked[0].Name)

	tr.FinishEntity(taylor)
	assert.Empty(t, tr.UserMentionedUntalked)
	assert.True(t, tr.TalkedAbout(taylor))
}

func TestUpdatesFromChosenResults(t *testing.T) {
	jazz := models.NewEntity("Jazz", []string{"genre"}, false, 1)
	piano := models.NewEntity("Piano", []string{"musical instrument"}, false, 1)
	tr := New()
	tr.InitForTurn(context.Background(), nil, annotations("hi", nil))

	tr.UpdateFromResponse(&models.ResponseResult{Text: "x", Priority: models.PriorityCanStart, CurEntity: jazz})
	assert.Equal(t, jazz, tr.Cur)
	assert.Nil(t, tr.ExpectedType)

	group := models.EntityGroups[models.GroupMusicalInstrument]
	tr.UpdateFromPrompt(&models.PromptResult{Text: "y", PromptType: models.PromptGeneric, CurEntity: piano, ExpectedType: group})
	assert.Equal(t, piano, tr.Cur)
	assert.Equal(t, group, tr.ExpectedType)
	assert.Equal(t, TurnEntities{Response: jazz, Prompt: piano}, tr.History[0])

	tr.Override(models.UpdateEntity{Update: true, Entity: jazz})
	assert.Equal(t, jazz, tr.Cur)
	assert.Equal(t, RuleOverridden, tr.LastRule)
	tr.Override(models.UpdateEntity{})
	assert.Equal(t, jazz, tr.Cur)
}

func TestPersistence(t *testing.T) {
	tr := New()
	tr.Cur = models.NewEntity("Queen (band)", []string{"band"}, true, 600000)
	tr.ExpectedType = models.EntityGroups[models.GroupMusician]
	tr.RejectEntity(models.NewEntity("Dog", nil, false, 1))

	raw, err := tr.Marshal()
	require.NoError(t, err)
	back, err := Load(raw)
	require.NoError(t, err)
	assert.Equal(t, tr, back)

	fresh, err := Load(nil)
	require.NoError(t, err)
	assert.Nil(t, fresh.Cur)

	_, err = Load([]byte("{"))
	assert.Error(t, err)
}

func TestCloneIsIndependent(t *testing.T) {
	tr := New()
	tr.RejectEntity(models.NewEntity("Dog", nil, false, 1))
	c := tr.Clone()
	c.RejectEntity(models.NewEntity("Cat", nil, false, 1))
	c.Cur = models.NewEntity("Cat", nil, false, 1)
	assert.Len(t, tr.TalkedRejected, 1)
	assert.Nil(t, tr.Cur)
}
