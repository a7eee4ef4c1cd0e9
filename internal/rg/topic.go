package rg

import (
	"fmt"
	"io/fs"

	"github.com/BTreeMap/DialogCore/internal/flow"
	"github.com/BTreeMap/DialogCore/internal/models"
	"github.com/BTreeMap/DialogCore/internal/supernode"
)

// Fields shared by the topic RGs' definitions.
const (
	keyAsked        = "asked"
	keyHavePrompted = "have_prompted"
)

// TopicReports loads the definitions of every topic RG and checks their
// supernode graphs. Load errors are returned; graph problems are in the
// reports.
func TopicReports() (map[string]*supernode.Report, error) {
	topics := []struct {
		name  string
		defs  fs.FS
		root  string
		hooks supernode.Hooks
	}{
		{flow.RGMusic, musicDefs, "music", MusicHooks()},
		{flow.RGFood, foodDefs, "food", FoodHooks()},
		{flow.RGPersonalIssues, personalIssuesDefs, "personal_issues", PersonalIssuesHooks()},
	}
	reports := make(map[string]*supernode.Report, len(topics))
	for _, tp := range topics {
		lib, err := supernode.Load(tp.defs, tp.root)
		if err != nil {
			return nil, fmt.Errorf("%s definitions: %w", tp.name, err)
		}
		reports[tp.name] = supernode.Graph(lib, tp.hooks)
	}
	return reports, nil
}

// TopicRG is a supernode-driven RG whose entry flag and pending question
// only live as long as the RG keeps the conversation.
type TopicRG struct {
	*supernode.RG
	enteringKey string
}

func newTopicRG(name string, defs fs.FS, root, enteringKey string, hooks supernode.Hooks) (*TopicRG, error) {
	lib, err := supernode.Load(defs, root)
	if err != nil {
		return nil, fmt.Errorf("load %s definitions: %w", name, err)
	}
	if report := supernode.Graph(lib, hooks); !report.OK() {
		return nil, fmt.Errorf("%s definitions: %w: %v", name, supernode.ErrBadDefinition, report.Problems)
	}
	initial := models.State{enteringKey: false, keyAsked: nil, keyHavePrompted: false}
	return &TopicRG{RG: supernode.NewRG(name, lib, hooks, initial), enteringKey: enteringKey}, nil
}

// UpdateIfChosen drops a pending question when the RG's own follow-up prompt
// was not the one asked.
func (t *TopicRG) UpdateIfChosen(state models.State, cond models.ConditionalState) models.State {
	out := t.RG.UpdateIfChosen(state, cond)
	if out.GetString(models.StateKeyCurSupernode) == "" {
		out[keyAsked] = nil
	}
	return out
}

func (t *TopicRG) UpdateIfNotChosen(state models.State, cond models.ConditionalState) models.State {
	out := t.RG.UpdateIfNotChosen(state, cond)
	out[t.enteringKey] = false
	out[keyAsked] = nil
	return out
}

// entering reports whether this turn moves the conversation to the topic: a
// keyword, navigational intent naming one of words, or an entity the user
// just brought up from one of groups.
func entering(turn *flow.Turn, keyword models.ResponseType, words []string, groups ...string) bool {
	if turn.Has(keyword) {
		return true
	}
	if ann := turn.Annotations; ann != nil && ann.NavigationalIntent != nil {
		if nav := ann.NavigationalIntent; nav.PosIntent && hasWord(nav.PosTopic, words...) {
			return true
		}
	}
	if cur := turn.CurEntity(); cur != nil && turn.CurEntityInitiatedByUser() {
		for _, g := range groups {
			if cur.InGroup(g) {
				return true
			}
		}
	}
	return false
}

// entityIn returns the current entity when it belongs to one of groups.
func entityIn(turn *flow.Turn, groups ...string) *models.Entity {
	cur := turn.CurEntity()
	for _, g := range groups {
		if cur.InGroup(g) {
			return cur
		}
	}
	return nil
}

// promptedFlags is the prompt NLU of a topic's introductory supernode.
func promptedFlags(_ *flow.Turn, state models.State) map[string]any {
	return map[string]any{keyHavePrompted: state.GetBool(keyHavePrompted)}
}
