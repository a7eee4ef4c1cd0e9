package rg

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/BTreeMap/DialogCore/internal/flow"
	"github.com/BTreeMap/DialogCore/internal/models"
)

const keyAcknowledged = "acknowledged"

// Acknowledgments per entity group, most specific group first. {entity} is
// the entity's talkable name. Groups a topic RG enters on are left out so
// the topic RG gets the turn.
var acknowledgments = []struct {
	group string
	// noun groups name common nouns, spoken in lower case; plural ones as
	// plurals.
	noun, plural bool
	phrases      []string
}{
	{models.GroupFilm, false, false, []string{
		"Oh, {entity}, I love that movie!",
		"I've heard so many good things about {entity}, I should definitely watch it one of these days.",
	}},
	{models.GroupBook, false, false, []string{
		"I've heard so many good things about {entity}, it's definitely on my reading list.",
		"Oh yeah, I have a friend reading {entity}, and they're really enjoying it.",
	}},
	{models.GroupSport, true, false, []string{
		"I love {entity}, it's such a great way to stay in shape.",
		"Oh yeah, {entity} is really great exercise!",
	}},
	{models.GroupAnimal, true, true, []string{
		"Oh yeah, {entity}. What an impressive animal!",
		"You know, I always think {entity} are more intelligent than we think.",
	}},
	{models.GroupPersonRelated, false, false, []string{
		"Oh yeah, I've heard of {entity}. What an interesting life.",
		"Hmm, it seems a lot of people are interested in {entity}.",
	}},
}

// Acknowledgment says something conversational about an entity the user
// just brought up, once per entity, and hands over to a prompt.
type Acknowledgment struct {
	flow.Base
	// skip holds the groups other RGs enter on.
	skip []string
}

func NewAcknowledgment() *Acknowledgment {
	skip := append(append([]string(nil), musicGroups...), models.GroupFood)
	return &Acknowledgment{Base: flow.NewBase(flow.RGAcknowledgment), skip: skip}
}

func (a *Acknowledgment) InitState() models.State {
	st := flow.BaseState()
	st[keyAcknowledged] = []string{}
	return st
}

func (a *Acknowledgment) GetResponse(turn *flow.Turn, state models.State) (*models.ResponseResult, error) {
	cur := turn.CurEntity()
	if cur == nil || !turn.CurEntityInitiatedByUser() {
		return models.EmptyResponse(), nil
	}
	for _, g := range a.skip {
		if cur.InGroup(g) {
			return models.EmptyResponse(), nil
		}
	}
	done := state.GetStringSlice(keyAcknowledged)
	if slices.Contains(done, cur.Name) {
		slog.Debug("Acknowledgment.GetResponse: already acknowledged", "entity", cur.Name)
		return models.EmptyResponse(), nil
	}
	for _, ack := range acknowledgments {
		if !cur.InGroup(ack.group) {
			continue
		}
		name := cur.Talkable()
		if ack.noun {
			name = strings.ToLower(name)
		}
		if ack.plural && !cur.IsPlural() {
			name = inflection.Plural(name)
		}
		res := respond(strings.ReplaceAll(turn.Choose(ack.phrases), "{entity}", name), models.PriorityCanStart, true)
		res.CurEntity = cur
		res.ConditionalState = models.ConditionalState{keyAcknowledged: append(done, cur.Name)}
		slog.Debug("Acknowledgment.GetResponse: acknowledging", "entity", cur.Name, "group", ack.group)
		return res, nil
	}
	return models.EmptyResponse(), nil
}
