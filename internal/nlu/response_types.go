package nlu

import (
	"strings"

	"github.com/BTreeMap/DialogCore/internal/models"
	"github.com/BTreeMap/DialogCore/internal/regex"
)

// Sentiment cut-offs for POSITIVE and NEGATIVE.
const (
	PositiveSentiment = 0.3
	NegativeSentiment = -0.3
)

// IdentifyResponseTypes derives the response-type tags of an utterance.
// curEntityInitiatedThisTurn suppresses the loose DONT_KNOW reading of
// "tough" or "tricky" when the user has just named something.
func IdentifyResponseTypes(ann *models.Annotations, curEntityInitiatedThisTurn bool) models.ResponseTypes {
	rt := models.NewResponseTypes()
	if ann == nil {
		return rt
	}
	text := ann.Normalized
	da := ann.DialogAct
	nav := ann.NavigationalIntent

	if regex.IsYes(text) || (da != nil && da.IsYesAnswer) {
		rt.Add(models.ResponseTypeYes)
	}
	if regex.IsNo(text) || (da != nil && da.IsNoAnswer) {
		rt.Add(models.ResponseTypeNo)
	}
	if (nav != nil && nav.NegIntent) || regex.DisinterestedTemplate.Matches(text) {
		rt.Add(models.ResponseTypeDisinterested)
	}
	if regex.ChangeTopicTemplate.Matches(text) || nav.IsTopicChange() {
		rt.Add(models.ResponseTypeChangeTopic)
	}
	if regex.SayThatAgainTemplate.Matches(text) {
		rt.Add(models.ResponseTypeRequestRepeat)
	}
	if IsQuestion(ann.Text, ann.Tokens) || (da != nil && (da.Top == DialogActOpenQuestion || da.Top == DialogActYesNoQuestion)) {
		rt.Add(models.ResponseTypeQuestion)
	}
	if da != nil && da.Top == DialogActComplaint {
		rt.Add(models.ResponseTypeComplaint)
	}
	if regex.DontKnowTemplate.Matches(text) ||
		(!curEntityInitiatedThisTurn && regex.ContainsPhrase(text, "tough", "tricky", "difficult", "hard one")) {
		rt.Add(models.ResponseTypeDontKnow)
	}
	if regex.DidntKnowTemplate.Matches(text) || regex.SurprisedTemplate.Matches(text) ||
		(strings.Contains(text, "really") && len(text) <= 15) {
		rt.Add(models.ResponseTypeDidntKnow)
	}
	if regex.ThatsTemplate.Matches(text) {
		rt.Add(models.ResponseTypeThats)
	}
	if regex.NotThingTemplate.Matches(text) {
		rt.Add(models.ResponseTypeNothing)
	}
	if regex.BackChannelingTemplate.Matches(text) {
		rt.Add(models.ResponseTypeBackchannel)
	}
	if regex.EverythingTemplate.Matches(text) {
		rt.Add(models.ResponseTypeEverything)
	}
	if ann.Sentiment != nil {
		switch {
		case ann.Sentiment.Compound >= PositiveSentiment:
			rt.Add(models.ResponseTypePositive)
		case ann.Sentiment.Compound <= NegativeSentiment:
			rt.Add(models.ResponseTypeNegative)
		}
	}
	if regex.OpinionTemplate.Matches(text) || (da != nil && da.Top == DialogActOpinion) {
		rt.Add(models.ResponseTypeOpinion)
	}
	if MusicKeywords().Contains(text) || regex.MusicLikeTemplate.Matches(text) {
		rt.Add(models.ResponseTypeMusicKeyword)
	}
	if FoodKeywords().Contains(text) || regex.FoodLikeTemplate.Matches(text) {
		rt.Add(models.ResponseTypeFoodKeyword)
	}
	return rt
}
