package nlu

import (
	"context"
	"strings"

	"github.com/BTreeMap/DialogCore/internal/models"
	"github.com/BTreeMap/DialogCore/internal/regex"
)

// Dialog-act labels produced by DialogActAnnotator.
const (
	DialogActClosing       = "closing"
	DialogActComplaint     = "complaint"
	DialogActPosAnswer     = "pos_answer"
	DialogActNegAnswer     = "neg_answer"
	DialogActOpenQuestion  = "open_question"
	DialogActYesNoQuestion = "yes_no_question"
	DialogActBackChannel   = "back-channeling"
	DialogActOpinion       = "opinion"
	DialogActStatement     = "statement"
	// DialogActPersonalIssue only comes from a remote classifier.
	DialogActPersonalIssue = "personal_issue"
)

// DefaultAnnotators returns the local annotators. The entity linker is
// added separately because it needs a knowledge graph.
func DefaultAnnotators() []Annotator {
	return []Annotator{
		DialogActAnnotator{},
		NavigationalIntentAnnotator{},
		RedQuestionAnnotator{},
		OffensiveAnnotator{},
		SentimentAnnotator{},
		CoreferenceAnnotator{},
	}
}

// DialogActAnnotator classifies the utterance with the regex library.
type DialogActAnnotator struct{}

func (DialogActAnnotator) Name() string { return "dialog_act" }

func (DialogActAnnotator) Annotate(_ context.Context, req *Request) (Result, error) {
	da := ClassifyDialogAct(req.Text, req.Normalized, req.Tokens)
	return func(a *models.Annotations) { a.DialogAct = da }, nil
}

var complaintTemplates = []*regex.Template{
	regex.ComplaintClarificationTemplate,
	regex.ComplaintMisheardTemplate,
	regex.ComplaintRepetitionTemplate,
	regex.ComplaintPrivacyTemplate,
	regex.CriticismTemplate,
}

// ClassifyDialogAct picks a top label by rule, first match wins.
func ClassifyDialogAct(raw, normalized string, tokens []string) *models.DialogAct {
	top, p := DialogActStatement, 0.6
	isYes, isNo := regex.IsYes(normalized), regex.IsNo(normalized)
	switch {
	case regex.StopTemplate.Matches(normalized), regex.TryingToStopTemplate.Matches(normalized):
		top, p = DialogActClosing, 0.9
	case anyMatches(complaintTemplates, normalized):
		top, p = DialogActComplaint, 0.9
	case isNo:
		top, p = DialogActNegAnswer, 0.85
	case isYes:
		top, p = DialogActPosAnswer, 0.85
	case IsQuestion(raw, tokens):
		top, p = DialogActOpenQuestion, 0.8
		if len(tokens) > 0 {
			switch tokens[0] {
			case "do", "does", "did", "can", "could", "would", "will", "is", "are", "have", "has":
				top = DialogActYesNoQuestion
			}
		}
	case regex.BackChannelingTemplate.Matches(normalized):
		top, p = DialogActBackChannel, 0.8
	case regex.OpinionTemplate.Matches(normalized):
		top, p = DialogActOpinion, 0.7
	}
	return &models.DialogAct{
		Top:         top,
		Probs:       map[string]float64{top: p},
		IsYesAnswer: isYes,
		IsNoAnswer:  isNo,
	}
}

func anyMatches(templates []*regex.Template, text string) bool {
	for _, t := range templates {
		if t.Matches(text) {
			return true
		}
	}
	return false
}

// NavigationalIntentAnnotator detects requests to talk, or stop talking,
// about a topic.
type NavigationalIntentAnnotator struct{}

func (NavigationalIntentAnnotator) Name() string { return "navigational_intent" }

func (NavigationalIntentAnnotator) Annotate(_ context.Context, req *Request) (Result, error) {
	nav := ClassifyNavigation(req.Normalized, req.CurrentEntity)
	return func(a *models.Annotations) { a.NavigationalIntent = nav }, nil
}

var vagueTopics = map[string]bool{"something": true, "anything": true, "stuff": true, "things": true, "it": true}

// ClassifyNavigation reads navigational intent from the regex library.
// Negative intent is checked first so "talk about something else" is not
// read as a request for the topic "something else".
func ClassifyNavigation(normalized string, cur *models.Entity) *models.NavigationalIntent {
	nav := &models.NavigationalIntent{}
	if slots := regex.NegativeNavigationTemplate.Execute(normalized); slots != nil {
		nav.NegIntent = true
		nav.NegTopic = strings.TrimSuffix(slots["topic"], " anymore")
		return nav
	}
	if slots := regex.PositiveNavigationTemplate.Execute(normalized); slots != nil {
		nav.PosIntent = true
		if topic := slots["topic"]; !vagueTopics[topic] {
			nav.PosTopic = topic
		}
	} else if regex.PositiveNavigationNoTopicTemplate.Matches(normalized) {
		nav.PosIntent = true
	}
	if nav.PosIntent {
		nav.PosTopicIsHesitatingAsk = regex.DontKnowTemplate.Matches(normalized)
		if nav.PosTopic != "" && cur != nil {
			nav.PosTopicIsCurrentTopic = strings.Contains(nav.PosTopic, strings.ToLower(cur.Talkable()))
		}
	}
	return nav
}

// Red-question labels.
const (
	RedQuestionNone      = "none"
	RedQuestionMedical   = "medical"
	RedQuestionLegal     = "legal"
	RedQuestionFinancial = "financial"
	RedQuestionPolitical = "political"
	RedQuestionSexual    = "sexual"
)

var redQuestionKeywords = map[string][]string{
	RedQuestionMedical: {
		"medication", "medications", "medicine", "pill", "pills", "drug", "drugs", "doctor",
		"headache", "symptom", "symptoms", "disease", "cancer", "vaccine", "prescription",
		"diagnose", "diagnosis", "treatment", "dose", "ibuprofen", "aspirin",
	},
	RedQuestionLegal: {
		"lawyer", "legal", "illegal", "lawsuit", "sue", "court", "attorney", "divorce", "arrested",
	},
	RedQuestionFinancial: {
		"invest", "investing", "investment", "stock", "stocks", "loan", "loans", "mortgage",
		"crypto", "bitcoin", "taxes", "retirement",
	},
	RedQuestionPolitical: {
		"president", "election", "vote", "voting", "democrat", "democrats", "republican",
		"republicans", "politics", "political",
	},
	RedQuestionSexual: {"sex", "porn", "naked"},
}

var adviceCues = []string{
	"should i", "can i", "could i", "do i", "how do i", "how can i", "what should",
	"is it legal", "is it safe", "advice", "recommend", "who should i", "which should",
}

// RedQuestionAnnotator flags requests for medical, legal, financial or
// other advice the bot must not give.
type RedQuestionAnnotator struct{}

func (RedQuestionAnnotator) Name() string { return "red_question" }

func (RedQuestionAnnotator) Annotate(_ context.Context, req *Request) (Result, error) {
	rq := ClassifyRedQuestion(req.Normalized)
	return func(a *models.Annotations) { a.RedQuestion = rq }, nil
}

// ClassifyRedQuestion returns the first category whose keyword occurs, with
// high probability when the utterance also asks for advice.
func ClassifyRedQuestion(normalized string) *models.RedQuestion {
	for _, label := range []string{RedQuestionMedical, RedQuestionLegal, RedQuestionFinancial, RedQuestionPolitical, RedQuestionSexual} {
		if !regex.ContainsPhrase(normalized, redQuestionKeywords[label]...) {
			continue
		}
		p := 0.6
		if regex.ContainsPhrase(normalized, adviceCues...) || IsQuestion(normalized, Tokenize(normalized)) {
			p = 0.9
		}
		return &models.RedQuestion{Label: label, Probability: p}
	}
	return &models.RedQuestion{Label: RedQuestionNone, Probability: 0.9}
}

// OffensiveAnnotator flags offensive user input.
type OffensiveAnnotator struct{}

func (OffensiveAnnotator) Name() string { return "offensive" }

func (OffensiveAnnotator) Annotate(_ context.Context, req *Request) (Result, error) {
	off := ContainsOffensive(req.Normalized)
	return func(a *models.Annotations) { a.Offensive = &off }, nil
}

var (
	positiveWords = []string{
		"love", "like", "enjoy", "great", "good", "awesome", "amazing", "fun", "happy", "nice",
		"cool", "favorite", "best", "wonderful", "fantastic", "interesting", "glad",
	}
	negativeWords = []string{
		"hate", "dislike", "bad", "awful", "terrible", "boring", "sad", "worst", "horrible",
		"annoying", "angry", "upset", "gross", "disgusting",
	}
	negators = map[string]bool{"not": true, "don't": true, "never": true, "no": true, "didn't": true, "doesn't": true, "isn't": true}
)

// SentimentAnnotator scores polarity with a small lexicon.
type SentimentAnnotator struct{}

func (SentimentAnnotator) Name() string { return "sentiment" }

func (SentimentAnnotator) Annotate(_ context.Context, req *Request) (Result, error) {
	s := &models.Sentiment{Compound: Sentiment(req.Tokens)}
	return func(a *models.Annotations) { a.Sentiment = s }, nil
}

// Sentiment returns a compound score in [-1, 1]. A negator within the two
// preceding tokens flips a word's polarity.
func Sentiment(tokens []string) float64 {
	var pos, neg float64
	for i, tok := range tokens {
		var polarity float64
		switch {
		case containsWord(positiveWords, tok):
			polarity = 1
		case containsWord(negativeWords, tok):
			polarity = -1
		default:
			continue
		}
		for j := max(0, i-2); j < i; j++ {
			if negators[tokens[j]] {
				polarity = -polarity
				break
			}
		}
		if polarity > 0 {
			pos++
		} else {
			neg++
		}
	}
	if pos+neg == 0 {
		return 0
	}
	return (pos - neg) / (pos + neg + 1)
}

func containsWord(list []string, w string) bool {
	for _, x := range list {
		if x == w {
			return true
		}
	}
	return false
}

var pronouns = map[string]bool{"it": true, "them": true, "they": true, "he": true, "she": true, "him": true, "her": true}

// CoreferenceAnnotator resolves the first pronoun to the current entity.
type CoreferenceAnnotator struct{}

func (CoreferenceAnnotator) Name() string { return "coreference" }

func (CoreferenceAnnotator) Annotate(_ context.Context, req *Request) (Result, error) {
	resolved := ResolveCoreference(req.Tokens, req.CurrentEntity)
	return func(a *models.Annotations) { a.Coreference = resolved }, nil
}

// ResolveCoreference returns the utterance with its first pronoun replaced
// by the entity's talkable name, or "" when nothing was replaced.
func ResolveCoreference(tokens []string, cur *models.Entity) string {
	if cur == nil {
		return ""
	}
	for i, tok := range tokens {
		if pronouns[tok] {
			out := append([]string(nil), tokens...)
			out[i] = strings.ToLower(cur.Talkable())
			return strings.Join(out, " ")
		}
	}
	return ""
}
