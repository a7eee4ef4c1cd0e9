package models

import "sort"

// DialogAct is the dialog-act classifier output.
type DialogAct struct {
	Top         string             `json:"top"`
	Probs       map[string]float64 `json:"probs,omitempty"`
	IsYesAnswer bool               `json:"is_yes_answer"`
	IsNoAnswer  bool               `json:"is_no_answer"`
}

// Prob returns the probability of a label, or 0 when absent.
func (d *DialogAct) Prob(label string) float64 {
	if d == nil {
		return 0
	}
	return d.Probs[label]
}

// NavigationalIntent is the navigational-intent classifier output.
type NavigationalIntent struct {
	PosIntent               bool   `json:"pos_intent"`
	PosTopic                string `json:"pos_topic,omitempty"`
	PosTopicIsCurrentTopic  bool   `json:"pos_topic_is_current_topic,omitempty"`
	NegIntent               bool   `json:"neg_intent"`
	NegTopic                string `json:"neg_topic,omitempty"`
	PosTopicIsHesitatingAsk bool   `json:"pos_topic_is_hesitate,omitempty"`
}

// IsTopicChange reports negative intent with no topic, or positive intent
// towards a new topic.
func (n *NavigationalIntent) IsTopicChange() bool {
	if n == nil {
		return false
	}
	if n.NegIntent && n.NegTopic == "" {
		return true
	}
	return n.PosIntent && n.PosTopic != "" && !n.PosTopicIsCurrentTopic
}

// LinkedSpan is one entity-linker candidate for a span of the utterance.
type LinkedSpan struct {
	Span       string  `json:"span"`
	Entity     *Entity `json:"entity"`
	Confidence float64 `json:"confidence"`
}

// EntityLinkerResult holds linker candidates in three bands.
type EntityLinkerResult struct {
	HighPrec         []LinkedSpan `json:"high_prec,omitempty"`
	ThresholdRemoved []LinkedSpan `json:"threshold_removed,omitempty"`
	ConflictRemoved  []LinkedSpan `json:"conflict_removed,omitempty"`
}

// TopHighPrec returns the high-precision candidates ordered by confidence,
// then pageview, then name.
func (r *EntityLinkerResult) TopHighPrec() []LinkedSpan {
	if r == nil {
		return nil
	}
	out := append([]LinkedSpan(nil), r.HighPrec...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		if out[i].Entity.Pageview != out[j].Entity.Pageview {
			return out[i].Entity.Pageview > out[j].Entity.Pageview
		}
		return out[i].Entity.Name < out[j].Entity.Name
	})
	return out
}

// NeuralCandidate is one neural generation with its score.
type NeuralCandidate struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// RedQuestion is the red-question classifier output.
type RedQuestion struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// Sentiment is a coarse polarity in [-1, 1].
type Sentiment struct {
	Compound float64 `json:"compound"`
}

// Annotations is the immutable per-turn bundle. Nil fields mean the
// annotator was unavailable or timed out this turn.
type Annotations struct {
	Text       string   `json:"text"`
	Normalized string   `json:"normalized"`
	Tokens     []string `json:"tokens,omitempty"`

	DialogAct          *DialogAct          `json:"dialog_act,omitempty"`
	NavigationalIntent *NavigationalIntent `json:"navigational_intent,omitempty"`
	EntityLinker       *EntityLinkerResult `json:"entity_linker,omitempty"`
	RedQuestion        *RedQuestion        `json:"red_question,omitempty"`
	Sentiment          *Sentiment          `json:"sentiment,omitempty"`
	Offensive          *bool               `json:"offensive,omitempty"`
	Coreference        string              `json:"coreference,omitempty"`

	// Neural is resolved at most once per turn.
	Neural NeuralSource `json:"-"`
}

// NeuralSource is the single per-turn neural future.
type NeuralSource interface {
	Candidates() []NeuralCandidate
}

// StaticNeural is a resolved NeuralSource.
type StaticNeural []NeuralCandidate

func (s StaticNeural) Candidates() []NeuralCandidate { return s }

// NeuralCandidates awaits the neural source, returning nil when none was
// prepared.
func (a *Annotations) NeuralCandidates() []NeuralCandidate {
	if a == nil || a.Neural == nil {
		return nil
	}
	return a.Neural.Candidates()
}

// IsOffensive treats a missing annotation as not offensive.
func (a *Annotations) IsOffensive() bool {
	return a != nil && a.Offensive != nil && *a.Offensive
}

// WordCount counts whitespace-separated tokens of the normalized text.
func (a *Annotations) WordCount() int {
	if a == nil {
		return 0
	}
	if len(a.Tokens) > 0 {
		return len(a.Tokens)
	}
	n, inWord := 0, false
	for _, r := range a.Normalized {
		if r == ' ' {
			inWord = false
			continue
		}
		if !inWord {
			n++
			inWord = true
		}
	}
	return n
}
