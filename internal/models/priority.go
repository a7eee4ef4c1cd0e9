package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ResponsePriority ranks response candidates. Higher values win.
type ResponsePriority int

const (
	PriorityNo ResponsePriority = iota
	PriorityUniversalFallback
	PriorityWeakContinue
	PriorityCanStart
	PriorityStrongContinue
	PriorityForceStart
)

var responsePriorityNames = map[ResponsePriority]string{
	PriorityNo:                "NO",
	PriorityUniversalFallback: "UNIVERSAL_FALLBACK",
	PriorityWeakContinue:      "WEAK_CONTINUE",
	PriorityCanStart:          "CAN_START",
	PriorityStrongContinue:    "STRONG_CONTINUE",
	PriorityForceStart:        "FORCE_START",
}

func (p ResponsePriority) String() string {
	if name, ok := responsePriorityNames[p]; ok {
		return name
	}
	return fmt.Sprintf("ResponsePriority(%d)", int(p))
}

// ParseResponsePriority accepts the upper-case name, optionally prefixed with
// "ResponsePriority.".
func ParseResponsePriority(s string) (ResponsePriority, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "ResponsePriority.")
	for p, name := range responsePriorityNames {
		if strings.EqualFold(name, s) {
			return p, nil
		}
	}
	return PriorityNo, fmt.Errorf("unknown response priority %q", s)
}

func (p ResponsePriority) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *ResponsePriority) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseResponsePriority(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// PromptType ranks prompt candidates. Higher values win.
type PromptType int

const (
	PromptNo PromptType = iota
	PromptGeneric
	PromptContextual
	PromptCurrentTopic
	PromptForceStart
)

var promptTypeNames = map[PromptType]string{
	PromptNo:           "NO",
	PromptGeneric:      "GENERIC",
	PromptContextual:   "CONTEXTUAL",
	PromptCurrentTopic: "CURRENT_TOPIC",
	PromptForceStart:   "FORCE_START",
}

func (p PromptType) String() string {
	if name, ok := promptTypeNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PromptType(%d)", int(p))
}

// ParsePromptType accepts the upper-case name, optionally prefixed with "PromptType.".
func ParsePromptType(s string) (PromptType, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "PromptType.")
	for p, name := range promptTypeNames {
		if strings.EqualFold(name, s) {
			return p, nil
		}
	}
	return PromptNo, fmt.Errorf("unknown prompt type %q", s)
}

func (p PromptType) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *PromptType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParsePromptType(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// AnswerType declares who is expected to handle the user's next utterance.
type AnswerType int

const (
	AnswerNone AnswerType = iota
	AnswerStatement
	AnswerQuestionSelfHandling
	AnswerQuestionHandoff
	AnswerEnding
)

var answerTypeNames = map[AnswerType]string{
	AnswerNone:                 "NONE",
	AnswerStatement:            "STATEMENT",
	AnswerQuestionSelfHandling: "QUESTION_SELFHANDLING",
	AnswerQuestionHandoff:      "QUESTION_HANDOFF",
	AnswerEnding:               "ENDING",
}

func (a AnswerType) String() string {
	if name, ok := answerTypeNames[a]; ok {
		return name
	}
	return fmt.Sprintf("AnswerType(%d)", int(a))
}

// ParseAnswerType accepts the upper-case name, optionally prefixed with "AnswerType.".
func ParseAnswerType(s string) (AnswerType, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "AnswerType.")
	for a, name := range answerTypeNames {
		if strings.EqualFold(name, s) {
			return a, nil
		}
	}
	return AnswerNone, fmt.Errorf("unknown answer type %q", s)
}

func (a AnswerType) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *AnswerType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseAnswerType(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// SmoothHandoff tags a response whose prompt must come from one specific RG.
type SmoothHandoff string

const (
	SmoothHandoffNone               SmoothHandoff = ""
	SmoothHandoffLaunchToNeuralChat SmoothHandoff = "LAUNCH_TO_NEURALCHAT"
)
