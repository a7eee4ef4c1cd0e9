package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestPriorityOrdering(t *testing.T) {
	order := []ResponsePriority{PriorityNo, PriorityUniversalFallback, PriorityWeakContinue, PriorityCanStart, PriorityStrongContinue, PriorityForceStart}
	for i := 1; i < len(order); i++ {
		if !(order[i] > order[i-1]) {
			t.Errorf("expected %s > %s", order[i], order[i-1])
		}
	}
	prompts := []PromptType{PromptNo, PromptGeneric, PromptContextual, PromptCurrentTopic, PromptForceStart}
	for i := 1; i < len(prompts); i++ {
		if !(prompts[i] > prompts[i-1]) {
			t.Errorf("expected %s > %s", prompts[i], prompts[i-1])
		}
	}
}

func TestParsePriorityNames(t *testing.T) {
	tests := []struct {
		in   string
		want ResponsePriority
	}{
		{"FORCE_START", PriorityForceStart},
		{"ResponsePriority.STRONG_CONTINUE", PriorityStrongContinue},
		{"can_start", PriorityCanStart},
		{"NO", PriorityNo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseResponsePriority(tt.in)
			if err != nil {
				t.Fatalf("ParseResponsePriority(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseResponsePriority(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
	if _, err := ParseResponsePriority("SOMETIMES"); err == nil {
		t.Error("expected error for unknown priority")
	}
	if pt, err := ParsePromptType("PromptType.CONTEXTUAL"); err != nil || pt != PromptContextual {
		t.Errorf("ParsePromptType = %s, %v", pt, err)
	}
	if at, err := ParseAnswerType("QUESTION_HANDOFF"); err != nil || at != AnswerQuestionHandoff {
		t.Errorf("ParseAnswerType = %s, %v", at, err)
	}
}

func TestPriorityJSONUsesNames(t *testing.T) {
	r := ResponseResult{Text: "hi.", Priority: PriorityCanStart, AnswerType: AnswerStatement}
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"priority":"CAN_START"`) {
		t.Errorf("priority not encoded by name: %s", data)
	}
	var back ResponseResult
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Priority != PriorityCanStart || back.AnswerType != AnswerStatement {
		t.Errorf("decoded %+v", back)
	}
}

func TestResponseResultValidate(t *testing.T) {
	group := EntityGroups[GroupFood]
	tests := []struct {
		name    string
		result  ResponseResult
		wantErr error
	}{
		{"empty", *EmptyResponse(), nil},
		{"ok", ResponseResult{Text: "Hello.", Priority: PriorityCanStart}, nil},
		{"text with NO", ResponseResult{Text: "Hello.", Priority: PriorityNo}, ErrTextWithoutPriority},
		{"priority without text", ResponseResult{Priority: PriorityCanStart}, ErrPriorityWithoutText},
		{"expected type and needs prompt", ResponseResult{Text: "Hi.", Priority: PriorityCanStart, NeedsPrompt: true, ExpectedType: group}, ErrExpectedTypeWithPrompt},
		{"handoff without prompt", ResponseResult{Text: "Hi.", Priority: PriorityCanStart, SmoothHandoff: SmoothHandoffLaunchToNeuralChat}, ErrHandoffWithoutPrompt},
		{"handoff ok", ResponseResult{Text: "Hi.", Priority: PriorityCanStart, NeedsPrompt: true, SmoothHandoff: SmoothHandoffLaunchToNeuralChat}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.result.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidResult) {
				t.Errorf("error %v does not wrap ErrInvalidResult", err)
			}
		})
	}
}

func TestPromptResultValidate(t *testing.T) {
	if err := EmptyPrompt().Validate(); err != nil {
		t.Errorf("empty prompt: %v", err)
	}
	if err := (&PromptResult{PromptType: PromptGeneric}).Validate(); !errors.Is(err, ErrPromptTypeWithoutText) {
		t.Errorf("got %v", err)
	}
	if err := (&PromptResult{Text: "What now?", PromptType: PromptNo}).Validate(); !errors.Is(err, ErrInvalidResult) {
		t.Errorf("got %v", err)
	}
}

func TestEntityGroupMatches(t *testing.T) {
	song := NewEntity("Yesterday (song)", []string{"song", "musical work"}, false, 50000)
	genre := NewEntity("Jazz", []string{"musical genre", "musical work"}, false, 90000)
	blocked := NewEntity("Song", []string{"musical work"}, false, 900000)
	avocado := NewEntity("Avocado", []string{"fruit"}, false, 20000)
	food := NewEntity("Food", []string{"food"}, false, 900000)

	tests := []struct {
		group  string
		entity *Entity
		want   bool
	}{
		{GroupMusicalWork, song, true},
		{GroupMusicalWork, genre, false},
		{GroupMusicalWork, blocked, false},
		{GroupFood, avocado, true},
		{GroupFood, food, false},
		{GroupFood, song, false},
		{GroupMusicalWork, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.group+"/"+tt.entity.String(), func(t *testing.T) {
			if got := EntityGroups[tt.group].Matches(tt.entity); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntityTalkableName(t *testing.T) {
	e := NewEntity("Queen (band)", []string{"musical group"}, true, 100000)
	if e.TalkableName != "Queen" {
		t.Errorf("TalkableName = %q", e.TalkableName)
	}
	if !e.Equal(NewEntity("Queen (band)", nil, false, 0)) {
		t.Error("entities with equal names should be equal")
	}
	if e.Equal(nil) {
		t.Error("entity should not equal nil")
	}
	if got := e.Groups(); len(got) != 1 || got[0] != GroupMusician {
		t.Errorf("Groups = %v", got)
	}
}

func TestStateApplyHonoursNoUpdate(t *testing.T) {
	base := State{"a": 1, "b": "x", "c": true}
	cond := ConditionalState{"a": NoUpdate, "b": nil, "d": "new"}
	got := base.Apply(cond)

	if got.GetInt("a") != 1 {
		t.Errorf("a = %v, want 1", got["a"])
	}
	if v, ok := got["b"]; !ok || v != nil {
		t.Errorf("b = %v (present %v), want explicit nil", v, ok)
	}
	if got.GetString("d") != "new" {
		t.Errorf("d = %v", got["d"])
	}
	if base.Has("d") {
		t.Error("Apply must not mutate the receiver")
	}
}

func TestStateJSONRoundTripKeepsSentinel(t *testing.T) {
	cond := ConditionalState{"x": NoUpdate}
	data, err := json.Marshal(cond)
	if err != nil {
		t.Fatal(err)
	}
	var back ConditionalState
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !IsNoUpdate(back["x"]) {
		t.Errorf("decoded %v is not NoUpdate", back["x"])
	}
	if State(nil).Apply(back).Has("x") {
		t.Error("decoded sentinel should not be applied")
	}
}

func TestNoUpdateIsDistinctFromStrings(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want bool
	}{
		{"sentinel", NoUpdate, true},
		{"decoded sentinel", map[string]any{"$no_update": true}, true},
		{"sentinel name as a value", "NO_UPDATE", false},
		{"marker key with other fields", map[string]any{"$no_update": true, "x": 1}, false},
		{"marker key set false", map[string]any{"$no_update": false}, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		if got := IsNoUpdate(tt.v); got != tt.want {
			t.Errorf("%s: IsNoUpdate(%#v) = %v, want %v", tt.name, tt.v, got, tt.want)
		}
	}

	got := State{"mode": "old"}.Apply(ConditionalState{"mode": "NO_UPDATE"})
	if got.GetString("mode") != "NO_UPDATE" {
		t.Errorf("a real NO_UPDATE string must be stored, got %v", got["mode"])
	}
}

func TestStateEntityDecoding(t *testing.T) {
	data, _ := json.Marshal(State{"e": NewEntity("Pizza", []string{"food"}, false, 10)})
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatal(err)
	}
	if e := s.GetEntity("e"); e == nil || e.Name != "Pizza" || !e.HasType("food") {
		t.Errorf("GetEntity = %+v", e)
	}
	if s.GetEntity("missing") != nil {
		t.Error("missing key should decode to nil")
	}
}

func TestNavigationalIntentTopicChange(t *testing.T) {
	tests := []struct {
		name string
		nav  *NavigationalIntent
		want bool
	}{
		{"nil", nil, false},
		{"neg no topic", &NavigationalIntent{NegIntent: true}, true},
		{"neg with topic", &NavigationalIntent{NegIntent: true, NegTopic: "music"}, false},
		{"pos new topic", &NavigationalIntent{PosIntent: true, PosTopic: "food"}, true},
		{"pos current topic", &NavigationalIntent{PosIntent: true, PosTopic: "food", PosTopicIsCurrentTopic: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.nav.IsTopicChange(); got != tt.want {
				t.Errorf("IsTopicChange = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTurnRequestValidate(t *testing.T) {
	if err := (&TurnRequest{Text: "  "}).Validate(); err != ErrEmptyUserText {
		t.Errorf("got %v", err)
	}
	if err := (&TurnRequest{Text: strings.Repeat("a", MaxUserTextLength+1)}).Validate(); err != ErrUserTextTooLong {
		t.Errorf("got %v", err)
	}
	if err := (&TurnRequest{Text: "hello"}).Validate(); err != nil {
		t.Errorf("got %v", err)
	}
}

func TestAPIEnvelopes(t *testing.T) {
	if r := Success("x"); r.Status != "ok" || r.Result != "x" {
		t.Errorf("Success = %+v", r)
	}
	if r := Error("bad"); r.Status != "error" || r.Message != "bad" {
		t.Errorf("Error = %+v", r)
	}
	if r := Ended(nil); r.Status != "ended" {
		t.Errorf("Ended = %+v", r)
	}
}

func TestUserAttributesApply(t *testing.T) {
	u := UserAttributes{UserAttrName: "Abby", "x": 1}
	u.Apply(map[string]any{UserAttrName: nil, UserAttrNameCorrected: true})
	if u.Name() != "" {
		t.Errorf("name should be cleared, got %q", u.Name())
	}
	if u[UserAttrNameCorrected] != true {
		t.Error("name_corrected not set")
	}
}
