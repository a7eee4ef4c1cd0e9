package models

import (
	"encoding/json"
	"time"
)

// UserAttributes are per-conversation facts about the user, mutated only at
// turn commit.
type UserAttributes map[string]any

// Well-known user attribute keys.
const (
	UserAttrName             = "name"
	UserAttrTimezone         = "timezone"
	UserAttrNameCorrected    = "name_corrected"
	UserAttrDiscussedAliens  = "discussed_aliens"
	UserAttrRecognizedByName = "recognized_by_name"
	UserAttrOffenceCounts    = "offense_type_counts"
	UserAttrOffenceFollowUp  = "offense_followup"
)

// Clone returns a shallow copy.
func (u UserAttributes) Clone() UserAttributes {
	out := make(UserAttributes, len(u))
	for k, v := range u {
		out[k] = v
	}
	return out
}

// Name returns the stored user name, or "".
func (u UserAttributes) Name() string {
	s, _ := u[UserAttrName].(string)
	return s
}

// Apply merges updates in place; a nil value deletes the key.
func (u UserAttributes) Apply(updates map[string]any) {
	for k, v := range updates {
		if v == nil {
			delete(u, k)
			continue
		}
		u[k] = v
	}
}

// TurnInput is the per-turn input of the dialog core.
type TurnInput struct {
	ConversationID string                     `json:"conversation_id"`
	UserText       string                     `json:"user_text"`
	TurnNum        int                        `json:"turn_num"`
	UserAttributes UserAttributes             `json:"user_attributes,omitempty"`
	LastActiveRG   string                     `json:"last_active_rg,omitempty"`
	PersistedState map[string]json.RawMessage `json:"persisted_state,omitempty"`
	CurrentEntity  *Entity                    `json:"current_entity,omitempty"`
}

// TurnOutput is the per-turn output of the dialog core.
type TurnOutput struct {
	ResponseText     string                     `json:"response_text"`
	NewActiveRG      string                     `json:"new_active_rg"`
	PromptRG         string                     `json:"prompt_rg,omitempty"`
	NewState         map[string]json.RawMessage `json:"new_state,omitempty"`
	NewCurrentEntity *Entity                    `json:"new_current_entity,omitempty"`
	ShouldEndSession bool                       `json:"should_end_session,omitempty"`
}

// Conversation is the persisted record of one conversation between turns.
type Conversation struct {
	ID             string                     `json:"id"`
	TurnNum        int                        `json:"turn_num"`
	LastActiveRG   string                     `json:"last_active_rg,omitempty"`
	LastAnswerType AnswerType                 `json:"last_answer_type"`
	LastBotText    string                     `json:"last_bot_text,omitempty"`
	CurrentEntity  *Entity                    `json:"current_entity,omitempty"`
	UserAttributes UserAttributes             `json:"user_attributes,omitempty"`
	RGStates       map[string]json.RawMessage `json:"rg_states,omitempty"`
	Tracker        json.RawMessage            `json:"tracker,omitempty"`
	Ended          bool                       `json:"ended,omitempty"`
	CreatedAt      time.Time                  `json:"created_at"`
	UpdatedAt      time.Time                  `json:"updated_at"`
}

// TurnRecord is one entry of a conversation's turn log.
type TurnRecord struct {
	ConversationID string    `json:"conversation_id"`
	TurnNum        int       `json:"turn_num"`
	UserText       string    `json:"user_text"`
	BotText        string    `json:"bot_text"`
	ResponseRG     string    `json:"response_rg"`
	PromptRG       string    `json:"prompt_rg,omitempty"`
	EntityName     string    `json:"entity_name,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
