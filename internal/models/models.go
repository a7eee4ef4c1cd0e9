// Package models defines the core data structures for DialogCore.
//
// It includes the priority system, entities and entity groups, the per-turn
// annotation bundle, RG results and state, and the HTTP API envelope, which
// are shared across modules.
package models

import (
	"errors"
	"strings"
)

// MaxUserTextLength bounds one user utterance in bytes.
const MaxUserTextLength = 2048

var (
	ErrEmptyUserText   = errors.New("text cannot be empty")
	ErrUserTextTooLong = errors.New("text exceeds maximum length")
)

// TurnRequest is the body of a turn submitted over the API.
type TurnRequest struct {
	Text string `json:"text"`
}

// Validate performs validation on a TurnRequest.
func (r *TurnRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return ErrEmptyUserText
	}
	if len(r.Text) > MaxUserTextLength {
		return ErrUserTextTooLong
	}
	return nil
}

// TurnResponse is the API view of a completed turn.
type TurnResponse struct {
	ConversationID string  `json:"conversation_id"`
	TurnNum        int     `json:"turn_num"`
	Text           string  `json:"text"`
	ResponseRG     string  `json:"response_rg"`
	PromptRG       string  `json:"prompt_rg,omitempty"`
	ActiveRG       string  `json:"active_rg"`
	CurrentEntity  *Entity `json:"current_entity,omitempty"`
	Ended          bool    `json:"ended,omitempty"`
	// Degraded marks a turn answered with the generic fallback after a failure.
	Degraded bool `json:"degraded,omitempty"`
}

// APIStatus represents the status of an API response.
type APIStatus string

const (
	// APIStatusOK indicates an API request completed successfully.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates an API request failed with an error.
	APIStatusError APIStatus = "error"
	// APIStatusEnded indicates the conversation has been closed by the user.
	APIStatusEnded APIStatus = "ended"
)

// APIResponse is the JSON envelope every endpoint replies with.
type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Result  any    `json:"result,omitempty"`
}

func envelope(status APIStatus, message string, result any) APIResponse {
	return APIResponse{Status: string(status), Message: message, Result: result}
}

// Success wraps result in an "ok" envelope.
func Success(result any) APIResponse { return envelope(APIStatusOK, "", result) }

// SuccessWithMessage is Success with a human readable note.
func SuccessWithMessage(message string, result any) APIResponse {
	return envelope(APIStatusOK, message, result)
}

// Error reports a failed request.
func Error(message string) APIResponse { return envelope(APIStatusError, message, nil) }

// Ended wraps the turn that closed the conversation.
func Ended(result any) APIResponse { return envelope(APIStatusEnded, "", result) }
