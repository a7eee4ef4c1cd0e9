// Package util provides small helpers shared by the DialogCore commands and
// services.
package util

import (
	"strings"

	"github.com/google/uuid"
)

// ConversationIDPrefix marks conversation IDs in logs and URLs.
const ConversationIDPrefix = "c_"

// NewConversationID returns a fresh random conversation ID.
func NewConversationID() string {
	return ConversationIDPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// IsConversationID reports whether id has the shape NewConversationID produces.
func IsConversationID(id string) bool {
	hex, ok := strings.CutPrefix(id, ConversationIDPrefix)
	if !ok || len(hex) != 32 {
		return false
	}
	_, err := uuid.Parse(hex)
	return err == nil
}
