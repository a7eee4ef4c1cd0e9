package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConversationID(t *testing.T) {
	seen := map[string]bool{}
	for range 100 {
		id := NewConversationID()
		assert.True(t, IsConversationID(id), id)
		assert.Len(t, id, len(ConversationIDPrefix)+32)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestIsConversationID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"c_0123456789abcdef0123456789abcdef", true},
		{"0123456789abcdef0123456789abcdef", false},
		{"c_0123", false},
		{"c_zz23456789abcdef0123456789abcdef", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsConversationID(tt.id), tt.id)
	}
}

func TestParseBoolEnv(t *testing.T) {
	tests := []struct {
		name  string
		value string
		def   bool
		want  bool
	}{
		{"unset uses default", "", true, true},
		{"yes", "YES", false, true},
		{"off", "off", true, false},
		{"invalid uses default", "maybe", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DIALOGCORE_TEST_BOOL", tt.value)
			assert.Equal(t, tt.want, ParseBoolEnv("DIALOGCORE_TEST_BOOL", tt.def))
		})
	}
}

func TestParseIntAndDurationEnv(t *testing.T) {
	t.Setenv("DIALOGCORE_TEST_INT", "42")
	assert.Equal(t, 42, ParseIntEnv("DIALOGCORE_TEST_INT", 7))
	t.Setenv("DIALOGCORE_TEST_INT", "forty")
	assert.Equal(t, 7, ParseIntEnv("DIALOGCORE_TEST_INT", 7))

	t.Setenv("DIALOGCORE_TEST_DUR", "250ms")
	assert.Equal(t, 250*time.Millisecond, ParseDurationEnv("DIALOGCORE_TEST_DUR", time.Second))
	t.Setenv("DIALOGCORE_TEST_DUR", "-1s")
	assert.Equal(t, time.Second, ParseDurationEnv("DIALOGCORE_TEST_DUR", time.Second))

	t.Setenv("DIALOGCORE_TEST_STR", "  value ")
	assert.Equal(t, "value", GetEnv("DIALOGCORE_TEST_STR", "x"))
	t.Setenv("DIALOGCORE_TEST_STR", "")
	assert.Equal(t, "x", GetEnv("DIALOGCORE_TEST_STR", "x"))
}
