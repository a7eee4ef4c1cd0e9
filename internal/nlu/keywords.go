package nlu

import (
	"fmt"
	"strings"
	"sync"

	"github.com/coregx/ahocorasick"
)

// KeywordMatch is a whole-word occurrence of a phrase in normalized text.
type KeywordMatch struct {
	Phrase string
	Start  int
	End    int
}

// KeywordMatcher finds any of a fixed set of phrases in one pass.
type KeywordMatcher struct {
	ac      *ahocorasick.Automaton
	phrases []string
}

// NewKeywordMatcher builds an automaton over the lowercased phrases.
func NewKeywordMatcher(phrases []string) (*KeywordMatcher, error) {
	seen := make(map[string]bool, len(phrases))
	var patterns []string
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		patterns = append(patterns, p)
	}
	if len(patterns) == 0 {
		return &KeywordMatcher{}, nil
	}
	ac, err := ahocorasick.NewBuilder().
		AddStrings(patterns).
		SetMatchKind(ahocorasick.LeftmostLongest).
		SetPrefilter(true).
		Build()
	if err != nil {
		return nil, fmt.Errorf("keyword matcher: %w", err)
	}
	return &KeywordMatcher{ac: ac, phrases: patterns}, nil
}

// MustKeywordMatcher panics on build failure. For package-level word lists.
func MustKeywordMatcher(phrases []string) *KeywordMatcher {
	m, err := NewKeywordMatcher(phrases)
	if err != nil {
		panic(err)
	}
	return m
}

// Find returns every whole-word match, overlapping ones included, in text
// order.
func (m *KeywordMatcher) Find(text string) []KeywordMatch {
	if m == nil || m.ac == nil || text == "" {
		return nil
	}
	var out []KeywordMatch
	for _, hit := range m.ac.FindAllOverlapping([]byte(text)) {
		if !wordBoundary(text, hit.Start, hit.End) {
			continue
		}
		out = append(out, KeywordMatch{Phrase: m.phrases[hit.PatternID], Start: hit.Start, End: hit.End})
	}
	return out
}

// Contains reports whether any phrase occurs as whole words.
func (m *KeywordMatcher) Contains(text string) bool {
	return len(m.Find(text)) > 0
}

func wordBoundary(text string, start, end int) bool {
	if start < 0 || end > len(text) || start >= end {
		return false
	}
	if start > 0 && text[start-1] != ' ' {
		return false
	}
	return end == len(text) || text[end] == ' '
}

var (
	musicKeywords = []string{
		"music", "song", "songs", "singer", "singers", "band", "bands", "album", "albums",
		"concert", "concerts", "guitar", "piano", "drums", "sing", "singing", "rap",
		"hip hop", "playlist", "spotify", "musician", "musicians", "lyrics",
	}
	foodKeywords = []string{
		"food", "foods", "eat", "eating", "cook", "cooking", "dinner", "lunch", "breakfast",
		"recipe", "recipes", "restaurant", "restaurants", "hungry", "snack", "snacks",
		"dessert", "cuisine", "bake", "baking",
	}
	offensivePhrases = []string{
		"fuck", "fucking", "fuck you", "shit", "bitch", "asshole", "bastard", "dick",
		"cunt", "slut", "whore", "retard", "kill yourself", "go die",
	}
)

var (
	MusicKeywords     = sync.OnceValue(func() *KeywordMatcher { return MustKeywordMatcher(musicKeywords) })
	FoodKeywords      = sync.OnceValue(func() *KeywordMatcher { return MustKeywordMatcher(foodKeywords) })
	OffensiveKeywords = sync.OnceValue(func() *KeywordMatcher { return MustKeywordMatcher(offensivePhrases) })
)

// ContainsOffensive reports whether normalized text contains an offensive
// phrase. The arbiter also runs it over candidate bot output.
func ContainsOffensive(normalized string) bool {
	return OffensiveKeywords().Contains(normalized)
}
