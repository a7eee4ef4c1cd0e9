package regex

import "strings"

// Utility productions shared by templates. The lazy forms stop as soon as the
// rest of the pattern can match.
const (
	// OptionalText matches any text, including none.
	OptionalText = `.*?`
	// NonEmptyText matches any text of at least one character.
	NonEmptyText = `.+?`
	// OptionalTextPre matches text ending in a space, or nothing.
	OptionalTextPre = `(.*? |)`
	// OptionalTextPost matches text starting with a space, or nothing.
	OptionalTextPost = `(| .*?)`
	// OptionalTextMid matches a single space, or text surrounded by spaces.
	OptionalTextMid = ` (.*? |)`

	OptionalTextGreedy     = `.*`
	NonEmptyTextGreedy     = `.+`
	OptionalTextPreGreedy  = `(.* |)`
	OptionalTextPostGreedy = `( .*|)`
	OptionalTextMidGreedy  = ` (.* |)`
)

// OneOf yields a non-capturing alternation of the given patterns.
func OneOf(patterns []string) string {
	return "(?:" + strings.Join(patterns, "|") + ")"
}

// OneOrMoreSpaceSep matches one or more items from the list separated by
// single spaces.
func OneOrMoreSpaceSep(patterns []string) string {
	alt := OneOf(patterns)
	return "(?:" + alt + ")(?: " + alt + ")*"
}

// ZeroOrMoreSpaceSep matches zero or more items from the list separated by
// single spaces.
func ZeroOrMoreSpaceSep(patterns []string) string {
	alt := OneOf(patterns)
	return "(?:" + alt + ")?(?: " + alt + ")*"
}

// Concat joins lists, for building slots from several word lists.
func Concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

// Without returns list minus the given items.
func Without(list []string, drop ...string) []string {
	out := make([]string, 0, len(list))
	for _, x := range list {
		skip := false
		for _, d := range drop {
			if x == d {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, x)
		}
	}
	return out
}

// ContainsPhrase reports whether any phrase occurs in text as whole words.
func ContainsPhrase(text string, phrases ...string) bool {
	padded := " " + text + " "
	for _, p := range phrases {
		if p != "" && strings.Contains(padded, " "+p+" ") {
			return true
		}
	}
	return false
}
