package models

import (
	"regexp"
	"slices"
	"sort"
	"strings"
)

// Entity is a handle on a knowledge-graph node. Two entities are equal when
// their canonical names are equal.
type Entity struct {
	Name         string   `json:"name"`
	TalkableName string   `json:"talkable_name"`
	Types        []string `json:"types,omitempty"`
	Plural       bool     `json:"plural,omitempty"`
	Pageview     int      `json:"pageview,omitempty"`
}

var parentheticalRe = regexp.MustCompile(`\s*\([^)]*\)\s*$`)

// NewEntity builds an entity, deriving the talkable name by stripping a
// trailing parenthetical disambiguation ("Queen (band)" -> "Queen").
func NewEntity(name string, types []string, plural bool, pageview int) *Entity {
	return &Entity{
		Name:         name,
		TalkableName: TalkableName(name),
		Types:        slices.Clone(types),
		Plural:       plural,
		Pageview:     pageview,
	}
}

// TalkableName strips a trailing parenthetical from a canonical name.
func TalkableName(name string) string {
	return strings.TrimSpace(parentheticalRe.ReplaceAllString(name, ""))
}

// Equal reports whether e and other refer to the same node. Two nil entities
// are equal.
func (e *Entity) Equal(other *Entity) bool {
	if e == nil || other == nil {
		return e == nil && other == nil
	}
	return e.Name == other.Name
}

// IsPlural is exposed for expressions in dialog definitions.
func (e *Entity) IsPlural() bool { return e != nil && e.Plural }

// Talkable returns the spoken form of the entity, or "" for nil.
func (e *Entity) Talkable() string {
	if e == nil {
		return ""
	}
	if e.TalkableName != "" {
		return e.TalkableName
	}
	return TalkableName(e.Name)
}

// HasType reports whether the entity carries the given knowledge-graph type.
func (e *Entity) HasType(t string) bool {
	if e == nil {
		return false
	}
	for _, et := range e.Types {
		if strings.EqualFold(et, t) {
			return true
		}
	}
	return false
}

// InGroup reports membership in the named group of the default catalog.
func (e *Entity) InGroup(name string) bool {
	g, ok := EntityGroups[name]
	return ok && g.Matches(e)
}

// Groups lists every catalog group the entity belongs to, sorted by name.
func (e *Entity) Groups() []string {
	var out []string
	for name, g := range EntityGroups {
		if g.Matches(e) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func (e *Entity) String() string {
	if e == nil {
		return "<nil>"
	}
	return e.Name
}

// EntityGroup describes a category of entities by their knowledge-graph types
// and explicit name lists.
type EntityGroup struct {
	Name      string   `json:"name"`
	Required  []string `json:"required,omitempty"`
	Blocked   []string `json:"blocked,omitempty"`
	AllowList []string `json:"allow_list,omitempty"`
	BlockList []string `json:"block_list,omitempty"`
}

// Matches reports whether e belongs to the group: its types intersect the
// required set, do not intersect the blocked set, and its name is either
// allow-listed or not block-listed.
func (g *EntityGroup) Matches(e *Entity) bool {
	if g == nil || e == nil {
		return false
	}
	if !intersects(e.Types, g.Required) || intersects(e.Types, g.Blocked) {
		return false
	}
	if containsFold(g.AllowList, e.Name) {
		return true
	}
	return !containsFold(g.BlockList, e.Name)
}

func intersects(a, b []string) bool {
	for _, x := range a {
		if containsFold(b, x) {
			return true
		}
	}
	return false
}

func containsFold(list []string, s string) bool {
	for _, x := range list {
		if strings.EqualFold(x, s) {
			return true
		}
	}
	return false
}

// Entity group names used across RGs.
const (
	GroupMusician          = "musician"
	GroupMusicalWork       = "musical_work"
	GroupMusicalInstrument = "musical_instrument"
	GroupMusicalGenre      = "musical_genre"
	GroupFood              = "food"
	GroupPersonRelated     = "person_related"
	GroupFilm              = "film"
	GroupBook              = "book"
	GroupSport             = "sport"
	GroupAnimal            = "animal"
)

// EntityGroups is the catalog of groups RGs use for expected types and
// activation checks.
var EntityGroups = map[string]*EntityGroup{
	GroupMusician: {
		Name:     GroupMusician,
		Required: []string{"musician", "singer", "musical group", "rapper", "composer", "band"},
	},
	GroupMusicalWork: {
		Name:      GroupMusicalWork,
		Required:  []string{"musical work", "song", "album", "single"},
		Blocked:   []string{"genre", "musical genre"},
		BlockList: []string{"Song", "Album"},
	},
	GroupMusicalInstrument: {
		Name:      GroupMusicalInstrument,
		Required:  []string{"musical instrument"},
		BlockList: []string{"Musical instrument"},
	},
	GroupMusicalGenre: {
		Name:     GroupMusicalGenre,
		Required: []string{"musical genre", "genre"},
	},
	GroupFood: {
		Name:      GroupFood,
		Required:  []string{"food", "fruit", "dish", "vegetable", "dessert", "beverage"},
		AllowList: []string{"Avocado"},
		BlockList: []string{"Food"},
	},
	GroupPersonRelated: {
		Name:     GroupPersonRelated,
		Required: []string{"human", "person", "musician", "singer", "actor", "athlete", "writer"},
	},
	GroupFilm: {
		Name:     GroupFilm,
		Required: []string{"film", "movie", "film series"},
	},
	GroupBook: {
		Name:     GroupBook,
		Required: []string{"book", "novel", "literary work"},
	},
	GroupSport: {
		Name:      GroupSport,
		Required:  []string{"sport", "team sport"},
		BlockList: []string{"Sport"},
	},
	GroupAnimal: {
		Name:     GroupAnimal,
		Required: []string{"animal", "mammal", "bird", "fish", "reptile", "pet"},
	},
}

// LookupEntityGroup returns the catalog group with the given name.
func LookupEntityGroup(name string) (*EntityGroup, bool) {
	g, ok := EntityGroups[name]
	return g, ok
}
