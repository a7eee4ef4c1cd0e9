package nlu

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/coregx/ahocorasick"
	"github.com/orsinium-labs/stopwords"

	"github.com/BTreeMap/DialogCore/internal/kg"
	"github.com/BTreeMap/DialogCore/internal/models"
)

// DefaultLinkThreshold is the confidence a span needs to be high precision.
const DefaultLinkThreshold = 0.65

// EntityLinker finds mentions of catalog entities in normalized text.
type EntityLinker struct {
	ac        *ahocorasick.Automaton
	forms     []string
	entries   [][]kg.Entry
	threshold float64
	stop      *stopwords.Stopwords
}

// NewEntityLinker indexes the graph's catalog by surface form. Surface
// forms that are stopwords are skipped.
func NewEntityLinker(ctx context.Context, g kg.Graph) (*EntityLinker, error) {
	catalog, err := g.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("entity linker: load catalog: %w", err)
	}
	l := &EntityLinker{threshold: DefaultLinkThreshold, stop: stopwords.MustGet("en")}
	index := map[string]int{}
	for _, e := range catalog {
		for _, form := range kg.SurfaceForms(e) {
			if l.stop.Contains(form) {
				continue
			}
			if i, ok := index[form]; ok {
				l.entries[i] = append(l.entries[i], e)
				continue
			}
			index[form] = len(l.forms)
			l.forms = append(l.forms, form)
			l.entries = append(l.entries, []kg.Entry{e})
		}
	}
	if len(l.forms) == 0 {
		return l, nil
	}
	l.ac, err = ahocorasick.NewBuilder().
		AddStrings(l.forms).
		SetMatchKind(ahocorasick.LeftmostLongest).
		SetPrefilter(true).
		Build()
	if err != nil {
		return nil, fmt.Errorf("entity linker: build automaton: %w", err)
	}
	return l, nil
}

func (l *EntityLinker) Name() string { return "entity_linker" }

func (l *EntityLinker) Annotate(_ context.Context, req *Request) (Result, error) {
	res := l.Link(req.Normalized)
	return func(a *models.Annotations) { a.EntityLinker = res }, nil
}

// Confidence scores a span by its word count and the entity's popularity.
func Confidence(span string, pageview int) float64 {
	words := min(len(strings.Fields(span)), 3)
	c := 0.3 + 0.2*float64(words) + 0.05*math.Log10(float64(pageview)+1)
	return math.Min(c, 1)
}

type spanCandidate struct {
	models.LinkedSpan
	start, end int
}

// Link returns candidates in three bands. Overlapping spans keep the
// longest, then most confident; a surface shared by several entities keeps
// the most popular.
func (l *EntityLinker) Link(normalized string) *models.EntityLinkerResult {
	res := &models.EntityLinkerResult{}
	if l == nil || l.ac == nil || normalized == "" {
		return res
	}
	var cands []spanCandidate
	for _, hit := range l.ac.FindAllOverlapping([]byte(normalized)) {
		if !wordBoundary(normalized, hit.Start, hit.End) {
			continue
		}
		span := normalized[hit.Start:hit.End]
		entries := append([]kg.Entry(nil), l.entries[hit.PatternID]...)
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Entity.Pageview > entries[j].Entity.Pageview
		})
		for i, e := range entries {
			c := spanCandidate{
				LinkedSpan: models.LinkedSpan{Span: span, Entity: e.Entity, Confidence: Confidence(span, e.Entity.Pageview)},
				start:      hit.Start,
				end:        hit.End,
			}
			if i > 0 {
				res.ConflictRemoved = append(res.ConflictRemoved, c.LinkedSpan)
				continue
			}
			cands = append(cands, c)
		}
	}

	sort.SliceStable(cands, func(i, j int) bool {
		li, lj := cands[i].end-cands[i].start, cands[j].end-cands[j].start
		if li != lj {
			return li > lj
		}
		return cands[i].Confidence > cands[j].Confidence
	})
	var kept []spanCandidate
	for _, c := range cands {
		if overlapsAny(c, kept) {
			res.ConflictRemoved = append(res.ConflictRemoved, c.LinkedSpan)
			continue
		}
		if c.Confidence < l.threshold {
			res.ThresholdRemoved = append(res.ThresholdRemoved, c.LinkedSpan)
			continue
		}
		kept = append(kept, c)
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].start < kept[j].start })
	for _, c := range kept {
		res.HighPrec = append(res.HighPrec, c.LinkedSpan)
	}
	return res
}

func overlapsAny(c spanCandidate, kept []spanCandidate) bool {
	for _, k := range kept {
		if c.start < k.end && k.start < c.end {
			return true
		}
	}
	return false
}
