package catalog

import (
	"fmt"
	"log"
	"slices"
	"sort"
	"strings"

	"patientsim/models"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
)

// OpenProbe marks the open-ended question that closes every question list.
const OpenProbe = "other symptoms"

// Entry is the static knowledge kept for one diagnosis.
type Entry struct {
	Diagnosis string   `json:"diagnosis"`
	Questions []string `json:"questions"`
	Symptoms  []string `json:"symptoms"`
}

// Catalog maps diagnosis labels to their scripted questions and canonical
// symptoms. Lookups are case-insensitive. A Catalog is built once and read
// from a single interview at a time; Register is meant for setup and tests.
type Catalog struct {
	entries map[string]Entry
}

func New(entries ...Entry) (*Catalog, error) {
	c := &Catalog{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		if err := c.Register(e); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func Default() *Catalog {
	c, err := New(defaultEntries...)
	if err != nil {
		panic(fmt.Sprintf("default catalog is invalid: %v", err))
	}
	return c
}

// Register adds or replaces a diagnosis. The question list must be non-empty
// and end with the open-ended probe.
func (c *Catalog) Register(e Entry) error {
	label := strings.TrimSpace(e.Diagnosis)
	if label == "" {
		return models.MissingField("diagnosis")
	}
	if len(e.Questions) == 0 {
		return &models.ValidationError{Field: "questions", Value: label, Message: fmt.Sprintf("diagnosis %q has no questions", label)}
	}
	last := e.Questions[len(e.Questions)-1]
	if !IsOpenProbe(last) {
		return &models.ValidationError{Field: "questions", Value: last, Message: fmt.Sprintf("last question for %q must ask about other symptoms", label)}
	}

	c.entries[normalize(label)] = Entry{
		Diagnosis: label,
		Questions: slices.Clone(e.Questions),
		Symptoms: lo.Uniq(lo.Compact(lo.Map(e.Symptoms, func(s string, _ int) string {
			return strings.ToLower(strings.TrimSpace(s))
		}))),
	}
	return nil
}

// Symptoms returns the canonical symptom list, or an empty list when the
// diagnosis is unknown.
func (c *Catalog) Symptoms(diagnosis string) []string {
	e, ok := c.lookup(diagnosis)
	if !ok {
		return []string{}
	}
	return slices.Clone(e.Symptoms)
}

// Questions returns the scripted question list, or an empty list when the
// diagnosis is unknown.
func (c *Catalog) Questions(diagnosis string) []string {
	e, ok := c.lookup(diagnosis)
	if !ok {
		return []string{}
	}
	return slices.Clone(e.Questions)
}

func (c *Catalog) Has(diagnosis string) bool {
	_, ok := c.entries[normalize(diagnosis)]
	return ok
}

func (c *Catalog) Entry(diagnosis string) (Entry, bool) {
	e, ok := c.lookup(diagnosis)
	if !ok {
		return Entry{}, false
	}
	e.Questions = slices.Clone(e.Questions)
	e.Symptoms = slices.Clone(e.Symptoms)
	return e, true
}

// Diagnoses lists the registered labels in alphabetical order.
func (c *Catalog) Diagnoses() []string {
	labels := lo.Map(lo.Values(c.entries), func(e Entry, _ int) string {
		return e.Diagnosis
	})
	sort.Strings(labels)
	return labels
}

// Suggest ranks registered labels that look like a misspelling of diagnosis.
func (c *Catalog) Suggest(diagnosis string) []string {
	term := normalize(diagnosis)
	if term == "" {
		return nil
	}
	keys := lo.Keys(c.entries)
	sort.Strings(keys)

	ranks := fuzzy.RankFindFold(term, keys)
	sort.Sort(ranks)
	suggestions := lo.Map(ranks, func(r fuzzy.Rank, _ int) string {
		return c.entries[r.Target].Diagnosis
	})
	if len(suggestions) > 0 {
		return suggestions
	}

	// Typos that drop or swap letters do not survive the ordered-character
	// match above, so fall back to edit distance.
	near := lo.Filter(keys, func(k string, _ int) bool {
		return fuzzy.LevenshteinDistance(term, k) <= 3
	})
	return lo.Map(near, func(k string, _ int) string {
		return c.entries[k].Diagnosis
	})
}

func (c *Catalog) lookup(diagnosis string) (Entry, bool) {
	e, ok := c.entries[normalize(diagnosis)]
	if !ok {
		suggestions := c.Suggest(diagnosis)
		if len(suggestions) > 0 {
			log.Printf("[WARN] Unknown diagnosis %q, did you mean %v?", diagnosis, suggestions)
		} else {
			log.Printf("[WARN] Unknown diagnosis %q", diagnosis)
		}
	}
	return e, ok
}

func IsOpenProbe(question string) bool {
	return strings.Contains(strings.ToLower(question), OpenProbe)
}

func normalize(diagnosis string) string {
	return strings.ToLower(strings.TrimSpace(diagnosis))
}
