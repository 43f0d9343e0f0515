// Package registry holds the curated roster of pre-vetted elite instructors.
// A registry match lets Stage 2 pass a candidate without transcript evidence,
// so lookups return a confidence score rather than a bare boolean: the bypass
// decision has to be auditable.
package registry

import (
	"strings"
	"unicode"
)

// Instructor is one roster entry. Aliases cover channel names and common
// spellings that differ from the instructor's own name.
type Instructor struct {
	Name    string
	Academy string
	Aliases []string
}

// Match is the outcome of a registry lookup.
type Match struct {
	Name       string
	Academy    string
	Confidence float64 // 1.0 exact, 0.9 all-token, 0.8 partial
}

// eliteThreshold is the minimum confidence treated as a registry hit.
const eliteThreshold = 0.8

// defaultRoster is the curated allow-list. Kept small on purpose: every name
// here can bypass transcript verification.
var defaultRoster = []Instructor{
	{Name: "John Danaher", Academy: "New Wave Jiu Jitsu", Aliases: []string{"Danaher"}},
	{Name: "Gordon Ryan", Academy: "New Wave Jiu Jitsu"},
	{Name: "Lachlan Giles", Academy: "Absolute MMA", Aliases: []string{"Absolute MMA St Kilda"}},
	{Name: "Craig Jones", Academy: "B-Team", Aliases: []string{"B-Team Jiu Jitsu"}},
	{Name: "Bernardo Faria", Academy: "BJJ Fanatics", Aliases: []string{"BJJ Fanatics"}},
	{Name: "Marcelo Garcia", Academy: "Marcelo Garcia Academy", Aliases: []string{"MGInAction"}},
	{Name: "Keenan Cornelius", Academy: "Legion AJJ", Aliases: []string{"Keenan Online"}},
	{Name: "Andre Galvao", Academy: "Atos", Aliases: []string{"Atos Jiu Jitsu"}},
	{Name: "Mikey Musumeci", Academy: "Evolve MMA"},
	{Name: "Roger Gracie", Academy: "Roger Gracie Academy"},
	{Name: "Rafael Mendes", Academy: "Art of Jiu Jitsu", Aliases: []string{"AOJ", "Art of Jiu Jitsu Academy"}},
	{Name: "Ryan Hall", Academy: "Fifty/50", Aliases: []string{"Fifty50"}},
	{Name: "JT Torres", Academy: "Essential Jiu-Jitsu"},
	{Name: "Eddie Bravo", Academy: "10th Planet", Aliases: []string{"10th Planet Jiu Jitsu"}},
	{Name: "Marcus Buchecha", Academy: "American Top Team", Aliases: []string{"Buchecha"}},
}

type entry struct {
	instructor Instructor
	normalized string
	tokens     []string
}

// EliteRegistry is an indexed lookup over the roster. Safe for concurrent
// reads; the roster is fixed after construction.
type EliteRegistry struct {
	exact   map[string]*entry
	entries []*entry
}

// New builds a registry from the default roster.
func New() *EliteRegistry {
	return NewWithRoster(defaultRoster)
}

// NewWithRoster builds a registry from an explicit roster. Tests use this to
// control which channels count as elite.
func NewWithRoster(roster []Instructor) *EliteRegistry {
	r := &EliteRegistry{exact: make(map[string]*entry)}
	for _, inst := range roster {
		names := append([]string{inst.Name}, inst.Aliases...)
		for _, name := range names {
			norm := normalize(name)
			if norm == "" {
				continue
			}
			e := &entry{instructor: inst, normalized: norm, tokens: strings.Fields(norm)}
			r.exact[norm] = e
			r.entries = append(r.entries, e)
		}
	}
	return r
}

// Lookup resolves a channel title or instructor name against the roster.
// The boolean reports whether the match clears the bypass threshold.
func (r *EliteRegistry) Lookup(channelOrName string) (Match, bool) {
	norm := normalize(channelOrName)
	if norm == "" {
		return Match{}, false
	}

	if e, ok := r.exact[norm]; ok {
		return match(e, 1.0), true
	}

	queryTokens := strings.Fields(norm)
	for _, e := range r.entries {
		if containsAllTokens(queryTokens, e.tokens) {
			return match(e, 0.9), true
		}
	}

	// Partial tier: the query is a multi-token prefix of a roster name
	// ("Absolute MMA" for "Absolute MMA St Kilda"), on token boundaries.
	// A bare generic word ("Team", "MMA", "Academy") must never clear the
	// bypass threshold.
	if len(queryTokens) >= 2 {
		for _, e := range r.entries {
			if strings.HasPrefix(e.normalized+" ", norm+" ") {
				return match(e, 0.8), true
			}
		}
	}

	return Match{}, false
}

// IsElite is the boolean convenience used by stage gates.
func (r *EliteRegistry) IsElite(channelOrName string) bool {
	_, ok := r.Lookup(channelOrName)
	return ok
}

func match(e *entry, confidence float64) Match {
	return Match{
		Name:       e.instructor.Name,
		Academy:    e.instructor.Academy,
		Confidence: confidence,
	}
}

func containsAllTokens(query, want []string) bool {
	if len(want) == 0 {
		return false
	}
	for _, w := range want {
		found := false
		for _, q := range query {
			if q == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// normalize lowercases and strips everything but letters, digits and spaces,
// collapsing runs of whitespace.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '/' || r == '.':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
