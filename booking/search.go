package booking

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// MatchField selects which field attribute a search query is matched against.
type MatchField int

const (
	MatchName MatchField = iota
	MatchCity
	MatchSport
)

// SearchPolicy is a named set of attributes a free-text query may match.
type SearchPolicy struct {
	Name   string
	Fields []MatchField
}

var (
	// HomeSearch matches name or city.
	HomeSearch = SearchPolicy{Name: "home", Fields: []MatchField{MatchName, MatchCity}}
	// ExploreSearch also matches the sport label.
	ExploreSearch = SearchPolicy{Name: "explore", Fields: []MatchField{MatchName, MatchCity, MatchSport}}
)

func PolicyByName(name string) (SearchPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", HomeSearch.Name:
		return HomeSearch, nil
	case ExploreSearch.Name:
		return ExploreSearch, nil
	}
	return SearchPolicy{}, fmt.Errorf("unknown search policy %q (expected home or explore)", name)
}

// Filter returns the fields matching query under policy and the sport
// selector, in catalog order. The input slice is not modified.
func Filter(fields []Field, query, sport string, policy SearchPolicy) []Field {
	needle := cases.Fold().String(query)
	out := make([]Field, 0, len(fields))
	for _, field := range fields {
		if sport != "" && sport != AllSports && field.Sport != sport {
			continue
		}
		if !policy.matches(field, needle) {
			continue
		}
		out = append(out, field)
	}
	return out
}

func (p SearchPolicy) matches(field Field, needle string) bool {
	if needle == "" {
		return true
	}
	fold := cases.Fold()
	for _, m := range p.Fields {
		var value string
		switch m {
		case MatchName:
			value = field.Name
		case MatchCity:
			value = field.Location.City
		case MatchSport:
			value = field.Sport
		}
		if strings.Contains(fold.String(value), needle) {
			return true
		}
	}
	return false
}
