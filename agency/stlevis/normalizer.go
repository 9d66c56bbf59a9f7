package stlevis

import (
	"github.com/jamespfennell/gtfsclean/agency"
	"github.com/jamespfennell/gtfsclean/rules"
)

// Normalizer cleans text fields with a fixed set of rule tables.
//
// A Normalizer is immutable and safe for concurrent use.
type Normalizer struct {
	rules Rules
}

func NewNormalizer(r Rules) *Normalizer {
	return &Normalizer{rules: r}
}

// Normalize applies the rule table of the field kind to s.
//
// The empty string and text of an unknown field kind are returned unchanged.
func (n *Normalizer) Normalize(kind agency.FieldKind, s string) string {
	if s == "" {
		return ""
	}
	t, ok := n.rules.Table(kind)
	if !ok {
		return s
	}
	return t.Apply(s)
}

// Trace is like Normalize but also returns the effect of every rule.
func (n *Normalizer) Trace(kind agency.FieldKind, s string) (string, []rules.Step) {
	if s == "" {
		return "", nil
	}
	t, ok := n.rules.Table(kind)
	if !ok {
		return s, nil
	}
	return t.Trace(s)
}

func (n *Normalizer) Rules() Rules {
	return n.rules
}
