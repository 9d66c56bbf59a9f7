// Package rules contains ordered rewrite tables used to canonicalize free-text transit metadata.
//
// A Table is an immutable, ordered list of Rules. Applying a table runs every rule exactly once,
// in declared order, each rule consuming the output of the previous one. There is no fixed-point
// iteration: a rule that could match again after a later rule's edit does not re-fire.
//
// Most rules are built with Word, which follows the boundary-capture convention: the pattern
// captures a left boundary, the target and a right boundary as the named groups "left", "target"
// and "right", and the template reproduces the boundaries verbatim so that adjacent punctuation
// and neighbouring words are never corrupted.
package rules

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// Left expands to the captured left boundary in a template.
	Left = "${left}"
	// Right expands to the captured right boundary in a template.
	Right = "${right}"
)

// nonWord matches a single character that is not a letter, digit or underscore in any script.
//
// Regexp's \W is ASCII only, which would make accented letters like é act as word boundaries.
const nonWord = `[^\p{L}\p{N}_]`

// Category is the semantic category of a rule.
type Category int32

const (
	Category_Abbreviation Category = 0
	Category_PlaceName    Category = 1
	Category_Punctuation  Category = 2
	Category_SuffixStrip  Category = 3
	Category_Cleanup      Category = 4
)

func (c Category) String() string {
	switch c {
	case Category_Abbreviation:
		return "ABBREVIATION"
	case Category_PlaceName:
		return "PLACE_NAME"
	case Category_Punctuation:
		return "PUNCTUATION"
	case Category_SuffixStrip:
		return "SUFFIX_STRIP"
	case Category_Cleanup:
		return "CLEANUP"
	default:
		return "UNKNOWN"
	}
}

// Rule is a single rewrite step.
//
// A rule either rewrites every non-overlapping match of Pattern using Template, or, for steps that
// cannot be expressed as a pattern (case mapping, for example), calls Func.
type Rule struct {
	Name     string
	Category Category
	Pattern  *regexp.Regexp
	Template string
	Func     func(string) string
}

// Word returns a case-insensitive pattern matching target as a standalone token.
//
// The target is a regexp fragment. Alternatives are allowed: Word("centre|center").
func Word(target string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?P<left>^|` + nonWord + `)(?P<target>` + target + `)(?P<right>` + nonWord + `|$)`)
}

// Suffix returns a case-insensitive pattern matching the literal s at the end of the input.
// Trailing whitespace is part of the match.
//
// The patterns in keep may follow s, in any number and order. The text they match is captured
// as the group "kept", so the template Kept removes s and leaves the qualifiers that follow it
// for later rules.
func Suffix(s string, keep ...string) *regexp.Regexp {
	kept := `(?P<kept>)`
	if len(keep) > 0 {
		kept = `(?P<kept>(?:` + strings.Join(keep, "|") + `)*)`
	}
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(s) + kept + `\s*$`)
}

// Replace returns a template substituting the target of a Word pattern with s and keeping both
// boundaries.
func Replace(s string) string {
	return Left + strings.ReplaceAll(s, "$", "$$") + Right
}

// Strip is the template removing the target of a Word pattern while keeping both boundaries.
const Strip = Left + Right

// Kept is the template removing a Suffix match except for the qualifiers it kept.
const Kept = "${kept}"

// New returns a pattern rule.
func New(name string, category Category, pattern *regexp.Regexp, template string) Rule {
	return Rule{
		Name:     name,
		Category: category,
		Pattern:  pattern,
		Template: template,
	}
}

// NewFunc returns a rule backed by a function.
func NewFunc(name string, category Category, f func(string) string) Rule {
	return Rule{
		Name:     name,
		Category: category,
		Func:     f,
	}
}

// Bounded reports whether the rule's pattern follows the boundary-capture convention.
func (r *Rule) Bounded() bool {
	return r.Pattern != nil && r.Pattern.SubexpIndex("left") >= 0 && r.Pattern.SubexpIndex("right") >= 0
}

// Validate checks that the rule is well formed.
//
// A bounded rule must reproduce both of its boundaries, in order, at the edges of its template.
func (r *Rule) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("rule has no name")
	}
	if (r.Pattern == nil) == (r.Func == nil) {
		return fmt.Errorf("rule %q must have exactly one of a pattern or a function", r.Name)
	}
	if r.Bounded() {
		if !strings.HasPrefix(r.Template, Left) || !strings.HasSuffix(r.Template, Right) {
			return fmt.Errorf("rule %q does not preserve its boundaries: template %q", r.Name, r.Template)
		}
	}
	return nil
}

// Apply runs the rule once over s.
//
// A bounded rule rewrites every match returned by Find. Only the target is rewritten, so a
// boundary shared by two consecutive matches is kept once.
func (r *Rule) Apply(s string) string {
	if r.Func != nil {
		return r.Func(s)
	}
	inner, ok := r.innerTemplate()
	if !ok {
		return r.Pattern.ReplaceAllString(s, r.Template)
	}
	locs := r.boundedIndex(s)
	if len(locs) == 0 {
		return s
	}
	target := 2 * r.Pattern.SubexpIndex("target")
	var b []byte
	last := 0
	for _, loc := range locs {
		b = append(b, s[last:loc[target]]...)
		b = r.Pattern.ExpandString(b, inner, s, loc)
		last = loc[target+1]
	}
	return string(append(b, s[last:]...))
}

// innerTemplate returns the template of a bounded rule without its boundaries.
func (r *Rule) innerTemplate() (string, bool) {
	if !r.Bounded() || r.Pattern.SubexpIndex("target") < 0 {
		return "", false
	}
	if !strings.HasPrefix(r.Template, Left) || !strings.HasSuffix(r.Template, Right) || len(r.Template) < len(Left)+len(Right) {
		return "", false
	}
	return r.Template[len(Left) : len(r.Template)-len(Right)], true
}

// boundedIndex returns the submatch indexes of every match of a bounded pattern.
//
// Regexp has no lookahead, so the right boundary is consumed by each match. The scan resumes
// at the start of the right boundary so that it can be the left boundary of the next match.
func (r *Rule) boundedIndex(s string) [][]int {
	left := 2 * r.Pattern.SubexpIndex("left")
	right := 2 * r.Pattern.SubexpIndex("right")
	var locs [][]int
	pos := 0
	for pos < len(s) {
		loc := r.Pattern.FindStringSubmatchIndex(s[pos:])
		if loc == nil {
			break
		}
		for i := range loc {
			if loc[i] >= 0 {
				loc[i] += pos
			}
		}
		// An empty left boundary after the start of s came from ^ matching at pos.
		if pos > 0 && loc[left] == pos && loc[left+1] == pos && isWordRune(lastRune(s[:pos])) {
			_, size := utf8.DecodeRuneInString(s[pos:])
			pos += size
			continue
		}
		locs = append(locs, loc)
		next := loc[right]
		if next <= pos {
			next = loc[1]
		}
		if next <= pos {
			_, size := utf8.DecodeRuneInString(s[pos:])
			next = pos + size
		}
		pos = next
	}
	return locs
}

func lastRune(s string) rune {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_'
}

// Match is a single match of a pattern rule.
type Match struct {
	Start, End int
	// Groups maps each named capture group to the text it captured.
	Groups map[string]string
}

// Find returns every match of the rule's pattern in s, in order.
//
// Matches of a bounded rule may overlap by one boundary: "Centre Centre" has two matches of
// Word("centre") sharing the space. Function rules never match.
func (r *Rule) Find(s string) []Match {
	if r.Pattern == nil {
		return nil
	}
	var locs [][]int
	if r.Bounded() {
		locs = r.boundedIndex(s)
	} else {
		locs = r.Pattern.FindAllStringSubmatchIndex(s, -1)
	}
	names := r.Pattern.SubexpNames()
	var matches []Match
	for _, loc := range locs {
		m := Match{
			Start:  loc[0],
			End:    loc[1],
			Groups: map[string]string{},
		}
		for i, name := range names {
			if name == "" || loc[2*i] < 0 {
				continue
			}
			m.Groups[name] = s[loc[2*i]:loc[2*i+1]]
		}
		matches = append(matches, m)
	}
	return matches
}

// Table is an immutable ordered list of rules.
type Table struct {
	name  string
	rules []Rule
}

// NewTable builds a table from the rules in the order given.
func NewTable(name string, rules ...Rule) (Table, error) {
	seen := map[string]bool{}
	for i := range rules {
		if err := rules[i].Validate(); err != nil {
			return Table{}, fmt.Errorf("table %q: %w", name, err)
		}
		if seen[rules[i].Name] {
			return Table{}, fmt.Errorf("table %q: duplicate rule %q", name, rules[i].Name)
		}
		seen[rules[i].Name] = true
	}
	return Table{
		name:  name,
		rules: append([]Rule(nil), rules...),
	}, nil
}

// MustTable is like NewTable but panics if the table is invalid.
func MustTable(name string, rules ...Rule) Table {
	t, err := NewTable(name, rules...)
	if err != nil {
		panic(err)
	}
	return t
}

// Concat builds a table by running the given tables one after another.
func Concat(name string, tables ...Table) (Table, error) {
	var rules []Rule
	for _, t := range tables {
		rules = append(rules, t.rules...)
	}
	return NewTable(name, rules...)
}

// MustConcat is like Concat but panics if the result is invalid.
func MustConcat(name string, tables ...Table) Table {
	t, err := Concat(name, tables...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t Table) Name() string {
	return t.name
}

func (t Table) Len() int {
	return len(t.rules)
}

// Rules returns a copy of the table's rules.
func (t Table) Rules() []Rule {
	return append([]Rule(nil), t.rules...)
}

// Apply runs every rule of the table once, in order.
func (t Table) Apply(s string) string {
	for i := range t.rules {
		s = t.rules[i].Apply(s)
	}
	return s
}

// Step records the effect of one rule during a traced application.
type Step struct {
	Rule   string
	Before string
	After  string
	// Matches lists the matches of a pattern rule in Before.
	Matches []Match
}

// Changed reports whether the rule modified its input.
func (s Step) Changed() bool {
	return s.Before != s.After
}

// Trace is like Apply but also returns the effect of each rule.
func (t Table) Trace(s string) (string, []Step) {
	steps := make([]Step, 0, len(t.rules))
	for i := range t.rules {
		before := s
		s = t.rules[i].Apply(s)
		steps = append(steps, Step{
			Rule:    t.rules[i].Name,
			Before:  before,
			After:   s,
			Matches: t.rules[i].Find(before),
		})
	}
	return s, steps
}
