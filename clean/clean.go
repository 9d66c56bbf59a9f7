// Package clean contains agency-neutral rule tables for cleaning GTFS text fields.
//
// Agencies compose these tables with their own rules; see the agency/stlevis package.
package clean

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jamespfennell/gtfsclean/rules"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var saint = rules.MustTable("saint",
	rules.New("saint", rules.Category_Abbreviation, rules.Word("saint"), rules.Replace("St")),
	rules.New("sainte", rules.Category_Abbreviation, rules.Word("sainte"), rules.Replace("Ste")),
)

// Saint abbreviates Saint and Sainte to St and Ste.
func Saint() rules.Table {
	return saint
}

var removeVia = rules.MustTable("via",
	rules.New("via", rules.Category_SuffixStrip, regexp.MustCompile(`(?i)\s+\(?via\s.*$`), ""),
)

// RemoveVia strips a trailing "via ..." clause.
func RemoveVia() rules.Table {
	return removeVia
}

var dashes = rules.MustTable("dashes",
	rules.New("dash", rules.Category_Punctuation, rules.Word("–|—"), rules.Replace("-")),
)

// Dashes replaces standalone en and em dashes with a hyphen.
func Dashes() rules.Table {
	return dashes
}

var parenthesis = rules.MustTable("parenthesis",
	rules.New("parenthesis-open", rules.Category_Punctuation, regexp.MustCompile(`\(\s+`), "("),
	rules.New("parenthesis-close", rules.Category_Punctuation, regexp.MustCompile(`\s+\)`), ")"),
)

// Parenthesis removes whitespace just inside parentheses.
func Parenthesis() rules.Table {
	return parenthesis
}

var streetTypesFRCA = rules.MustTable("street-types-fr-ca",
	streetType("autoroute", "Aut"),
	streetType("avenue", "Av"),
	streetType("boulevard", "Boul"),
	streetType("carré", "Carr"),
	streetType("chemin", "Ch"),
	streetType("croissant", "Crois"),
	streetType("impasse", "Imp"),
	streetType("montée", "Mtée"),
	streetType("place", "Pl"),
	streetType("promenade", "Prom"),
	streetType("rang", "Rg"),
	streetType("route", "Rte"),
	streetType("terrasse", "Tsse"),
)

func streetType(name, short string) rules.Rule {
	return rules.New("street-type-"+name, rules.Category_Abbreviation, rules.Word(name), rules.Replace(short))
}

// StreetTypesFRCA abbreviates French-Canadian street types.
func StreetTypesFRCA() rules.Table {
	return streetTypesFRCA
}

var label = rules.MustTable("label",
	rules.New("label-empty-parenthesis", rules.Category_Punctuation, regexp.MustCompile(`\(\s*\)`), ""),
	rules.New("label-parenthesis-open", rules.Category_Punctuation, regexp.MustCompile(`\s*\(\s*`), " ("),
	rules.New("label-parenthesis-close", rules.Category_Punctuation, regexp.MustCompile(`\s*\)`), ")"),
	rules.New("label-comma", rules.Category_Punctuation, regexp.MustCompile(`\s+,`), ","),
	rules.New("label-leading-dash", rules.Category_Punctuation, regexp.MustCompile(`^\s*-\s*`), ""),
	rules.New("label-trailing-dash", rules.Category_Punctuation, regexp.MustCompile(`\s*-\s*$`), ""),
	rules.New("label-spaces", rules.Category_Cleanup, regexp.MustCompile(`\s+`), " "),
	rules.NewFunc("label-trim", rules.Category_Cleanup, strings.TrimSpace),
)

// Label normalizes whitespace and punctuation.
func Label() rules.Table {
	return label
}

var labelFR = rules.MustConcat("label-fr",
	rules.MustTable("apostrophes",
		rules.New("label-apostrophe", rules.Category_Punctuation, regexp.MustCompile(`\s*['’]\s*`), "'"),
	),
	label,
	rules.MustTable("french-words",
		rules.NewFunc("label-french-articles", rules.Category_Cleanup, lowerArticles),
		rules.NewFunc("label-capitalize", rules.Category_Cleanup, capitalize),
	),
)

// LabelFR is Label followed by French typographic conventions: apostrophes are tightened,
// articles and elisions inside a label are lower case and the label starts with a capital.
func LabelFR() rules.Table {
	return labelFR
}

var articles = map[string]bool{
	"à":   true,
	"au":  true,
	"aux": true,
	"de":  true,
	"des": true,
	"du":  true,
	"en":  true,
	"et":  true,
	"la":  true,
	"le":  true,
	"les": true,
	"sur": true,
}

// Casers are stateful, so each call gets its own.
func lowerArticles(s string) string {
	frenchLower := cases.Lower(language.French)
	words := strings.Split(s, " ")
	for i := 1; i < len(words); i++ {
		if !endsWithLetter(words[i-1]) {
			continue
		}
		lower := frenchLower.String(words[i])
		if articles[lower] {
			words[i] = lower
			continue
		}
		if strings.HasPrefix(lower, "d'") || strings.HasPrefix(lower, "l'") {
			words[i] = lower[:2] + words[i][2:]
		}
	}
	return strings.Join(words, " ")
}

func endsWithLetter(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsLetter(r)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || !unicode.IsLower(r) {
		return s
	}
	return cases.Upper(language.French).String(s[:size]) + s[size:]
}

var composition = rules.MustTable("composition",
	rules.NewFunc("nfc", rules.Category_Cleanup, Compose),
)

// Composition converts its input to Unicode normalization form C.
func Composition() rules.Table {
	return composition
}

// Compose returns s in Unicode normalization form C.
//
// Feeds mix precomposed and decomposed accents; composing first lets rules written with
// precomposed letters match both.
func Compose(s string) string {
	return norm.NFC.String(s)
}

var mergedID = regexp.MustCompile(`(?i)[-_]merged(?:[-_][[:alnum:]]*)?$`)

// MergedID strips the marker added to IDs of entities merged from several source feeds.
//
// For example 12345-merged-67 becomes 12345.
func MergedID(id string) string {
	return mergedID.ReplaceAllString(id, "")
}
