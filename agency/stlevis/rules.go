package stlevis

import (
	"regexp"

	"github.com/jamespfennell/gtfsclean/agency"
	"github.com/jamespfennell/gtfsclean/clean"
	"github.com/jamespfennell/gtfsclean/rules"
)

// Rules contains the rule table for each field kind.
type Rules struct {
	RouteLongName rules.Table
	TripHeadsign  rules.Table
	StopName      rules.Table
}

// Table returns the rule table for the field kind.
func (r Rules) Table(kind agency.FieldKind) (rules.Table, bool) {
	switch kind {
	case agency.FieldKind_RouteLongName:
		return r.RouteLongName, true
	case agency.FieldKind_TripHeadsign:
		return r.TripHeadsign, true
	case agency.FieldKind_StopName:
		return r.StopName, true
	default:
		return rules.Table{}, false
	}
}

// limitedStops matches the "(arrêts limités)" qualifier with the whitespace before it.
const limitedStops = `\s+\(arr[eê]ts limit[eé]s\)`

// headsignRules are the STLévis-specific trip headsign rules. They run after the via, saint and
// dash rules and before the street type and label rules.
var headsignRules = rules.MustTable("stlevis-headsign",
	rules.New("terminus", rules.Category_SuffixStrip, rules.Word("terminus"), rules.Strip),
	rules.New("rene-levesque", rules.Category_Abbreviation, rules.Word("ren[eé]-l[eé]vesque"), rules.Replace("R-Lévesque")),
	rules.New("abraham-martin", rules.Category_Abbreviation, rules.Word("abraham-martin"), rules.Replace("A-Martin")),
	rules.New("station", rules.Category_SuffixStrip, rules.Word("station"), rules.Strip),
	rules.New("st-jean", rules.Category_Abbreviation, rules.Word("st-jean"), rules.Replace("St-J")),
	rules.New("st-lambert", rules.Category_PlaceName, rules.Word("st-lambert-de-lauzon"), rules.Replace("St-Lambert")),
	rules.New("st-nicolas-bernieres", rules.Category_PlaceName, rules.Word(`st-nicolas\s+-\s+berni[eè]res`), rules.Replace("Bernières (St-Nicolas)")),
	rules.New("st-nicolas-village", rules.Category_PlaceName, rules.Word(`st-nicolas\s+-\s+village`), rules.Replace("Village (St-Nicolas)")),
	rules.New("breakeyville", rules.Category_PlaceName, rules.Word("ste-h[eé]l[eè]ne-de-breakeyville"), rules.Replace("Breakeyville")),
	rules.New("parc-relais-bus", rules.Category_Abbreviation, rules.Word("parc-relais-bus"), rules.Replace("PRB")),
	rules.New("juvenat-notre-dame", rules.Category_Abbreviation, rules.Word(`juv[eé]nat\s+notre-dame`), rules.Replace("JND")),
	rules.New("quebec-centre-saaq", rules.Category_PlaceName, rules.Word(`qu[eé]bec\s+centre-ville\s+-\s+saaq`), rules.Replace("Québec Ctr")),
	rules.New("centre", rules.Category_Abbreviation, rules.Word("centre"), rules.Replace("Ctr")),
	rules.New("universite", rules.Category_Abbreviation, rules.Word("universit[eé]"), rules.Replace("U.")),
	rules.New("direct", rules.Category_SuffixStrip, rules.Suffix(" (direct)", limitedStops), rules.Kept),
	rules.New("arrets-limites", rules.Category_SuffixStrip, regexp.MustCompile(`(?i)`+limitedStops+`\s*$`), ""),
)

// DefaultRules returns the STLévis rule tables.
//
// Every table starts by composing its input to NFC so that the accented letters in the patterns
// match feeds using either precomposed or decomposed accents.
func DefaultRules() Rules {
	return Rules{
		RouteLongName: rules.MustConcat("route-long-name",
			clean.Composition(),
			clean.Saint(),
			clean.Parenthesis(),
			clean.Label(),
		),
		TripHeadsign: rules.MustConcat("trip-headsign",
			clean.Composition(),
			clean.RemoveVia(),
			clean.Saint(),
			clean.Dashes(),
			headsignRules,
			clean.StreetTypesFRCA(),
			clean.LabelFR(),
		),
		StopName: rules.MustConcat("stop-name",
			clean.Composition(),
			clean.StreetTypesFRCA(),
			clean.LabelFR(),
		),
	}
}
