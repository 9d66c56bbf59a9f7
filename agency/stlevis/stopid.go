package stlevis

import (
	"regexp"

	"github.com/jamespfennell/gtfsclean/agency"
	"github.com/jamespfennell/gtfsclean/clean"
)

// Stop letter variants, as in 1234A.
var stopLetterSuffix = regexp.MustCompile(`[A-Z]+$`)

// ExtractStopID derives the numeric ID of a stop from its GTFS stop ID.
//
// The merge marker and any trailing upper case letters are removed and the rest must be a
// base-10 integer. Otherwise a MalformedIDError reporting the original token is returned.
func ExtractStopID(stopID string) (int, error) {
	s := clean.MergedID(stopID)
	s = stopLetterSuffix.ReplaceAllString(s, "")
	return agency.ParseID("stop_id", stopID, s)
}
