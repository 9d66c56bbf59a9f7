// Package agency defines the per-agency hooks applied while cleaning a GTFS feed.
package agency

import (
	"strconv"

	"github.com/jamespfennell/gtfsclean/clean"
)

// Agency contains the agency-specific cleaning and identifier logic.
//
// Implementations must be safe for concurrent use: every method is a pure function of its
// arguments and of tables built when the agency was constructed.
type Agency interface {
	Info() Info

	CleanRouteLongName(routeLongName string) string

	CleanTripHeadsign(tripHeadsign string) string

	CleanStopName(stopName string) string

	// CleanDirectionHeadsign cleans the headsign chosen for a whole direction of a route.
	// If fromStopName is true the headsign was derived from the name of the last stop.
	CleanDirectionHeadsign(directionID int, fromStopName bool, headsign string) string

	CleanStopOriginalID(stopID string) string

	// RouteID derives the numeric ID of a route from its short name.
	RouteID(routeShortName string) (int64, error)

	// RouteColor provides a color for a route whose feed record has none.
	// An empty color with a nil error means the agency color should be used.
	RouteColor(routeShortName string) (string, error)

	StopID(stopID string) (int, error)
}

// Info describes an agency.
type Info struct {
	ID        string
	Name      string
	URL       string
	Timezone  string
	Language  string
	Color     string
	RouteType int32
}

// Default returns an agency with the default behavior and the given info.
func Default(info Info) Agency {
	return DefaultImpl{info: info}
}

// DefaultImpl implements the default behavior of every hook.
//
// Agencies may embed it and override only the hooks they need.
type DefaultImpl struct {
	info Info
}

func (d DefaultImpl) Info() Info {
	return d.info
}

func (d DefaultImpl) CleanRouteLongName(routeLongName string) string {
	return clean.Label().Apply(routeLongName)
}

func (d DefaultImpl) CleanTripHeadsign(tripHeadsign string) string {
	return clean.Label().Apply(tripHeadsign)
}

func (d DefaultImpl) CleanStopName(stopName string) string {
	return clean.Label().Apply(stopName)
}

func (d DefaultImpl) CleanDirectionHeadsign(directionID int, fromStopName bool, headsign string) string {
	return DefaultDirectionHeadsign(d, directionID, fromStopName, headsign)
}

func (d DefaultImpl) CleanStopOriginalID(stopID string) string {
	return stopID
}

func (d DefaultImpl) RouteID(routeShortName string) (int64, error) {
	return DefaultRouteID(routeShortName)
}

func (d DefaultImpl) RouteColor(routeShortName string) (string, error) {
	return "", nil
}

func (d DefaultImpl) StopID(stopID string) (int, error) {
	return DefaultStopID(stopID)
}

// DefaultDirectionHeadsign cleans a direction headsign with the agency's stop name rules if the
// headsign came from a stop name, and with its trip headsign rules otherwise.
func DefaultDirectionHeadsign(a Agency, directionID int, fromStopName bool, headsign string) string {
	if fromStopName {
		return a.CleanStopName(headsign)
	}
	return a.CleanTripHeadsign(headsign)
}

// DefaultRouteID parses a route short name made only of digits.
func DefaultRouteID(routeShortName string) (int64, error) {
	if !IsDigits(routeShortName) {
		return 0, &UnrecognizedCodeError{Field: "route_short_name", Code: routeShortName}
	}
	i, err := strconv.ParseInt(routeShortName, 10, 64)
	if err != nil {
		return 0, &UnrecognizedCodeError{Field: "route_short_name", Code: routeShortName}
	}
	return i, nil
}

// DefaultStopID parses a stop ID made only of digits.
func DefaultStopID(stopID string) (int, error) {
	return ParseID("stop_id", stopID, stopID)
}

// ParseID parses s as a base-10 integer that fits in 32 bits.
//
// The returned error reports raw, the token s was derived from.
func ParseID(field, raw, s string) (int, error) {
	if !IsDigits(s) {
		return 0, &MalformedIDError{Field: field, Token: raw}
	}
	i, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, &MalformedIDError{Field: field, Token: raw, Err: err}
	}
	return int(i), nil
}

// IsDigits reports whether s is non-empty and made only of the ASCII digits 0-9.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
