package stlevis

import (
	"strconv"
	"strings"

	"github.com/jamespfennell/gtfsclean/agency"
	"github.com/jamespfennell/gtfsclean/config"
)

// Resolver maps route short names to fixed route IDs and colors.
type Resolver struct {
	idOverrides map[string]int64
	colorRanges []config.ColorRange
	colorCodes  map[string]string
	fallback    func(routeShortName string) (int64, error)
}

// NewResolver builds a resolver from the route tables of a profile.
//
// Short names missing from the ID overrides are passed to fallback.
func NewResolver(routes config.RoutesConfig, fallback func(routeShortName string) (int64, error)) *Resolver {
	r := &Resolver{
		idOverrides: map[string]int64{},
		colorRanges: append([]config.ColorRange(nil), routes.ColorRanges...),
		colorCodes:  map[string]string{},
		fallback:    fallback,
	}
	for code, id := range routes.IDOverrides {
		r.idOverrides[code] = id
	}
	for code, color := range routes.ColorCodes {
		r.colorCodes[strings.ToUpper(code)] = strings.ToUpper(color)
	}
	return r
}

// RouteID returns the fixed ID of a known route code, or defers to the fallback.
func (r *Resolver) RouteID(routeShortName string) (int64, error) {
	if id, ok := r.idOverrides[routeShortName]; ok {
		return id, nil
	}
	return r.fallback(routeShortName)
}

// RouteColor returns the color of a route from its short name.
//
// Numeric short names are matched against the color ranges first, then the short name is
// matched case-insensitively against the color codes. A short name matching neither is an
// UnrecognizedCodeError: every route the agency publishes must be classified.
func (r *Resolver) RouteColor(routeShortName string) (string, error) {
	if agency.IsDigits(routeShortName) {
		if n, err := strconv.Atoi(routeShortName); err == nil {
			for _, cr := range r.colorRanges {
				if cr.Min <= n && n <= cr.Max {
					return strings.ToUpper(cr.Color), nil
				}
			}
		}
	}
	if color, ok := r.colorCodes[strings.ToUpper(routeShortName)]; ok {
		return color, nil
	}
	return "", &agency.UnrecognizedCodeError{Field: "route color for route_short_name", Code: routeShortName}
}
