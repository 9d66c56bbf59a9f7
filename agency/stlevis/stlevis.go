// Package stlevis contains the cleaning and identifier rules for the STLévis (Société de
// transport de Lévis) GTFS feed.
package stlevis

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/jamespfennell/gtfsclean/agency"
	"github.com/jamespfennell/gtfsclean/clean"
	"github.com/jamespfennell/gtfsclean/config"
)

//go:embed stlevis.yml
var defaultProfile []byte

// DefaultProfile returns the built-in STLévis profile.
func DefaultProfile() (*config.Profile, error) {
	return config.Parse(defaultProfile)
}

// Opts configures an STLévis agency. The zero value uses the built-in profile and rules.
type Opts struct {
	// Profile replaces the built-in profile.
	Profile *config.Profile

	// Rules replaces the built-in rule tables.
	Rules *Rules

	// RouteIDFallback derives the ID of a route whose short name has no override.
	// Defaults to agency.DefaultRouteID.
	RouteIDFallback func(routeShortName string) (int64, error)

	// DirectionFallback cleans direction headsigns that are not a school session.
	// Defaults to agency.DefaultDirectionHeadsign.
	DirectionFallback func(a agency.Agency, directionID int, fromStopName bool, headsign string) string
}

// Agency is the STLévis implementation of agency.Agency.
type Agency struct {
	info              agency.Info
	normalizer        *Normalizer
	resolver          *Resolver
	directionFallback func(a agency.Agency, directionID int, fromStopName bool, headsign string) string
}

var _ agency.Agency = (*Agency)(nil)

func New(opts Opts) (*Agency, error) {
	profile := opts.Profile
	if profile == nil {
		var err error
		profile, err = DefaultProfile()
		if err != nil {
			return nil, fmt.Errorf("failed to parse built-in STLévis profile: %w", err)
		}
	}
	r := DefaultRules()
	if opts.Rules != nil {
		r = *opts.Rules
	}
	routeIDFallback := opts.RouteIDFallback
	if routeIDFallback == nil {
		routeIDFallback = agency.DefaultRouteID
	}
	directionFallback := opts.DirectionFallback
	if directionFallback == nil {
		directionFallback = agency.DefaultDirectionHeadsign
	}
	a := profile.Agency
	return &Agency{
		info: agency.Info{
			ID:        a.ID,
			Name:      a.Name,
			URL:       a.URL,
			Timezone:  a.Timezone,
			Language:  a.Language,
			Color:     strings.ToUpper(a.Color),
			RouteType: a.RouteType,
		},
		normalizer:        NewNormalizer(r),
		resolver:          NewResolver(profile.Routes, routeIDFallback),
		directionFallback: directionFallback,
	}, nil
}

func (a *Agency) Info() agency.Info {
	return a.info
}

func (a *Agency) Normalizer() *Normalizer {
	return a.normalizer
}

func (a *Agency) Resolver() *Resolver {
	return a.resolver
}

func (a *Agency) CleanRouteLongName(routeLongName string) string {
	return a.normalizer.Normalize(agency.FieldKind_RouteLongName, routeLongName)
}

func (a *Agency) CleanTripHeadsign(tripHeadsign string) string {
	return a.normalizer.Normalize(agency.FieldKind_TripHeadsign, tripHeadsign)
}

func (a *Agency) CleanStopName(stopName string) string {
	return a.normalizer.Normalize(agency.FieldKind_StopName, stopName)
}

// School trips run a single morning or afternoon service; their direction is the session.
const (
	amSuffix = " (AM)"
	pmSuffix = " (PM)"
)

// CleanDirectionHeadsign returns AM or PM for school session headsigns and defers to the
// direction fallback otherwise.
func (a *Agency) CleanDirectionHeadsign(directionID int, fromStopName bool, headsign string) string {
	switch {
	case strings.HasSuffix(headsign, amSuffix):
		return "AM"
	case strings.HasSuffix(headsign, pmSuffix):
		return "PM"
	}
	return a.directionFallback(a, directionID, fromStopName, headsign)
}

func (a *Agency) CleanStopOriginalID(stopID string) string {
	return clean.MergedID(stopID)
}

func (a *Agency) RouteID(routeShortName string) (int64, error) {
	return a.resolver.RouteID(routeShortName)
}

func (a *Agency) RouteColor(routeShortName string) (string, error) {
	return a.resolver.RouteColor(routeShortName)
}

func (a *Agency) StopID(stopID string) (int, error) {
	return ExtractStopID(stopID)
}
