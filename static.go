// Package gtfsclean cleans GTFS static and realtime feeds.
//
// Text fields are canonicalized and identifiers are derived using an agency.Agency, which holds
// the rules specific to one transit agency.
package gtfsclean

import (
	"archive/zip"
	"bytes"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/jamespfennell/gtfsclean/agency"
	"github.com/jamespfennell/gtfsclean/constants"
	"github.com/jamespfennell/gtfsclean/csv"
	"github.com/jamespfennell/gtfsclean/warnings"
)

// Static contains the cleaned content of a GTFS static feed.
type Static struct {
	Agencies []Agency
	Routes   []Route
	Stops    []Stop
	Trips    []Trip

	// Warnings lists the records that were skipped.
	Warnings []warnings.StaticWarning
}

// Agency corresponds to a single row in the agency.txt file.
type Agency struct {
	Id       string
	Name     string
	Url      string
	Timezone string
	Language *string
	Color    string
}

// Route corresponds to a single row in the routes.txt file.
type Route struct {
	Id        string
	NumericId int64
	Agency    *Agency
	ShortName string
	LongName  string
	Color     string
	TextColor string
	Type      RouteType
	SortOrder *int32
}

// Stop corresponds to a single row in the stops.txt file.
type Stop struct {
	Id        string
	NumericId int
	// OriginalId is the stop ID without feed merge markers.
	OriginalId string
	Code       *string
	Name       string
	Latitude   *float64
	Longitude  *float64
	Type       StopType
	Parent     *Stop
}

// Trip corresponds to a single row in the trips.txt file.
type Trip struct {
	Id          string
	Route       *Route
	ServiceId   string
	Headsign    string
	DirectionId DirectionID
	// DirectionHeadsign labels the direction of the trip. It is derived from the trip headsign or,
	// if the trip has none, from the name of its last stop.
	DirectionHeadsign string
	LastStop          *Stop
}

type ParseStaticOptions struct {
	// The agency used to clean the feed.
	//
	// It can be nil, in which case agency.Default is used with the first agency of the feed.
	Agency agency.Agency

	FatalPolicy FatalPolicy
}

const (
	defaultColor     = "FFFFFF"
	defaultTextColor = "000000"
)

// ParseStatic parses and cleans the content as a GTFS static feed.
//
// An agency.FatalError returned by the agency aborts parsing unless opts.FatalPolicy is
// FatalPolicy_SkipRecord.
func ParseStatic(content []byte, opts ParseStaticOptions) (*Static, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to open GTFS static feed: %w", err)
	}
	fileNameToFile := map[constants.StaticFile]*zip.File{}
	for _, file := range reader.File {
		fileNameToFile[constants.StaticFile(file.Name)] = file
	}
	p := &parser{
		opts:   opts,
		result: &Static{},
	}
	for _, table := range []struct {
		fileName constants.StaticFile
		optional bool
		action   func(file *csv.File) error
	}{
		{constants.AgencyFile, false, p.parseAgencies},
		{constants.RoutesFile, false, p.parseRoutes},
		{constants.StopsFile, false, p.parseStops},
		{constants.StopTimesFile, true, p.parseStopTimes},
		{constants.TripsFile, false, p.parseTrips},
	} {
		zipFile := fileNameToFile[table.fileName]
		if zipFile == nil {
			if table.optional {
				continue
			}
			return nil, fmt.Errorf("no %q file in GTFS static feed", table.fileName)
		}
		if err := readCsvFile(zipFile, table.fileName, table.action); err != nil {
			return nil, err
		}
	}
	return p.result, nil
}

func readCsvFile(zipFile *zip.File, fileName constants.StaticFile, action func(file *csv.File) error) error {
	content, err := zipFile.Open()
	if err != nil {
		return fmt.Errorf("failed to open %q: %w", fileName, err)
	}
	f, err := csv.New(fileName, content)
	if err != nil {
		return fmt.Errorf("failed to parse %q: %w", fileName, err)
	}
	actionErr := action(f)
	closeErr := f.Close()
	if actionErr != nil {
		return actionErr
	}
	return closeErr
}

type lastStopTime struct {
	stopSequence int
	stopIndex    int
}

type parser struct {
	opts   ParseStaticOptions
	agency agency.Agency
	result *Static

	routeIdToIndex map[string]int
	stopIdToIndex  map[string]int
	rawStopNames   []string
	lastStopTimes  map[string]lastStopTime
}

func (p *parser) warn(w warnings.StaticWarning) {
	log.Print(w.Error())
	p.result.Warnings = append(p.result.Warnings, w)
}

// recordErr decides the fate of a record whose cleaning failed. A nil return means the record
// is skipped and parsing continues.
func (p *parser) recordErr(f *csv.File, err error) error {
	if p.opts.FatalPolicy == FatalPolicy_SkipRecord && agency.IsFatal(err) {
		p.warn(warnings.FatalRecordSkipped{FileName: f.Name(), Line: f.Line(), Err: err})
		return nil
	}
	return fmt.Errorf("%s line %d: %w", f.Name(), f.Line(), err)
}

func (p *parser) skipIfMissingKeys(f *csv.File) bool {
	keys := f.MissingKeys()
	if len(keys) == 0 {
		return false
	}
	p.warn(warnings.MissingKeys{FileName: f.Name(), Line: f.Line(), Keys: append([]string(nil), keys...)})
	return true
}

func checkColumns(f *csv.File) error {
	if missing := f.MissingColumns(); len(missing) > 0 {
		return fmt.Errorf("%s is missing required columns %v", f.Name(), missing)
	}
	return nil
}

func (p *parser) parseAgencies(f *csv.File) error {
	idColumn := f.OptionalColumn("agency_id")
	nameColumn := f.RequiredColumn("agency_name")
	urlColumn := f.RequiredColumn("agency_url")
	timezoneColumn := f.RequiredColumn("agency_timezone")
	langColumn := f.OptionalColumn("agency_lang")
	if err := checkColumns(f); err != nil {
		return err
	}
	for f.NextRow() {
		a := Agency{
			Id:       idColumn.Read(),
			Name:     nameColumn.Read(),
			Url:      urlColumn.Read(),
			Timezone: timezoneColumn.Read(),
			Language: langColumn.ReadOptional(),
		}
		if p.skipIfMissingKeys(f) {
			continue
		}
		p.result.Agencies = append(p.result.Agencies, a)
	}
	p.agency = p.opts.Agency
	if p.agency == nil {
		var info agency.Info
		if len(p.result.Agencies) > 0 {
			a := p.result.Agencies[0]
			info = agency.Info{ID: a.Id, Name: a.Name, URL: a.Url, Timezone: a.Timezone}
			if a.Language != nil {
				info.Language = *a.Language
			}
		}
		p.agency = agency.Default(info)
	}
	for i := range p.result.Agencies {
		if p.result.Agencies[i].Id == "" {
			p.result.Agencies[i].Id = p.agency.Info().ID
		}
		p.result.Agencies[i].Color = p.agencyColor()
	}
	return nil
}

func (p *parser) agencyColor() string {
	if c := p.agency.Info().Color; c != "" {
		return strings.ToUpper(c)
	}
	return defaultColor
}

func (p *parser) parseRoutes(f *csv.File) error {
	idColumn := f.RequiredColumn("route_id")
	agencyIdColumn := f.OptionalColumn("agency_id")
	shortNameColumn := f.OptionalColumn("route_short_name")
	longNameColumn := f.OptionalColumn("route_long_name")
	typeColumn := f.RequiredColumn("route_type")
	colorColumn := f.OptionalColumn("route_color")
	textColorColumn := f.OptionalColumn("route_text_color")
	sortOrderColumn := f.OptionalColumn("route_sort_order")
	if err := checkColumns(f); err != nil {
		return err
	}
	agencies := p.result.Agencies
	p.routeIdToIndex = map[string]int{}
	for f.NextRow() {
		route := Route{
			Id:        idColumn.Read(),
			ShortName: shortNameColumn.Read(),
			Type:      parseRouteType(typeColumn.Read()),
			TextColor: strings.ToUpper(textColorColumn.ReadOr(defaultTextColor)),
			SortOrder: parseInt32(sortOrderColumn.ReadOptional()),
		}
		agencyId := agencyIdColumn.ReadOptional()
		rawLongName := longNameColumn.Read()
		rawColor := colorColumn.Read()
		if p.skipIfMissingKeys(f) {
			continue
		}
		if agencyId != nil {
			for i := range agencies {
				if agencies[i].Id == *agencyId {
					route.Agency = &agencies[i]
					break
				}
			}
			if route.Agency == nil {
				p.warn(warnings.UnknownReference{FileName: f.Name(), Line: f.Line(), Key: "agency_id", Value: *agencyId})
				continue
			}
		} else if len(agencies) == 1 {
			// With a single agency the agency ID of a route can be omitted.
			route.Agency = &agencies[0]
		} else {
			p.warn(warnings.UnknownReference{FileName: f.Name(), Line: f.Line(), Key: "agency_id", Value: ""})
			continue
		}

		code := route.ShortName
		if code == "" {
			code = route.Id
		}
		numericId, err := p.agency.RouteID(code)
		if err != nil {
			if err := p.recordErr(f, err); err != nil {
				return err
			}
			continue
		}
		route.NumericId = numericId

		route.Color, err = p.routeColor(rawColor, code)
		if err != nil {
			if err := p.recordErr(f, err); err != nil {
				return err
			}
			continue
		}
		route.LongName = p.agency.CleanRouteLongName(rawLongName)

		p.routeIdToIndex[route.Id] = len(p.result.Routes)
		p.result.Routes = append(p.result.Routes, route)
	}
	return nil
}

// routeColor returns the color published in the feed, or else the agency's color for the route.
func (p *parser) routeColor(rawColor, code string) (string, error) {
	if rawColor != "" {
		return strings.ToUpper(rawColor), nil
	}
	c, err := p.agency.RouteColor(code)
	if err != nil {
		return "", err
	}
	if c == "" {
		return p.agencyColor(), nil
	}
	return strings.ToUpper(c), nil
}

func (p *parser) parseStops(f *csv.File) error {
	idColumn := f.RequiredColumn("stop_id")
	codeColumn := f.OptionalColumn("stop_code")
	nameColumn := f.OptionalColumn("stop_name")
	latColumn := f.OptionalColumn("stop_lat")
	lonColumn := f.OptionalColumn("stop_lon")
	typeColumn := f.OptionalColumn("location_type")
	parentColumn := f.OptionalColumn("parent_station")
	if err := checkColumns(f); err != nil {
		return err
	}
	p.stopIdToIndex = map[string]int{}
	stopIdToParent := map[string]string{}
	for f.NextRow() {
		stop := Stop{
			Id:        idColumn.Read(),
			Code:      codeColumn.ReadOptional(),
			Latitude:  parseFloat64(latColumn.ReadOptional()),
			Longitude: parseFloat64(lonColumn.ReadOptional()),
			Type:      parseStopType(typeColumn.Read()),
		}
		rawName := nameColumn.Read()
		parentId := parentColumn.Read()
		if p.skipIfMissingKeys(f) {
			continue
		}
		numericId, err := p.agency.StopID(stop.Id)
		if err != nil {
			if err := p.recordErr(f, err); err != nil {
				return err
			}
			continue
		}
		stop.NumericId = numericId
		stop.OriginalId = p.agency.CleanStopOriginalID(stop.Id)
		stop.Name = p.agency.CleanStopName(rawName)

		p.stopIdToIndex[stop.Id] = len(p.result.Stops)
		if parentId != "" {
			stopIdToParent[stop.Id] = parentId
		}
		p.result.Stops = append(p.result.Stops, stop)
		p.rawStopNames = append(p.rawStopNames, rawName)
	}
	for stopId, parentId := range stopIdToParent {
		parentIndex, ok := p.stopIdToIndex[parentId]
		if !ok {
			continue
		}
		p.result.Stops[p.stopIdToIndex[stopId]].Parent = &p.result.Stops[parentIndex]
	}
	return nil
}

// parseStopTimes only records the last stop of each trip.
func (p *parser) parseStopTimes(f *csv.File) error {
	tripIdColumn := f.RequiredColumn("trip_id")
	stopIdColumn := f.RequiredColumn("stop_id")
	stopSequenceColumn := f.RequiredColumn("stop_sequence")
	if err := checkColumns(f); err != nil {
		return err
	}
	p.lastStopTimes = map[string]lastStopTime{}
	for f.NextRow() {
		tripId := tripIdColumn.Read()
		stopId := stopIdColumn.Read()
		rawStopSequence := stopSequenceColumn.Read()
		if p.skipIfMissingKeys(f) {
			continue
		}
		stopSequence, err := strconv.Atoi(rawStopSequence)
		if err != nil {
			p.warn(warnings.InvalidValue{FileName: f.Name(), Line: f.Line(), Key: "stop_sequence", Value: rawStopSequence})
			continue
		}
		stopIndex, ok := p.stopIdToIndex[stopId]
		if !ok {
			p.warn(warnings.UnknownReference{FileName: f.Name(), Line: f.Line(), Key: "stop_id", Value: stopId})
			continue
		}
		if last, ok := p.lastStopTimes[tripId]; ok && last.stopSequence >= stopSequence {
			continue
		}
		p.lastStopTimes[tripId] = lastStopTime{stopSequence: stopSequence, stopIndex: stopIndex}
	}
	return nil
}

func (p *parser) parseTrips(f *csv.File) error {
	routeIdColumn := f.RequiredColumn("route_id")
	serviceIdColumn := f.RequiredColumn("service_id")
	idColumn := f.RequiredColumn("trip_id")
	headsignColumn := f.OptionalColumn("trip_headsign")
	directionIdColumn := f.OptionalColumn("direction_id")
	if err := checkColumns(f); err != nil {
		return err
	}
	for f.NextRow() {
		trip := Trip{
			Id:          idColumn.Read(),
			ServiceId:   serviceIdColumn.Read(),
			DirectionId: parseDirectionID_GTFSStatic(directionIdColumn.Read()),
		}
		routeId := routeIdColumn.Read()
		rawHeadsign := headsignColumn.Read()
		if p.skipIfMissingKeys(f) {
			continue
		}
		routeIndex, ok := p.routeIdToIndex[routeId]
		if !ok {
			p.warn(warnings.UnknownReference{FileName: f.Name(), Line: f.Line(), Key: "route_id", Value: routeId})
			continue
		}
		trip.Route = &p.result.Routes[routeIndex]
		trip.Headsign = p.agency.CleanTripHeadsign(rawHeadsign)
		var rawLastStopName string
		if last, ok := p.lastStopTimes[trip.Id]; ok {
			trip.LastStop = &p.result.Stops[last.stopIndex]
			rawLastStopName = p.rawStopNames[last.stopIndex]
		}
		switch {
		case rawHeadsign != "":
			trip.DirectionHeadsign = p.agency.CleanDirectionHeadsign(trip.DirectionId.Int(), false, rawHeadsign)
		case rawLastStopName != "":
			trip.DirectionHeadsign = p.agency.CleanDirectionHeadsign(trip.DirectionId.Int(), true, rawLastStopName)
		}
		p.result.Trips = append(p.result.Trips, trip)
	}
	return nil
}

func parseInt32(raw *string) *int32 {
	if raw == nil {
		return nil
	}
	i, err := strconv.ParseInt(*raw, 10, 32)
	if err != nil {
		return nil
	}
	i32 := int32(i)
	return &i32
}

func parseFloat64(raw *string) *float64 {
	if raw == nil {
		return nil
	}
	f, err := strconv.ParseFloat(*raw, 64)
	if err != nil {
		return nil
	}
	return &f
}
