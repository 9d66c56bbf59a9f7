// Package export writes a cleaned GTFS static feed as CSV files or as a SQLite database.
package export

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"github.com/jamespfennell/gtfsclean"
)

//go:embed routes.csv.tmpl
var routesCsvTmpl string

//go:embed stops.csv.tmpl
var stopsCsvTmpl string

//go:embed trips.csv.tmpl
var tripsCsvTmpl string

var funcMap = template.FuncMap{
	"Quote": quote,
	"NullableString": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"NullableFloat": func(f *float64) string {
		if f == nil {
			return ""
		}
		return strconv.FormatFloat(*f, 'f', -1, 64)
	},
	"ParentID": func(s *gtfsclean.Stop) string {
		if s == nil {
			return ""
		}
		return strconv.Itoa(s.NumericId)
	},
	"FormatDirectionID": func(d gtfsclean.DirectionID) string {
		switch d {
		case gtfsclean.DirectionID_False:
			return "0"
		case gtfsclean.DirectionID_True:
			return "1"
		default:
			return ""
		}
	},
}

var routesCsv = template.Must(template.New("routes.csv.tmpl").Funcs(funcMap).Parse(routesCsvTmpl))
var stopsCsv = template.Must(template.New("stops.csv.tmpl").Funcs(funcMap).Parse(stopsCsvTmpl))
var tripsCsv = template.Must(template.New("trips.csv.tmpl").Funcs(funcMap).Parse(tripsCsvTmpl))

// quote escapes a CSV field following RFC 4180.
func quote(s string) string {
	if !strings.ContainsAny(s, ",\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// CsvExport contains CSV exports of a cleaned feed. Routes and stops are keyed by their
// numeric IDs.
type CsvExport struct {
	RoutesCsv []byte
	StopsCsv  []byte
	TripsCsv  []byte
}

func ToCsv(static *gtfsclean.Static) (*CsvExport, error) {
	var routesB, stopsB, tripsB bytes.Buffer
	for _, t := range []struct {
		tmpl *template.Template
		b    *bytes.Buffer
		data any
	}{
		{routesCsv, &routesB, static.Routes},
		{stopsCsv, &stopsB, static.Stops},
		{tripsCsv, &tripsB, static.Trips},
	} {
		if err := t.tmpl.Execute(t.b, t.data); err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", t.tmpl.Name(), err)
		}
	}
	return &CsvExport{
		RoutesCsv: routesB.Bytes(),
		StopsCsv:  stopsB.Bytes(),
		TripsCsv:  tripsB.Bytes(),
	}, nil
}

// WriteDir writes routes.txt, stops.txt and trips.txt to dir, creating it if needed.
func (e *CsvExport) WriteDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	for name, content := range map[string][]byte{
		"routes.txt": e.RoutesCsv,
		"stops.txt":  e.StopsCsv,
		"trips.txt":  e.TripsCsv,
	} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, content, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}
