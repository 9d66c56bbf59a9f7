package export

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jamespfennell/gtfsclean"
)

func newStatic() *gtfsclean.Static {
	a := gtfsclean.Agency{Id: "STLevis", Name: "STLévis", Color: "009CBE"}
	static := &gtfsclean.Static{
		Agencies: []gtfsclean.Agency{a},
		Routes: []gtfsclean.Route{
			{
				Id:        "r11",
				NumericId: 11,
				Agency:    &a,
				ShortName: "11",
				LongName:  "Lévis, Québec",
				Color:     "009CBE",
				TextColor: "000000",
				Type:      gtfsclean.RouteType_Bus,
			},
		},
		Stops: []gtfsclean.Stop{
			{
				Id:         "1234A",
				NumericId:  1234,
				OriginalId: "1234A",
				Name:       "Terminus Lagueux",
				Latitude:   ptr(46.75),
				Longitude:  ptr(-71.25),
			},
			{
				Id:         "12345-merged-1",
				NumericId:  12345,
				OriginalId: "12345",
				Code:       ptr("L1"),
				Name:       `Quai "A"`,
				Type:       gtfsclean.StopType_BoardingArea,
			},
		},
	}
	static.Stops[1].Parent = &static.Stops[0]
	static.Trips = []gtfsclean.Trip{
		{
			Id:                "t1",
			Route:             &static.Routes[0],
			ServiceId:         "weekday",
			Headsign:          "Lévis Rivière - St-J",
			DirectionId:       gtfsclean.DirectionID_True,
			DirectionHeadsign: "Lévis Rivière - St-J",
			LastStop:          &static.Stops[0],
		},
		{
			Id:                "t2",
			Route:             &static.Routes[0],
			ServiceId:         "school",
			DirectionHeadsign: "AM",
		},
	}
	return static
}

const expectedRoutesCsv = `route_id,agency_id,route_short_name,route_long_name,route_type,route_color,route_text_color,feed_route_id
11,STLevis,11,"Lévis, Québec",3,009CBE,000000,r11
`

const expectedStopsCsv = `stop_id,stop_code,stop_name,stop_lat,stop_lon,location_type,parent_station,original_stop_id
1234,,Terminus Lagueux,46.75,-71.25,0,,1234A
12345,L1,"Quai ""A""",,,4,1234,12345
`

const expectedTripsCsv = `trip_id,route_id,service_id,trip_headsign,direction_id,direction_headsign
t1,11,weekday,Lévis Rivière - St-J,1,Lévis Rivière - St-J
t2,11,school,,,AM
`

func TestCsvExport(t *testing.T) {
	result, err := ToCsv(newStatic())
	if err != nil {
		t.Fatalf("ToCsv() err = %v", err)
	}
	for _, tc := range []struct {
		name     string
		actual   []byte
		expected string
	}{
		{"routes", result.RoutesCsv, expectedRoutesCsv},
		{"stops", result.StopsCsv, expectedStopsCsv},
		{"trips", result.TripsCsv, expectedTripsCsv},
	} {
		if diff := cmp.Diff(tc.expected, string(tc.actual)); diff != "" {
			t.Errorf("%s CSV diff = %s", tc.name, diff)
		}
	}

	dir := filepath.Join(t.TempDir(), "out")
	if err := result.WriteDir(dir); err != nil {
		t.Fatalf("WriteDir() err = %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "routes.txt"))
	if err != nil {
		t.Fatalf("failed to read routes.txt: %v", err)
	}
	if string(b) != expectedRoutesCsv {
		t.Errorf("routes.txt = %q", b)
	}
}

func TestSQLiteExport(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "stlevis.db")
	// Exporting twice replaces the rows of the first export.
	for i := 0; i < 2; i++ {
		if err := ToSQLite(ctx, path, newStatic()); err != nil {
			t.Fatalf("ToSQLite() err = %v", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	type stopRow struct {
		FeedStopID string
		StopID     int
		Name       string
		Parent     sql.NullInt64
	}
	rows, err := db.QueryContext(ctx, "SELECT feed_stop_id, stop_id, name, parent_stop_id FROM stops ORDER BY stop_id")
	if err != nil {
		t.Fatalf("query err = %v", err)
	}
	defer rows.Close()
	var stops []stopRow
	for rows.Next() {
		var s stopRow
		if err := rows.Scan(&s.FeedStopID, &s.StopID, &s.Name, &s.Parent); err != nil {
			t.Fatalf("scan err = %v", err)
		}
		stops = append(stops, s)
	}
	expectedStops := []stopRow{
		{FeedStopID: "1234A", StopID: 1234, Name: "Terminus Lagueux"},
		{FeedStopID: "12345-merged-1", StopID: 12345, Name: `Quai "A"`, Parent: sql.NullInt64{Int64: 1234, Valid: true}},
	}
	if diff := cmp.Diff(expectedStops, stops); diff != "" {
		t.Errorf("stops diff = %s", diff)
	}

	var routeID int64
	var longName string
	if err := db.QueryRowContext(ctx, "SELECT route_id, long_name FROM routes WHERE feed_route_id = 'r11'").Scan(&routeID, &longName); err != nil {
		t.Fatalf("query err = %v", err)
	}
	if routeID != 11 || longName != "Lévis, Québec" {
		t.Errorf("route = %d, %q", routeID, longName)
	}

	var numTrips int
	var directionID sql.NullInt64
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM trips").Scan(&numTrips); err != nil {
		t.Fatalf("query err = %v", err)
	}
	if numTrips != 2 {
		t.Errorf("trips = %d, want 2", numTrips)
	}
	if err := db.QueryRowContext(ctx, "SELECT direction_id FROM trips WHERE trip_id = 't2'").Scan(&directionID); err != nil {
		t.Fatalf("query err = %v", err)
	}
	if directionID.Valid {
		t.Errorf("direction_id of t2 = %d, want NULL", directionID.Int64)
	}
}

func ptr[T any](t T) *T {
	return &t
}
