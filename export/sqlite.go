package export

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log"

	"github.com/jamespfennell/gtfsclean"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// ToSQLite writes the cleaned feed to the SQLite database at path. Existing rows are replaced.
func ToSQLite(ctx context.Context, path string, static *gtfsclean.Static) error {
	conn, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer conn.Close()
	conn.SetMaxOpenConns(1)

	if _, err := conn.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"trips", "stops", "routes"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	if err := insertRoutes(ctx, tx, static.Routes); err != nil {
		return err
	}
	if err := insertStops(ctx, tx, static.Stops); err != nil {
		return err
	}
	if err := insertTrips(ctx, tx, static.Trips); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	log.Printf("Wrote %d routes, %d stops and %d trips to %s", len(static.Routes), len(static.Stops), len(static.Trips), path)
	return nil
}

func insertRoutes(ctx context.Context, tx *sql.Tx, routes []gtfsclean.Route) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO routes (feed_route_id, route_id, agency_id, short_name, long_name, route_type, color, text_color)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare routes insert: %w", err)
	}
	defer stmt.Close()
	for _, r := range routes {
		var agencyID string
		if r.Agency != nil {
			agencyID = r.Agency.Id
		}
		if _, err := stmt.ExecContext(ctx, r.Id, r.NumericId, agencyID, r.ShortName, r.LongName, int32(r.Type), r.Color, r.TextColor); err != nil {
			return fmt.Errorf("failed to insert route %q: %w", r.Id, err)
		}
	}
	return nil
}

func insertStops(ctx context.Context, tx *sql.Tx, stops []gtfsclean.Stop) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO stops (feed_stop_id, stop_id, original_stop_id, code, name, latitude, longitude, location_type, parent_stop_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare stops insert: %w", err)
	}
	defer stmt.Close()
	for _, s := range stops {
		var parentID sql.NullInt64
		if s.Parent != nil {
			parentID = sql.NullInt64{Int64: int64(s.Parent.NumericId), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, s.Id, s.NumericId, s.OriginalId, nullString(s.Code), s.Name,
			nullFloat(s.Latitude), nullFloat(s.Longitude), int32(s.Type), parentID); err != nil {
			return fmt.Errorf("failed to insert stop %q: %w", s.Id, err)
		}
	}
	return nil
}

func insertTrips(ctx context.Context, tx *sql.Tx, trips []gtfsclean.Trip) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trips (trip_id, feed_route_id, service_id, headsign, direction_id, direction_headsign, last_stop_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare trips insert: %w", err)
	}
	defer stmt.Close()
	for _, t := range trips {
		var directionID, lastStopID sql.NullInt64
		if t.DirectionId != gtfsclean.DirectionID_Unspecified {
			directionID = sql.NullInt64{Int64: int64(t.DirectionId.Int()), Valid: true}
		}
		if t.LastStop != nil {
			lastStopID = sql.NullInt64{Int64: int64(t.LastStop.NumericId), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, t.Id, t.Route.Id, t.ServiceId, t.Headsign, directionID, t.DirectionHeadsign, lastStopID); err != nil {
			return fmt.Errorf("failed to insert trip %q: %w", t.Id, err)
		}
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
