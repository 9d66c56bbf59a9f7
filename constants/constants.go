// Package constants contains the names of the GTFS static files read by the cleaner.
package constants

type StaticFile string

const (
	AgencyFile    StaticFile = "agency.txt"
	RoutesFile    StaticFile = "routes.txt"
	StopsFile     StaticFile = "stops.txt"
	TripsFile     StaticFile = "trips.txt"
	StopTimesFile StaticFile = "stop_times.txt"
)

// Entity is the kind of record a row of a static file describes.
type Entity string

const (
	Agency   Entity = "agency"
	Route    Entity = "route"
	Stop     Entity = "stop"
	Trip     Entity = "trip"
	StopTime Entity = "stop_time"
)

// EntityOf returns the kind of record stored in the file.
func EntityOf(f StaticFile) Entity {
	switch f {
	case AgencyFile:
		return Agency
	case RoutesFile:
		return Route
	case StopsFile:
		return Stop
	case StopTimesFile:
		return StopTime
	default:
		return Trip
	}
}
