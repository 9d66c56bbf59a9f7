package gtfsclean

// DirectionID distinguishes between trips of a route going in opposite directions.
type DirectionID uint8

const (
	DirectionID_Unspecified DirectionID = 0
	DirectionID_True        DirectionID = 1
	DirectionID_False       DirectionID = 2
)

func parseDirectionID_GTFSStatic(s string) DirectionID {
	switch s {
	case "0":
		return DirectionID_False
	case "1":
		return DirectionID_True
	default:
		return DirectionID_Unspecified
	}
}

// DirectionIDFromRealtime converts the direction_id of a GTFS realtime trip descriptor.
func DirectionIDFromRealtime(raw *uint32) DirectionID {
	if raw == nil {
		return DirectionID_Unspecified
	}
	if *raw == 0 {
		return DirectionID_False
	}
	return DirectionID_True
}

// Int returns the GTFS value of the direction. An unspecified direction is 0.
func (d DirectionID) Int() int {
	if d == DirectionID_True {
		return 1
	}
	return 0
}

func (d DirectionID) String() string {
	switch d {
	case DirectionID_True:
		return "TRUE"
	case DirectionID_False:
		return "FALSE"
	default:
		return "UNSPECIFIED"
	}
}

// RouteType describes the type of vehicles used on a route.
//
// This is a Go representation of the enum described in the `route_type` field of `routes.txt`.
type RouteType int32

const (
	RouteType_Tram       RouteType = 0
	RouteType_Subway     RouteType = 1
	RouteType_Rail       RouteType = 2
	RouteType_Bus        RouteType = 3
	RouteType_Ferry      RouteType = 4
	RouteType_CableTram  RouteType = 5
	RouteType_AerialLift RouteType = 6
	RouteType_Funicular  RouteType = 7
	RouteType_TrolleyBus RouteType = 11
	RouteType_Monorail   RouteType = 12

	RouteType_Unknown RouteType = 10000
)

func parseRouteType(s string) RouteType {
	switch s {
	case "0":
		return RouteType_Tram
	case "1":
		return RouteType_Subway
	case "2":
		return RouteType_Rail
	case "3":
		return RouteType_Bus
	case "4":
		return RouteType_Ferry
	case "5":
		return RouteType_CableTram
	case "6":
		return RouteType_AerialLift
	case "7":
		return RouteType_Funicular
	case "11":
		return RouteType_TrolleyBus
	case "12":
		return RouteType_Monorail
	default:
		return RouteType_Unknown
	}
}

func (t RouteType) String() string {
	switch t {
	case RouteType_Tram:
		return "TRAM"
	case RouteType_Subway:
		return "SUBWAY"
	case RouteType_Rail:
		return "RAIL"
	case RouteType_Bus:
		return "BUS"
	case RouteType_Ferry:
		return "FERRY"
	case RouteType_CableTram:
		return "CABLE_TRAM"
	case RouteType_AerialLift:
		return "AERIAL_LIFT"
	case RouteType_Funicular:
		return "FUNICULAR"
	case RouteType_TrolleyBus:
		return "TROLLEY_BUS"
	case RouteType_Monorail:
		return "MONORAIL"
	default:
		return "UNKNOWN"
	}
}

// StopType describes the type of a stop.
//
// This is a Go representation of the enum described in the `location_type` field of `stops.txt`.
type StopType int32

const (
	StopType_Stop           StopType = 0
	StopType_Station        StopType = 1
	StopType_EntranceOrExit StopType = 2
	StopType_GenericNode    StopType = 3
	StopType_BoardingArea   StopType = 4
)

func parseStopType(s string) StopType {
	switch s {
	case "1":
		return StopType_Station
	case "2":
		return StopType_EntranceOrExit
	case "3":
		return StopType_GenericNode
	case "4":
		return StopType_BoardingArea
	default:
		return StopType_Stop
	}
}

func (t StopType) String() string {
	switch t {
	case StopType_Stop:
		return "STOP"
	case StopType_Station:
		return "STATION"
	case StopType_EntranceOrExit:
		return "ENTRANCE_OR_EXIT"
	case StopType_GenericNode:
		return "GENERIC_NODE"
	case StopType_BoardingArea:
		return "BOARDING_AREA"
	default:
		return "UNKNOWN"
	}
}

// FatalPolicy decides what happens when a record fails with an agency.FatalError.
type FatalPolicy int32

const (
	// Return the error and stop parsing.
	FatalPolicy_AbortRun FatalPolicy = 0
	// Drop the record, report a warnings.FatalRecordSkipped and continue.
	FatalPolicy_SkipRecord FatalPolicy = 1
)

// ParseFatalPolicy parses the name of a policy as accepted on the command line.
func ParseFatalPolicy(s string) (FatalPolicy, bool) {
	switch s {
	case "abort", "":
		return FatalPolicy_AbortRun, true
	case "skip":
		return FatalPolicy_SkipRecord, true
	default:
		return FatalPolicy_AbortRun, false
	}
}

func (p FatalPolicy) String() string {
	switch p {
	case FatalPolicy_AbortRun:
		return "ABORT_RUN"
	case FatalPolicy_SkipRecord:
		return "SKIP_RECORD"
	default:
		return "UNKNOWN"
	}
}
