package agency

// FieldKind is the semantic category of a text field being cleaned.
type FieldKind int32

const (
	FieldKind_RouteLongName FieldKind = 0
	FieldKind_TripHeadsign  FieldKind = 1
	FieldKind_StopName      FieldKind = 2
)

// ParseFieldKind parses the names accepted on the command line.
func ParseFieldKind(s string) (FieldKind, bool) {
	switch s {
	case "route", "route_long_name":
		return FieldKind_RouteLongName, true
	case "headsign", "trip_headsign":
		return FieldKind_TripHeadsign, true
	case "stop", "stop_name":
		return FieldKind_StopName, true
	default:
		return FieldKind_RouteLongName, false
	}
}

func (k FieldKind) String() string {
	switch k {
	case FieldKind_RouteLongName:
		return "ROUTE_LONG_NAME"
	case FieldKind_TripHeadsign:
		return "TRIP_HEADSIGN"
	case FieldKind_StopName:
		return "STOP_NAME"
	default:
		return "UNKNOWN"
	}
}
