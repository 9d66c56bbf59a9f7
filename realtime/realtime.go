// Package realtime resolves the route and stop identifiers of GTFS realtime messages to the
// numeric identifiers of the cleaned schedule.
package realtime

import (
	"fmt"
	"log"
	"time"

	gtfsrt "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/jamespfennell/gtfsclean"
	"github.com/jamespfennell/gtfsclean/agency"
	"google.golang.org/protobuf/proto"
)

// Realtime contains the resolved content of a single GTFS realtime message.
type Realtime struct {
	CreatedAt time.Time

	Trips []Trip

	Vehicles []Vehicle

	// Skipped lists the entities dropped because of a fatal error.
	Skipped []SkippedEntity
}

type Trip struct {
	ID          string
	RouteID     *int64
	DirectionID gtfsclean.DirectionID

	StopTimeUpdates []StopTimeUpdate
}

type StopTimeUpdate struct {
	StopSequence *uint32
	StopID       *int
	Arrival      *StopTimeEvent
	Departure    *StopTimeEvent
}

type StopTimeEvent struct {
	Time  *time.Time
	Delay *time.Duration
}

type Vehicle struct {
	ID    string
	Label string

	TripID  string
	RouteID *int64
	StopID  *int

	// Degrees North and East, in the WGS-84 coordinate system.
	Latitude  *float32
	Longitude *float32

	Timestamp *time.Time
}

type SkippedEntity struct {
	EntityID string
	Err      error
}

type ParseRealtimeOptions struct {
	// The agency used to derive identifiers.
	//
	// It can be nil, in which case agency.Default is used.
	Agency agency.Agency

	// The cleaned schedule the message refers to.
	//
	// It can be nil, in which case route IDs are derived by the agency from the route_id field.
	Static *gtfsclean.Static

	FatalPolicy gtfsclean.FatalPolicy
}

// Parse parses a GTFS realtime message and resolves its identifiers.
func Parse(content []byte, opts ParseRealtimeOptions) (*Realtime, error) {
	message := &gtfsrt.FeedMessage{}
	if err := proto.Unmarshal(content, message); err != nil {
		return nil, fmt.Errorf("failed to parse GTFS realtime message: %w", err)
	}
	r := newResolver(opts)
	result := &Realtime{
		CreatedAt: time.Unix(int64(message.GetHeader().GetTimestamp()), 0).UTC(),
	}
	for _, entity := range message.Entity {
		var err error
		if tripUpdate := entity.GetTripUpdate(); tripUpdate != nil {
			var trip Trip
			trip, err = r.trip(tripUpdate)
			if err == nil {
				result.Trips = append(result.Trips, trip)
			}
		}
		if vehicle := entity.GetVehicle(); vehicle != nil && err == nil {
			var v Vehicle
			v, err = r.vehicle(vehicle)
			if err == nil {
				result.Vehicles = append(result.Vehicles, v)
			}
		}
		if err == nil {
			continue
		}
		if opts.FatalPolicy == gtfsclean.FatalPolicy_SkipRecord && agency.IsFatal(err) {
			log.Printf("skipping entity %q: %s", entity.GetId(), err)
			result.Skipped = append(result.Skipped, SkippedEntity{EntityID: entity.GetId(), Err: err})
			continue
		}
		return nil, fmt.Errorf("entity %q: %w", entity.GetId(), err)
	}
	return result, nil
}

type resolver struct {
	agency       agency.Agency
	routeIDs     map[string]int64
	tripRouteIDs map[string]int64
}

func newResolver(opts ParseRealtimeOptions) *resolver {
	r := &resolver{
		agency:       opts.Agency,
		routeIDs:     map[string]int64{},
		tripRouteIDs: map[string]int64{},
	}
	if r.agency == nil {
		r.agency = agency.Default(agency.Info{})
	}
	if opts.Static != nil {
		for _, route := range opts.Static.Routes {
			r.routeIDs[route.Id] = route.NumericId
		}
		for _, trip := range opts.Static.Trips {
			r.tripRouteIDs[trip.Id] = trip.Route.NumericId
		}
	}
	return r
}

// routeID resolves the route of a trip descriptor. The route_id field is looked up in the
// schedule and then passed to the agency; without it the route of the scheduled trip is used.
func (r *resolver) routeID(trip *gtfsrt.TripDescriptor) (*int64, error) {
	if routeID := trip.GetRouteId(); routeID != "" {
		if id, ok := r.routeIDs[routeID]; ok {
			return &id, nil
		}
		id, err := r.agency.RouteID(routeID)
		if err != nil {
			return nil, err
		}
		return &id, nil
	}
	if id, ok := r.tripRouteIDs[trip.GetTripId()]; ok {
		return &id, nil
	}
	return nil, nil
}

func (r *resolver) stopID(raw *string) (*int, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := r.agency.StopID(*raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (r *resolver) trip(tripUpdate *gtfsrt.TripUpdate) (Trip, error) {
	descriptor := tripUpdate.GetTrip()
	routeID, err := r.routeID(descriptor)
	if err != nil {
		return Trip{}, err
	}
	trip := Trip{
		ID:          descriptor.GetTripId(),
		RouteID:     routeID,
		DirectionID: gtfsclean.DirectionIDFromRealtime(descriptor.DirectionId),
	}
	for _, update := range tripUpdate.GetStopTimeUpdate() {
		stopID, err := r.stopID(update.StopId)
		if err != nil {
			return Trip{}, err
		}
		trip.StopTimeUpdates = append(trip.StopTimeUpdates, StopTimeUpdate{
			StopSequence: update.StopSequence,
			StopID:       stopID,
			Arrival:      convertStopTimeEvent(update.GetArrival()),
			Departure:    convertStopTimeEvent(update.GetDeparture()),
		})
	}
	return trip, nil
}

func (r *resolver) vehicle(position *gtfsrt.VehiclePosition) (Vehicle, error) {
	v := Vehicle{
		ID:     position.GetVehicle().GetId(),
		Label:  position.GetVehicle().GetLabel(),
		TripID: position.GetTrip().GetTripId(),
	}
	if position.Trip != nil {
		routeID, err := r.routeID(position.Trip)
		if err != nil {
			return Vehicle{}, err
		}
		v.RouteID = routeID
	}
	stopID, err := r.stopID(position.StopId)
	if err != nil {
		return Vehicle{}, err
	}
	v.StopID = stopID
	if p := position.GetPosition(); p != nil {
		v.Latitude = p.Latitude
		v.Longitude = p.Longitude
	}
	if position.Timestamp != nil {
		t := time.Unix(int64(*position.Timestamp), 0).UTC()
		v.Timestamp = &t
	}
	return v, nil
}

func convertStopTimeEvent(event *gtfsrt.TripUpdate_StopTimeEvent) *StopTimeEvent {
	if event == nil {
		return nil
	}
	result := &StopTimeEvent{}
	if event.Time != nil {
		t := time.Unix(*event.Time, 0).UTC()
		result.Time = &t
	}
	if event.Delay != nil {
		d := time.Duration(*event.Delay) * time.Second
		result.Delay = &d
	}
	return result
}
