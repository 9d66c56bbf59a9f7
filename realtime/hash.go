package realtime

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash"
	"time"
)

// Hash calculates a hash of the resolved message using the provided hash function.
//
// CreatedAt and Skipped are ignored, so two messages resolving to the same trips and vehicles
// have the same hash.
func (r *Realtime) Hash(h hash.Hash) {
	s := hasher{h: h}
	s.number(int64(len(r.Trips)))
	for i := range r.Trips {
		s.trip(&r.Trips[i])
	}
	s.number(int64(len(r.Vehicles)))
	for i := range r.Vehicles {
		s.vehicle(&r.Vehicles[i])
	}
	s.flush()
}

// Hash calculates a hash of a trip using the provided hash function.
func (t *Trip) Hash(h hash.Hash) {
	s := hasher{h: h}
	s.trip(t)
	s.flush()
}

// Hash calculates a hash of a vehicle using the provided hash function.
func (v *Vehicle) Hash(h hash.Hash) {
	s := hasher{h: h}
	s.vehicle(v)
	s.flush()
}

type hasher struct {
	h hash.Hash
	b bytes.Buffer
}

func (h *hasher) flush() {
	h.h.Write(h.b.Bytes())
	h.b.Reset()
}

func (h *hasher) trip(t *Trip) {
	h.string(t.ID)
	hashNumberPtr(h, t.RouteID)
	h.number(t.DirectionID)
	h.number(int64(len(t.StopTimeUpdates)))
	for i := range t.StopTimeUpdates {
		stu := &t.StopTimeUpdates[i]
		hashNumberPtr(h, stu.StopSequence)
		h.intPtr(stu.StopID)
		for _, event := range []*StopTimeEvent{stu.Arrival, stu.Departure} {
			h.number(event == nil)
			if event == nil {
				continue
			}
			h.timePtr(event.Time)
			var dp *int64
			if event.Delay != nil {
				d := int64(*event.Delay)
				dp = &d
			}
			hashNumberPtr(h, dp)
		}
	}
}

func (h *hasher) vehicle(v *Vehicle) {
	h.string(v.ID)
	h.string(v.Label)
	h.string(v.TripID)
	hashNumberPtr(h, v.RouteID)
	h.intPtr(v.StopID)
	hashNumberPtr(h, v.Latitude)
	hashNumberPtr(h, v.Longitude)
	h.timePtr(v.Timestamp)
}

func (h *hasher) string(s string) {
	h.number(uint64(len(s)))
	h.flush()
	h.h.Write([]byte(s))
}

func hashNumberPtr[T any](h *hasher, a *T) {
	h.number(a == nil)
	if a != nil {
		h.number(*a)
	}
}

// binary.Write does not accept int, which has no fixed size.
func (h *hasher) intPtr(a *int) {
	var ip *int64
	if a != nil {
		i := int64(*a)
		ip = &i
	}
	hashNumberPtr(h, ip)
}

func (h *hasher) number(a any) {
	err := binary.Write(&h.b, binary.LittleEndian, a)
	if err != nil {
		panic(fmt.Sprintf("failed to hash %T", a))
	}
}

func (h *hasher) timePtr(t *time.Time) {
	var up *int64
	if t != nil {
		u := t.Unix()
		up = &u
	}
	hashNumberPtr(h, up)
}
