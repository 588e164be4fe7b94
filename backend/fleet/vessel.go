package fleet

import (
	"fmt"
	"time"

	"seatrack/backend/forecast"
)

// Status represents the current lifecycle state of a tracked vessel.
type Status string

const (
	StatusAtSea   Status = "at_sea"
	StatusInPort  Status = "in_port"
	StatusUnknown Status = "unknown"
)

// Event types accepted on incoming records. A sighting updates position
// only; departure and arrival also flip the vessel's status.
const (
	EventDeparture = "departure"
	EventArrival   = "arrival"
	EventSighting  = "sighting"
)

// Record is one ingested observation of a vessel.
type Record struct {
	ID       string    `json:"id"`
	VesselID string    `json:"vessel_id"`
	Lat      float64   `json:"latitude"`
	Lon      float64   `json:"longitude"`
	Time     time.Time `json:"timestamp"`
	Event    string    `json:"event_type,omitempty"`
	SpeedKn  float64   `json:"speed,omitempty"`
	DepthM   float64   `json:"depth,omitempty"`
	Color    string    `json:"color,omitempty"`
}

// Validate rejects records the registry cannot apply.
func (r Record) Validate() error {
	if r.VesselID == "" {
		return fmt.Errorf("record missing vessel id")
	}
	if r.Lat < -90 || r.Lat > 90 || r.Lon < -180 || r.Lon > 180 {
		return fmt.Errorf("coordinates out of range: lat=%.4f lon=%.4f", r.Lat, r.Lon)
	}
	switch r.Event {
	case "", EventDeparture, EventArrival, EventSighting:
		return nil
	default:
		return fmt.Errorf("unknown event type %q", r.Event)
	}
}

// Vessel is the registry's view of one tracked vessel. Snapshot copies are
// handed out by the Fleet; the canonical state lives behind its lock.
type Vessel struct {
	ID       string              `json:"id"`
	Status   Status              `json:"status"`
	Color    string              `json:"color,omitempty"`
	LastSeen time.Time           `json:"last_seen"`
	History  []forecast.Position `json:"-"`
}

// LastPosition returns the most recent fix, if any.
func (v *Vessel) LastPosition() (forecast.Position, bool) {
	if len(v.History) == 0 {
		return forecast.Position{}, false
	}
	return v.History[len(v.History)-1], true
}

// apply folds a validated record into the vessel state. History stays
// ordered because out-of-order records are rejected here.
func (v *Vessel) apply(rec Record) error {
	if len(v.History) > 0 && rec.Time.Before(v.History[len(v.History)-1].Time) {
		return fmt.Errorf("record for %s at %s predates last fix", v.ID, rec.Time.Format(time.RFC3339))
	}

	switch rec.Event {
	case EventDeparture:
		v.Status = StatusAtSea
	case EventArrival:
		v.Status = StatusInPort
	}
	if rec.Color != "" {
		v.Color = rec.Color
	}

	v.History = append(v.History, forecast.Position{
		Lat:     rec.Lat,
		Lon:     rec.Lon,
		Time:    rec.Time,
		SpeedKn: rec.SpeedKn,
		DepthM:  rec.DepthM,
	})
	v.LastSeen = rec.Time
	return nil
}
