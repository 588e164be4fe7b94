// Package fleet keeps the in-memory registry of tracked vessels and their
// observation histories, feeding the forecast engine.
package fleet

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"seatrack/backend/forecast"
)

// Fleet is the thread-safe registry of tracked vessels.
type Fleet struct {
	mu      sync.RWMutex
	vessels map[string]*Vessel
	logger  *slog.Logger
}

// New returns an empty fleet.
func New() *Fleet {
	return &Fleet{
		vessels: make(map[string]*Vessel),
		logger:  slog.Default(),
	}
}

// WithLogger configures structured logging.
func (f *Fleet) WithLogger(logger *slog.Logger) *Fleet {
	if logger != nil {
		f.logger = logger
	}
	return f
}

// Add registers a new vessel. Duplicate IDs are rejected.
func (f *Fleet) Add(id string) (*Vessel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.vessels[id]; ok {
		return nil, fmt.Errorf("vessel %s already tracked", id)
	}
	v := &Vessel{ID: id, Status: StatusUnknown}
	f.vessels[id] = v
	return v, nil
}

// Len returns the number of tracked vessels.
func (f *Fleet) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.vessels)
}

// Snapshot returns copies of all vessels ordered by ID. Histories are
// copied shallowly; positions are immutable once recorded.
func (f *Fleet) Snapshot() []Vessel {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Vessel, 0, len(f.vessels))
	for _, v := range f.vessels {
		cp := *v
		cp.History = append([]forecast.Position(nil), v.History...)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Vessel returns a copy of one vessel by ID.
func (f *Fleet) Vessel(id string) (Vessel, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.vessels[id]
	if !ok {
		return Vessel{}, false
	}
	cp := *v
	cp.History = append([]forecast.Position(nil), v.History...)
	return cp, true
}

// History returns a copy of the vessel's ordered fix history.
func (f *Fleet) History(id string) ([]forecast.Position, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.vessels[id]
	if !ok {
		return nil, false
	}
	return append([]forecast.Position(nil), v.History...), true
}

// UpdateFromRecords folds a batch of observation records into the registry,
// creating vessels on first sight. Invalid records are logged and skipped;
// the rest of the batch still applies. Returns the number applied.
func (f *Fleet) UpdateFromRecords(records []Record) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	applied := 0
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			f.logger.Warn("skipping record", "err", err, "record_id", rec.ID)
			continue
		}
		v, ok := f.vessels[rec.VesselID]
		if !ok {
			v = &Vessel{ID: rec.VesselID, Status: StatusUnknown}
			f.vessels[rec.VesselID] = v
			f.logger.Info("tracking new vessel", "vessel", rec.VesselID)
		}
		if err := v.apply(rec); err != nil {
			f.logger.Warn("skipping record", "err", err, "record_id", rec.ID)
			continue
		}
		applied++
	}
	return applied
}

// StatusReport summarizes the fleet for the API layer.
type StatusReport struct {
	Total   int                     `json:"total"`
	AtSea   int                     `json:"at_sea"`
	InPort  int                     `json:"in_port"`
	Vessels map[string]VesselStatus `json:"vessels"`
}

// VesselStatus is one vessel's row in the status report.
type VesselStatus struct {
	Status      Status    `json:"status"`
	LastSeen    string    `json:"last_seen,omitempty"`
	Position    []float64 `json:"position,omitempty"`
	NearestBase string    `json:"nearest_base,omitempty"`
}

// Report builds a status report. Vessels with an unknown status but a last
// fix inside a base's detection radius are reported in port.
func (f *Fleet) Report() StatusReport {
	f.mu.RLock()
	defer f.mu.RUnlock()

	report := StatusReport{Vessels: make(map[string]VesselStatus, len(f.vessels))}
	for id, v := range f.vessels {
		status := v.Status
		vs := VesselStatus{Status: status}
		if pos, ok := v.LastPosition(); ok {
			vs.Position = []float64{pos.Lat, pos.Lon}
			vs.LastSeen = pos.Time.UTC().Format("2006-01-02T15:04:05Z")
			if base, dKm := NearestBase(pos.Lat, pos.Lon); dKm <= BaseDetectionRadiusKm {
				vs.NearestBase = base
				if status == StatusUnknown {
					status = StatusInPort
					vs.Status = status
				}
			}
		}
		switch status {
		case StatusAtSea:
			report.AtSea++
		case StatusInPort:
			report.InPort++
		}
		report.Vessels[id] = vs
	}
	report.Total = len(f.vessels)
	return report
}

// AtSea returns copies of all vessels currently at sea.
func (f *Fleet) AtSea() []Vessel {
	var out []Vessel
	for _, v := range f.Snapshot() {
		if v.Status == StatusAtSea {
			out = append(out, v)
		}
	}
	return out
}
