package fleet

import (
	"testing"
	"time"
)

func rec(vessel string, lat, lon float64, hoursAfter float64, event string) Record {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return Record{
		ID:       "r",
		VesselID: vessel,
		Lat:      lat,
		Lon:      lon,
		Time:     base.Add(time.Duration(hoursAfter * float64(time.Hour))),
		Event:    event,
	}
}

func TestUpdateFromRecordsCreatesVessels(t *testing.T) {
	f := New()
	applied := f.UpdateFromRecords([]Record{
		rec("Jin1", 18.2, 109.5, 0, EventDeparture),
		rec("Jin1", 17.5, 110.0, 6, EventSighting),
		rec("Jin2", 36.1, 120.6, 0, ""),
	})

	if applied != 3 {
		t.Fatalf("expected 3 records applied, got %d", applied)
	}
	if f.Len() != 2 {
		t.Fatalf("expected 2 vessels, got %d", f.Len())
	}

	v, ok := f.Vessel("Jin1")
	if !ok {
		t.Fatalf("Jin1 not tracked")
	}
	if v.Status != StatusAtSea {
		t.Fatalf("departure should mark vessel at sea, got %s", v.Status)
	}
	if len(v.History) != 2 {
		t.Fatalf("expected 2 fixes, got %d", len(v.History))
	}
	if pos, _ := v.LastPosition(); pos.Lat != 17.5 {
		t.Fatalf("unexpected last position: %+v", pos)
	}
}

func TestUpdateFromRecordsSkipsInvalid(t *testing.T) {
	f := New()
	applied := f.UpdateFromRecords([]Record{
		rec("Jin1", 18.2, 109.5, 2, EventSighting),
		rec("", 18.2, 109.5, 2.5, EventSighting),     // missing id
		rec("Jin1", 120, 109.5, 3, EventSighting),    // latitude out of range
		rec("Jin1", 18.0, 109.6, 3, "teleportation"), // unknown event
		rec("Jin1", 17.9, 109.7, 1, EventSighting),   // predates last fix
		rec("Jin1", 17.8, 109.8, 4, EventArrival),
	})

	if applied != 2 {
		t.Fatalf("expected 2 records applied, got %d", applied)
	}
	v, _ := f.Vessel("Jin1")
	if v.Status != StatusInPort {
		t.Fatalf("arrival should mark vessel in port, got %s", v.Status)
	}
	if len(v.History) != 2 {
		t.Fatalf("expected 2 fixes, got %d", len(v.History))
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	f := New()
	f.UpdateFromRecords([]Record{rec("Jin1", 18.2, 109.5, 0, EventSighting)})

	snap := f.Snapshot()
	snap[0].History[0].Lat = -40

	v, _ := f.Vessel("Jin1")
	if v.History[0].Lat != 18.2 {
		t.Fatalf("mutating a snapshot must not affect the registry")
	}
}

func TestAddRejectsDuplicates(t *testing.T) {
	f := New()
	if _, err := f.Add("Jin1"); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if _, err := f.Add("Jin1"); err == nil {
		t.Fatalf("expected duplicate add to fail")
	}
}

func TestReportCountsAndBaseProximity(t *testing.T) {
	f := New()
	f.UpdateFromRecords([]Record{
		rec("Jin1", 15.0, 113.0, 0, EventDeparture),
		// A fix right at Yulin with no status event: reported in port.
		rec("Jin2", 18.2253, 109.5292, 0, ""),
	})

	report := f.Report()
	if report.Total != 2 {
		t.Fatalf("expected 2 vessels, got %d", report.Total)
	}
	if report.AtSea != 1 {
		t.Fatalf("expected 1 at sea, got %d", report.AtSea)
	}
	if report.InPort != 1 {
		t.Fatalf("expected 1 in port via base proximity, got %d", report.InPort)
	}
	if report.Vessels["Jin2"].NearestBase != "Yulin" {
		t.Fatalf("expected Jin2 near Yulin, got %q", report.Vessels["Jin2"].NearestBase)
	}
}

func TestNearestBase(t *testing.T) {
	name, dKm := NearestBase(18.23, 109.53)
	if name != "Yulin" {
		t.Fatalf("expected Yulin, got %s", name)
	}
	if dKm > 5 {
		t.Fatalf("expected to be within detection radius, got %.2f km", dKm)
	}
}
