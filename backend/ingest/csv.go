// Package ingest loads vessel observation records from CSV files. Column
// names are matched leniently so exports from different trackers load
// without preprocessing.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"seatrack/backend/fleet"
)

// timestampLayouts are tried in order when parsing record timestamps.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// vesselIDColumns are the header names accepted for the vessel identifier.
var vesselIDColumns = []string{"sub_id", "vessel_id", "submarine_id", "id", "name"}

// LoadCSV reads observation records from path. Rows with missing required
// fields, unparseable values, or out-of-range coordinates are logged and
// skipped; the loader only fails when the file itself is unreadable or the
// header lacks the required columns. A non-empty filter restricts the
// result to the listed vessel IDs.
func LoadCSV(path string, filter []string, logger *slog.Logger) ([]fleet.Record, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	records, err := parse(f, filter, logger)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	logger.Info("loaded records", "path", path, "count", len(records))
	return records, nil
}

func parse(r io.Reader, filter []string, logger *slog.Logger) ([]fleet.Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	idCol := -1
	for _, name := range vesselIDColumns {
		if i, ok := cols[name]; ok {
			idCol = i
			break
		}
	}
	latCol, latOK := cols["latitude"]
	lonCol, lonOK := cols["longitude"]
	if idCol < 0 || !latOK || !lonOK {
		return nil, fmt.Errorf("header must include a vessel id column, latitude, and longitude")
	}

	wanted := make(map[string]bool, len(filter))
	for _, id := range filter {
		wanted[id] = true
	}

	field := func(row []string, name string) string {
		if i, ok := cols[name]; ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	var records []fleet.Record
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			logger.Warn("skipping malformed row", "line", line, "err", err)
			continue
		}

		vesselID := strings.TrimSpace(row[idCol])
		if vesselID == "" {
			logger.Warn("skipping row without vessel id", "line", line)
			continue
		}
		if len(wanted) > 0 && !wanted[vesselID] {
			continue
		}

		lat, errLat := strconv.ParseFloat(strings.TrimSpace(row[latCol]), 64)
		lon, errLon := strconv.ParseFloat(strings.TrimSpace(row[lonCol]), 64)
		if errLat != nil || errLon != nil {
			logger.Warn("skipping row with non-numeric coordinates", "line", line, "vessel", vesselID)
			continue
		}

		rec := fleet.Record{
			ID:       uuid.NewString(),
			VesselID: vesselID,
			Lat:      lat,
			Lon:      lon,
			Event:    strings.ToLower(field(row, "event_type")),
			Color:    field(row, "color"),
		}

		if ts := field(row, "timestamp"); ts != "" {
			parsed, err := parseTimestamp(ts)
			if err != nil {
				logger.Warn("skipping row with bad timestamp", "line", line, "vessel", vesselID, "timestamp", ts)
				continue
			}
			rec.Time = parsed
		}
		if v := field(row, "speed"); v != "" {
			if kn, err := strconv.ParseFloat(v, 64); err == nil {
				rec.SpeedKn = kn
			}
		}
		if v := field(row, "depth"); v != "" {
			if m, err := strconv.ParseFloat(v, 64); err == nil {
				rec.DepthM = m
			}
		}

		if err := rec.Validate(); err != nil {
			logger.Warn("skipping invalid record", "line", line, "err", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}
