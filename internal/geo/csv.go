// File: internal/geo/csv.go
package geo

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadCSV parses "zip,latitude,longitude" rows. A header row is skipped if
// its latitude column is not numeric.
func ReadCSV(r io.Reader) ([]ZipGeo, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows []ZipGeo
	line := 0
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading zip csv: %w", err)
		}
		line++
		if len(rec) < 3 {
			return nil, fmt.Errorf("zip csv line %d: expected 3 columns, got %d", line, len(rec))
		}
		lat, latErr := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		lon, lonErr := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if latErr != nil || lonErr != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("zip csv line %d: invalid coordinates %q,%q", line, rec[1], rec[2])
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return nil, fmt.Errorf("zip csv line %d: coordinates out of range", line)
		}
		zip := NormalizeZip(rec[0])
		if zip == "" {
			return nil, fmt.Errorf("zip csv line %d: empty zip", line)
		}
		rows = append(rows, ZipGeo{Zip: zip, Latitude: lat, Longitude: lon})
	}
	return rows, nil
}
