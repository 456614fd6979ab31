package feed

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/transitgit/pkg/errors"
	"github.com/matzehuels/transitgit/pkg/transit"
)

// GTFS files read by this package.
const (
	fileRoutes    = "routes.txt"
	fileTrips     = "trips.txt"
	fileStops     = "stops.txt"
	fileStopTimes = "stop_times.txt"
)

// ReadPath reads a feed from a directory or a .zip file.
func ReadPath(path string) (*Feed, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "feed %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "feed %s", path)
	}
	if info.IsDir() {
		return Read(os.DirFS(path))
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFeed, err, "open %s", filepath.Base(path))
	}
	defer zr.Close()
	return Read(zipRoot(&zr.Reader))
}

// ReadZip reads a feed from the bytes of a zip archive.
func ReadZip(data []byte) (*Feed, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFeed, err, "open feed archive")
	}
	return Read(zipRoot(zr))
}

// zipRoot descends into the single top-level directory some publishers wrap
// their feed in.
func zipRoot(zr *zip.Reader) fs.FS {
	if _, err := findFile(zr, fileStopTimes); err == nil {
		return zr
	}
	entries, err := fs.ReadDir(zr, ".")
	if err != nil || len(entries) != 1 || !entries[0].IsDir() {
		return zr
	}
	sub, err := fs.Sub(zr, entries[0].Name())
	if err != nil {
		return zr
	}
	return sub
}

// Read reads a feed from the root of fsys.
func Read(fsys fs.FS) (*Feed, error) {
	routes, err := readTable(fsys, fileRoutes, "route_id")
	if err != nil {
		return nil, err
	}
	trips, err := readTable(fsys, fileTrips, "route_id", "trip_id")
	if err != nil {
		return nil, err
	}
	stops, err := readTable(fsys, fileStops, "stop_id")
	if err != nil {
		return nil, err
	}
	times, err := readTable(fsys, fileStopTimes, "trip_id", "stop_id", "stop_sequence")
	if err != nil {
		return nil, err
	}

	f := &Feed{Routes: make(map[string]RouteInfo)}
	for _, row := range routes.rows {
		id := routes.get(row, "route_id")
		f.Routes[id] = RouteInfo{
			ID:        id,
			ShortName: routes.get(row, "route_short_name"),
			LongName:  routes.get(row, "route_long_name"),
		}
	}

	names := make(map[string]string, len(stops.rows))
	for _, row := range stops.rows {
		names[stops.get(row, "stop_id")] = stops.get(row, "stop_name")
	}

	type stopTime struct {
		seq  int
		stop string
	}
	byTrip := make(map[string][]stopTime)
	for i, row := range times.rows {
		seq, err := strconv.Atoi(times.get(row, "stop_sequence"))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFeed, err, "%s line %d: stop_sequence", fileStopTimes, i+2)
		}
		trip := times.get(row, "trip_id")
		byTrip[trip] = append(byTrip[trip], stopTime{seq: seq, stop: times.get(row, "stop_id")})
	}

	for _, row := range trips.rows {
		tripID := trips.get(row, "trip_id")
		routeID := trips.get(row, "route_id")
		info, ok := f.Routes[routeID]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidFeed, "%s: trip %s references unknown route %s", fileTrips, tripID, routeID)
		}
		f.Trips++

		sts := byTrip[tripID]
		if len(sts) == 0 {
			continue
		}
		slices.SortStableFunc(sts, func(a, b stopTime) int { return a.seq - b.seq })

		c := Candidate{Route: info, Trip: tripID, Headsign: trips.get(row, "trip_headsign")}
		for _, st := range sts {
			c.Stops = append(c.Stops, transit.Stop{ID: StopKey(st.stop), Name: stopName(names, st.stop)})
		}
		f.Candidates = append(f.Candidates, c)
	}

	slices.SortFunc(f.Candidates, func(a, b Candidate) int {
		if c := strings.Compare(a.Route.ID, b.Route.ID); c != 0 {
			return c
		}
		return strings.Compare(a.Trip, b.Trip)
	})
	return f, nil
}

// StopKey returns the identity of a stop: its ID up to the first ":".
// Feeds use the suffix for platforms or quays of the same stop.
func StopKey(id string) string {
	key, _, _ := strings.Cut(id, ":")
	return key
}

func stopName(names map[string]string, id string) string {
	if n := names[id]; n != "" {
		return n
	}
	return id
}

// table is a parsed CSV file with case-insensitive column lookup.
type table struct {
	cols map[string]int
	rows [][]string
}

func readTable(fsys fs.FS, name string, required ...string) (*table, error) {
	path, err := findFile(fsys, name)
	if err != nil {
		return nil, err
	}
	file, err := fsys.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFeed, err, "open %s", name)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if stderrors.Is(err, io.EOF) {
		return nil, errors.New(errors.ErrCodeInvalidFeed, "%s is empty", name)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFeed, err, "read %s", name)
	}

	t := &table{cols: make(map[string]int, len(header))}
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		t.cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range required {
		if _, ok := t.cols[col]; !ok {
			return nil, errors.New(errors.ErrCodeInvalidFeed, "%s: missing column %s", name, col)
		}
	}

	for {
		row, err := r.Read()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFeed, err, "read %s", name)
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

// get returns the trimmed value of col in row, or "" if either is missing.
func (t *table) get(row []string, col string) string {
	i, ok := t.cols[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// findFile locates name in the root of fsys, ignoring case.
func findFile(fsys fs.FS, name string) (string, error) {
	if _, err := fs.Stat(fsys, name); err == nil {
		return name, nil
	}
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidFeed, err, "list feed files")
	}
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(e.Name(), name) {
			return e.Name(), nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidFeed, "missing %s", name)
}
