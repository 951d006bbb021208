package gtfs

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"go.uber.org/zap"

	"github.com/theoremus-urban-solutions/transit-fusion/errs"
)

const requiredFile = "stops.txt"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadDataset parses the extracted feed in dir into a Dataset for agencyCode.
// It does not install the dataset anywhere; see Store.Load.
func LoadDataset(agencyCode, dir string, logger *zap.Logger) (*Dataset, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errs.Wrap(errs.ErrFileNotFound, err, "feed directory %s", dir)
	}
	if !info.IsDir() {
		return nil, errs.Wrap(errs.ErrFileNotFound, nil, "%s is not a directory", dir)
	}
	if _, err := os.Stat(filepath.Join(dir, requiredFile)); err != nil {
		return nil, errs.Wrap(errs.ErrFileNotFound, err, "%s in %s", requiredFile, dir)
	}

	start := time.Now()
	var raw rawFeed
	for _, name := range feedFiles {
		path := filepath.Join(dir, name)
		n, err := raw.parseCSVFile(name, path)
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("optional file missing", zap.String("file_name", name))
			continue
		}
		if err != nil {
			return nil, errs.Wrap(errs.ErrParse, err, "%s", path)
		}
		logger.Debug("parsed csv file", zap.String("file_name", name), zap.Int("rows", n))
	}

	ds, err := newDataset(agencyCode, &raw)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded GTFS dataset",
		zap.String("agency", agencyCode),
		zap.Int("stops", len(ds.Stops)),
		zap.Int("routes", len(ds.Routes)),
		zap.Int("trips", len(ds.Trips)),
		zap.Int("stop_times", len(ds.StopTimes)),
		zap.Duration("duration", time.Since(start)),
	)
	return ds, nil
}

var feedFiles = []string{
	"agency.txt",
	"stops.txt",
	"routes.txt",
	"trips.txt",
	"stop_times.txt",
	"calendar.txt",
	"calendar_dates.txt",
}

// rawFeed holds the unindexed rows of every file.
type rawFeed struct {
	Agencies      []*Agency
	Stops         []*Stop
	Routes        []*Route
	Trips         []*Trip
	StopTimes     []*StopTime
	Calendar      []*Calendar
	CalendarDates []*CalendarDate
}

func (raw *rawFeed) parseCSVFile(name, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()
	return raw.parseFile(name, f)
}

func (raw *rawFeed) parseFile(name string, contents io.Reader) (int, error) {
	r := gtfsCSVReader(contents)
	var err error
	var n int
	switch name {
	case "agency.txt":
		err = gocsv.UnmarshalCSV(r, &raw.Agencies)
		n = len(raw.Agencies)
	case "stops.txt":
		err = gocsv.UnmarshalCSV(r, &raw.Stops)
		n = len(raw.Stops)
	case "routes.txt":
		err = gocsv.UnmarshalCSV(r, &raw.Routes)
		n = len(raw.Routes)
	case "trips.txt":
		err = gocsv.UnmarshalCSV(r, &raw.Trips)
		n = len(raw.Trips)
	case "stop_times.txt":
		hr := &headerReader{CSVReader: r}
		err = gocsv.UnmarshalCSV(hr, &raw.StopTimes)
		n = len(raw.StopTimes)
		raw.clearMissingTimes(hr)
	case "calendar.txt":
		err = gocsv.UnmarshalCSV(r, &raw.Calendar)
		n = len(raw.Calendar)
	case "calendar_dates.txt":
		err = gocsv.UnmarshalCSV(r, &raw.CalendarDates)
		n = len(raw.CalendarDates)
	default:
		return 0, fmt.Errorf("unknown file name %q", name)
	}
	if errors.Is(err, gocsv.ErrEmptyCSVFile) {
		return 0, nil
	}
	return n, err
}

// headerReader remembers the header row read through it.
type headerReader struct {
	gocsv.CSVReader
	header []string
}

func (h *headerReader) Read() ([]string, error) {
	row, err := h.CSVReader.Read()
	if err == nil && h.header == nil {
		h.header = row
	}
	return row, err
}

func (h *headerReader) ReadAll() ([][]string, error) {
	rows, err := h.CSVReader.ReadAll()
	if len(rows) > 0 && h.header == nil {
		h.header = rows[0]
	}
	return rows, err
}

func (h *headerReader) has(column string) bool {
	for _, c := range h.header {
		if strings.TrimSpace(c) == column {
			return true
		}
	}
	return false
}

// clearMissingTimes marks arrival or departure times absent when the file has
// no column for them, rather than leaving them at midnight.
func (raw *rawFeed) clearMissingTimes(h *headerReader) {
	noArrival, noDeparture := !h.has("arrival_time"), !h.has("departure_time")
	if !noArrival && !noDeparture {
		return
	}
	for _, st := range raw.StopTimes {
		if noArrival {
			st.ArrivalTime = NoTime
		}
		if noDeparture {
			st.DepartureTime = NoTime
		}
	}
}

// gtfsCSVReader tolerates rows shorter than the header, since GTFS columns are
// optional, and strips a leading UTF-8 byte order mark.
func gtfsCSVReader(in io.Reader) gocsv.CSVReader {
	br := bufio.NewReader(in)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	r := csv.NewReader(br)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r
}
