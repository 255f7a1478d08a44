package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rohankatakam/codefolio/internal/errors"
	"github.com/rohankatakam/codefolio/internal/models"
	"github.com/rohankatakam/codefolio/internal/storage"
	"github.com/sirupsen/logrus"
)

// Columns lists the header names every line log must carry
var Columns = []string{
	"commit", "file", "line", "depth", "length",
	"date", "timezone", "datetime", "author", "time", "type",
}

const dateLayout = "2006-01-02T15:04Z07:00"

// Options controls how a line log is read
type Options struct {
	// Strict rejects the whole load on the first malformed row; otherwise
	// malformed rows are logged and skipped.
	Strict bool
	Client *http.Client
	Logger *logrus.Logger
}

// Load reads line records from a local path, an http(s) URL, or a SQL line
// store (sqlite://path, postgres://dsn).
func Load(ctx context.Context, source string, opts Options) ([]models.LineRecord, error) {
	if opts.Logger == nil {
		opts.Logger = logrus.New()
		opts.Logger.SetOutput(io.Discard)
	}

	switch {
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return fetch(ctx, source, opts)
	case strings.HasPrefix(source, "sqlite://"),
		strings.HasPrefix(source, "postgres://"),
		strings.HasPrefix(source, "postgresql://"):
		return loadStore(ctx, source, opts)
	default:
		return loadFile(source, opts)
	}
}

func loadFile(path string, opts Options) ([]models.LineRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.FileSystemError(err, "open line log").WithContext("path", path)
	}
	defer f.Close()

	records, err := Parse(f, opts)
	if err != nil {
		return nil, err
	}
	opts.Logger.WithFields(logrus.Fields{"path": path, "lines": len(records)}).Debug("Loaded line log")
	return records, nil
}

func fetch(ctx context.Context, url string, opts Options) ([]models.LineRecord, error) {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NetworkError(err, "build line log request").WithContext("url", url)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.NetworkError(err, "fetch line log").WithContext("url", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.NetworkError(fmt.Errorf("unexpected status %s", resp.Status), "fetch line log").
			WithContext("url", url)
	}

	records, err := Parse(resp.Body, opts)
	if err != nil {
		return nil, err
	}
	opts.Logger.WithFields(logrus.Fields{"url": url, "lines": len(records)}).Debug("Fetched line log")
	return records, nil
}

func loadStore(ctx context.Context, source string, opts Options) ([]models.LineRecord, error) {
	store, err := storage.OpenURL(source, opts.Logger)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	records, err := store.LoadLines(ctx)
	if err != nil {
		return nil, errors.DatabaseError(err, "load line records")
	}
	return records, nil
}

// Parse reads a CSV line log. Columns are located by header name, so order
// is free and extra columns are ignored.
func Parse(r io.Reader, opts Options) ([]models.LineRecord, error) {
	if opts.Logger == nil {
		opts.Logger = logrus.New()
		opts.Logger.SetOutput(io.Discard)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return []models.LineRecord{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, errors.SeverityHigh, "read line log header")
	}

	index, err := headerIndex(header)
	if err != nil {
		return nil, err
	}

	records := make([]models.LineRecord, 0, 1024)
	row := 1
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeValidation, errors.SeverityHigh, "read line log").
				WithContext("row", row)
		}

		rec, perr := parseRow(fields, index)
		if perr != nil {
			perr.WithContext("row", row)
			if opts.Strict {
				return nil, perr
			}
			opts.Logger.WithError(perr).Warn("Skipping malformed line log row")
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		index[strings.ToLower(name)] = i
	}

	var missing []string
	for _, col := range Columns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, errors.ValidationErrorf("line log is missing columns: %s", strings.Join(missing, ", "))
	}
	return index, nil
}

func parseRow(fields []string, index map[string]int) (models.LineRecord, *errors.Error) {
	get := func(col string) string {
		i := index[col]
		if i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}

	var rec models.LineRecord
	rec.Commit = get("commit")
	rec.File = get("file")
	rec.Author = get("author")
	rec.Time = get("time")
	rec.Timezone = get("timezone")
	rec.Type = get("type")

	if rec.Commit == "" {
		return rec, errors.ValidationErrorf("empty commit id").WithContext("column", "commit")
	}

	for _, f := range []struct {
		col string
		dst *int
	}{
		{"line", &rec.Line},
		{"depth", &rec.Depth},
		{"length", &rec.Length},
	} {
		v := get(f.col)
		n, err := strconv.Atoi(v)
		if err != nil {
			return rec, errors.ValidationErrorf("invalid integer %q", v).WithContext("column", f.col)
		}
		*f.dst = n
	}

	date, err := time.Parse(dateLayout, get("date")+"T00:00"+rec.Timezone)
	if err != nil {
		return rec, errors.ValidationErrorf("invalid date %q with timezone %q", get("date"), rec.Timezone).
			WithContext("column", "date")
	}
	rec.Date = date

	datetime, err := time.Parse(time.RFC3339, get("datetime"))
	if err != nil {
		return rec, errors.ValidationErrorf("invalid datetime %q", get("datetime")).
			WithContext("column", "datetime")
	}
	rec.Datetime = datetime

	return rec, nil
}

// Write emits records as a CSV line log with the standard header
func Write(w io.Writer, records []models.LineRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Commit,
			r.File,
			strconv.Itoa(r.Line),
			strconv.Itoa(r.Depth),
			strconv.Itoa(r.Length),
			r.Date.Format("2006-01-02"),
			r.Timezone,
			r.Datetime.Format(time.RFC3339),
			r.Author,
			r.Time,
			r.Type,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
