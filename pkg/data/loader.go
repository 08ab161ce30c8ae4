package data

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/go-gota/gota/series"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Source describes where a table is read from.
type Source struct {
	Location string                 // http(s) URL or local file path
	Sheet    string                 // XLSX sheet name; the first sheet when empty
	Types    map[string]series.Type // columns whose type is fixed instead of detected
}

// Loader fetches raw tables and turns them into Datasets.
type Loader struct {
	client *http.Client
	log    zerolog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

func WithHTTPClient(c *http.Client) LoaderOption { return func(l *Loader) { l.client = c } }
func WithLogger(log zerolog.Logger) LoaderOption { return func(l *Loader) { l.log = log } }

// NewLoader returns a Loader using a non-shared HTTP client.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		client: cleanhttp.DefaultClient(),
		log:    zerolog.Nop(),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Load reads the table at src. The format is chosen from the file extension:
// ".xlsx" is read as a workbook, anything else as CSV.
func (l *Loader) Load(ctx context.Context, src Source) (Dataset, error) {
	raw, err := l.fetch(ctx, src.Location)
	if err != nil {
		return Dataset{}, err
	}
	l.log.Debug().Str("source", src.Location).Int("bytes", len(raw)).Msg("table fetched")

	var d Dataset
	if isWorkbook(src.Location) {
		d, err = ReadXLSX(bytes.NewReader(raw), src.Sheet, src.Types)
	} else {
		d, err = ReadCSV(bytes.NewReader(raw), src.Types)
	}
	if err != nil {
		return Dataset{}, fmt.Errorf("load %s: %w", src.Location, err)
	}
	l.log.Info().Str("source", src.Location).Int("rows", d.Len()).Int("columns", len(d.Names())).Msg("table loaded")
	return d, nil
}

func (l *Loader) fetch(ctx context.Context, location string) ([]byte, error) {
	if !isRemote(location) {
		raw, err := os.ReadFile(location)
		if err != nil {
			return nil, fmt.Errorf("load: %w", err)
		}
		return raw, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("load %s: unexpected status %s", location, resp.Status)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", location, err)
	}
	return raw, nil
}

// ReadCSV parses a CSV table whose first record is the header.
func ReadCSV(r io.Reader, types map[string]series.Type) (Dataset, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return Dataset{}, fmt.Errorf("read csv: %w", err)
	}
	return FromRecords(records, types)
}

// ReadXLSX parses one sheet of a workbook whose first row is the header.
// Rows shorter than the header are padded with missing cells.
func ReadXLSX(r io.Reader, sheet string, types map[string]series.Type) (Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Dataset{}, fmt.Errorf("read xlsx: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return Dataset{}, fmt.Errorf("read xlsx: workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return Dataset{}, fmt.Errorf("read xlsx sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return Dataset{}, fmt.Errorf("read xlsx sheet %q: no rows", sheet)
	}

	width := len(rows[0])
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		if len(row) > width {
			return Dataset{}, fmt.Errorf("read xlsx sheet %q: row has %d cells, header has %d", sheet, len(row), width)
		}
		padded := make([]string, width)
		copy(padded, row)
		records = append(records, padded)
	}
	return FromRecords(records, types)
}

func isRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

func isWorkbook(location string) bool {
	p := location
	if isRemote(location) {
		if u, err := url.Parse(location); err == nil {
			p = u.Path
		}
	}
	return strings.EqualFold(path.Ext(p), ".xlsx")
}
