// Package dataset loads crime frequency records from CSV or XLSX files.
package dataset

import (
	"context"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/area-risk/internal/fetcher"
	"github.com/sells-group/area-risk/internal/model"
)

// Column names required in the header row.
const (
	ColCity           = "City"
	ColArea           = "Area"
	ColLatitude       = "Latitude"
	ColLongitude      = "Longitude"
	ColCrimeFrequency = "Crime Frequency"
)

// RequiredColumns lists the header names every dataset must carry.
var RequiredColumns = []string{ColCity, ColArea, ColLatitude, ColLongitude, ColCrimeFrequency}

// Options configures Load.
type Options struct {
	Sheet   string          // XLSX sheet name; first sheet when empty
	Fetcher fetcher.Fetcher // used for http(s) paths; nil = default HTTP fetcher
}

// Load reads the dataset at path into crime records. path may be a local file
// or an http(s) URL. The format is chosen from the file extension: .xlsx files
// go through the XLSX reader and everything else is parsed as CSV.
func Load(ctx context.Context, path string, opts Options) ([]model.CrimeRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "dataset: load")
	}

	local := path
	if isRemote(path) {
		tmp, cleanup, err := download(ctx, path, opts.Fetcher)
		if err != nil {
			return nil, &InputFileError{Path: path, Err: err}
		}
		defer cleanup()
		local = tmp
	} else if _, err := os.Stat(path); err != nil {
		return nil, &InputFileError{Path: path, Err: err}
	}

	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(local)) {
	case ".xlsx":
		rows, err = fetcher.ReadXLSX(local, fetcher.XLSXOptions{SheetName: opts.Sheet, TrimSpace: true})
	default:
		rows, err = readCSVFile(local)
	}
	if err != nil {
		return nil, &InputFileError{Path: path, Err: err}
	}

	records, err := parseRows(path, rows)
	if err != nil {
		return nil, err
	}

	zap.L().Info("dataset: loaded records",
		zap.String("path", path),
		zap.Int("records", len(records)),
	)
	return records, nil
}

func isRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// download copies rawURL into a temp file that keeps the URL's extension.
func download(ctx context.Context, rawURL string, f fetcher.Fetcher) (string, func(), error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", nil, eris.Wrap(err, "parse url")
	}
	if f == nil {
		f = fetcher.NewHTTPFetcher(fetcher.HTTPOptions{})
	}

	tmp, err := os.CreateTemp("", "dataset-*"+filepath.Ext(u.Path))
	if err != nil {
		return "", nil, eris.Wrap(err, "create temp file")
	}
	name := tmp.Name()
	_ = tmp.Close()
	cleanup := func() { _ = os.Remove(name) }

	n, err := f.DownloadToFile(ctx, rawURL, name)
	if err != nil {
		cleanup()
		return "", nil, err
	}
	zap.L().Debug("dataset: downloaded", zap.String("url", rawURL), zap.Int64("bytes", n))
	return name, cleanup, nil
}

func readCSVFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "open csv")
	}
	defer f.Close() //nolint:errcheck

	return fetcher.ReadCSV(f, fetcher.CSVOptions{LazyQuotes: true, TrimSpace: true})
}

// parseRows maps a header row plus data rows onto crime records.
func parseRows(path string, rows [][]string) ([]model.CrimeRecord, error) {
	if len(rows) == 0 {
		return nil, &SchemaError{Path: path, Missing: RequiredColumns}
	}

	colIdx := headerIndex(rows[0])
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := colIdx[normalizeHeader(col)]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Path: path, Missing: missing}
	}

	records := make([]model.CrimeRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		rec, err := parseRecord(row, colIdx)
		if err != nil {
			return nil, &InputFileError{Path: path, Row: i + 1, Err: err}
		}
		records = append(records, rec)
	}

	return records, nil
}

func parseRecord(row []string, colIdx map[string]int) (model.CrimeRecord, error) {
	lat, err := parseFloat(row, colIdx, ColLatitude)
	if err != nil {
		return model.CrimeRecord{}, err
	}
	lon, err := parseFloat(row, colIdx, ColLongitude)
	if err != nil {
		return model.CrimeRecord{}, err
	}
	freq, err := parseFloat(row, colIdx, ColCrimeFrequency)
	if err != nil {
		return model.CrimeRecord{}, err
	}
	if freq < 0 {
		return model.CrimeRecord{}, eris.Errorf("negative %s %v", ColCrimeFrequency, freq)
	}

	return model.CrimeRecord{
		City:           getCol(row, colIdx, ColCity),
		Area:           getCol(row, colIdx, ColArea),
		Latitude:       lat,
		Longitude:      lon,
		CrimeFrequency: freq,
	}, nil
}

func parseFloat(row []string, colIdx map[string]int, col string) (float64, error) {
	raw := getCol(row, colIdx, col)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "parse %s %q", col, raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, eris.Errorf("non-finite %s %q", col, raw)
	}
	return v, nil
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, col := range header {
		key := normalizeHeader(col)
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

// normalizeHeader folds case and strips a UTF-8 BOM so "crime frequency"
// and a BOM-prefixed "City" still match.
func normalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, "\ufeff")))
}

// getCol safely retrieves a column value from a row.
func getCol(row []string, colIdx map[string]int, col string) string {
	idx, ok := colIdx[normalizeHeader(col)]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
