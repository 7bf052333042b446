package data

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"strategylab/internal/logging"
	"strategylab/internal/types"
)

// csvBar is one raw row. Fields stay strings so a bad row can be skipped
// instead of failing the whole file.
type csvBar struct {
	Timestamp string `csv:"timestamp"`
	Open      string `csv:"open"`
	High      string `csv:"high"`
	Low       string `csv:"low"`
	Close     string `csv:"close"`
	Volume    string `csv:"volume"`
}

// header aliases accepted besides the canonical names
var headerAliases = map[string]string{
	"date":      "timestamp",
	"time":      "timestamp",
	"datetime":  "timestamp",
	"open_time": "timestamp",
}

var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05.000Z",
	"2006-01-02 15:04:05.000",
	time.RFC3339,
	"2006/01/02 15:04:05",
	"2006-01-02",
}

var requiredColumns = []string{"timestamp", "open", "high", "low", "close", "volume"}

// LoadOptions filters and labels loaded bars
type LoadOptions struct {
	Symbol string
	Start  time.Time // inclusive, zero means unbounded
	End    time.Time // inclusive, zero means unbounded
}

// LoadBarsCSV reads OHLCV bars from a CSV file with a
// timestamp,open,high,low,close,volume header. Rows with unparsable values or
// inconsistent OHLC ranges are skipped with a warning. The result is sorted by
// time with duplicate timestamps dropped.
func LoadBarsCSV(path string, opts LoadOptions) ([]types.OHLCV, error) {
	logger := logging.NewComponentLogger("data")

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}

	normalized, err := normalizeHeader(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var rows []*csvBar
	if err := gocsv.UnmarshalBytes(normalized, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse data file: %w", err)
	}

	bars := make([]types.OHLCV, 0, len(rows))
	skipped := 0
	for i, row := range rows {
		bar, err := row.toOHLCV(opts.Symbol)
		if err != nil {
			skipped++
			logger.Warnf("Skipping row %d of %s: %v", i+2, path, err)
			continue
		}
		if !opts.Start.IsZero() && bar.Timestamp.Before(opts.Start) {
			continue
		}
		if !opts.End.IsZero() && bar.Timestamp.After(opts.End) {
			continue
		}
		bars = append(bars, bar)
	}

	bars = sortAndDedupe(bars)
	if len(bars) == 0 {
		return nil, fmt.Errorf("no valid bars in %s (%d rows skipped)", path, skipped)
	}

	logger.Infof("Loaded %d bars for %s from %s to %s",
		len(bars), opts.Symbol,
		bars[0].Timestamp.Format(time.RFC3339),
		bars[len(bars)-1].Timestamp.Format(time.RFC3339))

	return bars, nil
}

// normalizeHeader lower-cases the header line, maps aliases and checks that
// every required column is present.
func normalizeHeader(raw []byte) ([]byte, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	end := bytes.IndexByte(raw, '\n')
	if end < 0 {
		end = len(raw)
	}
	line := strings.TrimRight(string(raw[:end]), "\r")
	if strings.TrimSpace(line) == "" {
		return nil, fmt.Errorf("missing header")
	}

	columns := strings.Split(line, ",")
	seen := make(map[string]bool, len(columns))
	for i, c := range columns {
		c = strings.ToLower(strings.TrimSpace(c))
		if alias, ok := headerAliases[c]; ok && !seen[alias] {
			c = alias
		}
		columns[i] = c
		seen[c] = true
	}
	for _, req := range requiredColumns {
		if !seen[req] {
			return nil, fmt.Errorf("missing required column %q", req)
		}
	}

	var out bytes.Buffer
	out.WriteString(strings.Join(columns, ","))
	out.Write(raw[end:])
	return out.Bytes(), nil
}

func (r *csvBar) toOHLCV(symbol string) (types.OHLCV, error) {
	timestamp, err := parseTimestamp(strings.TrimSpace(r.Timestamp))
	if err != nil {
		return types.OHLCV{}, err
	}

	values := make([]float64, 5)
	for i, field := range []struct{ name, value string }{
		{"open", r.Open}, {"high", r.High}, {"low", r.Low}, {"close", r.Close}, {"volume", r.Volume},
	} {
		v, err := strconv.ParseFloat(strings.TrimSpace(field.value), 64)
		if err != nil {
			return types.OHLCV{}, fmt.Errorf("invalid %s: %q", field.name, field.value)
		}
		values[i] = v
	}

	bar := types.NewOHLCV(symbol, timestamp, values[0], values[1], values[2], values[3], values[4])
	if !(bar.Close > 0) {
		return types.OHLCV{}, fmt.Errorf("non-positive close %v", bar.Close)
	}
	if !bar.IsValidRange() {
		return types.OHLCV{}, fmt.Errorf("invalid OHLC relationships: O=%.2f H=%.2f L=%.2f C=%.2f",
			bar.Open, bar.High, bar.Low, bar.Close)
	}
	return bar, nil
}

// parseTimestamp accepts the layouts above plus unix seconds or milliseconds
func parseTimestamp(s string) (time.Time, error) {
	for _, format := range timestampFormats {
		if ts, err := time.Parse(format, s); err == nil {
			return ts.UTC(), nil
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		// exchange klines use milliseconds
		if n > 1e11 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid timestamp format: %s", s)
}

func sortAndDedupe(bars []types.OHLCV) []types.OHLCV {
	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Timestamp.Before(bars[j].Timestamp)
	})
	out := bars[:0]
	for i, bar := range bars {
		if i > 0 && bar.Timestamp.Equal(out[len(out)-1].Timestamp) {
			continue
		}
		out = append(out, bar)
	}
	return out
}
