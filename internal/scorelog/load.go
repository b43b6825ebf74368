// Package scorelog reads and writes score log tables: a timestamp column, two
// team score columns and an optional timer column.
package scorelog

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pable/scorefix/internal/model"
)

const (
	// minColumns is timestamp + two team scores.
	minColumns = 3
	// maxColumns adds the optional timer column; anything after it is ignored.
	maxColumns = 4

	// LayoutUnix marks logs whose timestamps are integer unix seconds.
	LayoutUnix = "unix"
)

// timeLayouts are tried in order until one parses.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
}

// Table is a raw source table, cells verbatim.
type Table struct {
	Path   string
	Header []string
	Rows   [][]string
}

// ParseReport describes rows the parser could not use.
type ParseReport struct {
	Unreadable  int
	Diagnostics []model.Diagnostic
}

// Load reads and parses the score log at path.
func Load(path string) (model.Log, ParseReport, error) {
	t, err := Read(path)
	if err != nil {
		return model.Log{}, ParseReport{}, err
	}
	return Parse(t)
}

// Read loads the raw table at path without interpreting any cell.
func Read(path string) (*Table, error) {
	rc, err := openSource(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ReadFrom(path, rc)
}

// ReadFrom reads a raw table from r. name is used in errors only.
func ReadFrom(name string, r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, malformed(name, "unreadable table", err)
	}
	if len(records) == 0 {
		return nil, malformed(name, "no header row", nil)
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	if len(header) == 0 || (len(header) == 1 && strings.TrimSpace(header[0]) == "") {
		return nil, malformed(name, "zero columns", nil)
	}
	if len(header) < minColumns {
		return nil, malformed(name, fmt.Sprintf("need timestamp and two score columns, found %d column(s)", len(header)), nil)
	}
	return &Table{Path: name, Header: header, Rows: records[1:]}, nil
}

// Parse coerces a raw table into a score log. Score and timer cells that do
// not parse become absent; rows whose timestamp does not parse are dropped
// and reported.
func Parse(t *Table) (model.Log, ParseReport, error) {
	var rep ParseReport
	if t == nil || len(t.Header) < minColumns {
		name := ""
		if t != nil {
			name = t.Path
		}
		return model.Log{}, rep, malformed(name, "no usable score columns", nil)
	}

	ncol := min(len(t.Header), maxColumns)
	log := model.Log{
		Columns: append([]string(nil), t.Header[:ncol]...),
		Records: make([]model.Record, 0, len(t.Rows)),
	}

	firstBad := 0
	for i, row := range t.Rows {
		if blankRow(row) {
			continue
		}
		ts, layout, ok := parseTime(cell(row, 0), log.TimeLayout)
		if !ok {
			if rep.Unreadable == 0 {
				firstBad = i + 2 // 1-based, after the header
			}
			rep.Unreadable++
			continue
		}
		if log.TimeLayout == "" {
			log.TimeLayout = layout
		}
		rec := model.Record{
			Time:  ts,
			Team1: parseScore(cell(row, 1)),
			Team2: parseScore(cell(row, 2)),
		}
		if log.HasTimer() {
			rec.Timer = parseReading(cell(row, 3))
		}
		log.Records = append(log.Records, rec)
	}
	if log.TimeLayout == "" {
		log.TimeLayout = timeLayouts[0]
	}

	if rep.Unreadable > 0 {
		rep.Diagnostics = append(rep.Diagnostics, model.Diagnostic{
			Stage:   "load",
			Code:    model.DiagUnreadableTimestamp,
			Message: fmt.Sprintf("dropped %d row(s) with unreadable timestamps (first at line %d)", rep.Unreadable, firstBad),
		})
	}
	return log, rep, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseScore accepts non-negative integers and integral floats ("12.0").
func parseScore(s string) model.Score {
	if s == "" {
		return model.Score{}
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return model.Score{}
		}
		return model.ScoreOf(n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return model.Score{}
	}
	return model.ScoreOf(int(f))
}

func parseReading(s string) model.Reading {
	if s == "" {
		return model.Reading{}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return model.Reading{}
	}
	return model.ReadingOf(f)
}

// parseTime tries the preferred layout first so a log keeps one layout.
func parseTime(s, preferred string) (time.Time, string, bool) {
	if s == "" {
		return time.Time{}, "", false
	}
	if preferred != "" {
		if ts, ok := parseWith(s, preferred); ok {
			return ts, preferred, true
		}
	}
	for _, layout := range timeLayouts {
		if layout == preferred {
			continue
		}
		if ts, ok := parseWith(s, layout); ok {
			return ts, layout, true
		}
	}
	if preferred != LayoutUnix {
		if ts, ok := parseWith(s, LayoutUnix); ok {
			return ts, LayoutUnix, true
		}
	}
	return time.Time{}, "", false
}

func parseWith(s, layout string) (time.Time, bool) {
	if layout == LayoutUnix {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		return time.Unix(n, 0).UTC(), true
	}
	ts, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
