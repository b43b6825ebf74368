package scorelog

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/pable/scorefix/internal/model"
)

// Write encodes l as CSV in the column shape it was read with. Absent values
// are written as empty cells.
func Write(w io.Writer, l model.Log) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(l.Columns); err != nil {
		return err
	}
	withTimer := l.HasTimer()
	row := make([]string, len(l.Columns))
	for _, r := range l.Records {
		row[0] = FormatTime(r.Time, l.TimeLayout)
		row[1] = r.Team1.String()
		row[2] = r.Team2.String()
		if withTimer {
			row[3] = r.Timer.String()
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTable encodes a raw table verbatim.
func WriteTable(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// FormatTime renders ts in the given layout; LayoutUnix yields integer seconds.
func FormatTime(ts time.Time, layout string) string {
	switch layout {
	case LayoutUnix:
		return strconv.FormatInt(ts.Unix(), 10)
	case "":
		return ts.Format(timeLayouts[0])
	}
	return ts.Format(layout)
}
