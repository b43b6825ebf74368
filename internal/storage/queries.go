package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pable/scorefix/internal/model"
)

// tsLayout is fixed-width so text ordering matches time ordering.
const tsLayout = "2006-01-02T15:04:05.000000000Z"

// ErrAmbiguousPrefix is returned when a run ID prefix matches more than one run.
var ErrAmbiguousPrefix = errors.New("ambiguous run id prefix")

const runColumns = `id, created_at, updated_at, input_path, backup_path, output_path,
	status, outcome, team1_name, team2_name, columns, time_layout,
	raw_rows, clean_rows, final_team1, final_team2, winner,
	stats, diagnostics, error`

// SaveRun upserts a run. When rows is non-nil the run's stored rows are
// replaced in the same transaction.
func (db *DB) SaveRun(r *model.RunSummary, rows *model.Log) error {
	columns, err := json.Marshal(r.Columns)
	if err != nil {
		return fmt.Errorf("encode columns: %w", err)
	}
	stats, err := json.Marshal(r.Stats)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	diags := r.Diagnostics
	if diags == nil {
		diags = []model.Diagnostic{}
	}
	diagJSON, err := json.Marshal(diags)
	if err != nil {
		return fmt.Errorf("encode diagnostics: %w", err)
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs(`+runColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			updated_at = excluded.updated_at,
			backup_path = excluded.backup_path,
			output_path = excluded.output_path,
			status = excluded.status,
			outcome = excluded.outcome,
			team1_name = excluded.team1_name,
			team2_name = excluded.team2_name,
			columns = excluded.columns,
			time_layout = excluded.time_layout,
			raw_rows = excluded.raw_rows,
			clean_rows = excluded.clean_rows,
			final_team1 = excluded.final_team1,
			final_team2 = excluded.final_team2,
			winner = excluded.winner,
			stats = excluded.stats,
			diagnostics = excluded.diagnostics,
			error = excluded.error`,
		r.ID, formatTS(r.CreatedAt), formatTS(r.UpdatedAt), r.InputPath, r.BackupPath, r.OutputPath,
		string(r.Status), string(r.Outcome), r.Team1Name, r.Team2Name, string(columns), r.TimeLayout,
		r.RawRows, r.CleanRows, r.FinalTeam1, r.FinalTeam2, int(r.Winner),
		string(stats), string(diagJSON), r.Error,
	)
	if err != nil {
		return fmt.Errorf("upsert run %s: %w", r.ID, err)
	}

	if rows != nil {
		if err := insertRows(tx, r.ID, rows.Records); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertRows(tx *sql.Tx, runID string, recs []model.Record) error {
	if _, err := tx.Exec(`DELETE FROM run_rows WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("clear rows for %s: %w", runID, err)
	}
	stmt, err := tx.Prepare(`INSERT INTO run_rows(run_id, seq, ts, team1, team2, timer) VALUES (?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, rec := range recs {
		_, err = stmt.Exec(runID, i, formatTS(rec.Time),
			nullScore(rec.Team1), nullScore(rec.Team2), nullReading(rec.Timer))
		if err != nil {
			return fmt.Errorf("insert row %d for %s: %w", i, runID, err)
		}
	}
	return nil
}

// GetRunByPrefix finds the run whose ID starts with prefix. It returns nil
// when nothing matches and ErrAmbiguousPrefix when more than one run does.
func (db *DB) GetRunByPrefix(prefix string) (*model.RunSummary, error) {
	rows, err := db.conn.Query(`SELECT `+runColumns+` FROM runs WHERE id LIKE ? ORDER BY created_at DESC LIMIT 2`, prefix+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var found []*model.RunSummary
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return found[0], nil
	}
	return nil, fmt.Errorf("%w: %q", ErrAmbiguousPrefix, prefix)
}

// ListRuns returns stored runs newest first. limit <= 0 means no limit.
func (db *DB) ListRuns(limit int) ([]model.RunSummary, error) {
	q := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RunSummary
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// LoadLog rebuilds the stored rows of r as a log in r's column shape.
func (db *DB) LoadLog(r *model.RunSummary) (model.Log, error) {
	rows, err := db.conn.Query(`SELECT ts, team1, team2, timer FROM run_rows WHERE run_id = ? ORDER BY seq`, r.ID)
	if err != nil {
		return model.Log{}, err
	}
	defer rows.Close()

	l := model.Log{
		Columns:    append([]string(nil), r.Columns...),
		TimeLayout: r.TimeLayout,
	}
	for rows.Next() {
		var (
			ts     string
			t1, t2 sql.NullInt64
			timer  sql.NullFloat64
		)
		if err := rows.Scan(&ts, &t1, &t2, &timer); err != nil {
			return model.Log{}, err
		}
		at, err := time.Parse(tsLayout, ts)
		if err != nil {
			return model.Log{}, fmt.Errorf("row timestamp %q: %w", ts, err)
		}
		l.Records = append(l.Records, model.Record{
			Time:  at,
			Team1: model.Score{Value: int(t1.Int64), Valid: t1.Valid},
			Team2: model.Score{Value: int(t2.Int64), Valid: t2.Valid},
			Timer: model.Reading{Value: timer.Float64, Valid: timer.Valid},
		})
	}
	return l, rows.Err()
}

// Overview is the aggregate shown by the summary command.
type Overview struct {
	TotalRuns   int
	ByStatus    map[model.RunStatus]int
	ByOutcome   map[model.Outcome]int
	FirstRun    time.Time
	LastRun     time.Time
	TotalRaw    int
	TotalClean  int
	Diagnostics map[model.DiagnosticCode]int
}

// GetOverview aggregates the run history.
func (db *DB) GetOverview() (*Overview, error) {
	ov := &Overview{
		ByStatus:    map[model.RunStatus]int{},
		ByOutcome:   map[model.Outcome]int{},
		Diagnostics: map[model.DiagnosticCode]int{},
	}

	var first, last sql.NullString
	err := db.conn.QueryRow(`
		SELECT COUNT(1), MIN(created_at), MAX(created_at),
		       COALESCE(SUM(raw_rows), 0), COALESCE(SUM(clean_rows), 0)
		FROM runs`).Scan(&ov.TotalRuns, &first, &last, &ov.TotalRaw, &ov.TotalClean)
	if err != nil {
		return nil, fmt.Errorf("run totals: %w", err)
	}
	if first.Valid {
		ov.FirstRun, _ = time.Parse(tsLayout, first.String)
	}
	if last.Valid {
		ov.LastRun, _ = time.Parse(tsLayout, last.String)
	}

	if err := db.countBy(`SELECT status, COUNT(1) FROM runs GROUP BY status`, func(k string, n int) {
		ov.ByStatus[model.RunStatus(k)] = n
	}); err != nil {
		return nil, err
	}
	if err := db.countBy(`SELECT outcome, COUNT(1) FROM runs WHERE outcome != '' GROUP BY outcome`, func(k string, n int) {
		ov.ByOutcome[model.Outcome(k)] = n
	}); err != nil {
		return nil, err
	}
	if err := db.countBy(`
		SELECT json_extract(d.value, '$.code'), COUNT(1)
		FROM runs, json_each(runs.diagnostics) AS d
		GROUP BY 1`, func(k string, n int) {
		ov.Diagnostics[model.DiagnosticCode(k)] = n
	}); err != nil {
		return nil, err
	}
	return ov, nil
}

func (db *DB) countBy(query string, fn func(key string, n int)) error {
	rows, err := db.conn.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var k string
		var n int
		if err := rows.Scan(&k, &n); err != nil {
			return err
		}
		fn(k, n)
	}
	return rows.Err()
}

// QueryRaw runs an arbitrary query and returns the column names and every
// value rendered as text.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = string(x)
			case time.Time:
				row[i] = x.Format(time.RFC3339)
			default:
				row[i] = fmt.Sprint(x)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*model.RunSummary, error) {
	var (
		r                         model.RunSummary
		created, updated          string
		status, outcome           string
		columns, stats, diagnosis string
		winner                    int
	)
	err := s.Scan(&r.ID, &created, &updated, &r.InputPath, &r.BackupPath, &r.OutputPath,
		&status, &outcome, &r.Team1Name, &r.Team2Name, &columns, &r.TimeLayout,
		&r.RawRows, &r.CleanRows, &r.FinalTeam1, &r.FinalTeam2, &winner,
		&stats, &diagnosis, &r.Error)
	if err != nil {
		return nil, err
	}
	r.CreatedAt, _ = time.Parse(tsLayout, created)
	r.UpdatedAt, _ = time.Parse(tsLayout, updated)
	r.Status = model.RunStatus(status)
	r.Outcome = model.Outcome(outcome)
	r.Winner = model.Team(winner)
	if err := json.Unmarshal([]byte(columns), &r.Columns); err != nil {
		return nil, fmt.Errorf("decode columns of %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(stats), &r.Stats); err != nil {
		return nil, fmt.Errorf("decode stats of %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(diagnosis), &r.Diagnostics); err != nil {
		return nil, fmt.Errorf("decode diagnostics of %s: %w", r.ID, err)
	}
	return &r, nil
}

func formatTS(t time.Time) string {
	return t.UTC().Format(tsLayout)
}

func nullScore(s model.Score) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(s.Value), Valid: s.Valid}
}

func nullReading(r model.Reading) sql.NullFloat64 {
	return sql.NullFloat64{Float64: r.Value, Valid: r.Valid}
}
