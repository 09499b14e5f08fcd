package state

import (
	"net/url"
	"strings"
	"time"
)

// HistoryRow is one distinct input URL and the outcome of its latest cleaning.
type HistoryRow struct {
	Original  string
	Cleaned   string
	Host      string
	Changed   bool
	Source    string // clean | text | html | batch | tui
	LastError string
	Seen      int64
	CreatedAt int64
	UpdatedAt int64
}

// HistoryFilter narrows ListHistory. Zero values mean no filtering.
type HistoryFilter struct {
	Host        string
	ChangedOnly bool
	FailedOnly  bool
	Limit       int
}

// HistoryStats summarizes the history table.
type HistoryStats struct {
	Distinct int64
	Seen     int64
	Changed  int64
	Failed   int64
	Oldest   int64
}

// HostCount is a host with the number of distinct URLs recorded for it.
type HostCount struct {
	Host  string
	Count int64
}

// RecordClean stores the outcome of cleaning original. Seeing the same input
// again bumps its counter and replaces the outcome.
func (db *DB) RecordClean(row HistoryRow) error {
	now := time.Now().Unix()
	if row.Host == "" {
		row.Host = hostOf(row.Original)
	}
	_, err := db.SQL.Exec(`INSERT INTO history(original, cleaned, host, changed, source, last_error, seen, created_at, updated_at)
		VALUES(?,?,?,?,?,?,1,?,?)
		ON CONFLICT(original) DO UPDATE SET cleaned=excluded.cleaned, changed=excluded.changed, source=excluded.source, last_error=excluded.last_error, seen=seen+1, updated_at=?`,
		row.Original, row.Cleaned, row.Host, boolToInt(row.Changed), row.Source, row.LastError, now, now, now)
	return err
}

// ListHistory returns rows, most recently updated first.
func (db *DB) ListHistory(f HistoryFilter) ([]HistoryRow, error) {
	q := strings.Builder{}
	q.WriteString(`SELECT original, COALESCE(cleaned, ''), COALESCE(host, ''), changed,
		COALESCE(source, ''), COALESCE(last_error, ''), seen, created_at, updated_at
		FROM history WHERE 1=1`)
	var args []any
	if f.Host != "" {
		q.WriteString(` AND host = ?`)
		args = append(args, strings.ToLower(f.Host))
	}
	if f.ChangedOnly {
		q.WriteString(` AND changed = 1`)
	}
	if f.FailedOnly {
		q.WriteString(` AND COALESCE(last_error, '') != ''`)
	}
	q.WriteString(` ORDER BY updated_at DESC, id DESC`)
	if f.Limit > 0 {
		q.WriteString(` LIMIT ?`)
		args = append(args, f.Limit)
	}
	rows, err := db.SQL.Query(q.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []HistoryRow
	for rows.Next() {
		var r HistoryRow
		var changed int
		if err := rows.Scan(&r.Original, &r.Cleaned, &r.Host, &changed, &r.Source, &r.LastError, &r.Seen, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		r.Changed = changed != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

func (db *DB) HistoryStats() (HistoryStats, error) {
	var s HistoryStats
	err := db.SQL.QueryRow(`SELECT COUNT(*), COALESCE(SUM(seen), 0), COALESCE(SUM(changed), 0),
		COALESCE(SUM(CASE WHEN COALESCE(last_error, '') != '' THEN 1 ELSE 0 END), 0),
		COALESCE(MIN(created_at), 0)
		FROM history`).Scan(&s.Distinct, &s.Seen, &s.Changed, &s.Failed, &s.Oldest)
	return s, err
}

// TopHosts returns the n hosts with the most distinct URLs that needed cleaning.
func (db *DB) TopHosts(n int) ([]HostCount, error) {
	rows, err := db.SQL.Query(`SELECT host, COUNT(*) AS c FROM history
		WHERE changed = 1 AND COALESCE(host, '') != ''
		GROUP BY host ORDER BY c DESC, host ASC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []HostCount
	for rows.Next() {
		var h HostCount
		if err := rows.Scan(&h.Host, &h.Count); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// ClearHistory deletes rows last updated before the cutoff. A zero cutoff deletes everything.
func (db *DB) ClearHistory(before time.Time) (int64, error) {
	q, args := `DELETE FROM history`, []any{}
	if !before.IsZero() {
		q += ` WHERE updated_at < ?`
		args = append(args, before.Unix())
	}
	res, err := db.SQL.Exec(q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
