package state

import (
	"testing"
	"time"

	"clearurls/internal/config"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	cfg := config.Default()
	cfg.General.DataRoot = t.TempDir()
	db, err := Open(cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRecordClean_UpsertsByOriginal(t *testing.T) {
	db := testDB(t)
	in := "https://Deezer.com/track/1?utm_source=x"
	if err := db.RecordClean(HistoryRow{Original: in, Cleaned: "https://deezer.com/track/1", Changed: true, Source: "clean"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := db.RecordClean(HistoryRow{Original: in, Cleaned: "https://deezer.com/track/1", Changed: true, Source: "batch"}); err != nil {
		t.Fatalf("record again: %v", err)
	}
	rows, err := db.ListHistory(HistoryFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	r := rows[0]
	if r.Seen != 2 || r.Source != "batch" || r.Host != "deezer.com" || !r.Changed {
		t.Fatalf("unexpected row: %+v", r)
	}
}

func TestListHistory_Filters(t *testing.T) {
	db := testDB(t)
	rows := []HistoryRow{
		{Original: "https://a.test/?utm_source=1", Cleaned: "https://a.test/", Changed: true},
		{Original: "https://a.test/keep", Cleaned: "https://a.test/keep"},
		{Original: "//b.test", LastError: "error parsing url: relative URL without a base"},
		{Original: "https://c.test/?fbclid=1", Cleaned: "https://c.test/", Changed: true},
	}
	for _, r := range rows {
		if err := db.RecordClean(r); err != nil {
			t.Fatal(err)
		}
	}
	check := func(name string, f HistoryFilter, want int) {
		t.Helper()
		got, err := db.ListHistory(f)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(got) != want {
			t.Errorf("%s: got %d rows want %d", name, len(got), want)
		}
	}
	check("all", HistoryFilter{}, 4)
	check("host", HistoryFilter{Host: "A.test"}, 2)
	check("changed", HistoryFilter{ChangedOnly: true}, 2)
	check("failed", HistoryFilter{FailedOnly: true}, 1)
	check("limit", HistoryFilter{Limit: 3}, 3)

	st, err := db.HistoryStats()
	if err != nil {
		t.Fatal(err)
	}
	if st.Distinct != 4 || st.Seen != 4 || st.Changed != 2 || st.Failed != 1 || st.Oldest == 0 {
		t.Fatalf("stats: %+v", st)
	}

	top, err := db.TopHosts(5)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 2 || top[0].Host != "a.test" || top[0].Count != 1 {
		t.Fatalf("top hosts: %+v", top)
	}
}

func TestClearHistory(t *testing.T) {
	db := testDB(t)
	for _, u := range []string{"https://a.test/1", "https://a.test/2"} {
		if err := db.RecordClean(HistoryRow{Original: u, Cleaned: u}); err != nil {
			t.Fatal(err)
		}
	}
	n, err := db.ClearHistory(time.Now().Add(-time.Hour))
	if err != nil || n != 0 {
		t.Fatalf("nothing is older than an hour: n=%d err=%v", n, err)
	}
	n, err = db.ClearHistory(time.Time{})
	if err != nil || n != 2 {
		t.Fatalf("clear all: n=%d err=%v", n, err)
	}
}
