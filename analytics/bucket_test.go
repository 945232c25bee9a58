package analytics

import (
	"testing"
	"time"

	"shipstat/record"
)

func TestParseGranularity(t *testing.T) {
	if g := ParseGranularity("day"); g != GranularityDay {
		t.Errorf("day parsed as %s", g)
	}
	if g := ParseGranularity("overall"); g != GranularityOverall {
		t.Errorf("overall parsed as %s", g)
	}
	for _, s := range []string{"", "week", "monthly", "bogus"} {
		if g := ParseGranularity(s); g != GranularityWeek {
			t.Errorf("ParseGranularity(%q) = %s, want week default", s, g)
		}
	}
}

func TestWeekOriginIsMinOrderDate(t *testing.T) {
	records := []record.Record{
		{"order_date": "2025-01-15"},
		{"order_date": "2025-01-01"},
		{"order_date": "2025-01-30"},
		{"status": "DELIVERED"}, // no date, ignored
	}
	origin, ok := WeekOrigin(records)
	if !ok {
		t.Fatal("WeekOrigin found no origin")
	}
	if origin.Format("2006-01-02") != "2025-01-01" {
		t.Errorf("origin = %v, want 2025-01-01", origin)
	}

	if _, ok := WeekOrigin([]record.Record{{"status": "DELIVERED"}}); ok {
		t.Error("WeekOrigin found an origin in undated records")
	}
}

func TestBucketKeyWeek(t *testing.T) {
	records := []record.Record{
		{"order_date": "2025-01-01"},
		{"order_date": "2025-01-08"},
		{"order_date": "2025-01-14"},
	}
	origin, hasOrigin := WeekOrigin(records)

	cases := []struct {
		date string
		want string
	}{
		{"2025-01-01", "2025-01-01"},
		{"2025-01-07", "2025-01-01"},
		{"2025-01-08", "2025-01-08"},
		{"2025-01-14", "2025-01-08"},
		{"2025-01-15", "2025-01-15"},
	}
	for _, c := range cases {
		rec := record.Record{"order_date": c.date}
		got, ok := BucketKey(rec, GranularityWeek, origin, hasOrigin)
		if !ok {
			t.Errorf("BucketKey(%s) failed", c.date)
			continue
		}
		if got != c.want {
			t.Errorf("BucketKey(%s) = %s, want %s", c.date, got, c.want)
		}
	}
}

func TestBucketKeyWeekUndatedRecordGetsUnknownBucket(t *testing.T) {
	origin, hasOrigin := WeekOrigin([]record.Record{{"order_date": "2025-01-01"}})
	rec := record.Record{"status": "DELIVERED"}
	got, ok := BucketKey(rec, GranularityWeek, origin, hasOrigin)
	if !ok || got != UnknownWeek {
		t.Errorf("week key for undated record = %q %v, want %q", got, ok, UnknownWeek)
	}
}

func TestBucketKeyWithoutOriginDegradesToOverall(t *testing.T) {
	rec := record.Record{"status": "DELIVERED"}
	got, ok := BucketKey(rec, GranularityWeek, time.Time{}, false)
	if !ok || got != "overall" {
		t.Errorf("week key without origin = %q %v, want overall", got, ok)
	}
}

func TestBucketKeyDay(t *testing.T) {
	rec := record.Record{"order_date": "2025-03-04 10:30:00"}
	got, ok := BucketKey(rec, GranularityDay, time.Time{}, false)
	if !ok || got != "2025-03-04" {
		t.Errorf("day key = %q %v, want 2025-03-04", got, ok)
	}

	if _, ok := BucketKey(record.Record{}, GranularityDay, time.Time{}, false); ok {
		t.Error("undated record got a day key")
	}
}

func TestBucketKeyOverall(t *testing.T) {
	got, ok := BucketKey(record.Record{}, GranularityOverall, time.Time{}, false)
	if !ok || got != "overall" {
		t.Errorf("overall key = %q %v", got, ok)
	}
}
