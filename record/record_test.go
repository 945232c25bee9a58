package record

import (
	"testing"
	"time"
)

func TestNormalizeKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Shiprocket Created At", "shiprocket__created__at"},
		{"Order Date", "order__date"},
		{"order_date", "order_date"},
		{"  Status ", "status"},
		{"Payment Method", "payment__method"},
		{"AWB Code", "a_w_b__code"},
		{"Courier Company", "courier__company"},
		{"Order Total (Rs.)", "order__total__rs"},
	}
	for _, c := range cases {
		if got := NormalizeKey(c.in); got != c.want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeKeysFirstNonSentinelWins(t *testing.T) {
	rec := Record{
		"Order Date":  "",
		"order__date": "2025-01-05",
	}
	out := NormalizeKeys(rec)
	if got := out["order__date"]; got != "2025-01-05" {
		t.Errorf("collision kept %v, want the non-sentinel value", got)
	}
}

func TestNormalizeKeysCollisionIsDeterministic(t *testing.T) {
	// Both headers normalize to order__date and both carry real values, so
	// the survivor must come from the sorted header order ("Order Date"
	// sorts before "order__date") on every ingest, not map iteration order.
	for i := 0; i < 100; i++ {
		out := NormalizeKeys(Record{
			"Order Date":  "2025-02-01",
			"order__date": "2025-03-01",
		})
		if got := out["order__date"]; got != "2025-02-01" {
			t.Fatalf("iteration %d kept %v, want 2025-02-01", i, got)
		}
	}
}

func TestIsSentinel(t *testing.T) {
	missing := []any{nil, "", "  ", "None", "N/A", "na", "NULL", "undefined", "NaN", "'"}
	for _, v := range missing {
		if !IsSentinel(v) {
			t.Errorf("IsSentinel(%v) = false, want true", v)
		}
	}
	present := []any{"DELIVERED", "0", 0, 12.5, "Maharashtra"}
	for _, v := range present {
		if IsSentinel(v) {
			t.Errorf("IsSentinel(%v) = true, want false", v)
		}
	}
}

func TestParseDate(t *testing.T) {
	cases := []string{
		"2025-01-05",
		"2025-01-05 14:30:00",
		"2025-01-05T14:30:00",
		"1/5/2025",
		"05-01-2025",
		"5 Jan 2025",
		"Jan 5, 2025",
	}
	want := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	for _, c := range cases {
		got, ok := ParseDate(c)
		if !ok {
			t.Errorf("ParseDate(%q) failed", c)
			continue
		}
		if got.Year() != want.Year() || got.Month() != want.Month() || got.Day() != want.Day() {
			t.Errorf("ParseDate(%q) = %v, want 2025-01-05", c, got)
		}
	}

	if _, ok := ParseDate("not a date"); ok {
		t.Error("ParseDate accepted garbage")
	}
	if _, ok := ParseDate(""); ok {
		t.Error("ParseDate accepted an empty string")
	}
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"1234.50", "1234.5"},
		{"₹1,234.50", "1234.5"},
		{"Rs. 500", "500"},
		{"-12.5", "-12.5"},
		{float64(99.9), "99.9"},
		{int(42), "42"},
	}
	for _, c := range cases {
		got, ok := ParseNumber(c.in)
		if !ok {
			t.Errorf("ParseNumber(%v) failed", c.in)
			continue
		}
		if got.String() != c.want {
			t.Errorf("ParseNumber(%v) = %s, want %s", c.in, got, c.want)
		}
	}

	for _, bad := range []any{"", "abc", "N/A", nil, "-", "."} {
		if _, ok := ParseNumber(bad); ok {
			t.Errorf("ParseNumber(%v) succeeded, want failure", bad)
		}
	}
}
