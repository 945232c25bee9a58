package record

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Record is one ingested spreadsheet row: raw column name -> scalar value.
// Records are created once at ingest and never mutated afterwards; all
// derivation happens through lookups.
type Record map[string]any

// Values treated as "absent" wherever a field is resolved.
var sentinels = map[string]bool{
	"":          true,
	"none":      true,
	"n/a":       true,
	"na":        true,
	"null":      true,
	"undefined": true,
	"nan":       true,
	"'":         true,
}

// IsSentinel reports whether a raw scalar counts as missing.
func IsSentinel(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	return sentinels[strings.ToLower(strings.TrimSpace(s))]
}

var (
	spaceRun     = regexp.MustCompile(`\s+`)
	invalidChars = regexp.MustCompile(`[^a-z0-9_]`)
)

// NormalizeKey converts a raw column header to its canonical snake_case form.
// An underscore is inserted before every capital past the first rune, so
// "Shiprocket Created At" becomes "shiprocket__created__at" - the
// double-underscore spellings the resolver tables carry.
func NormalizeKey(name string) string {
	name = strings.TrimSpace(name)
	var b strings.Builder
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	name = strings.ToLower(b.String())
	name = spaceRun.ReplaceAllString(name, "_")
	name = invalidChars.ReplaceAllString(name, "")
	return name
}

// NormalizeKeys returns a copy of the record with every key normalized.
// Raw headers are visited in sorted order so collisions resolve the same way
// on every ingest; the first non-sentinel value in that order wins.
func NormalizeKeys(rec Record) Record {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(Record, len(rec))
	for _, k := range keys {
		nk := NormalizeKey(k)
		if existing, ok := out[nk]; ok && !IsSentinel(existing) {
			continue
		}
		out[nk] = rec[k]
	}
	return out
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"1/2/2006",
	"1/2/06",
	"1/2/2006 15:04",
	"02-01-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
}

// ParseDate parses the spreadsheet date spellings seen in the wild.
// Unparsable or sentinel input yields ok == false, never an error.
func ParseDate(v any) (time.Time, bool) {
	if IsSentinel(v) {
		return time.Time{}, false
	}
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

// ParseNumber extracts a decimal amount from a scalar, stripping currency
// symbols and thousands separators. Sentinel/garbage input yields ok == false.
func ParseNumber(v any) (decimal.Decimal, bool) {
	if IsSentinel(v) {
		return decimal.Zero, false
	}
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), true
	case float32:
		return decimal.NewFromFloat32(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case string:
		cleaned := nonNumeric.ReplaceAllString(n, "")
		if cleaned == "" || cleaned == "-" || cleaned == "." {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(cleaned)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	}
	return decimal.Zero, false
}

// ParseBool interprets spreadsheet truthy spellings.
func ParseBool(v any) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	s := strings.ToLower(strings.TrimSpace(toString(v)))
	return s == "true" || s == "yes" || s == "1" || s == "y"
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	d, ok := ParseNumber(v)
	if !ok {
		return ""
	}
	return d.String()
}
