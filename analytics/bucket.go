package analytics

import (
	"time"

	"shipstat/record"
)

// Granularity selects the time axis of a report.
type Granularity string

const (
	GranularityDay     Granularity = "day"
	GranularityWeek    Granularity = "week"
	GranularityOverall Granularity = "overall"
)

// ParseGranularity maps a request string to a Granularity, defaulting to week.
func ParseGranularity(s string) Granularity {
	switch Granularity(s) {
	case GranularityDay:
		return GranularityDay
	case GranularityOverall:
		return GranularityOverall
	default:
		return GranularityWeek
	}
}

const isoDay = "2006-01-02"

// UnknownWeek is the week key for records whose order date does not resolve.
// Week-bucketed reports keep such records under this bucket instead of
// dropping them.
const UnknownWeek = "Unknown"

// WeekOrigin is the minimum resolvable order date of the filtered set.
// It anchors the dataset-relative week axis: week N covers
// [origin+7N days, origin+7N+7 days). ok is false when no record has a
// resolvable order date, in which case week keys collapse to "overall".
func WeekOrigin(records []record.Record) (time.Time, bool) {
	var origin time.Time
	found := false
	for _, rec := range records {
		d, ok := record.ResolveDate(rec, record.OrderDate)
		if !ok {
			continue
		}
		d = d.Truncate(24 * time.Hour)
		if !found || d.Before(origin) {
			origin = d
			found = true
		}
	}
	return origin, found
}

// BucketKey returns the time key for a record at the given granularity.
// Day keys are the order date as YYYY-MM-DD; records without a resolvable
// date get ok == false and are excluded from day-bucketed output. Week keys
// are the ISO date of the record's week start relative to origin; a record
// with no resolvable date lands in the UnknownWeek bucket, and without an
// origin the key degrades to "overall".
func BucketKey(rec record.Record, g Granularity, origin time.Time, hasOrigin bool) (string, bool) {
	switch g {
	case GranularityOverall:
		return "overall", true
	case GranularityDay:
		d, ok := record.ResolveDate(rec, record.OrderDate)
		if !ok {
			return "", false
		}
		return d.Format(isoDay), true
	default:
		if !hasOrigin {
			return "overall", true
		}
		d, ok := record.ResolveDate(rec, record.OrderDate)
		if !ok {
			return UnknownWeek, true
		}
		weekIndex := int(d.Truncate(24*time.Hour).Sub(origin).Hours() / (24 * 7))
		return origin.AddDate(0, 0, weekIndex*7).Format(isoDay), true
	}
}
