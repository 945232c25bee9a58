package analytics

import (
	"time"

	"shipstat/record"
)

// TATMetric is one turnaround-time leg averaged over the filtered set.
// Average is nil when no record had both endpoints.
type TATMetric struct {
	Metric  string   `json:"metric"`
	Average *float64 `json:"average"`
	Count   int      `json:"count"`
}

type tatLeg struct {
	name  string
	start record.Field
	end   record.Field
}

// Legs between order placement and out-for-delivery. A missing approval date
// falls back to the order date, so the approval leg reports zero days for
// records without one; consumers rely on that convention.
var tatLegs = []tatLeg{
	{"Order Placed to Pickup TAT", record.OrderDate, record.PickupDate},
	{"Order Placed - Approval TAT", record.OrderDate, record.ApprovalDate},
	{"Approval to AWB TAT", record.ApprovalDate, record.AWBDate},
	{"AWB to Pickup TAT", record.AWBDate, record.PickupDate},
	{"Pickup OFD TAT", record.PickupDate, record.OFDDate},
	{"Order Placed to OFD TAT", record.OrderDate, record.OFDDate},
}

func legDate(rec record.Record, f record.Field) (time.Time, bool) {
	if t, ok := record.ResolveDate(rec, f); ok {
		return t, true
	}
	if f == record.ApprovalDate {
		return record.ResolveDate(rec, record.OrderDate)
	}
	return time.Time{}, false
}

// AverageOrderTAT computes the per-leg averages in days plus an approved
// orders row carrying the filtered record count.
func AverageOrderTAT(records []record.Record) []TATMetric {
	sums := make([]float64, len(tatLegs))
	counts := make([]int, len(tatLegs))

	for _, rec := range records {
		for i, leg := range tatLegs {
			start, okS := legDate(rec, leg.start)
			end, okE := legDate(rec, leg.end)
			if !okS || !okE {
				continue
			}
			sums[i] += end.Sub(start).Hours() / 24
			counts[i]++
		}
	}

	out := make([]TATMetric, 0, len(tatLegs)+1)
	for i, leg := range tatLegs {
		m := TATMetric{Metric: leg.name, Count: counts[i]}
		if counts[i] > 0 {
			avg := sums[i] / float64(counts[i])
			m.Average = &avg
		}
		out = append(out, m)
	}
	out = append(out, TATMetric{Metric: "Approved Orders", Count: len(records)})
	return out
}
