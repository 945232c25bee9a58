// Package analytics holds the report engine: filtering, time bucketing,
// metric aggregation and the report builder registry.
package analytics

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"shipstat/classify"
	"shipstat/record"
)

// ErrInvalidFilter is returned when a filter spec fails validation.
var ErrInvalidFilter = errors.New("invalid filter")

// FilterSpec selects records for a report. Dimensions AND together; values
// within one dimension OR together. An empty set means no restriction on
// that dimension.
type FilterSpec struct {
	StartDate      string   `json:"startDate,omitempty"`
	EndDate        string   `json:"endDate,omitempty"`
	OrderStatus    []string `json:"orderStatus,omitempty"`
	PaymentMethod  []string `json:"paymentMethod,omitempty"`
	Channel        []string `json:"channel,omitempty"`
	SKU            []string `json:"sku,omitempty"`
	ProductName    []string `json:"productName,omitempty"`
	State          []string `json:"state,omitempty"`
	Courier        []string `json:"courier,omitempty"`
	NDRDescription []string `json:"ndrDescription,omitempty"`
}

// IsEmpty reports whether the spec restricts nothing.
func (f FilterSpec) IsEmpty() bool {
	return f.StartDate == "" && f.EndDate == "" &&
		len(f.OrderStatus) == 0 && len(f.PaymentMethod) == 0 &&
		len(f.Channel) == 0 && len(f.SKU) == 0 && len(f.ProductName) == 0 &&
		len(f.State) == 0 && len(f.Courier) == 0 && len(f.NDRDescription) == 0
}

// Validate checks the date range. Dates are inclusive ISO dates; a start
// after the end is rejected before any aggregation runs.
func (f FilterSpec) Validate() error {
	start, err := parseFilterDate(f.StartDate)
	if err != nil {
		return fmt.Errorf("%w: startDate %q", ErrInvalidFilter, f.StartDate)
	}
	end, err := parseFilterDate(f.EndDate)
	if err != nil {
		return fmt.Errorf("%w: endDate %q", ErrInvalidFilter, f.EndDate)
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return fmt.Errorf("%w: startDate %s after endDate %s", ErrInvalidFilter, f.StartDate, f.EndDate)
	}
	return nil
}

func parseFilterDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, ok := record.ParseDate(s); ok {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unparsable date %q", s)
}

// Raw statuses that must be matched against the original status field only.
// The derived category collapses these (all RTO variants become RTO, all
// undelivered attempts become NDR), so filters on them compare raw text.
var explicitStatuses = []string{
	"CANCELED", "CANCELLED", "CANCEL",
	"DESTROYED", "LOST", "UNTRACEABLE",
	"PICKUP EXCEPTION",
	"REACHED BACK AT_SELLER_CITY",
	"REACHED DESTINATION HUB",
	"RTO DELIVERED", "RTO IN TRANSIT", "RTO INITIATED", "RTO NDR",
	"UNDELIVERED-1ST ATTEMPT", "UNDELIVERED-2ND ATTEMPT", "UNDELIVERED-3RD ATTEMPT",
	"OUT FOR DELIVERY", "OUT FOR PICKUP", "PICKED UP",
	"IN TRANSIT", "IN TRANSIT-AT DESTINATION HUB",
}

// ExplicitStatuses returns the closed raw-status list, used by the filter
// options endpoint to seed the status dropdown.
func ExplicitStatuses() []string {
	out := make([]string, len(explicitStatuses))
	copy(out, explicitStatuses)
	return out
}

// Alias groups for common status spellings. A filter value that heads a
// group accepts any member.
var statusAliases = map[string][]string{
	"CANCELED":                {"CANCELED", "CANCELLED", "CANCEL", "CANCELLATION"},
	"CANCELLED":               {"CANCELED", "CANCELLED", "CANCEL", "CANCELLATION"},
	"DELIVERED":               {"DELIVERED", "DEL"},
	"DESTROYED":               {"DESTROYED", "DESTROY"},
	"IN TRANSIT":              {"IN TRANSIT", "IN_TRANSIT", "IN-TRANSIT", "INTRANSIT", "IN TRANSIT-AT DESTINATION HUB"},
	"LOST":                    {"LOST"},
	"OUT FOR DELIVERY":        {"OUT FOR DELIVERY", "OFD", "OUT_FOR_DELIVERY"},
	"RTO DELIVERED":           {"RTO DELIVERED", "RTO_DELIVERED"},
	"RTO INITIATED":           {"RTO INITIATED", "RTO_INITIATED", "RTO"},
	"RTO IN TRANSIT":          {"RTO IN TRANSIT", "RTO_IN_TRANSIT"},
	"RTO NDR":                 {"RTO NDR", "RTO_NDR"},
	"UNDELIVERED":             {"UNDELIVERED", "NDR", "PENDING"},
	"PICKUP EXCEPTION":        {"PICKUP EXCEPTION", "PICKUP_EXCEPTION"},
	"PICKED UP":               {"PICKED UP", "PICKED_UP"},
	"REACHED DESTINATION HUB": {"REACHED DESTINATION HUB", "REACHED_DESTINATION_HUB"},
}

// normalizeStatus collapses underscores and dashes to spaces and squeezes
// whitespace so spelling variants compare equal.
func normalizeStatus(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	return strings.Join(strings.Fields(s), " ")
}

func statusMatches(rawStatus, filterValue string) bool {
	status := strings.ToUpper(strings.TrimSpace(rawStatus))
	if status == "" {
		return false
	}
	filter := strings.ToUpper(strings.TrimSpace(filterValue))

	if aliases, ok := statusAliases[filter]; ok {
		for _, alias := range aliases {
			if status == alias {
				return true
			}
		}
		return false
	}

	ns := normalizeStatus(status)
	nf := normalizeStatus(filter)
	if ns == nf {
		return true
	}
	return strings.Contains(ns, nf) || strings.Contains(nf, ns)
}

// Matches evaluates the record against the spec, one dimension at a time.
func (f FilterSpec) Matches(rec record.Record) bool {
	if f.StartDate != "" || f.EndDate != "" {
		orderDate, ok := record.ResolveDate(rec, record.OrderDate)
		if !ok {
			return false
		}
		day := orderDate.Truncate(24 * time.Hour)
		if start, _ := parseFilterDate(f.StartDate); !start.IsZero() && day.Before(start) {
			return false
		}
		if end, _ := parseFilterDate(f.EndDate); !end.IsZero() && day.After(end) {
			return false
		}
	}

	if len(f.OrderStatus) > 0 {
		raw, _ := record.Resolve(rec, record.Status)
		matched := false
		for _, want := range f.OrderStatus {
			if statusMatches(raw, want) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if len(f.PaymentMethod) > 0 {
		bucket := strings.ToUpper(classify.PaymentBucketRecord(rec))
		matched := false
		for _, want := range f.PaymentMethod {
			if strings.ToUpper(strings.TrimSpace(want)) == bucket {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if !memberOf(rec, record.Channel, f.Channel) {
		return false
	}
	if !memberOf(rec, record.SKU, f.SKU) {
		return false
	}
	if !memberOf(rec, record.ProductName, f.ProductName) {
		return false
	}
	if !memberOf(rec, record.State, f.State) {
		return false
	}
	if !memberOf(rec, record.Courier, f.Courier) {
		return false
	}
	if !memberOf(rec, record.NDRReason, f.NDRDescription) {
		return false
	}
	return true
}

// memberOf is exact membership on the resolved value. An empty accepted set
// restricts nothing.
func memberOf(rec record.Record, field record.Field, accepted []string) bool {
	if len(accepted) == 0 {
		return true
	}
	v, ok := record.Resolve(rec, field)
	if !ok {
		return false
	}
	for _, want := range accepted {
		if v == want {
			return true
		}
	}
	return false
}

// Apply returns the records matching the spec, preserving order.
func (f FilterSpec) Apply(records []record.Record) []record.Record {
	if f.IsEmpty() {
		return records
	}
	out := make([]record.Record, 0, len(records))
	for _, rec := range records {
		if f.Matches(rec) {
			out = append(out, rec)
		}
	}
	return out
}
