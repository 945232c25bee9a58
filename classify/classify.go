// Package classify maps raw carrier status strings onto the closed category
// taxonomy every report counts against.
package classify

import (
	"strings"

	"shipstat/record"
)

// StatusCategory is the closed set of business statuses. Every raw status
// maps to exactly one category; unrecognized input falls through to Other.
type StatusCategory int

const (
	Delivered StatusCategory = iota
	OutForDelivery
	InTransit
	RTO
	NDR
	Cancelled
	RVP
	Other
)

var categoryNames = map[StatusCategory]string{
	Delivered:      "DELIVERED",
	OutForDelivery: "OUT_FOR_DELIVERY",
	InTransit:      "IN_TRANSIT",
	RTO:            "RTO",
	NDR:            "NDR",
	Cancelled:      "CANCELLED",
	RVP:            "RVP",
	Other:          "OTHER",
}

func (c StatusCategory) String() string { return categoryNames[c] }

// Categories lists every StatusCategory in display order.
func Categories() []StatusCategory {
	return []StatusCategory{Delivered, OutForDelivery, InTransit, RTO, NDR, Cancelled, RVP, Other}
}

// Classify maps a raw status to its category. Rules are ordered and first
// match wins; RTO is tested before NDR and transit so compound statuses like
// "RTO NDR" and "RTO IN TRANSIT" land in RTO. hasNDRAttempt carries the
// record-level signal (any NDR attempt date present) into rule 3.
func Classify(rawStatus string, hasNDRAttempt bool) StatusCategory {
	s := strings.ToUpper(strings.TrimSpace(rawStatus))

	switch {
	case s == "DELIVERED":
		return Delivered
	case s == "RTO" || strings.HasPrefix(s, "RTO") || strings.Contains(s, "RETURN TO ORIGIN"):
		return RTO
	case hasNDRAttempt || strings.Contains(s, "NDR"):
		return NDR
	case strings.Contains(s, "CANCEL"):
		return Cancelled
	case strings.Contains(s, "OFD") || strings.Contains(s, "OUT FOR DELIVERY"):
		return OutForDelivery
	case strings.Contains(s, "TRANSIT") || strings.Contains(s, "PICKED UP") ||
		strings.Contains(s, "REACHED DESTINATION") || strings.Contains(s, "AT DESTINATION") ||
		strings.Contains(s, "SHIPPED"):
		return InTransit
	case strings.Contains(s, "RVP") || strings.Contains(s, "RETURN PICKUP"):
		return RVP
	default:
		return Other
	}
}

// ClassifyRecord classifies a record's resolved status, folding in its NDR
// attempt signal. A record with no resolvable status is Other unless its NDR
// date resolves.
func ClassifyRecord(rec record.Record) StatusCategory {
	status, _ := record.Resolve(rec, record.Status)
	return Classify(status, HasNDRAttempt(rec))
}

// HasNDRAttempt reports whether any NDR attempt date resolves on the record.
func HasNDRAttempt(rec record.Record) bool {
	_, ok := record.ResolveDate(rec, record.NDRDate)
	return ok
}

// FirstAttemptDelivered reports whether the record delivered on the first
// attempt: classified Delivered with no NDR attempt on file.
func FirstAttemptDelivered(rec record.Record) bool {
	hasNDR := HasNDRAttempt(rec)
	if hasNDR {
		return false
	}
	status, _ := record.Resolve(rec, record.Status)
	return Classify(status, false) == Delivered
}
