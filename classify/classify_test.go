package classify

import (
	"testing"

	"shipstat/record"
)

func TestClassifyRuleOrder(t *testing.T) {
	cases := []struct {
		status string
		ndr    bool
		want   StatusCategory
	}{
		{"DELIVERED", false, Delivered},
		{"delivered", false, Delivered},
		{"RTO", false, RTO},
		{"RTO INITIATED", false, RTO},
		{"RTO DELIVERED", false, RTO},
		// Compound statuses: RTO outranks NDR and transit.
		{"RTO NDR", true, RTO},
		{"RTO IN TRANSIT", false, RTO},
		{"RETURN TO ORIGIN", false, RTO},
		{"UNDELIVERED-1ST ATTEMPT NDR", false, NDR},
		{"CANCELED", false, Cancelled},
		{"CANCELLED", false, Cancelled},
		{"ORDER CANCELLED", false, Cancelled},
		{"OUT FOR DELIVERY", false, OutForDelivery},
		{"OFD", false, OutForDelivery},
		{"IN TRANSIT", false, InTransit},
		{"IN TRANSIT-AT DESTINATION HUB", false, InTransit},
		{"PICKED UP", false, InTransit},
		{"SHIPPED", false, InTransit},
		{"RVP INITIATED", false, RVP},
		{"RETURN PICKUP SCHEDULED", false, RVP},
		{"LOST", false, Other},
		{"", false, Other},
	}
	for _, c := range cases {
		if got := Classify(c.status, c.ndr); got != c.want {
			t.Errorf("Classify(%q, %v) = %s, want %s", c.status, c.ndr, got, c.want)
		}
	}
}

func TestClassifyNDRSignalFromRecord(t *testing.T) {
	rec := record.Record{
		"status":             "IN TRANSIT",
		"ndr_1_attempt_date": "2025-01-10",
	}
	if got := ClassifyRecord(rec); got != NDR {
		t.Errorf("ClassifyRecord with an NDR attempt date = %s, want NDR", got)
	}
}

func TestClassifyDeliveredBeatsNDRSignal(t *testing.T) {
	// A delivered order keeps its category even after NDR attempts.
	if got := Classify("DELIVERED", true); got != Delivered {
		t.Errorf("Classify(DELIVERED, ndr) = %s, want Delivered", got)
	}
}

func TestCategoriesNamesAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, c := range Categories() {
		name := c.String()
		if name == "" {
			t.Errorf("category %d has no name", c)
		}
		if seen[name] {
			t.Errorf("duplicate category name %s", name)
		}
		seen[name] = true
	}
	if len(seen) != 8 {
		t.Errorf("expected 8 categories, got %d", len(seen))
	}
}

func TestFirstAttemptDelivered(t *testing.T) {
	clean := record.Record{"status": "DELIVERED"}
	if !FirstAttemptDelivered(clean) {
		t.Error("delivery without NDR attempts should count as first-attempt")
	}

	retried := record.Record{
		"status":             "DELIVERED",
		"ndr_1_attempt_date": "2025-01-10",
	}
	if FirstAttemptDelivered(retried) {
		t.Error("delivery after an NDR attempt must not count as first-attempt")
	}

	undelivered := record.Record{"status": "IN TRANSIT"}
	if FirstAttemptDelivered(undelivered) {
		t.Error("non-delivered record counted as first-attempt delivered")
	}
}

func TestPaymentBucket(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"COD", PaymentCOD},
		{"cod", PaymentCOD},
		{"Cash on Delivery", PaymentCOD},
		{"Prepaid", PaymentOnline},
		{"ONLINE", PaymentOnline},
		{"Paid", PaymentOnline},
		{"", PaymentNaN},
		{"barter", PaymentNaN},
	}
	for _, c := range cases {
		if got := PaymentBucket(c.in); got != c.want {
			t.Errorf("PaymentBucket(%q) = %s, want %s", c.in, got, c.want)
		}
	}

	if got := PaymentBucketRecord(record.Record{}); got != PaymentNaN {
		t.Errorf("PaymentBucketRecord(empty) = %s, want NaN", got)
	}
}
