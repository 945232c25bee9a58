package classify

import (
	"strings"

	"shipstat/record"
)

// Payment buckets. "NaN" is the catch-all for absent and unrecognized
// payment spellings, kept as-is because report consumers key on it.
const (
	PaymentCOD    = "COD"
	PaymentOnline = "Online"
	PaymentNaN    = "NaN"
)

// PaymentBucket maps a raw payment method value to its bucket. COD/CASH
// spellings are COD, ONLINE/PREPAID/PAID spellings are Online, everything
// else (including absent) is NaN.
func PaymentBucket(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case s == "":
		return PaymentNaN
	case strings.Contains(s, "COD") || strings.Contains(s, "CASH"):
		return PaymentCOD
	case strings.Contains(s, "ONLINE") || strings.Contains(s, "PREPAID") || strings.Contains(s, "PAID"):
		return PaymentOnline
	default:
		return PaymentNaN
	}
}

// PaymentBucketRecord buckets a record's resolved payment method.
func PaymentBucketRecord(rec record.Record) string {
	raw, ok := record.Resolve(rec, record.PaymentMethod)
	if !ok {
		return PaymentNaN
	}
	return PaymentBucket(raw)
}
