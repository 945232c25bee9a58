package record

import "strings"

// Address quality buckets.
const (
	AddressGood    = "GOOD"
	AddressShort   = "SHORT"
	AddressInvalid = "INVALID"
)

// AddressQuality derives an address quality bucket from a record's address
// parts. An explicit address_quality column wins when it resolves. Otherwise:
// missing line 1 or a full address under 10 characters is INVALID, missing
// city/state/pincode or a full address under 30 characters is SHORT,
// everything else is GOOD.
func AddressQuality(rec Record) string {
	if explicit, ok := Resolve(rec, AddressQualityField); ok {
		return strings.ToUpper(strings.TrimSpace(explicit))
	}

	line1, _ := Resolve(rec, AddressLine1)
	line2, _ := Resolve(rec, AddressLine2)
	city, _ := Resolve(rec, City)
	state, _ := Resolve(rec, State)
	pincode, _ := Resolve(rec, Pincode)

	full := strings.TrimSpace(strings.Join([]string{line1, line2, city, state, pincode}, " "))
	full = strings.Join(strings.Fields(full), " ")

	if line1 == "" || len(full) < 10 {
		return AddressInvalid
	}
	if city == "" || state == "" || pincode == "" || len(full) < 30 {
		return AddressShort
	}
	return AddressGood
}
