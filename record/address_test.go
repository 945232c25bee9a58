package record

import "testing"

func TestAddressQualityExplicitColumnWins(t *testing.T) {
	rec := Record{"address_quality": "short"}
	if got := AddressQuality(rec); got != AddressShort {
		t.Errorf("AddressQuality = %s, want SHORT from the explicit column", got)
	}
}

func TestAddressQualityDerived(t *testing.T) {
	cases := []struct {
		name string
		rec  Record
		want string
	}{
		{
			"complete address",
			Record{
				"address_line_1":  "221B Baker Street, Flat 2",
				"address_city":    "Mumbai",
				"address_state":   "Maharashtra",
				"address_pincode": "400001",
			},
			AddressGood,
		},
		{
			"missing line 1",
			Record{
				"address_city":    "Mumbai",
				"address_state":   "Maharashtra",
				"address_pincode": "400001",
			},
			AddressInvalid,
		},
		{
			"tiny address",
			Record{"address_line_1": "x"},
			AddressInvalid,
		},
		{
			"missing pincode",
			Record{
				"address_line_1": "221B Baker Street, Flat 2, Near Park",
				"address_city":   "Mumbai",
				"address_state":  "Maharashtra",
			},
			AddressShort,
		},
		{
			"short full address",
			Record{
				"address_line_1":  "12 A Rd",
				"address_city":    "Pune",
				"address_state":   "MH",
				"address_pincode": "411",
			},
			AddressShort,
		},
	}
	for _, c := range cases {
		if got := AddressQuality(c.rec); got != c.want {
			t.Errorf("%s: AddressQuality = %s, want %s", c.name, got, c.want)
		}
	}
}
