package record

import (
	"time"

	"github.com/shopspring/decimal"
)

// Field identifies a canonical value that can be resolved out of a record's
// raw keys. Each field carries a priority-ordered candidate key list; the
// first candidate whose value is present and non-sentinel wins.
type Field int

const (
	OrderDate Field = iota
	PickupDate
	OFDDate
	DeliveryDate
	NDRDate
	RTODate
	AWBDate
	ApprovalDate
	OrderValue
	Margin
	ProductName
	SKU
	Category
	State
	City
	Pincode
	AddressLine1
	AddressLine2
	Courier
	PaymentMethod
	Channel
	Status
	NDRReason
	CancellationReason
	AddressQualityField
	ReturnStatus
)

// Candidate key tables. Keys appear in their normalized spellings plus the
// un-normalized variants seen in live exports, so records resolve whether or
// not they went through NormalizeKeys first.
var fieldKeys = map[Field][]string{
	OrderDate: {
		"shiprocket__created__at", "shiprocket_created_at",
		"channel__created__at", "channel_created_at",
		"order_date", "order__date", "order_placed_date", "created_at",
	},
	PickupDate: {
		"order__picked__up__date", "order_picked_up_date",
		"pickedup__timestamp", "pickedup_timestamp",
		"pickup_date", "pickup_datetime",
		"pickup__first__attempt__date", "pickup_first_attempt_date",
	},
	OFDDate: {
		"first__out__for__delivery__date", "first_out_for_delivery_date",
		"latest__o_f_d__date", "latest_o_f_d__date", "latest_ofd_date",
		"ofd_date", "ofd_datetime", "out_for_delivery_date",
	},
	DeliveryDate: {
		"order__delivered__date", "order_delivered_date",
		"delivery_date", "delivered_date", "delivered_datetime",
	},
	NDRDate: {
		"latest__n_d_r__date", "latest_n_d_r__date", "latest_ndr_date",
		"n_d_r_1__attempt__date", "ndr_1_attempt_date",
		"ndr_2_attempt_date", "ndr_3_attempt_date",
		"ndr_date", "ndr_datetime",
	},
	RTODate: {
		"r_t_o__initiated__date", "r_t_o__delivered__date",
		"rto_initiated_date", "rto_delivered_date",
		"rto_date", "rto_datetime",
	},
	AWBDate: {
		"a_w_b__assigned__date", "awb_assigned_date", "awb__assigned__date",
	},
	ApprovalDate: {
		"approval__date", "approval_date",
		"order__approved__date", "order_approved_date",
	},
	OrderValue: {
		"order_total", "order_value", "price", "amount",
		"gmv_amount", "total_order_value", "order__total",
	},
	Margin: {
		"margin", "profit", "profit_margin", "margin_amount",
	},
	ProductName: {
		"product_name", "product__name",
	},
	SKU: {
		"master_s_k_u", "master_sku", "channel_s_k_u", "channel_sku", "sku",
	},
	Category: {
		"product_category", "category",
	},
	State: {
		"address_state", "state", "address__state",
	},
	City: {
		"address_city", "city",
	},
	Pincode: {
		"address_pincode", "pincode",
	},
	AddressLine1: {
		"address_line_1", "address_line1",
	},
	AddressLine2: {
		"address_line_2", "address_line2",
	},
	Courier: {
		"courier_company", "courier__company", "master_courier",
	},
	PaymentMethod: {
		"payment_method", "payment__method",
	},
	Channel: {
		"channel", "channel__",
	},
	Status: {
		"original_status", "status", "delivery_status", "current_status",
	},
	NDRReason: {
		"latest__n_d_r__reason", "latest_n_d_r__reason",
		"latest_ndr_reason", "ndr_reason",
	},
	CancellationReason: {
		"cancellation_reason", "cancellation__reason",
	},
	AddressQualityField: {
		"address_quality",
	},
	ReturnStatus: {
		"return_status", "return__status", "is_returned", "returned",
	},
}

// Resolve returns the first present, non-sentinel value for the field as a
// string. ok is false when every candidate key is absent or sentinel.
func Resolve(rec Record, f Field) (string, bool) {
	for _, key := range fieldKeys[f] {
		v, present := rec[key]
		if !present || IsSentinel(v) {
			continue
		}
		if s := toString(v); s != "" {
			return s, true
		}
	}
	return "", false
}

// ResolveDate resolves the field and parses it as a date.
func ResolveDate(rec Record, f Field) (time.Time, bool) {
	for _, key := range fieldKeys[f] {
		v, present := rec[key]
		if !present || IsSentinel(v) {
			continue
		}
		if t, ok := ParseDate(v); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// ResolveNumber resolves the field and parses it as a decimal amount.
func ResolveNumber(rec Record, f Field) (decimal.Decimal, bool) {
	for _, key := range fieldKeys[f] {
		v, present := rec[key]
		if !present || IsSentinel(v) {
			continue
		}
		if d, ok := ParseNumber(v); ok {
			return d, true
		}
	}
	return decimal.Zero, false
}
