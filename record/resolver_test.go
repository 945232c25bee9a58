package record

import "testing"

func TestResolvePriorityOrder(t *testing.T) {
	rec := Record{
		"shiprocket_created_at": "2025-01-05",
		"order_date":            "2025-02-10",
	}
	got, ok := Resolve(rec, OrderDate)
	if !ok || got != "2025-01-05" {
		t.Errorf("Resolve(OrderDate) = %q, want the higher-priority key's value", got)
	}
}

func TestResolveSkipsSentinels(t *testing.T) {
	rec := Record{
		"original_status": "None",
		"status":          "DELIVERED",
	}
	got, ok := Resolve(rec, Status)
	if !ok || got != "DELIVERED" {
		t.Errorf("Resolve(Status) = %q %v, want fallthrough past the sentinel", got, ok)
	}
}

func TestResolveMissing(t *testing.T) {
	rec := Record{"unrelated": "x"}
	if _, ok := Resolve(rec, Courier); ok {
		t.Error("Resolve found a courier in a record without one")
	}
	if _, ok := ResolveDate(rec, DeliveryDate); ok {
		t.Error("ResolveDate found a delivery date in a record without one")
	}
}

func TestResolveDateSkipsUnparsable(t *testing.T) {
	rec := Record{
		"order_picked_up_date": "pending",
		"pickup_date":          "2025-03-01",
	}
	got, ok := ResolveDate(rec, PickupDate)
	if !ok {
		t.Fatal("ResolveDate failed")
	}
	if got.Format("2006-01-02") != "2025-03-01" {
		t.Errorf("ResolveDate = %v, want fallthrough to the parsable key", got)
	}
}

func TestResolveNumber(t *testing.T) {
	rec := Record{"order_total": "₹1,499.00"}
	d, ok := ResolveNumber(rec, OrderValue)
	if !ok {
		t.Fatal("ResolveNumber failed")
	}
	if d.String() != "1499" {
		t.Errorf("ResolveNumber = %s, want 1499", d)
	}
}
