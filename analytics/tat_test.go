package analytics

import (
	"testing"

	"shipstat/record"
)

func TestAverageOrderTATLegs(t *testing.T) {
	records := []record.Record{
		{
			"order_date":                  "2025-01-01",
			"order_picked_up_date":        "2025-01-03",
			"first_out_for_delivery_date": "2025-01-05",
		},
		{
			"order_date":           "2025-01-10",
			"order_picked_up_date": "2025-01-11",
		},
	}
	rows := AverageOrderTAT(records)

	byMetric := make(map[string]TATMetric)
	for _, r := range rows {
		byMetric[r.Metric] = r
	}

	pickup := byMetric["Order Placed to Pickup TAT"]
	if pickup.Count != 2 {
		t.Fatalf("pickup leg count = %d, want 2", pickup.Count)
	}
	if pickup.Average == nil || *pickup.Average != 1.5 {
		t.Errorf("pickup leg average = %v, want 1.5 days", pickup.Average)
	}

	ofd := byMetric["Order Placed to OFD TAT"]
	if ofd.Count != 1 {
		t.Errorf("OFD leg count = %d, want 1", ofd.Count)
	}
	if ofd.Average == nil || *ofd.Average != 4 {
		t.Errorf("OFD leg average = %v, want 4 days", ofd.Average)
	}
}

func TestAverageOrderTATApprovalFallsBackToOrderDate(t *testing.T) {
	records := []record.Record{
		{"order_date": "2025-01-01", "order_picked_up_date": "2025-01-02"},
	}
	rows := AverageOrderTAT(records)
	for _, r := range rows {
		if r.Metric == "Order Placed - Approval TAT" {
			if r.Count != 1 {
				t.Fatalf("approval leg count = %d, want 1 via fallback", r.Count)
			}
			if r.Average == nil || *r.Average != 0 {
				t.Errorf("approval leg average = %v, want 0 days", r.Average)
			}
		}
	}
}

func TestAverageOrderTATEmptyLegIsNil(t *testing.T) {
	records := []record.Record{{"order_date": "2025-01-01"}}
	rows := AverageOrderTAT(records)
	for _, r := range rows {
		if r.Metric == "AWB to Pickup TAT" && r.Average != nil {
			t.Error("leg with no samples must report a nil average")
		}
	}
}

func TestAverageOrderTATApprovedOrdersRow(t *testing.T) {
	rows := AverageOrderTAT(nil)
	last := rows[len(rows)-1]
	if last.Metric != "Approved Orders" || last.Count != 0 {
		t.Errorf("final row = %+v, want Approved Orders with count 0", last)
	}
}
