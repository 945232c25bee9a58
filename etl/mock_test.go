package etl

import (
	"testing"

	"shipstat/config"
	"shipstat/record"
)

func TestGenerateShipmentsResolvable(t *testing.T) {
	cfg := &config.MockDataConfig{
		Records:        300,
		TimeRangeDays:  30,
		Channels:       []string{"Shopify", "Amazon"},
		Couriers:       []string{"Delhivery"},
		States:         []string{"Maharashtra"},
		SKUs:           []string{"SKU-1", "SKU-2"},
		PaymentMethods: []string{"COD", "Prepaid"},
	}
	rows := NewMockDataGenerator(cfg).GenerateShipments()
	if len(rows) == 0 {
		t.Fatal("no rows generated")
	}

	for i, rec := range rows {
		if _, ok := record.ResolveDate(rec, record.OrderDate); !ok {
			t.Fatalf("row %d: order date does not resolve", i)
		}
		if _, ok := record.Resolve(rec, record.Status); !ok {
			t.Fatalf("row %d: status does not resolve", i)
		}
		if _, ok := record.ResolveNumber(rec, record.OrderValue); !ok {
			t.Fatalf("row %d: order value does not resolve", i)
		}
	}
}

func TestGenerateShipmentsStatusSideFields(t *testing.T) {
	cfg := &config.MockDataConfig{Records: 600, TimeRangeDays: 20}
	rows := NewMockDataGenerator(cfg).GenerateShipments()

	for i, rec := range rows {
		status, _ := record.Resolve(rec, record.Status)
		switch status {
		case "DELIVERED":
			if _, ok := record.ResolveDate(rec, record.DeliveryDate); !ok {
				t.Fatalf("row %d: delivered shipment without a delivery date", i)
			}
		case "CANCELED":
			if _, ok := record.Resolve(rec, record.CancellationReason); !ok {
				t.Fatalf("row %d: cancelled shipment without a reason", i)
			}
		case "UNDELIVERED-1ST ATTEMPT":
			if _, ok := record.ResolveDate(rec, record.NDRDate); !ok {
				t.Fatalf("row %d: NDR shipment without an attempt date", i)
			}
		}
	}
}
