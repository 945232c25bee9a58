package etl

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"shipstat/config"
	"shipstat/record"
)

// MockDataGenerator generates realistic mock shipment rows for demo
// sessions.
type MockDataGenerator struct {
	config *config.MockDataConfig
	rand   *rand.Rand
}

// NewMockDataGenerator creates a new mock data generator
func NewMockDataGenerator(cfg *config.MockDataConfig) *MockDataGenerator {
	return &MockDataGenerator{
		config: cfg,
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

var mockStatuses = []struct {
	status string
	weight int
}{
	{"DELIVERED", 55},
	{"IN TRANSIT", 10},
	{"OUT FOR DELIVERY", 5},
	{"UNDELIVERED-1ST ATTEMPT", 8},
	{"RTO INITIATED", 6},
	{"RTO DELIVERED", 5},
	{"CANCELED", 7},
	{"PICKED UP", 3},
	{"LOST", 1},
}

var mockNDRReasons = []string{
	"Customer not available",
	"Address incomplete",
	"Customer refused delivery",
	"Phone unreachable",
	"Out of delivery area",
}

func (m *MockDataGenerator) pickStatus() string {
	total := 0
	for _, s := range mockStatuses {
		total += s.weight
	}
	n := m.rand.Intn(total)
	for _, s := range mockStatuses {
		if n < s.weight {
			return s.status
		}
		n -= s.weight
	}
	return "DELIVERED"
}

// GenerateShipments builds mock shipment rows day by day, with a sine wave
// over the range so the weekly charts show seasonal movement.
func (m *MockDataGenerator) GenerateShipments() []record.Record {
	var rows []record.Record
	startDate := time.Now().AddDate(0, 0, -m.config.TimeRangeDays)

	days := m.config.TimeRangeDays
	if days <= 0 {
		days = 30
	}
	perDay := m.config.Records / days
	if perDay < 1 {
		perDay = 1
	}

	for day := 0; day < days; day++ {
		trend := float64(day) * 0.1
		dailyBase := float64(perDay) + float64(perDay)*0.4*math.Sin(trend)
		noise := (m.rand.Float64() - 0.5) * float64(perDay) * 0.3
		dailyCount := int(dailyBase + noise)
		if dailyCount < 1 {
			dailyCount = 1
		}

		orderDate := startDate.AddDate(0, 0, day)
		for i := 0; i < dailyCount; i++ {
			rows = append(rows, m.generateShipment(orderDate))
		}
	}
	return rows
}

func (m *MockDataGenerator) generateShipment(orderDate time.Time) record.Record {
	status := m.pickStatus()
	sku := m.pick(m.config.SKUs, "SKU-0001")
	placedAt := orderDate.Add(time.Duration(m.rand.Intn(24)) * time.Hour)

	row := record.Record{
		"order_id":              fmt.Sprintf("ORD%08d", m.rand.Intn(100000000)),
		"shiprocket_created_at": placedAt.Format("2006-01-02 15:04:05"),
		"status":                status,
		"master_sku":            sku,
		"product_name":          "Product " + sku,
		"channel":               m.pick(m.config.Channels, "Website"),
		"courier_company":       m.pick(m.config.Couriers, "Delhivery"),
		"address_state":         m.pick(m.config.States, "Maharashtra"),
		"address_city":          "City " + fmt.Sprint(m.rand.Intn(40)),
		"address_pincode":       fmt.Sprintf("%06d", 100000+m.rand.Intn(899999)),
		"address_line_1":        fmt.Sprintf("%d Example Street, Sector %d", m.rand.Intn(200)+1, m.rand.Intn(60)+1),
		"payment_method":        m.pick(m.config.PaymentMethods, "COD"),
		"order_total":           fmt.Sprintf("%.2f", 199.0+m.rand.Float64()*2800.0),
		"margin":                fmt.Sprintf("%.2f", 20.0+m.rand.Float64()*400.0),
	}

	pickupAt := placedAt.Add(time.Duration(12+m.rand.Intn(48)) * time.Hour)
	ofdAt := pickupAt.Add(time.Duration(24+m.rand.Intn(72)) * time.Hour)

	switch status {
	case "DELIVERED":
		row["order_picked_up_date"] = pickupAt.Format("2006-01-02 15:04:05")
		row["first_out_for_delivery_date"] = ofdAt.Format("2006-01-02 15:04:05")
		row["order_delivered_date"] = ofdAt.Add(time.Duration(m.rand.Intn(24)) * time.Hour).Format("2006-01-02 15:04:05")
		// Roughly a fifth of deliveries go through an NDR attempt first.
		if m.rand.Intn(5) == 0 {
			row["ndr_1_attempt_date"] = ofdAt.Format("2006-01-02")
			row["latest_ndr_reason"] = m.pick(mockNDRReasons, "Customer not available")
		}
	case "UNDELIVERED-1ST ATTEMPT":
		row["order_picked_up_date"] = pickupAt.Format("2006-01-02 15:04:05")
		row["first_out_for_delivery_date"] = ofdAt.Format("2006-01-02 15:04:05")
		row["ndr_1_attempt_date"] = ofdAt.Format("2006-01-02")
		row["latest_ndr_reason"] = m.pick(mockNDRReasons, "Customer not available")
	case "RTO INITIATED", "RTO DELIVERED":
		row["order_picked_up_date"] = pickupAt.Format("2006-01-02 15:04:05")
		row["rto_initiated_date"] = ofdAt.Format("2006-01-02")
		if status == "RTO DELIVERED" {
			row["rto_delivered_date"] = ofdAt.Add(96 * time.Hour).Format("2006-01-02")
		}
	case "CANCELED":
		row["cancellation_reason"] = m.pick([]string{
			"Customer requested", "Out of stock", "Duplicate order", "Payment failed",
		}, "Customer requested")
	case "IN TRANSIT", "OUT FOR DELIVERY", "PICKED UP":
		row["order_picked_up_date"] = pickupAt.Format("2006-01-02 15:04:05")
		if status == "OUT FOR DELIVERY" {
			row["first_out_for_delivery_date"] = ofdAt.Format("2006-01-02 15:04:05")
		}
	}

	return row
}

func (m *MockDataGenerator) pick(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return values[m.rand.Intn(len(values))]
}
