package analytics

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"shipstat/classify"
	"shipstat/record"
)

// ErrUnknownReport is returned for report types outside the registry.
var ErrUnknownReport = errors.New("unknown report type")

// Builder computes one report over an already-filtered record set.
type Builder func(records []record.Record, g Granularity) any

var builders = map[string]Builder{
	"weekly-summary":              buildWeeklySummary,
	"ndr-weekly":                  buildNDRWeekly,
	"state-performance":           buildStatePerformance,
	"category-share":              buildCategoryShare,
	"cancellation-tracker":        buildCancellationTracker,
	"channel-share":               buildChannelShare,
	"payment-method":              buildPaymentMethod,
	"product-analysis":            buildProductAnalysis,
	"sku-analysis":                buildSKUAnalysis,
	"summary-metrics":             buildSummaryMetrics,
	"order-statuses":              buildOrderStatuses,
	"payment-method-outcome":      buildPaymentMethodOutcome,
	"ndr-count":                   buildNDRCount,
	"address-type-share":          buildAddressTypeShare,
	"average-order-tat":           buildAverageOrderTAT,
	"fad-del-can-rto":             buildFadDelCanRTO,
	"cancellation-reason-tracker": buildCancellationReasonTracker,
	"delivery-partner-analysis":   buildDeliveryPartnerAnalysis,
}

// ReportTypes lists every registered report type, sorted.
func ReportTypes() []string {
	types := make([]string, 0, len(builders))
	for t := range builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Build runs the named report over the records.
func Build(reportType string, records []record.Record, g Granularity) (any, error) {
	builder, ok := builders[reportType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownReport, reportType)
	}
	return builder(records, g), nil
}

func pct(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d) * 100
}

func money(d decimal.Decimal) float64 { return d.InexactFloat64() }

// timeGroups buckets records by their time key at the given granularity.
// Only day granularity drops undated records; week buckets keep them under
// UnknownWeek, so weekly totals always cover the whole input.
func timeGroups(records []record.Record, g Granularity) map[string][]record.Record {
	origin, hasOrigin := WeekOrigin(records)
	groups := make(map[string][]record.Record)
	for _, rec := range records {
		key, ok := BucketKey(rec, g, origin, hasOrigin)
		if !ok {
			continue
		}
		groups[key] = append(groups[key], rec)
	}
	return groups
}

// WeeklySummaryRow is one time bucket of the weekly summary report.
type WeeklySummaryRow struct {
	OrderWeek            string  `json:"order_week"`
	TotalOrders          int     `json:"total_orders"`
	TotalOrderValue      float64 `json:"total_order_value"`
	AvgOrderValue        float64 `json:"avg_order_value"`
	TotalNDR             int     `json:"total_ndr"`
	NDRDeliveredAfter    int     `json:"ndr_delivered_after"`
	NDRRatePercent       float64 `json:"ndr_rate_percent"`
	NDRConversionPercent float64 `json:"ndr_conversion_percent"`
	FADCount             int     `json:"fad_count"`
	OFDCount             int     `json:"ofd_count"`
	DelCount             int     `json:"del_count"`
	NDRCount             int     `json:"ndr_count"`
	RTOCount             int     `json:"rto_count"`
	AvgTotalTAT          float64 `json:"avg_total_tat"`
}

func buildWeeklySummary(records []record.Record, g Granularity) any {
	rows := make([]WeeklySummaryRow, 0)
	for key, group := range timeGroups(records, g) {
		row := WeeklySummaryRow{OrderWeek: key, TotalOrders: len(group)}
		gmv := decimal.Zero
		var tatSum float64
		var tatCount int
		for _, rec := range group {
			cat := classify.ClassifyRecord(rec)
			hasNDR := classify.HasNDRAttempt(rec)
			if hasNDR {
				row.TotalNDR++
			}
			switch cat {
			case classify.Delivered:
				row.DelCount++
				if hasNDR {
					row.NDRDeliveredAfter++
				} else {
					row.FADCount++
				}
				if v, ok := record.ResolveNumber(rec, record.OrderValue); ok {
					gmv = gmv.Add(v)
				}
			case classify.OutForDelivery:
				row.OFDCount++
			case classify.NDR:
				row.NDRCount++
			case classify.RTO:
				row.RTOCount++
			}
			if tat, ok := DeliveryTAT(rec); ok {
				tatSum += tat
				tatCount++
			}
		}
		row.TotalOrderValue = money(gmv)
		if row.DelCount > 0 {
			row.AvgOrderValue = money(gmv.Div(decimal.NewFromInt(int64(row.DelCount))))
		}
		row.NDRRatePercent = pct(row.TotalNDR, row.TotalOrders)
		row.NDRConversionPercent = pct(row.NDRDeliveredAfter, row.TotalNDR)
		if tatCount > 0 {
			row.AvgTotalTAT = tatSum / float64(tatCount)
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].OrderWeek < rows[j].OrderWeek })
	return rows
}

// NDRWeeklyRow is one time bucket of the NDR weekly report.
type NDRWeeklyRow struct {
	OrderWeek            string         `json:"order_week"`
	TotalNDR             int            `json:"total_ndr"`
	NDRDeliveredAfter    int            `json:"ndr_delivered_after"`
	NDRRatePercent       float64        `json:"ndr_rate_percent"`
	NDRConversionPercent float64        `json:"ndr_conversion_percent"`
	NDRReasons           map[string]int `json:"ndr_reasons"`
}

func buildNDRWeekly(records []record.Record, g Granularity) any {
	groups := timeGroups(records, g)
	rows := make([]NDRWeeklyRow, 0)
	for key, group := range groups {
		row := NDRWeeklyRow{OrderWeek: key, NDRReasons: make(map[string]int)}
		for _, rec := range group {
			if !classify.HasNDRAttempt(rec) {
				continue
			}
			row.TotalNDR++
			if classify.ClassifyRecord(rec) == classify.Delivered {
				row.NDRDeliveredAfter++
			}
			reason, ok := record.Resolve(rec, record.NDRReason)
			if !ok {
				reason = UnknownBucket
			}
			row.NDRReasons[reason]++
		}
		if row.TotalNDR == 0 {
			continue
		}
		row.NDRRatePercent = pct(row.TotalNDR, len(group))
		row.NDRConversionPercent = pct(row.NDRDeliveredAfter, row.TotalNDR)
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].OrderWeek < rows[j].OrderWeek })
	return rows
}

// StatePerformanceRow summarizes one state across the whole filtered set.
type StatePerformanceRow struct {
	State            string  `json:"state"`
	TotalOrders      int     `json:"total_orders"`
	DelCount         int     `json:"del_count"`
	RTOCount         int     `json:"rto_count"`
	NDRCount         int     `json:"ndr_count"`
	DeliveredPercent float64 `json:"delivered_percent"`
	RTOPercent       float64 `json:"rto_percent"`
	NDRPercent       float64 `json:"ndr_percent"`
	OrderShare       float64 `json:"order_share"`
}

func buildStatePerformance(records []record.Record, _ Granularity) any {
	agg := Aggregate(records, dimField(record.State), GranularityOverall)
	rows := make([]StatePerformanceRow, 0, len(agg.Rows))
	for _, r := range agg.Rows {
		if len(r.Cells) == 0 {
			continue
		}
		c := r.Cells[0]
		rows = append(rows, StatePerformanceRow{
			State:            r.Dimension,
			TotalOrders:      c.Orders,
			DelCount:         c.Delivered,
			RTOCount:         c.RTO,
			NDRCount:         c.NDR,
			DeliveredPercent: c.DeliveredPercent,
			RTOPercent:       c.RTOPercent,
			NDRPercent:       c.NDRPercent,
			OrderShare:       c.OrderShare,
		})
	}
	return rows
}

// ShareRow is a name/orders/value triple used by category and channel share.
type ShareRow struct {
	Name            string  `json:"-"`
	TotalOrders     int     `json:"total_orders"`
	TotalOrderValue float64 `json:"total_order_value"`
}

type categoryShareRow struct {
	CategoryName string `json:"categoryname"`
	ShareRow
}

func buildCategoryShare(records []record.Record, _ Granularity) any {
	rows := shareBy(records, record.Category, "Uncategorized")
	out := make([]categoryShareRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, categoryShareRow{CategoryName: r.Name, ShareRow: r})
	}
	return out
}

type channelShareRow struct {
	Channel string `json:"channel"`
	ShareRow
}

func buildChannelShare(records []record.Record, _ Granularity) any {
	rows := shareBy(records, record.Channel, UnknownBucket)
	out := make([]channelShareRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, channelShareRow{Channel: r.Name, ShareRow: r})
	}
	return out
}

// shareBy groups on one field and sums order value across all orders in the
// group, delivered or not.
func shareBy(records []record.Record, field record.Field, fallback string) []ShareRow {
	type acc struct {
		orders int
		value  decimal.Decimal
	}
	groups := make(map[string]*acc)
	for _, rec := range records {
		name, ok := record.Resolve(rec, field)
		if !ok {
			name = fallback
		}
		a := groups[name]
		if a == nil {
			a = &acc{}
			groups[name] = a
		}
		a.orders++
		if v, ok := record.ResolveNumber(rec, record.OrderValue); ok {
			a.value = a.value.Add(v)
		}
	}
	rows := make([]ShareRow, 0, len(groups))
	for name, a := range groups {
		rows = append(rows, ShareRow{Name: name, TotalOrders: a.orders, TotalOrderValue: money(a.value)})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalOrders != rows[j].TotalOrders {
			return rows[i].TotalOrders > rows[j].TotalOrders
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

// CancellationTrackerRow is one (time bucket, cancellation bucket) cell.
type CancellationTrackerRow struct {
	OrderWeek          string  `json:"order_week"`
	CancellationBucket string  `json:"cancellation_bucket"`
	Count              int     `json:"count"`
	Percentage         float64 `json:"percentage"`
}

const notCancelled = "Not Canceled"

func cancellationBucket(rec record.Record) string {
	if reason, ok := record.Resolve(rec, record.CancellationReason); ok {
		return reason
	}
	if classify.ClassifyRecord(rec) == classify.Cancelled {
		return "Cancelled"
	}
	return notCancelled
}

func buildCancellationTracker(records []record.Record, g Granularity) any {
	rows := make([]CancellationTrackerRow, 0)
	for key, group := range timeGroups(records, g) {
		buckets := make(map[string]int)
		for _, rec := range group {
			buckets[cancellationBucket(rec)]++
		}
		for bucket, count := range buckets {
			rows = append(rows, CancellationTrackerRow{
				OrderWeek:          key,
				CancellationBucket: bucket,
				Count:              count,
				Percentage:         pct(count, len(group)),
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].OrderWeek != rows[j].OrderWeek {
			return rows[i].OrderWeek < rows[j].OrderWeek
		}
		return rows[i].CancellationBucket < rows[j].CancellationBucket
	})
	return rows
}

// PaymentShareRow is one payment bucket's share of all orders.
type PaymentShareRow struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

func buildPaymentMethod(records []record.Record, _ Granularity) any {
	agg := Aggregate(records, dimPaymentBucket, GranularityOverall)
	rows := make([]PaymentShareRow, 0, len(agg.Rows))
	for _, r := range agg.Rows {
		rows = append(rows, PaymentShareRow{
			Name:  r.Dimension,
			Value: pct(r.TotalOrders, agg.TotalOrders),
			Count: r.TotalOrders,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Value > rows[j].Value })
	return rows
}

// ProductAnalysisRow summarizes one product across the filtered set.
type ProductAnalysisRow struct {
	ProductName      string  `json:"product_name"`
	Orders           int     `json:"orders"`
	OrderShare       float64 `json:"orderShare"`
	GMV              float64 `json:"gmv"`
	Margin           float64 `json:"margin"`
	DeliveredPercent float64 `json:"deliveredPercent"`
	RTOPercent       float64 `json:"rtoPercent"`
	ReturnedPercent  float64 `json:"returnedPercent"`
}

func buildProductAnalysis(records []record.Record, _ Granularity) any {
	agg := Aggregate(records, dimField(record.ProductName), GranularityOverall)
	rows := make([]ProductAnalysisRow, 0, len(agg.Rows))
	for _, r := range agg.Rows {
		if len(r.Cells) == 0 {
			continue
		}
		c := r.Cells[0]
		rows = append(rows, ProductAnalysisRow{
			ProductName:      r.Dimension,
			Orders:           c.Orders,
			OrderShare:       c.OrderShare,
			GMV:              money(c.GMV),
			Margin:           money(c.Margin),
			DeliveredPercent: c.DeliveredPercent,
			RTOPercent:       c.RTOPercent,
			ReturnedPercent:  pct(c.Returned, c.Delivered),
		})
	}
	return rows
}

// SKUAnalysisRow summarizes one SKU across the filtered set.
type SKUAnalysisRow struct {
	SKU              string  `json:"sku"`
	ProductName      string  `json:"product_name"`
	Orders           int     `json:"orders"`
	OrderShare       float64 `json:"orderShare"`
	GMV              float64 `json:"gmv"`
	AvgOrderValue    float64 `json:"avgOrderValue"`
	Margin           float64 `json:"margin"`
	Delivered        int     `json:"delivered"`
	DeliveredPercent float64 `json:"deliveredPercent"`
	RTO              int     `json:"rto"`
	RTOPercent       float64 `json:"rtoPercent"`
	NDR              int     `json:"ndr"`
	NDRPercent       float64 `json:"ndrPercent"`
	Cancelled        int     `json:"cancelled"`
	CancelledPercent float64 `json:"cancelledPercent"`
	InTransit        int     `json:"inTransit"`
	InTransitPercent float64 `json:"inTransitPercent"`
}

func buildSKUAnalysis(records []record.Record, _ Granularity) any {
	// Rows without a usable SKU are excluded rather than bucketed.
	withSKU := make([]record.Record, 0, len(records))
	productNames := make(map[string]string)
	ndrCounts := make(map[string]int)
	for _, rec := range records {
		sku, ok := record.Resolve(rec, record.SKU)
		if !ok {
			continue
		}
		withSKU = append(withSKU, rec)
		if _, seen := productNames[sku]; !seen {
			if name, ok := record.Resolve(rec, record.ProductName); ok {
				productNames[sku] = name
			}
		}
		if classify.HasNDRAttempt(rec) {
			ndrCounts[sku]++
		}
	}

	agg := Aggregate(withSKU, dimField(record.SKU), GranularityOverall)
	rows := make([]SKUAnalysisRow, 0, len(agg.Rows))
	for _, r := range agg.Rows {
		if len(r.Cells) == 0 {
			continue
		}
		c := r.Cells[0]
		name := productNames[r.Dimension]
		if name == "" {
			name = UnknownBucket
		}
		inTransit := c.InTransit + c.OFD
		ndr := ndrCounts[r.Dimension]
		row := SKUAnalysisRow{
			SKU:              r.Dimension,
			ProductName:      name,
			Orders:           c.Orders,
			OrderShare:       c.OrderShare,
			GMV:              money(c.GMV),
			Margin:           money(c.Margin),
			Delivered:        c.Delivered,
			DeliveredPercent: c.DeliveredPercent,
			RTO:              c.RTO,
			RTOPercent:       c.RTOPercent,
			NDR:              ndr,
			NDRPercent:       pct(ndr, c.Orders),
			Cancelled:        c.Cancelled,
			CancelledPercent: c.CancelledPercent,
			InTransit:        inTransit,
			InTransitPercent: pct(inTransit, c.Orders),
		}
		if c.Delivered > 0 {
			row.AvgOrderValue = money(c.GMV.Div(decimal.NewFromInt(int64(c.Delivered))))
		}
		rows = append(rows, row)
	}
	return rows
}

// SummaryMetrics is the dashboard headline block. Several values carry two
// key spellings because different consumers read different ones.
type SummaryMetrics struct {
	SyncedOrders      int     `json:"syncedOrders"`
	TotalOrders       int     `json:"total_orders"`
	TotalDelivered    int     `json:"total_delivered"`
	DeliveredOrders   int     `json:"deliveredOrders"`
	TotalNDR          int     `json:"total_ndr"`
	TotalRTO          int     `json:"total_rto"`
	RTOOrders         int     `json:"rtoOrders"`
	TotalGMV          float64 `json:"total_gmv"`
	GMV               float64 `json:"gmv"`
	DeliveryRate      float64 `json:"delivery_rate"`
	DeliveryPercent   float64 `json:"deliveryPercent"`
	NDRRate           float64 `json:"ndr_rate"`
	RTORate           float64 `json:"rto_rate"`
	RTOPercent        float64 `json:"rtoPercent"`
	InTransitOrders   int     `json:"inTransitOrders"`
	InTransitPercent  float64 `json:"inTransitPercent"`
	UndeliveredOrders int     `json:"undeliveredOrders"`
}

func buildSummaryMetrics(records []record.Record, _ Granularity) any {
	var m SummaryMetrics
	gmv := decimal.Zero
	for _, rec := range records {
		m.TotalOrders++
		cat := classify.ClassifyRecord(rec)
		if classify.HasNDRAttempt(rec) {
			m.TotalNDR++
		}
		switch cat {
		case classify.Delivered:
			m.TotalDelivered++
			if v, ok := record.ResolveNumber(rec, record.OrderValue); ok {
				gmv = gmv.Add(v)
			}
		case classify.RTO:
			m.TotalRTO++
		case classify.InTransit, classify.OutForDelivery:
			m.InTransitOrders++
		}
	}
	m.SyncedOrders = m.TotalOrders
	m.DeliveredOrders = m.TotalDelivered
	m.RTOOrders = m.TotalRTO
	m.TotalGMV = money(gmv)
	m.GMV = m.TotalGMV
	m.DeliveryRate = pct(m.TotalDelivered, m.TotalOrders)
	m.DeliveryPercent = m.DeliveryRate
	m.NDRRate = pct(m.TotalNDR, m.TotalOrders)
	m.RTORate = pct(m.TotalRTO, m.TotalOrders)
	m.RTOPercent = m.RTORate
	m.InTransitPercent = pct(m.InTransitOrders, m.TotalOrders)
	m.UndeliveredOrders = m.TotalOrders - m.TotalDelivered
	return m
}

// OrderStatusRow is one raw status with its share of all orders.
type OrderStatusRow struct {
	Status     string  `json:"status"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

func buildOrderStatuses(records []record.Record, _ Granularity) any {
	agg := Aggregate(records, dimField(record.Status), GranularityOverall)
	rows := make([]OrderStatusRow, 0, len(agg.Rows))
	for _, r := range agg.Rows {
		rows = append(rows, OrderStatusRow{
			Status:     r.Dimension,
			Count:      r.TotalOrders,
			Percentage: pct(r.TotalOrders, agg.TotalOrders),
		})
	}
	return rows
}

// PaymentOutcomeRow is one (payment method, raw status) cell.
type PaymentOutcomeRow struct {
	PaymentMethod string  `json:"payment_method"`
	Status        string  `json:"status"`
	Count         int     `json:"count"`
	Percentage    float64 `json:"percentage"`
}

func buildPaymentMethodOutcome(records []record.Record, _ Granularity) any {
	type key struct{ payment, status string }
	counts := make(map[key]int)
	totals := make(map[string]int)
	for _, rec := range records {
		payment, ok := record.Resolve(rec, record.PaymentMethod)
		if !ok {
			payment = UnknownBucket
		}
		status, _ := record.Resolve(rec, record.Status)
		status = strings.ToUpper(strings.TrimSpace(status))
		counts[key{payment, status}]++
		totals[payment]++
	}
	rows := make([]PaymentOutcomeRow, 0, len(counts))
	for k, count := range counts {
		rows = append(rows, PaymentOutcomeRow{
			PaymentMethod: k.payment,
			Status:        k.status,
			Count:         count,
			Percentage:    pct(count, totals[k.payment]),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].PaymentMethod != rows[j].PaymentMethod {
			return rows[i].PaymentMethod > rows[j].PaymentMethod
		}
		return rows[i].Count > rows[j].Count
	})
	return rows
}

// NDRCountRow is one NDR reason with its delivered-after count.
type NDRCountRow struct {
	Reason    string `json:"reason"`
	Delivered int    `json:"delivered"`
	Total     int    `json:"total"`
}

func buildNDRCount(records []record.Record, _ Granularity) any {
	type acc struct{ delivered, total int }
	reasons := make(map[string]*acc)
	for _, rec := range records {
		if !classify.HasNDRAttempt(rec) {
			continue
		}
		reason, ok := record.Resolve(rec, record.NDRReason)
		if !ok {
			reason = "Unknown Exception"
		}
		a := reasons[reason]
		if a == nil {
			a = &acc{}
			reasons[reason] = a
		}
		a.total++
		if classify.ClassifyRecord(rec) == classify.Delivered {
			a.delivered++
		}
	}
	rows := make([]NDRCountRow, 0, len(reasons))
	for reason, a := range reasons {
		rows = append(rows, NDRCountRow{Reason: reason, Delivered: a.delivered, Total: a.total})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].Reason < rows[j].Reason
	})
	return rows
}

// AddressTypeRow is one address quality bucket's share.
type AddressTypeRow struct {
	AddressType string  `json:"addressType"`
	Percent     float64 `json:"percent"`
}

var addressDisplayNames = map[string]string{
	record.AddressInvalid: "Invalid Address%",
	record.AddressShort:   "Short Address %",
	record.AddressGood:    "Good Address %",
}

func buildAddressTypeShare(records []record.Record, _ Granularity) any {
	agg := Aggregate(records, dimAddressQuality, GranularityOverall)
	byName := make(map[string]float64)
	for _, r := range agg.Rows {
		name, ok := addressDisplayNames[r.Dimension]
		if !ok {
			name = addressDisplayNames[record.AddressGood]
		}
		byName[name] += pct(r.TotalOrders, agg.TotalOrders)
	}
	rows := make([]AddressTypeRow, 0, 3)
	for _, name := range []string{"Good Address %", "Short Address %", "Invalid Address%"} {
		rows = append(rows, AddressTypeRow{AddressType: name, Percent: byName[name]})
	}
	return rows
}

func buildAverageOrderTAT(records []record.Record, _ Granularity) any {
	return AverageOrderTAT(records)
}

// OutcomePercentRow is one outcome metric's share of all orders. Categories
// overlap (a delivered order with an NDR attempt counts in both Del% and
// NDR%), so the percents do not sum to 100.
type OutcomePercentRow struct {
	Metric  string  `json:"metric"`
	Percent float64 `json:"percent"`
}

func buildFadDelCanRTO(records []record.Record, _ Granularity) any {
	total := len(records)
	counts := map[string]int{}
	for _, rec := range records {
		status, _ := record.Resolve(rec, record.Status)
		cat := classify.Classify(status, false)
		hasNDR := classify.HasNDRAttempt(rec)

		if cat == classify.Delivered {
			counts["Del%"]++
			if !hasNDR {
				counts["FAD%"]++
			}
		}
		if cat == classify.OutForDelivery {
			counts["OFD%"]++
		}
		if hasNDR || strings.Contains(strings.ToUpper(status), "NDR") {
			counts["NDR%"]++
		}
		if cat == classify.InTransit {
			counts["Intransit%"]++
		}
		if cat == classify.RTO {
			counts["RTO%"]++
		}
		if cat == classify.Cancelled {
			counts["Canceled%"]++
		}
		if cat == classify.RVP {
			counts["RVP%"]++
		}
	}
	order := []string{"FAD%", "Del%", "OFD%", "NDR%", "Intransit%", "RTO%", "Canceled%", "RVP%"}
	rows := make([]OutcomePercentRow, 0, len(order))
	for _, name := range order {
		rows = append(rows, OutcomePercentRow{Metric: name, Percent: pct(counts[name], total)})
	}
	return rows
}

// CancellationReasonRow is one cancellation reason's share of all orders.
type CancellationReasonRow struct {
	Reason  string  `json:"reason"`
	Percent float64 `json:"percent"`
}

func buildCancellationReasonTracker(records []record.Record, _ Granularity) any {
	total := len(records)
	reasons := make(map[string]int)
	for _, rec := range records {
		reasons[cancellationBucket(rec)]++
	}
	rows := make([]CancellationReasonRow, 0, len(reasons))
	for reason, count := range reasons {
		rows = append(rows, CancellationReasonRow{Reason: reason, Percent: pct(count, total)})
	}
	sort.Slice(rows, func(i, j int) bool {
		if (rows[i].Reason == notCancelled) != (rows[j].Reason == notCancelled) {
			return rows[i].Reason == notCancelled
		}
		return rows[i].Reason < rows[j].Reason
	})
	return rows
}

// DeliveryPartnerRow is one (state, courier) pair's outcome breakdown.
type DeliveryPartnerRow struct {
	State       string `json:"state"`
	Courier     string `json:"courier"`
	TotalOrders int    `json:"total_orders"`
	Delivered   int    `json:"delivered"`
	Cancelled   int    `json:"cancelled"`
	InTransit   int    `json:"in_transit"`
	RTO         int    `json:"rto"`
	Other       int    `json:"other"`
}

func buildDeliveryPartnerAnalysis(records []record.Record, _ Granularity) any {
	agg := Aggregate(records, dimStateCourier, GranularityOverall)
	rows := make([]DeliveryPartnerRow, 0, len(agg.Rows))
	for _, r := range agg.Rows {
		if len(r.Cells) == 0 {
			continue
		}
		c := r.Cells[0]
		state, courier := splitStateCourier(r.Dimension)
		inTransit := c.InTransit + c.OFD
		rows = append(rows, DeliveryPartnerRow{
			State:       state,
			Courier:     courier,
			TotalOrders: c.Orders,
			Delivered:   c.Delivered,
			Cancelled:   c.Cancelled,
			InTransit:   inTransit,
			RTO:         c.RTO,
			Other:       c.Orders - c.Delivered - c.Cancelled - c.RTO - inTransit,
		})
	}
	return rows
}

func splitStateCourier(dim string) (string, string) {
	if i := strings.Index(dim, " / "); i >= 0 {
		return dim[:i], dim[i+3:]
	}
	return dim, UnknownBucket
}
