package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"shipstat/classify"
	"shipstat/record"
)

// UnknownBucket absorbs records whose dimension value does not resolve.
// Aggregation never drops a record.
const UnknownBucket = "Unknown"

// DimensionFn extracts the grouping key for one record. ok == false sends
// the record to the Unknown bucket.
type DimensionFn func(rec record.Record) (string, bool)

// MetricBucket accumulates counters for one (dimension, time key) cell.
type MetricBucket struct {
	Orders    int
	Delivered int
	RTO       int
	Cancelled int
	OFD       int
	NDR       int
	InTransit int
	RVP       int
	Other     int
	FAD       int
	Returned  int

	GMV    decimal.Decimal
	Margin decimal.Decimal

	TATSum   float64
	TATCount int
}

// Add folds one classified record into the bucket. GMV and margin accrue for
// delivered orders only.
func (b *MetricBucket) Add(rec record.Record) {
	b.Orders++

	cat := classify.ClassifyRecord(rec)
	switch cat {
	case classify.Delivered:
		b.Delivered++
	case classify.RTO:
		b.RTO++
	case classify.Cancelled:
		b.Cancelled++
	case classify.OutForDelivery:
		b.OFD++
	case classify.NDR:
		b.NDR++
	case classify.InTransit:
		b.InTransit++
	case classify.RVP:
		b.RVP++
	default:
		b.Other++
	}

	if cat == classify.Delivered {
		if classify.FirstAttemptDelivered(rec) {
			b.FAD++
		}
		if v, ok := record.ResolveNumber(rec, record.OrderValue); ok {
			b.GMV = b.GMV.Add(v)
		}
		if m, ok := record.ResolveNumber(rec, record.Margin); ok {
			b.Margin = b.Margin.Add(m)
		}
		if ret, ok := record.Resolve(rec, record.ReturnStatus); ok && record.ParseBool(ret) {
			b.Returned++
		}
	}

	if tat, ok := DeliveryTAT(rec); ok {
		b.TATSum += tat
		b.TATCount++
	}
}

// Rate returns numerator/orders as a percentage, 0 when the bucket is empty.
func (b *MetricBucket) Rate(numerator int) float64 {
	if b.Orders == 0 {
		return 0
	}
	return float64(numerator) / float64(b.Orders) * 100
}

// AvgTAT returns the average delivery TAT in days, nil when no record in the
// bucket had both endpoints.
func (b *MetricBucket) AvgTAT() *float64 {
	if b.TATCount == 0 {
		return nil
	}
	avg := b.TATSum / float64(b.TATCount)
	return &avg
}

// TimeCell is one time-key column of a dimension row, with the derived
// metrics filled in.
type TimeCell struct {
	TimeKey string `json:"timeKey"`
	MetricBucket
	DeliveredPercent float64  `json:"deliveredPercent"`
	RTOPercent       float64  `json:"rtoPercent"`
	CancelledPercent float64  `json:"cancelledPercent"`
	NDRPercent       float64  `json:"ndrPercent"`
	FADPercent       float64  `json:"fadPercent"`
	OrderShare       float64  `json:"orderShare"`
	AverageTAT       *float64 `json:"averageTat"`
}

// DimensionRow is one grouped value with its time-bucket columns, most
// recent first.
type DimensionRow struct {
	Dimension   string     `json:"dimension"`
	TotalOrders int        `json:"totalOrders"`
	Cells       []TimeCell `json:"cells"`
}

// Result is the generic aggregation output consumed by report builders.
type Result struct {
	Granularity Granularity    `json:"granularity"`
	Rows        []DimensionRow `json:"rows"`
	TotalOrders int            `json:"totalOrders"`
}

// Aggregate folds the records into per-dimension per-time-bucket cells and
// derives the percentage metrics. The records are assumed already filtered;
// the week origin is recomputed from them so week keys stay relative to the
// filtered set.
func Aggregate(records []record.Record, dimension DimensionFn, g Granularity) Result {
	origin, hasOrigin := WeekOrigin(records)

	type cellKey struct {
		dim string
		t   string
	}
	cells := make(map[cellKey]*MetricBucket)
	timeTotals := make(map[string]int)
	dimTotals := make(map[string]int)

	for _, rec := range records {
		dim := UnknownBucket
		if d, ok := dimension(rec); ok && d != "" {
			dim = d
		}
		timeKey, ok := BucketKey(rec, g, origin, hasOrigin)
		if !ok {
			continue
		}

		key := cellKey{dim: dim, t: timeKey}
		bucket := cells[key]
		if bucket == nil {
			bucket = &MetricBucket{}
			cells[key] = bucket
		}
		bucket.Add(rec)
		timeTotals[timeKey]++
		dimTotals[dim]++
	}

	rowCells := make(map[string][]TimeCell, len(dimTotals))
	for key, bucket := range cells {
		share := 0.0
		if total := timeTotals[key.t]; total > 0 {
			share = float64(bucket.Orders) / float64(total) * 100
		}
		rowCells[key.dim] = append(rowCells[key.dim], TimeCell{
			TimeKey:          key.t,
			MetricBucket:     *bucket,
			DeliveredPercent: bucket.Rate(bucket.Delivered),
			RTOPercent:       bucket.Rate(bucket.RTO),
			CancelledPercent: bucket.Rate(bucket.Cancelled),
			NDRPercent:       bucket.Rate(bucket.NDR),
			FADPercent:       bucket.Rate(bucket.FAD),
			OrderShare:       share,
			AverageTAT:       bucket.AvgTAT(),
		})
	}

	rows := make([]DimensionRow, 0, len(rowCells))
	total := 0
	for dim, cs := range rowCells {
		sort.Slice(cs, func(i, j int) bool { return cs[i].TimeKey > cs[j].TimeKey })
		rows = append(rows, DimensionRow{
			Dimension:   dim,
			TotalOrders: dimTotals[dim],
			Cells:       cs,
		})
		total += dimTotals[dim]
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalOrders != rows[j].TotalOrders {
			return rows[i].TotalOrders > rows[j].TotalOrders
		}
		return rows[i].Dimension < rows[j].Dimension
	})

	return Result{Granularity: g, Rows: rows, TotalOrders: total}
}

// DeliveryTAT is the order-to-delivery leg in days. ok is false unless both
// endpoints resolve and the interval is non-negative.
func DeliveryTAT(rec record.Record) (float64, bool) {
	orderDate, ok := record.ResolveDate(rec, record.OrderDate)
	if !ok {
		return 0, false
	}
	deliveryDate, ok := record.ResolveDate(rec, record.DeliveryDate)
	if !ok {
		return 0, false
	}
	days := deliveryDate.Sub(orderDate).Hours() / 24
	if days < 0 {
		return 0, false
	}
	return days, true
}

// Dimension helpers shared by the report builders.

func dimField(f record.Field) DimensionFn {
	return func(rec record.Record) (string, bool) {
		return record.Resolve(rec, f)
	}
}

func dimStatusCategory(rec record.Record) (string, bool) {
	return classify.ClassifyRecord(rec).String(), true
}

func dimAddressQuality(rec record.Record) (string, bool) {
	return record.AddressQuality(rec), true
}

func dimPaymentBucket(rec record.Record) (string, bool) {
	return classify.PaymentBucketRecord(rec), true
}

func dimStateCourier(rec record.Record) (string, bool) {
	state, okS := record.Resolve(rec, record.State)
	courier, okC := record.Resolve(rec, record.Courier)
	if !okS && !okC {
		return "", false
	}
	if !okS {
		state = UnknownBucket
	}
	if !okC {
		courier = UnknownBucket
	}
	return state + " / " + courier, true
}
