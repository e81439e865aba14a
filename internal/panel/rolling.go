package panel

import (
	"math"

	"equity-panel-lab/internal/domain"
)

// Rolling window lengths, in trading-day rows.
const (
	shortReturnWindow = 5
	longReturnWindow  = 20
	newsWindow        = 60

	shortReturnLag = 1
	longReturnLag  = 6
)

// applyRollingFeatures fills the rolling and lagged columns. Rows must
// already be sorted by (entity, date); every window is computed within
// a single entity's segment and left nil until the segment has enough
// history, so no value ever references another entity's rows.
func applyRollingFeatures(rows []domain.PanelRow) {
	start := 0
	for i := 1; i <= len(rows); i++ {
		if i == len(rows) || rows[i].InternalID != rows[start].InternalID {
			applyToSegment(rows[start:i])
			start = i
		}
	}
}

func applyToSegment(seg []domain.PanelRow) {
	cum5 := rollingCompoundedReturns(seg, shortReturnWindow)
	cum20 := rollingCompoundedReturns(seg, longReturnWindow)

	wire := make([]float64, len(seg))
	analytics := make([]float64, len(seg))
	reads := make([]float64, len(seg))
	for i, row := range seg {
		wire[i] = float64(row.WireNewsCount)
		analytics[i] = float64(row.AnalyticsNewsCount)
		reads[i] = float64(row.ReadCount)
	}
	wireMean := rollingMeans(wire, newsWindow)
	analyticsMean := rollingMeans(analytics, newsWindow)
	readsMean := rollingMeans(reads, newsWindow)

	for i := range seg {
		seg[i].CumRet5D = cum5[i]
		seg[i].CumRet20D = cum20[i]
		if i >= shortReturnLag {
			seg[i].CumRet5DLag1 = cum5[i-shortReturnLag]
		}
		if i >= longReturnLag {
			seg[i].CumRet20DLag6 = cum20[i-longReturnLag]
		}

		seg[i].WireNews60D = wireMean[i]
		seg[i].AnalyticsNews60D = analyticsMean[i]
		seg[i].ReadCount60D = readsMean[i]
		seg[i].DeltaWireNews, seg[i].LogDeltaWireNews = countDeltas(wire[i], wireMean[i])
		seg[i].DeltaAnalyticsNews, seg[i].LogDeltaAnalytics = countDeltas(analytics[i], analyticsMean[i])
		seg[i].DeltaReadCount, seg[i].LogDeltaReadCount = countDeltas(reads[i], readsMean[i])
	}
}

// rollingCompoundedReturns turns a window sum of log returns back into
// a simple compounded return, exp(sum(ln(1+r))) - 1. Nil until the
// window is full.
func rollingCompoundedReturns(seg []domain.PanelRow, window int) []*float64 {
	out := make([]*float64, len(seg))
	var sum float64
	for i := range seg {
		sum += seg[i].LnRet
		if i >= window {
			sum -= seg[i-window].LnRet
		}
		if i >= window-1 {
			v := math.Exp(sum) - 1
			out[i] = &v
		}
	}
	return out
}

func rollingMeans(values []float64, window int) []*float64 {
	out := make([]*float64, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			m := sum / float64(window)
			out[i] = &m
		}
	}
	return out
}

// countDeltas compares a day's count against its rolling mean, in level
// and log(1+x) form. Nil while the mean itself is nil.
func countDeltas(count float64, mean *float64) (*float64, *float64) {
	if mean == nil {
		return nil, nil
	}
	d := count - *mean
	ld := math.Log(1+count) - math.Log(1+*mean)
	return &d, &ld
}
