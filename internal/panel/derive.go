package panel

import (
	"math"
	"time"

	"equity-panel-lab/internal/domain"
	"equity-panel-lab/internal/stats"
)

// sharesUnit converts vendor shares outstanding (thousands) to shares.
const sharesUnit = 1000

// deriveRow fills the per-row derived fields: intraday return split,
// abnormal return indicators, market cap with quintile assignment, and
// log transforms.
func deriveRow(row *domain.PanelRow, cutsByMonth map[time.Time]domain.SizeBreakpoints) {
	ret := row.Return

	if row.Open != nil && *row.Open != 0 {
		oc := (row.Close - *row.Open) / *row.Open
		row.RetOpenClose = &oc
		if 1+oc != 0 {
			on := (1+ret)/(1+oc) - 1
			row.RetOvernight = &on
		}
	}

	row.AbsRet = math.Abs(ret)
	row.AbnRet = ret - row.Mkt
	row.NegRet = ret < 0
	row.NegAbnRet = row.AbnRet < 0
	row.AbsAbnRet = math.Abs(row.AbnRet)

	row.MCap = row.Close * row.SharesOut * sharesUnit
	if row.MCap > 0 {
		row.LnMCap = math.Log(row.MCap)
		if bp, ok := cutsByMonth[domain.MonthOf(row.Date)]; ok {
			q := stats.BucketByCuts(row.MCap, bp.Cuts())
			row.MCapQuintile = &q
		}
	}

	row.LnNumAnalysts = math.Log(1 + float64(row.NumAnalysts))
	row.Weekday = row.Date.Weekday()
	row.LnRet = math.Log(1 + ret)
}
