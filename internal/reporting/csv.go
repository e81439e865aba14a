package reporting

import (
	"fmt"
	"strconv"
	"strings"

	"equity-panel-lab/internal/domain"
)

const dateLayout = "2006-01-02"

// RenderSurpriseCSV renders reconciled announcements as CSV string.
func RenderSurpriseCSV(rows []SurpriseRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("internal_id,ticker,fiscal_period_end,announcement_date,actual,consensus,surprise,num_estimates,basis\n")

	// Rows
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%d,%s,%s,%s,%.6f,%.6f,%.6f,%d,%s\n",
			r.InternalID,
			r.Ticker,
			r.FiscalPeriodEnd.Format(dateLayout),
			r.AnnouncementDate.Format(dateLayout),
			r.Actual,
			r.Consensus,
			r.Surprise,
			r.NumEstimates,
			r.Basis,
		))
	}

	return sb.String()
}

// RenderPanelCSV renders firm-day panel rows as CSV string. Nullable
// fields render as empty cells.
func RenderPanelCSV(rows []domain.PanelRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("internal_id,date,ticker,gvkey,ret,close,mkt,sector,industry_group,")
	sb.WriteString("wire_news_count,analytics_news_count,read_count,mean_sentiment,")
	sb.WriteString("announcement,surprise,num_analysts,macro_ann_day,vix,")
	sb.WriteString("abn_ret,mcap,mcap_quintile,cum_ret_5d_lag1,cum_ret_20d_lag6,")
	sb.WriteString("delta_wire_news,delta_analytics_news,delta_read_count\n")

	// Rows
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%d,%s,%s,%s,%.6f,%.4f,%.6f,%s,%s,%d,%d,%d,%s,%s,%s,%d,%s,%s,%.6f,%.2f,%s,%s,%s,%s,%s,%s\n",
			r.InternalID,
			r.Date.Format(dateLayout),
			r.Ticker,
			r.GVKey,
			r.Return,
			r.Close,
			r.Mkt,
			r.Sector,
			r.Group,
			r.WireNewsCount,
			r.AnalyticsNewsCount,
			r.ReadCount,
			csvFloatPtr(r.MeanSentiment),
			csvBool(r.Announcement),
			csvFloatPtr(r.Surprise),
			r.NumAnalysts,
			csvBool(r.MacroAnnDay),
			csvFloatPtr(r.VIX),
			r.AbnRet,
			r.MCap,
			csvIntPtr(r.MCapQuintile),
			csvFloatPtr(r.CumRet5DLag1),
			csvFloatPtr(r.CumRet20DLag6),
			csvFloatPtr(r.DeltaWireNews),
			csvFloatPtr(r.DeltaAnalyticsNews),
			csvFloatPtr(r.DeltaReadCount),
		))
	}

	return sb.String()
}

// RenderEventWindowCSV renders event-window rows as CSV string.
func RenderEventWindowCSV(rows []domain.EventWindowRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("internal_id,event_date,day_offset,date,ret,benchmark,cum_ret,cum_benchmark,bhar,")
	sb.WriteString("surprise,surprise_quintile,size_quintile,sector\n")

	// Rows
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%d,%s,%d,%s,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%d,%d,%s\n",
			r.InternalID,
			r.EventDate.Format(dateLayout),
			r.Offset,
			r.Date.Format(dateLayout),
			r.Return,
			r.Benchmark,
			r.CumReturn,
			r.CumBenchmark,
			r.BHAR,
			r.Surprise,
			r.SurpriseQuintile,
			r.SizeQuintile,
			r.Sector,
		))
	}

	return sb.String()
}

// RenderWireDailyCSV renders wire-vendor daily aggregates as CSV string.
func RenderWireDailyCSV(rows []domain.WireDailyCounts) string {
	var sb strings.Builder

	sb.WriteString("entity,date,story_count,flash_count,pre_open_count,post_close_count,read_count_delta\n")
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%s,%d,%d,%d,%d,%d\n",
			r.Entity,
			r.Date.Format(dateLayout),
			r.StoryCount,
			r.FlashCount,
			r.PreOpenCount,
			r.PostCloseCount,
			r.ReadCountDelta,
		))
	}

	return sb.String()
}

// RenderAnalyticsDailyCSV renders analytics-vendor daily aggregates as
// CSV string.
func RenderAnalyticsDailyCSV(rows []domain.AnalyticsDailyCounts) string {
	var sb strings.Builder

	sb.WriteString("entity_id,date,story_count,full_article_count,tabular_count,flash_count,")
	sb.WriteString("press_release_count,sec_count,pre_open_count,post_close_count,mean_sentiment,top_group\n")
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%s,%d,%d,%d,%d,%d,%d,%d,%d,%.6f,%s\n",
			r.EntityID,
			r.Date.Format(dateLayout),
			r.StoryCount,
			r.FullArticleCount,
			r.TabularCount,
			r.FlashCount,
			r.PressReleaseCount,
			r.SECCount,
			r.PreOpenCount,
			r.PostCloseCount,
			r.MeanSentiment,
			r.TopGroup,
		))
	}

	return sb.String()
}

func csvFloatPtr(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', 6, 64)
}

func csvIntPtr(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func csvBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
