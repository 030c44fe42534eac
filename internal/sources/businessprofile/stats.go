package businessprofile

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/MrSnakeDoc/storefront/internal/domain"
	"github.com/MrSnakeDoc/storefront/internal/logger"
)

// StatsWindowDays is the inclusive length of the metrics window, today included.
const StatsWindowDays = 7

// Daily metric types requested from the performance API.
const (
	MetricImpressionsDesktopMaps   = "BUSINESS_IMPRESSIONS_DESKTOP_MAPS"
	MetricImpressionsDesktopSearch = "BUSINESS_IMPRESSIONS_DESKTOP_SEARCH"
	MetricImpressionsMobileMaps    = "BUSINESS_IMPRESSIONS_MOBILE_MAPS"
	MetricImpressionsMobileSearch  = "BUSINESS_IMPRESSIONS_MOBILE_SEARCH"
	MetricCallClicks               = "CALL_CLICKS"
	MetricWebsiteClicks            = "WEBSITE_CLICKS"
)

// DailyMetrics lists every metric type fetched for the dashboard.
var DailyMetrics = []string{
	MetricImpressionsDesktopMaps,
	MetricImpressionsDesktopSearch,
	MetricImpressionsMobileMaps,
	MetricImpressionsMobileSearch,
	MetricCallClicks,
	MetricWebsiteClicks,
}

// French short weekday labels, indexed by time.Weekday.
var weekdayLabels = [...]string{"dim.", "lun.", "mar.", "mer.", "jeu.", "ven.", "sam."}

// WeekdayLabel returns the chart label of a day (ex: "ven.").
func WeekdayLabel(t time.Time) string {
	return weekdayLabels[t.Weekday()]
}

// StatsWindow returns the first and last day of the window ending at now.
func StatsWindow(now time.Time) (start, end time.Time) {
	end = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start = end.AddDate(0, 0, -(StatsWindowDays - 1))
	return start, end
}

// FetchStats returns one record per day the provider reported within the
// last 7 days, oldest first. Metrics are best-effort: any failure yields an
// empty list.
func (c *Client) FetchStats(ctx context.Context, locationID string) []domain.StatMetric {
	start, end := StatsWindow(c.now())

	var resp dailyMetricsResponse
	if err := c.get(ctx, "metrics.daily", c.endpoints.dailyMetricsURL(locationID, start, end), &resp); err != nil {
		c.logger.Warn("failed to fetch stats, returning empty series",
			logger.String("location", locationID),
			logger.Error(err))
		return []domain.StatMetric{}
	}

	return aggregateDailyMetrics(resp.series())
}

func (r dailyMetricsResponse) series() []dailyMetricTimeSeries {
	var out []dailyMetricTimeSeries
	if r.TimeSeries != nil {
		out = append(out, r.TimeSeries.DailyMetricTimeSeries...)
	}
	for _, m := range r.MultiDailyMetricTimeSeries {
		out = append(out, m.DailyMetricTimeSeries...)
	}
	return out
}

// aggregateDailyMetrics folds per-metric series into one record per calendar day.
// Impression metrics are summed into Views, website clicks go to Clicks and
// call clicks to Calls.
func aggregateDailyMetrics(series []dailyMetricTimeSeries) []domain.StatMetric {
	type dayEntry struct {
		date time.Time
		stat *domain.StatMetric
	}
	days := make(map[string]*dayEntry)

	for _, s := range series {
		if s.TimeSeries == nil {
			continue
		}
		for _, v := range s.TimeSeries.DatedValues {
			date := time.Date(v.Date.Year, time.Month(v.Date.Month), v.Date.Day, 0, 0, 0, 0, time.UTC)
			key := date.Format(time.DateOnly)

			e, ok := days[key]
			if !ok {
				e = &dayEntry{
					date: date,
					stat: &domain.StatMetric{Date: WeekdayLabel(date), Day: key},
				}
				days[key] = e
			}

			value := parseMetricValue(v.Value)
			switch {
			case strings.Contains(s.DailyMetric, "IMPRESSIONS"):
				e.stat.Views += value
			case s.DailyMetric == MetricWebsiteClicks:
				e.stat.Clicks += value
			case s.DailyMetric == MetricCallClicks:
				e.stat.Calls += value
			}
		}
	}

	entries := make([]*dayEntry, 0, len(days))
	for _, e := range days {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].date.Before(entries[j].date)
	})

	out := make([]domain.StatMetric, 0, len(entries))
	for _, e := range entries {
		out = append(out, *e.stat)
	}
	return out
}

// parseMetricValue reads the decimal string value; absent or invalid is zero.
func parseMetricValue(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
