package businessprofile

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/MrSnakeDoc/storefront/internal/domain"
)

const statsPath = "/v1/locations/10:fetchDailyMetrics"

func series(metric string, points ...string) string {
	values := make([]string, 0, len(points))
	for _, p := range points {
		day, value, _ := strings.Cut(p, "=")
		d, _ := time.Parse(time.DateOnly, day)
		v := ""
		if value != "" {
			v = fmt.Sprintf(`,"value":%q`, value)
		}
		values = append(values, fmt.Sprintf(`{"date":{"year":%d,"month":%d,"day":%d}%s}`,
			d.Year(), int(d.Month()), d.Day(), v))
	}
	return fmt.Sprintf(`{"dailyMetric":%q,"timeSeries":{"datedValues":[%s]}}`, metric, strings.Join(values, ","))
}

func multiEnvelope(s ...string) string {
	return `{"multiDailyMetricTimeSeries":[{"dailyMetricTimeSeries":[` + strings.Join(s, ",") + `]}]}`
}

func TestFetchStatsScenario(t *testing.T) {
	body := multiEnvelope(
		series(MetricImpressionsDesktopMaps, "2024-03-01=10"),
		series(MetricImpressionsDesktopSearch, "2024-03-01=10"),
		series(MetricImpressionsMobileMaps, "2024-03-01=10"),
		series(MetricImpressionsMobileSearch, "2024-03-01=10"),
		series(MetricImpressionsDesktopMaps, "2024-03-01=10"),
		series(MetricImpressionsMobileSearch, "2024-03-01=10"),
		series(MetricWebsiteClicks, "2024-03-01=5"),
		series(MetricCallClicks, "2024-03-01=2"),
	)
	api := newFakeAPI().on(statsPath, body)
	c := newTestClient(api, WithClock(fixedClock("2024-03-03T15:00:00Z")))

	got := c.FetchStats(context.Background(), "accounts/1/locations/10")

	want := []domain.StatMetric{{Date: "ven.", Day: "2024-03-01", Views: 60, Clicks: 5, Calls: 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchStatsSingleMetricDoesNotLeak(t *testing.T) {
	body := `{"timeSeries":{"dailyMetricTimeSeries":[` +
		series(MetricCallClicks, "2024-03-01=7", "2024-03-02") + `,` +
		series(MetricWebsiteClicks, "2024-03-01", "2024-03-02") +
		`]}}`
	api := newFakeAPI().on(statsPath, body)
	c := newTestClient(api, WithClock(fixedClock("2024-03-03T15:00:00Z")))

	got := c.FetchStats(context.Background(), "accounts/1/locations/10")

	want := []domain.StatMetric{
		{Date: "ven.", Day: "2024-03-01", Calls: 7},
		{Date: "sam.", Day: "2024-03-02"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchStatsChronologicalAcrossWeekBoundary(t *testing.T) {
	// "dim." sorts before "lun." as a string, but Monday comes first here.
	body := multiEnvelope(
		series(MetricWebsiteClicks, "2024-03-03=1", "2024-02-26=4", "2024-03-01=2", "2024-02-28=3"),
	)
	api := newFakeAPI().on(statsPath, body)
	c := newTestClient(api, WithClock(fixedClock("2024-03-03T15:00:00Z")))

	got := c.FetchStats(context.Background(), "accounts/1/locations/10")

	var days, labels []string
	for _, m := range got {
		days = append(days, m.Day)
		labels = append(labels, m.Date)
	}
	if diff := cmp.Diff([]string{"2024-02-26", "2024-02-28", "2024-03-01", "2024-03-03"}, days); diff != "" {
		t.Errorf("day order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"lun.", "mer.", "ven.", "dim."}, labels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchStatsIdempotent(t *testing.T) {
	body := multiEnvelope(
		series(MetricImpressionsMobileMaps, "2024-03-02=3", "2024-03-01=1"),
		series(MetricCallClicks, "2024-03-02=1"),
	)
	api := newFakeAPI().on(statsPath, body)
	c := newTestClient(api, WithClock(fixedClock("2024-03-03T15:00:00Z")))

	first := c.FetchStats(context.Background(), "accounts/1/locations/10")
	second := c.FetchStats(context.Background(), "accounts/1/locations/10")

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second fetch differs (-first +second):\n%s", diff)
	}
}

func TestFetchStatsFailureIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		api  *fakeAPI
	}{
		{name: "upstream error", api: newFakeAPI().fail(statsPath, errUpstream(403))},
		{name: "no data", api: newFakeAPI().on(statsPath, `{}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newTestClient(tt.api).FetchStats(context.Background(), "accounts/1/locations/10")
			if got == nil || len(got) != 0 {
				t.Errorf("FetchStats() = %v, want empty list", got)
			}
		})
	}
}

func TestStatsWindow(t *testing.T) {
	start, end := StatsWindow(time.Date(2024, 3, 3, 23, 59, 0, 0, time.UTC))

	if got := start.Format(time.DateOnly); got != "2024-02-26" {
		t.Errorf("start = %s, want 2024-02-26", got)
	}
	if got := end.Format(time.DateOnly); got != "2024-03-03" {
		t.Errorf("end = %s, want 2024-03-03", got)
	}
}

func TestParseMetricValue(t *testing.T) {
	tests := map[string]int{"": 0, "12": 12, "abc": 0, "-3": 0, " 4 ": 4}
	for in, want := range tests {
		if got := parseMetricValue(in); got != want {
			t.Errorf("parseMetricValue(%q) = %d, want %d", in, got, want)
		}
	}
}
