package domain

// StatMetric is one aggregated day of listing performance.
type StatMetric struct {
	// Date is the short weekday label shown on the chart (ex: "ven.").
	Date string `json:"date"`

	// Day is the calendar date (YYYY-MM-DD). Grouping and ordering use it,
	// never the label, since labels repeat across weeks.
	Day string `json:"day"`

	Views  int `json:"views"`
	Clicks int `json:"clicks"`
	Calls  int `json:"calls"`
}

// StatsSummary holds the totals of a stats window.
type StatsSummary struct {
	Views  int `json:"views"`
	Clicks int `json:"clicks"`
	Calls  int `json:"calls"`
}

// Summarize sums every day of the window.
func Summarize(stats []StatMetric) StatsSummary {
	var s StatsSummary
	for _, m := range stats {
		s.Views += m.Views
		s.Clicks += m.Clicks
		s.Calls += m.Calls
	}
	return s
}
