package businessprofile

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// LocationReadMask is the field projection requested for every location.
const LocationReadMask = "name,title,storefrontAddress,categories,metadata"

// Endpoints holds the base URL of each provider API.
// Resource paths are appended verbatim.
type Endpoints struct {
	AccountManagement   string `yaml:"account_management"`
	BusinessInformation string `yaml:"business_information"`
	Performance         string `yaml:"performance"`
	Reviews             string `yaml:"reviews"`
	LocalPosts          string `yaml:"local_posts"`
}

// DefaultEndpoints returns the public Google Business Profile endpoints.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		AccountManagement:   "https://mybusinessaccountmanagement.googleapis.com",
		BusinessInformation: "https://mybusinessbusinessinformation.googleapis.com",
		Performance:         "https://businessprofileperformance.googleapis.com",
		Reviews:             "https://mybusinessreviews.googleapis.com",
		LocalPosts:          "https://mybusiness.googleapis.com",
	}
}

// WithDefaults fills every empty base URL from DefaultEndpoints.
func (e Endpoints) WithDefaults() Endpoints {
	def := DefaultEndpoints()
	fill := func(v *string, d string) {
		*v = strings.TrimRight(strings.TrimSpace(*v), "/")
		if *v == "" {
			*v = d
		}
	}
	fill(&e.AccountManagement, def.AccountManagement)
	fill(&e.BusinessInformation, def.BusinessInformation)
	fill(&e.Performance, def.Performance)
	fill(&e.Reviews, def.Reviews)
	fill(&e.LocalPosts, def.LocalPosts)
	return e
}

func (e Endpoints) accountsURL() string {
	return e.AccountManagement + "/v1/accounts"
}

func (e Endpoints) locationsURL(account string) string {
	return e.BusinessInformation + "/v1/" + account + "/locations?readMask=" + LocationReadMask
}

func (e Endpoints) dailyMetricsURL(location string, start, end time.Time) string {
	q := url.Values{}
	for _, m := range DailyMetrics {
		q.Add("dailyMetric", m)
	}
	setDate := func(prefix string, d time.Time) {
		q.Set(prefix+".year", strconv.Itoa(d.Year()))
		q.Set(prefix+".month", strconv.Itoa(int(d.Month())))
		q.Set(prefix+".day", strconv.Itoa(d.Day()))
	}
	setDate("dailyRange.startDate", start)
	setDate("dailyRange.endDate", end)

	return e.Performance + "/v1/" + performanceLocation(location) + ":fetchDailyMetrics?" + q.Encode()
}

func (e Endpoints) reviewsURL(location string) string {
	return e.Reviews + "/v1/" + location + "/reviews"
}

func (e Endpoints) replyURL(location, reviewID string) string {
	return e.reviewsURL(location) + "/" + url.PathEscape(reviewID) + "/reply"
}

func (e Endpoints) localPostsURL(location string) string {
	return e.LocalPosts + "/v4/" + location + "/localPosts"
}

// performanceLocation drops the "accounts/<id>/" prefix: the performance API
// addresses locations as "locations/<id>".
func performanceLocation(id string) string {
	if !strings.Contains(id, "accounts/") {
		return id
	}
	parts := strings.Split(id, "/")
	if len(parts) <= 2 {
		return id
	}
	return strings.Join(parts[2:], "/")
}
