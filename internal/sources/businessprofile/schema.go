package businessprofile

// Wire shapes of the provider responses. Only the fields the dashboard reads
// are declared.

type accountsResponse struct {
	Accounts []account `json:"accounts"`
}

type account struct {
	Name        string `json:"name"` // accounts/<id>
	AccountName string `json:"accountName"`
	Type        string `json:"type"`
}

type locationsResponse struct {
	Locations []location `json:"locations"`
}

type location struct {
	Name              string         `json:"name"`
	Title             string         `json:"title"`
	StorefrontAddress *postalAddress `json:"storefrontAddress"`
	Categories        *categories    `json:"categories"`
}

type postalAddress struct {
	AddressLines []string `json:"addressLines"`
	Locality     string   `json:"locality"`
	PostalCode   string   `json:"postalCode"`
	RegionCode   string   `json:"regionCode"`
}

type categories struct {
	PrimaryCategory *category `json:"primaryCategory"`
}

type category struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// dailyMetricsResponse accepts both the single time-series envelope and the
// multi-series one returned by fetchMultiDailyMetricsTimeSeries.
type dailyMetricsResponse struct {
	TimeSeries *struct {
		DailyMetricTimeSeries []dailyMetricTimeSeries `json:"dailyMetricTimeSeries"`
	} `json:"timeSeries"`
	MultiDailyMetricTimeSeries []struct {
		DailyMetricTimeSeries []dailyMetricTimeSeries `json:"dailyMetricTimeSeries"`
	} `json:"multiDailyMetricTimeSeries"`
}

type dailyMetricTimeSeries struct {
	DailyMetric string `json:"dailyMetric"`
	TimeSeries  *struct {
		DatedValues []datedValue `json:"datedValues"`
	} `json:"timeSeries"`
}

type datedValue struct {
	Date  calendarDate `json:"date"`
	Value string       `json:"value"` // int64 encoded as string, absent when zero
}

type calendarDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

type reviewsResponse struct {
	Reviews []review `json:"reviews"`
}

type review struct {
	Name       string `json:"name"`
	ReviewID   string `json:"reviewId"`
	StarRating string `json:"starRating"`
	Comment    string `json:"comment"`
	CreateTime string `json:"createTime"`
	UpdateTime string `json:"updateTime"`
	Reviewer   *struct {
		DisplayName string `json:"displayName"`
	} `json:"reviewer"`
	ReviewReply *struct {
		Comment    string `json:"comment"`
		UpdateTime string `json:"updateTime"`
	} `json:"reviewReply"`
}

type replyRequest struct {
	Comment string `json:"comment"`
}

type localPostsResponse struct {
	LocalPosts []localPost `json:"localPosts"`
}

type localPost struct {
	Name         string        `json:"name"`
	Summary      string        `json:"summary"`
	TopicType    string        `json:"topicType"`
	State        string        `json:"state"`
	CreateTime   string        `json:"createTime"`
	CallToAction *callToAction `json:"callToAction"`
	Media        []struct {
		GoogleURL string `json:"googleUrl"`
	} `json:"media"`
}

type callToAction struct {
	ActionType string `json:"actionType"`
	URL        string `json:"url"`
}

type createPostRequest struct {
	LanguageCode string       `json:"languageCode"`
	Summary      string       `json:"summary"`
	TopicType    string       `json:"topicType"`
	CallToAction callToAction `json:"callToAction"`
}
