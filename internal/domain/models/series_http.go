package models

// Requests for the series HTTP endpoints. Defined in domain for consistency and reuse.

type SeriesRequest struct {
	Indicator string `query:"indicator" json:"indicator" validate:"required,oneof=gdp cpi ppi nfp fedfunds"`
	From      string `query:"from" json:"from"`
	To        string `query:"to" json:"to"`
	Limit     int    `query:"limit" json:"limit" default:"10000" validate:"gte=1,lte=50000"`
}

type SentimentQueryRequest struct {
	Subject string `query:"subject" json:"subject" validate:"required"`
	From    string `query:"from" json:"from"`
	To      string `query:"to" json:"to"`
	Limit   int    `query:"limit" json:"limit" default:"5000" validate:"gte=1,lte=50000"`
}

type RunRequest struct {
	Indicator string `query:"indicator" json:"indicator" default:"all" validate:"oneof=all gdp cpi ppi nfp fedfunds sentiment"`
	From      string `query:"from" json:"from"`
	To        string `query:"to" json:"to"`
}
