// Package dto defines data transfer objects for the PSX related external APIs.
package dto

// PriceHistoryRequest is the envelope the price history gateway expects.
// The gateway proxies the inner Data payload to the named upstream URL.
type PriceHistoryRequest struct {
	URL  string           `json:"url"`
	Data PriceHistoryData `json:"data"`
}

// PriceHistoryData selects the company and the date range, both formatted
// as "02 Jan 2006".
type PriceHistoryData struct {
	Company  string `json:"company"`
	FromDate string `json:"FromDate"`
	ToDate   string `json:"ToDate"`
	Sort     string `json:"sort"`
}

// PriceHistoryRow is one daily bar in the gateway response.
type PriceHistoryRow struct {
	Date      string `json:"Date_"`
	Open      string `json:"Open"`
	High      string `json:"High"`
	Low       string `json:"Low"`
	Close     string `json:"Close"`
	Change    string `json:"change_value"`
	ChangePct string `json:"ChangeP"`
	Volume    string `json:"Volume"`
}
