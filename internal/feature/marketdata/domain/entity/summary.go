package entity

import "time"

// Stage names used in sync summaries and progress reporting.
const (
	StageConstituents    = "constituents"
	StageMarketWatch     = "market_watch"
	StageExistingTickers = "existing_tickers"
	StageNewTickers      = "new_tickers"
)

// StageResult captures the outcome of one synchronization stage.
// A stage that was never attempted keeps the zero value.
type StageResult struct {
	Success      bool     `json:"success"`
	RecordsAdded int      `json:"records_added"`
	Message      string   `json:"message"`
	Errors       []string `json:"errors,omitempty"`
}

// SyncSummary is the aggregate result of a full synchronization run.
// It is always fully populated, even when the run terminates early.
type SyncSummary struct {
	RequestedDate time.Time `json:"requested_date"`
	// EffectiveDate is the date that actually succeeded after fallback
	// retries. It may be earlier than RequestedDate.
	EffectiveDate time.Time `json:"effective_date"`
	Attempts      int       `json:"attempts"`

	Constituents    StageResult `json:"constituents"`
	MarketWatch     StageResult `json:"market_watch"`
	ExistingTickers StageResult `json:"existing_tickers"`
	NewTickers      StageResult `json:"new_tickers"`
}

// PartialSummary is the result of a single-date partial synchronization.
type PartialSummary struct {
	Date           time.Time `json:"date"`
	RecordsFetched int       `json:"records_fetched"`
	RecordsAdded   int       `json:"records_added"`
	Errors         []string  `json:"errors,omitempty"`
}
