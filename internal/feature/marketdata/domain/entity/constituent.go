package entity

// Constituent represents one tradable instrument of the exchange's
// official index listing, keyed by ISIN. The constituents universe is the
// superset of symbols used to discover tickers not yet tracked.
type Constituent struct {
	ISIN          string
	Symbol        string
	Company       string
	Price         float64
	IndexWeight   float64
	FFBasedShares int64
	FFBasedMcap   float64
	OrdShares     int64
	OrdSharesMcap float64
	Volume        int64
}
