package entity

// MarketWatchRow represents one symbol's live quote snapshot for a single
// index membership. A symbol listed in N indexes fans out into N rows
// sharing all other fields. Quote fields are pointers because synthetic
// defaulter rows carry no live quote.
type MarketWatchRow struct {
	Symbol      string // base symbol, suffix stripped
	Sector      string // "" when unknown (synthetic defaulter rows)
	ListedIndex string // index name, or "DEFAULT" for synthetic rows

	LDCP      *float64
	Open      *float64
	High      *float64
	Low       *float64
	Current   *float64
	Change    *float64
	ChangePct *float64
	Volume    *int64

	Defaulter        bool
	DefaultingClause string

	// Cross-reference fields joined from the constituents universe.
	ISIN          string
	Company       string
	Price         *float64
	IndexWeight   *float64
	FFBasedShares *int64
	FFBasedMcap   *float64
	OrdShares     *int64
	OrdSharesMcap *float64

	SymbolSuffix string // XD, XB, XR, DEF or ""
}
