// Package dto defines data transfer objects for the marketdata HTTP API.
package dto

// BarResponse は日足バーのレスポンスDTOです。
type BarResponse struct {
	Date      string  `json:"date"`       // 日付
	Open      float64 `json:"open"`       // 始値
	High      float64 `json:"high"`       // 高値
	Low       float64 `json:"low"`        // 安値
	Close     float64 `json:"close"`      // 終値
	Change    float64 `json:"change"`     // 前日比
	ChangePct float64 `json:"change_pct"` // 前日比(%)
	Volume    int64   `json:"volume"`     // 出来高
}

// MarketWatchRowResponse はマーケットウォッチ1行のレスポンスDTOです。
// 相場値はライブ相場を持たない合成行でnullになります。
type MarketWatchRowResponse struct {
	Symbol      string `json:"symbol"`
	Sector      string `json:"sector,omitempty"`
	ListedIndex string `json:"listed_index"`

	LDCP      *float64 `json:"ldcp"`
	Open      *float64 `json:"open"`
	High      *float64 `json:"high"`
	Low       *float64 `json:"low"`
	Current   *float64 `json:"current"`
	Change    *float64 `json:"change"`
	ChangePct *float64 `json:"change_pct"`
	Volume    *int64   `json:"volume"`

	Defaulter        bool   `json:"defaulter"`
	DefaultingClause string `json:"defaulting_clause,omitempty"`
	SymbolSuffix     string `json:"symbol_suffix,omitempty"`
}

// ConstituentResponse は指数構成銘柄1件のレスポンスDTOです。
type ConstituentResponse struct {
	ISIN          string  `json:"isin"`
	Symbol        string  `json:"symbol"`
	Company       string  `json:"company"`
	Price         float64 `json:"price"`
	IndexWeight   float64 `json:"index_weight"`
	FFBasedShares int64   `json:"ff_based_shares"`
	FFBasedMcap   float64 `json:"ff_based_mcap"`
	OrdShares     int64   `json:"ord_shares"`
	OrdSharesMcap float64 `json:"ord_shares_mcap"`
	Volume        int64   `json:"volume"`
}

// TransactionResponse は場外取引1件のレスポンスDTOです。
type TransactionResponse struct {
	Date           string `json:"date"`
	SettlementDate string `json:"settlement_date"`
	BuyerCode      string `json:"buyer_code"`
	SellerCode     string `json:"seller_code"`
	SymbolCode     string `json:"symbol_code"`
	Company        string `json:"company"`
	Turnover       int64  `json:"turnover"`
	Rate           string `json:"rate"`
	Value          string `json:"value"`
	Type           string `json:"type"`
}
