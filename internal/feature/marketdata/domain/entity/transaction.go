package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types for off-market trades.
const (
	TransactionB2B = "B2B" // broker to broker
	TransactionI2I = "I2I" // institution to institution
)

// Transaction represents one off-market transaction published by the
// exchange. Money fields use decimal to avoid float rounding in turnover
// valuation.
type Transaction struct {
	Date           time.Time
	SettlementDate time.Time
	BuyerCode      string
	SellerCode     string
	SymbolCode     string
	Company        string
	Turnover       int64
	Rate           decimal.Decimal
	Value          decimal.Decimal
	Type           string
}
