package normalize_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psx_backend/internal/feature/marketdata/normalize"
)

// TestStripSuffix は銘柄末尾記号の分離をテストします。
func TestStripSuffix(t *testing.T) {
	testCases := []struct {
		symbol     string
		wantBase   string
		wantSuffix string
	}{
		{"HBL", "HBL", ""},
		{"KMLXD", "KML", "XD"},
		{"FCCLXB", "FCCL", "XB"},
		{"PAELXR", "PAEL", "XR"},
		{"DWSMDEF", "DWSM", "DEF"},
		{"XD", "XD", ""},   // 記号のみのシンボルは空にしない
		{"DEF", "DEF", ""},
	}
	for _, tc := range testCases {
		base, suffix := normalize.StripSuffix(tc.symbol)
		assert.Equal(t, tc.wantBase, base, tc.symbol)
		assert.Equal(t, tc.wantSuffix, suffix, tc.symbol)
	}
}

// TestParseDate は各日付形式がUTC深夜0時へ正規化されることをテストします。
func TestParseDate(t *testing.T) {
	want := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)
	for _, input := range []string{
		"2026-08-26",
		"2026-08-26T15:30:00",
		"26 Aug 2026",
		"26-Aug-26",
	} {
		got, err := normalize.ParseDate(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := normalize.ParseDate("26/08/2026")
	assert.Error(t, err)
}

func validBarRecord() normalize.Record {
	return normalize.Record{
		"Date": "2026-08-26", "Open": "100.456", "High": "110.0", "Low": "95.0",
		"Close": "105.0", "Change": "5.0", "Change (%)": "4.999", "Volume": "1,500,000",
	}
}

// TestBar は価格履歴レコードの正規化をテストします。
func TestBar(t *testing.T) {
	t.Run("success: values parsed and rounded to 2dp", func(t *testing.T) {
		b, err := normalize.Bar(validBarRecord(), "HBL")
		require.NoError(t, err)
		assert.Equal(t, "HBL", b.Ticker)
		assert.Equal(t, time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC), b.Date)
		assert.Equal(t, 100.46, b.Open) // 保存時点で2桁へ丸め
		assert.Equal(t, 5.0, b.ChangePct)
		assert.Equal(t, int64(1500000), b.Volume)
	})

	t.Run("success: key variants accepted", func(t *testing.T) {
		rec := normalize.Record{
			"Date_": "2026-08-26", "Open": "1", "High": "1", "Low": "1",
			"Close": "1", "change_value": "0", "ChangeP": "0", "Volume": "0",
		}
		b, err := normalize.Bar(rec, "HBL")
		require.NoError(t, err)
		assert.Equal(t, 1.0, b.Close)
	})

	t.Run("error: unknown source key rejected", func(t *testing.T) {
		rec := validBarRecord()
		rec["Turnover"] = "123"
		_, err := normalize.Bar(rec, "HBL")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown source key")
	})

	t.Run("error: whole record rejected on one bad field", func(t *testing.T) {
		rec := validBarRecord()
		rec["Low"] = "n/a"
		_, err := normalize.Bar(rec, "HBL")
		assert.Error(t, err)
	})

	t.Run("error: negative price rejected", func(t *testing.T) {
		rec := validBarRecord()
		rec["Open"] = "-1.0"
		_, err := normalize.Bar(rec, "HBL")
		assert.Error(t, err)
	})

	t.Run("error: missing field rejected", func(t *testing.T) {
		rec := validBarRecord()
		delete(rec, "Volume")
		_, err := normalize.Bar(rec, "HBL")
		assert.Error(t, err)
	})
}

// TestMarketWatchQuote はマーケットウォッチ行の正規化をテストします。
func TestMarketWatchQuote(t *testing.T) {
	t.Run("success: full quote with fan-out indexes", func(t *testing.T) {
		q, err := normalize.MarketWatchQuote(normalize.Record{
			"SYMBOL": "KMLXD", "SECTOR": "Textile", "LISTED IN": "KSE100, ALLSHR",
			"LDCP": "100.00", "OPEN": "101.00", "HIGH": "103.00", "LOW": "99.00",
			"CURRENT": "102.50", "CHANGE": "2.50", "CHANGE (%)": "2.50", "VOLUME": "1,000",
		})
		require.NoError(t, err)
		assert.Equal(t, "KML", q.Symbol)
		assert.Equal(t, "XD", q.Suffix)
		assert.Equal(t, []string{"KSE100", "ALLSHR"}, q.ListedIndexes)
		require.NotNil(t, q.Current)
		assert.Equal(t, 102.50, *q.Current)
		require.NotNil(t, q.Volume)
		assert.Equal(t, int64(1000), *q.Volume)
	})

	t.Run("success: empty quote fields stay nil", func(t *testing.T) {
		q, err := normalize.MarketWatchQuote(normalize.Record{
			"SYMBOL": "HALT", "SECTOR": "Misc", "LISTED IN": "ALLSHR",
			"LDCP": "", "OPEN": "", "HIGH": "", "LOW": "",
			"CURRENT": "", "CHANGE": "", "CHANGE (%)": "", "VOLUME": "",
		})
		require.NoError(t, err)
		assert.Nil(t, q.Current)
		assert.Nil(t, q.Volume)
	})

	t.Run("error: non-empty garbage is not nil-ed away", func(t *testing.T) {
		_, err := normalize.MarketWatchQuote(normalize.Record{
			"SYMBOL": "HBL", "LISTED IN": "KSE100", "CURRENT": "abc",
		})
		assert.Error(t, err)
	})

	t.Run("error: missing symbol", func(t *testing.T) {
		_, err := normalize.MarketWatchQuote(normalize.Record{"LISTED IN": "KSE100"})
		assert.Error(t, err)
	})
}

// TestConstituent は構成銘柄レコードの正規化をテストします。
func TestConstituent(t *testing.T) {
	t.Run("success: both header styles accepted", func(t *testing.T) {
		c, err := normalize.Constituent(normalize.Record{
			"ISIN": "PK0080201012", "SYMBOL": "HBL", "COMPANY": "Habib Bank Limited",
			"PRICE": "102.509", "IDX WT %": "3.5", "FF BASED SHARES": "733,203,875",
			"FF BASED MCAP": "75,159,000", "ORD SHARES": "1,466,407,750",
			"ORD SHARES MCAP": "150,318,000", "VOLUME": "1,000",
		})
		require.NoError(t, err)
		assert.Equal(t, "PK0080201012", c.ISIN)
		assert.Equal(t, 102.51, c.Price)
		assert.Equal(t, 3.5, c.IndexWeight)
		assert.Equal(t, int64(733203875), c.FFBasedShares)
	})

	t.Run("success: non-index symbols may omit weights", func(t *testing.T) {
		c, err := normalize.Constituent(normalize.Record{
			"ISIN": "PK000X", "SYMBOL": "AAA",
		})
		require.NoError(t, err)
		assert.Zero(t, c.IndexWeight)
	})

	t.Run("error: missing ISIN", func(t *testing.T) {
		_, err := normalize.Constituent(normalize.Record{"SYMBOL": "HBL"})
		assert.Error(t, err)
	})
}

// TestTransaction は場外取引レコードの正規化とdecimal丸めをテストします。
func TestTransaction(t *testing.T) {
	tx, err := normalize.Transaction(normalize.Record{
		"Date": "26 Aug 2026", "Settlement Date": "28 Aug 2026",
		"Buyer Code": "B123", "Seller Code": "S456", "Symbol Code": "HBL",
		"Company": "Habib Bank Limited", "Turnover": "5,000",
		"Rate": "102.505", "Value": "512,525.999", "Type": "B2B",
	})
	require.NoError(t, err)
	assert.Equal(t, "HBL", tx.SymbolCode)
	assert.Equal(t, int64(5000), tx.Turnover)
	assert.True(t, tx.Rate.Equal(decimal.RequireFromString("102.51")), tx.Rate.String())
	assert.True(t, tx.Value.Equal(decimal.RequireFromString("512526")), tx.Value.String())
	assert.Equal(t, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), tx.SettlementDate)
}

// TestDailyBar は特定日相場レコードの正規化をテストします。
func TestDailyBar(t *testing.T) {
	date := time.Date(2026, 8, 26, 13, 45, 0, 0, time.UTC)

	t.Run("success: date comes from argument, suffix stripped", func(t *testing.T) {
		b, err := normalize.DailyBar(normalize.Record{
			"SYMBOL": "KMLXD", "LDCP": "5.00", "OPEN": "5.00", "HIGH": "5.10",
			"LOW": "4.90", "CLOSE": "5.05", "CHANGE": "0.05", "CHANGE (%)": "1.0",
			"VOLUME": "100",
		}, date)
		require.NoError(t, err)
		assert.Equal(t, "KML", b.Ticker)
		assert.Equal(t, time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC), b.Date)
		assert.Equal(t, 5.05, b.Close)
	})

	t.Run("error: missing close", func(t *testing.T) {
		_, err := normalize.DailyBar(normalize.Record{
			"SYMBOL": "HBL", "OPEN": "1", "HIGH": "1", "LOW": "1",
			"CHANGE": "0", "CHANGE (%)": "0", "VOLUME": "0",
		}, date)
		assert.Error(t, err)
	})
}
