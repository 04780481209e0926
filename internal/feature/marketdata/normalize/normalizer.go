package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"psx_backend/internal/feature/marketdata/domain/entity"
)

// suffixes は同一銘柄の権利落ち・デフォルト変種を示す末尾記号です。
// 順序は元データの照合順に合わせています（XDがXRより先）。
var suffixes = []string{"XD", "XB", "XR", "DEF"}

// StripSuffix は銘柄シンボル末尾のXD/XB/XR/DEF記号を分離します。
// 記号がない場合、suffixは空文字列になります。
func StripSuffix(symbol string) (base, suffix string) {
	for _, s := range suffixes {
		if len(symbol) > len(s) && strings.HasSuffix(symbol, s) {
			return symbol[:len(symbol)-len(s)], s
		}
	}
	return symbol, ""
}

// dateLayouts は受理する日付形式です。ISO（時刻付き・なし）とテキスト形式。
var dateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02 Jan 2006",
	"2-Jan-06",
}

// ParseDate は既知の形式の日付文字列をUTC深夜0時のtime.Timeへ正規化します。
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, &FieldError{Field: "date", Reason: "unparseable date " + strconv.Quote(s)}
}

// cleanNumber は桁区切りカンマとパーセント記号を除去します。
func cleanNumber(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")
	return s
}

// parseFloat は数値文字列をfloat64へパースします。整数表記も受理します。
func parseFloat(symbol, field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(cleanNumber(raw), 64)
	if err != nil {
		return 0, &FieldError{Symbol: symbol, Field: field, Reason: "not a number " + strconv.Quote(raw)}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &FieldError{Symbol: symbol, Field: field, Reason: "not finite"}
	}
	return v, nil
}

// parseInt は数値文字列をint64へパースします。小数点を含む表記は受理しません。
func parseInt(symbol, field, raw string) (int64, error) {
	cleaned := cleanNumber(raw)
	if strings.Contains(cleaned, ".") {
		return 0, &FieldError{Symbol: symbol, Field: field, Reason: "expected integer, got " + strconv.Quote(raw)}
	}
	v, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, &FieldError{Symbol: symbol, Field: field, Reason: "not an integer " + strconv.Quote(raw)}
	}
	return v, nil
}

// round2 は金額フィールドを保存時点で小数2桁へ丸めます（表示時ではなく）。
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// barSchema は価格履歴レコードの正規フィールドとキー揺れの対応です。
var barSchema = schema{
	"Date":       {"Date_", "date"},
	"Open":       nil,
	"High":       nil,
	"Low":        nil,
	"Close":      nil,
	"Change":     {"change_value"},
	"Change (%)": {"ChangeP", "change_valueP"},
	"Volume":     nil,
}

// Bar は1件の価格履歴レコードをentity.Barへ正規化します。
// いずれかのフィールドのパースに失敗した場合、レコード全体を棄却します。
// 部分的に欠けた価格バーは欠落より悪いためです。
func Bar(rec Record, ticker string) (entity.Bar, error) {
	if err := barSchema.checkUnknown(rec, ticker); err != nil {
		return entity.Bar{}, err
	}

	required := func(field string) (string, error) {
		v, ok := barSchema.lookup(rec, field)
		if !ok || strings.TrimSpace(v) == "" {
			return "", &FieldError{Symbol: ticker, Field: field, Reason: "missing value"}
		}
		return v, nil
	}

	rawDate, err := required("Date")
	if err != nil {
		return entity.Bar{}, err
	}
	date, err := ParseDate(rawDate)
	if err != nil {
		return entity.Bar{}, &FieldError{Symbol: ticker, Field: "Date", Reason: err.Error()}
	}

	b := entity.Bar{Ticker: ticker, Date: date}
	for _, f := range []struct {
		field string
		dst   *float64
		price bool
	}{
		{"Open", &b.Open, true},
		{"High", &b.High, true},
		{"Low", &b.Low, true},
		{"Close", &b.Close, true},
		{"Change", &b.Change, false},
		{"Change (%)", &b.ChangePct, false},
	} {
		raw, err := required(f.field)
		if err != nil {
			return entity.Bar{}, err
		}
		v, err := parseFloat(ticker, f.field, raw)
		if err != nil {
			return entity.Bar{}, err
		}
		if f.price && v < 0 {
			return entity.Bar{}, &FieldError{Symbol: ticker, Field: f.field, Reason: "negative price"}
		}
		*f.dst = round2(v)
	}

	rawVol, err := required("Volume")
	if err != nil {
		return entity.Bar{}, err
	}
	vol, err := parseInt(ticker, "Volume", rawVol)
	if err != nil {
		return entity.Bar{}, err
	}
	if vol < 0 {
		return entity.Bar{}, &FieldError{Symbol: ticker, Field: "Volume", Reason: "negative volume"}
	}
	b.Volume = vol

	return b, nil
}

// Quote はマーケットウォッチ1行の正規化結果です。
// ListedIndexesは「LISTED IN」のカンマ区切りを分解済みで、
// 行のファンアウト（指数ごとに1行）は呼び出し側が行います。
type Quote struct {
	Symbol        string // suffix除去済みのベースシンボル
	Suffix        string
	Sector        string
	ListedIndexes []string

	LDCP      *float64
	Open      *float64
	High      *float64
	Low       *float64
	Current   *float64
	Change    *float64
	ChangePct *float64
	Volume    *int64
}

var quoteSchema = schema{
	"SYMBOL":     nil,
	"SECTOR":     nil,
	"LISTED IN":  {"LISTED_IN"},
	"LDCP":       nil,
	"OPEN":       nil,
	"HIGH":       nil,
	"LOW":        nil,
	"CURRENT":    nil,
	"CHANGE":     nil,
	"CHANGE (%)": {"CHANGE(%)", "ChangeP"},
	"VOLUME":     nil,
}

// MarketWatchQuote はマーケットウォッチの生レコードをQuoteへ正規化します。
// 相場値は任意項目で、空の場合はnilになります（取引停止銘柄など）。
// 空でない値のパース失敗はエラーです。
func MarketWatchQuote(rec Record) (Quote, error) {
	rawSymbol, ok := quoteSchema.lookup(rec, "SYMBOL")
	if !ok || strings.TrimSpace(rawSymbol) == "" {
		return Quote{}, &FieldError{Field: "SYMBOL", Reason: "missing value"}
	}
	symbol := strings.TrimSpace(rawSymbol)

	if err := quoteSchema.checkUnknown(rec, symbol); err != nil {
		return Quote{}, err
	}

	base, suffix := StripSuffix(symbol)
	q := Quote{Symbol: base, Suffix: suffix}

	if v, ok := quoteSchema.lookup(rec, "SECTOR"); ok {
		q.Sector = strings.TrimSpace(v)
	}
	if v, ok := quoteSchema.lookup(rec, "LISTED IN"); ok {
		q.ListedIndexes = SplitIndexes(v)
	}

	optFloat := func(field string, round bool) (*float64, error) {
		raw, ok := quoteSchema.lookup(rec, field)
		if !ok || strings.TrimSpace(raw) == "" {
			return nil, nil
		}
		v, err := parseFloat(base, field, raw)
		if err != nil {
			return nil, err
		}
		if round {
			v = round2(v)
		}
		return &v, nil
	}

	var err error
	if q.LDCP, err = optFloat("LDCP", true); err != nil {
		return Quote{}, err
	}
	if q.Open, err = optFloat("OPEN", true); err != nil {
		return Quote{}, err
	}
	if q.High, err = optFloat("HIGH", true); err != nil {
		return Quote{}, err
	}
	if q.Low, err = optFloat("LOW", true); err != nil {
		return Quote{}, err
	}
	if q.Current, err = optFloat("CURRENT", true); err != nil {
		return Quote{}, err
	}
	if q.Change, err = optFloat("CHANGE", true); err != nil {
		return Quote{}, err
	}
	if q.ChangePct, err = optFloat("CHANGE (%)", true); err != nil {
		return Quote{}, err
	}

	if raw, ok := quoteSchema.lookup(rec, "VOLUME"); ok && strings.TrimSpace(raw) != "" {
		vol, err := parseInt(base, "VOLUME", raw)
		if err != nil {
			return Quote{}, err
		}
		q.Volume = &vol
	}

	return q, nil
}

// SplitIndexes は「KSE100, KSE30」のようなカンマ区切りの指数リストを分解します。
func SplitIndexes(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if idx := strings.TrimSpace(part); idx != "" {
			out = append(out, idx)
		}
	}
	return out
}

// Defaulter はデフォルター一覧の1件の正規化結果です。
type Defaulter struct {
	Symbol string // suffix除去済み
	Suffix string
	Name   string
	Sector string
	Clause string
}

var defaulterSchema = schema{
	"SYMBOL":            nil,
	"NAME":              {"COMPANY"},
	"SECTOR":            nil,
	"DEFAULTING CLAUSE": {"DEFAULTING_CLAUSE"},
	"CLEARING TYPE":     {"CLEARING_TYPE"},
	"SHARES":            nil,
	"FREE FLOAT":        {"FREE_FLOAT"},
	"LISTED IN":         {"LISTED_IN"},
}

// DefaulterRecord はデフォルター一覧の生レコードを正規化します。
func DefaulterRecord(rec Record) (Defaulter, error) {
	rawSymbol, ok := defaulterSchema.lookup(rec, "SYMBOL")
	if !ok || strings.TrimSpace(rawSymbol) == "" {
		return Defaulter{}, &FieldError{Field: "SYMBOL", Reason: "missing value"}
	}
	symbol := strings.TrimSpace(rawSymbol)

	if err := defaulterSchema.checkUnknown(rec, symbol); err != nil {
		return Defaulter{}, err
	}

	base, suffix := StripSuffix(symbol)
	d := Defaulter{Symbol: base, Suffix: suffix}
	if v, ok := defaulterSchema.lookup(rec, "NAME"); ok {
		d.Name = strings.TrimSpace(v)
	}
	if v, ok := defaulterSchema.lookup(rec, "SECTOR"); ok {
		d.Sector = strings.TrimSpace(v)
	}
	if v, ok := defaulterSchema.lookup(rec, "DEFAULTING CLAUSE"); ok {
		d.Clause = strings.TrimSpace(v)
	}
	return d, nil
}

var constituentSchema = schema{
	"ISIN":            nil,
	"SYMBOL":          nil,
	"COMPANY":         nil,
	"PRICE":           nil,
	"IDX_WT":          {"IDX WT %"},
	"FF_BASED_SHARES": {"FF BASED SHARES"},
	"FF_BASED_MCAP":   {"FF BASED MCAP"},
	"ORD_SHARES":      {"ORD SHARES"},
	"ORD_SHARES_MCAP": {"ORD SHARES MCAP"},
	"VOLUME":          nil,
}

// Constituent は指数構成銘柄の生レコードをentity.Constituentへ正規化します。
func Constituent(rec Record) (entity.Constituent, error) {
	rawSymbol, _ := constituentSchema.lookup(rec, "SYMBOL")
	symbol := strings.TrimSpace(rawSymbol)

	if err := constituentSchema.checkUnknown(rec, symbol); err != nil {
		return entity.Constituent{}, err
	}

	rawISIN, ok := constituentSchema.lookup(rec, "ISIN")
	if !ok || strings.TrimSpace(rawISIN) == "" {
		return entity.Constituent{}, &FieldError{Symbol: symbol, Field: "ISIN", Reason: "missing value"}
	}
	if symbol == "" {
		return entity.Constituent{}, &FieldError{Field: "SYMBOL", Reason: "missing value"}
	}

	c := entity.Constituent{
		ISIN:   strings.TrimSpace(rawISIN),
		Symbol: symbol,
	}
	if v, ok := constituentSchema.lookup(rec, "COMPANY"); ok {
		c.Company = strings.TrimSpace(v)
	}

	for _, f := range []struct {
		field string
		dst   *float64
		round bool
	}{
		{"PRICE", &c.Price, true},
		{"IDX_WT", &c.IndexWeight, false},
		{"FF_BASED_MCAP", &c.FFBasedMcap, true},
		{"ORD_SHARES_MCAP", &c.OrdSharesMcap, true},
	} {
		raw, ok := constituentSchema.lookup(rec, f.field)
		if !ok || strings.TrimSpace(raw) == "" {
			continue // 指数非構成銘柄では重みなどが空になる
		}
		v, err := parseFloat(symbol, f.field, raw)
		if err != nil {
			return entity.Constituent{}, err
		}
		if f.round {
			v = round2(v)
		}
		*f.dst = v
	}

	for _, f := range []struct {
		field string
		dst   *int64
	}{
		{"FF_BASED_SHARES", &c.FFBasedShares},
		{"ORD_SHARES", &c.OrdShares},
		{"VOLUME", &c.Volume},
	} {
		raw, ok := constituentSchema.lookup(rec, f.field)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		v, err := parseInt(symbol, f.field, raw)
		if err != nil {
			return entity.Constituent{}, err
		}
		*f.dst = v
	}

	return c, nil
}

var transactionSchema = schema{
	"Date":            nil,
	"Settlement Date": {"Settlement_Date"},
	"Buyer Code":      {"Buyer_Code"},
	"Seller Code":     {"Seller_Code"},
	"Symbol Code":     {"Symbol_Code"},
	"Company":         nil,
	"Turnover":        nil,
	"Rate":            nil,
	"Value":           nil,
	"Type":            {"Transaction Type", "Transaction_Type"},
}

// Transaction は場外取引CSVの1行をentity.Transactionへ正規化します。
func Transaction(rec Record) (entity.Transaction, error) {
	symbol, _ := transactionSchema.lookup(rec, "Symbol Code")
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return entity.Transaction{}, &FieldError{Field: "Symbol Code", Reason: "missing value"}
	}

	if err := transactionSchema.checkUnknown(rec, symbol); err != nil {
		return entity.Transaction{}, err
	}

	tx := entity.Transaction{SymbolCode: symbol}

	rawDate, ok := transactionSchema.lookup(rec, "Date")
	if !ok {
		return entity.Transaction{}, &FieldError{Symbol: symbol, Field: "Date", Reason: "missing value"}
	}
	date, err := ParseDate(rawDate)
	if err != nil {
		return entity.Transaction{}, &FieldError{Symbol: symbol, Field: "Date", Reason: err.Error()}
	}
	tx.Date = date

	if raw, ok := transactionSchema.lookup(rec, "Settlement Date"); ok && strings.TrimSpace(raw) != "" {
		settle, err := ParseDate(raw)
		if err != nil {
			return entity.Transaction{}, &FieldError{Symbol: symbol, Field: "Settlement Date", Reason: err.Error()}
		}
		tx.SettlementDate = settle
	}

	get := func(field string) string {
		v, _ := transactionSchema.lookup(rec, field)
		return strings.TrimSpace(v)
	}
	tx.BuyerCode = get("Buyer Code")
	tx.SellerCode = get("Seller Code")
	tx.Company = get("Company")
	tx.Type = get("Type")

	if raw := get("Turnover"); raw != "" {
		v, err := parseInt(symbol, "Turnover", raw)
		if err != nil {
			return entity.Transaction{}, err
		}
		tx.Turnover = v
	}

	for _, f := range []struct {
		field string
		dst   *decimal.Decimal
	}{
		{"Rate", &tx.Rate},
		{"Value", &tx.Value},
	} {
		raw := get(f.field)
		if raw == "" {
			*f.dst = decimal.Zero
			continue
		}
		d, err := decimal.NewFromString(cleanNumber(raw))
		if err != nil {
			return entity.Transaction{}, &FieldError{Symbol: symbol, Field: f.field, Reason: "not a number " + strconv.Quote(raw)}
		}
		*f.dst = d.Round(2)
	}

	return tx, nil
}
