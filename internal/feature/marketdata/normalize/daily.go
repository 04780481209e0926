package normalize

import (
	"strings"
	"time"

	"psx_backend/internal/feature/marketdata/domain/entity"
)

// dailySchema は特定日の全銘柄相場レコードのスキーマです。
// 価格履歴と違いレコード自身は日付を持たず、取得対象日を呼び出し側が与えます。
var dailySchema = schema{
	"SYMBOL":     nil,
	"LDCP":       nil,
	"OPEN":       nil,
	"HIGH":       nil,
	"LOW":        nil,
	"CLOSE":      {"CURRENT"},
	"CHANGE":     nil,
	"CHANGE (%)": {"CHANGE(%)", "ChangeP"},
	"VOLUME":     nil,
}

// DailyBar は特定日の相場レコード1件をentity.Barへ正規化します。
// シンボルの末尾記号は除去され、日付には引数のdateがそのまま入ります。
func DailyBar(rec Record, date time.Time) (entity.Bar, error) {
	rawSymbol, ok := dailySchema.lookup(rec, "SYMBOL")
	if !ok || strings.TrimSpace(rawSymbol) == "" {
		return entity.Bar{}, &FieldError{Field: "SYMBOL", Reason: "missing value"}
	}
	symbol := strings.TrimSpace(rawSymbol)

	if err := dailySchema.checkUnknown(rec, symbol); err != nil {
		return entity.Bar{}, err
	}

	base, _ := StripSuffix(symbol)
	b := entity.Bar{
		Ticker: base,
		Date:   time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
	}

	required := func(field string) (string, error) {
		v, ok := dailySchema.lookup(rec, field)
		if !ok || strings.TrimSpace(v) == "" {
			return "", &FieldError{Symbol: base, Field: field, Reason: "missing value"}
		}
		return v, nil
	}

	for _, f := range []struct {
		field string
		dst   *float64
		price bool
	}{
		{"OPEN", &b.Open, true},
		{"HIGH", &b.High, true},
		{"LOW", &b.Low, true},
		{"CLOSE", &b.Close, true},
		{"CHANGE", &b.Change, false},
		{"CHANGE (%)", &b.ChangePct, false},
	} {
		raw, err := required(f.field)
		if err != nil {
			return entity.Bar{}, err
		}
		v, err := parseFloat(base, f.field, raw)
		if err != nil {
			return entity.Bar{}, err
		}
		if f.price && v < 0 {
			return entity.Bar{}, &FieldError{Symbol: base, Field: f.field, Reason: "negative price"}
		}
		*f.dst = round2(v)
	}

	rawVol, err := required("VOLUME")
	if err != nil {
		return entity.Bar{}, err
	}
	vol, err := parseInt(base, "VOLUME", rawVol)
	if err != nil {
		return entity.Bar{}, err
	}
	if vol < 0 {
		return entity.Bar{}, &FieldError{Symbol: base, Field: "VOLUME", Reason: "negative volume"}
	}
	b.Volume = vol

	return b, nil
}
