package psx

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"

	"psx_backend/internal/feature/marketdata/normalize"
	"psx_backend/internal/feature/marketdata/usecase"
	"psx_backend/internal/platform/externalapi/psx/dto"
)

// PSXMarket は取引所のデータポータルからレコードを取得するMarketDataSource実装です。
// ポータルはエンドポイントごとに形式が異なり（HTMLテーブル・xlsx・CSV・JSON）、
// ここではすべて未パースのnormalize.Recordへ揃えて返します。
// 値の解釈はnormalizeパッケージの仕事です。
type PSXMarket struct {
	cfg    Config
	client *http.Client
}

// PSXMarketが両方のソースインターフェースを実装していることをコンパイル時に検証します。
var (
	_ usecase.MarketDataSource  = (*PSXMarket)(nil)
	_ usecase.TransactionSource = (*PSXMarket)(nil)
)

// NewPSXMarket は指定された設定とHTTPクライアントでPSXMarketの新しいインスタンスを生成します。
func NewPSXMarket(cfg Config, client *http.Client) *PSXMarket {
	return &PSXMarket{cfg: cfg, client: client}
}

// FetchConstituents は指定日の指数構成銘柄ワークブックを取得します。
// 未公表日（休場日など）はポータルが404を返すため、呼び出し側が
// 前営業日へフォールバックできるようエラーで区別します。
func (p *PSXMarket) FetchConstituents(ctx context.Context, date time.Time) ([]normalize.Record, error) {
	u := fmt.Sprintf("%s/download/indhist/%s.xls", p.cfg.BaseURL, date.Format("2006-01-02"))
	body, err := p.get(ctx, u)
	if err != nil {
		return nil, err
	}

	wb, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("open constituents workbook: %w", err)
	}
	defer func() {
		if err := wb.Close(); err != nil {
			slog.Warn("failed to close workbook", "error", err)
		}
	}()

	rows, err := wb.GetRows(wb.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read constituents sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	headers := make([]string, 0, len(rows[0]))
	for _, h := range rows[0] {
		headers = append(headers, strings.ToUpper(strings.TrimSpace(h)))
	}

	recs := make([]normalize.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := normalize.Record{}
		for i, cell := range row {
			if i >= len(headers) || headers[i] == "" {
				continue
			}
			rec[headers[i]] = strings.TrimSpace(cell)
		}
		if len(rec) == 0 || rec["SYMBOL"] == "" {
			continue
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// FetchMarketWatch はライブ相場テーブルをスクレイプします。
func (p *PSXMarket) FetchMarketWatch(ctx context.Context) ([]normalize.Record, error) {
	doc, err := p.getDoc(ctx, p.cfg.BaseURL+"/market-watch")
	if err != nil {
		return nil, err
	}
	return tableRecords(doc), nil
}

// FetchDefaulters はデフォルターセグメントの一覧テーブルをスクレイプします。
func (p *PSXMarket) FetchDefaulters(ctx context.Context) ([]normalize.Record, error) {
	doc, err := p.getDoc(ctx, p.cfg.BaseURL+"/listings-table/main/dc")
	if err != nil {
		return nil, err
	}
	return tableRecords(doc), nil
}

// FetchTickerHistory は履歴ゲートウェイ経由で1銘柄の日足履歴を取得します。
func (p *PSXMarket) FetchTickerHistory(ctx context.Context, ticker string, from, to time.Time) ([]normalize.Record, error) {
	payload := dto.PriceHistoryRequest{
		URL: "PriceHistory/GetPriceHistoryCompanyWise",
		Data: dto.PriceHistoryData{
			Company:  ticker,
			FromDate: from.Format("02 Jan 2006"),
			ToDate:   to.Format("02 Jan 2006"),
			Sort:     "0",
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.HistoryURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", p.cfg.UserAgent)

	res, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer closeBody(res)

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("price history http %d for %s", res.StatusCode, ticker)
	}

	var rows []dto.PriceHistoryRow
	if err := json.NewDecoder(res.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode price history for %s: %w", ticker, err)
	}

	recs := make([]normalize.Record, 0, len(rows))
	for _, r := range rows {
		recs = append(recs, normalize.Record{
			"Date_":        r.Date,
			"Open":         r.Open,
			"High":         r.High,
			"Low":          r.Low,
			"Close":        r.Close,
			"change_value": r.Change,
			"ChangeP":      r.ChangePct,
			"Volume":       r.Volume,
		})
	}
	return recs, nil
}

// FetchDailyQuotes は指定日の全銘柄相場テーブルを取得します。
func (p *PSXMarket) FetchDailyQuotes(ctx context.Context, date time.Time) ([]normalize.Record, error) {
	form := url.Values{}
	form.Set("date", date.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.cfg.BaseURL+"/historical", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", p.cfg.UserAgent)

	res, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer closeBody(res)

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("historical quotes http %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, err
	}
	return tableRecords(doc), nil
}

// FetchTransactions は指定日の場外取引CSVを取得します。
func (p *PSXMarket) FetchTransactions(ctx context.Context, date time.Time) ([]normalize.Record, error) {
	u := fmt.Sprintf("%s/download/omts/%s.csv", p.cfg.BaseURL, date.Format("2006-01-02"))
	body, err := p.get(ctx, u)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1 // 末尾の注記行など列数の揺れを許容する
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse transactions csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	headers := make([]string, 0, len(rows[0]))
	for _, h := range rows[0] {
		headers = append(headers, strings.TrimSpace(h))
	}

	recs := make([]normalize.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) != len(headers) {
			continue
		}
		rec := normalize.Record{}
		for i, cell := range row {
			rec[headers[i]] = strings.TrimSpace(cell)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (p *PSXMarket) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", p.cfg.UserAgent)

	res, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer closeBody(res)

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("psx http %d for %s", res.StatusCode, u)
	}
	return io.ReadAll(res.Body)
}

func (p *PSXMarket) getDoc(ctx context.Context, u string) (*goquery.Document, error) {
	body, err := p.get(ctx, u)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}

func closeBody(res *http.Response) {
	if err := res.Body.Close(); err != nil {
		slog.Warn("failed to close response body", "error", err)
	}
}

// tableRecords はページ内の最初のデータテーブルをレコード列へ変換します。
// ヘッダは大文字へ正規化され、normalizeパッケージのスキーマのキーになります。
func tableRecords(doc *goquery.Document) []normalize.Record {
	table := doc.Find("table").First()

	var headers []string
	table.Find("thead th").Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, strings.ToUpper(strings.TrimSpace(th.Text())))
	})
	if len(headers) == 0 {
		// theadのないテーブルは先頭行をヘッダとして扱う
		table.Find("tr").First().Find("th, td").Each(func(_ int, c *goquery.Selection) {
			headers = append(headers, strings.ToUpper(strings.TrimSpace(c.Text())))
		})
	}
	if len(headers) == 0 {
		return nil
	}

	var recs []normalize.Record
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		rec := normalize.Record{}
		tr.Find("td").Each(func(i int, td *goquery.Selection) {
			if i < len(headers) && headers[i] != "" {
				rec[headers[i]] = strings.TrimSpace(td.Text())
			}
		})
		if len(rec) > 0 {
			recs = append(recs, rec)
		}
	})
	return recs
}
