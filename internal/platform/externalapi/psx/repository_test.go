package psx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"psx_backend/internal/platform/externalapi/psx/dto"
)

const marketWatchHTML = `<html><body>
<table class="tbl">
<thead><tr>
<th>SYMBOL</th><th>SECTOR</th><th>LISTED IN</th><th>LDCP</th><th>OPEN</th>
<th>HIGH</th><th>LOW</th><th>CURRENT</th><th>CHANGE</th><th>CHANGE (%)</th><th>VOLUME</th>
</tr></thead>
<tbody>
<tr><td>HBL</td><td>Commercial Banks</td><td>KSE100, KSE30</td><td>100.00</td><td>101.00</td>
<td>103.00</td><td>99.00</td><td>102.50</td><td>2.50</td><td>2.50</td><td>1,500,000</td></tr>
<tr><td>OGDC</td><td>Oil</td><td>KSE100</td><td>95.00</td><td>95.50</td>
<td>96.00</td><td>94.00</td><td>95.25</td><td>0.25</td><td>0.26</td><td>800,000</td></tr>
</tbody>
</table>
</body></html>`

func newTestMarket(serverURL string) *PSXMarket {
	cfg := Config{
		BaseURL:    serverURL,
		HistoryURL: serverURL + "/history",
		UserAgent:  "test-agent",
		Timeout:    5 * time.Second,
	}
	return NewPSXMarket(cfg, &http.Client{Timeout: cfg.Timeout})
}

func TestPSXMarket_FetchMarketWatch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/market-watch" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("user agent not set, got %q", r.Header.Get("User-Agent"))
		}
		_, _ = w.Write([]byte(marketWatchHTML))
	}))
	defer server.Close()

	recs, err := newTestMarket(server.URL).FetchMarketWatch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("record count mismatch: got %d, want 2", len(recs))
	}
	if recs[0]["SYMBOL"] != "HBL" {
		t.Errorf("symbol mismatch: got %q", recs[0]["SYMBOL"])
	}
	if recs[0]["LISTED IN"] != "KSE100, KSE30" {
		t.Errorf("listed in mismatch: got %q", recs[0]["LISTED IN"])
	}
	if recs[1]["VOLUME"] != "800,000" {
		t.Errorf("volume mismatch: got %q", recs[1]["VOLUME"])
	}
}

func TestPSXMarket_FetchMarketWatch_HTTPError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestMarket(server.URL).FetchMarketWatch(context.Background())
	if err == nil {
		t.Fatal("expected error for http 503")
	}
}

func TestPSXMarket_FetchConstituents(t *testing.T) {
	t.Parallel()

	// ポータルが返すワークブックをexcelizeで組み立てて配信する
	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	rows := [][]interface{}{
		{"ISIN", "SYMBOL", "COMPANY", "PRICE"},
		{"PK0080201012", "HBL", "Habib Bank Limited", "102.50"},
		{"", "", "", ""},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := wb.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("failed to build workbook: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := wb.Write(&buf); err != nil {
		t.Fatalf("failed to serialize workbook: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/download/indhist/2026-08-26.xls" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write(buf.Bytes())
	}))
	defer server.Close()

	recs, err := newTestMarket(server.URL).FetchConstituents(context.Background(),
		time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("record count mismatch: got %d, want 1 (blank rows skipped)", len(recs))
	}
	if recs[0]["ISIN"] != "PK0080201012" || recs[0]["SYMBOL"] != "HBL" {
		t.Errorf("record mismatch: %v", recs[0])
	}
}

func TestPSXMarket_FetchTickerHistory(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/history" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req dto.PriceHistoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Data.Company != "HBL" {
			t.Errorf("company mismatch: got %q", req.Data.Company)
		}
		if req.Data.FromDate != "01 Jan 2000" {
			t.Errorf("from date mismatch: got %q", req.Data.FromDate)
		}

		_, _ = w.Write([]byte(`[
			{"Date_":"2026-08-26T00:00:00","Open":"101.00","High":"103.00","Low":"99.00",
			 "Close":"102.50","change_value":"2.50","ChangeP":"2.50","Volume":"1500000"}
		]`))
	}))
	defer server.Close()

	recs, err := newTestMarket(server.URL).FetchTickerHistory(context.Background(), "HBL",
		time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("record count mismatch: got %d, want 1", len(recs))
	}
	if recs[0]["Date_"] != "2026-08-26T00:00:00" || recs[0]["Close"] != "102.50" {
		t.Errorf("record mismatch: %v", recs[0])
	}
}

func TestPSXMarket_FetchTransactions(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/download/omts/2026-08-26.csv" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(
			"Date,Settlement Date,Buyer Code,Seller Code,Symbol Code,Company,Turnover,Rate,Value,Transaction Type\n" +
				"26 Aug 2026,28 Aug 2026,B123,S456,HBL,Habib Bank Limited,5000,102.50,512500.00,B2B\n" +
				"Note: trailing disclaimer row\n"))
	}))
	defer server.Close()

	recs, err := newTestMarket(server.URL).FetchTransactions(context.Background(),
		time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("record count mismatch: got %d, want 1 (malformed rows skipped)", len(recs))
	}
	if recs[0]["Symbol Code"] != "HBL" || recs[0]["Transaction Type"] != "B2B" {
		t.Errorf("record mismatch: %v", recs[0])
	}
}

func TestPSXMarket_FetchDailyQuotes(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/historical" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse form: %v", err)
		}
		if r.PostForm.Get("date") != "2026-08-26" {
			t.Errorf("date mismatch: got %q", r.PostForm.Get("date"))
		}
		_, _ = w.Write([]byte(`<table>
<thead><tr><th>SYMBOL</th><th>LDCP</th><th>OPEN</th><th>HIGH</th><th>LOW</th>
<th>CLOSE</th><th>CHANGE</th><th>CHANGE (%)</th><th>VOLUME</th></tr></thead>
<tbody><tr><td>HBL</td><td>100.00</td><td>101.00</td><td>103.00</td><td>99.00</td>
<td>102.50</td><td>2.50</td><td>2.50</td><td>1,000</td></tr></tbody>
</table>`))
	}))
	defer server.Close()

	recs, err := newTestMarket(server.URL).FetchDailyQuotes(context.Background(),
		time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("record count mismatch: got %d, want 1", len(recs))
	}
	if recs[0]["CLOSE"] != "102.50" {
		t.Errorf("close mismatch: got %q", recs[0]["CLOSE"])
	}
}
