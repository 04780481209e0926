// Package usecase はマーケットデータの同期と照会のビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"psx_backend/internal/feature/marketdata/domain/entity"
	"psx_backend/internal/feature/marketdata/normalize"
)

const (
	// maxSyncAttempts は構成銘柄ステージの日付フォールバック試行回数の上限です。
	maxSyncAttempts = 5

	// defaulterIndex はライブ相場に現れないデフォルター用の擬似指数名です。
	defaulterIndex = "DEFAULT"
)

// historyEpoch は銘柄履歴取得の固定開始日です（元システムの "01 Jan 2000"）。
var historyEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// MarketDataSource は外部の市場データソースを抽象化します。
// いずれのメソッドも、空の結果（nilでないエラーなし・長さ0）と
// 取得失敗（nilでないエラー）を区別して返します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type MarketDataSource interface {
	FetchConstituents(ctx context.Context, date time.Time) ([]normalize.Record, error)
	FetchMarketWatch(ctx context.Context) ([]normalize.Record, error)
	FetchDefaulters(ctx context.Context) ([]normalize.Record, error)
	FetchTickerHistory(ctx context.Context, ticker string, from, to time.Time) ([]normalize.Record, error)
	FetchDailyQuotes(ctx context.Context, date time.Time) ([]normalize.Record, error)
}

// BarRepository は価格バーの永続化を抽象化します。
type BarRepository interface {
	// UpsertAll は(ticker, date)をユニークキーとしてバッチ単位でUpsertします。
	// 失敗したバッチはスキップして続行し、影響行数とバッチごとのエラーを返します。
	UpsertAll(ctx context.Context, bars []entity.Bar) (int, []error)

	// DistinctTickers は現在バーが存在する銘柄の一覧を返します。
	DistinctTickers(ctx context.Context) ([]string, error)

	// Find は指定銘柄のバーを日付降順で返します。
	Find(ctx context.Context, ticker string, limit int) ([]entity.Bar, error)
}

// MarketWatchRepository はマーケットウォッチスナップショットの永続化を抽象化します。
type MarketWatchRepository interface {
	// ReplaceAll は既存スナップショットを削除し、新しい行を挿入します。
	// 削除と挿入は単一トランザクションで行われ、途中クラッシュで
	// 空テーブルの窓が生じないことを保証します。
	ReplaceAll(ctx context.Context, rows []entity.MarketWatchRow) (int, error)

	// DistinctSymbols は最新スナップショットに含まれるシンボル一覧を返します。
	DistinctSymbols(ctx context.Context) ([]string, error)

	ListIndexes(ctx context.Context) ([]string, error)
	ListByIndex(ctx context.Context, index string) ([]entity.MarketWatchRow, error)
}

// ConstituentRepository は指数構成銘柄の永続化を抽象化します。
type ConstituentRepository interface {
	// UpsertAll はISINをキーとしてバッチ単位でUpsertします。
	UpsertAll(ctx context.Context, cs []entity.Constituent) (int, []error)
}

// ProgressFunc は進捗シンクです。stageはentityのステージ名定数、
// fractionは0.0〜1.0の単調増加値です。nil許容。
type ProgressFunc func(stage string, fraction float64, message string)

// SyncUsecase は4ステージの同期パイプラインを統括します。
// 構成銘柄 → マーケットウォッチ → 既存銘柄 → 新規銘柄の順に実行し、
// ステージ境界を越えてエラーを送出しません。すべての失敗は
// SyncSummaryへ格下げされます。
type SyncUsecase struct {
	source       MarketDataSource
	bars         BarRepository
	watch        MarketWatchRepository
	constituents ConstituentRepository
	executor     FetchExecutor
	prevDay      BusinessDayPolicy
	log          *slog.Logger
}

// NewSyncUsecase はSyncUsecaseの新しいインスタンスを生成します。
// prevDayがnilの場合は週末スキップの既定ポリシーを使用します。
// ロガーはプロセス起動時に一度だけ構築され、ここへ明示的に渡されます。
func NewSyncUsecase(
	source MarketDataSource,
	bars BarRepository,
	watch MarketWatchRepository,
	constituents ConstituentRepository,
	executor FetchExecutor,
	prevDay BusinessDayPolicy,
	log *slog.Logger,
) *SyncUsecase {
	if prevDay == nil {
		prevDay = PreviousBusinessDay
	}
	if log == nil {
		log = slog.Default()
	}
	return &SyncUsecase{
		source:       source,
		bars:         bars,
		watch:        watch,
		constituents: constituents,
		executor:     executor,
		prevDay:      prevDay,
		log:          log,
	}
}

// Run は指定日を起点に完全同期を実行し、4ステージの要約を返します。
// 戻り値は常に完全な形で、未実行のステージはゼロ値のまま残ります。
func (u *SyncUsecase) Run(ctx context.Context, date time.Time, progress ProgressFunc) entity.SyncSummary {
	report := func(stage string, fraction float64, message string) {
		if progress != nil {
			progress(stage, fraction, message)
		}
	}

	summary := entity.SyncSummary{RequestedDate: date}

	// ステージ1: 構成銘柄（日付フォールバック付き）
	constituents := u.constituentsStage(ctx, &summary, report)
	if !summary.Constituents.Success {
		// 有効なシンボル宇宙なしには後続ステージは成立しない
		return summary
	}

	// ステージ2: マーケットウォッチ（失敗してもステージ3・4は続行）
	summary.MarketWatch = u.marketWatchStage(ctx, constituents)
	report(entity.StageMarketWatch, 0.30, summary.MarketWatch.Message)

	// ステージ3: 既存銘柄の履歴更新
	existing, err := u.bars.DistinctTickers(ctx)
	if err != nil {
		summary.ExistingTickers.Message = fmt.Sprintf("failed to list existing tickers: %v", err)
		u.log.Error("existing tickers listing failed", "error", err)
	} else {
		summary.ExistingTickers = u.syncTickers(ctx, existing, summary.EffectiveDate,
			entity.StageExistingTickers, 0.30, 0.30, report)
	}

	// ステージ4: 構成銘柄にあってまだ追跡していない銘柄の発見
	known := map[string]struct{}{}
	if tickers, err := u.bars.DistinctTickers(ctx); err == nil {
		for _, t := range tickers {
			known[t] = struct{}{}
		}
	} else {
		for _, t := range existing {
			known[t] = struct{}{}
		}
	}
	var fresh []string
	for _, c := range constituents {
		if _, ok := known[c.Symbol]; !ok {
			fresh = append(fresh, c.Symbol)
		}
	}
	summary.NewTickers = u.syncTickers(ctx, fresh, summary.EffectiveDate,
		entity.StageNewTickers, 0.60, 0.40, report)

	return summary
}

// constituentsStage は構成銘柄の取得・Upsertを行います。
// ソースが失敗または空を返した場合は前営業日へ下がって再試行し、
// 成功した日付をサマリーのEffectiveDateとして確定します。
func (u *SyncUsecase) constituentsStage(ctx context.Context, summary *entity.SyncSummary, report ProgressFunc) []entity.Constituent {
	current := LastBusinessDay(summary.RequestedDate)

	for attempt := 1; attempt <= maxSyncAttempts; attempt++ {
		summary.Attempts = attempt
		u.log.Info("synchronizing constituents",
			"attempt", attempt, "date", current.Format("02 Jan 2006"))
		report(entity.StageConstituents, 0.05,
			fmt.Sprintf("attempt %d: synchronizing constituents for %s", attempt, current.Format("02 Jan 2006")))

		recs, err := u.source.FetchConstituents(ctx, current)
		if err == nil && len(recs) == 0 {
			err = ErrNoData
		}
		if err != nil {
			u.log.Error("constituents fetch failed",
				"date", current.Format("02 Jan 2006"), "attempt", attempt, "error", err)
			current = u.prevDay(current)
			continue
		}

		var (
			rows []entity.Constituent
			errs []string
		)
		for _, rec := range recs {
			c, nerr := normalize.Constituent(rec)
			if nerr != nil {
				errs = append(errs, nerr.Error())
				continue
			}
			rows = append(rows, c)
		}

		added, upsertErrs := u.constituents.UpsertAll(ctx, rows)
		for _, e := range upsertErrs {
			errs = append(errs, e.Error())
		}

		summary.EffectiveDate = current
		summary.Constituents = entity.StageResult{
			Success:      true,
			RecordsAdded: added,
			Message: fmt.Sprintf("synchronized constituents for %s with %d records added/updated (attempt %d)",
				current.Format("02 Jan 2006"), added, attempt),
			Errors: errs,
		}
		report(entity.StageConstituents, 0.15, summary.Constituents.Message)
		return rows
	}

	summary.Constituents.Message = fmt.Sprintf("failed to synchronize constituents after %d attempts", maxSyncAttempts)
	u.log.Error(summary.Constituents.Message)
	return nil
}

// marketWatchStage はマーケットウォッチのスナップショットを全入れ替えします。
// デフォルター一覧と構成銘柄のクロスリファレンスをベースシンボルで結合し、
// 「LISTED IN」のカンマ区切りを指数ごとの行へファンアウトします。
func (u *SyncUsecase) marketWatchStage(ctx context.Context, constituents []entity.Constituent) entity.StageResult {
	var result entity.StageResult

	recs, err := u.source.FetchMarketWatch(ctx)
	if err != nil {
		result.Message = fmt.Sprintf("failed to fetch market watch data: %v", err)
		u.log.Error("market watch fetch failed", "error", err)
		return result
	}
	if len(recs) == 0 {
		result.Message = "no market watch data fetched"
		return result
	}

	// デフォルター取得の失敗は致命的ではない。フラグなしで続行する。
	defaulters := map[string]normalize.Defaulter{}
	defRecs, err := u.source.FetchDefaulters(ctx)
	if err != nil {
		u.log.Warn("defaulters fetch failed, continuing without defaulter flags", "error", err)
	}
	for _, rec := range defRecs {
		d, nerr := normalize.DefaulterRecord(rec)
		if nerr != nil {
			result.Errors = append(result.Errors, nerr.Error())
			continue
		}
		defaulters[d.Symbol] = d
	}

	consBySymbol := map[string]entity.Constituent{}
	for _, c := range constituents {
		consBySymbol[c.Symbol] = c
	}

	var rows []entity.MarketWatchRow
	seen := map[string]struct{}{}
	for _, rec := range recs {
		q, nerr := normalize.MarketWatchQuote(rec)
		if nerr != nil {
			result.Errors = append(result.Errors, nerr.Error())
			continue
		}
		// 上場指数のない相場はファンアウト先がなく黙って消えてしまう。
		// エラーとして記録し、デフォルターなら後段の合成行に任せる。
		if len(q.ListedIndexes) == 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: no listed index", q.Symbol))
			continue
		}
		seen[q.Symbol] = struct{}{}

		row := entity.MarketWatchRow{
			Symbol:       q.Symbol,
			Sector:       q.Sector,
			LDCP:         q.LDCP,
			Open:         q.Open,
			High:         q.High,
			Low:          q.Low,
			Current:      q.Current,
			Change:       q.Change,
			ChangePct:    q.ChangePct,
			Volume:       q.Volume,
			SymbolSuffix: q.Suffix,
		}
		if d, ok := defaulters[q.Symbol]; ok {
			row.Defaulter = true
			row.DefaultingClause = d.Clause
		}
		applyConstituent(&row, consBySymbol)

		// 指数ごとに1行へファンアウト
		for _, index := range q.ListedIndexes {
			r := row
			r.ListedIndex = index
			rows = append(rows, r)
		}
	}

	// ライブ相場に現れないデフォルターも合成行として保持する。
	// 取引停止・上場廃止でデフォルター状態が黙って消えないようにするため。
	for symbol, d := range defaulters {
		if _, ok := seen[symbol]; ok {
			continue
		}
		row := entity.MarketWatchRow{
			Symbol:           symbol,
			ListedIndex:      defaulterIndex,
			Defaulter:        true,
			DefaultingClause: d.Clause,
			SymbolSuffix:     d.Suffix,
		}
		applyConstituent(&row, consBySymbol)
		rows = append(rows, row)
	}

	added, err := u.watch.ReplaceAll(ctx, rows)
	if err != nil {
		result.Message = fmt.Sprintf("failed to replace market watch data: %v", err)
		u.log.Error("market watch replace failed", "error", err)
		return result
	}

	result.Success = true
	result.RecordsAdded = added
	result.Message = fmt.Sprintf("synchronized market watch data with %d records added/updated", added)
	return result
}

// applyConstituent は構成銘柄のクロスリファレンス項目を行へ結合します。
// 構成銘柄に存在しないシンボルは未設定のまま残ります（結合キーであり外部キーではない）。
func applyConstituent(row *entity.MarketWatchRow, consBySymbol map[string]entity.Constituent) {
	c, ok := consBySymbol[row.Symbol]
	if !ok {
		return
	}
	row.ISIN = c.ISIN
	row.Company = c.Company
	price, weight := c.Price, c.IndexWeight
	ffShares, ordShares := c.FFBasedShares, c.OrdShares
	ffMcap, ordMcap := c.FFBasedMcap, c.OrdSharesMcap
	row.Price = &price
	row.IndexWeight = &weight
	row.FFBasedShares = &ffShares
	row.FFBasedMcap = &ffMcap
	row.OrdShares = &ordShares
	row.OrdSharesMcap = &ordMcap
}

// syncTickers はステージ3・4で共有される銘柄単位の取得・正規化・Upsertループです。
// 1銘柄の失敗は残りの銘柄を中断しません。エラーはステージ要約へ収集されます。
func (u *SyncUsecase) syncTickers(ctx context.Context, tickers []string, effective time.Time,
	stage string, start, span float64, report ProgressFunc) entity.StageResult {

	result := entity.StageResult{Success: true}
	total := len(tickers)
	if total == 0 {
		result.Message = "no tickers to synchronize"
		report(stage, start+span, result.Message)
		return result
	}

	fetch := func(ctx context.Context, ticker string) ([]normalize.Record, error) {
		return u.source.FetchTickerHistory(ctx, ticker, historyEpoch, effective)
	}

	processed := 0
	handle := func(ticker string, recs []normalize.Record, err error) {
		processed++
		fraction := start + float64(processed)/float64(total)*span
		report(stage, fraction, fmt.Sprintf("updating ticker %s (%d/%d)", ticker, processed, total))

		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: fetch failed: %v", ticker, err))
			return
		}
		if len(recs) == 0 {
			u.log.Info("no data fetched for ticker", "ticker", ticker)
			return
		}

		bars := make([]entity.Bar, 0, len(recs))
		for _, rec := range recs {
			b, nerr := normalize.Bar(rec, ticker)
			if nerr != nil {
				// 不正レコードは単独でスキップし、同銘柄の他のバーは通す
				result.Errors = append(result.Errors, nerr.Error())
				continue
			}
			bars = append(bars, b)
		}

		added, upsertErrs := u.bars.UpsertAll(ctx, bars)
		result.RecordsAdded += added
		for _, e := range upsertErrs {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", ticker, e))
		}
		u.log.Info("ticker synchronized", "stage", stage, "ticker", ticker, "records", added)
	}

	u.executor.FetchEach(ctx, tickers, fetch, handle)

	result.Message = fmt.Sprintf("synchronized %d tickers with %d records added", total, result.RecordsAdded)
	if n := len(result.Errors); n > 0 {
		result.Message += fmt.Sprintf(" (encountered errors with %d records)", n)
	}
	return result
}
