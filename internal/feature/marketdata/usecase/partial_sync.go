package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"psx_backend/internal/feature/marketdata/domain/entity"
	"psx_backend/internal/feature/marketdata/normalize"
)

// PartialSyncUsecase は単一日の全銘柄相場を取り込む軽量同期です。
// 完全同期と違い日付フォールバックは行わず、指定日に取れたものを取るだけです。
// 日中の追いつきや欠損日の補完に使います。
type PartialSyncUsecase struct {
	source MarketDataSource
	bars   BarRepository
	log    *slog.Logger
}

// NewPartialSyncUsecase はPartialSyncUsecaseの新しいインスタンスを生成します。
func NewPartialSyncUsecase(source MarketDataSource, bars BarRepository, log *slog.Logger) *PartialSyncUsecase {
	if log == nil {
		log = slog.Default()
	}
	return &PartialSyncUsecase{source: source, bars: bars, log: log}
}

// Run は指定日の相場を取得してバーへUpsertし、要約を返します。
// 完全同期と同じく、失敗は要約へ格下げされ呼び出し元へ送出されません。
func (u *PartialSyncUsecase) Run(ctx context.Context, date time.Time) entity.PartialSummary {
	summary := entity.PartialSummary{Date: date}

	recs, err := u.source.FetchDailyQuotes(ctx, date)
	if err != nil {
		summary.Errors = append(summary.Errors,
			fmt.Sprintf("failed to fetch quotes for %s: %v", date.Format("02 Jan 2006"), err))
		u.log.Error("daily quotes fetch failed", "date", date.Format("02 Jan 2006"), "error", err)
		return summary
	}
	summary.RecordsFetched = len(recs)
	if len(recs) == 0 {
		u.log.Info("no quotes for date", "date", date.Format("02 Jan 2006"))
		return summary
	}

	bars := make([]entity.Bar, 0, len(recs))
	for _, rec := range recs {
		b, nerr := normalize.DailyBar(rec, date)
		if nerr != nil {
			summary.Errors = append(summary.Errors, nerr.Error())
			continue
		}
		bars = append(bars, b)
	}

	added, upsertErrs := u.bars.UpsertAll(ctx, bars)
	summary.RecordsAdded = added
	for _, e := range upsertErrs {
		summary.Errors = append(summary.Errors, e.Error())
	}

	u.log.Info("partial sync finished",
		"date", date.Format("02 Jan 2006"),
		"fetched", summary.RecordsFetched,
		"added", summary.RecordsAdded,
		"errors", len(summary.Errors))
	return summary
}
