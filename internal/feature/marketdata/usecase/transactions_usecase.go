package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"psx_backend/internal/feature/marketdata/domain/entity"
	"psx_backend/internal/feature/marketdata/normalize"
)

// TransactionSource は場外取引CSVの取得を抽象化します。
// 完全同期とは独立した取り込みのため、MarketDataSourceから分離しています。
type TransactionSource interface {
	FetchTransactions(ctx context.Context, date time.Time) ([]normalize.Record, error)
}

// TransactionRepository は場外取引の永続化を抽象化します。
type TransactionRepository interface {
	// UpsertAll は(date, buyer_code, seller_code, symbol_code, turnover, rate)の
	// 組をキーとしてバッチ単位でUpsertします。
	UpsertAll(ctx context.Context, txs []entity.Transaction) (int, []error)

	// FindByDate は指定日の取引をシンボル順で返します。
	FindByDate(ctx context.Context, date time.Time) ([]entity.Transaction, error)
}

// TransactionsUsecase は場外取引（B2B・I2I）の取り込みと照会を提供します。
type TransactionsUsecase struct {
	source TransactionSource
	repo   TransactionRepository
	log    *slog.Logger
}

// NewTransactionsUsecase はTransactionsUsecaseの新しいインスタンスを生成します。
func NewTransactionsUsecase(source TransactionSource, repo TransactionRepository, log *slog.Logger) *TransactionsUsecase {
	if log == nil {
		log = slog.Default()
	}
	return &TransactionsUsecase{source: source, repo: repo, log: log}
}

// Sync は指定日の場外取引を取得して保存し、要約を返します。
// 部分同期と同じ契約で、失敗は要約へ格下げされます。
func (u *TransactionsUsecase) Sync(ctx context.Context, date time.Time) entity.PartialSummary {
	summary := entity.PartialSummary{Date: date}

	recs, err := u.source.FetchTransactions(ctx, date)
	if err != nil {
		summary.Errors = append(summary.Errors,
			fmt.Sprintf("failed to fetch transactions for %s: %v", date.Format("02 Jan 2006"), err))
		u.log.Error("transactions fetch failed", "date", date.Format("02 Jan 2006"), "error", err)
		return summary
	}
	summary.RecordsFetched = len(recs)
	if len(recs) == 0 {
		return summary
	}

	txs := make([]entity.Transaction, 0, len(recs))
	for _, rec := range recs {
		tx, nerr := normalize.Transaction(rec)
		if nerr != nil {
			summary.Errors = append(summary.Errors, nerr.Error())
			continue
		}
		txs = append(txs, tx)
	}

	added, upsertErrs := u.repo.UpsertAll(ctx, txs)
	summary.RecordsAdded = added
	for _, e := range upsertErrs {
		summary.Errors = append(summary.Errors, e.Error())
	}

	u.log.Info("transactions synchronized",
		"date", date.Format("02 Jan 2006"),
		"fetched", summary.RecordsFetched,
		"added", summary.RecordsAdded)
	return summary
}

// GetByDate は指定日の場外取引を返します。存在しない場合はErrNoDataを返します。
func (u *TransactionsUsecase) GetByDate(ctx context.Context, date time.Time) ([]entity.Transaction, error) {
	txs, err := u.repo.FindByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, ErrNoData
	}
	return txs, nil
}
