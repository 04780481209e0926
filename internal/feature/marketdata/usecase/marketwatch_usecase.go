package usecase

import (
	"context"
	"strings"

	"psx_backend/internal/feature/marketdata/domain/entity"
)

// MarketWatchUsecase はマーケットウォッチスナップショットの照会ロジックを提供します。
type MarketWatchUsecase struct {
	watch MarketWatchRepository
}

// NewMarketWatchUsecase はMarketWatchUsecaseの新しいインスタンスを生成します。
func NewMarketWatchUsecase(watch MarketWatchRepository) *MarketWatchUsecase {
	return &MarketWatchUsecase{watch: watch}
}

// ListIndexes は最新スナップショットに含まれる指数名の一覧を返します。
func (u *MarketWatchUsecase) ListIndexes(ctx context.Context) ([]string, error) {
	return u.watch.ListIndexes(ctx)
}

// GetByIndex は指定指数の構成行を返します。指数が空または存在しない場合はErrNoDataを返します。
func (u *MarketWatchUsecase) GetByIndex(ctx context.Context, index string) ([]entity.MarketWatchRow, error) {
	index = strings.ToUpper(strings.TrimSpace(index))
	if index == "" {
		return nil, ErrNoData
	}
	rows, err := u.watch.ListByIndex(ctx, index)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoData
	}
	return rows, nil
}

// ListSymbols は最新スナップショットに含まれるシンボル一覧を返します。
func (u *MarketWatchUsecase) ListSymbols(ctx context.Context) ([]string, error) {
	return u.watch.DistinctSymbols(ctx)
}
