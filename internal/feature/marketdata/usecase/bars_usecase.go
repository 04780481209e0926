package usecase

import (
	"context"
	"strings"

	"psx_backend/internal/feature/marketdata/domain/entity"
)

const (
	defaultBarLimit = 300
	maxBarLimit     = 5000
)

// BarsUsecase は価格バーの照会ロジックを提供します。
type BarsUsecase struct {
	bars BarRepository
}

// NewBarsUsecase はBarsUsecaseの新しいインスタンスを生成します。
func NewBarsUsecase(bars BarRepository) *BarsUsecase {
	return &BarsUsecase{bars: bars}
}

// GetBars は指定銘柄のバーを日付降順で取得します。
// limitが0以下の場合は既定値、上限を超える場合は上限に丸めます。
// 銘柄が存在しない場合はErrTickerNotFoundを返します。
func (u *BarsUsecase) GetBars(ctx context.Context, ticker string, limit int) ([]entity.Bar, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, ErrTickerNotFound
	}
	if limit <= 0 {
		limit = defaultBarLimit
	}
	if limit > maxBarLimit {
		limit = maxBarLimit
	}

	bars, err := u.bars.Find(ctx, ticker, limit)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, ErrTickerNotFound
	}
	return bars, nil
}

// ListTickers は現在バーが存在する銘柄の一覧を返します。
func (u *BarsUsecase) ListTickers(ctx context.Context) ([]string, error) {
	return u.bars.DistinctTickers(ctx)
}
