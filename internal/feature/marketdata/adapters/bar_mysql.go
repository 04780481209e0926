// Package adapters はmarketdataフィーチャーの永続化実装を提供します。
package adapters

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"psx_backend/internal/feature/marketdata/domain/entity"
	"psx_backend/internal/feature/marketdata/usecase"
)

// upsertBatchSize はバッチUpsertの1回あたりの行数です。
const upsertBatchSize = 100

type barMySQL struct {
	db *gorm.DB
}

var _ usecase.BarRepository = (*barMySQL)(nil)

func NewBarRepository(db *gorm.DB) *barMySQL {
	return &barMySQL{db: db}
}

type BarModel struct {
	ID     uint      `gorm:"primaryKey"`
	Ticker string    `gorm:"size:32;not null;uniqueIndex:bar_ticker_date,priority:1"`
	Date   time.Time `gorm:"not null;uniqueIndex:bar_ticker_date,priority:2"`

	Open      float64 `gorm:"not null"`
	High      float64 `gorm:"not null"`
	Low       float64 `gorm:"not null"`
	Close     float64 `gorm:"not null"`
	Change    float64 `gorm:"not null;default:0"`
	ChangePct float64 `gorm:"not null;default:0"`
	Volume    int64   `gorm:"not null;default:0"`
}

func (BarModel) TableName() string {
	return "bars"
}

func toBarModel(e entity.Bar) BarModel {
	return BarModel{
		Ticker:    e.Ticker,
		Date:      e.Date,
		Open:      e.Open,
		High:      e.High,
		Low:       e.Low,
		Close:     e.Close,
		Change:    e.Change,
		ChangePct: e.ChangePct,
		Volume:    e.Volume,
	}
}

func toBarEntity(m BarModel) entity.Bar {
	return entity.Bar{
		Ticker:    m.Ticker,
		Date:      m.Date,
		Open:      m.Open,
		High:      m.High,
		Low:       m.Low,
		Close:     m.Close,
		Change:    m.Change,
		ChangePct: m.ChangePct,
		Volume:    m.Volume,
	}
}

// UpsertAll は(ticker, date)をキーに100行単位でUpsertします。
// 同一キーへの再実行は後勝ちの更新になり、同期の再実行が安全になります。
// 失敗したバッチはスキップして続行し、成功した行数とバッチごとのエラーを返します。
func (r *barMySQL) UpsertAll(ctx context.Context, bars []entity.Bar) (int, []error) {
	var (
		added int
		errs  []error
	)
	for start := 0; start < len(bars); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(bars) {
			end = len(bars)
		}

		ms := make([]BarModel, 0, end-start)
		for _, e := range bars[start:end] {
			ms = append(ms, toBarModel(e))
		}

		err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ticker"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "change", "change_pct", "volume"}),
		}).Create(&ms).Error
		if err != nil {
			errs = append(errs, fmt.Errorf("batch %d-%d: %w", start, end, err))
			continue
		}
		added += len(ms)
	}
	return added, errs
}

// DistinctTickers はバーが存在する銘柄の一覧を返します。
func (r *barMySQL) DistinctTickers(ctx context.Context) ([]string, error) {
	var tickers []string
	err := r.db.WithContext(ctx).
		Model(&BarModel{}).
		Distinct("ticker").
		Order("ticker").
		Pluck("ticker", &tickers).Error
	if err != nil {
		return nil, err
	}
	return tickers, nil
}

// Find は指定銘柄のバーを日付降順で返します。
func (r *barMySQL) Find(ctx context.Context, ticker string, limit int) ([]entity.Bar, error) {
	var rows []BarModel
	q := r.db.WithContext(ctx).
		Where("ticker = ?", ticker).
		Order("`date` DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Bar, 0, len(rows))
	for _, m := range rows {
		out = append(out, toBarEntity(m))
	}
	return out, nil
}
