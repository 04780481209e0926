package adapters

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"psx_backend/internal/feature/marketdata/domain/entity"
	"psx_backend/internal/feature/marketdata/usecase"
)

type marketWatchMySQL struct {
	db *gorm.DB
}

var _ usecase.MarketWatchRepository = (*marketWatchMySQL)(nil)

func NewMarketWatchRepository(db *gorm.DB) *marketWatchMySQL {
	return &marketWatchMySQL{db: db}
}

// MarketWatchModel の行は(symbol, sector, listed_index)で一意です。
// 同一シンボルが複数セクターに上場するケースがあるため、セクターもキーに含めます。
type MarketWatchModel struct {
	ID          uint   `gorm:"primaryKey"`
	Symbol      string `gorm:"size:32;not null;uniqueIndex:mw_snapshot_key,priority:1;index"`
	Sector      string `gorm:"size:128;not null;default:'';uniqueIndex:mw_snapshot_key,priority:2"`
	ListedIndex string `gorm:"size:32;not null;uniqueIndex:mw_snapshot_key,priority:3"`

	LDCP      *float64
	Open      *float64
	High      *float64
	Low       *float64
	Current   *float64
	Change    *float64
	ChangePct *float64
	Volume    *int64

	Defaulter        bool   `gorm:"not null;default:false"`
	DefaultingClause string `gorm:"size:64;not null;default:''"`

	ISIN          string `gorm:"size:16;not null;default:''"`
	Company       string `gorm:"size:128;not null;default:''"`
	Price         *float64
	IndexWeight   *float64
	FFBasedShares *int64
	FFBasedMcap   *float64
	OrdShares     *int64
	OrdSharesMcap *float64

	SymbolSuffix string `gorm:"size:8;not null;default:''"`
}

func (MarketWatchModel) TableName() string {
	return "market_watch"
}

func toMarketWatchModel(e entity.MarketWatchRow) MarketWatchModel {
	return MarketWatchModel{
		Symbol:           e.Symbol,
		Sector:           e.Sector,
		ListedIndex:      e.ListedIndex,
		LDCP:             e.LDCP,
		Open:             e.Open,
		High:             e.High,
		Low:              e.Low,
		Current:          e.Current,
		Change:           e.Change,
		ChangePct:        e.ChangePct,
		Volume:           e.Volume,
		Defaulter:        e.Defaulter,
		DefaultingClause: e.DefaultingClause,
		ISIN:             e.ISIN,
		Company:          e.Company,
		Price:            e.Price,
		IndexWeight:      e.IndexWeight,
		FFBasedShares:    e.FFBasedShares,
		FFBasedMcap:      e.FFBasedMcap,
		OrdShares:        e.OrdShares,
		OrdSharesMcap:    e.OrdSharesMcap,
		SymbolSuffix:     e.SymbolSuffix,
	}
}

func toMarketWatchEntity(m MarketWatchModel) entity.MarketWatchRow {
	return entity.MarketWatchRow{
		Symbol:           m.Symbol,
		Sector:           m.Sector,
		ListedIndex:      m.ListedIndex,
		LDCP:             m.LDCP,
		Open:             m.Open,
		High:             m.High,
		Low:              m.Low,
		Current:          m.Current,
		Change:           m.Change,
		ChangePct:        m.ChangePct,
		Volume:           m.Volume,
		Defaulter:        m.Defaulter,
		DefaultingClause: m.DefaultingClause,
		ISIN:             m.ISIN,
		Company:          m.Company,
		Price:            m.Price,
		IndexWeight:      m.IndexWeight,
		FFBasedShares:    m.FFBasedShares,
		FFBasedMcap:      m.FFBasedMcap,
		OrdShares:        m.OrdShares,
		OrdSharesMcap:    m.OrdSharesMcap,
		SymbolSuffix:     m.SymbolSuffix,
	}
}

// ReplaceAll は既存スナップショットの削除と新規行のバッチUpsertを
// 単一トランザクションで行います。途中で失敗した場合は全体が
// ロールバックされ、直前のスナップショットがそのまま残ります。
// 再挿入はキー重複（サフィックス除去で同一ベースシンボルへ畳まれる等）で
// スナップショット全体を失わないようUpsertで行います。
func (r *marketWatchMySQL) ReplaceAll(ctx context.Context, rows []entity.MarketWatchRow) (int, error) {
	added := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&MarketWatchModel{}).Error; err != nil {
			return err
		}
		for start := 0; start < len(rows); start += upsertBatchSize {
			end := start + upsertBatchSize
			if end > len(rows) {
				end = len(rows)
			}
			ms := make([]MarketWatchModel, 0, end-start)
			for _, e := range rows[start:end] {
				ms = append(ms, toMarketWatchModel(e))
			}
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "symbol"}, {Name: "sector"}, {Name: "listed_index"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"ldcp", "open", "high", "low", "current", "change", "change_pct", "volume",
					"defaulter", "defaulting_clause", "isin", "company", "price", "index_weight",
					"ff_based_shares", "ff_based_mcap", "ord_shares", "ord_shares_mcap", "symbol_suffix",
				}),
			}).Create(&ms).Error
			if err != nil {
				return err
			}
			added += len(ms)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

// DistinctSymbols は最新スナップショットのシンボル一覧を返します。
func (r *marketWatchMySQL) DistinctSymbols(ctx context.Context) ([]string, error) {
	var symbols []string
	err := r.db.WithContext(ctx).
		Model(&MarketWatchModel{}).
		Distinct("symbol").
		Order("symbol").
		Pluck("symbol", &symbols).Error
	if err != nil {
		return nil, err
	}
	return symbols, nil
}

// ListIndexes は最新スナップショットに含まれる指数名の一覧を返します。
func (r *marketWatchMySQL) ListIndexes(ctx context.Context) ([]string, error) {
	var indexes []string
	err := r.db.WithContext(ctx).
		Model(&MarketWatchModel{}).
		Distinct("listed_index").
		Order("listed_index").
		Pluck("listed_index", &indexes).Error
	if err != nil {
		return nil, err
	}
	return indexes, nil
}

// ListByIndex は指定指数の構成行をシンボル順で返します。
func (r *marketWatchMySQL) ListByIndex(ctx context.Context, index string) ([]entity.MarketWatchRow, error) {
	var rows []MarketWatchModel
	err := r.db.WithContext(ctx).
		Where("listed_index = ?", index).
		Order("symbol").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]entity.MarketWatchRow, 0, len(rows))
	for _, m := range rows {
		out = append(out, toMarketWatchEntity(m))
	}
	return out, nil
}
