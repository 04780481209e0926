package adapters

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"psx_backend/internal/feature/marketdata/domain/entity"
	"psx_backend/internal/feature/marketdata/usecase"
)

type constituentMySQL struct {
	db *gorm.DB
}

var (
	_ usecase.ConstituentRepository = (*constituentMySQL)(nil)
	_ usecase.ConstituentLister     = (*constituentMySQL)(nil)
)

func NewConstituentRepository(db *gorm.DB) *constituentMySQL {
	return &constituentMySQL{db: db}
}

type ConstituentModel struct {
	ID     uint   `gorm:"primaryKey"`
	ISIN   string `gorm:"size:16;not null;uniqueIndex"`
	Symbol string `gorm:"size:32;not null;index"`

	Company       string  `gorm:"size:128;not null;default:''"`
	Price         float64 `gorm:"not null;default:0"`
	IndexWeight   float64 `gorm:"not null;default:0"`
	FFBasedShares int64   `gorm:"not null;default:0"`
	FFBasedMcap   float64 `gorm:"not null;default:0"`
	OrdShares     int64   `gorm:"not null;default:0"`
	OrdSharesMcap float64 `gorm:"not null;default:0"`
	Volume        int64   `gorm:"not null;default:0"`
}

func (ConstituentModel) TableName() string {
	return "constituents"
}

func toConstituentModel(e entity.Constituent) ConstituentModel {
	return ConstituentModel{
		ISIN:          e.ISIN,
		Symbol:        e.Symbol,
		Company:       e.Company,
		Price:         e.Price,
		IndexWeight:   e.IndexWeight,
		FFBasedShares: e.FFBasedShares,
		FFBasedMcap:   e.FFBasedMcap,
		OrdShares:     e.OrdShares,
		OrdSharesMcap: e.OrdSharesMcap,
		Volume:        e.Volume,
	}
}

// UpsertAll はISINをキーに100行単位でUpsertします。
// 失敗したバッチはスキップして続行し、成功した行数とバッチごとのエラーを返します。
func (r *constituentMySQL) UpsertAll(ctx context.Context, cs []entity.Constituent) (int, []error) {
	var (
		added int
		errs  []error
	)
	for start := 0; start < len(cs); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(cs) {
			end = len(cs)
		}

		ms := make([]ConstituentModel, 0, end-start)
		for _, e := range cs[start:end] {
			ms = append(ms, toConstituentModel(e))
		}

		err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "isin"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"symbol", "company", "price", "index_weight",
				"ff_based_shares", "ff_based_mcap", "ord_shares", "ord_shares_mcap", "volume",
			}),
		}).Create(&ms).Error
		if err != nil {
			errs = append(errs, fmt.Errorf("batch %d-%d: %w", start, end, err))
			continue
		}
		added += len(ms)
	}
	return added, errs
}

// List は構成銘柄の全件をシンボル順で返します。
func (r *constituentMySQL) List(ctx context.Context) ([]entity.Constituent, error) {
	var rows []ConstituentModel
	if err := r.db.WithContext(ctx).Order("symbol").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Constituent, 0, len(rows))
	for _, m := range rows {
		out = append(out, entity.Constituent{
			ISIN:          m.ISIN,
			Symbol:        m.Symbol,
			Company:       m.Company,
			Price:         m.Price,
			IndexWeight:   m.IndexWeight,
			FFBasedShares: m.FFBasedShares,
			FFBasedMcap:   m.FFBasedMcap,
			OrdShares:     m.OrdShares,
			OrdSharesMcap: m.OrdSharesMcap,
			Volume:        m.Volume,
		})
	}
	return out, nil
}
