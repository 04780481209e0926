package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"psx_backend/internal/feature/marketdata/domain/entity"
	"psx_backend/internal/feature/marketdata/usecase"
)

type transactionMySQL struct {
	db *gorm.DB
}

var _ usecase.TransactionRepository = (*transactionMySQL)(nil)

func NewTransactionRepository(db *gorm.DB) *transactionMySQL {
	return &transactionMySQL{db: db}
}

// TransactionModel は場外取引の1行です。公表CSVは行IDを持たないため、
// 取引を識別しうる列の組をユニークキーとして再取り込みを冪等にします。
type TransactionModel struct {
	ID             uint      `gorm:"primaryKey"`
	Date           time.Time `gorm:"not null;uniqueIndex:tx_natural_key,priority:1"`
	SettlementDate time.Time
	BuyerCode      string          `gorm:"size:16;not null;uniqueIndex:tx_natural_key,priority:2"`
	SellerCode     string          `gorm:"size:16;not null;uniqueIndex:tx_natural_key,priority:3"`
	SymbolCode     string          `gorm:"size:32;not null;uniqueIndex:tx_natural_key,priority:4;index"`
	Company        string          `gorm:"size:128;not null;default:''"`
	Turnover       int64           `gorm:"not null;default:0;uniqueIndex:tx_natural_key,priority:5"`
	Rate           decimal.Decimal `gorm:"type:decimal(18,2);not null;uniqueIndex:tx_natural_key,priority:6"`
	Value          decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Type           string          `gorm:"size:8;not null;default:''"`
}

func (TransactionModel) TableName() string {
	return "off_market_transactions"
}

func toTransactionModel(e entity.Transaction) TransactionModel {
	return TransactionModel{
		Date:           e.Date,
		SettlementDate: e.SettlementDate,
		BuyerCode:      e.BuyerCode,
		SellerCode:     e.SellerCode,
		SymbolCode:     e.SymbolCode,
		Company:        e.Company,
		Turnover:       e.Turnover,
		Rate:           e.Rate,
		Value:          e.Value,
		Type:           e.Type,
	}
}

func toTransactionEntity(m TransactionModel) entity.Transaction {
	return entity.Transaction{
		Date:           m.Date,
		SettlementDate: m.SettlementDate,
		BuyerCode:      m.BuyerCode,
		SellerCode:     m.SellerCode,
		SymbolCode:     m.SymbolCode,
		Company:        m.Company,
		Turnover:       m.Turnover,
		Rate:           m.Rate,
		Value:          m.Value,
		Type:           m.Type,
	}
}

// UpsertAll は自然キーの組をもとに100行単位でUpsertします。
func (r *transactionMySQL) UpsertAll(ctx context.Context, txs []entity.Transaction) (int, []error) {
	var (
		added int
		errs  []error
	)
	for start := 0; start < len(txs); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(txs) {
			end = len(txs)
		}

		ms := make([]TransactionModel, 0, end-start)
		for _, e := range txs[start:end] {
			ms = append(ms, toTransactionModel(e))
		}

		err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "date"}, {Name: "buyer_code"}, {Name: "seller_code"},
				{Name: "symbol_code"}, {Name: "turnover"}, {Name: "rate"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"settlement_date", "company", "value", "type"}),
		}).Create(&ms).Error
		if err != nil {
			errs = append(errs, fmt.Errorf("batch %d-%d: %w", start, end, err))
			continue
		}
		added += len(ms)
	}
	return added, errs
}

// FindByDate は指定日の取引をシンボル順で返します。
func (r *transactionMySQL) FindByDate(ctx context.Context, date time.Time) ([]entity.Transaction, error) {
	var rows []TransactionModel
	err := r.db.WithContext(ctx).
		Where("`date` = ?", date).
		Order("symbol_code").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]entity.Transaction, 0, len(rows))
	for _, m := range rows {
		out = append(out, toTransactionEntity(m))
	}
	return out, nil
}
