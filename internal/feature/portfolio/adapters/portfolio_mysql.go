// Package adapters はportfolioフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"psx_backend/internal/feature/portfolio/domain/entity"
	"psx_backend/internal/feature/portfolio/usecase"
)

// portfolioMySQL はPortfolioRepositoryインターフェースのMySQL実装です。
type portfolioMySQL struct {
	db *gorm.DB
}

var _ usecase.PortfolioRepository = (*portfolioMySQL)(nil)

// NewPortfolioRepository は指定されたDB接続でportfolioMySQLの新しいインスタンスを生成します。
func NewPortfolioRepository(db *gorm.DB) *portfolioMySQL {
	return &portfolioMySQL{db: db}
}

// PortfolioModel は銘柄リストをカンマ区切りの1カラムで保持します。
// 銘柄は参照専用でリレーショナルな結合に使われないため、正規化テーブルより
// この形が読み書きともに単純です。
type PortfolioModel struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"size:64;not null;uniqueIndex"`
	Tickers   string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (PortfolioModel) TableName() string {
	return "portfolios"
}

func toPortfolioEntity(m PortfolioModel) *entity.Portfolio {
	var tickers []string
	if m.Tickers != "" {
		tickers = strings.Split(m.Tickers, ",")
	}
	return &entity.Portfolio{
		ID:        m.ID,
		Name:      m.Name,
		Tickers:   tickers,
		UpdatedAt: m.UpdatedAt,
	}
}

// Create はポートフォリオを追加します。
// 同名のポートフォリオが既に存在する場合、usecase.ErrPortfolioExistsを返します。
func (r *portfolioMySQL) Create(ctx context.Context, p *entity.Portfolio) error {
	m := PortfolioModel{Name: p.Name, Tickers: strings.Join(p.Tickers, ",")}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		// MySQLエラー1062: ユニークキーの重複エントリ
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return usecase.ErrPortfolioExists
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return usecase.ErrPortfolioExists
		}
		return err
	}
	p.ID = m.ID
	p.UpdatedAt = m.UpdatedAt
	return nil
}

// FindByName は名前でポートフォリオを取得します。
// 存在しない場合、usecase.ErrPortfolioNotFoundを返します。
func (r *portfolioMySQL) FindByName(ctx context.Context, name string) (*entity.Portfolio, error) {
	var m PortfolioModel
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrPortfolioNotFound
		}
		return nil, err
	}
	return toPortfolioEntity(m), nil
}

// Update は既存ポートフォリオの銘柄リストを置き換えます。
func (r *portfolioMySQL) Update(ctx context.Context, p *entity.Portfolio) error {
	res := r.db.WithContext(ctx).
		Model(&PortfolioModel{}).
		Where("name = ?", p.Name).
		Update("tickers", strings.Join(p.Tickers, ","))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrPortfolioNotFound
	}
	return nil
}

// Delete は名前でポートフォリオを削除します。
func (r *portfolioMySQL) Delete(ctx context.Context, name string) error {
	res := r.db.WithContext(ctx).Where("name = ?", name).Delete(&PortfolioModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrPortfolioNotFound
	}
	return nil
}

// List はすべてのポートフォリオを名前順で返します。
func (r *portfolioMySQL) List(ctx context.Context) ([]entity.Portfolio, error) {
	var ms []PortfolioModel
	if err := r.db.WithContext(ctx).Order("name").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Portfolio, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toPortfolioEntity(m))
	}
	return out, nil
}
