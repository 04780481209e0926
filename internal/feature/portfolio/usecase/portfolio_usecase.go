// Package usecase はポートフォリオのビジネスロジックを実装します。
package usecase

import (
	"context"
	"sort"
	"strings"

	"psx_backend/internal/feature/portfolio/domain/entity"
)

// PortfolioRepository はポートフォリオの永続化を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type PortfolioRepository interface {
	Create(ctx context.Context, p *entity.Portfolio) error
	FindByName(ctx context.Context, name string) (*entity.Portfolio, error)
	Update(ctx context.Context, p *entity.Portfolio) error
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]entity.Portfolio, error)
}

// PortfolioUsecase はポートフォリオのCRUDロジックを提供します。
type PortfolioUsecase struct {
	repo PortfolioRepository
}

// NewPortfolioUsecase はPortfolioUsecaseの新しいインスタンスを生成します。
func NewPortfolioUsecase(repo PortfolioRepository) *PortfolioUsecase {
	return &PortfolioUsecase{repo: repo}
}

// normalizeTickers は銘柄リストを大文字化・重複除去・ソートして正規化します。
func normalizeTickers(tickers []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Create は新しいポートフォリオを作成します。
// 名前の重複はErrPortfolioExists、空の入力はErrEmptyPortfolioになります。
func (u *PortfolioUsecase) Create(ctx context.Context, name string, tickers []string) (*entity.Portfolio, error) {
	name = strings.TrimSpace(name)
	normalized := normalizeTickers(tickers)
	if name == "" || len(normalized) == 0 {
		return nil, ErrEmptyPortfolio
	}

	p := &entity.Portfolio{Name: name, Tickers: normalized}
	if err := u.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get は名前でポートフォリオを取得します。
func (u *PortfolioUsecase) Get(ctx context.Context, name string) (*entity.Portfolio, error) {
	return u.repo.FindByName(ctx, strings.TrimSpace(name))
}

// Update は既存ポートフォリオの銘柄リストを置き換えます。
func (u *PortfolioUsecase) Update(ctx context.Context, name string, tickers []string) (*entity.Portfolio, error) {
	normalized := normalizeTickers(tickers)
	if len(normalized) == 0 {
		return nil, ErrEmptyPortfolio
	}

	p, err := u.repo.FindByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	p.Tickers = normalized
	if err := u.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete は名前でポートフォリオを削除します。
func (u *PortfolioUsecase) Delete(ctx context.Context, name string) error {
	return u.repo.Delete(ctx, strings.TrimSpace(name))
}

// List はすべてのポートフォリオを返します。
func (u *PortfolioUsecase) List(ctx context.Context) ([]entity.Portfolio, error) {
	return u.repo.List(ctx)
}
