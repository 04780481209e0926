package usecase

import (
	"context"

	"psx_backend/internal/feature/marketdata/domain/entity"
)

// ConstituentLister は指数構成銘柄の読み取りを抽象化します。
type ConstituentLister interface {
	// List は構成銘柄の全件をシンボル順で返します。
	List(ctx context.Context) ([]entity.Constituent, error)
}

// ConstituentsUsecase は指数構成銘柄の照会ロジックを提供します。
type ConstituentsUsecase struct {
	cons ConstituentLister
}

// NewConstituentsUsecase はConstituentsUsecaseの新しいインスタンスを生成します。
func NewConstituentsUsecase(cons ConstituentLister) *ConstituentsUsecase {
	return &ConstituentsUsecase{cons: cons}
}

// List は最新の構成銘柄クロスリファレンスを返します。
func (u *ConstituentsUsecase) List(ctx context.Context) ([]entity.Constituent, error) {
	return u.cons.List(ctx)
}
