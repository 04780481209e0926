package usecase

import "errors"

var (
	// ErrPortfolioExists は同名のポートフォリオが既に存在することを示します。
	ErrPortfolioExists = errors.New("portfolio with this name already exists")

	// ErrPortfolioNotFound は指定された名前のポートフォリオが存在しないことを示します。
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrEmptyPortfolio は名前または銘柄リストが空であることを示します。
	ErrEmptyPortfolio = errors.New("portfolio name and tickers are required")
)
