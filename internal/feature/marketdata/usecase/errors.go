package usecase

import "errors"

var (
	// ErrNoData はソースが空のペイロードを返したことを示します。
	// ネットワーク障害とは区別して扱います。
	ErrNoData = errors.New("no data fetched")

	// ErrTickerNotFound は指定された銘柄のバーが存在しないことを示します。
	ErrTickerNotFound = errors.New("ticker not found")
)
