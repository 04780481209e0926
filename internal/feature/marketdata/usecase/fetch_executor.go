package usecase

import (
	"context"

	"psx_backend/internal/feature/marketdata/normalize"
	"psx_backend/internal/shared/ratelimiter"
)

// FetchFunc は1銘柄分の履歴レコードを取得します。
type FetchFunc func(ctx context.Context, ticker string) ([]normalize.Record, error)

// HandleFunc は取得結果を処理します。FetchExecutorの実装は、取得の並行度に
// かかわらずhandleを直列に呼び出すことを保証します。データベース書き込みが
// 同一テーブル上で競合しないための契約です。
type HandleFunc func(ticker string, recs []normalize.Record, err error)

// FetchExecutor は銘柄ごとのフェッチ戦略（逐次・並行）を抽象化します。
// 冪等アップサートと銘柄単位のエラー分離という正しさの契約は、
// どちらの実装でも同一に保たれます。
type FetchExecutor interface {
	FetchEach(ctx context.Context, tickers []string, fetch FetchFunc, handle HandleFunc)
}

// SequentialExecutor は1件ずつブロッキングで取得する既定の実装です。
type SequentialExecutor struct {
	limiter ratelimiter.RateLimiterInterface
}

// NewSequentialExecutor は指定されたレートリミッターで逐次エグゼキューターを生成します。
// limiterはnil可です。
func NewSequentialExecutor(limiter ratelimiter.RateLimiterInterface) *SequentialExecutor {
	return &SequentialExecutor{limiter: limiter}
}

// FetchEach は各銘柄を順番に取得し、結果を都度handleへ渡します。
// コンテキストのキャンセルで残りの銘柄を打ち切ります。
func (e *SequentialExecutor) FetchEach(ctx context.Context, tickers []string, fetch FetchFunc, handle HandleFunc) {
	for _, ticker := range tickers {
		if ctx.Err() != nil {
			handle(ticker, nil, ctx.Err())
			continue
		}
		if e.limiter != nil {
			e.limiter.WaitIfNeeded()
		}
		recs, err := fetch(ctx, ticker)
		handle(ticker, recs, err)
	}
}

// ConcurrentExecutor はネットワーク取得を有界の並行度でファンアウトします。
// 結果は単一のチャネルに集約され、handleは受信ループで直列に呼ばれるため、
// 書き込み経路は逐次実装と同じく直列化されます。
type ConcurrentExecutor struct {
	workers int
	limiter ratelimiter.RateLimiterInterface
}

// NewConcurrentExecutor は指定されたワーカー数で並行エグゼキューターを生成します。
// workersが1未満の場合は4を使用します。
func NewConcurrentExecutor(workers int, limiter ratelimiter.RateLimiterInterface) *ConcurrentExecutor {
	if workers < 1 {
		workers = 4
	}
	return &ConcurrentExecutor{workers: workers, limiter: limiter}
}

type fetchResult struct {
	ticker string
	recs   []normalize.Record
	err    error
}

// FetchEach は有界ファンアウトで取得し、結果を到着順に直列処理します。
func (e *ConcurrentExecutor) FetchEach(ctx context.Context, tickers []string, fetch FetchFunc, handle HandleFunc) {
	sem := make(chan struct{}, e.workers)
	results := make(chan fetchResult)

	go func() {
		defer close(results)
		done := make(chan struct{}, len(tickers))
		for _, ticker := range tickers {
			sem <- struct{}{}
			go func(t string) {
				defer func() { <-sem; done <- struct{}{} }()
				if ctx.Err() != nil {
					results <- fetchResult{ticker: t, err: ctx.Err()}
					return
				}
				if e.limiter != nil {
					e.limiter.WaitIfNeeded()
				}
				recs, err := fetch(ctx, t)
				results <- fetchResult{ticker: t, recs: recs, err: err}
			}(ticker)
		}
		for range tickers {
			<-done
		}
	}()

	// 受信ループが唯一のhandle呼び出し点であり、書き込みは常に直列
	for r := range results {
		handle(r.ticker, r.recs, r.err)
	}
}
