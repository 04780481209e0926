package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"

	"psx_backend/internal/feature/marketdata/domain/entity"
)

// mockBarRepository はテスト用のBarRepositoryモック実装です。
type mockBarRepository struct {
	findFn            func(ctx context.Context, ticker string, limit int) ([]entity.Bar, error)
	upsertAllFn       func(ctx context.Context, bars []entity.Bar) (int, []error)
	distinctTickersFn func(ctx context.Context) ([]string, error)
}

func (m *mockBarRepository) Find(ctx context.Context, ticker string, limit int) ([]entity.Bar, error) {
	if m.findFn != nil {
		return m.findFn(ctx, ticker, limit)
	}
	return nil, nil
}

func (m *mockBarRepository) UpsertAll(ctx context.Context, bars []entity.Bar) (int, []error) {
	if m.upsertAllFn != nil {
		return m.upsertAllFn(ctx, bars)
	}
	return 0, nil
}

func (m *mockBarRepository) DistinctTickers(ctx context.Context) ([]string, error) {
	if m.distinctTickersFn != nil {
		return m.distinctTickersFn(ctx)
	}
	return nil, nil
}

// TestNewCachingBarRepository_Defaults はデフォルト値（TTLとnamespace）が正しく設定されることを検証します。
func TestNewCachingBarRepository_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		ttl               time.Duration
		namespace         string
		expectedTTL       time.Duration
		expectedNamespace string
	}{
		{
			name:              "default values when zero/empty",
			ttl:               0,
			namespace:         "",
			expectedTTL:       5 * time.Minute,
			expectedNamespace: "bars",
		},
		{
			name:              "custom values preserved",
			ttl:               10 * time.Minute,
			namespace:         "custom",
			expectedTTL:       10 * time.Minute,
			expectedNamespace: "custom",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := NewCachingBarRepository(nil, tt.ttl, &mockBarRepository{}, tt.namespace)

			if repo.ttl != tt.expectedTTL {
				t.Errorf("expected TTL %v, got %v", tt.expectedTTL, repo.ttl)
			}
			if repo.namespace != tt.expectedNamespace {
				t.Errorf("expected namespace %q, got %q", tt.expectedNamespace, repo.namespace)
			}
		})
	}
}

// TestCachingBarRepository_Find_NilRedis はRedisがnilの場合にキャッシュをバイパスして内部リポジトリを直接呼び出すことを検証します。
func TestCachingBarRepository_Find_NilRedis(t *testing.T) {
	t.Parallel()

	expectedBars := []entity.Bar{
		{Ticker: "HBL", Open: 150.0, Close: 155.0},
	}

	inner := &mockBarRepository{
		findFn: func(ctx context.Context, ticker string, limit int) ([]entity.Bar, error) {
			return expectedBars, nil
		},
	}

	repo := NewCachingBarRepository(nil, 5*time.Minute, inner, "bars")

	bars, err := repo.Find(context.Background(), "HBL", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != len(expectedBars) {
		t.Errorf("expected %d bars, got %d", len(expectedBars), len(bars))
	}
}

// TestCachingBarRepository_Find_CacheHit はキャッシュヒット時にRedisからデータを返し、内部リポジトリを呼ばないことを検証します。
func TestCachingBarRepository_Find_CacheHit(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	cachedBars := []entity.Bar{
		{Ticker: "HBL", Open: 150.0, Close: 155.0},
	}
	cachedJSON, _ := json.Marshal(cachedBars)

	mock.ExpectGet("bars:HBL:100").SetVal(string(cachedJSON))

	innerCalled := false
	inner := &mockBarRepository{
		findFn: func(ctx context.Context, ticker string, limit int) ([]entity.Bar, error) {
			innerCalled = true
			return nil, nil
		},
	}

	repo := NewCachingBarRepository(rdb, 5*time.Minute, inner, "bars")
	bars, err := repo.Find(context.Background(), "HBL", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if innerCalled {
		t.Error("inner repository should not be called on cache hit")
	}
	if len(bars) != 1 {
		t.Errorf("expected 1 bar, got %d", len(bars))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingBarRepository_Find_CacheMiss はキャッシュミス時にDBからデータを取得し、キャッシュに保存することを検証します。
func TestCachingBarRepository_Find_CacheMiss(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedBars := []entity.Bar{
		{Ticker: "HBL", Open: 150.0, Close: 155.0},
	}
	expectedJSON, _ := json.Marshal(expectedBars)

	mock.ExpectGet("bars:HBL:100").RedisNil()
	mock.ExpectSet("bars:HBL:100", expectedJSON, 5*time.Minute).SetVal("OK")

	inner := &mockBarRepository{
		findFn: func(ctx context.Context, ticker string, limit int) ([]entity.Bar, error) {
			return expectedBars, nil
		},
	}

	repo := NewCachingBarRepository(rdb, 5*time.Minute, inner, "bars")
	bars, err := repo.Find(context.Background(), "HBL", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 1 {
		t.Errorf("expected 1 bar, got %d", len(bars))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingBarRepository_Find_InnerError は内部リポジトリがエラーを返した場合にそのエラーが伝播されることを検証します。
func TestCachingBarRepository_Find_InnerError(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedErr := errors.New("database error")

	mock.ExpectGet("bars:HBL:100").RedisNil()

	inner := &mockBarRepository{
		findFn: func(ctx context.Context, ticker string, limit int) ([]entity.Bar, error) {
			return nil, expectedErr
		},
	}

	repo := NewCachingBarRepository(rdb, 5*time.Minute, inner, "bars")
	_, err := repo.Find(context.Background(), "HBL", 100)

	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}

// TestCachingBarRepository_Find_CorruptedCache は破損したキャッシュを検出・削除し、DBにフォールバックすることを検証します。
func TestCachingBarRepository_Find_CorruptedCache(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedBars := []entity.Bar{
		{Ticker: "HBL", Open: 150.0, Close: 155.0},
	}
	expectedJSON, _ := json.Marshal(expectedBars)

	mock.ExpectGet("bars:HBL:100").SetVal("invalid json")
	mock.ExpectDel("bars:HBL:100").SetVal(1)
	mock.ExpectSet("bars:HBL:100", expectedJSON, 5*time.Minute).SetVal("OK")

	inner := &mockBarRepository{
		findFn: func(ctx context.Context, ticker string, limit int) ([]entity.Bar, error) {
			return expectedBars, nil
		},
	}

	repo := NewCachingBarRepository(rdb, 5*time.Minute, inner, "bars")
	bars, err := repo.Find(context.Background(), "HBL", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 1 {
		t.Errorf("expected 1 bar, got %d", len(bars))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingBarRepository_UpsertAll_NilRedis はRedisがnilの場合にUpsertAllが内部リポジトリのみを呼び出すことを検証します。
func TestCachingBarRepository_UpsertAll_NilRedis(t *testing.T) {
	t.Parallel()

	innerCalled := false
	inner := &mockBarRepository{
		upsertAllFn: func(ctx context.Context, bars []entity.Bar) (int, []error) {
			innerCalled = true
			return len(bars), nil
		},
	}

	repo := NewCachingBarRepository(nil, 5*time.Minute, inner, "bars")
	added, errs := repo.UpsertAll(context.Background(), []entity.Bar{{Ticker: "HBL"}})

	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if added != 1 {
		t.Errorf("expected 1 added, got %d", added)
	}
	if !innerCalled {
		t.Error("expected inner repository to be called")
	}
}

// TestCachingBarRepository_UpsertAll_CacheInvalidation はUpsertAll後に銘柄ごとのキャッシュと銘柄一覧キャッシュが無効化されることを検証します。
func TestCachingBarRepository_UpsertAll_CacheInvalidation(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	// SCAN + DEL per distinct ticker, then the ticker list key
	mock.ExpectScan(0, "bars:HBL:*", 200).SetVal([]string{"bars:HBL:100"}, 0)
	mock.ExpectDel("bars:HBL:100").SetVal(1)
	mock.ExpectDel("bars:tickers").SetVal(1)

	inner := &mockBarRepository{
		upsertAllFn: func(ctx context.Context, bars []entity.Bar) (int, []error) {
			return len(bars), nil
		},
	}

	repo := NewCachingBarRepository(rdb, 5*time.Minute, inner, "bars")
	added, errs := repo.UpsertAll(context.Background(), []entity.Bar{
		{Ticker: "HBL"},
		{Ticker: "HBL"},
	})

	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if added != 2 {
		t.Errorf("expected 2 added, got %d", added)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingBarRepository_DistinctTickers_CacheHit は銘柄一覧キャッシュがヒットした場合に内部を呼ばないことを検証します。
func TestCachingBarRepository_DistinctTickers_CacheHit(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	cachedJSON, _ := json.Marshal([]string{"HBL", "OGDC"})
	mock.ExpectGet("bars:tickers").SetVal(string(cachedJSON))

	innerCalled := false
	inner := &mockBarRepository{
		distinctTickersFn: func(ctx context.Context) ([]string, error) {
			innerCalled = true
			return nil, nil
		},
	}

	repo := NewCachingBarRepository(rdb, 5*time.Minute, inner, "bars")
	tickers, err := repo.DistinctTickers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if innerCalled {
		t.Error("inner repository should not be called on cache hit")
	}
	if len(tickers) != 2 {
		t.Errorf("expected 2 tickers, got %d", len(tickers))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestSafe はRedisキーに使えない文字が置換されることを検証します。
func TestSafe(t *testing.T) {
	t.Parallel()

	if got := safe("a b:c"); got != "a_b_c" {
		t.Errorf("expected a_b_c, got %q", got)
	}
}
