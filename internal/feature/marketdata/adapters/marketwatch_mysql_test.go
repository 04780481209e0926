package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psx_backend/internal/feature/marketdata/domain/entity"
)

func fp(v float64) *float64 { return &v }

func testMarketWatchRow(symbol, index string) entity.MarketWatchRow {
	return entity.MarketWatchRow{
		Symbol: symbol, Sector: "Commercial Banks", ListedIndex: index,
		LDCP: fp(100.0), Open: fp(101.0), High: fp(103.0), Low: fp(99.0),
		Current: fp(102.5), Change: fp(2.5), ChangePct: fp(2.5),
	}
}

func TestMarketWatchMySQL_ReplaceAll(t *testing.T) {
	ctx := context.Background()

	t.Run("success: old snapshot fully replaced", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewMarketWatchRepository(db)

		added, err := repo.ReplaceAll(ctx, []entity.MarketWatchRow{
			testMarketWatchRow("HBL", "KSE100"),
			testMarketWatchRow("HBL", "KSE30"),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, added)

		added, err = repo.ReplaceAll(ctx, []entity.MarketWatchRow{
			testMarketWatchRow("OGDC", "KSE100"),
		})
		require.NoError(t, err)
		assert.Equal(t, 1, added)

		symbols, err := repo.DistinctSymbols(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"OGDC"}, symbols, "previous snapshot should be gone")
	})

	t.Run("success: same symbol under two sectors keeps both rows", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewMarketWatchRepository(db)

		banks := testMarketWatchRow("ABC", "KSE100")
		insurance := testMarketWatchRow("ABC", "KSE100")
		insurance.Sector = "Insurance"

		added, err := repo.ReplaceAll(ctx, []entity.MarketWatchRow{banks, insurance})
		require.NoError(t, err)
		assert.Equal(t, 2, added)

		rows, err := repo.ListByIndex(ctx, "KSE100")
		require.NoError(t, err)
		require.Len(t, rows, 2, "a symbol listed under two sectors must not collapse the snapshot")
	})

	t.Run("success: duplicate snapshot key upserts instead of failing", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewMarketWatchRepository(db)

		first := testMarketWatchRow("KML", "ALLSHR")
		second := testMarketWatchRow("KML", "ALLSHR")
		second.Current = fp(7.5)

		// サフィックス除去で同一ベースシンボルへ畳まれるケースに相当する
		_, err := repo.ReplaceAll(ctx, []entity.MarketWatchRow{first, second})
		require.NoError(t, err)

		rows, err := repo.ListByIndex(ctx, "ALLSHR")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		require.NotNil(t, rows[0].Current)
		assert.Equal(t, 7.5, *rows[0].Current, "later duplicate should win")
	})

	t.Run("success: synthetic defaulter row with nil quotes", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewMarketWatchRepository(db)

		_, err := repo.ReplaceAll(ctx, []entity.MarketWatchRow{
			{Symbol: "DWSM", ListedIndex: "DEFAULT", Defaulter: true, DefaultingClause: "5.11.2"},
		})
		require.NoError(t, err)

		rows, err := repo.ListByIndex(ctx, "DEFAULT")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.True(t, rows[0].Defaulter)
		assert.Nil(t, rows[0].Current)
		assert.Equal(t, "5.11.2", rows[0].DefaultingClause)
	})
}

func TestMarketWatchMySQL_ListByIndex(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewMarketWatchRepository(db)

	_, err := repo.ReplaceAll(ctx, []entity.MarketWatchRow{
		testMarketWatchRow("OGDC", "KSE100"),
		testMarketWatchRow("HBL", "KSE100"),
		testMarketWatchRow("HBL", "KSE30"),
	})
	require.NoError(t, err)

	rows, err := repo.ListByIndex(ctx, "KSE100")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "HBL", rows[0].Symbol, "rows should be ordered by symbol")
	assert.Equal(t, "OGDC", rows[1].Symbol)

	indexes, err := repo.ListIndexes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"KSE100", "KSE30"}, indexes)
}
