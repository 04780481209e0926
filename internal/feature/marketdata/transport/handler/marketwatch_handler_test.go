package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"psx_backend/internal/feature/marketdata/domain/entity"
	"psx_backend/internal/feature/marketdata/transport/handler"
	"psx_backend/internal/feature/marketdata/usecase"
)

type mockMarketWatchUsecase struct {
	ListIndexesFunc func(ctx context.Context) ([]string, error)
	ListSymbolsFunc func(ctx context.Context) ([]string, error)
	GetByIndexFunc  func(ctx context.Context, index string) ([]entity.MarketWatchRow, error)
}

func (m *mockMarketWatchUsecase) ListIndexes(ctx context.Context) ([]string, error) {
	return m.ListIndexesFunc(ctx)
}

func (m *mockMarketWatchUsecase) ListSymbols(ctx context.Context) ([]string, error) {
	return m.ListSymbolsFunc(ctx)
}

func (m *mockMarketWatchUsecase) GetByIndex(ctx context.Context, index string) ([]entity.MarketWatchRow, error) {
	return m.GetByIndexFunc(ctx, index)
}

func setupMarketWatchRouter(uc *mockMarketWatchUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handler.NewMarketWatchHandler(uc)
	r := gin.New()
	r.GET("/marketwatch/indexes", h.ListIndexesHandler)
	r.GET("/marketwatch/symbols", h.ListSymbolsHandler)
	r.GET("/marketwatch/:index", h.GetByIndexHandler)
	return r
}

func TestMarketWatchHandler_ListSymbols(t *testing.T) {
	uc := &mockMarketWatchUsecase{
		ListSymbolsFunc: func(_ context.Context) ([]string, error) {
			return []string{"HBL", "OGDC"}, nil
		},
	}
	r := setupMarketWatchRouter(uc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/marketwatch/symbols", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"symbols":["HBL","OGDC"]}`, w.Body.String())
}

func TestMarketWatchHandler_GetByIndex(t *testing.T) {
	t.Run("returns rows as JSON", func(t *testing.T) {
		var gotIndex string
		cur := 102.5
		uc := &mockMarketWatchUsecase{
			GetByIndexFunc: func(_ context.Context, index string) ([]entity.MarketWatchRow, error) {
				gotIndex = index
				return []entity.MarketWatchRow{{
					Symbol: "HBL", Sector: "Commercial Banks", ListedIndex: "KSE100", Current: &cur,
				}}, nil
			},
		}
		r := setupMarketWatchRouter(uc)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/marketwatch/KSE100", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "KSE100", gotIndex)
		assert.Contains(t, w.Body.String(), `"symbol":"HBL"`)
		assert.Contains(t, w.Body.String(), `"current":102.5`)
	})

	t.Run("unknown index returns 404", func(t *testing.T) {
		uc := &mockMarketWatchUsecase{
			GetByIndexFunc: func(_ context.Context, _ string) ([]entity.MarketWatchRow, error) {
				return nil, usecase.ErrNoData
			},
		}
		r := setupMarketWatchRouter(uc)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/marketwatch/NOPE", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("static symbols route is not captured by the index parameter", func(t *testing.T) {
		uc := &mockMarketWatchUsecase{
			ListSymbolsFunc: func(_ context.Context) ([]string, error) {
				return nil, nil
			},
			GetByIndexFunc: func(_ context.Context, index string) ([]entity.MarketWatchRow, error) {
				t.Errorf("GetByIndex should not be called, got index %q", index)
				return nil, nil
			},
		}
		r := setupMarketWatchRouter(uc)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/marketwatch/symbols", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
