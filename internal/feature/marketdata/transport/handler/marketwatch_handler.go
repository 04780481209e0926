package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"psx_backend/internal/feature/marketdata/domain/entity"
	"psx_backend/internal/feature/marketdata/transport/http/dto"
	"psx_backend/internal/feature/marketdata/usecase"
)

// MarketWatchUsecase はマーケットウォッチ照会のユースケースインターフェースを定義します。
type MarketWatchUsecase interface {
	ListIndexes(ctx context.Context) ([]string, error)
	ListSymbols(ctx context.Context) ([]string, error)
	GetByIndex(ctx context.Context, index string) ([]entity.MarketWatchRow, error)
}

// MarketWatchHandler はマーケットウォッチのHTTPリクエストを処理します。
type MarketWatchHandler struct {
	uc MarketWatchUsecase
}

// NewMarketWatchHandler は指定されたusecaseでMarketWatchHandlerの新しいインスタンスを生成します。
func NewMarketWatchHandler(uc MarketWatchUsecase) *MarketWatchHandler {
	return &MarketWatchHandler{uc: uc}
}

// ListIndexesHandler は最新スナップショットの指数一覧を返します。
//
// エンドポイント例:
// GET /marketwatch/indexes
func (h *MarketWatchHandler) ListIndexesHandler(c *gin.Context) {
	indexes, err := h.uc.ListIndexes(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"indexes": indexes})
}

// ListSymbolsHandler は最新スナップショットのシンボル一覧を返します。
//
// エンドポイント例:
// GET /marketwatch/symbols
func (h *MarketWatchHandler) ListSymbolsHandler(c *gin.Context) {
	symbols, err := h.uc.ListSymbols(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbols": symbols})
}

// GetByIndexHandler は指定指数の構成行を返します。
//
// エンドポイント例:
// GET /marketwatch/:index
func (h *MarketWatchHandler) GetByIndexHandler(c *gin.Context) {
	rows, err := h.uc.GetByIndex(c.Request.Context(), c.Param("index"))
	if err != nil {
		if errors.Is(err, usecase.ErrNoData) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]dto.MarketWatchRowResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.MarketWatchRowResponse{
			Symbol:           r.Symbol,
			Sector:           r.Sector,
			ListedIndex:      r.ListedIndex,
			LDCP:             r.LDCP,
			Open:             r.Open,
			High:             r.High,
			Low:              r.Low,
			Current:          r.Current,
			Change:           r.Change,
			ChangePct:        r.ChangePct,
			Volume:           r.Volume,
			Defaulter:        r.Defaulter,
			DefaultingClause: r.DefaultingClause,
			SymbolSuffix:     r.SymbolSuffix,
		})
	}
	c.JSON(http.StatusOK, out)
}
