// Package handler はmarketdataフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"psx_backend/internal/feature/marketdata/domain/entity"
	"psx_backend/internal/feature/marketdata/transport/http/dto"
	"psx_backend/internal/feature/marketdata/usecase"
)

// BarsUsecase は価格バー照会のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type BarsUsecase interface {
	GetBars(ctx context.Context, ticker string, limit int) ([]entity.Bar, error)
	ListTickers(ctx context.Context) ([]string, error)
}

// BarsHandler は価格バーのHTTPリクエストを処理します。
type BarsHandler struct {
	uc BarsUsecase
}

// NewBarsHandler は指定されたusecaseでBarsHandlerの新しいインスタンスを生成します。
func NewBarsHandler(uc BarsUsecase) *BarsHandler {
	return &BarsHandler{uc: uc}
}

// GetBarsHandler は銘柄コードを受け取り、日足バーを新しい順のJSONで返します。
//
// エンドポイント例:
// GET /bars/:ticker?limit=300
func (h *BarsHandler) GetBarsHandler(c *gin.Context) {
	ticker := c.Param("ticker")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	bars, err := h.uc.GetBars(c.Request.Context(), ticker, limit)
	if err != nil {
		if errors.Is(err, usecase.ErrTickerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]dto.BarResponse, 0, len(bars))
	for _, b := range bars {
		out = append(out, dto.BarResponse{
			Date:      b.Date.UTC().Format("2006-01-02"),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Change:    b.Change,
			ChangePct: b.ChangePct,
			Volume:    b.Volume,
		})
	}
	c.JSON(http.StatusOK, out)
}

// ListTickersHandler は追跡中の銘柄一覧を返します。
//
// エンドポイント例:
// GET /tickers
func (h *BarsHandler) ListTickersHandler(c *gin.Context) {
	tickers, err := h.uc.ListTickers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickers": tickers})
}
