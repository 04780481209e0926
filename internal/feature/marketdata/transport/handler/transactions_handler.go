package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"psx_backend/internal/feature/marketdata/domain/entity"
	"psx_backend/internal/feature/marketdata/transport/http/dto"
	"psx_backend/internal/feature/marketdata/usecase"
)

// TransactionsReader は場外取引照会のユースケースインターフェースを定義します。
type TransactionsReader interface {
	GetByDate(ctx context.Context, date time.Time) ([]entity.Transaction, error)
}

// TransactionsHandler は場外取引のHTTPリクエストを処理します。
type TransactionsHandler struct {
	uc TransactionsReader
}

// NewTransactionsHandler は指定されたusecaseでTransactionsHandlerの新しいインスタンスを生成します。
func NewTransactionsHandler(uc TransactionsReader) *TransactionsHandler {
	return &TransactionsHandler{uc: uc}
}

// GetByDateHandler は指定日の場外取引をJSONで返します。
//
// エンドポイント例:
// GET /transactions?date=2026-08-26
func (h *TransactionsHandler) GetByDateHandler(c *gin.Context) {
	date, ok := parseDate(c)
	if !ok {
		return
	}

	txs, err := h.uc.GetByDate(c.Request.Context(), date)
	if err != nil {
		if errors.Is(err, usecase.ErrNoData) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]dto.TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, dto.TransactionResponse{
			Date:           tx.Date.UTC().Format("2006-01-02"),
			SettlementDate: tx.SettlementDate.UTC().Format("2006-01-02"),
			BuyerCode:      tx.BuyerCode,
			SellerCode:     tx.SellerCode,
			SymbolCode:     tx.SymbolCode,
			Company:        tx.Company,
			Turnover:       tx.Turnover,
			Rate:           tx.Rate.StringFixed(2),
			Value:          tx.Value.StringFixed(2),
			Type:           tx.Type,
		})
	}
	c.JSON(http.StatusOK, out)
}
