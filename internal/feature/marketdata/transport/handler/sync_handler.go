package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"psx_backend/internal/feature/marketdata/domain/entity"
	"psx_backend/internal/feature/marketdata/usecase"
)

// SyncRunner は完全同期のユースケースインターフェースを定義します。
type SyncRunner interface {
	Run(ctx context.Context, date time.Time, progress usecase.ProgressFunc) entity.SyncSummary
}

// PartialSyncRunner は単一日同期のユースケースインターフェースを定義します。
type PartialSyncRunner interface {
	Run(ctx context.Context, date time.Time) entity.PartialSummary
}

// TransactionSyncRunner は場外取引同期のユースケースインターフェースを定義します。
type TransactionSyncRunner interface {
	Sync(ctx context.Context, date time.Time) entity.PartialSummary
}

// SyncHandler は同期系のHTTPリクエストを処理します。
// 同期は同期的に実行され、完了時に全ステージの要約を返します。
type SyncHandler struct {
	full    SyncRunner
	partial PartialSyncRunner
	txs     TransactionSyncRunner
}

// NewSyncHandler は指定されたusecase群でSyncHandlerの新しいインスタンスを生成します。
func NewSyncHandler(full SyncRunner, partial PartialSyncRunner, txs TransactionSyncRunner) *SyncHandler {
	return &SyncHandler{full: full, partial: partial, txs: txs}
}

// parseDate はdateクエリをパースします。未指定の場合は今日を返します。
func parseDate(c *gin.Context) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), true
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return time.Time{}, false
	}
	return d, true
}

// RunFullSyncHandler は4ステージの完全同期を実行し、要約を返します。
// ステージの失敗は要約に現れるだけでHTTPエラーにはなりません。
//
// エンドポイント例:
// POST /sync?date=2026-08-26
func (h *SyncHandler) RunFullSyncHandler(c *gin.Context) {
	date, ok := parseDate(c)
	if !ok {
		return
	}
	summary := h.full.Run(c.Request.Context(), date, nil)
	c.JSON(http.StatusOK, summary)
}

// RunPartialSyncHandler は指定日のみの相場同期を実行します。
//
// エンドポイント例:
// POST /sync/partial?date=2026-08-26
func (h *SyncHandler) RunPartialSyncHandler(c *gin.Context) {
	date, ok := parseDate(c)
	if !ok {
		return
	}
	summary := h.partial.Run(c.Request.Context(), date)
	c.JSON(http.StatusOK, summary)
}

// RunTransactionSyncHandler は指定日の場外取引を取り込みます。
//
// エンドポイント例:
// POST /sync/transactions?date=2026-08-26
func (h *SyncHandler) RunTransactionSyncHandler(c *gin.Context) {
	date, ok := parseDate(c)
	if !ok {
		return
	}
	summary := h.txs.Sync(c.Request.Context(), date)
	c.JSON(http.StatusOK, summary)
}
