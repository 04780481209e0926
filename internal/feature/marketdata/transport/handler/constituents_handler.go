package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"psx_backend/internal/feature/marketdata/domain/entity"
	"psx_backend/internal/feature/marketdata/transport/http/dto"
)

// ConstituentsUsecase は構成銘柄照会のユースケースインターフェースを定義します。
type ConstituentsUsecase interface {
	List(ctx context.Context) ([]entity.Constituent, error)
}

// ConstituentsHandler は構成銘柄クロスリファレンスのHTTPリクエストを処理します。
type ConstituentsHandler struct {
	uc ConstituentsUsecase
}

// NewConstituentsHandler は指定されたusecaseでConstituentsHandlerの新しいインスタンスを生成します。
func NewConstituentsHandler(uc ConstituentsUsecase) *ConstituentsHandler {
	return &ConstituentsHandler{uc: uc}
}

// ListConstituentsHandler は最新の構成銘柄一覧を返します。
//
// エンドポイント例:
// GET /constituents
func (h *ConstituentsHandler) ListConstituentsHandler(c *gin.Context) {
	cs, err := h.uc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]dto.ConstituentResponse, 0, len(cs))
	for _, e := range cs {
		out = append(out, dto.ConstituentResponse{
			ISIN:          e.ISIN,
			Symbol:        e.Symbol,
			Company:       e.Company,
			Price:         e.Price,
			IndexWeight:   e.IndexWeight,
			FFBasedShares: e.FFBasedShares,
			FFBasedMcap:   e.FFBasedMcap,
			OrdShares:     e.OrdShares,
			OrdSharesMcap: e.OrdSharesMcap,
			Volume:        e.Volume,
		})
	}
	c.JSON(http.StatusOK, out)
}
