// Package handler はportfolioフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"psx_backend/internal/feature/portfolio/domain/entity"
	"psx_backend/internal/feature/portfolio/transport/http/dto"
	"psx_backend/internal/feature/portfolio/usecase"
)

// PortfolioUsecase はポートフォリオ操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type PortfolioUsecase interface {
	Create(ctx context.Context, name string, tickers []string) (*entity.Portfolio, error)
	Get(ctx context.Context, name string) (*entity.Portfolio, error)
	Update(ctx context.Context, name string, tickers []string) (*entity.Portfolio, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]entity.Portfolio, error)
}

// PortfolioHandler はポートフォリオのHTTPリクエストを処理します。
type PortfolioHandler struct {
	uc PortfolioUsecase
}

// NewPortfolioHandler は指定されたusecaseでPortfolioHandlerの新しいインスタンスを生成します。
func NewPortfolioHandler(uc PortfolioUsecase) *PortfolioHandler {
	return &PortfolioHandler{uc: uc}
}

func toResponse(p *entity.Portfolio) dto.PortfolioResponse {
	return dto.PortfolioResponse{Name: p.Name, Tickers: p.Tickers}
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrPortfolioNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrPortfolioExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrEmptyPortfolio):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Create は新しいポートフォリオを作成するAPIです。
//
// エンドポイント例:
// POST /portfolios
func (h *PortfolioHandler) Create(c *gin.Context) {
	var req dto.PortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.uc.Create(c.Request.Context(), req.Name, req.Tickers)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toResponse(p))
}

// Get は名前でポートフォリオを取得するAPIです。
//
// エンドポイント例:
// GET /portfolios/:name
func (h *PortfolioHandler) Get(c *gin.Context) {
	p, err := h.uc.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(p))
}

// Update は既存ポートフォリオの銘柄リストを置き換えるAPIです。
//
// エンドポイント例:
// PUT /portfolios/:name
func (h *PortfolioHandler) Update(c *gin.Context) {
	var req dto.PortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.uc.Update(c.Request.Context(), c.Param("name"), req.Tickers)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(p))
}

// Delete は名前でポートフォリオを削除するAPIです。
//
// エンドポイント例:
// DELETE /portfolios/:name
func (h *PortfolioHandler) Delete(c *gin.Context) {
	if err := h.uc.Delete(c.Request.Context(), c.Param("name")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// List はすべてのポートフォリオを返すAPIです。
//
// エンドポイント例:
// GET /portfolios
func (h *PortfolioHandler) List(c *gin.Context) {
	ps, err := h.uc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]dto.PortfolioResponse, 0, len(ps))
	for i := range ps {
		out = append(out, toResponse(&ps[i]))
	}
	c.JSON(http.StatusOK, out)
}
