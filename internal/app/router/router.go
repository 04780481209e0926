package router

import (
	"os"

	"github.com/gin-gonic/gin"

	authhandler "psx_backend/internal/feature/auth/transport/handler"
	markethandler "psx_backend/internal/feature/marketdata/transport/handler"
	portfoliohandler "psx_backend/internal/feature/portfolio/transport/handler"
	"psx_backend/internal/platform/http/handler"
	jwtmw "psx_backend/internal/platform/jwt"
)

// Handlers bundles all HTTP handlers consumed by the router.
type Handlers struct {
	Auth         *authhandler.AuthHandler
	Bars         *markethandler.BarsHandler
	MarketWatch  *markethandler.MarketWatchHandler
	Constituents *markethandler.ConstituentsHandler
	Transactions *markethandler.TransactionsHandler
	Sync         *markethandler.SyncHandler
	Portfolios   *portfoliohandler.PortfolioHandler
}

func NewRouter(h Handlers) *gin.Engine {
	r := gin.Default()

	// 認証不要
	// 導通確認用
	r.GET("/healthz", handler.Health)
	// 新規ユーザー登録
	r.POST("/signup", h.Auth.Signup)
	// ログイン（JWT 発行）
	r.POST("/login", h.Auth.Login)
	// リフレッシュトークンの交換・失効
	r.POST("/refresh", h.Auth.Refresh)
	r.POST("/logout", h.Auth.Logout)

	// 認証必須のルート
	auth := r.Group("/")
	// jwtmw.AuthRequired ミドルウェアを適用
	// → リクエストヘッダーに JWT が必要になる
	auth.Use(jwtmw.AuthRequired(os.Getenv("JWT_SECRET")))
	{
		auth.GET("/bars/:ticker", h.Bars.GetBarsHandler)
		auth.GET("/tickers", h.Bars.ListTickersHandler)

		auth.GET("/marketwatch/indexes", h.MarketWatch.ListIndexesHandler)
		auth.GET("/marketwatch/symbols", h.MarketWatch.ListSymbolsHandler)
		auth.GET("/marketwatch/:index", h.MarketWatch.GetByIndexHandler)

		auth.GET("/constituents", h.Constituents.ListConstituentsHandler)

		auth.GET("/transactions", h.Transactions.GetByDateHandler)

		auth.POST("/sync", h.Sync.RunFullSyncHandler)
		auth.POST("/sync/partial", h.Sync.RunPartialSyncHandler)
		auth.POST("/sync/transactions", h.Sync.RunTransactionSyncHandler)

		auth.GET("/portfolios", h.Portfolios.List)
		auth.POST("/portfolios", h.Portfolios.Create)
		auth.GET("/portfolios/:name", h.Portfolios.Get)
		auth.PUT("/portfolios/:name", h.Portfolios.Update)
		auth.DELETE("/portfolios/:name", h.Portfolios.Delete)
	}

	return r
}
