// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import "github.com/gin-gonic/gin"

// Health は /healthz を処理します。psx_backendは夜間同期スケジューラを
// 常駐させるため、死活監視はこのエンドポイントのポーリングで行います。
// 監視側が古い応答を掴まないようキャッシュを防止します。
func Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	// HEAD/OPTIONSを含むすべてのメソッドに200または204を返す
	switch c.Request.Method {
	case "HEAD":
		c.Status(200)
	case "OPTIONS":
		c.Status(204)
	default:
		c.JSON(200, gin.H{"status": "ok"})
	}
}
