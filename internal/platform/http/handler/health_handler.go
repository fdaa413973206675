// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import "github.com/gin-gonic/gin"

// ReadyFunc はサービスがリクエストを処理できる状態かを返します。
type ReadyFunc func() bool

// Health はサービスヘルスチェック用の /healthz エンドポイントのハンドラーを返します。
// ready が false を返す間（マーケット未ロード時）は 503 を返します。
// ready が nil の場合は常に準備完了とみなします。
func Health(ready ReadyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 明示的にキャッシュを防止
		c.Header("Cache-Control", "no-store")

		ok := ready == nil || ready()
		code := 200
		if !ok {
			code = 503
		}

		switch c.Request.Method {
		case "HEAD":
			c.Status(code)
		case "OPTIONS":
			c.Status(204)
		default:
			if ok {
				c.JSON(code, gin.H{"status": "ok"})
			} else {
				c.JSON(code, gin.H{"status": "starting"})
			}
		}
	}
}
