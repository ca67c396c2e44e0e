package handler

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// Registrar は gin ルーターへエンドポイントを登録するハンドラーです。
type Registrar interface {
	Register(r gin.IRouter)
}

// NewRouter はミドルウェアと各ハンドラーを登録した gin.Engine を返します。
func NewRouter(logger *slog.Logger, handlers ...Registrar) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), RequestLogger(logger))

	for _, h := range handlers {
		h.Register(engine)
	}
	return engine
}

// RequestLogger はリクエストごとに 1 行の構造化ログを出力します。
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("error", c.Errors.String()))
		}

		switch {
		case status >= 500:
			logger.ErrorContext(c.Request.Context(), "http request", attrs...)
		case status >= 400:
			logger.WarnContext(c.Request.Context(), "http request", attrs...)
		default:
			logger.InfoContext(c.Request.Context(), "http request", attrs...)
		}
	}
}
