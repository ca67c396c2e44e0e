package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

// Pinger はストアへの疎通確認を行います。*pgxpool.Pool が満たします。
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler は GET /healthz を提供します。
type HealthHandler struct {
	store Pinger
}

// NewHealthHandler は HealthHandler を生成します。
func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

// Register はルーティングを登録します。
func (h *HealthHandler) Register(r gin.IRouter) {
	r.GET("/healthz", h.Check)
}

// Check はストアに疎通できれば 200、できなければ 503 を返します。
func (h *HealthHandler) Check(c *gin.Context) {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		if err := h.store.Ping(ctx); err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"status": false,
				"error":  gin.H{"code": CodeStoreUnavailable, "message": "store unreachable"},
			})
			return
		}
	}

	writeOK(c, gin.H{"store": "ok"})
}
