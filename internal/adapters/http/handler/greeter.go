package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/hello"
)

// GreeterHandler は GET / のウェルカムメッセージを返します。
type GreeterHandler struct {
	greeter hello.Greeter
}

// NewGreeterHandler は GreeterHandler を生成します。
func NewGreeterHandler(greeter hello.Greeter) *GreeterHandler {
	return &GreeterHandler{greeter: greeter}
}

// Register はルーティングを登録します。
func (h *GreeterHandler) Register(r gin.IRouter) {
	r.GET("/", h.SayHello)
}

// SayHello は GET / を処理します。
func (h *GreeterHandler) SayHello(c *gin.Context) {
	w, err := h.greeter.SayHello(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	writeOK(c, gin.H{
		"message": w.Message,
		"author": gin.H{
			"name":  w.Author.Name,
			"email": w.Author.Email,
			"url":   w.Author.URL,
		},
	})
}
