package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/user"
)

// UserHandler はユーザー関連エンドポイントの HTTP 実装です。
type UserHandler struct {
	svc user.UseCase
}

// NewUserHandler は UserHandler を生成します。
func NewUserHandler(svc user.UseCase) *UserHandler {
	return &UserHandler{svc: svc}
}

// Register はルーティングを登録します。
func (h *UserHandler) Register(r gin.IRouter) {
	r.POST("/users", h.CreateUser)
	r.GET("/users-by-email/:email", h.GetUserByEmail)
	r.GET("/users/:id", h.GetUser)
}

// CreateUser は POST /users を処理します。
func (h *UserHandler) CreateUser(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, errInvalidBody)
		return
	}

	created, err := h.svc.CreateUser(c.Request.Context(), user.CreateUserInput{Fields: body})
	if err != nil {
		writeError(c, err)
		return
	}

	writeOK(c, insertResult(created.ID))
}

// GetUserByEmail は GET /users-by-email/:email を処理します。
func (h *UserHandler) GetUserByEmail(c *gin.Context) {
	found, err := h.svc.GetUserByEmail(c.Request.Context(), user.GetUserByEmailInput{Email: c.Param("email")})
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, toUserJSON(found))
}

// GetUser は GET /users/:id を処理します。
func (h *UserHandler) GetUser(c *gin.Context) {
	found, err := h.svc.GetUser(c.Request.Context(), user.GetUserInput{ID: c.Param("id")})
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, toUserJSON(found))
}
