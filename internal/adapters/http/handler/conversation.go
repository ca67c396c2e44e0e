package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/conversation"
)

// ConversationHandler はチャット用エンドポイントの HTTP 実装です。
// status ラッパーは付けず、結果をそのまま返します。
type ConversationHandler struct {
	svc conversation.UseCase
}

// NewConversationHandler は ConversationHandler を生成します。
func NewConversationHandler(svc conversation.UseCase) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

// Register はルーティングを登録します。
func (h *ConversationHandler) Register(r gin.IRouter) {
	r.POST("/conversations", h.CreateConversation)
	r.GET("/conversations/find/:senderId/:receiverId", h.FindConversation)
}

type createConversationRequest struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
}

// CreateConversation は POST /conversations を処理します。
func (h *ConversationHandler) CreateConversation(c *gin.Context) {
	var req createConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeRawError(c, errInvalidBody)
		return
	}

	created, err := h.svc.CreateConversation(c.Request.Context(), conversation.CreateConversationInput{
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
	})
	if err != nil {
		writeRawError(c, err)
		return
	}

	c.JSON(http.StatusOK, insertResult(created.ID))
}

// FindConversation は GET /conversations/find/:senderId/:receiverId を処理します。
// 該当がない場合は null を返します。
func (h *ConversationHandler) FindConversation(c *gin.Context) {
	found, err := h.svc.FindConversation(c.Request.Context(), conversation.FindConversationInput{
		SenderID:   c.Param("senderId"),
		ReceiverID: c.Param("receiverId"),
	})
	if err != nil {
		writeRawError(c, err)
		return
	}

	if found == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, toConversationJSON(found))
}
