package handler

import (
	"Clanhub/internal/api/dto"
	"Clanhub/internal/api/middleware"
	"Clanhub/internal/pkg/response"
	"Clanhub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
)

type ChatHandler struct {
	chatService service.ChatService
}

func NewChatHandler(s service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: s,
	}
}

// SendMessage 发送聊天消息
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req dto.SendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	sess := middleware.MustSession(c)
	msg, err := h.chatService.SendMessage(c.Request.Context(), sess, c.Param("section"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	var out dto.MessageDTO
	_ = copier.Copy(&out, msg)
	response.Success(c, out)
}

// ListMessages 消息列表
func (h *ChatHandler) ListMessages(c *gin.Context) {
	sess := middleware.MustSession(c)
	messages, err := h.chatService.ListMessages(c.Request.Context(), sess, c.Param("section"))
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.MessageDTO, 0, len(messages))
	_ = copier.Copy(&out, &messages)
	response.Success(c, out)
}
