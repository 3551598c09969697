package handler

import (
	"Clanhub/internal/api/dto"
	"Clanhub/internal/api/middleware"
	"Clanhub/internal/pkg/response"
	"Clanhub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
)

type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(s service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: s,
	}
}

// List 通知列表，倒序
func (h *NotificationHandler) List(c *gin.Context) {
	sess := middleware.MustSession(c)
	notifications, err := h.notificationService.List(c.Request.Context(), sess.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.NotificationDTO, 0, len(notifications))
	for _, n := range notifications {
		var item dto.NotificationDTO
		_ = copier.Copy(&item, &n)
		item.Payload = make(map[string]string, len(n.Payload))
		for k, v := range n.Payload {
			if s, ok := v.(string); ok {
				item.Payload[k] = s
			}
		}
		out = append(out, item)
	}
	response.Success(c, out)
}

// UnreadCount 未读数
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	sess := middleware.MustSession(c)
	count, err := h.notificationService.UnreadCount(c.Request.Context(), sess.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.UnreadCountDTO{Count: count})
}

// MarkRead 标记单条已读
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	var req struct {
		ID string `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	sess := middleware.MustSession(c)
	if err := h.notificationService.MarkRead(c.Request.Context(), sess.UserID, req.ID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// MarkAllRead 一键已读
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	sess := middleware.MustSession(c)
	if err := h.notificationService.MarkAllRead(c.Request.Context(), sess.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
