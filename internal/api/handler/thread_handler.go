package handler

import (
	"errors"
	"io"

	"Clanhub/internal/api/dto"
	"Clanhub/internal/api/middleware"
	"Clanhub/internal/pkg/response"
	"Clanhub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
)

type ThreadHandler struct {
	threadService service.ThreadService
}

func NewThreadHandler(s service.ThreadService) *ThreadHandler {
	return &ThreadHandler{
		threadService: s,
	}
}

// CreateThread 发布主题
func (h *ThreadHandler) CreateThread(c *gin.Context) {
	var req dto.CreateThreadReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	sess := middleware.MustSession(c)
	thread, err := h.threadService.PostThread(c.Request.Context(), sess, c.Param("section"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	var out dto.ThreadDTO
	_ = copier.Copy(&out, thread)
	response.Success(c, out)
}

// ListThreads 主题列表
func (h *ThreadHandler) ListThreads(c *gin.Context) {
	sess := middleware.MustSession(c)
	threads, err := h.threadService.ListThreads(c.Request.Context(), sess, c.Param("section"))
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.ThreadDTO, 0, len(threads))
	_ = copier.Copy(&out, &threads)
	response.Success(c, out)
}

// CreateComment 发布回帖
func (h *ThreadHandler) CreateComment(c *gin.Context) {
	var req dto.CreateCommentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	sess := middleware.MustSession(c)
	comment, err := h.threadService.PostComment(c.Request.Context(), sess, c.Param("section"), c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	var out dto.CommentDTO
	_ = copier.Copy(&out, comment)
	response.Success(c, out)
}

// ListComments 回帖列表
func (h *ThreadHandler) ListComments(c *gin.Context) {
	sess := middleware.MustSession(c)
	comments, err := h.threadService.ListComments(c.Request.Context(), sess, c.Param("section"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.CommentDTO, 0, len(comments))
	_ = copier.Copy(&out, &comments)
	response.Success(c, out)
}

// ApproveThread 审核通过
func (h *ThreadHandler) ApproveThread(c *gin.Context) {
	sess := middleware.MustSession(c)
	thread, err := h.threadService.Approve(c.Request.Context(), sess, c.Param("section"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	var out dto.ThreadDTO
	_ = copier.Copy(&out, thread)
	response.Success(c, out)
}

// RejectThread 审核驳回。理由可选，空请求体视同不填理由
func (h *ThreadHandler) RejectThread(c *gin.Context) {
	var req dto.RejectThreadReq
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	sess := middleware.MustSession(c)
	thread, err := h.threadService.Reject(c.Request.Context(), sess, c.Param("section"), c.Param("id"), req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	var out dto.ThreadDTO
	_ = copier.Copy(&out, thread)
	response.Success(c, out)
}

// RegisterView 浏览计数
func (h *ThreadHandler) RegisterView(c *gin.Context) {
	sess := middleware.MustSession(c)
	if err := h.threadService.RegisterView(c.Request.Context(), sess, c.Param("section"), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
