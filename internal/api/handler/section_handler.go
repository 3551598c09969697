package handler

import (
	"strconv"

	"Clanhub/internal/api/dto"
	"Clanhub/internal/api/middleware"
	"Clanhub/internal/pkg/response"
	"Clanhub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
)

type SectionHandler struct {
	sectionService   service.SectionService
	directoryService service.DirectoryService
}

func NewSectionHandler(s service.SectionService, d service.DirectoryService) *SectionHandler {
	return &SectionHandler{
		sectionService:   s,
		directoryService: d,
	}
}

// ListSections 板块列表，带当前会话的访问/审核标记
func (h *SectionHandler) ListSections(c *gin.Context) {
	sess := middleware.MustSession(c)
	accesses := h.sectionService.List(c.Request.Context(), sess)

	out := make([]dto.SectionDTO, 0, len(accesses))
	for _, a := range accesses {
		out = append(out, dto.SectionDTO{
			Key:         a.Section.Key,
			ContentType: a.Section.ContentType,
			ClanScoped:  a.Section.ClanScoped,
			CanAccess:   a.CanAccess,
			CanModerate: a.CanModerate,
		})
	}
	response.Success(c, out)
}

// SearchDirectory 用户名前缀检索，供 @ 自动补全
func (h *SectionHandler) SearchDirectory(c *gin.Context) {
	prefix := c.Query("prefix")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	entries := h.directoryService.Search(prefix, limit)
	out := make([]dto.DirectoryEntryDTO, 0, len(entries))
	_ = copier.Copy(&out, &entries)
	response.Success(c, out)
}
