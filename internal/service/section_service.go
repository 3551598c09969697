package service

import (
	"context"
	log "log/slog"

	"Clanhub/internal/model"
	"Clanhub/internal/pkg/consts"
	"Clanhub/internal/pkg/security"
	"Clanhub/internal/repository"
)

// Actor 一次操作的生效身份。战队与角色来自规范用户记录的权威重读，
// 记录缺失时退回会话凭据（降级，不作权限提升）。
type Actor struct {
	UID      string
	Username string
	Clan     string
	Role     string
}

// SectionService 板块注册表查询与访问授权
type SectionService interface {
	Registry() *model.SectionRegistry
	// List 返回对该会话标注过访问/审核能力的板块列表
	List(ctx context.Context, sess SessionContext) []SectionAccess
	// Authorize 板块访问检查：查板块、权威重读身份、判权限
	Authorize(ctx context.Context, sess SessionContext, sectionKey string) (model.Section, Actor, error)
	// ResolveActor 权威身份重读
	ResolveActor(ctx context.Context, sess SessionContext) (Actor, error)
	// AllowedKind 板块内容类型允许的订阅数据种类
	AllowedKind(section model.Section, dataKind string) bool
}

type SectionAccess struct {
	Section     model.Section
	CanAccess   bool
	CanModerate bool
}

type sectionServiceImpl struct {
	registry *model.SectionRegistry
	userRepo repository.UserRepo
}

func NewSectionService(registry *model.SectionRegistry, userRepo repository.UserRepo) SectionService {
	return &sectionServiceImpl{registry: registry, userRepo: userRepo}
}

func (s *sectionServiceImpl) Registry() *model.SectionRegistry {
	return s.registry
}

func (s *sectionServiceImpl) List(ctx context.Context, sess SessionContext) []SectionAccess {
	actor, err := s.ResolveActor(ctx, sess)
	if err != nil {
		actor = Actor{UID: sess.UserID, Username: sess.Username, Clan: sess.Clan, Role: sess.Role}
	}
	var out []SectionAccess
	for _, section := range s.registry.List() {
		out = append(out, SectionAccess{
			Section:     section,
			CanAccess:   security.CanAccessSection(actor.Role, actor.Clan, section),
			CanModerate: security.CanModerateSection(actor.Role, actor.Clan, section),
		})
	}
	return out
}

func (s *sectionServiceImpl) Authorize(ctx context.Context, sess SessionContext, sectionKey string) (model.Section, Actor, error) {
	section, ok := s.registry.Get(sectionKey)
	if !ok {
		return model.Section{}, Actor{}, ErrSectionNotFound
	}
	actor, err := s.ResolveActor(ctx, sess)
	if err != nil {
		return model.Section{}, Actor{}, err
	}
	if !security.CanAccessSection(actor.Role, actor.Clan, section) {
		return model.Section{}, Actor{}, ErrAccessDenied
	}
	return section, actor, nil
}

func (s *sectionServiceImpl) ResolveActor(ctx context.Context, sess SessionContext) (Actor, error) {
	user, err := s.userRepo.GetByUID(ctx, sess.UserID)
	if err != nil {
		return Actor{}, err
	}
	if user == nil {
		log.Debug("规范用户记录缺失，退回会话凭据", "uid", sess.UserID)
		return Actor{UID: sess.UserID, Username: sess.Username, Clan: sess.Clan, Role: sess.Role}, nil
	}
	return Actor{UID: user.UID, Username: user.Username, Clan: user.Clan, Role: user.Role}, nil
}

// AllowedKind 论坛板块订阅主题与评论，聊天板块订阅消息
func (s *sectionServiceImpl) AllowedKind(section model.Section, dataKind string) bool {
	switch section.ContentType {
	case consts.SectionTypeForum:
		return dataKind == consts.KindThreads || dataKind == consts.KindComments
	case consts.SectionTypeChat:
		return dataKind == consts.KindMessages
	default:
		return false
	}
}
