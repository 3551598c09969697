package service

import (
	"context"
	log "log/slog"

	"Clanhub/internal/api/dto"
	"Clanhub/internal/model"
	"Clanhub/internal/pkg/consts"
	"Clanhub/internal/pkg/mention"
	"Clanhub/internal/pkg/util"
	"Clanhub/internal/storage"
)

// ChatService 聊天频道消息发送
type ChatService interface {
	SendMessage(ctx context.Context, sess SessionContext, sectionKey string, req *dto.SendMessageReq) (*model.Message, error)
	// SendSystemMessage 系统播报，不触发提及扇出
	SendSystemMessage(ctx context.Context, sectionKey, text string) error
	ListMessages(ctx context.Context, sess SessionContext, sectionKey string) ([]model.Message, error)
}

type chatServiceImpl struct {
	adapter      storage.Adapter
	sections     SectionService
	directory    DirectoryService
	notification NotificationService
}

func NewChatService(adapter storage.Adapter, sections SectionService, directory DirectoryService, notification NotificationService) ChatService {
	return &chatServiceImpl{
		adapter:      adapter,
		sections:     sections,
		directory:    directory,
		notification: notification,
	}
}

func (s *chatServiceImpl) SendMessage(ctx context.Context, sess SessionContext, sectionKey string, req *dto.SendMessageReq) (*model.Message, error) {
	if err := util.ValidateDTO(req); err != nil {
		return nil, ErrContentInvalid
	}
	section, actor, err := s.sections.Authorize(ctx, sess, sectionKey)
	if err != nil {
		return nil, err
	}
	if section.ContentType != consts.SectionTypeChat {
		return nil, ErrSectionTypeMismatch
	}
	path, ok := storage.ResolvePath(section, consts.KindMessages, actor.Clan)
	if !ok {
		return nil, ErrAccessDenied
	}

	msg := model.Message{
		AuthorID:   actor.UID,
		AuthorName: actor.Username,
		Text:       req.Text,
		CreatedAt:  storage.NowStamp(),
	}
	rec, err := storage.Encode(msg)
	if err != nil {
		return nil, err
	}
	id, err := s.adapter.Write(ctx, path, rec)
	if err != nil {
		return nil, err
	}
	msg.ID = id

	mentions := mention.Detect(msg.Text, s.directory.Snapshot(), actor.UID)
	if len(mentions) > 0 {
		s.notification.FanoutMentions(ctx, mentions, sess, map[string]any{
			"section":    sectionKey,
			"message_id": id,
		})
	}
	return &msg, nil
}

// SendSystemMessage 以系统身份直写频道，绕过会话授权
func (s *chatServiceImpl) SendSystemMessage(ctx context.Context, sectionKey, text string) error {
	section, found := s.sections.Registry().Get(sectionKey)
	if !found {
		return ErrSectionNotFound
	}
	if section.ContentType != consts.SectionTypeChat || section.ClanScoped {
		return ErrSectionTypeMismatch
	}
	path, _ := storage.ResolvePath(section, consts.KindMessages, consts.ClanNone)
	msg := model.Message{
		AuthorName:      "system",
		Text:            text,
		CreatedAt:       storage.NowStamp(),
		IsSystemMessage: true,
	}
	rec, err := storage.Encode(msg)
	if err != nil {
		return err
	}
	if _, err := s.adapter.Write(ctx, path, rec); err != nil {
		return err
	}
	log.Info("系统消息已发送", "section", sectionKey)
	return nil
}

func (s *chatServiceImpl) ListMessages(ctx context.Context, sess SessionContext, sectionKey string) ([]model.Message, error) {
	section, actor, err := s.sections.Authorize(ctx, sess, sectionKey)
	if err != nil {
		return nil, err
	}
	if section.ContentType != consts.SectionTypeChat {
		return nil, ErrSectionTypeMismatch
	}
	path, ok := storage.ResolvePath(section, consts.KindMessages, actor.Clan)
	if !ok {
		return nil, ErrAccessDenied
	}
	recs, err := s.adapter.ReadOnce(ctx, path)
	if err != nil {
		return nil, err
	}
	return storage.DecodeAll[model.Message](recs)
}
