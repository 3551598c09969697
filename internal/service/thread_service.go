package service

import (
	"context"
	log "log/slog"

	"Clanhub/internal/api/dto"
	"Clanhub/internal/model"
	"Clanhub/internal/pkg/consts"
	"Clanhub/internal/pkg/mention"
	"Clanhub/internal/pkg/security"
	"Clanhub/internal/pkg/util"
	"Clanhub/internal/storage"
)

// ThreadService 论坛主题的发布、回复与审核流转
type ThreadService interface {
	PostThread(ctx context.Context, sess SessionContext, sectionKey string, req *dto.CreateThreadReq) (*model.Thread, error)
	// ListThreads 按可见性过滤后倒序返回
	ListThreads(ctx context.Context, sess SessionContext, sectionKey string) ([]model.Thread, error)
	PostComment(ctx context.Context, sess SessionContext, sectionKey, threadID string, req *dto.CreateCommentReq) (*model.Comment, error)
	ListComments(ctx context.Context, sess SessionContext, sectionKey, threadID string) ([]model.Comment, error)
	// Approve pending -> approved。重放同一目标状态为幂等空操作。
	Approve(ctx context.Context, sess SessionContext, sectionKey, threadID string) (*model.Thread, error)
	// Reject pending -> rejected，可附驳回理由
	Reject(ctx context.Context, sess SessionContext, sectionKey, threadID, reason string) (*model.Thread, error)
	// RegisterView 浏览计数，尽力而为
	RegisterView(ctx context.Context, sess SessionContext, sectionKey, threadID string) error
	// VisibilityFilter 订阅快照用的可见性过滤器
	VisibilityFilter(actor Actor, section model.Section) FilterFunc
}

type threadServiceImpl struct {
	adapter      storage.Adapter
	sections     SectionService
	directory    DirectoryService
	notification NotificationService
}

func NewThreadService(adapter storage.Adapter, sections SectionService, directory DirectoryService, notification NotificationService) ThreadService {
	return &threadServiceImpl{
		adapter:      adapter,
		sections:     sections,
		directory:    directory,
		notification: notification,
	}
}

// PostThread 发帖。非战队板块直接过审；战队板块里普通成员的帖子进 pending，
// 有审核权者的帖子直接 approved。
func (s *threadServiceImpl) PostThread(ctx context.Context, sess SessionContext, sectionKey string, req *dto.CreateThreadReq) (*model.Thread, error) {
	if err := util.ValidateDTO(req); err != nil {
		return nil, ErrContentInvalid
	}
	section, actor, err := s.authorizeForum(ctx, sess, sectionKey)
	if err != nil {
		return nil, err
	}
	path, ok := storage.ResolvePath(section, consts.KindThreads, actor.Clan)
	if !ok {
		return nil, ErrAccessDenied
	}

	now := storage.NowStamp()
	thread := model.Thread{
		Title:        req.Title,
		Content:      req.Content,
		AuthorID:     actor.UID,
		AuthorName:   actor.Username,
		CreatedAt:    now,
		LastActivity: now,
		Status:       consts.ThreadStatusApproved,
	}
	if section.ClanScoped && !security.CanModerateSection(actor.Role, actor.Clan, section) {
		thread.Status = consts.ThreadStatusPending
	}

	rec, err := storage.Encode(thread)
	if err != nil {
		return nil, err
	}
	id, err := s.adapter.Write(ctx, path, rec)
	if err != nil {
		return nil, err
	}
	thread.ID = id
	log.Info("主题已发布", "section", sectionKey, "thread", id, "status", thread.Status, "author", actor.UID)

	// 提及扇出不能阻断发帖本身
	s.fanout(ctx, thread.Title+" "+thread.Content, actor, map[string]any{
		"section":   sectionKey,
		"thread_id": id,
		"title":     thread.Title,
	})
	return &thread, nil
}

func (s *threadServiceImpl) ListThreads(ctx context.Context, sess SessionContext, sectionKey string) ([]model.Thread, error) {
	section, actor, err := s.authorizeForum(ctx, sess, sectionKey)
	if err != nil {
		return nil, err
	}
	path, ok := storage.ResolvePath(section, consts.KindThreads, actor.Clan)
	if !ok {
		return nil, ErrAccessDenied
	}
	recs, err := s.adapter.ReadOnce(ctx, path)
	if err != nil {
		return nil, err
	}
	recs = s.VisibilityFilter(actor, section)(recs)
	threads, err := storage.DecodeAll[model.Thread](recs)
	if err != nil {
		return nil, err
	}
	// 新帖在前
	for i, j := 0, len(threads)-1; i < j; i, j = i+1, j-1 {
		threads[i], threads[j] = threads[j], threads[i]
	}
	return threads, nil
}

// PostComment 回帖。附带父主题 reply_count 递增与 last_activity 刷新，
// 并给主题作者发一条回复通知。
func (s *threadServiceImpl) PostComment(ctx context.Context, sess SessionContext, sectionKey, threadID string, req *dto.CreateCommentReq) (*model.Comment, error) {
	if err := util.ValidateDTO(req); err != nil {
		return nil, ErrContentInvalid
	}
	section, actor, err := s.authorizeForum(ctx, sess, sectionKey)
	if err != nil {
		return nil, err
	}
	threadPath, ok := storage.ResolvePath(section, consts.KindThreads, actor.Clan)
	if !ok {
		return nil, ErrAccessDenied
	}
	commentPath, _ := storage.ResolvePath(section, consts.KindComments, actor.Clan)

	thread, err := s.findThread(ctx, threadPath, threadID)
	if err != nil {
		return nil, err
	}
	if thread.Status != consts.ThreadStatusApproved &&
		thread.AuthorID != actor.UID &&
		!security.CanModerateSection(actor.Role, actor.Clan, section) {
		return nil, ErrThreadNotFound
	}

	comment := model.Comment{
		ThreadID:   threadID,
		AuthorID:   actor.UID,
		AuthorName: actor.Username,
		Content:    req.Content,
		CreatedAt:  storage.NowStamp(),
	}
	rec, err := storage.Encode(comment)
	if err != nil {
		return nil, err
	}
	id, err := s.adapter.Write(ctx, commentPath, rec)
	if err != nil {
		return nil, err
	}
	comment.ID = id

	// 父主题副作用失败只降级记日志，回帖本身已经成立
	if err := s.adapter.Increment(ctx, threadPath, threadID, "reply_count", 1); err != nil {
		log.Warn("回复计数递增失败", "thread", threadID, "err", err)
	}
	if err := s.adapter.Update(ctx, threadPath, threadID, storage.Record{"last_activity": comment.CreatedAt}); err != nil {
		log.Warn("主题活跃时间刷新失败", "thread", threadID, "err", err)
	}

	payload := map[string]any{
		"section":    sectionKey,
		"thread_id":  threadID,
		"comment_id": id,
		"title":      thread.Title,
	}
	if err := s.notification.Notify(ctx, consts.NotifyTypeReply, thread.AuthorID, sess, payload); err != nil {
		log.Warn("回复通知失败", "target", thread.AuthorID, "err", err)
	}
	s.fanout(ctx, comment.Content, actor, payload)
	return &comment, nil
}

func (s *threadServiceImpl) ListComments(ctx context.Context, sess SessionContext, sectionKey, threadID string) ([]model.Comment, error) {
	section, actor, err := s.authorizeForum(ctx, sess, sectionKey)
	if err != nil {
		return nil, err
	}
	path, ok := storage.ResolvePath(section, consts.KindComments, actor.Clan)
	if !ok {
		return nil, ErrAccessDenied
	}
	recs, err := s.adapter.ReadOnce(ctx, path)
	if err != nil {
		return nil, err
	}
	all, err := storage.DecodeAll[model.Comment](recs)
	if err != nil {
		return nil, err
	}
	comments := make([]model.Comment, 0, len(all))
	for _, c := range all {
		if c.ThreadID == threadID {
			comments = append(comments, c)
		}
	}
	return comments, nil
}

func (s *threadServiceImpl) Approve(ctx context.Context, sess SessionContext, sectionKey, threadID string) (*model.Thread, error) {
	return s.moderate(ctx, sess, sectionKey, threadID, consts.ThreadStatusApproved, "")
}

func (s *threadServiceImpl) Reject(ctx context.Context, sess SessionContext, sectionKey, threadID, reason string) (*model.Thread, error) {
	return s.moderate(ctx, sess, sectionKey, threadID, consts.ThreadStatusRejected, reason)
}

// moderate 状态机唯一入口。pending 可流转到任一终态；
// 重放相同终态幂等返回；approved<->rejected 互转非法。
func (s *threadServiceImpl) moderate(ctx context.Context, sess SessionContext, sectionKey, threadID, target, reason string) (*model.Thread, error) {
	section, actor, err := s.authorizeForum(ctx, sess, sectionKey)
	if err != nil {
		return nil, err
	}
	if !security.CanModerateSection(actor.Role, actor.Clan, section) {
		return nil, UnauthorizedError
	}
	path, ok := storage.ResolvePath(section, consts.KindThreads, actor.Clan)
	if !ok {
		return nil, ErrAccessDenied
	}
	thread, err := s.findThread(ctx, path, threadID)
	if err != nil {
		return nil, err
	}

	switch thread.Status {
	case target:
		// 幂等重放
		return thread, nil
	case consts.ThreadStatusPending:
	default:
		return nil, ErrInvalidTransition
	}

	now := storage.NowStamp()
	fields := storage.Record{
		"status":       target,
		"moderated_by": actor.UID,
		"moderated_at": now,
	}
	if target == consts.ThreadStatusRejected {
		fields["rejection_reason"] = reason
	}
	if err := s.adapter.Update(ctx, path, threadID, fields); err != nil {
		return nil, err
	}
	thread.Status = target
	thread.ModeratedBy = actor.UID
	thread.ModeratedAt = now
	thread.RejectionReason = reason
	log.Info("主题审核流转", "section", sectionKey, "thread", threadID, "status", target, "moderator", actor.UID)
	return thread, nil
}

func (s *threadServiceImpl) RegisterView(ctx context.Context, sess SessionContext, sectionKey, threadID string) error {
	section, actor, err := s.authorizeForum(ctx, sess, sectionKey)
	if err != nil {
		return err
	}
	path, ok := storage.ResolvePath(section, consts.KindThreads, actor.Clan)
	if !ok {
		return ErrAccessDenied
	}
	return s.adapter.Increment(ctx, path, threadID, "view_count", 1)
}

// VisibilityFilter 非 approved 的主题只有作者和有审核权的人可见
func (s *threadServiceImpl) VisibilityFilter(actor Actor, section model.Section) FilterFunc {
	moderator := security.CanModerateSection(actor.Role, actor.Clan, section)
	return func(recs []storage.Record) []storage.Record {
		if moderator {
			return recs
		}
		out := make([]storage.Record, 0, len(recs))
		for _, rec := range recs {
			status, _ := rec["status"].(string)
			author, _ := rec["author_id"].(string)
			if status == consts.ThreadStatusApproved || author == actor.UID {
				out = append(out, rec)
			}
		}
		return out
	}
}

func (s *threadServiceImpl) authorizeForum(ctx context.Context, sess SessionContext, sectionKey string) (model.Section, Actor, error) {
	section, actor, err := s.sections.Authorize(ctx, sess, sectionKey)
	if err != nil {
		return model.Section{}, Actor{}, err
	}
	if section.ContentType != consts.SectionTypeForum {
		return model.Section{}, Actor{}, ErrSectionTypeMismatch
	}
	return section, actor, nil
}

func (s *threadServiceImpl) findThread(ctx context.Context, path, threadID string) (*model.Thread, error) {
	recs, err := s.adapter.ReadOnce(ctx, path)
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		if id, _ := rec["id"].(string); id == threadID {
			var t model.Thread
			if err := storage.Decode(rec, &t); err != nil {
				return nil, err
			}
			return &t, nil
		}
	}
	return nil, ErrThreadNotFound
}

func (s *threadServiceImpl) fanout(ctx context.Context, text string, actor Actor, payload map[string]any) {
	mentions := mention.Detect(text, s.directory.Snapshot(), actor.UID)
	if len(mentions) == 0 {
		return
	}
	sess := SessionContext{UserID: actor.UID, Username: actor.Username, Clan: actor.Clan, Role: actor.Role}
	s.notification.FanoutMentions(ctx, mentions, sess, payload)
}
