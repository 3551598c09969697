package service

import (
	"context"
	log "log/slog"
	"sort"

	"Clanhub/internal/model"
	"Clanhub/internal/pkg/consts"
	"Clanhub/internal/storage"
)

// NotificationService 按接收者扇出并留存通知。
// 投递语义：每个写事件至多一次——扇出只在内容创建时触发，
// 订阅快照、重渲染、重订阅都不会再次触发。
type NotificationService interface {
	// Notify 给单个接收者落一条通知；目标即发起者时为空操作。
	// 活跃会话额外收到一条进程内 toast，不阻塞也不影响持久化结果。
	Notify(ctx context.Context, typ, targetUID string, from SessionContext, payload map[string]any) error
	// FanoutMentions 把一批已解析的提及逐个落库
	FanoutMentions(ctx context.Context, mentions []model.Mention, from SessionContext, payload map[string]any)
	List(ctx context.Context, uid string) ([]model.Notification, error)
	UnreadCount(ctx context.Context, uid string) (int, error)
	MarkRead(ctx context.Context, uid, id string) error
	MarkAllRead(ctx context.Context, uid string) error
}

type notificationServiceImpl struct {
	adapter    storage.Adapter
	hub        *ToastHub
	maxPerUser int
}

func NewNotificationService(adapter storage.Adapter, hub *ToastHub, maxPerUser int) NotificationService {
	if maxPerUser <= 0 {
		maxPerUser = 50
	}
	return &notificationServiceImpl{
		adapter:    adapter,
		hub:        hub,
		maxPerUser: maxPerUser,
	}
}

// Notify 落一条通知记录并给活跃会话递 toast
func (s *notificationServiceImpl) Notify(ctx context.Context, typ, targetUID string, from SessionContext, payload map[string]any) error {
	if targetUID == "" || targetUID == from.UserID {
		return nil
	}

	n := model.Notification{
		Type:         typ,
		FromUserID:   from.UserID,
		FromUserName: from.Username,
		TargetUserID: targetUID,
		Payload:      payload,
		Read:         false,
		CreatedAt:    storage.NowStamp(),
	}

	// toast 走进程内总线，尽力而为，独立于持久化
	s.hub.Push(targetUID, n)

	rec, err := storage.Encode(n)
	if err != nil {
		return err
	}
	id, err := s.adapter.Write(ctx, storage.NotificationPath(targetUID), rec)
	if err != nil {
		return err
	}
	log.Debug("通知已落库", "id", id, "type", typ, "target", targetUID)
	return nil
}

// FanoutMentions 提及扇出。单条失败只记日志，不影响其余接收者，
// 也不影响触发它的内容写入。
func (s *notificationServiceImpl) FanoutMentions(ctx context.Context, mentions []model.Mention, from SessionContext, payload map[string]any) {
	seen := make(map[string]struct{}, len(mentions))
	for _, mnt := range mentions {
		// 同一文本里重复 @ 同一个人只通知一次
		if _, dup := seen[mnt.ResolvedUserID]; dup {
			continue
		}
		seen[mnt.ResolvedUserID] = struct{}{}
		if err := s.Notify(ctx, consts.NotifyTypeMention, mnt.ResolvedUserID, from, payload); err != nil {
			log.Warn("提及通知落库失败", "target", mnt.ResolvedUserID, "err", err)
		}
	}
}

// List 按时间倒序返回，超出留存上限的旧通知在取数时丢弃（建议性驱逐）
func (s *notificationServiceImpl) List(ctx context.Context, uid string) ([]model.Notification, error) {
	notifications, err := s.readAll(ctx, uid)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt > notifications[j].CreatedAt
	})
	if len(notifications) > s.maxPerUser {
		notifications = notifications[:s.maxPerUser]
	}
	return notifications, nil
}

func (s *notificationServiceImpl) UnreadCount(ctx context.Context, uid string) (int, error) {
	notifications, err := s.List(ctx, uid)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, n := range notifications {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

// MarkRead 标记单条已读，重复标记为空操作
func (s *notificationServiceImpl) MarkRead(ctx context.Context, uid, id string) error {
	notifications, err := s.readAll(ctx, uid)
	if err != nil {
		return err
	}
	for _, n := range notifications {
		if n.ID != id {
			continue
		}
		if n.TargetUserID != uid {
			return UnauthorizedError
		}
		if n.Read {
			return nil
		}
		return s.adapter.Update(ctx, storage.NotificationPath(uid), id, storage.Record{"read": true})
	}
	return ErrNotificationNotFound
}

// MarkAllRead 一键已读，幂等
func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, uid string) error {
	notifications, err := s.readAll(ctx, uid)
	if err != nil {
		return err
	}
	for _, n := range notifications {
		if n.Read {
			continue
		}
		if err = s.adapter.Update(ctx, storage.NotificationPath(uid), n.ID, storage.Record{"read": true}); err != nil {
			return err
		}
	}
	return nil
}

func (s *notificationServiceImpl) readAll(ctx context.Context, uid string) ([]model.Notification, error) {
	recs, err := s.adapter.ReadOnce(ctx, storage.NotificationPath(uid))
	if err != nil {
		return nil, err
	}
	return storage.DecodeAll[model.Notification](recs)
}
