package service

import (
	"context"
	log "log/slog"
	"sort"
	"strings"
	"sync"

	"Clanhub/internal/model"
	"Clanhub/internal/repository"
)

// DirectoryService 用户目录投影缓存：供 @提及 匹配与自动补全。
// 只增不删，按 uid 合并，后写覆盖；是最终一致的投影，
// 不做任何安全判定（权威判定重读规范用户记录）。
type DirectoryService interface {
	// Refresh 从规范用户库全量刷新，启动时和定时任务调用
	Refresh(ctx context.Context) error
	Snapshot() []model.DirectoryEntry
	Lookup(uid string) (model.DirectoryEntry, bool)
	// Search 用户名前缀匹配，供自动补全
	Search(prefix string, limit int) []model.DirectoryEntry
	// MergeEntry 多条代码路径增量并入（登录、管理列表、补全）
	MergeEntry(entry model.DirectoryEntry)
	// SetNewUserHook 首轮刷新后新出现的用户触发（new_user 广播）
	SetNewUserHook(hook func(entry model.DirectoryEntry))
}

type directoryServiceImpl struct {
	userRepo repository.UserRepo

	mu      sync.RWMutex
	entries map[string]model.DirectoryEntry
	primed  bool
	hook    func(entry model.DirectoryEntry)
}

func NewDirectoryService(userRepo repository.UserRepo) DirectoryService {
	return &directoryServiceImpl{
		userRepo: userRepo,
		entries:  make(map[string]model.DirectoryEntry),
	}
}

func (s *directoryServiceImpl) SetNewUserHook(hook func(entry model.DirectoryEntry)) {
	s.mu.Lock()
	s.hook = hook
	s.mu.Unlock()
}

// Refresh 全量刷新并识别新用户
func (s *directoryServiceImpl) Refresh(ctx context.Context) error {
	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return err
	}

	var newcomers []model.DirectoryEntry

	s.mu.Lock()
	for _, u := range users {
		entry := model.DirectoryEntry{UID: u.UID, Username: u.Username, Clan: u.Clan, Role: u.Role}
		if _, ok := s.entries[u.UID]; !ok && s.primed {
			newcomers = append(newcomers, entry)
		}
		s.entries[u.UID] = entry
	}
	hook := s.hook
	s.primed = true
	s.mu.Unlock()

	if hook != nil {
		for _, entry := range newcomers {
			hook(entry)
		}
	}

	log.Info("用户目录已刷新", "total", len(users), "new", len(newcomers))
	return nil
}

func (s *directoryServiceImpl) Snapshot() []model.DirectoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.DirectoryEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

func (s *directoryServiceImpl) Lookup(uid string) (model.DirectoryEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[uid]
	return e, ok
}

func (s *directoryServiceImpl) Search(prefix string, limit int) []model.DirectoryEntry {
	lower := strings.ToLower(prefix)
	var out []model.DirectoryEntry
	for _, e := range s.Snapshot() {
		if strings.HasPrefix(strings.ToLower(e.Username), lower) {
			out = append(out, e)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out
}

func (s *directoryServiceImpl) MergeEntry(entry model.DirectoryEntry) {
	if entry.UID == "" {
		return
	}
	s.mu.Lock()
	s.entries[entry.UID] = entry
	s.mu.Unlock()
}
