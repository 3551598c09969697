package service

import (
	"context"
	log "log/slog"
	"sort"
	"sync"

	"Clanhub/internal/pkg/consts"
	"Clanhub/internal/storage"
)

// RenderFunc 渲染回调，收到的永远是排好序的完整集合。
// 在管理器锁内调用，实现里不得再调回管理器。
type RenderFunc func(sectionKey, dataKind string, records []storage.Record)

// FilterFunc 投递前的可见性过滤（审核可见性在读取侧收口）
type FilterFunc func(records []storage.Record) []storage.Record

// 订阅槽状态机：Idle → Subscribing → Active → Idle，失败经 Error 回 Idle
const (
	SubStateIdle        = "idle"
	SubStateSubscribing = "subscribing"
	SubStateActive      = "active"
	SubStateError       = "error"
)

// SubscriptionManager 每会话一个。同一数据种类同时至多一个活跃订阅；
// 切换板块先拆旧再建新，杜绝重复监听与陈旧回调泄漏。
// 迟到的快照靠槽位比对丢弃：Leave 返回之后，被离开的 key 不可能再渲染。
type SubscriptionManager struct {
	adapter storage.Adapter

	mu      sync.Mutex
	nextGen uint64
	slots   map[string]*subSlot
}

type subSlot struct {
	sectionKey string
	kind       string
	path       string
	gen        uint64
	state      string
	retried    bool
	sub        storage.Subscription
	render     RenderFunc
	filter     FilterFunc
}

func NewSubscriptionManager(adapter storage.Adapter) *SubscriptionManager {
	return &SubscriptionManager{
		adapter: adapter,
		slots:   make(map[string]*subSlot),
	}
}

// Enter 进入 (板块, 数据种类)。同 key 活跃时幂等；不同 key 先同步拆旧。
// 切到别的板块时，旧板块残留的所有订阅（含其它数据种类）一并拆除，
// 同板块多种类（主题+评论）共存不受影响。
// path 由调用方经 PathResolver 与权限检查得出。
func (m *SubscriptionManager) Enter(ctx context.Context, sectionKey, dataKind, path string, render RenderFunc, filter FilterFunc) error {
	m.mu.Lock()
	if s := m.slots[dataKind]; s != nil {
		if s.sectionKey == sectionKey && s.state != SubStateError {
			m.mu.Unlock()
			return nil
		}
		m.teardownLocked(s)
	}
	for _, s := range m.slots {
		if s.sectionKey != sectionKey {
			m.teardownLocked(s)
		}
	}
	m.nextGen++
	slot := &subSlot{
		sectionKey: sectionKey,
		kind:       dataKind,
		path:       path,
		gen:        m.nextGen,
		state:      SubStateSubscribing,
		render:     render,
		filter:     filter,
	}
	m.slots[dataKind] = slot
	m.mu.Unlock()

	return m.subscribe(ctx, slot)
}

// Leave 离开指定数据种类的订阅。返回即保证不再有该 key 的渲染被应用。
func (m *SubscriptionManager) Leave(dataKind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s := m.slots[dataKind]; s != nil {
		m.teardownLocked(s)
	}
}

// LeaveAll 会话结束或切换板块时的整体拆除
func (m *SubscriptionManager) LeaveAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.slots {
		m.teardownLocked(s)
	}
}

// State 当前状态，无槽位即 Idle
func (m *SubscriptionManager) State(dataKind string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s := m.slots[dataKind]; s != nil {
		return s.state
	}
	return SubStateIdle
}

func (m *SubscriptionManager) teardownLocked(s *subSlot) {
	delete(m.slots, s.kind)
	s.state = SubStateIdle
	if s.sub != nil {
		s.sub.Cancel()
	}
}

func (m *SubscriptionManager) subscribe(ctx context.Context, slot *subSlot) error {
	sub, err := m.adapter.Subscribe(ctx, slot.path,
		func(recs []storage.Record) { m.deliver(slot, recs) },
		func(serr error) { m.handleSubError(slot, serr) },
	)
	if err != nil {
		m.mu.Lock()
		if m.slots[slot.kind] == slot {
			delete(m.slots, slot.kind)
			slot.state = SubStateIdle
		}
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	if m.slots[slot.kind] != slot {
		// 订阅建立期间已被切换，立即撤掉
		m.mu.Unlock()
		sub.Cancel()
		return nil
	}
	slot.sub = sub
	m.mu.Unlock()
	return nil
}

// deliver 持锁投递：槽位被换掉的迟到快照在这里被丢弃
func (m *SubscriptionManager) deliver(slot *subSlot, recs []storage.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur := m.slots[slot.kind]
	if cur == nil || cur.gen != slot.gen {
		return
	}
	slot.state = SubStateActive
	ordered := sortRecords(slot.kind, recs)
	if slot.filter != nil {
		ordered = slot.filter(ordered)
	}
	slot.render(slot.sectionKey, slot.kind, ordered)
}

// handleSubError 异步订阅失败：重连一次，再失败转 Idle 并上报日志
func (m *SubscriptionManager) handleSubError(slot *subSlot, err error) {
	m.mu.Lock()
	if m.slots[slot.kind] != slot {
		m.mu.Unlock()
		return
	}
	if !slot.retried {
		slot.retried = true
		slot.state = SubStateSubscribing
		old := slot.sub
		slot.sub = nil
		m.mu.Unlock()

		if old != nil {
			old.Cancel()
		}
		log.Warn("订阅中断，尝试重连一次", "section", slot.sectionKey, "kind", slot.kind, "err", err)
		if rerr := m.subscribe(context.Background(), slot); rerr != nil {
			log.Error("订阅重连失败", "section", slot.sectionKey, "kind", slot.kind, "err", rerr)
		}
		return
	}

	slot.state = SubStateError
	delete(m.slots, slot.kind)
	old := slot.sub
	m.mu.Unlock()

	if old != nil {
		old.Cancel()
	}
	log.Error("订阅失败，转为空闲", "section", slot.sectionKey, "kind", slot.kind, "err", err)
}

// sortRecords 排序是管理器的职责，不依赖后端：
// 主题按创建时间倒序，消息与评论按创建时间正序
func sortRecords(dataKind string, recs []storage.Record) []storage.Record {
	ordered := make([]storage.Record, len(recs))
	copy(ordered, recs)
	desc := dataKind == consts.KindThreads
	sort.SliceStable(ordered, func(i, j int) bool {
		a, _ := ordered[i]["created_at"].(string)
		b, _ := ordered[j]["created_at"].(string)
		if desc {
			return a > b
		}
		return a < b
	})
	return ordered
}
