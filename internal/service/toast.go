package service

import (
	log "log/slog"
	"sync"

	"Clanhub/internal/model"
)

// ToastHub 进程内即时提醒总线。投递是尽力而为的不阻塞发送：
// 会话不在线或缓冲满都直接丢弃，持久化的通知记录才是事实来源。
type ToastHub struct {
	mu       sync.RWMutex
	sessions map[string][]chan model.Notification
}

func NewToastHub() *ToastHub {
	return &ToastHub{sessions: make(map[string][]chan model.Notification)}
}

// Register 注册活跃会话，返回接收通道与注销函数
func (h *ToastHub) Register(uid string) (<-chan model.Notification, func()) {
	ch := make(chan model.Notification, 16)

	h.mu.Lock()
	h.sessions[uid] = append(h.sessions[uid], ch)
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		chans := h.sessions[uid]
		for i, c := range chans {
			if c == ch {
				h.sessions[uid] = append(chans[:i], chans[i+1:]...)
				break
			}
		}
		if len(h.sessions[uid]) == 0 {
			delete(h.sessions, uid)
		}
	}
	return ch, cancel
}

// Push 给目标用户的活跃会话投递提醒，不阻塞调用方
func (h *ToastHub) Push(uid string, n model.Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.sessions[uid] {
		select {
		case ch <- n:
		default:
			log.Debug("提醒缓冲已满，丢弃", "uid", uid)
		}
	}
}
