package handler

import (
	"context"
	log "log/slog"
	"net/http"
	"sync"
	"time"

	"Clanhub/internal/api/dto"
	"Clanhub/internal/pkg/consts"
	"Clanhub/internal/pkg/response"
	"Clanhub/internal/pkg/security"
	"Clanhub/internal/service"
	"Clanhub/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	wsActionEnter = "enter"
	wsActionLeave = "leave"

	wsFrameSnapshot = "snapshot"
	wsFrameToast    = "toast"
	wsFrameError    = "error"
)

type WsHandler struct {
	adapter        storage.Adapter
	sectionService service.SectionService
	threadService  service.ThreadService
	hub            *service.ToastHub
}

func NewWsHandler(adapter storage.Adapter, sections service.SectionService, threads service.ThreadService, hub *service.ToastHub) *WsHandler {
	return &WsHandler{
		adapter:        adapter,
		sectionService: sections,
		threadService:  threads,
		hub:            hub,
	}
}

// wsConn 单连接写端。websocket 不允许并发写，
// 快照回调和 toast 推送共用一把写锁。
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsConn) send(frame dto.WsServerFrame) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.conn.WriteJSON(frame)
}

// Connect 一条 WS 连接即一个活跃会话：持有自己的订阅管理器，
// 每种数据种类同一时刻至多一路订阅，断开时全部拆除。
func (s *WsHandler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, service.UnauthorizedError)
		return
	}
	claims, err := security.ValidateToken(token)
	if err != nil {
		log.Warn("WS 鉴权失败", "err", err)
		response.Error(c, service.UnauthorizedError)
		return
	}
	sess := service.SessionContext{
		UserID:   claims.UserID,
		Username: claims.Username,
		Clan:     claims.Clan,
		Role:     claims.Role,
	}

	raw, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WS 协议升级失败", "err", err)
		return
	}
	conn := &wsConn{conn: raw}
	defer func() {
		_ = raw.Close()
	}()

	manager := service.NewSubscriptionManager(s.adapter)
	defer manager.LeaveAll()

	// toast 总线接到本连接
	toastCh, cancelToast := s.hub.Register(sess.UserID)
	defer cancelToast()

	ctx, cancelCtx := context.WithCancel(context.Background())
	defer cancelCtx()

	log.Info("用户 WS 连接已建立", "userID", sess.UserID)

	stopChan := make(chan struct{})

	// 读循环：控制帧与客户端断开
	go func() {
		defer close(stopChan)
		for {
			var frame dto.WsClientFrame
			if err := raw.ReadJSON(&frame); err != nil {
				return
			}
			s.handleFrame(ctx, conn, manager, sess, frame)
		}
	}()

	for {
		select {
		case n := <-toastCh:
			if err := conn.send(dto.WsServerFrame{Type: wsFrameToast, Payload: n}); err != nil {
				log.Error("WS toast 推送失败", "userID", sess.UserID, "err", err)
				return
			}
		case <-stopChan:
			log.Info("用户 WS 连接已断开", "userID", sess.UserID)
			return
		}
	}
}

func (s *WsHandler) handleFrame(ctx context.Context, conn *wsConn, manager *service.SubscriptionManager, sess service.SessionContext, frame dto.WsClientFrame) {
	switch frame.Action {
	case wsActionEnter:
		if err := s.enter(ctx, conn, manager, sess, frame.Section, frame.Kind); err != nil {
			s.sendError(conn, frame, err)
		}
	case wsActionLeave:
		manager.Leave(frame.Kind)
	default:
		s.sendError(conn, frame, service.ErrParamInvalid)
	}
}

func (s *WsHandler) enter(ctx context.Context, conn *wsConn, manager *service.SubscriptionManager, sess service.SessionContext, sectionKey, kind string) error {
	section, actor, err := s.sectionService.Authorize(ctx, sess, sectionKey)
	if err != nil {
		return err
	}
	if !s.sectionService.AllowedKind(section, kind) {
		return service.ErrSectionTypeMismatch
	}
	path, ok := storage.ResolvePath(section, kind, actor.Clan)
	if !ok {
		return service.ErrAccessDenied
	}

	var filter service.FilterFunc
	if kind == consts.KindThreads {
		filter = s.threadService.VisibilityFilter(actor, section)
	}

	render := func(renderSection, renderKind string, records []storage.Record) {
		err := conn.send(dto.WsServerFrame{
			Type:    wsFrameSnapshot,
			Section: renderSection,
			Kind:    renderKind,
			Records: records,
		})
		if err != nil {
			log.Error("WS 快照推送失败", "userID", sess.UserID, "section", renderSection, "err", err)
		}
	}
	return manager.Enter(ctx, sectionKey, kind, path, render, filter)
}

func (s *WsHandler) sendError(conn *wsConn, frame dto.WsClientFrame, err error) {
	_, msg := service.MapError(err)
	sendErr := conn.send(dto.WsServerFrame{
		Type:    wsFrameError,
		Section: frame.Section,
		Kind:    frame.Kind,
		Message: msg,
	})
	if sendErr != nil {
		log.Error("WS 错误帧推送失败", "err", sendErr)
	}
}
