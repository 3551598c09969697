package api

import "Clanhub/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	SectionHandler      *handler.SectionHandler
	ThreadHandler       *handler.ThreadHandler
	ChatHandler         *handler.ChatHandler
	NotificationHandler *handler.NotificationHandler
	WsHandler           *handler.WsHandler
}
