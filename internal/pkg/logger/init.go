package logger

import (
	"io"
	log "log/slog"
	"os"
)

var LogWriter io.Writer

// InitLogger JSON 结构化日志到 stdout，经 ContextHandler 注入 trace_id
func InitLogger(level string) {
	lv := log.LevelInfo
	switch level {
	case "debug":
		lv = log.LevelDebug
	case "warn":
		lv = log.LevelWarn
	case "error":
		lv = log.LevelError
	}

	LogWriter = os.Stdout
	handler := log.NewJSONHandler(os.Stdout, &log.HandlerOptions{Level: lv})
	log.SetDefault(log.New(&ContextHandler{handler}))
}
