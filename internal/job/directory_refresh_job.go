package job

import (
	"context"
	log "log/slog"
	"time"

	"Clanhub/internal/service"
)

// DirectoryRefreshJob 周期性重读用户目录投影，新用户在此处被发现并扇出
type DirectoryRefreshJob struct {
	directory service.DirectoryService
	spec      string
}

func NewDirectoryRefreshJob(directory service.DirectoryService, spec string) *DirectoryRefreshJob {
	if spec == "" {
		spec = "@every 1m"
	}
	return &DirectoryRefreshJob{directory: directory, spec: spec}
}

func (j *DirectoryRefreshJob) Spec() string {
	return j.spec
}

func (j *DirectoryRefreshJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := j.directory.Refresh(ctx); err != nil {
		log.Error("用户目录刷新失败", "err", err)
	}
}
