package cron

import (
	log "log/slog"

	"Clanhub/internal/job"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine              *cron.Cron
	directoryRefreshJob *job.DirectoryRefreshJob
}

func NewCronManager(directoryRefreshJob *job.DirectoryRefreshJob) *Manager {
	return &Manager{
		engine:              cron.New(cron.WithSeconds()),
		directoryRefreshJob: directoryRefreshJob,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	if _, err := s.engine.AddJob(s.directoryRefreshJob.Spec(), s.directoryRefreshJob); err != nil {
		return err
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	s.engine.Stop()
}
