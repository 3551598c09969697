package wire

import (
	"context"
	"fmt"
	log "log/slog"
	"time"

	"Clanhub/internal/api"
	"Clanhub/internal/api/config"
	"Clanhub/internal/api/handler"
	"Clanhub/internal/job"
	"Clanhub/internal/model"
	"Clanhub/internal/pkg/consts"
	"Clanhub/internal/pkg/cron"
	"Clanhub/internal/pkg/redis"
	"Clanhub/internal/repository"
	"Clanhub/internal/service"
	"Clanhub/internal/storage"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router      *gin.Engine
	DB          *gorm.DB
	Adapter     storage.Adapter
	CronManager *cron.Manager
}

func BuildApplication(db *gorm.DB, mongoDB *mongo.Database, cfg *config.Config) (*ApplicationContainer, error) {
	adapter, err := buildAdapter(mongoDB, cfg)
	if err != nil {
		return nil, err
	}

	registry := model.NewSectionRegistry(cfg.Sections)
	userRepo := repository.NewUserRepo(db)

	hub := service.NewToastHub()
	sectionService := service.NewSectionService(registry, userRepo)
	directoryService := service.NewDirectoryService(userRepo)
	notificationService := service.NewNotificationService(adapter, hub, cfg.Notification.MaxPerUser)
	threadService := service.NewThreadService(adapter, sectionService, directoryService, notificationService)
	chatService := service.NewChatService(adapter, sectionService, directoryService, notificationService)

	// 目录刷新发现新用户：给超管发通知，另在公共频道播报
	directoryService.SetNewUserHook(func(entry model.DirectoryEntry) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		from := service.SessionContext{UserID: entry.UID, Username: entry.Username, Clan: entry.Clan, Role: entry.Role}
		payload := map[string]any{"username": entry.Username, "clan": entry.Clan}
		for _, admin := range directoryService.Snapshot() {
			if admin.Role != consts.RoleSuperuser {
				continue
			}
			if err := notificationService.Notify(ctx, consts.NotifyTypeNewUser, admin.UID, from, payload); err != nil {
				log.Warn("新用户通知失败", "target", admin.UID, "err", err)
			}
		}
		if key := cfg.Directory.AnnounceSection; key != "" {
			if err := chatService.SendSystemMessage(ctx, key, entry.Username+" 加入了社区"); err != nil {
				log.Warn("新用户播报失败", "section", key, "err", err)
			}
		}
	})

	handlers := &api.HandlersGroup{
		SectionHandler:      handler.NewSectionHandler(sectionService, directoryService),
		ThreadHandler:       handler.NewThreadHandler(threadService),
		ChatHandler:         handler.NewChatHandler(chatService),
		NotificationHandler: handler.NewNotificationHandler(notificationService),
		WsHandler:           handler.NewWsHandler(adapter, sectionService, threadService, hub),
	}

	router := api.SetupRouter(handlers)

	refreshJob := job.NewDirectoryRefreshJob(directoryService, cfg.Directory.RefreshCron)
	cronManager := cron.NewCronManager(refreshJob)

	// 启动即灌一次目录，hook 此时尚未见过任何人，不会误报
	if err := directoryService.Refresh(context.Background()); err != nil {
		log.Warn("用户目录首刷失败", "err", err)
	}

	return &ApplicationContainer{
		Router:      router,
		DB:          db,
		Adapter:     adapter,
		CronManager: cronManager,
	}, nil
}

func buildAdapter(mongoDB *mongo.Database, cfg *config.Config) (storage.Adapter, error) {
	switch cfg.Storage.Mode {
	case consts.StorageModeRemote:
		if mongoDB == nil || !redis.Ready() {
			return nil, fmt.Errorf("remote 存储模式要求 Mongo 与 Redis 均已初始化")
		}
		return storage.NewRemoteAdapter(mongoDB, redis.Rdb), nil
	case consts.StorageModeLocal:
		poll := time.Duration(cfg.Storage.PollIntervalSeconds) * time.Second
		return storage.NewLocalAdapter(cfg.Storage.LocalPath, poll)
	default:
		return nil, fmt.Errorf("未知存储模式: %q", cfg.Storage.Mode)
	}
}
