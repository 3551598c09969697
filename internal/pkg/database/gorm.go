package database

import (
	"fmt"
	log "log/slog"
	"time"

	"Clanhub/internal/api/config"
	"Clanhub/internal/model"
	"Clanhub/internal/pkg/logger"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// NewGormDB 初始化规范用户库连接并处理连接池配置
func NewGormDB(cfg *config.DBConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger:      logger.NewGormLogger(),
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdle)
	sqlDB.SetMaxOpenConns(cfg.MaxOpen)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Minute)

	if err = sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database connection check failed: %w", err)
	}

	if err = db.AutoMigrate(&model.User{}); err != nil {
		return nil, fmt.Errorf("auto migrate failed: %w", err)
	}

	log.Info("Database connection established successfully.")
	return db, nil
}
