package config

import "Clanhub/internal/model"

// Config 配置主体
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Log          LogConfig          `mapstructure:"log"`
	DB           DBConfig           `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Mongo        MongoConfig        `mapstructure:"mongo"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Notification NotificationConfig `mapstructure:"notification"`
	Directory    DirectoryConfig    `mapstructure:"directory"`
	Sections     []model.Section    `mapstructure:"sections"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LogConfig 日志级别
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DBConfig 规范用户库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type MongoConfig struct {
	URL      string `mapstructure:"url"`
	Database string `mapstructure:"database"`
}

// StorageConfig 内容存储后端选择，启动时定死
type StorageConfig struct {
	Mode                string `mapstructure:"mode"` // remote | local
	LocalPath           string `mapstructure:"local_path"`
	PollIntervalSeconds int    `mapstructure:"poll_interval_seconds"`
}

// NotificationConfig 通知留存策略
type NotificationConfig struct {
	MaxPerUser int `mapstructure:"max_per_user"`
}

// DirectoryConfig 用户目录刷新策略
type DirectoryConfig struct {
	RefreshCron string `mapstructure:"refresh_cron"`
	// AnnounceSection 新用户播报落到哪个公共聊天板块，留空则不播报
	AnnounceSection string `mapstructure:"announce_section"`
}
