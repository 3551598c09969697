package model

import (
	"time"
)

// User 规范用户记录，角色与战队的权威来源。
// 身份签发在引擎之外，这里只消费。
type User struct {
	UID       string `gorm:"primaryKey;type:varchar(64)"`
	Username  string `gorm:"type:varchar(50);uniqueIndex:idx_username;not null"`
	Clan      string `gorm:"type:varchar(50);not null;default:'Nessuno'"`
	Role      string `gorm:"type:varchar(20);not null;default:'user'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string {
	return "users"
}

// DirectoryEntry 用户目录投影，供 @提及 匹配和自动补全。
// 尽力而为的缓存，不做安全判定。
type DirectoryEntry struct {
	UID      string `json:"uid"`
	Username string `json:"username"`
	Clan     string `json:"clan"`
	Role     string `json:"role"`
}
