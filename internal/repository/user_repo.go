package repository

import (
	"context"
	"errors"

	"Clanhub/internal/model"

	"gorm.io/gorm"
)

type UserRepo interface {
	// GetByUID 权威读取：角色与战队的安全判定一律走这里，不走目录缓存
	GetByUID(ctx context.Context, uid string) (*model.User, error)
	ListAll(ctx context.Context) ([]*model.User, error)
	SearchByUsernamePrefix(ctx context.Context, prefix string, limit int) ([]*model.User, error)
}

type userRepoImpl struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepo {
	return &userRepoImpl{db: db}
}

// GetByUID 按 UID 获取规范用户记录
func (s *userRepoImpl) GetByUID(ctx context.Context, uid string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("uid = ?", uid).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// ListAll 全量用户投影，供目录刷新
func (s *userRepoImpl) ListAll(ctx context.Context) ([]*model.User, error) {
	var users []*model.User
	err := s.db.WithContext(ctx).Find(&users).Error
	return users, err
}

// SearchByUsernamePrefix 用户名前缀搜索，供 @提及 自动补全兜底
func (s *userRepoImpl) SearchByUsernamePrefix(ctx context.Context, prefix string, limit int) ([]*model.User, error) {
	var users []*model.User
	err := s.db.WithContext(ctx).
		Where("username LIKE ?", prefix+"%").
		Limit(limit).
		Find(&users).Error
	return users, err
}
