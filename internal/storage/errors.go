package storage

import (
	goerrors "errors"

	"github.com/pkg/errors"
)

// 后端失败按四类哨兵归类，调用方用 errors.Is 判别
var (
	ErrNetwork    = goerrors.New("存储后端不可用")
	ErrPermission = goerrors.New("存储后端拒绝访问")
	ErrNotFound   = goerrors.New("记录不存在")
	ErrValidation = goerrors.New("记录不合法")
)

// wrapAs 把底层错误折叠到哨兵上并保留上下文
func wrapAs(sentinel error, cause error, op string) error {
	if cause == nil {
		return errors.Wrap(sentinel, op)
	}
	return errors.Wrapf(sentinel, "%s: %v", op, cause)
}
