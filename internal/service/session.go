package service

// SessionContext 显式的会话上下文，取代散落的全局状态。
// 随调用传递，一个进程可承载多个独立会话。
// 其中的角色与战队来自会话凭据，只作默认值；
// 审核等安全判定必须重读规范用户记录。
type SessionContext struct {
	UserID   string
	Username string
	Clan     string
	Role     string
}
