package consts

// 角色集合，层级扁平全序：superuser ⊇ clan_mod ⊇ user
const (
	RoleSuperuser = "superuser"
	RoleClanMod   = "clan_mod"
	RoleUser      = "user"
)

// ClanNone 未加入战队的哨兵值
const ClanNone = "Nessuno"

// 主题审核状态
const (
	ThreadStatusPending  = "pending"
	ThreadStatusApproved = "approved"
	ThreadStatusRejected = "rejected"
)

// 板块内容类型
const (
	SectionTypeForum     = "forum"
	SectionTypeChat      = "chat"
	SectionTypeDashboard = "dashboard"
	SectionTypeAdmin     = "admin"
	SectionTypeClanAdmin = "clan-admin"
)

// 订阅数据种类，同时是存储路径的第一段
const (
	KindThreads       = "threads"
	KindComments      = "comments"
	KindMessages      = "messages"
	KindNotifications = "notifications"
)

// 通知类型
const (
	NotifyTypeMention = "mention"
	NotifyTypeReply   = "reply"
	NotifyTypeNewUser = "new_user"
	NotifyTypeSystem  = "system"
)

// 存储后端模式
const (
	StorageModeRemote = "remote"
	StorageModeLocal  = "local"
)

// 内容长度上限，超限在写入前拒绝
const (
	MaxTitleLen   = 120
	MaxContentLen = 10000
	MaxMessageLen = 2000
)
