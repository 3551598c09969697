package consts

const (
	// SyncChannelKey 路径变更通知频道前缀，后接存储路径
	SyncChannelKey = "sync:path:"

	// RevokedTokenKey 已吊销 Token 签名
	RevokedTokenKey = "token:revoked:"
)
