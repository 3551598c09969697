package storage

import (
	"strings"

	"Clanhub/internal/model"
	"Clanhub/internal/pkg/consts"
)

// 后端路径语法不允许的字符，统一替换为下划线。
// 两个不同战队名清洗后理论上可能碰撞，属已接受的风险。
var clanSanitizer = strings.NewReplacer(".", "_", "#", "_", "$", "_", "[", "_", "]", "_")

// ResolvePath 把 (板块, 数据种类, 调用方战队) 映射为物理存储路径。
// 战队板块且调用方无战队时返回 ok=false，调用方必须按拒绝访问处理，
// 不得当作空集合。纯函数，无 I/O。
func ResolvePath(section model.Section, dataKind, clan string) (string, bool) {
	if section.ClanScoped {
		if clan == "" || clan == consts.ClanNone {
			return "", false
		}
		return dataKind + "/clan/" + SanitizeClan(clan) + "/" + section.Key, true
	}
	return dataKind + "/" + section.Key, true
}

// SanitizeClan 清洗战队名中后端路径语法的非法字符
func SanitizeClan(clan string) string {
	return clanSanitizer.Replace(clan)
}

// NotificationPath 按接收者划分的通知集合路径
func NotificationPath(uid string) string {
	return consts.KindNotifications + "/" + uid
}
