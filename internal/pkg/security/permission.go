package security

import (
	"Clanhub/internal/model"
	"Clanhub/internal/pkg/consts"
)

// 权限判定为纯函数，永不报错，只返回布尔值，
// 调用方必须显式检查结果。

// CanAccessSection 是否可访问板块
func CanAccessSection(role, clan string, section model.Section) bool {
	if section.ClanScoped && hasNoClan(clan) {
		return false
	}
	if section.RequiredRole == consts.RoleSuperuser && role != consts.RoleSuperuser {
		return false
	}
	return true
}

// CanModerateSection 是否可审核板块内容。
// superuser 可审核一切；clan_mod 仅限战队板块且本人有战队。
func CanModerateSection(role, clan string, section model.Section) bool {
	if role == consts.RoleSuperuser {
		return true
	}
	if role == consts.RoleClanMod && section.ClanScoped && !hasNoClan(clan) {
		return true
	}
	return false
}

func hasNoClan(clan string) bool {
	return clan == "" || clan == consts.ClanNone
}
