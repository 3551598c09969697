package service

import (
	"context"
	"errors"
	"testing"

	"Clanhub/internal/model"
	"Clanhub/internal/pkg/consts"
)

func newSectionFixture() (SectionService, *fakeUserRepo) {
	registry := model.NewSectionRegistry([]model.Section{
		{Key: "eventi", ContentType: consts.SectionTypeForum},
		{Key: "clan-war", ContentType: consts.SectionTypeForum, ClanScoped: true},
		{Key: "admin", ContentType: consts.SectionTypeAdmin, RequiredRole: consts.RoleSuperuser},
	})
	repo := newFakeUserRepo(
		&model.User{UID: "u1", Username: "Marco", Clan: consts.ClanNone, Role: consts.RoleUser},
		&model.User{UID: "u4", Username: "Admin", Clan: consts.ClanNone, Role: consts.RoleSuperuser},
	)
	return NewSectionService(registry, repo), repo
}

func TestAuthorizeUsesCanonicalRecord(t *testing.T) {
	sections, repo := newSectionFixture()
	ctx := context.Background()

	// 会话凭据声称 superuser，但规范记录说是普通用户：以记录为准
	forged := SessionContext{UserID: "u1", Username: "Marco", Clan: consts.ClanNone, Role: consts.RoleSuperuser}
	if _, _, err := sections.Authorize(ctx, forged, "admin"); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("伪造角色 err = %v", err)
	}

	// 记录缺失时退回会话凭据
	ghost := SessionContext{UserID: "manca", Username: "Ghost", Clan: consts.ClanNone, Role: consts.RoleUser}
	if _, actor, err := sections.Authorize(ctx, ghost, "eventi"); err != nil || actor.UID != "manca" {
		t.Fatalf("降级失败: actor=%+v err=%v", actor, err)
	}
	_ = repo
}

func TestAuthorizeUnknownSection(t *testing.T) {
	sections, _ := newSectionFixture()
	sess := SessionContext{UserID: "u1", Role: consts.RoleUser}
	if _, _, err := sections.Authorize(context.Background(), sess, "boh"); !errors.Is(err, ErrSectionNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestListAnnotatesAccess(t *testing.T) {
	sections, _ := newSectionFixture()
	sess := SessionContext{UserID: "u1", Username: "Marco", Clan: consts.ClanNone, Role: consts.RoleUser}

	list := sections.List(context.Background(), sess)
	if len(list) != 3 {
		t.Fatalf("len = %d", len(list))
	}
	byKey := make(map[string]SectionAccess)
	for _, a := range list {
		byKey[a.Section.Key] = a
	}
	if !byKey["eventi"].CanAccess || byKey["eventi"].CanModerate {
		t.Fatalf("eventi: %+v", byKey["eventi"])
	}
	if byKey["clan-war"].CanAccess {
		t.Fatalf("无战队不应访问 clan-war: %+v", byKey["clan-war"])
	}
	if byKey["admin"].CanAccess {
		t.Fatalf("普通用户不应访问 admin: %+v", byKey["admin"])
	}
}

func TestAllowedKind(t *testing.T) {
	sections, _ := newSectionFixture()
	forum, _ := sections.Registry().Get("eventi")

	if !sections.AllowedKind(forum, consts.KindThreads) || !sections.AllowedKind(forum, consts.KindComments) {
		t.Fatal("论坛板块应允许主题与评论")
	}
	if sections.AllowedKind(forum, consts.KindMessages) {
		t.Fatal("论坛板块不应允许消息")
	}
}
