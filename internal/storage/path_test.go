package storage

import (
	"testing"

	"Clanhub/internal/model"
	"Clanhub/internal/pkg/consts"
)

func TestResolvePath(t *testing.T) {
	forum := model.Section{Key: "eventi", ContentType: consts.SectionTypeForum}
	clanForum := model.Section{Key: "clan-war", ContentType: consts.SectionTypeForum, ClanScoped: true}

	tests := []struct {
		name     string
		section  model.Section
		kind     string
		clan     string
		wantPath string
		wantOK   bool
	}{
		{"公共板块忽略战队", forum, consts.KindThreads, "Alpha", "threads/eventi", true},
		{"公共板块无战队同样可达", forum, consts.KindThreads, consts.ClanNone, "threads/eventi", true},
		{"战队板块带战队", clanForum, consts.KindThreads, "Alpha", "threads/clan/Alpha/clan-war", true},
		{"战队板块空战队拒绝", clanForum, consts.KindThreads, "", "", false},
		{"战队板块哨兵战队拒绝", clanForum, consts.KindThreads, consts.ClanNone, "", false},
		{"战队名非法字符被清洗", clanForum, consts.KindComments, "a.b#c$d[e]f", "comments/clan/a_b_c_d_e_f/clan-war", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, ok := ResolvePath(tt.section, tt.kind, tt.clan)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if path != tt.wantPath {
				t.Fatalf("path = %q, want %q", path, tt.wantPath)
			}
		})
	}
}

func TestSanitizeClan(t *testing.T) {
	if got := SanitizeClan("no.pe#r$m[s]"); got != "no_pe_r_m_s_" {
		t.Fatalf("SanitizeClan = %q", got)
	}
	if got := SanitizeClan("Alpha_1"); got != "Alpha_1" {
		t.Fatalf("合法名不应被改写, got %q", got)
	}
}

func TestNotificationPath(t *testing.T) {
	if got := NotificationPath("u1"); got != "notifications/u1" {
		t.Fatalf("NotificationPath = %q", got)
	}
}
