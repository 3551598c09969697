package service

import (
	"context"
	"errors"
	"testing"

	"Clanhub/internal/api/dto"
	"Clanhub/internal/model"
	"Clanhub/internal/pkg/consts"
	"Clanhub/internal/storage"
)

type threadFixture struct {
	adapter *fakeAdapter
	repo    *fakeUserRepo
	hub     *ToastHub
	notif   NotificationService
	threads ThreadService
	chat    ChatService
}

func newThreadFixture(t *testing.T) *threadFixture {
	t.Helper()
	registry := model.NewSectionRegistry([]model.Section{
		{Key: "eventi", ContentType: consts.SectionTypeForum},
		{Key: "chat-generale", ContentType: consts.SectionTypeChat},
		{Key: "clan-war", ContentType: consts.SectionTypeForum, ClanScoped: true},
	})
	repo := newFakeUserRepo(
		&model.User{UID: "u1", Username: "Marco", Clan: consts.ClanNone, Role: consts.RoleUser},
		&model.User{UID: "u2", Username: "Anna", Clan: "Alpha", Role: consts.RoleUser},
		&model.User{UID: "u3", Username: "Mod", Clan: "Alpha", Role: consts.RoleClanMod},
		&model.User{UID: "u4", Username: "Admin", Clan: consts.ClanNone, Role: consts.RoleSuperuser},
		&model.User{UID: "u5", Username: "Luigi", Clan: "Alpha", Role: consts.RoleUser},
	)
	adapter := newFakeAdapter()
	sections := NewSectionService(registry, repo)
	directory := NewDirectoryService(repo)
	if err := directory.Refresh(context.Background()); err != nil {
		t.Fatalf("directory refresh: %v", err)
	}
	hub := NewToastHub()
	notif := NewNotificationService(adapter, hub, 50)
	return &threadFixture{
		adapter: adapter,
		repo:    repo,
		hub:     hub,
		notif:   notif,
		threads: NewThreadService(adapter, sections, directory, notif),
		chat:    NewChatService(adapter, sections, directory, notif),
	}
}

func sessFor(uid, username, clan, role string) SessionContext {
	return SessionContext{UserID: uid, Username: username, Clan: clan, Role: role}
}

var (
	sessMarco = sessFor("u1", "Marco", consts.ClanNone, consts.RoleUser)
	sessAnna  = sessFor("u2", "Anna", "Alpha", consts.RoleUser)
	sessMod   = sessFor("u3", "Mod", "Alpha", consts.RoleClanMod)
	sessLuigi = sessFor("u5", "Luigi", "Alpha", consts.RoleUser)
)

func TestPostThreadInitialStatus(t *testing.T) {
	tests := []struct {
		name       string
		sess       SessionContext
		section    string
		wantStatus string
		wantErr    error
	}{
		{"公共板块直接过审", sessMarco, "eventi", consts.ThreadStatusApproved, nil},
		{"战队板块普通成员进待审", sessAnna, "clan-war", consts.ThreadStatusPending, nil},
		{"战队板块审核员直接过审", sessMod, "clan-war", consts.ThreadStatusApproved, nil},
		{"无战队进战队板块被拒", sessMarco, "clan-war", "", ErrAccessDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newThreadFixture(t)
			thread, err := f.threads.PostThread(context.Background(), tt.sess, tt.section,
				&dto.CreateThreadReq{Title: "titolo", Content: "contenuto"})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("PostThread: %v", err)
			}
			if thread.Status != tt.wantStatus {
				t.Fatalf("status = %s, want %s", thread.Status, tt.wantStatus)
			}
			if thread.ID == "" || thread.CreatedAt == "" || thread.LastActivity == "" {
				t.Fatalf("字段缺失: %+v", thread)
			}
		})
	}
}

func TestPostThreadValidation(t *testing.T) {
	f := newThreadFixture(t)
	_, err := f.threads.PostThread(context.Background(), sessMarco, "eventi",
		&dto.CreateThreadReq{Title: "", Content: "x"})
	if !errors.Is(err, ErrContentInvalid) {
		t.Fatalf("空标题 err = %v", err)
	}
	long := make([]byte, consts.MaxTitleLen+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = f.threads.PostThread(context.Background(), sessMarco, "eventi",
		&dto.CreateThreadReq{Title: string(long), Content: "x"})
	if !errors.Is(err, ErrContentInvalid) {
		t.Fatalf("超长标题 err = %v", err)
	}
}

func TestPostThreadSectionChecks(t *testing.T) {
	f := newThreadFixture(t)
	ctx := context.Background()

	if _, err := f.threads.PostThread(ctx, sessMarco, "sconosciuta",
		&dto.CreateThreadReq{Title: "t", Content: "c"}); !errors.Is(err, ErrSectionNotFound) {
		t.Fatalf("未知板块 err = %v", err)
	}
	if _, err := f.threads.PostThread(ctx, sessMarco, "chat-generale",
		&dto.CreateThreadReq{Title: "t", Content: "c"}); !errors.Is(err, ErrSectionTypeMismatch) {
		t.Fatalf("聊天板块发帖 err = %v", err)
	}
}

func TestModerationTransitions(t *testing.T) {
	f := newThreadFixture(t)
	ctx := context.Background()

	posted, err := f.threads.PostThread(ctx, sessAnna, "clan-war",
		&dto.CreateThreadReq{Title: "guerra", Content: "piano"})
	if err != nil {
		t.Fatalf("PostThread: %v", err)
	}
	if posted.Status != consts.ThreadStatusPending {
		t.Fatalf("初始 status = %s", posted.Status)
	}

	// 普通成员无审核权
	if _, err = f.threads.Approve(ctx, sessLuigi, "clan-war", posted.ID); !errors.Is(err, UnauthorizedError) {
		t.Fatalf("非审核员 err = %v", err)
	}

	approved, err := f.threads.Approve(ctx, sessMod, "clan-war", posted.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if approved.Status != consts.ThreadStatusApproved || approved.ModeratedBy != "u3" || approved.ModeratedAt == "" {
		t.Fatalf("审核戳缺失: %+v", approved)
	}

	// 重放同一终态为幂等空操作
	again, err := f.threads.Approve(ctx, sessMod, "clan-war", posted.ID)
	if err != nil {
		t.Fatalf("重放 Approve: %v", err)
	}
	if again.Status != consts.ThreadStatusApproved {
		t.Fatalf("重放后 status = %s", again.Status)
	}

	// 已过审不可驳回
	if _, err = f.threads.Reject(ctx, sessMod, "clan-war", posted.ID, "no"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("approve 后 reject err = %v", err)
	}
}

func TestRejectStampsReason(t *testing.T) {
	f := newThreadFixture(t)
	ctx := context.Background()

	posted, _ := f.threads.PostThread(ctx, sessAnna, "clan-war",
		&dto.CreateThreadReq{Title: "spam", Content: "spam"})

	rejected, err := f.threads.Reject(ctx, sessMod, "clan-war", posted.ID, "fuori tema")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if rejected.Status != consts.ThreadStatusRejected || rejected.RejectionReason != "fuori tema" {
		t.Fatalf("驳回戳缺失: %+v", rejected)
	}

	// 重复驳回幂等
	if _, err = f.threads.Reject(ctx, sessMod, "clan-war", posted.ID, "altro"); err != nil {
		t.Fatalf("重复 Reject: %v", err)
	}
	// 已驳回不可过审
	if _, err = f.threads.Approve(ctx, sessMod, "clan-war", posted.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("reject 后 approve err = %v", err)
	}
}

func TestModerateUnknownThread(t *testing.T) {
	f := newThreadFixture(t)
	if _, err := f.threads.Approve(context.Background(), sessMod, "clan-war", "manca"); !errors.Is(err, ErrThreadNotFound) {
		t.Fatalf("err = %v", err)
	}
}

// 待审与已驳回的主题只有作者和审核员可见
func TestListThreadsVisibility(t *testing.T) {
	f := newThreadFixture(t)
	ctx := context.Background()

	pending, _ := f.threads.PostThread(ctx, sessAnna, "clan-war",
		&dto.CreateThreadReq{Title: "segreto", Content: "bozza"})
	approvedByMod, _ := f.threads.PostThread(ctx, sessMod, "clan-war",
		&dto.CreateThreadReq{Title: "pubblico", Content: "testo"})

	for _, tt := range []struct {
		name string
		sess SessionContext
		want int
	}{
		{"作者看见自己的待审帖", sessAnna, 2},
		{"审核员看见全部", sessMod, 2},
		{"旁人只看见已过审", sessLuigi, 1},
	} {
		t.Run(tt.name, func(t *testing.T) {
			list, err := f.threads.ListThreads(ctx, tt.sess, "clan-war")
			if err != nil {
				t.Fatalf("ListThreads: %v", err)
			}
			if len(list) != tt.want {
				t.Fatalf("len = %d, want %d", len(list), tt.want)
			}
		})
	}
	_ = pending
	_ = approvedByMod
}

func TestPostCommentSideEffects(t *testing.T) {
	f := newThreadFixture(t)
	ctx := context.Background()

	thread, _ := f.threads.PostThread(ctx, sessMarco, "eventi",
		&dto.CreateThreadReq{Title: "torneo", Content: "chi viene?"})

	comment, err := f.threads.PostComment(ctx, sessAnna, "eventi", thread.ID,
		&dto.CreateCommentReq{Content: "io ci sono"})
	if err != nil {
		t.Fatalf("PostComment: %v", err)
	}
	if comment.ThreadID != thread.ID || comment.ID == "" {
		t.Fatalf("回帖字段缺失: %+v", comment)
	}

	recs, _ := f.adapter.ReadOnce(ctx, "threads/eventi")
	var stored storage.Record
	for _, r := range recs {
		if r["id"] == thread.ID {
			stored = r
		}
	}
	if stored == nil {
		t.Fatal("主题丢失")
	}
	if stored["last_activity"] != comment.CreatedAt {
		t.Fatalf("last_activity 未刷新: %v", stored["last_activity"])
	}
	if c, ok := stored["reply_count"].(int64); !ok || c != 1 {
		t.Fatalf("reply_count = %v", stored["reply_count"])
	}

	// 主题作者收到回复通知
	notifications, err := f.notif.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(notifications) != 1 || notifications[0].Type != consts.NotifyTypeReply {
		t.Fatalf("回复通知缺失: %+v", notifications)
	}

	comments, err := f.threads.ListComments(ctx, sessMarco, "eventi", thread.ID)
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}
	if len(comments) != 1 || comments[0].Content != "io ci sono" {
		t.Fatalf("回帖列表: %+v", comments)
	}
}

func TestPostCommentOwnThreadNoSelfNotification(t *testing.T) {
	f := newThreadFixture(t)
	ctx := context.Background()

	thread, _ := f.threads.PostThread(ctx, sessMarco, "eventi",
		&dto.CreateThreadReq{Title: "diario", Content: "giorno 1"})
	if _, err := f.threads.PostComment(ctx, sessMarco, "eventi", thread.ID,
		&dto.CreateCommentReq{Content: "giorno 2"}); err != nil {
		t.Fatalf("PostComment: %v", err)
	}

	notifications, _ := f.notif.List(ctx, "u1")
	if len(notifications) != 0 {
		t.Fatalf("不应自我通知: %+v", notifications)
	}
}

func TestRegisterView(t *testing.T) {
	f := newThreadFixture(t)
	ctx := context.Background()

	thread, _ := f.threads.PostThread(ctx, sessMarco, "eventi",
		&dto.CreateThreadReq{Title: "notizie", Content: "testo"})
	for i := 0; i < 2; i++ {
		if err := f.threads.RegisterView(ctx, sessAnna, "eventi", thread.ID); err != nil {
			t.Fatalf("RegisterView: %v", err)
		}
	}

	recs, _ := f.adapter.ReadOnce(ctx, "threads/eventi")
	if c, _ := recs[0]["view_count"].(int64); c != 2 {
		t.Fatalf("view_count = %v", recs[0]["view_count"])
	}
}

// 场景：Marco 发帖提及 Anna 与 Luigi 并带上自己，恰好产生两条提及通知
func TestPostThreadMentionFanout(t *testing.T) {
	f := newThreadFixture(t)
	ctx := context.Background()

	_, err := f.threads.PostThread(ctx, sessMarco, "eventi",
		&dto.CreateThreadReq{Title: "raduno", Content: "@Anna @Luigi @Marco ci vediamo"})
	if err != nil {
		t.Fatalf("PostThread: %v", err)
	}

	for _, uid := range []string{"u2", "u5"} {
		notifications, _ := f.notif.List(ctx, uid)
		if len(notifications) != 1 || notifications[0].Type != consts.NotifyTypeMention {
			t.Fatalf("uid %s 提及通知 = %+v", uid, notifications)
		}
		if notifications[0].FromUserID != "u1" {
			t.Fatalf("来源错误: %+v", notifications[0])
		}
	}
	// 自提及被排除
	own, _ := f.notif.List(ctx, "u1")
	if len(own) != 0 {
		t.Fatalf("不应给自己发提及: %+v", own)
	}
}

func TestChatSendMessageAndMentions(t *testing.T) {
	f := newThreadFixture(t)
	ctx := context.Background()

	msg, err := f.chat.SendMessage(ctx, sessAnna, "chat-generale", &dto.SendMessageReq{Text: "ciao @Marco"})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if msg.ID == "" || msg.AuthorName != "Anna" {
		t.Fatalf("消息字段: %+v", msg)
	}

	notifications, _ := f.notif.List(ctx, "u1")
	if len(notifications) != 1 || notifications[0].Type != consts.NotifyTypeMention {
		t.Fatalf("聊天提及通知 = %+v", notifications)
	}

	// 论坛板块发消息被拒
	if _, err = f.chat.SendMessage(ctx, sessAnna, "eventi", &dto.SendMessageReq{Text: "x"}); !errors.Is(err, ErrSectionTypeMismatch) {
		t.Fatalf("err = %v", err)
	}
}

func TestSendSystemMessage(t *testing.T) {
	f := newThreadFixture(t)
	ctx := context.Background()

	if err := f.chat.SendSystemMessage(ctx, "chat-generale", "benvenuto"); err != nil {
		t.Fatalf("SendSystemMessage: %v", err)
	}
	msgs, err := f.chat.ListMessages(ctx, sessMarco, "chat-generale")
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 1 || !msgs[0].IsSystemMessage {
		t.Fatalf("系统消息: %+v", msgs)
	}
}
