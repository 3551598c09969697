package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"Clanhub/internal/api/dto"
	"Clanhub/internal/api/middleware"
	"Clanhub/internal/model"
	"Clanhub/internal/pkg/consts"
	"Clanhub/internal/pkg/response"
	"Clanhub/internal/service"
	"Clanhub/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

// threadServiceStub 记录 Reject 入参，其余方法按需返回零值
type threadServiceStub struct {
	rejectCalls  int
	rejectReason string
}

func (s *threadServiceStub) PostThread(ctx context.Context, sess service.SessionContext, sectionKey string, req *dto.CreateThreadReq) (*model.Thread, error) {
	return &model.Thread{}, nil
}

func (s *threadServiceStub) ListThreads(ctx context.Context, sess service.SessionContext, sectionKey string) ([]model.Thread, error) {
	return nil, nil
}

func (s *threadServiceStub) PostComment(ctx context.Context, sess service.SessionContext, sectionKey, threadID string, req *dto.CreateCommentReq) (*model.Comment, error) {
	return &model.Comment{}, nil
}

func (s *threadServiceStub) ListComments(ctx context.Context, sess service.SessionContext, sectionKey, threadID string) ([]model.Comment, error) {
	return nil, nil
}

func (s *threadServiceStub) Approve(ctx context.Context, sess service.SessionContext, sectionKey, threadID string) (*model.Thread, error) {
	return &model.Thread{ID: threadID, Status: consts.ThreadStatusApproved}, nil
}

func (s *threadServiceStub) Reject(ctx context.Context, sess service.SessionContext, sectionKey, threadID, reason string) (*model.Thread, error) {
	s.rejectCalls++
	s.rejectReason = reason
	return &model.Thread{ID: threadID, Status: consts.ThreadStatusRejected, RejectionReason: reason}, nil
}

func (s *threadServiceStub) RegisterView(ctx context.Context, sess service.SessionContext, sectionKey, threadID string) error {
	return nil
}

func (s *threadServiceStub) VisibilityFilter(actor service.Actor, section model.Section) service.FilterFunc {
	return func(records []storage.Record) []storage.Record { return records }
}

func newRejectRouter(stub *threadServiceStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.SessionKey, service.SessionContext{UserID: "mod1", Username: "Marco", Role: "moderator"})
		c.Next()
	})
	h := NewThreadHandler(stub)
	r.PUT("/sections/:section/threads/:id/reject", h.RejectThread)
	return r
}

func doReject(t *testing.T, r *gin.Engine, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPut, "/sections/eventi/threads/t1/reject", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("响应不是 JSON: %v", err)
	}
	code, _ := resp["code"].(float64)
	return int(code), resp
}

// 驳回理由可选：空请求体也要走通
func TestRejectThreadEmptyBody(t *testing.T) {
	stub := &threadServiceStub{}
	r := newRejectRouter(stub)

	code, resp := doReject(t, r, "")
	if code != response.Ok {
		t.Fatalf("code = %d, body = %v", code, resp)
	}
	if stub.rejectCalls != 1 {
		t.Fatalf("Reject 调用次数 = %d, want 1", stub.rejectCalls)
	}
	if stub.rejectReason != "" {
		t.Fatalf("空请求体的理由 = %q, want 空", stub.rejectReason)
	}
}

func TestRejectThreadWithReason(t *testing.T) {
	stub := &threadServiceStub{}
	r := newRejectRouter(stub)

	code, _ := doReject(t, r, `{"reason":"spam"}`)
	if code != response.Ok {
		t.Fatalf("code = %d", code)
	}
	if stub.rejectReason != "spam" {
		t.Fatalf("理由未透传: %q", stub.rejectReason)
	}
}

func TestRejectThreadMalformedBody(t *testing.T) {
	stub := &threadServiceStub{}
	r := newRejectRouter(stub)

	code, _ := doReject(t, r, `{"reason":`)
	if code != response.BadRequest {
		t.Fatalf("畸形 JSON code = %d, want %d", code, response.BadRequest)
	}
	if stub.rejectCalls != 0 {
		t.Fatalf("畸形 JSON 不应触达服务层, calls = %d", stub.rejectCalls)
	}
}
