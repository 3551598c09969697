package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"Clanhub/internal/model"
	"Clanhub/internal/storage"
)

// fakeAdapter 进程内后端，写入即同步推送，模拟远端推送语义。
type fakeAdapter struct {
	mu          sync.Mutex
	collections map[string][]storage.Record
	subs        map[string][]*fakeSub
	nextID      int

	subscribeCalls int
	failSubscribe  error
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{
		collections: make(map[string][]storage.Record),
		subs:        make(map[string][]*fakeSub),
	}
}

type fakeSub struct {
	adapter    *fakeAdapter
	path       string
	onSnapshot storage.SnapshotFunc
	onError    storage.ErrorFunc
	canceled   bool
}

func (s *fakeSub) Cancel() {
	s.adapter.mu.Lock()
	defer s.adapter.mu.Unlock()
	s.canceled = true
}

func (a *fakeAdapter) Write(ctx context.Context, path string, rec storage.Record) (string, error) {
	a.mu.Lock()
	stored := storage.Record{}
	for k, v := range rec {
		stored[k] = v
	}
	a.nextID++
	id := fmt.Sprintf("r%d", a.nextID)
	stored["id"] = id
	a.collections[path] = append(a.collections[path], stored)
	a.mu.Unlock()

	a.pushPath(path)
	return id, nil
}

func (a *fakeAdapter) Update(ctx context.Context, path, id string, fields storage.Record) error {
	a.mu.Lock()
	rec, ok := a.findLocked(path, id)
	if !ok {
		a.mu.Unlock()
		return storage.ErrNotFound
	}
	for k, v := range fields {
		if k == "id" {
			continue
		}
		rec[k] = v
	}
	a.mu.Unlock()

	a.pushPath(path)
	return nil
}

func (a *fakeAdapter) Increment(ctx context.Context, path, id, field string, delta int64) error {
	a.mu.Lock()
	rec, ok := a.findLocked(path, id)
	if !ok {
		a.mu.Unlock()
		return storage.ErrNotFound
	}
	cur, _ := rec[field].(int64)
	rec[field] = cur + delta
	a.mu.Unlock()

	a.pushPath(path)
	return nil
}

func (a *fakeAdapter) ReadOnce(ctx context.Context, path string) ([]storage.Record, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked(path), nil
}

func (a *fakeAdapter) Subscribe(ctx context.Context, path string, onSnapshot storage.SnapshotFunc, onError storage.ErrorFunc) (storage.Subscription, error) {
	a.mu.Lock()
	a.subscribeCalls++
	if a.failSubscribe != nil {
		err := a.failSubscribe
		a.mu.Unlock()
		return nil, err
	}
	sub := &fakeSub{adapter: a, path: path, onSnapshot: onSnapshot, onError: onError}
	a.subs[path] = append(a.subs[path], sub)
	recs := a.snapshotLocked(path)
	a.mu.Unlock()

	onSnapshot(recs)
	return sub, nil
}

// pushPath 同步触发路径上所有活跃订阅
func (a *fakeAdapter) pushPath(path string) {
	a.mu.Lock()
	var targets []*fakeSub
	for _, s := range a.subs[path] {
		if !s.canceled {
			targets = append(targets, s)
		}
	}
	recs := a.snapshotLocked(path)
	a.mu.Unlock()

	for _, s := range targets {
		s.onSnapshot(recs)
	}
}

// failActive 给路径上的活跃订阅注入异步错误
func (a *fakeAdapter) failActive(path string, err error) {
	a.mu.Lock()
	var targets []*fakeSub
	for _, s := range a.subs[path] {
		if !s.canceled {
			targets = append(targets, s)
		}
	}
	a.mu.Unlock()

	for _, s := range targets {
		s.onError(err)
	}
}

func (a *fakeAdapter) activeSubs(path string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, s := range a.subs[path] {
		if !s.canceled {
			n++
		}
	}
	return n
}

func (a *fakeAdapter) findLocked(path, id string) (storage.Record, bool) {
	for _, rec := range a.collections[path] {
		if rid, _ := rec["id"].(string); rid == id {
			return rec, true
		}
	}
	return nil, false
}

func (a *fakeAdapter) snapshotLocked(path string) []storage.Record {
	out := make([]storage.Record, 0, len(a.collections[path]))
	for _, rec := range a.collections[path] {
		cp := storage.Record{}
		for k, v := range rec {
			cp[k] = v
		}
		out = append(out, cp)
	}
	return out
}

// fakeUserRepo 内存规范用户库
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*model.User)}
	for _, u := range users {
		r.users[u.UID] = u
	}
	return r
}

func (r *fakeUserRepo) add(u *model.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.UID] = u
}

func (r *fakeUserRepo) GetByUID(ctx context.Context, uid string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[uid]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) ListAll(ctx context.Context) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeUserRepo) SearchByUsernamePrefix(ctx context.Context, prefix string, limit int) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.User
	for _, u := range r.users {
		if strings.HasPrefix(strings.ToLower(u.Username), strings.ToLower(prefix)) {
			cp := *u
			out = append(out, &cp)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}
