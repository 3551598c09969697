package storage

import (
	"context"
	log "log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// DefaultPollInterval 本地后端轮询默认间隔
const DefaultPollInterval = 5 * time.Second

// LocalAdapter 本地持久化键值后端，单 JSON 文件整读整写。
// 没有推送能力，订阅用轮询模拟；字段合并是读-改-写，
// 并发合并的竞态（偶发少计）是已接受的基线行为。
type LocalAdapter struct {
	filePath string
	poll     time.Duration

	mu      sync.RWMutex
	data    localData
	version map[string]uint64
}

type localData struct {
	Collections map[string][]Record `json:"collections"`
}

func NewLocalAdapter(filePath string, poll time.Duration) (*LocalAdapter, error) {
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	a := &LocalAdapter{
		filePath: filePath,
		poll:     poll,
		data:     localData{Collections: make(map[string][]Record)},
		version:  make(map[string]uint64),
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, wrapAs(ErrNetwork, err, "create storage dir")
	}
	if err := a.loadFromFile(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *LocalAdapter) loadFromFile() error {
	raw, err := os.ReadFile(a.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return wrapAs(ErrNetwork, err, "read storage file")
	}
	if err = json.Unmarshal(raw, &a.data); err != nil {
		return wrapAs(ErrValidation, err, "parse storage file")
	}
	if a.data.Collections == nil {
		a.data.Collections = make(map[string][]Record)
	}
	return nil
}

// saveToFile 调用方必须持有写锁
func (a *LocalAdapter) saveToFile() error {
	raw, err := json.MarshalIndent(a.data, "", "  ")
	if err != nil {
		return wrapAs(ErrValidation, err, "encode storage file")
	}
	if err = os.WriteFile(a.filePath, raw, 0644); err != nil {
		return wrapAs(ErrNetwork, err, "write storage file")
	}
	return nil
}

// Write 追加记录，id 由本端生成
func (a *LocalAdapter) Write(ctx context.Context, path string, rec Record) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	stored := Record{}
	for k, v := range rec {
		stored[k] = v
	}
	id := uuid.New().String()
	stored["id"] = id

	a.data.Collections[path] = append(a.data.Collections[path], stored)
	a.version[path]++
	if err := a.saveToFile(); err != nil {
		return "", err
	}
	return id, nil
}

// Update 读-改-写字段合并
func (a *LocalAdapter) Update(ctx context.Context, path, id string, fields Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	rec, ok := a.findLocked(path, id)
	if !ok {
		return wrapAs(ErrNotFound, nil, "local update")
	}
	for k, v := range fields {
		if k == "id" {
			continue
		}
		rec[k] = v
	}
	a.version[path]++
	return a.saveToFile()
}

// Increment 读-改-写计数自增
func (a *LocalAdapter) Increment(ctx context.Context, path, id, field string, delta int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	rec, ok := a.findLocked(path, id)
	if !ok {
		return wrapAs(ErrNotFound, nil, "local increment")
	}
	rec[field] = toInt64(rec[field]) + delta
	a.version[path]++
	return a.saveToFile()
}

// ReadOnce 返回路径下集合的深拷贝
func (a *LocalAdapter) ReadOnce(ctx context.Context, path string) ([]Record, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return cloneRecords(a.data.Collections[path]), nil
}

// Subscribe 轮询模拟推送：先投递当前快照，
// 之后每个 tick 比对版本号，变了才重新投递
func (a *LocalAdapter) Subscribe(ctx context.Context, path string, onSnapshot SnapshotFunc, onError ErrorFunc) (Subscription, error) {
	a.mu.RLock()
	seen := a.version[path]
	recs := cloneRecords(a.data.Collections[path])
	a.mu.RUnlock()

	sub := &localSubscription{stop: make(chan struct{})}
	onSnapshot(recs)

	go func() {
		ticker := time.NewTicker(a.poll)
		defer ticker.Stop()
		for {
			select {
			case <-sub.stop:
				return
			case <-ticker.C:
				a.mu.RLock()
				cur := a.version[path]
				var latest []Record
				if cur != seen {
					latest = cloneRecords(a.data.Collections[path])
				}
				a.mu.RUnlock()
				if cur == seen {
					continue
				}
				seen = cur
				select {
				case <-sub.stop:
					return
				default:
				}
				onSnapshot(latest)
			}
		}
	}()

	return sub, nil
}

type localSubscription struct {
	stop chan struct{}
	once sync.Once
}

func (s *localSubscription) Cancel() {
	s.once.Do(func() { close(s.stop) })
}

// findLocked 按 id 查找记录，调用方持锁
func (a *LocalAdapter) findLocked(path, id string) (Record, bool) {
	for _, rec := range a.data.Collections[path] {
		if rid, _ := rec["id"].(string); rid == id {
			return rec, true
		}
	}
	return nil, false
}

// cloneRecords JSON 往返深拷贝，避免订阅方看到未提交的修改
func cloneRecords(recs []Record) []Record {
	if len(recs) == 0 {
		return []Record{}
	}
	raw, err := json.Marshal(recs)
	if err != nil {
		log.Warn("记录拷贝失败", "err", err)
		return []Record{}
	}
	var out []Record
	if err = json.Unmarshal(raw, &out); err != nil {
		log.Warn("记录拷贝失败", "err", err)
		return []Record{}
	}
	return out
}

// toInt64 JSON 往返后数值可能是 float64
func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case int32:
		return int64(n)
	default:
		return 0
	}
}
