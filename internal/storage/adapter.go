package storage

import (
	"context"
	"time"

	"github.com/goccy/go-json"
)

// Record 后端存储的通用记录，键为 snake_case 字段名
type Record = map[string]any

// SnapshotFunc 每次变更收到的都是完整的当前集合，不是增量。
// 这是硬性契约：订阅方不得假设增量负载。
type SnapshotFunc func(records []Record)

// ErrorFunc 异步订阅失败的回调
type ErrorFunc func(err error)

// Subscription 活跃订阅句柄
type Subscription interface {
	Cancel()
}

// Adapter 两种后端（远端推送 / 本地轮询）共用的统一接口。
// 写入失败不自动重试，由调用方可见；订阅的单次自动重连由上层负责。
type Adapter interface {
	// Write 追加一条记录，返回后端生成的 id
	Write(ctx context.Context, path string, rec Record) (string, error)
	// Update 按字段合并。远端为原子字段级更新；
	// 本地为读-改-写，字段并发合并存在竞态，属已接受的降级行为。
	Update(ctx context.Context, path, id string, fields Record) error
	// Increment 计数器自增。远端原子；本地读-改-写（偶发少计为基线行为）。
	Increment(ctx context.Context, path, id, field string, delta int64) error
	// ReadOnce 一次性读取路径下的完整集合
	ReadOnce(ctx context.Context, path string) ([]Record, error)
	// Subscribe 订阅路径变更，先同步投递一次当前快照
	Subscribe(ctx context.Context, path string, onSnapshot SnapshotFunc, onError ErrorFunc) (Subscription, error)
}

// NowStamp 统一时间戳格式，字典序即时间序
func NowStamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Encode 把领域模型编码为 Record
func Encode(v any) (Record, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err = json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Decode 把 Record 解码回领域模型
func Decode(rec Record, out any) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// DecodeAll 批量解码
func DecodeAll[T any](recs []Record) ([]T, error) {
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		var v T
		if err := Decode(rec, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
