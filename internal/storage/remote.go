package storage

import (
	"context"
	"errors"
	log "log/slog"
	"strings"
	"sync/atomic"

	"Clanhub/internal/pkg/consts"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RemoteAdapter 远端推送式后端：MongoDB 存储 + Redis 频道推送变更。
// 集合按数据种类（路径第一段）划分，文档带 _path 字段定位。
type RemoteAdapter struct {
	db  *mongo.Database
	rdb *redis.Client
}

func NewRemoteAdapter(db *mongo.Database, rdb *redis.Client) *RemoteAdapter {
	return &RemoteAdapter{db: db, rdb: rdb}
}

// collectionName 取路径第一段作为集合名
func collectionName(path string) string {
	if i := strings.IndexByte(path, '/'); i > 0 {
		return path[:i]
	}
	return path
}

// Write 插入记录并广播路径变更
func (a *RemoteAdapter) Write(ctx context.Context, path string, rec Record) (string, error) {
	doc := bson.M{}
	for k, v := range rec {
		doc[k] = v
	}
	delete(doc, "id")
	doc["_path"] = path

	res, err := a.db.Collection(collectionName(path)).InsertOne(ctx, doc)
	if err != nil {
		return "", classifyMongo(err, "mongo insert")
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", wrapAs(ErrValidation, nil, "unexpected inserted id type")
	}
	a.publish(ctx, path)
	return oid.Hex(), nil
}

// Update 原子字段级合并（$set）
func (a *RemoteAdapter) Update(ctx context.Context, path, id string, fields Record) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return wrapAs(ErrValidation, err, "parse record id")
	}
	set := bson.M{}
	for k, v := range fields {
		if k == "id" {
			continue
		}
		set[k] = v
	}
	res, err := a.db.Collection(collectionName(path)).
		UpdateOne(ctx, bson.M{"_id": oid, "_path": path}, bson.M{"$set": set})
	if err != nil {
		return classifyMongo(err, "mongo update")
	}
	if res.MatchedCount == 0 {
		return wrapAs(ErrNotFound, nil, "mongo update")
	}
	a.publish(ctx, path)
	return nil
}

// Increment 原子计数器自增（$inc）
func (a *RemoteAdapter) Increment(ctx context.Context, path, id, field string, delta int64) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return wrapAs(ErrValidation, err, "parse record id")
	}
	res, err := a.db.Collection(collectionName(path)).
		UpdateOne(ctx, bson.M{"_id": oid, "_path": path}, bson.M{"$inc": bson.M{field: delta}})
	if err != nil {
		return classifyMongo(err, "mongo increment")
	}
	if res.MatchedCount == 0 {
		return wrapAs(ErrNotFound, nil, "mongo increment")
	}
	a.publish(ctx, path)
	return nil
}

// ReadOnce 读取路径下完整集合，按 created_at 升序
func (a *RemoteAdapter) ReadOnce(ctx context.Context, path string) ([]Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := a.db.Collection(collectionName(path)).Find(ctx, bson.M{"_path": path}, opts)
	if err != nil {
		return nil, classifyMongo(err, "mongo find")
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var docs []bson.M
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, classifyMongo(err, "mongo cursor")
	}

	recs := make([]Record, 0, len(docs))
	for _, doc := range docs {
		rec := Record{}
		for k, v := range doc {
			if k == "_id" || k == "_path" {
				continue
			}
			rec[k] = v
		}
		if oid, ok := doc["_id"].(primitive.ObjectID); ok {
			rec["id"] = oid.Hex()
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// Subscribe 先投递一次当前快照，之后监听 Redis 频道，
// 每收到变更事件就重读完整集合再投递
func (a *RemoteAdapter) Subscribe(ctx context.Context, path string, onSnapshot SnapshotFunc, onError ErrorFunc) (Subscription, error) {
	recs, err := a.ReadOnce(ctx, path)
	if err != nil {
		return nil, err
	}

	pubsub := a.rdb.Subscribe(ctx, consts.SyncChannelKey+path)
	if _, err = pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, wrapAs(ErrNetwork, err, "redis subscribe")
	}

	sub := &remoteSubscription{pubsub: pubsub}
	onSnapshot(recs)

	go func() {
		for range pubsub.Channel() {
			if sub.canceled.Load() {
				return
			}
			latest, rerr := a.ReadOnce(context.Background(), path)
			if rerr != nil {
				if !sub.canceled.Load() {
					onError(rerr)
				}
				return
			}
			if sub.canceled.Load() {
				return
			}
			onSnapshot(latest)
		}
		if !sub.canceled.Load() {
			onError(wrapAs(ErrNetwork, nil, "redis subscription closed"))
		}
	}()

	return sub, nil
}

// publish 推送失败只降级为日志：写入已持久化，订阅方最迟下次事件补齐
func (a *RemoteAdapter) publish(ctx context.Context, path string) {
	if err := a.rdb.Publish(ctx, consts.SyncChannelKey+path, "1").Err(); err != nil {
		log.Warn("路径变更广播失败", "path", path, "err", err)
	}
}

type remoteSubscription struct {
	pubsub   *redis.PubSub
	canceled atomic.Bool
}

func (s *remoteSubscription) Cancel() {
	if s.canceled.CompareAndSwap(false, true) {
		_ = s.pubsub.Close()
	}
}

// classifyMongo 把驱动错误归类到四类哨兵
func classifyMongo(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return wrapAs(ErrNotFound, err, op)
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && (cmdErr.Code == 13 || cmdErr.Code == 18) {
		return wrapAs(ErrPermission, err, op)
	}
	return wrapAs(ErrNetwork, err, op)
}
