// Package testutil 测试用的内存数据库与 Redis
package testutil

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/d60-Lab/gin-twitter/internal/model"
)

// NewDB 每个测试一个独立的内存 sqlite，已完成迁移
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// NewRedis 启动 miniredis 并返回客户端
func NewRedis(t testing.TB) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

// QueryCounter 统计经过 gorm query 回调的 SELECT 次数
type QueryCounter struct{ n atomic.Int64 }

func (c *QueryCounter) Load() int64 { return c.n.Load() }
func (c *QueryCounter) Reset()      { c.n.Store(0) }

// CountQueries 在 db 上挂一个计数回调
func CountQueries(t testing.TB, db *gorm.DB) *QueryCounter {
	t.Helper()
	c := &QueryCounter{}
	name := "testutil:count_" + uuid.NewString()
	if err := db.Callback().Query().After("gorm:query").Register(name, func(*gorm.DB) {
		c.n.Add(1)
	}); err != nil {
		t.Fatalf("register callback: %v", err)
	}
	return c
}

// Clock 每次调用前进 step，便于断言排序
type Clock struct {
	mu   sync.Mutex
	cur  time.Time
	step time.Duration
}

func NewClock(start time.Time, step time.Duration) *Clock {
	return &Clock{cur: start.UTC(), step: step}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(c.step)
	return c.cur
}
