// feedbench 测量写扩散：一个作者 N 个粉丝，连续发推并统计扇出耗时与读时间线耗时
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/gin-twitter/config"
	"github.com/d60-Lab/gin-twitter/internal/model"
	"github.com/d60-Lab/gin-twitter/internal/repository"
	"github.com/d60-Lab/gin-twitter/internal/service"
	"github.com/d60-Lab/gin-twitter/pkg/database"
)

func envInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return def
}

func pct(vs []time.Duration, p float64) time.Duration {
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(float64(len(xs)) * p)
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}

func avg(vs []time.Duration) time.Duration {
	var sum time.Duration
	for _, d := range vs {
		sum += d
	}
	return sum / time.Duration(len(vs))
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	cfg.Database.AutoMigrate = true
	db, err := database.InitDB(cfg)
	if err != nil {
		panic(err)
	}

	followers := envInt("FOLLOWERS", 1000)
	repeat := envInt("REPEAT", 20)
	ctx := context.Background()

	users := repository.NewUserRepository(db)
	follows := repository.NewFollowRepository(db)
	feeds := repository.NewNewsFeedRepository(db, cfg.Feed.InsertBatchSize)
	lookup := service.NewFollowerLookup(follows, users, nil)
	tweetRepo := repository.NewTweetRepository(db)
	fanout := service.NewFanoutService(lookup, feeds, repository.NewFanoutRetryRepository(db), tweetRepo)
	tweets := service.NewTweetService(db, tweetRepo, fanout, cfg.Feed.PageSize, cfg.Feed.MaxPageSize)
	feed := service.NewNewsFeedService(feeds, cfg.Feed.PageSize, cfg.Feed.MaxPageSize)

	// 每次运行用新的一批用户，避免和上次的数据互相影响
	run := uuid.NewString()[:8]
	newUser := func(name string) string {
		now := time.Now().UTC()
		u := &model.User{
			ID:           uuid.NewString(),
			Username:     fmt.Sprintf("%s_%s", run, name),
			Email:        fmt.Sprintf("%s_%s@bench.local", run, name),
			PasswordHash: "-",
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := users.Create(ctx, u); err != nil {
			panic(err)
		}
		return u.ID
	}

	author := newUser("author")
	var reader string
	for i := 0; i < followers; i++ {
		id := newUser(fmt.Sprintf("f%06d", i))
		if _, err := follows.Create(ctx, id, author, time.Now().UTC()); err != nil {
			panic(err)
		}
		if i == 0 {
			reader = id
		}
	}

	writes := make([]time.Duration, 0, repeat)
	for i := 0; i < repeat; i++ {
		_, res, err := tweets.Create(ctx, author, fmt.Sprintf("bench tweet %d", i))
		if err != nil {
			panic(err)
		}
		writes = append(writes, res.Duration)
	}

	reads := make([]time.Duration, 0, repeat)
	for i := 0; i < repeat; i++ {
		st := time.Now()
		if _, err := feed.ListFeed(ctx, reader, "", 0); err != nil {
			panic(err)
		}
		reads = append(reads, time.Since(st))
	}

	fmt.Printf("FOLLOWERS=%d REPEAT=%d BATCH=%d\n", followers, repeat, cfg.Feed.InsertBatchSize)
	fmt.Printf("Fan-out on write: avg=%v p95=%v p99=%v\n", avg(writes), pct(writes, 0.95), pct(writes, 0.99))
	fmt.Printf("Feed read:        avg=%v p95=%v p99=%v\n", avg(reads), pct(reads, 0.95), pct(reads, 0.99))
}
