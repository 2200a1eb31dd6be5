package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/d60-Lab/gin-twitter/internal/metrics"
	"github.com/d60-Lab/gin-twitter/internal/model"
	"github.com/d60-Lab/gin-twitter/internal/repository"
	"github.com/d60-Lab/gin-twitter/pkg/logger"
)

// FanOutResult 一次扇出的结果
type FanOutResult struct {
	TweetID    string
	Recipients int   // 构造的时间线项数（粉丝 + 作者）
	Inserted   int64 // 实际新写入的行数，重放时可能小于 Recipients
	Duration   time.Duration
}

// FanoutService 写扩散：发推时同步把 tweet 写入作者和所有粉丝的时间线
type FanoutService interface {
	FanOut(ctx context.Context, tweetID, authorID string) (*FanOutResult, error)
	// Redeliver 补偿重放：只投递给 fanoutAt 之前已关注的人，时间线项沿用 fanoutAt
	Redeliver(ctx context.Context, tweetID, authorID string, fanoutAt time.Time) (*FanOutResult, error)
}

type fanoutService struct {
	lookup    FollowerLookup
	feedRepo  repository.NewsFeedRepository
	retryRepo repository.FanoutRetryRepository
	tweetRepo repository.TweetRepository // 为空时 Redeliver 不检查 tweet 是否还在
	now       func() time.Time
}

func NewFanoutService(lookup FollowerLookup, feedRepo repository.NewsFeedRepository, retryRepo repository.FanoutRetryRepository, tweetRepo repository.TweetRepository) FanoutService {
	return &fanoutService{lookup: lookup, feedRepo: feedRepo, retryRepo: retryRepo, tweetRepo: tweetRepo, now: utcNow}
}

func utcNow() time.Time { return time.Now().UTC() }

// FanOut 失败时返回 *PartialFanOutError，并登记补偿记录
func (s *fanoutService) FanOut(ctx context.Context, tweetID, authorID string) (*FanOutResult, error) {
	at := s.now()
	res, err := s.deliver(ctx, tweetID, authorID, at, nil)
	if err == nil {
		return res, nil
	}

	pe, _ := err.(*PartialFanOutError)
	stage := "unknown"
	if pe != nil {
		stage = pe.Stage
	}
	metrics.FanoutFailures.WithLabelValues(stage).Inc()
	logger.Warn("fan-out incomplete, scheduling retry",
		zap.String("tweet", tweetID), zap.String("author", authorID), zap.String("stage", stage), zap.Error(err))
	if s.retryRepo != nil {
		// 用独立 context：调用方超时不应阻止登记补偿
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
		defer cancel()
		if rerr := s.retryRepo.Enqueue(rctx, tweetID, authorID, at, err.Error()); rerr != nil {
			logger.Error("enqueue fan-out retry failed", zap.String("tweet", tweetID), zap.Error(rerr))
		}
	}
	return res, err
}

// Redeliver tweet 已删除时返回 ErrTweetNotFound，不写时间线
func (s *fanoutService) Redeliver(ctx context.Context, tweetID, authorID string, fanoutAt time.Time) (*FanOutResult, error) {
	if err := s.tweetAlive(ctx, tweetID); err != nil {
		return &FanOutResult{TweetID: tweetID}, err
	}
	asOf := fanoutAt
	res, err := s.deliver(ctx, tweetID, authorID, fanoutAt, &asOf)
	if err != nil {
		return res, err
	}
	// 写入期间 tweet 被删，撤回刚写的时间线项
	if err := s.tweetAlive(ctx, tweetID); err != nil {
		if errors.Is(err, ErrTweetNotFound) {
			if derr := s.feedRepo.DetachTweet(ctx, tweetID); derr != nil {
				return res, derr
			}
		}
		return res, err
	}
	return res, nil
}

func (s *fanoutService) tweetAlive(ctx context.Context, tweetID string) error {
	if s.tweetRepo == nil {
		return nil
	}
	ok, err := s.tweetRepo.Exists(ctx, tweetID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTweetNotFound
	}
	return nil
}

// deliver 执行一次扇出；asOf 非空时只投递给 asOf 之前的粉丝（补偿重放用）
func (s *fanoutService) deliver(ctx context.Context, tweetID, authorID string, at time.Time, asOf *time.Time) (*FanOutResult, error) {
	start := time.Now()
	res := &FanOutResult{TweetID: tweetID}

	var (
		followers []*model.User
		err       error
	)
	if asOf == nil {
		followers, err = s.lookup.GetFollowers(ctx, authorID)
	} else {
		followers, err = s.lookup.GetFollowersAsOf(ctx, authorID, *asOf)
	}
	if err != nil {
		return res, &PartialFanOutError{TweetID: tweetID, Stage: "lookup", Err: err}
	}

	recipients := recipientSet(authorID, followers)
	entries := make([]*model.NewsFeed, 0, len(recipients))
	for _, uid := range recipients {
		entries = append(entries, &model.NewsFeed{
			ID:        uuid.New().String(),
			UserID:    model.StrPtr(uid),
			TweetID:   model.StrPtr(tweetID),
			CreatedAt: at,
		})
	}
	res.Recipients = len(entries)

	n, err := s.feedRepo.BulkInsert(ctx, entries)
	res.Inserted = n
	res.Duration = time.Since(start)
	if err != nil {
		return res, &PartialFanOutError{TweetID: tweetID, Stage: "insert", Err: err}
	}

	metrics.FanoutDuration.Observe(res.Duration.Seconds())
	metrics.FanoutRecipients.Observe(float64(res.Recipients))
	return res, nil
}

// recipientSet 粉丝 ∪ 作者，去重；作者不是自己的粉丝但要能看到自己的 tweet
func recipientSet(authorID string, followers []*model.User) []string {
	seen := make(map[string]struct{}, len(followers)+1)
	out := make([]string, 0, len(followers)+1)
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	add(authorID)
	for _, f := range followers {
		add(f.ID)
	}
	return out
}

// FanoutWorkerConfig 零值字段取默认值
type FanoutWorkerConfig struct {
	Workers      int
	ClaimLimit   int
	MaxAttempts  int
	PollInterval time.Duration
	Lease        time.Duration // 认领后超过该时长未回写，记录可被重新认领
}

// FanoutWorker 轮询 fanout_retries 重放失败的扇出
type FanoutWorker struct {
	fanout       FanoutService
	retryRepo    repository.FanoutRetryRepository
	workers      int
	claimLimit   int
	maxAttempts  int
	pollInterval time.Duration
	lease        time.Duration
	now          func() time.Time
	metricsCh    chan time.Duration // 首次扇出 -> 补偿完成的耗时
}

func NewFanoutWorker(fanout FanoutService, retryRepo repository.FanoutRetryRepository, cfg FanoutWorkerConfig) *FanoutWorker {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.ClaimLimit <= 0 {
		cfg.ClaimLimit = 32
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.Lease <= 0 {
		cfg.Lease = 5 * time.Minute
	}
	return &FanoutWorker{
		fanout:       fanout,
		retryRepo:    retryRepo,
		workers:      cfg.Workers,
		claimLimit:   cfg.ClaimLimit,
		maxAttempts:  cfg.MaxAttempts,
		pollInterval: cfg.PollInterval,
		lease:        cfg.Lease,
		now:          utcNow,
		metricsCh:    make(chan time.Duration, 1024),
	}
}

func (w *FanoutWorker) Metrics() <-chan time.Duration { return w.metricsCh }

// Start 启动若干 worker；返回的停止函数会等待进行中的批次结束
func (w *FanoutWorker) Start() func(context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	for i := 0; i < w.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.loop(ctx)
		}()
	}
	return func(stopCtx context.Context) error {
		cancel()
		done := make(chan struct{})
		go func() { wg.Wait(); close(done) }()
		select {
		case <-done:
			return nil
		case <-stopCtx.Done():
			return stopCtx.Err()
		}
	}
}

func (w *FanoutWorker) loop(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.ProcessOnce(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("fan-out retry poll failed", zap.Error(err))
			}
		}
	}
}

// ProcessOnce 认领一批补偿记录并逐条重放，返回成功条数
func (w *FanoutWorker) ProcessOnce(ctx context.Context) (int, error) {
	batch, err := w.retryRepo.Claim(ctx, w.now(), w.lease, w.claimLimit)
	if err != nil {
		return 0, err
	}
	done := 0
	for _, job := range batch {
		res, err := w.fanout.Redeliver(ctx, job.TweetID, job.AuthorID, job.FanoutAt)
		if errors.Is(err, ErrTweetNotFound) {
			if _, cerr := w.retryRepo.CancelByTweet(ctx, job.TweetID, w.now()); cerr != nil {
				logger.Error("cancel fan-out retry failed", zap.String("id", job.ID), zap.Error(cerr))
				continue
			}
			metrics.FanoutRetries.WithLabelValues("cancelled").Inc()
			logger.Info("fan-out retry cancelled, tweet deleted", zap.String("tweet", job.TweetID))
			continue
		}
		if err != nil {
			metrics.FanoutRetries.WithLabelValues("error").Inc()
			logger.Warn("fan-out retry failed",
				zap.String("tweet", job.TweetID), zap.Int("attempts", job.Attempts+1), zap.Error(err))
			if merr := w.retryRepo.MarkRetry(ctx, job.ID, err.Error(), w.maxAttempts); merr != nil {
				logger.Error("mark fan-out retry failed", zap.String("id", job.ID), zap.Error(merr))
			}
			continue
		}
		if err := w.retryRepo.MarkDone(ctx, job.ID, res.Inserted, w.now()); err != nil {
			logger.Error("mark fan-out retry done failed", zap.String("id", job.ID), zap.Error(err))
			continue
		}
		metrics.FanoutRetries.WithLabelValues("done").Inc()
		done++
		select {
		case w.metricsCh <- time.Since(job.FanoutAt):
		default:
		}
	}
	return done, nil
}
