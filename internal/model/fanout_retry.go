package model

import "time"

const (
	FanoutRetryPending    = "pending"
	FanoutRetryProcessing = "processing"
	FanoutRetryDone       = "done"
	FanoutRetryFailed     = "failed"
	FanoutRetryCancelled  = "cancelled" // tweet 已删除，无需补偿
)

// FanoutRetry 扇出失败后的补偿记录，由 FanoutWorker 轮询重放
// FanoutAt 是首次扇出的时刻：重放只投递给此前已关注的人，时间线项也沿用该时刻
// ClaimedAt 是最近一次认领的时刻，processing 超过租期视为认领方已失联
type FanoutRetry struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)"`
	TweetID     string    `gorm:"type:varchar(36);uniqueIndex"`
	AuthorID    string    `gorm:"type:varchar(36);index:idx_fanout_retry_author"`
	FanoutAt    time.Time `gorm:"not null"`
	Status      string    `gorm:"type:varchar(16);index:idx_fanout_retry_status_created,priority:1"`
	Attempts    int
	LastError   string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"index:idx_fanout_retry_status_created,priority:2"`
	ClaimedAt   *time.Time
	ProcessedAt *time.Time
	FanoutCount int64
}

func (FanoutRetry) TableName() string { return "fanout_retries" }
