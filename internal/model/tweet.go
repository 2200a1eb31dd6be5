package model

import "time"

const MaxContentLength = 140

// Tweet 推文主体
type Tweet struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    *string   `gorm:"type:varchar(36);index:idx_tweet_user_created,priority:1" json:"user_id"`
	Content   string    `gorm:"type:varchar(255);not null" json:"content"`
	CreatedAt time.Time `gorm:"index:idx_tweet_user_created,priority:2" json:"created_at"`
}

func (Tweet) TableName() string { return "tweets" }

// AuthorID 作者已注销时返回空串
func (t *Tweet) AuthorID() string {
	if t.UserID == nil {
		return ""
	}
	return *t.UserID
}
