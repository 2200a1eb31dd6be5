package model

import "time"

// Comment 只能评论 tweet，不能评论评论
type Comment struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    *string   `gorm:"type:varchar(36);index" json:"user_id"`
	TweetID   *string   `gorm:"type:varchar(36);index:idx_comment_tweet_created,priority:1" json:"tweet_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index:idx_comment_tweet_created,priority:2" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Comment) TableName() string { return "comments" }
