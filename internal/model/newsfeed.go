package model

import "time"

// NewsFeed 时间线项：UserID 是能看到这条 tweet 的人，不是作者
// CreatedAt 为扇出时刻，冗余在这里是为了排序不必 join tweets
type NewsFeed struct {
	ID      string  `gorm:"primaryKey;type:varchar(36)"`
	UserID  *string `gorm:"type:varchar(36);uniqueIndex:ux_newsfeed_user_tweet;index:idx_newsfeed_user_created,priority:1"`
	TweetID *string `gorm:"type:varchar(36);uniqueIndex:ux_newsfeed_user_tweet;index:idx_newsfeed_tweet"`
	// 复合唯一键，避免重复 (user, tweet)
	// ux_newsfeed_user_tweet = (user_id, tweet_id)
	CreatedAt time.Time `gorm:"index:idx_newsfeed_user_created,priority:2"`
}

func (NewsFeed) TableName() string { return "newsfeeds" }
