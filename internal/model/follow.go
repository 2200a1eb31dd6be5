package model

import (
	"time"
)

// Follow 关注关系（FromUser 关注 ToUser）
// 用户被删除时对应字段置空而不是级联删除
type Follow struct {
	ID         string  `gorm:"primaryKey;type:varchar(36)"`
	FromUserID *string `gorm:"type:varchar(36);uniqueIndex:ux_follow_pair;index:idx_follow_from_created,priority:1"`
	ToUserID   *string `gorm:"type:varchar(36);uniqueIndex:ux_follow_pair;index:idx_follow_to_created,priority:1"`
	// 复合唯一键，避免重复关注
	// ux_follow_pair = (from_user_id, to_user_id)
	CreatedAt time.Time `gorm:"index:idx_follow_from_created,priority:2;index:idx_follow_to_created,priority:2"`
}

func (Follow) TableName() string { return "follows" }
