package model

import (
	"fmt"
	"time"
)

// TargetKind 点赞对象类型
type TargetKind string

const (
	TargetTweet   TargetKind = "tweet"
	TargetComment TargetKind = "comment"
)

func ParseTargetKind(s string) (TargetKind, error) {
	switch TargetKind(s) {
	case TargetTweet, TargetComment:
		return TargetKind(s), nil
	}
	return "", fmt.Errorf("unknown like target %q", s)
}

// LikeTarget 被点赞的对象：类型 + id
type LikeTarget struct {
	Kind TargetKind
	ID   string
}

type Like struct {
	ID         string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID     *string    `gorm:"type:varchar(36);uniqueIndex:ux_like_user_target,priority:1;index:idx_like_user_kind_created,priority:1" json:"user_id"`
	TargetKind TargetKind `gorm:"type:varchar(16);not null;uniqueIndex:ux_like_user_target,priority:2;index:idx_like_target_created,priority:1;index:idx_like_user_kind_created,priority:2" json:"target_kind"`
	TargetID   string     `gorm:"type:varchar(36);not null;uniqueIndex:ux_like_user_target,priority:3;index:idx_like_target_created,priority:2" json:"target_id"`
	CreatedAt  time.Time  `gorm:"index:idx_like_target_created,priority:3;index:idx_like_user_kind_created,priority:3" json:"created_at"`
}

func (Like) TableName() string { return "likes" }

func (l *Like) Target() LikeTarget {
	return LikeTarget{Kind: l.TargetKind, ID: l.TargetID}
}
