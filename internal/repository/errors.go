package repository

import "errors"

var (
	// ErrDuplicateEdge 唯一约束拒绝了重复的 (from, to)
	ErrDuplicateEdge = errors.New("follow edge already exists")
	// ErrSelfFollow from == to
	ErrSelfFollow    = errors.New("cannot follow self")
	ErrDuplicateLike = errors.New("like already exists")
	ErrNotFound      = errors.New("record not found")
)
