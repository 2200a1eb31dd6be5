// Package pagination 提供按 (created_at, id) 倒序的 keyset 游标。
package pagination

import (
	"encoding/base64"
	"errors"
	"time"

	"github.com/goccy/go-json"
)

var ErrInvalidCursor = errors.New("invalid cursor")

// Cursor 指向上一页最后一行
type Cursor struct {
	CreatedAt time.Time `json:"t"`
	ID        string    `json:"id"`
}

// Encode 生成不透明游标字符串
func Encode(c Cursor) string {
	raw, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// Decode 空字符串表示第一页，返回 nil
func Decode(s string) (*Cursor, error) {
	if s == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil || c.ID == "" || c.CreatedAt.IsZero() {
		return nil, ErrInvalidCursor
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}

// ClampLimit 把 limit 限制到 [1, max]，非法值回落到 def
func ClampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
