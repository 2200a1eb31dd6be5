package model

// All 返回需要迁移的全部模型
func All() []interface{} {
	return []interface{}{
		&User{},
		&Follow{},
		&Tweet{},
		&NewsFeed{},
		&FanoutRetry{},
		&Comment{},
		&Like{},
	}
}

// StrPtr 可空外键字段的便捷构造
func StrPtr(s string) *string { return &s }
