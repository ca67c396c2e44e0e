package user

import "time"

// User はユーザーエンティティです。Fields には email 以外の任意の属性が入ります。
type User struct {
	ID        string
	Email     string
	Fields    map[string]any
	CreatedAt time.Time
}
