package conversation

import "time"

// Conversation は 2 人のユーザー間の会話です。Members は [送信者, 受信者] の順で保存されます。
type Conversation struct {
	ID        string
	Members   []string
	CreatedAt time.Time
}
