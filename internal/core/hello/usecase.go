package hello

import "context"

// Author は API の作者情報です。
type Author struct {
	Name  string
	Email string
	URL   string
}

// Welcome はルートエンドポイントで返却する案内です。
type Welcome struct {
	Message string
	Author  Author
}

// Greeter はウェルカムメッセージを生成するユースケースのインターフェースを定義します。
type Greeter interface {
	SayHello(ctx context.Context) (*Welcome, error)
}

// Service は Greeter ユースケースのデフォルト実装です。
type Service struct {
	welcome Welcome
}

// DefaultWelcome は設定がない場合に返却する内容です。
var DefaultWelcome = Welcome{
	Message: "Welcome to job board bd server",
	Author: Author{
		Name:  "Muhammad Touhiduzzaman",
		Email: "touhid4bd@gmail.com",
		URL:   "https://github.com/TouhidZaman",
	},
}

// NewService は Greeter ユースケースの新しいインスタンスを返します。
func NewService() *Service {
	return &Service{welcome: DefaultWelcome}
}

// SayHello はウェルカムメッセージのコピーを返却します。
func (s *Service) SayHello(ctx context.Context) (*Welcome, error) {
	w := s.welcome
	return &w, nil
}
