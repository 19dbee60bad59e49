package notify

import "context"

// Email は送信するメールの内容です。
type Email struct {
	To      string
	Subject string
	Body    string
}

// Notifier はメール通知を発行します。
// 通知はベストエフォートであり、失敗しても主処理を妨げてはいけません。
// 実装側で失敗をログに記録します (リトライは行いません)。
type Notifier interface {
	SendEmail(ctx context.Context, email Email)
}

// Nop は通知を破棄する Notifier です。ブローカー未設定時に使用します。
type Nop struct{}

// SendEmail は何もしません。
func (Nop) SendEmail(context.Context, Email) {}
