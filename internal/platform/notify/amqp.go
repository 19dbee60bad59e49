// Package notify は AMQP ブローカー経由でメール通知イベントを発行します。
// 実際のメール送信は下流のメーラーワーカーが担当します。
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	corenotify "github.com/workfound/workfound-server/internal/core/notify"
	"github.com/workfound/workfound-server/internal/platform/config"
)

// AMQPNotifier はメール通知を AMQP の fanout exchange に発行します。
// 発行はベストエフォートであり、失敗はログに記録して握りつぶします。
type AMQPNotifier struct {
	conn     *amqp.Connection
	exchange string
	logger   *slog.Logger
}

var _ corenotify.Notifier = (*AMQPNotifier)(nil)

// NewAMQPNotifier はブローカーに接続し exchange を宣言します。
func NewAMQPNotifier(cfg config.NotifyConfig, logger *slog.Logger) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("notify: dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("notify: open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(cfg.Exchange, "fanout", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("notify: declare exchange %s: %w", cfg.Exchange, err)
	}

	return &AMQPNotifier{
		conn:     conn,
		exchange: cfg.Exchange,
		logger:   logger,
	}, nil
}

type emailEvent struct {
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	QueuedAt  time.Time `json:"queued_at"`
	EventType string    `json:"event_type"`
}

// SendEmail はメールイベントを JSON で発行します。失敗しても主処理を妨げません。
func (n *AMQPNotifier) SendEmail(_ context.Context, email corenotify.Email) {
	body, err := json.Marshal(emailEvent{
		To:        email.To,
		Subject:   email.Subject,
		Body:      email.Body,
		QueuedAt:  time.Now().UTC(),
		EventType: "email",
	})
	if err != nil {
		n.logger.Error("notify: marshal email event", "error", err)
		return
	}

	ch, err := n.conn.Channel()
	if err != nil {
		n.logger.Error("notify: open channel", "error", err)
		return
	}
	defer ch.Close()

	err = ch.Publish(
		n.exchange,
		"mail.send",
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		n.logger.Error("notify: publish email event", "to", email.To, "error", err)
	}
}

// Close はブローカー接続を閉じます。
func (n *AMQPNotifier) Close() error {
	return n.conn.Close()
}
