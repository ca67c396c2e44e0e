package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ogurasousui/jobboard-clean-arch/internal/core/job"
	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher は求人イベントを RabbitMQ の topic exchange へ配信します。
// ルーティングキーはイベント種別 (例: job.applied) です。
type Publisher struct {
	conn     *amqp.Connection
	ch       channel
	exchange string
	logger   *slog.Logger
}

// NewPublisher は RabbitMQ へ接続し、exchange を宣言した Publisher を返します。
func NewPublisher(url, exchange string, logger *slog.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: declare exchange %s: %w", exchange, err)
	}

	p := newPublisher(ch, exchange, logger)
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, exchange string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{ch: ch, exchange: exchange, logger: logger}
}

// Publish はイベントを JSON で配信します。失敗はログに記録するのみで呼び出し元へは返しません。
func (p *Publisher) Publish(ctx context.Context, event job.Event) {
	body, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "marshal job event", slog.String("type", string(event.Type)), slog.Any("error", err))
		return
	}

	// リクエストのキャンセルに巻き込まれないよう、配信は独立したタイムアウトで行います。
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.ch.PublishWithContext(
		pubCtx,
		p.exchange,
		string(event.Type),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
			Body:         body,
		},
	); err != nil {
		p.logger.WarnContext(ctx, "publish job event",
			slog.String("type", string(event.Type)),
			slog.String("job_id", event.JobID),
			slog.Any("error", err),
		)
	}
}

// Close はチャネルと接続を閉じます。
func (p *Publisher) Close() error {
	var err error
	if p.ch != nil {
		err = p.ch.Close()
	}
	if p.conn != nil {
		if cerr := p.conn.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
