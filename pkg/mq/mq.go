// Package mq 基于RabbitMQ发布订单领域事件
//
// 事件发布是尽力而为（best-effort）：
// 发布失败只记日志不回传错误，订单主流程不因MQ故障受阻。
// 下游（通知、报表）按routing key订阅 order.* 即可。
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// 订单事件routing key
const (
	RouteOrderCreated   = "order.created"
	RouteOrderCancelled = "order.cancelled"
	RouteOrderUpdated   = "order.updated"
	RouteOrderCleaned   = "order.cleaned"
)

// OrderEvent 订单事件载荷
type OrderEvent struct {
	OrderID   uint      `json:"order_id"`
	UserID    uint      `json:"user_id"`
	Status    string    `json:"status,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// EventPublisher 事件发布接口
// 应用层依赖此接口，MQ未配置时注入NopPublisher
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, routingKey string, event OrderEvent)
	Close() error
}

var (
	_ EventPublisher = (*Publisher)(nil)
	_ EventPublisher = NopPublisher{}
)

// Publisher 基于RabbitMQ的事件发布者
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewPublisher 连接RabbitMQ并声明topic exchange
//
// 步骤：
// 1. 建立连接
// 2. 打开Channel
// 3. 声明持久化Exchange（重启不丢失）
func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("创建Channel失败: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange,
		"topic",
		true,  // Durable
		false, // AutoDelete
		false, // Internal
		false, // NoWait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("声明Exchange失败: %w", err)
	}

	slog.Info("消息发布者已创建", "exchange", exchange)

	return &Publisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
	}, nil
}

// PublishOrderEvent 发布订单事件
// 失败只记日志：事件用于异步通知，不参与订单一致性
func (p *Publisher) PublishOrderEvent(ctx context.Context, routingKey string, event OrderEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	body, err := json.Marshal(event)
	if err != nil {
		slog.Error("事件序列化失败", "routing_key", routingKey, "error", err)
		return
	}

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		routingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.Timestamp,
		},
	)
	if err != nil {
		slog.Error("发布事件失败", "routing_key", routingKey, "order_id", event.OrderID, "error", err)
		return
	}

	slog.Debug("事件已发布", "routing_key", routingKey, "order_id", event.OrderID)
}

// Close 关闭发布者
func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}

// NopPublisher MQ未配置时的空实现
type NopPublisher struct{}

func (NopPublisher) PublishOrderEvent(ctx context.Context, routingKey string, event OrderEvent) {}

func (NopPublisher) Close() error { return nil }
