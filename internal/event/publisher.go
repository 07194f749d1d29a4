package event

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	TopicOrderCreated       = "order-created"
	TopicOrderStatusUpdated = "order-status-updated"
)

// Publisher 负责把领域事件发布到 Kafka。
// nil Publisher 的所有方法都是安全的 no-op，未配置 broker 时服务照常运行。
type Publisher struct {
	brokers []string
	writers map[string]*kafka.Writer
	mu      sync.Mutex
}

// NewPublisher 创建事件发布器；brokers 为空时返回 nil。
func NewPublisher(brokers []string) *Publisher {
	if len(brokers) == 0 {
		return nil
	}
	return &Publisher{
		brokers: brokers,
		writers: make(map[string]*kafka.Writer),
	}
}

func (p *Publisher) writer(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()
	if w, ok := p.writers[topic]; ok {
		return w
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(p.brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
	p.writers[topic] = w
	return w
}

// Publish 将 payload 序列化为 JSON 后写入 topic；key 用于分区（同一订单进同一分区）。
func (p *Publisher) Publish(ctx context.Context, topic, key string, payload any) error {
	if p == nil {
		return nil
	}
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	}
	if err := p.writer(topic).WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write kafka message topic=%s: %w", topic, err)
	}
	return nil
}

// Close 关闭所有 writer。
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	var firstErr error
	for _, w := range p.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
