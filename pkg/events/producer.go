// Package events 提供了向 Kafka 发布任务变更事件的功能。
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"taskpilot-go/internal/config"
	"taskpilot-go/pkg/log"
)

// TaskEventType 标识任务事件的类型。
type TaskEventType string

const (
	TaskCreated   TaskEventType = "task.created"
	TaskUpdated   TaskEventType = "task.updated"
	TaskCompleted TaskEventType = "task.completed"
	TaskDeleted   TaskEventType = "task.deleted"
)

// TaskEvent 是发布到 Kafka 的任务变更事件载荷。
type TaskEvent struct {
	Type       TaskEventType `json:"type"`
	TaskID     uint          `json:"task_id"`
	UserID     string        `json:"user_id"`
	Title      string        `json:"title,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// Producer 定义了事件发布接口。事件发布是尽力而为的，
// 失败绝不影响触发它的业务请求。
type Producer interface {
	PublishTaskEvent(ctx context.Context, event TaskEvent)
	Close() error
}

// kafkaProducer 是 Producer 的 Kafka 实现。
type kafkaProducer struct {
	writer *kafka.Writer
}

// NewKafkaProducer 根据配置创建一个 Kafka 事件生产者。
func NewKafkaProducer(cfg config.KafkaConfig) Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Info("Kafka 生产者初始化成功")
	return &kafkaProducer{writer: writer}
}

// PublishTaskEvent 将事件序列化后写入 Kafka。失败仅记录日志。
func (p *kafkaProducer) PublishTaskEvent(ctx context.Context, event TaskEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Errorf("无法序列化任务事件: %v", err)
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.UserID),
		Value: payload,
	})
	if err != nil {
		log.Errorf("发布任务事件失败: type=%s, taskId=%d, err=%v", event.Type, event.TaskID, err)
	}
}

// Close 关闭底层的 Kafka writer。
func (p *kafkaProducer) Close() error {
	return p.writer.Close()
}

// noopProducer 在未启用 Kafka 时使用，仅记录 debug 日志。
type noopProducer struct{}

// NewNoopProducer 创建一个不做任何事情的事件生产者。
func NewNoopProducer() Producer {
	return &noopProducer{}
}

func (noopProducer) PublishTaskEvent(_ context.Context, event TaskEvent) {
	log.Debugf("任务事件（Kafka 未启用）: type=%s, taskId=%d", event.Type, event.TaskID)
}

func (noopProducer) Close() error { return nil }
