// Package kafka 提供了与 Kafka 消息队列交互的功能。
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"study-assistant-go/internal/config"
	"study-assistant-go/pkg/log"
	"study-assistant-go/pkg/tasks"
)

// maxAttempts 是单条消息在当前消费者内的最大处理次数，之后无论成败都提交 offset。
const maxAttempts = 3

// retryDelay 是两次处理之间的等待时间。
var retryDelay = 2 * time.Second

// TaskProcessor defines the interface for any service that can process a task.
// This decouples the Kafka consumer from the concrete pipeline implementation.
type TaskProcessor interface {
	Process(ctx context.Context, task tasks.EmbeddingTask) error
}

var producer *kafka.Writer

// Enabled 报告是否配置了 Kafka。
func Enabled(cfg config.KafkaConfig) bool {
	return strings.TrimSpace(cfg.Brokers) != ""
}

func brokers(cfg config.KafkaConfig) []string {
	var out []string
	for _, b := range strings.Split(cfg.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// InitProducer 初始化 Kafka 生产者。
func InitProducer(cfg config.KafkaConfig) {
	producer = &kafka.Writer{
		Addr:                   kafka.TCP(brokers(cfg)...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	log.Info("Kafka 生产者初始化成功")
}

// ProduceEmbeddingTask 发送一个向量预热任务到 Kafka。
func ProduceEmbeddingTask(ctx context.Context, task tasks.EmbeddingTask) error {
	if producer == nil {
		return errors.New("kafka producer is not initialized")
	}
	taskBytes, err := json.Marshal(task)
	if err != nil {
		return err
	}

	return producer.WriteMessages(ctx,
		kafka.Message{
			Key:   []byte(fmt.Sprintf("%d", task.DocumentID)),
			Value: taskBytes,
		},
	)
}

// CloseProducer 关闭生产者并刷新未发送的消息。
func CloseProducer() {
	if producer == nil {
		return
	}
	if err := producer.Close(); err != nil {
		log.Errorf("关闭 Kafka 生产者失败: %v", err)
	}
}

// StartConsumer 启动一个 Kafka 消费者来处理向量预热任务，ctx 取消后退出。
func StartConsumer(ctx context.Context, cfg config.KafkaConfig, processor TaskProcessor) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers(cfg),
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})

	log.Infof("Kafka 消费者已启动，正在监听主题 '%s'", cfg.Topic)

	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Error("从 Kafka 读取消息失败", err)
			}
			break
		}

		log.Infof("收到 Kafka 消息: offset %d", m.Offset)

		var task tasks.EmbeddingTask
		if err := json.Unmarshal(m.Value, &task); err != nil {
			log.Errorf("无法解析 Kafka 消息: %v, value: %s", err, string(m.Value))
			// 消息格式错误，直接提交，避免阻塞队列
			commit(ctx, r, m)
			continue
		}

		log.Infof("开始处理向量预热任务: DocumentID=%d", task.DocumentID)
		if err := processWithRetry(ctx, processor, task); err != nil {
			if ctx.Err() != nil {
				// 关闭中，不提交 offset，重启后由消费组重新投递
				break
			}
			log.Errorf("向量预热任务失败 %d 次，提交 offset 放弃: DocumentID=%d, Error: %v", maxAttempts, task.DocumentID, err)
		} else {
			log.Infof("向量预热任务处理成功: DocumentID=%d", task.DocumentID)
		}
		commit(ctx, r, m)
	}

	if err := r.Close(); err != nil {
		log.Errorf("关闭 Kafka 消费者失败: %v", err)
	}
}

// processWithRetry 在原地重试同一任务，FetchMessage 不会重新投递未提交的消息。
func processWithRetry(ctx context.Context, processor TaskProcessor, task tasks.EmbeddingTask) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = processor.Process(ctx, task); err == nil {
			return nil
		}
		log.Warnf("处理向量预热任务失败 (%d/%d): DocumentID=%d, Error: %v", attempt, maxAttempts, task.DocumentID, err)
		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	return err
}

func commit(ctx context.Context, r *kafka.Reader, m kafka.Message) {
	if err := r.CommitMessages(ctx, m); err != nil {
		log.Errorf("提交 Kafka 消息 offset 失败: %v", err)
	}
}
