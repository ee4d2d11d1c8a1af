// Package pipeline 定义了文档向量预热的处理流程。
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"study-assistant-go/internal/repository"
	"study-assistant-go/internal/retrieval"
	"study-assistant-go/pkg/kafka"
	"study-assistant-go/pkg/log"
	"study-assistant-go/pkg/tasks"
)

// ErrEmbeddingUnavailable 表示主模型与备用模型都未能生成分块向量。
var ErrEmbeddingUnavailable = errors.New("document embeddings unavailable")

// Processor 封装了向量预热的依赖和逻辑。
type Processor struct {
	docRepo repository.DocumentRepository
	engine  *retrieval.Engine
}

// NewProcessor 创建一个新的 Processor 实例。
func NewProcessor(docRepo repository.DocumentRepository, engine *retrieval.Engine) *Processor {
	return &Processor{docRepo: docRepo, engine: engine}
}

// Process 加载文档并确保其分块向量进入缓存。
func (p *Processor) Process(ctx context.Context, task tasks.EmbeddingTask) error {
	log.Infof("[Processor] 开始预热文档向量, DocumentID: %d, FileName: %s", task.DocumentID, task.Filename)

	doc, err := p.docRepo.FindByID(task.DocumentID)
	if err != nil {
		log.Errorf("[Processor] 加载文档失败, DocumentID: %d, Error: %v", task.DocumentID, err)
		return fmt.Errorf("加载文档失败: %w", err)
	}

	set := p.engine.GetOrCreateDocumentEmbeddings(ctx, doc.ID, doc.Content)
	if set.Empty() {
		log.Warnf("[Processor] 文档 %d 没有可用的分块向量", doc.ID)
		return ErrEmbeddingUnavailable
	}
	log.Infof("[Processor] 文档 %d 向量预热完成, 分块数: %d", doc.ID, len(set.Chunks))
	return nil
}

// InlineDispatcher 在当前请求内同步执行预热。
type InlineDispatcher struct {
	processor *Processor
}

// NewInlineDispatcher 创建进程内分发器。
func NewInlineDispatcher(processor *Processor) *InlineDispatcher {
	return &InlineDispatcher{processor: processor}
}

// Dispatch 直接调用 Processor。预热不随上传请求取消，客户端断开后依然完成并写入缓存。
func (d *InlineDispatcher) Dispatch(ctx context.Context, task tasks.EmbeddingTask) error {
	return d.processor.Process(context.WithoutCancel(ctx), task)
}

// KafkaDispatcher 把任务投递到 Kafka，由消费者异步执行。
type KafkaDispatcher struct{}

// Dispatch 发送任务到 Kafka。
func (KafkaDispatcher) Dispatch(ctx context.Context, task tasks.EmbeddingTask) error {
	return kafka.ProduceEmbeddingTask(ctx, task)
}
