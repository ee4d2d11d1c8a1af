// Package generator 实现流式出题循环：调用模型、解析、按题干哈希去重、入库并推送事件。
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"study-assistant-go/internal/model"
	"study-assistant-go/pkg/hash"
	"study-assistant-go/pkg/log"
)

// TextGenerator 是生成模型的最小抽象，llm.Client 满足此接口。
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// QuestionStore 是循环依赖的题目存储，repository.QuestionRepository 满足此接口。
type QuestionStore interface {
	Create(q *model.Question) (*model.Question, error)
	Exists(documentID uint, questionHash string) (bool, error)
	ListByDocument(documentID uint) ([]model.Question, error)
}

// Emitter 接收事件；返回错误表示消费者已断开，循环随即停止。
type Emitter func(Event) error

// Options 配置重试预算与节奏。
type Options struct {
	MaxRetries     int
	RetryDelay     time.Duration
	SuccessDelay   time.Duration
	PreviousWindow int
	CallTimeout    time.Duration
}

// DefaultOptions 返回线上使用的默认值。
func DefaultOptions() Options {
	return Options{
		MaxRetries:     5,
		RetryDelay:     time.Second,
		SuccessDelay:   500 * time.Millisecond,
		PreviousWindow: 5,
		CallTimeout:    120 * time.Second,
	}
}

// Request 描述一次出题请求。
type Request struct {
	DocumentID   uint
	DocumentText string
	Count        int
	Difficulty   string
	Language     string
}

// Loop 是出题状态机，可被多个请求并发复用。
type Loop struct {
	generator TextGenerator
	store     QuestionStore
	opts      Options
}

// NewLoop 创建出题循环。opts 中非正的字段使用默认值（延迟允许为 0）。
func NewLoop(generator TextGenerator, store QuestionStore, opts Options) *Loop {
	def := DefaultOptions()
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = def.MaxRetries
	}
	if opts.PreviousWindow <= 0 {
		opts.PreviousWindow = def.PreviousWindow
	}
	if opts.RetryDelay < 0 {
		opts.RetryDelay = 0
	}
	if opts.SuccessDelay < 0 {
		opts.SuccessDelay = 0
	}
	return &Loop{generator: generator, store: store, opts: opts}
}

// Run 生成 req.Count 道不重复的题目并逐个推送，最后推送一个 done 或 failed 终止事件。
// 加载已有题目失败时推送 failed 后返回错误。
// ctx 取消或 emit 返回错误时立即停止，不再推送终止事件，并返回对应错误。
func (l *Loop) Run(ctx context.Context, req Request, emit Emitter) error {
	stored, err := l.store.ListByDocument(req.DocumentID)
	if err != nil {
		log.Errorf("[Generator] 文档 %d 加载已有题目失败: %v", req.DocumentID, err)
		// 流已经开始，必须以终止事件结束
		if emitErr := emit(Event{Kind: EventFailed, MaxRetries: l.opts.MaxRetries}); emitErr != nil {
			return emitErr
		}
		return fmt.Errorf("load previous questions: %w", err)
	}
	previous := make([]string, 0, len(stored)+req.Count)
	for _, q := range stored {
		previous = append(previous, q.QuestionText)
	}

	generated, retries := 0, 0
	for generated < req.Count && retries < l.opts.MaxRetries {
		if err := ctx.Err(); err != nil {
			return err
		}

		prompt := BuildPrompt(req.Language, req.Difficulty, req.DocumentText, RecentFirst(previous, l.opts.PreviousWindow))
		q, err := l.generateOne(ctx, prompt)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var saved *model.Question
		if err == nil {
			saved, err = l.persist(req.DocumentID, q)
		}
		if err != nil {
			retries++
			log.Warnf("[Generator] 文档 %d 第 %d 题生成失败 (重试 %d/%d): %v", req.DocumentID, generated+1, retries, l.opts.MaxRetries, err)
			if emitErr := emit(Event{Kind: EventRetrying, Number: generated + 1}); emitErr != nil {
				return emitErr
			}
			if err := sleep(ctx, l.opts.RetryDelay); err != nil {
				return err
			}
			continue
		}
		if saved == nil {
			// 重复题目，或并发写入时的唯一约束冲突
			retries++
			log.Infof("[Generator] 文档 %d 跳过重复题目 (重试 %d/%d)", req.DocumentID, retries, l.opts.MaxRetries)
			continue
		}

		previous = append(previous, saved.QuestionText)
		generated++
		retries = 0
		payload := &QuestionPayload{GeneratedQuestion: *q, ID: saved.ID}
		payload.CognitiveLevel = saved.CognitiveLevel
		if err := emit(Event{Kind: EventQuestion, Question: payload}); err != nil {
			return err
		}
		if err := sleep(ctx, l.opts.SuccessDelay); err != nil {
			return err
		}
	}

	log.Infof("[Generator] 文档 %d 生成结束, 成功 %d/%d", req.DocumentID, generated, req.Count)
	if generated >= req.Count {
		return emit(Event{Kind: EventDone})
	}
	return emit(Event{Kind: EventFailed, MaxRetries: l.opts.MaxRetries})
}

func (l *Loop) generateOne(ctx context.Context, prompt string) (*GeneratedQuestion, error) {
	callCtx := ctx
	if l.opts.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, l.opts.CallTimeout)
		defer cancel()
	}
	text, err := l.generator.Generate(callCtx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	return ParseQuestion(text)
}

// persist 返回 (nil, nil) 表示题目已存在。
func (l *Loop) persist(documentID uint, q *GeneratedQuestion) (*model.Question, error) {
	questionHash := hash.MD5Hex(q.Question)
	exists, err := l.store.Exists(documentID, questionHash)
	if err != nil {
		return nil, fmt.Errorf("check duplicate: %w", err)
	}
	if exists {
		return nil, nil
	}

	options, err := json.Marshal(q.Options)
	if err != nil {
		return nil, fmt.Errorf("marshal options: %w", err)
	}
	saved, err := l.store.Create(&model.Question{
		DocumentID:     documentID,
		QuestionText:   q.Question,
		QuestionHash:   questionHash,
		Options:        datatypes.JSON(options),
		CorrectAnswer:  q.CorrectAnswer,
		Explanation:    q.Explanation,
		CognitiveLevel: q.CognitiveLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("save question: %w", err)
	}
	return saved, nil
}

// sleep 等待 d，ctx 取消时提前返回。
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
