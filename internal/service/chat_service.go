package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"study-assistant-go/internal/model"
	"study-assistant-go/internal/repository"
	"study-assistant-go/internal/retrieval"
	"study-assistant-go/pkg/log"
)

// TextGenerator 是聊天所需的生成模型抽象，llm.Client 满足此接口。
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ChatRequest 是聊天接口的请求体。
type ChatRequest struct {
	DocumentID     uint                  `json:"document_id"`
	Message        string                `json:"message"`
	History        []model.ChatMessage   `json:"history"`
	WrongQuestions []model.WrongQuestion `json:"wrong_questions"`
	Language       string                `json:"language"`
}

// ChatService 接口定义了基于文档的辅导对话。
type ChatService interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
	History(ctx context.Context, documentID uint) ([]model.ChatMessage, error)
}

type chatService struct {
	docRepo     repository.DocumentRepository
	historyRepo repository.ChatHistoryRepository
	engine      *retrieval.Engine
	llm         TextGenerator
	timeout     time.Duration
}

// NewChatService 创建一个新的 ChatService 实例。timeout 为单次模型调用的上限，0 表示不限制。
func NewChatService(docRepo repository.DocumentRepository, historyRepo repository.ChatHistoryRepository, engine *retrieval.Engine, llm TextGenerator, timeout time.Duration) ChatService {
	return &chatService{
		docRepo:     docRepo,
		historyRepo: historyRepo,
		engine:      engine,
		llm:         llm,
		timeout:     timeout,
	}
}

// Chat 检索与消息最相关的文档片段，组装辅导提示词并调用模型。
func (s *chatService) Chat(ctx context.Context, req ChatRequest) (string, error) {
	if req.DocumentID == 0 || strings.TrimSpace(req.Message) == "" {
		return "", invalid("Missing required data")
	}
	doc, err := s.docRepo.FindByID(req.DocumentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrDocumentNotFound
	}
	if err != nil {
		return "", err
	}

	set := s.engine.GetOrCreateDocumentEmbeddings(ctx, doc.ID, doc.Content)
	excerpts := s.engine.FindRelevantChunks(ctx, req.Message, set.Chunks, set.Vectors)
	prompt := buildTutorPrompt(req.Language, excerpts, req.WrongQuestions, req.History, req.Message)

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	response, err := s.llm.Generate(callCtx, prompt)
	if err != nil {
		log.Errorf("[ChatService] 文档 %d 生成回复失败: %v", doc.ID, err)
		return "", fmt.Errorf("%w: %v", ErrChatFailed, err)
	}
	response = strings.TrimSpace(response)

	now := time.Now()
	if err := s.historyRepo.AppendHistory(ctx, doc.ID,
		model.ChatMessage{Role: "user", Content: req.Message, Timestamp: now},
		model.ChatMessage{Role: "assistant", Content: response, Timestamp: now},
	); err != nil {
		log.Warnf("[ChatService] 保存聊天记录失败, document: %d, error: %v", doc.ID, err)
	}
	return response, nil
}

func (s *chatService) History(ctx context.Context, documentID uint) ([]model.ChatMessage, error) {
	if _, err := s.docRepo.FindByID(documentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return s.historyRepo.GetHistory(ctx, documentID)
}
