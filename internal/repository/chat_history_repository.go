package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"study-assistant-go/internal/model"
)

const (
	chatHistoryLimit = 20
	chatHistoryTTL   = 7 * 24 * time.Hour
)

// ChatHistoryRepository 定义了每个文档的辅导对话记录操作。
type ChatHistoryRepository interface {
	GetHistory(ctx context.Context, documentID uint) ([]model.ChatMessage, error)
	AppendHistory(ctx context.Context, documentID uint, messages ...model.ChatMessage) error
}

// NewChatHistoryRepository 在 redisClient 非空时使用 Redis，否则退化为进程内存储。
func NewChatHistoryRepository(redisClient *redis.Client) ChatHistoryRepository {
	if redisClient == nil {
		return &memoryChatHistoryRepository{history: make(map[uint][]model.ChatMessage)}
	}
	return &redisChatHistoryRepository{redisClient: redisClient}
}

type redisChatHistoryRepository struct {
	redisClient *redis.Client
}

func chatHistoryKey(documentID uint) string {
	return fmt.Sprintf("chat:document:%d", documentID)
}

// GetHistory 从 Redis 获取对话历史记录。
func (r *redisChatHistoryRepository) GetHistory(ctx context.Context, documentID uint) ([]model.ChatMessage, error) {
	jsonData, err := r.redisClient.Get(ctx, chatHistoryKey(documentID)).Result()
	if err == redis.Nil {
		return []model.ChatMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat history: %w", err)
	}
	var messages []model.ChatMessage
	if err := json.Unmarshal([]byte(jsonData), &messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chat history: %w", err)
	}
	return messages, nil
}

// AppendHistory 追加消息并只保留最近 20 条。
func (r *redisChatHistoryRepository) AppendHistory(ctx context.Context, documentID uint, messages ...model.ChatMessage) error {
	existing, err := r.GetHistory(ctx, documentID)
	if err != nil {
		return err
	}
	merged := trimHistory(append(existing, messages...))
	jsonData, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("failed to marshal chat history: %w", err)
	}
	if err := r.redisClient.Set(ctx, chatHistoryKey(documentID), jsonData, chatHistoryTTL).Err(); err != nil {
		return fmt.Errorf("failed to set chat history: %w", err)
	}
	return nil
}

type memoryChatHistoryRepository struct {
	mu      sync.RWMutex
	history map[uint][]model.ChatMessage
}

func (r *memoryChatHistoryRepository) GetHistory(_ context.Context, documentID uint) ([]model.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.ChatMessage, len(r.history[documentID]))
	copy(out, r.history[documentID])
	return out, nil
}

func (r *memoryChatHistoryRepository) AppendHistory(_ context.Context, documentID uint, messages ...model.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history[documentID] = trimHistory(append(r.history[documentID], messages...))
	return nil
}

func trimHistory(messages []model.ChatMessage) []model.ChatMessage {
	if len(messages) > chatHistoryLimit {
		messages = messages[len(messages)-chatHistoryLimit:]
	}
	out := make([]model.ChatMessage, len(messages))
	copy(out, messages)
	return out
}
