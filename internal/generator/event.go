package generator

import (
	"encoding/json"
	"fmt"
)

// EventKind 区分流中的事件类型。
type EventKind int

const (
	EventQuestion EventKind = iota
	EventRetrying
	EventDone
	EventFailed
)

// 流状态
const (
	StatusRetrying = "retrying"
	StatusDone     = "done"
	StatusFailed   = "failed"
)

const retryDetails = "AI response was not valid JSON or generation failed."

// QuestionPayload 是推送给客户端的题目，带数据库 ID。
type QuestionPayload struct {
	GeneratedQuestion
	ID uint `json:"id"`
}

// Event 是生成循环推送的单个流事件。
type Event struct {
	Kind     EventKind
	Question *QuestionPayload
	// Number 是失败时正在生成的题目序号（从 1 开始）。
	Number int
	// MaxRetries 用于终止失败事件的文案。
	MaxRetries int
}

// Terminal 报告事件是否结束流。
func (e Event) Terminal() bool {
	return e.Kind == EventDone || e.Kind == EventFailed
}

// MarshalJSON 输出客户端约定的事件 JSON。
func (e Event) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case EventQuestion:
		if e.Question == nil {
			return nil, fmt.Errorf("question event without payload")
		}
		return json.Marshal(e.Question)
	case EventRetrying:
		return json.Marshal(map[string]string{
			"error":   fmt.Sprintf("Failed to generate question %d", e.Number),
			"details": retryDetails,
			"status":  StatusRetrying,
		})
	case EventDone:
		return json.Marshal(map[string]string{"status": StatusDone})
	case EventFailed:
		return json.Marshal(map[string]string{
			"error":  fmt.Sprintf("Failed to generate questions after %d attempts. Please check API key or network.", e.MaxRetries),
			"status": StatusFailed,
		})
	default:
		return nil, fmt.Errorf("unknown event kind %d", e.Kind)
	}
}
