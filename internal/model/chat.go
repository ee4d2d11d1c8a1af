// Package model 包含了应用的数据模型定义。
package model

import "time"

// ChatMessage 代表一条辅导对话消息。
type ChatMessage struct {
	Role      string    `json:"role"` // "user" 或 "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// WrongQuestion 是聊天请求中携带的错题摘要。
type WrongQuestion struct {
	Question      string `json:"question"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
}
