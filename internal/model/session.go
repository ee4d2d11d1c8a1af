package model

import "time"

// 会话状态
const (
	SessionStatusStarted   = "started"
	SessionStatusCompleted = "completed"
)

// Session 对应 sessions 表，代表一次完整的答题过程。
type Session struct {
	ID             uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	DocumentID     uint       `gorm:"not null;index" json:"document_id"`
	StartTime      time.Time  `gorm:"autoCreateTime" json:"start_time"`
	EndTime        *time.Time `gorm:"default:null" json:"end_time"`
	TotalQuestions int        `json:"total_questions"`
	CorrectAnswers int        `json:"correct_answers"`
	Status         string     `gorm:"type:varchar(16);not null;default:'started'" json:"status"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Session) TableName() string {
	return "sessions"
}

// Attempt 对应 user_attempts 表，只追加不修改。UserAnswer 为 nil 表示未作答。
type Attempt struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	QuestionID uint      `gorm:"not null;index:idx_attempts_question" json:"question_id"`
	SessionID  uint      `gorm:"not null;index:idx_attempts_session" json:"session_id"`
	UserAnswer *string   `gorm:"type:varchar(4)" json:"user_answer"`
	IsCorrect  bool      `gorm:"not null;default:false" json:"is_correct"`
	Timestamp  time.Time `gorm:"autoCreateTime" json:"timestamp"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Attempt) TableName() string {
	return "user_attempts"
}
