package model

// DocumentStatistics 是单个文档的答题统计。
type DocumentStatistics struct {
	TotalQuestions  int64   `json:"total_questions"`
	TotalAttempts   int64   `json:"total_attempts"`
	CorrectAttempts int64   `json:"correct_attempts"`
	Accuracy        float64 `json:"accuracy"`
}

// SessionSummary 是历史列表中的一条已完成会话。
type SessionSummary struct {
	ID         uint      `json:"id"`
	FileName   string    `json:"fileName"`
	Date       LocalTime `json:"date"`
	Score      int       `json:"score"`
	Total      int       `json:"total"`
	Percentage int       `json:"percentage"`
}

// Analytics 是全部已完成会话的汇总。
type Analytics struct {
	TotalSessions  int64   `json:"total_sessions"`
	TotalQuestions int64   `json:"total_questions"`
	AvgScore       float64 `json:"avg_score"`
}

// WrongAnswer 描述一道答错（或未答）的题目。
type WrongAnswer struct {
	QuestionID    uint              `json:"question_id,omitempty"`
	Question      string            `json:"question"`
	Options       map[string]string `json:"options"`
	UserAnswer    *string           `json:"user_answer"`
	CorrectAnswer string            `json:"correct_answer"`
	Explanation   string            `json:"explanation"`
}

// SessionDetail 是单个会话的详情。
type SessionDetail struct {
	Total   int           `json:"total"`
	Correct int           `json:"correct"`
	Wrong   []WrongAnswer `json:"wrong"`
}
