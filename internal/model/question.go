package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// OptionLabels 是每道题固定的四个选项标签。
var OptionLabels = []string{"A", "B", "C", "D"}

// Question 对应 questions 表。(document_id, question_hash) 唯一。
type Question struct {
	ID             uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	DocumentID     uint           `gorm:"not null;index:idx_question_document;uniqueIndex:idx_document_question_hash,priority:1" json:"document_id"`
	QuestionText   string         `gorm:"type:text;not null" json:"question_text"`
	QuestionHash   string         `gorm:"type:varchar(32);not null;uniqueIndex:idx_document_question_hash,priority:2" json:"-"`
	Options        datatypes.JSON `gorm:"not null" json:"options"`
	CorrectAnswer  string         `gorm:"type:varchar(4);not null" json:"correct_answer"`
	Explanation    string         `gorm:"type:text" json:"explanation"`
	CognitiveLevel string         `gorm:"type:varchar(64)" json:"cognitive_level"`
	TimesShown     int            `gorm:"not null;default:0" json:"times_shown"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Question) TableName() string {
	return "questions"
}

// OptionMap 解码 Options 列；列内容非法时返回空 map。
func (q *Question) OptionMap() map[string]string {
	options := map[string]string{}
	if len(q.Options) == 0 {
		return options
	}
	_ = json.Unmarshal(q.Options, &options)
	return options
}
