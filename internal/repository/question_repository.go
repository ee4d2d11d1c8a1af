package repository

import (
	"errors"

	"gorm.io/gorm"

	"study-assistant-go/internal/model"
	"study-assistant-go/pkg/log"
)

// QuestionRepository 定义了题目的持久化操作。
type QuestionRepository interface {
	// Create 插入题目；(document_id, question_hash) 冲突时返回 (nil, nil)。
	Create(q *model.Question) (*model.Question, error)
	Exists(documentID uint, questionHash string) (bool, error)
	ListByDocument(documentID uint) ([]model.Question, error)
}

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository 创建一个新的 QuestionRepository 实例。
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(q *model.Question) (*model.Question, error) {
	if q.CognitiveLevel == "" {
		q.CognitiveLevel = "Unknown"
	}
	if err := r.db.Create(q).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Infof("[QuestionRepository] 题目已存在, document_id: %d, hash: %s", q.DocumentID, q.QuestionHash)
			return nil, nil
		}
		return nil, err
	}
	return q, nil
}

func (r *questionRepository) Exists(documentID uint, questionHash string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Question{}).
		Where("document_id = ? AND question_hash = ?", documentID, questionHash).
		Count(&count).Error
	return count > 0, err
}

// ListByDocument 按 id 升序返回文档的全部题目。
func (r *questionRepository) ListByDocument(documentID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.db.Where("document_id = ?", documentID).Order("id").Find(&questions).Error
	return questions, err
}
