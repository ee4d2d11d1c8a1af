package repository

import (
	"database/sql"
	"math"
	"time"

	"gorm.io/gorm"

	"study-assistant-go/internal/model"
)

// SessionRepository 定义了答题会话、作答记录与统计的操作。
type SessionRepository interface {
	Start(documentID uint, totalQuestions int) (*model.Session, error)
	FindByID(id uint) (*model.Session, error)
	End(id uint, correctAnswers int) error
	SaveAttempt(sessionID, questionID uint, userAnswer *string, isCorrect bool) error
	DocumentStatistics(documentID uint) (*model.DocumentStatistics, error)
	History(limit int) ([]model.SessionSummary, error)
	Analytics() (*model.Analytics, error)
	WrongAnswers(sessionID uint) ([]model.WrongAnswer, error)
	// Delete 删除会话及其作答记录，返回会话是否存在。
	Delete(id uint) (bool, error)
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository 创建一个新的 SessionRepository 实例。
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Start(documentID uint, totalQuestions int) (*model.Session, error) {
	s := &model.Session{
		DocumentID:     documentID,
		TotalQuestions: totalQuestions,
		Status:         model.SessionStatusStarted,
	}
	if err := r.db.Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

func (r *sessionRepository) FindByID(id uint) (*model.Session, error) {
	var s model.Session
	if err := r.db.First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepository) End(id uint, correctAnswers int) error {
	now := time.Now()
	return r.db.Model(&model.Session{}).Where("id = ?", id).Updates(map[string]interface{}{
		"end_time":        now,
		"correct_answers": correctAnswers,
		"status":          model.SessionStatusCompleted,
	}).Error
}

// SaveAttempt 写入一条作答记录并将题目的 times_shown 加一。
func (r *sessionRepository) SaveAttempt(sessionID, questionID uint, userAnswer *string, isCorrect bool) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		attempt := &model.Attempt{
			SessionID:  sessionID,
			QuestionID: questionID,
			UserAnswer: userAnswer,
			IsCorrect:  isCorrect,
		}
		if err := tx.Create(attempt).Error; err != nil {
			return err
		}
		return tx.Model(&model.Question{}).Where("id = ?", questionID).
			UpdateColumn("times_shown", gorm.Expr("times_shown + ?", 1)).Error
	})
}

func (r *sessionRepository) DocumentStatistics(documentID uint) (*model.DocumentStatistics, error) {
	stats := &model.DocumentStatistics{}
	if err := r.db.Model(&model.Question{}).Where("document_id = ?", documentID).Count(&stats.TotalQuestions).Error; err != nil {
		return nil, err
	}
	attempts := func() *gorm.DB {
		return r.db.Model(&model.Attempt{}).
			Joins("JOIN questions q ON user_attempts.question_id = q.id").
			Where("q.document_id = ?", documentID)
	}
	if err := attempts().Count(&stats.TotalAttempts).Error; err != nil {
		return nil, err
	}
	if err := attempts().Where("user_attempts.is_correct = ?", true).Count(&stats.CorrectAttempts).Error; err != nil {
		return nil, err
	}
	if stats.TotalAttempts > 0 {
		stats.Accuracy = round2(float64(stats.CorrectAttempts) / float64(stats.TotalAttempts) * 100)
	}
	return stats, nil
}

type historyRow struct {
	ID             uint
	StartTime      time.Time
	TotalQuestions int
	CorrectAnswers int
	Filename       string
}

// History 返回最近 limit 个已完成会话，按开始时间倒序。
func (r *sessionRepository) History(limit int) ([]model.SessionSummary, error) {
	var rows []historyRow
	err := r.db.Table("sessions s").
		Select("s.id, s.start_time, s.total_questions, s.correct_answers, d.filename").
		Joins("JOIN documents d ON s.document_id = d.id").
		Where("s.status = ?", model.SessionStatusCompleted).
		Order("s.start_time DESC, s.id DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]model.SessionSummary, 0, len(rows))
	for _, row := range rows {
		percentage := 0
		if row.TotalQuestions > 0 {
			percentage = int(math.Round(float64(row.CorrectAnswers) / float64(row.TotalQuestions) * 100))
		}
		summaries = append(summaries, model.SessionSummary{
			ID:         row.ID,
			FileName:   row.Filename,
			Date:       model.LocalTime(row.StartTime),
			Score:      row.CorrectAnswers,
			Total:      row.TotalQuestions,
			Percentage: percentage,
		})
	}
	return summaries, nil
}

func (r *sessionRepository) Analytics() (*model.Analytics, error) {
	out := &model.Analytics{}
	completed := r.db.Model(&model.Session{}).Where("status = ?", model.SessionStatusCompleted)

	var totalQuestions sql.NullInt64
	if err := completed.Session(&gorm.Session{}).Count(&out.TotalSessions).Error; err != nil {
		return nil, err
	}
	if err := completed.Session(&gorm.Session{}).Select("SUM(total_questions)").Row().Scan(&totalQuestions); err != nil {
		return nil, err
	}
	out.TotalQuestions = totalQuestions.Int64

	if out.TotalSessions > 0 && out.TotalQuestions > 0 {
		var avg sql.NullFloat64
		err := completed.Session(&gorm.Session{}).
			Where("total_questions > 0").
			Select("AVG(correct_answers * 1.0 / total_questions) * 100").
			Row().Scan(&avg)
		if err != nil {
			return nil, err
		}
		if avg.Valid {
			out.AvgScore = round2(avg.Float64)
		}
	}
	return out, nil
}

type wrongAnswerRow struct {
	QuestionID    uint
	QuestionText  string
	Options       []byte
	CorrectAnswer string
	Explanation   string
	UserAnswer    *string
}

// WrongAnswers 返回会话中全部答错（含未答）的作答，按作答顺序。
func (r *sessionRepository) WrongAnswers(sessionID uint) ([]model.WrongAnswer, error) {
	var rows []wrongAnswerRow
	err := r.db.Table("user_attempts ua").
		Select("q.id AS question_id, q.question_text, q.options, q.correct_answer, q.explanation, ua.user_answer").
		Joins("JOIN questions q ON ua.question_id = q.id").
		Where("ua.session_id = ? AND ua.is_correct = ?", sessionID, false).
		Order("ua.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	wrong := make([]model.WrongAnswer, 0, len(rows))
	for _, row := range rows {
		q := model.Question{Options: row.Options}
		wrong = append(wrong, model.WrongAnswer{
			QuestionID:    row.QuestionID,
			Question:      row.QuestionText,
			Options:       q.OptionMap(),
			UserAnswer:    row.UserAnswer,
			CorrectAnswer: row.CorrectAnswer,
			Explanation:   row.Explanation,
		})
	}
	return wrong, nil
}

func (r *sessionRepository) Delete(id uint) (bool, error) {
	var deleted int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", id).Delete(&model.Attempt{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Session{}, id)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	return deleted > 0, err
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
