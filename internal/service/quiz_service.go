package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"study-assistant-go/internal/generator"
	"study-assistant-go/internal/model"
	"study-assistant-go/internal/repository"
	"study-assistant-go/pkg/log"
)

const (
	historyLimit     = 10
	noAnswerProvided = "No answer provided"
)

// SubmitRequest 是提交答案的请求体。answers 的键是题目 ID 的字符串形式。
type SubmitRequest struct {
	DocumentID uint               `json:"document_id"`
	SessionID  uint               `json:"session_id"`
	Answers    map[string]*string `json:"answers"`
}

// SubmitResult 是评分结果。
type SubmitResult struct {
	Total      int                 `json:"total"`
	Correct    int                 `json:"correct"`
	Wrong      []model.WrongAnswer `json:"wrong"`
	AllCorrect bool                `json:"all_correct"`
}

// GenerationParams 是出题接口的原始查询参数。
type GenerationParams struct {
	Count      string
	Difficulty string
	Language   string
}

// QuizService 接口定义了出题、答题会话与统计相关的业务操作。
type QuizService interface {
	PrepareGeneration(documentID uint, params GenerationParams) (generator.Request, error)
	StreamQuestions(ctx context.Context, req generator.Request, emit generator.Emitter) error
	StartSession(documentID uint, totalQuestions int) (*model.Session, error)
	SubmitAnswers(req SubmitRequest) (*SubmitResult, error)
	Statistics(documentID uint) (*model.DocumentStatistics, error)
	History() ([]model.SessionSummary, error)
	Analytics() (*model.Analytics, error)
	SessionDetail(sessionID uint) (*model.SessionDetail, error)
	DeleteSession(sessionID uint) error
}

type quizService struct {
	docRepo      repository.DocumentRepository
	questionRepo repository.QuestionRepository
	sessionRepo  repository.SessionRepository
	loop         *generator.Loop
}

// NewQuizService 创建一个新的 QuizService 实例。
func NewQuizService(docRepo repository.DocumentRepository, questionRepo repository.QuestionRepository, sessionRepo repository.SessionRepository, loop *generator.Loop) QuizService {
	return &quizService{
		docRepo:      docRepo,
		questionRepo: questionRepo,
		sessionRepo:  sessionRepo,
		loop:         loop,
	}
}

// PrepareGeneration 加载文档并规范化题量、难度与语言；语言缺省时使用文档上传时的语言。
func (s *quizService) PrepareGeneration(documentID uint, params GenerationParams) (generator.Request, error) {
	doc, err := s.docRepo.FindByID(documentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return generator.Request{}, ErrDocumentNotFound
	}
	if err != nil {
		return generator.Request{}, err
	}

	language := params.Language
	if language == "" {
		language = doc.Language
	}
	return generator.Request{
		DocumentID:   doc.ID,
		DocumentText: doc.Content,
		Count:        generator.ResolveQuestionCount(params.Count, doc.WordCount),
		Difficulty:   generator.NormalizeDifficulty(params.Difficulty),
		Language:     generator.NormalizeLanguage(language),
	}, nil
}

func (s *quizService) StreamQuestions(ctx context.Context, req generator.Request, emit generator.Emitter) error {
	log.Infof("[QuizService] 开始为文档 %d 生成 %d 道题, difficulty: %s, language: %s", req.DocumentID, req.Count, req.Difficulty, req.Language)
	return s.loop.Run(ctx, req, emit)
}

func (s *quizService) StartSession(documentID uint, totalQuestions int) (*model.Session, error) {
	if documentID == 0 || totalQuestions <= 0 {
		return nil, invalid("Missing document_id or total_questions")
	}
	if _, err := s.docRepo.FindByID(documentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return s.sessionRepo.Start(documentID, totalQuestions)
}

// SubmitAnswers 按题目 ID 顺序评分：作答的题目写入作答记录，未作答的题目记为空答案且判错，
// 最后结束会话。空字符串答案视为未作答。
func (s *quizService) SubmitAnswers(req SubmitRequest) (*SubmitResult, error) {
	if req.DocumentID == 0 || req.SessionID == 0 || len(req.Answers) == 0 {
		return nil, invalid("Missing required data (document_id, session_id, answers)")
	}

	questions, err := s.questionRepo.ListByDocument(req.DocumentID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	if _, err := s.sessionRepo.FindByID(req.SessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	known := make(map[string]bool, len(questions))
	for _, q := range questions {
		known[strconv.FormatUint(uint64(q.ID), 10)] = true
	}
	for id := range req.Answers {
		if !known[id] {
			log.Warnf("[QuizService] 会话 %d 提交了未知题目的答案, question_id: %s", req.SessionID, id)
		}
	}

	result := &SubmitResult{Total: len(questions), Wrong: []model.WrongAnswer{}, AllCorrect: true}
	for i := range questions {
		q := &questions[i]
		answer := req.Answers[strconv.FormatUint(uint64(q.ID), 10)]
		if answer != nil && *answer == "" {
			answer = nil
		}
		isCorrect := answer != nil && *answer == q.CorrectAnswer

		if err := s.sessionRepo.SaveAttempt(req.SessionID, q.ID, answer, isCorrect); err != nil {
			return nil, fmt.Errorf("保存作答记录失败: %w", err)
		}
		if isCorrect {
			result.Correct++
			continue
		}

		result.AllCorrect = false
		shown := noAnswerProvided
		if answer != nil {
			shown = *answer
		}
		result.Wrong = append(result.Wrong, model.WrongAnswer{
			QuestionID:    q.ID,
			Question:      q.QuestionText,
			Options:       q.OptionMap(),
			UserAnswer:    &shown,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		})
	}

	if err := s.sessionRepo.End(req.SessionID, result.Correct); err != nil {
		return nil, fmt.Errorf("结束会话失败: %w", err)
	}
	log.Infof("[QuizService] 会话 %d 完成, 得分 %d/%d", req.SessionID, result.Correct, result.Total)
	return result, nil
}

func (s *quizService) Statistics(documentID uint) (*model.DocumentStatistics, error) {
	return s.sessionRepo.DocumentStatistics(documentID)
}

func (s *quizService) History() ([]model.SessionSummary, error) {
	return s.sessionRepo.History(historyLimit)
}

func (s *quizService) Analytics() (*model.Analytics, error) {
	return s.sessionRepo.Analytics()
}

func (s *quizService) SessionDetail(sessionID uint) (*model.SessionDetail, error) {
	session, err := s.sessionRepo.FindByID(sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	wrong, err := s.sessionRepo.WrongAnswers(sessionID)
	if err != nil {
		return nil, err
	}
	return &model.SessionDetail{
		Total:   session.TotalQuestions,
		Correct: session.CorrectAnswers,
		Wrong:   wrong,
	}, nil
}

func (s *quizService) DeleteSession(sessionID uint) error {
	ok, err := s.sessionRepo.Delete(sessionID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSessionNotFound
	}
	log.Infof("[QuizService] 会话 %d 已删除", sessionID)
	return nil
}
