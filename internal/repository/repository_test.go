package repository

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"study-assistant-go/internal/model"
	"study-assistant-go/pkg/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	return db
}

func seedDocument(t *testing.T, db *gorm.DB, filename string) *model.Document {
	t.Helper()
	doc := &model.Document{Filename: filename, Content: "content", ContentHash: "h", WordCount: 1, Language: "en"}
	require.NoError(t, NewDocumentRepository(db).Create(doc))
	return doc
}

func newQuestion(docID uint, text, hash string) *model.Question {
	opts, _ := json.Marshal(map[string]string{"A": "a", "B": "b", "C": "c", "D": "d"})
	return &model.Question{
		DocumentID:    docID,
		QuestionText:  text,
		QuestionHash:  hash,
		Options:       datatypes.JSON(opts),
		CorrectAnswer: "A",
		Explanation:   "because",
	}
}

func TestDocumentRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewDocumentRepository(db)
	doc := seedDocument(t, db, "a.txt")
	assert.NotZero(t, doc.ID)

	got, err := repo.FindByID(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "a.txt", got.Filename)
	assert.False(t, got.UploadDate.IsZero())

	_, err = repo.FindByID(9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestQuestionRepositoryDuplicateReturnsNil(t *testing.T) {
	db := newTestDB(t)
	repo := NewQuestionRepository(db)
	doc := seedDocument(t, db, "a.txt")

	q, err := repo.Create(newQuestion(doc.ID, "What?", "hash1"))
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, "Unknown", q.CognitiveLevel)

	dup, err := repo.Create(newQuestion(doc.ID, "What?", "hash1"))
	require.NoError(t, err)
	assert.Nil(t, dup)

	exists, err := repo.Exists(doc.ID, "hash1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(doc.ID, "other")
	require.NoError(t, err)
	assert.False(t, exists)

	// 同一哈希在另一个文档下允许存在
	other := seedDocument(t, db, "b.txt")
	q2, err := repo.Create(newQuestion(other.ID, "What?", "hash1"))
	require.NoError(t, err)
	assert.NotNil(t, q2)
}

func TestQuestionRepositoryListOrdered(t *testing.T) {
	db := newTestDB(t)
	repo := NewQuestionRepository(db)
	doc := seedDocument(t, db, "a.txt")
	for i := 0; i < 3; i++ {
		_, err := repo.Create(newQuestion(doc.ID, fmt.Sprintf("Q%d", i), fmt.Sprintf("h%d", i)))
		require.NoError(t, err)
	}
	qs, err := repo.ListByDocument(doc.ID)
	require.NoError(t, err)
	require.Len(t, qs, 3)
	assert.Equal(t, "Q0", qs[0].QuestionText)
	assert.Equal(t, "Q2", qs[2].QuestionText)
	assert.Equal(t, "a", qs[0].OptionMap()["A"])
}

func TestSessionLifecycleAndStatistics(t *testing.T) {
	db := newTestDB(t)
	qRepo := NewQuestionRepository(db)
	sRepo := NewSessionRepository(db)
	doc := seedDocument(t, db, "notes.pdf")

	q1, err := qRepo.Create(newQuestion(doc.ID, "Q1", "h1"))
	require.NoError(t, err)
	q2, err := qRepo.Create(newQuestion(doc.ID, "Q2", "h2"))
	require.NoError(t, err)

	s, err := sRepo.Start(doc.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusStarted, s.Status)

	answer := "A"
	require.NoError(t, sRepo.SaveAttempt(s.ID, q1.ID, &answer, true))
	require.NoError(t, sRepo.SaveAttempt(s.ID, q2.ID, nil, false))
	require.NoError(t, sRepo.End(s.ID, 1))

	ended, err := sRepo.FindByID(s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusCompleted, ended.Status)
	assert.Equal(t, 1, ended.CorrectAnswers)
	require.NotNil(t, ended.EndTime)

	var shown model.Question
	require.NoError(t, db.First(&shown, q1.ID).Error)
	assert.Equal(t, 1, shown.TimesShown)

	stats, err := sRepo.DocumentStatistics(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalQuestions)
	assert.Equal(t, int64(2), stats.TotalAttempts)
	assert.Equal(t, int64(1), stats.CorrectAttempts)
	assert.Equal(t, 50.0, stats.Accuracy)

	wrong, err := sRepo.WrongAnswers(s.ID)
	require.NoError(t, err)
	require.Len(t, wrong, 1)
	assert.Equal(t, "Q2", wrong[0].Question)
	assert.Equal(t, q2.ID, wrong[0].QuestionID)
	assert.Nil(t, wrong[0].UserAnswer)
	assert.Equal(t, "d", wrong[0].Options["D"])
}

func TestStatisticsEmptyDocument(t *testing.T) {
	db := newTestDB(t)
	stats, err := NewSessionRepository(db).DocumentStatistics(42)
	require.NoError(t, err)
	assert.Equal(t, &model.DocumentStatistics{}, stats)
}

func TestHistoryAndAnalytics(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepository(db)
	doc := seedDocument(t, db, "notes.pdf")

	// 未完成的会话不计入
	_, err := repo.Start(doc.ID, 4)
	require.NoError(t, err)

	s1, err := repo.Start(doc.ID, 3)
	require.NoError(t, err)
	require.NoError(t, repo.End(s1.ID, 2))
	s2, err := repo.Start(doc.ID, 4)
	require.NoError(t, err)
	require.NoError(t, repo.End(s2.ID, 4))

	history, err := repo.History(10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, s2.ID, history[0].ID)
	assert.Equal(t, "notes.pdf", history[0].FileName)
	assert.Equal(t, 100, history[0].Percentage)
	assert.Equal(t, 67, history[1].Percentage)

	a, err := repo.Analytics()
	require.NoError(t, err)
	assert.Equal(t, int64(2), a.TotalSessions)
	assert.Equal(t, int64(7), a.TotalQuestions)
	assert.Equal(t, 83.33, a.AvgScore)
}

func TestHistoryLimit(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepository(db)
	doc := seedDocument(t, db, "a.txt")
	for i := 0; i < 12; i++ {
		s, err := repo.Start(doc.ID, 1)
		require.NoError(t, err)
		require.NoError(t, repo.End(s.ID, 1))
	}
	history, err := repo.History(10)
	require.NoError(t, err)
	assert.Len(t, history, 10)
}

func TestAnalyticsEmpty(t *testing.T) {
	db := newTestDB(t)
	a, err := NewSessionRepository(db).Analytics()
	require.NoError(t, err)
	assert.Equal(t, &model.Analytics{}, a)
}

func TestDeleteSession(t *testing.T) {
	db := newTestDB(t)
	qRepo := NewQuestionRepository(db)
	sRepo := NewSessionRepository(db)
	doc := seedDocument(t, db, "a.txt")
	q, err := qRepo.Create(newQuestion(doc.ID, "Q", "h"))
	require.NoError(t, err)
	s, err := sRepo.Start(doc.ID, 1)
	require.NoError(t, err)
	require.NoError(t, sRepo.SaveAttempt(s.ID, q.ID, nil, false))

	ok, err := sRepo.Delete(s.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	var count int64
	require.NoError(t, db.Model(&model.Attempt{}).Where("session_id = ?", s.ID).Count(&count).Error)
	assert.Zero(t, count)

	ok, err = sRepo.Delete(s.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryChatHistoryKeepsLast20(t *testing.T) {
	repo := NewChatHistoryRepository(nil)
	ctx := t.Context()
	for i := 0; i < 25; i++ {
		require.NoError(t, repo.AppendHistory(ctx, 1, model.ChatMessage{Role: "user", Content: fmt.Sprintf("m%d", i), Timestamp: time.Now()}))
	}
	history, err := repo.GetHistory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 20)
	assert.Equal(t, "m5", history[0].Content)
	assert.Equal(t, "m24", history[19].Content)

	empty, err := repo.GetHistory(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
