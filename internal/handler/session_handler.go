package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"study-assistant-go/internal/service"
)

// SessionHandler 负责答题会话、评分与统计相关的 API 请求。
type SessionHandler struct {
	quizService service.QuizService
}

// NewSessionHandler 创建一个新的 SessionHandler 实例。
func NewSessionHandler(quizService service.QuizService) *SessionHandler {
	return &SessionHandler{quizService: quizService}
}

// StartSessionRequest 是开始会话的请求体。
type StartSessionRequest struct {
	DocumentID     uint `json:"document_id"`
	TotalQuestions int  `json:"total_questions"`
}

// Start 开始一个答题会话。
func (h *SessionHandler) Start(c *gin.Context) {
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing document_id or total_questions"})
		return
	}
	session, err := h.quizService.StartSession(req.DocumentID, req.TotalQuestions)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": session.ID})
}

// Submit 对提交的答案评分并结束会话。
func (h *SessionHandler) Submit(c *gin.Context) {
	var req service.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required data (document_id, session_id, answers)"})
		return
	}
	result, err := h.quizService.SubmitAnswers(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Statistics 返回单个文档的题目与作答统计。
func (h *SessionHandler) Statistics(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	stats, err := h.quizService.Statistics(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// History 返回最近完成的会话。
func (h *SessionHandler) History(c *gin.Context) {
	history, err := h.quizService.History()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// Analytics 返回全局统计。
func (h *SessionHandler) Analytics(c *gin.Context) {
	analytics, err := h.quizService.Analytics()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics)
}

// Detail 返回会话得分与错题。
func (h *SessionHandler) Detail(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.quizService.SessionDetail(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Delete 删除会话及其作答记录。
func (h *SessionHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.quizService.DeleteSession(id); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found or already deleted"})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session deleted successfully"})
}
