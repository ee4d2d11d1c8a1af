package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"study-assistant-go/internal/generator"
	"study-assistant-go/internal/service"
	"study-assistant-go/pkg/log"
)

// QuestionHandler 负责以 SSE 流的形式推送生成的题目。
type QuestionHandler struct {
	quizService service.QuizService
}

// NewQuestionHandler 创建一个新的 QuestionHandler 实例。
func NewQuestionHandler(quizService service.QuizService) *QuestionHandler {
	return &QuestionHandler{quizService: quizService}
}

// Generate 处理 GET /api/generate-questions/:id?count=&difficulty=&language=。
// 文档不存在时返回 404 JSON；否则以 text/event-stream 逐条推送 `data: <json>\n\n`。
func (h *QuestionHandler) Generate(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	req, err := h.quizService.PrepareGeneration(id, service.GenerationParams{
		Count:      c.Query("count"),
		Difficulty: c.Query("difficulty"),
		Language:   c.Query("language"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	emit := func(ev generator.Event) error {
		data, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", data); err != nil {
			return err
		}
		c.Writer.Flush()
		return nil
	}

	if err := h.quizService.StreamQuestions(c.Request.Context(), req, emit); err != nil {
		// 流已开始，只能记录日志
		log.Warnf("[QuestionHandler] 文档 %d 出题流中断: %v", id, err)
	}
}
