// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"study-assistant-go/internal/service"
	"study-assistant-go/pkg/extractor"
	"study-assistant-go/pkg/log"
)

// respondError 将业务错误映射为 HTTP 状态码并以 {error} 形式返回。
func respondError(c *gin.Context, err error) {
	var validation *service.ValidationError
	var extraction *extractor.ExtractionError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message})
	case errors.Is(err, extractor.ErrUnsupportedFormat), errors.As(err, &extraction), errors.Is(err, service.ErrEmptyDocument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrDocumentNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrNoQuestions),
		errors.Is(err, service.ErrStorageDisabled):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrChatFailed):
		c.JSON(http.StatusInternalServerError, gin.H{"error": service.ErrChatFailed.Error()})
	default:
		log.Errorf("[Handler] %s %s 失败: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// idParam 解析路径中的正整数 ID，失败时已写入 400 响应。
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}
