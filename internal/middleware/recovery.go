package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"study-assistant-go/pkg/log"
)

// Recovery 捕获 panic，记录日志并返回 500 {error}。
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Errorf("[Recovery] %s %s panic: %v", c.Request.Method, c.Request.URL.Path, recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprint(recovered)})
	})
}
