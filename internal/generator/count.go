package generator

import (
	"strconv"
	"strings"
)

const (
	MinQuestionCount = 1
	MaxQuestionCount = 50
)

// DefaultQuestionCount 根据文档词数给出建议题量。
func DefaultQuestionCount(wordCount int) int {
	switch {
	case wordCount < 100:
		return 5
	case wordCount < 300:
		return 10
	case wordCount < 500:
		return 15
	case wordCount < 1000:
		return 20
	default:
		n := (wordCount / 100) * 2
		if n > MaxQuestionCount {
			return MaxQuestionCount
		}
		return n
	}
}

// ClampQuestionCount 把显式题量限制在 [1, 50]。
func ClampQuestionCount(n int) int {
	if n < MinQuestionCount {
		return MinQuestionCount
	}
	if n > MaxQuestionCount {
		return MaxQuestionCount
	}
	return n
}

// ResolveQuestionCount 解析查询参数中的题量；缺失、为 0 或无法解析时按词数取默认值。
func ResolveQuestionCount(raw string, wordCount int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n == 0 {
		return DefaultQuestionCount(wordCount)
	}
	return ClampQuestionCount(n)
}
