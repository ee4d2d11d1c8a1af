package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoJSON 表示模型回复中没有 JSON 对象。
	ErrNoJSON = errors.New("no JSON found in response")
	// ErrIncompleteQuestion 表示 JSON 缺少必要字段。
	ErrIncompleteQuestion = errors.New("incomplete JSON response from model")
)

// optionLabels 与 model.OptionLabels 保持一致。
var optionLabels = []string{"A", "B", "C", "D"}

// GeneratedQuestion 是从模型回复中解析出的一道题。
type GeneratedQuestion struct {
	Question       string            `json:"question"`
	Options        map[string]string `json:"options"`
	CorrectAnswer  string            `json:"correct_answer"`
	Explanation    string            `json:"explanation"`
	CognitiveLevel string            `json:"cognitive_level,omitempty"`
}

// ExtractJSONObject 截取第一个 '{' 到最后一个 '}' 之间的文本（含两端）。
// 不做括号配对：回复中出现多个独立对象时截取结果可能不是合法 JSON，由后续解析报错。
func ExtractJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return text[start : end+1], true
}

// ParseQuestion 从模型回复中解析题目，并校验题干、四个选项、正确答案与解析。
func ParseQuestion(response string) (*GeneratedQuestion, error) {
	raw, ok := ExtractJSONObject(strings.TrimSpace(response))
	if !ok {
		return nil, ErrNoJSON
	}

	var q GeneratedQuestion
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		return nil, fmt.Errorf("invalid question JSON: %w", err)
	}

	q.Question = strings.TrimSpace(q.Question)
	q.Explanation = strings.TrimSpace(q.Explanation)
	q.CorrectAnswer = strings.ToUpper(strings.TrimSpace(q.CorrectAnswer))
	q.CognitiveLevel = strings.TrimSpace(q.CognitiveLevel)

	if q.Question == "" || q.Explanation == "" {
		return nil, ErrIncompleteQuestion
	}
	if len(q.Options) != len(optionLabels) {
		return nil, fmt.Errorf("%w: expected 4 options, got %d", ErrIncompleteQuestion, len(q.Options))
	}
	for _, label := range optionLabels {
		if strings.TrimSpace(q.Options[label]) == "" {
			return nil, fmt.Errorf("%w: missing option %s", ErrIncompleteQuestion, label)
		}
	}
	if _, ok := q.Options[q.CorrectAnswer]; !ok {
		return nil, fmt.Errorf("%w: correct_answer %q is not one of A-D", ErrIncompleteQuestion, q.CorrectAnswer)
	}
	return &q, nil
}
