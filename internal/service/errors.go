// Package service 包含了应用的业务逻辑层。
package service

import "errors"

var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrDocumentNotFound = errors.New("Document not found")
	ErrSessionNotFound  = errors.New("Session not found")
	ErrNoQuestions      = errors.New("No questions found")
	ErrEmptyDocument    = errors.New("Could not extract text from document")
	ErrStorageDisabled  = errors.New("object storage is not configured")
	ErrChatFailed       = errors.New("Failed to generate response")
)

// ValidationError 携带返回给客户端的具体提示，errors.Is(err, ErrInvalidRequest) 为真。
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrInvalidRequest }

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}
