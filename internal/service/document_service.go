package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"study-assistant-go/internal/generator"
	"study-assistant-go/internal/model"
	"study-assistant-go/internal/repository"
	"study-assistant-go/pkg/extractor"
	"study-assistant-go/pkg/hash"
	"study-assistant-go/pkg/log"
	"study-assistant-go/pkg/storage"
	"study-assistant-go/pkg/tasks"
)

const (
	previewLength  = 200
	downloadExpiry = time.Hour
)

// TaskDispatcher 投递向量预热任务，实现可以是 Kafka 或进程内同步执行。
type TaskDispatcher interface {
	Dispatch(ctx context.Context, task tasks.EmbeddingTask) error
}

// UploadInput 是一次上传的原始文件。
type UploadInput struct {
	Filename string
	Language string
	Content  io.Reader
}

// UploadResult 是上传接口的响应体。
type UploadResult struct {
	DocumentID     uint   `json:"document_id"`
	ContentPreview string `json:"content_preview"`
	Filename       string `json:"filename"`
}

// DocumentDTO 是文档元数据接口的响应体。
type DocumentDTO struct {
	ID                     uint            `json:"id"`
	Filename               string          `json:"filename"`
	WordCount              int             `json:"word_count"`
	Language               string          `json:"language"`
	ContentHash            string          `json:"content_hash"`
	UploadDate             model.LocalTime `json:"upload_date"`
	ContentPreview         string          `json:"content_preview"`
	SuggestedQuestionCount int             `json:"suggested_question_count"`
}

// DownloadInfoDTO 封装了原始文件下载链接。
type DownloadInfoDTO struct {
	FileName    string `json:"fileName"`
	DownloadURL string `json:"downloadUrl"`
	ExpiresIn   int    `json:"expiresIn"`
}

// DocumentService 接口定义了文档上传与查询相关的业务操作。
type DocumentService interface {
	Upload(ctx context.Context, in UploadInput) (*UploadResult, error)
	Get(id uint) (*DocumentDTO, error)
	DownloadURL(ctx context.Context, id uint) (*DownloadInfoDTO, error)
}

type documentService struct {
	docRepo    repository.DocumentRepository
	extractor  *extractor.Extractor
	store      storage.ObjectStore
	dispatcher TaskDispatcher
}

// NewDocumentService 创建一个新的 DocumentService 实例。store 与 dispatcher 可为 nil。
func NewDocumentService(docRepo repository.DocumentRepository, ext *extractor.Extractor, store storage.ObjectStore, dispatcher TaskDispatcher) DocumentService {
	return &documentService{
		docRepo:    docRepo,
		extractor:  ext,
		store:      store,
		dispatcher: dispatcher,
	}
}

// Upload 提取文本、入库，并尽力归档原始文件和预热分块向量；后两步失败只记录日志。
func (s *documentService) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	if in.Filename == "" {
		return nil, invalid("No file selected")
	}
	language := in.Language
	if language == "" {
		language = generator.LanguageEnglish
	}

	raw, err := io.ReadAll(in.Content)
	if err != nil {
		return nil, fmt.Errorf("读取上传文件失败: %w", err)
	}

	text, err := s.extractor.Extract(ctx, in.Filename, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, ErrEmptyDocument
	}

	doc := &model.Document{
		Filename:    in.Filename,
		Content:     text,
		ContentHash: hash.MD5Hex(text),
		WordCount:   extractor.WordCount(text),
		Language:    language,
	}
	if err := s.docRepo.Create(doc); err != nil {
		return nil, fmt.Errorf("保存文档失败: %w", err)
	}
	log.Infof("[DocumentService] 文档已保存, id: %d, file: %s, words: %d", doc.ID, doc.Filename, doc.WordCount)

	if s.store != nil {
		contentType := mime.TypeByExtension(filepath.Ext(in.Filename))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		objectName := storage.DocumentObjectName(doc.ID, doc.Filename)
		if err := s.store.Put(ctx, objectName, bytes.NewReader(raw), int64(len(raw)), contentType); err != nil {
			log.Errorf("[DocumentService] 归档原始文件失败, id: %d, error: %v", doc.ID, err)
		}
	}

	if s.dispatcher != nil {
		task := tasks.EmbeddingTask{DocumentID: doc.ID, Filename: doc.Filename}
		if err := s.dispatcher.Dispatch(ctx, task); err != nil {
			log.Warnf("[DocumentService] 文档 %d 向量预热失败: %v", doc.ID, err)
		}
	}

	// 与历史行为一致：预览总是追加省略号
	return &UploadResult{
		DocumentID:     doc.ID,
		ContentPreview: previewPrefix(text) + "...",
		Filename:       doc.Filename,
	}, nil
}

func (s *documentService) Get(id uint) (*DocumentDTO, error) {
	doc, err := s.findDocument(id)
	if err != nil {
		return nil, err
	}
	return &DocumentDTO{
		ID:                     doc.ID,
		Filename:               doc.Filename,
		WordCount:              doc.WordCount,
		Language:               doc.Language,
		ContentHash:            doc.ContentHash,
		UploadDate:             model.LocalTime(doc.UploadDate),
		ContentPreview:         extractor.Preview(doc.Content, previewLength),
		SuggestedQuestionCount: generator.DefaultQuestionCount(doc.WordCount),
	}, nil
}

func (s *documentService) DownloadURL(ctx context.Context, id uint) (*DownloadInfoDTO, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	doc, err := s.findDocument(id)
	if err != nil {
		return nil, err
	}
	url, err := s.store.PresignedURL(ctx, storage.DocumentObjectName(doc.ID, doc.Filename), downloadExpiry)
	if err != nil {
		return nil, fmt.Errorf("生成下载链接失败: %w", err)
	}
	return &DownloadInfoDTO{
		FileName:    doc.Filename,
		DownloadURL: url,
		ExpiresIn:   int(downloadExpiry.Seconds()),
	}, nil
}

func (s *documentService) findDocument(id uint) (*model.Document, error) {
	doc, err := s.docRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func previewPrefix(text string) string {
	runes := []rune(text)
	if len(runes) > previewLength {
		runes = runes[:previewLength]
	}
	return string(runes)
}
