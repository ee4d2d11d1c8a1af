// Package extractor 从上传文件中提取并清洗纯文本。
package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"study-assistant-go/pkg/log"
	"study-assistant-go/pkg/tika"
)

// SupportedFormats 是允许上传的文件后缀。
var SupportedFormats = []string{".txt", ".pdf", ".docx", ".md"}

// ErrUnsupportedFormat 表示文件后缀不受支持。
var ErrUnsupportedFormat = fmt.Errorf("Unsupported file format. Supported formats: %s", strings.Join(SupportedFormats, ", "))

// ExtractionError 包装某种格式解析失败的原因。
type ExtractionError struct {
	Format string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("Could not extract text from %s: %v", e.Format, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Extractor 根据文件后缀选择解析方式。PDF 依赖 Tika 服务。
type Extractor struct {
	tika *tika.Client
}

// New 创建 Extractor。tikaClient 为 nil 时 PDF 上传会返回 ExtractionError。
func New(tikaClient *tika.Client) *Extractor {
	return &Extractor{tika: tikaClient}
}

// Extract 读取文件内容并返回清洗后的文本。
func (e *Extractor) Extract(ctx context.Context, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt", ".md":
		data, err := io.ReadAll(r)
		if err != nil {
			return "", &ExtractionError{Format: "text file", Err: err}
		}
		return Clean(decodeText(data)), nil
	case ".docx":
		data, err := io.ReadAll(r)
		if err != nil {
			return "", &ExtractionError{Format: "DOCX", Err: err}
		}
		text, err := extractDocx(data)
		if err != nil {
			return "", &ExtractionError{Format: "DOCX", Err: err}
		}
		return Clean(text), nil
	case ".pdf":
		if e.tika == nil {
			return "", &ExtractionError{Format: "PDF", Err: errors.New("tika server is not configured")}
		}
		text, err := e.tika.ExtractText(ctx, r, filename)
		if err != nil {
			log.Errorf("[Extractor] Tika 解析 PDF 失败, file: %s, error: %v", filename, err)
			return "", &ExtractionError{Format: "PDF", Err: err}
		}
		if strings.TrimSpace(text) == "" {
			return "", &ExtractionError{Format: "PDF", Err: errors.New("No text could be extracted from PDF")}
		}
		return Clean(text), nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// decodeText 优先按 UTF-8 解码，失败时回退到 Latin-1。
func decodeText(data []byte) string {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}

// Clean 把连续空白折叠为单个空格，去掉控制字符并去除首尾空白。
func Clean(text string) string {
	if text == "" {
		return ""
	}
	text = strings.Join(strings.Fields(text), " ")
	text = strings.Map(func(r rune) rune {
		if (r <= 0x08) || r == 0x0B || r == 0x0C || (r >= 0x0E && r <= 0x1F) || r == 0x7F {
			return -1
		}
		return r
	}, text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.TrimSpace(text)
}

// WordCount 返回按空白切分后的词数。
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// Preview 返回前 length 个字符，超出时追加 "..."。
func Preview(text string, length int) string {
	runes := []rune(text)
	if len(runes) <= length {
		return text
	}
	return string(runes[:length]) + "..."
}
