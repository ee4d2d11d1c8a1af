// Package retrieval 负责文档分块、分块向量缓存以及查询相关分块的检索。
package retrieval

import "strings"

// minChunkWords 是分块保留的最小词数（不含）。
const minChunkWords = 10

// SplitChunks 以空行切分文档，只保留非空且词数大于 10 的段落。
// 没有任何段落满足条件时，整篇文档作为唯一分块。
func SplitChunks(text string) []string {
	var chunks []string
	for _, part := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		if len(strings.Fields(part)) > minChunkWords {
			chunks = append(chunks, part)
		}
	}
	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}
