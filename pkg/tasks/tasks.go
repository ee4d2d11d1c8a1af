// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

// EmbeddingTask 请求为指定文档预先计算分块向量。
type EmbeddingTask struct {
	DocumentID uint   `json:"document_id"`
	Filename   string `json:"file_name"`
}
